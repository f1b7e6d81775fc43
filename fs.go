package cryptomator

import (
	"errors"

	"github.com/absfs/absfs"
)

// Config contains vault-level configuration.
type Config struct {
	// ChunkSize is the plaintext block size for newly written files.
	// Zero selects DefaultChunkSize. Existing files carry their chunk
	// size in their header and are unaffected.
	ChunkSize uint32
}

// CryptoFS is the encrypted overlay filesystem rooted in a physical
// absfs.FileSystem. Constructing it runs the master key protocol;
// Create materializes the data root and the logical root.
type CryptoFS struct {
	base      absfs.FileSystem
	cryptor   Cryptor
	chunkSize uint32
}

// New opens (or bootstraps) a vault at the root of the physical
// filesystem: the master key is created and backed up on first open,
// validated and re-backed-up on every later open. The data root is not
// created yet; call Create for that.
func New(base absfs.FileSystem, cryptor Cryptor, passphrase string) (*CryptoFS, error) {
	return NewWithConfig(base, cryptor, passphrase, nil)
}

// NewWithConfig is New with explicit vault configuration.
func NewWithConfig(base absfs.FileSystem, cryptor Cryptor, passphrase string, config *Config) (*CryptoFS, error) {
	if base == nil {
		return nil, errors.New("physical filesystem cannot be nil")
	}
	if cryptor == nil {
		return nil, errors.New("cryptor cannot be nil")
	}

	chunkSize := uint32(DefaultChunkSize)
	if config != nil && config.ChunkSize != 0 {
		if err := ValidateChunkSize(config.ChunkSize); err != nil {
			return nil, err
		}
		chunkSize = config.ChunkSize
	}

	if err := openMasterkey(base, cryptor, passphrase); err != nil {
		return nil, err
	}

	return &CryptoFS{
		base:      base,
		cryptor:   cryptor,
		chunkSize: chunkSize,
	}, nil
}

// Create materializes the data root folder and the logical root's id
// mapping. Afterwards the data root holds exactly one file (the root id
// file) and one folder (the root's sharded physical directory). Create is
// idempotent.
func (fs *CryptoFS) Create(mode FolderCreateMode) error {
	_ = mode // the data root's parent is the vault root, which always exists
	return fs.createRoot()
}

func (fs *CryptoFS) createRoot() error {
	dataRoot := dataRootPath()
	exists, err := physicalExists(fs.base, dataRoot)
	if err != nil {
		return err
	}
	if !exists {
		if err := fs.base.Mkdir(dataRoot, 0700); err != nil {
			return NewIOError("mkdir", dataRoot, err)
		}
	}

	idPath := rootDirIdPath()
	exists, err = physicalExists(fs.base, idPath)
	if err != nil {
		return err
	}
	if !exists {
		if err := writePhysicalFile(fs.base, idPath, []byte(RootDirectoryID)); err != nil {
			return err
		}
	}

	id, err := fs.Root().resolveID()
	if err != nil {
		return NewIOError("read", idPath, err)
	}
	if err := fs.base.MkdirAll(physicalDirPath(id), 0700); err != nil {
		return NewIOError("mkdir", physicalDirPath(id), err)
	}
	return nil
}

// Root returns the logical root folder.
func (fs *CryptoFS) Root() *Folder {
	return &Folder{fs: fs, path: ""}
}

// Folder returns a handle on the folder at the given logical path. The
// empty path (or "/") is the root.
func (fs *CryptoFS) Folder(logicalPath string) *Folder {
	return &Folder{fs: fs, path: cleanLogicalPath(logicalPath)}
}

// File returns a handle on the file at the given logical path.
func (fs *CryptoFS) File(logicalPath string) *File {
	return &File{fs: fs, path: cleanLogicalPath(logicalPath)}
}

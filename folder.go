package cryptomator

import (
	"errors"
	"os"
	"path"
	"strings"
)

// Folder is a logical folder in the overlay namespace. It is a cheap
// handle: no I/O happens until an operation is invoked, and all state
// lives in the physical store.
type Folder struct {
	fs   *CryptoFS
	path string // logical path, "" for the root
}

// Name returns the folder's name, "" for the root.
func (f *Folder) Name() string {
	return logicalName(f.path)
}

// Path returns the logical path relative to the overlay root.
func (f *Folder) Path() string {
	return "/" + f.path
}

// IsRoot reports whether this is the logical root.
func (f *Folder) IsRoot() bool {
	return f.path == ""
}

// Parent returns the parent folder, nil for the root.
func (f *Folder) Parent() *Folder {
	parent, ok := logicalParent(f.path)
	if !ok {
		return nil
	}
	return &Folder{fs: f.fs, path: parent}
}

// Folder returns a handle on a direct or nested subfolder.
func (f *Folder) Folder(name string) *Folder {
	return &Folder{fs: f.fs, path: cleanLogicalPath(path.Join(f.path, name))}
}

// File returns a handle on a file inside this folder.
func (f *Folder) File(name string) *File {
	return &File{fs: f.fs, path: cleanLogicalPath(path.Join(f.path, name))}
}

// dirIdFilePath resolves the physical path of this folder's id file,
// which lives in the parent's physical directory. Every ancestor must
// already exist.
func (f *Folder) dirIdFilePath() (string, error) {
	if f.IsRoot() {
		return rootDirIdPath(), nil
	}

	parentID, err := f.Parent().resolveID()
	if err != nil {
		return "", err
	}

	token, err := f.fs.cryptor.EncryptFilename(f.Name())
	if err != nil {
		return "", err
	}
	return path.Join(physicalDirPath(parentID), dirEntryPrefix+token), nil
}

// resolveID reads this folder's directory id. A missing id file surfaces
// as an error satisfying os.IsNotExist.
func (f *Folder) resolveID() (string, error) {
	idFile, err := f.dirIdFilePath()
	if err != nil {
		return "", err
	}

	data, err := readPhysicalFile(f.fs.base, idFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Exists reports whether the folder's id file is present in the parent's
// physical directory and the mapped physical directory exists.
func (f *Folder) Exists() (bool, error) {
	id, err := f.resolveID()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return physicalIsDir(f.fs.base, physicalDirPath(id))
}

// Create materializes the folder. In FailIfParentMissing mode an
// incomplete ancestor chain yields ParentMissingError; IncludingParents
// creates missing ancestors first, innermost last. Creation is idempotent:
// an already existing folder keeps its id, and a partially created folder
// (id file written, physical directory missing) is completed on re-run.
func (f *Folder) Create(mode FolderCreateMode) error {
	if f.IsRoot() {
		return f.fs.createRoot()
	}

	parent := f.Parent()
	parentExists, err := parent.Exists()
	if err != nil {
		return err
	}
	if !parentExists {
		if mode == FailIfParentMissing {
			return &ParentMissingError{Path: f.path, Parent: parent.path}
		}
		if err := parent.Create(IncludingParents); err != nil {
			return err
		}
	}

	idFile, err := f.dirIdFilePath()
	if err != nil {
		return err
	}

	exists, err := physicalExists(f.fs.base, idFile)
	if err != nil {
		return err
	}

	if exists {
		// Never remint an id for an existing folder; just make sure the
		// physical directory is there.
		id, err := f.resolveID()
		if err != nil {
			return err
		}
		if err := f.fs.base.MkdirAll(physicalDirPath(id), 0700); err != nil {
			return NewIOError("mkdir", f.path, err)
		}
		return nil
	}

	id := newDirectoryID()
	physDir := physicalDirPath(id)

	occupied, err := physicalExists(f.fs.base, physDir)
	if err != nil {
		return err
	}
	if occupied {
		return &IdCollisionError{ID: id, PhysicalPath: physDir}
	}

	// Id file first, directory second: a crash in between leaves a state
	// that Create completes on the next run without minting a second id.
	if err := writePhysicalFile(f.fs.base, idFile, []byte(id)); err != nil {
		return err
	}
	if err := f.fs.base.MkdirAll(physDir, 0700); err != nil {
		return NewIOError("mkdir", f.path, err)
	}
	return nil
}

// Children enumerates the logical names of all entries, folders and files
// alike. Order is unspecified.
func (f *Folder) Children() ([]string, error) {
	folders, files, err := f.list()
	if err != nil {
		return nil, err
	}
	return append(folders, files...), nil
}

// Folders enumerates the subfolders of this folder.
func (f *Folder) Folders() ([]*Folder, error) {
	names, _, err := f.list()
	if err != nil {
		return nil, err
	}
	out := make([]*Folder, 0, len(names))
	for _, name := range names {
		out = append(out, f.Folder(name))
	}
	return out, nil
}

// Files enumerates the files of this folder.
func (f *Folder) Files() ([]*File, error) {
	_, names, err := f.list()
	if err != nil {
		return nil, err
	}
	out := make([]*File, 0, len(names))
	for _, name := range names {
		out = append(out, f.File(name))
	}
	return out, nil
}

// list reads the physical directory and decrypts every entry name.
// Entries carrying the directory prefix are folders, the rest files.
func (f *Folder) list() (folders, files []string, err error) {
	id, err := f.resolveID()
	if err != nil {
		return nil, nil, err
	}

	entries, err := listPhysicalDir(f.fs.base, physicalDirPath(id))
	if err != nil {
		return nil, nil, err
	}

	for _, entry := range entries {
		if token, ok := strings.CutPrefix(entry, dirEntryPrefix); ok {
			name, err := f.fs.cryptor.DecryptFilename(token)
			if err != nil {
				return nil, nil, err
			}
			folders = append(folders, name)
			continue
		}
		name, err := f.fs.cryptor.DecryptFilename(entry)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, name)
	}
	return folders, files, nil
}

// MoveTo relocates the folder subtree to destination. Only the id file is
// renamed; the physical directory the id maps to, and everything beneath
// it, stays untouched. The bloodline check runs before any mutation, so a
// rejected move leaves no trace.
func (f *Folder) MoveTo(destination *Folder) error {
	// Destination must not be the source itself or anywhere inside its
	// logical subtree; a cycle in the logical tree would be unrecoverable.
	for p := destination; p != nil; p = p.Parent() {
		if p.path == f.path {
			return &IllegalMoveError{Source: f.path, Destination: destination.path}
		}
	}

	srcIdFile, err := f.dirIdFilePath()
	if err != nil {
		return err
	}
	srcExists, err := physicalExists(f.fs.base, srcIdFile)
	if err != nil {
		return err
	}
	if !srcExists {
		return NewIOError("move", f.path, os.ErrNotExist)
	}

	destParent := destination.Parent()
	destParentExists, err := destParent.Exists()
	if err != nil {
		return err
	}
	if !destParentExists {
		return &ParentMissingError{Path: destination.path, Parent: destParent.path}
	}

	destIdFile, err := destination.dirIdFilePath()
	if err != nil {
		return err
	}
	destExists, err := physicalExists(f.fs.base, destIdFile)
	if err != nil {
		return err
	}
	if destExists {
		return NewIOError("move", destination.path, os.ErrExist)
	}

	// Single rename at the physical-filesystem boundary; no partial
	// writes are ever visible.
	if err := f.fs.base.Rename(srcIdFile, destIdFile); err != nil {
		return NewIOError("move", f.path, err)
	}
	return nil
}

// Delete removes the folder and its entire logical subtree, descendants
// first. Deleting a folder that does not exist is a no-op.
func (f *Folder) Delete() error {
	if f.IsRoot() {
		return NewIOError("delete", f.Path(), errors.New("cannot delete the logical root"))
	}

	exists, err := f.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	folders, err := f.Folders()
	if err != nil {
		return err
	}
	for _, sub := range folders {
		if err := sub.Delete(); err != nil {
			return err
		}
	}

	id, err := f.resolveID()
	if err != nil {
		return err
	}
	if err := f.fs.base.RemoveAll(physicalDirPath(id)); err != nil {
		return NewIOError("delete", f.path, err)
	}

	idFile, err := f.dirIdFilePath()
	if err != nil {
		return err
	}
	if err := f.fs.base.Remove(idFile); err != nil {
		return NewIOError("delete", f.path, err)
	}
	return nil
}

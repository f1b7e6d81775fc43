package cryptomator

import (
	"os"
	"path"
	"time"
)

// File is a logical file in the overlay namespace. Like Folder it is a
// cheap handle; the encrypted content lives as a single physical file in
// the parent folder's physical directory.
type File struct {
	fs   *CryptoFS
	path string
}

// Name returns the file's name.
func (f *File) Name() string {
	return logicalName(f.path)
}

// Path returns the logical path relative to the overlay root.
func (f *File) Path() string {
	return "/" + f.path
}

// Parent returns the folder containing this file.
func (f *File) Parent() *Folder {
	parent, _ := logicalParent(f.path)
	return &Folder{fs: f.fs, path: parent}
}

// physicalPath resolves the physical location of the encrypted content
// file. Every ancestor folder must exist.
func (f *File) physicalPath() (string, error) {
	parentID, err := f.Parent().resolveID()
	if err != nil {
		return "", err
	}
	token, err := f.fs.cryptor.EncryptFilename(f.Name())
	if err != nil {
		return "", err
	}
	return path.Join(physicalDirPath(parentID), token), nil
}

// Exists reports whether the encrypted content file is present.
func (f *File) Exists() (bool, error) {
	phys, err := f.physicalPath()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return physicalExists(f.fs.base, phys)
}

// LastModified returns the modification time of the physical content file.
func (f *File) LastModified() (time.Time, error) {
	phys, err := f.physicalPath()
	if err != nil {
		return time.Time{}, err
	}
	return physicalLastModified(f.fs.base, phys)
}

// Size returns the plaintext length of the file without decrypting any
// content, using the chunk framing arithmetic.
func (f *File) Size() (int64, error) {
	r, err := f.OpenReadable()
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return r.Size(), nil
}

// OpenReadable opens a positional byte source over the file's plaintext.
// The caller must Close it.
func (f *File) OpenReadable() (*ReadableFile, error) {
	phys, err := f.physicalPath()
	if err != nil {
		return nil, err
	}

	base, err := f.fs.base.OpenFile(phys, os.O_RDONLY, 0)
	if err != nil {
		return nil, NewIOError("open", f.path, err)
	}
	return newReadableFile(f.path, f.fs.cryptor, base)
}

// OpenWritable creates (or truncates) the file and opens a positional
// byte sink over its plaintext. The parent folder must exist. The caller
// must Close it to flush the final block.
func (f *File) OpenWritable() (*WritableFile, error) {
	parent := f.Parent()
	parentExists, err := parent.Exists()
	if err != nil {
		return nil, err
	}
	if !parentExists {
		return nil, &ParentMissingError{Path: f.path, Parent: parent.path}
	}

	phys, err := f.physicalPath()
	if err != nil {
		return nil, err
	}

	base, err := f.fs.base.OpenFile(phys, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, NewIOError("open", f.path, err)
	}
	return newWritableFile(f.path, f.fs.cryptor, base, f.fs.chunkSize)
}

// MoveTo renames the file to destination, replacing it if present. Moving
// a file onto itself is rejected before any mutation.
func (f *File) MoveTo(destination *File) error {
	if destination.path == f.path {
		return &IllegalMoveError{Source: f.path, Destination: destination.path}
	}

	srcPhys, err := f.physicalPath()
	if err != nil {
		return err
	}
	srcExists, err := physicalExists(f.fs.base, srcPhys)
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

	destPhys, err := destination.physicalPath()
	if err != nil {
		return err
	}
	if err := f.fs.base.Rename(srcPhys, destPhys); err != nil {
		return NewIOError("move", f.path, err)
	}
	return nil
}

// Delete removes the file. Deleting a file that does not exist is a
// no-op.
func (f *File) Delete() error {
	exists, err := f.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	phys, err := f.physicalPath()
	if err != nil {
		return err
	}
	if err := f.fs.base.Remove(phys); err != nil {
		return NewIOError("delete", f.path, err)
	}
	return nil
}

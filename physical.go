package cryptomator

import (
	"io"
	"os"
	"time"

	"github.com/absfs/absfs"
)

// Thin helpers over the physical absfs.FileSystem capability. All byte
// level I/O of the vault funnels through these.

// physicalExists reports whether a physical path exists.
func physicalExists(base absfs.FileSystem, path string) (bool, error) {
	_, err := base.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, NewIOError("stat", path, err)
}

// physicalIsDir reports whether a physical path exists and is a directory.
func physicalIsDir(base absfs.FileSystem, path string) (bool, error) {
	info, err := base.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewIOError("stat", path, err)
	}
	return info.IsDir(), nil
}

// physicalLastModified returns the modification time of a physical path.
func physicalLastModified(base absfs.FileSystem, path string) (time.Time, error) {
	info, err := base.Stat(path)
	if err != nil {
		return time.Time{}, NewIOError("stat", path, err)
	}
	return info.ModTime(), nil
}

// readPhysicalFile reads an entire physical file.
func readPhysicalFile(base absfs.FileSystem, path string) ([]byte, error) {
	f, err := base.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", path, err)
	}
	return data, nil
}

// writePhysicalFile writes an entire physical file, replacing any previous
// content.
func writePhysicalFile(base absfs.FileSystem, path string, data []byte) error {
	f, err := base.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return NewIOError("write", path, werr)
	}
	if cerr != nil {
		return NewIOError("close", path, cerr)
	}
	return nil
}

// listPhysicalDir returns the entry names of a physical directory.
func listPhysicalDir(base absfs.FileSystem, path string) ([]string, error) {
	f, err := base.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, NewIOError("open", path, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil && err != io.EOF {
		return nil, NewIOError("readdir", path, err)
	}
	return names, nil
}

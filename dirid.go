package cryptomator

import (
	"crypto/sha256"
	"encoding/base32"
	"path"

	"github.com/google/uuid"
)

// Directory-id mapping. Each logical folder owns an opaque id, minted once
// at creation and immutable for the folder's lifetime. The id is persisted
// in a small file inside the parent's physical directory, so resolving a
// folder never requires visiting the folder itself, and moving a folder is
// a rename of that one file.

// RootDirectoryID is the fixed, reserved id of the logical root.
var RootDirectoryID = uuid.Nil.String()

// dirEntryPrefix marks directory-id files inside a physical directory.
// Content files carry the bare filename token.
const dirEntryPrefix = "0"

// newDirectoryID mints a fresh directory id.
func newDirectoryID() string {
	return uuid.New().String()
}

var shardEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// physicalDirPath maps a directory id to its physical storage path under
// the data root. Pure function: the same id always yields the same path.
// The one-way digest is what decouples physical layout from the logical
// tree.
func physicalDirPath(id string) string {
	sum := sha256.Sum256([]byte(id))
	digest := shardEncoding.EncodeToString(sum[:])
	return path.Join(dataRootPath(), digest[:2], digest[2:])
}

// dataRootPath returns the physical path of the data root folder.
func dataRootPath() string {
	return path.Join("/", DataRootName)
}

// rootDirIdPath returns the physical path of the logical root's id file.
func rootDirIdPath() string {
	return path.Join(dataRootPath(), RootDirIdFilename)
}

package cryptomator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFile_ExistsAndSize(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/notes.txt")

	exists, err := file.Exists()
	require.NoError(t, err)
	require.False(t, exists)

	writeFileContent(t, file, "twelve bytes")

	exists, err = file.Exists()
	require.NoError(t, err)
	require.True(t, exists)

	size, err := file.Size()
	require.NoError(t, err)
	require.Equal(t, int64(12), size)
}

func TestFile_LastModified(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/notes.txt")

	before := time.Now().Add(-time.Second)
	writeFileContent(t, file, "v1")

	mtime, err := file.LastModified()
	require.NoError(t, err)
	require.True(t, mtime.After(before))
}

func TestFile_OverwriteTruncates(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/notes.txt")

	writeFileContent(t, file, "a considerably longer first version")
	writeFileContent(t, file, "short")

	require.Equal(t, "short", readFileContent(t, file))
}

func TestFile_WriteParentMissing(t *testing.T) {
	fs := newTestVault(t)

	_, err := fs.File("/nope/notes.txt").OpenWritable()
	if !IsParentMissingError(err) {
		t.Fatalf("expected ParentMissingError, got %v", err)
	}
}

func TestFileMove(t *testing.T) {
	fs := newTestVault(t)
	require.NoError(t, fs.Folder("/docs").Create(FailIfParentMissing))
	src := fs.File("/a.txt")
	writeFileContent(t, src, "payload")

	dst := fs.File("/docs/b.txt")
	require.NoError(t, src.MoveTo(dst))

	exists, err := src.Exists()
	require.NoError(t, err)
	require.False(t, exists)
	require.Equal(t, "payload", readFileContent(t, dst))
}

func TestFileMove_OverwritesDestination(t *testing.T) {
	fs := newTestVault(t)
	src := fs.File("/a.txt")
	dst := fs.File("/b.txt")
	writeFileContent(t, src, "new")
	writeFileContent(t, dst, "old")

	require.NoError(t, src.MoveTo(dst))
	require.Equal(t, "new", readFileContent(t, dst))
}

func TestFileMove_SelfRejected(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/a.txt")
	writeFileContent(t, file, "x")

	err := file.MoveTo(fs.File("/a.txt"))
	if !IsIllegalMoveError(err) {
		t.Fatalf("expected IllegalMoveError, got %v", err)
	}
	require.Equal(t, "x", readFileContent(t, file))
}

func TestFileDelete(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/a.txt")
	writeFileContent(t, file, "x")

	require.NoError(t, file.Delete())

	exists, err := file.Exists()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFile_PathNavigation(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/docs/a.txt")

	require.Equal(t, "a.txt", file.Name())
	require.Equal(t, "/docs/a.txt", file.Path())
	require.Equal(t, "/docs", file.Parent().Path())
}

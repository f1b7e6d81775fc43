package cryptomator

import (
	"errors"
	"io"
	"os"
	"path"
	"testing"
	"time"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"github.com/stretchr/testify/require"
)

func newTestBase(t *testing.T) absfs.FileSystem {
	t.Helper()
	base, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("failed to create memfs: %v", err)
	}
	return base
}

// lightCryptorConfig keeps the KDF cheap so tests stay fast.
func lightCryptorConfig() *CryptorConfig {
	return &CryptorConfig{
		Cipher: CipherAES256GCM,
		KDF:    KDFArgon2id,
		Argon2id: Argon2idParams{
			Memory:      64,
			Iterations:  1,
			Parallelism: 1,
		},
	}
}

func newLightCryptor(t *testing.T) *StandardCryptor {
	t.Helper()
	cryptor, err := NewStandardCryptor(lightCryptorConfig())
	if err != nil {
		t.Fatalf("failed to create cryptor: %v", err)
	}
	return cryptor
}

// newTestVault opens a pass-through vault on a fresh in-memory store and
// materializes the logical root.
func newTestVault(t *testing.T) *CryptoFS {
	t.Helper()
	fs, err := New(newTestBase(t), NewNoCryptor(), "test")
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}
	if err := fs.Create(IncludingParents); err != nil {
		t.Fatalf("failed to create vault root: %v", err)
	}
	return fs
}

// listDataRoot splits the data root's direct entries into files and
// directories.
func listDataRoot(t *testing.T, base absfs.FileSystem) (files, dirs []string) {
	t.Helper()
	names, err := listPhysicalDir(base, dataRootPath())
	if err != nil {
		t.Fatalf("failed to list data root: %v", err)
	}
	for _, name := range names {
		isDir, err := physicalIsDir(base, path.Join(dataRootPath(), name))
		if err != nil {
			t.Fatalf("failed to stat %q: %v", name, err)
		}
		if isDir {
			dirs = append(dirs, name)
		} else {
			files = append(files, name)
		}
	}
	return files, dirs
}

// countPhysicalFolders counts the sharded physical directories two levels
// below the data root, i.e. one per existing logical folder plus the root.
func countPhysicalFolders(t *testing.T, base absfs.FileSystem) int {
	t.Helper()
	_, shards := listDataRoot(t, base)
	count := 0
	for _, shard := range shards {
		children, err := listPhysicalDir(base, path.Join(dataRootPath(), shard))
		if err != nil {
			t.Fatalf("failed to list shard %q: %v", shard, err)
		}
		count += len(children)
	}
	return count
}

func writeFileContent(t *testing.T, file *File, content string) {
	t.Helper()
	w, err := file.OpenWritable()
	if err != nil {
		t.Fatalf("failed to open %q for writing: %v", file.Path(), err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write %q: %v", file.Path(), err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close %q: %v", file.Path(), err)
	}
}

func readFileContent(t *testing.T, file *File) string {
	t.Helper()
	r, err := file.OpenReadable()
	if err != nil {
		t.Fatalf("failed to open %q for reading: %v", file.Path(), err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read %q: %v", file.Path(), err)
	}
	return string(data)
}

func TestNew_BootstrapsMasterkey(t *testing.T) {
	base := newTestBase(t)

	_, err := New(base, NewNoCryptor(), "test")
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}

	for _, name := range []string{masterkeyPath(), masterkeyBackupPath()} {
		exists, err := physicalExists(base, name)
		if err != nil {
			t.Fatalf("failed to stat %q: %v", name, err)
		}
		if !exists {
			t.Errorf("expected %q to exist after bootstrap", name)
		}
	}

	key, err := readPhysicalFile(base, masterkeyPath())
	if err != nil {
		t.Fatalf("failed to read masterkey: %v", err)
	}
	backup, err := readPhysicalFile(base, masterkeyBackupPath())
	if err != nil {
		t.Fatalf("failed to read masterkey backup: %v", err)
	}
	if string(key) != string(backup) {
		t.Error("masterkey and backup should match after bootstrap")
	}
}

func TestNew_BackupAdvancesOnEveryOpen(t *testing.T) {
	base := newTestBase(t)

	var previous time.Time
	for i := 0; i < 3; i++ {
		if _, err := New(base, NewNoCryptor(), "test"); err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		mtime, err := physicalLastModified(base, masterkeyBackupPath())
		if err != nil {
			t.Fatalf("failed to stat backup: %v", err)
		}
		if i > 0 && !mtime.After(previous) {
			t.Errorf("open %d: backup mtime %v did not advance past %v", i, mtime, previous)
		}
		previous = mtime
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNew_WrongPassphrase(t *testing.T) {
	base := newTestBase(t)

	if _, err := New(base, newLightCryptor(t), "correct horse"); err != nil {
		t.Fatalf("failed to bootstrap vault: %v", err)
	}
	backupBefore, err := physicalLastModified(base, masterkeyBackupPath())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	_, err = New(base, newLightCryptor(t), "battery staple")
	if !IsInvalidPassphraseError(err) {
		t.Fatalf("expected InvalidPassphraseError, got %v", err)
	}

	// A failed open must not rotate the backup.
	backupAfter, err := physicalLastModified(base, masterkeyBackupPath())
	require.NoError(t, err)
	require.Equal(t, backupBefore, backupAfter)

	// The correct passphrase still opens the vault.
	if _, err := New(base, newLightCryptor(t), "correct horse"); err != nil {
		t.Fatalf("reopen with correct passphrase failed: %v", err)
	}
}

func TestCreate_DataRootLayout(t *testing.T) {
	base := newTestBase(t)
	fs, err := New(base, NewNoCryptor(), "test")
	if err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}

	if exists, _ := physicalExists(base, dataRootPath()); exists {
		t.Fatal("data root should not exist before Create")
	}

	if err := fs.Create(IncludingParents); err != nil {
		t.Fatalf("failed to create vault root: %v", err)
	}

	// Exactly the root id file and the root's sharded directory.
	files, dirs := listDataRoot(t, base)
	if len(files) != 1 || files[0] != RootDirIdFilename {
		t.Errorf("expected single file %q under data root, got %v", RootDirIdFilename, files)
	}
	if len(dirs) != 1 {
		t.Errorf("expected single folder under data root, got %v", dirs)
	}

	id, err := readPhysicalFile(base, rootDirIdPath())
	if err != nil {
		t.Fatalf("failed to read root id file: %v", err)
	}
	if string(id) != RootDirectoryID {
		t.Errorf("root id file holds %q, want %q", id, RootDirectoryID)
	}
}

func TestCreate_Idempotent(t *testing.T) {
	fs := newTestVault(t)

	if err := fs.Create(IncludingParents); err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	files, dirs := listDataRoot(t, fs.base)
	if len(files) != 1 || len(dirs) != 1 {
		t.Errorf("data root changed on repeated Create: files=%v dirs=%v", files, dirs)
	}
}

func TestCryptoFS_HelloWorldReadPattern(t *testing.T) {
	fs := newTestVault(t)
	file := fs.File("/test.txt")
	writeFileContent(t, file, "Hello World")

	r, err := file.OpenReadable()
	if err != nil {
		t.Fatalf("failed to open for reading: %v", err)
	}
	defer r.Close()

	first := make([]byte, 5)
	n, err := r.Read(first)
	if err != nil || n != 5 {
		t.Fatalf("first read: n=%d err=%v", n, err)
	}
	if string(first) != "Hello" {
		t.Errorf("first read got %q, want %q", first, "Hello")
	}

	second := make([]byte, 10)
	n, err = r.Read(second)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if string(second[:n]) != " World" {
		t.Errorf("second read got %q, want %q", second[:n], " World")
	}
}

func TestCryptoFS_EncryptedRoundTrip(t *testing.T) {
	base := newTestBase(t)
	fs, err := New(base, newLightCryptor(t), "secret")
	require.NoError(t, err)
	require.NoError(t, fs.Create(IncludingParents))

	file := fs.File("/doc.txt")
	writeFileContent(t, file, "attack at dawn")
	require.Equal(t, "attack at dawn", readFileContent(t, file))

	// Nothing physical carries the logical name or the plaintext.
	if exists, _ := physicalExists(base, "/doc.txt"); exists {
		t.Error("logical name leaked into the physical store")
	}
}

func TestCryptoFS_ReopenSeesExistingData(t *testing.T) {
	base := newTestBase(t)
	fs, err := New(base, newLightCryptor(t), "secret")
	require.NoError(t, err)
	require.NoError(t, fs.Create(IncludingParents))

	require.NoError(t, fs.Folder("/docs").Create(FailIfParentMissing))
	writeFileContent(t, fs.File("/docs/a.txt"), "persisted")

	reopened, err := New(base, newLightCryptor(t), "secret")
	require.NoError(t, err)

	exists, err := reopened.Folder("/docs").Exists()
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "persisted", readFileContent(t, reopened.File("/docs/a.txt")))
}

func TestCryptoFS_FileNotFound(t *testing.T) {
	fs := newTestVault(t)

	_, err := fs.File("/missing.txt").OpenReadable()
	if err == nil {
		t.Fatal("expected error opening a missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

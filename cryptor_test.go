package cryptomator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoCryptor_Identity(t *testing.T) {
	c := NewNoCryptor()

	token, err := c.EncryptFilename("report.pdf")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", token)

	name, err := c.DecryptFilename(token)
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)

	sealed, err := c.SealChunk(nil, []byte("plaintext"))
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), sealed)

	opened, err := c.OpenChunk(nil, sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), opened)

	require.Zero(t, c.NonceSize())
	require.Zero(t, c.Overhead())
}

func TestStandardCryptor_ChunkSealAndOpen(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())

	nonce, err := generateNonce(c.NonceSize())
	require.NoError(t, err)

	sealed, err := c.SealChunk(nonce, []byte("the quick brown fox"))
	require.NoError(t, err)
	require.Len(t, sealed, len("the quick brown fox")+c.Overhead())
	require.NotContains(t, string(sealed), "quick brown")

	opened, err := c.OpenChunk(nonce, sealed)
	require.NoError(t, err)
	require.Equal(t, "the quick brown fox", string(opened))
}

func TestStandardCryptor_TamperedChunkRejected(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())

	nonce, err := generateNonce(c.NonceSize())
	require.NoError(t, err)
	sealed, err := c.SealChunk(nonce, []byte("data"))
	require.NoError(t, err)

	sealed[0] ^= 0x80
	_, err = c.OpenChunk(nonce, sealed)
	require.Error(t, err)
}

func TestStandardCryptor_FilenameTokens(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())

	token, err := c.EncryptFilename("holiday photos")
	require.NoError(t, err)
	require.NotEqual(t, "holiday photos", token)

	// Deterministic: the same name always maps to the same token.
	again, err := c.EncryptFilename("holiday photos")
	require.NoError(t, err)
	require.Equal(t, token, again)

	other, err := c.EncryptFilename("holiday photos 2")
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	name, err := c.DecryptFilename(token)
	require.NoError(t, err)
	require.Equal(t, "holiday photos", name)
}

func TestStandardCryptor_FilenameTokensNeverCollideWithDirPrefix(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())

	// Token alphabet must exclude the directory-entry prefix so folder id
	// files are always distinguishable from content files.
	for _, name := range []string{"a", "0", "00", "zero0", "file.txt"} {
		token, err := c.EncryptFilename(name)
		require.NoError(t, err)
		require.NotContains(t, token, dirEntryPrefix, "token for %q", name)
	}
}

func TestStandardCryptor_WrapUnwrapRoundTrip(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())
	token, err := c.EncryptFilename("probe")
	require.NoError(t, err)

	wrapped, err := c.WrapMasterkey("hunter2")
	require.NoError(t, err)
	require.False(t, bytes.Contains(wrapped, c.masterKey))

	restored := newLightCryptor(t)
	require.NoError(t, restored.UnwrapMasterkey(wrapped, "hunter2"))

	// Same key material: filename tokens agree.
	token2, err := restored.EncryptFilename("probe")
	require.NoError(t, err)
	require.Equal(t, token, token2)
}

func TestStandardCryptor_UnwrapWrongPassphrase(t *testing.T) {
	c := newLightCryptor(t)
	require.NoError(t, c.RandomizeMasterkey())
	wrapped, err := c.WrapMasterkey("right")
	require.NoError(t, err)

	err = newLightCryptor(t).UnwrapMasterkey(wrapped, "wrong")
	if !IsInvalidPassphraseError(err) {
		t.Fatalf("expected InvalidPassphraseError, got %v", err)
	}
}

func TestStandardCryptor_UnwrapGarbage(t *testing.T) {
	c := newLightCryptor(t)
	require.Error(t, c.UnwrapMasterkey([]byte("{not json"), "pw"))
	require.Error(t, c.UnwrapMasterkey([]byte(`{"version":99}`), "pw"))
}

func TestStandardCryptor_ChaCha20Poly1305(t *testing.T) {
	cfg := lightCryptorConfig()
	cfg.Cipher = CipherChaCha20Poly1305
	c, err := NewStandardCryptor(cfg)
	require.NoError(t, err)
	require.NoError(t, c.RandomizeMasterkey())

	nonce, err := generateNonce(c.NonceSize())
	require.NoError(t, err)
	sealed, err := c.SealChunk(nonce, []byte("chacha sealed"))
	require.NoError(t, err)
	opened, err := c.OpenChunk(nonce, sealed)
	require.NoError(t, err)
	require.Equal(t, "chacha sealed", string(opened))
}

func TestStandardCryptor_PBKDF2Wrap(t *testing.T) {
	cfg := lightCryptorConfig()
	cfg.KDF = KDFPBKDF2
	cfg.PBKDF2 = PBKDF2Params{Iterations: 1000}
	c, err := NewStandardCryptor(cfg)
	require.NoError(t, err)
	require.NoError(t, c.RandomizeMasterkey())

	wrapped, err := c.WrapMasterkey("pw")
	require.NoError(t, err)

	// KDF parameters travel in the key file, not in the unwrapping
	// cryptor's config.
	restored := newLightCryptor(t)
	require.NoError(t, restored.UnwrapMasterkey(wrapped, "pw"))
	require.Equal(t, c.masterKey, restored.masterKey)
}

func TestStandardCryptor_RejectsInvalidConfig(t *testing.T) {
	_, err := NewStandardCryptor(&CryptorConfig{Cipher: CipherSuite(99)})
	require.Error(t, err)
}

package cryptomator

// Cryptor supplies all cryptographic primitives consumed by the vault:
// deterministic filename tokens, AEAD sealing of content chunks, and
// wrapping of the master key under a passphrase. The vault itself never
// touches key material directly.
type Cryptor interface {
	// EncryptFilename encrypts a logical name into a stable,
	// filesystem-safe token. Deterministic per key: the same name always
	// yields the same token.
	EncryptFilename(name string) (string, error)

	// DecryptFilename recovers the logical name from a token
	DecryptFilename(token string) (string, error)

	// SealChunk seals one plaintext block into a ciphertext chunk
	SealChunk(nonce, plaintext []byte) ([]byte, error)

	// OpenChunk opens one ciphertext chunk, verifying its integrity
	OpenChunk(nonce, ciphertext []byte) ([]byte, error)

	// NonceSize returns the per-chunk nonce size in bytes
	NonceSize() int

	// Overhead returns the per-chunk authentication overhead in bytes
	Overhead() int

	// RandomizeMasterkey replaces the cryptor's key material with a
	// freshly generated master key
	RandomizeMasterkey() error

	// WrapMasterkey serializes the master key wrapped under a
	// passphrase-derived key
	WrapMasterkey(passphrase string) ([]byte, error)

	// UnwrapMasterkey loads key material from a wrapped blob. Returns
	// *InvalidPassphraseError if authentication fails.
	UnwrapMasterkey(wrapped []byte, passphrase string) error
}

// NoCryptor is an identity-transform Cryptor for testing the overlay
// without cryptography. Names and chunks pass through unchanged, nonces
// and authentication overhead are zero-sized, and any passphrase unwraps
// the (empty) master key.
type NoCryptor struct{}

// NewNoCryptor creates a pass-through cryptor
func NewNoCryptor() *NoCryptor {
	return &NoCryptor{}
}

func (n *NoCryptor) EncryptFilename(name string) (string, error) {
	return name, nil
}

func (n *NoCryptor) DecryptFilename(token string) (string, error) {
	return token, nil
}

func (n *NoCryptor) SealChunk(nonce, plaintext []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	copy(out, plaintext)
	return out, nil
}

func (n *NoCryptor) OpenChunk(nonce, ciphertext []byte) ([]byte, error) {
	out := make([]byte, len(ciphertext))
	copy(out, ciphertext)
	return out, nil
}

func (n *NoCryptor) NonceSize() int {
	return 0
}

func (n *NoCryptor) Overhead() int {
	return 0
}

func (n *NoCryptor) RandomizeMasterkey() error {
	return nil
}

func (n *NoCryptor) WrapMasterkey(passphrase string) ([]byte, error) {
	return []byte("{\"version\":1,\"cipher\":\"none\"}\n"), nil
}

func (n *NoCryptor) UnwrapMasterkey(wrapped []byte, passphrase string) error {
	return nil
}

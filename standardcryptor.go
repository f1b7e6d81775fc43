package cryptomator

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	masterkeySize     = 32
	masterkeySaltSize = 32

	keyFileVersion = 1
)

// StandardCryptor is the production Cryptor: content chunks are sealed
// with an AEAD suite (AES-256-GCM or ChaCha20-Poly1305), filename tokens
// with AES-SIV, and the master key is wrapped under a passphrase-derived
// key (Argon2id by default).
type StandardCryptor struct {
	config *CryptorConfig

	masterKey []byte
	engine    CipherEngine
	siv       *sivEngine
}

// keyFile is the serialized form of a wrapped master key.
type keyFile struct {
	Version    int             `json:"version"`
	Cipher     string          `json:"cipher"`
	KDF        string          `json:"kdf"`
	Salt       string          `json:"salt"`
	Argon2id   *argon2idRecord `json:"argon2id,omitempty"`
	PBKDF2     *pbkdf2Record   `json:"pbkdf2,omitempty"`
	Nonce      string          `json:"nonce"`
	WrappedKey string          `json:"wrappedKey"`
}

type argon2idRecord struct {
	Memory      uint32 `json:"memory"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

type pbkdf2Record struct {
	Iterations int `json:"iterations"`
}

// NewStandardCryptor creates a cryptor with the given configuration. A nil
// config selects DefaultCryptorConfig. The cryptor holds no key material
// until RandomizeMasterkey or UnwrapMasterkey is called.
func NewStandardCryptor(config *CryptorConfig) (*StandardCryptor, error) {
	if config == nil {
		config = DefaultCryptorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cryptor config: %w", err)
	}
	return &StandardCryptor{config: config}, nil
}

// RandomizeMasterkey replaces the key material with a fresh random key.
func (c *StandardCryptor) RandomizeMasterkey() error {
	key := make([]byte, masterkeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	return c.setMasterkey(key)
}

// setMasterkey installs key material and derives the content and filename
// engines from it.
func (c *StandardCryptor) setMasterkey(key []byte) error {
	engine, err := NewCipherEngine(c.config.Cipher, key)
	if err != nil {
		return err
	}

	// The filename key is derived, not reused, so content and filename
	// encryption never share a key.
	sivKey := make([]byte, 64)
	kdf := hkdf.New(sha256.New, key, nil, []byte("filename-siv"))
	if _, err := io.ReadFull(kdf, sivKey); err != nil {
		return fmt.Errorf("failed to derive filename key: %w", err)
	}

	siv, err := newSIVEngine(sivKey)
	if err != nil {
		return err
	}

	c.masterKey = key
	c.engine = engine
	c.siv = siv
	return nil
}

// deriveKEK derives the key-encryption key from a passphrase and salt.
func (c *StandardCryptor) deriveKEK(passphrase string, salt []byte) []byte {
	switch c.config.KDF {
	case KDFPBKDF2:
		return pbkdf2.Key([]byte(passphrase), salt, c.config.PBKDF2.Iterations, masterkeySize, sha512.New)
	default:
		p := c.config.Argon2id
		return argon2.IDKey([]byte(passphrase), salt, p.Iterations, p.Memory, p.Parallelism, masterkeySize)
	}
}

// WrapMasterkey serializes the master key wrapped under the passphrase.
func (c *StandardCryptor) WrapMasterkey(passphrase string) ([]byte, error) {
	if c.masterKey == nil {
		return nil, fmt.Errorf("no master key material to wrap")
	}

	salt := make([]byte, masterkeySaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	kek := c.deriveKEK(passphrase, salt)
	wrapEngine, err := NewCipherEngine(c.config.Cipher, kek)
	if err != nil {
		return nil, err
	}

	nonce, err := generateNonce(wrapEngine.NonceSize())
	if err != nil {
		return nil, err
	}

	wrapped, err := wrapEngine.Encrypt(nonce, c.masterKey)
	if err != nil {
		return nil, err
	}

	kf := keyFile{
		Version:    keyFileVersion,
		Cipher:     c.config.Cipher.String(),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		WrappedKey: base64.StdEncoding.EncodeToString(wrapped),
	}
	switch c.config.KDF {
	case KDFPBKDF2:
		kf.KDF = "pbkdf2"
		kf.PBKDF2 = &pbkdf2Record{Iterations: c.config.PBKDF2.Iterations}
	default:
		kf.KDF = "argon2id"
		kf.Argon2id = &argon2idRecord{
			Memory:      c.config.Argon2id.Memory,
			Iterations:  c.config.Argon2id.Iterations,
			Parallelism: c.config.Argon2id.Parallelism,
		}
	}

	return json.MarshalIndent(&kf, "", "  ")
}

// UnwrapMasterkey loads key material from a wrapped key file. Returns
// *InvalidPassphraseError when the passphrase does not authenticate.
func (c *StandardCryptor) UnwrapMasterkey(wrapped []byte, passphrase string) error {
	var kf keyFile
	if err := json.Unmarshal(wrapped, &kf); err != nil {
		return fmt.Errorf("malformed key file: %w", err)
	}
	if kf.Version != keyFileVersion {
		return ErrUnsupportedVersion
	}

	salt, err := base64.StdEncoding.DecodeString(kf.Salt)
	if err != nil {
		return fmt.Errorf("malformed key file salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(kf.Nonce)
	if err != nil {
		return fmt.Errorf("malformed key file nonce: %w", err)
	}
	blob, err := base64.StdEncoding.DecodeString(kf.WrappedKey)
	if err != nil {
		return fmt.Errorf("malformed wrapped key: %w", err)
	}

	// Derive the KEK with the parameters recorded in the file, not the
	// configured ones, so older vaults stay readable after config changes.
	var kek []byte
	switch kf.KDF {
	case "pbkdf2":
		if kf.PBKDF2 == nil {
			return fmt.Errorf("key file missing pbkdf2 parameters")
		}
		kek = pbkdf2.Key([]byte(passphrase), salt, kf.PBKDF2.Iterations, masterkeySize, sha512.New)
	case "argon2id":
		if kf.Argon2id == nil {
			return fmt.Errorf("key file missing argon2id parameters")
		}
		p := kf.Argon2id
		kek = argon2.IDKey([]byte(passphrase), salt, p.Iterations, p.Memory, p.Parallelism, masterkeySize)
	default:
		return fmt.Errorf("unsupported key derivation function %q", kf.KDF)
	}

	suite, err := cipherSuiteFromString(kf.Cipher)
	if err != nil {
		return err
	}
	wrapEngine, err := NewCipherEngine(suite, kek)
	if err != nil {
		return err
	}

	key, err := wrapEngine.Decrypt(nonce, blob)
	if err != nil {
		return &InvalidPassphraseError{Err: err}
	}

	return c.setMasterkey(key)
}

// EncryptFilename encrypts a logical name into a stable token. Tokens are
// base32 so they stay filesystem-safe and can never start with the "0"
// directory-entry marker (the base32 alphabet has no zero).
func (c *StandardCryptor) EncryptFilename(name string) (string, error) {
	if c.siv == nil {
		return "", fmt.Errorf("cryptor has no key material")
	}
	token, err := c.siv.Seal([]byte(name))
	if err != nil {
		return "", err
	}
	return shardEncoding.EncodeToString(token), nil
}

// DecryptFilename recovers the logical name from a token.
func (c *StandardCryptor) DecryptFilename(token string) (string, error) {
	if c.siv == nil {
		return "", fmt.Errorf("cryptor has no key material")
	}
	data, err := shardEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("malformed filename token: %w", err)
	}
	name, err := c.siv.Open(data)
	if err != nil {
		return "", err
	}
	return string(name), nil
}

// SealChunk seals one plaintext block into a ciphertext chunk.
func (c *StandardCryptor) SealChunk(nonce, plaintext []byte) ([]byte, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("cryptor has no key material")
	}
	return c.engine.Encrypt(nonce, plaintext)
}

// OpenChunk opens one ciphertext chunk, verifying integrity.
func (c *StandardCryptor) OpenChunk(nonce, ciphertext []byte) ([]byte, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("cryptor has no key material")
	}
	return c.engine.Decrypt(nonce, ciphertext)
}

// NonceSize returns the per-chunk nonce size.
func (c *StandardCryptor) NonceSize() int {
	if c.engine != nil {
		return c.engine.NonceSize()
	}
	// Both supported AEAD suites use 12-byte nonces.
	return 12
}

// Overhead returns the per-chunk authentication overhead.
func (c *StandardCryptor) Overhead() int {
	if c.engine != nil {
		return c.engine.Overhead()
	}
	return 16
}

func cipherSuiteFromString(s string) (CipherSuite, error) {
	switch s {
	case "aes-256-gcm":
		return CipherAES256GCM, nil
	case "chacha20-poly1305":
		return CipherChaCha20Poly1305, nil
	default:
		return 0, ErrUnsupportedCipher
	}
}

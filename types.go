package cryptomator

import "errors"

// FolderCreateMode controls how Create treats missing ancestors.
type FolderCreateMode uint8

const (
	// FailIfParentMissing rejects creation when any ancestor does not exist
	FailIfParentMissing FolderCreateMode = iota
	// IncludingParents creates every missing ancestor, innermost last
	IncludingParents
)

// String returns the string representation of the create mode
func (m FolderCreateMode) String() string {
	switch m {
	case FailIfParentMissing:
		return "fail-if-parent-missing"
	case IncludingParents:
		return "including-parents"
	default:
		return "unknown"
	}
}

// CipherSuite represents the content encryption algorithm used by
// StandardCryptor.
type CipherSuite uint8

const (
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode
	CipherAES256GCM CipherSuite = iota
	// CipherChaCha20Poly1305 uses ChaCha20 stream cipher with Poly1305 MAC
	CipherChaCha20Poly1305
)

// String returns the string representation of the cipher suite
func (c CipherSuite) String() string {
	switch c {
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// KDF identifies the key derivation function used to wrap the master key.
type KDF uint8

const (
	// KDFArgon2id is the recommended memory-hard KDF
	KDFArgon2id KDF = iota
	// KDFPBKDF2 is kept for vaults written by older tooling
	KDFPBKDF2
)

// Argon2idParams contains parameters for Argon2id key derivation
type Argon2idParams struct {
	Memory      uint32 // Memory in KiB (e.g., 64*1024 for 64MB)
	Iterations  uint32 // Number of iterations (time parameter)
	Parallelism uint8  // Degree of parallelism
}

// PBKDF2Params contains parameters for PBKDF2 key derivation
type PBKDF2Params struct {
	Iterations int // Number of iterations (minimum 100,000 recommended)
}

// CryptorConfig configures a StandardCryptor.
type CryptorConfig struct {
	// Cipher suite for content chunks
	Cipher CipherSuite

	// KDF selects the passphrase key derivation function
	KDF KDF

	// Argon2id holds parameters for KDFArgon2id
	Argon2id Argon2idParams

	// PBKDF2 holds parameters for KDFPBKDF2
	PBKDF2 PBKDF2Params
}

// DefaultCryptorConfig returns the recommended configuration: AES-256-GCM
// content encryption with Argon2id key wrapping.
func DefaultCryptorConfig() *CryptorConfig {
	return &CryptorConfig{
		Cipher: CipherAES256GCM,
		KDF:    KDFArgon2id,
		Argon2id: Argon2idParams{
			Memory:      64 * 1024,
			Iterations:  3,
			Parallelism: 4,
		},
		PBKDF2: PBKDF2Params{
			Iterations: 210000,
		},
	}
}

// Validate checks if the configuration is valid
func (c *CryptorConfig) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}
	if c.Cipher != CipherAES256GCM && c.Cipher != CipherChaCha20Poly1305 {
		return ErrUnsupportedCipher
	}
	if c.KDF != KDFArgon2id && c.KDF != KDFPBKDF2 {
		return errors.New("unsupported key derivation function")
	}
	return nil
}

// Persisted vault layout names.
const (
	// MasterkeyFilename is the wrapped master key file at the vault root
	MasterkeyFilename = "masterkey"

	// MasterkeyBackupSuffix is appended to MasterkeyFilename for the
	// rotating last-known-good copy
	MasterkeyBackupSuffix = ".bkup"

	// DataRootName is the folder holding all digest-sharded directories
	DataRootName = "data"

	// RootDirIdFilename is the id file of the logical root, stored
	// directly under the data root since the root has no logical parent
	RootDirIdFilename = "ROOT"
)

package cryptomator

import (
	"path"

	"github.com/absfs/absfs"
)

// Master key lifecycle. Opening a vault either bootstraps a fresh wrapped
// master key or validates the existing one against the passphrase, and in
// both cases refreshes the backup file so its modification time strictly
// advances on every successful open. The backup therefore always holds the
// most recently *validated* key material, which is what makes it a usable
// recovery point if the live key file is later corrupted.

// masterkeyPath returns the physical path of the wrapped master key file.
func masterkeyPath() string {
	return path.Join("/", MasterkeyFilename)
}

// masterkeyBackupPath returns the physical path of the rotating backup.
func masterkeyBackupPath() string {
	return masterkeyPath() + MasterkeyBackupSuffix
}

// openMasterkey bootstraps or validates the vault's master key.
//
// Fresh vault: a new master key is generated, wrapped under the
// passphrase, persisted, and copied to the backup path. Existing vault:
// the key file is unwrapped (authenticating the passphrase) and then
// copied over the backup. Exactly one backup write happens per successful
// open; none on a failed unwrap.
func openMasterkey(base absfs.FileSystem, cryptor Cryptor, passphrase string) error {
	keyPath := masterkeyPath()

	exists, err := physicalExists(base, keyPath)
	if err != nil {
		return NewBootstrapError(keyPath, err)
	}

	if !exists {
		if err := cryptor.RandomizeMasterkey(); err != nil {
			return NewBootstrapError(keyPath, err)
		}
		wrapped, err := cryptor.WrapMasterkey(passphrase)
		if err != nil {
			return NewBootstrapError(keyPath, err)
		}
		if err := writePhysicalFile(base, keyPath, wrapped); err != nil {
			return NewBootstrapError(keyPath, err)
		}
		if err := writePhysicalFile(base, masterkeyBackupPath(), wrapped); err != nil {
			return NewBootstrapError(masterkeyBackupPath(), err)
		}
		return nil
	}

	wrapped, err := readPhysicalFile(base, keyPath)
	if err != nil {
		return NewBootstrapError(keyPath, err)
	}

	// Passphrase check happens before any mutation: a failed unwrap must
	// leave the backup at its prior state.
	if err := cryptor.UnwrapMasterkey(wrapped, passphrase); err != nil {
		return err
	}

	if err := writePhysicalFile(base, masterkeyBackupPath(), wrapped); err != nil {
		return NewBootstrapError(masterkeyBackupPath(), err)
	}
	return nil
}

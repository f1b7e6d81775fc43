// Package cryptomator implements a transparent, encrypted overlay
// filesystem on top of the AbsFs filesystem abstraction. It presents a
// conventional file/folder API while storing all content and directory
// structure, encrypted and obfuscated, inside an arbitrary physical
// filesystem.
//
// # Overview
//
// A vault occupies the root of a physical absfs.FileSystem and consists of
// a masterkey file, a rotating masterkey.bkup file, and a data folder:
//
//	/masterkey       wrapped master key, created on first open
//	/masterkey.bkup  last-known-good copy, refreshed on every open
//	/data/ROOT       directory-id file of the logical root
//	/data/XX/YYYY…   digest-sharded physical directories
//
// Every logical folder owns an opaque directory id, minted once at
// creation time and persisted in a small id file inside the *parent's*
// physical directory. The physical location of a folder's contents is
// derived from the id by a one-way digest, so moving or renaming a folder
// is a single id-file rename: none of the ciphertext below it is touched,
// and an observer of the physical store learns nothing about the logical
// tree.
//
// # Basic Usage
//
//	base, _ := memfs.NewFS()
//	cryptor, _ := cryptomator.NewStandardCryptor(nil)
//
//	fs, err := cryptomator.New(base, cryptor, "correct horse battery staple")
//	if err != nil {
//	    panic(err)
//	}
//	if err := fs.Create(cryptomator.IncludingParents); err != nil {
//	    panic(err)
//	}
//
//	folder := fs.Folder("docs/reports")
//	_ = folder.Create(cryptomator.IncludingParents)
//
//	w, _ := fs.File("docs/reports/q3.txt").OpenWritable()
//	w.Write([]byte("quarterly numbers"))
//	w.Close()
//
// # Cryptor Capability
//
// All cryptographic work is delegated to the Cryptor interface: filename
// token encryption, AEAD sealing of content chunks, and wrapping of the
// master key under a passphrase. StandardCryptor provides an AES-SIV /
// AES-256-GCM (or ChaCha20-Poly1305) implementation with Argon2id key
// derivation; NoCryptor is an identity transform for tests.
//
// # Concurrency
//
// A vault instance does not serialize concurrent callers and assumes
// exclusive single-writer access to its physical store for the duration of
// any mutating operation. Callers needing concurrent access must wrap the
// vault with their own locking, keyed by logical path.
package cryptomator

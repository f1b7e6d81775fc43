package cryptomator

import (
	"errors"
	"fmt"
)

// Error types represent the failure categories surfaced by the vault.
// They are returned unmodified to the caller; nothing is swallowed or
// retried internally.

// BootstrapError indicates that the master key file could not be created
// or read during vault initialization.
type BootstrapError struct {
	Path    string // Physical path of the master key or backup file
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *BootstrapError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bootstrap error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("bootstrap error: %s", e.Message)
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// InvalidPassphraseError indicates that unwrapping the master key failed
// authentication. Fatal to the open call, never retried.
type InvalidPassphraseError struct {
	Err error
}

func (e *InvalidPassphraseError) Error() string {
	return "invalid passphrase: master key authentication failed"
}

func (e *InvalidPassphraseError) Unwrap() error {
	return e.Err
}

// IllegalMoveError indicates an attempted move of a folder into itself or
// one of its own descendants (a bloodline move). Rejected before any
// physical mutation.
type IllegalMoveError struct {
	Source      string // Logical path of the move source
	Destination string // Logical path of the move destination
}

func (e *IllegalMoveError) Error() string {
	if e.Source == e.Destination {
		return fmt.Sprintf("illegal move: %q onto itself", e.Source)
	}
	return fmt.Sprintf("illegal move: %q into its own subtree at %q", e.Source, e.Destination)
}

// ParentMissingError indicates a strict-mode create whose ancestor chain
// is incomplete.
type ParentMissingError struct {
	Path   string // Logical path being created
	Parent string // Logical path of the missing ancestor
}

func (e *ParentMissingError) Error() string {
	return fmt.Sprintf("parent missing: cannot create %q, ancestor %q does not exist", e.Path, e.Parent)
}

// IdCollisionError indicates that the digest mapping of a freshly minted
// directory id resolved to an already existing physical directory. This is
// a defensive check; under a sound digest it should never occur.
type IdCollisionError struct {
	ID           string // The colliding directory id
	PhysicalPath string // The physical path both ids map to
}

func (e *IdCollisionError) Error() string {
	return fmt.Sprintf("directory id collision: id %q maps to occupied physical path %q", e.ID, e.PhysicalPath)
}

// AuthenticationError indicates that a content chunk failed integrity
// verification on read: the ciphertext was tampered with, corrupted, or
// sealed under a different key.
type AuthenticationError struct {
	Path    string // Logical path of the file
	Chunk   int64  // Index of the failing chunk
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *AuthenticationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("authentication error: %s (chunk %d): %s", e.Path, e.Chunk, e.Message)
	}
	return fmt.Sprintf("authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IOError wraps any underlying physical filesystem failure.
type IOError struct {
	Operation string // "read", "write", "rename", "mkdir", etc.
	Path      string // Physical or logical path, whichever is known
	Message   string // Human-readable error message
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("io error: %s %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Common sentinel errors.
var (
	ErrAuthFailed         = errors.New("authentication failed - data may be corrupted or tampered")
	ErrInvalidHeader      = errors.New("invalid file header")
	ErrUnsupportedVersion = errors.New("unsupported file format version")
	ErrUnsupportedCipher  = errors.New("unsupported cipher suite")
	ErrNilBuffer          = errors.New("buffer cannot be nil")
	ErrClosed             = errors.New("stream already closed")
)

// Helper constructors

// NewBootstrapError creates a new bootstrap error.
func NewBootstrapError(path string, err error) error {
	return &BootstrapError{Path: path, Message: err.Error(), Err: err}
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(path string, chunk int64, err error) error {
	return &AuthenticationError{Path: path, Chunk: chunk, Message: err.Error(), Err: err}
}

// NewIOError creates a new I/O error.
func NewIOError(operation, path string, err error) error {
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// Error checking helpers

// IsBootstrapError checks if an error is a bootstrap error.
func IsBootstrapError(err error) bool {
	var be *BootstrapError
	return errors.As(err, &be)
}

// IsInvalidPassphraseError checks if an error is an invalid passphrase error.
func IsInvalidPassphraseError(err error) bool {
	var pe *InvalidPassphraseError
	return errors.As(err, &pe)
}

// IsIllegalMoveError checks if an error is an illegal move error.
func IsIllegalMoveError(err error) bool {
	var me *IllegalMoveError
	return errors.As(err, &me)
}

// IsParentMissingError checks if an error is a parent missing error.
func IsParentMissingError(err error) bool {
	var pe *ParentMissingError
	return errors.As(err, &pe)
}

// IsIdCollisionError checks if an error is a directory id collision error.
func IsIdCollisionError(err error) bool {
	var ce *IdCollisionError
	return errors.As(err, &ce)
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}

// IsIOError checks if an error is an I/O error.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

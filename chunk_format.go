package cryptomator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encrypted file layout:
//
// ┌─────────────────────────────────────┐
// │ File Header (16 bytes)              │ <- magic, version, chunk size
// ├─────────────────────────────────────┤
// │ Frame 0:  nonce ‖ ciphertext+tag    │ <- full plaintext chunk
// ├─────────────────────────────────────┤
// │ Frame 1:  nonce ‖ ciphertext+tag    │
// ├─────────────────────────────────────┤
// │ Frame N:  nonce ‖ ciphertext+tag    │ <- last chunk may be short
// └─────────────────────────────────────┘
//
// Every frame except the last seals exactly ChunkSize plaintext bytes, so
// chunk boundaries are stable regardless of access pattern and the
// plaintext length is recoverable from the ciphertext length alone — no
// index is stored.

const (
	// fileMagic identifies encrypted vault files (ASCII "CVLT")
	fileMagic = uint32(0x43564C54)

	// CurrentVersion is the current file format version
	CurrentVersion = uint8(1)

	// fileHeaderSize is the fixed on-disk header size:
	// 4 (magic) + 1 (version) + 4 (chunk size) + 7 (reserved)
	fileHeaderSize = 16

	// DefaultChunkSize is the default plaintext chunk size (32 KB)
	DefaultChunkSize = 32 * 1024

	// MinChunkSize is the minimum allowed chunk size (small, for testing)
	MinChunkSize = 16

	// MaxChunkSize is the maximum allowed chunk size (16 MB)
	MaxChunkSize = 16 * 1024 * 1024
)

// FileHeader is the fixed header written once at file creation.
type FileHeader struct {
	Magic     uint32 // Identifies encrypted vault files
	Version   uint8  // File format version
	ChunkSize uint32 // Plaintext chunk size, constant for the file
}

// NewFileHeader creates a header for a new encrypted file.
func NewFileHeader(chunkSize uint32) *FileHeader {
	return &FileHeader{
		Magic:     fileMagic,
		Version:   CurrentVersion,
		ChunkSize: chunkSize,
	}
}

// WriteTo writes the header to a writer.
func (h *FileHeader) WriteTo(w io.Writer) (int64, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, h.Magic); err != nil {
		return 0, fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.Version); err != nil {
		return 0, fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, h.ChunkSize); err != nil {
		return 0, fmt.Errorf("failed to write chunk size: %w", err)
	}
	buf.Write(make([]byte, fileHeaderSize-buf.Len()))

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// ReadFrom reads the header from a reader.
func (h *FileHeader) ReadFrom(r io.Reader) (int64, error) {
	raw := make([]byte, fileHeaderSize)
	n, err := io.ReadFull(r, raw)
	if err != nil {
		return int64(n), fmt.Errorf("failed to read file header: %w", err)
	}

	h.Magic = binary.LittleEndian.Uint32(raw[0:4])
	h.Version = raw[4]
	h.ChunkSize = binary.LittleEndian.Uint32(raw[5:9])
	return int64(n), nil
}

// Validate checks the header fields.
func (h *FileHeader) Validate() error {
	if h.Magic != fileMagic {
		return ErrInvalidHeader
	}
	if h.Version != CurrentVersion {
		return ErrUnsupportedVersion
	}
	return ValidateChunkSize(h.ChunkSize)
}

// ValidateChunkSize validates that a chunk size is within bounds.
func ValidateChunkSize(size uint32) error {
	if size < MinChunkSize {
		return fmt.Errorf("chunk size %d below minimum %d", size, MinChunkSize)
	}
	if size > MaxChunkSize {
		return fmt.Errorf("chunk size %d above maximum %d", size, MaxChunkSize)
	}
	return nil
}

// chunkLayout holds the framing arithmetic for one encrypted file. All
// functions are pure; the layout never does I/O.
type chunkLayout struct {
	chunkSize int64 // plaintext bytes per full chunk
	nonceSize int64 // per-frame nonce prefix
	overhead  int64 // authentication tag size
}

func newChunkLayout(chunkSize uint32, cryptor Cryptor) chunkLayout {
	return chunkLayout{
		chunkSize: int64(chunkSize),
		nonceSize: int64(cryptor.NonceSize()),
		overhead:  int64(cryptor.Overhead()),
	}
}

// frameExtra is the per-frame ciphertext expansion.
func (l chunkLayout) frameExtra() int64 {
	return l.nonceSize + l.overhead
}

// frameSize is the on-disk size of a full frame.
func (l chunkLayout) frameSize() int64 {
	return l.chunkSize + l.frameExtra()
}

// frameOffset returns the physical offset of frame idx.
func (l chunkLayout) frameOffset(idx int64) int64 {
	return fileHeaderSize + idx*l.frameSize()
}

// chunkForOffset maps a plaintext position to its chunk index and the
// offset within that chunk.
func (l chunkLayout) chunkForOffset(pos int64) (idx, within int64) {
	return pos / l.chunkSize, pos % l.chunkSize
}

// frameLen returns the on-disk length of frame idx given the total frame
// body size (physical size minus header). The last frame may be short.
func (l chunkLayout) frameLen(idx, bodySize int64) int64 {
	remaining := bodySize - idx*l.frameSize()
	if remaining > l.frameSize() {
		return l.frameSize()
	}
	return remaining
}

// plaintextSize recovers the total plaintext length from the frame body
// size. Fails if the ciphertext length is inconsistent with the framing.
func (l chunkLayout) plaintextSize(bodySize int64) (int64, error) {
	if bodySize == 0 {
		return 0, nil
	}
	if bodySize < 0 {
		return 0, ErrInvalidHeader
	}

	full := l.frameSize()
	n := (bodySize + full - 1) / full
	last := bodySize - (n-1)*full
	lastPlain := last - l.frameExtra()
	if lastPlain <= 0 {
		return 0, fmt.Errorf("ciphertext length %d inconsistent with chunk framing: %w", bodySize, ErrInvalidHeader)
	}
	return (n-1)*l.chunkSize + lastPlain, nil
}

// chunkCount returns the number of frames holding the given plaintext
// length.
func (l chunkLayout) chunkCount(plaintextSize int64) int64 {
	if plaintextSize == 0 {
		return 0
	}
	return (plaintextSize + l.chunkSize - 1) / l.chunkSize
}

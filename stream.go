package cryptomator

import (
	"fmt"
	"io"

	"github.com/absfs/absfs"
)

// ReadableFile is a position-tracking cursor over an encrypted file.
// Sequential reads resume exactly where the previous one ended, and a
// read ending mid-chunk keeps the decrypted chunk in memory so the next
// call never re-decrypts it. ReadableFile is not safe for concurrent use.
type ReadableFile struct {
	path    string // logical path, for error context
	cryptor Cryptor
	base    absfs.File
	layout  chunkLayout

	size     int64 // total plaintext length
	bodySize int64 // physical size minus header
	pos      int64

	curIdx int64 // index of the decrypted chunk held in curBuf, -1 none
	curBuf []byte
	closed bool
}

// newReadableFile opens the stream over an already opened physical file.
func newReadableFile(path string, cryptor Cryptor, base absfs.File) (*ReadableFile, error) {
	header := &FileHeader{}
	if _, err := header.ReadFrom(base); err != nil {
		base.Close()
		return nil, NewIOError("read", path, err)
	}
	if err := header.Validate(); err != nil {
		base.Close()
		return nil, err
	}

	info, err := base.Stat()
	if err != nil {
		base.Close()
		return nil, NewIOError("stat", path, err)
	}

	layout := newChunkLayout(header.ChunkSize, cryptor)
	bodySize := info.Size() - fileHeaderSize
	size, err := layout.plaintextSize(bodySize)
	if err != nil {
		base.Close()
		return nil, err
	}

	return &ReadableFile{
		path:     path,
		cryptor:  cryptor,
		base:     base,
		layout:   layout,
		size:     size,
		bodySize: bodySize,
		curIdx:   -1,
	}, nil
}

// Size returns the plaintext length of the file.
func (r *ReadableFile) Size() int64 {
	return r.size
}

// Read reads up to len(p) bytes at the current position, advancing it by
// the number of bytes returned. At end of stream it returns the bytes
// still available, then io.EOF.
func (r *ReadableFile) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if p == nil {
		return 0, ErrNilBuffer
	}
	if len(p) == 0 {
		return 0, nil
	}

	totalRead := 0
	for totalRead < len(p) {
		if r.pos >= r.size {
			if totalRead == 0 {
				return 0, io.EOF
			}
			return totalRead, nil
		}

		idx, within := r.layout.chunkForOffset(r.pos)
		if err := r.ensureChunkLoaded(idx); err != nil {
			return totalRead, err
		}

		n := copy(p[totalRead:], r.curBuf[within:])
		totalRead += n
		r.pos += int64(n)
	}
	return totalRead, nil
}

// Seek repositions the cursor, interpreting offset per io.Seeker.
func (r *ReadableFile) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}

	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = r.pos + offset
	case io.SeekEnd:
		pos = r.size + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative position: %d", pos)
	}

	r.pos = pos
	return pos, nil
}

// ensureChunkLoaded decrypts chunk idx into curBuf unless it is already
// the loaded one.
func (r *ReadableFile) ensureChunkLoaded(idx int64) error {
	if idx == r.curIdx && r.curBuf != nil {
		return nil
	}

	frameLen := r.layout.frameLen(idx, r.bodySize)
	frame := make([]byte, frameLen)
	// ReadAt may report io.EOF alongside a complete read of the last frame.
	if n, err := r.base.ReadAt(frame, r.layout.frameOffset(idx)); err != nil && !(err == io.EOF && int64(n) == frameLen) {
		return NewIOError("read", r.path, err)
	}

	nonce := frame[:r.layout.nonceSize]
	plaintext, err := r.cryptor.OpenChunk(nonce, frame[r.layout.nonceSize:])
	if err != nil {
		return NewAuthenticationError(r.path, idx, err)
	}

	r.curBuf = plaintext
	r.curIdx = idx
	return nil
}

// Close releases the underlying physical handle. Safe to call twice.
func (r *ReadableFile) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.curBuf = nil
	if err := r.base.Close(); err != nil {
		return NewIOError("close", r.path, err)
	}
	return nil
}

// WritableFile is a buffered sink over a freshly created encrypted file.
// Arbitrary-sized writes are sliced into fixed-size plaintext blocks, each
// sealed into one ciphertext frame and appended in chunk order. The final
// partial block is sealed on Close. WritableFile is not safe for
// concurrent use.
type WritableFile struct {
	path    string
	cryptor Cryptor
	base    absfs.File
	layout  chunkLayout

	buf    []byte // pending plaintext, always < chunkSize after Write
	closed bool
}

// newWritableFile writes the file header and returns the sink.
func newWritableFile(path string, cryptor Cryptor, base absfs.File, chunkSize uint32) (*WritableFile, error) {
	header := NewFileHeader(chunkSize)
	if _, err := header.WriteTo(base); err != nil {
		base.Close()
		return nil, NewIOError("write", path, err)
	}

	return &WritableFile{
		path:    path,
		cryptor: cryptor,
		base:    base,
		layout:  newChunkLayout(chunkSize, cryptor),
	}, nil
}

// Write buffers p and seals every completed chunk-size block.
func (w *WritableFile) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if p == nil {
		return 0, ErrNilBuffer
	}

	w.buf = append(w.buf, p...)
	for int64(len(w.buf)) >= w.layout.chunkSize {
		if err := w.sealFrame(w.buf[:w.layout.chunkSize]); err != nil {
			return 0, err
		}
		w.buf = w.buf[w.layout.chunkSize:]
	}
	return len(p), nil
}

// sealFrame seals one plaintext block and appends the frame.
func (w *WritableFile) sealFrame(plaintext []byte) error {
	nonce, err := generateNonce(int(w.layout.nonceSize))
	if err != nil {
		return err
	}

	ciphertext, err := w.cryptor.SealChunk(nonce, plaintext)
	if err != nil {
		return err
	}

	if _, err := w.base.Write(nonce); err != nil {
		return NewIOError("write", w.path, err)
	}
	if _, err := w.base.Write(ciphertext); err != nil {
		return NewIOError("write", w.path, err)
	}
	return nil
}

// Close seals the final partial block, if any, and releases the physical
// handle. The handle is closed even when the final seal fails. Safe to
// call twice.
func (w *WritableFile) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var sealErr error
	if len(w.buf) > 0 {
		sealErr = w.sealFrame(w.buf)
		w.buf = nil
	}

	closeErr := w.base.Close()
	if sealErr != nil {
		return sealErr
	}
	if closeErr != nil {
		return NewIOError("close", w.path, closeErr)
	}
	return nil
}

package cryptomator

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// sivEngine implements AES-SIV (RFC 5297) deterministic authenticated
// encryption. Filename tokens need deterministic output so that the same
// logical name always maps to the same physical entry; SIV provides that
// plus tamper detection without a stored nonce.
type sivEngine struct {
	macKey []byte // first half, keys the S2V CMAC
	block  cipher.Block
}

// newSIVEngine creates an AES-SIV engine. The key must be 64 bytes,
// split into a 32-byte S2V key and a 32-byte CTR key.
func newSIVEngine(key []byte) (*sivEngine, error) {
	if len(key) != 64 {
		return nil, fmt.Errorf("AES-SIV requires a 64-byte key, got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key[32:])
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &sivEngine{
		macKey: key[:32],
		block:  block,
	}, nil
}

// Seal encrypts plaintext deterministically. Associated data is folded
// into the synthetic IV and must match on Open.
func (e *sivEngine) Seal(plaintext []byte, ad ...[]byte) ([]byte, error) {
	siv := e.s2v(plaintext, ad...)

	ciphertext := make([]byte, len(plaintext))
	e.ctrMode(siv, plaintext, ciphertext)

	result := make([]byte, 16+len(ciphertext))
	copy(result[:16], siv)
	copy(result[16:], ciphertext)
	return result, nil
}

// Open decrypts and authenticates data previously produced by Seal.
func (e *sivEngine) Open(ciphertext []byte, ad ...[]byte) ([]byte, error) {
	if len(ciphertext) < 16 {
		return nil, fmt.Errorf("ciphertext too short")
	}

	siv := ciphertext[:16]
	ct := ciphertext[16:]

	plaintext := make([]byte, len(ct))
	e.ctrMode(siv, ct, plaintext)

	expected := e.s2v(plaintext, ad...)
	if subtle.ConstantTimeCompare(siv, expected) != 1 {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// s2v implements the S2V construction from RFC 5297.
func (e *sivEngine) s2v(plaintext []byte, ad ...[]byte) []byte {
	block, _ := aes.NewCipher(e.macKey)

	d := e.cmac(block, make([]byte, 16))
	for _, a := range ad {
		d = xor(dbl(d), e.cmac(block, a))
	}

	var t []byte
	if len(plaintext) >= 16 {
		t = make([]byte, len(plaintext))
		copy(t, plaintext)
		xorBytes(t[len(t)-16:], d)
	} else {
		t = xor(dbl(d), pad(plaintext))
	}

	return e.cmac(block, t)
}

// cmac implements CMAC over the given block cipher.
func (e *sivEngine) cmac(block cipher.Block, data []byte) []byte {
	k1, k2 := cmacSubkeys(block)

	n := (len(data) + 15) / 16
	if n == 0 {
		n = 1
	}

	lastBlock := make([]byte, 16)
	if len(data) == 0 || len(data)%16 != 0 {
		copy(lastBlock, data[16*(n-1):])
		lastBlock = pad(lastBlock[:len(data)%16])
		xorBytes(lastBlock, k2)
	} else {
		copy(lastBlock, data[16*(n-1):])
		xorBytes(lastBlock, k1)
	}

	mac := make([]byte, 16)
	for i := 0; i < n-1; i++ {
		xorBytes(mac, data[i*16:(i+1)*16])
		block.Encrypt(mac, mac)
	}
	xorBytes(mac, lastBlock)
	block.Encrypt(mac, mac)
	return mac
}

// ctrMode runs AES-CTR with the SIV as counter. Bits 31 and 63 of the IV
// are cleared per RFC 5297 section 2.5.
func (e *sivEngine) ctrMode(iv, src, dst []byte) {
	ctr := make([]byte, 16)
	copy(ctr, iv)
	ctr[8] &= 0x7f
	ctr[12] &= 0x7f

	cipher.NewCTR(e.block, ctr).XORKeyStream(dst, src)
}

// dbl doubles a block in GF(2^128).
func dbl(block []byte) []byte {
	result := make([]byte, 16)
	carry := uint64(0)

	for i := 0; i < 2; i++ {
		offset := (1 - i) * 8
		val := binary.BigEndian.Uint64(block[offset : offset+8])
		binary.BigEndian.PutUint64(result[offset:offset+8], (val<<1)|carry)
		carry = val >> 63
	}

	if carry != 0 {
		result[15] ^= 0x87
	}
	return result
}

// pad applies the 10* padding used by CMAC.
func pad(data []byte) []byte {
	result := make([]byte, 16)
	copy(result, data)
	result[len(data)] = 0x80
	return result
}

func xor(a, b []byte) []byte {
	result := make([]byte, len(a))
	for i := 0; i < len(a) && i < len(b); i++ {
		result[i] = a[i] ^ b[i]
	}
	return result
}

func xorBytes(a, b []byte) {
	for i := 0; i < len(a) && i < len(b); i++ {
		a[i] ^= b[i]
	}
}

func cmacSubkeys(block cipher.Block) ([]byte, []byte) {
	l := make([]byte, 16)
	block.Encrypt(l, l)

	k1 := dbl(l)
	k2 := dbl(k1)
	return k1, k2
}

package cryptomator

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func newTestSIV(t *testing.T) *sivEngine {
	t.Helper()
	key := make([]byte, 64)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	siv, err := newSIVEngine(key)
	if err != nil {
		t.Fatalf("failed to create siv engine: %v", err)
	}
	return siv
}

func TestSIV_RoundTrip(t *testing.T) {
	siv := newTestSIV(t)

	for _, name := range []string{"", "a", "some filename.txt", "unicode-名前"} {
		sealed, err := siv.Seal([]byte(name))
		if err != nil {
			t.Fatalf("Seal(%q) failed: %v", name, err)
		}
		opened, err := siv.Open(sealed)
		if err != nil {
			t.Fatalf("Open of %q failed: %v", name, err)
		}
		if string(opened) != name {
			t.Errorf("round trip of %q gave %q", name, opened)
		}
	}
}

func TestSIV_Deterministic(t *testing.T) {
	siv := newTestSIV(t)

	a, err := siv.Seal([]byte("stable"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := siv.Seal([]byte("stable"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("sealing the same plaintext twice gave different outputs")
	}
}

func TestSIV_TamperRejected(t *testing.T) {
	siv := newTestSIV(t)

	sealed, err := siv.Seal([]byte("important"))
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0x01
	if _, err := siv.Open(sealed); err == nil {
		t.Error("expected tampered ciphertext to be rejected")
	}
}

func TestSIV_KeyLength(t *testing.T) {
	if _, err := newSIVEngine(make([]byte, 32)); err == nil {
		t.Error("expected 32-byte key to be rejected")
	}
}

package frame

import (
	"bytes"
	"crypto/aes"
	"errors"
	"testing"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

// sealPayload is the encrypting inverse of Decrypt: it seals plain
// under the same nonce construction and returns a complete payload
// (sub-type byte, ciphertext, 4-byte tag).
func sealPayload(t *testing.T, key []byte, source MAC, subtype byte, plain []byte) []byte {
	t.Helper()

	payloadLen := 1 + len(plain) + tagSize
	rev := source.Reversed()
	nonce := make([]byte, 0, nonceSize)
	nonce = append(nonce, rev[:]...)
	nonce = append(nonce, byte(payloadLen+3))
	nonce = append(nonce, serviceClassTag[:]...)
	nonce = append(nonce, subtype)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	aead, err := ccm.NewCCM(block, tagSize, nonceSize)
	if err != nil {
		t.Fatalf("ccm.NewCCM: %v", err)
	}

	sealed := aead.Seal(nil, nonce, plain, []byte{0x11})
	return append([]byte{subtype}, sealed...)
}

func TestDecryptMissingKey(t *testing.T) {
	payload := []byte{0x11, 0xD6, 0x03, 0xFB, 0xFA, 0x7B, 0x6D, 0xFB, 0x1E, 0x26, 0xFD}
	if _, err := Decrypt(nil, payload, testMAC); !errors.Is(err, ErrNoBindkey) {
		t.Errorf("error = %v, want ErrNoBindkey", err)
	}
}

func TestDecryptWrongKeyLength(t *testing.T) {
	payload := []byte{0x11, 0xD6, 0x03, 0xFB, 0xFA, 0x7B, 0x6D, 0xFB, 0x1E, 0x26, 0xFD}
	for _, size := range []int{1, 8, 15, 17, 32} {
		if _, err := Decrypt(make([]byte, size), payload, testMAC); !errors.Is(err, ErrBindkeySize) {
			t.Errorf("key size %d: error = %v, want ErrBindkeySize", size, err)
		}
	}
}

func TestDecryptDeterministic(t *testing.T) {
	payload := []byte{0x11, 0xD6, 0x03, 0xFB, 0xFA, 0x7B, 0x6D, 0xFB, 0x1E, 0x26, 0xFD}

	first, err := Decrypt(testBindkey, payload, testMAC)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	second, err := Decrypt(testBindkey, payload, testMAC)
	if err != nil {
		t.Fatalf("Decrypt (second): %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Decrypt is not deterministic: % x vs % x", first, second)
	}
	if len(first) != 6 {
		t.Errorf("plaintext is %d bytes, want 6", len(first))
	}
}

func TestDecryptKeySensitivity(t *testing.T) {
	payload := []byte{0x11, 0xD6, 0x03, 0xFB, 0xFA, 0x7B, 0x6D, 0xFB, 0x1E, 0x26, 0xFD}

	// Flipping any single key byte must fail authentication.
	for i := range testBindkey {
		key := append([]byte(nil), testBindkey...)
		key[i] ^= 0x01
		if _, err := Decrypt(key, payload, testMAC); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("key byte %d flipped: error = %v, want ErrDecryptFailed", i, err)
		}
	}

	// Same for every payload byte: the sub-type feeds the nonce, the
	// middle is ciphertext, the tail is the tag.
	for i := range payload {
		mangled := append([]byte(nil), payload...)
		mangled[i] ^= 0x01
		if _, err := Decrypt(testBindkey, mangled, testMAC); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("payload byte %d flipped: error = %v, want ErrDecryptFailed", i, err)
		}
	}

	// And for the source MAC, the other nonce ingredient.
	for i := range testMAC {
		mac := testMAC
		mac[i] ^= 0x01
		if _, err := Decrypt(testBindkey, payload, mac); !errors.Is(err, ErrDecryptFailed) {
			t.Errorf("MAC byte %d flipped: error = %v, want ErrDecryptFailed", i, err)
		}
	}
}

func TestDecryptTooShort(t *testing.T) {
	if _, err := Decrypt(testBindkey, []byte{0x01, 0x02}, testMAC); !errors.Is(err, ErrDecryptFailed) {
		t.Errorf("error = %v, want ErrDecryptFailed", err)
	}
}

func TestSealDecryptRoundTrip(t *testing.T) {
	plain := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	payload := sealPayload(t, testBindkey, testMAC, 0x7F, plain)

	got, err := Decrypt(testBindkey, payload, testMAC)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("round trip: got % x, want % x", got, plain)
	}
}

package frame

import (
	"crypto/aes"
	"fmt"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

const (
	// BindkeySize is the length of the long-term key the firmwares use.
	BindkeySize = 16

	tagSize   = 4
	nonceSize = 11
)

// serviceClassTag is the service-data AD header as it appears on the
// air: the AD type byte 0x16 followed by the 16-bit environmental
// sensing UUID 0x181A, little-endian.
var serviceClassTag = [3]byte{0x16, 0x1A, 0x18}

// Decrypt verifies and decrypts an encrypted advertisement payload with
// AES-128-CCM.
//
// The nonce is the reversed source MAC, a length byte of
// len(payload)+3 (the frame's extended-length convention), the
// service-data AD header, and the payload's leading sub-type byte; the
// additional authenticated data is the single byte 0x11. The last four
// payload bytes are the authentication tag, everything between the
// sub-type byte and the tag is ciphertext.
func Decrypt(bindkey, payload []byte, source MAC) ([]byte, error) {
	if len(bindkey) == 0 {
		return nil, ErrNoBindkey
	}
	if len(bindkey) != BindkeySize {
		return nil, fmt.Errorf("%w, got %d", ErrBindkeySize, len(bindkey))
	}
	if len(payload) < 1+tagSize {
		return nil, fmt.Errorf("%w: payload too short to carry a tag", ErrDecryptFailed)
	}

	rev := source.Reversed()
	nonce := make([]byte, 0, nonceSize)
	nonce = append(nonce, rev[:]...)
	nonce = append(nonce, byte(len(payload)+3))
	nonce = append(nonce, serviceClassTag[:]...)
	nonce = append(nonce, payload[0])

	block, err := aes.NewCipher(bindkey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindkeySize, err)
	}
	aead, err := ccm.NewCCM(block, tagSize, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}

	// ccm.Open expects the tag appended to the ciphertext, which is
	// exactly how the frame lays it out after the sub-type byte.
	plain, err := aead.Open(nil, nonce, payload[1:], []byte{0x11})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return plain, nil
}

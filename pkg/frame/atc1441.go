package frame

import (
	"encoding/binary"
	"fmt"
)

// DecodeATC1441 parses the 13-byte plaintext advertisement the atc1441
// firmware broadcasts.
//
// Layout: MAC[6] | int16 BE temperature ×0.1°C | uint8 humidity % |
// uint8 battery % | uint16 BE voltage mV | uint8 counter.
func DecodeATC1441(payload []byte, source MAC, sourceTrusted bool) (Reading, error) {
	if len(payload) != 13 {
		return Reading{}, ErrUnknownFormat
	}

	var claimed MAC
	copy(claimed[:], payload[0:6])

	if sourceTrusted && claimed != source {
		return Reading{}, fmt.Errorf("%w: frame says %s, transport says %s", ErrMACMismatch, claimed, source)
	}

	temp := int16(binary.BigEndian.Uint16(payload[6:8]))
	volt := binary.BigEndian.Uint16(payload[10:12])

	return Reading{
		Format:      FormatATC1441,
		MAC:         claimed,
		Temperature: float64(temp) / 10,
		Humidity:    float64(payload[8]),
		Battery:     float64(payload[9]),
		Voltage:     float64(volt) / 1000,
		HasVoltage:  true,
		PacketID:    payload[12],
		HasPacketID: true,
	}, nil
}

// DecodeATC1441Encrypted decrypts and parses the 8-byte encrypted
// atc1441 advertisement. As with the pvvx encrypted frame, the
// transport address is the true source.
//
// Plaintext layout (3 bytes): temperature as byte/2 − 40°C |
// humidity as byte/2 % | battery % in the low 7 bits with the trigger
// flag in the high bit.
func DecodeATC1441Encrypted(payload []byte, source MAC, bindkey []byte) (Reading, error) {
	plain, err := Decrypt(bindkey, payload, source)
	if err != nil {
		return Reading{}, err
	}
	if len(plain) != 3 {
		return Reading{}, fmt.Errorf("%w: unexpected plaintext length %d", ErrDecryptFailed, len(plain))
	}

	bat := plain[2] & 0x7F
	// Some firmware builds report up to 127 here.
	if bat > 100 {
		bat = 100
	}

	return Reading{
		Format:      FormatATC1441Encrypted,
		MAC:         source,
		Temperature: float64(plain[0])/2 - 40.0,
		Humidity:    float64(plain[1]) / 2,
		Battery:     float64(bat),
		Flags:       plain[2] >> 7,
	}, nil
}

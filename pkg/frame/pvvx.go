package frame

import (
	"encoding/binary"
	"fmt"
)

// DecodePvvx parses the 15-byte plaintext advertisement the pvvx custom
// firmware broadcasts.
//
// Layout: MAC[6] (reversed) | int16 LE temperature ×0.01°C |
// uint16 LE humidity ×0.01% | uint16 LE voltage mV | uint8 battery % |
// uint8 counter | uint8 flags.
func DecodePvvx(payload []byte, source MAC, sourceTrusted bool) (Reading, error) {
	if len(payload) != 15 {
		return Reading{}, ErrUnknownFormat
	}

	var claimed MAC
	copy(claimed[:], payload[0:6])
	claimed = claimed.Reversed()

	if sourceTrusted && claimed != source {
		return Reading{}, fmt.Errorf("%w: frame says %s, transport says %s", ErrMACMismatch, claimed, source)
	}

	temp := int16(binary.LittleEndian.Uint16(payload[6:8]))
	hum := binary.LittleEndian.Uint16(payload[8:10])
	volt := binary.LittleEndian.Uint16(payload[10:12])

	return Reading{
		Format:      FormatPvvx,
		MAC:         claimed,
		Temperature: float64(temp) / 100,
		Humidity:    float64(hum) / 100,
		Voltage:     float64(volt) / 1000,
		HasVoltage:  true,
		Battery:     float64(payload[12]),
		PacketID:    payload[13],
		HasPacketID: true,
		Flags:       payload[14],
	}, nil
}

// DecodePvvxEncrypted decrypts and parses the 11-byte encrypted pvvx
// advertisement. The frame embeds no MAC; the transport address is the
// true source and feeds the nonce.
//
// Plaintext layout: int16 LE temperature ×0.01°C |
// uint16 LE humidity ×0.01% | uint8 battery % | uint8 flags.
func DecodePvvxEncrypted(payload []byte, source MAC, bindkey []byte) (Reading, error) {
	plain, err := Decrypt(bindkey, payload, source)
	if err != nil {
		return Reading{}, err
	}
	if len(plain) != 6 {
		return Reading{}, fmt.Errorf("%w: unexpected plaintext length %d", ErrDecryptFailed, len(plain))
	}

	temp := int16(binary.LittleEndian.Uint16(plain[0:2]))
	hum := binary.LittleEndian.Uint16(plain[2:4])

	return Reading{
		Format:      FormatPvvxEncrypted,
		MAC:         source,
		Temperature: float64(temp) / 100,
		Humidity:    float64(hum) / 100,
		Battery:     float64(plain[4]),
		Flags:       plain[5],
	}, nil
}

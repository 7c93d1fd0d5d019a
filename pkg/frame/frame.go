// Package frame decodes the broadcast advertisement payloads emitted by
// LYWSD03MMC-class thermometers running the atc1441 or pvvx third-party
// firmwares. Everything in this package is a pure function over byte
// buffers; session state (bindkey handling, reprocessing, flags) lives
// with the caller.
package frame

import "errors"

// Format identifies one of the four advertisement layouts the firmwares
// broadcast. The format is determined entirely by payload length.
type Format int

const (
	FormatUnknown          Format = iota
	FormatPvvx                    // 15 bytes, pvvx "custom" layout, plaintext
	FormatATC1441                 // 13 bytes, atc1441 layout, plaintext
	FormatPvvxEncrypted           // 11 bytes, pvvx layout, AES-CCM
	FormatATC1441Encrypted        // 8 bytes, atc1441 layout, AES-CCM
)

var (
	ErrUnknownFormat = errors.New("payload length matches no known ATC format")
	ErrMACMismatch   = errors.New("embedded MAC does not match advertising address")
	ErrSourceUnknown = errors.New("encrypted format requires the advertising MAC, which this platform does not expose")
	ErrNoBindkey     = errors.New("advertisement is encrypted and no bindkey is set")
	ErrBindkeySize   = errors.New("bindkey must be 16 bytes")
	ErrDecryptFailed = errors.New("bindkey verification failed")
)

// Detect selects a format purely by payload length. Any length outside
// {15, 13, 11, 8} is unrecognized.
func Detect(payload []byte) (Format, error) {
	switch len(payload) {
	case 15:
		return FormatPvvx, nil
	case 13:
		return FormatATC1441, nil
	case 11:
		return FormatPvvxEncrypted, nil
	case 8:
		return FormatATC1441Encrypted, nil
	}
	return FormatUnknown, ErrUnknownFormat
}

// Encrypted reports whether the format carries an AES-CCM sealed payload.
func (f Format) Encrypted() bool {
	return f == FormatPvvxEncrypted || f == FormatATC1441Encrypted
}

// Firmware returns the firmware label the format implies, matching the
// labels the ATC community uses for these advertisement flavors.
func (f Format) Firmware() string {
	switch f {
	case FormatPvvx:
		return "ATC (pvvx)"
	case FormatATC1441:
		return "ATC (atc1441)"
	case FormatPvvxEncrypted:
		return "ATC (pvvx encrypted)"
	case FormatATC1441Encrypted:
		return "ATC (atc1441 encrypted)"
	default:
		return "Unknown"
	}
}

func (f Format) String() string {
	return f.Firmware()
}

// Reading holds the measurements decoded from a single advertisement.
type Reading struct {
	Format Format
	MAC    MAC // source identifier the reading is attributed to

	Temperature float64 // °C
	Humidity    float64 // %
	Battery     float64 // %

	Voltage    float64 // V, plaintext formats only
	HasVoltage bool

	PacketID    uint8 // rolling measurement counter, pvvx and plaintext atc1441
	HasPacketID bool

	// Trigger/flags byte. Parsed but not mapped to a measurement; the
	// firmwares use it for reed-switch style binary state.
	Flags byte
}

// Decode dispatches a payload to the decoder its length selects.
//
// source is the MAC the transport attributed the advertisement to, and
// sourceTrusted says whether that attribution is reliable. On platforms
// where it is not (CoreBluetooth hands out synthetic UUIDs instead of
// the radio MAC), plaintext formats fall back to the MAC embedded in
// the frame and encrypted formats are rejected outright, since their
// nonce cannot be reconstructed without the true MAC.
func Decode(payload []byte, source MAC, sourceTrusted bool, bindkey []byte) (Reading, error) {
	format, err := Detect(payload)
	if err != nil {
		return Reading{}, err
	}

	switch format {
	case FormatPvvx:
		return DecodePvvx(payload, source, sourceTrusted)
	case FormatATC1441:
		return DecodeATC1441(payload, source, sourceTrusted)
	case FormatPvvxEncrypted:
		if !sourceTrusted {
			return Reading{}, ErrSourceUnknown
		}
		return DecodePvvxEncrypted(payload, source, bindkey)
	default:
		if !sourceTrusted {
			return Reading{}, ErrSourceUnknown
		}
		return DecodeATC1441Encrypted(payload, source, bindkey)
	}
}

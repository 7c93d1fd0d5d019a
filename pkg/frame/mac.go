package frame

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MAC is a 6-byte Bluetooth device address in transmission (big-endian,
// display) order.
type MAC [6]byte

// ParseMAC parses a colon- or dash-delimited hex address, e.g.
// "A4:C1:38:8D:18:B2" or "a4-c1-38-8d-18-b2". Platform-opaque
// identifiers (CoreBluetooth UUIDs and the like) do not parse.
func ParseMAC(s string) (MAC, error) {
	var m MAC
	parts := strings.Split(strings.ReplaceAll(s, "-", ":"), ":")
	if len(parts) != 6 {
		return m, fmt.Errorf("malformed MAC address %q", s)
	}
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return m, fmt.Errorf("malformed MAC address %q", s)
		}
		m[i] = b[0]
	}
	return m, nil
}

// String formats the address as uppercase colon-delimited octets.
func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Reversed returns the address in the opposite byte order. The pvvx
// frame embeds the MAC least-significant octet first, and the CCM nonce
// wants it that way too.
func (m MAC) Reversed() MAC {
	var r MAC
	for i := range m {
		r[i] = m[5-i]
	}
	return r
}

// ShortAddress returns the last two octets of an address as a compact
// uppercase string, enough to tell a handful of sensors apart when the
// advertisement carries no local name.
func ShortAddress(address string) string {
	parts := strings.Split(strings.ReplaceAll(address, "-", ":"), ":")
	last := strings.ToUpper(parts[len(parts)-1])
	if len(last) == 2 && len(parts) >= 2 {
		return strings.ToUpper(parts[len(parts)-2]) + last
	}
	return last
}

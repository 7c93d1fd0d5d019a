package frame

import "testing"

func TestParseMAC(t *testing.T) {
	cases := []struct {
		in   string
		want MAC
	}{
		{"A4:C1:38:8D:18:B2", testMAC},
		{"a4:c1:38:8d:18:b2", testMAC},
		{"A4-C1-38-8D-18-B2", testMAC},
	}
	for _, c := range cases {
		got, err := ParseMAC(c.in)
		if err != nil {
			t.Fatalf("ParseMAC(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseMAC(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseMACRejectsOpaqueIdentifiers(t *testing.T) {
	bad := []string{
		"",
		"A4:C1:38:8D:18",
		"A4:C1:38:8D:18:B2:00",
		"E5542E7A-3B3A-4C63-B28F-02F7D8C6A9F1", // CoreBluetooth-style UUID
		"A4:C1:38:8D:18:ZZ",
		"A4C1388D18B2",
	}
	for _, in := range bad {
		if _, err := ParseMAC(in); err == nil {
			t.Errorf("ParseMAC(%q) parsed, want error", in)
		}
	}
}

func TestMACString(t *testing.T) {
	if got := testMAC.String(); got != "A4:C1:38:8D:18:B2" {
		t.Errorf("String() = %q, want A4:C1:38:8D:18:B2", got)
	}
}

func TestMACReversed(t *testing.T) {
	want := MAC{0xB2, 0x18, 0x8D, 0x38, 0xC1, 0xA4}
	if got := testMAC.Reversed(); got != want {
		t.Errorf("Reversed() = %v, want %v", got, want)
	}
	if got := testMAC.Reversed().Reversed(); got != testMAC {
		t.Errorf("double reverse = %v, want %v", got, testMAC)
	}
}

func TestShortAddress(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"A4:C1:38:8D:18:B2", "18B2"},
		{"a4-c1-38-8d-18-b2", "18B2"},
		{"E5542E7A-3B3A-4C63-B28F-02F7D8C6A9F1", "02F7D8C6A9F1"},
	}
	for _, c := range cases {
		if got := ShortAddress(c.in); got != c.want {
			t.Errorf("ShortAddress(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

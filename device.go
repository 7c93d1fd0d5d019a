package atcble

import (
	"errors"
	"fmt"

	"github.com/Bluetooth-Devices/atc-ble/pkg/frame"
)

// ErrNoHistory is returned by SetBindkey when no previously decoded
// advertisement is cached to reprocess.
var ErrNoHistory = errors.New("no cached advertisement to reprocess")

// State tracks what kind of traffic a device has produced so far and,
// for encrypted devices, whether the configured bindkey has been proven
// against at least one payload.
type State int

const (
	// StateUnseen means no recognized payload has been processed yet,
	// so it is not known whether the device encrypts.
	StateUnseen State = iota
	StatePlaintext
	StateEncryptedKeyMissing
	StateEncryptedVerified
	StateEncryptedFailed
)

func (s State) String() string {
	switch s {
	case StateUnseen:
		return "unseen"
	case StatePlaintext:
		return "plaintext"
	case StateEncryptedKeyMissing:
		return "encrypted, key missing"
	case StateEncryptedVerified:
		return "encrypted, key verified"
	case StateEncryptedFailed:
		return "encrypted, decryption failed"
	default:
		return fmt.Sprintf("unknown (%d)", s)
	}
}

// Device is the decoding session for one physical sensor. It is not
// safe for concurrent use; callers serialize advertisements per device.
type Device struct {
	bindkey     []byte
	addrTrusted bool

	state    State
	macKnown bool

	// Last advertisement that produced a successful parse, kept so a
	// corrected bindkey can be proven without waiting for the next
	// broadcast.
	lastAdvert *Advertisement
}

// Option configures a Device.
type Option func(*Device)

// WithBindkey sets the 16-byte long-term key used to decrypt the
// encrypted advertisement flavors.
func WithBindkey(key []byte) Option {
	return func(d *Device) { d.bindkey = key }
}

// WithUntrustedAddress marks the transport-level address as unusable as
// a source identifier. CoreBluetooth is the known case: it hands out
// synthetic UUIDs instead of the radio MAC, so plaintext formats must
// trust the MAC embedded in the frame and encrypted formats cannot be
// decoded at all.
func WithUntrustedAddress() Option {
	return func(d *Device) {
		d.addrTrusted = false
		d.macKnown = false
	}
}

// NewDevice creates a fresh decoding session.
func NewDevice(opts ...Option) *Device {
	d := &Device{addrTrusted: true, macKnown: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the session's current decode state.
func (d *Device) State() State { return d.state }

// Pending reports that no recognized payload has been processed yet.
func (d *Device) Pending() bool { return d.state == StateUnseen }

// Encrypted reports whether an encrypted-format payload has been
// observed for this device.
func (d *Device) Encrypted() bool {
	switch d.state {
	case StateEncryptedKeyMissing, StateEncryptedVerified, StateEncryptedFailed:
		return true
	}
	return false
}

// BindkeyVerified reports whether the configured key has decrypted at
// least one payload since the session was created or the key last
// changed. Any decryption failure clears it.
func (d *Device) BindkeyVerified() bool { return d.state == StateEncryptedVerified }

// MACKnown reports whether the device's true MAC is known. It is false
// only on untrusted-address platforms until a frame embeds the MAC.
func (d *Device) MACKnown() bool { return d.macKnown }

// Update decodes one advertisement. Every payload in the service-data
// map is tried; the first one that decodes wins. Failures are reported
// in-band and discard only this advertisement, never the session: a
// later advertisement (or a corrected bindkey) can still succeed.
func (d *Device) Update(adv Advertisement) (Update, error) {
	var firstErr error
	for _, payload := range adv.ServiceData {
		reading, err := d.decode(payload, adv.Address)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.lastAdvert = &adv
		return d.buildUpdate(adv, reading), nil
	}
	if firstErr == nil {
		firstErr = frame.ErrUnknownFormat
	}
	return Update{}, firstErr
}

// SetBindkey replaces the session key, dropping any previous
// verification, and reprocesses the cached last advertisement so the
// new key is proven (or refuted) immediately. Without a cached
// advertisement it returns ErrNoHistory and the key is still replaced.
func (d *Device) SetBindkey(key []byte) (Update, error) {
	d.bindkey = key
	if d.state == StateEncryptedVerified {
		d.state = StateEncryptedKeyMissing
	}
	if d.lastAdvert == nil {
		return Update{}, ErrNoHistory
	}
	return d.Update(*d.lastAdvert)
}

// decode runs the pure frame decoder for one payload and applies the
// outcome to the session state machine. Unrecognized lengths, MAC
// mismatches and platform rejections leave the state untouched.
func (d *Device) decode(payload []byte, address string) (frame.Reading, error) {
	source, err := frame.ParseMAC(address)
	if err != nil && d.addrTrusted {
		// Shouldn't happen on a platform that reports real MACs; a
		// zero source makes reconciliation fail rather than guess.
		source = frame.MAC{}
	}

	reading, err := frame.Decode(payload, source, d.addrTrusted, d.bindkey)
	switch {
	case err == nil:
		if reading.Format.Encrypted() {
			d.state = StateEncryptedVerified
		} else if !d.Encrypted() {
			d.state = StatePlaintext
		}
		// Plaintext frames embed the MAC, encrypted ones are only
		// decodable when the transport address is real.
		d.macKnown = true
	case errors.Is(err, frame.ErrNoBindkey), errors.Is(err, frame.ErrBindkeySize):
		d.state = StateEncryptedKeyMissing
	case errors.Is(err, frame.ErrDecryptFailed):
		d.state = StateEncryptedFailed
	}
	return reading, err
}

func (d *Device) buildUpdate(adv Advertisement, reading frame.Reading) Update {
	name := adv.LocalName
	if name == "" {
		name = manufacturer + " " + frame.ShortAddress(adv.Address)
	}
	title := fmt.Sprintf("%s (%s)", name, adv.Address)

	m := Measurements{
		SensorTemperature:    reading.Temperature,
		SensorHumidity:       reading.Humidity,
		SensorBattery:        reading.Battery,
		SensorSignalStrength: float64(adv.RSSI),
	}
	if reading.HasVoltage {
		m[SensorVoltage] = reading.Voltage
	}

	return Update{
		Title:        title,
		DeviceName:   title,
		Manufacturer: manufacturer,
		Model:        model,
		Firmware:     reading.Format.Firmware(),
		Measurements: m,
	}
}

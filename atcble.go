// Package atcble decodes the BLE advertisements broadcast by
// LYWSD03MMC-class environmental sensors flashed with the atc1441 or
// pvvx third-party firmwares, including the encrypted advertisement
// flavors. It turns raw service-data payloads into named measurements
// and tracks per-device session state such as bindkey verification.
package atcble

import (
	"tinygo.org/x/bluetooth"
)

// Sensor names a measurement kind a decoded advertisement can carry.
type Sensor string

const (
	SensorTemperature    Sensor = "temperature"     // °C
	SensorHumidity       Sensor = "humidity"        // %
	SensorBattery        Sensor = "battery"         // %
	SensorVoltage        Sensor = "voltage"         // V
	SensorSignalStrength Sensor = "signal_strength" // dBm
)

// Measurements maps measurement kinds to their decoded values.
type Measurements map[Sensor]float64

// Advertisement is a single received broadcast, as handed over by the
// scanning side. The decoder only reads it.
type Advertisement struct {
	// Address is the transport-level source, colon- or dash-delimited
	// hex octets. On platforms that hide the radio MAC it is an opaque
	// identifier instead.
	Address string

	LocalName string
	RSSI      int16

	// ServiceData maps service UUID strings to raw payloads. Formats
	// are selected purely by payload length, not by which UUID a
	// payload arrived under.
	ServiceData map[string][]byte
}

// NewAdvertisement builds an Advertisement from a bluetooth scan result.
func NewAdvertisement(result bluetooth.ScanResult) Advertisement {
	serviceData := make(map[string][]byte)
	for _, element := range result.ServiceData() {
		serviceData[element.UUID.String()] = element.Data
	}
	return Advertisement{
		Address:     result.Address.String(),
		LocalName:   result.LocalName(),
		RSSI:        result.RSSI,
		ServiceData: serviceData,
	}
}

// Update is the decoded outcome of one advertisement.
type Update struct {
	// Title is "{name} ({address})", suitable for display.
	Title        string
	DeviceName   string
	Manufacturer string
	Model        string

	// Firmware labels the advertisement flavor, e.g. "ATC (pvvx)".
	Firmware string

	Measurements Measurements
}

const (
	manufacturer = "ATC"
	model        = "ATC sensor"
)

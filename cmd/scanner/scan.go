package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"time"

	atcble "github.com/Bluetooth-Devices/atc-ble"
)

func main() {
	bindkeyHex := flag.String("bindkey", "", "16-byte bindkey as 32 hex characters, for encrypted sensors")
	duration := flag.Duration("duration", 30*time.Second, "how long to listen")
	flag.Parse()

	var opts []atcble.Option
	if *bindkeyHex != "" {
		key, err := hex.DecodeString(*bindkeyHex)
		if err != nil {
			log.Fatalf("Fatal: bad bindkey: %v", err)
		}
		opts = append(opts, atcble.WithBindkey(key))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	log.Printf("Listening for ATC sensor advertisements for %s...", *duration)
	advChan, err := atcble.ScanStream(ctx)
	if err != nil {
		log.Fatalf("Fatal: scan failed: %v", err)
	}

	devices := make(map[string]*atcble.Device)
	for adv := range advChan {
		device, ok := devices[adv.Address]
		if !ok {
			device = atcble.NewDevice(opts...)
			devices[adv.Address] = device
		}

		update, err := device.Update(adv)
		if err != nil {
			log.Printf("%s: %v", adv.Address, err)
			continue
		}

		fmt.Printf("%s [%s]\n", update.Title, update.Firmware)
		for sensor, value := range update.Measurements {
			fmt.Printf("   %s: %.2f\n", sensor, value)
		}
	}

	log.Printf("Scan complete. Saw %d ATC sensor(s).", len(devices))
}

package atcble

import (
	"context"
	"errors"
	"log"
	"time"

	"tinygo.org/x/bluetooth"
)

var adapter = bluetooth.DefaultAdapter

// environmentalSensing is the 16-bit GATT service both firmwares
// advertise their readings under.
var environmentalSensing = bluetooth.New16BitUUID(0x181A)

// ScanStream returns a channel that streams Advertisements carrying
// environmental-sensing service data as they are received, and stops
// scanning when the context is canceled. Decoding is left entirely to
// the caller's per-device sessions.
func ScanStream(ctx context.Context) (<-chan Advertisement, error) {
	if err := adapter.Enable(); err != nil {
		return nil, err
	}

	advChan := make(chan Advertisement)

	handler := func(adapter *bluetooth.Adapter, result bluetooth.ScanResult) {
		adv := NewAdvertisement(result)
		if _, ok := adv.ServiceData[environmentalSensing.String()]; !ok {
			return
		}
		select {
		case advChan <- adv:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(advChan)

		scanErrChan := make(chan error, 1)
		go func() {
			if err := adapter.Scan(handler); err != nil {
				scanErrChan <- err
			}
			close(scanErrChan)
		}()

		select {
		case <-ctx.Done():
			if err := adapter.StopScan(); err != nil {
				log.Printf("Warning: failed to stop scan cleanly: %v", err)
			}
			// Hold the channel open until Scan has returned; a handler
			// invocation still in flight may yet send on it.
			if err := <-scanErrChan; err != nil {
				log.Printf("Error during scan: %v", err)
			}
		case err := <-scanErrChan:
			if err != nil {
				log.Printf("Error starting scan: %v", err)
			}
		}
	}()

	return advChan, nil
}

// Scan collects advertisements for the given duration, keeping the
// latest one per source address.
func Scan(duration time.Duration) ([]Advertisement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	advChan, err := ScanStream(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]Advertisement)
	for adv := range advChan {
		latest[adv.Address] = adv
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	results := make([]Advertisement, 0, len(latest))
	for _, adv := range latest {
		results = append(results, adv)
	}
	return results, nil
}

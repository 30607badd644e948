// Package blewatch provides a cross-platform Bluetooth Low Energy
// advertisement watcher for Go, for operating systems such as Linux, macOS,
// and Windows.
//
// A Watcher owns one native scanning session. Start configures the session
// with a ScanFilter, arms it and delivers every received advertisement to a
// callback; Stop disarms it again:
//
//	w, err := blewatch.NewWatcher()
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	filter := blewatch.NewScanFilter(blewatch.ServiceUUIDHeartRate)
//	err = w.Start(filter, func(ev *blewatch.AdvertisementEvent) {
//		println("found device:", ev.Address.String(), ev.RSSI, ev.LocalName)
//	})
//
// The callback never runs on the radio stack's own thread: events are queued
// and handed to the callback from a goroutine owned by the watcher, so the
// callback may call Stop or Close.
package blewatch // import "tinygo.org/x/blewatch"

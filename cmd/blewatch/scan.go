package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tinygo.org/x/blewatch"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Watch for BLE advertisements",
	Long: `Watch for Bluetooth Low Energy advertisements and print one line per
received advertisement. Devices seen for the first time are marked as new.

Services may be given as full UUIDs or in 16-bit form (for example 180d for
Heart Rate). Only devices advertising at least one of them are shown.`,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanServices []string
	scanPassive  bool
	scanBuffer   uint32
)

// newWatcher is overridden in tests to run without a radio.
var newWatcher = blewatch.NewWatcher

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (0 scans until interrupted)")
	scanCmd.Flags().StringSliceVarP(&scanServices, "service", "s", nil, "Only show devices advertising these service UUIDs")
	scanCmd.Flags().BoolVar(&scanPassive, "passive", false, "Use passive scanning (no scan requests)")
	scanCmd.Flags().Uint32Var(&scanBuffer, "buffer", 0, "Event buffer size (0 uses the configured size)")
}

func runScan(cmd *cobra.Command, args []string) error {
	filter, err := parseServices(scanServices)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if scanPassive {
		cfg.ScanningMode = blewatch.ScanningModePassive.String()
	}
	if scanBuffer > 0 {
		cfg.EventBufferSize = scanBuffer
	}
	logger := configureLogger(cmd, cfg)

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	w, err := newWatcher(blewatch.WithConfig(cfg), blewatch.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.WithError(err).Warn("Closing watcher failed")
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if scanDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scanDuration)
		defer cancel()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := w.Events(filter)
	if err != nil {
		return fmt.Errorf("failed to start scan: %w", err)
	}

	out := cmd.OutOrStdout()
	if !filter.IsEmpty() {
		fmt.Fprintf(out, "Watching for services %s\n", strings.Join(filter.Strings(), ", "))
	}
	seen := newDeviceTable()
	for {
		select {
		case <-ctx.Done():
			if err := w.Stop(); err != nil {
				return err
			}
			printSummary(out, seen, w.Stats())
			return nil
		case ev, ok := <-events:
			if !ok {
				printSummary(out, seen, w.Stats())
				return nil
			}
			isNew := seen.observe(&ev)
			printEvent(out, &ev, isNew)
		}
	}
}

// parseServices accepts full UUIDs and the 16-bit short form.
func parseServices(services []string) (blewatch.ScanFilter, error) {
	uuids := make([]blewatch.UUID, 0, len(services))
	for _, s := range services {
		uuid, err := blewatch.ParseUUID(strings.TrimSpace(s))
		if err != nil {
			return blewatch.ScanFilter{}, fmt.Errorf("invalid service UUID %q", s)
		}
		uuids = append(uuids, uuid)
	}
	return blewatch.NewScanFilter(uuids...), nil
}

type deviceEntry struct {
	name     string
	count    int
	lastRSSI int16
}

// deviceTable tracks the devices seen during one scan.
type deviceTable struct {
	devices *hashmap.Map[string, *deviceEntry]
}

func newDeviceTable() *deviceTable {
	return &deviceTable{devices: hashmap.New[string, *deviceEntry]()}
}

// observe records ev and reports whether its device was seen for the first
// time.
func (t *deviceTable) observe(ev *blewatch.AdvertisementEvent) bool {
	entry, existing := t.devices.GetOrInsert(ev.Address.String(), &deviceEntry{})
	entry.count++
	entry.lastRSSI = ev.RSSI
	if ev.LocalName != "" {
		entry.name = ev.LocalName
	}
	return !existing
}

func (t *deviceTable) len() int {
	return t.devices.Len()
}

var (
	newColor     = color.New(color.FgGreen, color.Bold)
	addressColor = color.New(color.FgCyan)
	nameColor    = color.New(color.FgYellow)
)

func printEvent(w io.Writer, ev *blewatch.AdvertisementEvent, isNew bool) {
	marker := "   "
	if isNew {
		marker = newColor.Sprint("NEW")
	}
	line := fmt.Sprintf("%s %s %4d dBm", marker, addressColor.Sprint(ev.Address.String()), ev.RSSI)
	if ev.LocalName != "" {
		line += " " + nameColor.Sprint(ev.LocalName)
	}
	if len(ev.ServiceUUIDs) > 0 {
		line += " services=" + formatServices(ev.ServiceUUIDs)
	}
	for _, md := range ev.ManufacturerData {
		line += fmt.Sprintf(" mfr=%04x:%x", md.CompanyID, md.Data)
	}
	if ev.HasTxPower {
		line += fmt.Sprintf(" tx=%d", ev.TxPower)
	}
	fmt.Fprintln(w, line)
}

// formatServices prints 16-bit UUIDs in their short form.
func formatServices(uuids []blewatch.UUID) string {
	parts := make([]string, len(uuids))
	for i, uuid := range uuids {
		if uuid.Is16Bit() {
			parts[i] = fmt.Sprintf("%04x", uuid.Get16Bit())
		} else {
			parts[i] = uuid.String()
		}
	}
	return strings.Join(parts, ",")
}

func printSummary(w io.Writer, seen *deviceTable, stats blewatch.Stats) {
	fmt.Fprintf(w, "\n%d device(s), %d advertisement(s) received, %d dropped\n",
		seen.len(), stats.Received, stats.Dropped)
}

package bletest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinygo.org/x/blewatch"
)

func TestSessionEmitRequiresArmedHandler(t *testing.T) {
	s := NewSession()
	var got []string
	handler := func(ev *blewatch.AdvertisementEvent) { got = append(got, ev.LocalName) }
	ev := NewAdvertisement().WithName("tag").Build()

	assert.False(t, s.Emit(ev), "no handler, not armed")
	require.NoError(t, s.SetReceivedHandler(handler))
	assert.False(t, s.Emit(ev), "not armed")
	require.NoError(t, s.Start())
	assert.True(t, s.Emit(ev))
	require.NoError(t, s.Stop())
	assert.False(t, s.Emit(ev))

	assert.Equal(t, []string{"tag"}, got)
}

func TestSessionFilter(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.AppendServiceUUID(blewatch.ServiceUUIDHeartRate))
	require.NoError(t, s.SetReceivedHandler(func(*blewatch.AdvertisementEvent) {}))
	require.NoError(t, s.Start())

	assert.True(t, s.Emit(NewAdvertisement().WithServices(blewatch.ServiceUUIDHeartRate).Build()))
	assert.False(t, s.Emit(NewAdvertisement().WithServices(blewatch.ServiceUUIDBattery).Build()))

	require.NoError(t, s.ClearServiceUUIDs())
	services, err := s.ServiceUUIDs()
	require.NoError(t, err)
	assert.Empty(t, services)
	assert.True(t, s.Emit(NewAdvertisement().WithServices(blewatch.ServiceUUIDBattery).Build()))
}

func TestSessionFailOn(t *testing.T) {
	s := NewSession()
	errBoom := errors.New("boom")

	s.FailOn(OpStart, errBoom)
	assert.ErrorIs(t, s.Start(), errBoom)
	assert.False(t, s.Armed())
	assert.Equal(t, 1, s.Calls(OpStart))

	s.FailOn(OpStart, nil)
	require.NoError(t, s.Start())
	assert.True(t, s.Armed())
	assert.Error(t, s.Start(), "starting twice")
	assert.Equal(t, 3, s.Calls(OpStart))
}

func TestSessionRelease(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.SetScanningMode(blewatch.ScanningModePassive))
	require.NoError(t, s.SetAllowExtendedAdvertisements(true))
	assert.Equal(t, blewatch.ScanningModePassive, s.Mode())
	assert.True(t, s.ExtendedAdvertisements())

	require.NoError(t, s.Release())
	assert.True(t, s.Released())
	assert.ErrorIs(t, s.Start(), ErrReleased)
	assert.ErrorIs(t, s.Release(), ErrReleased)
}

func TestAdvertisementBuilder(t *testing.T) {
	b := NewAdvertisement().
		WithAddress("11:22:33:AA:BB:CC").
		WithName("Thermo").
		WithRSSI(-70).
		WithServices(blewatch.ServiceUUIDEnvironmentalSensor).
		WithManufacturerData(0x0059, []byte{1, 2, 3}).
		WithTxPower(4)
	ev := b.Build()

	assert.Equal(t, "11:22:33:AA:BB:CC", ev.Address.String())
	assert.Equal(t, "Thermo", ev.LocalName)
	assert.Equal(t, int16(-70), ev.RSSI)
	assert.True(t, ev.Connectable)
	assert.True(t, ev.HasServiceUUID(blewatch.ServiceUUIDEnvironmentalSensor))
	assert.Equal(t, uint16(0x0059), ev.ManufacturerData[0].CompanyID)
	assert.True(t, ev.HasTxPower)
	assert.Equal(t, int16(4), ev.TxPower)

	// Build returns independent copies.
	ev.ManufacturerData[0].Data[0] = 0xff
	assert.Equal(t, byte(1), b.Build().ManufacturerData[0].Data[0])

	assert.Panics(t, func() { NewAdvertisement().WithAddress("nope") })
}

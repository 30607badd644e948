package blewatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewScanFilterRemovesDuplicates(t *testing.T) {
	f := NewScanFilter(ServiceUUIDHeartRate, ServiceUUIDBattery, ServiceUUIDHeartRate)
	assert.Equal(t, []UUID{ServiceUUIDHeartRate, ServiceUUIDBattery}, f.Services)
	assert.False(t, f.IsEmpty())
}

func TestScanFilterNormalizedDoesNotAlias(t *testing.T) {
	services := []UUID{ServiceUUIDHeartRate, ServiceUUIDBattery}
	f := ScanFilter{Services: services}.normalized()
	services[0] = ServiceUUIDNordicUART
	assert.Equal(t, ServiceUUIDHeartRate, f.Services[0])
}

func TestScanFilterMatches(t *testing.T) {
	hr := &AdvertisementEvent{ServiceUUIDs: []UUID{ServiceUUIDHeartRate}}
	bare := &AdvertisementEvent{}

	tests := []struct {
		name   string
		filter ScanFilter
		ev     *AdvertisementEvent
		want   bool
	}{
		{"empty filter matches advertisement with services", ScanFilter{}, hr, true},
		{"empty filter matches bare advertisement", ScanFilter{}, bare, true},
		{"matching service", NewScanFilter(ServiceUUIDHeartRate), hr, true},
		{"any of the services", NewScanFilter(ServiceUUIDBattery, ServiceUUIDHeartRate), hr, true},
		{"other service", NewScanFilter(ServiceUUIDBattery), hr, false},
		{"bare advertisement", NewScanFilter(ServiceUUIDHeartRate), bare, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.ev))
		})
	}
}

func TestScanFilterStrings(t *testing.T) {
	f := NewScanFilter(ServiceUUIDHeartRate)
	assert.Equal(t, []string{"0000180d-0000-1000-8000-00805f9b34fb"}, f.Strings())
	assert.Empty(t, ScanFilter{}.Strings())
}

func TestAdvertisementEventClone(t *testing.T) {
	ev := &AdvertisementEvent{
		LocalName:        "HRM",
		ServiceUUIDs:     []UUID{ServiceUUIDHeartRate},
		ManufacturerData: []ManufacturerDataElement{{CompanyID: 0x0059, Data: []byte{1, 2}}},
		ServiceData:      []ServiceDataElement{{UUID: ServiceUUIDBattery, Data: []byte{99}}},
	}
	c := ev.Clone()
	ev.ServiceUUIDs[0] = ServiceUUIDBattery
	ev.ManufacturerData[0].Data[0] = 0xff
	ev.ServiceData[0].Data[0] = 0

	assert.Equal(t, "HRM", c.LocalName)
	assert.Equal(t, ServiceUUIDHeartRate, c.ServiceUUIDs[0])
	assert.Equal(t, []byte{1, 2}, c.ManufacturerData[0].Data)
	assert.Equal(t, []byte{99}, c.ServiceData[0].Data)
	assert.True(t, c.HasServiceUUID(ServiceUUIDHeartRate))
}

package bletest

import (
	"tinygo.org/x/blewatch"
)

// AdvertisementBuilder builds advertisement events for Session.Emit.
type AdvertisementBuilder struct {
	ev blewatch.AdvertisementEvent
}

// NewAdvertisement returns a builder for a connectable advertisement with
// RSSI -50.
func NewAdvertisement() *AdvertisementBuilder {
	return &AdvertisementBuilder{ev: blewatch.AdvertisementEvent{
		RSSI:        -50,
		Connectable: true,
	}}
}

// WithAddress sets the MAC address. It panics on a malformed address, since
// that is a bug in the test.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	mac, err := blewatch.ParseMAC(addr)
	if err != nil {
		panic("bletest: invalid address " + addr)
	}
	b.ev.Address.MAC = mac
	return b
}

func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.ev.LocalName = name
	return b
}

func (b *AdvertisementBuilder) WithRSSI(rssi int16) *AdvertisementBuilder {
	b.ev.RSSI = rssi
	return b
}

func (b *AdvertisementBuilder) WithServices(uuids ...blewatch.UUID) *AdvertisementBuilder {
	b.ev.ServiceUUIDs = append(b.ev.ServiceUUIDs, uuids...)
	return b
}

func (b *AdvertisementBuilder) WithManufacturerData(companyID uint16, data []byte) *AdvertisementBuilder {
	b.ev.ManufacturerData = append(b.ev.ManufacturerData, blewatch.ManufacturerDataElement{
		CompanyID: companyID,
		Data:      data,
	})
	return b
}

func (b *AdvertisementBuilder) WithTxPower(tx int16) *AdvertisementBuilder {
	b.ev.TxPower = tx
	b.ev.HasTxPower = true
	return b
}

// Build returns a copy of the event built so far.
func (b *AdvertisementBuilder) Build() blewatch.AdvertisementEvent {
	return b.ev.Clone()
}

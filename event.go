package blewatch

import "time"

// ManufacturerDataElement is one manufacturer specific data section of an
// advertisement.
type ManufacturerDataElement struct {
	// The company ID, which must be one of the assigned company IDs.
	// The full list is in here:
	// https://www.bluetooth.com/specifications/assigned-numbers/
	CompanyID uint16

	// The value, which can be any value but can't be very large.
	Data []byte
}

// ServiceDataElement is one service data section of an advertisement.
type ServiceDataElement struct {
	UUID UUID
	Data []byte
}

// AdvertisementEvent is a single received advertisement. Events handed to an
// EventCallback must not be retained after the callback returns; call Clone
// to keep one.
type AdvertisementEvent struct {
	// Address of the peripheral that sent the advertisement.
	Address Address

	// RSSI the last time a packet from this device has been received.
	RSSI int16

	// LocalName is the (complete or shortened) local name of the device.
	// Empty when the advertisement did not include one.
	LocalName string

	// ServiceUUIDs lists the services the peripheral advertised.
	ServiceUUIDs []UUID

	ManufacturerData []ManufacturerDataElement
	ServiceData      []ServiceDataElement

	// TxPower is only meaningful when HasTxPower is set.
	TxPower    int16
	HasTxPower bool

	Connectable bool

	// Timestamp is when the native stack reported the advertisement.
	Timestamp time.Time
}

// HasServiceUUID returns true whether the given UUID is present in the
// advertisement payload as a Service Class UUID.
func (ev *AdvertisementEvent) HasServiceUUID(uuid UUID) bool {
	for _, u := range ev.ServiceUUIDs {
		if u == uuid {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the event.
func (ev *AdvertisementEvent) Clone() AdvertisementEvent {
	c := *ev
	if ev.ServiceUUIDs != nil {
		c.ServiceUUIDs = append([]UUID(nil), ev.ServiceUUIDs...)
	}
	if ev.ManufacturerData != nil {
		c.ManufacturerData = make([]ManufacturerDataElement, len(ev.ManufacturerData))
		for i, m := range ev.ManufacturerData {
			c.ManufacturerData[i] = ManufacturerDataElement{CompanyID: m.CompanyID, Data: append([]byte(nil), m.Data...)}
		}
	}
	if ev.ServiceData != nil {
		c.ServiceData = make([]ServiceDataElement, len(ev.ServiceData))
		for i, s := range ev.ServiceData {
			c.ServiceData[i] = ServiceDataElement{UUID: s.UUID, Data: append([]byte(nil), s.Data...)}
		}
	}
	return c
}

// EventCallback is invoked once per received advertisement. It is called
// serially from a goroutine owned by the watcher, never from the goroutine
// that called Start. It should not block for long: while it runs, further
// events queue up and the oldest are dropped once the queue is full.
type EventCallback func(*AdvertisementEvent)

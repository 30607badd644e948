// Package bletest provides a simulated native scanning session, for testing
// code built on blewatch without a Bluetooth radio.
package bletest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/blewatch"
)

// Op names one native call of a session.
type Op string

const (
	OpClearServiceUUIDs              Op = "ClearServiceUUIDs"
	OpAppendServiceUUID              Op = "AppendServiceUUID"
	OpServiceUUIDs                   Op = "ServiceUUIDs"
	OpSetScanningMode                Op = "SetScanningMode"
	OpSetAllowExtendedAdvertisements Op = "SetAllowExtendedAdvertisements"
	OpSetReceivedHandler             Op = "SetReceivedHandler"
	OpRemoveReceivedHandler          Op = "RemoveReceivedHandler"
	OpStart                          Op = "Start"
	OpStop                           Op = "Stop"
	OpRelease                        Op = "Release"
)

// ErrReleased is returned by every call on a released session.
var ErrReleased = errors.New("bletest: session released")

// Session is a simulated radio implementing blewatch.Session. Failures can be
// injected per native call with FailOn, and advertisements are produced with
// Emit. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	services []blewatch.UUID
	mode     blewatch.ScanningMode
	extended bool
	handler  func(*blewatch.AdvertisementEvent)
	armed    bool
	released bool

	failures map[Op]error
	calls    map[Op]int
}

var _ blewatch.Session = (*Session)(nil)

// NewSession returns a disarmed session with an empty filter.
func NewSession() *Session {
	return &Session{
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
	}
}

// FailOn makes every following call of op fail with err. A nil err removes
// the failure.
func (s *Session) FailOn(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how often op was called, including failed calls.
func (s *Session) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records a call and returns the injected failure, if any. It must be
// called with s.mu held.
func (s *Session) enter(op Op) error {
	s.calls[op]++
	if s.released {
		return ErrReleased
	}
	return s.failures[op]
}

func (s *Session) ClearServiceUUIDs() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpClearServiceUUIDs); err != nil {
		return err
	}
	s.services = nil
	return nil
}

func (s *Session) AppendServiceUUID(uuid blewatch.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpAppendServiceUUID); err != nil {
		return err
	}
	s.services = append(s.services, uuid)
	return nil
}

func (s *Session) ServiceUUIDs() ([]blewatch.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpServiceUUIDs); err != nil {
		return nil, err
	}
	return append([]blewatch.UUID(nil), s.services...), nil
}

func (s *Session) SetScanningMode(mode blewatch.ScanningMode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpSetScanningMode); err != nil {
		return err
	}
	s.mode = mode
	return nil
}

func (s *Session) SetAllowExtendedAdvertisements(allow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpSetAllowExtendedAdvertisements); err != nil {
		return err
	}
	s.extended = allow
	return nil
}

func (s *Session) SetReceivedHandler(handler func(*blewatch.AdvertisementEvent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpSetReceivedHandler); err != nil {
		return err
	}
	s.handler = handler
	return nil
}

func (s *Session) RemoveReceivedHandler() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRemoveReceivedHandler); err != nil {
		return err
	}
	s.handler = nil
	return nil
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpStart); err != nil {
		return err
	}
	if s.armed {
		return fmt.Errorf("bletest: session already started")
	}
	s.armed = true
	return nil
}

func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpStop); err != nil {
		return err
	}
	s.armed = false
	return nil
}

func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(OpRelease); err != nil {
		return err
	}
	s.released = true
	s.armed = false
	s.handler = nil
	return nil
}

// Armed reports whether the simulated radio is listening.
func (s *Session) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Released reports whether Release succeeded.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// HasHandler reports whether a received handler is registered.
func (s *Session) HasHandler() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler != nil
}

// Mode returns the last scanning mode set.
func (s *Session) Mode() blewatch.ScanningMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ExtendedAdvertisements returns the last extended advertisement setting.
func (s *Session) ExtendedAdvertisements() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extended
}

// Emit simulates the radio receiving ev. Like a native stack, the session
// only hands the event to the registered handler while armed and when ev
// advertises one of the filter's services (an empty filter passes
// everything). The handler runs on the calling goroutine, which plays the
// part of the radio thread. Emit reports whether the handler was invoked.
func (s *Session) Emit(ev blewatch.AdvertisementEvent) bool {
	s.mu.Lock()
	handler := s.handler
	pass := s.armed && handler != nil && blewatch.ScanFilter{Services: s.services}.Matches(&ev)
	s.mu.Unlock()
	if !pass {
		return false
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	handler(&ev)
	return true
}

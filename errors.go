package blewatch

import (
	"errors"
	"fmt"
)

// ConfigStep names the part of Start that failed.
type ConfigStep string

const (
	StepFilter                 ConfigStep = "filter"
	StepScanningMode           ConfigStep = "scanning_mode"
	StepExtendedAdvertisements ConfigStep = "extended_advertisements"
	StepRegisterHandler        ConfigStep = "register_handler"
	StepArm                    ConfigStep = "arm"
)

// PlatformInitError is returned when no native scanning session could be
// obtained: no adapter, adapter powered off, missing permission or an
// unsupported platform.
type PlatformInitError struct {
	Msg   string
	cause error
}

func (e *PlatformInitError) Error() string {
	if e.Msg == "" {
		return "blewatch: platform init failed"
	}
	return "blewatch: platform init failed: " + e.Msg
}

// Is allows errors.Is(err, ErrPlatformInit).
func (e *PlatformInitError) Is(target error) bool {
	_, ok := target.(*PlatformInitError)
	return ok
}

func (e *PlatformInitError) Unwrap() error { return e.cause }

// ScanConfigError is returned by Start when configuring or arming the native
// session failed. The watcher stays disarmed and delivers no events.
type ScanConfigError struct {
	Step  ConfigStep
	Msg   string
	cause error
}

func (e *ScanConfigError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("blewatch: scan config failed at %s", e.Step)
	}
	return fmt.Sprintf("blewatch: scan config failed at %s: %s", e.Step, e.Msg)
}

// Is allows errors.Is to compare ScanConfigError values by Step. A target
// without a Step matches any step.
func (e *ScanConfigError) Is(target error) bool {
	t, ok := target.(*ScanConfigError)
	if !ok {
		return false
	}
	return t.Step == "" || t.Step == e.Step
}

func (e *ScanConfigError) Unwrap() error { return e.cause }

// ScanStopError is returned by Stop and Close when the native session failed
// to disarm. The watcher then still reports StateArmed: whether the radio is
// still listening is unknown, so the caller may retry Stop or Close.
type ScanStopError struct {
	Msg string
}

func (e *ScanStopError) Error() string {
	if e.Msg == "" {
		return "blewatch: scan stop failed"
	}
	return "blewatch: scan stop failed: " + e.Msg
}

// Is allows errors.Is(err, ErrScanStop).
func (e *ScanStopError) Is(target error) bool {
	_, ok := target.(*ScanStopError)
	return ok
}

// Sentinel targets for errors.Is.
var (
	ErrPlatformInit = &PlatformInitError{}
	ErrScanConfig   = &ScanConfigError{}
	ErrScanStop     = &ScanStopError{}
)

// Causes produced by the watcher itself. Unlike native failures these are
// reachable through errors.Is.
var (
	ErrAlreadyArmed        = errors.New("watcher already armed")
	ErrClosed              = errors.New("watcher closed")
	ErrNilCallback         = errors.New("nil event callback")
	ErrNilSession          = errors.New("nil native session")
	ErrUnsupportedPlatform = errors.New("platform has no BLE scanning backend")
	ErrUnsupportedMode     = errors.New("scanning mode not supported by platform")
)

var ownCauses = []error{
	ErrAlreadyArmed, ErrClosed, ErrNilCallback, ErrNilSession,
	ErrUnsupportedPlatform, ErrUnsupportedMode,
}

// ownCause returns err when it is one of the watcher's own causes. Native
// errors are only kept as text so that no native type crosses the package
// boundary.
func ownCause(err error) error {
	for _, c := range ownCauses {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

func newPlatformInitError(err error) *PlatformInitError {
	return &PlatformInitError{Msg: describe(err), cause: ownCause(err)}
}

func newScanConfigError(step ConfigStep, err error) *ScanConfigError {
	return &ScanConfigError{Step: step, Msg: describe(err), cause: ownCause(err)}
}

func newScanStopError(err error) *ScanStopError {
	return &ScanStopError{Msg: describe(err)}
}

func describe(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

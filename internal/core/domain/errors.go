package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration tags configuration errors that must stop the
// process before the control loop starts.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// DeviceUnreachableError covers every connectivity-class failure of a device
// call: refused/timed-out transport, non-2xx status, malformed response.
// Callers never distinguish between those causes.
type DeviceUnreachableError struct {
	Device string
	Err    error
}

func (e *DeviceUnreachableError) Error() string {
	return fmt.Sprintf("device %s unreachable: %s", e.Device, e.Err)
}

func (e *DeviceUnreachableError) Unwrap() error {
	return e.Err
}

func Unreachable(device string, err error) error {
	return &DeviceUnreachableError{Device: device, Err: err}
}

func IsDeviceUnreachable(err error) bool {
	var u *DeviceUnreachableError
	return errors.As(err, &u)
}

// AllSourcesUnreachableError reports a failover walk that exhausted every
// endpoint.
type AllSourcesUnreachableError struct {
	Op   string
	Errs []error
}

func (e *AllSourcesUnreachableError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%s: all sources unreachable: %s", e.Op, strings.Join(msgs, "; "))
}

func (e *AllSourcesUnreachableError) Unwrap() []error {
	return e.Errs
}

func IsAllSourcesUnreachable(err error) bool {
	var a *AllSourcesUnreachableError
	return errors.As(err, &a)
}

// InverterNotConfiguredError: the controlled serial is absent from gateway
// telemetry. Fatal, since it would recur on every cycle.
type InverterNotConfiguredError struct {
	Serial string
}

func (e *InverterNotConfiguredError) Error() string {
	return fmt.Sprintf("inverter serial %s not present in gateway telemetry", e.Serial)
}

func IsInverterNotConfigured(err error) bool {
	var n *InverterNotConfiguredError
	return errors.As(err, &n)
}

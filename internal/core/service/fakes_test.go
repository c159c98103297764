package service

import (
	"context"
	"errors"

	"github.com/exportguard/exportguardd/internal/core/domain"
)

type fakeGateway struct {
	readings []domain.InverterReading
	liveErr  error
	setErr   error

	liveCalls  int
	setCalls   int
	lastSerial string
	lastWatt   int
}

func (g *fakeGateway) LiveInverters(_ context.Context) ([]domain.InverterReading, error) {
	g.liveCalls++
	if g.liveErr != nil {
		return nil, g.liveErr
	}
	return g.readings, nil
}

func (g *fakeGateway) SetLimit(_ context.Context, serial string, watt int) (domain.LimitAck, error) {
	g.setCalls++
	g.lastSerial = serial
	g.lastWatt = watt
	if g.setErr != nil {
		return domain.LimitAck{}, g.setErr
	}
	return domain.LimitAck{AppliedType: "absolute"}, nil
}

type fakeMeter struct {
	reading domain.MeterReading
	err     error
	calls   int
}

func (m *fakeMeter) ReadPower(_ context.Context) (domain.MeterReading, error) {
	m.calls++
	if m.err != nil {
		return domain.MeterReading{}, m.err
	}
	return m.reading, nil
}

type fakeRelay struct {
	power    float64
	powerErr error
	on       bool
	stateErr error
	setErr   error

	readPowerCalls int
	readStateCalls int
	setCalls       int
}

func (r *fakeRelay) ReadPower(_ context.Context) (domain.MeterReading, error) {
	r.readPowerCalls++
	if r.powerErr != nil {
		return domain.MeterReading{}, r.powerErr
	}
	return domain.SinglePhaseReading(r.power), nil
}

func (r *fakeRelay) ReadSwitchState(_ context.Context) (bool, error) {
	r.readStateCalls++
	if r.stateErr != nil {
		return false, r.stateErr
	}
	return r.on, nil
}

func (r *fakeRelay) SetSwitch(_ context.Context, on bool) error {
	r.setCalls++
	if r.setErr != nil {
		return r.setErr
	}
	r.on = on
	return nil
}

type fakeAlerter struct {
	subjects []string
	err      error
}

func (a *fakeAlerter) SendAlert(subject, _ string) error {
	a.subjects = append(a.subjects, subject)
	return a.err
}

func unreachable(device string) error {
	return domain.Unreachable(device, errors.New("connection refused"))
}

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleWindowContains(t *testing.T) {
	day := ScheduleWindow{StartHour: 8, EndHour: 20}
	assert.True(t, day.Contains(8))
	assert.True(t, day.Contains(19))
	assert.False(t, day.Contains(20), "end hour is exclusive")
	assert.False(t, day.Contains(7))
	assert.False(t, day.Contains(23))

	overnight := ScheduleWindow{StartHour: 22, EndHour: 6}
	assert.True(t, overnight.Contains(23))
	assert.True(t, overnight.Contains(0))
	assert.True(t, overnight.Contains(5))
	assert.False(t, overnight.Contains(6))
	assert.False(t, overnight.Contains(12))
}

func TestThreePhaseReadingSumsPhases(t *testing.T) {
	reading := ThreePhaseReading(100, -50, 25)
	assert.Equal(t, 75.0, reading.TotalWatt)
	assert.NotNil(t, reading.PhaseBWatt)
	assert.Equal(t, -50.0, *reading.PhaseBWatt)

	single := SinglePhaseReading(120)
	assert.Nil(t, single.PhaseAWatt)
	assert.Equal(t, 120.0, single.TotalWatt)
}

func TestErrorPredicates(t *testing.T) {
	wrapped := Unreachable("meter", errors.New("timeout"))
	assert.True(t, IsDeviceUnreachable(wrapped))
	assert.False(t, IsDeviceUnreachable(errors.New("timeout")))

	exhausted := &AllSourcesUnreachableError{Op: "read", Errs: []error{wrapped}}
	assert.True(t, IsAllSourcesUnreachable(exhausted))
	assert.False(t, IsAllSourcesUnreachable(wrapped))

	assert.True(t, IsInverterNotConfigured(&InverterNotConfiguredError{Serial: "x"}))
}

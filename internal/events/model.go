package events

import (
	"sync"
	"time"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
)

// CycleStatus is the externally visible snapshot of one control cycle,
// served by the status endpoint and published over MQTT.
type CycleStatus struct {
	Time              time.Time `json:"time"`
	Version           string    `json:"version"`
	Outcome           string    `json:"outcome"`
	ReadSource        string    `json:"read_source"`
	WriteSource       string    `json:"write_source,omitempty"`
	MeterReachable    bool      `json:"meter_reachable"`
	GridPowerWatt     float64   `json:"grid_power_watt"`
	InverterPowerWatt float64   `json:"inverter_power_watt"`
	CurrentLimitWatt  int       `json:"current_limit_watt"`
	AppliedLimitWatt  int       `json:"applied_limit_watt"`
	RelayChecked      bool      `json:"relay_checked"`
	RelayPowerWatt    *float64  `json:"relay_power_watt,omitempty"`
	RelayTripped      bool      `json:"relay_tripped"`
}

func NewCycleStatus(now time.Time, res domain.CycleResult, safety *domain.SafetyResult) CycleStatus {
	status := CycleStatus{
		Time:              now,
		Version:           versioninfo.Short(),
		Outcome:           res.Outcome.String(),
		ReadSource:        res.ReadSource.String(),
		MeterReachable:    res.MeterReachable,
		GridPowerWatt:     res.GridPowerWatt,
		InverterPowerWatt: res.InverterPowerWatt,
		CurrentLimitWatt:  res.CurrentLimitWatt,
		AppliedLimitWatt:  res.AppliedLimitWatt,
	}
	if res.WriteSource != domain.SourceNone {
		status.WriteSource = res.WriteSource.String()
	}
	if safety != nil {
		status.RelayChecked = true
		status.RelayTripped = safety.Tripped
		if safety.MeterReachable {
			power := safety.RelayPowerWatt
			status.RelayPowerWatt = &power
		}
	}
	return status
}

// StatusStore keeps the most recent cycle snapshot for read-side consumers.
// The scheduler writes, the HTTP server reads.
type StatusStore struct {
	mu   sync.RWMutex
	last *CycleStatus
}

func (s *StatusStore) Set(status CycleStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &status
}

func (s *StatusStore) Last() (CycleStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return CycleStatus{}, false
	}
	return *s.last, true
}

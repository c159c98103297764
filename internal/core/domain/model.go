package domain

// Source identifies which endpoint satisfied a device operation.
type Source int

const (
	SourceNone Source = iota
	SourcePrimary
	SourceBackup
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceBackup:
		return "backup"
	default:
		return "none"
	}
}

// InverterReading is one telemetry snapshot of a single inverter, as
// reported by a DTU gateway. Valid only for the cycle that fetched it.
type InverterReading struct {
	Serial            string
	Reachable         bool
	Producing         bool
	PowerWatt         float64
	LimitRelativePct  float64
	LimitAbsoluteWatt int
}

// MeterReading is one instantaneous power sample. Phase values are nil on
// single-phase devices; TotalWatt is the phase sum when phases are present.
type MeterReading struct {
	PhaseAWatt *float64
	PhaseBWatt *float64
	PhaseCWatt *float64
	TotalWatt  float64
}

func SinglePhaseReading(totalWatt float64) MeterReading {
	return MeterReading{TotalWatt: totalWatt}
}

func ThreePhaseReading(a, b, c float64) MeterReading {
	return MeterReading{
		PhaseAWatt: &a,
		PhaseBWatt: &b,
		PhaseCWatt: &c,
		TotalWatt:  a + b + c,
	}
}

// LimitAck is the inverter gateway's acknowledgment of a limit write.
type LimitAck struct {
	AppliedType string
}

// CycleOutcome is the terminal state of one control cycle.
type CycleOutcome int

const (
	// OutcomeLimitUpdated: a new limit was computed and written.
	OutcomeLimitUpdated CycleOutcome = iota
	// OutcomeLimitUnchanged: computed limit equals the current one, no write.
	OutcomeLimitUnchanged
	// OutcomeDeferredToSafety: inverter unreachable, safety monitor takes over.
	OutcomeDeferredToSafety
	// OutcomeAborted: live data unavailable from every source, cycle skipped.
	OutcomeAborted
	// OutcomeWriteFailed: limit write exhausted every source.
	OutcomeWriteFailed
)

func (o CycleOutcome) String() string {
	switch o {
	case OutcomeLimitUpdated:
		return "limit_updated"
	case OutcomeLimitUnchanged:
		return "limit_unchanged"
	case OutcomeDeferredToSafety:
		return "deferred_to_safety"
	case OutcomeWriteFailed:
		return "write_failed"
	default:
		return "aborted"
	}
}

// CycleResult describes what the limit controller did in one cycle.
type CycleResult struct {
	Outcome           CycleOutcome
	ReadSource        Source
	WriteSource       Source
	GridPowerWatt     float64
	MeterReachable    bool
	InverterPowerWatt float64
	CurrentLimitWatt  int
	AppliedLimitWatt  int
}

// SafetyResult describes one safety monitor pass.
type SafetyResult struct {
	MeterReachable bool
	RelayPowerWatt float64
	RelayWasOn     bool
	Tripped        bool
}

// ScheduleWindow restricts control cycles to the daily interval
// [StartHour, EndHour). StartHour > EndHour wraps over midnight.
type ScheduleWindow struct {
	StartHour int
	EndHour   int
}

func (w ScheduleWindow) Contains(hour int) bool {
	if w.StartHour <= w.EndHour {
		return hour >= w.StartHour && hour < w.EndHour
	}
	return hour >= w.StartHour || hour < w.EndHour
}

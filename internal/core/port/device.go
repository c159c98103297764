package port

import (
	"context"

	"github.com/exportguard/exportguardd/internal/core/domain"
)

// PowerMeter reads an instantaneous power sample. Implementations must try
// the multi-phase path first and fall back to a single-phase read when the
// device does not expose per-phase data.
type PowerMeter interface {
	ReadPower(ctx context.Context) (domain.MeterReading, error)
}

// Switch reads and writes a binary relay state. SetSwitch is idempotent.
type Switch interface {
	ReadSwitchState(ctx context.Context) (bool, error)
	SetSwitch(ctx context.Context, on bool) error
}

// GuardRelay is the emergency-stop device: a switch that also measures the
// power flowing through it.
type GuardRelay interface {
	PowerMeter
	Switch
}

// InverterGateway talks to a DTU that aggregates inverter telemetry and
// accepts absolute output limits.
type InverterGateway interface {
	LiveInverters(ctx context.Context) ([]domain.InverterReading, error)
	SetLimit(ctx context.Context, serial string, watt int) (domain.LimitAck, error)
}

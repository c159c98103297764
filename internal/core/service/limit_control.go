package service

import (
	"context"
	"math"

	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/core/port"

	"go.uber.org/zap"
)

// HysteresisMarginWatt is subtracted from every computed limit to bias the
// inverter toward slight under-production instead of export. Without it the
// limit oscillates around the zero-export boundary because of polling and
// actuation latency.
const HysteresisMarginWatt = 5

// LimitController runs the per-cycle proportional control: it nudges the
// inverter output limit toward zero grid import using the latest meter
// sample as the error signal. The current limit is always re-read from the
// device, never cached, so the inverter stays the source of truth.
type LimitController struct {
	Serial       string
	MinLimitWatt int
	MaxLimitWatt int
	Inverters    []Endpoint[port.InverterGateway]
	Meter        port.PowerMeter
	Logger       *zap.Logger
}

// RunCycle executes one control pass. The returned error is non-nil only
// for fatal misconfiguration (controlled serial missing from telemetry);
// every transient condition ends in a CycleResult instead.
func (c *LimitController) RunCycle(ctx context.Context) (domain.CycleResult, error) {
	var result domain.CycleResult

	reading, source, err := Failover(ctx, "read live inverters", c.Inverters, c.fetchControlled)
	if err != nil {
		if domain.IsAllSourcesUnreachable(err) {
			c.Logger.Warn("live inverter data unavailable, skipping cycle", zap.Error(err))
			result.Outcome = domain.OutcomeAborted
			return result, nil
		}
		return result, err
	}
	result.ReadSource = source
	result.InverterPowerWatt = reading.PowerWatt
	result.CurrentLimitWatt = reading.LimitAbsoluteWatt

	if !reading.Reachable {
		c.Logger.Warn("inverter not reachable, deferring to safety monitor",
			zap.String("serial", c.Serial), zap.String("source", source.String()))
		result.Outcome = domain.OutcomeDeferredToSafety
		return result, nil
	}

	gridPower, meterOK := c.readMeter(ctx)
	result.GridPowerWatt = gridPower
	result.MeterReachable = meterOK

	newLimit := c.computeLimit(gridPower, reading.LimitAbsoluteWatt, meterOK)
	result.AppliedLimitWatt = newLimit

	if newLimit == reading.LimitAbsoluteWatt {
		c.Logger.Info("limit unchanged",
			zap.Int("limit_watt", newLimit),
			zap.Float64("grid_power_watt", gridPower))
		result.Outcome = domain.OutcomeLimitUnchanged
		return result, nil
	}

	ack, writeSource, err := Failover(ctx, "set inverter limit", c.Inverters,
		func(ctx context.Context, gw port.InverterGateway) (domain.LimitAck, error) {
			return gw.SetLimit(ctx, c.Serial, newLimit)
		})
	if err != nil {
		// A missed limit update is tolerable, a crashed control loop is not.
		c.Logger.Error("limit write failed on every source",
			zap.Int("limit_watt", newLimit), zap.Error(err))
		result.Outcome = domain.OutcomeWriteFailed
		return result, nil
	}
	result.WriteSource = writeSource
	result.Outcome = domain.OutcomeLimitUpdated
	c.Logger.Info("limit updated",
		zap.Int("previous_watt", reading.LimitAbsoluteWatt),
		zap.Int("limit_watt", newLimit),
		zap.Float64("grid_power_watt", gridPower),
		zap.String("source", writeSource.String()),
		zap.String("applied_type", ack.AppliedType))
	return result, nil
}

// fetchControlled reads live telemetry and extracts the controlled serial.
// A missing serial is fatal: it would recur every cycle.
func (c *LimitController) fetchControlled(ctx context.Context, gw port.InverterGateway) (domain.InverterReading, error) {
	inverters, err := gw.LiveInverters(ctx)
	if err != nil {
		return domain.InverterReading{}, err
	}
	for _, inv := range inverters {
		if inv.Serial == c.Serial {
			return inv, nil
		}
	}
	return domain.InverterReading{}, &domain.InverterNotConfiguredError{Serial: c.Serial}
}

// readMeter reads the single configured grid meter. No failover here; a
// failure switches the cycle into degraded mode instead.
func (c *LimitController) readMeter(ctx context.Context) (float64, bool) {
	reading, err := c.Meter.ReadPower(ctx)
	if err != nil {
		c.Logger.Warn("grid meter unreachable, entering degraded mode", zap.Error(err))
		return 0, false
	}
	return reading.TotalWatt, true
}

// computeLimit applies the proportional formula and clamps to the configured
// bounds. In degraded mode (meter unreadable) the limit is forced to the
// minimum: evaluating the formula with a substitute zero would falsely push
// the limit toward maximum.
func (c *LimitController) computeLimit(gridPowerWatt float64, currentLimitWatt int, meterOK bool) int {
	if !meterOK {
		return c.MinLimitWatt
	}
	newLimit := int(math.Round(gridPowerWatt)) + currentLimitWatt - HysteresisMarginWatt
	if newLimit < c.MinLimitWatt {
		newLimit = c.MinLimitWatt
	}
	if newLimit > c.MaxLimitWatt {
		newLimit = c.MaxLimitWatt
	}
	return newLimit
}

// ensure interface compliance
var _ CycleRunner = (*LimitController)(nil)

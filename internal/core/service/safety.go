package service

import (
	"context"
	"fmt"

	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/core/port"

	"go.uber.org/zap"
)

// SafetyMonitor guards the installation while the inverter is unreachable.
// It watches the emergency-stop relay's own power measurement, which is
// physically separate from the grid meter: an unreachable inverter may be a
// symptom of a broader outage that also took the meter down.
//
// The monitor is purely reactive. It can open the relay, never close it;
// re-energizing after a trip is an operator decision.
type SafetyMonitor struct {
	Relay             port.GuardRelay
	TripThresholdWatt float64
	Alert             port.AlertSender
	Logger            *zap.Logger
}

func (m *SafetyMonitor) Check(ctx context.Context) domain.SafetyResult {
	var result domain.SafetyResult

	reading, err := m.Relay.ReadPower(ctx)
	if err != nil {
		// Absence of data is not evidence of overcurrent: alert, don't trip.
		m.Logger.Warn("safety relay meter unreachable", zap.Error(err))
		m.sendAlert("exportguard: safety relay unreachable",
			fmt.Sprintf("The safety relay meter could not be read while the inverter is unreachable: %s", err))
		return result
	}
	result.MeterReachable = true
	result.RelayPowerWatt = reading.TotalWatt

	if reading.TotalWatt <= m.TripThresholdWatt {
		m.Logger.Info("safety check passed",
			zap.Float64("relay_power_watt", reading.TotalWatt),
			zap.Float64("threshold_watt", m.TripThresholdWatt))
		return result
	}

	// Read before mutating so a relay that is already open is left alone.
	on, err := m.Relay.ReadSwitchState(ctx)
	if err != nil {
		m.Logger.Warn("safety relay state unreadable before trip", zap.Error(err))
		m.sendAlert("exportguard: safety relay unreachable",
			fmt.Sprintf("The safety relay state could not be read before tripping: %s", err))
		return result
	}
	result.RelayWasOn = on
	if !on {
		m.Logger.Info("relay already open, no trip needed",
			zap.Float64("relay_power_watt", reading.TotalWatt))
		return result
	}

	m.Logger.Warn("power above safety threshold, tripping relay",
		zap.Float64("relay_power_watt", reading.TotalWatt),
		zap.Float64("threshold_watt", m.TripThresholdWatt))
	if err := m.Relay.SetSwitch(ctx, false); err != nil {
		m.Logger.Error("failed to trip safety relay", zap.Error(err))
		m.sendAlert("exportguard: safety relay trip FAILED",
			fmt.Sprintf("Power of %.0f W exceeds the %.0f W threshold but the relay refused the trip command: %s",
				reading.TotalWatt, m.TripThresholdWatt, err))
		return result
	}
	result.Tripped = true
	m.sendAlert("exportguard: safety relay tripped",
		fmt.Sprintf("The inverter is unreachable and the safety relay measured %.0f W (threshold %.0f W). The relay has been opened and stays open until re-closed manually.",
			reading.TotalWatt, m.TripThresholdWatt))
	return result
}

func (m *SafetyMonitor) sendAlert(subject, body string) {
	if m.Alert == nil {
		return
	}
	if err := m.Alert.SendAlert(subject, body); err != nil {
		m.Logger.Warn("alert delivery failed", zap.String("subject", subject), zap.Error(err))
	}
}

// ensure interface compliance
var _ SafetyChecker = (*SafetyMonitor)(nil)

package device

import (
	"context"
	"fmt"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap"
)

// ShellyGen1Device drives a first-generation Shelly over its REST API.
// Three-phase models (3EM) expose emeters, relay plugs expose meters; the
// emeters path is tried first and the single meter is the structural
// fallback.
type ShellyGen1Device struct {
	httpDevice
	logger *zap.Logger
}

func NewShellyGen1Device(host, username, password string, logger *zap.Logger) *ShellyGen1Device {
	return &ShellyGen1Device{
		httpDevice: newHTTPDevice(host, username, password),
		logger:     logger.With(zap.String("device", KindShelly), zap.String("host", host)),
	}
}

type shellyGen1Status struct {
	Meters []struct {
		Power float64 `json:"power"`
	} `json:"meters"`
	EMeters []struct {
		Power float64 `json:"power"`
	} `json:"emeters"`
	Relays []struct {
		IsOn bool `json:"ison"`
	} `json:"relays"`
}

func (s *ShellyGen1Device) ReadPower(ctx context.Context) (domain.MeterReading, error) {
	var status shellyGen1Status
	if err := s.getJSON(ctx, "/status", &status); err != nil {
		return domain.MeterReading{}, err
	}
	if len(status.EMeters) >= 3 {
		return domain.ThreePhaseReading(status.EMeters[0].Power, status.EMeters[1].Power, status.EMeters[2].Power), nil
	}
	if len(status.Meters) >= 1 {
		return domain.SinglePhaseReading(status.Meters[0].Power), nil
	}
	return domain.MeterReading{}, domain.Unreachable(s.host(), fmt.Errorf("status reports no meters"))
}

type shellyGen1Relay struct {
	IsOn bool `json:"ison"`
}

func (s *ShellyGen1Device) ReadSwitchState(ctx context.Context) (bool, error) {
	var relay shellyGen1Relay
	if err := s.getJSON(ctx, "/relay/0", &relay); err != nil {
		return false, err
	}
	return relay.IsOn, nil
}

func (s *ShellyGen1Device) SetSwitch(ctx context.Context, on bool) error {
	turn := "off"
	if on {
		turn = "on"
	}
	var relay shellyGen1Relay
	if err := s.getJSON(ctx, "/relay/0?turn="+turn, &relay); err != nil {
		return err
	}
	if relay.IsOn != on {
		return domain.Unreachable(s.host(), fmt.Errorf("switch command not acknowledged, relay reports ison=%t", relay.IsOn))
	}
	s.logger.Debug("relay set", zap.Bool("on", on))
	return nil
}

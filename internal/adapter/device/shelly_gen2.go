package device

import (
	"context"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap"
)

// ShellyGen2Device drives a Plus/Pro generation Shelly through its HTTP RPC
// surface. Pro 3EM models answer EM.GetStatus with per-phase power; plugs
// and 1PM relays reject the method, which selects the Switch.GetStatus
// single-phase fallback.
type ShellyGen2Device struct {
	httpDevice
	logger *zap.Logger
}

func NewShellyGen2Device(host string, logger *zap.Logger) *ShellyGen2Device {
	return &ShellyGen2Device{
		httpDevice: newHTTPDevice(host, "", ""),
		logger:     logger.With(zap.String("device", KindShellyGen2), zap.String("host", host)),
	}
}

type shellyGen2EMStatus struct {
	AActPower float64 `json:"a_act_power"`
	BActPower float64 `json:"b_act_power"`
	CActPower float64 `json:"c_act_power"`
}

type shellyGen2SwitchStatus struct {
	APower float64 `json:"apower"`
	Output bool    `json:"output"`
}

func (s *ShellyGen2Device) ReadPower(ctx context.Context) (domain.MeterReading, error) {
	var em shellyGen2EMStatus
	err := s.getJSON(ctx, "/rpc/EM.GetStatus?id=0", &em)
	if err == nil {
		return domain.ThreePhaseReading(em.AActPower, em.BActPower, em.CActPower), nil
	}
	s.logger.Debug("no EM component, reading switch measurement", zap.Error(err))
	var sw shellyGen2SwitchStatus
	if err := s.getJSON(ctx, "/rpc/Switch.GetStatus?id=0", &sw); err != nil {
		return domain.MeterReading{}, err
	}
	return domain.SinglePhaseReading(sw.APower), nil
}

func (s *ShellyGen2Device) ReadSwitchState(ctx context.Context) (bool, error) {
	var sw shellyGen2SwitchStatus
	if err := s.getJSON(ctx, "/rpc/Switch.GetStatus?id=0", &sw); err != nil {
		return false, err
	}
	return sw.Output, nil
}

type shellyGen2SetResult struct {
	WasOn bool `json:"was_on"`
}

func (s *ShellyGen2Device) SetSwitch(ctx context.Context, on bool) error {
	path := "/rpc/Switch.Set?id=0&on=false"
	if on {
		path = "/rpc/Switch.Set?id=0&on=true"
	}
	var result shellyGen2SetResult
	return s.getJSON(ctx, path, &result)
}

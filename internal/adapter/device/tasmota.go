package device

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap"
)

// TasmotaDevice drives a Tasmota flashed plug or meter bridge through the
// /cm command endpoint. It serves both the meter and relay roles: energy
// monitoring plugs report the power they switch.
type TasmotaDevice struct {
	httpDevice
	logger *zap.Logger
}

func NewTasmotaDevice(host, username, password string, logger *zap.Logger) *TasmotaDevice {
	return &TasmotaDevice{
		httpDevice: newHTTPDevice(host, username, password),
		logger:     logger.With(zap.String("device", KindTasmota), zap.String("host", host)),
	}
}

// tasmotaPower is "Power" from Status 8: a plain number on single-phase
// devices, an array on multi-phase meter bridges (SDM630 and friends).
type tasmotaPower struct {
	phases []float64
	single float64
	multi  bool
}

func (p *tasmotaPower) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.phases); err == nil {
		p.multi = true
		return nil
	}
	p.multi = false
	return json.Unmarshal(data, &p.single)
}

type tasmotaStatusSNS struct {
	StatusSNS struct {
		Energy *struct {
			Power tasmotaPower `json:"Power"`
		} `json:"ENERGY"`
	} `json:"StatusSNS"`
}

func (t *TasmotaDevice) ReadPower(ctx context.Context) (domain.MeterReading, error) {
	var status tasmotaStatusSNS
	if err := t.command(ctx, "Status 8", &status); err != nil {
		return domain.MeterReading{}, err
	}
	if status.StatusSNS.Energy == nil {
		return domain.MeterReading{}, domain.Unreachable(t.host(), fmt.Errorf("no ENERGY section in Status 8"))
	}
	power := status.StatusSNS.Energy.Power
	if !power.multi {
		return domain.SinglePhaseReading(power.single), nil
	}
	if len(power.phases) == 3 {
		return domain.ThreePhaseReading(power.phases[0], power.phases[1], power.phases[2]), nil
	}
	// split-phase meters report two elements, sum whatever is there
	var total float64
	for _, phase := range power.phases {
		total += phase
	}
	return domain.SinglePhaseReading(total), nil
}

type tasmotaPowerState struct {
	Power string `json:"POWER"`
}

func (t *TasmotaDevice) ReadSwitchState(ctx context.Context) (bool, error) {
	var state tasmotaPowerState
	if err := t.command(ctx, "Power", &state); err != nil {
		return false, err
	}
	return state.Power == "ON", nil
}

func (t *TasmotaDevice) SetSwitch(ctx context.Context, on bool) error {
	cmd := "Power OFF"
	want := "OFF"
	if on {
		cmd = "Power ON"
		want = "ON"
	}
	var state tasmotaPowerState
	if err := t.command(ctx, cmd, &state); err != nil {
		return err
	}
	if state.Power != want {
		return domain.Unreachable(t.host(), fmt.Errorf("switch command not acknowledged, device reports %q", state.Power))
	}
	t.logger.Debug("switch set", zap.Bool("on", on))
	return nil
}

func (t *TasmotaDevice) command(ctx context.Context, cmd string, out any) error {
	query := url.Values{}
	query.Set("cmnd", cmd)
	if t.username != "" {
		query.Set("user", t.username)
		query.Set("password", t.password)
	}
	return t.getJSON(ctx, "/cm?"+query.Encode(), out)
}

package device

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap"
)

// openDTULimitTypeAbsoluteNonPersistent is the limit_type for an absolute
// watt limit that does not survive an inverter restart. Persistent writes
// wear the inverter's flash and are never used by the control loop.
const openDTULimitTypeAbsoluteNonPersistent = 0

// OpenDTUGateway reads inverter telemetry from an OpenDTU.
type OpenDTUGateway struct {
	httpDevice
	logger *zap.Logger
}

func NewOpenDTUGateway(host, username, password string, logger *zap.Logger) *OpenDTUGateway {
	return &OpenDTUGateway{
		httpDevice: newHTTPDevice(host, username, password),
		logger:     logger.With(zap.String("device", KindOpenDTU), zap.String("host", host)),
	}
}

type openDTULiveStatus struct {
	Inverters []struct {
		Serial        string  `json:"serial"`
		Reachable     bool    `json:"reachable"`
		Producing     bool    `json:"producing"`
		LimitRelative float64 `json:"limit_relative"`
		LimitAbsolute float64 `json:"limit_absolute"`
		AC            map[string]struct {
			Power struct {
				V float64 `json:"v"`
			} `json:"Power"`
		} `json:"AC"`
	} `json:"inverters"`
}

func (g *OpenDTUGateway) LiveInverters(ctx context.Context) ([]domain.InverterReading, error) {
	var status openDTULiveStatus
	if err := g.getJSON(ctx, "/api/livedata/status", &status); err != nil {
		return nil, err
	}
	readings := make([]domain.InverterReading, 0, len(status.Inverters))
	for _, inv := range status.Inverters {
		var acPower float64
		for _, phase := range inv.AC {
			acPower += phase.Power.V
		}
		readings = append(readings, domain.InverterReading{
			Serial:            inv.Serial,
			Reachable:         inv.Reachable,
			Producing:         inv.Producing,
			PowerWatt:         acPower,
			LimitRelativePct:  inv.LimitRelative,
			LimitAbsoluteWatt: int(math.Round(inv.LimitAbsolute)),
		})
	}
	return readings, nil
}

type openDTULimitResponse struct {
	Type string `json:"type"`
}

func (g *OpenDTUGateway) SetLimit(ctx context.Context, serial string, watt int) (domain.LimitAck, error) {
	command, err := json.Marshal(map[string]any{
		"serial":      serial,
		"limit_type":  openDTULimitTypeAbsoluteNonPersistent,
		"limit_value": watt,
	})
	if err != nil {
		return domain.LimitAck{}, domain.Unreachable(g.host(), err)
	}
	form := url.Values{}
	form.Set("data", string(command))

	var resp openDTULimitResponse
	if err := g.postForm(ctx, "/api/limit/config", form, &resp); err != nil {
		return domain.LimitAck{}, err
	}
	if resp.Type != "success" {
		return domain.LimitAck{}, domain.Unreachable(g.host(), fmt.Errorf("limit write rejected: %s", resp.Type))
	}
	g.logger.Debug("limit written", zap.String("serial", serial), zap.Int("watt", watt))
	return domain.LimitAck{AppliedType: resp.Type}, nil
}

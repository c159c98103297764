package device

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"go.uber.org/zap"
)

// AhoyGateway reads inverter telemetry from an AhoyDTU. Live values come as
// fld/val record lists; the absolute limit is derived from the active
// percent limit against the inverter's rated power.
type AhoyGateway struct {
	httpDevice
	logger *zap.Logger
}

func NewAhoyGateway(host, username, password string, logger *zap.Logger) *AhoyGateway {
	return &AhoyGateway{
		httpDevice: newHTTPDevice(host, username, password),
		logger:     logger.With(zap.String("device", KindAhoy), zap.String("host", host)),
	}
}

type ahoyIndex struct {
	Inverter []struct {
		Id          int     `json:"id"`
		Serial      string  `json:"serial"`
		IsAvail     bool    `json:"is_avail"`
		IsProducing bool    `json:"is_producing"`
		MaxPwr      float64 `json:"max_pwr"`
	} `json:"inverter"`
}

type ahoyRecord struct {
	Inverter [][]struct {
		Fld string `json:"fld"`
		Val string `json:"val"`
	} `json:"inverter"`
}

func (r ahoyRecord) field(inverter int, fld string) (float64, bool) {
	if inverter >= len(r.Inverter) {
		return 0, false
	}
	for _, entry := range r.Inverter[inverter] {
		if entry.Fld != fld {
			continue
		}
		val, err := strconv.ParseFloat(entry.Val, 64)
		if err != nil {
			return 0, false
		}
		return val, true
	}
	return 0, false
}

func (g *AhoyGateway) LiveInverters(ctx context.Context) ([]domain.InverterReading, error) {
	var index ahoyIndex
	if err := g.getJSON(ctx, "/api/index", &index); err != nil {
		return nil, err
	}
	var live, config ahoyRecord
	if err := g.getJSON(ctx, "/api/record/live", &live); err != nil {
		return nil, err
	}
	if err := g.getJSON(ctx, "/api/record/config", &config); err != nil {
		return nil, err
	}

	readings := make([]domain.InverterReading, 0, len(index.Inverter))
	for _, inv := range index.Inverter {
		reading := domain.InverterReading{
			Serial:    inv.Serial,
			Reachable: inv.IsAvail,
			Producing: inv.IsProducing,
		}
		if power, ok := live.field(inv.Id, "P_AC"); ok {
			reading.PowerWatt = power
		}
		if pct, ok := config.field(inv.Id, "active_PowerLimit"); ok {
			reading.LimitRelativePct = pct
			reading.LimitAbsoluteWatt = int(math.Round(pct / 100 * inv.MaxPwr))
		}
		readings = append(readings, reading)
	}
	g.logger.Debug("live telemetry fetched", zap.Int("inverters", len(readings)))
	return readings, nil
}

type ahoyCtrlResponse struct {
	Success bool `json:"success"`
}

func (g *AhoyGateway) SetLimit(ctx context.Context, serial string, watt int) (domain.LimitAck, error) {
	var index ahoyIndex
	if err := g.getJSON(ctx, "/api/index", &index); err != nil {
		return domain.LimitAck{}, err
	}
	id := -1
	for _, inv := range index.Inverter {
		if inv.Serial == serial {
			id = inv.Id
			break
		}
	}
	if id < 0 {
		return domain.LimitAck{}, domain.Unreachable(g.host(), fmt.Errorf("serial %s not known to DTU", serial))
	}

	payload := map[string]any{
		"id":  id,
		"cmd": "limit_nonpersistent_absolute",
		"val": watt,
	}
	var resp ahoyCtrlResponse
	if err := g.postJSON(ctx, "/api/ctrl", payload, &resp); err != nil {
		return domain.LimitAck{}, err
	}
	if !resp.Success {
		return domain.LimitAck{}, domain.Unreachable(g.host(), fmt.Errorf("limit command not acknowledged"))
	}
	return domain.LimitAck{AppliedType: "nonpersistent_absolute"}, nil
}

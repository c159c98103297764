package device

import (
	"fmt"
	"time"

	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/core/port"

	"go.uber.org/zap"
)

// DeviceTimeout bounds every single device call so a dead device cannot
// stall the control loop beyond it.
const DeviceTimeout = 5 * time.Second

const (
	KindAhoy       = "ahoy"
	KindOpenDTU    = "opendtu"
	KindTasmota    = "tasmota"
	KindShelly     = "shelly"
	KindShellyGen2 = "shellygen2"
	KindSunSpec    = "sunspec"
)

// NewInverterGateway builds one DTU client. Primary and backup hosts are two
// instances of the same kind.
func NewInverterGateway(kind, host, username, password string, logger *zap.Logger) (port.InverterGateway, error) {
	switch kind {
	case KindAhoy:
		return NewAhoyGateway(host, username, password, logger), nil
	case KindOpenDTU:
		return NewOpenDTUGateway(host, username, password, logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported inverter kind %q", domain.ErrInvalidConfiguration, kind)
	}
}

func NewPowerMeter(cfg config.DeviceConfig, logger *zap.Logger) (port.PowerMeter, error) {
	switch cfg.Kind {
	case KindTasmota:
		return NewTasmotaDevice(cfg.Host, cfg.Username, cfg.Password, logger), nil
	case KindShelly:
		return NewShellyGen1Device(cfg.Host, cfg.Username, cfg.Password, logger), nil
	case KindShellyGen2:
		return NewShellyGen2Device(cfg.Host, logger), nil
	case KindSunSpec:
		return NewSunSpecMeter(cfg.Host, cfg.UnitId, logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported meter kind %q", domain.ErrInvalidConfiguration, cfg.Kind)
	}
}

func NewGuardRelay(cfg config.RelayConfig, logger *zap.Logger) (port.GuardRelay, error) {
	switch cfg.Kind {
	case KindTasmota:
		return NewTasmotaDevice(cfg.Host, cfg.Username, cfg.Password, logger), nil
	case KindShelly:
		return NewShellyGen1Device(cfg.Host, cfg.Username, cfg.Password, logger), nil
	case KindShellyGen2:
		return NewShellyGen2Device(cfg.Host, logger), nil
	default:
		return nil, fmt.Errorf("%w: unsupported relay kind %q", domain.ErrInvalidConfiguration, cfg.Kind)
	}
}

package device

import (
	"testing"

	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFactoryRejectsUnknownKinds(t *testing.T) {
	logger := zap.NewNop()

	_, err := NewInverterGateway("sma", "host", "", "", logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewPowerMeter(config.DeviceConfig{Kind: "wattson", Host: "host"}, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewGuardRelay(config.RelayConfig{DeviceConfig: config.DeviceConfig{Kind: "sonoff", Host: "host"}}, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestFactoryKnownKinds(t *testing.T) {
	logger := zap.NewNop()

	for _, kind := range []string{KindAhoy, KindOpenDTU} {
		gateway, err := NewInverterGateway(kind, "192.0.2.1", "", "", logger)
		require.NoError(t, err, kind)
		require.NotNil(t, gateway, kind)
	}
	for _, kind := range []string{KindTasmota, KindShelly, KindShellyGen2, KindSunSpec} {
		meter, err := NewPowerMeter(config.DeviceConfig{Kind: kind, Host: "192.0.2.1:502"}, logger)
		require.NoError(t, err, kind)
		require.NotNil(t, meter, kind)
	}
	for _, kind := range []string{KindTasmota, KindShelly, KindShellyGen2} {
		relay, err := NewGuardRelay(config.RelayConfig{
			DeviceConfig: config.DeviceConfig{Kind: kind, Host: "192.0.2.1"},
			MaxWatt:      100,
		}, logger)
		require.NoError(t, err, kind)
		require.NotNil(t, relay, kind)
	}
}

func TestSunSpecIsMeterOnly(t *testing.T) {
	_, err := NewGuardRelay(config.RelayConfig{
		DeviceConfig: config.DeviceConfig{Kind: KindSunSpec, Host: "192.0.2.1:502"},
	}, zap.NewNop())
	require.Error(t, err)
}

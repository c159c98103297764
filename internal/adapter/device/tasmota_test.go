package device

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/exportguard/exportguardd/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func tasmotaServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cmd := r.URL.Query().Get("cmnd")
		body, ok := responses[cmd]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func TestTasmotaReadPowerSinglePhase(t *testing.T) {
	require := require.New(t)

	server := tasmotaServer(t, map[string]string{
		"Status 8": `{"StatusSNS":{"Time":"2024-06-01T12:00:00","ENERGY":{"Power":123.4,"Voltage":231}}}`,
	})
	defer server.Close()

	meter := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	reading, err := meter.ReadPower(context.Background())
	require.NoError(err)
	assert.Equal(t, 123.4, reading.TotalWatt)
	assert.Nil(t, reading.PhaseAWatt)
}

func TestTasmotaReadPowerThreePhase(t *testing.T) {
	require := require.New(t)

	server := tasmotaServer(t, map[string]string{
		"Status 8": `{"StatusSNS":{"ENERGY":{"Power":[100.0,-20.0,35.5]}}}`,
	})
	defer server.Close()

	meter := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	reading, err := meter.ReadPower(context.Background())
	require.NoError(err)
	require.NotNil(reading.PhaseCWatt)
	assert.Equal(t, 115.5, reading.TotalWatt)
	assert.Equal(t, -20.0, *reading.PhaseBWatt)
}

func TestTasmotaReadPowerSplitPhase(t *testing.T) {
	require := require.New(t)

	server := tasmotaServer(t, map[string]string{
		"Status 8": `{"StatusSNS":{"ENERGY":{"Power":[60.0,55.5]}}}`,
	})
	defer server.Close()

	meter := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	reading, err := meter.ReadPower(context.Background())
	require.NoError(err)
	assert.Equal(t, 115.5, reading.TotalWatt)
	assert.Nil(t, reading.PhaseAWatt)
}

func TestTasmotaReadPowerNoEnergySection(t *testing.T) {
	server := tasmotaServer(t, map[string]string{
		"Status 8": `{"StatusSNS":{"Time":"2024-06-01T12:00:00"}}`,
	})
	defer server.Close()

	meter := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	_, err := meter.ReadPower(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsDeviceUnreachable(err))
}

func TestTasmotaSwitch(t *testing.T) {
	require := require.New(t)

	server := tasmotaServer(t, map[string]string{
		"Power":     `{"POWER":"ON"}`,
		"Power OFF": `{"POWER":"OFF"}`,
		"Power ON":  `{"POWER":"ON"}`,
	})
	defer server.Close()

	relay := NewTasmotaDevice(server.URL, "", "", zap.NewNop())

	on, err := relay.ReadSwitchState(context.Background())
	require.NoError(err)
	assert.True(t, on)

	require.NoError(relay.SetSwitch(context.Background(), false))
	require.NoError(relay.SetSwitch(context.Background(), true))
}

func TestTasmotaSwitchUnacknowledged(t *testing.T) {
	server := tasmotaServer(t, map[string]string{
		"Power OFF": `{"POWER":"ON"}`,
	})
	defer server.Close()

	relay := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	err := relay.SetSwitch(context.Background(), false)
	require.Error(t, err)
	assert.True(t, domain.IsDeviceUnreachable(err))
}

func TestTasmotaDownIsUnreachable(t *testing.T) {
	server := tasmotaServer(t, nil)
	server.Close()

	meter := NewTasmotaDevice(server.URL, "", "", zap.NewNop())
	_, err := meter.ReadPower(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsDeviceUnreachable(err))
}

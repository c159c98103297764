package service

import (
	"context"
	"errors"
	"testing"

	"github.com/exportguard/exportguardd/internal/core/domain"
	"github.com/exportguard/exportguardd/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveOp(ctx context.Context, gw port.InverterGateway) ([]domain.InverterReading, error) {
	return gw.LiveInverters(ctx)
}

func TestFailoverPrimaryWins(t *testing.T) {
	require := require.New(t)

	primary := &fakeGateway{readings: []domain.InverterReading{{Serial: "a"}}}
	backup := &fakeGateway{readings: []domain.InverterReading{{Serial: "b"}}}
	endpoints := PrimaryBackup[port.InverterGateway](primary, backup, true)

	readings, source, err := Failover(context.Background(), "read", endpoints, liveOp)
	require.NoError(err)
	require.Equal(domain.SourcePrimary, source)
	require.Equal("a", readings[0].Serial)
	assert.Equal(t, 1, primary.liveCalls)
	assert.Equal(t, 0, backup.liveCalls, "backup must not be touched when primary succeeds")
}

func TestFailoverFallsBackOnUnreachable(t *testing.T) {
	require := require.New(t)

	primary := &fakeGateway{liveErr: unreachable("primary")}
	backup := &fakeGateway{readings: []domain.InverterReading{{Serial: "b"}}}
	endpoints := PrimaryBackup[port.InverterGateway](primary, backup, true)

	readings, source, err := Failover(context.Background(), "read", endpoints, liveOp)
	require.NoError(err)
	require.Equal(domain.SourceBackup, source)
	require.Equal("b", readings[0].Serial)
	assert.Equal(t, 1, primary.liveCalls)
	assert.Equal(t, 1, backup.liveCalls)
}

func TestFailoverExhausted(t *testing.T) {
	require := require.New(t)

	primary := &fakeGateway{liveErr: unreachable("primary")}
	backup := &fakeGateway{liveErr: unreachable("backup")}
	endpoints := PrimaryBackup[port.InverterGateway](primary, backup, true)

	_, source, err := Failover(context.Background(), "read", endpoints, liveOp)
	require.Error(err)
	require.True(domain.IsAllSourcesUnreachable(err))
	require.Equal(domain.SourceNone, source)
	assert.Equal(t, 1, primary.liveCalls)
	assert.Equal(t, 1, backup.liveCalls)
}

func TestFailoverStopsOnNonConnectivityError(t *testing.T) {
	require := require.New(t)

	fatal := errors.New("bad request")
	primary := &fakeGateway{liveErr: fatal}
	backup := &fakeGateway{}
	endpoints := PrimaryBackup[port.InverterGateway](primary, backup, true)

	_, _, err := Failover(context.Background(), "read", endpoints, liveOp)
	require.ErrorIs(err, fatal)
	assert.Equal(t, 0, backup.liveCalls, "non-connectivity errors must not trigger a fallback")
}

func TestFailoverWithoutBackup(t *testing.T) {
	require := require.New(t)

	primary := &fakeGateway{liveErr: unreachable("primary")}
	endpoints := PrimaryBackup[port.InverterGateway](primary, nil, false)

	_, _, err := Failover(context.Background(), "read", endpoints, liveOp)
	require.True(domain.IsAllSourcesUnreachable(err))
	require.Len(endpoints, 1)
}

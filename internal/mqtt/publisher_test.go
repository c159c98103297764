package mqtt

import (
	"testing"

	"github.com/exportguard/exportguardd/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testMQTTConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Host:      "localhost",
		Port:      1883,
		BaseTopic: "exportguard",
	}
}

func TestTopics(t *testing.T) {
	p := NewPublisher(testMQTTConfig(), zap.NewNop())

	assert.Equal(t, "exportguard/availability", p.AvailabilityTopic())
	assert.Equal(t, "exportguard/status", p.StatusTopic())
	assert.Equal(t, "exportguard/sensor/inverter_limit/state", p.LimitSensorTopic())
}

// Close is also the cleanup path when Connect never succeeded; it must
// not block or panic on a client that has no broker session.
func TestCloseWithoutConnect(t *testing.T) {
	p := NewPublisher(testMQTTConfig(), zap.NewNop())
	p.Close()
}

func TestOptsCarryLastWill(t *testing.T) {
	opts := OptsFromConfig(testMQTTConfig())

	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "exportguard/availability", opts.WillTopic)
	assert.Equal(t, []byte(PayloadOffline), opts.WillPayload)
	assert.True(t, opts.WillRetained)
}

package mqtt

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/exportguard/exportguardd/internal/config"
	"github.com/exportguard/exportguardd/internal/core/port"
	"github.com/exportguard/exportguardd/internal/events"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"

	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher pushes cycle snapshots to an MQTT broker. Connectivity is
// best-effort: a broker outage is logged and otherwise invisible to the
// control loop.
type Publisher struct {
	client mqtt.Client
	cfg    config.MQTTConfig
	logger *zap.Logger
}

func OptsFromConfig(cfg config.MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(fmt.Sprintf("exportguard_%d", rand.IntN(1000)))
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.WillEnabled = true
	opts.WillPayload = []byte(PayloadOffline)
	opts.WillRetained = true
	opts.WillTopic = availabilityTopic(cfg.BaseTopic)
	opts.WillQos = 0
	return opts
}

func NewPublisher(cfg config.MQTTConfig, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: mqtt.NewClient(OptsFromConfig(cfg)),
		cfg:    cfg,
		logger: logger,
	}
}

func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return err
	}
	return p.publish(p.AvailabilityTopic(), PayloadOnline, true)
}

func (p *Publisher) PublishCycle(status events.CycleStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := p.publish(p.StatusTopic(), string(payload), false); err != nil {
		return err
	}
	return p.publish(p.LimitSensorTopic(), strconv.Itoa(status.AppliedLimitWatt), false)
}

func (p *Publisher) Close() {
	if err := p.publish(p.AvailabilityTopic(), PayloadOffline, true); err != nil {
		p.logger.Debug("offline publish failed", zap.Error(err))
	}
	p.client.Disconnect(250)
}

func (p *Publisher) publish(topic, payload string, retained bool) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	return token.Error()
}

func (p *Publisher) AvailabilityTopic() string {
	return availabilityTopic(p.cfg.BaseTopic)
}

func (p *Publisher) StatusTopic() string {
	return fmt.Sprintf("%s/status", p.cfg.BaseTopic)
}

func (p *Publisher) LimitSensorTopic() string {
	return fmt.Sprintf("%s/sensor/inverter_limit/state", p.cfg.BaseTopic)
}

func availabilityTopic(baseTopic string) string {
	return fmt.Sprintf("%s/availability", baseTopic)
}

// ensure interface compliance
var _ port.TelemetryPublisher = (*Publisher)(nil)

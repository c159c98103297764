package port

import "github.com/exportguard/exportguardd/internal/events"

// AlertSender delivers an operator alert. Always best-effort: a delivery
// failure never propagates into control decisions.
type AlertSender interface {
	SendAlert(subject, body string) error
}

// TelemetryPublisher pushes cycle snapshots to an external bus.
type TelemetryPublisher interface {
	Connect() error
	PublishCycle(status events.CycleStatus) error
	Close()
}

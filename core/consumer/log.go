package consumer

import (
	"context"
	"log/slog"

	"github.com/kafaat/sahool-sensors/internal/domain"
)

// LogConsumer just logs processed batches; the default when nothing else is
// wired, and handy in local runs.
type LogConsumer struct {
	name string
	log  *slog.Logger
}

func NewLogConsumer(name string, log *slog.Logger) *LogConsumer {
	return &LogConsumer{name: name, log: log}
}

func (l *LogConsumer) Process(_ context.Context, data []domain.SensorReading) error {
	l.log.Info("processed batch", "consumer", l.name, "readings", len(data))
	for _, d := range data {
		l.log.Debug("reading",
			"consumer", l.name,
			"device", d.DeviceID,
			"type", d.SensorType,
			"value", d.Value,
			"time", d.Timestamp)
	}
	return nil
}

package broadcast

import (
	"context"

	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

// Sink - внешний получатель событий (очередь вебхуков, NATS)
type Sink interface {
	Publish(ctx context.Context, event models.AlertEvent) error
}

// Relay подписывается на хаб как обычный наблюдатель и пересылает события в Sink.
// Ошибки Sink логируются и не влияют на хаб.
type Relay struct {
	name   string
	hub    *Hub
	sink   Sink
	logger *logrus.Logger
	done   chan struct{}
}

// NewRelay создает Relay с именем для логов
func NewRelay(name string, hub *Hub, sink Sink, logger *logrus.Logger) *Relay {
	return &Relay{
		name:   name,
		hub:    hub,
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start регистрирует наблюдателя синхронно и запускает горутину пересылки до отмены ctx
func (r *Relay) Start(ctx context.Context) {
	log := r.logger.WithFields(logrus.Fields{"component": "relay", "relay": r.name})
	log.Info("Starting event relay...")

	obs := r.hub.Register()
	go func() {
		defer close(r.done)
		for {
			select {
			case <-ctx.Done():
				obs.Close()
				log.Info("Stopping event relay.")
				return
			case event, ok := <-obs.Events():
				if !ok {
					if ctx.Err() != nil {
						return
					}
					// Хаб удалил наблюдателя (переполнение или закрытие хаба)
					if r.hub.isClosed() {
						log.Info("Hub closed, stopping event relay.")
						return
					}
					log.Warn("Relay observer was dropped by hub, re-registering")
					obs = r.hub.Register()
					continue
				}
				if err := r.sink.Publish(ctx, event); err != nil {
					log.WithError(err).WithField("event_type", event.EventType).Error("Failed to relay event")
				}
			}
		}
	}()
}

// Done закрывается после остановки горутины пересылки
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// Package events ретранслирует события алертов в NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shenikar/community_alerts/internal/models"
)

// SubjectPrefix - префикс темы, итоговая тема alerts.<eventType>
const SubjectPrefix = "alerts"

// NATSPublisher публикует события алертов в NATS. Реализует broadcast.Sink.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher подключается к NATS с автоматическим переподключением
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("community-alerts"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Subject возвращает тему NATS для типа события
func Subject(eventType models.EventType) string {
	return SubjectPrefix + "." + string(eventType)
}

// Publish отправляет событие в тему alerts.<eventType>
func (p *NATSPublisher) Publish(_ context.Context, event models.AlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling alert event: %w", err)
	}
	if err := p.conn.Publish(Subject(event.EventType), data); err != nil {
		return fmt.Errorf("publishing alert event to NATS: %w", err)
	}
	return nil
}

// Close сбрасывает буфер и закрывает соединение
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("draining NATS connection: %w", err)
	}
	return nil
}

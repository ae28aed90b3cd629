package models

import "time"

// EventType - вид события живой ленты
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventVote    EventType = "vote"
)

// AlertEvent - полезная нагрузка, рассылаемая наблюдателям
type AlertEvent struct {
	EventType EventType `json:"eventType"`
	Alert     *Alert    `json:"alert"`
	EmittedAt time.Time `json:"emittedAt"`
}

// NewAlertEvent создает событие со снимком алерта на момент публикации
func NewAlertEvent(eventType EventType, alert *Alert) AlertEvent {
	return AlertEvent{
		EventType: eventType,
		Alert:     alert.Clone(),
		EmittedAt: time.Now().UTC(),
	}
}

// Package broadcast рассылает события алертов всем подключенным наблюдателям.
package broadcast

import (
	"fmt"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBufferSize - размер буфера наблюдателя по умолчанию
	DefaultBufferSize = 64

	observerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	observerIDLength   = 12
)

// Причины удаления наблюдателя для Recorder
const (
	RemoveReasonUnregistered = "unregistered"
	RemoveReasonSlowConsumer = "slow_consumer"
	RemoveReasonHubClosed    = "hub_closed"
)

// Recorder получает уведомления о жизненном цикле наблюдателей и рассылке
type Recorder interface {
	ObserverRegistered()
	ObserverRemoved(reason string)
	EventPublished(eventType string, delivered int)
}

type noopRecorder struct{}

func (noopRecorder) ObserverRegistered()        {}
func (noopRecorder) ObserverRemoved(string)     {}
func (noopRecorder) EventPublished(string, int) {}

// Observer - регистрация одного потребителя живой ленты
type Observer struct {
	id     string
	events chan models.AlertEvent
	hub    *Hub
}

// ID возвращает идентификатор наблюдателя
func (o *Observer) ID() string {
	return o.id
}

// Events возвращает канал событий. Канал закрывается, когда наблюдатель удален из хаба.
func (o *Observer) Events() <-chan models.AlertEvent {
	return o.events
}

// Close снимает наблюдателя с регистрации
func (o *Observer) Close() {
	o.hub.Unregister(o)
}

// Hub - реестр наблюдателей с неблокирующей рассылкой
type Hub struct {
	mu         sync.Mutex
	observers  map[string]*Observer
	bufferSize int
	closed     bool
	logger     *logrus.Logger
	recorder   Recorder
}

// NewHub создает хаб. bufferSize <= 0 заменяется на DefaultBufferSize, recorder может быть nil.
func NewHub(bufferSize int, logger *logrus.Logger, recorder Recorder) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Hub{
		observers:  make(map[string]*Observer),
		bufferSize: bufferSize,
		logger:     logger,
		recorder:   recorder,
	}
}

// Register создает нового наблюдателя. Он получит только события, опубликованные после регистрации.
// На закрытом хабе возвращается наблюдатель с уже закрытым каналом.
func (h *Hub) Register() *Observer {
	obs := &Observer{
		id:     newObserverID(),
		events: make(chan models.AlertEvent, h.bufferSize),
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(obs.events)
		return obs
	}
	h.observers[obs.id] = obs
	h.recorder.ObserverRegistered()
	h.logger.WithFields(logrus.Fields{
		"component":   "hub",
		"observer_id": obs.id,
		"observers":   len(h.observers),
	}).Debug("Observer registered")
	return obs
}

// Unregister удаляет наблюдателя. Повторный вызов ничего не делает.
func (h *Hub) Unregister(obs *Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(obs, RemoveReasonUnregistered)
}

// Publish доставляет событие всем текущим наблюдателям.
// Наблюдатель с переполненным буфером удаляется; издатель никогда не блокируется и не получает ошибку.
func (h *Hub) Publish(event models.AlertEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for _, obs := range h.observers {
		select {
		case obs.events <- event:
			delivered++
		default:
			h.logger.WithFields(logrus.Fields{
				"component":   "hub",
				"observer_id": obs.id,
				"event_type":  event.EventType,
			}).Warn("Observer buffer is full, dropping observer")
			h.removeLocked(obs, RemoveReasonSlowConsumer)
		}
	}
	h.recorder.EventPublished(string(event.EventType), delivered)
}

// Count возвращает число зарегистрированных наблюдателей
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Close удаляет всех наблюдателей; последующие Register возвращают закрытых наблюдателей
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, obs := range h.observers {
		h.removeLocked(obs, RemoveReasonHubClosed)
	}
	h.closed = true
	h.logger.WithField("component", "hub").Info("Broadcast hub closed")
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// removeLocked закрывает канал ровно один раз; вызывается под h.mu
func (h *Hub) removeLocked(obs *Observer, reason string) {
	if _, ok := h.observers[obs.id]; !ok {
		return
	}
	delete(h.observers, obs.id)
	close(obs.events)
	h.recorder.ObserverRemoved(reason)
}

func newObserverID() string {
	id, err := nanoid.Generate(observerIDAlphabet, observerIDLength)
	if err != nil {
		return fmt.Sprintf("obs-%d", time.Now().UnixNano())
	}
	return "obs-" + id
}

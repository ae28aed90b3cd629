package broadcast

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func newTestEvent(eventType models.EventType) models.AlertEvent {
	return models.NewAlertEvent(eventType, &models.Alert{
		ID:        uuid.New(),
		Title:     "Accident de circulation",
		AlertType: models.AlertTypeAccident,
		Zone:      "Bouaké",
		Status:    models.StatusActive,
	})
}

// recordingRecorder считает вызовы Recorder
type recordingRecorder struct {
	mu         sync.Mutex
	registered int
	removed    map[string]int
	published  int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{removed: make(map[string]int)}
}

func (r *recordingRecorder) ObserverRegistered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered++
}

func (r *recordingRecorder) ObserverRemoved(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed[reason]++
}

func (r *recordingRecorder) EventPublished(string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published++
}

func receive(t *testing.T, obs *Observer) models.AlertEvent {
	t.Helper()
	select {
	case ev, ok := <-obs.Events():
		require.True(t, ok, "observer channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.AlertEvent{}
}

func TestHub_ObserverRegisteredBeforePublishReceivesEvent(t *testing.T) {
	hub := NewHub(4, newTestLogger(), nil)
	defer hub.Close()
	obs := hub.Register()
	event := newTestEvent(models.EventCreated)

	hub.Publish(event)

	got := receive(t, obs)
	assert.Equal(t, event.EventType, got.EventType)
	assert.Equal(t, event.Alert.ID, got.Alert.ID)
}

func TestHub_ObserverRegisteredAfterPublishMissesEvent(t *testing.T) {
	hub := NewHub(4, newTestLogger(), nil)
	defer hub.Close()

	hub.Publish(newTestEvent(models.EventCreated))
	late := hub.Register()

	select {
	case ev := <-late.Events():
		t.Fatalf("late observer received %v", ev.EventType)
	default:
	}
}

func TestHub_PreservesOrderPerObserver(t *testing.T) {
	hub := NewHub(16, newTestLogger(), nil)
	defer hub.Close()
	obs := hub.Register()

	types := []models.EventType{models.EventCreated, models.EventVote, models.EventVote, models.EventUpdated}
	for _, et := range types {
		hub.Publish(newTestEvent(et))
	}

	for _, want := range types {
		assert.Equal(t, want, receive(t, obs).EventType)
	}
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	recorder := newRecordingRecorder()
	hub := NewHub(4, newTestLogger(), recorder)
	obs := hub.Register()

	hub.Unregister(obs)
	obs.Close()

	_, ok := <-obs.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count())
	assert.Equal(t, 1, recorder.removed[RemoveReasonUnregistered])
}

func TestHub_SlowObserverIsDroppedWithoutBlocking(t *testing.T) {
	recorder := newRecordingRecorder()
	hub := NewHub(1, newTestLogger(), recorder)
	defer hub.Close()
	slow := hub.Register()
	fast := hub.Register()

	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.Publish(newTestEvent(models.EventCreated))
		<-fast.Events()
		hub.Publish(newTestEvent(models.EventUpdated))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow observer")
	}

	assert.Equal(t, models.EventUpdated, receive(t, fast).EventType)
	// Медленный наблюдатель получил первое событие и был удален на втором
	assert.Equal(t, models.EventCreated, receive(t, slow).EventType)
	_, ok := <-slow.Events()
	assert.False(t, ok)
	assert.Equal(t, 1, hub.Count())
	assert.Equal(t, 1, recorder.removed[RemoveReasonSlowConsumer])
}

func TestHub_DisconnectedObserverDoesNotAffectOthers(t *testing.T) {
	hub := NewHub(4, newTestLogger(), nil)
	defer hub.Close()
	gone := hub.Register()
	alive := hub.Register()
	gone.Close()

	hub.Publish(newTestEvent(models.EventVote))

	assert.Equal(t, models.EventVote, receive(t, alive).EventType)
}

func TestHub_ConcurrentRegisterPublishUnregister(t *testing.T) {
	hub := NewHub(8, newTestLogger(), nil)
	defer hub.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			obs := hub.Register()
			time.Sleep(time.Millisecond)
			obs.Close()
		}()
		go func() {
			defer wg.Done()
			hub.Publish(newTestEvent(models.EventVote))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Count())
}

func TestHub_CloseClosesObservers(t *testing.T) {
	recorder := newRecordingRecorder()
	hub := NewHub(4, newTestLogger(), recorder)
	obs := hub.Register()

	hub.Close()

	_, ok := <-obs.Events()
	assert.False(t, ok)
	assert.Equal(t, 1, recorder.removed[RemoveReasonHubClosed])

	late := hub.Register()
	_, ok = <-late.Events()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Count())
}

// fakeSink накапливает события, может возвращать ошибку
type fakeSink struct {
	mu     sync.Mutex
	events []models.AlertEvent
	err    error
	got    chan struct{}
}

func newFakeSink(err error) *fakeSink {
	return &fakeSink{err: err, got: make(chan struct{}, 16)}
}

func (s *fakeSink) Publish(_ context.Context, event models.AlertEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.got <- struct{}{}
	return s.err
}

func TestRelay_ForwardsEventsToSink(t *testing.T) {
	hub := NewHub(4, newTestLogger(), nil)
	defer hub.Close()
	sink := newFakeSink(nil)
	ctx, cancel := context.WithCancel(context.Background())

	relay := NewRelay("test", hub, sink, newTestLogger())
	relay.Start(ctx)
	hub.Publish(newTestEvent(models.EventCreated))

	select {
	case <-sink.got:
	case <-time.After(time.Second):
		t.Fatal("relay did not forward event")
	}
	cancel()
	<-relay.Done()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, models.EventCreated, sink.events[0].EventType)
	assert.Equal(t, 0, hub.Count())
}

func TestRelay_SinkErrorsAreContained(t *testing.T) {
	hub := NewHub(4, newTestLogger(), nil)
	sink := newFakeSink(errors.New("redis down"))
	relay := NewRelay("failing", hub, sink, newTestLogger())
	relay.Start(context.Background())

	hub.Publish(newTestEvent(models.EventCreated))
	hub.Publish(newTestEvent(models.EventVote))

	for i := 0; i < 2; i++ {
		select {
		case <-sink.got:
		case <-time.After(time.Second):
			t.Fatal("relay stopped after sink error")
		}
	}

	hub.Close()
	select {
	case <-relay.Done():
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after hub close")
	}
}

// gatedSink блокирует Publish, пока не открыт gate
type gatedSink struct {
	mu      sync.Mutex
	events  []models.AlertEvent
	entered chan struct{}
	gate    chan struct{}
}

func newGatedSink() *gatedSink {
	return &gatedSink{entered: make(chan struct{}, 16), gate: make(chan struct{})}
}

func (s *gatedSink) Publish(_ context.Context, event models.AlertEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.entered <- struct{}{}
	<-s.gate
	return nil
}

func (s *gatedSink) snapshot() []models.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AlertEvent(nil), s.events...)
}

func TestRelay_ReRegistersAfterBeingPruned(t *testing.T) {
	recorder := newRecordingRecorder()
	hub := NewHub(1, newTestLogger(), recorder)
	defer hub.Close()
	sink := newGatedSink()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := NewRelay("slow", hub, sink, newTestLogger())
	relay.Start(ctx)
	require.Equal(t, 1, hub.Count())

	// Первое событие relay забирает и застревает в sink
	hub.Publish(newTestEvent(models.EventCreated))
	select {
	case <-sink.entered:
	case <-time.After(time.Second):
		t.Fatal("relay did not pick up the first event")
	}

	// Второе ложится в буфер, третье переполняет его
	buffered := newTestEvent(models.EventUpdated)
	hub.Publish(buffered)
	hub.Publish(newTestEvent(models.EventVote))
	assert.Equal(t, 0, hub.Count())
	recorder.mu.Lock()
	assert.Equal(t, 1, recorder.removed[RemoveReasonSlowConsumer])
	recorder.mu.Unlock()

	close(sink.gate)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	fresh := newTestEvent(models.EventCreated)
	hub.Publish(fresh)

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, time.Second, 10*time.Millisecond)
	events := sink.snapshot()
	assert.Equal(t, buffered.Alert.ID, events[1].Alert.ID)
	assert.Equal(t, fresh.Alert.ID, events[2].Alert.ID)

	cancel()
	select {
	case <-relay.Done():
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

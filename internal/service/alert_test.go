package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/geo"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// newTestAlertService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestAlertService(t *testing.T) (*alertService, *mocks.MockAlertRepository, *mocks.MockEventPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockAlertRepository(ctrl)
	publisherMock := mocks.NewMockEventPublisher(ctrl)

	service := NewAlertService(repoMock, publisherMock, newTestLogger())
	return service.(*alertService), repoMock, publisherMock
}

func TestCreateAlert_ResolvesZoneFromCoordinates(t *testing.T) {
	// Подготовка
	service, repoMock, publisherMock := newTestAlertService(t)
	ctx := context.Background()
	alert := &models.Alert{
		Title:       "Vol de moto",
		AlertType:   models.AlertTypeTheft,
		Coordinates: &models.Coordinates{Latitude: 5.36, Longitude: -4.0083},
	}

	// Ожидания: сначала запись, затем публикация
	gomock.InOrder(
		repoMock.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, a *models.Alert) error {
				assert.Equal(t, "Abidjan", a.Zone)
				return nil
			}).Times(1),
		publisherMock.EXPECT().
			Publish(gomock.Any()).
			Do(func(event models.AlertEvent) {
				assert.Equal(t, models.EventCreated, event.EventType)
				assert.Equal(t, "Abidjan", event.Alert.Zone)
			}).Times(1),
	)

	// Действие
	err := service.CreateAlert(ctx, alert)

	// Проверки
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, alert.ID)
	assert.Equal(t, models.StatusActive, alert.Status)
	assert.False(t, alert.Verified)
	assert.Zero(t, alert.VoteCount)
	assert.False(t, alert.CreatedAt.IsZero())
}

func TestCreateAlert_ExplicitZoneWins(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alert := &models.Alert{
		Title:       "Inondation",
		AlertType:   models.AlertTypeDisaster,
		Zone:        "Man",
		Coordinates: &models.Coordinates{Latitude: 5.36, Longitude: -4.0083},
	}

	repoMock.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(1)

	require.NoError(t, service.CreateAlert(context.Background(), alert))
	assert.Equal(t, "Man", alert.Zone)
}

func TestCreateAlert_NoZoneNoCoordinates(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alert := &models.Alert{Title: "Accident", AlertType: models.AlertTypeAccident}

	repoMock.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(1)

	require.NoError(t, service.CreateAlert(context.Background(), alert))
	assert.Equal(t, geo.OtherZone, alert.Zone)
}

func TestCreateAlert_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		alert *models.Alert
	}{
		{"unknown type", &models.Alert{Title: "x", AlertType: "vol"}},
		{"unknown zone", &models.Alert{Title: "x", AlertType: models.AlertTypeTheft, Zone: "Paris"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, repoMock, publisherMock := newTestAlertService(t)
			repoMock.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)
			publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

			err := service.CreateAlert(context.Background(), tc.alert)

			require.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreateAlert_RepositoryErrorDoesNotPublish(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alert := &models.Alert{Title: "Vol", AlertType: models.AlertTypeTheft}

	repoMock.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down")).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	err := service.CreateAlert(context.Background(), alert)

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not create alert")
}

func TestGetAlert_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()
	alertID := uuid.New()
	expected := &models.Alert{ID: alertID, Title: "Алерт из кеша"}

	// Ожидания
	repoMock.EXPECT().GetAlertFromCache(ctx, alertID).Return(expected, nil).Times(1)

	// Действие
	alert, err := service.GetAlert(ctx, alertID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, alert)
}

func TestGetAlert_Success_FromDB(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()
	alertID := uuid.New()
	expected := &models.Alert{ID: alertID, Title: "Алерт из БД"}

	// 1. Промах кеша
	repoMock.EXPECT().GetAlertFromCache(ctx, alertID).Return(nil, nil).Times(1)
	// 2. Попадание в БД
	repoMock.EXPECT().GetByID(ctx, alertID).Return(expected, nil).Times(1)
	// 3. Запись в кеш
	repoMock.EXPECT().SetAlertCache(ctx, expected).Return(nil).Times(1)

	alert, err := service.GetAlert(ctx, alertID)

	require.NoError(t, err)
	assert.Equal(t, expected, alert)
}

func TestGetAlert_CacheFillWaitsForConcurrentWrite(t *testing.T) {
	// Подготовка
	service, repoMock, _ := newTestAlertService(t)
	alertID := uuid.New()
	loaded := make(chan struct{})

	// Ожидания
	repoMock.EXPECT().GetAlertFromCache(gomock.Any(), alertID).Return(nil, nil).Times(1)
	repoMock.EXPECT().
		GetByID(gomock.Any(), alertID).
		DoAndReturn(func(context.Context, uuid.UUID) (*models.Alert, error) {
			close(loaded)
			return &models.Alert{ID: alertID, VoteCount: 3, Verified: true}, nil
		}).Times(1)
	repoMock.EXPECT().SetAlertCache(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// Действие: алерт занят записью, чтение из базы должно ее дождаться
	unlock := service.locks.Lock(alertID.String())
	done := make(chan error, 1)
	go func() {
		_, err := service.GetAlert(context.Background(), alertID)
		done <- err
	}()

	// Проверки
	select {
	case <-loaded:
		t.Fatal("alert was read from storage while a write held the alert lock")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("GetAlert did not finish after the write released the lock")
	}
	assert.Zero(t, service.locks.size())
}

func TestGetAlert_NotFound(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()
	alertID := uuid.New()

	repoMock.EXPECT().GetAlertFromCache(ctx, alertID).Return(nil, errors.New("redis timeout")).Times(1)
	repoMock.EXPECT().GetByID(ctx, alertID).Return(nil, fmt.Errorf("alert %s: %w", alertID, models.ErrAlertNotFound)).Times(1)

	alert, err := service.GetAlert(ctx, alertID)

	require.ErrorIs(t, err, models.ErrAlertNotFound)
	assert.Nil(t, alert)
	assert.ErrorContains(t, err, "could not get alert")
}

func TestListAlerts_PassesFilter(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()
	filter := models.AlertFilter{Zone: "Abidjan", Status: models.StatusActive, VerifiedOnly: true}
	expected := []*models.Alert{{ID: uuid.New(), Zone: "Abidjan"}}

	repoMock.EXPECT().Query(ctx, filter, ListLimit).Return(expected, nil).Times(1)

	alerts, err := service.ListAlerts(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, expected, alerts)
}

func TestUpdateAlert_PartialUpdatePreservesStatus(t *testing.T) {
	// Подготовка
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	existing := &models.Alert{ID: alertID, Status: models.StatusActive, Verified: false}
	verified := true

	// Ожидания
	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(existing, nil).Times(1)
	repoMock.EXPECT().
		UpdateFields(gomock.Any(), alertID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch models.AlertPatch) (bool, error) {
			assert.Nil(t, patch.Status)
			require.NotNil(t, patch.Verified)
			assert.True(t, *patch.Verified)
			return true, nil
		}).Times(1)
	repoMock.EXPECT().InvalidateAlertCache(gomock.Any(), alertID).Return(nil).Times(1)
	publisherMock.EXPECT().
		Publish(gomock.Any()).
		Do(func(event models.AlertEvent) {
			assert.Equal(t, models.EventUpdated, event.EventType)
		}).Times(1)

	// Действие
	alert, err := service.UpdateAlert(context.Background(), alertID, models.AlertUpdate{Verified: &verified})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, alert.Status)
	assert.True(t, alert.Verified)
}

func TestUpdateAlert_NotFound(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	resolved := models.StatusResolved

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(nil, models.ErrAlertNotFound).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	_, err := service.UpdateAlert(context.Background(), alertID, models.AlertUpdate{Status: &resolved})

	require.ErrorIs(t, err, models.ErrAlertNotFound)
	assert.ErrorContains(t, err, "not found for update")
}

func TestUpdateAlert_InvalidStatus(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	status := models.AlertStatus("inactive")

	repoMock.EXPECT().GetByID(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.UpdateAlert(context.Background(), uuid.New(), models.AlertUpdate{Status: &status})

	require.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateAlert_CannotRevokeVerification(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	unverified := false

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(&models.Alert{ID: alertID, Verified: true, VoteCount: 3}, nil).Times(1)
	repoMock.EXPECT().UpdateFields(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	_, err := service.UpdateAlert(context.Background(), alertID, models.AlertUpdate{Verified: &unverified})

	require.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateAlert_PersistFailureDoesNotPublish(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	resolved := models.StatusResolved

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(&models.Alert{ID: alertID, Status: models.StatusActive}, nil).Times(1)
	repoMock.EXPECT().UpdateFields(gomock.Any(), alertID, gomock.Any()).Return(false, errors.New("db down")).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	_, err := service.UpdateAlert(context.Background(), alertID, models.AlertUpdate{Status: &resolved})

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not update alert")
}

func TestUpdateAlert_PersistsPublishedTimestamp(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	resolved := models.StatusResolved
	var persisted time.Time

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(&models.Alert{ID: alertID, Status: models.StatusActive}, nil).Times(1)
	repoMock.EXPECT().
		UpdateFields(gomock.Any(), alertID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch models.AlertPatch) (bool, error) {
			persisted = patch.UpdatedAt
			return true, nil
		}).Times(1)
	repoMock.EXPECT().InvalidateAlertCache(gomock.Any(), alertID).Return(nil).Times(1)
	publisherMock.EXPECT().
		Publish(gomock.Any()).
		Do(func(event models.AlertEvent) {
			assert.Equal(t, persisted, event.Alert.UpdatedAt)
		}).Times(1)

	alert, err := service.UpdateAlert(context.Background(), alertID, models.AlertUpdate{Status: &resolved})

	require.NoError(t, err)
	assert.False(t, persisted.IsZero())
	assert.Equal(t, persisted, alert.UpdatedAt)
	assert.Equal(t, persisted, persisted.Truncate(time.Microsecond))
}

func TestVoteAlert_PersistsPublishedTimestamp(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	var persisted time.Time

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(&models.Alert{ID: alertID, Status: models.StatusActive}, nil).Times(1)
	repoMock.EXPECT().
		UpdateFields(gomock.Any(), alertID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, patch models.AlertPatch) (bool, error) {
			persisted = patch.UpdatedAt
			return true, nil
		}).Times(1)
	repoMock.EXPECT().InvalidateAlertCache(gomock.Any(), alertID).Return(nil).Times(1)
	publisherMock.EXPECT().
		Publish(gomock.Any()).
		Do(func(event models.AlertEvent) {
			assert.False(t, persisted.IsZero())
			assert.Equal(t, persisted, event.Alert.UpdatedAt)
		}).Times(1)

	_, err := service.VoteAlert(context.Background(), alertID, "v1")

	require.NoError(t, err)
}

func TestVoteAlert_Success(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	existing := &models.Alert{ID: alertID, Status: models.StatusActive, VoteCount: 2, VoterTokens: []string{"v1", "v2"}}

	gomock.InOrder(
		repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(existing, nil).Times(1),
		repoMock.EXPECT().
			UpdateFields(gomock.Any(), alertID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, patch models.AlertPatch) (bool, error) {
				assert.Equal(t, 3, *patch.VoteCount)
				assert.True(t, *patch.Verified)
				assert.Equal(t, []string{"v1", "v2", "v3"}, patch.VoterTokens)
				return true, nil
			}).Times(1),
		repoMock.EXPECT().InvalidateAlertCache(gomock.Any(), alertID).Return(nil).Times(1),
		publisherMock.EXPECT().
			Publish(gomock.Any()).
			Do(func(event models.AlertEvent) {
				assert.Equal(t, models.EventVote, event.EventType)
				assert.True(t, event.Alert.Verified)
			}).Times(1),
	)

	outcome, err := service.VoteAlert(context.Background(), alertID, "v3")

	require.NoError(t, err)
	assert.Equal(t, models.VoteOutcome{VoteCount: 3, Verified: true}, outcome)
}

func TestVoteAlert_Duplicate(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()
	existing := &models.Alert{ID: alertID, VoteCount: 1, VoterTokens: []string{"v1"}}

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(existing, nil).Times(1)
	repoMock.EXPECT().UpdateFields(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	outcome, err := service.VoteAlert(context.Background(), alertID, "v1")

	require.ErrorIs(t, err, models.ErrDuplicateVote)
	assert.Equal(t, 1, outcome.VoteCount)
}

func TestVoteAlert_NotFound(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(nil, models.ErrAlertNotFound).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	_, err := service.VoteAlert(context.Background(), alertID, "v1")

	require.ErrorIs(t, err, models.ErrAlertNotFound)
}

func TestVoteAlert_PersistFailureDoesNotPublish(t *testing.T) {
	service, repoMock, publisherMock := newTestAlertService(t)
	alertID := uuid.New()

	repoMock.EXPECT().GetByID(gomock.Any(), alertID).Return(&models.Alert{ID: alertID}, nil).Times(1)
	repoMock.EXPECT().UpdateFields(gomock.Any(), alertID, gomock.Any()).Return(false, errors.New("db down")).Times(1)
	publisherMock.EXPECT().Publish(gomock.Any()).Times(0)

	_, err := service.VoteAlert(context.Background(), alertID, "v1")

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not persist vote")
}

func TestNearbyAlerts_BuildsBoundingBox(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().
		Query(ctx, gomock.Any(), ListLimit).
		DoAndReturn(func(_ context.Context, filter models.AlertFilter, _ int) ([]*models.Alert, error) {
			assert.Equal(t, models.StatusActive, filter.Status)
			require.NotNil(t, filter.Box)
			assert.InDelta(t, 5.26, filter.Box.MinLat, 1e-9)
			assert.InDelta(t, 5.46, filter.Box.MaxLat, 1e-9)
			assert.InDelta(t, -4.1083, filter.Box.MinLon, 1e-9)
			assert.InDelta(t, -3.9083, filter.Box.MaxLon, 1e-9)
			return nil, nil
		}).Times(1)

	_, err := service.NearbyAlerts(ctx, 5.36, -4.0083, 0.1)

	require.NoError(t, err)
}

func TestNearbyAlerts_InvalidRadius(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	repoMock.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := service.NearbyAlerts(context.Background(), 5.36, -4.0, 0)

	require.ErrorIs(t, err, models.ErrValidation)
}

func TestDetectZone(t *testing.T) {
	service, _, _ := newTestAlertService(t)

	assert.Equal(t, "Abidjan", service.DetectZone(5.36, -4.0083))
	assert.Equal(t, "Bouaké", service.DetectZone(7.6906, -5.03))
	assert.Equal(t, geo.OtherZone, service.DetectZone(0, 0))
}

func TestGetStats_Success(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	ctx := context.Background()

	repoMock.EXPECT().Count(ctx, models.AlertFilter{}).Return(10, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{Status: models.StatusActive}).Return(7, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{Status: models.StatusResolved}).Return(3, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{VerifiedOnly: true}).Return(4, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{AlertType: models.AlertTypeTheft}).Return(5, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{AlertType: models.AlertTypeAccident}).Return(3, nil).Times(1)
	repoMock.EXPECT().Count(ctx, models.AlertFilter{AlertType: models.AlertTypeDisaster}).Return(2, nil).Times(1)

	stats, err := service.GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 7, stats.Active)
	assert.Equal(t, 3, stats.Resolved)
	assert.Equal(t, 4, stats.Verified)
	assert.Equal(t, 5, stats.ByType[models.AlertTypeTheft])
	assert.Equal(t, 2, stats.ByType[models.AlertTypeDisaster])
}

func TestGetStats_RepositoryError(t *testing.T) {
	service, repoMock, _ := newTestAlertService(t)
	repoMock.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("db down")).Times(1)

	_, err := service.GetStats(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not count alerts")
}

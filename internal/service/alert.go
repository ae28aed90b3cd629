package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/community_alerts/internal/geo"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=alert.go -destination=mocks/mock_alert.go -package=mocks

const (
	// ListLimit - максимальное число алертов в одной выборке
	ListLimit = 100
)

// AlertRepository определяет контракт хранилища алертов
type AlertRepository interface {
	Insert(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch models.AlertPatch) (bool, error)
	Query(ctx context.Context, filter models.AlertFilter, limit int) ([]*models.Alert, error)
	Count(ctx context.Context, filter models.AlertFilter) (int, error)
	GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	SetAlertCache(ctx context.Context, alert *models.Alert) error
	InvalidateAlertCache(ctx context.Context, id uuid.UUID) error
}

// EventPublisher рассылает события живой ленты
type EventPublisher interface {
	Publish(event models.AlertEvent)
}

// AlertService определяет контракт бизнес-логики жизненного цикла алертов
type AlertService interface {
	CreateAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error)
	UpdateAlert(ctx context.Context, id uuid.UUID, update models.AlertUpdate) (*models.Alert, error)
	VoteAlert(ctx context.Context, id uuid.UUID, voterToken string) (models.VoteOutcome, error)
	NearbyAlerts(ctx context.Context, lat, lon, radius float64) ([]*models.Alert, error)
	DetectZone(lat, lon float64) string
	GetStats(ctx context.Context) (*models.AlertStats, error)
}

type alertService struct {
	repo      AlertRepository
	publisher EventPublisher
	logger    *logrus.Logger
	locks     *keyedMutex
}

func NewAlertService(repo AlertRepository, publisher EventPublisher, logger *logrus.Logger) AlertService {
	return &alertService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
	}
}

// CreateAlert создает алерт, определяет зону и оповещает наблюдателей
func (s *alertService) CreateAlert(ctx context.Context, alert *models.Alert) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "CreateAlert",
		"title":   alert.Title,
	})
	log.Info("Attempting to create a new alert")

	if !alert.AlertType.Valid() {
		log.WithField("alert_type", alert.AlertType).Warn("Unknown alert type")
		return fmt.Errorf("%w: unknown alert type %q", models.ErrValidation, alert.AlertType)
	}

	switch {
	case alert.Zone != "":
		if !geo.IsKnownZone(alert.Zone) {
			log.WithField("zone", alert.Zone).Warn("Unknown zone")
			return fmt.Errorf("%w: unknown zone %q", models.ErrValidation, alert.Zone)
		}
	case alert.Coordinates != nil:
		alert.Zone = geo.Resolve(alert.Coordinates.Latitude, alert.Coordinates.Longitude)
		log.WithField("zone", alert.Zone).Debug("Zone resolved from coordinates")
	default:
		alert.Zone = geo.OtherZone
	}

	now := timestamp()
	alert.ID = uuid.New()
	alert.Status = models.StatusActive
	alert.Verified = false
	alert.VoteCount = 0
	alert.VoterTokens = []string{}
	alert.CreatedAt = now
	alert.UpdatedAt = now

	// Запись доводится до конца даже при отключении клиента
	if err := s.repo.Insert(context.WithoutCancel(ctx), alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return fmt.Errorf("service: could not create alert: %w", err)
	}

	s.publisher.Publish(models.NewAlertEvent(models.EventCreated, alert))
	log.WithFields(logrus.Fields{"alert_id": alert.ID, "zone": alert.Zone}).Info("Alert created successfully")
	return nil
}

// GetAlert получает алерт по ID, сначала из кеша
func (s *alertService) GetAlert(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "GetAlert",
		"alert_id": id,
	})
	log.Info("Fetching alert by ID")

	cached, err := s.repo.GetAlertFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read alert from cache")
	}
	if cached != nil {
		log.Debug("Alert fetched from cache")
		return cached, nil
	}

	// Заполнение кеша сериализовано с голосами и обновлениями этого алерта
	unlock := s.locks.Lock(id.String())
	defer unlock()

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get alert in repository")
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}

	if err := s.repo.SetAlertCache(ctx, alert); err != nil {
		log.WithError(err).Warn("Failed to cache alert")
	}

	log.Info("Alert fetched successfully")
	return alert, nil
}

// ListAlerts возвращает последние алерты по фильтру
func (s *alertService) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "alert",
		"method":        "ListAlerts",
		"zone":          filter.Zone,
		"alert_type":    filter.AlertType,
		"status":        filter.Status,
		"verified_only": filter.VerifiedOnly,
	})
	log.Info("Listing alerts")

	alerts, err := s.repo.Query(ctx, filter, ListLimit)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from repository")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}

	log.WithField("count", len(alerts)).Info("Alerts listed successfully")
	return alerts, nil
}

// UpdateAlert применяет частичное обновление статуса и подтверждения
func (s *alertService) UpdateAlert(ctx context.Context, id uuid.UUID, update models.AlertUpdate) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "UpdateAlert",
		"alert_id": id,
	})
	log.Info("Attempting to update alert")

	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, *update.Status)
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent alert")
		return nil, fmt.Errorf("service: alert with id %s not found for update: %w", id, err)
	}

	patch := models.AlertPatch{}
	if update.Status != nil {
		status := *update.Status
		patch.Status = &status
		alert.Status = status
	}
	if update.Verified != nil {
		if alert.Verified && !*update.Verified {
			log.Warn("Attempted to revoke verification")
			return nil, fmt.Errorf("%w: verification cannot be revoked", models.ErrValidation)
		}
		verified := *update.Verified
		patch.Verified = &verified
		alert.Verified = verified
	}

	if patch.IsEmpty() {
		log.Info("Nothing to update")
		return alert, nil
	}

	alert.UpdatedAt = timestamp()
	patch.UpdatedAt = alert.UpdatedAt
	found, err := s.repo.UpdateFields(ctx, id, patch)
	if err != nil {
		log.WithError(err).Error("Failed to update alert in repository")
		return nil, fmt.Errorf("service: could not update alert: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("service: alert with id %s not found for update: %w", id, models.ErrAlertNotFound)
	}
	s.invalidateCache(ctx, log, id)

	s.publisher.Publish(models.NewAlertEvent(models.EventUpdated, alert))
	log.WithFields(logrus.Fields{"status": alert.Status, "verified": alert.Verified}).Info("Alert updated successfully")
	return alert, nil
}

// VoteAlert регистрирует голос токена. Голоса за один алерт выполняются строго последовательно.
func (s *alertService) VoteAlert(ctx context.Context, id uuid.UUID, voterToken string) (models.VoteOutcome, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "VoteAlert",
		"alert_id": id,
	})
	log.Info("Registering vote")

	unlock := s.locks.Lock(id.String())
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to vote for a non-existent alert")
		return models.VoteOutcome{}, fmt.Errorf("service: alert with id %s not found for vote: %w", id, err)
	}

	outcome, err := alert.RegisterVote(voterToken)
	if err != nil {
		log.WithError(err).Warn("Vote rejected")
		return outcome, fmt.Errorf("service: vote rejected: %w", err)
	}

	alert.UpdatedAt = timestamp()
	found, err := s.repo.UpdateFields(ctx, id, models.AlertPatch{
		Verified:    &outcome.Verified,
		VoteCount:   &outcome.VoteCount,
		VoterTokens: alert.VoterTokens,
		UpdatedAt:   alert.UpdatedAt,
	})
	if err != nil {
		log.WithError(err).Error("Failed to persist vote")
		return models.VoteOutcome{}, fmt.Errorf("service: could not persist vote: %w", err)
	}
	if !found {
		return models.VoteOutcome{}, fmt.Errorf("service: alert with id %s not found for vote: %w", id, models.ErrAlertNotFound)
	}
	s.invalidateCache(ctx, log, id)

	s.publisher.Publish(models.NewAlertEvent(models.EventVote, alert))
	log.WithFields(logrus.Fields{"vote_count": outcome.VoteCount, "verified": outcome.Verified}).Info("Vote registered")
	return outcome, nil
}

// NearbyAlerts возвращает активные алерты внутри квадрата со стороной 2*radius градусов
func (s *alertService) NearbyAlerts(ctx context.Context, lat, lon, radius float64) ([]*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "alert",
		"method":    "NearbyAlerts",
		"latitude":  lat,
		"longitude": lon,
		"radius":    radius,
	})
	log.Info("Searching nearby alerts")

	if radius <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", models.ErrValidation)
	}

	filter := models.AlertFilter{
		Status: models.StatusActive,
		Box:    models.NewBoundingBox(lat, lon, radius),
	}
	alerts, err := s.repo.Query(ctx, filter, ListLimit)
	if err != nil {
		log.WithError(err).Error("Failed to find nearby alerts")
		return nil, fmt.Errorf("service: failed to find nearby alerts: %w", err)
	}

	log.WithField("count", len(alerts)).Info("Nearby search completed")
	return alerts, nil
}

// DetectZone определяет зону по координатам
func (s *alertService) DetectZone(lat, lon float64) string {
	return geo.Resolve(lat, lon)
}

// GetStats возвращает агрегированную статистику
func (s *alertService) GetStats(ctx context.Context) (*models.AlertStats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "GetStats",
	})
	log.Info("Collecting alert stats")

	stats := &models.AlertStats{ByType: make(map[models.AlertType]int, len(models.AlertTypes))}
	counters := []struct {
		filter models.AlertFilter
		dst    *int
	}{
		{models.AlertFilter{}, &stats.Total},
		{models.AlertFilter{Status: models.StatusActive}, &stats.Active},
		{models.AlertFilter{Status: models.StatusResolved}, &stats.Resolved},
		{models.AlertFilter{VerifiedOnly: true}, &stats.Verified},
	}
	for _, c := range counters {
		n, err := s.repo.Count(ctx, c.filter)
		if err != nil {
			log.WithError(err).Error("Failed to count alerts")
			return nil, fmt.Errorf("service: could not count alerts: %w", err)
		}
		*c.dst = n
	}
	for _, info := range models.AlertTypes {
		n, err := s.repo.Count(ctx, models.AlertFilter{AlertType: info.ID})
		if err != nil {
			log.WithError(err).Error("Failed to count alerts by type")
			return nil, fmt.Errorf("service: could not count alerts: %w", err)
		}
		stats.ByType[info.ID] = n
	}

	return stats, nil
}

// timestamp обрезает время до микросекунд, с которыми его хранит PostgreSQL
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *alertService) invalidateCache(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.repo.InvalidateAlertCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate alert cache")
	}
}

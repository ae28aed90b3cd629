package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
)

const alertColumns = `
	id,
	title,
	description,
	alert_type,
	zone,
	reporter_name,
	latitude,
	longitude,
	accuracy,
	status,
	verified,
	vote_count,
	voter_tokens,
	created_at,
	updated_at`

type AlertRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewAlertRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.AlertRepository {
	return &AlertRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Insert сохраняет новый алерт в бд
func (r *AlertRepository) Insert(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	lat, lon, acc := coordinateArgs(alert.Coordinates)
	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.Title,
		alert.Description,
		alert.AlertType,
		alert.Zone,
		alert.ReporterName,
		lat,
		lon,
		acc,
		alert.Status,
		alert.Verified,
		alert.VoteCount,
		nonNilTokens(alert.VoterTokens),
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetByID возвращает алерт по его UUID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1;`

	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alert with id %s: %w", id, models.ErrAlertNotFound)
		}
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}
	return alert, nil
}

// UpdateFields применяет частичное обновление. false означает, что алерта нет.
func (r *AlertRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch models.AlertPatch) (bool, error) {
	if patch.IsEmpty() {
		return false, fmt.Errorf("%w: empty patch", models.ErrValidation)
	}

	query, args := buildUpdate(id, patch)
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update alert: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// Query возвращает алерты по фильтру, новые первыми
func (r *AlertRepository) Query(ctx context.Context, filter models.AlertFilter, limit int) ([]*models.Alert, error) {
	where, args := buildWhere(filter)
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM alerts%s ORDER BY created_at DESC LIMIT $%d;`, alertColumns, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

// Count возвращает число алертов, подходящих под фильтр
func (r *AlertRepository) Count(ctx context.Context, filter models.AlertFilter) (int, error) {
	where, args := buildWhere(filter)
	query := `SELECT COUNT(*) FROM alerts` + where + `;`

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// GetAlertFromCache пытается получить алерт из Redis. Промах возвращает nil без ошибки.
func (r *AlertRepository) GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	val, err := r.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert from cache: %w", err)
	}

	alert := &models.Alert{}
	if err := json.Unmarshal(val, alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert from cache: %w", err)
	}
	return alert, nil
}

// SetAlertCache сохраняет алерт в Redis
func (r *AlertRepository) SetAlertCache(ctx context.Context, alert *models.Alert) error {
	val, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, cacheKey(alert.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set alert in cache: %w", err)
	}
	return nil
}

// InvalidateAlertCache удаляет алерт из кеша
func (r *AlertRepository) InvalidateAlertCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate alert cache: %w", err)
	}
	return nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("alert:%s", id.String())
}

// buildWhere собирает условие WHERE с позиционными параметрами
func buildWhere(filter models.AlertFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Zone != "" {
		add("zone = $%d", filter.Zone)
	}
	if filter.AlertType != "" {
		add("alert_type = $%d", string(filter.AlertType))
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.VerifiedOnly {
		conds = append(conds, "verified = TRUE")
	}
	if b := filter.Box; b != nil {
		add("latitude >= $%d", b.MinLat)
		add("latitude <= $%d", b.MaxLat)
		add("longitude >= $%d", b.MinLon)
		add("longitude <= $%d", b.MaxLon)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildUpdate собирает UPDATE только по заданным полям патча
func buildUpdate(id uuid.UUID, patch models.AlertPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(column string, arg any) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.Verified != nil {
		set("verified", *patch.Verified)
	}
	if patch.VoteCount != nil {
		set("vote_count", *patch.VoteCount)
	}
	if patch.VoterTokens != nil {
		set("voter_tokens", patch.VoterTokens)
	}
	if patch.UpdatedAt.IsZero() {
		sets = append(sets, "updated_at = NOW()")
	} else {
		set("updated_at", patch.UpdatedAt)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE alerts SET %s WHERE id = $%d;", strings.Join(sets, ", "), len(args))
	return query, args
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var (
		alert    models.Alert
		lat, lon *float64
		acc      *float64
	)
	err := row.Scan(
		&alert.ID,
		&alert.Title,
		&alert.Description,
		&alert.AlertType,
		&alert.Zone,
		&alert.ReporterName,
		&lat,
		&lon,
		&acc,
		&alert.Status,
		&alert.Verified,
		&alert.VoteCount,
		&alert.VoterTokens,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lon != nil {
		alert.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lon}
		if acc != nil {
			alert.Coordinates.Accuracy = *acc
		}
	}
	return &alert, nil
}

func coordinateArgs(c *models.Coordinates) (lat, lon, acc *float64) {
	if c == nil {
		return nil, nil, nil
	}
	return &c.Latitude, &c.Longitude, &c.Accuracy
}

func nonNilTokens(tokens []string) []string {
	if tokens == nil {
		return []string{}
	}
	return tokens
}

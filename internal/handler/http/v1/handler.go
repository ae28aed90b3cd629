package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/community_alerts/internal/broadcast"
	"github.com/shenikar/community_alerts/internal/config"
	"github.com/shenikar/community_alerts/internal/geo"
	"github.com/shenikar/community_alerts/internal/models"
	"github.com/shenikar/community_alerts/internal/service"
	"github.com/sirupsen/logrus"
)

const statusAll = "all"

type Handler struct {
	alertService service.AlertService
	hub          *broadcast.Hub
	logger       *logrus.Logger
	validate     *validator.Validate
	cfg          *config.Config
	upgrader     websocket.Upgrader
	rateObserver RateLimitObserver
}

func NewHandler(alertService service.AlertService, hub *broadcast.Hub, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		alertService: alertService,
		hub:          hub,
		logger:       logger,
		validate:     validator.New(),
		cfg:          cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Лента публичная, авторизации нет
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WithRateLimitObserver подключает учет решений ограничителя частоты
func (h *Handler) WithRateLimitObserver(observer RateLimitObserver) *Handler {
	h.rateObserver = observer
	return h
}

// respondError отображает доменные ошибки в HTTP-статусы
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrAlertNotFound):
		log.WithError(err).Warn("Alert not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
	case errors.Is(err, models.ErrDuplicateVote):
		log.WithError(err).Info("Duplicate vote")
		c.JSON(http.StatusConflict, gin.H{"error": "voter has already voted for this alert"})
	default:
		log.WithError(err).Error("Request failed in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON разбирает и валидирует тело запроса. false означает, что ответ уже отправлен.
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// bindQuery разбирает и валидирует параметры строки запроса
func (h *Handler) bindQuery(c *gin.Context, log *logrus.Entry, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func parseAlertID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return uuid.Nil, false
	}
	return id, true
}

// @Summary Create a new alert
// @Description Report a new incident. The zone is taken from the request, resolved from coordinates, or set to "Other".
// @Tags Alerts
// @Accept json
// @Produce json
// @Param alert body CreateAlertRequest true "Alert creation request"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	var input CreateAlertRequest
	log := h.logger.WithField("method", "createAlert")

	if !h.bindJSON(c, log, &input) {
		return
	}

	model := CreateRequestToAlertModel(input)
	if err := h.alertService.CreateAlert(c.Request.Context(), model); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAlertResponse(model))
}

// @Summary Get a list of alerts
// @Description Most recent alerts first, at most 100. Status defaults to "active"; use status=all to disable the status filter.
// @Tags Alerts
// @Produce json
// @Param zone query string false "Zone name"
// @Param alertType query string false "Alert type" Enums(theft, accident, disaster)
// @Param status query string false "Status" Enums(active, resolved, all) default(active)
// @Param verifiedOnly query bool false "Only verified alerts"
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	var query ListAlertsQuery
	log := h.logger.WithField("method", "listAlerts")

	if !h.bindQuery(c, log, &query) {
		return
	}

	alerts, err := h.alertService.ListAlerts(c.Request.Context(), ListQueryToFilter(query))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get alert by ID
// @Tags Alerts
// @Produce json
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getAlert").WithField("id", id)

	alert, err := h.alertService.GetAlert(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Update an alert
// @Description Partial update of status and verification. Omitted fields keep their values; verification cannot be revoked.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Param alert body UpdateAlertRequest true "Alert update request"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id} [put]
func (h *Handler) updateAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateAlert").WithField("id", id)

	var input UpdateAlertRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	alert, err := h.alertService.UpdateAlert(c.Request.Context(), id, UpdateRequestToModel(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Vote for an alert
// @Description Each voter token counts once per alert. The alert becomes verified at 3 distinct votes.
// @Tags Alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert ID"
// @Param vote body VoteRequest true "Vote request"
// @Success 200 {object} VoteResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Duplicate vote"
// @Failure 429 {object} map[string]string "Too many requests"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/vote [post]
func (h *Handler) voteAlert(c *gin.Context) {
	id, ok := parseAlertID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "voteAlert").WithField("id", id)

	var input VoteRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	outcome, err := h.alertService.VoteAlert(c.Request.Context(), id, input.VoterToken)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, VoteResponse{VoteCount: outcome.VoteCount, Verified: outcome.Verified})
}

// @Summary Find nearby alerts
// @Description Active alerts whose coordinates fall within a square of +/- radius degrees around the point.
// @Tags Alerts
// @Produce json
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param radius query number false "Radius in degrees" default(0.1)
// @Success 200 {array} AlertResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/nearby [get]
func (h *Handler) nearbyAlerts(c *gin.Context) {
	var query NearbyQuery
	log := h.logger.WithField("method", "nearbyAlerts")

	if !h.bindQuery(c, log, &query) {
		return
	}

	alerts, err := h.alertService.NearbyAlerts(c.Request.Context(), *query.Latitude, *query.Longitude, query.Radius)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Detect zone by coordinates
// @Tags Zones
// @Accept json
// @Produce json
// @Param location body DetectZoneRequest true "Coordinates"
// @Success 200 {object} DetectZoneResponse
// @Failure 400 {object} map[string]string "Missing or invalid coordinates"
// @Router /detect-zone [post]
func (h *Handler) detectZone(c *gin.Context) {
	var input DetectZoneRequest
	log := h.logger.WithField("method", "detectZone")

	if !h.bindJSON(c, log, &input) {
		return
	}

	c.JSON(http.StatusOK, DetectZoneResponse{Zone: h.alertService.DetectZone(*input.Latitude, *input.Longitude)})
}

// @Summary Get alert statistics
// @Tags System
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.alertService.GetStats(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelToStatsResponse(stats, h.hub.Count()))
}

// @Summary List known zones
// @Tags Zones
// @Produce json
// @Success 200 {object} ZonesResponse
// @Router /zones [get]
func (h *Handler) listZones(c *gin.Context) {
	c.JSON(http.StatusOK, ZonesResponse{Zones: geo.Zones})
}

// @Summary List alert types
// @Tags Alerts
// @Produce json
// @Success 200 {object} AlertTypesResponse
// @Router /alert-types [get]
func (h *Handler) listAlertTypes(c *gin.Context) {
	c.JSON(http.StatusOK, alertTypeCatalog())
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

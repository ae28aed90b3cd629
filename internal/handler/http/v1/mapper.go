package v1

import "github.com/shenikar/community_alerts/internal/models"

// CreateRequestToAlertModel преобразует DTO создания в доменную модель
func CreateRequestToAlertModel(req CreateAlertRequest) *models.Alert {
	alert := &models.Alert{
		Title:        req.Title,
		Description:  req.Description,
		AlertType:    models.AlertType(req.AlertType),
		Zone:         req.Zone,
		ReporterName: req.ReporterName,
	}
	if c := req.Coordinates; c != nil && c.Latitude != nil && c.Longitude != nil {
		alert.Coordinates = &models.Coordinates{
			Latitude:  *c.Latitude,
			Longitude: *c.Longitude,
			Accuracy:  c.Accuracy,
		}
	}
	return alert
}

// UpdateRequestToModel преобразует DTO обновления в доменное изменение
func UpdateRequestToModel(req UpdateAlertRequest) models.AlertUpdate {
	update := models.AlertUpdate{Verified: req.Verified}
	if req.Status != nil {
		status := models.AlertStatus(*req.Status)
		update.Status = &status
	}
	return update
}

// ListQueryToFilter преобразует параметры запроса в фильтр. status=all снимает фильтр по статусу.
func ListQueryToFilter(q ListAlertsQuery) models.AlertFilter {
	filter := models.AlertFilter{
		Zone:         q.Zone,
		AlertType:    models.AlertType(q.AlertType),
		VerifiedOnly: q.VerifiedOnly,
	}
	if q.Status != statusAll {
		filter.Status = models.AlertStatus(q.Status)
	}
	return filter
}

// ModelToAlertResponse преобразует доменную модель в DTO для ответа
func ModelToAlertResponse(model *models.Alert) *AlertResponse {
	resp := &AlertResponse{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		AlertType:    string(model.AlertType),
		Zone:         model.Zone,
		ReporterName: model.ReporterName,
		Status:       string(model.Status),
		Verified:     model.Verified,
		VoteCount:    model.VoteCount,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if c := model.Coordinates; c != nil {
		lat, lon := c.Latitude, c.Longitude
		resp.Coordinates = &CoordinatesDTO{Latitude: &lat, Longitude: &lon, Accuracy: c.Accuracy}
	}
	return resp
}

// ModelsToAlertResponses преобразует слайс моделей в слайс DTO
func ModelsToAlertResponses(alerts []*models.Alert) []*AlertResponse {
	responses := make([]*AlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = ModelToAlertResponse(alert)
	}
	return responses
}

// ModelToStatsResponse добавляет к статистике число подключенных наблюдателей
func ModelToStatsResponse(stats *models.AlertStats, liveObservers int) *StatsResponse {
	byType := make(map[string]int, len(stats.ByType))
	for t, n := range stats.ByType {
		byType[string(t)] = n
	}
	return &StatsResponse{
		Total:         stats.Total,
		Active:        stats.Active,
		Resolved:      stats.Resolved,
		Verified:      stats.Verified,
		ByType:        byType,
		LiveObservers: liveObservers,
	}
}

func alertTypeCatalog() AlertTypesResponse {
	types := make([]AlertTypeResponse, len(models.AlertTypes))
	for i, info := range models.AlertTypes {
		types[i] = AlertTypeResponse{ID: string(info.ID), Label: info.Label, Icon: info.Icon}
	}
	return AlertTypesResponse{AlertTypes: types}
}

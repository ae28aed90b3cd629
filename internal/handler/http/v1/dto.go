package v1

import (
	"time"

	"github.com/google/uuid"
)

// CoordinatesDTO DTO координат. Указатели позволяют отличить 0 от отсутствия значения.
// @Description Координаты точки
type CoordinatesDTO struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Accuracy  float64  `json:"accuracy,omitempty" validate:"gte=0"`
}

// CreateAlertRequest DTO для создания алерта
// @Description DTO для создания алерта
type CreateAlertRequest struct {
	Title        string          `json:"title" validate:"required,min=2,max=255"`
	Description  string          `json:"description,omitempty" validate:"max=2000"`
	AlertType    string          `json:"alertType" validate:"required,oneof=theft accident disaster"`
	Zone         string          `json:"zone,omitempty" validate:"max=64"`
	ReporterName string          `json:"reporterName,omitempty" validate:"max=100"`
	Coordinates  *CoordinatesDTO `json:"coordinates,omitempty"`
}

// UpdateAlertRequest DTO для частичного обновления алерта. Отсутствующие поля не меняются.
// @Description DTO для обновления алерта
type UpdateAlertRequest struct {
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active resolved"`
	Verified *bool   `json:"verified,omitempty"`
}

// VoteRequest DTO голоса
// @Description DTO голоса за алерт
type VoteRequest struct {
	VoterToken string `json:"voterToken" validate:"required,max=128"`
}

// VoteResponse DTO результата голосования
// @Description Состояние голосования после принятого голоса
type VoteResponse struct {
	VoteCount int  `json:"voteCount"`
	Verified  bool `json:"verified"`
}

// DetectZoneRequest DTO определения зоны
// @Description DTO определения зоны по координатам
type DetectZoneRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// DetectZoneResponse DTO ответа с зоной
type DetectZoneResponse struct {
	Zone string `json:"zone"`
}

// ListAlertsQuery параметры выборки алертов
type ListAlertsQuery struct {
	Zone         string `form:"zone" validate:"max=64"`
	AlertType    string `form:"alertType" validate:"omitempty,oneof=theft accident disaster"`
	Status       string `form:"status,default=active" validate:"oneof=active resolved all"`
	VerifiedOnly bool   `form:"verifiedOnly"`
}

// NearbyQuery параметры поиска рядом с точкой. Радиус в градусах.
type NearbyQuery struct {
	Latitude  *float64 `form:"latitude" validate:"required,latitude"`
	Longitude *float64 `form:"longitude" validate:"required,longitude"`
	Radius    float64  `form:"radius,default=0.1" validate:"gt=0,lte=10"`
}

// AlertResponse DTO для ответа с информацией об алерте
// @Description DTO для ответа с информацией об алерте
type AlertResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	AlertType    string          `json:"alertType"`
	Zone         string          `json:"zone"`
	ReporterName string          `json:"reporterName"`
	Coordinates  *CoordinatesDTO `json:"coordinates,omitempty"`
	Status       string          `json:"status"`
	Verified     bool            `json:"verified"`
	VoteCount    int             `json:"voteCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Resolved      int            `json:"resolved"`
	Verified      int            `json:"verified"`
	ByType        map[string]int `json:"byType"`
	LiveObservers int            `json:"liveObservers"`
}

// ZonesResponse список известных зон
type ZonesResponse struct {
	Zones []string `json:"zones"`
}

// AlertTypeResponse описание типа алерта
type AlertTypeResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// AlertTypesResponse каталог типов алертов
type AlertTypesResponse struct {
	AlertTypes []AlertTypeResponse `json:"alertTypes"`
}

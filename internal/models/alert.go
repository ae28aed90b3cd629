package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// AlertType - тип происшествия
type AlertType string

const (
	AlertTypeTheft    AlertType = "theft"
	AlertTypeAccident AlertType = "accident"
	AlertTypeDisaster AlertType = "disaster"
)

// AlertStatus - статус жизненного цикла алерта
type AlertStatus string

const (
	StatusActive   AlertStatus = "active"
	StatusResolved AlertStatus = "resolved"
)

// VerificationThreshold - число различных голосов, после которого алерт считается подтвержденным
const VerificationThreshold = 3

// AlertTypeInfo описывает тип алерта для клиентов
type AlertTypeInfo struct {
	ID    AlertType `json:"id"`
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
}

// AlertTypes - каталог поддерживаемых типов в порядке отображения
var AlertTypes = []AlertTypeInfo{
	{ID: AlertTypeTheft, Label: "Vol/Cambriolage", Icon: "🚨"},
	{ID: AlertTypeAccident, Label: "Accident", Icon: "🚑"},
	{ID: AlertTypeDisaster, Label: "Catastrophe Naturelle", Icon: "⚠️"},
}

// Valid сообщает, входит ли тип в каталог
func (t AlertType) Valid() bool {
	return slices.ContainsFunc(AlertTypes, func(info AlertTypeInfo) bool { return info.ID == t })
}

// Valid сообщает, является ли статус допустимым
func (s AlertStatus) Valid() bool {
	return s == StatusActive || s == StatusResolved
}

// Coordinates - точка, которой поделился автор сообщения
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Alert - сообщение о происшествии
type Alert struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	AlertType    AlertType    `json:"alertType"`
	Zone         string       `json:"zone"`
	ReporterName string       `json:"reporterName"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Status       AlertStatus  `json:"status"`
	Verified     bool         `json:"verified"`
	VoteCount    int          `json:"voteCount"`
	VoterTokens  []string     `json:"-"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Clone возвращает глубокую копию алерта, безопасную для передачи в другие горутины
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}
	c := *a
	if a.Coordinates != nil {
		coords := *a.Coordinates
		c.Coordinates = &coords
	}
	c.VoterTokens = slices.Clone(a.VoterTokens)
	return &c
}

// AlertFilter - параметры выборки алертов. Пустые поля не фильтруют.
type AlertFilter struct {
	Zone         string
	AlertType    AlertType
	Status       AlertStatus
	VerifiedOnly bool
	// Box ограничивает выборку алертами с координатами внутри прямоугольника
	Box *BoundingBox
}

// BoundingBox - прямоугольник в градусах
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// NewBoundingBox строит квадрат [lat-r, lat+r] x [lon-r, lon+r]
func NewBoundingBox(lat, lon, radius float64) *BoundingBox {
	return &BoundingBox{
		MinLat: lat - radius,
		MaxLat: lat + radius,
		MinLon: lon - radius,
		MaxLon: lon + radius,
	}
}

// Contains сообщает, лежит ли точка внутри прямоугольника (границы включены)
func (b *BoundingBox) Contains(c *Coordinates) bool {
	if c == nil {
		return false
	}
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLon && c.Longitude <= b.MaxLon
}

// Matches применяет фильтр к алерту в памяти
func (f AlertFilter) Matches(a *Alert) bool {
	if f.Zone != "" && a.Zone != f.Zone {
		return false
	}
	if f.AlertType != "" && a.AlertType != f.AlertType {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.VerifiedOnly && !a.Verified {
		return false
	}
	if f.Box != nil && !f.Box.Contains(a.Coordinates) {
		return false
	}
	return true
}

// AlertPatch - частичное обновление алерта. nil означает "не менять".
type AlertPatch struct {
	Status      *AlertStatus
	Verified    *bool
	VoteCount   *int
	VoterTokens []string

	// UpdatedAt записывается как есть; нулевое значение означает время базы
	UpdatedAt time.Time
}

// IsEmpty сообщает, что патч ничего не меняет. Одна метка времени изменением не считается.
func (p AlertPatch) IsEmpty() bool {
	return p.Status == nil && p.Verified == nil && p.VoteCount == nil && p.VoterTokens == nil
}

// AlertUpdate - изменения, которые клиент может внести в алерт. nil означает "не менять".
type AlertUpdate struct {
	Status   *AlertStatus
	Verified *bool
}

// AlertStats - агрегированная статистика по алертам
type AlertStats struct {
	Total    int               `json:"total"`
	Active   int               `json:"active"`
	Resolved int               `json:"resolved"`
	Verified int               `json:"verified"`
	ByType   map[AlertType]int `json:"byType"`
}

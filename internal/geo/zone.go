// Package geo определяет административную зону по координатам.
package geo

import (
	"math"
	"slices"
)

// OtherZone - зона для точек вне радиуса всех известных центроидов
const OtherZone = "Other"

// Centroid - центр зоны и радиус допуска в градусах
type Centroid struct {
	Zone      string
	Latitude  float64
	Longitude float64
	Radius    float64
}

// Centroids - таблица центроидов. Порядок важен: при равном расстоянии побеждает первая запись.
var Centroids = []Centroid{
	{Zone: "Abidjan", Latitude: 5.3600, Longitude: -4.0083, Radius: 0.30},
	{Zone: "Bouaké", Latitude: 7.6906, Longitude: -5.0300, Radius: 0.30},
	{Zone: "Yamoussoukro", Latitude: 6.8276, Longitude: -5.2893, Radius: 0.25},
	{Zone: "Daloa", Latitude: 6.8774, Longitude: -6.4502, Radius: 0.25},
	{Zone: "San-Pédro", Latitude: 4.7485, Longitude: -6.6363, Radius: 0.25},
	{Zone: "Korhogo", Latitude: 9.4580, Longitude: -5.6296, Radius: 0.25},
	{Zone: "Man", Latitude: 7.4125, Longitude: -7.5538, Radius: 0.25},
	{Zone: "Gagnoa", Latitude: 6.1319, Longitude: -5.9506, Radius: 0.20},
	{Zone: "Divo", Latitude: 5.8372, Longitude: -5.3572, Radius: 0.20},
	{Zone: "Abengourou", Latitude: 6.7297, Longitude: -3.4964, Radius: 0.20},
	{Zone: "Bondoukou", Latitude: 8.0402, Longitude: -2.8000, Radius: 0.20},
	{Zone: "Séguéla", Latitude: 7.9611, Longitude: -6.6731, Radius: 0.20},
	{Zone: "Odienné", Latitude: 9.5051, Longitude: -7.5643, Radius: 0.20},
	{Zone: "Grand-Bassam", Latitude: 5.2118, Longitude: -3.7388, Radius: 0.10},
	{Zone: "Jacqueville", Latitude: 5.2052, Longitude: -4.4146, Radius: 0.10},
	{Zone: "Sassandra", Latitude: 4.9538, Longitude: -6.0853, Radius: 0.15},
	{Zone: "Soubré", Latitude: 5.7856, Longitude: -6.6083, Radius: 0.15},
	{Zone: "Ferké", Latitude: 9.5928, Longitude: -5.1944, Radius: 0.15},
	{Zone: "Katiola", Latitude: 8.1375, Longitude: -5.1010, Radius: 0.15},
	{Zone: "Touba", Latitude: 8.2833, Longitude: -7.6833, Radius: 0.15},
	{Zone: "Danané", Latitude: 7.2596, Longitude: -8.1550, Radius: 0.15},
	{Zone: "Tabou", Latitude: 4.4230, Longitude: -7.3528, Radius: 0.15},
}

// Zones - все известные зоны Кот-д'Ивуара, включая зоны без центроида
var Zones = []string{
	"Abidjan", "Bouaké", "Daloa", "Korhogo", "San-Pédro", "Yamoussoukro",
	"Divo", "Gagnoa", "Abengourou", "Bondoukou", "Grand-Bassam", "Jacqueville",
	"Sassandra", "Tabou", "Soubré", "Issia", "Sinfra", "Vavoua", "Zuénoula",
	"Danané", "Man", "Touba", "Odienné", "Minignan", "Séguéla", "Katiola",
	"Dabakala", "Tanda", "Bouna", "Doropo", "Ferké", "Ouangolo",
}

// IsKnownZone сообщает, является ли имя известной зоной или OtherZone
func IsKnownZone(zone string) bool {
	return zone == OtherZone || slices.Contains(Zones, zone)
}

// Resolve возвращает ближайшую зону, в радиус которой строго попадает точка, иначе OtherZone.
// Расстояние евклидово в градусах, без учета кривизны Земли.
func Resolve(lat, lon float64) string {
	return ResolveWith(Centroids, lat, lon)
}

// ResolveWith - то же, что Resolve, для произвольной таблицы центроидов
func ResolveWith(centroids []Centroid, lat, lon float64) string {
	zone := OtherZone
	best := math.Inf(1)
	for _, c := range centroids {
		d := math.Hypot(lat-c.Latitude, lon-c.Longitude)
		if d < c.Radius && d < best {
			best = d
			zone = c.Zone
		}
	}
	return zone
}

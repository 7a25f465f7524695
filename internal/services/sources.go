package services

import "strings"

// Upstream names used as metric labels.
const (
	sourceRealtime = "realtime"
	sourceWeather  = "weather"
	sourceCovid    = "covid"
	sourceLottery  = "lottery"
	sourceRegistry = "toilet_registry"
	sourceGeocode  = "geocode"
)

var taiReplacer = strings.NewReplacer("台", "臺")

// NormalizeRegionName rewrites the informal 台 to the official 臺 used by
// government datasets, so "台北市" and "臺北市" name the same region.
func NormalizeRegionName(s string) string {
	return taiReplacer.Replace(strings.TrimSpace(s))
}

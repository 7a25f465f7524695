package entities

import "time"

// StopRecord is one garbage-truck stop taken from the live feed. It is built
// per request and never persisted.
type StopRecord struct {
	LocationLabel string   `json:"location"`
	Point         GeoPoint `json:"point"`
}

// Location returns the stop's coordinates.
func (s StopRecord) Location() GeoPoint { return s.Point }

// ToiletRecord is a public toilet from the registry import. Records are
// stored as one JSON array per region partition.
type ToiletRecord struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Grade   string   `json:"grade"`
	Point   GeoPoint `json:"point"`
}

// Location returns the toilet's coordinates.
func (t ToiletRecord) Location() GeoPoint { return t.Point }

// LotteryDraw is one published lottery result, cached per draw date.
type LotteryDraw struct {
	Game      string    `json:"game"`
	Period    string    `json:"period"`
	Date      string    `json:"date"`
	Numbers   []string  `json:"numbers"`
	Special   string    `json:"special,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

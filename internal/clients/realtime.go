package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNotConfigured is returned by clients whose upstream URL is empty.
var ErrNotConfigured = errors.New("upstream url not configured")

// Coordinate keeps a coordinate exactly as the feed sent it. The realtime
// feed mixes JSON strings and numbers, so decoding never fails here; turning
// the text into a float is entities.ParseGeoPoint's job.
type Coordinate string

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}
	*c = Coordinate(b)
	return nil
}

// TruckRow is one record of the garbage-truck realtime feed.
type TruckRow struct {
	CityName  string     `json:"cityName"`
	Location  string     `json:"location"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
	LineID    string     `json:"lineId,omitempty"`
	Car       string     `json:"car,omitempty"`
	Time      string     `json:"time,omitempty"`
}

// RealtimeClient reads the garbage-truck realtime feed: one GET returning a
// JSON array of TruckRow.
type RealtimeClient struct {
	url        string
	httpClient *http.Client
}

func NewRealtimeClient(url string, timeout time.Duration) *RealtimeClient {
	return &RealtimeClient{
		url:        url,
		httpClient: newHTTPClient(timeout),
	}
}

// Fetch returns every row currently in the feed.
func (c *RealtimeClient) Fetch(ctx context.Context) ([]TruckRow, error) {
	if c.url == "" {
		return nil, fmt.Errorf("realtime feed: %w", ErrNotConfigured)
	}
	body, err := get(ctx, c.httpClient, c.url)
	if err != nil {
		return nil, fmt.Errorf("realtime feed: %w", err)
	}

	var rows []TruckRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("realtime feed: decode: %w", err)
	}
	return rows, nil
}

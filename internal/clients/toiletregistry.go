package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RegistryToilet is one entry of the public-toilet registry as published by
// the environmental protection open-data service.
type RegistryToilet struct {
	County    string     `json:"county"`
	City      string     `json:"city"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Grade     string     `json:"grade"`
	Type      string     `json:"type,omitempty"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

type registryResponse struct {
	Total   json.Number      `json:"total"`
	Records []RegistryToilet `json:"records"`
}

// ToiletRegistryClient downloads the full toilet registry in one request.
type ToiletRegistryClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewToiletRegistryClient(url, apiKey string, timeout time.Duration) *ToiletRegistryClient {
	return &ToiletRegistryClient{
		url:        url,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
	}
}

// Fetch returns every registry record. Coordinates are left raw.
func (c *ToiletRegistryClient) Fetch(ctx context.Context) ([]RegistryToilet, error) {
	if c.url == "" {
		return nil, fmt.Errorf("toilet registry: %w", ErrNotConfigured)
	}
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("toilet registry: parse url: %w", err)
	}
	q := u.Query()
	q.Set("format", "json")
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	body, err := get(ctx, c.httpClient, u.String())
	if err != nil {
		return nil, fmt.Errorf("toilet registry: %w", err)
	}

	var resp registryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("toilet registry: decode: %w", err)
	}
	return resp.Records, nil
}

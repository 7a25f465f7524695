package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnknownLocation is returned when the forecast has no entry for the city.
var ErrUnknownLocation = errors.New("no forecast for location")

// ForecastPeriod is one 12-hour slot of the 36-hour county forecast.
type ForecastPeriod struct {
	Start   string
	End     string
	Wx      string // description, e.g. 多雲時晴
	PoP     int    // probability of precipitation, percent
	MinT    int    // °C
	MaxT    int    // °C
	Comfort string
}

// Forecast is the county forecast as returned by WeatherClient.
type Forecast struct {
	City    string
	Periods []ForecastPeriod
}

type cwaResponse struct {
	Success string `json:"success"`
	Records struct {
		Location []struct {
			LocationName   string `json:"locationName"`
			WeatherElement []struct {
				ElementName string `json:"elementName"`
				Time        []struct {
					StartTime string `json:"startTime"`
					EndTime   string `json:"endTime"`
					Parameter struct {
						ParameterName  string `json:"parameterName"`
						ParameterValue string `json:"parameterValue"`
						ParameterUnit  string `json:"parameterUnit"`
					} `json:"parameter"`
				} `json:"time"`
			} `json:"weatherElement"`
		} `json:"location"`
	} `json:"records"`
}

// WeatherClient reads the CWA open-data 36-hour forecast dataset.
type WeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
	}
}

// Forecast fetches the forecast for city (a county name such as 臺北市).
func (c *WeatherClient) Forecast(ctx context.Context, city string) (*Forecast, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("weather: %w", ErrNotConfigured)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("weather: parse url: %w", err)
	}
	q := u.Query()
	q.Set("Authorization", c.apiKey)
	q.Set("locationName", city)
	u.RawQuery = q.Encode()

	body, err := get(ctx, c.httpClient, u.String())
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}

	var resp cwaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("weather: decode: %w", err)
	}

	for _, loc := range resp.Records.Location {
		if loc.LocationName != city {
			continue
		}
		forecast := &Forecast{City: city}
		for _, el := range loc.WeatherElement {
			for i, slot := range el.Time {
				for len(forecast.Periods) <= i {
					forecast.Periods = append(forecast.Periods, ForecastPeriod{})
				}
				p := &forecast.Periods[i]
				p.Start, p.End = slot.StartTime, slot.EndTime
				name := slot.Parameter.ParameterName
				switch el.ElementName {
				case "Wx":
					p.Wx = name
				case "PoP":
					p.PoP = atoiOrZero(name)
				case "MinT":
					p.MinT = atoiOrZero(name)
				case "MaxT":
					p.MaxT = atoiOrZero(name)
				case "CI":
					p.Comfort = name
				}
			}
		}
		return forecast, nil
	}
	return nil, fmt.Errorf("weather: %w: %s", ErrUnknownLocation, city)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const forecastBody = `{
  "success": "true",
  "records": {
    "location": [{
      "locationName": "臺北市",
      "weatherElement": [
        {"elementName": "Wx", "time": [
          {"startTime": "2026-10-19 18:00:00", "endTime": "2026-10-20 06:00:00", "parameter": {"parameterName": "多雲", "parameterValue": "4"}},
          {"startTime": "2026-10-20 06:00:00", "endTime": "2026-10-20 18:00:00", "parameter": {"parameterName": "短暫陣雨", "parameterValue": "8"}}
        ]},
        {"elementName": "PoP", "time": [
          {"startTime": "2026-10-19 18:00:00", "endTime": "2026-10-20 06:00:00", "parameter": {"parameterName": "20", "parameterUnit": "百分比"}},
          {"startTime": "2026-10-20 06:00:00", "endTime": "2026-10-20 18:00:00", "parameter": {"parameterName": "70", "parameterUnit": "百分比"}}
        ]},
        {"elementName": "MinT", "time": [
          {"startTime": "2026-10-19 18:00:00", "endTime": "2026-10-20 06:00:00", "parameter": {"parameterName": "22", "parameterUnit": "C"}},
          {"startTime": "2026-10-20 06:00:00", "endTime": "2026-10-20 18:00:00", "parameter": {"parameterName": "23", "parameterUnit": "C"}}
        ]},
        {"elementName": "MaxT", "time": [
          {"startTime": "2026-10-19 18:00:00", "endTime": "2026-10-20 06:00:00", "parameter": {"parameterName": "26", "parameterUnit": "C"}},
          {"startTime": "2026-10-20 06:00:00", "endTime": "2026-10-20 18:00:00", "parameter": {"parameterName": "28", "parameterUnit": "C"}}
        ]},
        {"elementName": "CI", "time": [
          {"startTime": "2026-10-19 18:00:00", "endTime": "2026-10-20 06:00:00", "parameter": {"parameterName": "舒適"}},
          {"startTime": "2026-10-20 06:00:00", "endTime": "2026-10-20 18:00:00", "parameter": {"parameterName": "舒適至悶熱"}}
        ]}
      ]
    }]
  }
}`

func TestWeatherClient_Forecast(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"Authorization": r.URL.Query().Get("Authorization"),
			"locationName":  r.URL.Query().Get("locationName"),
		}
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	client := NewWeatherClient(srv.URL+"/api/v1/rest/datastore/F-C0032-001", "CWA-KEY", time.Second)
	forecast, err := client.Forecast(context.Background(), "臺北市")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotQuery["Authorization"] != "CWA-KEY" {
		t.Errorf("Expected api key in query, got %q", gotQuery["Authorization"])
	}
	if gotQuery["locationName"] != "臺北市" {
		t.Errorf("Expected locationName 臺北市, got %q", gotQuery["locationName"])
	}

	if len(forecast.Periods) != 2 {
		t.Fatalf("Expected 2 periods, got %d", len(forecast.Periods))
	}
	first := forecast.Periods[0]
	if first.Wx != "多雲" || first.PoP != 20 || first.MinT != 22 || first.MaxT != 26 || first.Comfort != "舒適" {
		t.Errorf("Unexpected first period %+v", first)
	}
	second := forecast.Periods[1]
	if second.PoP != 70 || second.Start != "2026-10-20 06:00:00" {
		t.Errorf("Unexpected second period %+v", second)
	}
}

func TestWeatherClient_UnknownLocation(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", forecastBody)

	_, err := NewWeatherClient(srv.URL, "k", time.Second).Forecast(context.Background(), "花蓮縣")
	if !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("Expected ErrUnknownLocation, got %v", err)
	}
}

func TestWeatherClient_NotConfigured(t *testing.T) {
	_, err := NewWeatherClient("", "k", time.Second).Forecast(context.Background(), "臺北市")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

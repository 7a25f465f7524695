package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRealtimeClient_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `[
		{"cityName":"三重區","location":"場站A","latitude":"25.0781","longitude":"121.4917"},
		{"cityName":"三重區","location":"場站B","latitude":25.079,"longitude":121.492},
		{"cityName":"板橋區","location":"場站C","latitude":null,"longitude":"abc"}
	]`)

	rows, err := NewRealtimeClient(srv.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	tests := []struct {
		idx      int
		label    string
		lat, lng Coordinate
	}{
		{0, "場站A", "25.0781", "121.4917"},
		{1, "場站B", "25.079", "121.492"},
		{2, "場站C", "", "abc"},
	}
	for _, tt := range tests {
		row := rows[tt.idx]
		if row.Location != tt.label {
			t.Errorf("Row %d: expected label %s, got %s", tt.idx, tt.label, row.Location)
		}
		if row.Latitude != tt.lat || row.Longitude != tt.lng {
			t.Errorf("Row %d: expected (%s,%s), got (%s,%s)", tt.idx, tt.lat, tt.lng, row.Latitude, row.Longitude)
		}
	}
}

func TestRealtimeClient_Errors(t *testing.T) {
	ctx := context.Background()

	if _, err := NewRealtimeClient("", time.Second).Fetch(ctx); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}

	bad := serve(t, http.StatusBadGateway, "", "upstream down")
	if _, err := NewRealtimeClient(bad.URL, time.Second).Fetch(ctx); !errors.Is(err, ErrUpstreamStatus) {
		t.Errorf("Expected ErrUpstreamStatus, got %v", err)
	}

	garbage := serve(t, http.StatusOK, "application/json", `{"not":"an array"}`)
	if _, err := NewRealtimeClient(garbage.URL, time.Second).Fetch(ctx); err == nil {
		t.Error("Expected decode error")
	}
}

func TestRealtimeClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := NewRealtimeClient(srv.URL, 5*time.Second).Fetch(ctx); err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected fetch to stop at the deadline, took %v", elapsed)
	}
}

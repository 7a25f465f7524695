package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestToiletRegistryClient_Fetch(t *testing.T) {
	var apiKey, format string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.URL.Query().Get("api_key")
		format = r.URL.Query().Get("format")
		w.Write([]byte(`{"total":"2","records":[
			{"county":"臺北市","city":"信義區","name":"市府公廁","address":"臺北市信義區市府路1號","grade":"特優級","latitude":"25.0375","longitude":"121.5637"},
			{"county":"新北市","city":"三重區","name":"公園公廁","address":"新北市三重區","grade":"優等級","latitude":25.078,"longitude":121.49}
		]}`))
	}))
	defer srv.Close()

	records, err := NewToiletRegistryClient(srv.URL, "EPA-KEY", time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if apiKey != "EPA-KEY" || format != "json" {
		t.Errorf("Expected api_key and format=json, got %q %q", apiKey, format)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Name != "市府公廁" || records[0].Latitude != "25.0375" {
		t.Errorf("Unexpected first record %+v", records[0])
	}
	if records[1].Longitude != "121.49" {
		t.Errorf("Expected numeric longitude kept as text, got %q", records[1].Longitude)
	}
}

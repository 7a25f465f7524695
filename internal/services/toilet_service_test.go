package services

import (
	"context"
	"fmt"
	"testing"

	"nearbot/internal/config"
	"nearbot/internal/domain/entities"
	"nearbot/internal/geo"
	"nearbot/internal/geocode"
	"nearbot/internal/repository"
	"nearbot/internal/repository/memory"
)

var origin = entities.NewGeoPoint(25.0, 121.5)

func seedToilets(t *testing.T) *repository.Store {
	t.Helper()
	store := repository.NewStore(memory.NewKV())
	ctx := context.Background()
	if err := store.Save(ctx, "新北市", []entities.ToiletRecord{
		toiletAt("三重公廁", 25.0030, 121.5), // ~334 m
		toiletAt("蘆洲公廁", 25.0015, 121.5), // ~167 m
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := store.Save(ctx, "臺北市", []entities.ToiletRecord{
		toiletAt("市府公廁", 25.0005, 121.5), // ~56 m
	}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return store
}

func newToiletService(t *testing.T, store repository.PartitionStore, geocoder geocode.Reverse) *ToiletService {
	t.Helper()
	cfg := config.NewDefaultConfig().Toilet
	cfg.Regions = []string{"新北市", "臺北市", "臺中市"}
	svc, err := NewToiletService(store, geocoder, cfg, nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return svc
}

func TestToiletService_TargetedSearchWidens(t *testing.T) {
	svc := newToiletService(t, seedToilets(t), nil)

	result, err := svc.Search(context.Background(), origin, "新北市三重區重新路一段")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Found() {
		t.Fatalf("Expected Found, got %s", result.Status)
	}
	if result.Partition != "新北市" || result.Threshold != 200 || result.Attempts != 2 {
		t.Errorf("Expected 新北市 at 200 after 2 attempts, got %s at %v after %d",
			result.Partition, result.Threshold, result.Attempts)
	}
	if len(result.Toilets) != 1 || result.Toilets[0].Candidate.Name != "蘆洲公廁" {
		t.Errorf("Expected only 蘆洲公廁, got %+v", result.Toilets)
	}
}

func TestToiletService_UntargetedFirstPartitionWins(t *testing.T) {
	svc := newToiletService(t, seedToilets(t), nil)

	result, err := svc.Search(context.Background(), origin, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// 臺北市 holds a closer toilet, but 新北市 comes first in region order.
	if result.Partition != "新北市" {
		t.Errorf("Expected 新北市, got %s", result.Partition)
	}
}

func TestToiletService_GeocoderNarrowsSearch(t *testing.T) {
	geocoder := &fakeGeocoder{address: "110台北市信義區市府路1號"}
	svc := newToiletService(t, seedToilets(t), geocoder)

	result, err := svc.Search(context.Background(), origin, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if geocoder.calls != 1 {
		t.Errorf("Expected 1 geocode call, got %d", geocoder.calls)
	}
	if result.Partition != "臺北市" || result.Threshold != 100 || result.Attempts != 1 {
		t.Errorf("Expected 臺北市 at 100 after 1 attempt, got %s at %v after %d",
			result.Partition, result.Threshold, result.Attempts)
	}
}

func TestToiletService_HintSkipsGeocoder(t *testing.T) {
	geocoder := &fakeGeocoder{address: "臺北市"}
	svc := newToiletService(t, seedToilets(t), geocoder)

	if _, err := svc.Search(context.Background(), origin, "新北市"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if geocoder.calls != 0 {
		t.Errorf("Expected no geocode call when a hint is given, got %d", geocoder.calls)
	}
}

func TestToiletService_GeocoderFailureSearchesAll(t *testing.T) {
	svc := newToiletService(t, seedToilets(t), &fakeGeocoder{err: errUpstream})

	result, err := svc.Search(context.Background(), origin, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Found() || result.Partition != "新北市" {
		t.Errorf("Expected fallback to region order, got %+v", result)
	}
}

func TestToiletService_Exhausted(t *testing.T) {
	tests := []struct {
		name     string
		hint     string
		attempts int
	}{
		{"targeted empty region", "臺中市西屯區", 10},
		{"untargeted far away", "", 30},
	}

	far := entities.NewGeoPoint(24.0, 120.6)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newToiletService(t, seedToilets(t), nil)

			result, err := svc.Search(context.Background(), far, tt.hint)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Status != geo.StatusExhausted {
				t.Fatalf("Expected Exhausted, got %s", result.Status)
			}
			if result.Threshold != 1000 {
				t.Errorf("Expected final threshold 1000, got %v", result.Threshold)
			}
			if result.Attempts != tt.attempts {
				t.Errorf("Expected %d attempts, got %d", tt.attempts, result.Attempts)
			}
			if result.Toilets == nil || len(result.Toilets) != 0 {
				t.Errorf("Expected empty toilets, got %v", result.Toilets)
			}
		})
	}
}

func TestToiletService_TopKCap(t *testing.T) {
	store := repository.NewStore(memory.NewKV())
	var records []entities.ToiletRecord
	for i := 6; i >= 1; i-- {
		records = append(records, toiletAt(fmt.Sprintf("t%d", i), 25.0+float64(i)*0.0001, 121.5))
	}
	if err := store.Save(context.Background(), "新北市", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	svc := newToiletService(t, store, nil)

	result, err := svc.Search(context.Background(), origin, "新北市")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Toilets) != 4 {
		t.Fatalf("Expected 4 toilets, got %d", len(result.Toilets))
	}
	for i, want := range []string{"t1", "t2", "t3", "t4"} {
		if result.Toilets[i].Candidate.Name != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, result.Toilets[i].Candidate.Name)
		}
	}
}

func TestToiletService_InvalidPoint(t *testing.T) {
	svc := newToiletService(t, seedToilets(t), nil)
	if _, err := svc.Search(context.Background(), entities.NewGeoPoint(91, 0), ""); err == nil {
		t.Error("Expected error for out-of-range latitude")
	}
}

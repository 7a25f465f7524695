package repository_test

import (
	"context"
	"errors"
	"testing"

	"nearbot/internal/domain/entities"
	"nearbot/internal/repository"
	"nearbot/internal/repository/memory"
)

func TestStore_PartitionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(memory.NewKV())

	records := []entities.ToiletRecord{
		{Name: "三重站", Address: "新北市三重區", Grade: "特優級", Point: entities.NewGeoPoint(25.0556, 121.4843)},
		{Name: "菜寮站", Address: "新北市三重區", Grade: "優等級", Point: entities.NewGeoPoint(25.0599, 121.4917)},
	}
	if err := store.Save(ctx, "新北市", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got, err := store.Lookup(ctx, "新北市")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Name != "菜寮站" || got[1].Point != records[1].Point {
		t.Errorf("Unexpected records %+v", got)
	}
}

func TestStore_LookupMissingPartition(t *testing.T) {
	store := repository.NewStore(memory.NewKV())

	got, err := store.Lookup(context.Background(), "金門縣")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", got)
	}
}

func TestStore_LookupCorruptBlob(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	kv.Set(ctx, repository.ToiletKey("臺北市"), []byte("{not json"))

	if _, err := repository.NewStore(kv).Lookup(ctx, "臺北市"); err == nil {
		t.Error("Expected decode error")
	}
}

func TestStore_Lottery(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(memory.NewKV())

	if _, err := store.GetDraw(ctx, "威力彩", "2026-10-19"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	draw := &entities.LotteryDraw{Game: "威力彩", Period: "115000084", Date: "2026-10-19", Numbers: []string{"01", "07", "13", "22", "30", "38"}, Special: "05"}
	if err := store.SaveDraw(ctx, draw.Game, draw); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := store.GetDraw(ctx, "大樂透", "2026-10-19"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected games to be keyed apart, got %v", err)
	}

	got, err := store.GetDraw(ctx, "威力彩", "2026-10-19")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Period != draw.Period || len(got.Numbers) != 6 || got.Special != "05" {
		t.Errorf("Unexpected draw %+v", got)
	}

	if err := store.SaveDraw(ctx, "", &entities.LotteryDraw{}); err == nil {
		t.Error("Expected error for draw without date")
	}
}

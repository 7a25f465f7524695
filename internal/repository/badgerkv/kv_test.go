package badgerkv

import (
	"context"
	"errors"
	"testing"

	"nearbot/internal/repository"
)

func TestKV_InMemory(t *testing.T) {
	ctx := context.Background()
	kv, err := Open("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer kv.Close()

	if _, err := kv.Get(ctx, "toilet:臺北市"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "toilet:臺北市", []byte(`[]`)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := kv.Get(ctx, "toilet:臺北市")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(got) != "[]" {
		t.Errorf("Expected [], got %s", got)
	}
}

func TestKV_PersistsOnDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := Open(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := kv.Set(ctx, "lottery:2026-10-19", []byte(`{"date":"2026-10-19"}`)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Unexpected close error: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "lottery:2026-10-19")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(got) != `{"date":"2026-10-19"}` {
		t.Errorf("Unexpected value %s", got)
	}
}

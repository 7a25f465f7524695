package services

import (
	"context"
	"errors"
	"testing"

	"nearbot/internal/clients"
)

func TestCovidService_Latest(t *testing.T) {
	day := &clients.ScreeningDay{Date: "2022/5/2", Reported: 200, Quarantine: 40, Surveillance: 12000, Total: 12240}
	svc := NewCovidService(&fakeScreening{day: day}, nil, nil)

	got, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := "🔴 通報日 2022/5/2\n法定傳染病通報: 200\n居家檢疫送驗: 40\n擴大監測送驗: 12000\n總計: 12240"
	if text := FormatScreening(got); text != expected {
		t.Errorf("Expected %q, got %q", expected, text)
	}

	failing := NewCovidService(&fakeScreening{err: errUpstream}, nil, nil)
	if _, err := failing.Latest(context.Background()); !errors.Is(err, errUpstream) {
		t.Errorf("Expected upstream error, got %v", err)
	}
}

func TestTotalEmoji(t *testing.T) {
	tests := []struct {
		total    int
		expected string
	}{
		{0, "🟢"},
		{999, "🟢"},
		{1000, "🟡"},
		{9999, "🟡"},
		{10000, "🔴"},
	}
	for _, tt := range tests {
		if got := TotalEmoji(tt.total); got != tt.expected {
			t.Errorf("Total %d: expected %s, got %s", tt.total, tt.expected, got)
		}
	}
}

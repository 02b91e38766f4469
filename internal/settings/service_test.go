package settings

import (
	"context"
	"testing"
	"time"
)

func TestGetSetRoundTrip(t *testing.T) {
	s, err := NewService(NewMemoryRepo(), time.Minute)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, KeyDefaultCountry); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, KeyDefaultCountry, "SG"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, KeyDefaultCountry)
	if err != nil || !ok || v != "SG" {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestGetCachesWithinTTL(t *testing.T) {
	repo := NewMemoryRepo()
	s, _ := NewService(repo, time.Minute)
	ctx := context.Background()

	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Mutate underneath the service; the cached value must win until TTL.
	_ = repo.Upsert(ctx, "k", "v2")

	if v, _, _ := s.Get(ctx, "k"); v != "v1" {
		t.Fatalf("expected cached v1, got %q", v)
	}

	now := time.Now()
	s.clock = func() time.Time { return now.Add(2 * time.Minute) }
	if v, _, _ := s.Get(ctx, "k"); v != "v2" {
		t.Fatalf("expected refreshed v2, got %q", v)
	}
}

func TestDefaultCountryFallsBack(t *testing.T) {
	s, _ := NewService(NewMemoryRepo(), time.Minute)
	ctx := context.Background()

	if got := s.DefaultCountry(ctx, "TH"); got != "TH" {
		t.Fatalf("expected fallback TH, got %q", got)
	}
	_ = s.Set(ctx, KeyDefaultCountry, "VN")
	if got := s.DefaultCountry(ctx, "TH"); got != "VN" {
		t.Fatalf("expected stored VN, got %q", got)
	}
}

func TestSetAllUpdatesEveryKey(t *testing.T) {
	s, _ := NewService(NewMemoryRepo(), time.Minute)
	ctx := context.Background()

	err := s.SetAll(ctx, map[string]string{
		KeyDefaultCountry:    "SG",
		KeyMaintenanceNotice: "upgrade at 02:00",
	})
	if err != nil {
		t.Fatalf("set all: %v", err)
	}
	if v, _, _ := s.Get(ctx, KeyDefaultCountry); v != "SG" {
		t.Fatalf("default country not updated: %q", v)
	}
	if v, _, _ := s.Get(ctx, KeyMaintenanceNotice); v != "upgrade at 02:00" {
		t.Fatalf("notice not updated: %q", v)
	}

	if err := s.SetAll(ctx, map[string]string{"": "x"}); err == nil {
		t.Fatalf("expected error for blank key")
	}
}

func TestRejectsEmptyKey(t *testing.T) {
	s, _ := NewService(NewMemoryRepo(), time.Minute)
	if err := s.Set(context.Background(), "  ", "v"); err == nil {
		t.Fatalf("expected error for blank key")
	}
	if _, _, err := s.Get(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

package settings

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Repository is the persistence contract for console settings.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Upsert(ctx context.Context, key, value string) error

	// UpsertAll commits every pair or none; the settings form saves
	// several keys in one step.
	UpsertAll(ctx context.Context, values map[string]string) error
}

// Service is an explicit read/update surface over durable settings storage.
// It replaces ad-hoc process-wide mutable state: callers receive the service
// by injection, and every update lands in the repository before it becomes
// visible to readers.
//
// Reads go through a small TTL cache so hot settings do not hit the
// database on every request.
type Service struct {
	repo     Repository
	cacheTTL time.Duration
	clock    func() time.Time

	mu    sync.RWMutex
	cache map[string]cached
}

type cached struct {
	value   string
	ok      bool
	expires time.Time
}

// Well-known setting keys.
const (
	KeyDefaultCountry    = "default_country"
	KeyMaintenanceNotice = "maintenance_notice"
)

var ErrInvalidKey = errors.New("settings: invalid key")

func NewService(repo Repository, cacheTTL time.Duration) (*Service, error) {
	if repo == nil {
		return nil, errors.New("settings repository is required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{
		repo:     repo,
		cacheTTL: cacheTTL,
		clock:    time.Now,
		cache:    make(map[string]cached),
	}, nil
}

func (s *Service) Get(ctx context.Context, key string) (string, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, ErrInvalidKey
	}

	now := s.clock()
	s.mu.RLock()
	if c, hit := s.cache[key]; hit && now.Before(c.expires) {
		s.mu.RUnlock()
		return c.value, c.ok, nil
	}
	s.mu.RUnlock()

	value, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	s.mu.Lock()
	s.cache[key] = cached{value: value, ok: ok, expires: now.Add(s.cacheTTL)}
	s.mu.Unlock()
	return value, ok, nil
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.repo.Upsert(ctx, key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache[key] = cached{value: value, ok: true, expires: s.clock().Add(s.cacheTTL)}
	s.mu.Unlock()
	return nil
}

// SetAll atomically updates several settings.
func (s *Service) SetAll(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for k, v := range values {
		k = strings.TrimSpace(k)
		if k == "" {
			return ErrInvalidKey
		}
		clean[k] = v
	}
	if len(clean) == 0 {
		return nil
	}
	if err := s.repo.UpsertAll(ctx, clean); err != nil {
		return err
	}
	expires := s.clock().Add(s.cacheTTL)
	s.mu.Lock()
	for k, v := range clean {
		s.cache[k] = cached{value: v, ok: true, expires: expires}
	}
	s.mu.Unlock()
	return nil
}

// DefaultCountry returns the stored default country, or fallback when unset
// or unreadable. Lookup failures degrade to the fallback; country selection
// must not take the console down.
func (s *Service) DefaultCountry(ctx context.Context, fallback string) string {
	v, ok, err := s.Get(ctx, KeyDefaultCountry)
	if err != nil || !ok || v == "" {
		return fallback
	}
	return v
}

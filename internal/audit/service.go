package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication events.
//
// Callers treat audit logging as best-effort: log the returned error,
// never fail the auth flow on it.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.OperatorID == "" && e.Username == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a successful sign-in.
func (s *Service) LogLogin(ctx context.Context, operatorID, username, role, ip string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeLogin,
		OperatorID: operatorID,
		Username:   username,
		Role:       role,
		IPAddress:  ip,
		Message:    "sign-in",
	})
}

// LogLoginDenied records a rejected credential check or a throttled attempt.
func (s *Service) LogLoginDenied(ctx context.Context, username, ip, reason string) error {
	return s.Append(ctx, Event{
		Type:      EventTypeLoginDenied,
		Username:  username,
		IPAddress: ip,
		Message:   reason,
	})
}

// LogLogout records an explicit sign-out.
func (s *Service) LogLogout(ctx context.Context, operatorID, username, ip string) error {
	return s.Append(ctx, Event{
		Type:       EventTypeLogout,
		OperatorID: operatorID,
		Username:   username,
		IPAddress:  ip,
		Message:    "sign-out",
	})
}

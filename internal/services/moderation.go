package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"communitypulse/internal/domain"
)

type moderationService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	notifier       domain.NotificationService
	contextTimeout time.Duration
}

// NewModerationService creates the admin-only ModerationService.
func NewModerationService(eventRepo domain.EventRepository, userRepo domain.UserRepository, notifier domain.NotificationService, timeout time.Duration) domain.ModerationService {
	return &moderationService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

func (s *moderationService) admin(ctx context.Context, callerID string) (*domain.User, error) {
	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	if err := ensureAdmin(caller); err != nil {
		return nil, err
	}
	return caller, nil
}

func (s *moderationService) ListPendingEvents(ctx context.Context, callerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *moderationService) decideEvent(ctx context.Context, eventID, callerID string, to domain.EventStatus) (*domain.Event, error) {
	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	// Approve/reject only applies to the moderation queue; an event in any
	// other status is no longer queued, so the entry reads as not found.
	event, err := s.eventRepo.TransitionStatus(ctx, eventID, domain.StatusPending, to)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("transition event status: %w", err)
	}
	return event, nil
}

func (s *moderationService) ApproveEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.decideEvent(ctx, eventID, callerID, domain.StatusApproved)
}

func (s *moderationService) RejectEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.decideEvent(ctx, eventID, callerID, domain.StatusRejected)
}

func (s *moderationService) CancelEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	if eventID == "" {
		return nil, fmt.Errorf("missing event id: %w", domain.ErrInvalidInput)
	}
	// Cancel-from-any-status runs as one conditional update; the repository
	// reports missing vs already-cancelled itself.
	cancelled, err := s.eventRepo.Cancel(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		return nil, fmt.Errorf("cancel event: %w", err)
	}

	// The cancellation is committed; notification failures stay local.
	s.notifier.NotifyEventCancelled(ctx, cancelled)

	return cancelled, nil
}

func (s *moderationService) ListUsers(ctx context.Context, callerID string) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *moderationService) ToggleUserBan(ctx context.Context, userID, callerID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	// Admin accounts cannot be banned through this path.
	if target.IsAdmin {
		return nil, fmt.Errorf("cannot ban an admin user: %w", domain.ErrForbidden)
	}
	target.IsBanned = !target.IsBanned
	target.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return target, nil
}

func (s *moderationService) ToggleVerifiedOrganizer(ctx context.Context, userID, callerID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.admin(ctx, callerID); err != nil {
		return nil, err
	}
	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	target.IsVerifiedOrganizer = !target.IsVerifiedOrganizer
	target.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return target, nil
}

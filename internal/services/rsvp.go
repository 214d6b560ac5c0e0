package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"communitypulse/internal/domain"
)

type rsvpService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewRSVPService creates an RSVPService with the given repositories.
func NewRSVPService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, userRepo domain.UserRepository, timeout time.Duration) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *rsvpService) CreateRSVP(ctx context.Context, eventID, callerID string, in domain.RSVPInput) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	// Only approved events take RSVPs; anything else reads as not found.
	if event.Status != domain.StatusApproved {
		return nil, domain.ErrNotFound
	}

	numPeople := in.NumPeople
	if numPeople == 0 {
		numPeople = 1
	}
	if numPeople < 1 {
		return nil, fmt.Errorf("num_people must be at least 1: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	var rsvp *domain.RSVP

	if callerID != "" {
		caller, err := loadCaller(ctx, s.userRepo, callerID)
		if err != nil {
			return nil, err
		}
		if err := ensureNotBanned(caller); err != nil {
			return nil, err
		}
		if _, err := s.rsvpRepo.GetByEventAndUser(ctx, event.ID, caller.ID); err == nil {
			return nil, domain.ErrAlreadyRSVPd
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get RSVP: %w", err)
		}
		rsvp = domain.NewUserRSVP(event.ID, caller.ID, numPeople, now)
	} else {
		guestName := strings.TrimSpace(in.GuestName)
		guestEmail := strings.TrimSpace(strings.ToLower(in.GuestEmail))
		// Missing guest identity is an "identify yourself" failure, not a
		// validation one.
		if guestName == "" || guestEmail == "" {
			return nil, fmt.Errorf("name and email are required for guest RSVPs: %w", domain.ErrUnauthorized)
		}
		if _, err := s.rsvpRepo.GetByEventAndGuestEmail(ctx, event.ID, guestEmail); err == nil {
			return nil, domain.ErrAlreadyRSVPd
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get guest RSVP: %w", err)
		}
		var phone *string
		if p := strings.TrimSpace(in.GuestPhone); p != "" {
			phone = &p
		}
		rsvp = domain.NewGuestRSVP(event.ID, guestName, guestEmail, phone, numPeople, now)
	}

	if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
		// The unique index closes the race between the check above and this
		// insert for concurrent submissions.
		if errors.Is(err, domain.ErrAlreadyRSVPd) {
			return nil, domain.ErrAlreadyRSVPd
		}
		return nil, fmt.Errorf("create RSVP: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) DeleteRSVP(ctx context.Context, eventID, callerID, guestEmail string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	if callerID != "" {
		caller, err := loadCaller(ctx, s.userRepo, callerID)
		if err != nil {
			return err
		}
		if err := s.rsvpRepo.DeleteByEventAndUser(ctx, eventID, caller.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete RSVP: %w", err)
		}
		return nil
	}

	guestEmail = strings.TrimSpace(strings.ToLower(guestEmail))
	if guestEmail == "" {
		return fmt.Errorf("guest email is required to cancel a guest RSVP: %w", domain.ErrUnauthorized)
	}
	// Exact email match is the only proof of identity for guests.
	if err := s.rsvpRepo.DeleteByEventAndGuestEmail(ctx, eventID, guestEmail); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete guest RSVP: %w", err)
	}
	return nil
}

func (s *rsvpService) ListEventRSVPs(ctx context.Context, eventID, callerID string) ([]*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	if err := ensureOrganizerOrAdmin(caller, event); err != nil {
		return nil, err
	}
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list RSVPs: %w", err)
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}

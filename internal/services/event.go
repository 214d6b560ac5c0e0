package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"communitypulse/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	notifier       domain.NotificationService
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories and
// notification dispatcher.
func NewEventService(eventRepo domain.EventRepository, userRepo domain.UserRepository, notifier domain.NotificationService, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		contextTimeout: timeout,
	}
}

// validateEventFields checks the creation/edit constraints shared by both
// paths: required fields, a known category, and end >= start.
func validateEventFields(title, category, location string, start time.Time, end *time.Time) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("location_address is required: %w", domain.ErrInvalidInput)
	}
	if start.IsZero() {
		return fmt.Errorf("start_datetime is required: %w", domain.ErrInvalidInput)
	}
	if !domain.IsValidCategory(category) {
		return fmt.Errorf("unknown category %q: %w", category, domain.ErrInvalidInput)
	}
	if end != nil && end.Before(start) {
		return fmt.Errorf("end datetime cannot be before start datetime: %w", domain.ErrInvalidInput)
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, callerID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	if err := ensureNotBanned(caller); err != nil {
		return nil, err
	}
	if err := validateEventFields(event.Title, event.Category, event.LocationAddress, event.StartDatetime, event.EndDatetime); err != nil {
		return nil, err
	}

	now := time.Now()
	event.OrganizerID = caller.ID
	event.Status = domain.StatusPending
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Status == domain.StatusApproved {
		return event, nil
	}
	// A PENDING event is visible to its organizer or an admin; every other
	// combination reads as not found so existence is never leaked.
	if event.Status == domain.StatusPending && callerID != "" {
		caller, err := s.userRepo.GetByID(ctx, callerID)
		if err == nil && (caller.IsAdmin || caller.ID == event.OrganizerID) {
			return event, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, in domain.UpdateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventID == "" {
		return nil, fmt.Errorf("missing event id: %w", domain.ErrInvalidInput)
	}
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
	if err := ensureNotBanned(caller); err != nil {
		return nil, err
	}

	origLocation := event.LocationAddress
	origStart := event.StartDatetime
	wasApproved := event.Status == domain.StatusApproved

	if in.Title != nil {
		event.Title = *in.Title
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Category != nil {
		event.Category = *in.Category
	}
	if in.StartDatetime != nil {
		event.StartDatetime = *in.StartDatetime
	}
	if in.EndDatetime != nil {
		event.EndDatetime = in.EndDatetime
	}
	if in.LocationAddress != nil {
		event.LocationAddress = *in.LocationAddress
	}
	if err := validateEventFields(event.Title, event.Category, event.LocationAddress, event.StartDatetime, event.EndDatetime); err != nil {
		return nil, err
	}

	locationChanged := event.LocationAddress != origLocation
	startChanged := !event.StartDatetime.Equal(origStart)

	// A non-admin changing location or start time sends the event back
	// through moderation.
	if !caller.IsAdmin && (locationChanged || startChanged) {
		event.Status = domain.StatusPending
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	// Attendees who signed up while the event was APPROVED hear about a
	// location or time change even when the edit sends it back through
	// moderation.
	if wasApproved && (locationChanged || startChanged) {
		var clauses []string
		if locationChanged {
			clauses = append(clauses, fmt.Sprintf("Location changed to: %s", event.LocationAddress))
		}
		if startChanged {
			clauses = append(clauses, fmt.Sprintf("Start time changed to: %s", event.StartDatetime.Format("2006-01-02 03:04 PM")))
		}
		s.notifier.NotifyEventUpdated(ctx, event, strings.Join(clauses, ". "))
	}

	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return err
	}
	if err := ensureOrganizerOrAdmin(caller, event); err != nil {
		return err
	}
	if err := ensureNotBanned(caller); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ListMyOrganizedEvents(ctx context.Context, callerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByOrganizerID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list organized events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) ListMyRSVPdEvents(ctx context.Context, callerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	caller, err := loadCaller(ctx, s.userRepo, callerID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListRSVPdByUserID(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list RSVP'd events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

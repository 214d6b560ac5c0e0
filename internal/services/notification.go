package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"communitypulse/internal/domain"
)

const defaultSendTimeout = 10 * time.Second

type notificationService struct {
	eventRepo   domain.EventRepository
	rsvpRepo    domain.RSVPRepository
	userRepo    domain.UserRepository
	mailer      domain.Mailer
	renderer    domain.EmailTemplateRenderer
	logger      *slog.Logger
	sendTimeout time.Duration
}

// NewNotificationService creates the NotificationService. sendTimeout bounds
// each individual mail send; zero falls back to a default.
func NewNotificationService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, userRepo domain.UserRepository, mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger, sendTimeout time.Duration) domain.NotificationService {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &notificationService{
		eventRepo:   eventRepo,
		rsvpRepo:    rsvpRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		renderer:    renderer,
		logger:      logger,
		sendTimeout: sendTimeout,
	}
}

// resolveRecipients maps the event's RSVPs to notification targets:
// registered users whose preference includes email, and guests by their
// stored email. Duplicate emails within the event are dropped.
func (s *notificationService) resolveRecipients(ctx context.Context, eventID string) ([]domain.Recipient, error) {
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list RSVPs: %w", err)
	}
	seen := make(map[string]struct{})
	var out []domain.Recipient
	for _, rsvp := range rsvps {
		var rec domain.Recipient
		var ok bool
		if rsvp.UserID != nil {
			user, err := s.userRepo.GetByID(ctx, *rsvp.UserID)
			if err != nil {
				s.logger.Warn("skipping RSVP with unresolvable user", "event_id", eventID, "user_id", *rsvp.UserID, "err", err)
				continue
			}
			rec, ok = domain.RegisteredRecipient(user)
		} else {
			rec, ok = domain.GuestRecipient(rsvp)
		}
		if !ok {
			continue
		}
		if _, dup := seen[rec.Email]; dup {
			continue
		}
		seen[rec.Email] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}

// send delivers one rendered message with a per-send timeout. A timeout
// counts as a failure and is not retried within the run.
func (s *notificationService) send(ctx context.Context, rec domain.Recipient, subject, html, text string) bool {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.mailer.Send(sendCtx, rec.Email, rec.Name, subject, html, text); err != nil {
		s.logger.Error("notification send failed", "to", rec.Email, "subject", subject, "err", err)
		return false
	}
	return true
}

func (s *notificationService) SendWelcome(ctx context.Context, user *domain.User) error {
	data := &domain.WelcomeEmailData{Email: user.Email, Username: user.Username}
	subject, html, text, err := s.renderer.Render("welcome", data)
	if err != nil {
		s.logger.Error("render welcome template failed", "err", err)
		return fmt.Errorf("render welcome template: %w", err)
	}
	rec := domain.Recipient{Email: user.Email, Name: user.Username, Registered: true}
	if !s.send(ctx, rec, subject, html, text) {
		return fmt.Errorf("send welcome email to %s failed", user.Email)
	}
	return nil
}

// notifyAttendees renders the event_update template per recipient and sends
// one message each. Failures never abort the loop.
func (s *notificationService) notifyAttendees(ctx context.Context, event *domain.Event, changeSummary string) (sent, failed int) {
	recipients, err := s.resolveRecipients(ctx, event.ID)
	if err != nil {
		s.logger.Error("resolve recipients failed", "event_id", event.ID, "err", err)
		return 0, 0
	}
	for _, rec := range recipients {
		data := &domain.EventUpdateEmailData{
			RecipientName: rec.Name,
			EventTitle:    event.Title,
			ChangeSummary: changeSummary,
			StartDatetime: event.StartDatetime,
			Location:      event.LocationAddress,
			Status:        event.Status,
		}
		subject, html, text, err := s.renderer.Render("event_update", data)
		if err != nil {
			s.logger.Error("render event_update template failed", "event_id", event.ID, "err", err)
			failed++
			continue
		}
		if s.send(ctx, rec, subject, html, text) {
			sent++
		} else {
			failed++
		}
	}
	s.logger.Info("event notification pass complete", "event_id", event.ID, "change", changeSummary, "sent", sent, "failed", failed)
	return sent, failed
}

func (s *notificationService) NotifyEventCancelled(ctx context.Context, event *domain.Event) (sent, failed int) {
	return s.notifyAttendees(ctx, event, "This event has been cancelled.")
}

func (s *notificationService) NotifyEventUpdated(ctx context.Context, event *domain.Event, changeSummary string) (sent, failed int) {
	return s.notifyAttendees(ctx, event, changeSummary)
}

func (s *notificationService) RunDailyReminderPass(ctx context.Context, now time.Time) (sent, failed int, err error) {
	// Tomorrow's UTC day, [00:00, 24:00).
	utc := now.UTC()
	from := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	events, err := s.eventRepo.ListApprovedStartingBetween(ctx, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("list events starting tomorrow: %w", err)
	}

	// Deduplicate within the whole run by (email, event).
	seen := make(map[string]struct{})
	for _, event := range events {
		recipients, err := s.resolveRecipients(ctx, event.ID)
		if err != nil {
			s.logger.Error("resolve recipients failed", "event_id", event.ID, "err", err)
			continue
		}
		for _, rec := range recipients {
			key := rec.Email + "|" + event.ID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			data := &domain.ReminderEmailData{
				RecipientName: rec.Name,
				EventTitle:    event.Title,
				StartDatetime: event.StartDatetime,
				Location:      event.LocationAddress,
			}
			subject, html, text, err := s.renderer.Render("reminder", data)
			if err != nil {
				s.logger.Error("render reminder template failed", "event_id", event.ID, "err", err)
				failed++
				continue
			}
			if s.send(ctx, rec, subject, html, text) {
				sent++
			} else {
				failed++
			}
		}
	}
	s.logger.Info("daily reminder pass complete", "events", len(events), "sent", sent, "failed", failed)
	return sent, failed, nil
}

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communitypulse/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotificationService_NotifyEventCancelled(t *testing.T) {
	users := newFakeUserRepo()
	seedUsers(users)
	events := newFakeEventRepo()
	event := approvedEvent("event-1")
	events.add(event)

	rsvps := newFakeRSVPRepo()
	rsvps.add(domain.NewUserRSVP("event-1", "stranger-1", 2, time.Now()))
	rsvps.add(domain.NewGuestRSVP("event-1", "Gus", "gus@example.com", nil, 1, time.Now()))
	rsvps.add(domain.NewGuestRSVP("event-1", "Gina", "gina@example.com", nil, 3, time.Now()))

	mailer := newFakeMailer()
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, failed := svc.NotifyEventCancelled(context.Background(), event)

	assert.Equal(t, 3, sent)
	assert.Equal(t, 0, failed)
	require.Len(t, mailer.sent, 3)
	for _, m := range mailer.sent {
		assert.Equal(t, "subject: event_update", m.subject)
	}
}

func TestNotificationService_SkipsOptedOutUsers(t *testing.T) {
	users := newFakeUserRepo()
	users.add(&domain.User{ID: "user-email", Username: "emily", Email: "emily@example.com", NotificationPreference: "email"})
	users.add(&domain.User{ID: "user-sms", Username: "sami", Email: "sami@example.com", NotificationPreference: "sms"})
	users.add(&domain.User{ID: "user-none", Username: "nora", Email: "nora@example.com", NotificationPreference: "none"})
	users.add(&domain.User{ID: "user-both", Username: "bo", Email: "bo@example.com", NotificationPreference: "email,sms"})

	events := newFakeEventRepo()
	event := approvedEvent("event-1")
	events.add(event)

	rsvps := newFakeRSVPRepo()
	for _, id := range []string{"user-email", "user-sms", "user-none", "user-both"} {
		rsvps.add(domain.NewUserRSVP("event-1", id, 1, time.Now()))
	}

	mailer := newFakeMailer()
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, failed := svc.NotifyEventUpdated(context.Background(), event, "Location changed to: Harbor Park")

	assert.Equal(t, 2, sent)
	assert.Equal(t, 0, failed)
	got := make(map[string]bool)
	for _, m := range mailer.sent {
		got[m.to] = true
	}
	assert.True(t, got["emily@example.com"])
	assert.True(t, got["bo@example.com"])
	assert.False(t, got["sami@example.com"])
	assert.False(t, got["nora@example.com"])
}

func TestNotificationService_DeduplicatesByEmail(t *testing.T) {
	users := newFakeUserRepo()
	users.add(&domain.User{ID: "user-1", Username: "gus", Email: "gus@example.com", NotificationPreference: "email"})

	events := newFakeEventRepo()
	event := approvedEvent("event-1")
	events.add(event)

	// Same person holds a registered and a guest RSVP with the same address.
	rsvps := newFakeRSVPRepo()
	rsvps.add(domain.NewUserRSVP("event-1", "user-1", 1, time.Now()))
	rsvps.add(domain.NewGuestRSVP("event-1", "Gus", "gus@example.com", nil, 1, time.Now()))

	mailer := newFakeMailer()
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, _ := svc.NotifyEventCancelled(context.Background(), event)

	assert.Equal(t, 1, sent)
	assert.Len(t, mailer.sent, 1)
}

func TestNotificationService_CountsFailures(t *testing.T) {
	users := newFakeUserRepo()
	seedUsers(users)
	events := newFakeEventRepo()
	event := approvedEvent("event-1")
	events.add(event)

	rsvps := newFakeRSVPRepo()
	rsvps.add(domain.NewGuestRSVP("event-1", "Gus", "gus@example.com", nil, 1, time.Now()))
	rsvps.add(domain.NewGuestRSVP("event-1", "Gina", "gina@example.com", nil, 1, time.Now()))

	mailer := newFakeMailer()
	mailer.failFor["gina@example.com"] = errors.New("smtp refused")
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, failed := svc.NotifyEventCancelled(context.Background(), event)

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, failed)
}

func TestNotificationService_GuestNameDefaults(t *testing.T) {
	users := newFakeUserRepo()
	events := newFakeEventRepo()
	event := approvedEvent("event-1")
	events.add(event)

	rsvps := newFakeRSVPRepo()
	empty := ""
	rsvps.add(&domain.RSVP{EventID: "event-1", GuestName: &empty, GuestEmail: strptr("gus@example.com"), NumPeople: 1})

	mailer := newFakeMailer()
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, _ := svc.NotifyEventCancelled(context.Background(), event)

	require.Equal(t, 1, sent)
	assert.Equal(t, "Guest", mailer.sent[0].toName)
}

func strptr(s string) *string { return &s }

func TestNotificationService_SendWelcome(t *testing.T) {
	mailer := newFakeMailer()
	svc := NewNotificationService(newFakeEventRepo(), newFakeRSVPRepo(), newFakeUserRepo(), mailer, &fakeRenderer{}, discardLogger(), 0)

	user := &domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	err := svc.SendWelcome(context.Background(), user)

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Equal(t, "subject: welcome", mailer.sent[0].subject)
}

func TestNotificationService_SendWelcome_RenderError(t *testing.T) {
	mailer := newFakeMailer()
	svc := NewNotificationService(newFakeEventRepo(), newFakeRSVPRepo(), newFakeUserRepo(), mailer, &fakeRenderer{err: errors.New("missing template")}, discardLogger(), 0)

	err := svc.SendWelcome(context.Background(), &domain.User{Email: "alice@example.com"})
	require.Error(t, err)
	assert.Empty(t, mailer.sent)
}

func TestNotificationService_RunDailyReminderPass(t *testing.T) {
	now := time.Date(2026, 9, 11, 15, 30, 0, 0, time.UTC)

	users := newFakeUserRepo()
	seedUsers(users)
	events := newFakeEventRepo()

	tomorrow := approvedEvent("event-tomorrow")
	tomorrow.StartDatetime = time.Date(2026, 9, 12, 9, 0, 0, 0, time.UTC)
	events.add(tomorrow)

	tomorrowLate := approvedEvent("event-tomorrow-late")
	tomorrowLate.StartDatetime = time.Date(2026, 9, 12, 23, 59, 0, 0, time.UTC)
	events.add(tomorrowLate)

	today := approvedEvent("event-today")
	today.StartDatetime = time.Date(2026, 9, 11, 20, 0, 0, 0, time.UTC)
	events.add(today)

	dayAfter := approvedEvent("event-day-after")
	dayAfter.StartDatetime = time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	events.add(dayAfter)

	pendingTomorrow := approvedEvent("event-pending-tomorrow")
	pendingTomorrow.StartDatetime = tomorrow.StartDatetime
	pendingTomorrow.Status = domain.StatusPending
	events.add(pendingTomorrow)

	rsvps := newFakeRSVPRepo()
	for _, id := range []string{"event-tomorrow", "event-tomorrow-late", "event-today", "event-day-after", "event-pending-tomorrow"} {
		rsvps.add(domain.NewGuestRSVP(id, "Gus", "gus@example.com", nil, 1, time.Now()))
	}
	rsvps.add(domain.NewGuestRSVP("event-tomorrow", "Gina", "gina@example.com", nil, 1, time.Now()))

	mailer := newFakeMailer()
	svc := NewNotificationService(events, rsvps, users, mailer, &fakeRenderer{}, discardLogger(), 0)

	sent, failed, err := svc.RunDailyReminderPass(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 0, failed)
	// Tomorrow's two approved events: gus gets one per event, gina one.
	assert.Equal(t, 3, sent)
	for _, m := range mailer.sent {
		assert.Equal(t, "subject: reminder", m.subject)
	}
}

func TestNotificationService_RunDailyReminderPass_ListError(t *testing.T) {
	events := newFakeEventRepo()
	events.listErr = errors.New("db down")
	svc := NewNotificationService(events, newFakeRSVPRepo(), newFakeUserRepo(), newFakeMailer(), &fakeRenderer{}, discardLogger(), 0)

	_, _, err := svc.RunDailyReminderPass(context.Background(), time.Now())
	require.Error(t, err)
}

package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
// A nil error means the transport accepted the message.
type Mailer interface {
	Send(ctx context.Context, to, toName, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// Recipient is a resolved notification target: either a registered user who
// accepts email, or a guest known only by the email stored on the RSVP.
type Recipient struct {
	Email      string
	Name       string
	Registered bool
}

// RegisteredRecipient builds a Recipient from a user. ok is false when the
// user's notification preference excludes email.
func RegisteredRecipient(u *User) (Recipient, bool) {
	if u == nil || u.Email == "" || !u.NotificationPreference.WantsEmail() {
		return Recipient{}, false
	}
	return Recipient{Email: u.Email, Name: u.Username, Registered: true}, true
}

// GuestRecipient builds a Recipient from the guest fields of an RSVP. ok is
// false when no guest email is stored.
func GuestRecipient(r *RSVP) (Recipient, bool) {
	if r == nil || r.GuestEmail == nil || *r.GuestEmail == "" {
		return Recipient{}, false
	}
	name := "Guest"
	if r.GuestName != nil && *r.GuestName != "" {
		name = *r.GuestName
	}
	return Recipient{Email: *r.GuestEmail, Name: name}, true
}

// WelcomeEmailData holds data for the welcome email.
type WelcomeEmailData struct {
	Email    string
	Username string
}

// EventUpdateEmailData holds data for the change/cancellation email.
type EventUpdateEmailData struct {
	RecipientName string
	EventTitle    string
	ChangeSummary string
	StartDatetime time.Time
	Location      string
	Status        EventStatus
}

// ReminderEmailData holds data for the day-before reminder email.
type ReminderEmailData struct {
	RecipientName string
	EventTitle    string
	StartDatetime time.Time
	Location      string
}

// NotificationService decides when and to whom event notifications are sent.
// Sends are best effort: failures are counted, logged, and never affect the
// state change that triggered them.
type NotificationService interface {
	// SendWelcome sends the post-registration welcome email.
	SendWelcome(ctx context.Context, user *User) error
	// NotifyEventCancelled notifies every RSVP holder of the event.
	NotifyEventCancelled(ctx context.Context, event *Event) (sent, failed int)
	// NotifyEventUpdated notifies every RSVP holder with the given change
	// summary (one clause per changed field, already joined).
	NotifyEventUpdated(ctx context.Context, event *Event, changeSummary string) (sent, failed int)
	// RunDailyReminderPass sends one reminder per attendee of every APPROVED
	// event starting tomorrow (UTC), deduplicated by (email, event).
	RunDailyReminderPass(ctx context.Context, now time.Time) (sent, failed int, err error)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRSVPd is returned when a user or guest already holds an RSVP for
// the event.
var ErrAlreadyRSVPd = errors.New("already RSVP'd to this event")

// RSVP represents an attendance record for an event. Either UserID is set
// (registered attendee) or GuestName/GuestEmail are set (guest attendee).
// swagger:model RSVP
type RSVP struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UserID     *string   `json:"user_id,omitempty"`
	GuestName  *string   `json:"guest_name,omitempty"`
	GuestEmail *string   `json:"guest_email,omitempty"`
	GuestPhone *string   `json:"guest_phone,omitempty"`
	NumPeople  int       `json:"num_people"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserRSVP returns an RSVP for a registered user.
func NewUserRSVP(eventID, userID string, numPeople int, createdAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		UserID:    &userID,
		NumPeople: numPeople,
		CreatedAt: createdAt,
	}
}

// NewGuestRSVP returns an RSVP for a guest identified by name and email.
func NewGuestRSVP(eventID, name, email string, phone *string, numPeople int, createdAt time.Time) *RSVP {
	return &RSVP{
		EventID:    eventID,
		GuestName:  &name,
		GuestEmail: &email,
		GuestPhone: phone,
		NumPeople:  numPeople,
		CreatedAt:  createdAt,
	}
}

// RSVPInput holds the request fields for creating an RSVP. Guest fields are
// ignored for authenticated callers.
type RSVPInput struct {
	GuestName  string
	GuestEmail string
	GuestPhone string
	NumPeople  int
}

// RSVPRepository defines the interface for RSVP storage. Create must return
// ErrAlreadyRSVPd when the database uniqueness constraint on
// (event, user) or (event, guest email) is violated.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *RSVP) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	GetByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) (*RSVP, error)
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
	DeleteByEventAndUser(ctx context.Context, eventID, userID string) error
	DeleteByEventAndGuestEmail(ctx context.Context, eventID, guestEmail string) error
}

// RSVPService defines the attendance operations.
type RSVPService interface {
	// CreateRSVP records attendance for the caller, or for a guest when
	// callerID is empty. The event must be APPROVED.
	CreateRSVP(ctx context.Context, eventID, callerID string, in RSVPInput) (*RSVP, error)
	// DeleteRSVP removes the caller's RSVP, or the guest RSVP matching
	// guestEmail when callerID is empty.
	DeleteRSVP(ctx context.Context, eventID, callerID, guestEmail string) error
	// ListEventRSVPs returns all RSVPs for the event. Organizer or admin only.
	ListEventRSVPs(ctx context.Context, eventID, callerID string) ([]*RSVP, error)
}

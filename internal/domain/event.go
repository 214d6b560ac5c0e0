package domain

import (
	"context"
	"time"
)

// EventStatus is the moderation state of an event.
type EventStatus string

// Event lifecycle states. Events are created PENDING and move one-way to
// APPROVED or REJECTED; CANCELLED is reachable from any non-CANCELLED state.
const (
	StatusPending   EventStatus = "PENDING"
	StatusApproved  EventStatus = "APPROVED"
	StatusRejected  EventStatus = "REJECTED"
	StatusCancelled EventStatus = "CANCELLED"
)

// Categories is the closed set of event categories.
var Categories = []string{
	"Garage Sales",
	"Sports Matches",
	"Community Classes",
	"Volunteer Opportunities",
	"Exhibitions",
	"Small Festivals",
	"Celebrations",
}

// IsValidCategory reports whether c is one of the allowed categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Event represents a community event.
// swagger:model Event
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Category        string      `json:"category"`
	StartDatetime   time.Time   `json:"start_datetime"`
	EndDatetime     *time.Time  `json:"end_datetime,omitempty"`
	LocationAddress string      `json:"location_address"`
	Status          EventStatus `json:"status"`
	OrganizerID     string      `json:"organizer_id"`
	AttendeesCount  int         `json:"attendees_count"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewEvent returns a new PENDING Event. ID is set by the repository on create.
func NewEvent(title, description, category string, start time.Time, end *time.Time, location, organizerID string, createdAt time.Time) *Event {
	return &Event{
		Title:           title,
		Description:     description,
		Category:        category,
		StartDatetime:   start,
		EndDatetime:     end,
		LocationAddress: location,
		Status:          StatusPending,
		OrganizerID:     organizerID,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// EventFilter holds the optional filters for the public event listing.
type EventFilter struct {
	Category string
	Location string
	DateFrom *time.Time
	DateTo   *time.Time
}

// UpdateEventInput holds the fields an edit may change. Nil pointers leave
// the existing value untouched.
type UpdateEventInput struct {
	Title           *string
	Description     *string
	Category        *string
	StartDatetime   *time.Time
	EndDatetime     *time.Time
	LocationAddress *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns APPROVED events matching the filter, ordered by
	// start_datetime ascending, plus the total match count for pagination.
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListPending(ctx context.Context) ([]*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	ListRSVPdByUserID(ctx context.Context, userID string) ([]*Event, error)
	ListApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	// TransitionStatus atomically moves the event from one status to another.
	// Returns ErrNotFound when the event does not exist or is no longer in
	// the expected status.
	TransitionStatus(ctx context.Context, id string, from, to EventStatus) (*Event, error)
	// Cancel atomically moves the event to CANCELLED from any other status.
	// Returns ErrNotFound for a missing event and ErrInvalidInput for one
	// that is already CANCELLED.
	Cancel(ctx context.Context, id string) (*Event, error)
	// Delete removes the event and all of its RSVPs in one transaction.
	Delete(ctx context.Context, id string) error
}

// EventService defines the event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, callerID string, event *Event) (*Event, error)
	// GetEventByID returns an APPROVED event to anyone, and a PENDING event
	// to its organizer or an admin. Any other combination is ErrNotFound.
	GetEventByID(ctx context.Context, eventID, callerID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, in UpdateEventInput) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	ListMyOrganizedEvents(ctx context.Context, callerID string) ([]*Event, error)
	ListMyRSVPdEvents(ctx context.Context, callerID string) ([]*Event, error)
}

// ModerationService defines the admin-only moderation and user management
// operations.
type ModerationService interface {
	ListPendingEvents(ctx context.Context, callerID string) ([]*Event, error)
	ApproveEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	RejectEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	CancelEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListUsers(ctx context.Context, callerID string) ([]*User, error)
	ToggleUserBan(ctx context.Context, userID, callerID string) (*User, error)
	ToggleVerifiedOrganizer(ctx context.Context, userID, callerID string) (*User, error)
}

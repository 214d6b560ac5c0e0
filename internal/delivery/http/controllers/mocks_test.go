package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"communitypulse/internal/delivery/http/helpers"
	"communitypulse/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decodeEnvelope reads the recorded response body as the standard envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

// decodeData re-marshals envelope.Data into dest so tests can assert on
// typed payloads.
func decodeData(t *testing.T, envelope helpers.APIResponse, dest any) {
	t.Helper()
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	user  *domain.User
	err   error

	gotUsername string
	gotEmail    string
	gotLogin    string
	gotUserID   string
}

func (f *fakeAuthService) Register(_ context.Context, username, email, _, _ string) (string, *domain.User, error) {
	f.gotUsername = username
	f.gotEmail = email
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) Login(_ context.Context, emailOrUsername, _ string) (string, *domain.User, error) {
	f.gotLogin = emailOrUsername
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) GetByID(_ context.Context, userID string) (*domain.User, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event  *domain.Event
	events []*domain.Event
	total  int
	err    error

	gotFilter  domain.EventFilter
	gotParams  domain.PaginationParams
	gotEventID string
	gotCaller  string
	gotInput   domain.UpdateEventInput
	created    *domain.Event
	deleted    []string
}

func (f *fakeEventService) CreateEvent(_ context.Context, callerID string, event *domain.Event) (*domain.Event, error) {
	f.gotCaller = callerID
	f.created = event
	if f.err != nil {
		return nil, f.err
	}
	if f.event != nil {
		return f.event, nil
	}
	out := *event
	out.ID = "event-created-1"
	out.Status = domain.StatusPending
	return &out, nil
}

func (f *fakeEventService) GetEventByID(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) ListEvents(_ context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.gotFilter = filter
	f.gotParams = params
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.events, f.total, nil
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, callerID string, in domain.UpdateEventInput) (*domain.Event, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	f.gotInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(_ context.Context, eventID, callerID string) error {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeEventService) ListMyOrganizedEvents(_ context.Context, callerID string) ([]*domain.Event, error) {
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventService) ListMyRSVPdEvents(_ context.Context, callerID string) ([]*domain.Event, error) {
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

// fakeRSVPService implements domain.RSVPService for handler tests.
type fakeRSVPService struct {
	rsvp  *domain.RSVP
	rsvps []*domain.RSVP
	err   error

	gotEventID    string
	gotCaller     string
	gotInput      domain.RSVPInput
	gotGuestEmail string
}

func (f *fakeRSVPService) CreateRSVP(_ context.Context, eventID, callerID string, in domain.RSVPInput) (*domain.RSVP, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	f.gotInput = in
	if f.err != nil {
		return nil, f.err
	}
	return f.rsvp, nil
}

func (f *fakeRSVPService) DeleteRSVP(_ context.Context, eventID, callerID, guestEmail string) error {
	f.gotEventID = eventID
	f.gotCaller = callerID
	f.gotGuestEmail = guestEmail
	return f.err
}

func (f *fakeRSVPService) ListEventRSVPs(_ context.Context, eventID, callerID string) ([]*domain.RSVP, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.rsvps, nil
}

// fakeModerationService implements domain.ModerationService for handler tests.
type fakeModerationService struct {
	event  *domain.Event
	events []*domain.Event
	user   *domain.User
	users  []*domain.User
	err    error

	gotEventID string
	gotUserID  string
	gotCaller  string
}

func (f *fakeModerationService) ListPendingEvents(_ context.Context, callerID string) ([]*domain.Event, error) {
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeModerationService) ApproveEvent(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeModerationService) RejectEvent(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeModerationService) CancelEvent(_ context.Context, eventID, callerID string) (*domain.Event, error) {
	f.gotEventID = eventID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeModerationService) ListUsers(_ context.Context, callerID string) ([]*domain.User, error) {
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

func (f *fakeModerationService) ToggleUserBan(_ context.Context, userID, callerID string) (*domain.User, error) {
	f.gotUserID = userID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeModerationService) ToggleVerifiedOrganizer(_ context.Context, userID, callerID string) (*domain.User, error) {
	f.gotUserID = userID
	f.gotCaller = callerID
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

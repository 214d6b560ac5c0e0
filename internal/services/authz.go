package services

import (
	"context"
	"errors"
	"fmt"

	"communitypulse/internal/domain"
)

// loadCaller resolves an authenticated caller ID to its User. An empty ID
// (anonymous request hitting an authenticated operation) and an ID that no
// longer resolves to a user both fail with ErrUnauthorized.
func loadCaller(ctx context.Context, users domain.UserRepository, callerID string) (*domain.User, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get caller: %w", err)
	}
	return user, nil
}

// ensureAdmin fails with ErrForbidden unless the caller is an admin.
func ensureAdmin(caller *domain.User) error {
	if caller == nil || !caller.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// ensureOrganizerOrAdmin fails with ErrForbidden unless the caller is an
// admin or the organizer of the event. The event must already be resolved;
// callers check existence first so a missing event reads as ErrNotFound
// rather than a permission failure.
func ensureOrganizerOrAdmin(caller *domain.User, event *domain.Event) error {
	if event == nil {
		return domain.ErrInvalidInput
	}
	if caller == nil {
		return domain.ErrForbidden
	}
	if caller.IsAdmin || caller.ID == event.OrganizerID {
		return nil
	}
	return domain.ErrForbidden
}

// ensureNotBanned gates state-mutating actions by registered users.
func ensureNotBanned(caller *domain.User) error {
	if caller != nil && caller.IsBanned {
		return domain.ErrUnauthorized
	}
	return nil
}

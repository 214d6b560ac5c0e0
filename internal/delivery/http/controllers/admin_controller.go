package controllers

import (
	"log/slog"
	"net/http"

	"communitypulse/internal/delivery/http/helpers"
	"communitypulse/internal/delivery/http/middleware"
	"communitypulse/internal/domain"
)

type AdminController struct {
	Logger  *slog.Logger
	Service domain.ModerationService
}

func NewAdminController(logger *slog.Logger, svc domain.ModerationService) *AdminController {
	return &AdminController{Logger: logger, Service: svc}
}

func (c *AdminController) callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// ListPendingEvents godoc
// @Summary List events awaiting moderation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events/pending [get]
func (c *AdminController) ListPendingEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListPendingEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list pending events failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ApproveEvent godoc
// @Summary Approve a pending event
// @Description Moves a PENDING event to APPROVED. An event in any other status reads as 404.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/approve [put]
func (c *AdminController) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	event, err := c.Service.ApproveEvent(r.Context(), eventID, userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "approve event failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// RejectEvent godoc
// @Summary Reject a pending event
// @Description Moves a PENDING event to REJECTED. An event in any other status reads as 404.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/reject [put]
func (c *AdminController) RejectEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	event, err := c.Service.RejectEvent(r.Context(), eventID, userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "reject event failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CancelEvent godoc
// @Summary Cancel an event
// @Description Moves the event to CANCELLED and notifies every attendee by email. Cancelling an already cancelled event is a 400.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{eventID}/cancel [put]
func (c *AdminController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	event, err := c.Service.CancelEvent(r.Context(), eventID, userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "cancel event failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListUsers godoc
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the users"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	users, err := c.Service.ListUsers(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list users failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// ToggleUserBan godoc
// @Summary Ban or unban a user
// @Description Flips the user's banned flag. Admin accounts cannot be banned.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userID}/ban [put]
func (c *AdminController) ToggleUserBan(w http.ResponseWriter, r *http.Request) {
	callerID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("userID")
	user, err := c.Service.ToggleUserBan(r.Context(), targetID, callerID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "toggle user ban failed", "user_id", targetID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ToggleVerifiedOrganizer godoc
// @Summary Grant or revoke verified organizer status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/users/{userID}/verify-organizer [put]
func (c *AdminController) ToggleVerifiedOrganizer(w http.ResponseWriter, r *http.Request) {
	callerID, ok := c.callerID(w, r)
	if !ok {
		return
	}
	targetID := r.PathValue("userID")
	user, err := c.Service.ToggleVerifiedOrganizer(r.Context(), targetID, callerID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "toggle verified organizer failed", "user_id", targetID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

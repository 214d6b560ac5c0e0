package controllers

import (
	"log/slog"
	"net/http"

	"communitypulse/internal/delivery/http/helpers"
	"communitypulse/internal/delivery/http/middleware"
	"communitypulse/internal/domain"
)

// CreateRSVPRequest is the request body for POST /events/{eventID}/rsvp.
// Guest fields are required only for unauthenticated callers.
type CreateRSVPRequest struct {
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
	NumPeople  int    `json:"num_people"`
}

// Validate implements Validator. Guest identity is enforced by the service,
// which knows whether the caller is authenticated.
func (c CreateRSVPRequest) Validate() []string {
	if c.NumPeople < 0 {
		return []string{"num_people must be positive"}
	}
	return nil
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// CreateRSVP godoc
// @Summary RSVP to an event
// @Description Records attendance for the authenticated caller, or for a guest identified by name and email. The event must be APPROVED.
// @Tags rsvps
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID"
// @Param rsvp body CreateRSVPRequest true "RSVP data"
// @Success 201 {object} helpers.APIResponse "data contains the RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (duplicate RSVP, invalid num_people)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (guest without name and email)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req CreateRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	rsvp, err := c.Service.CreateRSVP(r.Context(), eventID, userID, domain.RSVPInput{
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		NumPeople:  req.NumPeople,
	})
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "create RSVP failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}

// DeleteRSVP godoc
// @Summary Cancel an RSVP
// @Description Removes the authenticated caller's RSVP, or a guest RSVP matching the guest_email query parameter.
// @Tags rsvps
// @Param eventID path string true "Event ID"
// @Param guest_email query string false "Guest email, required for unauthenticated callers"
// @Success 204 "no content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvp [delete]
func (c *RSVPController) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, _ := middleware.UserIDFromContext(r.Context())
	guestEmail := r.URL.Query().Get("guest_email")
	if err := c.Service.DeleteRSVP(r.Context(), eventID, userID, guestEmail); err != nil {
		c.Logger.ErrorContext(r.Context(), "delete RSVP failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEventRSVPs godoc
// @Summary List RSVPs for an event
// @Description Returns every RSVP for the event. Restricted to the event's organizer and admins.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the RSVPs"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/rsvps [get]
func (c *RSVPController) ListEventRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	rsvps, err := c.Service.ListEventRSVPs(r.Context(), eventID, userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list RSVPs failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvps)
}

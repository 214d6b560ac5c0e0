package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"communitypulse/internal/delivery/http/helpers"
	"communitypulse/internal/delivery/http/middleware"
	"communitypulse/internal/domain"
)

// CreateEventRequest is the request body for POST /events. Datetimes are
// RFC 3339; a malformed value fails JSON decoding and reads as a 400.
type CreateEventRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	StartDatetime   time.Time  `json:"start_datetime"`
	EndDatetime     *time.Time `json:"end_datetime"`
	LocationAddress string     `json:"location_address"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.Category == "" {
		errs = append(errs, "category is required")
	}
	if c.StartDatetime.IsZero() {
		errs = append(errs, "start_datetime is required")
	}
	if c.LocationAddress == "" {
		errs = append(errs, "location_address is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. Omitted
// fields keep their current values.
type UpdateEventRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	StartDatetime   *time.Time `json:"start_datetime"`
	EndDatetime     *time.Time `json:"end_datetime"`
	LocationAddress *string    `json:"location_address"`
}

// EventListResponse is the paginated payload for GET /events.
type EventListResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// parseEventFilter reads the public listing filters from the query string.
// Dates use YYYY-MM-DD; date_to is inclusive through the end of that day UTC.
func parseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Category: q.Get("category"),
		Location: q.Get("location"),
	}
	if s := q.Get("date_from"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &t
	}
	if s := q.Get("date_to"); s != "" {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return filter, err
		}
		end := t.Add(24*time.Hour - time.Second)
		filter.DateTo = &end
	}
	return filter, nil
}

// ListEvents godoc
// @Summary Browse approved events
// @Description Lists APPROVED events with optional filters and pagination, ordered by start time.
// @Tags events
// @Produce json
// @Param category query string false "Substring match on category"
// @Param location query string false "Substring match on location address"
// @Param date_from query string false "Events starting on or after this date (YYYY-MM-DD)"
// @Param date_to query string false "Events starting up to this date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid date format, use YYYY-MM-DD")
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list events failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PerPage, total),
	})
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event in PENDING status awaiting moderation. The authenticated user becomes the organizer.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := domain.NewEvent(req.Title, req.Description, req.Category, req.StartDatetime, req.EndDatetime, req.LocationAddress, userID, time.Now())
	created, err := c.Service.CreateEvent(r.Context(), userID, event)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "create event failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns an APPROVED event to anyone. A PENDING event is returned only to its organizer or an admin; everything else reads as 404.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, _ := middleware.UserIDFromContext(r.Context())
	event, err := c.Service.GetEventByID(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Organizer or admin only. A non-admin changing location or start time sends the event back to PENDING; attendees are notified when an APPROVED event's location or start time changes.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	in := domain.UpdateEventInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		StartDatetime:   req.StartDatetime,
		EndDatetime:     req.EndDatetime,
		LocationAddress: req.LocationAddress,
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, in)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "update event failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Organizer or admin only. Removes the event and all of its RSVPs.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "no content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.Logger.ErrorContext(r.Context(), "delete event failed", "event_id", eventID, "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMyOrganizedEvents godoc
// @Summary List the caller's organized events
// @Description Returns the caller's own events in every status, newest start first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/my-organized [get]
func (c *EventController) ListMyOrganizedEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMyOrganizedEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list organized events failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListMyRSVPdEvents godoc
// @Summary List events the caller has RSVP'd to
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/my-rsvps [get]
func (c *EventController) ListMyRSVPdEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListMyRSVPdEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "list RSVP'd events failed", "err", err)
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

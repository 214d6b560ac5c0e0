package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "communitypulse/docs"
	"communitypulse/internal/delivery/http/controllers"
	"communitypulse/internal/delivery/http/middleware"
	"communitypulse/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	rsvpController *controllers.RSVPController,
	adminController *controllers.AdminController,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/register", authController.Register)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /auth/me", requireAuth(authController.Me))

	// Events. The my-* routes must be registered alongside the {eventID}
	// routes; the mux prefers the literal segment over the wildcard.
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/my-organized", requireAuth(eventController.ListMyOrganizedEvents))
	mux.HandleFunc("GET /events/my-rsvps", requireAuth(eventController.ListMyRSVPdEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(eventController.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))

	// RSVPs. Create and delete accept guests, so auth is optional.
	mux.HandleFunc("POST /events/{eventID}/rsvp", optionalAuth(rsvpController.CreateRSVP))
	mux.HandleFunc("DELETE /events/{eventID}/rsvp", optionalAuth(rsvpController.DeleteRSVP))
	mux.HandleFunc("GET /events/{eventID}/rsvps", requireAuth(rsvpController.ListEventRSVPs))

	// Admin
	mux.HandleFunc("GET /admin/events/pending", requireAuth(adminController.ListPendingEvents))
	mux.HandleFunc("PUT /admin/events/{eventID}/approve", requireAuth(adminController.ApproveEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}/reject", requireAuth(adminController.RejectEvent))
	mux.HandleFunc("PUT /admin/events/{eventID}/cancel", requireAuth(adminController.CancelEvent))
	mux.HandleFunc("GET /admin/users", requireAuth(adminController.ListUsers))
	mux.HandleFunc("PUT /admin/users/{userID}/ban", requireAuth(adminController.ToggleUserBan))
	mux.HandleFunc("PUT /admin/users/{userID}/verify-organizer", requireAuth(adminController.ToggleVerifiedOrganizer))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

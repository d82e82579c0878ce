package http

import (
	"log/slog"
	"net/http"

	"gamecalendar/internal/delivery/http/controllers"
	"gamecalendar/internal/delivery/http/middleware"
	"gamecalendar/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter initializes the HTTP router with all application routes, wrapped in CORS
// and request logging.
func NewRouter(calendar *controllers.CalendarController, auth *controllers.AuthController, verifier domain.TokenVerifier, logger *slog.Logger, corsOrigins []string) http.Handler {
	mux := http.NewServeMux()
	protected := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/login", auth.Login)

	// Events
	mux.HandleFunc("POST /events", protected(calendar.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", protected(calendar.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", protected(calendar.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", protected(calendar.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/copy", protected(calendar.CopyEvent))

	// Invites
	mux.HandleFunc("POST /events/{eventID}/invites", protected(calendar.AddInvite))
	mux.HandleFunc("DELETE /events/{eventID}/invites/{inviteID}", protected(calendar.RemoveInvite))
	mux.HandleFunc("PUT /events/{eventID}/invites/{inviteID}/status", protected(calendar.SetInviteStatus))
	mux.HandleFunc("PUT /events/{eventID}/invites/{inviteID}/rank", protected(calendar.SetInviteRank))

	// Player views
	mux.HandleFunc("GET /players/me/events", protected(calendar.MyEvents))
	mux.HandleFunc("GET /players/me/invites", protected(calendar.MyInvites))
	mux.HandleFunc("GET /players/me/pending", protected(calendar.MyPending))
	mux.HandleFunc("GET /players/me/messages", protected(calendar.MyMessages))
	mux.HandleFunc("GET /players/me/lockouts", protected(calendar.MyLockouts))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.CORS(corsOrigins, middleware.LoggingMiddleware(logger, mux))
}

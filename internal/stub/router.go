package stub

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewRouter assembles the full /api route tree with middleware.
func NewRouter(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(accessLog(logger))       // structured access log
	r.Use(cors.AllowAll().Handler) // permissive CORS for local dev

	r.Get("/health", HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.RegisterAccount)
			r.Post("/login", h.Login)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.With(h.MaybeAuthenticate).Get("/{id}", h.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(h.Authenticate)
				r.Post("/", h.CreateEvent)
				r.Put("/{id}", h.UpdateEvent)
				r.Delete("/{id}", h.DeleteEvent)
			})
		})

		r.Route("/saved-events", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/", h.ListSavedEvents)
			r.Post("/{eventId}", h.SaveEvent)
			r.Delete("/{eventId}", h.UnsaveEvent)
			r.Get("/check/{eventId}", h.CheckSavedEvent)
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/events/my", h.MyRegistrations)
			r.Post("/events/{eventId}", h.RegisterForEvent)
			r.Delete("/events/{eventId}", h.UnregisterFromEvent)
			r.Get("/events/{eventId}", h.EventRegistrations)
			r.Get("/check/{eventId}", h.CheckRegistration)
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/", h.Me)
			r.Put("/", h.UpdateProfile)
			r.Put("/password", h.ChangePassword)
			r.Delete("/", h.DeleteAccount)
		})

		r.Route("/organizer", func(r chi.Router) {
			r.Use(h.Authenticate)
			r.Get("/dashboard", h.OrganizerDashboard)
			r.Get("/events", h.OrganizerEvents)
			r.Get("/events/{eventId}/statistics", h.EventStatistics)
		})
	})

	return r
}

// accessLog logs one line per request: method, path, status, duration.
func accessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

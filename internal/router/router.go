// Package router sets up all HTTP routes and middleware chains for the
// Kawepla API. It organizes routes into public, authenticated, and
// admin groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kawepla/internal/handlers"
	"kawepla/internal/middleware"
	"kawepla/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, designs *handlers.Designs, invitations *handlers.Invitations, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth — login and register are throttled per IP.
		r.Route("/auth", func(r chi.Router) {
			loginLimiter := middleware.NewRateLimiter(10, time.Minute)
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)
			r.With(loginLimiter.Middleware).Post("/register", auth.Register)
			r.Post("/logout", auth.Logout)

			// 2FA — requires auth but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/verify", auth.TwoFAVerify)
			})

			r.With(middleware.RequireAuth, middleware.Require2FA).Get("/me", auth.Me)
		})

		// Design catalogue — browsable without an account so visitors
		// can window-shop before registering.
		r.Route("/designs", func(r chi.Router) {
			r.Get("/", designs.List)
			r.Get("/{id}", designs.Get)
			r.Get("/{id}/preview", designs.Preview)
			r.With(middleware.RequireAuth, middleware.Require2FA).Get("/{id}/access", designs.CheckAccess)
		})

		// Invitations and guest lists — owned by the session user.
		r.Route("/invitations", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", invitations.List)
			r.Post("/", invitations.Create)
			r.Get("/{id}", invitations.Get)
			r.Put("/{id}", invitations.Update)
			r.Delete("/{id}", invitations.Delete)
			r.Post("/{id}/publish", invitations.Publish)
			r.Post("/{id}/unpublish", invitations.Unpublish)

			r.Get("/{id}/guests", invitations.ListGuests)
			r.Post("/{id}/guests", invitations.AddGuest)
			r.Delete("/{id}/guests/{guestID}", invitations.RemoveGuest)
		})

		// Design authoring — admin only.
		r.Route("/admin/designs", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireAdmin)

			r.Post("/", designs.Create)
			r.Put("/{id}", designs.Update)
			r.Delete("/{id}", designs.Delete)
			r.Get("/{id}/editor", designs.EditorDocument)
		})
	})

	// Public invitation pages and RSVP — no account needed; the RSVP
	// token is the credential. Throttled to slow token guessing.
	rsvpLimiter := middleware.NewRateLimiter(30, time.Minute)
	r.Get("/i/{slug}", public.InvitationPage)
	r.With(rsvpLimiter.Middleware).Get("/rsvp/{token}", public.RSVPInfo)
	r.With(rsvpLimiter.Middleware).Post("/rsvp/{token}", public.SubmitRSVP)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

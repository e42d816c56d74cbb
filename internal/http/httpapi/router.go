package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the full route tree. Session handling wraps everything;
// the stricter auth rate limit only guards the password endpoints, mirroring
// the looser global per-IP limit.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS([]string{app.Config.ClientURL}),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
		app.Sessions.LoadAndSave,
	)

	r.Get("/healthz", app.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(app.Config.AuthRateLimit, app.Config.AuthRateWindow))
				r.Post("/register", app.Register)
				r.Post("/login", app.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(app.Sessions))
				r.Post("/logout", app.Logout)
				r.Get("/verify", app.Verify)
			})
		})

		r.Route("/googleOAuth", func(r chi.Router) {
			r.Get("/login", app.GoogleLogin)
			r.Get("/callback", app.GoogleCallback)
		})

		r.Route("/thumbnail", func(r chi.Router) {
			r.Get("/community", app.Community)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(app.Sessions))
				r.Post("/generate", app.Generate)
				r.Delete("/delete/{id}", app.Delete)
				r.Patch("/toggle-published/{id}", app.TogglePublished)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.RequireSession(app.Sessions))
			r.Get("/thumbnails", app.MyThumbnails)
			r.Get("/thumbnail/{id}", app.MyThumbnail)
			r.Get("/credits", app.Credits)
		})
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"promostudio/internal/http/handlers"
	"promostudio/internal/middleware"
)

// NewRouter mounts the API. lookup may be nil when no GeoIP database is
// configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.I18N(app.Config.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))

		r.Route("/v1/trademarks", func(r chi.Router) {
			r.Get("/classes", app.TrademarkClasses)
			r.Post("/search", app.TrademarkSearch)
			r.Get("/sessions/{id}", app.TrademarkLastSearch)
		})

		r.Route("/v1/promo", func(r chi.Router) {
			r.Get("/templates", app.PromoTemplates)
			r.Post("/sessions", app.PromoOpenSession)
			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Get("/", app.PromoSession)
				r.Delete("/", app.PromoCloseSession)
				r.Post("/generate", app.PromoGenerate)
				r.Post("/save", app.PromoSave)
				r.Get("/saved", app.PromoSavedVideo)
			})
		})

		r.Route("/v1/credentials", func(r chi.Router) {
			r.Get("/status", app.CredentialsStatus)
			r.Post("/key", app.CredentialsSelectKey)
		})
	})

	r.Get("/v1/media/{id}", app.MediaContent)

	return r
}

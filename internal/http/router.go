package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/retailboard/internal/http/datasets"
	"github.com/MrJamesThe3rd/retailboard/internal/http/eda"
	"github.com/MrJamesThe3rd/retailboard/internal/http/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/http/segments"
	"github.com/MrJamesThe3rd/retailboard/internal/http/uploads"
	"github.com/MrJamesThe3rd/retailboard/internal/session"
)

type Options struct {
	CORSOrigins      []string
	UploadsPerMinute int
	Timeout          time.Duration
}

func New(
	opts Options,
	sessions *session.Manager,
	datasetsV1 *datasets.Handler,
	edaV1 *eda.Handler,
	forecastV1 *forecast.Handler,
	segmentsV1 *segments.Handler,
	uploadsV1 *uploads.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.With(rateLimit(opts.UploadsPerMinute)).Route("/datasets", datasetsV1.Routes)

		r.Route("/eda", edaV1.Routes)
		r.Route("/forecast", forecastV1.Routes)
		r.Route("/segments", segmentsV1.Routes)
		r.Route("/uploads", uploadsV1.Routes)
	})

	return router
}

// rateLimit throttles POST requests with one token bucket shared across all
// callers; perMinute <= 0 disables it.
func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && !limiter.Allow() {
				http.Error(w, "too many uploads, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// internal/app/app.go
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"libracirc/internal/borrow"
	"libracirc/internal/catalog"
	"libracirc/internal/directory"
	"libracirc/internal/reports"
)

// Handlers groups the per-package HTTP handlers the router mounts.
type Handlers struct {
	Catalog   *catalog.Handler
	Directory *directory.Handler
	Borrow    *borrow.Handler
	Reports   *reports.Handler
}

// NewRouter assembles the full HTTP surface.
func NewRouter(logger *zap.Logger, h Handlers) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Post("/", h.Catalog.HandleAddBook)
			r.Get("/", h.Catalog.HandleListBooks)
			r.Get("/{id}", h.Catalog.HandleGetBook)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Directory.HandleRegister)
			r.Get("/{username}", h.Directory.HandleGetUser)
			r.Patch("/{username}/active", h.Directory.HandleSetActive)
		})
		r.Post("/auth/login", h.Directory.HandleLogin)

		r.Route("/borrow", func(r chi.Router) {
			r.Post("/requests", h.Borrow.HandleCreateRequest)
			r.Get("/requests/review", h.Borrow.HandleReview)
			r.Post("/requests/{id}/approve", h.Borrow.HandleApprove)
			r.Post("/requests/{id}/reject", h.Borrow.HandleReject)
			r.Post("/records/{id}/return", h.Borrow.HandleReturn)
			r.Get("/records/active", h.Borrow.HandleActiveBorrows)
			r.Get("/records/student/{username}", h.Borrow.HandleStudentHistory)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/students/{username}", h.Reports.HandleStudentStats)
			r.Get("/staff/{username}", h.Reports.HandleStaffPerformance)
			r.Get("/borrow", h.Reports.HandleBorrowStats)
			r.Get("/delays", h.Reports.HandleTopDelays)
			r.Get("/general", h.Reports.HandleGeneralStats)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/category"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/report"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/transaction"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-ledger-go/internal/vendors"
)

// Deps carries everything RegisterRoutes mounts.
type Deps struct {
	Logger       *zap.SugaredLogger
	Tokens       *session.Tokens
	Principals   session.PrincipalSource
	CORSOrigins  []string
	Users        *user.Handler
	Transactions *transaction.Handler
	Categories   *category.Handler
	Vendors      *vendors.Handler
	Reports      *report.Handler
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"size", lrw.size,
				"request_id", middleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				logger.Warnw("http request", fields...)
				return
			}
			logger.Debugw("http request", fields...)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. The API only
// serves JSON, so the CSP denies everything.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			// responses carry per-user data; never let an intermediary cache them
			w.Header().Set("Cache-Control", "no-store")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts every API route on a chi router. Everything except
// the health check sits behind the session middleware.
func RegisterRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(d.Tokens, d.Principals, d.Logger))

			r.Post("/auth/signout", session.SignOutHandler(d.Tokens, d.Logger))

			r.Get("/users", d.Users.List)
			r.Get("/users/me", d.Users.Me)
			r.Post("/users/update-last-login", d.Users.UpdateLastLogin)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", d.Transactions.List)
				r.Post("/", d.Transactions.Create)
				r.Get("/{id}", d.Transactions.Get)
				r.Put("/{id}", d.Transactions.Update)
				r.Delete("/{id}", d.Transactions.Delete)
				r.Get("/{id}/history", d.Transactions.History)
			})

			r.Get("/categories", d.Categories.List)
			r.Post("/categories", d.Categories.Create)
			r.Get("/categories/{id}/subcategories", d.Categories.Subcategories)

			r.Get("/vendors", d.Vendors.List)
			r.Post("/vendors", d.Vendors.Create)

			r.Get("/reports/summary", d.Reports.Summary)
		})
	})

	return r
}

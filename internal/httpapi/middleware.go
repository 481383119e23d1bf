package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/ratelimit"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// loggingMiddleware tags the request context with a request id and records
// the request in the logs and the Prometheus metrics.
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logger.With(r.Context(),
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path)

		writer := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(writer, r.WithContext(ctx))
		elapsed := time.Since(start)

		if h.metrics != nil {
			h.metrics.ObserveRequest(r.Method, h.route(r), writer.status, elapsed)
		}

		logger.Info(ctx, "request completed",
			"status", writer.status,
			"duration_ms", elapsed.Milliseconds())
	})
}

// route is the mux pattern serving r, so metric labels stay bounded.
func (h *Handler) route(r *http.Request) string {
	if _, pattern := h.mux.Handler(r); pattern != "" {
		return pattern
	}
	return "unmatched"
}

func (h *Handler) i18nMiddleware(next http.Handler) http.Handler {
	if h.translations == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := h.translations.Match(r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", lang)
		ctx := i18n.WithLocalizer(r.Context(), h.translations.Localizer(lang))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) rateLimitMiddleware(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ratelimit.Exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		identifier := ratelimit.Identifier(r)
		d := h.limiter.Allow(r.Context(), identifier)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(d.RetryAfter(h.now()).Seconds())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			logger.Warn(r.Context(), "rate limit exceeded", "identifier", identifier)
			writeError(w, r, start, domainErrors.ErrRateLimited.
				WithContext("limit", d.Limit).
				WithContext("retry_after", retryAfter))
			return
		}

		next.ServeHTTP(w, r)
	})
}

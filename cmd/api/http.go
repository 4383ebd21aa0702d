package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"

	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

var startTime = time.Now()

// requestContext copies chi's request ID into the logging context
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logging.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

type healthChecker struct {
	db    *sqlx.DB
	redis *redis.Client
}

// ServeHTTP returns server health status
func (h *healthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := map[string]string{"database": "ok"}

	if err := h.db.PingContext(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = "unreachable"
	}
	if h.redis != nil {
		checks["cache"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// the cache is optional, report but stay healthy
			checks["cache"] = "unreachable"
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	utils.RespondWithJSON(w, status, map[string]interface{}{
		"status":    state,
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	})
}

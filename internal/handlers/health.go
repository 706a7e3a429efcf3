package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/movieapi/internal/logger"
)

const healthTimeout = 500 * time.Millisecond

type pinger interface {
	Ping(ctx context.Context) error
}

func handleHealth(db pinger, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := db.Ping(ctx); err != nil {
			l.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
}

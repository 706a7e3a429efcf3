package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/handlers/render"
	"github.com/nkiryanov/movieapi/internal/handlers/userctx"
	"github.com/nkiryanov/movieapi/internal/models"
)

type routeClassifier interface {
	Classify(r *http.Request) Access
}

type sessionService interface {
	// Read tokens from request, apperrors.ErrTokenMissing if absent
	AccessToken(r *http.Request) (string, error)
	RefreshToken(r *http.Request) (string, error)

	VerifyAccess(access string) (subject string, err error)

	// Mint new access token from refresh token
	Refresh(ctx context.Context, refresh string) (subject string, access models.IssuedToken, err error)

	SetAccessToken(w http.ResponseWriter, access models.IssuedToken)
	ClearTokens(w http.ResponseWriter)
}

type gateLogger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Gatekeeper lets public routes through and requires a session for everything else.
//
// Protected request is allowed with a valid access token. If the access token is missing or not valid
// but there is a refresh token, a new access token is minted once, set as cookie and the request goes on.
// Otherwise the answer is 401. Metrics may be nil.
func Gatekeeper(routes routeClassifier, sessions sessionService, l gateLogger, m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if routes.Classify(r) == Public {
				m.observeDecision(DecisionPublic)
				next.ServeHTTP(w, r)
				return
			}

			allow := func(subject string, d Decision) {
				m.observeDecision(d)
				next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), subject)))
			}
			reject := func(reason string, err error) {
				l.Debug("request rejected", "reason", reason, "uri", r.RequestURI, "error", err)
				m.observeDecision(DecisionRejected)
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			}

			access, accessErr := sessions.AccessToken(r)
			refresh, refreshErr := sessions.RefreshToken(r)

			if accessErr != nil && refreshErr != nil {
				reject("no session tokens", accessErr)
				return
			}

			if accessErr == nil {
				subject, err := sessions.VerifyAccess(access)
				if err == nil {
					allow(subject, DecisionAllowed)
					return
				}
				if refreshErr != nil {
					reject("access token not valid", err)
					return
				}
			}

			subject, token, err := sessions.Refresh(r.Context(), refresh)
			if err != nil {
				// Dead session: drop cookies so the client stops sending them.
				// On store failures keep them, the refresh token may still be good.
				if apperrors.IsTokenError(err) || errors.Is(err, apperrors.ErrUserNotFound) {
					sessions.ClearTokens(w)
				} else {
					l.Warn("refresh failed", "uri", r.RequestURI, "error", err)
				}
				reject("refresh failed", err)
				return
			}

			sessions.SetAccessToken(w, token)
			allow(subject, DecisionRefreshed)
		})
	}
}

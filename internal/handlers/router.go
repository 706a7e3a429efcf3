package handlers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nkiryanov/movieapi/internal/handlers/middleware"
	"github.com/nkiryanov/movieapi/internal/logger"
	"github.com/nkiryanov/movieapi/internal/models"
	"github.com/nkiryanov/movieapi/internal/repository"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter wires every endpoint. reg receives http metrics and is served on /metrics.
func NewRouter(
	auth authService,
	storage repository.Storage,
	db pinger,
	reg *prometheus.Registry,
	logger logger.Logger,
) http.Handler {
	routes := middleware.NewRouteTable()

	routes.Handle("POST /auth/signup", middleware.Public, handleSignup(auth, logger))
	routes.Handle("POST /auth/login", middleware.Public, handleLogin(auth, logger))
	routes.Handle("POST /auth/signout", middleware.Public, handleSignout(auth))
	routes.Handle("POST /auth/refresh", middleware.Public, handleRefresh(auth, logger))
	routes.Handle("GET /auth/me", middleware.Protected, handleMe())

	routes.Handle("GET /healthz", middleware.Public, handleHealth(db, logger))
	routes.Handle("GET /metrics", middleware.Public, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	movies := catalog[models.Movie]{store: storage.Movies(), l: logger, noun: "Movie", patchFields: "title, plot or rating"}
	theaters := catalog[models.Theater]{store: storage.Theaters(), l: logger, noun: "Theater", patchFields: "city or state"}
	comments := catalog[models.Comment]{store: storage.Comments(), l: logger, noun: "Comment", patchFields: "name, email, text or movie_id"}

	handleCatalog(routes, "/movies", movies, create[models.Movie, movieRequest](movies), update[models.Movie, moviePatchRequest](movies))
	handleCatalog(routes, "/theaters", theaters, create[models.Theater, theaterRequest](theaters), update[models.Theater, theaterPatchRequest](theaters))
	handleCatalog(routes, "/comments", comments, create[models.Comment, commentRequest](comments), update[models.Comment, commentPatchRequest](comments))

	metrics := middleware.NewMetrics(reg)

	return chain(routes,
		func(next http.Handler) http.Handler {
			return otelhttp.NewHandler(next, "movieapi", otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if pattern := routes.Pattern(r); pattern != "" {
					return pattern
				}
				return r.Method
			}))
		},
		metrics.Middleware(routes.Pattern),
		middleware.LoggerMiddleware(logger),
		middleware.Gatekeeper(routes, auth, logger, metrics),
	)
}

// All catalog endpoints are protected
func handleCatalog[T models.Document](routes *middleware.RouteTable, prefix string, c catalog[T], create, update http.Handler) {
	routes.Handle("GET "+prefix, middleware.Protected, c.list())
	routes.Handle("GET "+prefix+"/{id}", middleware.Protected, c.get())
	routes.Handle("POST "+prefix, middleware.Protected, create)
	routes.Handle("PUT "+prefix+"/{id}", middleware.Protected, update)
	routes.Handle("DELETE "+prefix+"/{id}", middleware.Protected, c.delete())
}

type authService interface {
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Signup(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Has to return apperrors.ErrUserNotFound for unknown email
	// and apperrors.ErrInvalidCredentials for wrong password
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Mint access token from refresh token
	// Token errors are reported with apperrors token sentinels
	Refresh(ctx context.Context, refresh string) (string, models.IssuedToken, error)
	VerifyAccess(access string) (string, error)

	AccessToken(r *http.Request) (string, error)
	RefreshToken(r *http.Request) (string, error)

	SetTokenPair(w http.ResponseWriter, pair models.TokenPair)
	SetAccessToken(w http.ResponseWriter, access models.IssuedToken)
	ClearTokens(w http.ResponseWriter)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/handlers/render"
	"github.com/nkiryanov/movieapi/internal/handlers/userctx"
	"github.com/nkiryanov/movieapi/internal/logger"
)

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func handleSignup(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Signup(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusConflict)
			return
		default:
			l.Error("signup failed", "error", err)
			render.InternalError(w)
			return
		}

		auth.SetTokenPair(w, pair)
		render.JSON(w, tokenResponse{Message: "User signed up successfully", Token: pair.Access.Value})
	})
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentials](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Login(r.Context(), data.Email, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
			return
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		default:
			l.Error("login failed", "error", err)
			render.InternalError(w)
			return
		}

		auth.SetTokenPair(w, pair)
		render.JSON(w, tokenResponse{Message: "User logged in successfully", Token: pair.Access.Value})
	})
}

// Tokens stay valid until they expire, signout only drops the cookies
func handleSignout(auth authService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.ClearTokens(w)
		render.JSON(w, tokenResponse{Message: "User signed out successfully"})
	})
}

func handleRefresh(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := auth.RefreshToken(r)
		if err != nil {
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
			return
		}

		_, access, err := auth.Refresh(r.Context(), refresh)
		switch {
		case err == nil:
		case apperrors.IsTokenError(err), errors.Is(err, apperrors.ErrUserNotFound):
			auth.ClearTokens(w)
			render.ServiceError(w, "Refresh token is not valid", http.StatusUnauthorized)
			return
		default:
			l.Error("token refresh failed", "error", err)
			render.InternalError(w)
			return
		}

		auth.SetAccessToken(w, access)
		render.JSON(w, tokenResponse{Message: "Access token refreshed successfully", Token: access.Value})
	})
}

func handleMe() http.Handler {
	type response struct {
		Email string `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		render.JSON(w, response{Email: email})
	})
}

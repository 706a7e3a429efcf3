package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/models"
	"github.com/nkiryanov/movieapi/internal/repository"
)

const (
	defaultAccessCookieName  = "accesstoken"
	defaultRefreshCookieName = "refreshtoken"
	defaultRefreshTimeout    = 5 * time.Second

	bearerPrefix = "Bearer "
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Mismatch is reported as false, error only for broken hashes
	Compare(hashedPassword string, password string) (bool, error)
}

type tokenManager interface {
	IssuePair(subject string) (models.TokenPair, error)
	IssueAccess(subject string) (models.IssuedToken, error)
	Verify(token string, kind models.TokenKind) (subject string, err error)
}

type Config struct {
	// Hasher to use during signup or login
	// BcryptHasher with default cost if not set
	Hasher PasswordHasher

	// Cookie names to keep session tokens
	AccessCookieName  string
	RefreshCookieName string

	// Cookies are marked Secure unless this is set (plain http in local development)
	InsecureCookies bool

	// Upper bound for the whole refresh step
	RefreshTimeout time.Duration
}

type AuthService struct {
	tokens   tokenManager
	hasher   PasswordHasher
	userRepo repository.UserRepo

	accessCookieName  string
	refreshCookieName string
	secureCookies     bool
	refreshTimeout    time.Duration
}

func NewService(cfg Config, tokens tokenManager, userRepo repository.UserRepo) (*AuthService, error) {
	if tokens == nil || userRepo == nil {
		return nil, errors.New("token manager and user repo must not be nil")
	}

	if cfg.Hasher == nil {
		cfg.Hasher = BcryptHasher{}
	}
	if cfg.AccessCookieName == "" {
		cfg.AccessCookieName = defaultAccessCookieName
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if cfg.RefreshTimeout == 0 {
		cfg.RefreshTimeout = defaultRefreshTimeout
	}

	return &AuthService{
		tokens:            tokens,
		hasher:            cfg.Hasher,
		userRepo:          userRepo,
		accessCookieName:  cfg.AccessCookieName,
		refreshCookieName: cfg.RefreshCookieName,
		secureCookies:     !cfg.InsecureCookies,
		refreshTimeout:    cfg.RefreshTimeout,
	}, nil
}

// Emails differing only in case or surrounding spaces belong to the same user
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates user and issues token pair for it
// Returns apperrors.ErrUserAlreadyExists if email is taken
func (s *AuthService) Signup(ctx context.Context, email string, password string) (models.TokenPair, error) {
	email = normalizeEmail(email)

	_, err := s.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return models.TokenPair{}, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return models.TokenPair{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	// Concurrent signup may win between lookup and insert, repo reports it as ErrUserAlreadyExists
	user, err := s.userRepo.CreateUser(ctx, email, hash)
	if err != nil {
		return models.TokenPair{}, err
	}

	return s.issuePair(user)
}

// Login checks user password and issues token pair
// Returns apperrors.ErrUserNotFound for unknown email and apperrors.ErrInvalidCredentials for wrong password
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.TokenPair{}, err
	}

	ok, err := s.hasher.Compare(user.HashedPassword, password)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("stored password hash is broken: %w", err)
	}
	if !ok {
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(user)
}

// Refresh mints a new access token from a valid refresh token.
// The token subject must still be a known user.
func (s *AuthService) Refresh(ctx context.Context, refresh string) (string, models.IssuedToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	email, err := s.tokens.Verify(refresh, models.TokenKindRefresh)
	if err != nil {
		return "", models.IssuedToken{}, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", models.IssuedToken{}, err
	}

	access, err := s.tokens.IssueAccess(user.Email)
	if err != nil {
		return "", models.IssuedToken{}, fmt.Errorf("access token could not be issued: %w", err)
	}

	return user.Email, access, nil
}

// VerifyAccess returns subject of a valid access token
func (s *AuthService) VerifyAccess(access string) (string, error) {
	return s.tokens.Verify(access, models.TokenKindAccess)
}

func (s *AuthService) issuePair(user models.User) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user.Email)
	if err != nil {
		return pair, fmt.Errorf("token could not generated, sorry. %w", err)
	}
	return pair, nil
}

// AccessToken reads access token from cookie or, if there is none, from Authorization bearer header
func (s *AuthService) AccessToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(s.accessCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):]), nil
	}

	return "", apperrors.ErrTokenMissing
}

// RefreshToken reads refresh token from its cookie
func (s *AuthService) RefreshToken(r *http.Request) (string, error) {
	c, err := r.Cookie(s.refreshCookieName)
	if err != nil || c.Value == "" {
		return "", apperrors.ErrTokenMissing
	}
	return c.Value, nil
}

func (s *AuthService) SetTokenPair(w http.ResponseWriter, pair models.TokenPair) {
	s.SetAccessToken(w, pair.Access)
	http.SetCookie(w, s.cookie(s.refreshCookieName, pair.Refresh.Value, pair.Refresh.ExpiresAt))
}

func (s *AuthService) SetAccessToken(w http.ResponseWriter, access models.IssuedToken) {
	http.SetCookie(w, s.cookie(s.accessCookieName, access.Value, access.ExpiresAt))
}

// ClearTokens expires both session cookies
func (s *AuthService) ClearTokens(w http.ResponseWriter) {
	for _, name := range []string{s.accessCookieName, s.refreshCookieName} {
		c := s.cookie(name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (s *AuthService) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

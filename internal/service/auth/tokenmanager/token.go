package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultSigningMethod   = "HS256"
)

type Claims struct {
	jwt.RegisteredClaims
	Kind models.TokenKind `json:"kind"`
}

// Token manager with sensible default
type Config struct {
	// Secret keys to sign access and refresh tokens
	// Both required, should differ
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Clock to stamp and check tokens, time.Now if not set
	Now func() time.Time
}

type TokenManager struct {
	keys map[models.TokenKind][]byte
	ttls map[models.TokenKind]time.Duration

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	now func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh secrets must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported, use one of HS256, HS384, HS512", cfg.Alg)
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &TokenManager{
		keys: map[models.TokenKind][]byte{
			models.TokenKindAccess:  []byte(cfg.AccessSecret),
			models.TokenKindRefresh: []byte(cfg.RefreshSecret),
		},
		ttls: map[models.TokenKind]time.Duration{
			models.TokenKindAccess:  cfg.AccessTTL,
			models.TokenKindRefresh: cfg.RefreshTTL,
		},
		alg: alg,
		now: cfg.Now,
	}, nil
}

// Issue signs a token of given kind for subject.
// Claims keep whole seconds: expiry is rounded up for positive ttl, so the token is valid right after issue.
func (m *TokenManager) Issue(subject string, kind models.TokenKind, ttl time.Duration) (models.IssuedToken, error) {
	key, ok := m.keys[kind]
	if !ok {
		return models.IssuedToken{}, fmt.Errorf("unknown token kind %q", kind)
	}

	now := m.now()
	expiresAt := now.Add(ttl)
	if ttl > 0 {
		expiresAt = ceilSecond(expiresAt)
	} else {
		expiresAt = expiresAt.Truncate(time.Second)
	}

	token := jwt.NewWithClaims(m.alg, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now.Truncate(time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
	})

	signed, err := token.SignedString(key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", kind, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) IssueAccess(subject string) (models.IssuedToken, error) {
	return m.Issue(subject, models.TokenKindAccess, m.ttls[models.TokenKindAccess])
}

func (m *TokenManager) IssuePair(subject string) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := m.IssueAccess(subject)
	if err != nil {
		return pair, err
	}

	refresh, err := m.Issue(subject, models.TokenKindRefresh, m.ttls[models.TokenKindRefresh])
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify checks signature, expiry and kind of the token and returns its subject
func (m *TokenManager) Verify(token string, kind models.TokenKind) (string, error) {
	key, ok := m.keys[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown kind %q", apperrors.ErrTokenKindMismatch, kind)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenSignatureInvalid, err)
	default:
		return "", fmt.Errorf("%w: %v", apperrors.ErrTokenMalformed, err)
	}

	if claims.Kind != kind {
		return "", fmt.Errorf("%w: got %q, want %q", apperrors.ErrTokenKindMismatch, claims.Kind, kind)
	}

	return claims.Subject, nil
}

func ceilSecond(t time.Time) time.Time {
	floor := t.Truncate(time.Second)
	if floor.Before(t) {
		return floor.Add(time.Second)
	}
	return floor
}

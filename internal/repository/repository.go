package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/movieapi/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, email string, hashedPassword string) (models.User, error)

	// Get user by email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Collection is a document store over one catalog table.
// Every method that addresses a single document must return apperrors.ErrDocumentNotFound when nothing matched.
type Collection[T models.Document] interface {
	FindOne(ctx context.Context, id uuid.UUID) (T, error)

	// Find returns at most limit documents ordered by creation time
	Find(ctx context.Context, limit int) ([]T, error)

	// InsertOne stores the document under a newly generated id
	InsertOne(ctx context.Context, doc T) (uuid.UUID, error)

	// UpdateOne sets only the given fields
	// Empty patch must return apperrors.ErrEmptyPatch
	UpdateOne(ctx context.Context, id uuid.UUID, patch models.Fields) error

	DeleteOne(ctx context.Context, id uuid.UUID) error
}

type Storage interface {
	User() UserRepo
	Movies() Collection[models.Movie]
	Theaters() Collection[models.Theater]
	Comments() Collection[models.Comment]
}

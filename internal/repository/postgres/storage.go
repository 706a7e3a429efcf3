package postgres

import (
	"time"

	"github.com/nkiryanov/movieapi/internal/models"
	"github.com/nkiryanov/movieapi/internal/repository"
)

// Writable columns of the catalog tables, see db/migrations
var (
	movieColumns   = []string{"title", "plot", "rating"}
	theaterColumns = []string{"city", "state"}
	commentColumns = []string{"name", "email", "text", "movie_id"}
)

type Storage struct {
	db      DBTX
	timeout time.Duration
}

// NewStorage returns storage where each query is bounded by timeout.
// Zero timeout falls back to DefaultQueryTimeout.
func NewStorage(db DBTX, timeout time.Duration) repository.Storage {
	if timeout == 0 {
		timeout = DefaultQueryTimeout
	}
	return &Storage{db: db, timeout: timeout}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db, Timeout: s.timeout}
}

func (s *Storage) Movies() repository.Collection[models.Movie] {
	return &Collection[models.Movie]{DB: s.db, Table: "movies", Columns: movieColumns, Timeout: s.timeout}
}

func (s *Storage) Theaters() repository.Collection[models.Theater] {
	return &Collection[models.Theater]{DB: s.db, Table: "theaters", Columns: theaterColumns, Timeout: s.timeout}
}

func (s *Storage) Comments() repository.Collection[models.Comment] {
	return &Collection[models.Comment]{DB: s.db, Table: "comments", Columns: commentColumns, Timeout: s.timeout}
}

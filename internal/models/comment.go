package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `db:"id" json:"_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Text      string    `db:"text" json:"text"`

	// Movie the comment belongs to, nil for standalone comments
	MovieID *uuid.UUID `db:"movie_id" json:"movie_id,omitempty"`
}

func (c Comment) Fields() Fields {
	return Fields{
		"name":     c.Name,
		"email":    c.Email,
		"text":     c.Text,
		"movie_id": c.MovieID,
	}
}

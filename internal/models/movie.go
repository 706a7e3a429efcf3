package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Movie struct {
	ID        uuid.UUID           `db:"id" json:"_id"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	Title     string              `db:"title" json:"title"`
	Plot      string              `db:"plot" json:"plot"`
	Rating    decimal.NullDecimal `db:"rating" json:"rating"`
}

func (m Movie) Fields() Fields {
	return Fields{
		"title":  m.Title,
		"plot":   m.Plot,
		"rating": m.Rating,
	}
}

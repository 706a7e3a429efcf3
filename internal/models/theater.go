package models

import (
	"time"

	"github.com/google/uuid"
)

type Theater struct {
	ID        uuid.UUID `db:"id" json:"_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
}

func (t Theater) Fields() Fields {
	return Fields{
		"city":  t.City,
		"state": t.State,
	}
}

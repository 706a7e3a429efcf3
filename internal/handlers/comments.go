package handlers

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/nkiryanov/movieapi/internal/models"
)

type commentRequest struct {
	Name    string     `json:"name" validate:"required"`
	Email   string     `json:"email" validate:"required,email"`
	Text    string     `json:"text" validate:"required"`
	MovieID *uuid.UUID `json:"movie_id"`
}

func (r commentRequest) document() models.Comment {
	return models.Comment{Name: r.Name, Email: r.Email, Text: r.Text, MovieID: r.MovieID}
}

// Tells an absent key from an explicit null
type nullableID struct {
	Set bool
	ID  *uuid.UUID
}

func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.ID = nil
		return nil
	}

	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.ID = &id
	return nil
}

type commentPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Text  *string `json:"text" validate:"omitempty,min=1"`

	// "movie_id": null unlinks the comment from its movie
	MovieID nullableID `json:"movie_id"`
}

func (r commentPatchRequest) patch() models.Fields {
	f := models.Fields{}
	if r.Name != nil {
		f["name"] = *r.Name
	}
	if r.Email != nil {
		f["email"] = *r.Email
	}
	if r.Text != nil {
		f["text"] = *r.Text
	}
	if r.MovieID.Set {
		f["movie_id"] = r.MovieID.ID
	}
	return f
}

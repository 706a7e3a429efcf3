package handlers

import (
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/movieapi/internal/models"
)

type movieRequest struct {
	Title  string           `json:"title" validate:"required"`
	Plot   string           `json:"plot" validate:"required"`
	Rating *decimal.Decimal `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

func (r movieRequest) document() models.Movie {
	m := models.Movie{Title: r.Title, Plot: r.Plot}
	if r.Rating != nil {
		m.Rating = decimal.NewNullDecimal(r.Rating.Round(1))
	}
	return m
}

type moviePatchRequest struct {
	Title  *string          `json:"title" validate:"omitempty,min=1"`
	Plot   *string          `json:"plot" validate:"omitempty,min=1"`
	Rating *decimal.Decimal `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

func (r moviePatchRequest) patch() models.Fields {
	f := models.Fields{}
	if r.Title != nil {
		f["title"] = *r.Title
	}
	if r.Plot != nil {
		f["plot"] = *r.Plot
	}
	if r.Rating != nil {
		f["rating"] = r.Rating.Round(1)
	}
	return f
}

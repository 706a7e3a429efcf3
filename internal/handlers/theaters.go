package handlers

import (
	"github.com/nkiryanov/movieapi/internal/models"
)

type theaterRequest struct {
	City  string `json:"city" validate:"required"`
	State string `json:"state" validate:"required"`
}

func (r theaterRequest) document() models.Theater {
	return models.Theater{City: r.City, State: r.State}
}

type theaterPatchRequest struct {
	City  *string `json:"city" validate:"omitempty,min=1"`
	State *string `json:"state" validate:"omitempty,min=1"`
}

func (r theaterPatchRequest) patch() models.Fields {
	f := models.Fields{}
	if r.City != nil {
		f["city"] = *r.City
	}
	if r.State != nil {
		f["state"] = *r.State
	}
	return f
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/handlers/render"
	"github.com/nkiryanov/movieapi/internal/logger"
	"github.com/nkiryanov/movieapi/internal/models"
	"github.com/nkiryanov/movieapi/internal/repository"
)

// List endpoints never return more documents than this
const listLimit = 10

// Body that builds a new document
type documentRequest[T models.Document] interface {
	document() T
}

// Body that changes some fields of a document
type patchRequest interface {
	patch() models.Fields
}

// catalog serves CRUD endpoints of one collection
type catalog[T models.Document] struct {
	store repository.Collection[T]
	l     logger.Logger

	// Capitalized singular name used in messages, "Movie"
	noun string

	// Fields one of which must be present on update, "title, plot or rating"
	patchFields string
}

type insertedID struct {
	ID uuid.UUID `json:"id"`
}

func (c catalog[T]) list() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		docs, err := c.store.Find(r.Context(), listLimit)
		if err != nil {
			c.storeError(w, r, err)
			return
		}
		if docs == nil {
			docs = []T{}
		}

		render.Envelope(w, http.StatusOK, "", docs)
	})
}

func (c catalog[T]) get() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := c.parseID(w, r)
		if !ok {
			return
		}

		doc, err := c.store.FindOne(r.Context(), id)
		if err != nil {
			c.storeError(w, r, err)
			return
		}

		render.Envelope(w, http.StatusOK, "", doc)
	})
}

func create[T models.Document, R documentRequest[T]](c catalog[T]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[R](w, r)
		if err != nil {
			return
		}

		id, err := c.store.InsertOne(r.Context(), data.document())
		if err != nil {
			c.storeError(w, r, err)
			return
		}

		render.Envelope(w, http.StatusCreated, c.noun+" added successfully", insertedID{ID: id})
	})
}

func update[T models.Document, R patchRequest](c catalog[T]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := c.parseID(w, r)
		if !ok {
			return
		}

		data, err := render.BindAndValidate[R](w, r)
		if err != nil {
			return
		}

		patch := data.patch()
		if len(patch) == 0 {
			c.storeError(w, r, apperrors.ErrEmptyPatch)
			return
		}

		if err := c.store.UpdateOne(r.Context(), id, patch); err != nil {
			c.storeError(w, r, err)
			return
		}

		render.Envelope(w, http.StatusOK, c.noun+" updated successfully", nil)
	})
}

func (c catalog[T]) delete() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := c.parseID(w, r)
		if !ok {
			return
		}

		if err := c.store.DeleteOne(r.Context(), id); err != nil {
			c.storeError(w, r, err)
			return
		}

		render.Envelope(w, http.StatusOK, c.noun+" deleted successfully", nil)
	})
}

// parseID reads {id} path value. Writes 400 and returns false if it is not a uuid.
func (c catalog[T]) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, fmt.Sprintf("Invalid %s ID", strings.ToLower(c.noun)), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (c catalog[T]) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrDocumentNotFound):
		render.ServiceError(w, c.noun+" not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrEmptyPatch):
		render.ServiceError(w, fmt.Sprintf("At least one field (%s) is required", c.patchFields), http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrReferenceNotFound):
		render.ServiceError(w, "Referenced movie does not exist", http.StatusBadRequest)
	default:
		c.l.WithContext(r.Context()).Error("catalog store failed", "method", r.Method, "uri", r.RequestURI, "error", err)
		render.InternalError(w)
	}
}

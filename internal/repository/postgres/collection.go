package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/movieapi/internal/apperrors"
	"github.com/nkiryanov/movieapi/internal/models"
)

// Collection stores documents of type T in a single table.
// Every table has 'id' and 'created_at' columns; Columns lists the writable ones.
type Collection[T models.Document] struct {
	DB      DBTX
	Table   string
	Columns []string
	Timeout time.Duration
}

func (c *Collection[T]) table() string {
	return pgx.Identifier{c.Table}.Sanitize()
}

func (c *Collection[T]) selectList() string {
	cols := make([]string, 0, len(c.Columns)+2)
	cols = append(cols, "id", "created_at")
	for _, col := range c.Columns {
		cols = append(cols, pgx.Identifier{col}.Sanitize())
	}
	return strings.Join(cols, ", ")
}

// Pick known fields in column order, so queries and args are stable
func (c *Collection[T]) pick(fields models.Fields) (cols []string, args []any, err error) {
	for key := range fields {
		if !slices.Contains(c.Columns, key) {
			return nil, nil, fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownField, c.Table, key)
		}
	}

	for _, col := range c.Columns {
		if v, ok := fields[col]; ok {
			cols = append(cols, pgx.Identifier{col}.Sanitize())
			args = append(args, v)
		}
	}

	return cols, args, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, id uuid.UUID) (T, error) {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", c.selectList(), c.table())

	var doc T
	rows, err := c.DB.Query(ctx, query, id)
	if err == nil {
		doc, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	}

	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, pgx.ErrNoRows):
		return doc, apperrors.ErrDocumentNotFound
	default:
		return doc, dbError(err)
	}
}

func (c *Collection[T]) Find(ctx context.Context, limit int) ([]T, error) {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at, id LIMIT $1", c.selectList(), c.table())

	rows, err := c.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, dbError(err)
	}

	docs, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, dbError(err)
	}

	return docs, nil
}

func (c *Collection[T]) InsertOne(ctx context.Context, doc T) (uuid.UUID, error) {
	cols, args, err := c.pick(doc.Fields())
	if err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	cols = append([]string{"id"}, cols...)
	args = append([]any{id}, args...)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		c.table(), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	_, err = c.DB.Exec(ctx, query, args...)
	switch {
	case err == nil:
		return id, nil
	case isForeignKeyViolation(err):
		return uuid.Nil, apperrors.ErrReferenceNotFound
	default:
		return uuid.Nil, dbError(err)
	}
}

func (c *Collection[T]) UpdateOne(ctx context.Context, id uuid.UUID, patch models.Fields) error {
	if len(patch) == 0 {
		return apperrors.ErrEmptyPatch
	}

	cols, args, err := c.pick(patch)
	if err != nil {
		return err
	}

	set := make([]string, len(cols))
	for i, col := range cols {
		set[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", c.table(), strings.Join(set, ", "), len(args))

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	tag, err := c.DB.Exec(ctx, query, args...)
	switch {
	case err == nil && tag.RowsAffected() == 0:
		return apperrors.ErrDocumentNotFound
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return apperrors.ErrReferenceNotFound
	default:
		return dbError(err)
	}
}

func (c *Collection[T]) DeleteOne(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.table())

	tag, err := c.DB.Exec(ctx, query, id)
	switch {
	case err != nil:
		return dbError(err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrDocumentNotFound
	default:
		return nil
	}
}

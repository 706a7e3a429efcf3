package userctx

import (
	"context"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// New returns context carrying the authenticated subject (user email)
func New(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

func FromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok
}

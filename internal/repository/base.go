// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"bizrwanda/internal/models"
	"bizrwanda/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation on
// PostgreSQL (SQLSTATE 23505) or SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// lookupError maps a single-row lookup failure to a not-found or internal AppError.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

// instrument opens a repository span and latency timer. The returned func
// must be called with the operation's final error.
func instrument(ctx context.Context, method, table string) (context.Context, func(error)) {
	done := observability.TrackQuery(method, table)
	ctx, span := observability.StartRepositorySpan(ctx, method, table)
	return ctx, func(err error) {
		done()
		endSpan(span, err)
	}
}

func endSpan(span trace.Span, err error) {
	// Not-found is an expected outcome, not a span failure.
	if models.IsNotFound(err) {
		err = nil
	}
	observability.EndSpan(span, err)
}

// likeEscape declares the escape character likePattern uses; SQLite has none by default.
const likeEscape = ` ESCAPE '\'`

// likePattern wraps a user-supplied fragment for a case-insensitive substring match.
func likePattern(fragment string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(fragment))) + "%"
}

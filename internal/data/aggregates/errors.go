package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

// MapError maps infrastructure failures into domain fault codes. Errors that
// already carry a fault code pass through untouched so service-level
// Conflict/NotFound decisions survive the data layer.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *faults.Error
	if errors.As(err, &fe) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return faults.Wrap(faults.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return faults.Wrap(faults.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return faults.Wrap(faults.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return faults.Wrap(faults.CodeConflict, op, err) // unique_violation
		case "23503":
			return faults.Wrap(faults.CodePreconditionFailed, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return faults.Wrap(faults.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint"), strings.Contains(msg, "already exists"):
		return faults.Wrap(faults.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return faults.Wrap(faults.CodeRetryable, op, err)
	default:
		return faults.Wrap(faults.CodeInternal, op, err)
	}
}

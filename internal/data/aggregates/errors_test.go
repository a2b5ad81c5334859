package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !faults.IsCode(err, faults.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23505"})
	if !faults.IsCode(err, faults.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_ForeignKeyViolation(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23503"})
	if !faults.IsCode(err, faults.CodePreconditionFailed) {
		t.Fatalf("expected precondition_failed code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_Deadlock(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "40P01"})
	if !faults.IsCode(err, faults.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_ContextCanceled(t *testing.T) {
	err := MapError("op", context.Canceled)
	if !faults.IsCode(err, faults.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_MessageFallback(t *testing.T) {
	err := MapError("op", errors.New(`duplicate key value violates unique constraint "idx"`))
	if !faults.IsCode(err, faults.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", faults.CodeOf(err), err)
	}
}

func TestMapError_PassthroughFault(t *testing.T) {
	in := faults.New(faults.CodeConflict, "op", "edge exists", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected fault passthrough, got %v", out)
	}
}

func TestMapError_UnknownBecomesInternal(t *testing.T) {
	err := MapError("op", errors.New("wire torn"))
	if !faults.IsCode(err, faults.CodeInternal) {
		t.Fatalf("expected internal code, got %q (%v)", faults.CodeOf(err), err)
	}
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainforge/trainforge-backend/internal/domain/faults"
)

// StatusOf maps a domain failure code onto an HTTP status.
func StatusOf(code faults.Code) int {
	switch code {
	case faults.CodeValidation:
		return http.StatusBadRequest
	case faults.CodeNotFound:
		return http.StatusNotFound
	case faults.CodeConflict, faults.CodeInvariantViolation:
		return http.StatusConflict
	case faults.CodePreconditionFailed:
		return http.StatusUnprocessableEntity
	case faults.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondFault translates a service error into the error envelope. Errors
// without a domain code fall through as 500/internal.
func RespondFault(c *gin.Context, err error) {
	code := faults.CodeOf(err)
	if code == "" {
		code = faults.CodeInternal
	}
	RespondError(c, StatusOf(code), string(code), err)
}

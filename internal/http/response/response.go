package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope. A nil err falls back to the code
// spelled out, so plain lookup misses do not need a manufactured error value.
func RespondError(c *gin.Context, status int, code string, err error) {
	var msg string
	switch {
	case err != nil:
		msg = err.Error()
	case code != "":
		msg = strings.ReplaceAll(code, "_", " ")
	default:
		msg = "unknown error"
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

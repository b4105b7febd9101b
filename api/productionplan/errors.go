package productionplan

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes not produced by the validator.
const (
	CodeInvalidJSON   = "INVALID_JSON"
	CodeInternalError = "INTERNAL_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidQuery  = "INVALID_QUERY"
	CodeNotFound      = "NOT_FOUND"
	CodeBodyTooLarge  = "BODY_TOO_LARGE"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes what went wrong.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func abortWithError(c *gin.Context, status int, code, msg, path string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg, Path: path}})
}

func badRequest(c *gin.Context, code, msg, path string) {
	abortWithError(c, http.StatusBadRequest, code, msg, path)
}

package response

import (
	"net/http"

	"stockroom/pkg/apperr"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ErrorKind  string      `json:"error_kind,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a classified application error onto the HTTP boundary:
// NotFound 404, FinalizedConflict 409, Unauthorized 403, InvalidArgument 400,
// LedgerInconsistency and anything unclassified 500.
func FromError(err error) (int, Response) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	msg := err.Error()
	if status == http.StatusInternalServerError && kind == apperr.KindUnknown {
		// Unclassified errors may carry storage details; keep them out of the body.
		msg = "internal server error"
	}

	return status, Response{
		Status:     "error",
		StatusCode: status,
		Error:      msg,
		ErrorKind:  kind.String(),
	}
}

package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/aliasgame/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomCodeTaken  = "ROOM_CODE_TAKEN"
	CodeInvalidStatus  = "INVALID_STATUS"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room code does not exist"}}
	case errors.Is(err, model.ErrRoomCodeTaken):
		return &httpError{http.StatusConflict, APIError{CodeRoomCodeTaken, "Room code is already in use"}}
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusConflict, APIError{CodeInvalidStatus, "Room status cannot change that way"}}
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Missing or invalid API key"}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, slow down"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// FromResponse maps a decoded error envelope back to a model error.
// Used by clients of the API.
func FromResponse(status int, apiErr APIError) error {
	switch apiErr.Code {
	case CodeRoomNotFound:
		return model.ErrRoomNotFound
	case CodeRoomCodeTaken:
		return model.ErrRoomCodeTaken
	case CodeInvalidStatus:
		return model.ErrInvalidStatus
	case CodeInvalidRequest:
		return &remoteError{status: status, apiError: apiErr, category: model.ErrValidation}
	}

	switch status {
	case http.StatusNotFound:
		return model.ErrRoomNotFound
	case http.StatusConflict:
		return model.ErrRoomCodeTaken
	}
	return &remoteError{status: status, apiError: apiErr}
}

// remoteError is an API failure with no model equivalent
type remoteError struct {
	status   int
	apiError APIError
	category error
}

func (e *remoteError) Error() string {
	if e.apiError.Code == "" {
		return http.StatusText(e.status)
	}
	return e.apiError.Message + " (" + e.apiError.Code + ")"
}

func (e *remoteError) Unwrap() error {
	return e.category
}

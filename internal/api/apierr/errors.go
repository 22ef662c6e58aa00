package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/auth"
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
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeWrongRoom        = "WRONG_ROOM"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeNotSeated        = "NOT_SEATED"
	CodeRoomFull         = "ROOM_FULL"
	CodeNameTaken        = "NAME_TAKEN"
	CodeInvalidName      = "INVALID_NAME"
	CodeNotYourTurn      = "NOT_YOUR_TURN"
	CodeInvalidCard      = "INVALID_CARD"
	CodeActionNotAllowed = "ACTION_NOT_ALLOWED"
	CodeRoundInProgress  = "ROUND_IN_PROGRESS"
	CodeMatchOver        = "MATCH_OVER"
	CodeSeatsVacant      = "SEATS_VACANT"
	CodeInternalError    = "INTERNAL_ERROR"
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

// Status returns the HTTP status err would be written with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrSeatNotFound):
		return &httpError{http.StatusForbidden, APIError{CodeNotSeated, "Not seated in this room"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Every seat is taken"}}
	case errors.Is(err, model.ErrNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNameTaken, "Name is already seated in this room"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Name must be 1 to 24 characters"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrInvalidCard):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCard, "No card at that index"}}
	case errors.Is(err, model.ErrHiddenNotAllowed),
		errors.Is(err, model.ErrRoundNotInProgress),
		errors.Is(err, model.ErrHandResolving),
		errors.Is(err, model.ErrTrucoPending),
		errors.Is(err, model.ErrTrucoNotAllowed),
		errors.Is(err, model.ErrNoTrucoPending),
		errors.Is(err, model.ErrTrucoMaxed):
		return &httpError{http.StatusConflict, APIError{CodeActionNotAllowed, err.Error()}}
	case errors.Is(err, model.ErrRoundInProgress):
		return &httpError{http.StatusConflict, APIError{CodeRoundInProgress, "Round is still in progress"}}
	case errors.Is(err, model.ErrMatchOver):
		return &httpError{http.StatusConflict, APIError{CodeMatchOver, "Match is over"}}
	case errors.Is(err, model.ErrSeatsVacant):
		return &httpError{http.StatusConflict, APIError{CodeSeatsVacant, "Not every seat is occupied"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

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
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewWrongRoomError is returned when a session is used against another room
func NewWrongRoomError() error {
	return &httpError{http.StatusForbidden, APIError{CodeWrongRoom, "Session belongs to another room"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

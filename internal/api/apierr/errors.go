package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/auth"
	"github.com/mcoot/courgette-crush/internal/services/bot"
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
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeSessionBusy        = "SESSION_BUSY"
	CodeNoMovesRemaining   = "NO_MOVES_REMAINING"
	CodeGameFinished       = "GAME_FINISHED"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeNotGameOwner       = "NOT_GAME_OWNER"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeHighScoreNotFound  = "HIGH_SCORE_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnknownStrategy    = "UNKNOWN_STRATEGY"
	CodeNoMoveAvailable    = "NO_MOVE_AVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
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

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrHighScoreNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHighScoreNotFound, "No high score yet"}}
	case errors.Is(err, model.ErrNotGameOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotGameOwner, "This game belongs to another player"}}
	case errors.Is(err, model.ErrInvalidCoordinates):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCoordinates, "Swap must name two adjacent cells on the board"}}
	case errors.Is(err, model.ErrSessionBusy):
		return &httpError{http.StatusConflict, APIError{CodeSessionBusy, "A swap is already being resolved"}}
	case errors.Is(err, model.ErrNoMovesRemaining):
		return &httpError{http.StatusConflict, APIError{CodeNoMovesRemaining, "No moves remaining"}}
	case errors.Is(err, model.ErrGameFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameFinished, "Game is already finished"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	// Map bot errors
	case errors.Is(err, bot.ErrUnknownStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownStrategy, "Unknown bot strategy"}}
	case errors.Is(err, bot.ErrNoMoveAvailable):
		return &httpError{http.StatusConflict, APIError{CodeNoMoveAvailable, "No swap on the board would match"}}

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

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

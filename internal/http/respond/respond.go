package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/dbgate/internal/common"
)

// Envelope is the body of every error response and of plain acknowledgements.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes payload as the response body.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("respond: encode payload failed", "err", err)
	}
}

// Message writes an acknowledgement using the common envelope.
func Message(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Code: status, Message: message})
}

// Fail classifies err and writes its fixed taxonomy message. Wrapped details
// never reach the client.
func Fail(w http.ResponseWriter, err error) {
	kind := common.Kind(err)
	Error(w, Status(kind), kind.Error())
}

// Status maps a taxonomy error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrTableNotFound),
		errors.Is(err, common.ErrColumnNotFound),
		errors.Is(err, common.ErrBackupNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrDuplicateUser),
		errors.Is(err, common.ErrDuplicateBackupName):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidBackupName),
		errors.Is(err, common.ErrInvalidRequestBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

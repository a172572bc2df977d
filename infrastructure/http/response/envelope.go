package response

import (
	"encoding/json"
	"net/http"

	"github.com/ledgerdesk/ledgerdesk/domain/apperror"
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Fields is a flat response body. Auth endpoints answer with top-level
// token and user keys instead of a data object.
type Fields map[string]interface{}

func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SuccessFields writes fields next to success and message.
func SuccessFields(w http.ResponseWriter, statusCode int, message string, fields Fields) {
	body := make(Fields, len(fields)+2)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	WriteJSON(w, statusCode, body)
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{
		Success: false,
		Message: message,
	})
}

// FromError renders err with its mapped status. Causes are never written.
func FromError(w http.ResponseWriter, err error) {
	Error(w, apperror.HTTPStatus(err), apperror.PublicMessage(err))
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, apperror.ErrInternal.Message)
}

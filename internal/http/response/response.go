// Package response provides the JSON envelope shared by every Rootmarks
// endpoint and helpers for handlers that write to http.ResponseWriter directly.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// Version is the envelope format version sent as "v".
const Version = 1

// Envelope provides a consistent JSON response structure.
//
// Simple errors carry only Error. Domain errors also carry Code, Message and
// optional Details so clients can branch on the code.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Wrap builds the success envelope for data.
func Wrap(data any) Envelope {
	return Envelope{Version: Version, Success: true, Data: data}
}

// WrapError builds the error envelope. code may be empty.
func WrapError(code, message string, details any) Envelope {
	return Envelope{
		Version: Version,
		Success: false,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	envelope := Wrap(data)
	envelope.Success = status < 400
	write(w, status, envelope, logger)
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	write(w, status, WrapError("", message, nil), logger)
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusBadRequest, message, logger)
}

// Unauthorized writes a 401 Unauthorized response.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusUnauthorized, message, logger)
}

// TooManyRequests writes a 429 response with a Retry-After header in whole
// seconds. retryAfterSeconds <= 0 omits the header.
func TooManyRequests(w http.ResponseWriter, message string, retryAfterSeconds int, logger *slog.Logger) {
	if retryAfterSeconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	}
	write(w, http.StatusTooManyRequests, WrapError(string(domainerrors.CodeRateLimited), message, nil), logger)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, message, logger)
}

// HandleError writes an appropriate HTTP response based on the error type.
// Domain and store errors keep their status; anything else becomes 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.Code == domainerrors.CodeInternal || domainErr.Code == domainerrors.CodeUnavailable {
			logError(logger, err)
		}
		write(w, domainErr.HTTPStatus(), WrapError(string(domainErr.Code), domainErr.Message, domainErr.Details), logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		Error(w, storeErr.HTTPCode(), storeErr.Message, logger)
		return
	}

	logError(logger, err)
	InternalError(w, "internal server error", logger)
}

func write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func logError(logger *slog.Logger, err error) {
	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/rootmarks/rootmarks-server/internal/errors"
	"github.com/rootmarks/rootmarks-server/internal/http/response"
	"github.com/rootmarks/rootmarks-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		fieldErrors := map[string]string{}

		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    statusToCode(storeErr.HTTPCode()),
					Message: storeErr.Message,
				}
			}

			var detailer huma.ErrorDetailer
			if errors.As(err, &detailer) {
				d := detailer.ErrorDetail()
				fieldErrors[strings.TrimPrefix(d.Location, "body.")] = d.Message
			}
		}

		// huma reports malformed bodies and params as 422; validation is 400 here.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		if len(fieldErrors) > 0 {
			apiErr.Details = fieldErrors
		}
		return apiErr
	}
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusRequestEntityTooLarge:
		return string(domainerrors.CodePayloadTooLarge)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return string(domainerrors.CodeUnavailable)
	default:
		return string(domainerrors.CodeInternal)
	}
}

// EnvelopeTransformer wraps every huma response body in the shared
// {v, success, data | error} envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, ok := v.(response.Envelope); ok {
		return v, nil
	}

	if err, ok := v.(error); ok {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return response.WrapError(apiErr.Code, apiErr.Message, apiErr.Details), nil
		}
		// Domain errors reach here as huma status errors of their own.
		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return response.WrapError(string(domainErr.Code), domainErr.Message, domainErr.Details), nil
		}
		var storeErr *store.Error
		if errors.As(err, &storeErr) {
			return response.WrapError(statusToCode(storeErr.HTTPCode()), storeErr.Message, nil), nil
		}
		return response.WrapError(string(domainerrors.CodeInternal), err.Error(), nil), nil
	}

	if len(status) > 0 && status[0] >= '4' {
		return response.Envelope{Version: response.Version, Success: false, Data: v}, nil
	}

	return response.Wrap(v), nil
}

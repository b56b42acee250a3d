package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrNotFound           = errors.New("core: resource not found")
	ErrForbidden          = errors.New("core: requester is not authorized for resource")
	ErrUnknownIntegration = errors.New("core: integration is not registered")
	ErrTokenInvalid       = errors.New("core: token rejected by live validation")
	ErrConflict           = errors.New("core: resource changed concurrently")
)

const (
	ConnectionsErrorBadInput           = "CONNECTIONS_BAD_INPUT"
	ConnectionsErrorInvalidFields      = "CONNECTIONS_INVALID_FIELDS"
	ConnectionsErrorNotFound           = "CONNECTIONS_NOT_FOUND"
	ConnectionsErrorForbidden          = "CONNECTIONS_FORBIDDEN"
	ConnectionsErrorUnknownIntegration = "CONNECTIONS_UNKNOWN_INTEGRATION"
	ConnectionsErrorTokenInvalid       = "CONNECTIONS_TOKEN_INVALID"
	ConnectionsErrorConflict           = "CONNECTIONS_CONFLICT"
	ConnectionsErrorInternal           = "CONNECTIONS_INTERNAL_ERROR"
)

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ConnectionsErrorNotFound)
	case errors.Is(err, ErrForbidden):
		return newServiceError(err.Error(), goerrors.CategoryAuthz, ConnectionsErrorForbidden)
	case errors.Is(err, ErrUnknownIntegration):
		return newServiceError(err.Error(), goerrors.CategoryNotFound, ConnectionsErrorUnknownIntegration)
	case errors.Is(err, ErrTokenInvalid):
		return newServiceError(err.Error(), goerrors.CategoryAuth, ConnectionsErrorTokenInvalid)
	case errors.Is(err, ErrConflict):
		return newServiceError(err.Error(), goerrors.CategoryConflict, ConnectionsErrorConflict)
	case errors.Is(err, ErrInvalidIntegrationType),
		errors.Is(err, ErrInvalidOwner),
		errors.Is(err, ErrInvalidConnectionStatusTransition):
		return newServiceError(err.Error(), goerrors.CategoryBadInput, ConnectionsErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func newServiceError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureServiceErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return ConnectionsErrorBadInput
	case goerrors.CategoryValidation:
		return ConnectionsErrorInvalidFields
	case goerrors.CategoryNotFound:
		return ConnectionsErrorNotFound
	case goerrors.CategoryAuth:
		return ConnectionsErrorTokenInvalid
	case goerrors.CategoryAuthz:
		return ConnectionsErrorForbidden
	case goerrors.CategoryConflict:
		return ConnectionsErrorConflict
	default:
		return ConnectionsErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

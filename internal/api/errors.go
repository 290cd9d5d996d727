package api

import (
	"errors"
	"net/http"

	"aihub/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Execution-class errors never reach here: they are recorded on the query
// record instead of surfacing as transport failures.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var load *domain.LoadError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &load):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

package httpadapter

import (
	"net/http"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrEmptyBatch):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAllExcluded):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrUnassignedFiles):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrBatchNotFound),
		domain.IsKind(err, domain.ErrPlanNotFound),
		domain.IsKind(err, domain.ErrUnitNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

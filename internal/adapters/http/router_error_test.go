package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bmenergia/document-organizer/internal/core/domain"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "op", errors.New("bad")), http.StatusBadRequest},
		{"empty batch", domain.WrapError(domain.ErrEmptyBatch, "op", errors.New("nothing")), http.StatusBadRequest},
		{"all excluded", domain.WrapError(domain.ErrAllExcluded, "op", errors.New("reserved")), http.StatusUnprocessableEntity},
		{"unassigned files", domain.WrapError(domain.ErrUnassignedFiles, "op", errors.New("pending")), http.StatusConflict},
		{"batch not found", domain.WrapError(domain.ErrBatchNotFound, "op", errors.New("gone")), http.StatusNotFound},
		{"plan not found", domain.ErrPlanNotFound, http.StatusNotFound},
		{"unit not found", domain.ErrUnitNotFound, http.StatusNotFound},
		{"temporary", domain.WrapError(domain.ErrTemporary, "op", errors.New("nats down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapErrorToHTTPStatus(tt.err); got != tt.want {
				t.Fatalf("mapErrorToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRouterSurfacesDomainErrors(t *testing.T) {
	fake := &serviceFake{err: domain.WrapError(domain.ErrBatchNotFound, "lookup batch", errors.New("no batch"))}
	res := doJSON(t, newHandler(fake), http.MethodGet, "/v1/batches/missing", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}

	fake = &serviceFake{err: domain.WrapError(domain.ErrUnassignedFiles, "finalize", errors.New("2 files pending"))}
	res = doJSON(t, newHandler(fake), http.MethodPost, "/v1/batches/batch-1/process", nil)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

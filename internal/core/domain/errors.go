package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBatchNotFound   = errors.New("batch not found")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrUnitNotFound    = errors.New("unit not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyBatch      = errors.New("empty batch")
	ErrAllExcluded     = errors.New("all files excluded")
	ErrUnassignedFiles = errors.New("manual files without folder")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

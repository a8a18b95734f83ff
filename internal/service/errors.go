package service

import (
	"errors"
	"fmt"
	"shopco-api/internal/apperr"

	"gorm.io/gorm"
)

// notFoundOr turns a missing-row error into a NotFound failure and wraps anything else.
func notFoundOr(err error, op string, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// conflictOr turns a unique-key violation into a Conflict failure and wraps anything else.
func conflictOr(err error, op string, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(format, args...).Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

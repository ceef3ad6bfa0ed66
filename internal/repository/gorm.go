package repository

import (
	"errors"

	"taskpoints-service/internal/apperr"

	"gorm.io/gorm"
)

// mapLookupError turns a gorm read error into the application taxonomy
func mapLookupError(err error, notFoundMessage string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.NotFound, notFoundMessage)
	}
	return apperr.Wrap(apperr.Backend, "database error", err)
}

// backendError wraps a gorm write error
func backendError(err error) error {
	return apperr.Wrap(apperr.Backend, "database error", err)
}

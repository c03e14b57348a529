// Package repos holds one repository per aggregate. Every operation returns
// the domain value plus an error whose apperr kind distinguishes NotFound,
// QueryError and SaveError; nothing here panics or throws.
package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulsefit/coach-backend/internal/platform/apperr"
)

func readErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what)
	}
	return apperr.New(apperr.KindQuery, err)
}

func writeErr(err error) error {
	return apperr.New(apperr.KindSave, err)
}

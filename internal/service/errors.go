package service

import (
	"errors"

	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

// notFoundAs maps a repository miss to the public NotFound error for resource
// and passes every other error through untouched.
func notFoundAs(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource)
	}
	return err
}

// Package usecase holds the orchestration functions of the lifecycle engine.
//
// Every function takes a context, the Deps bundle and an input DTO, and
// returns the resulting entity or a *domainerrors.Error. Functions never
// retry, never log and never swallow errors; the caller's transaction
// boundary decides whether to roll back.
package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"atelier/internal/ports"
	dErrors "atelier/pkg/domain-errors"
	"atelier/pkg/platform/sentinel"
)

// Recorder receives business counters. A nil Recorder is ignored.
type Recorder interface {
	IncRegistrationOutcome(outcome string)
	IncEventStatus(status string)
}

// Deps is the dependency bundle handed to every use-case.
type Deps struct {
	Users         ports.UserRepository
	Events        ports.EventRepository
	Registrations ports.RegistrationRepository
	Now           func() time.Time
	NewID         func() string
	Metrics       Recorder
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

// storeError maps adapter failures to domain errors. Errors that already
// carry a domain code pass through unchanged.
func storeError(err error, resource string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.NotFound(resource)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.AlreadyExists(resource)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, resource+"_store_failed")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}

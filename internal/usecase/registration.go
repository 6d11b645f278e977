package usecase

import (
	"context"
	"strings"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

// RegistrationOutcome says what RegisterParticipant did to the row.
type RegistrationOutcome string

const (
	OutcomeCreated     RegistrationOutcome = "created"
	OutcomeReactivated RegistrationOutcome = "reactivated"
	OutcomePromoted    RegistrationOutcome = "promoted"
	OutcomeUnchanged   RegistrationOutcome = "unchanged"
)

type RegisterParticipantInput struct {
	EventSlug      string
	UserIdentifier string
}

type ParticipantResult struct {
	Registration *models.Registration
	Idempotent   bool
	Outcome      RegistrationOutcome

	// PreviousStatus is set by RemoveParticipant so callers can tell a
	// no-show cancellation from a post-attendance one.
	PreviousStatus models.RegistrationStatus
}

// ParticipantInput names a registration by event slug and user id-or-email.
type ParticipantInput struct {
	EventSlug      string
	UserIdentifier string
}

// RegisterParticipant allocates a seat or a waitlist place.
//
// Capacity is compared against the live count of active registrations; at
// or above capacity the participant is waitlisted. A CANCELLED row is reused
// in place. A WAITLISTED row is promoted in place once a seat is free and
// otherwise returned untouched, as are REGISTERED and CHECKED_IN rows.
//
// The event is locked before the existing row is read. Callers must run this
// inside a TxRunner so the read, the count and the write are serialised per
// event.
func RegisterParticipant(ctx context.Context, d Deps, in RegisterParticipantInput) (*ParticipantResult, error) {
	event, user, err := resolveParticipant(ctx, d, in.EventSlug, in.UserIdentifier)
	if err != nil {
		return nil, err
	}
	if err := d.Events.LockEvent(ctx, event.ID); err != nil {
		return nil, storeError(err, "event")
	}

	existing, err := d.Registrations.FindByEventAndUser(ctx, event.ID, user.ID)
	if err != nil && !isNotFound(err) {
		return nil, storeError(err, "registration")
	}
	if existing != nil && existing.IsActive() {
		return d.unchanged(existing), nil
	}

	status, err := allocate(ctx, d, event)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		outcome := OutcomeReactivated
		if existing.Status == models.RegistrationWaitlisted {
			if status == models.RegistrationWaitlisted {
				return d.unchanged(existing), nil
			}
			outcome = OutcomePromoted
		}
		if _, err := lifecycle.Registration.Transition(existing.Status, status); err != nil {
			return nil, err
		}
		updated, err := d.Registrations.UpdateStatus(ctx, existing.ID, status)
		if err != nil {
			return nil, storeError(err, "registration")
		}
		d.recordOutcome(string(outcome))
		return &ParticipantResult{Registration: updated, Outcome: outcome}, nil
	}

	registrationID, err := id.ParseRegistrationID(d.newID())
	if err != nil {
		return nil, err
	}
	now := d.now()
	registration := &models.Registration{
		ID:        registrationID,
		EventID:   event.ID,
		UserID:    user.ID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.Registrations.Create(ctx, registration); err != nil {
		return nil, storeError(err, "registration")
	}
	d.recordOutcome(strings.ToLower(string(status)))
	return &ParticipantResult{Registration: registration, Outcome: OutcomeCreated}, nil
}

func (d Deps) unchanged(registration *models.Registration) *ParticipantResult {
	d.recordOutcome(string(OutcomeUnchanged))
	return &ParticipantResult{Registration: registration, Idempotent: true, Outcome: OutcomeUnchanged}
}

func allocate(ctx context.Context, d Deps, event *models.Event) (models.RegistrationStatus, error) {
	if event.HasUnlimitedCapacity() {
		return models.RegistrationRegistered, nil
	}
	active, err := d.Events.CountActiveRegistrations(ctx, event.ID)
	if err != nil {
		return "", storeError(err, "event")
	}
	if active >= *event.Capacity {
		return models.RegistrationWaitlisted, nil
	}
	return models.RegistrationRegistered, nil
}

// RemoveParticipant cancels a registration whatever its status.
// Removing an already-cancelled registration is a no-op.
func RemoveParticipant(ctx context.Context, d Deps, in ParticipantInput) (*ParticipantResult, error) {
	registration, err := findRegistration(ctx, d, in)
	if err != nil {
		return nil, err
	}
	previous := registration.Status
	if _, err := lifecycle.Registration.Transition(previous, models.RegistrationCancelled); err != nil {
		return nil, err
	}
	if previous == models.RegistrationCancelled {
		return &ParticipantResult{
			Registration:   registration,
			Idempotent:     true,
			Outcome:        OutcomeUnchanged,
			PreviousStatus: previous,
		}, nil
	}
	updated, err := d.Registrations.UpdateStatus(ctx, registration.ID, models.RegistrationCancelled)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	return &ParticipantResult{Registration: updated, PreviousStatus: previous}, nil
}

// CheckInParticipant marks attendance. Checking in twice is a no-op;
// checking in a cancelled registration fails with CancelledRegistrationCheckin.
func CheckInParticipant(ctx context.Context, d Deps, in ParticipantInput) (*ParticipantResult, error) {
	registration, err := findRegistration(ctx, d, in)
	if err != nil {
		return nil, err
	}
	if registration.Status == models.RegistrationCancelled {
		return nil, dErrors.CancelledRegistrationCheckin()
	}
	if _, err := lifecycle.Registration.Transition(registration.Status, models.RegistrationCheckedIn); err != nil {
		return nil, err
	}
	if registration.Status == models.RegistrationCheckedIn {
		return &ParticipantResult{Registration: registration, Idempotent: true, Outcome: OutcomeUnchanged}, nil
	}
	updated, err := d.Registrations.UpdateStatus(ctx, registration.ID, models.RegistrationCheckedIn)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	return &ParticipantResult{Registration: updated}, nil
}

// ListParticipants returns every registration for the event.
func ListParticipants(ctx context.Context, d Deps, eventSlug string) ([]*models.Registration, error) {
	event, err := findEvent(ctx, d, eventSlug)
	if err != nil {
		return nil, err
	}
	registrations, err := d.Registrations.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	return registrations, nil
}

func findRegistration(ctx context.Context, d Deps, in ParticipantInput) (*models.Registration, error) {
	event, user, err := resolveParticipant(ctx, d, in.EventSlug, in.UserIdentifier)
	if err != nil {
		return nil, err
	}
	registration, err := d.Registrations.FindByEventAndUser(ctx, event.ID, user.ID)
	if err != nil {
		return nil, storeError(err, "registration")
	}
	if registration == nil {
		return nil, dErrors.NotFound("registration")
	}
	return registration, nil
}

func resolveParticipant(ctx context.Context, d Deps, slug, identifier string) (*models.Event, *models.User, error) {
	event, err := findEvent(ctx, d, slug)
	if err != nil {
		return nil, nil, err
	}
	user, err := findUser(ctx, d, identifier)
	if err != nil {
		return nil, nil, err
	}
	return event, user, nil
}

func findEvent(ctx context.Context, d Deps, slug string) (*models.Event, error) {
	normalized := normalizeSlug(slug)
	if normalized == "" {
		return nil, dErrors.InvalidInput("event_slug_required")
	}
	event, err := d.Events.FindBySlug(ctx, normalized)
	if err != nil {
		return nil, storeError(err, "event")
	}
	if event == nil {
		return nil, dErrors.NotFound("event")
	}
	return event, nil
}

func findUser(ctx context.Context, d Deps, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, dErrors.InvalidInput("user_identifier_required")
	}
	if strings.Contains(identifier, "@") {
		identifier = strings.ToLower(identifier)
	}
	user, err := d.Users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if user == nil {
		return nil, dErrors.NotFound("user")
	}
	return user, nil
}

func (d Deps) recordOutcome(outcome string) {
	if d.Metrics != nil {
		d.Metrics.IncRegistrationOutcome(outcome)
	}
}

package usecase

import (
	"context"
	"maps"
	"net/url"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

const metadataCancellationReason = "cancellation_reason"

type CreateEventInput struct {
	Slug           string
	Title          string
	Description    string
	StartAt        time.Time
	EndAt          time.Time
	Timezone       string
	DeliveryMode   string
	EngagementType string
	LocationText   string
	MeetingURL     string
	Capacity       *int
	Metadata       map[string]any
	CreatedBy      string
}

// UpdateEventInput patches an event. Nil fields keep their current value.
type UpdateEventInput struct {
	Slug           string
	Title          *string
	Description    *string
	StartAt        *time.Time
	EndAt          *time.Time
	Timezone       *string
	DeliveryMode   *string
	EngagementType *string
	LocationText   *string
	MeetingURL     *string
	Capacity       *int

	// ClearCapacity makes the event unlimited; it wins over Capacity.
	ClearCapacity bool
	Metadata      map[string]any
}

type CancelEventInput struct {
	Slug   string
	Reason string
}

type EventResult struct {
	Event      *models.Event
	Idempotent bool
}

// CreateEvent validates and stores a DRAFT event with instructor TBA.
func CreateEvent(ctx context.Context, d Deps, in CreateEventInput) (*models.Event, error) {
	slug := normalizeSlug(in.Slug)
	if slug == "" {
		return nil, dErrors.InvalidInput("event_slug_required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, dErrors.InvalidInput("event_slug_invalid")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, dErrors.InvalidInput("event_title_required")
	}
	if err := validateSchedule(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}
	timezone, err := validateTimezone(in.Timezone)
	if err != nil {
		return nil, err
	}
	if err := validateCapacity(in.Capacity); err != nil {
		return nil, err
	}
	mode, err := models.ParseDeliveryMode(in.DeliveryMode)
	if err != nil {
		return nil, err
	}
	engagement := models.EngagementTraining
	if strings.TrimSpace(in.EngagementType) != "" {
		if engagement, err = models.ParseEngagementType(in.EngagementType); err != nil {
			return nil, err
		}
	}
	location := strings.TrimSpace(in.LocationText)
	meetingURL := strings.TrimSpace(in.MeetingURL)
	if err := validateLogistics(mode, location, meetingURL); err != nil {
		return nil, err
	}

	if existing, err := d.Events.FindBySlug(ctx, slug); err == nil && existing != nil {
		return nil, dErrors.AlreadyExists("event")
	} else if err != nil && !isNotFound(err) {
		return nil, storeError(err, "event")
	}

	eventID, err := id.ParseEventID(d.newID())
	if err != nil {
		return nil, err
	}
	now := d.now()
	event := &models.Event{
		ID:              eventID,
		Slug:            slug,
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		StartAt:         in.StartAt.UTC(),
		EndAt:           in.EndAt.UTC(),
		Timezone:        timezone,
		DeliveryMode:    mode,
		EngagementType:  engagement,
		LocationText:    location,
		MeetingURL:      meetingURL,
		InstructorState: models.InstructorTBA,
		Status:          models.EventStatusDraft,
		Capacity:        copyInt(in.Capacity),
		Metadata:        maps.Clone(in.Metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if strings.TrimSpace(in.CreatedBy) != "" {
		creator, err := id.ParseUserID(in.CreatedBy)
		if err != nil {
			return nil, err
		}
		event.CreatedBy = &creator
	}

	if err := d.Events.Create(ctx, event); err != nil {
		return nil, storeError(err, "event")
	}
	d.recordEventStatus(event.Status)
	return event, nil
}

// UpdateEvent applies the supplied fields, validating only what changed.
// Logistics are re-checked when any delivery field is supplied.
func UpdateEvent(ctx context.Context, d Deps, in UpdateEventInput) (*models.Event, error) {
	current, err := findEvent(ctx, d, in.Slug)
	if err != nil {
		return nil, err
	}
	if current.Status == models.EventStatusCancelled {
		return nil, dErrors.InvalidInput("event_cancelled")
	}
	event := current.Clone()

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, dErrors.InvalidInput("event_title_required")
		}
		event.Title = title
	}
	if in.Description != nil {
		event.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartAt != nil || in.EndAt != nil {
		if in.StartAt != nil {
			event.StartAt = in.StartAt.UTC()
		}
		if in.EndAt != nil {
			event.EndAt = in.EndAt.UTC()
		}
		if err := validateSchedule(event.StartAt, event.EndAt); err != nil {
			return nil, err
		}
	}
	if in.Timezone != nil {
		if event.Timezone, err = validateTimezone(*in.Timezone); err != nil {
			return nil, err
		}
	}
	if in.EngagementType != nil {
		if event.EngagementType, err = models.ParseEngagementType(*in.EngagementType); err != nil {
			return nil, err
		}
	}
	switch {
	case in.ClearCapacity:
		event.Capacity = nil
	case in.Capacity != nil:
		if err := validateCapacity(in.Capacity); err != nil {
			return nil, err
		}
		event.Capacity = copyInt(in.Capacity)
	}

	deliveryChanged := in.DeliveryMode != nil || in.LocationText != nil || in.MeetingURL != nil
	if in.DeliveryMode != nil {
		if event.DeliveryMode, err = models.ParseDeliveryMode(*in.DeliveryMode); err != nil {
			return nil, err
		}
	}
	if in.LocationText != nil {
		event.LocationText = strings.TrimSpace(*in.LocationText)
	}
	if in.MeetingURL != nil {
		event.MeetingURL = strings.TrimSpace(*in.MeetingURL)
	}
	if deliveryChanged {
		if err := validateLogistics(event.DeliveryMode, event.LocationText, event.MeetingURL); err != nil {
			return nil, err
		}
	}
	if in.Metadata != nil {
		if event.Metadata == nil {
			event.Metadata = map[string]any{}
		}
		maps.Copy(event.Metadata, in.Metadata)
	}

	event.UpdatedAt = d.now()
	if err := d.Events.Update(ctx, event); err != nil {
		return nil, storeError(err, "event")
	}
	return event, nil
}

// PublishEvent is idempotent: an already-published event is returned with
// Idempotent set and nothing is written.
func PublishEvent(ctx context.Context, d Deps, slug string) (*EventResult, error) {
	event, err := findEvent(ctx, d, slug)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventStatusPublished {
		return &EventResult{Event: event, Idempotent: true}, nil
	}
	next, err := lifecycle.Event.Transition(event.Status, models.EventStatusPublished)
	if err != nil {
		return nil, err
	}
	updated := event.Clone()
	updated.Status = next
	updated.UpdatedAt = d.now()
	if err := d.Events.Update(ctx, updated); err != nil {
		return nil, storeError(err, "event")
	}
	d.recordEventStatus(updated.Status)
	return &EventResult{Event: updated}, nil
}

// CancelEvent marks the event CANCELLED whatever its current status and
// keeps the reason in metadata. Cancelling twice rewrites the reason.
func CancelEvent(ctx context.Context, d Deps, in CancelEventInput) (*models.Event, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, dErrors.InvalidInput("cancellation_reason_required")
	}
	event, err := findEvent(ctx, d, in.Slug)
	if err != nil {
		return nil, err
	}
	updated := event.Clone()
	updated.Status = models.EventStatusCancelled
	if updated.Metadata == nil {
		updated.Metadata = map[string]any{}
	}
	updated.Metadata[metadataCancellationReason] = reason
	updated.UpdatedAt = d.now()
	if err := d.Events.Update(ctx, updated); err != nil {
		return nil, storeError(err, "event")
	}
	d.recordEventStatus(updated.Status)
	return updated, nil
}

func GetEvent(ctx context.Context, d Deps, slug string) (*models.Event, error) {
	return findEvent(ctx, d, slug)
}

func ListEvents(ctx context.Context, d Deps) ([]*models.Event, error) {
	events, err := d.Events.List(ctx)
	if err != nil {
		return nil, storeError(err, "event")
	}
	return events, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func validateSchedule(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return dErrors.InvalidInput("event_schedule_required")
	}
	if !start.Before(end) {
		return dErrors.InvalidInput("event_end_before_start")
	}
	return nil
}

// validateTimezone accepts IANA names only. "Local" depends on the host and
// is rejected.
func validateTimezone(tz string) (string, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return "", dErrors.InvalidInput("event_timezone_required")
	}
	if tz == "Local" {
		return "", dErrors.InvalidInput("event_timezone_invalid")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "event_timezone_invalid")
	}
	return loc.String(), nil
}

func validateCapacity(capacity *int) error {
	if capacity != nil && *capacity < 0 {
		return dErrors.InvalidInput("event_capacity_negative")
	}
	return nil
}

func validateLogistics(mode models.DeliveryMode, location, meetingURL string) error {
	if mode.RequiresMeetingURL() {
		if meetingURL == "" {
			return dErrors.InvalidInput("meeting_url_required")
		}
		u, err := url.Parse(meetingURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return dErrors.InvalidInput("meeting_url_invalid")
		}
	}
	if mode.RequiresLocation() && location == "" {
		return dErrors.InvalidInput("location_required")
	}
	return nil
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func (d Deps) recordEventStatus(status models.EventStatus) {
	if d.Metrics != nil {
		d.Metrics.IncEventStatus(string(status))
	}
}

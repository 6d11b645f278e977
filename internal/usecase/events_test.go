package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"atelier/internal/models"
	"atelier/internal/ports/mocks"
	dErrors "atelier/pkg/domain-errors"
)

func (s *LifecycleSuite) TestCreateEventValidation() {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	valid := func() CreateEventInput {
		return CreateEventInput{
			Slug:         "valid",
			Title:        "Valid",
			StartAt:      start,
			EndAt:        start.Add(2 * time.Hour),
			Timezone:     "UTC",
			DeliveryMode: "IN_PERSON",
			LocationText: "Room 4",
		}
	}

	cases := []struct {
		name    string
		mutate  func(*CreateEventInput)
		message string
	}{
		{"missing slug", func(in *CreateEventInput) { in.Slug = "" }, "event_slug_required"},
		{"bad slug", func(in *CreateEventInput) { in.Slug = "no spaces" }, "event_slug_invalid"},
		{"missing title", func(in *CreateEventInput) { in.Title = "  " }, "event_title_required"},
		{"missing schedule", func(in *CreateEventInput) { in.StartAt = time.Time{} }, "event_schedule_required"},
		{"end before start", func(in *CreateEventInput) { in.EndAt = start }, "event_end_before_start"},
		{"missing timezone", func(in *CreateEventInput) { in.Timezone = "" }, "event_timezone_required"},
		{"unknown timezone", func(in *CreateEventInput) { in.Timezone = "Mars/Olympus" }, "event_timezone_invalid"},
		{"local timezone", func(in *CreateEventInput) { in.Timezone = "Local" }, "event_timezone_invalid"},
		{"negative capacity", func(in *CreateEventInput) { in.Capacity = intPtr(-1) }, "event_capacity_negative"},
		{"in person without location", func(in *CreateEventInput) { in.LocationText = "" }, "location_required"},
		{"online without url", func(in *CreateEventInput) { in.DeliveryMode = "ONLINE" }, "meeting_url_required"},
		{"online with relative url", func(in *CreateEventInput) {
			in.DeliveryMode = "ONLINE"
			in.MeetingURL = "/room"
		}, "meeting_url_invalid"},
		{"hybrid needs both", func(in *CreateEventInput) {
			in.DeliveryMode = "HYBRID"
			in.MeetingURL = "ftp://meet.example.com"
		}, "meeting_url_invalid"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			in := valid()
			tc.mutate(&in)
			_, err := CreateEvent(s.ctx, s.deps, in)
			s.assertCode(err, dErrors.CodeInvalidInput, tc.message)
		})
	}

	s.Run("unknown delivery mode", func() {
		in := valid()
		in.DeliveryMode = "TELEPATHY"
		_, err := CreateEvent(s.ctx, s.deps, in)
		s.assertCode(err, dErrors.CodeInvalidInput, "")
	})

	s.Run("stores a draft with defaults", func() {
		event, err := CreateEvent(s.ctx, s.deps, valid())
		s.Require().NoError(err)
		s.Equal(models.EventStatusDraft, event.Status)
		s.Equal(models.InstructorTBA, event.InstructorState)
		s.Equal(models.EngagementTraining, event.EngagementType)
		s.True(event.HasUnlimitedCapacity())
		s.Equal(1, s.metrics.statuses["DRAFT"])
	})

	s.Run("duplicate slug", func() {
		in := valid()
		in.Slug = "VALID"
		_, err := CreateEvent(s.ctx, s.deps, in)
		s.assertCode(err, dErrors.CodeAlreadyExists, "event_already_exists")
	})
}

func (s *LifecycleSuite) TestEventLifecycle() {
	s.createEvent("lifecycle", intPtr(10))

	s.Run("publish then publish again", func() {
		first, err := PublishEvent(s.ctx, s.deps, "lifecycle")
		s.Require().NoError(err)
		s.False(first.Idempotent)
		s.Equal(models.EventStatusPublished, first.Event.Status)

		second, err := PublishEvent(s.ctx, s.deps, "lifecycle")
		s.Require().NoError(err)
		s.True(second.Idempotent)
	})

	s.Run("update patches only supplied fields", func() {
		title := "Renamed"
		event, err := UpdateEvent(s.ctx, s.deps, UpdateEventInput{Slug: "lifecycle", Title: &title, ClearCapacity: true})
		s.Require().NoError(err)
		s.Equal("Renamed", event.Title)
		s.Nil(event.Capacity)
		s.Equal("https://meet.example.com/go", event.MeetingURL)
	})

	s.Run("switching to in person requires a location", func() {
		mode := "IN_PERSON"
		_, err := UpdateEvent(s.ctx, s.deps, UpdateEventInput{Slug: "lifecycle", DeliveryMode: &mode})
		s.assertCode(err, dErrors.CodeInvalidInput, "location_required")
	})

	s.Run("cancel requires a reason", func() {
		_, err := CancelEvent(s.ctx, s.deps, CancelEventInput{Slug: "lifecycle"})
		s.assertCode(err, dErrors.CodeInvalidInput, "cancellation_reason_required")
	})

	s.Run("cancel twice rewrites the reason", func() {
		event, err := CancelEvent(s.ctx, s.deps, CancelEventInput{Slug: "lifecycle", Reason: "venue flooded"})
		s.Require().NoError(err)
		s.Equal(models.EventStatusCancelled, event.Status)

		event, err = CancelEvent(s.ctx, s.deps, CancelEventInput{Slug: "lifecycle", Reason: "instructor ill"})
		s.Require().NoError(err)
		s.Equal("instructor ill", event.Metadata["cancellation_reason"])
	})

	s.Run("cancelled events cannot be published or updated", func() {
		_, err := PublishEvent(s.ctx, s.deps, "lifecycle")
		s.assertCode(err, dErrors.CodeInvalidInput, "invalid_event_transition:CANCELLED->PUBLISHED")

		title := "Too late"
		_, err = UpdateEvent(s.ctx, s.deps, UpdateEventInput{Slug: "lifecycle", Title: &title})
		s.assertCode(err, dErrors.CodeInvalidInput, "event_cancelled")
	})

	s.Run("list and get", func() {
		events, err := ListEvents(s.ctx, s.deps)
		s.Require().NoError(err)
		s.Len(events, 1)

		event, err := GetEvent(s.ctx, s.deps, " Lifecycle ")
		s.Require().NoError(err)
		s.Equal("lifecycle", event.Slug)
	})
}

func TestPublishEventWritesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	d := Deps{Events: events}
	ctx := context.Background()

	draft := &models.Event{ID: "evt-1", Slug: "go", Status: models.EventStatusDraft}
	published := draft.Clone()
	published.Status = models.EventStatusPublished

	gomock.InOrder(
		events.EXPECT().FindBySlug(gomock.Any(), "go").Return(draft, nil),
		events.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e *models.Event) error {
			assert.Equal(t, models.EventStatusPublished, e.Status)
			return nil
		}).Times(1),
		events.EXPECT().FindBySlug(gomock.Any(), "go").Return(published, nil),
	)

	_, err := PublishEvent(ctx, d, "go")
	require.NoError(t, err)
	result, err := PublishEvent(ctx, d, "go")
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Equal(t, models.EventStatusDraft, draft.Status, "the stored copy is not mutated")
}

func TestEventStoreFailuresAreInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	events := mocks.NewMockEventRepository(ctrl)
	d := Deps{Events: events}
	boom := errors.New("connection reset")

	events.EXPECT().List(gomock.Any()).Return(nil, boom)
	_, err := ListEvents(context.Background(), d)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Equal(t, "event_store_failed", dErrors.MessageOf(err))
	assert.ErrorIs(t, err, boom)
}

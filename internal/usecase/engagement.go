package usecase

import (
	"strings"
	"time"
	"unicode/utf8"

	"atelier/internal/models"
	dErrors "atelier/pkg/domain-errors"
)

const (
	maxOutcomeNotes       = 2000
	defaultFollowUpWindow = 72 * time.Hour
)

// outcomeAliases maps normalised spellings to canonical outcomes. Keys are
// uppercased with spaces and dashes folded to underscores.
var outcomeAliases = map[string]models.EngagementOutcomeKind{
	"COMPLETED":   models.OutcomeCompleted,
	"COMPLETE":    models.OutcomeCompleted,
	"DONE":        models.OutcomeCompleted,
	"DELIVERED":   models.OutcomeCompleted,
	"PARTIAL":     models.OutcomePartial,
	"PARTIALLY":   models.OutcomePartial,
	"INCOMPLETE":  models.OutcomePartial,
	"NO_SHOW":     models.OutcomeNoShow,
	"NOSHOW":      models.OutcomeNoShow,
	"ABSENT":      models.OutcomeNoShow,
	"RESCHEDULED": models.OutcomeRescheduled,
	"RESCHEDULE":  models.OutcomeRescheduled,
	"POSTPONED":   models.OutcomeRescheduled,
	"CANCELLED":   models.OutcomeCancelled,
	"CANCELED":    models.OutcomeCancelled,
}

type EngagementOutcomeInput struct {
	Outcome    string
	Notes      string
	OccurredAt time.Time

	// FollowUpWithin defaults to 72h when zero.
	FollowUpWithin time.Duration
}

// NormalizeEngagementOutcome canonicalises a reported outcome. NO_SHOW,
// PARTIAL and RESCHEDULED require a follow-up due FollowUpWithin after the
// engagement.
func NormalizeEngagementOutcome(in EngagementOutcomeInput) (models.EngagementOutcome, error) {
	key := strings.ToUpper(strings.TrimSpace(in.Outcome))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	kind, ok := outcomeAliases[key]
	if !ok {
		return models.EngagementOutcome{}, dErrors.InvalidInput("engagement_outcome_invalid")
	}
	if in.OccurredAt.IsZero() {
		return models.EngagementOutcome{}, dErrors.InvalidInput("engagement_occurred_at_required")
	}
	if in.FollowUpWithin < 0 {
		return models.EngagementOutcome{}, dErrors.InvalidInput("follow_up_window_invalid")
	}

	out := models.EngagementOutcome{
		Outcome:    kind,
		Notes:      truncateRunes(strings.TrimSpace(in.Notes), maxOutcomeNotes),
		OccurredAt: in.OccurredAt,
	}
	switch kind {
	case models.OutcomeNoShow, models.OutcomePartial, models.OutcomeRescheduled:
		window := in.FollowUpWithin
		if window == 0 {
			window = defaultFollowUpWindow
		}
		due := in.OccurredAt.Add(window)
		out.FollowUpRequired = true
		out.FollowUpDueAt = &due
	}
	return out, nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

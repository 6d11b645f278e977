package lifecycle

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/models"
	dErrors "atelier/pkg/domain-errors"
)

// exhaustive checks every (from, to) pair against the machine's own table.
func exhaustive[S ~string](t *testing.T, m *Machine[S]) {
	t.Helper()
	for _, from := range m.States() {
		got, err := m.Transition(from, from)
		require.NoError(t, err, "%s self-transition %s", m.Scope(), from)
		assert.Equal(t, from, got)

		allowed := m.Targets(from)
		for _, to := range m.States() {
			if to == from {
				continue
			}
			got, err := m.Transition(from, to)
			if slices.Contains(allowed, to) {
				require.NoError(t, err, "%s %s->%s", m.Scope(), from, to)
				assert.Equal(t, to, got)
				continue
			}
			require.Error(t, err, "%s %s->%s", m.Scope(), from, to)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.Equal(t,
				"invalid_"+m.Scope()+"_transition:"+string(from)+"->"+string(to),
				dErrors.MessageOf(err))
		}
	}
}

func TestMachines_Exhaustive(t *testing.T) {
	t.Run("instructor", func(t *testing.T) { exhaustive(t, Instructor) })
	t.Run("deal", func(t *testing.T) { exhaustive(t, Deal) })
	t.Run("ledger", func(t *testing.T) { exhaustive(t, LedgerEntry) })
	t.Run("proposal", func(t *testing.T) { exhaustive(t, Proposal) })
	t.Run("invoice", func(t *testing.T) { exhaustive(t, Invoice) })
	t.Run("follow-up", func(t *testing.T) { exhaustive(t, FollowUp) })
	t.Run("user status", func(t *testing.T) { exhaustive(t, UserStatus) })
	t.Run("event", func(t *testing.T) { exhaustive(t, Event) })
	t.Run("registration", func(t *testing.T) { exhaustive(t, Registration) })
}

func TestRegistrationMachine(t *testing.T) {
	assert.False(t, Registration.Can(models.RegistrationRegistered, models.RegistrationWaitlisted), "seats are never demoted")
	assert.False(t, Registration.Can(models.RegistrationCancelled, models.RegistrationCheckedIn))
	assert.True(t, Registration.Can(models.RegistrationWaitlisted, models.RegistrationRegistered))
	assert.True(t, Registration.Can(models.RegistrationCheckedIn, models.RegistrationCancelled))
	for _, s := range Registration.States() {
		assert.False(t, Registration.IsTerminal(s), s)
	}
}

func TestMachines_Terminals(t *testing.T) {
	assert.True(t, Deal.IsTerminal(models.DealClosed))
	assert.True(t, Deal.IsTerminal(models.DealRefunded))
	assert.False(t, Deal.IsTerminal(models.DealDelivered))

	assert.True(t, LedgerEntry.IsTerminal(models.LedgerPaid))
	assert.True(t, LedgerEntry.IsTerminal(models.LedgerVoid))

	for _, s := range []models.ProposalStatus{models.ProposalAccepted, models.ProposalDeclined, models.ProposalExpired} {
		assert.True(t, Proposal.IsTerminal(s), s)
	}
	assert.True(t, Invoice.IsTerminal(models.InvoicePaid))
	assert.True(t, Invoice.IsTerminal(models.InvoiceVoid))
	assert.True(t, FollowUp.IsTerminal(models.FollowUpDone))
	assert.True(t, Event.IsTerminal(models.EventStatusCancelled))

	assert.False(t, Instructor.IsTerminal(models.InstructorConfirmed))
}

func TestMachine_UnknownState(t *testing.T) {
	_, err := Deal.Transition("ARCHIVED", models.DealQueued)
	require.Error(t, err)
	assert.Equal(t, "invalid_deal_state:ARCHIVED", dErrors.MessageOf(err))

	_, err = Deal.Transition(models.DealQueued, "ARCHIVED")
	require.Error(t, err)
	assert.False(t, Deal.Can(models.DealQueued, "ARCHIVED"))
	assert.False(t, Deal.IsTerminal("ARCHIVED"))
}

func TestMachine_InvoiceVoidFromAnyOpenState(t *testing.T) {
	for _, s := range Invoice.States() {
		if Invoice.IsTerminal(s) {
			continue
		}
		assert.True(t, Invoice.Can(s, models.InvoiceVoid), s)
	}
}

func TestNewMachine_PanicsOnUnlistedState(t *testing.T) {
	assert.Panics(t, func() {
		NewMachine("broken", []string{"A"}, map[string][]string{"A": {"B"}})
	})
}

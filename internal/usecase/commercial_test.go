package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

var commercialNow = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestTransitionDeal(t *testing.T) {
	deal := models.Deal{ID: "deal-1", Status: models.DealQueued, Amount: id.MustCents(150000, "EUR")}

	t.Run("assigning needs an assignee", func(t *testing.T) {
		_, err := TransitionDeal(deal, DealTransitionInput{Next: models.DealAssigned}, commercialNow)
		require.Error(t, err)
		assert.Equal(t, "deal_assignee_required", dErrors.MessageOf(err))
	})

	t.Run("walks to delivered", func(t *testing.T) {
		assignee := id.InstructorID("ins-1")
		d, err := TransitionDeal(deal, DealTransitionInput{Next: models.DealAssigned, AssigneeID: &assignee}, commercialNow)
		require.NoError(t, err)
		for _, next := range []models.DealStatus{models.DealMaestroApproved, models.DealPaid, models.DealInProgress, models.DealDelivered} {
			d, err = TransitionDeal(d, DealTransitionInput{Next: next}, commercialNow)
			require.NoError(t, err)
		}
		assert.Equal(t, models.DealDelivered, d.Status)
		assert.Equal(t, assignee, *d.AssigneeID)
		assert.Equal(t, commercialNow, d.UpdatedAt)
	})

	t.Run("skipping a step is rejected", func(t *testing.T) {
		_, err := TransitionDeal(deal, DealTransitionInput{Next: models.DealPaid}, commercialNow)
		require.Error(t, err)
		assert.Equal(t, "invalid_deal_transition:QUEUED->PAID", dErrors.MessageOf(err))
	})

	t.Run("refunded is terminal", func(t *testing.T) {
		refunded := deal
		refunded.Status = models.DealRefunded
		_, err := TransitionDeal(refunded, DealTransitionInput{Next: models.DealQueued}, commercialNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestLedgerEntries(t *testing.T) {
	assignee := id.InstructorID("ins-7")
	deal := models.Deal{
		ID:         "deal-1",
		Status:     models.DealDelivered,
		Amount:     id.MustCents(99999, "USD"),
		AssigneeID: &assignee,
	}

	t.Run("earns a floored share", func(t *testing.T) {
		entry, err := EarnLedgerEntry(deal, LedgerEntryInput{ID: "led-1", Rate: 0.7}, commercialNow)
		require.NoError(t, err)
		assert.Equal(t, int64(69999), entry.Amount.Amount())
		assert.Equal(t, models.LedgerEarned, entry.Status)
		assert.Equal(t, assignee, *entry.InstructorID)
	})

	t.Run("undelivered deals do not earn", func(t *testing.T) {
		paid := deal
		paid.Status = models.DealPaid
		_, err := EarnLedgerEntry(paid, LedgerEntryInput{ID: "led-1", Rate: 0.5}, commercialNow)
		assert.Equal(t, "deal_not_delivered", dErrors.MessageOf(err))
	})

	t.Run("requires an id", func(t *testing.T) {
		_, err := EarnLedgerEntry(deal, LedgerEntryInput{Rate: 0.5}, commercialNow)
		assert.Equal(t, "ledger_entry_id_required", dErrors.MessageOf(err))
	})

	t.Run("approve then pay, paid is terminal", func(t *testing.T) {
		entry, err := EarnLedgerEntry(deal, LedgerEntryInput{ID: "led-2", Rate: 1}, commercialNow)
		require.NoError(t, err)
		entry, err = TransitionLedgerEntry(entry, models.LedgerApproved, commercialNow)
		require.NoError(t, err)
		entry, err = TransitionLedgerEntry(entry, models.LedgerPaid, commercialNow)
		require.NoError(t, err)
		assert.Equal(t, models.LedgerPaid, entry.Status)

		_, err = TransitionLedgerEntry(entry, models.LedgerVoid, commercialNow)
		assert.Error(t, err)
	})
}

func TestTransitionProposal(t *testing.T) {
	p := models.Proposal{ID: "prop-1", Status: models.ProposalDraft, Amount: id.MustCents(5000, "USD")}

	sent, err := TransitionProposal(p, models.ProposalSent, commercialNow)
	require.NoError(t, err)
	require.NotNil(t, sent.SentAt)
	assert.Nil(t, sent.DecidedAt)

	decidedAt := commercialNow.Add(time.Hour)
	accepted, err := TransitionProposal(sent, models.ProposalAccepted, decidedAt)
	require.NoError(t, err)
	assert.Equal(t, decidedAt, *accepted.DecidedAt)
	assert.Equal(t, commercialNow, *accepted.SentAt)

	_, err = TransitionProposal(accepted, models.ProposalDeclined, decidedAt)
	assert.Equal(t, "invalid_proposal_transition:ACCEPTED->DECLINED", dErrors.MessageOf(err))
}

func TestInvoicePayments(t *testing.T) {
	draft := models.Invoice{ID: "inv-1", Status: models.InvoiceDraft, Total: id.MustCents(10000, "USD")}

	t.Run("draft is not payable", func(t *testing.T) {
		_, err := RecordInvoicePayment(draft, id.MustCents(100, "USD"), commercialNow)
		assert.Equal(t, "invoice_not_payable", dErrors.MessageOf(err))
	})

	issued, err := IssueInvoice(draft, commercialNow)
	require.NoError(t, err)
	require.NotNil(t, issued.IssuedAt)
	assert.True(t, issued.Paid.IsZero())
	assert.Equal(t, "USD", issued.Paid.Currency())

	t.Run("zero payment is rejected", func(t *testing.T) {
		_, err := RecordInvoicePayment(issued, id.MustCents(0, "USD"), commercialNow)
		assert.Equal(t, "payment_amount_required", dErrors.MessageOf(err))
	})

	t.Run("currency mismatch is rejected", func(t *testing.T) {
		_, err := RecordInvoicePayment(issued, id.MustCents(100, "EUR"), commercialNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("partial then full", func(t *testing.T) {
		partial, err := RecordInvoicePayment(issued, id.MustCents(4000, "USD"), commercialNow)
		require.NoError(t, err)
		assert.Equal(t, models.InvoicePartiallyPaid, partial.Status)
		balance, err := partial.Balance()
		require.NoError(t, err)
		assert.Equal(t, int64(6000), balance.Amount())
		assert.Nil(t, partial.PaidAt)

		paid, err := RecordInvoicePayment(partial, id.MustCents(7000, "USD"), commercialNow)
		require.NoError(t, err)
		assert.Equal(t, models.InvoicePaid, paid.Status)
		balance, err = paid.Balance()
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
		require.NotNil(t, paid.PaidAt)

		_, err = VoidInvoice(paid, commercialNow)
		assert.Error(t, err, "paid invoices cannot be voided")
	})

	t.Run("void from issued", func(t *testing.T) {
		voided, err := VoidInvoice(issued, commercialNow)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceVoid, voided.Status)
		require.NotNil(t, voided.VoidedAt)
	})
}

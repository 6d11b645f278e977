package usecase

import (
	"time"

	"atelier/internal/lifecycle"
	"atelier/internal/models"
	id "atelier/pkg/domain"
	dErrors "atelier/pkg/domain-errors"
)

// The commercial lifecycle is pure: each function returns an updated copy
// and the caller persists it.

type DealTransitionInput struct {
	Next       models.DealStatus
	AssigneeID *id.InstructorID
}

// TransitionDeal moves a deal. Entering ASSIGNED requires an assignee, either
// supplied or already on the deal.
func TransitionDeal(deal models.Deal, in DealTransitionInput, now time.Time) (models.Deal, error) {
	next, err := lifecycle.Deal.Transition(deal.Status, in.Next)
	if err != nil {
		return models.Deal{}, err
	}
	if next == deal.Status {
		return deal, nil
	}
	if in.AssigneeID != nil && !in.AssigneeID.IsNil() {
		assignee := *in.AssigneeID
		deal.AssigneeID = &assignee
	}
	if next == models.DealAssigned && (deal.AssigneeID == nil || deal.AssigneeID.IsNil()) {
		return models.Deal{}, dErrors.InvalidInput("deal_assignee_required")
	}
	deal.Status = next
	deal.UpdatedAt = now
	return deal, nil
}

type LedgerEntryInput struct {
	ID   id.LedgerEntryID
	Rate float64
}

// EarnLedgerEntry credits the assignee with rate of the deal amount, floored
// to whole cents. Only delivered or closed deals earn.
func EarnLedgerEntry(deal models.Deal, in LedgerEntryInput, now time.Time) (models.LedgerEntry, error) {
	if deal.Status != models.DealDelivered && deal.Status != models.DealClosed {
		return models.LedgerEntry{}, dErrors.InvalidInput("deal_not_delivered")
	}
	if in.ID.IsNil() {
		return models.LedgerEntry{}, dErrors.InvalidInput("ledger_entry_id_required")
	}
	amount, err := deal.Amount.MultiplyRate(in.Rate)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	entry := models.LedgerEntry{
		ID:        in.ID,
		DealID:    deal.ID,
		Amount:    amount,
		Rate:      in.Rate,
		Status:    models.LedgerEarned,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if deal.AssigneeID != nil {
		assignee := *deal.AssigneeID
		entry.InstructorID = &assignee
	}
	return entry, nil
}

func TransitionLedgerEntry(entry models.LedgerEntry, next models.LedgerEntryStatus, now time.Time) (models.LedgerEntry, error) {
	to, err := lifecycle.LedgerEntry.Transition(entry.Status, next)
	if err != nil {
		return models.LedgerEntry{}, err
	}
	if to == entry.Status {
		return entry, nil
	}
	entry.Status = to
	entry.UpdatedAt = now
	return entry, nil
}

// TransitionProposal stamps SentAt on SENT and DecidedAt on any decision.
func TransitionProposal(proposal models.Proposal, next models.ProposalStatus, now time.Time) (models.Proposal, error) {
	to, err := lifecycle.Proposal.Transition(proposal.Status, next)
	if err != nil {
		return models.Proposal{}, err
	}
	if to == proposal.Status {
		return proposal, nil
	}
	stamp := now
	switch to {
	case models.ProposalSent:
		proposal.SentAt = &stamp
	case models.ProposalAccepted, models.ProposalDeclined, models.ProposalExpired:
		proposal.DecidedAt = &stamp
	}
	proposal.Status = to
	proposal.UpdatedAt = now
	return proposal, nil
}

// IssueInvoice moves a DRAFT invoice to ISSUED with nothing paid yet.
func IssueInvoice(invoice models.Invoice, now time.Time) (models.Invoice, error) {
	to, err := lifecycle.Invoice.Transition(invoice.Status, models.InvoiceIssued)
	if err != nil {
		return models.Invoice{}, err
	}
	if to == invoice.Status {
		return invoice, nil
	}
	if invoice.Paid.Currency() == "" {
		zero, err := id.Cents(0, invoice.Total.Currency())
		if err != nil {
			return models.Invoice{}, err
		}
		invoice.Paid = zero
	}
	stamp := now
	invoice.IssuedAt = &stamp
	invoice.Status = to
	invoice.UpdatedAt = now
	return invoice, nil
}

// RecordInvoicePayment adds payment to the paid total. Reaching the invoice
// total marks it PAID; anything less is PARTIALLY_PAID.
func RecordInvoicePayment(invoice models.Invoice, payment id.Money, now time.Time) (models.Invoice, error) {
	if invoice.Status != models.InvoiceIssued && invoice.Status != models.InvoicePartiallyPaid {
		return models.Invoice{}, dErrors.InvalidInput("invoice_not_payable")
	}
	if payment.IsZero() {
		return models.Invoice{}, dErrors.InvalidInput("payment_amount_required")
	}
	paid := invoice.Paid
	if paid.Currency() == "" {
		zero, err := id.Cents(0, invoice.Total.Currency())
		if err != nil {
			return models.Invoice{}, err
		}
		paid = zero
	}
	paid, err := paid.Add(payment)
	if err != nil {
		return models.Invoice{}, err
	}
	settled, err := paid.GreaterOrEqual(invoice.Total)
	if err != nil {
		return models.Invoice{}, err
	}
	target := models.InvoicePartiallyPaid
	if settled {
		target = models.InvoicePaid
	}
	to, err := lifecycle.Invoice.Transition(invoice.Status, target)
	if err != nil {
		return models.Invoice{}, err
	}
	invoice.Paid = paid
	invoice.Status = to
	invoice.UpdatedAt = now
	if to == models.InvoicePaid {
		stamp := now
		invoice.PaidAt = &stamp
	}
	return invoice, nil
}

func VoidInvoice(invoice models.Invoice, now time.Time) (models.Invoice, error) {
	to, err := lifecycle.Invoice.Transition(invoice.Status, models.InvoiceVoid)
	if err != nil {
		return models.Invoice{}, err
	}
	if to == invoice.Status {
		return invoice, nil
	}
	stamp := now
	invoice.VoidedAt = &stamp
	invoice.Status = to
	invoice.UpdatedAt = now
	return invoice, nil
}

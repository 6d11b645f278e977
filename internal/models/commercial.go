package models

import (
	"time"

	id "atelier/pkg/domain"
)

type DealStatus string

const (
	DealQueued          DealStatus = "QUEUED"
	DealAssigned        DealStatus = "ASSIGNED"
	DealMaestroApproved DealStatus = "MAESTRO_APPROVED"
	DealPaid            DealStatus = "PAID"
	DealInProgress      DealStatus = "IN_PROGRESS"
	DealDelivered       DealStatus = "DELIVERED"
	DealClosed          DealStatus = "CLOSED"
	DealRefunded        DealStatus = "REFUNDED"
)

var dealStatuses = []DealStatus{
	DealQueued, DealAssigned, DealMaestroApproved, DealPaid,
	DealInProgress, DealDelivered, DealClosed, DealRefunded,
}

func ParseDealStatus(s string) (DealStatus, error) {
	return parseEnum("deal", s, dealStatuses)
}

// Deal is a sold engagement moving from intake to delivery.
type Deal struct {
	ID         id.DealID        `json:"id"`
	EventID    *id.EventID      `json:"event_id,omitempty"`
	Title      string           `json:"title"`
	Amount     id.Money         `json:"amount"`
	Status     DealStatus       `json:"status"`
	AssigneeID *id.InstructorID `json:"assignee_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type LedgerEntryStatus string

const (
	LedgerEarned   LedgerEntryStatus = "EARNED"
	LedgerApproved LedgerEntryStatus = "APPROVED"
	LedgerPaid     LedgerEntryStatus = "PAID"
	LedgerVoid     LedgerEntryStatus = "VOID"
)

var ledgerStatuses = []LedgerEntryStatus{LedgerEarned, LedgerApproved, LedgerPaid, LedgerVoid}

func ParseLedgerEntryStatus(s string) (LedgerEntryStatus, error) {
	return parseEnum("ledger_entry", s, ledgerStatuses)
}

// LedgerEntry is an instructor payout earned from a delivered deal.
type LedgerEntry struct {
	ID           id.LedgerEntryID  `json:"id"`
	DealID       id.DealID         `json:"deal_id"`
	InstructorID *id.InstructorID  `json:"instructor_id,omitempty"`
	Amount       id.Money          `json:"amount"`
	Rate         float64           `json:"rate"`
	Status       LedgerEntryStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "DRAFT"
	ProposalSent     ProposalStatus = "SENT"
	ProposalAccepted ProposalStatus = "ACCEPTED"
	ProposalDeclined ProposalStatus = "DECLINED"
	ProposalExpired  ProposalStatus = "EXPIRED"
)

var proposalStatuses = []ProposalStatus{
	ProposalDraft, ProposalSent, ProposalAccepted, ProposalDeclined, ProposalExpired,
}

func ParseProposalStatus(s string) (ProposalStatus, error) {
	return parseEnum("proposal", s, proposalStatuses)
}

type Proposal struct {
	ID        id.ProposalID  `json:"id"`
	DealID    *id.DealID     `json:"deal_id,omitempty"`
	Amount    id.Money       `json:"amount"`
	Status    ProposalStatus `json:"status"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
	DecidedAt *time.Time     `json:"decided_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceIssued        InvoiceStatus = "ISSUED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceVoid          InvoiceStatus = "VOID"
)

var invoiceStatuses = []InvoiceStatus{
	InvoiceDraft, InvoiceIssued, InvoicePartiallyPaid, InvoicePaid, InvoiceVoid,
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	return parseEnum("invoice", s, invoiceStatuses)
}

// Invoice bills a deal. Paid accumulates in the invoice currency.
type Invoice struct {
	ID        id.InvoiceID  `json:"id"`
	DealID    *id.DealID    `json:"deal_id,omitempty"`
	Total     id.Money      `json:"total"`
	Paid      id.Money      `json:"paid"`
	Status    InvoiceStatus `json:"status"`
	IssuedAt  *time.Time    `json:"issued_at,omitempty"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
	VoidedAt  *time.Time    `json:"voided_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Balance is the outstanding amount, never negative.
func (i *Invoice) Balance() (id.Money, error) {
	return i.Total.Subtract(i.Paid)
}

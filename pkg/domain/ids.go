package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	dErrors "atelier/pkg/domain-errors"
)

// maxIDLength bounds identifiers accepted at trust boundaries.
const maxIDLength = 128

// Branded identifiers. They are plain strings at runtime, but distinct named
// types so a UserID can never be passed where a DealID is expected.
//
// Usage: construct via the ParseXxxID functions at trust boundaries; a direct
// cast bypasses validation and is reserved for stores rehydrating rows.
type (
	UserID         string
	EventID        string
	RegistrationID string
	InstructorID   string
	DealID         string
	LedgerEntryID  string
	ProposalID     string
	InvoiceID      string
	FollowUpID     string
	RoleID         string
)

// parseID trims s and rejects empty, oversized and control-character input.
func parseID[T ~string](kind, s string) (T, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.InvalidInput(kind + "_id_required")
	}
	if len(trimmed) > maxIDLength || !utf8.ValidString(trimmed) {
		return "", dErrors.InvalidInput("invalid_" + kind + "_id")
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) || unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			return "", dErrors.InvalidInput("invalid_" + kind + "_id")
		}
	}
	return T(trimmed), nil
}

func ParseUserID(s string) (UserID, error)                 { return parseID[UserID]("user", s) }
func ParseEventID(s string) (EventID, error)               { return parseID[EventID]("event", s) }
func ParseRegistrationID(s string) (RegistrationID, error) { return parseID[RegistrationID]("registration", s) }
func ParseInstructorID(s string) (InstructorID, error)     { return parseID[InstructorID]("instructor", s) }
func ParseDealID(s string) (DealID, error)                 { return parseID[DealID]("deal", s) }
func ParseLedgerEntryID(s string) (LedgerEntryID, error)   { return parseID[LedgerEntryID]("ledger_entry", s) }
func ParseProposalID(s string) (ProposalID, error)         { return parseID[ProposalID]("proposal", s) }
func ParseInvoiceID(s string) (InvoiceID, error)           { return parseID[InvoiceID]("invoice", s) }
func ParseFollowUpID(s string) (FollowUpID, error)         { return parseID[FollowUpID]("follow_up", s) }
func ParseRoleID(s string) (RoleID, error)                 { return parseID[RoleID]("role", s) }

func (id UserID) String() string         { return string(id) }
func (id EventID) String() string        { return string(id) }
func (id RegistrationID) String() string { return string(id) }
func (id InstructorID) String() string   { return string(id) }
func (id DealID) String() string         { return string(id) }
func (id LedgerEntryID) String() string  { return string(id) }
func (id ProposalID) String() string     { return string(id) }
func (id InvoiceID) String() string      { return string(id) }
func (id FollowUpID) String() string     { return string(id) }
func (id RoleID) String() string         { return string(id) }

func (id UserID) IsNil() bool         { return id == "" }
func (id EventID) IsNil() bool        { return id == "" }
func (id RegistrationID) IsNil() bool { return id == "" }
func (id InstructorID) IsNil() bool   { return id == "" }
func (id DealID) IsNil() bool         { return id == "" }
func (id LedgerEntryID) IsNil() bool  { return id == "" }
func (id ProposalID) IsNil() bool     { return id == "" }
func (id InvoiceID) IsNil() bool      { return id == "" }
func (id FollowUpID) IsNil() bool     { return id == "" }
func (id RoleID) IsNil() bool         { return id == "" }

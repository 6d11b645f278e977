package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "atelier/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// "IDs must be non-empty, trimmed, printable strings"
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, "user_id_required", dErrors.MessageOf(err))
	})

	t.Run("rejects whitespace only", func(t *testing.T) {
		_, err := ParseDealID(" \t\n ")
		require.Error(t, err)
		assert.Equal(t, "deal_id_required", dErrors.MessageOf(err))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		id, err := ParseEventID("  evt-42 ")
		require.NoError(t, err)
		assert.Equal(t, EventID("evt-42"), id)
	})
}

func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Null byte injection", "usr\x00-1", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "usr\u200b1", true},
		{"Inner whitespace", "usr 1", true},
		{"Invalid UTF-8", string([]byte{0xff, 0xfe}), true},
		{"UUID", "550e8400-e29b-41d4-a716-446655440000", false},
		{"Slug-like", "inst-ada", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInstructorID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures every branded ID parses identically.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	parsers := map[string]func(string) error{
		"user":         func(s string) error { _, err := ParseUserID(s); return err },
		"event":        func(s string) error { _, err := ParseEventID(s); return err },
		"registration": func(s string) error { _, err := ParseRegistrationID(s); return err },
		"instructor":   func(s string) error { _, err := ParseInstructorID(s); return err },
		"deal":         func(s string) error { _, err := ParseDealID(s); return err },
		"ledger_entry": func(s string) error { _, err := ParseLedgerEntryID(s); return err },
		"proposal":     func(s string) error { _, err := ParseProposalID(s); return err },
		"invoice":      func(s string) error { _, err := ParseInvoiceID(s); return err },
		"follow_up":    func(s string) error { _, err := ParseFollowUpID(s); return err },
		"role":         func(s string) error { _, err := ParseRoleID(s); return err },
	}

	for kind, parse := range parsers {
		t.Run(kind, func(t *testing.T) {
			require.NoError(t, parse("abc-123"))
			err := parse("   ")
			require.Error(t, err)
			assert.Equal(t, kind+"_id_required", dErrors.MessageOf(err))
		})
	}
}

// TestTypeDistinction documents the compile-time invariant: the following
// would not compile if the types were aliases.
//
//	var _ UserID = DealID("x")
//	var _ DealID = UserID("x")
func TestTypeDistinction(t *testing.T) {
	user := UserID("same")
	deal := DealID("same")
	assert.Equal(t, user.String(), deal.String())
	assert.False(t, user.IsNil())
	assert.True(t, DealID("").IsNil())
}

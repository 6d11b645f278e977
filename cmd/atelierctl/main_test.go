package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "atelier/pkg/domain-errors"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"usage", fmt.Errorf("%w: bad flag", errUsage), exitInvalid},
		{"invalid input", dErrors.InvalidInput("email_invalid"), exitInvalid},
		{"not found", dErrors.NotFound("event"), exitNotFound},
		{"role not found", dErrors.RoleNotFound("guest"), exitNotFound},
		{"already exists", dErrors.AlreadyExists("user"), exitAlreadyExists},
		{"cancelled check-in", dErrors.CancelledRegistrationCheckin(), exitCancelledCheckin},
		{"forbidden", dErrors.RoleForbidden("admin"), exitForbidden},
		{"foreign", errors.New("connection refused"), exitFailure},
		{"internal", dErrors.New(dErrors.CodeInternal, "event_store_failed"), exitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("ATELIER_STORE", "memory")
	t.Setenv("ATELIER_AUDIT_SINK", "memory")
	t.Setenv("ATELIER_JWT_SIGNING_KEY", "cli-test-key")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunUserRegister(t *testing.T) {
	code, stdout, _ := runCLI(t, "user", "register", "--email", "Ada@Example.com")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"email": "ada@example.com"`)
}

func TestRunInvalidEmail(t *testing.T) {
	code, _, stderr := runCLI(t, "user", "register", "--email", "not-an-email")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "email_invalid")
}

func TestRunMissingEvent(t *testing.T) {
	code, _, _ := runCLI(t, "event", "publish", "--slug", "nope")
	assert.Equal(t, exitNotFound, code)
}

func TestRunUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"event"},
		{"event", "explode"},
		{"migrate", "sideways"},
		{"event", "create", "--start", "yesterday"},
		{"user", "register", "extra"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, exitInvalid, code)
			assert.Contains(t, stderr, "usage: atelierctl")
		})
	}
}

func TestRunMigrateNeedsPostgres(t *testing.T) {
	code, _, stderr := runCLI(t, "migrate", "up")
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, stderr, "ATELIER_STORE=postgres")
}

func TestRunTokenIssue(t *testing.T) {
	code, stdout, _ := runCLI(t, "token", "issue", "--user", "usr-1", "--roles", "admin, staff")
	require.Equal(t, exitOK, code)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(stdout), "."))
}

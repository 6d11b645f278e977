// Command atelierctl drives the lifecycle engine from the shell against the
// store selected by ATELIER_* variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"atelier/internal/platform/config"
	"atelier/internal/platform/logger"
	dErrors "atelier/pkg/domain-errors"
)

const (
	exitOK               = 0
	exitFailure          = 1
	exitInvalid          = 2
	exitNotFound         = 3
	exitAlreadyExists    = 4
	exitCancelledCheckin = 5
	exitForbidden        = 6
)

const usage = `usage: atelierctl <command> [flags]

commands:
  migrate up|down
  user register --email EMAIL
  event create --slug SLUG --title TITLE --start RFC3339 --end RFC3339 [flags]
  event publish --slug SLUG
  event cancel --slug SLUG --reason REASON
  event list
  participant register --event SLUG --user ID_OR_EMAIL
  participant remove --event SLUG --user ID_OR_EMAIL
  participant check-in --event SLUG --user ID_OR_EMAIL
  participant list --event SLUG
  token issue --user ID [--roles admin,staff] [--ttl 1h]
`

// errUsage marks malformed invocations.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitInvalid
	}
	c := &cli{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		logger: logger.NewWithWriter(stderr, cfg.Log.Level, cfg.Log.Format),
	}
	defer c.close()

	if err := c.dispatch(ctx, args); err != nil {
		fmt.Fprintln(stderr, "error:", describe(err))
		if errors.Is(err, errUsage) {
			fmt.Fprint(stderr, usage)
		}
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, errUsage) {
		return exitInvalid
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInvalidInput:
		return exitInvalid
	case dErrors.CodeNotFound, dErrors.CodeRoleNotFound:
		return exitNotFound
	case dErrors.CodeAlreadyExists:
		return exitAlreadyExists
	case dErrors.CodeCancelledRegistrationCheckin:
		return exitCancelledCheckin
	case dErrors.CodeRoleForbidden, dErrors.CodeUnauthorized:
		return exitForbidden
	default:
		return exitFailure
	}
}

func describe(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return fmt.Sprintf("%s: %s", de.Code, dErrors.MessageOf(err))
	}
	return err.Error()
}

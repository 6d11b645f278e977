package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"atelier/internal/app"
	"atelier/internal/audited"
	"atelier/internal/platform/config"
	"atelier/internal/store/postgres"
	"atelier/internal/usecase"
	id "atelier/pkg/domain"
	audit "atelier/pkg/platform/audit"
	"atelier/pkg/platform/middleware/auth"
	platformstrings "atelier/pkg/platform/strings"
	"atelier/pkg/requestcontext"
)

type cli struct {
	cfg    config.Server
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
	app    *app.App
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			c.logger.Warn("close dependencies", "error", err)
		}
	}
}

// deps builds the dependency graph on first use.
func (c *cli) deps(ctx context.Context) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.Build(ctx, c.cfg, c.logger, nil)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	group, rest := args[0], args[1:]
	if group == "migrate" {
		return c.migrate(ctx, rest)
	}
	if len(rest) == 0 {
		return errUsage
	}
	verb, flags := rest[0], rest[1:]

	ctx = requestcontext.WithRequestID(ctx, "cli-"+uuid.NewString())
	switch group + " " + verb {
	case "user register":
		return c.userRegister(ctx, flags)
	case "event create":
		return c.eventCreate(ctx, flags)
	case "event publish":
		return c.eventPublish(ctx, flags)
	case "event cancel":
		return c.eventCancel(ctx, flags)
	case "event list":
		return c.eventList(ctx)
	case "participant register":
		return c.participant(ctx, flags, audit.ActionParticipantAdded, func(ctx context.Context, d usecase.Deps, in usecase.ParticipantInput) (*usecase.ParticipantResult, error) {
			return usecase.RegisterParticipant(ctx, d, usecase.RegisterParticipantInput(in))
		})
	case "participant remove":
		return c.participant(ctx, flags, audit.ActionParticipantRemoved, usecase.RemoveParticipant)
	case "participant check-in":
		return c.participant(ctx, flags, audit.ActionParticipantCheckedIn, usecase.CheckInParticipant)
	case "participant list":
		return c.participantList(ctx, flags)
	case "token issue":
		return c.tokenIssue(flags)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, group+" "+verb)
	}
}

func (c *cli) migrate(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "up" && args[0] != "down") {
		return errUsage
	}
	if c.cfg.Store != config.StorePostgres {
		return fmt.Errorf("%w: migrate requires ATELIER_STORE=postgres", errUsage)
	}
	a, err := c.deps(ctx)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(a.DB, args[0]); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "migrations applied", "direction", args[0])
	return nil
}

// mutate runs fn in one transaction with journaled repositories.
func (c *cli) mutate(ctx context.Context, action string, fn func(ctx context.Context, d usecase.Deps) error) error {
	a, err := c.deps(ctx)
	if err != nil {
		return err
	}
	return a.Tx.RunInTx(ctx, func(ctx context.Context) error {
		return fn(ctx, audited.Wrap(a.Deps, a.Journal, audited.Options{Action: action}))
	})
}

func (c *cli) userRegister(ctx context.Context, args []string) error {
	fs := newFlagSet("user register", c.stderr)
	email := fs.String("email", "", "email address")
	if err := parse(fs, args); err != nil {
		return err
	}

	return c.mutate(ctx, audit.ActionUserRegistered, func(ctx context.Context, d usecase.Deps) error {
		user, err := usecase.RegisterUser(ctx, d, usecase.RegisterUserInput{Email: *email})
		if err != nil {
			return err
		}
		return c.print(user)
	})
}

func (c *cli) eventCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("event create", c.stderr)
	var (
		slug        = fs.String("slug", "", "event slug")
		title       = fs.String("title", "", "event title")
		description = fs.String("description", "", "event description")
		start       = fs.String("start", "", "start time, RFC3339")
		end         = fs.String("end", "", "end time, RFC3339")
		timezone    = fs.String("timezone", "UTC", "IANA timezone")
		mode        = fs.String("mode", "ONLINE", "delivery mode: ONLINE, IN_PERSON or HYBRID")
		engagement  = fs.String("engagement", "TRAINING", "engagement type")
		location    = fs.String("location", "", "venue for in-person delivery")
		meetingURL  = fs.String("meeting-url", "", "meeting link for online delivery")
		capacity    = fs.Int("capacity", -1, "seat limit, negative for unlimited")
		createdBy   = fs.String("created-by", "", "creator user id")
	)
	if err := parse(fs, args); err != nil {
		return err
	}
	startAt, err := parseTime("start", *start)
	if err != nil {
		return err
	}
	endAt, err := parseTime("end", *end)
	if err != nil {
		return err
	}

	in := usecase.CreateEventInput{
		Slug:           *slug,
		Title:          *title,
		Description:    *description,
		StartAt:        startAt,
		EndAt:          endAt,
		Timezone:       *timezone,
		DeliveryMode:   *mode,
		EngagementType: *engagement,
		LocationText:   *location,
		MeetingURL:     *meetingURL,
		CreatedBy:      *createdBy,
	}
	if *capacity >= 0 {
		in.Capacity = capacity
	}
	return c.mutate(ctx, audit.ActionEventCreated, func(ctx context.Context, d usecase.Deps) error {
		event, err := usecase.CreateEvent(ctx, d, in)
		if err != nil {
			return err
		}
		return c.print(event)
	})
}

func (c *cli) eventPublish(ctx context.Context, args []string) error {
	fs := newFlagSet("event publish", c.stderr)
	slug := fs.String("slug", "", "event slug")
	if err := parse(fs, args); err != nil {
		return err
	}
	return c.mutate(ctx, audit.ActionEventPublished, func(ctx context.Context, d usecase.Deps) error {
		res, err := usecase.PublishEvent(ctx, d, *slug)
		if err != nil {
			return err
		}
		return c.print(map[string]any{"event": res.Event, "idempotent": res.Idempotent})
	})
}

func (c *cli) eventCancel(ctx context.Context, args []string) error {
	fs := newFlagSet("event cancel", c.stderr)
	slug := fs.String("slug", "", "event slug")
	reason := fs.String("reason", "", "cancellation reason")
	if err := parse(fs, args); err != nil {
		return err
	}
	return c.mutate(ctx, audit.ActionEventCancelled, func(ctx context.Context, d usecase.Deps) error {
		event, err := usecase.CancelEvent(ctx, d, usecase.CancelEventInput{Slug: *slug, Reason: *reason})
		if err != nil {
			return err
		}
		return c.print(event)
	})
}

func (c *cli) eventList(ctx context.Context) error {
	a, err := c.deps(ctx)
	if err != nil {
		return err
	}
	events, err := usecase.ListEvents(ctx, a.Deps)
	if err != nil {
		return err
	}
	return c.print(events)
}

type participantFunc func(ctx context.Context, d usecase.Deps, in usecase.ParticipantInput) (*usecase.ParticipantResult, error)

func (c *cli) participant(ctx context.Context, args []string, action string, fn participantFunc) error {
	fs := newFlagSet("participant", c.stderr)
	event := fs.String("event", "", "event slug")
	user := fs.String("user", "", "user id or email")
	if err := parse(fs, args); err != nil {
		return err
	}
	in := usecase.ParticipantInput{EventSlug: *event, UserIdentifier: *user}
	return c.mutate(ctx, action, func(ctx context.Context, d usecase.Deps) error {
		res, err := fn(ctx, d, in)
		if err != nil {
			return err
		}
		out := map[string]any{
			"registration": res.Registration,
			"idempotent":   res.Idempotent,
		}
		if res.Outcome != "" {
			out["outcome"] = res.Outcome
		}
		if res.PreviousStatus != "" {
			out["previous_status"] = res.PreviousStatus
		}
		return c.print(out)
	})
}

func (c *cli) participantList(ctx context.Context, args []string) error {
	fs := newFlagSet("participant list", c.stderr)
	event := fs.String("event", "", "event slug")
	if err := parse(fs, args); err != nil {
		return err
	}
	a, err := c.deps(ctx)
	if err != nil {
		return err
	}
	registrations, err := usecase.ListParticipants(ctx, a.Deps, *event)
	if err != nil {
		return err
	}
	return c.print(registrations)
}

func (c *cli) tokenIssue(args []string) error {
	fs := newFlagSet("token issue", c.stderr)
	user := fs.String("user", "", "subject user id")
	roles := fs.String("roles", "", "comma separated roles")
	ttl := fs.Duration("ttl", time.Hour, "token lifetime")
	if err := parse(fs, args); err != nil {
		return err
	}
	if c.cfg.JWTSigningKey == "" {
		return fmt.Errorf("%w: ATELIER_JWT_SIGNING_KEY is required", errUsage)
	}
	if *user == "" {
		return fmt.Errorf("%w: --user is required", errUsage)
	}

	granted := platformstrings.NormalizeRoles(platformstrings.SplitList(*roles, ","))
	token, err := auth.NewJWTService(c.cfg.JWTSigningKey).IssueToken(id.UserID(*user), granted, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, token)
	return err
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return nil
}

func parseTime(name, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s must be RFC3339", errUsage, name)
	}
	return t, nil
}

package memory

import (
	"context"
	"sync"
	"time"

	dErrors "atelier/pkg/domain-errors"
	txcontext "atelier/pkg/platform/tx"
)

// defaultTxTimeout bounds a transaction that arrives without a deadline.
const defaultTxTimeout = 5 * time.Second

type snapshotter interface {
	snapshot() func()
}

type inTxKey struct{}

// TxRunner serialises transactions with one coarse lock and restores the
// stores' previous contents when fn fails. Nested calls join the outer
// transaction. Work queued with txcontext.AfterCommit runs once fn has
// succeeded and the lock is released.
type TxRunner struct {
	mu      sync.Mutex
	stores  []snapshotter
	timeout time.Duration
}

func (t *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	outer := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := t.timeout
		if timeout == 0 {
			timeout = defaultTxTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	txCtx, hooks := txcontext.WithHooks(context.WithValue(ctx, inTxKey{}, true))
	if err := t.run(txCtx, fn); err != nil {
		return err
	}
	hooks.Run(outer)
	return nil
}

func (t *TxRunner) run(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	restores := make([]func(), 0, len(t.stores))
	for _, s := range t.stores {
		restores = append(restores, s.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// Stores bundles the memory repositories with a TxRunner covering them all.
type Stores struct {
	Users         *InMemoryUserStore
	Events        *InMemoryEventStore
	Registrations *InMemoryRegistrationStore
	Roles         *InMemoryRoleStore
	Tx            *TxRunner
}

func New() *Stores {
	registrations := NewInMemoryRegistrationStore()
	s := &Stores{
		Users:         NewInMemoryUserStore(),
		Events:        NewInMemoryEventStore(registrations),
		Registrations: registrations,
		Roles:         NewInMemoryRoleStore(),
	}
	s.Tx = &TxRunner{stores: []snapshotter{s.Users, s.Events, s.Registrations, s.Roles}}
	return s
}

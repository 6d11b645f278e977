package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx(t *testing.T) {
	t.Run("nil tx leaves context untouched", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, WithTx(ctx, nil))
		_, ok := From(ctx)
		assert.False(t, ok)
	})

	t.Run("stored tx is returned", func(t *testing.T) {
		sqlTx := &sql.Tx{}
		ctx := WithTx(context.Background(), sqlTx)
		got, ok := From(ctx)
		assert.True(t, ok)
		assert.Same(t, sqlTx, got)
		assert.Same(t, sqlTx, ExecutorFrom(ctx, nil))
	})
}

func TestAfterCommit(t *testing.T) {
	t.Run("without hooks the caller runs the work", func(t *testing.T) {
		queued := AfterCommit(context.Background(), func(context.Context) {})
		assert.False(t, queued)
	})

	t.Run("queued work waits for Run", func(t *testing.T) {
		ctx, hooks := WithHooks(context.Background())
		var order []string
		assert.True(t, AfterCommit(ctx, func(context.Context) { order = append(order, "first") }))
		assert.True(t, AfterCommit(ctx, func(context.Context) { order = append(order, "second") }))
		assert.Empty(t, order)

		hooks.Run(context.Background())
		assert.Equal(t, []string{"first", "second"}, order)

		hooks.Run(context.Background())
		assert.Len(t, order, 2, "hooks run once")
	})
}

package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxFromContext(t *testing.T) {
	t.Run("no transaction in context", func(t *testing.T) {
		_, ok := TxFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("open transaction is returned", func(t *testing.T) {
		tx := &Transaction{}
		ctx := context.WithValue(context.Background(), txKey, Tx(tx))

		got, ok := TxFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, Tx(tx), got)
	})

	t.Run("closed transaction is ignored", func(t *testing.T) {
		tx := &Transaction{isClosed: true}
		ctx := context.WithValue(context.Background(), txKey, Tx(tx))

		_, ok := TxFromContext(ctx)
		assert.False(t, ok)
	})
}

package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gophermart.com/internal/market"
)

func TestMintAndBalance(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()

	b, err := l.BalanceOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b)

	require.NoError(t, l.Mint(ctx, 1, 100))
	require.NoError(t, l.Mint(ctx, 1, 50))

	b, err = l.BalanceOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), b)
}

func TestTransferMovesExactAmount(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()
	require.NoError(t, l.Mint(ctx, 1, 100))

	require.NoError(t, l.Transfer(ctx, 1, 2, 60))

	payer, _ := l.BalanceOf(ctx, 1)
	payee, _ := l.BalanceOf(ctx, 2)
	assert.Equal(t, uint64(40), payer)
	assert.Equal(t, uint64(60), payee)
}

func TestTransferInsufficientFunds(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()
	require.NoError(t, l.Mint(ctx, 1, 59))

	err := l.Transfer(ctx, 1, 2, 60)
	require.ErrorIs(t, err, market.ErrInsufficientFunds)

	// both balances untouched on rejection
	payer, _ := l.BalanceOf(ctx, 1)
	payee, _ := l.BalanceOf(ctx, 2)
	assert.Equal(t, uint64(59), payer)
	assert.Equal(t, uint64(0), payee)
}

func TestTransferExactBalanceDrainsToZero(t *testing.T) {
	l := NewMemLedger()
	ctx := context.Background()
	require.NoError(t, l.Mint(ctx, 1, 100))

	require.NoError(t, l.Transfer(ctx, 1, 2, 100))
	payer, _ := l.BalanceOf(ctx, 1)
	assert.Equal(t, uint64(0), payer)
}

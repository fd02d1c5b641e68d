package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerWithdraw(t *testing.T) {
	p := &Player{ID: "p1", Balance: 100}

	require.NoError(t, p.Withdraw(60))
	assert.Equal(t, int64(40), p.Balance)

	err := p.Withdraw(50)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(40), p.Balance, "failed withdrawal must not change the balance")

	assert.Error(t, p.Withdraw(-1))
}

func TestPlayerDeposit(t *testing.T) {
	p := &Player{ID: "p1", Balance: 40}
	p.Deposit(25)
	assert.Equal(t, int64(65), p.Balance)
}

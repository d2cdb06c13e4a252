package valuebank

import (
	"context"
	"math/big"
	"testing"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa")
	bob   = common.HexToAddress("0xb")
	carol = common.HexToAddress("0xc")
)

func balance(t *testing.T, m *Memory, addr common.Address) *big.Int {
	b, err := m.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return b
}

func TestSettleSingle(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.Credit(alice, big.NewInt(100))

	err := m.Settle(context.Background(), Transfer{From: alice, To: bob, Amount: big.NewInt(30)})
	require.NoError(t, err)

	require.Equal(t, big.NewInt(70), balance(t, m, alice))
	require.Equal(t, big.NewInt(30), balance(t, m, bob))
}

func TestSettleBatchUsesIntermediateBalances(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.Credit(alice, big.NewInt(100))

	// bob has nothing at start, the second leg spends what the first one delivered
	err := m.Settle(context.Background(),
		Transfer{From: alice, To: bob, Amount: big.NewInt(100)},
		Transfer{From: bob, To: alice, Amount: big.NewInt(40)},
	)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(40), balance(t, m, alice))
	require.Equal(t, big.NewInt(60), balance(t, m, bob))
}

func TestSettleIsAllOrNothing(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.Credit(alice, big.NewInt(100))
	m.SetRejectInbound(carol, true)

	err := m.Settle(context.Background(),
		Transfer{From: alice, To: bob, Amount: big.NewInt(50)},
		Transfer{From: bob, To: carol, Amount: big.NewInt(10)},
	)
	require.ErrorIs(t, err, ErrInboundRejected)
	require.Equal(t, big.NewInt(100), balance(t, m, alice), "first leg must be rolled back")
	require.Zero(t, balance(t, m, bob).Sign())

	err = m.Settle(context.Background(),
		Transfer{From: alice, To: bob, Amount: big.NewInt(50)},
		Transfer{From: alice, To: bob, Amount: big.NewInt(51)},
	)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, big.NewInt(100), balance(t, m, alice))
}

func TestSettleRejectsNegative(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	err := m.Settle(context.Background(), Transfer{From: alice, To: bob, Amount: big.NewInt(-1)})
	require.ErrorIs(t, err, ErrInvalidTransfer)
}

func TestSettleZeroAmountToRejectingAccount(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.SetRejectInbound(bob, true)
	require.NoError(t, m.Settle(context.Background(), Transfer{From: alice, To: bob, Amount: big.NewInt(0)}))

	m.SetRejectInbound(bob, false)
	m.Credit(alice, big.NewInt(1))
	require.NoError(t, m.Settle(context.Background(), Transfer{From: alice, To: bob, Amount: big.NewInt(1)}))
}

func TestSettleCancelledContext(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.Credit(alice, big.NewInt(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Settle(ctx, Transfer{From: alice, To: bob, Amount: big.NewInt(1)}), context.Canceled)
	require.Equal(t, big.NewInt(1), balance(t, m, alice))
}

func TestAccounts(t *testing.T) {
	m := NewMemory(&lib.LoggerMock{})
	m.Credit(bob, big.NewInt(2))
	m.Credit(alice, big.NewInt(1))
	m.Credit(carol, big.NewInt(0))

	accounts := m.Accounts()
	require.Len(t, accounts, 2)
	require.Equal(t, alice, accounts[0].Address)
	require.Equal(t, bob, accounts[1].Address)
}

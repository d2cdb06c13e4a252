package valuebank

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInboundRejected   = errors.New("recipient rejects inbound value")
	ErrInvalidTransfer   = errors.New("invalid transfer")
)

type Transfer struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// Bank holds native value of the accounts. Settle applies a batch of transfers all-or-nothing
type Bank interface {
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Settle(ctx context.Context, transfers ...Transfer) error
}

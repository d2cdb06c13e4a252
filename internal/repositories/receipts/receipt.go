package receipts

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("receipt not found")
	ErrDuplicate = errors.New("receipt already stored")
)

// Receipt is a stored sale event. Seq is assigned by the store, starting from 1
type Receipt struct {
	ID        uuid.UUID
	Seq       uint64
	Kind      crowdsale.EventKind
	Phase     phase.Phase
	Account   common.Address
	Value     *big.Int
	Accepted  *big.Int
	Refund    *big.Int
	Tokens    *big.Int
	Timestamp time.Time
}

func FromEvent(e crowdsale.Event) Receipt {
	return Receipt{
		ID:        e.ID,
		Kind:      e.Kind,
		Phase:     e.Phase,
		Account:   e.Account,
		Value:     lib.CopyBig(e.Value),
		Accepted:  lib.CopyBig(e.Accepted),
		Refund:    lib.CopyBig(e.Refund),
		Tokens:    lib.CopyBig(e.Tokens),
		Timestamp: e.Timestamp,
	}
}

type Store interface {
	// Append stores the receipt and returns it with the assigned sequence number
	Append(ctx context.Context, r Receipt) (Receipt, error)
	// List returns up to limit receipts with Seq >= from, oldest first. Non-positive limit means no limit
	List(ctx context.Context, from uint64, limit int) ([]Receipt, error)
	Get(ctx context.Context, id uuid.UUID) (Receipt, error)
	Close() error
}

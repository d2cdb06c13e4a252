package crowdsale

import (
	"math/big"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type EventKind string

const (
	EventStateChanged   EventKind = "StateChanged"
	EventRatesSet       EventKind = "RatesSet"
	EventTokenPurchase  EventKind = "TokenPurchase"
	EventRefund         EventKind = "Refund"
	EventFundsExtracted EventKind = "FundsExtracted"
	EventPaused         EventKind = "Paused"
	EventUnpaused       EventKind = "Unpaused"
)

// Event is published on the crowdsale feed after the operation that produced it has committed.
// Amount fields that do not apply to the kind are nil
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	Phase     phase.Phase
	Account   common.Address
	Value     *big.Int
	Accepted  *big.Int
	Refund    *big.Int
	Tokens    *big.Int
	Timestamp time.Time
}

type Purchase struct {
	ID        uuid.UUID
	Phase     phase.Phase
	Sender    common.Address
	Value     *big.Int // value sent
	Accepted  *big.Int // value kept by the sale
	Refund    *big.Int // value returned to the sender
	Tokens    *big.Int
	Timestamp time.Time
}

func (p *Purchase) events() []Event {
	events := []Event{{
		ID:        p.ID,
		Kind:      EventTokenPurchase,
		Phase:     p.Phase,
		Account:   p.Sender,
		Value:     p.Value,
		Accepted:  p.Accepted,
		Refund:    p.Refund,
		Tokens:    p.Tokens,
		Timestamp: p.Timestamp,
	}}
	if p.Refund.Sign() > 0 {
		events = append(events, Event{
			ID:        uuid.New(),
			Kind:      EventRefund,
			Phase:     p.Phase,
			Account:   p.Sender,
			Refund:    p.Refund,
			Timestamp: p.Timestamp,
		})
	}
	return events
}

type Extraction struct {
	ID        uuid.UUID
	Wallet    common.Address
	Amount    *big.Int
	Timestamp time.Time
}

func (e *Extraction) event(p phase.Phase) Event {
	return Event{
		ID:        e.ID,
		Kind:      EventFundsExtracted,
		Phase:     p,
		Account:   e.Wallet,
		Value:     e.Amount,
		Timestamp: e.Timestamp,
	}
}

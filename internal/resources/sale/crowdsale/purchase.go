package crowdsale

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/google/uuid"
)

var (
	tokenUnit  = new(big.Int).Exp(big.NewInt(10), big.NewInt(lib.Decimals), nil)
	presaleCap = new(big.Int).Mul(big.NewInt(7_500_000), tokenUnit)
	icoCap     = new(big.Int).Mul(big.NewInt(42_500_000), tokenUnit)
)

// PresaleCap is the maximum amount of tokens issued during the presale, 1500 value units at rate 5000
func PresaleCap() *big.Int {
	return lib.CopyBig(presaleCap)
}

// IcoCap is the maximum amount of tokens issued during the ico, the rest of the 50M supply
func IcoCap() *big.Int {
	return lib.CopyBig(icoCap)
}

func (c *Crowdsale) BuyPresaleTokens(ctx context.Context, sender common.Address, value *big.Int) (*Purchase, error) {
	return c.buy(ctx, sender, value, func(current phase.Phase) bool { return current == phase.Presale })
}

func (c *Crowdsale) BuyICOTokens(ctx context.Context, sender common.Address, value *big.Int) (*Purchase, error) {
	return c.buy(ctx, sender, value, func(current phase.Phase) bool { return current == phase.Ico })
}

// Buy handles value sent directly to the crowdsale, the purchase path is chosen by the current phase
func (c *Crowdsale) Buy(ctx context.Context, sender common.Address, value *big.Int) (*Purchase, error) {
	return c.buy(ctx, sender, value, func(current phase.Phase) bool {
		return current == phase.Presale || current == phase.Ico
	})
}

func (c *Crowdsale) buy(ctx context.Context, sender common.Address, value *big.Int, allowed func(phase.Phase) bool) (*Purchase, error) {
	c.mutex.Lock()
	purchase, events, err := c.purchase(ctx, sender, value, allowed)
	c.mutex.Unlock()

	if purchase != nil {
		events = append(events, purchase.events()...)
	}
	c.publish(events)

	if err != nil {
		c.log.Debugf("purchase by %s rejected: %s", lib.AddrShort(sender.Hex()), err)
		return nil, err
	}
	c.log.Infof("purchase %s: %s tokens to %s for %s wei, refunded %s wei",
		purchase.ID, purchase.Tokens, sender, purchase.Accepted, purchase.Refund)
	return purchase, nil
}

// purchase must be called under lock. Checks go first, then internal effects, then the value movement.
// If the value movement fails the effects are rolled back
func (c *Crowdsale) purchase(ctx context.Context, sender common.Address, value *big.Int, allowed func(phase.Phase) bool) (*Purchase, []Event, error) {
	if err := c.requireNotPaused(); err != nil {
		return nil, nil, err
	}

	current, events := c.refresh()
	if !allowed(current) {
		return nil, events, fmt.Errorf("%w: sale is in %s state", sale.ErrWrongPhase, current)
	}
	if !c.rates.isSet() {
		return nil, events, sale.ErrRatesNotSet
	}
	if value == nil || value.Sign() <= 0 {
		return nil, events, sale.ErrZeroValue
	}

	rate := c.rates.forPhase(current)
	raised, limit := c.tokensIcoRaised, icoCap
	if current == phase.Presale {
		raised, limit = c.tokensPresaleRaised, presaleCap
	}

	remainingCap := new(big.Int).Sub(limit, raised)
	if remainingCap.Sign() <= 0 {
		return nil, events, sale.ErrSoldOut
	}

	tokensRequested := new(big.Int).Mul(value, rate)
	tokensToIssue := new(big.Int).Set(math.BigMin(tokensRequested, remainingCap))
	// a fill capped below value*rate rounds the accepted value down, so up to rate-1 tokens go unpaid
	valueToAccept := new(big.Int).Div(tokensToIssue, rate)
	if valueToAccept.Sign() == 0 {
		// what is left of the cap is worth less than the smallest unit of value
		return nil, events, sale.ErrSoldOut
	}
	refundAmount := new(big.Int).Sub(value, valueToAccept)

	// effects
	snapshot, err := c.ledger.Snapshot(c.self)
	if err != nil {
		return nil, events, err
	}
	if err := c.ledger.Mint(c.self, sender, tokensToIssue); err != nil {
		return nil, events, err
	}
	raised.Add(raised, tokensToIssue)
	c.valueRaised.Add(c.valueRaised, valueToAccept)

	// interactions
	transfers := []valuebank.Transfer{{From: sender, To: c.self, Amount: lib.CopyBig(value)}}
	if refundAmount.Sign() > 0 {
		transfers = append(transfers, valuebank.Transfer{From: c.self, To: sender, Amount: lib.CopyBig(refundAmount)})
	}

	if err := c.bank.Settle(ctx, transfers...); err != nil {
		raised.Sub(raised, tokensToIssue)
		c.valueRaised.Sub(c.valueRaised, valueToAccept)
		if revertErr := c.ledger.RevertToSnapshot(c.self, snapshot); revertErr != nil {
			c.log.Errorf("cannot revert mint of %s to %s: %s", tokensToIssue, sender, revertErr)
			return nil, events, lib.WrapError(err, revertErr)
		}
		return nil, events, err
	}

	return &Purchase{
		ID:        uuid.New(),
		Phase:     current,
		Sender:    sender,
		Value:     lib.CopyBig(value),
		Accepted:  valueToAccept,
		Refund:    refundAmount,
		Tokens:    tokensToIssue,
		Timestamp: c.clock.Now(),
	}, events, nil
}

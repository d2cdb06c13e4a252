package crowdsale

import (
	"context"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// ExtractFundsRaised moves the whole value balance of the crowdsale to the wallet.
// Calling it with nothing new raised fails with ErrNothingToExtract
func (c *Crowdsale) ExtractFundsRaised(ctx context.Context, caller common.Address) (*Extraction, error) {
	c.mutex.Lock()
	extraction, err := c.extract(ctx, caller)
	current := c.phaseClock.Current()
	c.mutex.Unlock()

	if err != nil {
		return nil, err
	}

	c.log.Infof("extracted %s wei to %s", extraction.Amount, extraction.Wallet)
	c.publish([]Event{extraction.event(current)})
	return extraction, nil
}

func (c *Crowdsale) extract(ctx context.Context, caller common.Address) (*Extraction, error) {
	if err := c.gate.RequireOwner(caller); err != nil {
		return nil, err
	}
	if err := c.requireNotPaused(); err != nil {
		return nil, err
	}

	balance, err := c.bank.BalanceOf(ctx, c.self)
	if err != nil {
		return nil, err
	}
	if balance.Sign() <= 0 {
		return nil, sale.ErrNothingToExtract
	}

	// effects
	c.valueExtracted.Add(c.valueExtracted, balance)

	// interactions
	err = c.bank.Settle(ctx, valuebank.Transfer{From: c.self, To: c.wallet, Amount: lib.CopyBig(balance)})
	if err != nil {
		c.valueExtracted.Sub(c.valueExtracted, balance)
		return nil, err
	}

	return &Extraction{
		ID:        uuid.New(),
		Wallet:    c.wallet,
		Amount:    balance,
		Timestamp: c.clock.Now(),
	}, nil
}

package crowdsale

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Rates are tokens issued per unit of deposited value, both in the smallest units
type Rates struct {
	Presale *big.Int
	Ico     *big.Int
}

func (r Rates) isSet() bool {
	return r.Presale != nil && r.Ico != nil
}

func (r Rates) copy() Rates {
	if !r.isSet() {
		return Rates{}
	}
	return Rates{Presale: lib.CopyBig(r.Presale), Ico: lib.CopyBig(r.Ico)}
}

func (r Rates) forPhase(p phase.Phase) *big.Int {
	if p == phase.Presale {
		return r.Presale
	}
	return r.Ico
}

// SetRates can be called once by the owner, before the presale starts
func (c *Crowdsale) SetRates(ctx context.Context, caller common.Address, presaleRate *big.Int, icoRate *big.Int) error {
	c.mutex.Lock()
	events, err := c.setRates(caller, presaleRate, icoRate)
	c.mutex.Unlock()

	c.publish(events)
	return err
}

func (c *Crowdsale) Rates() Rates {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.rates.copy()
}

func (c *Crowdsale) setRates(caller common.Address, presaleRate *big.Int, icoRate *big.Int) ([]Event, error) {
	if err := c.gate.RequireOwner(caller); err != nil {
		return nil, err
	}

	current, events := c.refresh()
	if current != phase.NotStarted {
		return events, fmt.Errorf("%w: sale is in %s state", sale.ErrAlreadyStarted, current)
	}
	if c.rates.isSet() {
		return events, sale.ErrRatesAlreadySet
	}
	if presaleRate == nil || presaleRate.Sign() <= 0 || icoRate == nil || icoRate.Sign() <= 0 {
		return events, fmt.Errorf("%w: rates must be positive", sale.ErrInvalidConfig)
	}

	c.rates = Rates{Presale: lib.CopyBig(presaleRate), Ico: lib.CopyBig(icoRate)}
	c.log.Infof("rates set: presale %s, ico %s", presaleRate, icoRate)

	return append(events, Event{
		ID:        uuid.New(),
		Kind:      EventRatesSet,
		Phase:     current,
		Account:   caller,
		Timestamp: c.clock.Now(),
	}), nil
}

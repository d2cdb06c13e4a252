package crowdsale

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/access"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Ledger is the part of the token the crowdsale drives
type Ledger interface {
	Mint(caller common.Address, to common.Address, amount *big.Int) error
	Snapshot(caller common.Address) (int, error)
	RevertToSnapshot(caller common.Address, id int) error
	Paused() bool
}

type Params struct {
	Owner    common.Address
	Self     common.Address // account of the crowdsale in the bank
	Wallet   common.Address // destination of the extracted funds
	Schedule phase.Schedule
}

// Crowdsale is the sale controller. Every entry point runs under a single lock, so operations are
// sequential and either commit all of their changes or none of them
type Crowdsale struct {
	// config
	self   common.Address
	wallet common.Address

	// state
	gate                *access.Gate
	phaseClock          *phase.Clock
	phasePublished      atomic.Uint32 // mirror of the cached phase for lock-free readers
	rates               Rates
	tokensPresaleRaised *big.Int
	tokensIcoRaised     *big.Int
	valueRaised         *big.Int
	valueExtracted      *big.Int
	mutex               sync.Mutex
	feed                event.Feed

	// deps
	ledger Ledger
	bank   valuebank.Bank
	clock  lib.Clock
	log    interfaces.ILogger
}

func NewCrowdsale(params Params, ledger Ledger, bank valuebank.Bank, clock lib.Clock, log interfaces.ILogger) (*Crowdsale, error) {
	if err := params.Schedule.Validate(); err != nil {
		return nil, err
	}
	if params.Owner == (common.Address{}) || params.Self == (common.Address{}) || params.Wallet == (common.Address{}) {
		return nil, fmt.Errorf("%w: owner, self and wallet addresses are required", sale.ErrInvalidConfig)
	}
	if params.Self == params.Wallet {
		return nil, fmt.Errorf("%w: wallet must differ from the crowdsale account", sale.ErrInvalidConfig)
	}
	if ledger == nil || bank == nil || clock == nil {
		return nil, fmt.Errorf("%w: ledger, bank and clock are required", sale.ErrInvalidConfig)
	}

	return &Crowdsale{
		self:                params.Self,
		wallet:              params.Wallet,
		gate:                access.NewGate(params.Owner),
		phaseClock:          phase.NewClock(params.Schedule),
		tokensPresaleRaised: new(big.Int),
		tokensIcoRaised:     new(big.Int),
		valueRaised:         new(big.Int),
		valueExtracted:      new(big.Int),
		ledger:              ledger,
		bank:                bank,
		clock:               clock,
		log:                 log,
	}, nil
}

// UpdateState refreshes the cached phase from the current time
func (c *Crowdsale) UpdateState() phase.Phase {
	c.mutex.Lock()
	current, events := c.refresh()
	c.mutex.Unlock()

	c.publish(events)
	return current
}

// GetStates returns the cached phase as a string, it does not look at the clock
func (c *Crowdsale) GetStates() string {
	return c.CurrentPhase().String()
}

// CurrentPhase is the cached phase. It does not take the crowdsale lock, so the ledger
// can call it while the crowdsale is minting
func (c *Crowdsale) CurrentPhase() phase.Phase {
	return phase.Phase(c.phasePublished.Load())
}

func (c *Crowdsale) Address() common.Address {
	return c.self
}

func (c *Crowdsale) Wallet() common.Address {
	return c.wallet
}

func (c *Crowdsale) Owner() common.Address {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.gate.Owner()
}

func (c *Crowdsale) Schedule() phase.Schedule {
	return c.phaseClock.Schedule()
}

// Paused is true if either the crowdsale or the token is paused
func (c *Crowdsale) Paused() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.requireNotPaused() != nil
}

func (c *Crowdsale) TokensPresaleRaised() *big.Int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return lib.CopyBig(c.tokensPresaleRaised)
}

func (c *Crowdsale) TokensICORaised() *big.Int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return lib.CopyBig(c.tokensIcoRaised)
}

func (c *Crowdsale) ValueRaised() *big.Int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return lib.CopyBig(c.valueRaised)
}

func (c *Crowdsale) ValueExtracted() *big.Int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return lib.CopyBig(c.valueExtracted)
}

type Info struct {
	Address             common.Address
	Owner               common.Address
	Wallet              common.Address
	State               phase.Phase
	Schedule            phase.Schedule
	Rates               Rates
	RatesSet            bool
	Paused              bool
	PresaleCap          *big.Int
	IcoCap              *big.Int
	TokensPresaleRaised *big.Int
	TokensICORaised     *big.Int
	ValueRaised         *big.Int
	ValueExtracted      *big.Int
}

func (c *Crowdsale) Info() Info {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return Info{
		Address:             c.self,
		Owner:               c.gate.Owner(),
		Wallet:              c.wallet,
		State:               c.phaseClock.Current(),
		Schedule:            c.phaseClock.Schedule(),
		Rates:               c.rates.copy(),
		RatesSet:            c.rates.isSet(),
		Paused:              c.requireNotPaused() != nil,
		PresaleCap:          PresaleCap(),
		IcoCap:              IcoCap(),
		TokensPresaleRaised: lib.CopyBig(c.tokensPresaleRaised),
		TokensICORaised:     lib.CopyBig(c.tokensIcoRaised),
		ValueRaised:         lib.CopyBig(c.valueRaised),
		ValueExtracted:      lib.CopyBig(c.valueExtracted),
	}
}

func (c *Crowdsale) Pause(caller common.Address) error {
	c.mutex.Lock()
	flipped, err := c.gate.Pause(caller)
	c.mutex.Unlock()

	if flipped {
		c.log.Warnf("crowdsale paused by %s", caller)
		c.publish([]Event{c.adminEvent(EventPaused, caller)})
	}
	return err
}

func (c *Crowdsale) Unpause(caller common.Address) error {
	c.mutex.Lock()
	flipped, err := c.gate.Unpause(caller)
	c.mutex.Unlock()

	if flipped {
		c.log.Warnf("crowdsale unpaused by %s", caller)
		c.publish([]Event{c.adminEvent(EventUnpaused, caller)})
	}
	return err
}

func (c *Crowdsale) TransferOwnership(caller common.Address, newOwner common.Address) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := c.gate.TransferOwnership(caller, newOwner); err != nil {
		return err
	}
	c.log.Infof("ownership transferred to %s", newOwner)
	return nil
}

// SubscribeEvents delivers every committed event to ch. Delivery is synchronous, a subscriber
// that does not drain ch stalls the publishing operation
func (c *Crowdsale) SubscribeEvents(ch chan<- Event) event.Subscription {
	return c.feed.Subscribe(ch)
}

// requireNotPaused must be called under lock
func (c *Crowdsale) requireNotPaused() error {
	if err := c.gate.RequireNotPaused(); err != nil {
		return err
	}
	if c.ledger.Paused() {
		return fmt.Errorf("%w: token is paused", sale.ErrPaused)
	}
	return nil
}

// refresh must be called under lock. The cached phase is derived from time, it is kept even if the
// operation that refreshed it fails afterwards
func (c *Crowdsale) refresh() (phase.Phase, []Event) {
	now := c.clock.Now()
	current, changed := c.phaseClock.Refresh(now)
	if !changed {
		return current, nil
	}

	c.phasePublished.Store(uint32(current))
	c.log.Infof("sale state changed to %s", current)
	return current, []Event{{
		ID:        uuid.New(),
		Kind:      EventStateChanged,
		Phase:     current,
		Timestamp: now,
	}}
}

func (c *Crowdsale) adminEvent(kind EventKind, caller common.Address) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Phase:     c.CurrentPhase(),
		Account:   caller,
		Timestamp: c.clock.Now(),
	}
}

// publish must be called without lock
func (c *Crowdsale) publish(events []Event) {
	for _, e := range events {
		c.feed.Send(e)
	}
}

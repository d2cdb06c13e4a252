package token

import (
	"bytes"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/access"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// Crowdsale is the view of the sale controller the ledger needs to decide on the transfer lock.
// CurrentPhase must not block on the controller's own lock
type Crowdsale interface {
	Address() common.Address
	CurrentPhase() phase.Phase
}

type Holder struct {
	Address common.Address
	Balance *big.Int
}

type mintEntry struct {
	to     common.Address
	amount *big.Int
}

// Ledger keeps token balances. Tokens are created only by the bound crowdsale, transfers stay
// locked until the crowdsale reports the end of the ico
type Ledger struct {
	// config
	icoEndTime time.Time

	// state
	gate           *access.Gate
	crowdsale      Crowdsale
	balances       map[common.Address]*big.Int
	totalSupply    *big.Int
	transferLocked bool
	journal        []mintEntry
	mutex          sync.RWMutex

	// deps
	log interfaces.ILogger
}

func NewLedger(owner common.Address, icoEndTime time.Time, log interfaces.ILogger) *Ledger {
	return &Ledger{
		icoEndTime:     icoEndTime,
		gate:           access.NewGate(owner),
		balances:       make(map[common.Address]*big.Int),
		totalSupply:    new(big.Int),
		transferLocked: true,
		log:            log,
	}
}

// SetCrowdsaleAddress binds the minting rights, can be called only once
func (l *Ledger) SetCrowdsaleAddress(caller common.Address, crowdsale Crowdsale) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.gate.RequireOwner(caller); err != nil {
		return err
	}
	if l.crowdsale != nil {
		return sale.ErrAlreadyBound
	}
	if crowdsale == nil || crowdsale.Address() == (common.Address{}) {
		return fmt.Errorf("%w: crowdsale address is empty", sale.ErrInvalidConfig)
	}

	l.crowdsale = crowdsale
	l.log.Infof("crowdsale address set to %s", crowdsale.Address())
	return nil
}

func (l *Ledger) CrowdsaleAddress() (common.Address, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if l.crowdsale == nil {
		return common.Address{}, false
	}
	return l.crowdsale.Address(), true
}

func (l *Ledger) Mint(caller common.Address, to common.Address, amount *big.Int) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.requireCrowdsale(caller); err != nil {
		return err
	}
	if err := l.gate.RequireNotPaused(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return sale.ErrZeroValue
	}

	l.credit(to, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	l.journal = append(l.journal, mintEntry{to: to, amount: lib.CopyBig(amount)})

	l.log.Debugf("minted %s to %s", amount, lib.AddrShort(to.Hex()))
	return nil
}

// Snapshot starts a new journal of mints, everything minted before is final. Returns id for RevertToSnapshot
func (l *Ledger) Snapshot(caller common.Address) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.requireCrowdsale(caller); err != nil {
		return 0, err
	}
	l.journal = l.journal[:0]
	return 0, nil
}

// RevertToSnapshot undoes all mints performed after the snapshot was taken
func (l *Ledger) RevertToSnapshot(caller common.Address, id int) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.requireCrowdsale(caller); err != nil {
		return err
	}
	if id < 0 || id > len(l.journal) {
		return fmt.Errorf("snapshot %d is not available", id)
	}

	for i := len(l.journal) - 1; i >= id; i-- {
		entry := l.journal[i]
		balance := l.balances[entry.to]
		balance.Sub(balance, entry.amount)
		if balance.Sign() == 0 {
			delete(l.balances, entry.to)
		}
		l.totalSupply.Sub(l.totalSupply, entry.amount)
		l.log.Debugf("reverted mint of %s to %s", entry.amount, lib.AddrShort(entry.to.Hex()))
	}
	l.journal = l.journal[:id]
	return nil
}

func (l *Ledger) Transfer(caller common.Address, to common.Address, amount *big.Int) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.gate.RequireNotPaused(); err != nil {
		return err
	}
	if l.checkLocked() {
		return sale.ErrTransferLocked
	}
	if amount == nil || amount.Sign() <= 0 {
		return sale.ErrZeroValue
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%w: transfer to the zero address", sale.ErrInvalidConfig)
	}

	balance, ok := l.balances[caller]
	if !ok || balance.Cmp(amount) < 0 {
		return sale.ErrInsufficientBalance
	}

	balance.Sub(balance, amount)
	if balance.Sign() == 0 {
		delete(l.balances, caller)
	}
	l.credit(to, amount)

	l.log.Debugf("transferred %s from %s to %s", amount, lib.AddrShort(caller.Hex()), lib.AddrShort(to.Hex()))
	return nil
}

// TransfersLocked reports the transfer lock, releasing it if the crowdsale has ended
func (l *Ledger) TransfersLocked() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.checkLocked()
}

func (l *Ledger) BalanceOf(holder common.Address) *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return lib.CopyBig(l.balances[holder])
}

func (l *Ledger) TotalSupply() *big.Int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return lib.CopyBig(l.totalSupply)
}

// Holders returns non-zero balances sorted by address
func (l *Ledger) Holders() []Holder {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	holders := make([]Holder, 0, len(l.balances))
	for addr, balance := range l.balances {
		holders = append(holders, Holder{Address: addr, Balance: lib.CopyBig(balance)})
	}
	slices.SortFunc(holders, func(a, b Holder) bool {
		return bytes.Compare(a.Address[:], b.Address[:]) < 0
	})
	return holders
}

func (l *Ledger) ICOEndTime() time.Time {
	return l.icoEndTime
}

func (l *Ledger) Owner() common.Address {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.gate.Owner()
}

func (l *Ledger) Pause(caller common.Address) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	flipped, err := l.gate.Pause(caller)
	if flipped {
		l.log.Warnf("token paused by %s", caller)
	}
	return err
}

func (l *Ledger) Unpause(caller common.Address) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	flipped, err := l.gate.Unpause(caller)
	if flipped {
		l.log.Warnf("token unpaused by %s", caller)
	}
	return err
}

func (l *Ledger) Paused() bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.gate.Paused()
}

// checkLocked reads the crowdsale phase, the lock flag itself is owned by the ledger. Must be called under write lock
func (l *Ledger) checkLocked() bool {
	if !l.transferLocked {
		return false
	}
	if l.crowdsale != nil && l.crowdsale.CurrentPhase() == phase.IcoEnded {
		l.transferLocked = false
		l.log.Infof("token transfers unlocked")
	}
	return l.transferLocked
}

func (l *Ledger) requireCrowdsale(caller common.Address) error {
	if l.crowdsale == nil {
		return lib.WrapError(sale.ErrUnauthorized, sale.ErrNotBound)
	}
	if caller != l.crowdsale.Address() {
		return sale.ErrUnauthorized
	}
	return nil
}

func (l *Ledger) credit(to common.Address, amount *big.Int) {
	balance, ok := l.balances[to]
	if !ok {
		balance = new(big.Int)
		l.balances[to] = balance
	}
	balance.Add(balance, amount)
}

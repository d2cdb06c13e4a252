package valuebank

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Lumerin-protocol/crowdsale/internal/interfaces"
	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

type Account struct {
	Address common.Address
	Balance *big.Int
}

// Memory is an in-process bank. Accounts flagged with SetRejectInbound refuse to receive value,
// the way a contract without payable fallback does
type Memory struct {
	balances map[common.Address]*big.Int
	rejects  map[common.Address]bool
	mutex    sync.RWMutex

	log interfaces.ILogger
}

func NewMemory(log interfaces.ILogger) *Memory {
	return &Memory{
		balances: make(map[common.Address]*big.Int),
		rejects:  make(map[common.Address]bool),
		log:      log,
	}
}

// Credit creates value out of thin air, used for genesis allocation
func (m *Memory) Credit(account common.Address, amount *big.Int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	balance := m.balanceLocked(account)
	m.balances[account] = balance.Add(balance, amount)
}

func (m *Memory) SetRejectInbound(account common.Address, reject bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if reject {
		m.rejects[account] = true
	} else {
		delete(m.rejects, account)
	}
}

func (m *Memory) BalanceOf(_ context.Context, account common.Address) (*big.Int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return lib.CopyBig(m.balances[account]), nil
}

func (m *Memory) Settle(ctx context.Context, transfers ...Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// legs are applied to a scratch copy of the touched accounts, committed only if all succeed
	scratch := make(map[common.Address]*big.Int)
	get := func(addr common.Address) *big.Int {
		if b, ok := scratch[addr]; ok {
			return b
		}
		b := m.balanceLocked(addr)
		scratch[addr] = b
		return b
	}

	for i, t := range transfers {
		if t.Amount == nil || t.Amount.Sign() < 0 {
			return fmt.Errorf("%w: leg %d has negative amount", ErrInvalidTransfer, i)
		}
		if t.Amount.Sign() == 0 {
			continue
		}
		if m.rejects[t.To] {
			return fmt.Errorf("%w: %s", ErrInboundRejected, t.To)
		}
		from := get(t.From)
		if from.Cmp(t.Amount) < 0 {
			return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, t.From, from, t.Amount)
		}
		from.Sub(from, t.Amount)
		to := get(t.To)
		to.Add(to, t.Amount)
	}

	for addr, balance := range scratch {
		m.balances[addr] = balance
	}
	for _, t := range transfers {
		m.log.Debugf("moved %s from %s to %s", t.Amount, lib.AddrShort(t.From.Hex()), lib.AddrShort(t.To.Hex()))
	}
	return nil
}

// Accounts returns non-zero accounts sorted by address
func (m *Memory) Accounts() []Account {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	accounts := make([]Account, 0, len(m.balances))
	for addr, balance := range m.balances {
		if balance.Sign() == 0 {
			continue
		}
		accounts = append(accounts, Account{Address: addr, Balance: lib.CopyBig(balance)})
	}
	slices.SortFunc(accounts, func(a, b Account) bool {
		return bytes.Compare(a.Address[:], b.Address[:]) < 0
	})
	return accounts
}

// balanceLocked returns a copy of the balance
func (m *Memory) balanceLocked(account common.Address) *big.Int {
	return lib.CopyBig(m.balances[account])
}

package access

import (
	"fmt"

	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/ethereum/go-ethereum/common"
)

// Gate holds the owner identity and the pause flag. It has no locking of its own,
// the component embedding it serializes access
type Gate struct {
	owner  common.Address
	paused bool
}

func NewGate(owner common.Address) *Gate {
	return &Gate{owner: owner}
}

func (g *Gate) Owner() common.Address {
	return g.owner
}

func (g *Gate) Paused() bool {
	return g.paused
}

func (g *Gate) RequireOwner(caller common.Address) error {
	if caller != g.owner {
		return sale.ErrUnauthorized
	}
	return nil
}

func (g *Gate) RequireNotPaused() error {
	if g.paused {
		return sale.ErrPaused
	}
	return nil
}

// Pause is idempotent, returns true if the flag was flipped
func (g *Gate) Pause(caller common.Address) (bool, error) {
	if err := g.RequireOwner(caller); err != nil {
		return false, err
	}
	if g.paused {
		return false, nil
	}
	g.paused = true
	return true, nil
}

// Unpause is idempotent, returns true if the flag was flipped
func (g *Gate) Unpause(caller common.Address) (bool, error) {
	if err := g.RequireOwner(caller); err != nil {
		return false, err
	}
	if !g.paused {
		return false, nil
	}
	g.paused = false
	return true, nil
}

func (g *Gate) TransferOwnership(caller common.Address, newOwner common.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return fmt.Errorf("%w: new owner is the zero address", sale.ErrInvalidConfig)
	}
	g.owner = newOwner
	return nil
}

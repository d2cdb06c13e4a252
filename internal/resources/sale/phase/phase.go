package phase

import (
	"fmt"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
)

// Phase of the sale, strictly ordered by time
type Phase uint8

const (
	NotStarted Phase = iota
	Presale
	PresaleEnded
	Ico
	IcoEnded
)

var names = [...]string{
	NotStarted:   "not started",
	Presale:      "presale",
	PresaleEnded: "presale ended",
	Ico:          "ico",
	IcoEnded:     "ico ended",
}

func (p Phase) String() string {
	if int(p) < len(names) {
		return names[p]
	}
	return "unknown"
}

func (p Phase) Before(other Phase) bool {
	return p < other
}

func (p Phase) MarshalText() ([]byte, error) {
	if int(p) >= len(names) {
		return nil, fmt.Errorf("unknown phase %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	parsed, err := ParsePhase(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParsePhase(s string) (Phase, error) {
	for i, name := range names {
		if name == s {
			return Phase(i), nil
		}
	}
	return NotStarted, fmt.Errorf("unknown phase %q", s)
}

// Schedule is the set of boundaries of the sale. Lower edge of every window is inclusive, upper is exclusive
type Schedule struct {
	PresaleStart time.Time
	PresaleEnd   time.Time
	IcoStart     time.Time
	IcoEnd       time.Time
}

// Validate requires non-empty windows, a zero-length gap between presale and ico is allowed
func (s Schedule) Validate() error {
	if s.PresaleStart.IsZero() || s.PresaleEnd.IsZero() || s.IcoStart.IsZero() || s.IcoEnd.IsZero() {
		return fmt.Errorf("%w: all sale boundaries are required", sale.ErrInvalidConfig)
	}
	if !s.PresaleStart.Before(s.PresaleEnd) {
		return fmt.Errorf("%w: presale start must be before presale end", sale.ErrInvalidConfig)
	}
	if s.IcoStart.Before(s.PresaleEnd) {
		return fmt.Errorf("%w: ico start must not be before presale end", sale.ErrInvalidConfig)
	}
	if !s.IcoStart.Before(s.IcoEnd) {
		return fmt.Errorf("%w: ico start must be before ico end", sale.ErrInvalidConfig)
	}
	return nil
}

// Compute is the phase of the schedule at the given moment
func Compute(now time.Time, s Schedule) Phase {
	switch {
	case now.Before(s.PresaleStart):
		return NotStarted
	case now.Before(s.PresaleEnd):
		return Presale
	case now.Before(s.IcoStart):
		return PresaleEnded
	case now.Before(s.IcoEnd):
		return Ico
	default:
		return IcoEnded
	}
}

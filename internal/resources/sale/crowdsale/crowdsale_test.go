package crowdsale

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

var (
	owner     = common.HexToAddress("0x1000")
	investor  = common.HexToAddress("0x2000")
	wallet    = common.HexToAddress("0x3000")
	purchaser = common.HexToAddress("0x4000")
	saleAddr  = common.HexToAddress("0x5000")
)

type fixture struct {
	clock    *lib.ManualClock
	bank     *valuebank.Memory
	ledger   *token.Ledger
	cs       *Crowdsale
	schedule phase.Schedule
}

// newFixture deploys the token and the crowdsale the way the migration does, presale starts in a week
func newFixture(t *testing.T) *fixture {
	start := time.Unix(1_700_000_000, 0)
	clock := lib.NewManualClock(start)

	presaleStart := start.Add(7 * day)
	schedule := phase.Schedule{
		PresaleStart: presaleStart,
		PresaleEnd:   presaleStart.Add(7 * day),
		IcoStart:     presaleStart.Add(14 * day),
		IcoEnd:       presaleStart.Add(21 * day),
	}

	bank := valuebank.NewMemory(&lib.LoggerMock{})
	bank.Credit(investor, lib.Ether(20_000))
	bank.Credit(purchaser, lib.Ether(20_000))

	ledger := token.NewLedger(owner, schedule.IcoEnd, &lib.LoggerMock{})
	cs, err := NewCrowdsale(Params{
		Owner:    owner,
		Self:     saleAddr,
		Wallet:   wallet,
		Schedule: schedule,
	}, ledger, bank, clock, &lib.LoggerMock{})
	require.NoError(t, err)
	require.NoError(t, ledger.SetCrowdsaleAddress(owner, cs))

	return &fixture{clock: clock, bank: bank, ledger: ledger, cs: cs, schedule: schedule}
}

func newFixtureWithRates(t *testing.T) *fixture {
	f := newFixture(t)
	require.NoError(t, f.cs.SetRates(context.Background(), owner, big.NewInt(5000), big.NewInt(4000)))
	return f
}

func (f *fixture) increaseTimeTo(t *testing.T, target time.Time) {
	require.NoError(t, f.clock.IncreaseTo(target))
}

func (f *fixture) valueBalance(t *testing.T, addr common.Address) *big.Int {
	b, err := f.bank.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return b
}

func TestGetStatesInitial(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, "not started", f.cs.GetStates())
}

func TestUpdateStateAtBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		target func(s phase.Schedule) time.Time
		exp    string
	}{
		{"presale start", func(s phase.Schedule) time.Time { return s.PresaleStart }, "presale"},
		{"presale end", func(s phase.Schedule) time.Time { return s.PresaleEnd }, "presale ended"},
		{"ico start", func(s phase.Schedule) time.Time { return s.IcoStart }, "ico"},
		{"ico end", func(s phase.Schedule) time.Time { return s.IcoEnd }, "ico ended"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			f.increaseTimeTo(t, c.target(f.schedule))

			require.Equal(t, "not started", f.cs.GetStates(), "state is cached until refreshed")
			f.cs.UpdateState()
			require.Equal(t, c.exp, f.cs.GetStates())
		})
	}
}

func TestUpdateStateIdempotent(t *testing.T) {
	f := newFixture(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart.Add(time.Hour))

	first := f.cs.UpdateState()
	second := f.cs.UpdateState()
	require.Equal(t, first, second)
	require.Equal(t, phase.Presale, second)
}

func TestRejectPaymentsBeforeStart(t *testing.T) {
	f := newFixtureWithRates(t)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase)

	_, err = f.cs.Buy(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "direct value send is rejected before start as well")
}

func TestAcceptDirectPaymentAfterStart(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	value := big.NewInt(100_000_000_000_000_000) // 0.1
	p, err := f.cs.Buy(context.Background(), investor, value)
	require.NoError(t, err)
	require.Equal(t, phase.Presale, p.Phase)
	require.Equal(t, new(big.Int).Mul(value, big.NewInt(5000)), f.ledger.BalanceOf(investor))
	require.Equal(t, "presale", f.cs.GetStates(), "purchase refreshes the cached state")
}

func TestRejectPresaleAfterEnd(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleEnd)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase)

	_, err = f.cs.Buy(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "nothing is on sale between presale and ico")
}

func TestPresaleWindow(t *testing.T) {
	f := newFixtureWithRates(t)

	f.increaseTimeTo(t, f.schedule.PresaleEnd.Add(-time.Second))
	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.NoError(t, err, "last second of presale is inside the window")

	_, err = f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "ico path is closed during presale")
}

func TestIcoWindow(t *testing.T) {
	f := newFixtureWithRates(t)

	_, err := f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "should reject ico payments before ico start time")

	f.increaseTimeTo(t, f.schedule.IcoStart)
	p, err := f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.NoError(t, err, "should accept payments after ico start time")
	require.Equal(t, new(big.Int).Mul(lib.Ether(1), big.NewInt(4000)), p.Tokens)
	require.Equal(t, p.Tokens, f.cs.TokensICORaised())

	_, err = f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "presale path is closed during ico")

	f.increaseTimeTo(t, f.schedule.IcoEnd)
	_, err = f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase, "should reject after ico end")
}

func TestTokenPauseBlocksPurchases(t *testing.T) {
	f := newFixtureWithRates(t)
	require.NoError(t, f.ledger.Pause(owner))
	require.True(t, f.ledger.Paused())
	require.True(t, f.cs.Paused())

	f.increaseTimeTo(t, f.schedule.PresaleStart)
	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrPaused)

	f.increaseTimeTo(t, f.schedule.IcoStart)
	_, err = f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrPaused)

	require.Equal(t, lib.Ether(20_000), f.valueBalance(t, investor))
}

func TestCrowdsalePauseBlocksEverything(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(10))
	require.NoError(t, err)

	require.ErrorIs(t, f.cs.Pause(investor), sale.ErrUnauthorized)
	require.NoError(t, f.cs.Pause(owner))
	require.NoError(t, f.cs.Pause(owner), "pausing twice is a no-op")

	_, err = f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrPaused)
	_, err = f.cs.Buy(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrPaused)
	_, err = f.cs.ExtractFundsRaised(context.Background(), owner)
	require.ErrorIs(t, err, sale.ErrPaused)

	f.increaseTimeTo(t, f.schedule.IcoStart)
	_, err = f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrPaused)

	require.NoError(t, f.cs.Unpause(owner))
	_, err = f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(1))
	require.NoError(t, err)
}

func TestPurchaseExactlyPresaleCap(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	p, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1500))
	require.NoError(t, err)

	expTokens := lib.Ether(7_500_000) // 7.5 * 10^24
	require.Equal(t, PresaleCap(), expTokens)
	require.Equal(t, expTokens, p.Tokens)
	require.Equal(t, expTokens, f.ledger.BalanceOf(investor))
	require.Equal(t, expTokens, f.cs.TokensPresaleRaised())
	require.Zero(t, p.Refund.Sign())
	require.Equal(t, lib.Ether(1500), f.cs.ValueRaised())
}

func TestPurchaseBelowCap(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1000))
	require.NoError(t, err)

	require.Equal(t, lib.Ether(5_000_000), f.ledger.BalanceOf(investor))
	require.Equal(t, lib.Ether(5_000_000), f.cs.TokensPresaleRaised())
	require.Equal(t, lib.Ether(19_000), f.valueBalance(t, investor))
}

func TestPurchaseAboveCapRefundsExcess(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	before := f.valueBalance(t, investor)

	p, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(3000))
	require.NoError(t, err)

	require.Equal(t, PresaleCap(), p.Tokens)
	require.Equal(t, PresaleCap(), f.ledger.BalanceOf(investor))
	require.Equal(t, lib.Ether(1500), p.Accepted)
	require.Equal(t, lib.Ether(1500), p.Refund)

	spent := new(big.Int).Sub(before, f.valueBalance(t, investor))
	require.Equal(t, lib.Ether(1500), spent, "sender pays only for the issued tokens")
	require.Equal(t, lib.Ether(1500), f.valueBalance(t, saleAddr))
}

func TestSoldOut(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1200))
	require.NoError(t, err)

	p, err := f.cs.BuyPresaleTokens(context.Background(), purchaser, lib.Ether(500))
	require.NoError(t, err)
	require.Equal(t, lib.Ether(300), p.Accepted, "second buyer fills only the rest of the cap")
	require.Equal(t, lib.Ether(200), p.Refund)

	_, err = f.cs.BuyPresaleTokens(context.Background(), purchaser, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrSoldOut)

	f.increaseTimeTo(t, f.schedule.IcoStart)
	_, err = f.cs.BuyICOTokens(context.Background(), purchaser, lib.Ether(1))
	require.NoError(t, err, "ico has its own cap")
}

func TestIcoCap(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.IcoStart)

	// 42.5M tokens at rate 4000 cost 10625
	p, err := f.cs.BuyICOTokens(context.Background(), investor, lib.Ether(11_000))
	require.NoError(t, err)
	require.Equal(t, IcoCap(), p.Tokens)
	require.Equal(t, lib.Ether(10_625), p.Accepted)
	require.Equal(t, lib.Ether(375), p.Refund)
	require.Equal(t, IcoCap(), f.cs.TokensICORaised())
	require.Zero(t, f.cs.TokensPresaleRaised().Sign())

	_, err = f.cs.Buy(context.Background(), purchaser, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrSoldOut)
}

func TestSoldOutWhenRemainderIsWorthLessThanOneWei(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cs.SetRates(context.Background(), owner, big.NewInt(7), big.NewInt(7)))
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	remainder := new(big.Int).Mod(PresaleCap(), big.NewInt(7))
	require.Equal(t, big.NewInt(4), remainder)

	value := new(big.Int).Div(PresaleCap(), big.NewInt(7))
	f.bank.Credit(investor, value)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, value)
	require.NoError(t, err)
	require.Equal(t, new(big.Int).Sub(PresaleCap(), remainder), f.cs.TokensPresaleRaised())

	_, err = f.cs.BuyPresaleTokens(context.Background(), investor, big.NewInt(1))
	require.ErrorIs(t, err, sale.ErrSoldOut)
}

func TestPartialFillRoundsAcceptedValueDown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.cs.SetRates(context.Background(), owner, big.NewInt(7), big.NewInt(7)))
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	value := new(big.Int).Add(new(big.Int).Div(PresaleCap(), big.NewInt(7)), lib.Ether(1))
	f.bank.Credit(investor, value)

	p, err := f.cs.BuyPresaleTokens(context.Background(), investor, value)
	require.NoError(t, err)
	require.Equal(t, PresaleCap(), p.Tokens)
	require.Equal(t, new(big.Int).Div(PresaleCap(), big.NewInt(7)), p.Accepted)
	require.Equal(t, new(big.Int).Sub(value, p.Accepted), p.Refund)

	unpaid := new(big.Int).Sub(p.Tokens, new(big.Int).Mul(p.Accepted, big.NewInt(7)))
	require.Equal(t, big.NewInt(4), unpaid, "the cap remainder below one unit of value is issued unpaid")
	require.Equal(t, p.Accepted, f.cs.ValueRaised())
}

func TestZeroValuePurchase(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, big.NewInt(0))
	require.ErrorIs(t, err, sale.ErrZeroValue)
	_, err = f.cs.BuyPresaleTokens(context.Background(), investor, nil)
	require.ErrorIs(t, err, sale.ErrZeroValue)
}

func TestPurchaseBeforeRatesSet(t *testing.T) {
	f := newFixture(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	_, err := f.cs.BuyPresaleTokens(context.Background(), investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrRatesNotSet)
	require.Equal(t, lib.Ether(20_000), f.valueBalance(t, investor))
}

func TestSetRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.ErrorIs(t, f.cs.SetRates(ctx, investor, big.NewInt(5000), big.NewInt(4000)), sale.ErrUnauthorized)
	require.ErrorIs(t, f.cs.SetRates(ctx, owner, big.NewInt(0), big.NewInt(4000)), sale.ErrInvalidConfig)
	require.ErrorIs(t, f.cs.SetRates(ctx, owner, big.NewInt(5000), nil), sale.ErrInvalidConfig)

	require.NoError(t, f.cs.SetRates(ctx, owner, big.NewInt(5000), big.NewInt(4000)))
	require.Equal(t, big.NewInt(5000), f.cs.Rates().Presale)
	require.Equal(t, big.NewInt(4000), f.cs.Rates().Ico)

	require.ErrorIs(t, f.cs.SetRates(ctx, owner, big.NewInt(1), big.NewInt(1)), sale.ErrRatesAlreadySet)
}

func TestSetRatesAfterStart(t *testing.T) {
	f := newFixture(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	// nobody called UpdateState, SetRates must refresh on its own
	err := f.cs.SetRates(context.Background(), owner, big.NewInt(5000), big.NewInt(4000))
	require.ErrorIs(t, err, sale.ErrAlreadyStarted)
	require.Equal(t, "presale", f.cs.GetStates())
}

func TestRatesCopy(t *testing.T) {
	f := newFixture(t)
	rate := big.NewInt(5000)
	require.NoError(t, f.cs.SetRates(context.Background(), owner, rate, big.NewInt(4000)))

	rate.SetInt64(1)
	f.cs.Rates().Presale.SetInt64(2)
	require.Equal(t, big.NewInt(5000), f.cs.Rates().Presale)
}

func TestExtractFundsRaised(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()
	f.increaseTimeTo(t, f.schedule.PresaleStart)

	_, err := f.cs.ExtractFundsRaised(ctx, owner)
	require.ErrorIs(t, err, sale.ErrNothingToExtract)

	_, err = f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(3000))
	require.NoError(t, err)

	_, err = f.cs.ExtractFundsRaised(ctx, investor)
	require.ErrorIs(t, err, sale.ErrUnauthorized)

	walletBefore := f.valueBalance(t, wallet)
	e, err := f.cs.ExtractFundsRaised(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, lib.Ether(1500), e.Amount)
	require.Equal(t, wallet, e.Wallet)
	require.Equal(t, new(big.Int).Add(walletBefore, lib.Ether(1500)), f.valueBalance(t, wallet))
	require.Zero(t, f.valueBalance(t, saleAddr).Sign())
	require.Equal(t, lib.Ether(1500), f.cs.ValueExtracted())

	_, err = f.cs.ExtractFundsRaised(ctx, owner)
	require.ErrorIs(t, err, sale.ErrNothingToExtract, "second extraction has nothing to move")
	require.Equal(t, lib.Ether(1500), f.valueBalance(t, wallet))
}

func TestExtractFailureKeepsFunds(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	_, err := f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(10))
	require.NoError(t, err)

	f.bank.SetRejectInbound(wallet, true)
	_, err = f.cs.ExtractFundsRaised(ctx, owner)
	require.ErrorIs(t, err, valuebank.ErrInboundRejected)
	require.Equal(t, lib.Ether(10), f.valueBalance(t, saleAddr))
	require.Zero(t, f.cs.ValueExtracted().Sign())

	f.bank.SetRejectInbound(wallet, false)
	_, err = f.cs.ExtractFundsRaised(ctx, owner)
	require.NoError(t, err)
}

func TestFailedRefundRollsBackPurchase(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	f.bank.SetRejectInbound(investor, true)

	_, err := f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(3000))
	require.ErrorIs(t, err, valuebank.ErrInboundRejected)

	require.Zero(t, f.ledger.BalanceOf(investor).Sign())
	require.Zero(t, f.ledger.TotalSupply().Sign())
	require.Zero(t, f.cs.TokensPresaleRaised().Sign())
	require.Zero(t, f.cs.ValueRaised().Sign())
	require.Equal(t, lib.Ether(20_000), f.valueBalance(t, investor))
	require.Zero(t, f.valueBalance(t, saleAddr).Sign())

	// without refund there is no inbound leg to the investor
	_, err = f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(1500))
	require.NoError(t, err)
	require.Equal(t, PresaleCap(), f.ledger.BalanceOf(investor))
}

func TestInsufficientFundsRollsBackPurchase(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	poor := common.HexToAddress("0x6000")
	f.bank.Credit(poor, lib.Ether(1))

	_, err := f.cs.BuyPresaleTokens(ctx, poor, lib.Ether(2))
	require.ErrorIs(t, err, valuebank.ErrInsufficientFunds)
	require.Zero(t, f.ledger.BalanceOf(poor).Sign())
	require.Zero(t, f.cs.TokensPresaleRaised().Sign())
	require.Equal(t, lib.Ether(1), f.valueBalance(t, poor))

	_, err = f.cs.BuyPresaleTokens(ctx, poor, lib.Ether(1))
	require.NoError(t, err)
	require.Equal(t, lib.Ether(5000), f.ledger.BalanceOf(poor))
}

func TestTransfersUnlockAfterIcoEnd(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	_, err := f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(1))
	require.NoError(t, err)

	f.increaseTimeTo(t, f.schedule.IcoEnd)
	require.ErrorIs(t, f.ledger.Transfer(investor, purchaser, big.NewInt(1)), sale.ErrTransferLocked,
		"lock follows the reported state, not the wall clock")

	f.cs.UpdateState()
	require.NoError(t, f.ledger.Transfer(investor, purchaser, big.NewInt(1)))
	require.Equal(t, big.NewInt(1), f.ledger.BalanceOf(purchaser))
}

func TestEventsArePublished(t *testing.T) {
	f := newFixtureWithRates(t)
	ctx := context.Background()

	events := make(chan Event, 16)
	sub := f.cs.SubscribeEvents(events)
	defer sub.Unsubscribe()

	f.increaseTimeTo(t, f.schedule.PresaleStart)
	p, err := f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(3000))
	require.NoError(t, err)
	_, err = f.cs.ExtractFundsRaised(ctx, owner)
	require.NoError(t, err)

	expKinds := []EventKind{EventStateChanged, EventTokenPurchase, EventRefund, EventFundsExtracted}
	for i, kind := range expKinds {
		e := <-events
		require.Equal(t, kind, e.Kind, "event %d", i)
		require.Equal(t, phase.Presale, e.Phase)
	}

	require.Len(t, events, 0)
	f.increaseTimeTo(t, f.schedule.PresaleEnd)
	_, err = f.cs.BuyPresaleTokens(ctx, investor, lib.Ether(1))
	require.ErrorIs(t, err, sale.ErrWrongPhase)
	e := <-events
	require.Equal(t, EventStateChanged, e.Kind, "state change is published even if the purchase fails")
	require.Equal(t, phase.PresaleEnded, e.Phase)
	require.NotEqual(t, p.ID, e.ID)
}

func TestInfo(t *testing.T) {
	f := newFixtureWithRates(t)
	f.increaseTimeTo(t, f.schedule.PresaleStart)
	_, err := f.cs.Buy(context.Background(), investor, lib.Ether(1))
	require.NoError(t, err)

	info := f.cs.Info()
	require.Equal(t, saleAddr, info.Address)
	require.Equal(t, owner, info.Owner)
	require.Equal(t, wallet, info.Wallet)
	require.Equal(t, phase.Presale, info.State)
	require.True(t, info.RatesSet)
	require.False(t, info.Paused)
	require.Equal(t, lib.Ether(5000), info.TokensPresaleRaised)
	require.Equal(t, lib.Ether(1), info.ValueRaised)
	require.Equal(t, PresaleCap(), info.PresaleCap)
	require.Equal(t, IcoCap(), info.IcoCap)
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.cs.TransferOwnership(investor, investor), sale.ErrUnauthorized)
	require.NoError(t, f.cs.TransferOwnership(owner, investor))
	require.Equal(t, investor, f.cs.Owner())
	require.NoError(t, f.cs.SetRates(context.Background(), investor, big.NewInt(1), big.NewInt(1)))
}

func TestNewCrowdsaleValidation(t *testing.T) {
	f := newFixture(t)
	valid := Params{Owner: owner, Self: saleAddr, Wallet: wallet, Schedule: f.schedule}

	cases := map[string]func(p *Params){
		"broken schedule":  func(p *Params) { p.Schedule.IcoEnd = p.Schedule.PresaleStart },
		"no wallet":        func(p *Params) { p.Wallet = common.Address{} },
		"no owner":         func(p *Params) { p.Owner = common.Address{} },
		"no self":          func(p *Params) { p.Self = common.Address{} },
		"wallet is itself": func(p *Params) { p.Wallet = p.Self },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mutate(&p)
			_, err := NewCrowdsale(p, f.ledger, f.bank, f.clock, &lib.LoggerMock{})
			require.ErrorIs(t, err, sale.ErrInvalidConfig)
		})
	}

	_, err := NewCrowdsale(valid, nil, f.bank, f.clock, &lib.LoggerMock{})
	require.ErrorIs(t, err, sale.ErrInvalidConfig)
}

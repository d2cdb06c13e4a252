package httphandlers

import (
	"math/big"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/receipts"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/token"
	"github.com/ethereum/go-ethereum/common"
)

// Amounts are decimal strings in whole units, rates are plain integers

type ConfigResponse struct {
	Version string
	Config  interface{}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type StateResponse struct {
	State string `json:"state"`
}

type SaleResponse struct {
	Address             string
	Owner               string
	Wallet              string
	State               string
	PresaleStart        string
	PresaleEnd          string
	IcoStart            string
	IcoEnd              string
	PresaleRate         string `json:",omitempty"`
	IcoRate             string `json:",omitempty"`
	Paused              bool
	PresaleCap          string
	IcoCap              string
	TokensPresaleRaised string
	TokensICORaised     string
	ValueRaised         string
	ValueExtracted      string
}

type PurchaseResponse struct {
	ID        string
	Phase     string
	Sender    string
	Value     string
	Accepted  string
	Refund    string
	Tokens    string
	Timestamp string
}

type ExtractionResponse struct {
	ID        string
	Wallet    string
	Amount    string
	Timestamp string
}

type BalanceResponse struct {
	Address string
	Balance string
}

type HoldersResponse struct {
	TotalSupply     string
	TransfersLocked bool
	Paused          bool
	IcoEndTime      string
	Holders         []BalanceResponse
}

type EventResponse struct {
	ID        string
	Seq       uint64 `json:",omitempty"`
	Kind      string
	Phase     string
	Account   string `json:",omitempty"`
	Value     string `json:",omitempty"`
	Accepted  string `json:",omitempty"`
	Refund    string `json:",omitempty"`
	Tokens    string `json:",omitempty"`
	Timestamp string
}

type ReceiptsResponse struct {
	Receipts []EventResponse
	Next     uint64 `json:",omitempty"`
}

type RatesRequest struct {
	PresaleRate string `json:"presaleRate" binding:"required,numeric"`
	IcoRate     string `json:"icoRate"     binding:"required,numeric"`
}

type BuyRequest struct {
	Value string `json:"value" binding:"required"`
}

type TransferRequest struct {
	To     string `json:"to"     binding:"required,eth_addr"`
	Amount string `json:"amount" binding:"required"`
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return ""
	}
	return lib.FormatUnits(v, lib.Decimals)
}

func formatRate(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func mapSale(info crowdsale.Info) *SaleResponse {
	return &SaleResponse{
		Address:             info.Address.Hex(),
		Owner:               info.Owner.Hex(),
		Wallet:              info.Wallet.Hex(),
		State:               info.State.String(),
		PresaleStart:        formatTime(info.Schedule.PresaleStart),
		PresaleEnd:          formatTime(info.Schedule.PresaleEnd),
		IcoStart:            formatTime(info.Schedule.IcoStart),
		IcoEnd:              formatTime(info.Schedule.IcoEnd),
		PresaleRate:         formatRate(info.Rates.Presale),
		IcoRate:             formatRate(info.Rates.Ico),
		Paused:              info.Paused,
		PresaleCap:          formatAmount(info.PresaleCap),
		IcoCap:              formatAmount(info.IcoCap),
		TokensPresaleRaised: formatAmount(info.TokensPresaleRaised),
		TokensICORaised:     formatAmount(info.TokensICORaised),
		ValueRaised:         formatAmount(info.ValueRaised),
		ValueExtracted:      formatAmount(info.ValueExtracted),
	}
}

func mapPurchase(p *crowdsale.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:        p.ID.String(),
		Phase:     p.Phase.String(),
		Sender:    p.Sender.Hex(),
		Value:     formatAmount(p.Value),
		Accepted:  formatAmount(p.Accepted),
		Refund:    formatAmount(p.Refund),
		Tokens:    formatAmount(p.Tokens),
		Timestamp: formatTime(p.Timestamp),
	}
}

func mapExtraction(e *crowdsale.Extraction) *ExtractionResponse {
	return &ExtractionResponse{
		ID:        e.ID.String(),
		Wallet:    e.Wallet.Hex(),
		Amount:    formatAmount(e.Amount),
		Timestamp: formatTime(e.Timestamp),
	}
}

func mapHolders(holders []token.Holder) []BalanceResponse {
	res := make([]BalanceResponse, 0, len(holders))
	for _, h := range holders {
		res = append(res, BalanceResponse{Address: h.Address.Hex(), Balance: formatAmount(h.Balance)})
	}
	return res
}

func mapEvent(e crowdsale.Event) *EventResponse {
	return mapReceipt(receipts.FromEvent(e))
}

func mapReceipt(r receipts.Receipt) *EventResponse {
	res := &EventResponse{
		ID:        r.ID.String(),
		Seq:       r.Seq,
		Kind:      string(r.Kind),
		Phase:     r.Phase.String(),
		Timestamp: formatTime(r.Timestamp),
	}
	if r.Account != (common.Address{}) {
		res.Account = r.Account.Hex()
	}
	for _, a := range []struct {
		dst *string
		src *big.Int
	}{
		{&res.Value, r.Value},
		{&res.Accepted, r.Accepted},
		{&res.Refund, r.Refund},
		{&res.Tokens, r.Tokens},
	} {
		if a.src != nil && a.src.Sign() != 0 {
			*a.dst = formatAmount(a.src)
		}
	}
	return res
}

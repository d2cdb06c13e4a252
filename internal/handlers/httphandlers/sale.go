package httphandlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type buyFunc func(ctx context.Context, sender common.Address, value *big.Int) (*crowdsale.Purchase, error)

func (h *HTTPHandler) GetSale(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, mapSale(h.sale.Info()))
}

func (h *HTTPHandler) GetState(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, StateResponse{State: h.sale.GetStates()})
}

func (h *HTTPHandler) UpdateState(ctx *gin.Context) {
	current := h.sale.UpdateState()
	ctx.JSON(http.StatusOK, StateResponse{State: current.String()})
}

func (h *HTTPHandler) SetRates(ctx *gin.Context) {
	var req RatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.abort(ctx, lib.WrapError(ErrBadRequest, err))
		return
	}

	presale, _ := new(big.Int).SetString(req.PresaleRate, 10)
	ico, _ := new(big.Int).SetString(req.IcoRate, 10)
	if presale == nil || ico == nil {
		h.abort(ctx, ErrBadRequest)
		return
	}

	err := h.sale.SetRates(ctx.Request.Context(), caller(ctx), presale, ico)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) Buy(ctx *gin.Context) {
	h.buy(ctx, h.sale.Buy)
}

func (h *HTTPHandler) BuyPresale(ctx *gin.Context) {
	h.buy(ctx, h.sale.BuyPresaleTokens)
}

func (h *HTTPHandler) BuyICO(ctx *gin.Context) {
	h.buy(ctx, h.sale.BuyICOTokens)
}

func (h *HTTPHandler) buy(ctx *gin.Context, buy buyFunc) {
	var req BuyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.abort(ctx, lib.WrapError(ErrBadRequest, err))
		return
	}

	value, err := lib.ParseUnits(req.Value, lib.Decimals)
	if err != nil {
		h.abort(ctx, err)
		return
	}

	purchase, err := buy(ctx.Request.Context(), caller(ctx), value)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapPurchase(purchase))
}

func (h *HTTPHandler) ExtractFunds(ctx *gin.Context) {
	extraction, err := h.sale.ExtractFundsRaised(ctx.Request.Context(), caller(ctx))
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapExtraction(extraction))
}

func (h *HTTPHandler) PauseSale(ctx *gin.Context) {
	if err := h.sale.Pause(caller(ctx)); err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) UnpauseSale(ctx *gin.Context) {
	if err := h.sale.Unpause(caller(ctx)); err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

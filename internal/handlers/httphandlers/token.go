package httphandlers

import (
	"fmt"
	"net/http"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) GetTokenBalance(ctx *gin.Context) {
	addr, ok := h.addressParam(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{
		Address: addr.Hex(),
		Balance: formatAmount(h.ledger.BalanceOf(addr)),
	})
}

func (h *HTTPHandler) GetHolders(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HoldersResponse{
		TotalSupply:     formatAmount(h.ledger.TotalSupply()),
		TransfersLocked: h.ledger.TransfersLocked(),
		Paused:          h.ledger.Paused(),
		IcoEndTime:      formatTime(h.ledger.ICOEndTime()),
		Holders:         mapHolders(h.ledger.Holders()),
	})
}

func (h *HTTPHandler) TransferTokens(ctx *gin.Context) {
	var req TransferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.abort(ctx, lib.WrapError(ErrBadRequest, err))
		return
	}

	amount, err := lib.ParseUnits(req.Amount, lib.Decimals)
	if err != nil {
		h.abort(ctx, err)
		return
	}

	to := common.HexToAddress(req.To)
	if err := h.ledger.Transfer(caller(ctx), to, amount); err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) PauseToken(ctx *gin.Context) {
	if err := h.ledger.Pause(caller(ctx)); err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) UnpauseToken(ctx *gin.Context) {
	if err := h.ledger.Unpause(caller(ctx)); err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) GetBankBalance(ctx *gin.Context) {
	addr, ok := h.addressParam(ctx)
	if !ok {
		return
	}
	balance, err := h.bank.BalanceOf(ctx.Request.Context(), addr)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, BalanceResponse{
		Address: addr.Hex(),
		Balance: formatAmount(balance),
	})
}

func (h *HTTPHandler) addressParam(ctx *gin.Context) (common.Address, bool) {
	param := ctx.Param("address")
	if !common.IsHexAddress(param) {
		h.abort(ctx, fmt.Errorf("%w: invalid address %q", ErrBadRequest, param))
		return common.Address{}, false
	}
	return common.HexToAddress(param), true
}

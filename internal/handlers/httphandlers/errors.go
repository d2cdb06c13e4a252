package httphandlers

import (
	"errors"
	"net/http"

	"github.com/Lumerin-protocol/crowdsale/internal/lib"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/receipts"
	"github.com/Lumerin-protocol/crowdsale/internal/repositories/valuebank"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale"
	"github.com/gin-gonic/gin"
)

var ErrBadRequest = errors.New("bad request")

var statusMap = []struct {
	err    error
	status int
}{
	{sale.ErrUnauthorized, http.StatusForbidden},

	{sale.ErrPaused, http.StatusConflict},
	{sale.ErrWrongPhase, http.StatusConflict},
	{sale.ErrAlreadyStarted, http.StatusConflict},
	{sale.ErrRatesAlreadySet, http.StatusConflict},
	{sale.ErrRatesNotSet, http.StatusConflict},
	{sale.ErrSoldOut, http.StatusConflict},
	{sale.ErrTransferLocked, http.StatusConflict},
	{sale.ErrNothingToExtract, http.StatusConflict},
	{sale.ErrAlreadyBound, http.StatusConflict},

	{sale.ErrInvalidConfig, http.StatusBadRequest},
	{sale.ErrZeroValue, http.StatusBadRequest},
	{lib.ErrInvalidAmount, http.StatusBadRequest},
	{ErrBadRequest, http.StatusBadRequest},

	{sale.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{valuebank.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{valuebank.ErrInboundRejected, http.StatusUnprocessableEntity},
	{valuebank.ErrInvalidTransfer, http.StatusUnprocessableEntity},

	{receipts.ErrNotFound, http.StatusNotFound},
}

// statusCode maps domain errors to http status, the first match wins
func statusCode(err error) int {
	for _, item := range statusMap {
		if errors.Is(err, item.err) {
			return item.status
		}
	}
	return http.StatusInternalServerError
}

func (h *HTTPHandler) abort(ctx *gin.Context, err error) {
	status := statusCode(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s failed: %s", ctx.Request.Method, ctx.Request.URL.Path, err)
	}
	ctx.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

package httphandlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultReceiptsLimit = 100
	maxReceiptsLimit     = 1000
)

func (h *HTTPHandler) GetReceipts(ctx *gin.Context) {
	from, err := strconv.ParseUint(ctx.DefaultQuery("from", "0"), 10, 64)
	if err != nil {
		h.abort(ctx, fmt.Errorf("%w: from: %s", ErrBadRequest, err))
		return
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultReceiptsLimit)))
	if err != nil || limit <= 0 {
		h.abort(ctx, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
		return
	}
	if limit > maxReceiptsLimit {
		limit = maxReceiptsLimit
	}

	items, err := h.receipts.List(ctx.Request.Context(), from, limit)
	if err != nil {
		h.abort(ctx, err)
		return
	}

	res := ReceiptsResponse{Receipts: make([]EventResponse, 0, len(items))}
	for _, item := range items {
		res.Receipts = append(res.Receipts, *mapReceipt(item))
	}
	if len(items) == limit {
		res.Next = items[len(items)-1].Seq + 1
	}
	ctx.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) GetReceipt(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		h.abort(ctx, fmt.Errorf("%w: invalid receipt id", ErrBadRequest))
		return
	}

	item, err := h.receipts.Get(ctx.Request.Context(), id)
	if err != nil {
		h.abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, mapReceipt(item))
}

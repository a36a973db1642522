package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/server/http/dto"
)

// BasketHandler manages basket endpoints.
type BasketHandler struct {
	facade BasketFacade
}

// NewBasketHandler constructs BasketHandler.
func NewBasketHandler(facade BasketFacade) *BasketHandler {
	return &BasketHandler{facade: facade}
}

// Snapshot handles GET /api/basket. 204 when no order is active.
func (h *BasketHandler) Snapshot(c *gin.Context) {
	order, err := h.facade.BasketSnapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Detail handles GET /api/basket/detail. 204 when no order is active.
func (h *BasketHandler) Detail(c *gin.Context) {
	detail, err := h.facade.BasketDetail(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNoContent)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toBasketDetailResponse(*detail))
}

// UpdateItem handles POST /api/items.
func (h *BasketHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.facade.UpdateItemCount(c.Request.Context(), req.ProductID, req.Delta)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, domainErrors.ErrInvalidDelta):
		c.Status(http.StatusUnprocessableEntity)
	case errors.Is(err, domainErrors.ErrOperationFailed):
		c.Status(http.StatusConflict)
	default:
		c.Status(http.StatusInternalServerError)
	}
}

// Clear handles DELETE /api/basket. 200 when an order was cancelled, 204 when
// there was nothing to cancel.
func (h *BasketHandler) Clear(c *gin.Context) {
	cancelled, err := h.facade.ClearBasket(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !cancelled {
		c.Status(http.StatusNoContent)
		return
	}
	c.Status(http.StatusOK)
}

// SnapshotStream handles GET /api/basket/stream as server-sent events.
func (h *BasketHandler) SnapshotStream(c *gin.Context) {
	ch := h.facade.BasketStream(c.Request.Context())
	sseHeaders(c)
	c.Stream(func(w io.Writer) bool {
		order, open := <-ch
		if !open {
			return false
		}
		if order == nil {
			c.SSEvent("basket", nil)
			return true
		}
		c.SSEvent("basket", toOrderResponse(*order))
		return true
	})
}

// DetailStream handles GET /api/basket/detail/stream as server-sent events.
func (h *BasketHandler) DetailStream(c *gin.Context) {
	ch := h.facade.BasketDetailStream(c.Request.Context())
	sseHeaders(c)
	c.Stream(func(w io.Writer) bool {
		detail, open := <-ch
		if !open {
			return false
		}
		if detail == nil {
			c.SSEvent("basket", nil)
			return true
		}
		c.SSEvent("basket", toBasketDetailResponse(*detail))
		return true
	})
}

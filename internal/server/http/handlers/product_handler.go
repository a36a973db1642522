package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
)

// ProductHandler manages catalog read endpoints.
type ProductHandler struct {
	facade ProductFacade
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(facade ProductFacade) *ProductHandler {
	return &ProductHandler{facade: facade}
}

// List handles GET /api/products.
func (h *ProductHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	products, err := h.facade.ProductsWithCount(c.Request.Context(), kind)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toProductResponses(products))
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	product, err := h.facade.ProductWithCount(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(*product))
}

// ListStream handles GET /api/products/stream as server-sent events.
func (h *ProductHandler) ListStream(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	ch := h.facade.ProductsWithCountStream(c.Request.Context(), kind)
	sseHeaders(c)
	c.Stream(func(w io.Writer) bool {
		products, open := <-ch
		if !open {
			return false
		}
		c.SSEvent("products", toProductResponses(products))
		return true
	})
}

// GetStream handles GET /api/products/:id/stream as server-sent events.
func (h *ProductHandler) GetStream(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	ch := h.facade.ProductWithCountStream(c.Request.Context(), productID)
	sseHeaders(c)
	c.Stream(func(w io.Writer) bool {
		product, open := <-ch
		if !open {
			return false
		}
		if product == nil {
			c.SSEvent("product", nil)
			return true
		}
		c.SSEvent("product", toProductResponse(*product))
		return true
	})
}

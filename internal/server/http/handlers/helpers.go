package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grocerline/basketd/internal/domain/model"
	"github.com/grocerline/basketd/internal/server/http/dto"
)

// parseKind reads the ?kind= query parameter, defaulting to the main catalog.
// Responds 400 and returns false when the value is unknown.
func parseKind(c *gin.Context) (model.ProductKind, bool) {
	raw := c.DefaultQuery("kind", string(model.KindCatalogItem))
	kind := model.ProductKind(raw)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown product kind"})
		return "", false
	}
	return kind, true
}

func toProductResponse(pc model.ProductWithCount) dto.ProductWithCountResponse {
	return dto.ProductWithCountResponse{
		ID:         pc.ID,
		ExternalID: pc.ExternalID,
		Name:       pc.Name,
		Price:      pc.Price,
		Attribute:  pc.Attribute,
		ImageURL:   pc.ImageURL,
		Kind:       string(pc.Kind),
		Count:      pc.Count,
	}
}

func toProductResponses(list []model.ProductWithCount) []dto.ProductWithCountResponse {
	result := make([]dto.ProductWithCountResponse, 0, len(list))
	for _, pc := range list {
		result = append(result, toProductResponse(pc))
	}
	return result
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:         order.ID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice,
	}
}

func toBasketDetailResponse(detail model.BasketDetail) dto.BasketDetailResponse {
	response := dto.BasketDetailResponse{
		Order: toOrderResponse(detail.Order),
		Items: make([]dto.BasketLineResponse, 0, len(detail.Items)),
	}
	for _, iw := range detail.Items {
		response.Items = append(response.Items, dto.BasketLineResponse{
			Product: toProductResponse(model.ProductWithCount{Product: iw.Product, Count: iw.Item.Count}),
			Count:   iw.Item.Count,
			CreatedAt: iw.Item.CreatedAt,
		})
	}
	return response
}

// sseHeaders prepares the response for a server-sent event stream.
func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
}

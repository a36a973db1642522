package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/server/http/dto"
	"github.com/grocerline/basketd/internal/worker"
)

// RetryStateSource exposes retry progress published by the sync retrier.
type RetryStateSource interface {
	States() <-chan worker.RetryState
}

// SyncHandler manages catalog sync endpoints.
type SyncHandler struct {
	facade SyncFacade
	states RetryStateSource
}

// NewSyncHandler constructs SyncHandler.
func NewSyncHandler(facade SyncFacade, states RetryStateSource) *SyncHandler {
	return &SyncHandler{facade: facade, states: states}
}

// Trigger handles POST /api/sync.
func (h *SyncHandler) Trigger(c *gin.Context) {
	err := h.facade.SyncIfNeeded(c.Request.Context())
	if err != nil {
		var fetchErr *domainErrors.FetchError
		switch {
		case errors.As(err, &fetchErr), errors.Is(err, domainErrors.ErrBodyEmpty):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)
}

// Status handles GET /api/sync/status: current flags plus an SSE stream of
// retry cooldown notices when the client asks for an event stream.
func (h *SyncHandler) Status(c *gin.Context) {
	status, err := h.facade.CatalogStatus(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, dto.SyncStatusResponse{
		CatalogLoaded:   status.CatalogLoaded,
		SuggestedLoaded: status.SuggestedLoaded,
	})
}

// RetryStream handles GET /api/sync/retries as server-sent events.
func (h *SyncHandler) RetryStream(c *gin.Context) {
	ch := h.states.States()
	sseHeaders(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case state := <-ch:
			c.SSEvent("retry", dto.RetryStateResponse{
				Kind:        string(state.Kind),
				Attempt:     state.Attempt,
				NextDelayMS: state.NextDelay.Milliseconds(),
				Terminal:    state.Terminal,
			})
			return !state.Terminal
		}
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collectique/backend/internal/database"
	"github.com/collectique/backend/internal/models"
	"github.com/collectique/backend/internal/services"
)

type CollectionHandler struct {
	itemStore       *database.ItemStore
	snapshotService *services.SnapshotService
}

func NewCollectionHandler(itemStore *database.ItemStore, snapshot *services.SnapshotService) *CollectionHandler {
	return &CollectionHandler{
		itemStore:       itemStore,
		snapshotService: snapshot,
	}
}

// GetItems returns all items in a collection
func (h *CollectionHandler) GetItems(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	collectionID := c.Param("id")

	items, err := h.itemStore.LoadItemsForCollection(c.Request.Context(), userID, collectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetStats returns aggregate purchase-vs-market performance for a collection
func (h *CollectionHandler) GetStats(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	collectionID := c.Param("id")

	items, err := h.itemStore.LoadItemsForCollection(c.Request.Context(), userID, collectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, services.CollectionPriceStats(items))
}

// GetValueHistory returns daily value snapshots for a period
func (h *CollectionHandler) GetValueHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	snapshots, err := h.snapshotService.GetHistory(period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}

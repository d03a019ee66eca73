package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/collectique/backend/internal/database"
	"github.com/collectique/backend/internal/models"
	"github.com/collectique/backend/internal/services"
)

type PriceHandler struct {
	manager       *services.PriceManager
	itemStore     *database.ItemStore
	refreshWorker *services.RefreshWorker
}

func NewPriceHandler(manager *services.PriceManager, itemStore *database.ItemStore, worker *services.RefreshWorker) *PriceHandler {
	return &PriceHandler{
		manager:       manager,
		itemStore:     itemStore,
		refreshWorker: worker,
	}
}

// RefreshItemPrice manually refreshes a single item's market price
func (h *PriceHandler) RefreshItemPrice(c *gin.Context) {
	itemID := c.Param("id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item id is required"})
		return
	}

	item, err := h.itemStore.LoadItem(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.manager.RefreshItemPrice(c.Request.Context(), *item)
	if err != nil {
		writePriceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": updated})
}

// RefreshCollectionPrices batch-refreshes every stale item in a collection
func (h *PriceHandler) RefreshCollectionPrices(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	collectionID := c.Param("id")

	items, err := h.itemStore.LoadItemsForCollection(c.Request.Context(), userID, collectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	processed := 0
	updated := h.manager.BatchRefresh(c.Request.Context(), items, func(done, total int, _ models.Item) {
		processed = done
	})

	c.JSON(http.StatusOK, gin.H{
		"items":     updated,
		"processed": processed,
	})
}

// GetItemTrend returns short/long-term trend analysis for an item
func (h *PriceHandler) GetItemTrend(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.PriceTrend(*item))
}

// GetItemPerformance returns purchase-vs-market performance for an item
func (h *PriceHandler) GetItemPerformance(c *gin.Context) {
	item, ok := h.loadItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, services.InvestmentPerformance(*item))
}

// GetPriceStatus returns refresh worker progress and marketplace quota
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.refreshWorker.GetStatus())
}

func (h *PriceHandler) loadItem(c *gin.Context) (*models.Item, bool) {
	itemID := c.Param("id")
	item, err := h.itemStore.LoadItem(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return item, true
}

// writePriceError maps the typed refresh errors onto HTTP responses.
func writePriceError(c *gin.Context, err error) {
	var rateLimited *services.RateLimitedError
	var authErr *services.AuthenticationError
	var throttled *services.ThrottledError
	var transient *services.TransientServerError
	var malformed *services.MalformedResponseError
	var persistence *services.PersistenceError

	switch {
	case errors.Is(err, services.ErrMissingSearchTerms):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &rateLimited):
		c.Header("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       err.Error(),
			"retry_after": rateLimited.RetryAfter.String(),
		})
	case errors.As(err, &authErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoResults):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &throttled), errors.As(err, &transient):
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("marketplace unavailable, try again later: %v", err)})
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

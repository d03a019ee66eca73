package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/collectique/backend/internal/models"
)

// ItemStore persists collection items through gorm. SaveItem is a
// full-replace-by-id upsert, matching how the mobile clients sync.
type ItemStore struct {
	db *gorm.DB
}

func NewItemStore(db *gorm.DB) *ItemStore {
	return &ItemStore{db: db}
}

// LoadItemsForCollection returns all items in a user's collection,
// oldest first.
func (s *ItemStore) LoadItemsForCollection(ctx context.Context, userID, collectionID string) ([]models.Item, error) {
	var items []models.Item
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND collection_id = ?", userID, collectionID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// LoadItem returns a single item by id.
func (s *ItemStore) LoadItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem upserts an item, replacing the stored row wholesale. Items
// without an id get one assigned.
func (s *ItemStore) SaveItem(ctx context.Context, userID, collectionID string, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UserID = userID
	item.CollectionID = collectionID

	return s.db.WithContext(ctx).Save(item).Error
}

// LoadTrackedItems returns every item with marketplace search terms
// configured, across all users. Used by the background refresh worker.
func (s *ItemStore) LoadTrackedItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := s.db.WithContext(ctx).
		Where("ebay_search_terms <> ''").
		Order("last_price_update ASC NULLS FIRST").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

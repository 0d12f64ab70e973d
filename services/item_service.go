package services

import (
	"context"
	"fmt"
	"time"
	"toycatalog_server/database"
	"toycatalog_server/imaging"
	"toycatalog_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

type ItemService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
	codec        *imaging.Codec
	store        *imaging.Store
}

func NewItemService(logger *gecho.Logger, db *database.DB, cacheService *CacheService, codec *imaging.Codec, store *imaging.Store) *ItemService {
	return &ItemService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
		codec:        codec,
		store:        store,
	}
}

// ItemListOptions contains the supported catalog list filters.
type ItemListOptions struct {
	Name        string `json:"name,omitempty"`         // substring match on item name
	FactoryName string `json:"factory_name,omitempty"` // substring match on factory name
}

// ListItems retrieves catalog items, optionally filtered, ordered by id.
func (is *ItemService) ListItems(ctx context.Context, opts *ItemListOptions) ([]tables.ToyItem, error) {
	startTime := time.Now()
	if opts == nil {
		opts = &ItemListOptions{}
	}

	var items []tables.ToyItem
	query := is.db.NewSelect().Model(&items).Order("ti.id ASC")
	if opts.Name != "" {
		query = query.Where("ti.name ILIKE ?", "%"+opts.Name+"%")
	}
	if opts.FactoryName != "" {
		query = query.Where("ti.factory_name ILIKE ?", "%"+opts.FactoryName+"%")
	}

	err := database.WithRetry(ctx, func() error {
		return query.Scan(ctx)
	})
	if err != nil {
		is.logger.Error("Failed to fetch items",
			gecho.Field("error", err),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	is.logger.Debug("Items fetched",
		gecho.Field("count", len(items)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return items, nil
}

// GetItemByID retrieves a single item, reading through the cache.
func (is *ItemService) GetItemByID(ctx context.Context, id int64) (*tables.ToyItem, error) {
	cached, err := is.cacheService.GetItemFromCache(id)
	if err != nil {
		is.logger.Warn("Failed to get item from cache", gecho.Field("error", err), gecho.Field("id", id))
	} else if cached != nil {
		return cached, nil
	}

	item, err := database.FindByID[tables.ToyItem](is.db, ctx, id)
	if err != nil {
		is.logger.Error("Failed to fetch item by ID", gecho.Field("id", id), gecho.Field("error", err))
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	go func() {
		if err := is.cacheService.SetItemInCache(item); err != nil {
			is.logger.Warn("Failed to cache item", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	return item, nil
}

// GetItemsByIDs retrieves the items matching ids, ordered by id. Unknown ids
// are silently absent from the result.
func (is *ItemService) GetItemsByIDs(ctx context.Context, ids []int64) ([]tables.ToyItem, error) {
	if len(ids) == 0 {
		return []tables.ToyItem{}, nil
	}
	items, err := database.FindByIDs[tables.ToyItem](is.db, ctx, ids)
	if err != nil {
		is.logger.Error("Failed to fetch items by ids", gecho.Field("error", err), gecho.Field("count", len(ids)))
		return nil, fmt.Errorf("failed to fetch items by ids: %w", err)
	}
	return items, nil
}

// CreateItem inserts a new catalog record. When imageData is present it is
// normalized through the codec and stored before the insert; an insert
// failure cleans the file back up.
func (is *ItemService) CreateItem(ctx context.Context, item *tables.ToyItem, imageData []byte) (*tables.ToyItem, error) {
	startTime := time.Now()

	if len(imageData) > 0 {
		processed, err := is.codec.Process(imageData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		path, err := is.store.Write(processed)
		if err != nil {
			return nil, fmt.Errorf("store item image: %w", err)
		}
		item.ImagePath = path
	}

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	created, err := database.Create(is.db, ctx, item)
	if err != nil {
		if item.ImagePath != "" {
			if rmErr := is.store.Remove(item.ImagePath); rmErr != nil {
				is.logger.Warn("Failed to clean up image after insert failure", gecho.Field("error", rmErr))
			}
		}
		is.logger.Error("Failed to create item",
			gecho.Field("error", err),
			gecho.Field("factory_code", item.FactoryCode),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	is.logger.Info("Item created",
		gecho.Field("id", created.ID),
		gecho.Field("factory_code", created.FactoryCode),
		gecho.Field("duration", time.Since(startTime)),
	)
	return created, nil
}

// UpdateItem replaces the full field set of a record and optionally replaces
// the stored image. The origin sheet and timestamps stay server-managed, and
// the old image file is only removed once the row update succeeded.
func (is *ItemService) UpdateItem(ctx context.Context, id int64, item *tables.ToyItem, imageData []byte) (*tables.ToyItem, error) {
	existing, err := database.FindByID[tables.ToyItem](is.db, ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	if existing == nil {
		return nil, ErrItemNotFound
	}

	updateData := map[string]any{
		"factory_code":     item.FactoryCode,
		"factory_name":     item.FactoryName,
		"name":             item.Name,
		"packaging":        item.Packaging,
		"packing_quantity": item.PackingQuantity,
		"unit_price":       item.UnitPrice,
		"gross_weight":     item.GrossWeight,
		"net_weight":       item.NetWeight,
		"outer_box_size":   item.OuterBoxSize,
		"product_size":     item.ProductSize,
		"inner_box":        item.InnerBox,
		"remarks":          item.Remarks,
	}

	oldImage := ""
	if len(imageData) > 0 {
		processed, err := is.codec.Process(imageData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		path, err := is.store.Write(processed)
		if err != nil {
			return nil, fmt.Errorf("store item image: %w", err)
		}
		updateData["image_path"] = path
		oldImage = existing.ImagePath
	}
	updateData["updated_at"] = time.Now()

	err = database.WithRetry(ctx, func() error {
		_, err := is.db.NewUpdate().
			Model(&updateData).
			Table("toy_items").
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		if newPath, ok := updateData["image_path"].(string); ok {
			if rmErr := is.store.Remove(newPath); rmErr != nil {
				is.logger.Warn("Failed to clean up image after update failure", gecho.Field("error", rmErr))
			}
		}
		is.logger.Error("Failed to update item", gecho.Field("id", id), gecho.Field("error", err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if oldImage != "" {
		if err := is.store.Remove(oldImage); err != nil {
			is.logger.Warn("Failed to remove replaced image", gecho.Field("error", err), gecho.Field("path", oldImage))
		}
	}

	go func() {
		if err := is.cacheService.DeleteItemFromCache(id); err != nil {
			is.logger.Warn("Failed to evict item from cache", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	updated, err := database.FindByID[tables.ToyItem](is.db, ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated item: %w", err)
	}
	if updated == nil {
		return nil, ErrItemNotFound
	}

	is.logger.Info("Item updated", gecho.Field("id", id), gecho.Field("fields", len(updateData)))
	return updated, nil
}

// DeleteItem removes the record and its stored image file. File removal is
// best-effort; the row is the source of truth.
func (is *ItemService) DeleteItem(ctx context.Context, id int64) error {
	existing, err := database.FindByID[tables.ToyItem](is.db, ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch item: %w", err)
	}
	if existing == nil {
		return ErrItemNotFound
	}

	affected, err := database.DeleteByID[tables.ToyItem](is.db, ctx, id)
	if err != nil {
		is.logger.Error("Failed to delete item", gecho.Field("id", id), gecho.Field("error", err))
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}

	if existing.ImagePath != "" {
		if err := is.store.Remove(existing.ImagePath); err != nil {
			is.logger.Warn("Failed to remove image of deleted item",
				gecho.Field("error", err),
				gecho.Field("path", existing.ImagePath),
			)
		}
	}

	go func() {
		if err := is.cacheService.DeleteItemFromCache(id); err != nil {
			is.logger.Warn("Failed to evict item from cache", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	is.logger.Info("Item deleted", gecho.Field("id", id))
	return nil
}

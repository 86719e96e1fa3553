package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mathematico-payments/internal/model"
)

var ErrItemNotFound = errors.New("catalog item not found")

// CatalogRepository is the purchasable-item lookup the order service
// depends on. Two implementations exist behind this interface: the
// gorm-backed live catalog and a static in-process fallback, selected once
// at startup by configuration. Callers never know which one is active.
type CatalogRepository interface {
	// FindPurchasable returns the item only if it exists and is published.
	FindPurchasable(ctx context.Context, itemType model.ItemType, itemID string) (*model.CatalogItem, error)
	Seed(ctx context.Context) error
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) FindPurchasable(ctx context.Context, itemType model.ItemType, itemID string) (*model.CatalogItem, error) {
	var item model.CatalogItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND type = ? AND published = ?", itemID, itemType, true).
		First(&item).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	return &item, nil
}

func (r *catalogRepoImpl) Seed(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fallbackItems()).Error
}

// staticCatalogRepoImpl serves a fixed in-memory catalog. Used when the
// content store is not reachable or CATALOG_SOURCE=fallback.
type staticCatalogRepoImpl struct {
	items map[string]*model.CatalogItem
}

func NewStaticCatalogRepository() CatalogRepository {
	items := make(map[string]*model.CatalogItem)
	for _, item := range fallbackItems() {
		items[string(item.Type)+"/"+item.ID] = item
	}
	return &staticCatalogRepoImpl{items: items}
}

func (r *staticCatalogRepoImpl) FindPurchasable(ctx context.Context, itemType model.ItemType, itemID string) (*model.CatalogItem, error) {
	item, ok := r.items[string(itemType)+"/"+itemID]
	if !ok || !item.Published {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (r *staticCatalogRepoImpl) Seed(ctx context.Context) error {
	return nil
}

func fallbackItems() []*model.CatalogItem {
	return []*model.CatalogItem{
		{ID: "course_algebra_101", Type: model.ItemCourse, Title: "Algebra Foundations", Price: 50000, Currency: "INR", Published: true},
		{ID: "course_calculus_201", Type: model.ItemCourse, Title: "Calculus II", Price: 75000, Currency: "INR", Published: true},
		{ID: "book_trigonometry", Type: model.ItemBook, Title: "Trigonometry Workbook", Price: 19900, Currency: "INR", Published: true},
		{ID: "live_jee_crash", Type: model.ItemLiveClass, Title: "JEE Crash Course Live", Price: 120000, Currency: "INR", Published: true},
		{ID: "course_draft", Type: model.ItemCourse, Title: "Unreleased Course", Price: 10000, Currency: "INR", Published: false},
	}
}

package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mathematico-payments/internal/model"
)

// Both catalog implementations must agree on what is purchasable.
func TestCatalogImplementations(t *testing.T) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.CatalogItem{}))

	live := NewCatalogRepository(db)
	require.NoError(t, live.Seed(context.Background()))
	// Seeding twice is a no-op, not an error.
	require.NoError(t, live.Seed(context.Background()))

	impls := map[string]CatalogRepository{
		"live":     live,
		"fallback": NewStaticCatalogRepository(),
	}

	for name, repo := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			item, err := repo.FindPurchasable(ctx, model.ItemCourse, "course_algebra_101")
			require.NoError(t, err)
			require.Equal(t, int64(50000), item.Price)
			require.Equal(t, "INR", item.Currency)

			_, err = repo.FindPurchasable(ctx, model.ItemCourse, "course_missing")
			require.ErrorIs(t, err, ErrItemNotFound)

			// Unpublished items are not purchasable.
			_, err = repo.FindPurchasable(ctx, model.ItemCourse, "course_draft")
			require.ErrorIs(t, err, ErrItemNotFound)

			// Type must match the id: a course id is not a book.
			_, err = repo.FindPurchasable(ctx, model.ItemBook, "course_algebra_101")
			require.ErrorIs(t, err, ErrItemNotFound)
		})
	}
}

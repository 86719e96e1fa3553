package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mathematico-payments/internal/model"
)

type EnrollmentRepository interface {
	// Grant is insert-or-ignore on (user_id, item_type, item_id), so a
	// replayed apply can never double-grant.
	Grant(ctx context.Context, tx *gorm.DB, grant *model.EnrollmentGrant) error
	Owns(ctx context.Context, userID string, itemType model.ItemType, itemID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.EnrollmentGrant, error)
}

type enrollmentRepoImpl struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepoImpl{
		db: db,
	}
}

func (r *enrollmentRepoImpl) Grant(ctx context.Context, tx *gorm.DB, grant *model.EnrollmentGrant) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_type"}, {Name: "item_id"}},
		DoNothing: true,
	}).Create(grant).Error
}

func (r *enrollmentRepoImpl) Owns(ctx context.Context, userID string, itemType model.ItemType, itemID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.EnrollmentGrant{}).
		Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Count(&count).Error

	return count > 0, err
}

func (r *enrollmentRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.EnrollmentGrant, error) {
	var grants []*model.EnrollmentGrant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&grants).Error

	if err != nil {
		return nil, err
	}

	return grants, nil
}

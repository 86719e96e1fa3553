package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"mathematico-payments/internal/model"
)

type PaymentIntentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, intent *model.PaymentIntent) error
	FindByProviderOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.PaymentIntent, error)
	FindByProviderPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.PaymentIntent, error)
	// MarkCompleted moves pending -> completed. Returns false when the
	// intent was not in pending (transition rejected, nothing written).
	MarkCompleted(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (bool, error)
	// MarkFailed moves pending -> failed.
	MarkFailed(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (bool, error)
	// MarkRefunded moves completed -> refunded, the only transition out of
	// a terminal state.
	MarkRefunded(ctx context.Context, tx *gorm.DB, orderID string) (bool, error)
}

type paymentIntentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) PaymentIntentRepository {
	return &paymentIntentRepoImpl{
		db: db,
	}
}

func (r *paymentIntentRepoImpl) Create(ctx context.Context, tx *gorm.DB, intent *model.PaymentIntent) error {
	return tx.WithContext(ctx).Create(intent).Error
}

func (r *paymentIntentRepoImpl) FindByProviderOrderID(ctx context.Context, tx *gorm.DB, orderID string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := tx.WithContext(ctx).
		Where("provider_order_id = ?", orderID).
		First(&intent).Error

	if err != nil {
		return nil, err
	}

	return &intent, nil
}

func (r *paymentIntentRepoImpl) FindByProviderPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	err := tx.WithContext(ctx).
		Where("provider_payment_id = ?", paymentID).
		First(&intent).Error

	if err != nil {
		return nil, err
	}

	return &intent, nil
}

func (r *paymentIntentRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (bool, error) {
	return r.transition(ctx, tx, orderID, []model.IntentStatus{model.StatusPending}, map[string]interface{}{
		"status":              model.StatusCompleted,
		"provider_payment_id": paymentID,
		"updated_at":          time.Now(),
	})
}

func (r *paymentIntentRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, orderID, paymentID string) (bool, error) {
	return r.transition(ctx, tx, orderID, []model.IntentStatus{model.StatusPending}, map[string]interface{}{
		"status":              model.StatusFailed,
		"provider_payment_id": paymentID,
		"updated_at":          time.Now(),
	})
}

func (r *paymentIntentRepoImpl) MarkRefunded(ctx context.Context, tx *gorm.DB, orderID string) (bool, error) {
	return r.transition(ctx, tx, orderID, []model.IntentStatus{model.StatusCompleted}, map[string]interface{}{
		"status":     model.StatusRefunded,
		"updated_at": time.Now(),
	})
}

// transition applies a guarded UPDATE. The WHERE clause on the current
// status is what enforces the monotonic state machine: an update that
// matches zero rows means the intent was not in an allowed source state.
func (r *paymentIntentRepoImpl) transition(ctx context.Context, tx *gorm.DB, orderID string, from []model.IntentStatus, set map[string]interface{}) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.PaymentIntent{}).
		Where("provider_order_id = ? AND status IN ?", orderID, from).
		Updates(set)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mathematico-payments/internal/model"
)

// Outcomes recorded against a ledger entry.
const (
	OutcomeApplied           = "applied"
	OutcomeInvalidTransition = "ignored_invalid_transition"
)

// ProcessedEventRepository is the idempotency ledger. FirstSeen must run
// inside the same transaction as the status transition it guards; the
// primary key on event_key is the only serialization point for concurrent
// duplicate deliveries. A check-then-insert here would be a race.
type ProcessedEventRepository interface {
	// FirstSeen atomically claims eventKey. Returns true exactly once per
	// key; concurrent duplicates observe false.
	FirstSeen(ctx context.Context, tx *gorm.DB, eventKey, eventType string) (bool, error)
	// SetOutcome records what the transition did, within the same tx.
	SetOutcome(ctx context.Context, tx *gorm.DB, eventKey, outcome string) error
	Seen(ctx context.Context, eventKey string) (bool, error)
}

type processedEventRepoImpl struct {
	db *gorm.DB
}

func NewProcessedEventRepository(db *gorm.DB) ProcessedEventRepository {
	return &processedEventRepoImpl{db: db}
}

func (r *processedEventRepoImpl) FirstSeen(ctx context.Context, tx *gorm.DB, eventKey, eventType string) (bool, error) {
	now := time.Now()
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProcessedEvent{
			EventKey:    eventKey,
			EventType:   eventType,
			FirstSeenAt: now,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *processedEventRepoImpl) SetOutcome(ctx context.Context, tx *gorm.DB, eventKey, outcome string) error {
	return tx.WithContext(ctx).Model(&model.ProcessedEvent{}).
		Where("event_key = ?", eventKey).
		Update("outcome", outcome).Error
}

func (r *processedEventRepoImpl) Seen(ctx context.Context, eventKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProcessedEvent{}).
		Where("event_key = ?", eventKey).
		Count(&count).Error

	return count > 0, err
}

package model

import "time"

type IntentStatus string

const (
	StatusPending   IntentStatus = "pending"
	StatusCompleted IntentStatus = "completed"
	StatusFailed    IntentStatus = "failed"
	StatusRefunded  IntentStatus = "refunded"
)

type ItemType string

const (
	ItemCourse    ItemType = "course"
	ItemBook      ItemType = "book"
	ItemLiveClass ItemType = "live-class"
)

func ParseItemType(s string) (ItemType, bool) {
	switch ItemType(s) {
	case ItemCourse, ItemBook, ItemLiveClass:
		return ItemType(s), true
	}
	return "", false
}

// PaymentIntent is the local record of an attempted payment. It is created
// in status=pending and only ever status-transitioned, never deleted.
type PaymentIntent struct {
	ProviderOrderID   string       `gorm:"primaryKey;size:64;not null"` // razorpay order id
	ProviderPaymentID string       `gorm:"size:64;index"`               // set once a payment finalizes
	UserID            string       `gorm:"size:64;index;not null"`
	ItemType          ItemType     `gorm:"size:16;not null"`
	ItemID            string       `gorm:"size:64;index;not null"`
	Amount            int64        `gorm:"not null"` // minor currency units (paise)
	Currency          string       `gorm:"size:8;not null"`
	Receipt           string       `gorm:"size:64"`
	Status            IntentStatus `gorm:"size:16;index;not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProcessedEvent is the idempotency ledger. The primary key on EventKey is
// what serializes concurrent duplicate deliveries; a row exists iff the
// transition for that key has been applied (or intentionally ignored).
type ProcessedEvent struct {
	EventKey    string `gorm:"primaryKey;size:128;not null"` // payment id or refund id
	EventType   string `gorm:"size:64;index"`
	Outcome     string `gorm:"size:40"`
	FirstSeenAt time.Time
	CreatedAt   time.Time
}

type EnrollmentGrant struct {
	ID                string   `gorm:"primaryKey;size:64;not null"`
	UserID            string   `gorm:"size:64;uniqueIndex:idx_user_item;not null"`
	ItemType          ItemType `gorm:"size:16;uniqueIndex:idx_user_item;not null"`
	ItemID            string   `gorm:"size:64;uniqueIndex:idx_user_item;not null"`
	ProviderPaymentID string   `gorm:"size:64"`
	CreatedAt         time.Time
}

type CatalogItem struct {
	ID        string   `gorm:"primaryKey;size:64;not null"`
	Type      ItemType `gorm:"size:16;index;not null"`
	Title     string   `gorm:"size:255"`
	Price     int64    `gorm:"not null"` // minor units
	Currency  string   `gorm:"size:8;not null"`
	Published bool     `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

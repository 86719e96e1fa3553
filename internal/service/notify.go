package service

import (
	"github.com/rs/zerolog/log"

	"mathematico-payments/internal/model"
)

// Notifier receives the downstream side effects of a completed purchase
// (confirmation mail, analytics). Called off the request path.
type Notifier interface {
	EnrollmentGranted(grant *model.EnrollmentGrant)
}

type logNotifier struct{}

func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) EnrollmentGranted(grant *model.EnrollmentGrant) {
	log.Info().
		Str("user_id", grant.UserID).
		Str("item_type", string(grant.ItemType)).
		Str("item_id", grant.ItemID).
		Str("payment_id", grant.ProviderPaymentID).
		Msg("enrollment granted")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"mathematico-payments/internal/cache"
	"mathematico-payments/internal/client"
	"mathematico-payments/internal/config"
	"mathematico-payments/internal/dto"
	"mathematico-payments/internal/model"
	"mathematico-payments/internal/repository"
	"mathematico-payments/internal/signature"
)

var (
	ErrInvalidAmount      = errors.New("amount must be a positive integer in minor units")
	ErrUnknownItemType    = errors.New("unknown item type")
	ErrItemNotPurchasable = errors.New("item does not exist or is not purchasable")
	ErrAlreadyOwned       = errors.New("item already owned by user")
	ErrAmountMismatch     = errors.New("amount does not match item price")
	ErrSignatureMismatch  = errors.New("webhook signature verification failed")
	ErrMalformedPayload   = errors.New("malformed webhook payload")
	ErrIntentNotFound     = errors.New("payment intent not found")

	// internal sentinel: rolls the applying transaction back without
	// surfacing an error to the provider.
	errUnknownOrder = errors.New("unknown provider order id")
)

const defaultCurrency = "INR"

// WebhookResult is what the handler turns into the response body.
type WebhookResult struct {
	AlreadyProcessed bool
	Outcome          string
}

type PaymentService interface {
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderData, error)
	VerifyPayment(ctx context.Context, userID string, req *dto.VerifyRequest) (*dto.VerifyResponse, error)
	HandleWebhook(ctx context.Context, signatureHeader string, body []byte) (*WebhookResult, error)
	GetIntent(ctx context.Context, userID, orderID string) (*model.PaymentIntent, error)
}

type paymentServiceImpl struct {
	db             *gorm.DB
	razorpayClient client.RazorpayClient
	webhookSecret  string
	keySecret      string
	catalogRepo    repository.CatalogRepository
	intentRepo     repository.PaymentIntentRepository
	ledgerRepo     repository.ProcessedEventRepository
	enrollmentRepo repository.EnrollmentRepository
	deduper        cache.Deduper
	notifier       Notifier
}

func NewPaymentService(
	db *gorm.DB,
	razorpayClient client.RazorpayClient,
	razorpayCfg *config.Razorpay,
	catalogRepo repository.CatalogRepository,
	intentRepo repository.PaymentIntentRepository,
	ledgerRepo repository.ProcessedEventRepository,
	enrollmentRepo repository.EnrollmentRepository,
	deduper cache.Deduper,
	notifier Notifier,
) PaymentService {
	return &paymentServiceImpl{
		db:             db,
		razorpayClient: razorpayClient,
		webhookSecret:  razorpayCfg.WebhookSecret,
		keySecret:      razorpayCfg.KeySecret,
		catalogRepo:    catalogRepo,
		intentRepo:     intentRepo,
		ledgerRepo:     ledgerRepo,
		enrollmentRepo: enrollmentRepo,
		deduper:        deduper,
		notifier:       notifier,
	}
}

func (s *paymentServiceImpl) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderData, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	itemType, ok := model.ParseItemType(req.Notes.ItemType)
	if !ok {
		return nil, ErrUnknownItemType
	}

	item, err := s.catalogRepo.FindPurchasable(ctx, itemType, req.Notes.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotPurchasable
		}
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	// The catalog owns the price; a client-supplied amount that disagrees
	// with it is rejected rather than trusted.
	if req.Amount != item.Price {
		return nil, ErrAmountMismatch
	}

	owned, err := s.enrollmentRepo.Owns(ctx, userID, itemType, item.ID)
	if err != nil {
		return nil, fmt.Errorf("ownership check: %w", err)
	}
	if owned {
		return nil, ErrAlreadyOwned
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}

	providerOrder, err := s.razorpayClient.CreateOrder(ctx, &client.CreateOrderRequest{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"item_type": string(itemType),
			"item_id":   item.ID,
			"user_id":   userID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	intent := &model.PaymentIntent{
		ProviderOrderID: providerOrder.ID,
		UserID:          userID,
		ItemType:        itemType,
		ItemID:          item.ID,
		Amount:          req.Amount,
		Currency:        currency,
		Receipt:         receipt,
		Status:          model.StatusPending,
	}
	if err := s.intentRepo.Create(ctx, s.db, intent); err != nil {
		return nil, fmt.Errorf("store payment intent: %w", err)
	}

	log.Info().
		Str("order_id", providerOrder.ID).
		Str("user_id", userID).
		Str("item_id", item.ID).
		Int64("amount", req.Amount).
		Msg("payment intent created")

	return &dto.OrderData{
		OrderID:  providerOrder.ID,
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, signatureHeader string, body []byte) (*WebhookResult, error) {
	// Signature first: nothing is read or written before this passes.
	if !signature.VerifyWebhookSignature(body, signatureHeader, s.webhookSecret) {
		log.Warn().Msg("webhook rejected: signature verification failed")
		return nil, ErrSignatureMismatch
	}

	var event model.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	switch event.Event {
	case model.EventPaymentCaptured:
		p := event.Payload.Payment.Entity
		return s.applyPayment(ctx, applyParams{
			eventKey:  p.ID,
			eventType: event.Event,
			orderID:   p.OrderID,
			paymentID: p.ID,
			captured:  true,
		})
	case model.EventPaymentFailed:
		p := event.Payload.Payment.Entity
		return s.applyPayment(ctx, applyParams{
			eventKey:  p.ID,
			eventType: event.Event,
			orderID:   p.OrderID,
			paymentID: p.ID,
			captured:  false,
		})
	case model.EventRefundProcessed:
		return s.applyRefund(ctx, &event.Payload.Refund.Entity)
	default:
		// Intentionally ignored; a 200 keeps the provider from retrying.
		log.Info().Str("event", event.Event).Msg("webhook event ignored")
		return &WebhookResult{Outcome: "ignored_unrecognized_event"}, nil
	}
}

func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, userID string, req *dto.VerifyRequest) (*dto.VerifyResponse, error) {
	if !signature.VerifyCheckoutSignature(req.OrderID, req.PaymentID, req.Signature, s.keySecret) {
		// An untrusted confirmation is not proof the payment failed; the
		// intent stays pending and the webhook remains the authority.
		log.Warn().
			Str("order_id", req.OrderID).
			Str("user_id", userID).
			Msg("checkout signature verification failed")
		return &dto.VerifyResponse{
			Success: false,
			Message: "signature verification failed",
		}, nil
	}

	// Keyed by the provider payment id, the same keyspace the webhook
	// uses, so the two paths serialize on the same ledger row.
	result, err := s.applyPayment(ctx, applyParams{
		eventKey:    req.PaymentID,
		eventType:   "checkout.verified",
		orderID:     req.OrderID,
		paymentID:   req.PaymentID,
		captured:    true,
		enforceUser: userID,
	})
	if err != nil {
		if errors.Is(err, ErrIntentNotFound) {
			return &dto.VerifyResponse{
				Success: false,
				Message: "unknown order",
			}, nil
		}
		return nil, err
	}

	intent, err := s.intentRepo.FindByProviderOrderID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load intent: %w", err)
	}

	return &dto.VerifyResponse{
		Success: true,
		Data: &dto.VerifyData{
			Status:           string(intent.Status),
			AlreadyProcessed: result.AlreadyProcessed,
		},
	}, nil
}

func (s *paymentServiceImpl) GetIntent(ctx context.Context, userID, orderID string) (*model.PaymentIntent, error) {
	intent, err := s.intentRepo.FindByProviderOrderID(ctx, s.db, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIntentNotFound
		}
		return nil, err
	}
	if intent.UserID != userID {
		return nil, ErrIntentNotFound
	}
	return intent, nil
}

type applyParams struct {
	eventKey  string
	eventType string
	orderID   string
	paymentID string
	captured  bool
	// when set, the intent must belong to this user (client-driven path)
	enforceUser string
}

// applyPayment runs the Applying stage: ledger claim, guarded transition
// and grant, all in one transaction. Both the webhook and the verification
// endpoint funnel through here.
func (s *paymentServiceImpl) applyPayment(ctx context.Context, p applyParams) (*WebhookResult, error) {
	if p.eventKey == "" || p.orderID == "" {
		return nil, fmt.Errorf("%w: missing payment or order id", ErrMalformedPayload)
	}

	if s.deduper != nil && s.deduper.Hit(ctx, p.eventKey) {
		if seen, err := s.ledgerRepo.Seen(ctx, p.eventKey); err == nil && seen {
			return &WebhookResult{AlreadyProcessed: true}, nil
		}
	}

	res := &WebhookResult{}
	var granted *model.EnrollmentGrant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, err := s.ledgerRepo.FirstSeen(ctx, tx, p.eventKey, p.eventType)
		if err != nil {
			return fmt.Errorf("ledger claim: %w", err)
		}
		if !first {
			res.AlreadyProcessed = true
			return nil
		}

		intent, err := s.intentRepo.FindByProviderOrderID(ctx, tx, p.orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownOrder
			}
			return fmt.Errorf("find intent: %w", err)
		}
		if p.enforceUser != "" && intent.UserID != p.enforceUser {
			return errUnknownOrder
		}

		var transitioned bool
		if p.captured {
			transitioned, err = s.intentRepo.MarkCompleted(ctx, tx, p.orderID, p.paymentID)
		} else {
			transitioned, err = s.intentRepo.MarkFailed(ctx, tx, p.orderID, p.paymentID)
		}
		if err != nil {
			return fmt.Errorf("transition intent: %w", err)
		}

		if !transitioned {
			// e.g. a captured event for an already-refunded intent. The
			// terminal status wins; the event is recorded so the provider
			// stops retrying it.
			log.Warn().
				Str("order_id", p.orderID).
				Str("event", p.eventType).
				Str("status", string(intent.Status)).
				Msg("event rejected: invalid status transition")
			res.Outcome = repository.OutcomeInvalidTransition
			return s.ledgerRepo.SetOutcome(ctx, tx, p.eventKey, res.Outcome)
		}

		if p.captured {
			granted = &model.EnrollmentGrant{
				ID:                uuid.NewString(),
				UserID:            intent.UserID,
				ItemType:          intent.ItemType,
				ItemID:            intent.ItemID,
				ProviderPaymentID: p.paymentID,
			}
			if err := s.enrollmentRepo.Grant(ctx, tx, granted); err != nil {
				return fmt.Errorf("grant enrollment: %w", err)
			}
		}

		res.Outcome = repository.OutcomeApplied
		return s.ledgerRepo.SetOutcome(ctx, tx, p.eventKey, res.Outcome)
	})

	if errors.Is(err, errUnknownOrder) {
		if p.enforceUser != "" {
			return nil, ErrIntentNotFound
		}
		// Unknown or irrelevant event: not an error, no mutation. The
		// rollback also discarded the ledger row, so a later relevant
		// delivery of this payment is still applied.
		log.Info().
			Str("order_id", p.orderID).
			Str("event", p.eventType).
			Msg("webhook references unknown order, ignoring")
		return &WebhookResult{Outcome: "ignored_unknown_order"}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.deduper != nil {
		s.deduper.Mark(ctx, p.eventKey)
	}
	if granted != nil && s.notifier != nil {
		// Deferred so slow downstream work never delays the webhook
		// response into the provider's retry window.
		go s.notifier.EnrollmentGranted(granted)
	}

	return res, nil
}

func (s *paymentServiceImpl) applyRefund(ctx context.Context, refund *model.RazorpayRefundEntity) (*WebhookResult, error) {
	if refund.ID == "" || refund.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing refund or payment id", ErrMalformedPayload)
	}

	res := &WebhookResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, err := s.ledgerRepo.FirstSeen(ctx, tx, refund.ID, model.EventRefundProcessed)
		if err != nil {
			return fmt.Errorf("ledger claim: %w", err)
		}
		if !first {
			res.AlreadyProcessed = true
			return nil
		}

		intent, err := s.intentRepo.FindByProviderPaymentID(ctx, tx, refund.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownOrder
			}
			return fmt.Errorf("find intent by payment id: %w", err)
		}

		transitioned, err := s.intentRepo.MarkRefunded(ctx, tx, intent.ProviderOrderID)
		if err != nil {
			return fmt.Errorf("transition intent: %w", err)
		}
		if !transitioned {
			log.Warn().
				Str("order_id", intent.ProviderOrderID).
				Str("refund_id", refund.ID).
				Msg("refund rejected: intent not in completed status")
			res.Outcome = repository.OutcomeInvalidTransition
			return s.ledgerRepo.SetOutcome(ctx, tx, refund.ID, res.Outcome)
		}

		res.Outcome = repository.OutcomeApplied
		return s.ledgerRepo.SetOutcome(ctx, tx, refund.ID, res.Outcome)
	})

	if errors.Is(err, errUnknownOrder) {
		log.Info().
			Str("refund_id", refund.ID).
			Str("payment_id", refund.PaymentID).
			Msg("refund references unknown payment, ignoring")
		return &WebhookResult{Outcome: "ignored_unknown_order"}, nil
	}
	if err != nil {
		return nil, err
	}

	return res, nil
}

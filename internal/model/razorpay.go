package model

// Razorpay webhook payload shapes. Only the fields the service reads are
// declared; everything else in the payload is ignored by the decoder.

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundProcessed = "refund.processed"
)

type RazorpayWebhookEvent struct {
	Event     string          `json:"event"`
	AccountID string          `json:"account_id"`
	CreatedAt int64           `json:"created_at"`
	Payload   RazorpayPayload `json:"payload"`
}

type RazorpayPayload struct {
	Payment RazorpayPaymentWrapper `json:"payment"`
	Refund  RazorpayRefundWrapper  `json:"refund"`
}

type RazorpayPaymentWrapper struct {
	Entity RazorpayPaymentEntity `json:"entity"`
}

type RazorpayRefundWrapper struct {
	Entity RazorpayRefundEntity `json:"entity"`
}

type RazorpayPaymentEntity struct {
	ID               string `json:"id"`       // pay_...
	OrderID          string `json:"order_id"` // order_...
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	Email            string `json:"email"`
	Contact          string `json:"contact"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type RazorpayRefundEntity struct {
	ID        string `json:"id"`         // rfnd_...
	PaymentID string `json:"payment_id"` // pay_...
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

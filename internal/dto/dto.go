package dto

// Request and response bodies use camelCase at the HTTP edge; storage models
// keep gorm's snake_case. The conversion happens only here.

type OrderNotes struct {
	ItemType string `json:"itemType" validate:"required,oneof=course book live-class"`
	ItemID   string `json:"itemId" validate:"required"`
}

type CreateOrderRequest struct {
	Amount   int64      `json:"amount" validate:"required,gt=0"`
	Currency string     `json:"currency" validate:"omitempty,len=3"`
	Receipt  string     `json:"receipt" validate:"omitempty,max=40"`
	Notes    OrderNotes `json:"notes" validate:"required"`
}

type CreateOrderResponse struct {
	Success bool      `json:"success"`
	Data    OrderData `json:"data"`
}

type OrderData struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type VerifyRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyResponse struct {
	Success bool        `json:"success"`
	Data    *VerifyData `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type VerifyData struct {
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
}

type WebhookResponse struct {
	Success          bool `json:"success"`
	AlreadyProcessed bool `json:"alreadyProcessed"`
}

type IntentData struct {
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	ItemType string `json:"itemType"`
	ItemID   string `json:"itemId"`
}

type EnrollmentData struct {
	ItemType  string `json:"itemType"`
	ItemID    string `json:"itemId"`
	GrantedAt string `json:"grantedAt"`
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mathematico-payments/internal/dto"
	"mathematico-payments/internal/service"
)

// Provider callbacks are answered within this window; anything slower and
// Razorpay's own timeout-retry would amplify duplicate delivery.
const webhookTimeout = 5 * time.Second

type WebhookHandler struct {
	paymentService service.PaymentService
}

func NewWebhookHandler(paymentService service.PaymentService) *WebhookHandler {
	return &WebhookHandler{
		paymentService: paymentService,
	}
}

func (h *WebhookHandler) HandleRazorpayWebhook(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), webhookTimeout)
	defer cancel()

	// The raw bytes feed both verification and decoding; re-serializing
	// before verifying would break the signature.
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"message": "unreadable body",
		})
	}

	sig := c.Request().Header.Get("X-Razorpay-Signature")

	result, err := h.paymentService.HandleWebhook(ctx, sig, body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureMismatch), errors.Is(err, service.ErrMalformedPayload):
			// 4xx: the provider must not retry a permanently-invalid
			// delivery forever.
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": err.Error(),
			})
		default:
			// 5xx: transient, the provider redelivers and the ledger
			// makes the retry safe.
			return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed")
		}
	}

	return c.JSON(http.StatusOK, &dto.WebhookResponse{
		Success:          true,
		AlreadyProcessed: result.AlreadyProcessed,
	})
}

func (h *WebhookHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

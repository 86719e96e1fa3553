package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mathematico-payments/internal/client"
	"mathematico-payments/internal/dto"
	"mathematico-payments/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func userIDFromContext(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	return userID, nil
}

func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	data, err := h.paymentService.CreateOrder(ctx, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrUnknownItemType),
			errors.Is(err, service.ErrItemNotPurchasable),
			errors.Is(err, service.ErrAlreadyOwned),
			errors.Is(err, service.ErrAmountMismatch):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, client.ErrProviderUnavailable):
			// Retryable for the caller, unlike the 400s above.
			return echo.NewHTTPError(http.StatusBadGateway, "payment provider unavailable, retry later")
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, &dto.CreateOrderResponse{
		Success: true,
		Data:    *data,
	})
}

func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.paymentService.VerifyPayment(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	orderID := c.Param("orderID")
	intent, err := h.paymentService.GetIntent(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, service.ErrIntentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "payment not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data": dto.IntentData{
			OrderID:  intent.ProviderOrderID,
			Status:   string(intent.Status),
			Amount:   intent.Amount,
			Currency: intent.Currency,
			ItemType: string(intent.ItemType),
			ItemID:   intent.ItemID,
		},
	})
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mathematico-payments/internal/dto"
	"mathematico-payments/internal/service"
)

type EnrollmentHandler struct {
	enrollmentService service.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
	}
}

func (h *EnrollmentHandler) GetEnrollments(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	grants, err := h.enrollmentService.GetEnrollments(ctx, userID)
	if err != nil {
		return err
	}

	data := make([]dto.EnrollmentData, len(grants))
	for i, g := range grants {
		data[i] = dto.EnrollmentData{
			ItemType:  string(g.ItemType),
			ItemID:    g.ItemID,
			GrantedAt: g.CreatedAt.Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

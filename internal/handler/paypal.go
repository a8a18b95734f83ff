package handler

import (
	"net/http"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type PaypalHandler struct {
	paymentService service.PaymentService
}

func NewPaypalHandler(paymentService service.PaymentService) *PaypalHandler {
	return &PaypalHandler{
		paymentService: paymentService,
	}
}

// HandleSuccess is where PayPal sends the buyer after approval.
// The token query param carries the PayPal order id.
func (h *PaypalHandler) HandleSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	order, err := h.paymentService.CapturePaypalOrder(ctx, token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

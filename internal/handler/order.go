package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHandler struct {
	orderService   service.OrderService
	paymentService service.PaymentService
}

func NewOrderHandler(orderService service.OrderService, paymentService service.PaymentService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// CreateOrder turns the caller's cart into an order. Retries carrying the same
// Idempotency-Key header get the original order back.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	if len(key) > 128 {
		return echo.NewHTTPError(http.StatusBadRequest, "Idempotency-Key is too long")
	}
	req.IdempotencyKey = key

	order, err := h.orderService.CreateOrder(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListOrders(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrder(ctx, userID, orderID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.CancelOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) PayOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.PayOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.paymentService.PayOrder(ctx, userID, orderID, req.Nonce)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

// StartPaypalCheckout returns the PayPal approval url for an order placed with method paypal.
func (h *OrderHandler) StartPaypalCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	checkout, err := h.paymentService.StartPaypalCheckout(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, checkout)
}

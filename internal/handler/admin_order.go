package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"
	"time"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminOrderHandler struct {
	orderService service.OrderService
}

func NewAdminOrderHandler(orderService service.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{
		orderService: orderService,
	}
}

func (h *AdminOrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrdersForAdmin(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) GetOrder(c echo.Context) error {
	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrderForAdmin(c.Request().Context(), orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrderForAdmin(ctx, orderID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

// ExportOrders streams every order as an xlsx attachment.
func (h *AdminOrderHandler) ExportOrders(c echo.Context) error {
	// buffered so a failed export still gets a JSON error instead of a half-written file
	var buf bytes.Buffer
	if err := h.orderService.ExportOrdersForAdmin(c.Request().Context(), &buf); err != nil {
		return err
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	fee, err := deliveryFee(c)
	if err != nil {
		return err
	}

	var req dto.AddToCartRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cart, err := h.cartService.AddLine(ctx, userID, &req, fee)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	fee, err := deliveryFee(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.GetCart(ctx, userID, fee)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	lineID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fee, err := deliveryFee(c)
	if err != nil {
		return err
	}

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	cart, err := h.cartService.UpdateQuantity(ctx, userID, lineID, req.Quantity, fee)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	lineID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fee, err := deliveryFee(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.RemoveLine(ctx, userID, lineID, fee)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.cartService.ClearCart(ctx, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "cart cleared"})
}

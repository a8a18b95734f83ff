package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type TypeHandler struct {
	typeService service.TypeService
}

func NewTypeHandler(typeService service.TypeService) *TypeHandler {
	return &TypeHandler{
		typeService: typeService,
	}
}

func (h *TypeHandler) CreateType(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	productType, err := h.typeService.Create(ctx, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, productType)
}

func (h *TypeHandler) ListTypes(c echo.Context) error {
	types, err := h.typeService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, types)
}

func (h *TypeHandler) GetType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	productType, err := h.typeService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, productType)
}

func (h *TypeHandler) RenameType(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	productType, err := h.typeService.Rename(ctx, id, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, productType)
}

func (h *TypeHandler) DeleteType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.typeService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "type deleted"})
}

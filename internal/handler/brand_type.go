package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type BrandTypeHandler struct {
	brandTypeService service.BrandTypeService
}

func NewBrandTypeHandler(brandTypeService service.BrandTypeService) *BrandTypeHandler {
	return &BrandTypeHandler{
		brandTypeService: brandTypeService,
	}
}

func (h *BrandTypeHandler) CreateBrandType(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BrandTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := h.brandTypeService.Create(ctx, req.BrandID, req.TypeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, link)
}

func (h *BrandTypeHandler) ListBrandTypes(c echo.Context) error {
	links, err := h.brandTypeService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, links)
}

func (h *BrandTypeHandler) GetBrandType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	link, err := h.brandTypeService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, link)
}

func (h *BrandTypeHandler) ListByBrand(c echo.Context) error {
	brandID, err := idParam(c, "brandId")
	if err != nil {
		return err
	}

	links, err := h.brandTypeService.ListByBrand(c.Request().Context(), brandID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, links)
}

func (h *BrandTypeHandler) ListByType(c echo.Context) error {
	typeID, err := idParam(c, "typeId")
	if err != nil {
		return err
	}

	links, err := h.brandTypeService.ListByType(c.Request().Context(), typeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, links)
}

func (h *BrandTypeHandler) UpdateBrandType(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.BrandTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	link, err := h.brandTypeService.Update(ctx, id, req.BrandID, req.TypeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, link)
}

func (h *BrandTypeHandler) DeleteBrandType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.brandTypeService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "brand type deleted"})
}

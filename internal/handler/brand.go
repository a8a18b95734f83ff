package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type BrandHandler struct {
	brandService service.BrandService
}

func NewBrandHandler(brandService service.BrandService) *BrandHandler {
	return &BrandHandler{
		brandService: brandService,
	}
}

func (h *BrandHandler) CreateBrand(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	brand, err := h.brandService.Create(ctx, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, brand)
}

func (h *BrandHandler) ListBrands(c echo.Context) error {
	brands, err := h.brandService.List(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, brands)
}

func (h *BrandHandler) GetBrand(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	brand, err := h.brandService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) RenameBrand(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.NameRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	brand, err := h.brandService.Rename(ctx, id, req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) DeleteBrand(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.brandService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "brand deleted"})
}

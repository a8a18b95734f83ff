package handler

import (
	"net/http"
	"shopco-api/internal/dto"
	"shopco-api/internal/service"

	"github.com/labstack/echo/v4"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

// ListProducts accepts brandId, typeId, minPrice, maxPrice, search, page, limit, sortBy and sortOrder.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	query, err := parseProductQuery(c)
	if err != nil {
		return err
	}

	products, err := h.productService.List(ctx, query)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func parseProductQuery(c echo.Context) (dto.ProductQuery, error) {
	var (
		query dto.ProductQuery
		err   error
	)

	if query.BrandID, err = optionalUintQuery(c, "brandId"); err != nil {
		return query, err
	}
	if query.TypeID, err = optionalUintQuery(c, "typeId"); err != nil {
		return query, err
	}
	if query.MinPrice, err = optionalDecimalQuery(c, "minPrice"); err != nil {
		return query, err
	}
	if query.MaxPrice, err = optionalDecimalQuery(c, "maxPrice"); err != nil {
		return query, err
	}
	if query.Page, err = intQuery(c, "page"); err != nil {
		return query, err
	}
	if query.Limit, err = intQuery(c, "limit"); err != nil {
		return query, err
	}

	query.Search = c.QueryParam("search")
	query.SortBy = c.QueryParam("sortBy")
	query.SortOrder = c.QueryParam("sortOrder")
	return query, nil
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	product, err := h.productService.Update(ctx, id, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.productService.Delete(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "product deleted"})
}

// UploadImage expects a multipart form with the file under "image".
func (h *ProductHandler) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer file.Close()

	product, err := h.productService.UploadImage(ctx, id, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) AddInfo(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ProductInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	info, err := h.productService.AddInfo(ctx, id, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, info)
}

func (h *ProductHandler) ListInfo(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	info, err := h.productService.ListInfo(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, info)
}

func (h *ProductHandler) UpdateInfo(c echo.Context) error {
	ctx := c.Request().Context()

	infoID, err := idParam(c, "infoId")
	if err != nil {
		return err
	}

	var req dto.UpdateProductInfoRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	info, err := h.productService.UpdateInfo(ctx, infoID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, info)
}

func (h *ProductHandler) DeleteInfo(c echo.Context) error {
	infoID, err := idParam(c, "infoId")
	if err != nil {
		return err
	}

	if err := h.productService.DeleteInfo(c.Request().Context(), infoID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "product info deleted"})
}

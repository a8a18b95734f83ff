package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"shopco-api/internal/apperr"
	"shopco-api/internal/cache"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
	"shopco-api/internal/storage"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var productSortColumns = map[string]string{
	"name":      "name",
	"price":     "price",
	"rating":    "rating",
	"createdAt": "created_at",
}

var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

type ProductService interface {
	Create(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error)
	List(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error)
	Get(ctx context.Context, productID uint) (*dto.ProductResponse, error)
	Update(ctx context.Context, productID uint, req *dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, productID uint) error
	UploadImage(ctx context.Context, productID uint, filename string, size int64, r io.Reader) (*dto.ProductResponse, error)

	AddInfo(ctx context.Context, productID uint, req *dto.ProductInfoRequest) (*dto.ProductInfoResponse, error)
	ListInfo(ctx context.Context, productID uint) ([]dto.ProductInfoResponse, error)
	UpdateInfo(ctx context.Context, infoID uint, req *dto.UpdateProductInfoRequest) (*dto.ProductInfoResponse, error)
	DeleteInfo(ctx context.Context, infoID uint) error
}

type productServiceImpl struct {
	productRepo  repository.ProductRepository
	infoRepo     repository.ProductInfoRepository
	brandRepo    repository.BrandRepository
	typeRepo     repository.TypeRepository
	productCache cache.ProductCache
	imageStore   storage.ImageStore
	maxImageSize int64
}

// NewProductService wires the product catalog. productCache and imageStore may be nil.
func NewProductService(
	productRepo repository.ProductRepository,
	infoRepo repository.ProductInfoRepository,
	brandRepo repository.BrandRepository,
	typeRepo repository.TypeRepository,
	productCache cache.ProductCache,
	imageStore storage.ImageStore,
	maxImageSize int64,
) ProductService {
	return &productServiceImpl{
		productRepo:  productRepo,
		infoRepo:     infoRepo,
		brandRepo:    brandRepo,
		typeRepo:     typeRepo,
		productCache: productCache,
		imageStore:   imageStore,
		maxImageSize: maxImageSize,
	}
}

func validatePricing(price, oldPrice, rating *decimal.Decimal, discount *int) error {
	if price != nil && price.IsNegative() {
		return apperr.InvalidArgument("price cannot be negative")
	}
	if oldPrice != nil && oldPrice.IsNegative() {
		return apperr.InvalidArgument("old price cannot be negative")
	}
	if rating != nil && (rating.IsNegative() || rating.GreaterThan(decimal.NewFromInt(5))) {
		return apperr.InvalidArgument("rating must be between 0 and 5")
	}
	if discount != nil && (*discount < 0 || *discount > 100) {
		return apperr.InvalidArgument("discount must be between 0 and 100")
	}
	return nil
}

func (s *productServiceImpl) checkCatalogRefs(ctx context.Context, brandID, typeID *uint) error {
	if brandID != nil {
		exists, err := s.brandRepo.Exists(ctx, *brandID)
		if err != nil {
			return fmt.Errorf("check brand: %w", err)
		}
		if !exists {
			return apperr.InvalidArgument("brand with id %d does not exist", *brandID)
		}
	}
	if typeID != nil {
		exists, err := s.typeRepo.Exists(ctx, *typeID)
		if err != nil {
			return fmt.Errorf("check type: %w", err)
		}
		if !exists {
			return apperr.InvalidArgument("type with id %d does not exist", *typeID)
		}
	}
	return nil
}

func (s *productServiceImpl) Create(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArgument("product name is required")
	}
	if err := validatePricing(&req.Price, req.OldPrice, req.Rating, req.Discount); err != nil {
		return nil, err
	}
	if err := s.checkCatalogRefs(ctx, &req.BrandID, &req.TypeID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:     name,
		Price:    req.Price,
		Img:      req.Img,
		Discount: req.Discount,
		TypeID:   req.TypeID,
		BrandID:  req.BrandID,
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.OldPrice != nil {
		product.OldPrice = decimal.NewNullDecimal(*req.OldPrice)
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.load(ctx, product.ID)
}

func (s *productServiceImpl) List(ctx context.Context, query dto.ProductQuery) (*dto.ProductListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		return nil, apperr.InvalidArgument("limit must not exceed %d", maxPageSize)
	}

	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	column, ok := productSortColumns[sortBy]
	if !ok {
		return nil, apperr.InvalidArgument("cannot sort products by %q", sortBy)
	}

	var desc bool
	switch strings.ToUpper(query.SortOrder) {
	case "", "DESC":
		desc = true
	case "ASC":
		desc = false
	default:
		return nil, apperr.InvalidArgument("sort order must be ASC or DESC")
	}

	products, total, err := s.productRepo.FindMany(ctx, repository.ProductFilter{
		BrandID:    query.BrandID,
		TypeID:     query.TypeID,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
		Search:     strings.TrimSpace(query.Search),
		SortColumn: column,
		SortDesc:   desc,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	resp := &dto.ProductListResponse{
		Products:   make([]dto.ProductResponse, 0, len(products)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	return resp, nil
}

func (s *productServiceImpl) Get(ctx context.Context, productID uint) (*dto.ProductResponse, error) {
	if s.productCache != nil {
		cached, ok, err := s.productCache.Get(ctx, productID)
		if err != nil {
			slog.WarnContext(ctx, "product cache read failed", "product_id", productID, "err", err)
		} else if ok {
			return cached, nil
		}
	}

	resp, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}

	if s.productCache != nil {
		if err := s.productCache.Set(ctx, resp); err != nil {
			slog.WarnContext(ctx, "product cache write failed", "product_id", productID, "err", err)
		}
	}
	return resp, nil
}

func (s *productServiceImpl) load(ctx context.Context, productID uint) (*dto.ProductResponse, error) {
	product, err := s.productRepo.FindDetailed(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", productID)
	}

	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productServiceImpl) invalidate(ctx context.Context, productID uint) {
	invalidateProducts(ctx, s.productCache, productID)
}

// invalidateProducts drops cached views. Failures are logged; the entries expire on their own.
func invalidateProducts(ctx context.Context, productCache cache.ProductCache, productIDs ...uint) {
	if productCache == nil {
		return
	}
	for _, productID := range productIDs {
		if err := productCache.Invalidate(ctx, productID); err != nil {
			slog.WarnContext(ctx, "product cache invalidation failed", "product_id", productID, "err", err)
		}
	}
}

func (s *productServiceImpl) Update(ctx context.Context, productID uint, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", productID)
	}
	if err := validatePricing(req.Price, req.OldPrice, req.Rating, req.Discount); err != nil {
		return nil, err
	}
	if err := s.checkCatalogRefs(ctx, req.BrandID, req.TypeID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.InvalidArgument("product name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.OldPrice != nil {
		fields["old_price"] = decimal.NewNullDecimal(*req.OldPrice)
	}
	if req.Rating != nil {
		fields["rating"] = *req.Rating
	}
	if req.Img != nil {
		fields["img"] = *req.Img
	}
	if req.Discount != nil {
		fields["discount"] = *req.Discount
	}
	if req.BrandID != nil {
		fields["brand_id"] = *req.BrandID
	}
	if req.TypeID != nil {
		fields["type_id"] = *req.TypeID
	}

	if len(fields) > 0 {
		if err := s.productRepo.Update(ctx, productID, fields); err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}
		s.invalidate(ctx, productID)
	}
	return s.load(ctx, productID)
}

func (s *productServiceImpl) Delete(ctx context.Context, productID uint) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return notFoundOr(err, "get product", "product %d not found", productID)
	}

	deleted, err := s.productRepo.Delete(ctx, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return apperr.NotFound("product %d not found", productID)
	}

	s.removeImage(ctx, product.Img)
	s.invalidate(ctx, productID)
	return nil
}

func (s *productServiceImpl) removeImage(ctx context.Context, location *string) {
	if s.imageStore == nil || location == nil || *location == "" {
		return
	}
	if err := s.imageStore.Delete(ctx, *location); err != nil {
		slog.WarnContext(ctx, "remove product image", "location", *location, "err", err)
	}
}

// UploadImage stores a jpg/png/gif as product-<unix millis>-<uuid><ext> and
// replaces the product's previous image.
func (s *productServiceImpl) UploadImage(ctx context.Context, productID uint, filename string, size int64, r io.Reader) (*dto.ProductResponse, error) {
	if s.imageStore == nil {
		return nil, apperr.Unavailable("image uploads are not configured")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedImageExts[ext]
	if !ok {
		return nil, apperr.InvalidArgument("only image files (jpg, jpeg, png, gif) are allowed")
	}
	if size > s.maxImageSize {
		return nil, apperr.InvalidArgument("image must not exceed %d bytes", s.maxImageSize)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", productID)
	}

	name := fmt.Sprintf("product-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	location, err := s.imageStore.Save(ctx, name, contentType, io.LimitReader(r, s.maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("store product image: %w", err)
	}

	if err := s.productRepo.Update(ctx, productID, map[string]interface{}{"img": location}); err != nil {
		s.removeImage(ctx, &location)
		return nil, fmt.Errorf("update product image: %w", err)
	}

	s.removeImage(ctx, product.Img)
	s.invalidate(ctx, productID)
	return s.load(ctx, productID)
}

func (s *productServiceImpl) AddInfo(ctx context.Context, productID uint, req *dto.ProductInfoRequest) (*dto.ProductInfoResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", productID)
	}

	info := &model.ProductInfo{
		ProductID:   productID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	if info.Title == "" {
		return nil, apperr.InvalidArgument("info title is required")
	}
	if err := s.infoRepo.Create(ctx, info); err != nil {
		return nil, fmt.Errorf("create product info: %w", err)
	}

	s.invalidate(ctx, productID)
	resp := toProductInfoResponse(info)
	return &resp, nil
}

func (s *productServiceImpl) ListInfo(ctx context.Context, productID uint) ([]dto.ProductInfoResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", productID)
	}

	infos, err := s.infoRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list product info: %w", err)
	}

	out := make([]dto.ProductInfoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, toProductInfoResponse(info))
	}
	return out, nil
}

func (s *productServiceImpl) UpdateInfo(ctx context.Context, infoID uint, req *dto.UpdateProductInfoRequest) (*dto.ProductInfoResponse, error) {
	info, err := s.infoRepo.FindByID(ctx, infoID)
	if err != nil {
		return nil, notFoundOr(err, "get product info", "product info %d not found", infoID)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.InvalidArgument("info title cannot be empty")
		}
		fields["title"] = title
		info.Title = title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
		info.Description = *req.Description
	}

	if len(fields) > 0 {
		if err := s.infoRepo.Update(ctx, infoID, fields); err != nil {
			return nil, fmt.Errorf("update product info: %w", err)
		}
		s.invalidate(ctx, info.ProductID)
	}

	resp := toProductInfoResponse(info)
	return &resp, nil
}

func (s *productServiceImpl) DeleteInfo(ctx context.Context, infoID uint) error {
	info, err := s.infoRepo.FindByID(ctx, infoID)
	if err != nil {
		return notFoundOr(err, "get product info", "product info %d not found", infoID)
	}

	if _, err := s.infoRepo.Delete(ctx, infoID); err != nil {
		return fmt.Errorf("delete product info: %w", err)
	}
	s.invalidate(ctx, info.ProductID)
	return nil
}

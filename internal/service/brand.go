package service

import (
	"context"
	"fmt"
	"log/slog"
	"shopco-api/internal/apperr"
	"shopco-api/internal/cache"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
	"strings"
)

type BrandService interface {
	Create(ctx context.Context, name string) (*dto.BrandResponse, error)
	List(ctx context.Context) ([]dto.BrandResponse, error)
	Get(ctx context.Context, id uint) (*dto.BrandResponse, error)
	Rename(ctx context.Context, id uint, name string) (*dto.BrandResponse, error)
	Delete(ctx context.Context, id uint) error
}

type brandServiceImpl struct {
	brandRepo    repository.BrandRepository
	productRepo  repository.ProductRepository
	productCache cache.ProductCache
}

// NewBrandService builds the brand catalog. Product views embed the brand name,
// so renames drop them from productCache, which may be nil.
func NewBrandService(
	brandRepo repository.BrandRepository,
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
) BrandService {
	return &brandServiceImpl{
		brandRepo:    brandRepo,
		productRepo:  productRepo,
		productCache: productCache,
	}
}

func (s *brandServiceImpl) Create(ctx context.Context, name string) (*dto.BrandResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("brand name is required")
	}

	brand := &model.Brand{Name: name}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, conflictOr(err, "create brand", "brand %q already exists", name)
	}

	resp := toBrandResponse(brand)
	return &resp, nil
}

func (s *brandServiceImpl) List(ctx context.Context) ([]dto.BrandResponse, error) {
	brands, err := s.brandRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}

	out := make([]dto.BrandResponse, 0, len(brands))
	for _, b := range brands {
		out = append(out, toBrandResponse(b))
	}
	return out, nil
}

func (s *brandServiceImpl) Get(ctx context.Context, id uint) (*dto.BrandResponse, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get brand", "brand %d not found", id)
	}

	resp := toBrandResponse(brand)
	return &resp, nil
}

func (s *brandServiceImpl) Rename(ctx context.Context, id uint, name string) (*dto.BrandResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("brand name is required")
	}
	if _, err := s.brandRepo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "get brand", "brand %d not found", id)
	}

	if err := s.brandRepo.Rename(ctx, id, name); err != nil {
		return nil, conflictOr(err, "rename brand", "brand %q already exists", name)
	}
	s.invalidateProducts(ctx, id)

	return s.Get(ctx, id)
}

func (s *brandServiceImpl) invalidateProducts(ctx context.Context, id uint) {
	if s.productCache == nil {
		return
	}

	productIDs, err := s.productRepo.FindIDsByBrand(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "list products for cache invalidation failed", "brand_id", id, "err", err)
		return
	}
	invalidateProducts(ctx, s.productCache, productIDs...)
}

func (s *brandServiceImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := s.brandRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	if !deleted {
		return apperr.NotFound("brand %d not found", id)
	}
	return nil
}

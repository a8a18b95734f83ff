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

type TypeService interface {
	Create(ctx context.Context, name string) (*dto.TypeResponse, error)
	List(ctx context.Context) ([]dto.TypeResponse, error)
	Get(ctx context.Context, id uint) (*dto.TypeResponse, error)
	Rename(ctx context.Context, id uint, name string) (*dto.TypeResponse, error)
	Delete(ctx context.Context, id uint) error
}

type typeServiceImpl struct {
	typeRepo     repository.TypeRepository
	productRepo  repository.ProductRepository
	productCache cache.ProductCache
}

// NewTypeService builds the type catalog. Product views embed the type name,
// so renames drop them from productCache, which may be nil.
func NewTypeService(
	typeRepo repository.TypeRepository,
	productRepo repository.ProductRepository,
	productCache cache.ProductCache,
) TypeService {
	return &typeServiceImpl{
		typeRepo:     typeRepo,
		productRepo:  productRepo,
		productCache: productCache,
	}
}

func (s *typeServiceImpl) Create(ctx context.Context, name string) (*dto.TypeResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("type name is required")
	}

	productType := &model.Type{Name: name}
	if err := s.typeRepo.Create(ctx, productType); err != nil {
		return nil, conflictOr(err, "create type", "type %q already exists", name)
	}

	resp := toTypeResponse(productType)
	return &resp, nil
}

func (s *typeServiceImpl) List(ctx context.Context) ([]dto.TypeResponse, error) {
	types, err := s.typeRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list types: %w", err)
	}

	out := make([]dto.TypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, toTypeResponse(t))
	}
	return out, nil
}

func (s *typeServiceImpl) Get(ctx context.Context, id uint) (*dto.TypeResponse, error) {
	productType, err := s.typeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get type", "type %d not found", id)
	}

	resp := toTypeResponse(productType)
	return &resp, nil
}

func (s *typeServiceImpl) Rename(ctx context.Context, id uint, name string) (*dto.TypeResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArgument("type name is required")
	}
	if _, err := s.typeRepo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "get type", "type %d not found", id)
	}

	if err := s.typeRepo.Rename(ctx, id, name); err != nil {
		return nil, conflictOr(err, "rename type", "type %q already exists", name)
	}
	s.invalidateProducts(ctx, id)

	return s.Get(ctx, id)
}

func (s *typeServiceImpl) invalidateProducts(ctx context.Context, id uint) {
	if s.productCache == nil {
		return
	}

	productIDs, err := s.productRepo.FindIDsByType(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "list products for cache invalidation failed", "type_id", id, "err", err)
		return
	}
	invalidateProducts(ctx, s.productCache, productIDs...)
}

func (s *typeServiceImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := s.typeRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete type: %w", err)
	}
	if !deleted {
		return apperr.NotFound("type %d not found", id)
	}
	return nil
}

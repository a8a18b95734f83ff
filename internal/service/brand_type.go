package service

import (
	"context"
	"fmt"
	"shopco-api/internal/apperr"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
)

type BrandTypeService interface {
	Create(ctx context.Context, brandID, typeID uint) (*dto.BrandTypeResponse, error)
	List(ctx context.Context) ([]dto.BrandTypeResponse, error)
	Get(ctx context.Context, id uint) (*dto.BrandTypeResponse, error)
	ListByBrand(ctx context.Context, brandID uint) ([]dto.BrandTypeResponse, error)
	ListByType(ctx context.Context, typeID uint) ([]dto.BrandTypeResponse, error)
	Update(ctx context.Context, id, brandID, typeID uint) (*dto.BrandTypeResponse, error)
	Delete(ctx context.Context, id uint) error
}

type brandTypeServiceImpl struct {
	brandTypeRepo repository.BrandTypeRepository
	brandRepo     repository.BrandRepository
	typeRepo      repository.TypeRepository
}

func NewBrandTypeService(
	brandTypeRepo repository.BrandTypeRepository,
	brandRepo repository.BrandRepository,
	typeRepo repository.TypeRepository,
) BrandTypeService {
	return &brandTypeServiceImpl{
		brandTypeRepo: brandTypeRepo,
		brandRepo:     brandRepo,
		typeRepo:      typeRepo,
	}
}

func (s *brandTypeServiceImpl) checkRefs(ctx context.Context, brandID, typeID uint) error {
	exists, err := s.brandRepo.Exists(ctx, brandID)
	if err != nil {
		return fmt.Errorf("check brand: %w", err)
	}
	if !exists {
		return apperr.NotFound("brand %d not found", brandID)
	}

	exists, err = s.typeRepo.Exists(ctx, typeID)
	if err != nil {
		return fmt.Errorf("check type: %w", err)
	}
	if !exists {
		return apperr.NotFound("type %d not found", typeID)
	}
	return nil
}

func (s *brandTypeServiceImpl) Create(ctx context.Context, brandID, typeID uint) (*dto.BrandTypeResponse, error) {
	if err := s.checkRefs(ctx, brandID, typeID); err != nil {
		return nil, err
	}

	exists, err := s.brandTypeRepo.Exists(ctx, brandID, typeID)
	if err != nil {
		return nil, fmt.Errorf("check brand type: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("brand %d is already linked to type %d", brandID, typeID)
	}

	link := &model.BrandType{BrandID: brandID, TypeID: typeID}
	if err := s.brandTypeRepo.Create(ctx, link); err != nil {
		return nil, conflictOr(err, "create brand type", "brand %d is already linked to type %d", brandID, typeID)
	}
	return s.Get(ctx, link.ID)
}

func toBrandTypeResponses(links []*model.BrandType) []dto.BrandTypeResponse {
	out := make([]dto.BrandTypeResponse, 0, len(links))
	for _, link := range links {
		out = append(out, toBrandTypeResponse(link))
	}
	return out
}

func (s *brandTypeServiceImpl) List(ctx context.Context) ([]dto.BrandTypeResponse, error) {
	links, err := s.brandTypeRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brand types: %w", err)
	}
	return toBrandTypeResponses(links), nil
}

func (s *brandTypeServiceImpl) Get(ctx context.Context, id uint) (*dto.BrandTypeResponse, error) {
	link, err := s.brandTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get brand type", "brand type %d not found", id)
	}

	resp := toBrandTypeResponse(link)
	return &resp, nil
}

func (s *brandTypeServiceImpl) ListByBrand(ctx context.Context, brandID uint) ([]dto.BrandTypeResponse, error) {
	links, err := s.brandTypeRepo.FindByBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand types by brand: %w", err)
	}
	return toBrandTypeResponses(links), nil
}

func (s *brandTypeServiceImpl) ListByType(ctx context.Context, typeID uint) ([]dto.BrandTypeResponse, error) {
	links, err := s.brandTypeRepo.FindByType(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("list brand types by type: %w", err)
	}
	return toBrandTypeResponses(links), nil
}

func (s *brandTypeServiceImpl) Update(ctx context.Context, id, brandID, typeID uint) (*dto.BrandTypeResponse, error) {
	current, err := s.brandTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get brand type", "brand type %d not found", id)
	}
	if current.BrandID == brandID && current.TypeID == typeID {
		resp := toBrandTypeResponse(current)
		return &resp, nil
	}

	if err := s.checkRefs(ctx, brandID, typeID); err != nil {
		return nil, err
	}
	if err := s.brandTypeRepo.Update(ctx, id, brandID, typeID); err != nil {
		return nil, conflictOr(err, "update brand type", "brand %d is already linked to type %d", brandID, typeID)
	}
	return s.Get(ctx, id)
}

func (s *brandTypeServiceImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := s.brandTypeRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete brand type: %w", err)
	}
	if !deleted {
		return apperr.NotFound("brand type %d not found", id)
	}
	return nil
}

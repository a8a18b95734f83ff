package repository

import (
	"context"
	"shopco-api/internal/model"

	"gorm.io/gorm"
)

type BrandTypeRepository interface {
	Create(ctx context.Context, link *model.BrandType) error
	FindAll(ctx context.Context) ([]*model.BrandType, error)
	FindByID(ctx context.Context, id uint) (*model.BrandType, error)
	FindByBrand(ctx context.Context, brandID uint) ([]*model.BrandType, error)
	FindByType(ctx context.Context, typeID uint) ([]*model.BrandType, error)
	Exists(ctx context.Context, brandID, typeID uint) (bool, error)
	Update(ctx context.Context, id, brandID, typeID uint) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type brandTypeRepoImpl struct {
	db *gorm.DB
}

func NewBrandTypeRepository(db *gorm.DB) BrandTypeRepository {
	return &brandTypeRepoImpl{
		db: db,
	}
}

func (r *brandTypeRepoImpl) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Brand").Preload("Type")
}

func (r *brandTypeRepoImpl) Create(ctx context.Context, link *model.BrandType) error {
	return r.db.WithContext(ctx).Omit("Brand", "Type").Create(link).Error
}

func (r *brandTypeRepoImpl) FindAll(ctx context.Context) ([]*model.BrandType, error) {
	var links []*model.BrandType
	if err := r.withRelations(ctx).Order("id ASC").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *brandTypeRepoImpl) FindByID(ctx context.Context, id uint) (*model.BrandType, error) {
	var link model.BrandType
	err := r.withRelations(ctx).
		Where("id = ?", id).
		First(&link).Error

	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *brandTypeRepoImpl) FindByBrand(ctx context.Context, brandID uint) ([]*model.BrandType, error) {
	var links []*model.BrandType
	err := r.withRelations(ctx).
		Where("brand_id = ?", brandID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *brandTypeRepoImpl) FindByType(ctx context.Context, typeID uint) ([]*model.BrandType, error) {
	var links []*model.BrandType
	err := r.withRelations(ctx).
		Where("type_id = ?", typeID).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *brandTypeRepoImpl) Exists(ctx context.Context, brandID, typeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.BrandType{}).
		Where("brand_id = ? AND type_id = ?", brandID, typeID).
		Count(&count).Error

	return count > 0, err
}

func (r *brandTypeRepoImpl) Update(ctx context.Context, id, brandID, typeID uint) error {
	return r.db.WithContext(ctx).Model(&model.BrandType{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"brand_id": brandID,
			"type_id":  typeID,
		}).Error
}

func (r *brandTypeRepoImpl) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.BrandType{}, id)
	return result.RowsAffected > 0, result.Error
}

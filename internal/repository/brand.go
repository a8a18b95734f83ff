package repository

import (
	"context"
	"shopco-api/internal/model"

	"gorm.io/gorm"
)

type BrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	FindAll(ctx context.Context) ([]*model.Brand, error)
	FindByID(ctx context.Context, id uint) (*model.Brand, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Rename(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type brandRepoImpl struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepoImpl{
		db: db,
	}
}

func (r *brandRepoImpl) Create(ctx context.Context, brand *model.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *brandRepoImpl) FindAll(ctx context.Context) ([]*model.Brand, error) {
	var brands []*model.Brand
	err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error
	if err != nil {
		return nil, err
	}

	return brands, nil
}

func (r *brandRepoImpl) FindByID(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&brand).Error

	if err != nil {
		return nil, err
	}

	return &brand, nil
}

func (r *brandRepoImpl) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Brand{}).
		Where("id = ?", id).
		Count(&count).Error

	return count > 0, err
}

func (r *brandRepoImpl) Rename(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&model.Brand{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *brandRepoImpl) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Brand{}, id)
	return result.RowsAffected > 0, result.Error
}

package repository

import (
	"context"
	"shopco-api/internal/model"

	"gorm.io/gorm"
)

type TypeRepository interface {
	Create(ctx context.Context, productType *model.Type) error
	FindAll(ctx context.Context) ([]*model.Type, error)
	FindByID(ctx context.Context, id uint) (*model.Type, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Rename(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type typeRepoImpl struct {
	db *gorm.DB
}

func NewTypeRepository(db *gorm.DB) TypeRepository {
	return &typeRepoImpl{
		db: db,
	}
}

func (r *typeRepoImpl) Create(ctx context.Context, productType *model.Type) error {
	return r.db.WithContext(ctx).Create(productType).Error
}

func (r *typeRepoImpl) FindAll(ctx context.Context) ([]*model.Type, error) {
	var types []*model.Type
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (r *typeRepoImpl) FindByID(ctx context.Context, id uint) (*model.Type, error) {
	var productType model.Type
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&productType).Error

	if err != nil {
		return nil, err
	}

	return &productType, nil
}

func (r *typeRepoImpl) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Type{}).
		Where("id = ?", id).
		Count(&count).Error

	return count > 0, err
}

func (r *typeRepoImpl) Rename(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&model.Type{}).
		Where("id = ?", id).
		Update("name", name).Error
}

func (r *typeRepoImpl) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.Type{}, id)
	return result.RowsAffected > 0, result.Error
}

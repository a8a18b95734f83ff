package repository

import (
	"context"
	"shopco-api/internal/model"

	"gorm.io/gorm"
)

type ProductInfoRepository interface {
	Create(ctx context.Context, info *model.ProductInfo) error
	FindByProduct(ctx context.Context, productID uint) ([]*model.ProductInfo, error)
	FindByID(ctx context.Context, id uint) (*model.ProductInfo, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type productInfoRepoImpl struct {
	db *gorm.DB
}

func NewProductInfoRepository(db *gorm.DB) ProductInfoRepository {
	return &productInfoRepoImpl{db: db}
}

func (r *productInfoRepoImpl) Create(ctx context.Context, info *model.ProductInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

func (r *productInfoRepoImpl) FindByProduct(ctx context.Context, productID uint) ([]*model.ProductInfo, error) {
	var infos []*model.ProductInfo
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&infos).Error
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *productInfoRepoImpl) FindByID(ctx context.Context, id uint) (*model.ProductInfo, error) {
	var info model.ProductInfo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&info).Error; err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *productInfoRepoImpl) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.ProductInfo{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *productInfoRepoImpl) Delete(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&model.ProductInfo{}, id)
	return result.RowsAffected > 0, result.Error
}

package repository

import (
	"context"
	"shopco-api/internal/model"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows and pages a product listing. Zero values mean "no filter".
type ProductFilter struct {
	BrandID  *uint
	TypeID   *uint
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string

	SortColumn string // a products column, e.g. created_at
	SortDesc   bool
	Offset     int
	Limit      int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, productID uint) (*model.Product, error)
	FindDetailed(ctx context.Context, productID uint) (*model.Product, error)
	FindMany(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error)
	Update(ctx context.Context, productID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, productID uint) (bool, error)
	FindIDsByBrand(ctx context.Context, brandID uint) ([]uint, error)
	FindIDsByType(ctx context.Context, typeID uint) ([]uint, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

// FindDetailed loads the product with its brand, type and info blocks.
func (r *productRepoImpl) FindDetailed(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Type").
		Preload("Info", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, filter ProductFilter) ([]*model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.TypeID != nil {
		query = query.Where("type_id = ?", *filter.TypeID)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumn := filter.SortColumn
	if sortColumn == "" {
		sortColumn = "created_at"
	}

	var products []*model.Product
	err := query.
		Preload("Brand").
		Preload("Type").
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortColumn}, Desc: filter.SortDesc}).
		Order("id ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepoImpl) Update(ctx context.Context, productID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(fields).Error
}

// Delete removes the product along with its info blocks and any cart lines still pointing at it.
// Order items are snapshots and stay untouched.
func (r *productRepoImpl) Delete(ctx context.Context, productID uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductInfo{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.Product{}, productID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})

	return deleted, err
}

func (r *productRepoImpl) FindIDsByBrand(ctx context.Context, brandID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where(&model.Product{BrandID: brandID}).
		Pluck("id", &ids).Error

	return ids, err
}

func (r *productRepoImpl) FindIDsByType(ctx context.Context, typeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where(&model.Product{TypeID: typeID}).
		Pluck("id", &ids).Error

	return ids, err
}

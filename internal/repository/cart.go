package repository

import (
	"context"
	"shopco-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	UpsertLine(ctx context.Context, tx *gorm.DB, line *model.CartItem) error
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.CartItem, error)
	FindLine(ctx context.Context, userID, lineID uint) (*model.CartItem, error)
	SetQuantity(ctx context.Context, userID, lineID uint, quantity int) error
	DeleteLine(ctx context.Context, userID, lineID uint) (bool, error)
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

// UpsertLine inserts the line or, when (user, product, size, color) already exists,
// adds line.Quantity to the stored quantity. Both paths cap at model.MaxCartQuantity
// inside the single statement, so concurrent adds cannot lose an increment.
func (r *cartRepoImpl) UpsertLine(ctx context.Context, tx *gorm.DB, line *model.CartItem) error {
	if line.Quantity > model.MaxCartQuantity {
		line.Quantity = model.MaxCartQuantity
	}

	return tx.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "product_id"},
			{Name: "selected_size"},
			{Name: "selected_color"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr(
				"CASE WHEN cart_items.quantity + ? > ? THEN ? ELSE cart_items.quantity + ? END",
				line.Quantity, model.MaxCartQuantity, model.MaxCartQuantity, line.Quantity,
			),
		}),
	}).Create(line).Error
}

func (r *cartRepoImpl) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.CartItem, error) {
	var lines []*model.CartItem
	err := tx.WithContext(ctx).
		Preload("Product.Brand").
		Preload("Product.Type").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&lines).Error

	if err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *cartRepoImpl) FindLine(ctx context.Context, userID, lineID uint) (*model.CartItem, error) {
	var line model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error

	if err != nil {
		return nil, err
	}

	return &line, nil
}

func (r *cartRepoImpl) SetQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", lineID, userID).
		Update("quantity", quantity).Error
}

func (r *cartRepoImpl) DeleteLine(ctx context.Context, userID, lineID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&model.CartItem{})

	return result.RowsAffected > 0, result.Error
}

func (r *cartRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	result := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{})

	return result.RowsAffected, result.Error
}

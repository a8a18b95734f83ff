package repository

import (
	"context"
	"shopco-api/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error
	FindForUser(ctx context.Context, userID, orderID uint) (*model.Order, error)
	FindAllForUser(ctx context.Context, userID uint) ([]*model.Order, error)
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	UpdateIfUnchanged(ctx context.Context, current *model.Order, fields map[string]interface{}) (bool, error)
	MarkCancelled(ctx context.Context, userID, orderID uint) (bool, error)
	ClaimPayment(ctx context.Context, current *model.Order) (bool, error)
	ReleasePayment(ctx context.Context, orderID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepoImpl) CreateOrderItems(ctx context.Context, tx *gorm.DB, items []*model.OrderItem) error {
	return tx.WithContext(ctx).Create(&items).Error
}

func orderItemsByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *orderRepoImpl) FindForUser(ctx context.Context, userID, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindAllForUser(ctx context.Context, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// FindByID loads any order with its items and owner, without an ownership filter.
func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Preload("User").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaypalOrderID(ctx context.Context, paypalOrderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where(&model.Order{PaypalOrderID: &paypalOrderID}).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// UpdateIfUnchanged applies fields only while the stored status pair still matches current.
// It reports false when another writer moved the order first.
func (r *orderRepoImpl) UpdateIfUnchanged(ctx context.Context, current *model.Order, fields map[string]interface{}) (bool, error) {
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND status = ?
			AND payment_status = ?
		`,
			current.ID,
			current.Status,
			current.PaymentStatus,
		).
		Updates(fields)

	return result.RowsAffected > 0, result.Error
}

// MarkCancelled moves a pending order to cancelled unless a payment is in flight.
func (r *orderRepoImpl) MarkCancelled(ctx context.Context, userID, orderID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND user_id = ?
			AND status = ?
			AND (payment_claimed_at IS NULL OR payment_claimed_at < ?)
		`,
			orderID,
			userID,
			model.OrderStatusPending,
			time.Now().Add(-model.PaymentClaimTTL),
		).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusCancelled,
			"updated_at": time.Now(),
		})

	return result.RowsAffected > 0, result.Error
}

// ClaimPayment stamps current as having a provider call in flight. It reports false
// when the status pair moved or a live claim is already held, so at most one caller
// reaches the provider per order.
func (r *orderRepoImpl) ClaimPayment(ctx context.Context, current *model.Order) (bool, error) {
	now := time.Now()

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where(`
			id = ?
			AND status = ?
			AND payment_status = ?
			AND (payment_claimed_at IS NULL OR payment_claimed_at < ?)
		`,
			current.ID,
			current.Status,
			current.PaymentStatus,
			now.Add(-model.PaymentClaimTTL),
		).
		Updates(map[string]interface{}{
			"payment_claimed_at": now,
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	current.PaymentClaimedAt = &now
	current.UpdatedAt = now
	return true, nil
}

func (r *orderRepoImpl) ReleasePayment(ctx context.Context, orderID uint) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("payment_claimed_at", nil).Error
}

package repository

import (
	"context"
	"shopco-api/internal/model"
	"time"

	"gorm.io/gorm"
)

// IdempotencyKeyRepository remembers which order a client-supplied key produced.
type IdempotencyKeyRepository interface {
	Find(ctx context.Context, userID uint, key string) (*model.IdempotencyKey, error)
	MarkUsed(ctx context.Context, tx *gorm.DB, userID uint, key string, orderID uint) error
}

type idempotencyKeyRepositoryImpl struct {
	db *gorm.DB
}

func NewIdempotencyKeyRepository(db *gorm.DB) IdempotencyKeyRepository {
	return &idempotencyKeyRepositoryImpl{db: db}
}

func (r *idempotencyKeyRepositoryImpl) Find(ctx context.Context, userID uint, key string) (*model.IdempotencyKey, error) {
	var record model.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where(&model.IdempotencyKey{UserID: userID, Key: key}).
		First(&record).Error
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *idempotencyKeyRepositoryImpl) MarkUsed(ctx context.Context, tx *gorm.DB, userID uint, key string, orderID uint) error {
	return tx.WithContext(ctx).Create(&model.IdempotencyKey{
		Key:       key,
		UserID:    userID,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}).Error
}

package service

import (
	"context"
	"fmt"
	"shopco-api/internal/apperr"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService interface {
	AddLine(ctx context.Context, userID uint, req *dto.AddToCartRequest, deliveryFee decimal.Decimal) (*dto.CartResponse, error)
	GetCart(ctx context.Context, userID uint, deliveryFee decimal.Decimal) (*dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int, deliveryFee decimal.Decimal) (*dto.CartResponse, error)
	RemoveLine(ctx context.Context, userID, lineID uint, deliveryFee decimal.Decimal) (*dto.CartResponse, error)
	ClearCart(ctx context.Context, userID uint) error
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) AddLine(ctx context.Context, userID uint, req *dto.AddToCartRequest, deliveryFee decimal.Decimal) (*dto.CartResponse, error) {
	if req.Quantity < 1 {
		return nil, apperr.InvalidArgument("quantity must be at least 1")
	}
	size := strings.TrimSpace(req.SelectedSize)
	if size == "" {
		return nil, apperr.InvalidArgument("selected size is required")
	}
	if deliveryFee.IsNegative() {
		return nil, apperr.InvalidArgument("delivery fee cannot be negative")
	}

	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, notFoundOr(err, "get product", "product %d not found", req.ProductID)
	}

	var color string
	if req.SelectedColor != nil {
		color = strings.TrimSpace(*req.SelectedColor)
	}

	line := &model.CartItem{
		UserID:        userID,
		ProductID:     req.ProductID,
		SelectedSize:  size,
		SelectedColor: color,
		Quantity:      req.Quantity,
		AddedAt:       time.Now(),
	}
	if err := s.cartRepo.UpsertLine(ctx, s.db, line); err != nil {
		return nil, fmt.Errorf("upsert cart line: %w", err)
	}

	return s.GetCart(ctx, userID, deliveryFee)
}

func (s *cartServiceImpl) GetCart(ctx context.Context, userID uint, deliveryFee decimal.Decimal) (*dto.CartResponse, error) {
	if deliveryFee.IsNegative() {
		return nil, apperr.InvalidArgument("delivery fee cannot be negative")
	}

	lines, err := s.cartRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines: %w", err)
	}

	items := make([]dto.CartItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, toCartItemResponse(line))
	}

	return &dto.CartResponse{
		Items:   items,
		Summary: summarizeCart(lines, deliveryFee).view(),
	}, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int, deliveryFee decimal.Decimal) (*dto.CartResponse, error) {
	if _, err := s.cartRepo.FindLine(ctx, userID, lineID); err != nil {
		return nil, notFoundOr(err, "get cart line", "cart item %d not found", lineID)
	}

	if quantity > model.MaxCartQuantity {
		return nil, apperr.InvalidArgument("maximum quantity is %d", model.MaxCartQuantity)
	}
	if quantity < 1 {
		return nil, apperr.InvalidArgument("quantity must be at least 1")
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, lineID, quantity); err != nil {
		return nil, fmt.Errorf("update cart line quantity: %w", err)
	}

	return s.GetCart(ctx, userID, deliveryFee)
}

func (s *cartServiceImpl) RemoveLine(ctx context.Context, userID, lineID uint, deliveryFee decimal.Decimal) (*dto.CartResponse, error) {
	deleted, err := s.cartRepo.DeleteLine(ctx, userID, lineID)
	if err != nil {
		return nil, fmt.Errorf("delete cart line: %w", err)
	}
	if !deleted {
		return nil, apperr.NotFound("cart item %d not found", lineID)
	}

	return s.GetCart(ctx, userID, deliveryFee)
}

func (s *cartServiceImpl) ClearCart(ctx context.Context, userID uint) error {
	if _, err := s.cartRepo.DeleteByUser(ctx, s.db, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"sync"
	"testing"

	"shopco-api/internal/apperr"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type CartServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	svc     CartService
	user    *model.User
	product *model.Product
}

func (s *CartServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newTestDB(s.T())
	s.svc = NewCartService(s.db, repository.NewCartRepository(s.db), repository.NewProductRepository(s.db))
	s.user = seedUser(s.T(), s.db, "cart@example.com")
	s.product = seedProduct(s.T(), s.db, "Gradient Tee", "100", "120")
}

func (s *CartServiceTestSuite) add(qty int, size string, color *string) (*dto.CartResponse, error) {
	return s.svc.AddLine(s.ctx, s.user.ID, &dto.AddToCartRequest{
		ProductID:     s.product.ID,
		Quantity:      qty,
		SelectedSize:  size,
		SelectedColor: color,
	}, decimal.Zero)
}

func (s *CartServiceTestSuite) TestAddLine_PricesCart() {
	cart, err := s.svc.AddLine(s.ctx, s.user.ID, &dto.AddToCartRequest{
		ProductID:    s.product.ID,
		Quantity:     2,
		SelectedSize: "M",
	}, decimal.NewFromInt(5))
	s.Require().NoError(err)

	s.Require().Len(cart.Items, 1)
	s.Equal(2, cart.Items[0].Quantity)
	s.Equal(model.MaxCartQuantity, cart.Items[0].MaxQuantity)
	s.Nil(cart.Items[0].SelectedColor)
	s.Equal(240.0, cart.Summary.Subtotal)
	s.Equal(40.0, cart.Summary.Discount)
	s.Equal(int64(17), cart.Summary.DiscountPercentage)
	s.Equal(205.0, cart.Summary.Total)
}

func (s *CartServiceTestSuite) TestAddLine_MergesAndCapsAt99() {
	_, err := s.add(95, "M", nil)
	s.Require().NoError(err)

	cart, err := s.add(10, "M", nil)
	s.Require().NoError(err)

	s.Require().Len(cart.Items, 1)
	s.Equal(99, cart.Items[0].Quantity)
}

func (s *CartServiceTestSuite) TestAddLine_OversizedFirstAddIsCapped() {
	cart, err := s.add(150, "L", nil)
	s.Require().NoError(err)

	s.Require().Len(cart.Items, 1)
	s.Equal(99, cart.Items[0].Quantity)
}

func (s *CartServiceTestSuite) TestAddLine_VariantsAreSeparateLines() {
	red := "red"
	blue := "blue"

	_, err := s.add(1, "M", nil)
	s.Require().NoError(err)
	_, err = s.add(1, "M", &red)
	s.Require().NoError(err)
	_, err = s.add(1, "M", &blue)
	s.Require().NoError(err)
	_, err = s.add(1, "L", &red)
	s.Require().NoError(err)
	cart, err := s.add(2, "M", &red)
	s.Require().NoError(err)

	s.Len(cart.Items, 4)
	for _, item := range cart.Items {
		if item.SelectedSize == "M" && item.SelectedColor != nil && *item.SelectedColor == red {
			s.Equal(3, item.Quantity)
		}
	}
}

func (s *CartServiceTestSuite) TestAddLine_ConcurrentAddsKeepOneLine() {
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.add(3, "S", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	cart, err := s.svc.GetCart(s.ctx, s.user.ID, decimal.Zero)
	s.Require().NoError(err)
	s.Require().Len(cart.Items, 1)
	s.Equal(workers*3, cart.Items[0].Quantity)
}

func (s *CartServiceTestSuite) TestAddLine_Validation() {
	_, err := s.add(0, "M", nil)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	_, err = s.add(1, "  ", nil)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	_, err = s.svc.AddLine(s.ctx, s.user.ID, &dto.AddToCartRequest{
		ProductID:    9999,
		Quantity:     1,
		SelectedSize: "M",
	}, decimal.Zero)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *CartServiceTestSuite) TestGetCart_NegativeDeliveryFee() {
	_, err := s.svc.GetCart(s.ctx, s.user.ID, decimal.NewFromInt(-1))
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
}

func (s *CartServiceTestSuite) TestUpdateQuantity() {
	cart, err := s.add(2, "M", nil)
	s.Require().NoError(err)
	lineID := cart.Items[0].ID

	cart, err = s.svc.UpdateQuantity(s.ctx, s.user.ID, lineID, 7, decimal.Zero)
	s.Require().NoError(err)
	s.Equal(7, cart.Items[0].Quantity)
}

func (s *CartServiceTestSuite) TestUpdateQuantity_AboveMaxLeavesLineUnchanged() {
	cart, err := s.add(2, "M", nil)
	s.Require().NoError(err)
	lineID := cart.Items[0].ID

	_, err = s.svc.UpdateQuantity(s.ctx, s.user.ID, lineID, 150, decimal.Zero)
	s.Require().Error(err)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
	s.Contains(err.Error(), "maximum quantity is 99")

	cart, err = s.svc.GetCart(s.ctx, s.user.ID, decimal.Zero)
	s.Require().NoError(err)
	s.Equal(2, cart.Items[0].Quantity)
}

func (s *CartServiceTestSuite) TestUpdateQuantity_BelowOne() {
	cart, err := s.add(2, "M", nil)
	s.Require().NoError(err)

	_, err = s.svc.UpdateQuantity(s.ctx, s.user.ID, cart.Items[0].ID, 0, decimal.Zero)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
}

func (s *CartServiceTestSuite) TestUpdateQuantity_OtherUsersLineIsNotFound() {
	cart, err := s.add(2, "M", nil)
	s.Require().NoError(err)
	other := seedUser(s.T(), s.db, "other@example.com")

	_, err = s.svc.UpdateQuantity(s.ctx, other.ID, cart.Items[0].ID, 5, decimal.Zero)
	s.True(apperr.Is(err, apperr.KindNotFound))

	_, err = s.svc.UpdateQuantity(s.ctx, s.user.ID, 424242, 5, decimal.Zero)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *CartServiceTestSuite) TestRemoveLine() {
	cart, err := s.add(2, "M", nil)
	s.Require().NoError(err)
	lineID := cart.Items[0].ID

	cart, err = s.svc.RemoveLine(s.ctx, s.user.ID, lineID, decimal.Zero)
	s.Require().NoError(err)
	s.Empty(cart.Items)
	s.Equal(0.0, cart.Summary.Total)

	_, err = s.svc.RemoveLine(s.ctx, s.user.ID, lineID, decimal.Zero)
	s.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *CartServiceTestSuite) TestClearCart_OnlyTouchesOwnLines() {
	_, err := s.add(2, "M", nil)
	s.Require().NoError(err)

	other := seedUser(s.T(), s.db, "other@example.com")
	_, err = s.svc.AddLine(s.ctx, other.ID, &dto.AddToCartRequest{
		ProductID:    s.product.ID,
		Quantity:     1,
		SelectedSize: "M",
	}, decimal.Zero)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.ClearCart(s.ctx, s.user.ID))
	// clearing an empty cart is fine
	s.Require().NoError(s.svc.ClearCart(s.ctx, s.user.ID))

	mine, err := s.svc.GetCart(s.ctx, s.user.ID, decimal.Zero)
	s.Require().NoError(err)
	s.Empty(mine.Items)

	theirs, err := s.svc.GetCart(s.ctx, other.ID, decimal.Zero)
	s.Require().NoError(err)
	s.Len(theirs.Items, 1)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

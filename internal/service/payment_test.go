package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shopco-api/internal/apperr"
	"shopco-api/internal/client"
	"shopco-api/internal/dto"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type fakeBraintree struct {
	mu      sync.Mutex
	err     error
	charged []decimal.Decimal

	// when set, each charge signals entered and then waits on release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeBraintree) Charge(ctx context.Context, nonce string, amount decimal.Decimal, orderNumber string) (string, error) {
	f.mu.Lock()
	f.charged = append(f.charged, amount)
	err := f.err
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if err != nil {
		return "", err
	}
	return "txn-" + orderNumber, nil
}

func (f *fakeBraintree) charges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.charged)
}

type fakePaypal struct {
	createErr  error
	captureErr error
	created    []*client.PaypalOrderRequest
	captured   []string
}

func (f *fakePaypal) CreateOrder(ctx context.Context, req *client.PaypalOrderRequest) (*client.CreateOrderResponse, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := fmt.Sprintf("PP-%d", len(f.created))
	return &client.CreateOrderResponse{OrderID: id, ApproveURL: "https://paypal.test/approve?token=" + id}, nil
}

func (f *fakePaypal) CaptureOrder(ctx context.Context, paypalOrderID string) (string, error) {
	f.captured = append(f.captured, paypalOrderID)
	if f.captureErr != nil {
		return "", f.captureErr
	}
	return "CAP-" + paypalOrderID, nil
}

type PaymentServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	braintree *fakeBraintree
	paypal    *fakePaypal
	orders    OrderService
	svc       PaymentService
	user      *model.User
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = newTestDB(s.T())
	s.braintree = &fakeBraintree{}
	s.paypal = &fakePaypal{}

	cartRepo := repository.NewCartRepository(s.db)
	orderRepo := repository.NewOrderRepository(s.db)
	s.orders = NewOrderService(
		s.db,
		repository.NewUserRepository(s.db),
		cartRepo, orderRepo,
		repository.NewIdempotencyKeyRepository(s.db),
		nil, nil,
	)
	s.svc = NewPaymentService(s.braintree, s.paypal, "http://shop.test/", orderRepo, nil)
	s.user = seedUser(s.T(), s.db, "payer@example.com")
}

func (s *PaymentServiceTestSuite) placeOrder(method string) *dto.OrderResponse {
	product := seedProduct(s.T(), s.db, "Polo", "25.25", "")
	cartSvc := NewCartService(s.db, repository.NewCartRepository(s.db), repository.NewProductRepository(s.db))
	_, err := cartSvc.AddLine(s.ctx, s.user.ID, &dto.AddToCartRequest{
		ProductID: product.ID, Quantity: 2, SelectedSize: "S",
	}, decimal.Zero)
	s.Require().NoError(err)

	order, err := s.orders.CreateOrder(s.ctx, s.user.ID, &dto.CreateOrderRequest{PaymentMethod: method})
	s.Require().NoError(err)
	return order
}

func (s *PaymentServiceTestSuite) TestPayOrder_Success() {
	order := s.placeOrder("card")

	paid, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "fake-valid-nonce")
	s.Require().NoError(err)

	s.Equal("paid", paid.PaymentStatus)
	s.Equal("confirmed", paid.Status)
	s.Require().NotNil(paid.PaymentTransactionID)
	s.Equal("txn-"+order.OrderNumber, *paid.PaymentTransactionID)
	s.Require().Len(s.braintree.charged, 1)
	s.Equal("50.5", s.braintree.charged[0].String())

	_, err = s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "fake-valid-nonce")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
	s.Len(s.braintree.charged, 1)
}

func (s *PaymentServiceTestSuite) TestPayOrder_DeclinedMarksFailedAndAllowsRetry() {
	order := s.placeOrder("card")
	s.braintree.err = fmt.Errorf("%w: insufficient funds", client.ErrPaymentDeclined)

	_, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	got, err := s.orders.GetOrder(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal("failed", got.PaymentStatus)
	s.Equal("pending", got.Status)

	s.braintree.err = nil
	paid, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.Require().NoError(err)
	s.Equal("paid", paid.PaymentStatus)
}

func (s *PaymentServiceTestSuite) TestPayOrder_GatewayErrorLeavesOrderAlone() {
	order := s.placeOrder("card")
	s.braintree.err = errors.New("connection reset")

	_, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindUnavailable))

	got, err := s.orders.GetOrder(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal("pending", got.PaymentStatus)

	// the claim is released, so a retry goes through
	s.braintree.err = nil
	paid, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.Require().NoError(err)
	s.Equal("paid", paid.PaymentStatus)
}

func (s *PaymentServiceTestSuite) TestPayOrder_ConcurrentCallsChargeOnce() {
	order := s.placeOrder("card")
	s.braintree.entered = make(chan struct{}, 2)
	s.braintree.release = make(chan struct{})

	first := make(chan error, 1)
	go func() {
		_, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
		first <- err
	}()

	select {
	case <-s.braintree.entered:
	case <-time.After(5 * time.Second):
		s.FailNow("first charge never reached the gateway")
	}

	// the first charge is still in flight at the gateway
	_, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindConflict))

	_, err = s.orders.CancelOrder(s.ctx, s.user.ID, order.ID)
	s.True(apperr.Is(err, apperr.KindConflict))

	close(s.braintree.release)
	s.Require().NoError(<-first)
	s.Equal(1, s.braintree.charges())

	got, err := s.orders.GetOrder(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal("paid", got.PaymentStatus)
	s.Equal("confirmed", got.Status)
}

func (s *PaymentServiceTestSuite) TestPayOrder_StaleClaimIsTakenOver() {
	order := s.placeOrder("card")

	s.Require().NoError(s.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("payment_claimed_at", time.Now()).Error)
	_, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindConflict))
	s.Equal(0, s.braintree.charges())

	// a claim older than the TTL belongs to a request that died mid-charge
	s.Require().NoError(s.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("payment_claimed_at", time.Now().Add(-model.PaymentClaimTTL-time.Minute)).Error)
	paid, err := s.svc.PayOrder(s.ctx, s.user.ID, order.ID, "nonce")
	s.Require().NoError(err)
	s.Equal("paid", paid.PaymentStatus)

	var stored model.Order
	s.Require().NoError(s.db.First(&stored, order.ID).Error)
	s.Nil(stored.PaymentClaimedAt)
}

func (s *PaymentServiceTestSuite) TestPayOrder_RejectsUnpayableOrders() {
	cod := s.placeOrder("cash_on_delivery")
	_, err := s.svc.PayOrder(s.ctx, s.user.ID, cod.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	card := s.placeOrder("card")
	_, err = s.orders.CancelOrder(s.ctx, s.user.ID, card.ID)
	s.Require().NoError(err)
	_, err = s.svc.PayOrder(s.ctx, s.user.ID, card.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	_, err = s.svc.PayOrder(s.ctx, s.user.ID, card.ID, "")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	other := seedUser(s.T(), s.db, "other@example.com")
	_, err = s.svc.PayOrder(s.ctx, other.ID, card.ID, "nonce")
	s.True(apperr.Is(err, apperr.KindNotFound))

	s.Empty(s.braintree.charged)
}

func (s *PaymentServiceTestSuite) TestPayOrder_NotConfigured() {
	svc := NewPaymentService(nil, nil, "", repository.NewOrderRepository(s.db), nil)

	_, err := svc.PayOrder(s.ctx, s.user.ID, 1, "nonce")
	s.True(apperr.Is(err, apperr.KindUnavailable))
	_, err = svc.StartPaypalCheckout(s.ctx, s.user.ID, 1)
	s.True(apperr.Is(err, apperr.KindUnavailable))
	_, err = svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.True(apperr.Is(err, apperr.KindUnavailable))
}

func (s *PaymentServiceTestSuite) TestPaypal_CheckoutThenCapture() {
	order := s.placeOrder("paypal")

	checkout, err := s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(order.ID, checkout.OrderID)
	s.Equal("PP-1", checkout.PaypalOrderID)
	s.Equal("https://paypal.test/approve?token=PP-1", checkout.ApproveURL)

	s.Require().Len(s.paypal.created, 1)
	s.Equal(order.OrderNumber, s.paypal.created[0].OrderNumber)
	s.Equal("50.5", s.paypal.created[0].Amount.String())
	s.Equal("http://shop.test/api/paypal/success", s.paypal.created[0].ReturnURL)
	s.Equal("http://shop.test", s.paypal.created[0].CancelURL)

	paid, err := s.svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.Require().NoError(err)
	s.Equal("paid", paid.PaymentStatus)
	s.Equal("confirmed", paid.Status)
	s.Require().NotNil(paid.PaymentTransactionID)
	s.Equal("CAP-PP-1", *paid.PaymentTransactionID)

	// a reloaded success page does not capture twice
	again, err := s.svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.Require().NoError(err)
	s.Equal("paid", again.PaymentStatus)
	s.Len(s.paypal.captured, 1)

	_, err = s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
}

func (s *PaymentServiceTestSuite) TestPaypal_DeclinedCaptureAllowsNewCheckout() {
	order := s.placeOrder("paypal")
	_, err := s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)

	s.paypal.captureErr = fmt.Errorf("%w: INSTRUMENT_DECLINED", client.ErrPaymentDeclined)
	_, err = s.svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	got, err := s.orders.GetOrder(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal("failed", got.PaymentStatus)

	s.paypal.captureErr = nil
	checkout, err := s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)
	s.Equal("PP-2", checkout.PaypalOrderID)

	// the superseded checkout no longer maps to the order
	_, err = s.svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.True(apperr.Is(err, apperr.KindNotFound))

	paid, err := s.svc.CapturePaypalOrder(s.ctx, "PP-2")
	s.Require().NoError(err)
	s.Equal("paid", paid.PaymentStatus)
}

func (s *PaymentServiceTestSuite) TestPaypal_RejectsWrongOrders() {
	card := s.placeOrder("card")
	_, err := s.svc.StartPaypalCheckout(s.ctx, s.user.ID, card.ID)
	s.True(apperr.Is(err, apperr.KindInvalidArgument))

	order := s.placeOrder("paypal")
	other := seedUser(s.T(), s.db, "other@example.com")
	_, err = s.svc.StartPaypalCheckout(s.ctx, other.ID, order.ID)
	s.True(apperr.Is(err, apperr.KindNotFound))

	s.paypal.createErr = errors.New("timeout")
	_, err = s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.True(apperr.Is(err, apperr.KindUnavailable))

	_, err = s.svc.CapturePaypalOrder(s.ctx, "")
	s.True(apperr.Is(err, apperr.KindInvalidArgument))
	_, err = s.svc.CapturePaypalOrder(s.ctx, "PP-unknown")
	s.True(apperr.Is(err, apperr.KindNotFound))
	s.Empty(s.paypal.captured)
}

func (s *PaymentServiceTestSuite) TestPaypal_CaptureInFlightIsNotRepeated() {
	order := s.placeOrder("paypal")
	_, err := s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.db.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("payment_claimed_at", time.Now()).Error)

	_, err = s.svc.CapturePaypalOrder(s.ctx, "PP-1")
	s.True(apperr.Is(err, apperr.KindConflict))
	_, err = s.svc.StartPaypalCheckout(s.ctx, s.user.ID, order.ID)
	s.True(apperr.Is(err, apperr.KindConflict))
	s.Empty(s.paypal.captured)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

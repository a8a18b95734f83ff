package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"shopco-api/internal/apperr"
	"shopco-api/internal/client"
	"shopco-api/internal/dto"
	"shopco-api/internal/messaging"
	"shopco-api/internal/model"
	"shopco-api/internal/repository"
	"strings"
	"time"
)

type PaymentService interface {
	PayOrder(ctx context.Context, userID, orderID uint, nonce string) (*dto.OrderResponse, error)
	StartPaypalCheckout(ctx context.Context, userID, orderID uint) (*dto.PaypalCheckoutResponse, error)
	CapturePaypalOrder(ctx context.Context, paypalOrderID string) (*dto.OrderResponse, error)
}

type paymentServiceImpl struct {
	braintreeClient client.BraintreeClient
	paypalClient    client.PaypalClient
	serviceBaseUrl  string
	orderRepo       repository.OrderRepository
	publisher       messaging.Publisher
}

// NewPaymentService builds the card and PayPal payment flows.
// A nil client disables its flow.
func NewPaymentService(
	braintreeClient client.BraintreeClient,
	paypalClient client.PaypalClient,
	serviceBaseUrl string,
	orderRepo repository.OrderRepository,
	publisher messaging.Publisher,
) PaymentService {
	if publisher == nil {
		publisher = messaging.NewLogPublisher()
	}

	return &paymentServiceImpl{
		braintreeClient: braintreeClient,
		paypalClient:    paypalClient,
		serviceBaseUrl:  strings.TrimRight(serviceBaseUrl, "/"),
		orderRepo:       orderRepo,
		publisher:       publisher,
	}
}

// checkPayable rejects orders that cannot take a payment with method.
func checkPayable(order *model.Order, method string) error {
	switch {
	case order.PaymentInFlight(time.Now()):
		return apperr.Conflict("payment for order %s is already in progress", order.OrderNumber)
	case order.Status == model.OrderStatusCancelled:
		return apperr.InvalidArgument("cancelled orders cannot be paid")
	case order.PaymentMethod != method:
		return apperr.InvalidArgument("order %s is not payable by %s", order.OrderNumber, method)
	case order.PaymentStatus != model.PaymentStatusPending && order.PaymentStatus != model.PaymentStatusFailed:
		return apperr.InvalidArgument("order %s is already %s", order.OrderNumber, order.PaymentStatus)
	}
	return nil
}

func (s *paymentServiceImpl) PayOrder(ctx context.Context, userID, orderID uint, nonce string) (*dto.OrderResponse, error) {
	if s.braintreeClient == nil {
		return nil, apperr.Unavailable("card payments are not configured")
	}
	if nonce == "" {
		return nil, apperr.InvalidArgument("payment nonce is required")
	}

	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}
	if err := checkPayable(order, model.PaymentMethodCard); err != nil {
		return nil, err
	}

	if err := s.claim(ctx, order); err != nil {
		return nil, err
	}

	transactionID, chargeErr := s.braintreeClient.Charge(ctx, nonce, order.TotalAmount, order.OrderNumber)
	return s.recordCharge(ctx, order, transactionID, chargeErr)
}

// StartPaypalCheckout opens a PayPal order for the full order total. The buyer
// approves it at the returned url and PayPal redirects back to the success callback.
func (s *paymentServiceImpl) StartPaypalCheckout(ctx context.Context, userID, orderID uint) (*dto.PaypalCheckoutResponse, error) {
	if s.paypalClient == nil {
		return nil, apperr.Unavailable("paypal payments are not configured")
	}

	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}
	if err := checkPayable(order, model.PaymentMethodPaypal); err != nil {
		return nil, err
	}

	checkout, err := s.paypalClient.CreateOrder(ctx, &client.PaypalOrderRequest{
		OrderNumber: order.OrderNumber,
		Amount:      order.TotalAmount,
		ReturnURL:   s.serviceBaseUrl + "/api/paypal/success",
		CancelURL:   s.serviceBaseUrl, // buyer backed out, send them home
	})
	if err != nil {
		return nil, apperr.Unavailable("payment provider unavailable").Wrap(err)
	}

	updated, err := s.orderRepo.UpdateIfUnchanged(ctx, order, map[string]interface{}{
		"paypal_order_id": checkout.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("store paypal order id: %w", err)
	}
	if !updated {
		return nil, apperr.Conflict("order %d was modified during checkout", order.ID)
	}

	slog.InfoContext(ctx, "paypal checkout started", "order_id", order.ID, "paypal_order_id", checkout.OrderID)

	return &dto.PaypalCheckoutResponse{
		OrderID:       order.ID,
		PaypalOrderID: checkout.OrderID,
		ApproveURL:    checkout.ApproveURL,
	}, nil
}

// CapturePaypalOrder settles an approved PayPal checkout. Capturing an order
// that is already paid returns it unchanged, so a reloaded success page is harmless.
func (s *paymentServiceImpl) CapturePaypalOrder(ctx context.Context, paypalOrderID string) (*dto.OrderResponse, error) {
	if s.paypalClient == nil {
		return nil, apperr.Unavailable("paypal payments are not configured")
	}
	if paypalOrderID == "" {
		return nil, apperr.InvalidArgument("paypal order token is required")
	}

	order, err := s.orderRepo.FindByPaypalOrderID(ctx, paypalOrderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "no order for paypal checkout %s", paypalOrderID)
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		resp := toOrderResponse(order)
		return &resp, nil
	}
	if err := checkPayable(order, model.PaymentMethodPaypal); err != nil {
		return nil, err
	}

	if err := s.claim(ctx, order); err != nil {
		return nil, err
	}

	captureID, captureErr := s.paypalClient.CaptureOrder(ctx, paypalOrderID)
	return s.recordCharge(ctx, order, captureID, captureErr)
}

// claim takes the order's payment slot before the provider is called.
// Only one concurrent caller wins; the rest get Conflict and charge nothing.
func (s *paymentServiceImpl) claim(ctx context.Context, order *model.Order) error {
	claimed, err := s.orderRepo.ClaimPayment(ctx, order)
	if err != nil {
		return fmt.Errorf("claim order payment: %w", err)
	}
	if !claimed {
		return apperr.Conflict("payment for order %s is already in progress", order.OrderNumber)
	}
	return nil
}

// recordCharge stores the provider's verdict on order and releases the claim.
// Declines mark the payment failed so the buyer can retry. Any other provider
// error leaves the order untouched.
func (s *paymentServiceImpl) recordCharge(ctx context.Context, order *model.Order, transactionID string, chargeErr error) (*dto.OrderResponse, error) {
	if chargeErr != nil && !errors.Is(chargeErr, client.ErrPaymentDeclined) {
		if err := s.orderRepo.ReleasePayment(context.WithoutCancel(ctx), order.ID); err != nil {
			slog.ErrorContext(ctx, "release payment claim failed", "order_id", order.ID, "err", err)
		}
		return nil, apperr.Unavailable("payment provider unavailable").Wrap(chargeErr)
	}

	fields := map[string]interface{}{"payment_claimed_at": nil}
	if chargeErr != nil {
		fields["payment_status"] = model.PaymentStatusFailed
	} else {
		fields["payment_status"] = model.PaymentStatusPaid
		fields["payment_transaction_id"] = transactionID
		if order.Status == model.OrderStatusPending {
			fields["status"] = model.OrderStatusConfirmed
		}
	}

	updated, err := s.orderRepo.UpdateIfUnchanged(ctx, order, fields)
	if err != nil {
		return nil, fmt.Errorf("record payment result: %w", err)
	}
	if !updated {
		slog.ErrorContext(ctx, "order changed while payment was in flight",
			"order_id", order.ID, "transaction_id", transactionID, "charge_err", chargeErr)
		return nil, apperr.Conflict("order %d was modified during payment", order.ID)
	}

	if chargeErr != nil {
		order.PaymentStatus = model.PaymentStatusFailed
		publishOrderEvent(ctx, s.publisher, messaging.TopicOrderUpdated, order)
		return nil, apperr.InvalidArgument("payment declined").Wrap(chargeErr)
	}

	order.PaymentClaimedAt = nil
	order.PaymentStatus = model.PaymentStatusPaid
	order.PaymentTransactionID = &transactionID
	if status, ok := fields["status"].(model.OrderStatus); ok {
		order.Status = status
	}
	order.UpdatedAt = time.Now()

	slog.InfoContext(ctx, "order paid", "order_id", order.ID,
		"method", order.PaymentMethod, "transaction_id", transactionID)
	publishOrderEvent(ctx, s.publisher, messaging.TopicOrderUpdated, order)

	resp := toOrderResponse(order)
	return &resp, nil
}

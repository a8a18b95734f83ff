package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"shopco-api/internal/apperr"
	"shopco-api/internal/dto"
	"shopco-api/internal/messaging"
	"shopco-api/internal/model"
	"shopco-api/internal/notify"
	"shopco-api/internal/repository"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxOrderNumberAttempts = 3

var errOrderNumberTaken = errors.New("order number already taken")

type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, userID uint) ([]dto.OrderResponse, error)
	GetOrder(ctx context.Context, userID, orderID uint) (*dto.OrderResponse, error)
	UpdateOrder(ctx context.Context, userID, orderID uint, req *dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*dto.OrderResponse, error)

	ListOrdersForAdmin(ctx context.Context) ([]dto.OrderResponse, error)
	GetOrderForAdmin(ctx context.Context, orderID uint) (*dto.OrderResponse, error)
	UpdateOrderForAdmin(ctx context.Context, orderID uint, req *dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	ExportOrdersForAdmin(ctx context.Context, w io.Writer) error
}

type orderServiceImpl struct {
	db              *gorm.DB
	userRepo        repository.UserRepository
	cartRepo        repository.CartRepository
	orderRepo       repository.OrderRepository
	idempotencyRepo repository.IdempotencyKeyRepository
	publisher       messaging.Publisher
	mailer          notify.Mailer

	newOrderNumber func() string
}

// NewOrderService wires the order engine. mailer may be nil.
func NewOrderService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	idempotencyRepo repository.IdempotencyKeyRepository,
	publisher messaging.Publisher,
	mailer notify.Mailer,
) OrderService {
	if publisher == nil {
		publisher = messaging.NewLogPublisher()
	}

	return &orderServiceImpl{
		db:              db,
		userRepo:        userRepo,
		cartRepo:        cartRepo,
		orderRepo:       orderRepo,
		idempotencyRepo: idempotencyRepo,
		publisher:       publisher,
		mailer:          mailer,
		newOrderNumber:  generateOrderNumber,
	}
}

// generateOrderNumber returns ORD-<unix millis>-<4 random digits>.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%04d", time.Now().UnixMilli(), rand.IntN(10000))
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID uint, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, apperr.InvalidArgument("payment method is required")
	}

	tax := decimal.Zero
	if req.Tax != nil {
		tax = *req.Tax
	}
	shipping := decimal.Zero
	if req.ShippingCost != nil {
		shipping = *req.ShippingCost
	}
	if tax.IsNegative() || shipping.IsNegative() {
		return nil, apperr.InvalidArgument("tax and shipping cost cannot be negative")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "get user", "user %d not found", userID)
	}

	if req.IdempotencyKey != "" {
		record, err := s.idempotencyRepo.Find(ctx, userID, req.IdempotencyKey)
		if err == nil {
			return s.GetOrder(ctx, userID, record.OrderID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("look up idempotency key: %w", err)
		}
	}

	var order *model.Order
	for attempt := 1; ; attempt++ {
		order, err = s.placeOrder(ctx, user, req, tax, shipping)
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		if attempt == maxOrderNumberAttempts {
			return nil, apperr.Conflict("could not allocate a unique order number").Wrap(err)
		}
		slog.WarnContext(ctx, "order number collision, retrying", "user_id", userID, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", userID,
		"total", order.TotalAmount.StringFixed(2),
	)

	s.publish(ctx, messaging.TopicOrderPlaced, order)
	s.sendConfirmation(ctx, order)

	resp := toOrderResponse(order)
	return &resp, nil
}

// placeOrder turns the user's cart into an order inside one transaction:
// read cart, insert order and item snapshots, clear cart, record the idempotency key.
func (s *orderServiceImpl) placeOrder(ctx context.Context, user *model.User, req *dto.CreateOrderRequest, tax, shipping decimal.Decimal) (*model.Order, error) {
	var order *model.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := s.cartRepo.FindByUser(ctx, tx, user.ID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return apperr.InvalidArgument("cart is empty")
		}

		order = &model.Order{
			UserID:        user.ID,
			OrderNumber:   s.newOrderNumber(),
			Status:        model.OrderStatusPending,
			PaymentMethod: strings.TrimSpace(req.PaymentMethod),
			PaymentStatus: model.PaymentStatusPending,
			Tax:           tax,
			ShippingCost:  shipping,
			Phone:         optionalString(req.Phone),
			Notes:         optionalString(req.Notes),
		}
		if err := applyShippingAddress(order, user, req); err != nil {
			return err
		}

		subtotal := decimal.Zero
		items := make([]*model.OrderItem, 0, len(lines))
		for _, line := range lines {
			lineSubtotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineSubtotal)

			items = append(items, &model.OrderItem{
				ProductID:     line.ProductID,
				ProductName:   line.Product.Name,
				ProductImage:  line.Product.Img,
				Quantity:      line.Quantity,
				Price:         line.Product.Price,
				SelectedSize:  line.SelectedSize,
				SelectedColor: colorPtr(line.SelectedColor),
				Subtotal:      lineSubtotal,
			})
		}
		order.Subtotal = subtotal
		order.TotalAmount = subtotal.Add(tax).Add(shipping)

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %v", errOrderNumberTaken, err)
			}
			return fmt.Errorf("store order: %w", err)
		}

		for _, item := range items {
			item.OrderID = order.ID
		}
		if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
			return fmt.Errorf("store order items: %w", err)
		}

		if _, err := s.cartRepo.DeleteByUser(ctx, tx, user.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		if req.IdempotencyKey != "" {
			if err := s.idempotencyRepo.MarkUsed(ctx, tx, user.ID, req.IdempotencyKey, order.ID); err != nil {
				return conflictOr(err, "store idempotency key", "idempotency key %q is already in use", req.IdempotencyKey)
			}
		}

		order.Items = make([]model.OrderItem, 0, len(items))
		for _, item := range items {
			order.Items = append(order.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// applyShippingAddress fills the address from the request, falling back to the profile field by field.
func applyShippingAddress(order *model.Order, user *model.User, req *dto.CreateOrderRequest) error {
	order.FirstName = firstNonEmpty(req.FirstName, user.FirstName)
	order.LastName = firstNonEmpty(req.LastName, user.LastName)
	order.Email = firstNonEmpty(req.Email, user.Email)
	order.Street = firstNonEmpty(req.Street, user.Street)
	order.City = firstNonEmpty(req.City, user.City)
	order.PostalCode = firstNonEmpty(req.PostalCode, user.PostalCode)
	order.Country = firstNonEmpty(req.Country, user.Country)

	if order.Street == "" || order.City == "" || order.PostalCode == "" || order.Country == "" {
		return apperr.InvalidArgument("please provide complete shipping address (street, city, postal code, country)")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID uint) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderServiceImpl) UpdateOrder(ctx context.Context, userID, orderID uint, req *dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}
	return s.applyUpdate(ctx, order, req)
}

func (s *orderServiceImpl) CancelOrder(ctx context.Context, userID, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}
	if order.Status != model.OrderStatusPending {
		return nil, apperr.InvalidArgument("only pending orders can be cancelled")
	}
	if order.PaymentInFlight(time.Now()) {
		return nil, apperr.Conflict("payment for order %s is in progress", order.OrderNumber)
	}

	cancelled, err := s.orderRepo.MarkCancelled(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !cancelled {
		// left pending or had a payment claimed between the read and the write
		return nil, apperr.Conflict("order %d was modified during cancellation", orderID)
	}

	order.Status = model.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	s.publish(ctx, messaging.TopicOrderCancelled, order)

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderServiceImpl) ListOrdersForAdmin(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *orderServiceImpl) GetOrderForAdmin(ctx context.Context, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderServiceImpl) UpdateOrderForAdmin(ctx context.Context, orderID uint, req *dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "get order", "order %d not found", orderID)
	}
	return s.applyUpdate(ctx, order, req)
}

// applyUpdate validates the requested status pair against the transition tables
// and writes it only if nobody changed the order since it was read.
func (s *orderServiceImpl) applyUpdate(ctx context.Context, order *model.Order, req *dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	fields := map[string]interface{}{}
	nextStatus := order.Status
	nextPayment := order.PaymentStatus

	if req.Status != nil {
		nextStatus = model.OrderStatus(*req.Status)
		if !nextStatus.Valid() {
			return nil, apperr.InvalidArgument("unknown order status %q", *req.Status)
		}
		if !order.Status.CanTransitionTo(nextStatus) {
			return nil, apperr.InvalidArgument("order cannot move from %s to %s", order.Status, nextStatus)
		}
		if nextStatus != order.Status {
			fields["status"] = nextStatus
		}
	}

	if req.PaymentStatus != nil {
		nextPayment = model.PaymentStatus(*req.PaymentStatus)
		if !nextPayment.Valid() {
			return nil, apperr.InvalidArgument("unknown payment status %q", *req.PaymentStatus)
		}
		if !order.PaymentStatus.CanTransitionTo(nextPayment) {
			return nil, apperr.InvalidArgument("payment cannot move from %s to %s", order.PaymentStatus, nextPayment)
		}
		if nextPayment != order.PaymentStatus {
			fields["payment_status"] = nextPayment
		}
	}

	if len(fields) > 0 {
		updated, err := s.orderRepo.UpdateIfUnchanged(ctx, order, fields)
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}
		if !updated {
			return nil, apperr.Conflict("order %d was modified concurrently, reload and retry", order.ID)
		}

		order.Status = nextStatus
		order.PaymentStatus = nextPayment
		order.UpdatedAt = time.Now()
		s.publish(ctx, messaging.TopicOrderUpdated, order)
	}

	resp := toOrderResponse(order)
	return &resp, nil
}

func toOrderResponses(orders []*model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}

// publish is best-effort: the order is already committed.
func (s *orderServiceImpl) publish(ctx context.Context, topic string, order *model.Order) {
	publishOrderEvent(ctx, s.publisher, topic, order)
}

func publishOrderEvent(ctx context.Context, publisher messaging.Publisher, topic string, order *model.Order) {
	event := messaging.OrderEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		ItemCount:     len(order.Items),
		OccurredAt:    time.Now().UTC(),
	}

	key := strconv.FormatUint(uint64(order.ID), 10)
	if err := publisher.PublishEvent(ctx, topic, key, event); err != nil {
		slog.ErrorContext(ctx, "publish order event", "topic", topic, "order_id", order.ID, "err", err)
	}
}

func (s *orderServiceImpl) sendConfirmation(ctx context.Context, order *model.Order) {
	if s.mailer == nil {
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hi %s,\n\nThanks for your order %s.\n\n", order.FirstName, order.OrderNumber)
	for _, item := range order.Items {
		fmt.Fprintf(&body, "%d x %s (%s)  %s\n", item.Quantity, item.ProductName, item.SelectedSize, item.Subtotal.StringFixed(2))
	}
	fmt.Fprintf(&body, "\nTotal: %s\n\nShipping to %s, %s %s, %s\n",
		order.TotalAmount.StringFixed(2), order.Street, order.PostalCode, order.City, order.Country)

	subject := "Order confirmation " + order.OrderNumber
	if err := s.mailer.Send(ctx, order.Email, subject, body.String()); err != nil {
		slog.WarnContext(ctx, "send order confirmation", "order_id", order.ID, "err", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/logger"
	"github.com/fjod/gamestore/internal/metrics"
	"github.com/fjod/gamestore/internal/payment"
	"github.com/fjod/gamestore/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cartSettler interface {
	SettleCheckout(ctx context.Context, snapshot *domain.Cart) (*domain.Cart, error)
}

type CheckoutService struct {
	gateway payment.Gateway
	orders  repository.OrderRepository
	carts   cartSettler
	effects *SideEffects
	log     *zap.Logger
	now     func() time.Time
}

func NewCheckoutService(gateway payment.Gateway, orders repository.OrderRepository, carts cartSettler, effects *SideEffects, log *zap.Logger) *CheckoutService {
	return &CheckoutService{
		gateway: gateway,
		orders:  orders,
		carts:   carts,
		effects: effects,
		log:     log,
		now:     time.Now,
	}
}

// ProcessPayment turns the cart into a completed order. cart must be the
// stored snapshot, not a cached copy: settling takes exactly its lines out
// of the cart. Validation failures touch nothing. Once the order exists,
// library grants and the completion event are best-effort; settling the cart
// is not.
func (s *CheckoutService) ProcessPayment(ctx context.Context, cart *domain.Cart, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Order, error) {
	if cart == nil || cart.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	log := logger.WithTrace(ctx, s.log).With(zap.String("user_id", cart.UserID))

	if cart.IsEmpty() {
		metrics.RecordCheckout("invalid")
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}
	if err := payment.Validate(method, details); err != nil {
		metrics.RecordCheckout("invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	orderID := uuid.NewString()
	txnID, err := s.gateway.Charge(ctx, orderID, cart.Total)
	if err != nil {
		metrics.RecordCheckout("payment_failed")
		return nil, fmt.Errorf("%w: payment: %v", ErrRemote, err)
	}

	now := s.now()
	order := &domain.Order{
		ID:             orderID,
		OrderNumber:    orderNumber(now),
		UserID:         cart.UserID,
		Items:          domain.OrderItemsFromCart(cart),
		TotalAmount:    cart.Total,
		Status:         domain.OrderStatusCompleted,
		PaymentMethod:  method,
		PaymentDetails: payment.Mask(method, details),
		TransactionID:  txnID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		metrics.RecordCheckout("error")
		log.Error("order insert failed after payment", zap.String("transaction_id", txnID), zap.Error(err))
		return nil, fmt.Errorf("%w: create order: %v", ErrRemote, err)
	}

	s.effects.GrantLibrary(ctx, order)

	if _, err := s.carts.SettleCheckout(ctx, cart); err != nil {
		metrics.RecordCheckout("error")
		log.Error("cart settle failed after order", zap.String("order_id", order.ID), zap.Error(err))
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrRemote) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: settle cart: %v", ErrRemote, err)
	}

	s.effects.PublishOrderCompleted(ctx, order)

	metrics.RecordCheckout("success")
	log.Info("checkout completed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()))
	return order, nil
}

func orderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%04d", now.UnixMilli(), rand.IntN(10000))
}

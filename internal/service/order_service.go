package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/gamestore/internal/domain"
	"github.com/fjod/gamestore/internal/repository"
)

type OrderService struct {
	orders repository.OrderRepository
	now    func() time.Time
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders, now: time.Now}
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrRemote, err)
	}
	return orders, nil
}

// GetOrder hides other users' orders behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrRemote, err)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.OrderStatusPending {
		return nil, fmt.Errorf("%w: %s orders cannot be cancelled", ErrBusinessRule, order.Status)
	}

	now := s.now()
	err = s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusCancelled, now)
	if errors.Is(err, repository.ErrOrderNotFound) {
		// Status moved between the read and the update.
		return nil, fmt.Errorf("%w: order %s changed status", ErrConflict, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cancel order: %v", ErrRemote, err)
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = now
	return order, nil
}

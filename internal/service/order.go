package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"webshop/internal/events"
	"webshop/internal/logging"
	"webshop/internal/models"
	"webshop/internal/repo"
	"webshop/internal/transport"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

// PlaceOrder converts the caller's cart into an immutable order snapshot and
// clears the cart, all in one transaction. The cart version read at the start
// is bumped with a conditional update before anything is written; if any
// concurrent mutation or checkout got there first the whole transaction
// rolls back with ErrConflict, so a cart state is charged at most once.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place")

	var order *models.Order
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCartWithItems(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: cart is empty", ErrValidation)
			}
			return err
		}
		if len(cart.Items) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		subtotal := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			product, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %s no longer exists", ErrNotFound, item.ProductID)
				}
				return err
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     product.Price,
				Quantity:  item.Quantity,
			})
		}

		ok, err := tx.BumpCartVersion(ctx, cart.ID, cart.Version)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: cart changed during checkout", ErrConflict)
		}

		order = &models.Order{
			OrderNumber:     newOrderNumber(),
			UserID:          userID,
			Items:           orderItems,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Status:          models.OrderStatusPending,
			Subtotal:        subtotal,
			TotalAmount:     subtotal,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		return tx.ClearCartItems(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":         "order_placed",
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})

	l.Info("order placed", "order_id", order.ID, "order_number", order.OrderNumber)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}

func newOrderNumber() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(id[:]))
}

func (s *OrderService) publish(ctx context.Context, userID uuid.UUID, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicOrderEvents, userID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", events.TopicOrderEvents, "error", err)
	}
}

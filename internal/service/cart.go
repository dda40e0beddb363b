package service

import (
	"context"
	"errors"
	"fmt"
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

type CartService struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

// GetCart returns an empty cart view when the user has no cart record yet;
// the record itself is only created on first mutation.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*transport.CartView, error) {
	cart, err := s.Repo.GetCartWithItems(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &transport.CartView{UserID: userID, Items: []transport.CartItemView{}}, nil
		}
		return nil, err
	}
	return s.buildCartView(ctx, cart)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*transport.CartView, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrValidation)
	}

	// Reject dangling references up front instead of corrupting checkout later.
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		return nil, err
	}

	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.UpsertItem(ctx, cart.ID, productID, uint(quantity)); err != nil {
			return err
		}
		return tx.TouchCartVersion(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	return s.GetCart(ctx, userID)
}

// RemoveItem is a no-op success when the cart does not exist or the product
// was never in it.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCartWithItems(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		deleted, err := tx.DeleteItem(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return nil
		}
		return tx.TouchCartVersion(ctx, cart.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, userID, map[string]any{
		"type":       "cart_item_removed",
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}

// buildCartView resolves every line against the current product record.
// A product deleted since it was added shows up with an empty name and zero
// price; checkout rejects it properly.
func (s *CartService) buildCartView(ctx context.Context, cart *models.Cart) (*transport.CartView, error) {
	view := transport.CartView{
		UserID:    cart.UserID,
		Items:     make([]transport.CartItemView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		iv := transport.CartItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     decimal.Zero,
			LineTotal: decimal.Zero,
		}
		product, err := s.Repo.GetProduct(ctx, item.ProductID)
		if err == nil {
			iv.Name = product.Name
			iv.Price = product.Price
			iv.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		view.Items = append(view.Items, iv)
	}
	return &view, nil
}

func (s *CartService) publish(ctx context.Context, userID uuid.UUID, event map[string]any) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(pubCtx, events.TopicCartEvents, userID.String(), event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", events.TopicCartEvents, "error", err)
	}
}

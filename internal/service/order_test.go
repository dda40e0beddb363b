package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/events"
	"webshop/internal/models"
	"webshop/internal/transport"
)

func newTestOrderEnv(t *testing.T) (*OrderService, *CartService) {
	r := newTestRepo(t)
	producer := events.NewProducer("")
	return &OrderService{Repo: r, Producer: producer},
		&CartService{Repo: r, Producer: producer}
}

func testOrderRequest() transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		ShippingAddress: models.ShippingAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			Country: "US",
			ZipCode: "62701",
		},
		PaymentMethod: "card",
	}
}

func TestOrderService_PlaceOrder_EmptyCart(t *testing.T) {
	orders, carts := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	// No cart record at all.
	_, err := orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.ErrorIs(t, err, ErrValidation)

	// Cart record exists but holds no items.
	product := createProduct(t, orders.Repo, "mug", "SKU-MUG", "10.00")
	_, err = carts.AddItem(ctx, userID, product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, carts.RemoveItem(ctx, userID, product.ID))

	_, err = orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, orders.Repo.DB.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count, "no zero-item order may ever be created")
}

func TestOrderService_PlaceOrder_SnapshotAndClear(t *testing.T) {
	orders, carts := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	mug := createProduct(t, orders.Repo, "mug", "SKU-MUG", "10.00")
	pen := createProduct(t, orders.Repo, "pen", "SKU-PEN", "5.00")

	_, err := carts.AddItem(ctx, userID, mug.ID, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, userID, pen.ID, 1)
	require.NoError(t, err)

	order, err := orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, userID, order.UserID)
	assert.NotEmpty(t, order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("25.00")),
		"subtotal was %s", order.Subtotal)
	assert.True(t, order.TotalAmount.Equal(order.Subtotal))
	assert.Equal(t, "card", order.PaymentMethod)
	assert.Equal(t, "Springfield", order.ShippingAddress.City)

	byProduct := map[uuid.UUID]models.OrderItem{}
	for _, item := range order.Items {
		byProduct[item.ProductID] = item
	}
	require.Contains(t, byProduct, mug.ID)
	assert.Equal(t, "mug", byProduct[mug.ID].Name)
	assert.Equal(t, uint(2), byProduct[mug.ID].Quantity)
	assert.True(t, byProduct[mug.ID].Price.Equal(decimal.RequireFromString("10.00")))

	// The cart survives the checkout, emptied.
	cart, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	var cartCount int64
	require.NoError(t, orders.Repo.DB.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&cartCount).Error)
	assert.Equal(t, int64(1), cartCount)

	// A second checkout of the now-empty cart must fail.
	_, err = orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_PlaceOrder_PriceFrozenAtCheckout(t *testing.T) {
	orders, carts := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	mug := createProduct(t, orders.Repo, "mug", "SKU-MUG", "10.00")
	_, err := carts.AddItem(ctx, userID, mug.ID, 1)
	require.NoError(t, err)

	order, err := orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.NoError(t, err)

	// Later product changes must not leak into the snapshot.
	require.NoError(t, orders.Repo.DB.Model(&models.Product{}).
		Where("id = ?", mug.ID).
		Updates(map[string]any{"price": "99.99", "name": "golden mug"}).Error)

	listed, err := orders.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Items, 1)
	assert.Equal(t, "mug", listed[0].Items[0].Name)
	assert.True(t, listed[0].Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, listed[0].TotalAmount.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, order.OrderNumber, listed[0].OrderNumber)
}

func TestOrderService_PlaceOrder_DeletedProduct(t *testing.T) {
	orders, carts := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	mug := createProduct(t, orders.Repo, "mug", "SKU-MUG", "10.00")
	_, err := carts.AddItem(ctx, userID, mug.ID, 1)
	require.NoError(t, err)

	require.NoError(t, orders.Repo.DB.Delete(&models.Product{}, "id = ?", mug.ID).Error)

	_, err = orders.PlaceOrder(ctx, userID, testOrderRequest())
	require.ErrorIs(t, err, ErrNotFound)

	// The failed checkout must not have touched the cart.
	cart, err := carts.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
}

func TestOrderService_CartVersionGuard(t *testing.T) {
	orders, carts := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	mug := createProduct(t, orders.Repo, "mug", "SKU-MUG", "10.00")
	_, err := carts.AddItem(ctx, userID, mug.ID, 1)
	require.NoError(t, err)

	cart, err := orders.Repo.GetCartWithItems(ctx, userID)
	require.NoError(t, err)

	// A checkout that read this version wins the conditional update once.
	ok, err := orders.Repo.BumpCartVersion(ctx, cart.ID, cart.Version)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second checkout holding the same stale version must lose.
	ok, err = orders.Repo.BumpCartVersion(ctx, cart.ID, cart.Version)
	require.NoError(t, err)
	assert.False(t, ok, "stale cart version must not pass the guard")
}

func TestOrderService_ListOrders_NewestFirst(t *testing.T) {
	orders, _ := newTestOrderEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i, number := range []string{"ORD-OLD", "ORD-MID", "ORD-NEW"} {
		order := models.Order{
			OrderNumber: number,
			UserID:      userID,
			Status:      models.OrderStatusPending,
			Subtotal:    decimal.RequireFromString("1.00"),
			TotalAmount: decimal.RequireFromString("1.00"),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, orders.Repo.CreateOrder(ctx, &order))
	}

	// Another user's orders must not bleed in.
	other := models.Order{
		OrderNumber: "ORD-OTHER",
		UserID:      uuid.New(),
		Status:      models.OrderStatusPending,
		Subtotal:    decimal.RequireFromString("1.00"),
		TotalAmount: decimal.RequireFromString("1.00"),
	}
	require.NoError(t, orders.Repo.CreateOrder(ctx, &other))

	listed, err := orders.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "ORD-NEW", listed[0].OrderNumber)
	assert.Equal(t, "ORD-MID", listed[1].OrderNumber)
	assert.Equal(t, "ORD-OLD", listed[2].OrderNumber)
}

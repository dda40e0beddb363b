package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"webshop/internal/models"
)

func (r *GormRepo) GetCartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// EnsureCart returns the user's cart record, creating it on first use.
func (r *GormRepo) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart := models.Cart{UserID: userID}
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpsertItem merges quantity into an existing line or inserts a new one,
// keeping at most one line per product.
func (r *GormRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity uint) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	item := models.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return r.DB.WithContext(ctx).Create(&item).Error
}

// DeleteItem removes the matching line. Zero rows affected is not an error;
// removing an absent product is a no-op.
func (r *GormRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ClearCartItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// TouchCartVersion bumps the cart version unconditionally. Used by ordinary
// mutations so that an in-flight checkout of the previous cart state fails
// its conditional update.
func (r *GormRepo) TouchCartVersion(ctx context.Context, cartID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("version", gorm.Expr("version + 1")).Error
}

// BumpCartVersion is the compare-and-swap guard for checkout: it succeeds
// only if the cart still has the version the caller read. Exactly one of
// two racing checkouts can win.
func (r *GormRepo) BumpCartVersion(ctx context.Context, cartID uuid.UUID, fromVersion uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cartID, fromVersion).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

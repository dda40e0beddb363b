package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

const OrderStatusPending = "pending"

type User struct {
	ID           uuid.UUID `gorm:"primaryKey"                json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    string          `gorm:"not null"                    json:"category"`
	Stock       uint            `gorm:"not null;default:0"          json:"stock"`
	SKU         string          `gorm:"uniqueIndex;not null"        json:"sku"`
	Rating      float64         `gorm:"default:0"                   json:"rating"`
	NumReviews  uint            `gorm:"default:0"                   json:"num_reviews"`
	Featured    bool            `gorm:"default:false"               json:"featured"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Cart is the single mutable per-user record. Version is bumped on every
// mutation and checked with a conditional update at checkout, so two
// concurrent checkouts of the same cart state cannot both succeed.
type Cart struct {
	ID        uuid.UUID  `gorm:"primaryKey"           json:"id"`
	UserID    uuid.UUID  `gorm:"uniqueIndex;not null" json:"user_id"`
	Version   uint       `gorm:"not null;default:0"   json:"-"`
	Items     []CartItem `gorm:"foreignKey:CartID"    json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"primaryKey"                            json:"id"`
	CartID    uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID uuid.UUID `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Quantity  uint      `gorm:"not null;check:quantity>0"             json:"quantity"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Order and OrderItem are written once at checkout and never updated.
// Item rows carry the product name and price as of checkout time.
type Order struct {
	ID              uuid.UUID       `gorm:"primaryKey"                        json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"              json:"order_number"`
	UserID          uuid.UUID       `gorm:"index;not null"                    json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID"                json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	PaymentMethod   string          `gorm:"not null"                          json:"payment_method"`
	Status          string          `gorm:"not null;default:pending"          json:"status"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"       json:"subtotal"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"       json:"total_amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"primaryKey"                  json:"id"`
	OrderID   uuid.UUID       `gorm:"index;not null"              json:"-"`
	ProductID uuid.UUID       `gorm:"not null"                    json:"product_id"`
	Name      string          `gorm:"not null"                    json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  uint            `gorm:"not null"                    json:"quantity"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

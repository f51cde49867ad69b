package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string     `gorm:"not null"                 json:"name"`
	Email        string     `gorm:"uniqueIndex;not null"     json:"email"`
	Phone        string     `json:"phone"`
	Role         string     `gorm:"not null;default:user"    json:"role"`
	Active       bool       `gorm:"not null;default:true"    json:"active"`
	PasswordHash string     `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Stock       uint      `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Post carries the soft-delete variant: DeletedAt is set instead of removing
// the row, default list queries exclude marked rows, lookup by id still
// returns them.
type Post struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  uint       `gorm:"index;not null"           json:"author_id"`
	Title     string     `gorm:"not null"                 json:"title"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index"                    json:"deleted_at,omitempty"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"index;not null"           json:"post_id"`
	AuthorID  uint      `gorm:"index;not null"           json:"author_id"`
	Body      string    `gorm:"not null"                 json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey"                 json:"id"`
	UserID    uint `gorm:"index;not null"             json:"user_id"`
	ProductID uint `gorm:"not null"                   json:"product_id"`
	Quantity  uint `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// transitions is the closed table of legal status moves. Delivered and
// cancelled are terminal.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"      json:"id"`
	Reference string      `gorm:"uniqueIndex;not null"          json:"reference"`
	UserID    uint        `gorm:"index;not null"                json:"user_id"`
	Status    OrderStatus `gorm:"type:varchar(16);not null"     json:"status"`
	Total     float64     `gorm:"not null"                      json:"total"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"            json:"items"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line: UnitPrice is copied
// from the product at checkout and never recomputed.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Quantity  uint    `gorm:"default:1;check:quantity>0" json:"quantity"`
	UnitPrice float64 `gorm:"not null"                   json:"unit_price"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	Revoked   bool      `gorm:"default:false"   json:"revoked"`
}

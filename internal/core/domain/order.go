package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderShipped, OrderDelivered, OrderCancelled, OrderCompleted:
		return true
	}
	return false
}

type (
	Order struct {
		ID        string
		Customer  string
		Email     string
		Items     []OrderItem
		Total     float64
		Status    OrderStatus
		CreatedAt time.Time
	}

	OrderItem struct {
		ID        string
		ProductID string
		Name      string
		Quantity  int
		UnitPrice float64
		Status    OrderStatus
	}
)

// Page is one page of an admin listing.
type Page[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	Total      int
}

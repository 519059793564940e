package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a single cart line. A cart is the set of lines sharing a CartID;
// quantities may be negative to take items back out.
type Cart struct {
	ID        int64     `json:"id"`
	CartID    uuid.UUID `json:"cartId"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem is the aggregated view of one product in a cart.
type CartItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

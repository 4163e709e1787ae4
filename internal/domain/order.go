package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

type OrderItem struct {
	GameID    string          `bson:"game_id" json:"game_id"`
	GameTitle string          `bson:"game_title" json:"game_title"`
	GameImage string          `bson:"game_image,omitempty" json:"game_image,omitempty"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `bson:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `bson:"subtotal" json:"subtotal"`
}

type Order struct {
	ID             string            `bson:"_id" json:"id"`
	OrderNumber    string            `bson:"order_number" json:"order_number"`
	UserID         string            `bson:"user_id" json:"user_id"`
	Items          []OrderItem       `bson:"items" json:"items"`
	TotalAmount    decimal.Decimal   `bson:"total_amount" json:"total_amount"`
	Status         OrderStatus       `bson:"status" json:"status"`
	PaymentMethod  PaymentMethod     `bson:"payment_method" json:"payment_method"`
	PaymentDetails map[string]string `bson:"payment_details" json:"payment_details"`
	TransactionID  string            `bson:"transaction_id" json:"transaction_id"`
	CreatedAt      time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updated_at"`
}

// OrderItemsFromCart snapshots cart lines at their cart unit price.
func OrderItemsFromCart(c *Cart) []OrderItem {
	items := make([]OrderItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = OrderItem{
			GameID:    it.GameID,
			GameTitle: it.GameTitle,
			GameImage: it.GameImage,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		}
	}
	return items
}

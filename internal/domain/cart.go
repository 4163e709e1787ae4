package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	UserID    string          `bson:"user_id" json:"user_id"`
	Items     []CartItem      `bson:"items" json:"items"`
	Total     decimal.Decimal `bson:"total" json:"total"`
	Version   int64           `bson:"version" json:"version"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	GameID    string          `bson:"game_id" json:"game_id"`
	GameTitle string          `bson:"game_title" json:"game_title"`
	GameImage string          `bson:"game_image,omitempty" json:"game_image,omitempty"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `bson:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `bson:"subtotal" json:"subtotal"`
	AddedAt   time.Time       `bson:"added_at" json:"added_at"`
}

// NewCart returns an empty cart for userID with a well-defined zero total.
func NewCart(userID string, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		Total:     decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges by game id. An existing line keeps the unit price captured
// when it was first added; price is only used for new lines.
func (c *Cart) AddItem(gameID, title, image string, price decimal.Decimal, now time.Time) {
	for i := range c.Items {
		if c.Items[i].GameID == gameID {
			c.Items[i].Quantity++
			c.Items[i].Subtotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
			c.touch(now)
			return
		}
	}

	c.Items = append(c.Items, CartItem{
		GameID:    gameID,
		GameTitle: title,
		GameImage: image,
		Quantity:  1,
		UnitPrice: price,
		Subtotal:  price,
		AddedAt:   now,
	})
	c.touch(now)
}

// RemoveItem reports whether a line was removed.
func (c *Cart) RemoveItem(gameID string, now time.Time) bool {
	kept := make([]CartItem, 0, len(c.Items))
	removed := false
	for _, item := range c.Items {
		if item.GameID == gameID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	c.touch(now)
	return removed
}

// UpdateQuantity removes the line when quantity <= 0.
func (c *Cart) UpdateQuantity(gameID string, quantity int, now time.Time) bool {
	if quantity <= 0 {
		return c.RemoveItem(gameID, now)
	}

	found := false
	for i := range c.Items {
		if c.Items[i].GameID == gameID {
			c.Items[i].Quantity = quantity
			c.Items[i].Subtotal = c.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
			found = true
			break
		}
	}
	c.touch(now)
	return found
}

func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.touch(now)
}

// Subtract takes the given lines' quantities out of the cart. Lines that
// reach zero are removed. Lines not in bought are left alone.
func (c *Cart) Subtract(bought []CartItem, now time.Time) {
	for _, b := range bought {
		for i := range c.Items {
			if c.Items[i].GameID == b.GameID {
				c.UpdateQuantity(b.GameID, c.Items[i].Quantity-b.Quantity, now)
				break
			}
		}
	}
	c.touch(now)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) HasGame(gameID string) bool {
	for _, item := range c.Items {
		if item.GameID == gameID {
			return true
		}
	}
	return false
}

// Recalculate sets Total to the sum of all subtotals.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal)
	}
	c.Total = total
}

func (c *Cart) touch(now time.Time) {
	c.Recalculate()
	c.UpdatedAt = now
}

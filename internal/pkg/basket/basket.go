package basket

import (
	"github.com/revitalife/revitalife-shop/internal/pkg/payments"
)

// Item is a single basket line. Price is in minor currency units.
type Item struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int64  `json:"quantity"`
	IsSubscription bool   `json:"isSubscription"`
	StripePriceID  string `json:"stripePriceId,omitempty"`
}

// Basket is the server-side cart for one browser session.
type Basket struct {
	SessionID string `json:"sessionId"`
	Items     []Item `json:"items"`
}

func New(sessionID string) *Basket {
	return &Basket{SessionID: sessionID, Items: []Item{}}
}

// Add merges the item into the basket, summing quantities when the same
// item id is already present.
func (b *Basket) Add(item Item) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range b.Items {
		if b.Items[i].ID == item.ID && b.Items[i].IsSubscription == item.IsSubscription {
			b.Items[i].Quantity += item.Quantity
			return
		}
	}
	b.Items = append(b.Items, item)
}

// UpdateQuantity sets the quantity for a line. Lines are keyed on the
// same (id, subscription flag) pair Add merges on, so a product's
// one-time and subscription lines stay independently addressable. A
// quantity of zero or less removes the line. It reports whether the
// line was found.
func (b *Basket) UpdateQuantity(itemID string, isSubscription bool, quantity int64) bool {
	for i := range b.Items {
		if b.Items[i].ID == itemID && b.Items[i].IsSubscription == isSubscription {
			if quantity <= 0 {
				b.Items = append(b.Items[:i], b.Items[i+1:]...)
			} else {
				b.Items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// Remove deletes one line.
func (b *Basket) Remove(itemID string, isSubscription bool) bool {
	return b.UpdateQuantity(itemID, isSubscription, 0)
}

// Clear empties the basket.
func (b *Basket) Clear() {
	b.Items = []Item{}
}

// Total returns the basket value in minor currency units.
func (b *Basket) Total() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// ItemCount returns the summed quantity across all lines.
func (b *Basket) ItemCount() int64 {
	var count int64
	for _, item := range b.Items {
		count += item.Quantity
	}
	return count
}

// HasSubscriptionItem reports whether any line is a recurring plan.
func (b *Basket) HasSubscriptionItem() bool {
	for _, item := range b.Items {
		if item.IsSubscription {
			return true
		}
	}
	return false
}

// CheckoutItems converts the basket lines for session creation.
func (b *Basket) CheckoutItems() []payments.CheckoutItem {
	items := make([]payments.CheckoutItem, 0, len(b.Items))
	for _, item := range b.Items {
		items = append(items, payments.CheckoutItem{
			ID:             item.ID,
			Name:           item.Name,
			Price:          item.Price,
			Quantity:       item.Quantity,
			IsSubscription: item.IsSubscription,
			StripePriceID:  item.StripePriceID,
		})
	}
	return items
}

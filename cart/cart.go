// Package cart keeps a storefront cart in a [storage.Store].
//
// Items, the applied coupon and a visitor session id live under the keys "cart",
// "coupon" and "sessionId". Every mutation writes through to the store; reads are served
// from memory. Totals are display arithmetic only; discounts are computed by the backend.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/goOwner/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	KeyItems     = "cart"
	KeyCoupon    = "coupon"
	KeySessionID = "sessionId"
)

// ErrNilStore is returned by Open without a store.
var ErrNilStore = errors.New("cart: nil store")

// Item is one product line.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image,omitempty"`
	Category string  `json:"category,omitempty"`
	Quantity int     `json:"quantity"`
}

// Coupon is the coupon the visitor applied, as returned by the backend's validation call.
type Coupon struct {
	Code     string  `json:"code"`
	Type     string  `json:"type,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

// Cart is safe for concurrent use.
type Cart struct {
	store  storage.Store
	logger *zap.Logger

	mu        sync.Mutex
	items     []Item
	coupon    *Coupon
	sessionID string
}

// Option configures Open.
type Option func(*Cart)

// WithLogger sets the logger used for corrupt persisted state.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cart) {
		if l != nil {
			c.logger = l
		}
	}
}

// Open loads the cart from store. Corrupt cart or coupon documents are logged and
// treated as empty. A session id is created and persisted when none exists.
func Open(ctx context.Context, store storage.Store, opts ...Option) (*Cart, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	c := &Cart{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	sid, found, err := store.Get(ctx, KeySessionID)
	if err != nil {
		return nil, fmt.Errorf("cart: load session id: %w", err)
	}
	if !found || sid == "" {
		sid = uuid.NewString()
		if err := store.Set(ctx, KeySessionID, sid); err != nil {
			return nil, fmt.Errorf("cart: save session id: %w", err)
		}
	}
	c.sessionID = sid

	raw, found, err := store.Get(ctx, KeyItems)
	if err != nil {
		return nil, fmt.Errorf("cart: load items: %w", err)
	}
	if found {
		var items []Item
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			c.logger.Warn("ignoring corrupt cart", zap.Error(err))
		} else {
			c.items = items
		}
	}

	raw, found, err = store.Get(ctx, KeyCoupon)
	if err != nil {
		return nil, fmt.Errorf("cart: load coupon: %w", err)
	}
	if found {
		var coupon Coupon
		if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
			c.logger.Warn("ignoring corrupt coupon", zap.Error(err))
		} else {
			c.coupon = &coupon
		}
	}

	return c, nil
}

// SessionID returns the visitor session id.
func (c *Cart) SessionID() string {
	return c.sessionID
}

// Add puts qty of item in the cart, adding to the quantity of an existing line with the
// same id. qty below 1 counts as 1.
func (c *Cart) Add(ctx context.Context, item Item, qty int) error {
	if item.ID == "" {
		return errors.New("cart: item without id")
	}
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity += qty
			return c.saveItems(ctx)
		}
	}
	item.Quantity = qty
	c.items = append(c.items, item)
	return c.saveItems(ctx)
}

// Remove drops the line with id. Removing a missing id still persists.
func (c *Cart) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
	return c.saveItems(ctx)
}

func (c *Cart) remove(id string) {
	kept := c.items[:0]
	for _, it := range c.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
}

// UpdateQuantity sets the quantity of line id; qty below 1 removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, id string, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if qty < 1 {
		c.remove(id)
		return c.saveItems(ctx)
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = qty
		}
	}
	return c.saveItems(ctx)
}

// Clear empties the cart and drops the coupon.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.coupon = nil
	if err := c.saveItems(ctx); err != nil {
		return err
	}
	return c.saveCoupon(ctx)
}

// ApplyCoupon records coupon, replacing any previous one.
func (c *Cart) ApplyCoupon(ctx context.Context, coupon Coupon) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupon = &coupon
	return c.saveCoupon(ctx)
}

// RemoveCoupon drops the applied coupon.
func (c *Cart) RemoveCoupon(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coupon = nil
	return c.saveCoupon(ctx)
}

// Coupon returns the applied coupon.
func (c *Cart) Coupon() (Coupon, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.coupon == nil {
		return Coupon{}, false
	}
	return *c.coupon, true
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Item(nil), c.items...)
}

// Total is the sum of price times quantity.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Contains reports whether a line with id exists.
func (c *Cart) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (c *Cart) saveItems(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode items: %w", err)
	}
	if err := c.store.Set(ctx, KeyItems, string(raw)); err != nil {
		return fmt.Errorf("cart: save items: %w", err)
	}
	return nil
}

func (c *Cart) saveCoupon(ctx context.Context) error {
	if c.coupon == nil {
		if err := c.store.Delete(ctx, KeyCoupon); err != nil {
			return fmt.Errorf("cart: delete coupon: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(c.coupon)
	if err != nil {
		return fmt.Errorf("cart: encode coupon: %w", err)
	}
	if err := c.store.Set(ctx, KeyCoupon, string(raw)); err != nil {
		return fmt.Errorf("cart: save coupon: %w", err)
	}
	return nil
}

package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Record is an untyped admin object.
type Record = map[string]any

// Resource is a collection path under the admin API.
type Resource string

const (
	ResourceProducts       Resource = "products"
	ResourceCustomers      Resource = "customers"
	ResourcePurchaseOrders Resource = "purchase-orders"
	ResourceInventory      Resource = "inventory/ledger"
	ResourceTransfers      Resource = "transfers"
	ResourceLocations      Resource = "locations"
	ResourceReturns        Resource = "returns"
	ResourceReviews        Resource = "reviews"
	ResourceAbandonedCarts Resource = "abandoned-carts"
	ResourceSales          Resource = "analytics/sales"
	ResourceLowStock       Resource = "analytics/low-stock"
	ResourceTopProducts    Resource = "analytics/top-products"
)

// Single-object paths for [Client.Get].
const (
	PathDashboard  = "dashboard"
	PathNavigation = "navigation"
	PathSettings   = "settings"
)

// List returns the records of a collection. Backends that wrap the list in
// {"items": [...]} or {"data": [...]} are unwrapped.
func (c *Client) List(ctx context.Context, resource Resource, query url.Values) ([]Record, error) {
	if resource == "" {
		return nil, errors.New("admin: empty resource")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, string(resource), query, nil, &raw); err != nil {
		return nil, err
	}
	return decodeRecords(raw)
}

func decodeRecords(raw json.RawMessage) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Record{}, nil
	}
	if raw[0] == '{' {
		var envelope struct {
			Items json.RawMessage `json:"items"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		switch {
		case len(envelope.Items) > 0:
			raw = envelope.Items
		case len(envelope.Data) > 0:
			raw = envelope.Data
		default:
			return nil, fmt.Errorf("%w: object without items", ErrDecode)
		}
	}
	out := []Record{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}

// Get returns the object at path, relative to the admin root ("dashboard",
// "products/p-1").
func (c *Client) Get(ctx context.Context, path string) (Record, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, errors.New("admin: empty path")
	}
	var out Record
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Settings returns the store settings.
func (c *Client) Settings(ctx context.Context) (Record, error) {
	return c.Get(ctx, PathSettings)
}

// UpdateSettings merges values into the store settings.
func (c *Client) UpdateSettings(ctx context.Context, values Record) error {
	if len(values) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPut, PathSettings, nil, values, nil)
}

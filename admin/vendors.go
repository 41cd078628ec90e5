package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Vendor is a supplier.
type Vendor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"isActive"`
}

// ListVendors returns every vendor.
func (c *Client) ListVendors(ctx context.Context) ([]Vendor, error) {
	var out []Vendor
	if err := c.do(ctx, http.MethodGet, "vendors", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetVendor returns one vendor.
func (c *Client) GetVendor(ctx context.Context, id string) (Vendor, error) {
	if id == "" {
		return Vendor{}, errors.New("admin: empty vendor id")
	}
	var out Vendor
	err := c.do(ctx, http.MethodGet, "vendors/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

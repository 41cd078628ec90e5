package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// CouponCreate is the editable part of a coupon.
type CouponCreate struct {
	Code               string   `json:"code"`
	Description        string   `json:"description"`
	Type               string   `json:"type"`
	Value              float64  `json:"value"`
	MinOrderValue      float64  `json:"minOrderValue"`
	MaxDiscount        float64  `json:"maxDiscount"`
	Scope              string   `json:"scope"`
	ApplicableProducts []string `json:"applicableProducts"`
	PerCustomerLimit   int      `json:"perCustomerLimit"`
	IsActive           bool     `json:"isActive"`
}

// Coupon is a stored coupon.
type Coupon struct {
	ID string `json:"id"`
	CouponCreate
	UsageCount int `json:"usageCount"`
}

var errEmptyCouponID = errors.New("admin: empty coupon id")

// ListCoupons returns every coupon.
func (c *Client) ListCoupons(ctx context.Context) ([]Coupon, error) {
	var out []Coupon
	if err := c.do(ctx, http.MethodGet, "coupons", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCoupon stores a new coupon. The backend uppercases the code.
func (c *Client) CreateCoupon(ctx context.Context, in CouponCreate) (Coupon, error) {
	var out Coupon
	err := c.do(ctx, http.MethodPost, "coupons", nil, in, &out)
	return out, err
}

// UpdateCoupon replaces the editable fields of coupon id.
func (c *Client) UpdateCoupon(ctx context.Context, id string, in CouponCreate) (Coupon, error) {
	if id == "" {
		return Coupon{}, errEmptyCouponID
	}
	var out Coupon
	err := c.do(ctx, http.MethodPut, "coupons/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

// DeleteCoupon removes coupon id.
func (c *Client) DeleteCoupon(ctx context.Context, id string) error {
	if id == "" {
		return errEmptyCouponID
	}
	return c.do(ctx, http.MethodDelete, "coupons/"+url.PathEscape(id), nil, nil, nil)
}

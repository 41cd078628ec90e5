package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	goOwner "github.com/MrEthical07/goOwner"
	"github.com/MrEthical07/goOwner/internal/backendtest"
	"github.com/MrEthical07/goOwner/storage"
	"github.com/google/uuid"
)

func loggedIn(t *testing.T) (*Client, *goOwner.Facade, *backendtest.Server) {
	t.Helper()
	backend := backendtest.New(backendtest.Options{})
	t.Cleanup(backend.Close)

	facade, err := goOwner.New().WithBackendURL(backend.URL).WithStore(storage.NewMemory()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(facade.Close)
	if res := facade.Login(context.Background(), backendtest.DefaultEmail, backendtest.DefaultPassword); !res.Success {
		t.Fatalf("login: %+v", res)
	}
	return New(backend.URL, facade), facade, backend
}

func TestListOrdersNormalizesShape(t *testing.T) {
	client, _, backend := loggedIn(t)

	orders, err := client.ListOrders(context.Background(), "")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	first := orders[0]
	if first.OrderNumber != "AUR-1001" || first.CustomerName != "Asha Rao" || first.CustomerEmail != "asha@example.com" {
		t.Fatalf("list shape not normalized: %+v", first)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 1 {
		t.Fatalf("unexpected items %+v", first.Items)
	}

	hdr := backend.LastHeaders()
	if hdr.Get("Authorization") == "" {
		t.Fatal("expected credential on admin request")
	}
	if _, err := uuid.Parse(hdr.Get("X-Request-ID")); err != nil {
		t.Fatalf("expected uuid request id, got %q", hdr.Get("X-Request-ID"))
	}
}

func TestListOrdersStatusFilter(t *testing.T) {
	client, _, _ := loggedIn(t)

	orders, err := client.ListOrders(context.Background(), OrderShipped)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "ord-2" {
		t.Fatalf("unexpected filter result %+v", orders)
	}
}

func TestGetAndUpdateOrder(t *testing.T) {
	client, _, _ := loggedIn(t)
	ctx := context.Background()

	order, err := client.GetOrder(ctx, "ord-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.OrderNumber != "AUR-1001" || order.CustomerName != "Asha Rao" {
		t.Fatalf("detail shape not decoded: %+v", order)
	}

	if err := client.UpdateOrderStatus(ctx, "ord-1", OrderShipped); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	order, _ = client.GetOrder(ctx, "ord-1")
	if order.Status != OrderShipped {
		t.Fatalf("expected shipped, got %q", order.Status)
	}

	if _, err := client.GetOrder(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := client.UpdateOrderStatus(ctx, "", OrderShipped); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestCouponLifecycle(t *testing.T) {
	client, _, _ := loggedIn(t)
	ctx := context.Background()

	created, err := client.CreateCoupon(ctx, CouponCreate{Code: "diwali25", Type: "percentage", Value: 25, IsActive: true})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if created.ID == "" || created.Code != "DIWALI25" || created.UsageCount != 0 {
		t.Fatalf("unexpected created coupon %+v", created)
	}

	updated, err := client.UpdateCoupon(ctx, created.ID, CouponCreate{Code: "DIWALI30", Value: 30})
	if err != nil {
		t.Fatalf("UpdateCoupon: %v", err)
	}
	if updated.Code != "DIWALI30" || updated.Value != 30 {
		t.Fatalf("unexpected updated coupon %+v", updated)
	}

	list, err := client.ListCoupons(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListCoupons: %v %+v", err, list)
	}

	if err := client.DeleteCoupon(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCoupon: %v", err)
	}
	if err := client.DeleteCoupon(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateCouponValidationMessage(t *testing.T) {
	client, _, _ := loggedIn(t)

	_, err := client.CreateCoupon(context.Background(), CouponCreate{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Message != "code is required" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestVendors(t *testing.T) {
	client, _, _ := loggedIn(t)
	ctx := context.Background()

	vendors, err := client.ListVendors(ctx)
	if err != nil || len(vendors) != 2 {
		t.Fatalf("ListVendors: %v %+v", err, vendors)
	}
	v, err := client.GetVendor(ctx, "v-1")
	if err != nil || v.Code != "VND-101" || !v.IsActive {
		t.Fatalf("GetVendor: %v %+v", err, v)
	}
	_, err = client.GetVendor(ctx, "v-9")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Vendor not found" {
		t.Fatalf("expected vendor not found, got %v", err)
	}
}

func TestGenericResources(t *testing.T) {
	client, _, backend := loggedIn(t)
	ctx := context.Background()

	products, err := client.List(ctx, ResourceProducts, nil)
	if err != nil || len(products) != 1 || products[0]["id"] != "p-ring-1" {
		t.Fatalf("List products: %v %+v", err, products)
	}

	backend.SeedResource("transfers", []map[string]any{{"id": "t-1"}, {"id": "t-2"}})
	transfers, err := client.List(ctx, ResourceTransfers, url.Values{"page": {"1"}})
	if err != nil || len(transfers) != 2 {
		t.Fatalf("List transfers: %v %+v", err, transfers)
	}

	empty, err := client.List(ctx, ResourcePurchaseOrders, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("List purchase orders: %v %+v", err, empty)
	}

	product, err := client.Get(ctx, "products/p-ring-1")
	if err != nil || product["name"] != "Solitaire Ring" {
		t.Fatalf("Get product: %v %+v", err, product)
	}

	dash, err := client.Get(ctx, PathDashboard)
	if err != nil || dash["totalOrders"] != float64(2) {
		t.Fatalf("Get dashboard: %v %+v", err, dash)
	}

	if _, err := client.List(ctx, "", nil); err == nil {
		t.Fatal("expected error for empty resource")
	}
}

func TestSettingsMerge(t *testing.T) {
	client, _, _ := loggedIn(t)
	ctx := context.Background()

	if err := client.UpdateSettings(ctx, Record{"currency": "USD"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	settings, err := client.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if settings["currency"] != "USD" || settings["storeName"] != "Aurum Atelier" {
		t.Fatalf("settings not merged: %+v", settings)
	}
}

func TestUnauthorizedAfterLogout(t *testing.T) {
	client, facade, _ := loggedIn(t)
	ctx := context.Background()

	if err := facade.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err := client.ListOrders(ctx, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Not authenticated" {
		t.Fatalf("expected decoded detail, got %v", err)
	}
}

func TestUnauthorizedAfterRevocation(t *testing.T) {
	client, facade, backend := loggedIn(t)
	ctx := context.Background()

	token, _ := facade.Token(ctx)
	backend.Revoke(token)
	if _, err := client.ListVendors(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDecodeErrorAndWrappedLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/reviews":
			_, _ = w.Write([]byte(`{"items":[{"id":"r-1"}]}`))
		case "/api/admin/returns":
			_, _ = w.Write([]byte(`{"data":[{"id":"rt-1"},{"id":"rt-2"}]}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	client := New(srv.URL, nil, WithHTTPClient(srv.Client()))
	ctx := context.Background()

	reviews, err := client.List(ctx, ResourceReviews, nil)
	if err != nil || len(reviews) != 1 {
		t.Fatalf("items envelope: %v %+v", err, reviews)
	}
	returns, err := client.List(ctx, ResourceReturns, nil)
	if err != nil || len(returns) != 2 {
		t.Fatalf("data envelope: %v %+v", err, returns)
	}
	if _, err := client.ListVendors(ctx); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestEndpointPrefix(t *testing.T) {
	c := New("http://shop.example.com/", nil)
	if got := c.endpoint("orders", nil); got != "http://shop.example.com/api/admin/orders" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	c = New("http://shop.example.com", nil, WithAPIPrefix(""))
	if got := c.endpoint("/orders", url.Values{"status": {"pending"}}); got != "http://shop.example.com/admin/orders?status=pending" {
		t.Fatalf("unexpected endpoint %q", got)
	}
}

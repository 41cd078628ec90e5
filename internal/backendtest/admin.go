package backendtest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type dataset struct {
	mu        sync.Mutex
	orders    []map[string]any
	coupons   map[string]map[string]any
	vendors   []map[string]any
	settings  map[string]any
	resources map[string][]map[string]any
}

func newDataset() *dataset {
	return &dataset{
		orders: []map[string]any{
			{
				"id": "ord-1", "order_number": "AUR-1001",
				"customer": map[string]any{"name": "Asha Rao", "email": "asha@example.com"},
				"total": 48500.0, "status": "pending", "paymentStatus": "paid",
				"createdAt": "2026-03-01T10:15:00Z", "channel": "online",
				"items": []map[string]any{{"productId": "p-ring-1", "name": "Solitaire Ring", "quantity": 1, "price": 48500.0}},
			},
			{
				"id": "ord-2", "order_number": "AUR-1002",
				"customer": map[string]any{"name": "Vikram Shah", "email": "vikram@example.com"},
				"total": 12900.0, "status": "shipped", "paymentStatus": "paid",
				"createdAt": "2026-03-02T08:00:00Z", "channel": "pos",
				"items": []map[string]any{{"productId": "p-stud-4", "name": "Pearl Studs", "quantity": 2, "price": 6450.0}},
			},
		},
		coupons: map[string]map[string]any{
			"c-welcome": {
				"id": "c-welcome", "code": "WELCOME10", "description": "First order", "type": "percentage",
				"value": 10.0, "minOrderValue": 5000.0, "maxDiscount": 2500.0, "scope": "general",
				"applicableProducts": []string{}, "perCustomerLimit": 1, "isActive": true, "usageCount": 3,
			},
		},
		vendors: []map[string]any{
			{"id": "v-1", "name": "Surat Diamonds", "code": "VND-101", "email": "sales@suratdiamonds.example", "phone": "+91-261-0000000", "isActive": true},
			{"id": "v-2", "name": "Jaipur Gems", "code": "VND-202", "email": "", "phone": "", "isActive": false},
		},
		settings: map[string]any{
			"storeName": "Aurum Atelier", "currency": "INR", "lowStockThreshold": 5.0,
		},
		resources: map[string][]map[string]any{
			"products":        {{"id": "p-ring-1", "name": "Solitaire Ring", "price": 48500.0, "stock": 3.0}},
			"customers":       {{"id": "cu-1", "name": "Asha Rao", "email": "asha@example.com"}},
			"purchase-orders": {},
			"inventory/ledger": {
				{"id": "l-1", "productId": "p-ring-1", "change": -1.0, "reason": "sale"},
			},
			"transfers":              {},
			"locations":              {{"id": "loc-main", "name": "Flagship"}},
			"returns":                {},
			"reviews":                {{"id": "r-1", "rating": 5.0, "status": "pending"}},
			"abandoned-carts":        {},
			"analytics/sales":        {{"date": "2026-03-01", "total": 48500.0}},
			"analytics/low-stock":    {{"productId": "p-ring-1", "stock": 3.0}},
			"analytics/top-products": {},
		},
	}
}

// adminRoutes registers the admin API. Every route requires a valid owner credential.
func (s *Server) adminRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/orders", s.admin(s.listOrders))
	mux.HandleFunc("GET /api/admin/orders/{id}", s.admin(s.getOrder))
	mux.HandleFunc("PUT /api/admin/orders/{id}/status", s.admin(s.updateOrderStatus))

	mux.HandleFunc("GET /api/admin/coupons", s.admin(s.listCoupons))
	mux.HandleFunc("POST /api/admin/coupons", s.admin(s.createCoupon))
	mux.HandleFunc("PUT /api/admin/coupons/{id}", s.admin(s.updateCoupon))
	mux.HandleFunc("DELETE /api/admin/coupons/{id}", s.admin(s.deleteCoupon))

	mux.HandleFunc("GET /api/admin/vendors", s.admin(s.listVendors))
	mux.HandleFunc("GET /api/admin/vendors/{id}", s.admin(s.getVendor))

	mux.HandleFunc("GET /api/admin/settings", s.admin(s.getSettings))
	mux.HandleFunc("PUT /api/admin/settings", s.admin(s.putSettings))

	mux.HandleFunc("GET /api/admin/dashboard", s.admin(s.dashboard))
	mux.HandleFunc("GET /api/admin/navigation", s.admin(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{{"label": "Rings", "href": "/category/rings"}}})
	}))
	mux.HandleFunc("GET /api/admin/", s.admin(s.genericResource))
}

func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.adminCalls.Add(1)
		if status, msg := s.authorize(r); status != http.StatusOK {
			writeDetail(w, status, msg)
			return
		}
		next(w, r)
	}
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	s.data.mu.Lock()
	out := make([]map[string]any, 0, len(s.data.orders))
	for _, o := range s.data.orders {
		if status == "" || o["status"] == status {
			out = append(out, o)
		}
	}
	s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) findOrder(id string) map[string]any {
	for _, o := range s.data.orders {
		if o["id"] == id {
			return o
		}
	}
	return nil
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	o := s.findOrder(r.PathValue("id"))
	if o == nil {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}
	customer, _ := o["customer"].(map[string]any)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":            o["id"],
		"orderNumber":   o["order_number"],
		"customerName":  customer["name"],
		"customerEmail": customer["email"],
		"items":         o["items"],
		"total":         o["total"],
		"status":        o["status"],
		"paymentStatus": o["paymentStatus"],
		"createdAt":     o["createdAt"],
		"channel":       o["channel"],
	})
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	o := s.findOrder(r.PathValue("id"))
	if o == nil {
		writeDetail(w, http.StatusNotFound, "Order not found")
		return
	}
	if st, ok := body["status"].(string); ok {
		o["status"] = st
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": o["status"]})
}

func (s *Server) listCoupons(w http.ResponseWriter, _ *http.Request) {
	s.data.mu.Lock()
	ids := make([]string, 0, len(s.data.coupons))
	for id := range s.data.coupons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.data.coupons[id])
	}
	s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func decodeCoupon(r *http.Request) (map[string]any, bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, false
	}
	code, _ := body["code"].(string)
	if code == "" {
		return nil, false
	}
	body["code"] = strings.ToUpper(code)
	return body, true
}

func (s *Server) createCoupon(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeCoupon(r)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body", "code"}, "msg": "code is required"}},
		})
		return
	}
	body["id"] = uuid.NewString()
	body["usageCount"] = 0
	s.data.mu.Lock()
	s.data.coupons[body["id"].(string)] = body
	s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) updateCoupon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, ok := decodeCoupon(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid coupon")
		return
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	existing, found := s.data.coupons[id]
	if !found {
		writeDetail(w, http.StatusNotFound, "Coupon not found")
		return
	}
	body["id"] = id
	body["usageCount"] = existing["usageCount"]
	s.data.coupons[id] = body
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	if _, found := s.data.coupons[id]; !found {
		writeDetail(w, http.StatusNotFound, "Coupon not found")
		return
	}
	delete(s.data.coupons, id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) listVendors(w http.ResponseWriter, _ *http.Request) {
	s.data.mu.Lock()
	out := append([]map[string]any(nil), s.data.vendors...)
	s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	for _, v := range s.data.vendors {
		if v["id"] == id {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Vendor not found")
}

func (s *Server) getSettings(w http.ResponseWriter, _ *http.Request) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, s.data.settings)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid settings")
		return
	}
	s.data.mu.Lock()
	for k, v := range body {
		s.data.settings[k] = v
	}
	s.data.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	var revenue float64
	for _, o := range s.data.orders {
		if v, ok := o["total"].(float64); ok {
			revenue += v
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalOrders":  len(s.data.orders),
		"totalRevenue": revenue,
	})
}

func (s *Server) genericResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/admin/")
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	if records, ok := s.data.resources[path]; ok {
		writeJSON(w, http.StatusOK, records)
		return
	}
	// {collection}/{id}
	if i := strings.LastIndex(path, "/"); i > 0 {
		if records, ok := s.data.resources[path[:i]]; ok {
			for _, rec := range records {
				if rec["id"] == path[i+1:] {
					writeJSON(w, http.StatusOK, rec)
					return
				}
			}
		}
	}
	writeDetail(w, http.StatusNotFound, "Not Found")
}

// SeedResource replaces the records served for an admin collection path such as
// "products" or "inventory/ledger".
func (s *Server) SeedResource(path string, records []map[string]any) {
	s.data.mu.Lock()
	s.data.resources[path] = records
	s.data.mu.Unlock()
}

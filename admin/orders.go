package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Order status values the admin screens filter and set.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is the list and detail view of an order. The list endpoint nests the customer
// and uses snake_case for the number while the detail endpoint flattens both; Order
// accepts either shape.
type Order struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	Items         []OrderItem `json:"items"`
	Total         float64     `json:"total"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"paymentStatus"`
	CreatedAt     string      `json:"createdAt"`
	Channel       string      `json:"channel"`
}

func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var wire struct {
		plain
		SnakeNumber string `json:"order_number"`
		Customer    *struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"customer"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*o = Order(wire.plain)
	if o.OrderNumber == "" {
		o.OrderNumber = wire.SnakeNumber
	}
	if wire.Customer != nil {
		if o.CustomerName == "" {
			o.CustomerName = wire.Customer.Name
		}
		if o.CustomerEmail == "" {
			o.CustomerEmail = wire.Customer.Email
		}
	}
	return nil
}

// ListOrders returns orders, filtered by status unless status is empty.
func (c *Client) ListOrders(ctx context.Context, status string) ([]Order, error) {
	var query url.Values
	if status = strings.TrimSpace(status); status != "" {
		query = url.Values{"status": {status}}
	}
	var out []Order
	if err := c.do(ctx, http.MethodGet, "orders", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, id string) (Order, error) {
	if id == "" {
		return Order{}, errors.New("admin: empty order id")
	}
	var out Order
	err := c.do(ctx, http.MethodGet, "orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// UpdateOrderStatus moves an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if id == "" || status == "" {
		return errors.New("admin: order id and status are required")
	}
	body := map[string]string{"status": status}
	return c.do(ctx, http.MethodPut, "orders/"+url.PathEscape(id)+"/status", nil, body, nil)
}

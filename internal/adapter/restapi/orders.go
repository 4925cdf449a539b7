package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.OrdersBackend = Client{}

const (
	ordersPath     = "/api/orders"
	orderItemsPath = "/api/orders/items"
)

// flexCustomer is a customer name or a populated user object.
type flexCustomer struct {
	Name  string
	Email string
}

func (c *flexCustomer) UnmarshalJSON(data []byte) error {
	*c = flexCustomer{}
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '{' {
		var obj struct {
			Name  flexName   `json:"name"`
			Email flexString `json:"email"`
		}
		_ = json.Unmarshal(data, &obj)
		c.Name, c.Email = string(obj.Name), string(obj.Email)
		return nil
	}
	var n flexName
	_ = n.UnmarshalJSON(data)
	c.Name = string(n)
	return nil
}

type orderItem struct {
	ids
	ProductID flexString `json:"productId"`
	Product   flexRef    `json:"product"`
	Name      flexString `json:"name"`
	Quantity  flexNumber `json:"quantity"`
	Price     flexNumber `json:"price"`
	Status    flexString `json:"status"`
}

func (w orderItem) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ID:        w.id(),
		ProductID: firstNonEmpty(string(w.ProductID), w.Product.ID),
		Name:      firstNonEmpty(string(w.Name), w.Product.Name),
		Quantity:  w.Quantity.count(),
		UnitPrice: max(w.Price.float(), 0),
		Status:    orderStatus(string(w.Status)),
	}
}

type order struct {
	ids
	Customer     flexCustomer `json:"customer"`
	User         flexCustomer `json:"user"`
	CustomerName flexString   `json:"customerName"`
	Email        flexString   `json:"email"`
	Items        []orderItem  `json:"items"`
	Total        flexNumber   `json:"total"`
	TotalAmount  flexNumber   `json:"totalAmount"`
	Status       flexString   `json:"status"`
	CreatedAt    flexTime     `json:"createdAt"`
}

func (w order) toDomain() domain.Order {
	o := domain.Order{
		ID: w.id(),
		Customer: firstNonEmpty(
			string(w.CustomerName), w.Customer.Name, w.User.Name,
		),
		Email: firstNonEmpty(
			string(w.Email), w.Customer.Email, w.User.Email,
		),
		Items:     make([]domain.OrderItem, 0, len(w.Items)),
		Status:    orderStatus(string(w.Status)),
		CreatedAt: w.CreatedAt.value(),
	}

	o.Total = w.Total.float()
	if w.Total.v == nil {
		o.Total = w.TotalAmount.float()
	}
	for _, item := range w.Items {
		o.Items = append(o.Items, item.toDomain())
	}
	return o
}

func orderStatus(s string) domain.OrderStatus {
	status := domain.OrderStatus(firstNonEmpty(s))
	if !status.Valid() {
		return domain.OrderPending
	}
	return status
}

type statusPayload struct {
	Status string `json:"status"`
}

func (c Client) ListOrders(
	ctx context.Context, page, limit int,
) (domain.Page[domain.Order], error) {
	const op = "Client.ListOrders"

	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	data, err := c.get(ctx, ordersPath, q)
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("%s: %w", op, err)
	}

	ws, info, err := decodeList[order](data, "orders")
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]domain.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return toPage(out, info, page, limit), nil
}

func (c Client) UpdateOrderStatus(
	ctx context.Context, id string, status domain.OrderStatus,
) (domain.Order, error) {
	const op = "Client.UpdateOrderStatus"

	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidStatus)
	}

	path := ordersPath + "/" + url.PathEscape(id)
	data, err := c.send(ctx, http.MethodPut, path, statusPayload{string(status)})
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	w, err := decodeOne[order](data, "order")
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

func (c Client) UpdateOrderItemStatus(
	ctx context.Context, id string, status domain.OrderStatus,
) (domain.OrderItem, error) {
	const op = "Client.UpdateOrderItemStatus"

	if !status.Valid() {
		return domain.OrderItem{}, fmt.Errorf("%s: %w", op, domain.ErrInvalidStatus)
	}

	path := orderItemsPath + "/" + url.PathEscape(id)
	data, err := c.send(ctx, http.MethodPut, path, statusPayload{string(status)})
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	w, err := decodeOne[orderItem](data, "item")
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.ProductsBackend = Client{}
	_ port.CatalogSource   = Client{}
)

const productsPath = "/api/products"

func productPath(id string) string {
	return productsPath + "/" + url.PathEscape(id)
}

// ListProducts returns the whole catalog in backend order.
func (c Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.ListProducts"

	data, err := c.get(ctx, productsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ws, _, err := decodeList[Product](data, "products")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return normalizeProducts(ws), nil
}

func (c Client) ListProductsPage(
	ctx context.Context, params port.ProductListParams,
) (domain.Page[domain.Product], error) {
	const op = "Client.ListProductsPage"

	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.IsHot != nil {
		q.Set("isHot", strconv.FormatBool(*params.IsHot))
	}
	if params.IsNew != nil {
		q.Set("isNew", strconv.FormatBool(*params.IsNew))
	}

	data, err := c.get(ctx, productsPath, q)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("%s: %w", op, err)
	}

	ws, info, err := decodeList[Product](data, "products")
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("%s: %w", op, err)
	}
	return toPage(normalizeProducts(ws), info, params.Page, params.Limit), nil
}

func (c Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	const op = "Client.GetProduct"

	data, err := c.get(ctx, productPath(id), nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return decodeProduct(op, data)
}

func (c Client) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "Client.CreateProduct"

	data, err := c.send(ctx, http.MethodPost, productsPath, toProductPayload(p))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return decodeProduct(op, data)
}

func (c Client) UpdateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "Client.UpdateProduct"

	data, err := c.send(ctx, http.MethodPut, productPath(p.ID), toProductPayload(p))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return decodeProduct(op, data)
}

func (c Client) DeleteProduct(ctx context.Context, id string) error {
	const op = "Client.DeleteProduct"

	if _, err := c.send(ctx, http.MethodDelete, productPath(id), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func decodeProduct(op string, data []byte) (domain.Product, error) {
	w, err := decodeOne[Product](data, "product")
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return NormalizeProduct(w), nil
}

package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.CategoriesBackend = Client{}
	_ port.BrandsBackend     = Client{}
)

const (
	categoriesPath = "/api/categories"
	brandsPath     = "/api/brands"
)

type category struct {
	ids
	Name flexString `json:"name"`
	Slug flexString `json:"slug"`
}

func (w category) toDomain() domain.Category {
	c := domain.Category{
		ID:   w.id(),
		Name: firstNonEmpty(string(w.Name)),
		Slug: firstNonEmpty(string(w.Slug)),
	}
	if c.Slug == "" {
		c.Slug = catalog.Slugify(c.Name)
	}
	return c
}

type categoryPayload struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type brand struct {
	ids
	Name flexString `json:"name"`
}

func (w brand) toDomain() domain.Brand {
	return domain.Brand{ID: w.id(), Name: firstNonEmpty(string(w.Name))}
}

type brandPayload struct {
	Name string `json:"name"`
}

func (c Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Client.ListCategories"

	data, err := c.get(ctx, categoriesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ws, _, err := decodeList[category](data, "categories")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]domain.Category, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (c Client) CreateCategory(
	ctx context.Context, v domain.Category,
) (domain.Category, error) {
	const op = "Client.CreateCategory"
	return c.saveCategory(ctx, op, http.MethodPost, categoriesPath, v)
}

func (c Client) UpdateCategory(
	ctx context.Context, v domain.Category,
) (domain.Category, error) {
	const op = "Client.UpdateCategory"
	path := categoriesPath + "/" + url.PathEscape(v.ID)
	return c.saveCategory(ctx, op, http.MethodPut, path, v)
}

func (c Client) saveCategory(
	ctx context.Context, op, method, path string, v domain.Category,
) (domain.Category, error) {
	data, err := c.send(ctx, method, path, categoryPayload{Name: v.Name, Slug: v.Slug})
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	w, err := decodeOne[category](data, "category")
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

func (c Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "Client.DeleteCategory"

	path := categoriesPath + "/" + url.PathEscape(id)
	if _, err := c.send(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c Client) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	const op = "Client.ListBrands"

	data, err := c.get(ctx, brandsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ws, _, err := decodeList[brand](data, "brands")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]domain.Brand, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (c Client) CreateBrand(ctx context.Context, v domain.Brand) (domain.Brand, error) {
	const op = "Client.CreateBrand"
	return c.saveBrand(ctx, op, http.MethodPost, brandsPath, v)
}

func (c Client) UpdateBrand(ctx context.Context, v domain.Brand) (domain.Brand, error) {
	const op = "Client.UpdateBrand"
	path := brandsPath + "/" + url.PathEscape(v.ID)
	return c.saveBrand(ctx, op, http.MethodPut, path, v)
}

func (c Client) saveBrand(
	ctx context.Context, op, method, path string, v domain.Brand,
) (domain.Brand, error) {
	data, err := c.send(ctx, method, path, brandPayload{Name: v.Name})
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	w, err := decodeOne[brand](data, "brand")
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

func (c Client) DeleteBrand(ctx context.Context, id string) error {
	const op = "Client.DeleteBrand"

	path := brandsPath + "/" + url.PathEscape(id)
	if _, err := c.send(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

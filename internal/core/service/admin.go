package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/form"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Admin = Admin{}

// Backends groups the REST backend resources the admin works with.
type Backends struct {
	Products   port.ProductsBackend
	Categories port.CategoriesBackend
	Brands     port.BrandsBackend
	Blog       port.BlogBackend
	Orders     port.OrdersBackend
}

// Admin orchestrates back-office actions.
//
// Every action validates its form before any request, issues a single
// backend request and touches the catalog cache only after the backend
// acknowledged the change. Product changes are then announced as catalog
// events; a nil events producer disables them.
type Admin struct {
	backends Backends
	uploader port.ImageUploader
	events   port.CatalogEventsProducer
	cache    *CatalogCache
	now      func() time.Time
}

func NewAdmin(
	backends Backends,
	uploader port.ImageUploader,
	events port.CatalogEventsProducer,
	cache *CatalogCache,
) Admin {
	return Admin{backends, uploader, events, cache, time.Now}
}

func (a Admin) ListProducts(
	ctx context.Context, params port.ProductListParams,
) (domain.Page[domain.Product], error) {
	const op = "Admin.ListProducts"

	page, err := a.backends.Products.ListProductsPage(ctx, params)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

// ProductForm loads a product from the backend into an edit form.
func (a Admin) ProductForm(ctx context.Context, id string) (form.ProductForm, error) {
	const op = "Admin.ProductForm"

	p, err := a.backends.Products.GetProduct(ctx, id)
	if err != nil {
		return form.ProductForm{}, fmt.Errorf("%s: %w", op, err)
	}
	return form.ProductToForm(p), nil
}

func (a Admin) CreateProduct(
	ctx context.Context, f form.ProductForm,
) (domain.Product, error) {
	const op = "Admin.CreateProduct"

	p, err := f.ToDomain("")
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := a.backends.Products.CreateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	a.productSaved(ctx, created)
	return created, nil
}

func (a Admin) UpdateProduct(
	ctx context.Context, id string, f form.ProductForm,
) (domain.Product, error) {
	const op = "Admin.UpdateProduct"

	p, err := f.ToDomain(id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := a.backends.Products.UpdateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	a.productSaved(ctx, updated)
	return updated, nil
}

func (a Admin) DeleteProduct(ctx context.Context, id string) error {
	const op = "Admin.DeleteProduct"

	if err := a.backends.Products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.cache.Remove(id)
	a.publish(ctx, domain.CatalogEvent{Op: domain.CatalogDelete, ProductID: id})
	return nil
}

func (a Admin) productSaved(ctx context.Context, p domain.Product) {
	a.cache.Upsert(p)
	a.publish(ctx, domain.CatalogEvent{
		Op: domain.CatalogUpsert, ProductID: p.ID, Product: &p,
	})
}

// publish is best-effort: the backend already holds the change.
func (a Admin) publish(ctx context.Context, e domain.CatalogEvent) {
	const op = "Admin.publish"
	log := slog.With("op", op)

	if a.events == nil {
		return
	}
	err := a.events.ProduceEvents(ctx, []domain.CatalogEvent{e})
	if err != nil {
		log.Error("failed to publish catalog event",
			"productID", e.ProductID, "eventOp", e.Op, "err", err,
		)
	}
}

func (a Admin) CreateCategory(
	ctx context.Context, f form.CategoryForm,
) (domain.Category, error) {
	const op = "Admin.CreateCategory"

	c, err := f.ToDomain("")
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := a.backends.Categories.CreateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	a.cache.UpsertCategory(created)
	return created, nil
}

func (a Admin) UpdateCategory(
	ctx context.Context, id string, f form.CategoryForm,
) (domain.Category, error) {
	const op = "Admin.UpdateCategory"

	c, err := f.ToDomain(id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := a.backends.Categories.UpdateCategory(ctx, c)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}

	a.cache.UpsertCategory(updated)
	return updated, nil
}

func (a Admin) DeleteCategory(ctx context.Context, id string) error {
	const op = "Admin.DeleteCategory"

	if err := a.backends.Categories.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	a.cache.RemoveCategory(id)
	return nil
}

func (a Admin) CreateBrand(
	ctx context.Context, f form.BrandForm,
) (domain.Brand, error) {
	const op = "Admin.CreateBrand"

	b, err := f.ToDomain("")
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := a.backends.Brands.CreateBrand(ctx, b)
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (a Admin) UpdateBrand(
	ctx context.Context, id string, f form.BrandForm,
) (domain.Brand, error) {
	const op = "Admin.UpdateBrand"

	b, err := f.ToDomain(id)
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := a.backends.Brands.UpdateBrand(ctx, b)
	if err != nil {
		return domain.Brand{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (a Admin) DeleteBrand(ctx context.Context, id string) error {
	const op = "Admin.DeleteBrand"

	if err := a.backends.Brands.DeleteBrand(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPosts lists posts of any status; an empty status lists them all.
func (a Admin) ListPosts(
	ctx context.Context, status domain.PostStatus,
) ([]domain.BlogPost, error) {
	const op = "Admin.ListPosts"

	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrInvalidStatus)
	}

	posts, err := a.backends.Blog.ListPosts(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

func (a Admin) CreatePost(
	ctx context.Context, f form.BlogPostForm,
) (domain.BlogPost, error) {
	const op = "Admin.CreatePost"

	p, err := f.ToDomain("", a.now())
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := a.backends.Blog.CreatePost(ctx, p)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (a Admin) UpdatePost(
	ctx context.Context, id string, f form.BlogPostForm,
) (domain.BlogPost, error) {
	const op = "Admin.UpdatePost"

	p, err := f.ToDomain(id, a.now())
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := a.backends.Blog.UpdatePost(ctx, p)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

func (a Admin) DeletePost(ctx context.Context, id string) error {
	const op = "Admin.DeletePost"

	if err := a.backends.Blog.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a Admin) ListOrders(
	ctx context.Context, page, limit int,
) (domain.Page[domain.Order], error) {
	const op = "Admin.ListOrders"

	orders, err := a.backends.Orders.ListOrders(ctx, max(page, 1), limit)
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (a Admin) UpdateOrderStatus(
	ctx context.Context, id string, f form.OrderStatusForm,
) (domain.Order, error) {
	const op = "Admin.UpdateOrderStatus"

	status, err := f.ToDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	order, err := a.backends.Orders.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (a Admin) UpdateOrderItemStatus(
	ctx context.Context, id string, f form.OrderStatusForm,
) (domain.OrderItem, error) {
	const op = "Admin.UpdateOrderItemStatus"

	status, err := f.ToDomain()
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := a.backends.Orders.UpdateOrderItemStatus(ctx, id, status)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

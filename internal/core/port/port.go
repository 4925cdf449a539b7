package port

import (
	"context"
	"io"
	"sync"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/form"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A BackgroundComponent signals readiness through the wait group and calls
// the cancel func when it stops on its own.
type BackgroundComponent interface {
	runnerContextWg
	closer
}

// A ProductQuery is a storefront listing request.
//
// Limit <= 0 returns every matching product on a single page.
type ProductQuery struct {
	catalog.Query
	Page  int
	Limit int
}

// A ProductListing is one page of derived products plus the filter panel.
type ProductListing struct {
	Products   []domain.Product
	Count      int
	Total      int
	Page       int
	TotalPages int
	Facets     catalog.Facets
}

type Storefront interface {
	ListProducts(context.Context, ProductQuery) (ProductListing, error)
	GetProduct(ctx context.Context, id, visitor string) (domain.Product, error)
	RecentlyViewed(ctx context.Context, visitor string) ([]domain.Product, error)
	ListCategories(context.Context) ([]domain.Category, error)
	ListBrands(context.Context) ([]domain.Brand, error)
	ListPosts(context.Context, domain.PostStatus) ([]domain.BlogPost, error)
}

type Admin interface {
	ListProducts(context.Context, ProductListParams) (domain.Page[domain.Product], error)
	ProductForm(ctx context.Context, id string) (form.ProductForm, error)
	CreateProduct(context.Context, form.ProductForm) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, f form.ProductForm) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadImages(ctx context.Context, id string, files []ImageFile) (domain.Product, error)
	RemoveImage(ctx context.Context, id, publicID string) (domain.Product, error)

	CreateCategory(context.Context, form.CategoryForm) (domain.Category, error)
	UpdateCategory(ctx context.Context, id string, f form.CategoryForm) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateBrand(context.Context, form.BrandForm) (domain.Brand, error)
	UpdateBrand(ctx context.Context, id string, f form.BrandForm) (domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error

	ListPosts(context.Context, domain.PostStatus) ([]domain.BlogPost, error)
	CreatePost(context.Context, form.BlogPostForm) (domain.BlogPost, error)
	UpdatePost(ctx context.Context, id string, f form.BlogPostForm) (domain.BlogPost, error)
	DeletePost(ctx context.Context, id string) error

	ListOrders(ctx context.Context, page, limit int) (domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, id string, f form.OrderStatusForm) (domain.Order, error)
	UpdateOrderItemStatus(
		ctx context.Context, id string, f form.OrderStatusForm,
	) (domain.OrderItem, error)
}

type ProductListParams struct {
	Page   int
	Limit  int
	Search string
	IsHot  *bool
	IsNew  *bool
}

// An ImageFile is one file of a multipart image upload.
type ImageFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// ProgressFunc receives the uploaded and total byte counts.
type ProgressFunc func(sent, total int64)

type CatalogSource interface {
	ListProducts(context.Context) ([]domain.Product, error)
	ListCategories(context.Context) ([]domain.Category, error)
}

type ProductsBackend interface {
	ListProductsPage(context.Context, ProductListParams) (domain.Page[domain.Product], error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(context.Context, domain.Product) (domain.Product, error)
	UpdateProduct(context.Context, domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type CategoriesBackend interface {
	ListCategories(context.Context) ([]domain.Category, error)
	CreateCategory(context.Context, domain.Category) (domain.Category, error)
	UpdateCategory(context.Context, domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type BrandsBackend interface {
	ListBrands(context.Context) ([]domain.Brand, error)
	CreateBrand(context.Context, domain.Brand) (domain.Brand, error)
	UpdateBrand(context.Context, domain.Brand) (domain.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
}

type BlogBackend interface {
	ListPosts(context.Context, domain.PostStatus) ([]domain.BlogPost, error)
	CreatePost(context.Context, domain.BlogPost) (domain.BlogPost, error)
	UpdatePost(context.Context, domain.BlogPost) (domain.BlogPost, error)
	DeletePost(ctx context.Context, id string) error
}

type OrdersBackend interface {
	ListOrders(ctx context.Context, page, limit int) (domain.Page[domain.Order], error)
	UpdateOrderStatus(
		ctx context.Context, id string, status domain.OrderStatus,
	) (domain.Order, error)
	UpdateOrderItemStatus(
		ctx context.Context, id string, status domain.OrderStatus,
	) (domain.OrderItem, error)
}

type ImageUploader interface {
	Upload(context.Context, ImageFile, ProgressFunc) (domain.ProductImage, error)
}

// A RecentlyViewedStore keeps the recently viewed product ids per visitor,
// most recent first.
type RecentlyViewedStore interface {
	Get(ctx context.Context, visitor string) ([]string, error)
	Set(ctx context.Context, visitor string, ids []string) error
}

type CatalogEventsProducer interface {
	ProduceEvents(context.Context, []domain.CatalogEvent) error
}

type CatalogEventsApplier interface {
	ApplyCatalogEvents(context.Context, []domain.CatalogEvent) error
}

type ProductsStorage interface {
	ListProducts(context.Context) ([]domain.Product, error)
	StoreProducts(context.Context, []domain.Product) error
	DeleteProducts(ctx context.Context, ids []string) error
}

type CategoryLister interface {
	ListCategories(context.Context) ([]domain.Category, error)
}

type BrandLister interface {
	ListBrands(context.Context) ([]domain.Brand, error)
}

type PostLister interface {
	ListPosts(context.Context, domain.PostStatus) ([]domain.BlogPost, error)
}

type ProductGetter interface {
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

package service_test

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/mock"
)

type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogSource) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// funcSource lets a test control when a load finishes.
type funcSource struct {
	products func(context.Context) ([]domain.Product, error)
}

func (s funcSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products(ctx)
}

func (funcSource) ListCategories(context.Context) ([]domain.Category, error) {
	return nil, nil
}

type MockProductsBackend struct {
	mock.Mock
}

func (m *MockProductsBackend) ListProductsPage(
	ctx context.Context, params port.ProductListParams,
) (domain.Page[domain.Product], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.Page[domain.Product]), args.Error(1)
}

func (m *MockProductsBackend) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsBackend) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsBackend) UpdateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsBackend) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockCategoriesBackend struct {
	mock.Mock
}

func (m *MockCategoriesBackend) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoriesBackend) CreateCategory(
	ctx context.Context, c domain.Category,
) (domain.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoriesBackend) UpdateCategory(
	ctx context.Context, c domain.Category,
) (domain.Category, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoriesBackend) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockOrdersBackend struct {
	mock.Mock
}

func (m *MockOrdersBackend) ListOrders(
	ctx context.Context, page, limit int,
) (domain.Page[domain.Order], error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(domain.Page[domain.Order]), args.Error(1)
}

func (m *MockOrdersBackend) UpdateOrderStatus(
	ctx context.Context, id string, s domain.OrderStatus,
) (domain.Order, error) {
	args := m.Called(ctx, id, s)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrdersBackend) UpdateOrderItemStatus(
	ctx context.Context, id string, s domain.OrderStatus,
) (domain.OrderItem, error) {
	args := m.Called(ctx, id, s)
	return args.Get(0).(domain.OrderItem), args.Error(1)
}

type MockBlogBackend struct {
	mock.Mock
}

func (m *MockBlogBackend) ListPosts(
	ctx context.Context, s domain.PostStatus,
) ([]domain.BlogPost, error) {
	args := m.Called(ctx, s)
	return args.Get(0).([]domain.BlogPost), args.Error(1)
}

func (m *MockBlogBackend) CreatePost(
	ctx context.Context, p domain.BlogPost,
) (domain.BlogPost, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.BlogPost), args.Error(1)
}

func (m *MockBlogBackend) UpdatePost(
	ctx context.Context, p domain.BlogPost,
) (domain.BlogPost, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.BlogPost), args.Error(1)
}

func (m *MockBlogBackend) DeletePost(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Upload(
	ctx context.Context, f port.ImageFile, progress port.ProgressFunc,
) (domain.ProductImage, error) {
	args := m.Called(ctx, f.Name)
	return args.Get(0).(domain.ProductImage), args.Error(1)
}

type MockEventsProducer struct {
	mock.Mock
}

func (m *MockEventsProducer) ProduceEvents(
	ctx context.Context, events []domain.CatalogEvent,
) error {
	return m.Called(ctx, events).Error(0)
}

type MockProductsStorage struct {
	mock.Mock
}

func (m *MockProductsStorage) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductsStorage) StoreProducts(ctx context.Context, ps []domain.Product) error {
	return m.Called(ctx, ps).Error(0)
}

func (m *MockProductsStorage) DeleteProducts(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

type MockRecentlyViewed struct {
	mock.Mock
}

func (m *MockRecentlyViewed) Get(ctx context.Context, visitor string) ([]string, error) {
	args := m.Called(ctx, visitor)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecentlyViewed) Set(ctx context.Context, visitor string, ids []string) error {
	return m.Called(ctx, visitor, ids).Error(0)
}

type stubBrands []domain.Brand

func (s stubBrands) ListBrands(context.Context) ([]domain.Brand, error) {
	return s, nil
}

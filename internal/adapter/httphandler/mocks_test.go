package httphandler

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/form"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/mock"
)

type MockStorefront struct {
	mock.Mock
}

func (m *MockStorefront) ListProducts(
	ctx context.Context, q port.ProductQuery,
) (port.ProductListing, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(port.ProductListing), args.Error(1)
}

func (m *MockStorefront) GetProduct(
	ctx context.Context, id, visitor string,
) (domain.Product, error) {
	args := m.Called(ctx, id, visitor)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockStorefront) RecentlyViewed(
	ctx context.Context, visitor string,
) ([]domain.Product, error) {
	args := m.Called(ctx, visitor)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockStorefront) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockStorefront) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Brand), args.Error(1)
}

func (m *MockStorefront) ListPosts(
	ctx context.Context, status domain.PostStatus,
) ([]domain.BlogPost, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.BlogPost), args.Error(1)
}

// MockAdmin mocks the admin operations under test, the rest panic.
type MockAdmin struct {
	port.Admin
	mock.Mock
}

func (m *MockAdmin) ListProducts(
	ctx context.Context, params port.ProductListParams,
) (domain.Page[domain.Product], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.Page[domain.Product]), args.Error(1)
}

func (m *MockAdmin) ProductForm(ctx context.Context, id string) (form.ProductForm, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(form.ProductForm), args.Error(1)
}

func (m *MockAdmin) CreateProduct(
	ctx context.Context, f form.ProductForm,
) (domain.Product, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockAdmin) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAdmin) UploadImages(
	ctx context.Context, id string, files []port.ImageFile,
) (domain.Product, error) {
	args := m.Called(ctx, id, files)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockAdmin) RemoveImage(
	ctx context.Context, id, publicID string,
) (domain.Product, error) {
	args := m.Called(ctx, id, publicID)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockAdmin) ListOrders(
	ctx context.Context, page, limit int,
) (domain.Page[domain.Order], error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(domain.Page[domain.Order]), args.Error(1)
}

func (m *MockAdmin) UpdateOrderItemStatus(
	ctx context.Context, id string, f form.OrderStatusForm,
) (domain.OrderItem, error) {
	args := m.Called(ctx, id, f)
	return args.Get(0).(domain.OrderItem), args.Error(1)
}

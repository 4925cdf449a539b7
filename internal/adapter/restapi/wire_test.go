package restapi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalize(t *testing.T, raw string) domain.Product {
	t.Helper()
	var w Product
	require.NoError(t, json.Unmarshal([]byte(raw), &w))
	return NormalizeProduct(w)
}

func TestNormalizeProduct(t *testing.T) {
	t.Run("LooseShape", func(t *testing.T) {
		p := normalize(t, `{
			"_id": "64f1",
			"name": " Gamo Delta ",
			"price": "$1,234.50",
			"numericPrice": "1234.5",
			"originalPrice": 1500,
			"images": ["https://img/1.jpg", {"secure_url": "https://img/2.jpg", "public_id": "p2"}],
			"category": {"_id": "c1", "name": "Rifles"},
			"brand": "Gamo",
			"rating": "4.5",
			"reviewCount": "12",
			"inStock": "true",
			"isNew": 1,
			"features": "Scope\nCase",
			"specifications": [{"key": "Caliber", "value": ".177"}]
		}`)

		assert.Equal(t, "64f1", p.ID)
		assert.Equal(t, "Gamo Delta", p.Name)
		assert.Equal(t, "$1,234.50", p.PriceLabel)
		assert.InDelta(t, 1234.5, p.NumericPrice, 1e-9)
		require.NotNil(t, p.OriginalPrice)
		assert.InDelta(t, 1500.0, *p.OriginalPrice, 1e-9)
		assert.Nil(t, p.OfferPrice)
		assert.Equal(t, []domain.ProductImage{
			{URL: "https://img/1.jpg"},
			{URL: "https://img/2.jpg", PublicID: "p2"},
		}, p.Images)
		assert.Equal(t, "Rifles", p.Category)
		assert.Equal(t, "Gamo", p.Brand)
		assert.InDelta(t, 4.5, p.Rating, 1e-9)
		assert.Equal(t, 12, p.ReviewCount)
		assert.True(t, p.InStock)
		assert.True(t, p.IsNew)
		assert.False(t, p.IsHot)
		assert.Equal(t, []string{"Scope", "Case"}, p.Features)
		assert.Equal(t, map[string]string{"Caliber": ".177"}, p.Specifications)
	})

	t.Run("PriceFromLabel", func(t *testing.T) {
		p := normalize(t, `{"id": "a", "price": "₦2,500"}`)
		assert.InDelta(t, 2500.0, p.NumericPrice, 1e-9)
	})

	t.Run("MalformedPriceIsZero", func(t *testing.T) {
		p := normalize(t, `{"id": "a", "price": "call us", "numericPrice": "n/a"}`)
		assert.Zero(t, p.NumericPrice)
		assert.Equal(t, "call us", p.PriceLabel)
	})

	t.Run("MissingLabelIsFormatted", func(t *testing.T) {
		p := normalize(t, `{"id": "a", "numericPrice": 1999}`)
		assert.Equal(t, "1,999.00", p.PriceLabel)
	})

	t.Run("RatingClamped", func(t *testing.T) {
		assert.InDelta(t, 5.0, normalize(t, `{"rating": 7}`).Rating, 1e-9)
		assert.Zero(t, normalize(t, `{"rating": -1}`).Rating)
	})

	t.Run("StockDerivesAvailability", func(t *testing.T) {
		assert.True(t, normalize(t, `{"stock": 3}`).InStock)
		assert.False(t, normalize(t, `{"stock": 0}`).InStock)
		assert.False(t, normalize(t, `{"stock": 3, "inStock": false}`).InStock)
	})

	t.Run("SingleImageField", func(t *testing.T) {
		p := normalize(t, `{"image": "https://img/only.jpg"}`)
		assert.Equal(t, []domain.ProductImage{{URL: "https://img/only.jpg"}}, p.Images)
	})

	t.Run("WrongTypesIgnored", func(t *testing.T) {
		p := normalize(t, `{"name": {"x": 1}, "images": {"x": 1}, "specifications": "oops", "inStock": null}`)
		assert.Empty(t, p.Name)
		assert.Empty(t, p.Images)
		assert.Empty(t, p.Specifications)
		assert.False(t, p.InStock)
	})
}

func TestDecodeList(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		items, _, err := decodeList[Product]([]byte(`[{"id": "a"}, {"id": "b"}]`), "products")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("Envelope", func(t *testing.T) {
		items, info, err := decodeList[Product](
			[]byte(`{"products": [{"id": "a"}], "page": 2, "totalPages": "4", "total": 31}`),
			"products",
		)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		page := toPage(normalizeProducts(items), info, 1, 10)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 4, page.TotalPages)
		assert.Equal(t, 31, page.Total)
	})

	t.Run("NestedPagination", func(t *testing.T) {
		items, info, err := decodeList[Product](
			[]byte(`{"data": [{"id": "a"}], "pagination": {"currentPage": 3, "pages": 5}}`),
			"products",
		)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		page := toPage(items, info, 1, 10)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 5, page.TotalPages)
	})

	t.Run("DerivedTotals", func(t *testing.T) {
		page := toPage([]int{1, 2, 3}, pageInfo{}, 0, 2)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("NotJSON", func(t *testing.T) {
		_, _, err := decodeList[Product]([]byte(`<html>`), "products")
		assert.Error(t, err)
	})
}

func TestFlexNumberCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{`12`, 12},
		{`"7"`, 7},
		{`-3`, 0},
		{`null`, 0},
		{`1e300`, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n flexNumber
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.Equal(t, tt.want, n.count())
		})
	}
}

func TestDecodeOne(t *testing.T) {
	wrapped, err := decodeOne[Product]([]byte(`{"product": {"id": "a"}, "message": "ok"}`), "product")
	require.NoError(t, err)
	assert.Equal(t, "a", wrapped.id())

	bare, err := decodeOne[Product]([]byte(`{"_id": "b", "product": "ignored"}`), "product")
	require.NoError(t, err)
	assert.Equal(t, "b", bare.id())
}

func TestOrderWire(t *testing.T) {
	var w order
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "o1",
		"user": {"name": "Ann", "email": "ann@example.com"},
		"items": [
			{"_id": "i1", "product": {"_id": "p1", "name": "Delta"}, "quantity": "2", "price": 10.5, "status": "shipped"},
			{"id": "i2", "productId": "p2", "name": "Pellets", "quantity": 1, "status": "unknown"}
		],
		"totalAmount": "31.5",
		"status": "delivered",
		"createdAt": "2024-05-01T10:00:00Z"
	}`), &w))

	o := w.toDomain()
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "Ann", o.Customer)
	assert.Equal(t, "ann@example.com", o.Email)
	assert.InDelta(t, 31.5, o.Total, 1e-9)
	assert.Equal(t, domain.OrderDelivered, o.Status)
	assert.Equal(t, 2024, o.CreatedAt.Year())
	require.Len(t, o.Items, 2)
	assert.Equal(t, domain.OrderItem{
		ID: "i1", ProductID: "p1", Name: "Delta", Quantity: 2, UnitPrice: 10.5,
		Status: domain.OrderShipped,
	}, o.Items[0])
	assert.Equal(t, "p2", o.Items[1].ProductID)
	assert.Equal(t, domain.OrderPending, o.Items[1].Status)
}

func TestPostWire(t *testing.T) {
	var w post
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "b1",
		"title": "Hello",
		"slug": "hello",
		"author": {"name": "Admin"},
		"tags": "news, guns",
		"status": "published",
		"publishedAt": "2024-05-01"
	}`), &w))

	p := w.toDomain()
	assert.Equal(t, "b1", p.ID)
	assert.Equal(t, "Admin", p.Author)
	assert.Equal(t, []string{"news", "guns"}, p.Tags)
	assert.Equal(t, domain.PostPublished, p.Status)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, 2024, p.PublishedAt.Year())
}

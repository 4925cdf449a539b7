package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/storefront/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeCatalogEventV1(t *testing.T) {
	subject := "catalog-events-value"

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogEventV1(t.Context())
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogEventV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("InvalidOpt", func(t *testing.T) {
		_, err := schema.NewSerdeCatalogEventV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.Error(t, err)
	})

	t.Run("RegistryFailure", func(t *testing.T) {
		errRegistry := errors.New("registry is down")
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.CatalogEventSchemaTextV1,
		).Return(0, errRegistry)

		_, err := schema.NewSerdeCatalogEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		assert.ErrorIs(t, err, errRegistry)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.CatalogEventSchemaTextV1,
		).Return(7, nil).Once()

		serde, err := schema.NewSerdeCatalogEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)
		schemaIdentifier.AssertExpectations(t)

		event1 := schema.CatalogEventV1{
			Op:        "upsert",
			ProductID: "a",
			Product: &schema.ProductV1{
				ProductID:      "a",
				Name:           "Alpha",
				NumericPrice:   100,
				Images:         []schema.ProductImageV1{},
				Features:       []string{},
				Specifications: map[string]string{},
			},
		}

		data, err := serde.Encode(event1)
		require.NoError(t, err)

		var event2 schema.CatalogEventV1
		require.NoError(t, serde.Decode(data, &event2))
		assert.Equal(t, event1.Op, event2.Op)
		assert.Equal(t, event1.ProductID, event2.ProductID)
		require.NotNil(t, event2.Product)
		assert.Equal(t, event1.Product.Name, event2.Product.Name)
		assert.InDelta(t, event1.Product.NumericPrice, event2.Product.NumericPrice, 1e-9)
	})
}

func TestSerdeRecentlyViewedV1(t *testing.T) {
	subject := "product-views-value"
	schemaIdentifier := new(MockSchemaIdentifier)
	schemaIdentifier.On(
		"DetermineID", t.Context(), subject, schema.RecentlyViewedSchemaTextV1,
	).Return(3, nil)

	serde, err := schema.NewSerdeRecentlyViewedV1(
		t.Context(),
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schemaIdentifier),
	)
	require.NoError(t, err)

	v1 := schema.RecentlyViewedV1{VisitorID: "v1", ProductIDs: []string{"b", "a"}}
	data, err := serde.Encode(v1)
	require.NoError(t, err)

	var v2 schema.RecentlyViewedV1
	require.NoError(t, serde.Decode(data, &v2))
	assert.Equal(t, v1, v2)
}

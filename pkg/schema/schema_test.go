package schema

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEventV1(t *testing.T) {
	var eventSchema avro.Schema
	require.NotPanics(t, func() {
		eventSchema = CatalogEventV1Avro()
	})

	t.Run("Upsert", func(t *testing.T) {
		original := 120.0
		vMarshal := CatalogEventV1{
			Op:        "upsert",
			ProductID: "a",
			Product: &ProductV1{
				ProductID:     "a",
				Name:          "Alpha",
				PriceLabel:    "$100.00",
				NumericPrice:  100,
				OriginalPrice: &original,
				Images: []ProductImageV1{
					{URL: "https://img/1.jpg", PublicID: "p1"},
				},
				Category:       "Rifles",
				Brand:          "Gamo",
				Rating:         4.5,
				ReviewCount:    12,
				InStock:        true,
				Features:       []string{"Scope"},
				Specifications: map[string]string{"Caliber": ".177"},
			},
		}

		data, err := avro.Marshal(eventSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal CatalogEventV1
		require.NoError(t, avro.Unmarshal(eventSchema, data, &vUnmarshal))
		assert.Equal(t, vMarshal, vUnmarshal)
	})

	t.Run("DeleteWithoutProduct", func(t *testing.T) {
		vMarshal := CatalogEventV1{Op: "delete", ProductID: "a"}

		data, err := avro.Marshal(eventSchema, vMarshal)
		require.NoError(t, err)

		var vUnmarshal CatalogEventV1
		require.NoError(t, avro.Unmarshal(eventSchema, data, &vUnmarshal))
		assert.Equal(t, vMarshal, vUnmarshal)
	})

	t.Run("UnknownOp", func(t *testing.T) {
		_, err := avro.Marshal(eventSchema, CatalogEventV1{Op: "rename"})
		assert.Error(t, err)
	})
}

func TestRecentlyViewedV1(t *testing.T) {
	var rvSchema avro.Schema
	require.NotPanics(t, func() {
		rvSchema = RecentlyViewedV1Avro()
	})

	vMarshal := RecentlyViewedV1{VisitorID: "v1", ProductIDs: []string{"c", "a"}}

	data, err := avro.Marshal(rvSchema, vMarshal)
	require.NoError(t, err)

	var vUnmarshal RecentlyViewedV1
	require.NoError(t, avro.Unmarshal(rvSchema, data, &vUnmarshal))
	assert.Equal(t, vMarshal, vUnmarshal)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "catalog-events-value", Subject("catalog-events"))
}

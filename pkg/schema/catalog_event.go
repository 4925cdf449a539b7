package schema

import "github.com/hamba/avro/v2"

const CatalogEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "catalog_event",
	"fields": [
		{"name": "op", "type": {
			"type": "enum",
			"name": "catalog_op",
			"symbols": ["upsert", "delete"]
		}},
		{"name": "product_id", "type": "string"},
		{"name": "product", "type": ["null", ` + productRecordV1 + `], "default": null}
	]
}`

// A CatalogEventV1 carries the full product for upserts and only the id
// for deletes.
type CatalogEventV1 struct {
	Op        string     `avro:"op"`
	ProductID string     `avro:"product_id"`
	Product   *ProductV1 `avro:"product"`
}

func CatalogEventV1Avro() avro.Schema {
	return avro.MustParse(CatalogEventSchemaTextV1)
}

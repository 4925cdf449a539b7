package schema

import "github.com/hamba/avro/v2"

const RecentlyViewedSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "recently_viewed",
	"fields": [
		{"name": "visitor_id", "type": "string"},
		{"name": "product_ids", "type": {"type": "array", "items": "string"}}
	]
}`

// A RecentlyViewedV1 is the product ids a visitor viewed, most recent first.
type RecentlyViewedV1 struct {
	VisitorID  string   `avro:"visitor_id"`
	ProductIDs []string `avro:"product_ids"`
}

func RecentlyViewedV1Avro() avro.Schema {
	return avro.MustParse(RecentlyViewedSchemaTextV1)
}

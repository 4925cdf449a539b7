package schema

const productRecordV1 = `{
	"type": "record",
	"name": "product",
	"fields": [
		{"name": "product_id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "price_label", "type": "string"},
		{"name": "numeric_price", "type": "double"},
		{"name": "original_price", "type": ["null", "double"], "default": null},
		{"name": "offer_price", "type": ["null", "double"], "default": null},
		{"name": "images", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "product_image",
				"fields": [
					{"name": "url", "type": "string"},
					{"name": "public_id", "type": "string"}
				]
			}
		}},
		{"name": "category", "type": "string"},
		{"name": "brand", "type": "string"},
		{"name": "rating", "type": "double"},
		{"name": "review_count", "type": "long"},
		{"name": "sold_count", "type": "long"},
		{"name": "in_stock", "type": "boolean"},
		{"name": "is_new", "type": "boolean"},
		{"name": "is_hot", "type": "boolean"},
		{"name": "short_description", "type": "string"},
		{"name": "features", "type": {"type": "array", "items": "string"}},
		{"name": "specifications", "type": {"type": "map", "values": "string"}}
	]
}`

type (
	ProductV1 struct {
		ProductID        string            `avro:"product_id"`
		Name             string            `avro:"name"`
		PriceLabel       string            `avro:"price_label"`
		NumericPrice     float64           `avro:"numeric_price"`
		OriginalPrice    *float64          `avro:"original_price"`
		OfferPrice       *float64          `avro:"offer_price"`
		Images           []ProductImageV1  `avro:"images"`
		Category         string            `avro:"category"`
		Brand            string            `avro:"brand"`
		Rating           float64           `avro:"rating"`
		ReviewCount      int64             `avro:"review_count"`
		SoldCount        int64             `avro:"sold_count"`
		InStock          bool              `avro:"in_stock"`
		IsNew            bool              `avro:"is_new"`
		IsHot            bool              `avro:"is_hot"`
		ShortDescription string            `avro:"short_description"`
		Features         []string          `avro:"features"`
		Specifications   map[string]string `avro:"specifications"`
	}

	ProductImageV1 struct {
		URL      string `avro:"url"`
		PublicID string `avro:"public_id"`
	}
)

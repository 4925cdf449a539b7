package domain

type CatalogOp string

const (
	CatalogUpsert CatalogOp = "upsert"
	CatalogDelete CatalogOp = "delete"
)

// A CatalogEvent announces a product change acknowledged by the backend.
//
// Product is nil for [CatalogDelete].
type CatalogEvent struct {
	Op        CatalogOp
	ProductID string
	Product   *Product
}

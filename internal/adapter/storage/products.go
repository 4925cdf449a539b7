package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductsStorage = ProductsRepository{}

// ProductsRepository is the catalog snapshot. Products keep the position
// of their first insert, so listing returns the backend order.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

const upsertProductQuery = `
	INSERT INTO products (
		product_id, name, price_label, numeric_price, original_price,
		offer_price, images, category, brand, rating, review_count,
		sold_count, in_stock, is_new, is_hot, short_description,
		features, specifications
	)
	VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14, $15, $16, $17, $18
	)
	ON CONFLICT (product_id) DO UPDATE SET
		name = EXCLUDED.name,
		price_label = EXCLUDED.price_label,
		numeric_price = EXCLUDED.numeric_price,
		original_price = EXCLUDED.original_price,
		offer_price = EXCLUDED.offer_price,
		images = EXCLUDED.images,
		category = EXCLUDED.category,
		brand = EXCLUDED.brand,
		rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count,
		sold_count = EXCLUDED.sold_count,
		in_stock = EXCLUDED.in_stock,
		is_new = EXCLUDED.is_new,
		is_hot = EXCLUDED.is_hot,
		short_description = EXCLUDED.short_description,
		features = EXCLUDED.features,
		specifications = EXCLUDED.specifications,
		updated_at = now();
`

// StoreProducts upserts all products in one transaction.
func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) (storeErr error) {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if len(vs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertProductQuery)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		row, err := toProductRow(v)
		if err != nil {
			return fmt.Errorf("%s: product %q: %w", op, v.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, row.args()...); err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	log.Debug("products stored", "count", len(vs))
	return nil
}

func (r ProductsRepository) DeleteProducts(ctx context.Context, ids []string) error {
	const op = "ProductsRepository.DeleteProducts"

	if len(ids) == 0 {
		return nil
	}

	const query = `DELETE FROM products WHERE product_id = ANY($1);`
	if _, err := r.sqldb.ExecContext(ctx, query, ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListProducts returns the snapshot in insertion order.
func (r ProductsRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductsRepository.ListProducts"

	const query = `
		SELECT
			product_id, name, price_label, numeric_price, original_price,
			offer_price, images, category, brand, rating, review_count,
			sold_count, in_stock, is_new, is_hot, short_description,
			features, specifications
		FROM products
		ORDER BY position ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var row productRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: product %q: %w", op, row.id, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type storedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// productRow mirrors the products table; jsonb columns travel as text.
type productRow struct {
	id             string
	name           string
	priceLabel     string
	numericPrice   float64
	originalPrice  sql.NullFloat64
	offerPrice     sql.NullFloat64
	images         string
	category       string
	brand          string
	rating         float64
	reviewCount    int64
	soldCount      int64
	inStock        bool
	isNew          bool
	isHot          bool
	description    string
	features       string
	specifications string
}

func (r *productRow) dest() []any {
	return []any{
		&r.id, &r.name, &r.priceLabel, &r.numericPrice, &r.originalPrice,
		&r.offerPrice, &r.images, &r.category, &r.brand, &r.rating,
		&r.reviewCount, &r.soldCount, &r.inStock, &r.isNew, &r.isHot,
		&r.description, &r.features, &r.specifications,
	}
}

func (r productRow) args() []any {
	return []any{
		r.id, r.name, r.priceLabel, r.numericPrice, r.originalPrice,
		r.offerPrice, r.images, r.category, r.brand, r.rating,
		r.reviewCount, r.soldCount, r.inStock, r.isNew, r.isHot,
		r.description, r.features, r.specifications,
	}
}

func toProductRow(p domain.Product) (productRow, error) {
	images := make([]storedImage, len(p.Images))
	for i, img := range p.Images {
		images[i] = storedImage{URL: img.URL, PublicID: img.PublicID}
	}
	imagesB, err := json.Marshal(images)
	if err != nil {
		return productRow{}, err
	}

	features := p.Features
	if features == nil {
		features = []string{}
	}
	featuresB, err := json.Marshal(features)
	if err != nil {
		return productRow{}, err
	}

	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	specsB, err := json.Marshal(specs)
	if err != nil {
		return productRow{}, err
	}

	return productRow{
		id:             p.ID,
		name:           p.Name,
		priceLabel:     p.PriceLabel,
		numericPrice:   p.NumericPrice,
		originalPrice:  nullFloat(p.OriginalPrice),
		offerPrice:     nullFloat(p.OfferPrice),
		images:         string(imagesB),
		category:       p.Category,
		brand:          p.Brand,
		rating:         p.Rating,
		reviewCount:    int64(p.ReviewCount),
		soldCount:      int64(p.SoldCount),
		inStock:        p.InStock,
		isNew:          p.IsNew,
		isHot:          p.IsHot,
		description:    p.ShortDescription,
		features:       string(featuresB),
		specifications: string(specsB),
	}, nil
}

func (r productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:               r.id,
		Name:             r.name,
		PriceLabel:       r.priceLabel,
		NumericPrice:     r.numericPrice,
		OriginalPrice:    floatPtr(r.originalPrice),
		OfferPrice:       floatPtr(r.offerPrice),
		Category:         r.category,
		Brand:            r.brand,
		Rating:           r.rating,
		ReviewCount:      int(r.reviewCount),
		SoldCount:        int(r.soldCount),
		InStock:          r.inStock,
		IsNew:            r.isNew,
		IsHot:            r.isHot,
		ShortDescription: r.description,
	}

	var images []storedImage
	if err := json.Unmarshal([]byte(r.images), &images); err != nil {
		return domain.Product{}, fmt.Errorf("images: %w", err)
	}
	if len(images) != 0 {
		p.Images = make([]domain.ProductImage, len(images))
		for i, img := range images {
			p.Images[i] = domain.ProductImage{URL: img.URL, PublicID: img.PublicID}
		}
	}

	if err := json.Unmarshal([]byte(r.features), &p.Features); err != nil {
		return domain.Product{}, fmt.Errorf("features: %w", err)
	}
	if len(p.Features) == 0 {
		p.Features = nil
	}

	if err := json.Unmarshal([]byte(r.specifications), &p.Specifications); err != nil {
		return domain.Product{}, fmt.Errorf("specifications: %w", err)
	}
	if len(p.Specifications) == 0 {
		p.Specifications = nil
	}
	return p, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

package domain

type (
	Product struct {
		ID               string
		Name             string
		PriceLabel       string
		NumericPrice     float64
		OriginalPrice    *float64
		OfferPrice       *float64
		Images           []ProductImage
		Category         string
		Brand            string
		Rating           float64
		ReviewCount      int
		SoldCount        int
		InStock          bool
		IsNew            bool
		IsHot            bool
		ShortDescription string
		Features         []string
		Specifications   map[string]string
	}

	ProductImage struct {
		URL      string
		PublicID string
	}
)

// PrimaryImage returns the first image or the zero value for products without images.
func (p Product) PrimaryImage() (ProductImage, bool) {
	if len(p.Images) == 0 {
		return ProductImage{}, false
	}
	return p.Images[0], true
}

type Availability string

const (
	InStock    Availability = "in-stock"
	OutOfStock Availability = "out-of-stock"
)

func (a Availability) Valid() bool {
	return a == InStock || a == OutOfStock
}

// A ProductFilters is the filter panel state.
//
// PriceRange holds [min, max]; Categories holds slugs.
type ProductFilters struct {
	PriceRange   [2]float64
	Categories   []string
	Brands       []string
	Availability []Availability
	Ratings      []int
	OnSale       bool
}

type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortRating,
		SortNewest, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

type Category struct {
	ID   string
	Name string
	Slug string
}

type Brand struct {
	ID   string
	Name string
}

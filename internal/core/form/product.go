package form

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
)

type (
	ProductForm struct {
		Name             string      `json:"name" validate:"required"`
		Price            string      `json:"price"`
		NumericPrice     string      `json:"numericPrice" validate:"required,numeric"`
		OriginalPrice    string      `json:"originalPrice" validate:"omitempty,numeric"`
		OfferPrice       string      `json:"offerPrice" validate:"omitempty,numeric"`
		Category         string      `json:"category" validate:"required"`
		Brand            string      `json:"brand" validate:"required"`
		Rating           string      `json:"rating" validate:"omitempty,numeric"`
		ReviewCount      string      `json:"reviewCount" validate:"omitempty,number"`
		SoldCount        string      `json:"soldCount" validate:"omitempty,number"`
		InStock          string      `json:"inStock" validate:"omitempty,boolean"`
		IsNew            string      `json:"isNew" validate:"omitempty,boolean"`
		IsHot            string      `json:"isHot" validate:"omitempty,boolean"`
		ShortDescription string      `json:"shortDescription"`
		Features         string      `json:"features"`
		Specifications   string      `json:"specifications"`
		Images           []ImageForm `json:"images" validate:"dive"`
	}

	ImageForm struct {
		URL      string `json:"url" validate:"required,url"`
		PublicID string `json:"publicId"`
	}
)

// ToDomain validates the form and converts it into a product with the given id.
func (f ProductForm) ToDomain(id string) (domain.Product, error) {
	if err := check(f); err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		ID:               id,
		Name:             strings.TrimSpace(f.Name),
		PriceLabel:       strings.TrimSpace(f.Price),
		NumericPrice:     parseFloat(f.NumericPrice),
		OriginalPrice:    parseOptFloat(f.OriginalPrice),
		OfferPrice:       parseOptFloat(f.OfferPrice),
		Category:         strings.TrimSpace(f.Category),
		Brand:            strings.TrimSpace(f.Brand),
		Rating:           parseFloat(f.Rating),
		ReviewCount:      parseInt(f.ReviewCount),
		SoldCount:        parseInt(f.SoldCount),
		InStock:          parseBool(f.InStock),
		IsNew:            parseBool(f.IsNew),
		IsHot:            parseBool(f.IsHot),
		ShortDescription: strings.TrimSpace(f.ShortDescription),
		Features:         splitLines(f.Features),
	}

	fe := make(fieldErrors)
	if p.NumericPrice < 0 {
		fe["numericPrice"] = "gte"
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		fe["originalPrice"] = "gte"
	}
	if p.OfferPrice != nil && *p.OfferPrice < 0 {
		fe["offerPrice"] = "gte"
	}
	if p.Rating < 0 || p.Rating > 5 {
		fe["rating"] = "range"
	}

	specs, ok := parseSpecifications(f.Specifications)
	if !ok {
		fe["specifications"] = "format"
	}
	p.Specifications = specs

	if err := fe.err(); err != nil {
		return domain.Product{}, err
	}

	if p.PriceLabel == "" {
		p.PriceLabel = catalog.FormatPrice(p.NumericPrice)
	}

	for _, img := range f.Images {
		p.Images = append(p.Images, domain.ProductImage{
			URL:      strings.TrimSpace(img.URL),
			PublicID: strings.TrimSpace(img.PublicID),
		})
	}
	return p, nil
}

// ProductToForm fills a form from an existing product for editing.
func ProductToForm(p domain.Product) ProductForm {
	f := ProductForm{
		Name:             p.Name,
		Price:            p.PriceLabel,
		NumericPrice:     formatFloat(p.NumericPrice),
		Category:         p.Category,
		Brand:            p.Brand,
		Rating:           formatFloat(p.Rating),
		ReviewCount:      formatInt(p.ReviewCount),
		SoldCount:        formatInt(p.SoldCount),
		InStock:          formatBool(p.InStock),
		IsNew:            formatBool(p.IsNew),
		IsHot:            formatBool(p.IsHot),
		ShortDescription: p.ShortDescription,
		Features:         strings.Join(p.Features, "\n"),
		Specifications:   formatSpecifications(p.Specifications),
	}
	if p.OriginalPrice != nil {
		f.OriginalPrice = formatFloat(*p.OriginalPrice)
	}
	if p.OfferPrice != nil {
		f.OfferPrice = formatFloat(*p.OfferPrice)
	}
	for _, img := range p.Images {
		f.Images = append(f.Images, ImageForm{URL: img.URL, PublicID: img.PublicID})
	}
	return f
}

package httphandler

import (
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type (
	Product struct {
		ID               string            `json:"id"`
		Name             string            `json:"name"`
		Price            string            `json:"price"`
		NumericPrice     float64           `json:"numericPrice"`
		DisplayPrice     float64           `json:"displayPrice"`
		OriginalPrice    *float64          `json:"originalPrice,omitempty"`
		OfferPrice       *float64          `json:"offerPrice,omitempty"`
		OnSale           bool              `json:"onSale"`
		Images           []ProductImage    `json:"images"`
		Category         string            `json:"category"`
		Brand            string            `json:"brand"`
		Rating           float64           `json:"rating"`
		ReviewCount      int               `json:"reviewCount"`
		SoldCount        int               `json:"soldCount"`
		InStock          bool              `json:"inStock"`
		IsNew            bool              `json:"isNew"`
		IsHot            bool              `json:"isHot"`
		ShortDescription string            `json:"shortDescription,omitempty"`
		Features         []string          `json:"features,omitempty"`
		Specifications   map[string]string `json:"specifications,omitempty"`
	}

	ProductImage struct {
		URL      string `json:"url"`
		PublicID string `json:"publicId,omitempty"`
	}
)

func toProduct(p domain.Product) Product {
	out := Product{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.PriceLabel,
		NumericPrice:     p.NumericPrice,
		DisplayPrice:     catalog.DisplayPrice(p),
		OriginalPrice:    p.OriginalPrice,
		OfferPrice:       p.OfferPrice,
		OnSale:           catalog.OnSale(p),
		Images:           make([]ProductImage, len(p.Images)),
		Category:         p.Category,
		Brand:            p.Brand,
		Rating:           p.Rating,
		ReviewCount:      p.ReviewCount,
		SoldCount:        p.SoldCount,
		InStock:          p.InStock,
		IsNew:            p.IsNew,
		IsHot:            p.IsHot,
		ShortDescription: p.ShortDescription,
		Features:         p.Features,
		Specifications:   p.Specifications,
	}
	for i, img := range p.Images {
		out.Images[i] = ProductImage{URL: img.URL, PublicID: img.PublicID}
	}
	return out
}

func toProducts(ps []domain.Product) []Product {
	out := make([]Product, len(ps))
	for i, p := range ps {
		out[i] = toProduct(p)
	}
	return out
}

type (
	ProductListing struct {
		Products   []Product `json:"products"`
		Count      int       `json:"count"`
		Total      int       `json:"total"`
		Page       int       `json:"page"`
		TotalPages int       `json:"totalPages"`
		Facets     Facets    `json:"facets"`
	}

	Facets struct {
		InStock    int      `json:"inStock"`
		OutOfStock int      `json:"outOfStock"`
		OnSale     int      `json:"onSale"`
		Brands     []string `json:"brands"`
		Categories []string `json:"categories"`
		MinPrice   float64  `json:"minPrice"`
		MaxPrice   float64  `json:"maxPrice"`
	}
)

func toProductListing(l port.ProductListing) ProductListing {
	return ProductListing{
		Products:   toProducts(l.Products),
		Count:      l.Count,
		Total:      l.Total,
		Page:       l.Page,
		TotalPages: l.TotalPages,
		Facets: Facets{
			InStock:    l.Facets.InStock,
			OutOfStock: l.Facets.OutOfStock,
			OnSale:     l.Facets.OnSale,
			Brands:     nonNil(l.Facets.Brands),
			Categories: nonNil(l.Facets.Categories),
			MinPrice:   l.Facets.MinPrice,
			MaxPrice:   l.Facets.MaxPrice,
		},
	}
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func toCategory(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toBrand(b domain.Brand) Brand {
	return Brand{ID: b.ID, Name: b.Name}
}

type BlogPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func toBlogPost(p domain.BlogPost) BlogPost {
	return BlogPost{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		CoverImage:  p.CoverImage,
		Author:      p.Author,
		Tags:        nonNil(p.Tags),
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
	}
}

type (
	Order struct {
		ID        string      `json:"id"`
		Customer  string      `json:"customer"`
		Email     string      `json:"email,omitempty"`
		Items     []OrderItem `json:"items"`
		Total     float64     `json:"total"`
		Status    string      `json:"status"`
		CreatedAt *time.Time  `json:"createdAt,omitempty"`
	}

	OrderItem struct {
		ID        string  `json:"id"`
		ProductID string  `json:"productId"`
		Name      string  `json:"name"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unitPrice"`
		Status    string  `json:"status"`
	}
)

func toOrder(o domain.Order) Order {
	out := Order{
		ID:       o.ID,
		Customer: o.Customer,
		Email:    o.Email,
		Items:    make([]OrderItem, len(o.Items)),
		Total:    o.Total,
		Status:   string(o.Status),
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		out.CreatedAt = &t
	}
	for i, item := range o.Items {
		out.Items[i] = toOrderItem(item)
	}
	return out
}

func toOrderItem(i domain.OrderItem) OrderItem {
	return OrderItem{
		ID:        i.ID,
		ProductID: i.ProductID,
		Name:      i.Name,
		Quantity:  i.Quantity,
		UnitPrice: i.UnitPrice,
		Status:    string(i.Status),
	}
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

func toPage[T, D any](p domain.Page[D], fn func(D) T) Page[T] {
	return Page[T]{
		Items:      mapSlice(p.Items, fn),
		Page:       p.Page,
		TotalPages: p.TotalPages,
		Total:      p.Total,
	}
}

func mapSlice[T, D any](vs []D, fn func(D) T) []T {
	out := make([]T, len(vs))
	for i, v := range vs {
		out[i] = fn(v)
	}
	return out
}

func nonNil[T any](vs []T) []T {
	if vs == nil {
		return []T{}
	}
	return vs
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

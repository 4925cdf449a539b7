package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
)

// The backend is loose about shapes: numbers arrive as strings, images as
// URLs or objects, categories as names or objects. The wire types below
// accept every variant and never fail on a bad value; the zero value
// stands for anything they cannot read.

var null = []byte("null")

// flexNumber is a number or a numeric string.
type flexNumber struct {
	v *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	n.v = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return nil
	}

	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
	} else {
		s = string(data)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var ok bool
		if v, ok = catalog.ParsePriceLabel(s); !ok {
			return nil
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.v = &v
	return nil
}

func (n flexNumber) ptr() *float64 {
	if n.v == nil || *n.v < 0 {
		return nil
	}
	v := *n.v
	return &v
}

func (n flexNumber) float() float64 {
	if n.v == nil {
		return 0
	}
	return *n.v
}

func (n flexNumber) count() int {
	if n.v == nil || *n.v < 0 {
		return 0
	}
	return int(min(*n.v, math.MaxInt32))
}

// flexBool is a bool, a "true"/"false" string or 0/1.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseBool(strings.ToLower(s))
	*b = flexBool(err == nil && v)
	return nil
}

// flexString is a string or a scalar rendered as one.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, null):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = flexString(v)
	case data[0] == '{' || data[0] == '[':
		*s = ""
	default:
		*s = flexString(data)
	}
	return nil
}

// flexName is a plain name or an object with a name field, such as a
// populated category or author reference.
type flexName string

func (n *flexName) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '{' {
		var obj struct {
			Name  flexString `json:"name"`
			Title flexString `json:"title"`
		}
		_ = json.Unmarshal(data, &obj)
		*n = flexName(strings.TrimSpace(string(obj.Name)))
		if *n == "" {
			*n = flexName(strings.TrimSpace(string(obj.Title)))
		}
		return nil
	}
	var s flexString
	_ = s.UnmarshalJSON(data)
	*n = flexName(strings.TrimSpace(string(s)))
	return nil
}

// flexStrings is a list of strings or a single newline separated string.
type flexStrings []string

func (l *flexStrings) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var raw []string
	if data[0] == '[' {
		var items []flexString
		_ = json.Unmarshal(data, &items)
		for _, v := range items {
			raw = append(raw, string(v))
		}
	} else {
		var s flexString
		_ = s.UnmarshalJSON(data)
		raw = strings.FieldsFunc(string(s), func(r rune) bool {
			return r == '\n' || r == ','
		})
	}

	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

// flexImages is a list of URLs or of {url, publicId} objects, in either
// camel or snake case.
type flexImages []domain.ProductImage

func (l *flexImages) UnmarshalJSON(data []byte) error {
	*l = nil
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var single flexString
		_ = single.UnmarshalJSON(data)
		if url := strings.TrimSpace(string(single)); url != "" {
			*l = flexImages{{URL: url}}
		}
		return nil
	}

	for _, item := range items {
		item = bytes.TrimSpace(item)
		var img domain.ProductImage
		if len(item) != 0 && item[0] == '{' {
			var obj struct {
				URL       flexString `json:"url"`
				SecureURL flexString `json:"secure_url"`
				PublicID  flexString `json:"publicId"`
				PublicID2 flexString `json:"public_id"`
			}
			_ = json.Unmarshal(item, &obj)
			img.URL = firstNonEmpty(string(obj.URL), string(obj.SecureURL))
			img.PublicID = firstNonEmpty(string(obj.PublicID), string(obj.PublicID2))
		} else {
			var s flexString
			_ = s.UnmarshalJSON(item)
			img.URL = strings.TrimSpace(string(s))
		}
		if img.URL != "" {
			*l = append(*l, img)
		}
	}
	return nil
}

// flexSpecs is an object of scalars or a list of {key, value} pairs.
type flexSpecs map[string]string

func (m *flexSpecs) UnmarshalJSON(data []byte) error {
	*m = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	out := make(flexSpecs)
	switch data[0] {
	case '{':
		var obj map[string]flexString
		_ = json.Unmarshal(data, &obj)
		for k, v := range obj {
			if k = strings.TrimSpace(k); k != "" {
				out[k] = strings.TrimSpace(string(v))
			}
		}
	case '[':
		var pairs []struct {
			Key   flexString `json:"key"`
			Name  flexString `json:"name"`
			Value flexString `json:"value"`
		}
		_ = json.Unmarshal(data, &pairs)
		for _, p := range pairs {
			k := firstNonEmpty(string(p.Key), string(p.Name))
			if k != "" {
				out[k] = strings.TrimSpace(string(p.Value))
			}
		}
	}
	if len(out) != 0 {
		*m = out
	}
	return nil
}

// flexTime is an RFC 3339 timestamp or a date.
type flexTime struct {
	t *time.Time
}

func (ft *flexTime) UnmarshalJSON(data []byte) error {
	ft.t = nil
	var s flexString
	_ = s.UnmarshalJSON(data)
	v := strings.TrimSpace(string(s))
	for _, layout := range [...]string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			ft.t = &t
			return nil
		}
	}
	return nil
}

func (ft flexTime) value() time.Time {
	if ft.t == nil {
		return time.Time{}
	}
	return *ft.t
}

// flexRef is an id or a populated document with an id and a name.
type flexRef struct {
	ID   string
	Name string
}

func (r *flexRef) UnmarshalJSON(data []byte) error {
	*r = flexRef{}
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '{' {
		var obj struct {
			ids
			Name flexName `json:"name"`
		}
		_ = json.Unmarshal(data, &obj)
		r.ID, r.Name = obj.id(), string(obj.Name)
		return nil
	}
	var s flexString
	_ = s.UnmarshalJSON(data)
	r.ID = strings.TrimSpace(string(s))
	return nil
}

// ids carries both the plain and the document store id field.
type ids struct {
	ID    flexString `json:"id"`
	DocID flexString `json:"_id"`
}

func (i ids) id() string {
	return firstNonEmpty(string(i.ID), string(i.DocID))
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Product is a backend product in any of the shapes the backend emits.
type Product struct {
	ids
	Name             flexString  `json:"name"`
	Price            flexString  `json:"price"`
	NumericPrice     flexNumber  `json:"numericPrice"`
	OriginalPrice    flexNumber  `json:"originalPrice"`
	OfferPrice       flexNumber  `json:"offerPrice"`
	Images           flexImages  `json:"images"`
	Image            flexString  `json:"image"`
	Category         flexName    `json:"category"`
	Brand            flexName    `json:"brand"`
	Rating           flexNumber  `json:"rating"`
	ReviewCount      flexNumber  `json:"reviewCount"`
	SoldCount        flexNumber  `json:"soldCount"`
	InStock          *flexBool   `json:"inStock"`
	Stock            flexNumber  `json:"stock"`
	IsNew            flexBool    `json:"isNew"`
	IsHot            flexBool    `json:"isHot"`
	ShortDescription flexString  `json:"shortDescription"`
	Description      flexString  `json:"description"`
	Features         flexStrings `json:"features"`
	Specifications   flexSpecs   `json:"specifications"`
}

// NormalizeProduct converts a backend product into the canonical model.
//
// The numeric price falls back to the parsed display price, then to 0.
// Rating is clamped into [0, 5]. A missing inStock flag is derived from a
// stock count when the backend sends one.
func NormalizeProduct(w Product) domain.Product {
	p := domain.Product{
		ID:               w.id(),
		Name:             strings.TrimSpace(string(w.Name)),
		PriceLabel:       strings.TrimSpace(string(w.Price)),
		NumericPrice:     catalog.ResolvePrice(w.NumericPrice.ptr(), string(w.Price)),
		OriginalPrice:    w.OriginalPrice.ptr(),
		OfferPrice:       w.OfferPrice.ptr(),
		Images:           []domain.ProductImage(w.Images),
		Category:         string(w.Category),
		Brand:            string(w.Brand),
		Rating:           min(max(w.Rating.float(), 0), 5),
		ReviewCount:      w.ReviewCount.count(),
		SoldCount:        w.SoldCount.count(),
		IsNew:            bool(w.IsNew),
		IsHot:            bool(w.IsHot),
		ShortDescription: firstNonEmpty(string(w.ShortDescription), string(w.Description)),
		Features:         []string(w.Features),
		Specifications:   map[string]string(w.Specifications),
	}

	switch {
	case w.InStock != nil:
		p.InStock = bool(*w.InStock)
	case w.Stock.v != nil:
		p.InStock = w.Stock.count() > 0
	}

	if len(p.Images) == 0 {
		if url := strings.TrimSpace(string(w.Image)); url != "" {
			p.Images = []domain.ProductImage{{URL: url}}
		}
	}
	if p.PriceLabel == "" {
		p.PriceLabel = catalog.FormatPrice(p.NumericPrice)
	}
	return p
}

func normalizeProducts(ws []Product) []domain.Product {
	out := make([]domain.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, NormalizeProduct(w))
	}
	return out
}

// productPayload is the body of product create and update requests.
type productPayload struct {
	Name             string            `json:"name"`
	Price            string            `json:"price"`
	NumericPrice     float64           `json:"numericPrice"`
	OriginalPrice    *float64          `json:"originalPrice,omitempty"`
	OfferPrice       *float64          `json:"offerPrice,omitempty"`
	Images           []imagePayload    `json:"images"`
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

type imagePayload struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

func toProductPayload(p domain.Product) productPayload {
	out := productPayload{
		Name:             p.Name,
		Price:            p.PriceLabel,
		NumericPrice:     p.NumericPrice,
		OriginalPrice:    p.OriginalPrice,
		OfferPrice:       p.OfferPrice,
		Images:           make([]imagePayload, len(p.Images)),
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
		out.Images[i] = imagePayload{URL: img.URL, PublicID: img.PublicID}
	}
	return out
}

// decodeList reads a bare JSON array or an object holding the array under
// key, along with optional paging fields.
func decodeList[T any](data []byte, key string) ([]T, pageInfo, error) {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, pageInfo{}, err
		}
		return items, pageInfo{}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, pageInfo{}, err
	}

	var items []T
	for _, k := range [...]string{key, "data", "items"} {
		raw, ok := envelope[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), null) {
			continue
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, pageInfo{}, fmt.Errorf("field %q: %w", k, err)
		}
		break
	}

	var info pageInfo
	_ = json.Unmarshal(data, &info)
	if info.Pagination != nil {
		info = *info.Pagination
	}
	return items, info, nil
}

// decodeOne reads an object that may be wrapped under key.
func decodeOne[T any](data []byte, key string) (T, error) {
	var v T
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return v, err
	}
	if raw, ok := envelope[key]; ok && len(bytes.TrimSpace(raw)) != 0 &&
		bytes.TrimSpace(raw)[0] == '{' {
		data = raw
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

type pageInfo struct {
	Page        flexNumber `json:"page"`
	CurrentPage flexNumber `json:"currentPage"`
	TotalPages  flexNumber `json:"totalPages"`
	Pages       flexNumber `json:"pages"`
	Total       flexNumber `json:"total"`
	Count       flexNumber `json:"totalCount"`
	Pagination  *pageInfo  `json:"pagination"`
}

func toPage[T any](items []T, info pageInfo, page, limit int) domain.Page[T] {
	if items == nil {
		items = []T{}
	}
	out := domain.Page[T]{
		Items:      items,
		Page:       firstPositive(info.Page.count(), info.CurrentPage.count(), page, 1),
		TotalPages: firstPositive(info.TotalPages.count(), info.Pages.count()),
		Total:      firstPositive(info.Total.count(), info.Count.count()),
	}
	if out.Total == 0 {
		out.Total = len(items)
	}
	if out.TotalPages == 0 {
		out.TotalPages = 1
		if limit > 0 && out.Total > 0 {
			out.TotalPages = (out.Total + limit - 1) / limit
		}
	}
	return out
}

func firstPositive(vs ...int) int {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}

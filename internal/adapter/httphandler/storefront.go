package httphandler

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	VisitorHeader = "X-Visitor-ID"
	VisitorCookie = "visitor_id"

	visitorCookieMaxAge = 365 * 24 * time.Hour
	maxJSONBody         = 1 << 20
)

type StorefrontHandler struct {
	service port.Storefront
}

func RegisterStorefront(mux *http.ServeMux, service port.Storefront) {
	h := StorefrontHandler{service}
	mux.HandleFunc("GET /v1/products", h.ListProducts)
	mux.HandleFunc("GET /v1/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /v1/recently-viewed", h.RecentlyViewed)
	mux.HandleFunc("GET /v1/categories", h.ListCategories)
	mux.HandleFunc("GET /v1/brands", h.ListBrands)
	mux.HandleFunc("GET /v1/blog/posts", h.ListPosts)
}

func (h StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.ListProducts"
	log := slog.With("op", op)

	listing, err := h.service.ListProducts(r.Context(), parseProductQuery(r))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProductListing(listing))
}

func (h StorefrontHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetProduct"
	log := slog.With("op", op)

	visitor := ensureVisitor(w, r)
	p, err := h.service.GetProduct(r.Context(), r.PathValue("id"), visitor)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProduct(p))
}

func (h StorefrontHandler) RecentlyViewed(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.RecentlyViewed"
	log := slog.With("op", op)

	ps, err := h.service.RecentlyViewed(r.Context(), visitorID(r))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProducts(ps))
}

func (h StorefrontHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.ListCategories"
	log := slog.With("op", op)

	cs, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, mapSlice(cs, toCategory))
}

func (h StorefrontHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.ListBrands"
	log := slog.With("op", op)

	bs, err := h.service.ListBrands(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, mapSlice(bs, toBrand))
}

func (h StorefrontHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.ListPosts"
	log := slog.With("op", op)

	status := domain.PostStatus(r.URL.Query().Get("status"))
	ps, err := h.service.ListPosts(r.Context(), status)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, mapSlice(ps, toBlogPost))
}

func visitorID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(VisitorHeader)); v != "" {
		return v
	}
	if c, err := r.Cookie(VisitorCookie); err == nil {
		return c.Value
	}
	return ""
}

// ensureVisitor returns the request visitor and issues a cookie to
// anonymous ones.
func ensureVisitor(w http.ResponseWriter, r *http.Request) string {
	if v := visitorID(r); v != "" {
		return v
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    v,
		Path:     "/",
		MaxAge:   int(visitorCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return v
}

// parseProductQuery reads the listing query string. Malformed values are
// ignored and the catalog defaults apply.
func parseProductQuery(r *http.Request) port.ProductQuery {
	v := r.URL.Query()

	var q port.ProductQuery
	q.Search = v.Get("q")
	q.Category = v.Get("category")
	q.Sort = domain.SortKey(v.Get("sort"))
	q.Page = atoiOr(v.Get("page"), 1)
	q.Limit = atoiOr(v.Get("limit"), 0)

	f := &q.Filters
	f.Categories = listParam(v["categories"])
	f.Brands = listParam(v["brands"])
	for _, a := range listParam(v["availability"]) {
		if a := domain.Availability(a); a.Valid() {
			f.Availability = append(f.Availability, a)
		}
	}
	for _, s := range listParam(v["ratings"]) {
		if n, err := strconv.Atoi(s); err == nil {
			f.Ratings = append(f.Ratings, n)
		}
	}
	f.OnSale, _ = strconv.ParseBool(v.Get("onSale"))

	// A zero upper bound stands for the catalog maximum.
	if n, err := strconv.ParseFloat(v.Get("minPrice"), 64); err == nil {
		f.PriceRange[0] = n
	}
	if n, err := strconv.ParseFloat(v.Get("maxPrice"), 64); err == nil {
		f.PriceRange[1] = n
	}
	return q
}

// listParam accepts both repeated keys and comma separated values.
func listParam(vs []string) []string {
	var out []string
	for _, v := range vs {
		for s := range strings.SplitSeq(v, ",") {
			if s = strings.TrimSpace(s); s != "" && !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

package httphandler

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/form"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	imagesField      = "images"
	maxUploadMemory  = 32 << 20
	defaultPageLimit = 20
)

type AdminHandler struct {
	service port.Admin
}

func RegisterAdmin(mux *http.ServeMux, service port.Admin) {
	h := AdminHandler{service}
	mux.HandleFunc("GET /v1/admin/products", h.ListProducts)
	mux.HandleFunc("POST /v1/admin/products", h.CreateProduct)
	mux.HandleFunc("GET /v1/admin/products/{id}/form", h.ProductForm)
	mux.HandleFunc("PUT /v1/admin/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /v1/admin/products/{id}", h.DeleteProduct)
	mux.HandleFunc("POST /v1/admin/products/{id}/images", h.UploadImages)
	mux.HandleFunc("DELETE /v1/admin/products/{id}/images/{publicID}", h.RemoveImage)

	mux.HandleFunc("POST /v1/admin/categories", h.CreateCategory)
	mux.HandleFunc("PUT /v1/admin/categories/{id}", h.UpdateCategory)
	mux.HandleFunc("DELETE /v1/admin/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("POST /v1/admin/brands", h.CreateBrand)
	mux.HandleFunc("PUT /v1/admin/brands/{id}", h.UpdateBrand)
	mux.HandleFunc("DELETE /v1/admin/brands/{id}", h.DeleteBrand)

	mux.HandleFunc("GET /v1/admin/blog/posts", h.ListPosts)
	mux.HandleFunc("POST /v1/admin/blog/posts", h.CreatePost)
	mux.HandleFunc("PUT /v1/admin/blog/posts/{id}", h.UpdatePost)
	mux.HandleFunc("DELETE /v1/admin/blog/posts/{id}", h.DeletePost)

	mux.HandleFunc("GET /v1/admin/orders", h.ListOrders)
	mux.HandleFunc("PUT /v1/admin/orders/items/{id}", h.UpdateOrderItemStatus)
	mux.HandleFunc("PUT /v1/admin/orders/{id}", h.UpdateOrderStatus)
}

func (h AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.ListProducts"
	log := slog.With("op", op)

	v := r.URL.Query()
	params := port.ProductListParams{
		Page:   atoiOr(v.Get("page"), 1),
		Limit:  atoiOr(v.Get("limit"), defaultPageLimit),
		Search: v.Get("q"),
		IsHot:  boolParam(v.Get("isHot")),
		IsNew:  boolParam(v.Get("isNew")),
	}

	page, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toPage(page, toProduct))
}

func (h AdminHandler) ProductForm(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.ProductForm"
	log := slog.With("op", op)

	f, err := h.service.ProductForm(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, f)
}

func (h AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.CreateProduct"
	log := slog.With("op", op)

	var f form.ProductForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	p, err := h.service.CreateProduct(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, toProduct(p))
}

func (h AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdateProduct"
	log := slog.With("op", op)

	var f form.ProductForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProduct(p))
}

func (h AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.DeleteProduct"
	log := slog.With("op", op)

	if err := h.service.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImages accepts a multipart form with one or more files in the
// "images" field.
func (h AdminHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UploadImages"
	log := slog.With("op", op)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		log.Warn("failed to parse multipart form", "err", err)
		writeJSON(w, log, http.StatusBadRequest, errorBody{Error: "invalid multipart form"})
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart files", "err", err)
		}
	}()

	files, closeFiles, err := openImageFiles(r.MultipartForm.File[imagesField])
	defer closeFiles()
	if err != nil {
		log.Error("failed to open uploaded file", "err", err)
		writeJSON(w, log, http.StatusBadRequest, errorBody{Error: "unreadable file"})
		return
	}

	p, err := h.service.UploadImages(r.Context(), r.PathValue("id"), files)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProduct(p))
}

func openImageFiles(
	headers []*multipart.FileHeader,
) ([]port.ImageFile, func(), error) {
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	files := make([]port.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, err
		}
		opened = append(opened, f)
		files = append(files, port.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        f,
		})
	}
	return files, closeAll, nil
}

func (h AdminHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.RemoveImage"
	log := slog.With("op", op)

	p, err := h.service.RemoveImage(
		r.Context(), r.PathValue("id"), r.PathValue("publicID"),
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toProduct(p))
}

func (h AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.CreateCategory"
	log := slog.With("op", op)

	var f form.CategoryForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	c, err := h.service.CreateCategory(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, toCategory(c))
}

func (h AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdateCategory"
	log := slog.With("op", op)

	var f form.CategoryForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	c, err := h.service.UpdateCategory(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toCategory(c))
}

func (h AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.DeleteCategory"
	log := slog.With("op", op)

	if err := h.service.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AdminHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.CreateBrand"
	log := slog.With("op", op)

	var f form.BrandForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	b, err := h.service.CreateBrand(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, toBrand(b))
}

func (h AdminHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdateBrand"
	log := slog.With("op", op)

	var f form.BrandForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	b, err := h.service.UpdateBrand(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toBrand(b))
}

func (h AdminHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.DeleteBrand"
	log := slog.With("op", op)

	if err := h.service.DeleteBrand(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.ListPosts"
	log := slog.With("op", op)

	status := domain.PostStatus(r.URL.Query().Get("status"))
	ps, err := h.service.ListPosts(r.Context(), status)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, mapSlice(ps, toBlogPost))
}

func (h AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.CreatePost"
	log := slog.With("op", op)

	var f form.BlogPostForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	p, err := h.service.CreatePost(r.Context(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusCreated, toBlogPost(p))
}

func (h AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdatePost"
	log := slog.With("op", op)

	var f form.BlogPostForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	p, err := h.service.UpdatePost(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toBlogPost(p))
}

func (h AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.DeletePost"
	log := slog.With("op", op)

	if err := h.service.DeletePost(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.ListOrders"
	log := slog.With("op", op)

	v := r.URL.Query()
	page, err := h.service.ListOrders(
		r.Context(), atoiOr(v.Get("page"), 1), atoiOr(v.Get("limit"), defaultPageLimit),
	)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toPage(page, toOrder))
}

func (h AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdateOrderStatus"
	log := slog.With("op", op)

	var f form.OrderStatusForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	o, err := h.service.UpdateOrderStatus(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toOrder(o))
}

func (h AdminHandler) UpdateOrderItemStatus(w http.ResponseWriter, r *http.Request) {
	const op = "AdminHandler.UpdateOrderItemStatus"
	log := slog.With("op", op)

	var f form.OrderStatusForm
	if !decodeJSON(w, r, log, &f) {
		return
	}
	item, err := h.service.UpdateOrderItemStatus(r.Context(), r.PathValue("id"), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, toOrderItem(item))
}

func boolParam(s string) *bool {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &v
}

package cloudinary_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/cloudinary"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploader(t *testing.T, h http.HandlerFunc) cloudinary.Uploader {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u, err := cloudinary.NewUploader("demo", "unsigned",
		cloudinary.BaseURLOpt(srv.URL), cloudinary.FolderOpt("products"),
	)
	require.NoError(t, err)
	return u
}

func jpeg(data string) port.ImageFile {
	return port.ImageFile{
		Name:        "scope.jpg",
		ContentType: "image/jpeg",
		Data:        strings.NewReader(data),
	}
}

func TestUpload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		u := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/demo/image/upload", r.URL.Path)

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "unsigned", r.FormValue("upload_preset"))
			assert.Equal(t, "products", r.FormValue("folder"))

			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(data))
			assert.Equal(t, "scope.jpg", header.Filename)
			assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))

			_, _ = io.WriteString(w, `{"secure_url": "https://res/scope.jpg", "public_id": "products/scope"}`)
		})

		var last, total int64
		img, err := u.Upload(t.Context(), jpeg("jpeg-bytes"), func(sent, n int64) {
			assert.GreaterOrEqual(t, sent, last)
			last, total = sent, n
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ProductImage{
			URL: "https://res/scope.jpg", PublicID: "products/scope",
		}, img)
		assert.Positive(t, total)
		assert.Equal(t, total, last)
	})

	t.Run("Rejected", func(t *testing.T) {
		u := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error": {"message": "Upload preset not found"}}`)
		})

		_, err := u.Upload(t.Context(), jpeg("x"), nil)
		assert.ErrorIs(t, err, cloudinary.ErrUpload)
		assert.ErrorContains(t, err, "Upload preset not found")
	})

	t.Run("NoData", func(t *testing.T) {
		u := newUploader(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		_, err := u.Upload(t.Context(), port.ImageFile{Name: "empty.jpg"}, nil)
		assert.ErrorIs(t, err, cloudinary.ErrUpload)
	})
}

func TestNewUploader(t *testing.T) {
	_, err := cloudinary.NewUploader("", "preset")
	assert.Error(t, err)

	_, err = cloudinary.NewUploader("demo", "preset", cloudinary.BaseURLOpt("::"))
	assert.Error(t, err)
}

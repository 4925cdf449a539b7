package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func imageFiles(names ...string) []port.ImageFile {
	files := make([]port.ImageFile, len(names))
	for i, name := range names {
		files[i] = port.ImageFile{
			Name:        name,
			ContentType: "image/jpeg",
			Data:        strings.NewReader("jpeg"),
		}
	}
	return files
}

func TestAdminUploadImages(t *testing.T) {
	existing := domain.ProductImage{URL: "https://img/old.jpg", PublicID: "old"}
	one := domain.ProductImage{URL: "https://img/1.jpg", PublicID: "p1"}
	two := domain.ProductImage{URL: "https://img/2.jpg", PublicID: "p2"}

	t.Run("UploadThenSave", func(t *testing.T) {
		a, deps := newAdmin(t)
		deps.uploader.On("Upload", mock.Anything, "1.jpg").Return(one, nil).Once()
		deps.uploader.On("Upload", mock.Anything, "2.jpg").Return(two, nil).Once()
		deps.products.On("GetProduct", mock.Anything, "a").
			Return(domain.Product{ID: "a", Images: []domain.ProductImage{existing}}, nil)

		want := domain.Product{ID: "a", Images: []domain.ProductImage{existing, one, two}}
		deps.products.On("UpdateProduct", mock.Anything, want).Return(want, nil).Once()
		deps.events.On("ProduceEvents", mock.Anything, mock.Anything).Return(nil)

		p, err := a.UploadImages(t.Context(), "a", imageFiles("1.jpg", "2.jpg"))
		require.NoError(t, err)
		assert.Equal(t, want, p)

		cat, err := deps.cache.Snapshot(t.Context())
		require.NoError(t, err)
		assert.Len(t, cat.Products[0].Images, 3)
		deps.uploader.AssertExpectations(t)
	})

	t.Run("UploadFailureStops", func(t *testing.T) {
		a, deps := newAdmin(t)
		deps.uploader.On("Upload", mock.Anything, "1.jpg").Return(one, nil).Once()
		deps.uploader.On("Upload", mock.Anything, "2.jpg").
			Return(domain.ProductImage{}, errors.New("too large")).Once()

		_, err := a.UploadImages(t.Context(), "a", imageFiles("1.jpg", "2.jpg", "3.jpg"))
		assert.ErrorContains(t, err, "too large")
		deps.uploader.AssertNumberOfCalls(t, "Upload", 2)
		deps.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})

	t.Run("SaveFailureKeepsCache", func(t *testing.T) {
		a, deps := newAdmin(t)
		deps.uploader.On("Upload", mock.Anything, "1.jpg").Return(one, nil)
		deps.products.On("GetProduct", mock.Anything, "a").
			Return(domain.Product{ID: "a"}, nil)
		deps.products.On("UpdateProduct", mock.Anything, mock.Anything).
			Return(domain.Product{}, errRejected)

		_, err := a.UploadImages(t.Context(), "a", imageFiles("1.jpg"))
		assert.ErrorIs(t, err, errRejected)

		cat, err := deps.cache.Snapshot(t.Context())
		require.NoError(t, err)
		assert.Empty(t, cat.Products[0].Images)
		deps.events.AssertNotCalled(t, "ProduceEvents", mock.Anything, mock.Anything)
	})

	t.Run("NoFiles", func(t *testing.T) {
		a, _ := newAdmin(t)
		_, err := a.UploadImages(t.Context(), "a", nil)
		assert.ErrorIs(t, err, service.ErrNoImages)
	})
}

func TestAdminRemoveImage(t *testing.T) {
	img := domain.ProductImage{URL: "https://img/1.jpg", PublicID: "p1"}

	t.Run("Removes", func(t *testing.T) {
		a, deps := newAdmin(t)
		deps.products.On("GetProduct", mock.Anything, "a").
			Return(domain.Product{ID: "a", Images: []domain.ProductImage{img}}, nil)
		deps.products.On("UpdateProduct", mock.Anything, domain.Product{ID: "a", Images: []domain.ProductImage{}}).
			Return(domain.Product{ID: "a"}, nil)
		deps.events.On("ProduceEvents", mock.Anything, mock.Anything).Return(nil)

		_, err := a.RemoveImage(t.Context(), "a", "p1")
		require.NoError(t, err)
	})

	t.Run("UnknownImage", func(t *testing.T) {
		a, deps := newAdmin(t)
		deps.products.On("GetProduct", mock.Anything, "a").
			Return(domain.Product{ID: "a", Images: []domain.ProductImage{img}}, nil)

		_, err := a.RemoveImage(t.Context(), "a", "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		deps.products.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
	})
}

func TestAdminUploadsDisabled(t *testing.T) {
	a := service.NewAdmin(service.Backends{}, nil, nil, loadedCache(t, testProducts()))
	_, err := a.UploadImages(t.Context(), "a", imageFiles("1.jpg"))
	assert.ErrorIs(t, err, service.ErrUploadsDisabled)
}

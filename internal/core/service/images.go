package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	ErrNoImages        = errors.New("no images to upload")
	ErrUploadsDisabled = errors.New("image uploads are not configured")
)

// UploadImages uploads files to the image host one by one, then appends
// them to the product with a separate save request.
//
// Uploaded images are not rolled back: when a later step fails their
// public ids are logged as orphans.
func (a Admin) UploadImages(
	ctx context.Context, id string, files []port.ImageFile,
) (domain.Product, error) {
	const op = "Admin.UploadImages"
	log := slog.With("op", op, "productID", id)

	if a.uploader == nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, ErrUploadsDisabled)
	}
	if len(files) == 0 {
		return domain.Product{}, fmt.Errorf("%s: %w", op, ErrNoImages)
	}

	uploaded := make([]domain.ProductImage, 0, len(files))
	orphans := func(err error) {
		if len(uploaded) == 0 {
			return
		}
		publicIDs := make([]string, len(uploaded))
		for i, img := range uploaded {
			publicIDs[i] = img.PublicID
		}
		log.Error("uploaded images are orphaned",
			"publicIDs", publicIDs, "err", err,
		)
	}

	for i, f := range files {
		img, err := a.uploader.Upload(ctx, f, uploadProgress(log, f.Name))
		if err != nil {
			orphans(err)
			return domain.Product{}, fmt.Errorf("%s: file %d %q: %w",
				op, i, f.Name, err)
		}
		uploaded = append(uploaded, img)
	}
	log.Info("images uploaded", "nImages", len(uploaded))

	p, err := a.backends.Products.GetProduct(ctx, id)
	if err != nil {
		orphans(err)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	p.Images = append(slices.Clone(p.Images), uploaded...)

	saved, err := a.backends.Products.UpdateProduct(ctx, p)
	if err != nil {
		orphans(err)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	a.productSaved(ctx, saved)
	return saved, nil
}

func uploadProgress(log *slog.Logger, name string) port.ProgressFunc {
	return func(sent, total int64) {
		log.Debug("upload progress", "file", name, "sent", sent, "total", total)
	}
}

// RemoveImage detaches an image from the product. The hosted asset stays
// in place.
func (a Admin) RemoveImage(
	ctx context.Context, id, publicID string,
) (domain.Product, error) {
	const op = "Admin.RemoveImage"

	p, err := a.backends.Products.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	images := slices.DeleteFunc(slices.Clone(p.Images), func(img domain.ProductImage) bool {
		return img.PublicID == publicID
	})
	if len(images) == len(p.Images) {
		return domain.Product{}, fmt.Errorf("%s: image %q: %w",
			op, publicID, domain.ErrNotFound)
	}
	p.Images = images

	saved, err := a.backends.Products.UpdateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	a.productSaved(ctx, saved)
	return saved, nil
}

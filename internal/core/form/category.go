package form

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
)

type CategoryForm struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

// ToDomain validates the form. An empty slug is derived from the name.
func (f CategoryForm) ToDomain(id string) (domain.Category, error) {
	if err := check(f); err != nil {
		return domain.Category{}, err
	}

	c := domain.Category{
		ID:   id,
		Name: strings.TrimSpace(f.Name),
		Slug: catalog.Slugify(f.Slug),
	}
	if c.Slug == "" {
		c.Slug = catalog.Slugify(c.Name)
	}
	if c.Slug == "" {
		return domain.Category{}, fieldErrors{"slug": "required"}.err()
	}
	return c, nil
}

package form

import (
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

type BrandForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (f BrandForm) ToDomain(id string) (domain.Brand, error) {
	if err := check(f); err != nil {
		return domain.Brand{}, err
	}
	return domain.Brand{ID: id, Name: strings.TrimSpace(f.Name)}, nil
}

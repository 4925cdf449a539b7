package form

import (
	"errors"

	"github.com/niksmo/storefront/internal/core/domain"
)

type OrderStatusForm struct {
	Status string `json:"status" validate:"required"`
}

// ToDomain returns [domain.ErrInvalidStatus] wrapped into a validation
// error for unknown statuses.
func (f OrderStatusForm) ToDomain() (domain.OrderStatus, error) {
	if err := check(f); err != nil {
		return "", err
	}
	s := domain.OrderStatus(f.Status)
	if !s.Valid() {
		return "", errors.Join(
			domain.ErrInvalidStatus,
			fieldErrors{"status": "oneof"}.err(),
		)
	}
	return s, nil
}

// Package form converts raw form state, where every field is a string,
// into domain values. Each entity has exactly one conversion.
package form

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/niksmo/storefront/internal/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return domain.NewValidationError("validation failed", fields)
}

// fieldErrors collects rules checked after parsing.
type fieldErrors map[string]string

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return domain.NewValidationError("validation failed", fe)
}

// The parse helpers run after validation, so syntax errors are impossible
// and the zero value stands for an empty field.

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}

func parseOptFloat(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := parseFloat(s)
	return &v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(strings.TrimSpace(s))
	return v
}

// splitList splits on newlines and commas, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ','
	}) {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// splitLines splits on newlines only, dropping blanks.
func splitLines(s string) []string {
	var out []string
	for _, v := range strings.Split(s, "\n") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseSpecifications reads "key: value" lines.
func parseSpecifications(s string) (map[string]string, bool) {
	lines := splitLines(s)
	if len(lines) == 0 {
		return nil, true
	}
	specs := make(map[string]string, len(lines))
	for _, line := range lines {
		k, v, ok := strings.Cut(line, ":")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" {
			return nil, false
		}
		specs[k] = v
	}
	return specs, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

func formatSpecifications(specs map[string]string) string {
	keys := slices.Sorted(maps.Keys(specs))
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+specs[k])
	}
	return strings.Join(lines, "\n")
}

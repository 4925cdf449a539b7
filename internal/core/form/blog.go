package form

import (
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/catalog"
	"github.com/niksmo/storefront/internal/core/domain"
)

type BlogPostForm struct {
	Title      string `json:"title" validate:"required"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt" validate:"max=500"`
	Content    string `json:"content" validate:"required"`
	CoverImage string `json:"coverImage" validate:"omitempty,url"`
	Author     string `json:"author"`
	Tags       string `json:"tags"`
	Status     string `json:"status" validate:"required,oneof=draft published archived"`
}

// ToDomain validates the form. Publishing a post stamps PublishedAt with now.
func (f BlogPostForm) ToDomain(id string, now time.Time) (domain.BlogPost, error) {
	if err := check(f); err != nil {
		return domain.BlogPost{}, err
	}

	p := domain.BlogPost{
		ID:         id,
		Title:      strings.TrimSpace(f.Title),
		Slug:       catalog.Slugify(f.Slug),
		Excerpt:    strings.TrimSpace(f.Excerpt),
		Content:    f.Content,
		CoverImage: strings.TrimSpace(f.CoverImage),
		Author:     strings.TrimSpace(f.Author),
		Tags:       splitList(f.Tags),
		Status:     domain.PostStatus(f.Status),
	}
	if p.Slug == "" {
		p.Slug = catalog.Slugify(p.Title)
	}
	if p.Status == domain.PostPublished {
		t := now.UTC()
		p.PublishedAt = &t
	}
	return p, nil
}

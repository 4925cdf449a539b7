package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.BlogBackend = Client{}

const postsPath = "/api/blog/posts"

type post struct {
	ids
	Title       flexString  `json:"title"`
	Slug        flexString  `json:"slug"`
	Excerpt     flexString  `json:"excerpt"`
	Content     flexString  `json:"content"`
	CoverImage  flexString  `json:"coverImage"`
	Author      flexName    `json:"author"`
	Tags        flexStrings `json:"tags"`
	Status      flexString  `json:"status"`
	PublishedAt flexTime    `json:"publishedAt"`
}

func (w post) toDomain() domain.BlogPost {
	status := domain.PostStatus(firstNonEmpty(string(w.Status)))
	if !status.Valid() {
		status = domain.PostDraft
	}
	return domain.BlogPost{
		ID:          w.id(),
		Title:       firstNonEmpty(string(w.Title)),
		Slug:        firstNonEmpty(string(w.Slug)),
		Excerpt:     string(w.Excerpt),
		Content:     string(w.Content),
		CoverImage:  firstNonEmpty(string(w.CoverImage)),
		Author:      string(w.Author),
		Tags:        []string(w.Tags),
		Status:      status,
		PublishedAt: w.PublishedAt.t,
	}
}

type postPayload struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func toPostPayload(p domain.BlogPost) postPayload {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return postPayload{
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		CoverImage:  p.CoverImage,
		Author:      p.Author,
		Tags:        tags,
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
	}
}

// ListPosts lists posts with the given status, or all posts for "".
func (c Client) ListPosts(
	ctx context.Context, status domain.PostStatus,
) ([]domain.BlogPost, error) {
	const op = "Client.ListPosts"

	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}

	data, err := c.get(ctx, postsPath, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ws, _, err := decodeList[post](data, "posts")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]domain.BlogPost, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (c Client) CreatePost(
	ctx context.Context, p domain.BlogPost,
) (domain.BlogPost, error) {
	const op = "Client.CreatePost"
	return c.savePost(ctx, op, http.MethodPost, postsPath, p)
}

func (c Client) UpdatePost(
	ctx context.Context, p domain.BlogPost,
) (domain.BlogPost, error) {
	const op = "Client.UpdatePost"
	path := postsPath + "/" + url.PathEscape(p.ID)
	return c.savePost(ctx, op, http.MethodPut, path, p)
}

func (c Client) savePost(
	ctx context.Context, op, method, path string, p domain.BlogPost,
) (domain.BlogPost, error) {
	data, err := c.send(ctx, method, path, toPostPayload(p))
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	w, err := decodeOne[post](data, "post")
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("%s: %w", op, err)
	}
	return w.toDomain(), nil
}

func (c Client) DeletePost(ctx context.Context, id string) error {
	const op = "Client.DeletePost"

	path := postsPath + "/" + url.PathEscape(id)
	if _, err := c.send(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

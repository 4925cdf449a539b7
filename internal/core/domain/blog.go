package domain

import "time"

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	return s == PostDraft || s == PostPublished || s == PostArchived
}

type BlogPost struct {
	ID          string
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	CoverImage  string
	Author      string
	Tags        []string
	Status      PostStatus
	PublishedAt *time.Time
}

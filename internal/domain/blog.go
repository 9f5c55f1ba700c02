package domain

import "time"

// DefaultBlogCategory is stored when a post is created without a category.
const DefaultBlogCategory = "General"

// MaxBlogTitleLength bounds post titles in characters.
const MaxBlogTitleLength = 200

// Blog is an article written by a trainer.
type Blog struct {
	ID          string
	AuthorID    string
	Title       string
	Content     string
	Category    string
	Tags        []string
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Author is populated on public reads.
	Author *UserSummary
}

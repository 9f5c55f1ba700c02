package dto

import "time"

// BlogRequest payload for creating a post.
type BlogRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
}

// BlogPatchRequest payload for updating a post. Absent fields are left untouched.
type BlogPatchRequest struct {
	Title       *string  `json:"title"`
	Content     *string  `json:"content"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
}

// BlogResponse describes a post.
type BlogResponse struct {
	ID          string         `json:"id"`
	AuthorID    string         `json:"authorId"`
	Author      *PartyResponse `json:"author,omitempty"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	IsPublished bool           `json:"isPublished"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

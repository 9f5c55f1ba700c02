package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fitlab-service/internal/api/dto"
	"github.com/spec-kit/fitlab-service/internal/service"
)

// BlogsHandler exposes the public blog feed and trainer authoring endpoints.
type BlogsHandler struct {
	blogs *service.BlogService
}

// NewBlogsHandler constructs handler.
func NewBlogsHandler(blogs *service.BlogService) *BlogsHandler {
	return &BlogsHandler{blogs: blogs}
}

// List handles GET /api/blogs.
func (h *BlogsHandler) List(c *fiber.Ctx) error {
	blogs, err := h.blogs.ListPublished(c.UserContext(), service.BlogQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		return err
	}
	return ok(c, blogResponses(blogs), "Blogs fetched successfully")
}

// Get handles GET /api/blogs/:id.
func (h *BlogsHandler) Get(c *fiber.Ctx) error {
	blog, err := h.blogs.GetPublished(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, blogResponse(blog), "Blog fetched successfully")
}

// Create handles POST /api/blogs.
func (h *BlogsHandler) Create(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BlogRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	blog, err := h.blogs.CreatePost(c.UserContext(), user, service.BlogInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return err
	}
	return created(c, blogResponse(blog), "Blog created successfully")
}

// MyBlogs handles GET /api/blogs/trainer/my-blogs.
func (h *BlogsHandler) MyBlogs(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	blogs, err := h.blogs.ListByAuthor(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return ok(c, blogResponses(blogs), "Trainer blogs fetched successfully")
}

// Update handles PUT /api/blogs/:id.
func (h *BlogsHandler) Update(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BlogPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	blog, err := h.blogs.UpdatePost(c.UserContext(), user.ID, c.Params("id"), service.BlogPatch{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return err
	}
	return ok(c, blogResponse(blog), "Blog updated successfully")
}

// Delete handles DELETE /api/blogs/:id.
func (h *BlogsHandler) Delete(c *fiber.Ctx) error {
	user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.blogs.DeletePost(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return ok(c, fiber.Map{}, "Blog deleted successfully")
}

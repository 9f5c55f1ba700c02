package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/domain"
	"github.com/spec-kit/fitlab-service/internal/repository"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

// BlogService manages trainer articles. Authors only ever see or touch their own posts; readers see
// published ones.
type BlogService struct {
	blogs  repository.BlogRepository
	logger *zap.Logger
}

// BlogDependencies bundles repositories for the blog service.
type BlogDependencies struct {
	BlogRepo repository.BlogRepository
	Logger   *zap.Logger
}

// NewBlogService constructs the service.
func NewBlogService(deps BlogDependencies) *BlogService {
	return &BlogService{blogs: deps.BlogRepo, logger: nopLogger(deps.Logger)}
}

// BlogInput describes a new post. IsPublished defaults to true.
type BlogInput struct {
	Title       string
	Content     string
	Category    string
	Tags        []string
	IsPublished *bool
}

// BlogPatch carries the fields an author may change. Nil fields are left untouched.
type BlogPatch struct {
	Title       *string
	Content     *string
	Category    *string
	Tags        []string
	IsPublished *bool
}

// BlogQuery filters the public listing.
type BlogQuery struct {
	Search   string
	Category string
}

// CreatePost stores a post written by author.
func (s *BlogService) CreatePost(ctx context.Context, author *domain.User, input BlogInput) (*domain.Blog, error) {
	if author == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if author.Role != domain.RoleTrainer {
		return nil, apperrors.NewForbidden("only trainers can write blogs")
	}
	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	} else if utf8.RuneCountInString(strings.TrimSpace(input.Title)) > domain.MaxBlogTitleLength {
		details["title"] = "too long"
	}
	if strings.TrimSpace(input.Content) == "" {
		details["content"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("title and content are required", details)
	}

	blog := &domain.Blog{
		AuthorID:    author.ID,
		Title:       strings.TrimSpace(input.Title),
		Content:     strings.TrimSpace(input.Content),
		Category:    orDefault(input.Category, domain.DefaultBlogCategory),
		Tags:        normalizeTags(input.Tags),
		IsPublished: input.IsPublished == nil || *input.IsPublished,
	}
	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	s.logger.Info("blog created", zap.String("blog_id", blog.ID), zap.String("author_id", author.ID))
	return blog, nil
}

// UpdatePost applies patch to a post owned by authorID.
func (s *BlogService) UpdatePost(ctx context.Context, authorID, blogID string, patch BlogPatch) (*domain.Blog, error) {
	blog, err := s.getOwned(ctx, authorID, blogID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" || utf8.RuneCountInString(title) > domain.MaxBlogTitleLength {
			return nil, apperrors.NewValidationError("invalid title", map[string]any{"title": *patch.Title})
		}
		blog.Title = title
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, apperrors.NewValidationError("content must not be empty", nil)
		}
		blog.Content = content
	}
	if patch.Category != nil {
		blog.Category = orDefault(*patch.Category, domain.DefaultBlogCategory)
	}
	if patch.Tags != nil {
		blog.Tags = normalizeTags(patch.Tags)
	}
	if patch.IsPublished != nil {
		blog.IsPublished = *patch.IsPublished
	}

	if err := s.blogs.Update(ctx, blog); err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("blog", nil)
		}
		return nil, err
	}
	return blog, nil
}

// DeletePost removes a post owned by authorID.
func (s *BlogService) DeletePost(ctx context.Context, authorID, blogID string) error {
	if !validID(blogID) {
		return apperrors.NewNotFound("blog", nil)
	}
	if err := s.blogs.Delete(ctx, authorID, blogID); err != nil {
		if isNoRows(err) {
			return apperrors.NewNotFound("blog", nil)
		}
		return err
	}
	s.logger.Info("blog deleted", zap.String("blog_id", blogID), zap.String("author_id", authorID))
	return nil
}

// ListPublished returns published posts, newest first.
func (s *BlogService) ListPublished(ctx context.Context, query BlogQuery) ([]domain.Blog, error) {
	var filter repository.BlogFilter
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.Search = &search
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		filter.Category = &category
	}
	blogs, err := s.blogs.ListPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	if blogs == nil {
		blogs = []domain.Blog{}
	}
	return blogs, nil
}

// GetPublished returns one published post. Drafts read as missing.
func (s *BlogService) GetPublished(ctx context.Context, blogID string) (*domain.Blog, error) {
	if !validID(blogID) {
		return nil, apperrors.NewNotFound("blog", nil)
	}
	blog, err := s.blogs.GetPublished(ctx, blogID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("blog", nil)
		}
		return nil, err
	}
	return blog, nil
}

// ListByAuthor returns every post of authorID, drafts included, newest first.
func (s *BlogService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Blog, error) {
	blogs, err := s.blogs.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if blogs == nil {
		blogs = []domain.Blog{}
	}
	return blogs, nil
}

func (s *BlogService) getOwned(ctx context.Context, authorID, blogID string) (*domain.Blog, error) {
	if !validID(blogID) {
		return nil, apperrors.NewNotFound("blog", nil)
	}
	blog, err := s.blogs.GetOwned(ctx, authorID, blogID)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NewNotFound("blog", nil)
		}
		return nil, err
	}
	return blog, nil
}

// normalizeTags trims tags and drops blanks and case-insensitive repeats, keeping first spellings.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/fitlab-service/internal/domain"
)

// BlogFilter narrows the public blog listing.
type BlogFilter struct {
	Search   *string
	Category *string
}

// BlogRepository persists trainer blog posts.
type BlogRepository interface {
	Create(ctx context.Context, blog *domain.Blog) error
	Update(ctx context.Context, blog *domain.Blog) error
	Delete(ctx context.Context, authorID, id string) error
	GetOwned(ctx context.Context, authorID, id string) (*domain.Blog, error)
	GetPublished(ctx context.Context, id string) (*domain.Blog, error)
	ListPublished(ctx context.Context, filter BlogFilter) ([]domain.Blog, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Blog, error)
}

type blogRepository struct {
	pool *pgxpool.Pool
}

// NewBlogRepository instantiates repository.
func NewBlogRepository(pool *pgxpool.Pool) BlogRepository {
	return &blogRepository{pool: pool}
}

const blogColumns = `b.id, b.author_id, b.title, b.content, b.category, b.tags, b.is_published,
        b.created_at, b.updated_at`

// posts by suspended authors stay stored but drop out of public reads
const publishedBlogsFrom = `FROM blogs b
        JOIN users u ON u.id = b.author_id
        WHERE b.is_published AND NOT u.is_suspended`

func (r *blogRepository) Create(ctx context.Context, blog *domain.Blog) error {
	const query = `
        INSERT INTO blogs (author_id, title, content, category, tags, is_published)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		blog.AuthorID,
		blog.Title,
		blog.Content,
		blog.Category,
		blog.Tags,
		blog.IsPublished,
	).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt)
}

func (r *blogRepository) Update(ctx context.Context, blog *domain.Blog) error {
	const query = `
        UPDATE blogs SET title=$1, content=$2, category=$3, tags=$4, is_published=$5, updated_at=NOW()
        WHERE id=$6 AND author_id=$7
        RETURNING updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		blog.Title,
		blog.Content,
		blog.Category,
		blog.Tags,
		blog.IsPublished,
		blog.ID,
		blog.AuthorID,
	).Scan(&blog.UpdatedAt)
}

func (r *blogRepository) Delete(ctx context.Context, authorID, id string) error {
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM blogs WHERE id=$1 AND author_id=$2`, id, authorID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *blogRepository) GetOwned(ctx context.Context, authorID, id string) (*domain.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs b WHERE b.id=$1 AND b.author_id=$2`
	var blog domain.Blog
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id, authorID).Scan(blogDest(&blog)...); err != nil {
		return nil, err
	}
	return &blog, nil
}

func (r *blogRepository) GetPublished(ctx context.Context, id string) (*domain.Blog, error) {
	query := `SELECT ` + blogColumns + `, u.name, u.email ` + publishedBlogsFrom + ` AND b.id=$1`
	var blog domain.Blog
	var name, email string
	dest := append(blogDest(&blog), &name, &email)
	if err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(dest...); err != nil {
		return nil, err
	}
	blog.Author = &domain.UserSummary{ID: blog.AuthorID, Name: name, Email: email}
	return &blog, nil
}

func (r *blogRepository) ListPublished(ctx context.Context, filter BlogFilter) ([]domain.Blog, error) {
	where, args := buildBlogFilter(filter)
	query := `SELECT ` + blogColumns + `, u.name, u.email ` + publishedBlogsFrom + where + ` ORDER BY b.created_at DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Blog
	for rows.Next() {
		var blog domain.Blog
		var name, email string
		if err := rows.Scan(append(blogDest(&blog), &name, &email)...); err != nil {
			return nil, err
		}
		blog.Author = &domain.UserSummary{ID: blog.AuthorID, Name: name, Email: email}
		result = append(result, blog)
	}
	return result, rows.Err()
}

func (r *blogRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Blog, error) {
	query := `SELECT ` + blogColumns + ` FROM blogs b WHERE b.author_id=$1 ORDER BY b.created_at DESC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Blog
	for rows.Next() {
		var blog domain.Blog
		if err := rows.Scan(blogDest(&blog)...); err != nil {
			return nil, err
		}
		result = append(result, blog)
	}
	return result, rows.Err()
}

// buildBlogFilter returns extra AND clauses for the published listing and their arguments.
func buildBlogFilter(filter BlogFilter) (string, []any) {
	var clauses []string
	args := []any{}

	if filter.Category != nil && strings.TrimSpace(*filter.Category) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Category)))
		clauses = append(clauses, fmt.Sprintf("LOWER(b.category)=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(*filter.Search)))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(b.title) LIKE %s OR LOWER(b.content) LIKE %s)", p, p))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " AND " + strings.Join(clauses, " AND "), args
}

func blogDest(blog *domain.Blog) []any {
	return []any{
		&blog.ID,
		&blog.AuthorID,
		&blog.Title,
		&blog.Content,
		&blog.Category,
		&blog.Tags,
		&blog.IsPublished,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	}
}

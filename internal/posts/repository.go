package posts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// pgForeignKeyViolation is the class 23 code raised when a post references a
// user that no longer exists.
const pgForeignKeyViolation = "23503"

// RepositoryPort defines data access methods for posts.
type RepositoryPort interface {
	List(ctx context.Context) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]Post, error)
	Create(ctx context.Context, title, content string, authorID int64) (*Post, error)
	Update(ctx context.Context, id int64, title, content string) (*Post, error)
	Delete(ctx context.Context, id int64) error
	Owner(ctx context.Context, id int64) (int64, error)
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const postColumns = `p.id, p.title, p.content, p.author_id, u.name, p.created_at, p.updated_at`

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.author_id ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// ListByAuthor returns the author's posts, newest first.
func (r *Repository) ListByAuthor(ctx context.Context, authorID int64) ([]Post, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+postColumns+` FROM posts p JOIN users u ON u.id = p.author_id WHERE p.author_id = $1 ORDER BY p.created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// Create inserts a post and returns the stored record.
func (r *Repository) Create(ctx context.Context, title, content string, authorID int64) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (title, content, author_id) VALUES ($1, $2, $3)
			RETURNING id, title, content, author_id, created_at, updated_at
		)
		SELECT p.id, p.title, p.content, p.author_id, u.name, p.created_at, p.updated_at
		FROM inserted p JOIN users u ON u.id = p.author_id`,
		title, content, authorID)
	post, err := scanPost(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// Update rewrites title and content and returns the stored record.
func (r *Repository) Update(ctx context.Context, id int64, title, content string) (*Post, error) {
	row := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE posts SET title = $2, content = $3, updated_at = NOW() WHERE id = $1
			RETURNING id, title, content, author_id, created_at, updated_at
		)
		SELECT p.id, p.title, p.content, p.author_id, u.name, p.created_at, p.updated_at
		FROM updated p JOIN users u ON u.id = p.author_id`,
		id, title, content)
	return scanPost(row)
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Owner returns the post's author id. It implements rbac.OwnerLookup.
func (r *Repository) Owner(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	var post Post
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.AuthorName, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func scanPosts(rows pgx.Rows) ([]Post, error) {
	var result []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.AuthorName, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var _ RepositoryPort = (*Repository)(nil)

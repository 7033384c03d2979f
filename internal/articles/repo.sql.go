package articles

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/factecho/factecho/internal/platform/httpx"
	"github.com/factecho/factecho/internal/shared"
)

const articleColumns = `id, title, slug, content, image, author_id, category_id, views, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for articles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns articles matching the filters plus the unfiltered total.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Article, int, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM articles WHERE 1=1`
	args := []any{}
	argCount := 0

	appendClause := func(clause string, value any) {
		argCount++
		placeholder := "$" + strconv.Itoa(argCount)
		query += clause + placeholder
		countQuery += clause + placeholder
		args = append(args, value)
	}

	if filters.Search != "" {
		argCount++
		placeholder := "$" + strconv.Itoa(argCount)
		clause := ` AND (title ILIKE ` + placeholder + ` OR content ILIKE ` + placeholder + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.CategoryID != uuid.Nil {
		appendClause(` AND category_id = `, filters.CategoryID)
	}
	if filters.AuthorID != uuid.Nil {
		appendClause(` AND author_id = `, filters.AuthorID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy)

	if filters.PerPage > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.PerPage)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.PerPage
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, article)
	}
	return list, total, rows.Err()
}

// Get fetches an article by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	return scanArticleErr(row)
}

// GetBySlug fetches an article by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
	return scanArticleErr(row)
}

// Create inserts a new article.
func (r *Repository) Create(ctx context.Context, a Article) (Article, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO articles (id, title, slug, content, image, author_id, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+articleColumns,
		a.ID, a.Title, a.Slug, a.Content, a.Image, a.AuthorID, a.CategoryID)
	created, err := scanArticle(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Article{}, httpx.ErrDuplicate
			case "23503":
				return Article{}, shared.ErrNotFound
			}
		}
		return Article{}, err
	}
	return created, nil
}

// Update changes the mutable fields of an article.
func (r *Repository) Update(ctx context.Context, a Article) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles SET title = $1, slug = $2, content = $3, image = $4, category_id = $5, updated_at = NOW() WHERE id = $6`,
		a.Title, a.Slug, a.Content, a.Image, a.CategoryID, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes an article.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// AddViews increments the persisted view counter; the flush job calls this
// with totals accumulated in Redis.
func (r *Repository) AddViews(ctx context.Context, id uuid.UUID, delta int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE articles SET views = views + $1 WHERE id = $2`, delta, id)
	return err
}

// Save records an article in a reader's saved list. Saving twice is a no-op.
func (r *Repository) Save(ctx context.Context, userID, articleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO saved_articles (user_id, article_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, articleID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// Unsave removes an article from a reader's saved list.
func (r *Repository) Unsave(ctx context.Context, userID, articleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM saved_articles WHERE user_id = $1 AND article_id = $2`, userID, articleID)
	return err
}

// ListSaved returns a reader's saved articles, most recently saved first.
func (r *Repository) ListSaved(ctx context.Context, userID uuid.UUID) ([]Article, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+prefixedArticleColumns("a")+`
		 FROM articles a
		 JOIN saved_articles s ON s.article_id = a.id
		 WHERE s.user_id = $1
		 ORDER BY s.saved_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, article)
	}
	return list, rows.Err()
}

func sortOrder(sortBy string) string {
	switch sortBy {
	case "views":
		return "views DESC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

func prefixedArticleColumns(alias string) string {
	return alias + ".id, " + alias + ".title, " + alias + ".slug, " + alias + ".content, " +
		alias + ".image, " + alias + ".author_id, " + alias + ".category_id, " + alias + ".views, " +
		alias + ".created_at, " + alias + ".updated_at"
}

func scanArticle(row pgx.Row) (Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Image, &a.AuthorID, &a.CategoryID, &a.Views, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanArticleErr(row pgx.Row) (Article, error) {
	a, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Article{}, shared.ErrNotFound
		}
		return Article{}, err
	}
	return a, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/inklet-app/inklet/backend/internal/posts/domain"
)

var ErrPostNotFound = errors.New("post not found")

type Repository interface {
	List(ctx context.Context, scope domain.Scope, page domain.PageRequest) ([]domain.Post, int, error)
	FindByID(ctx context.Context, id string) (domain.Post, error)
	Create(ctx context.Context, post domain.Post) error
	Update(ctx context.Context, post domain.Post) error
	Delete(ctx context.Context, id string) error
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// List runs the scope + search predicate twice: once for the total count and
// once for the page itself. Ordering is newest-first with id as the tie-break
// so identical timestamps paginate deterministically.
func (r *PgRepository) List(ctx context.Context, scope domain.Scope, page domain.PageRequest) ([]domain.Post, int, error) {
	where, args := buildPredicate(scope, page.Search)

	countQuery := `SELECT COUNT(*) FROM posts p` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.author_id, u.username, p.title, p.content, p.thumbnail, p.created_at
		 FROM posts p
		 JOIN users u ON u.id = p.author_id` + where +
		fmt.Sprintf(` ORDER BY p.created_at DESC, p.id DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)

	rows, err := r.pool.Query(ctx, query, append(args, page.Offset(), page.Limit)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.AuthorName,
			&post.Title,
			&post.Content,
			&post.Thumbnail,
			&post.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func buildPredicate(scope domain.Scope, search string) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	switch scope.Kind {
	case domain.ScopeOnlyCaller:
		args = append(args, scope.CallerID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	case domain.ScopeAllExcludingCaller:
		args = append(args, scope.CallerID)
		conditions = append(conditions, fmt.Sprintf("p.author_id <> $%d", len(args)))
	}

	if search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.content ILIKE $%d)", len(args), len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// escapeLike neutralizes LIKE metacharacters so a search term matches
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Post, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT p.id, p.author_id, u.username, p.title, p.content, p.thumbnail, p.created_at
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`,
		id,
	)

	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.AuthorName,
		&post.Title,
		&post.Content,
		&post.Thumbnail,
		&post.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}

	return post, nil
}

func (r *PgRepository) Create(ctx context.Context, post domain.Post) error {
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO posts (id, author_id, title, content, thumbnail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Content,
		post.Thumbnail,
		post.CreatedAt,
	)
	return err
}

func (r *PgRepository) Update(ctx context.Context, post domain.Post) error {
	tag, err := r.pool.Exec(
		ctx,
		`UPDATE posts SET title = $2, content = $3, thumbnail = $4 WHERE id = $1`,
		post.ID,
		post.Title,
		post.Content,
		post.Thumbnail,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satriawb/postboard/internal/domain/entity"
	"github.com/satriawb/postboard/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postSelect = `
	SELECT p.id, p.title, p.content, p.author_id, COALESCE(p.image, ''),
	       p.created_at, p.updated_at,
	       u.id, u.name, u.email
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Image,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Author.ID, &p.Author.Name, &p.Author.Email)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Create(p *entity.Post) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, content, author_id, image)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at, updated_at
	`, p.Title, p.Content, p.AuthorID, p.Image)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) GetByID(id string) (*entity.Post, error) {
	ctx := context.Background()
	p, err := scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List(page int, search string) (*entity.PostPage, error) {
	return r.list("", page, search)
}

func (r *PostRepository) ListByAuthor(authorID string, page int, search string) (*entity.PostPage, error) {
	return r.list(authorID, page, search)
}

// list runs one pagination window. An empty authorID means all authors; an
// empty search means no title filter. total always counts every match, so
// pages stays stable across windows.
func (r *PostRepository) list(authorID string, page int, search string) (*entity.PostPage, error) {
	ctx := context.Background()
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * repository.PageSize

	rows, err := r.pool.Query(ctx, postSelect+`
		WHERE ($1 = '' OR p.author_id::text = $1)
		  AND ($2 = '' OR p.title ILIKE '%' || $2 || '%')
		ORDER BY p.created_at DESC
		LIMIT $3 OFFSET $4
	`, authorID, search, repository.PageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*entity.Post, 0, repository.PageSize)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM posts p
		WHERE ($1 = '' OR p.author_id::text = $1)
		  AND ($2 = '' OR p.title ILIKE '%' || $2 || '%')
	`, authorID, search).Scan(&total)
	if err != nil {
		return nil, err
	}

	return &entity.PostPage{
		Items: items,
		Total: total,
		Page:  page,
		Pages: PageCount(total),
	}, nil
}

// PageCount is ceil(total/PageSize); zero matches means zero pages.
func PageCount(total int) int {
	return (total + repository.PageSize - 1) / repository.PageSize
}

func (r *PostRepository) Update(p *entity.Post) error {
	ctx := context.Background()
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, content = $2, image = NULLIF($3, ''), updated_at = $4
		WHERE id = $5
	`, p.Title, p.Content, p.Image, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *PostRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)

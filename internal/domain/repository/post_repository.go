package repository

import "github.com/satriawb/postboard/internal/domain/entity"

// PageSize is the fixed pagination window for post listings.
const PageSize = 10

// PostRepository defines the interface for post-related database operations.
// List and ListByAuthor use 1-indexed pages, match search case-insensitively
// against the title as a substring, and order by creation time descending.
type PostRepository interface {
	Create(p *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	List(page int, search string) (*entity.PostPage, error)
	ListByAuthor(authorID string, page int, search string) (*entity.PostPage, error)
	Update(p *entity.Post) error
	Delete(id string) error
}

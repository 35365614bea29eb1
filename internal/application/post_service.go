package application

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/satriawb/postboard/internal/domain/entity"
	repo "github.com/satriawb/postboard/internal/domain/repository"
	"github.com/satriawb/postboard/internal/infrastructure/uploads"
	"github.com/satriawb/postboard/pkg/helpers"
)

// MediaStore is the slice of the upload layer the post service needs.
type MediaStore interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// PostService orchestrates ownership checks and persistence for posts.
// Redis and Elasticsearch are optional; every call path works with them nil.
type PostService struct {
	Posts    repo.PostRepository
	Media    MediaStore
	Redis    *redis.Client
	CacheTTL time.Duration
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewPostService(posts repo.PostRepository, media MediaStore, rdb *redis.Client, cacheTTL time.Duration, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *PostService {
	return &PostService{Posts: posts, Media: media, Redis: rdb, CacheTTL: cacheTTL, Logger: logger, ES: es, ESIndex: esIndex}
}

type CreatePostInput struct {
	Title   string
	Content string
	File    *multipart.FileHeader
}

// UpdatePostInput is a patch: nil fields keep their prior value. A new File
// always replaces the stored image; RemoveImage clears it only when no new
// file accompanies the request.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	File        *multipart.FileHeader
	RemoveImage bool
}

func cacheKey(id string) string { return "post:detail:" + id }

// List returns one public pagination window, optionally filtered by a
// case-insensitive title substring.
func (s *PostService) List(page int, search string) (*entity.PostPage, error) {
	return s.Posts.List(page, search)
}

// ListMine scopes the listing to the caller's own posts.
func (s *PostService) ListMine(callerID string, page int, search string) (*entity.PostPage, error) {
	return s.Posts.ListByAuthor(callerID, page, search)
}

func (s *PostService) Get(ctx context.Context, id string) (*entity.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		var cached entity.Post
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, cacheKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	p, err := s.Posts.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if s.Redis != nil && s.CacheTTL > 0 {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cacheKey(id), p, s.CacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", id).Warn("post cache write failed")
		}
	}
	return p, nil
}

// Create stores the attachment (if any) before the row that references it;
// a crash in between leaves an orphaned file, which is accepted.
func (s *PostService) Create(ctx context.Context, authorID string, in CreatePostInput) (*entity.Post, error) {
	imagePath := ""
	if in.File != nil {
		path, err := s.Media.Save(in.File)
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	p := &entity.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: authorID,
		Image:    imagePath,
	}
	if err := s.Posts.Create(p); err != nil {
		return nil, err
	}

	// Re-read with the author join so the response carries the owner identity.
	created, err := s.Posts.GetByID(p.ID)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)
	return created, nil
}

func (s *PostService) Update(ctx context.Context, id, callerID string, in UpdatePostInput) (*entity.Post, error) {
	p, err := s.authorize(id, callerID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	switch {
	case in.File != nil:
		path, err := s.Media.Save(in.File)
		if err != nil {
			return nil, err
		}
		p.Image = path
	case in.RemoveImage:
		p.Image = ""
	}

	if err := s.Posts.Update(p); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	s.index(ctx, p)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.authorize(id, callerID); err != nil {
		return err
	}
	if err := s.Posts.Delete(id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	s.deindex(ctx, id)
	return nil
}

// authorize loads the post and enforces the owner-only rule. NotFound is
// reported before Forbidden so callers cannot probe other users' post ids.
func (s *PostService) authorize(id, callerID string) (*entity.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}
	p, err := s.Posts.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if p.AuthorID != callerID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *PostService) invalidate(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, cacheKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("post_id", id).Warn("post cache invalidate failed")
	}
}

func (s *PostService) index(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"content":     p.Content,
		"author_id":   p.AuthorID,
		"author_name": p.Author.Name,
		"created_at":  p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *PostService) deindex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over indexed posts. It is a
// supplementary surface; the paginated listing keeps its own ILIKE filter.
func (s *PostService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ MediaStore = (*uploads.LocalStore)(nil)

package application

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/satriawb/postboard/internal/domain/entity"
	"github.com/satriawb/postboard/internal/domain/repository"
	"github.com/satriawb/postboard/internal/infrastructure/uploads"
)

// memPostRepo is an in-memory PostRepository with the same pagination and
// filtering semantics as the SQL implementation.
type memPostRepo struct {
	mu      sync.Mutex
	posts   map[string]*entity.Post
	authors map[string]entity.Summary
	seq     int
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]*entity.Post{}, authors: map[string]entity.Summary{}}
}

func (r *memPostRepo) addAuthor(name, email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.authors[id] = entity.Summary{ID: id, Name: name, Email: email}
	return id
}

func (r *memPostRepo) Create(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Author = r.authors[p.AuthorID]
	return &cp, nil
}

func (r *memPostRepo) List(page int, search string) (*entity.PostPage, error) {
	return r.list("", page, search)
}

func (r *memPostRepo) ListByAuthor(authorID string, page int, search string) (*entity.PostPage, error) {
	return r.list(authorID, page, search)
}

func (r *memPostRepo) list(authorID string, page int, search string) (*entity.PostPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 {
		page = 1
	}
	matched := make([]*entity.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if authorID != "" && p.AuthorID != authorID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(search)) {
			continue
		}
		cp := *p
		cp.Author = r.authors[p.AuthorID]
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := (page - 1) * repository.PageSize
	if start > total {
		start = total
	}
	end := start + repository.PageSize
	if end > total {
		end = total
	}
	return &entity.PostPage{
		Items: matched[start:end],
		Total: total,
		Page:  page,
		Pages: (total + repository.PageSize - 1) / repository.PageSize,
	}, nil
}

func (r *memPostRepo) Update(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// fakeMedia returns canned paths without touching disk.
type fakeMedia struct {
	next  string
	fail  error
	calls int
}

func (f *fakeMedia) Save(_ *multipart.FileHeader) (string, error) {
	f.calls++
	if f.fail != nil {
		return "", f.fail
	}
	return f.next, nil
}

func newService(repo repository.PostRepository, media MediaStore) *PostService {
	return NewPostService(repo, media, nil, 0, nil, nil, "")
}

func createPost(t *testing.T, svc *PostService, authorID, title, content string) *entity.Post {
	t.Helper()
	p, err := svc.Create(context.Background(), authorID, CreatePostInput{Title: title, Content: content})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func TestCreateReturnsAuthorIdentity(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	svc := newService(repo, &fakeMedia{})

	p := createPost(t, svc, ann, "Hi", "World")
	if p.AuthorID != ann {
		t.Errorf("author id %q, want %q", p.AuthorID, ann)
	}
	if p.Author.Name != "Ann" || p.Author.Email != "ann@x.com" {
		t.Errorf("author identity not joined: %+v", p.Author)
	}
}

func TestCreateWithUnsupportedFile(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	svc := newService(repo, &fakeMedia{fail: uploads.ErrUnsupportedType})

	_, err := svc.Create(context.Background(), ann, CreatePostInput{
		Title: "Hi", Content: "World", File: &multipart.FileHeader{Filename: "x.png"},
	})
	if !errors.Is(err, uploads.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	// The rejected upload must not leave a post behind.
	page, _ := svc.List(1, "")
	if page.Total != 0 {
		t.Errorf("expected no posts, got %d", page.Total)
	}
}

func TestUpdateOwnershipEnforced(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	bob := repo.addAuthor("Bob", "bob@x.com")
	svc := newService(repo, &fakeMedia{})

	p := createPost(t, svc, ann, "Hi", "World")

	title := "Hijacked"
	_, err := svc.Update(context.Background(), p.ID, bob, UpdatePostInput{Title: &title})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Hi" {
		t.Errorf("title changed by non-owner: %q", got.Title)
	}
}

func TestUpdatePatchSemantics(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	media := &fakeMedia{next: "/uploads/1-a.png"}
	svc := newService(repo, media)

	p, err := svc.Create(context.Background(), ann, CreatePostInput{
		Title: "Hi", Content: "World", File: &multipart.FileHeader{Filename: "a.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Image != "/uploads/1-a.png" {
		t.Fatalf("image not stored: %q", p.Image)
	}

	// Updating only the title keeps content and image untouched.
	title := "Hello"
	got, err := svc.Update(context.Background(), p.ID, ann, UpdatePostInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Hello" || got.Content != "World" || got.Image != "/uploads/1-a.png" {
		t.Errorf("patch leaked into other fields: %+v", got)
	}

	// A new file replaces the image outright.
	media.next = "/uploads/2-b.png"
	got, err = svc.Update(context.Background(), p.ID, ann, UpdatePostInput{File: &multipart.FileHeader{Filename: "b.png"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Image != "/uploads/2-b.png" {
		t.Errorf("image not replaced: %q", got.Image)
	}

	// Explicit removal clears it when no file accompanies the request.
	got, err = svc.Update(context.Background(), p.ID, ann, UpdatePostInput{RemoveImage: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Image != "" {
		t.Errorf("image not cleared: %q", got.Image)
	}

	// RemoveImage loses against a new file in the same request.
	media.next = "/uploads/3-c.png"
	got, err = svc.Update(context.Background(), p.ID, ann, UpdatePostInput{
		File: &multipart.FileHeader{Filename: "c.png"}, RemoveImage: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Image != "/uploads/3-c.png" {
		t.Errorf("new file should win over remove_image: %q", got.Image)
	}
}

func TestDeleteTwice(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	svc := newService(repo, &fakeMedia{})

	p := createPost(t, svc, ann, "Hi", "World")

	if err := svc.Delete(context.Background(), p.ID, ann); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID, ann); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("second delete: expected ErrPostNotFound, got %v", err)
	}
}

func TestDeleteForbiddenForNonOwner(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	bob := repo.addAuthor("Bob", "bob@x.com")
	svc := newService(repo, &fakeMedia{})

	p := createPost(t, svc, ann, "Hi", "World")
	if err := svc.Delete(context.Background(), p.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGetInvalidIDIsNotFound(t *testing.T) {
	svc := newService(newMemPostRepo(), &fakeMedia{})
	if _, err := svc.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.NewString()); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound for unknown id, got %v", err)
	}
}

func TestListPagesAreDisjointAndExhaustive(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	svc := newService(repo, &fakeMedia{})

	const n = 25
	created := map[string]bool{}
	for i := 0; i < n; i++ {
		p := createPost(t, svc, ann, "Post", "content")
		created[p.ID] = true
	}

	seen := map[string]bool{}
	page1, err := svc.List(1, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page1.Total != n || page1.Pages != 3 {
		t.Fatalf("total=%d pages=%d, want %d and 3", page1.Total, page1.Pages, n)
	}
	var prev time.Time
	for page := 1; page <= page1.Pages; page++ {
		res, err := svc.List(page, "")
		if err != nil {
			t.Fatalf("list page %d: %v", page, err)
		}
		for _, p := range res.Items {
			if seen[p.ID] {
				t.Errorf("post %s returned on more than one page", p.ID)
			}
			seen[p.ID] = true
			if !prev.IsZero() && p.CreatedAt.After(prev) {
				t.Error("ordering is not descending by creation time")
			}
			prev = p.CreatedAt
		}
	}
	if len(seen) != n {
		t.Errorf("union over pages has %d posts, want %d", len(seen), n)
	}
	for id := range created {
		if !seen[id] {
			t.Errorf("post %s missing from union of pages", id)
		}
	}
}

func TestListSearchIsCaseInsensitiveSubstring(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	svc := newService(repo, &fakeMedia{})

	createPost(t, svc, ann, "Kubernetes Notes", "c")
	createPost(t, svc, ann, "Shopping list", "c")
	createPost(t, svc, ann, "More KUBERNETES tips", "c")

	res, err := svc.List(1, "kubernetes")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total=%d, want 2", res.Total)
	}
}

func TestListMineScopesToCaller(t *testing.T) {
	repo := newMemPostRepo()
	ann := repo.addAuthor("Ann", "ann@x.com")
	bob := repo.addAuthor("Bob", "bob@x.com")
	svc := newService(repo, &fakeMedia{})

	createPost(t, svc, ann, "Ann post", "c")
	createPost(t, svc, bob, "Bob post", "c")

	res, err := svc.ListMine(ann, 1, "")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if res.Total != 1 || res.Items[0].AuthorID != ann {
		t.Errorf("my-posts listing not scoped: total=%d", res.Total)
	}
}

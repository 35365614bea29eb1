package entity

import (
	"time"
)

// MaxTitleLen is the longest title a post may carry.
const MaxTitleLen = 160

// Post is the aggregate root for the content domain. Image holds the
// relative storage path (e.g. "/uploads/169...-abcd.png"); absolute URLs are
// derived per request and never stored. AuthorID is immutable after creation
// and the only identity allowed to mutate or delete the post.
type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	Image     string // empty means no attachment
	CreatedAt time.Time
	UpdatedAt time.Time

	// Author carries the owning user's public identity when the post was
	// loaded with its join (list, get by id).
	Author Summary
}

// PostPage is one pagination window of a post listing.
type PostPage struct {
	Items []*Post
	Total int
	Page  int
	Pages int
}

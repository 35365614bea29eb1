package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/satriawb/postboard/internal/application"
	"github.com/satriawb/postboard/internal/domain/entity"
	"github.com/satriawb/postboard/internal/infrastructure/uploads"
	"github.com/satriawb/postboard/internal/interface/middleware"
	"github.com/satriawb/postboard/pkg/response"
	"github.com/satriawb/postboard/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
	// BaseURL overrides the request-derived origin for image URLs when set.
	BaseURL string
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger, baseURL string) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger, BaseURL: baseURL}
}

type createPostRequest struct {
	Title   string `form:"title" binding:"required,max=160"`
	Content string `form:"content" binding:"required"`
}

// origin is the scheme+host image URLs are rewritten against for this request.
func (h *PostHandler) origin(c *gin.Context) string {
	if h.BaseURL != "" {
		return h.BaseURL
	}
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// postView shapes a post for the client: author identity joined in, image
// rewritten to an absolute URL, password-free.
func postView(p *entity.Post, origin string) gin.H {
	var image any
	if p.Image != "" {
		image = uploads.AbsoluteURL(p.Image, origin)
	}
	return gin.H{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"author":     p.Author,
		"image":      image,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func pageView(page *entity.PostPage, origin string) gin.H {
	items := make([]gin.H, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, postView(p, origin))
	}
	return gin.H{
		"results": items,
		"total":   page.Total,
		"page":    page.Page,
		"pages":   page.Pages,
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// List GET /api/posts?page=&search=
func (h *PostHandler) List(c *gin.Context) {
	page, err := h.Svc.List(pageParam(c), c.Query("search"))
	if err != nil {
		h.Logger.WithError(err).Error("list posts failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list posts", nil)
		return
	}
	response.Success(c, http.StatusOK, pageView(page, h.origin(c)), "posts", nil)
}

// ListMine GET /api/posts/mine?page=&search= (auth required)
func (h *PostHandler) ListMine(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	page, err := h.Svc.ListMine(uid, pageParam(c), c.Query("search"))
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("list my posts failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list posts", nil)
		return
	}
	response.Success(c, http.StatusOK, pageView(page, h.origin(c)), "my posts", nil)
}

// Search GET /api/posts/search?q=&size=
func (h *PostHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.Logger.WithError(err).Error("post search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": hits}, "search results", nil)
}

// Get GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrPostNotFound) {
			response.Error[any](c, http.StatusNotFound, "post not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get post failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load post", nil)
		return
	}
	response.Success(c, http.StatusOK, postView(p, h.origin(c)), "post", nil)
}

// Create POST /api/posts (multipart, auth required)
func (h *PostHandler) Create(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	var req createPostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "title and content required", validation.ToDetails(err))
		return
	}

	in := application.CreatePostInput{Title: req.Title, Content: req.Content}
	if fh, err := c.FormFile("image"); err == nil {
		in.File = fh
	}

	p, err := h.Svc.Create(c.Request.Context(), uid, in)
	if err != nil {
		if errors.Is(err, uploads.ErrUnsupportedType) {
			response.Error[any](c, http.StatusBadRequest, "only images are allowed", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("create post failed")
		response.Error[any](c, http.StatusInternalServerError, "could not create post", nil)
		return
	}

	response.Success(c, http.StatusCreated, postView(p, h.origin(c)), "post created successfully", nil)
}

// Update PUT /api/posts/:id (multipart, auth required)
// Absent fields keep their prior values. A new image file replaces the old
// one; sending remove_image=true without a file clears the attachment.
func (h *PostHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	in := application.UpdatePostInput{}
	if title, ok := c.GetPostForm("title"); ok {
		if len(title) == 0 || len(title) > entity.MaxTitleLen {
			response.Error[any](c, http.StatusBadRequest, "invalid title", gin.H{"title": "must be 1-160 characters"})
			return
		}
		in.Title = &title
	}
	if content, ok := c.GetPostForm("content"); ok {
		if content == "" {
			response.Error[any](c, http.StatusBadRequest, "invalid content", gin.H{"content": "is required"})
			return
		}
		in.Content = &content
	}
	if fh, err := c.FormFile("image"); err == nil {
		in.File = fh
	}
	if v, ok := c.GetPostForm("remove_image"); ok {
		in.RemoveImage = v == "true" || v == "1"
	}

	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), uid, in)
	if err != nil {
		h.writePostError(c, uid, err, "update post failed")
		return
	}

	response.Success(c, http.StatusOK, postView(p, h.origin(c)), "post updated successfully", nil)
}

// Delete DELETE /api/posts/:id (auth required)
func (h *PostHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)

	if err := h.Svc.Delete(c.Request.Context(), c.Param("id"), uid); err != nil {
		h.writePostError(c, uid, err, "delete post failed")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post deleted successfully", nil)
}

func (h *PostHandler) writePostError(c *gin.Context, uid string, err error, logMsg string) {
	switch {
	case errors.Is(err, application.ErrPostNotFound):
		response.Error[any](c, http.StatusNotFound, "post not found", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, uploads.ErrUnsupportedType):
		response.Error[any](c, http.StatusBadRequest, "only images are allowed", nil)
	default:
		h.Logger.WithError(err).WithField("user_id", uid).Error(logMsg)
		response.Error[any](c, http.StatusInternalServerError, "request failed", nil)
	}
}

package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/satriawb/postboard/internal/interface/http"
	"github.com/satriawb/postboard/internal/interface/middleware"
	"github.com/satriawb/postboard/pkg/helpers"
)

// PostModule wires post HTTP handlers and the bearer-token gateway into routes.
// Public: GET /api/posts, GET /api/posts/search, GET /api/posts/:id
// Protected: GET /api/posts/mine, POST /api/posts, PUT/DELETE /api/posts/:id
type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Handler: h, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	// Public reads skip authentication entirely
	rg.GET("/posts", m.Handler.List)
	rg.GET("/posts/search", m.Handler.Search)
	rg.GET("/posts/:id", m.Handler.Get)

	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.JWT))
	{
		auth.GET("/posts/mine", m.Handler.ListMine)
		auth.POST("/posts", m.Handler.Create)
		auth.PUT("/posts/:id", m.Handler.Update)
		auth.DELETE("/posts/:id", m.Handler.Delete)
	}
}

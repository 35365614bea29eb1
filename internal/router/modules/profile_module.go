package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/satriawb/postboard/internal/interface/http"
	"github.com/satriawb/postboard/internal/interface/middleware"
	"github.com/satriawb/postboard/pkg/helpers"
)

type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.JWT))
	{
		auth.GET("/profile", m.Handler.Get)
		auth.PUT("/profile", m.Handler.Update)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}
}

package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/satriawb/postboard/internal/interface/http"
)

// AuthModule exposes the two unauthenticated credential endpoints.
// Registration and login bypass the auth gateway by design.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
}

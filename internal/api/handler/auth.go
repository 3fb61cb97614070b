package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			response.ParamError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.AuthError(c, err.Error())
		} else {
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// GoogleAuth 跳转 Google 授权页
// GET /api/v1/auth/google
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	state := c.Query("state")
	response.Success(c, gin.H{
		"auth_url": h.authService.GetGoogleAuthURL(state),
	})
}

// GoogleCallback Google OAuth 回调
// GET /api/v1/auth/google/callback?code=xxx
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.ParamError(c, "missing code")
		return
	}

	resp, err := h.authService.GoogleLogin(c.Request.Context(), code)
	if err != nil {
		response.AuthError(c, "Google sign-in failed")
		return
	}

	response.Success(c, resp)
}

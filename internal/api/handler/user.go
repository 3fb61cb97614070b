package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/everwith_go_server/internal/api/middleware"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/response"
	"github.com/qs3c/everwith_go_server/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// GetProfile 获取当前用户信息
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		response.NotFoundError(c, "user not found")
		return
	}

	response.Success(c, &dto.UserInfo{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		AvatarURL:        user.AvatarURL,
		SubscriptionTier: user.SubscriptionTier,
		Credits:          user.Credits,
		CreatedAt:        user.CreatedAt.Format(time.RFC3339),
	})
}

package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=32"`
}

// RegisterResponse 注册响应
type RegisterResponse struct {
	UserID  int64  `json:"user_id"`
	Token   string `json:"token"`
	Credits int    `json:"credits"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// GoogleLoginRequest Google 登录请求（授权码换取）
type GoogleLoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	SubscriptionTier string `json:"subscription_tier"`
	Credits          int    `json:"credits"`
	CreatedAt        string `json:"created_at,omitempty"`
}

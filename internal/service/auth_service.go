package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/jwt"
	"github.com/qs3c/everwith_go_server/internal/pkg/oauth"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	userRepo    *repository.UserRepository
	creditRepo  *repository.CreditRepository
	cfg         *config.Config
	googleOAuth *oauth.GoogleOAuth
	now         func() time.Time
}

func NewAuthService(userRepo *repository.UserRepository, creditRepo *repository.CreditRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		creditRepo: creditRepo,
		cfg:        cfg,
		googleOAuth: oauth.NewGoogleOAuth(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURI,
		),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Register 注册并发放初始积分
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	exists, err := s.userRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.createUser(req.Email, req.Name, "", nil, string(hashedPassword))
	if err != nil {
		return nil, err
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Token:   token,
		Credits: user.Credits,
	}, nil
}

// Login 邮箱密码登录
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  s.buildUserInfo(user),
	}, nil
}

// GetGoogleAuthURL 获取 Google 授权 URL
func (s *AuthService) GetGoogleAuthURL(state string) string {
	return s.googleOAuth.GetAuthURL(state)
}

// GoogleLogin 处理 Google OAuth 回调，首次登录自动建号
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*dto.LoginResponse, error) {
	token, err := s.googleOAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	googleUser, err := s.googleOAuth.GetUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user: %w", err)
	}

	user, err := s.userRepo.GetByGoogleID(googleUser.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if user == nil {
		// 同邮箱已有密码账号时直接绑定，不重复建号
		existing, err := s.userRepo.GetByEmail(googleUser.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			existing.GoogleID = &googleUser.ID
			if existing.AvatarURL == "" {
				existing.AvatarURL = googleUser.AvatarURL
			}
			if err := s.userRepo.Update(existing); err != nil {
				return nil, err
			}
			user = existing
		} else {
			user, err = s.createUser(googleUser.Email, googleUser.Name, googleUser.AvatarURL, &googleUser.ID, "")
			if err != nil {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
		}
	}

	jwtToken, err := jwt.GenerateToken(user.ID, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: jwtToken,
		User:  s.buildUserInfo(user),
	}, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(id int64) (*model.User, error) {
	return s.userRepo.GetByID(id)
}

func (s *AuthService) createUser(email, name, avatarURL string, googleID *string, passwordHash string) (*model.User, error) {
	now := s.now()
	user := &model.User{
		Email:                 email,
		Name:                  name,
		AvatarURL:             avatarURL,
		GoogleID:              googleID,
		SubscriptionTier:      model.TierFree,
		Credits:               s.cfg.Credits.InitialSignupCredits,
		MonthlyCreditsResetAt: &now,
	}
	if passwordHash != "" {
		user.PasswordHash = &passwordHash
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if user.Credits > 0 {
		if _, err := s.creditRepo.Append(&model.CreditTransaction{
			UserID:      user.ID,
			Credits:     user.Credits,
			Type:        model.CreditKindReward,
			Description: "Welcome credits",
			CreatedAt:   now,
		}); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *AuthService) buildUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		AvatarURL:        user.AvatarURL,
		SubscriptionTier: user.SubscriptionTier,
		Credits:          user.Credits,
		CreatedAt:        user.CreatedAt.Format(time.RFC3339),
	}
}

package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model"
)

// TestConfig 带全部业务常量的测试配置
func TestConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:      "test-secret-key-for-testing",
			ExpireHours: 24,
		},
		Credits: config.CreditsConfig{
			Costs: map[string]int{
				"photo_restore":    1,
				"memory_merge":     2,
				"cinematic_filter": 3,
			},
			DefaultCost:          1,
			FreeMonthlyCredits:   3,
			InitialSignupCredits: 3,
			PremiumSoftLimit:     100,
			PremiumUpgradeBonus:  50,
			PremiumYearlyBonus:   200,
		},
		FairUse: config.FairUseConfig{
			SoftLimit:     100,
			CooldownLimit: 150,
		},
		Share: config.ShareConfig{
			Platforms:            []string{"instagram", "tiktok"},
			RequiredHashtag:      "#everwithapp",
			MaxRewardsPerDay:     3,
			CooldownHours:        6,
			RewardCredits:        1,
			VerifyTimeoutSeconds: 5,
		},
		Products: config.ProductsConfig{
			CreditPacks: map[string]int{
				"credits_5":  5,
				"credits_10": 10,
				"credits_25": 25,
				"credits_50": 50,
			},
		},
		Pricing: config.PricingConfig{
			MonthlyPrice: 9.99,
			YearlyPrice:  69.99,
			Currency:     "GBP",
			TrialDays:    7,
		},
	}
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	now := time.Now().UTC()
	user := &model.User{
		Email:                 fmt.Sprintf("test_%d@example.com", time.Now().UnixNano()),
		Name:                  fmt.Sprintf("Test User %d", time.Now().UnixNano()%10000),
		PasswordHash:          &passwordHash,
		SubscriptionTier:      model.TierFree,
		Credits:               3,
		MonthlyCreditsResetAt: &now,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithTier 设置订阅档位
func WithTier(tier string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = tier
		if model.IsPremiumTier(tier) {
			expires := time.Now().UTC().Add(30 * 24 * time.Hour)
			u.SubscriptionExpiresAt = &expires
			now := time.Now().UTC()
			u.PremiumUsageResetAt = &now
		}
	}
}

// WithCredits 设置积分余额
func WithCredits(credits int) func(*model.User) {
	return func(u *model.User) {
		u.Credits = credits
	}
}

// WithCreditsResetAt 设置免费积分水位线
func WithCreditsResetAt(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.MonthlyCreditsResetAt = &at
	}
}

// WithPremiumUsage 设置会员月用量及水位线
func WithPremiumUsage(used int, resetAt time.Time) func(*model.User) {
	return func(u *model.User) {
		u.PremiumUsageThisMonth = used
		u.PremiumUsageResetAt = &resetAt
	}
}

// TestShareEvent 创建已核验的分享事件
func TestShareEvent(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.ShareEvent)) *model.ShareEvent {
	t.Helper()

	now := time.Now().UTC()
	url := fmt.Sprintf("https://instagram.com/p/%d", time.Now().UnixNano())
	event := &model.ShareEvent{
		UserID:             userID,
		Platform:           "instagram",
		ShareURL:           &url,
		RewardCredits:      1,
		VerificationStatus: model.ShareStatusVerified,
		CreatedAt:          now,
		VerifiedAt:         &now,
	}

	for _, opt := range opts {
		opt(event)
	}

	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test share event: %v", err)
	}

	return event
}

// WithShareCreatedAt 设置分享创建时间
func WithShareCreatedAt(at time.Time) func(*model.ShareEvent) {
	return func(e *model.ShareEvent) {
		e.CreatedAt = at
	}
}

// WithShareURL 设置分享链接
func WithShareURL(url string) func(*model.ShareEvent) {
	return func(e *model.ShareEvent) {
		e.ShareURL = &url
	}
}

// TestSubscription 创建订阅记录
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, tier, status string) *model.Subscription {
	t.Helper()

	now := time.Now().UTC()
	sub := &model.Subscription{
		UserID:        userID,
		Tier:          tier,
		Status:        status,
		StartDate:     now,
		EndDate:       now.Add(30 * 24 * time.Hour),
		AutoRenew:     true,
		TransactionID: fmt.Sprintf("txn_%d", time.Now().UnixNano()),
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// TestJob 创建处理任务
func TestJob(t *testing.T, db *gorm.DB, userID int64, status string) *model.ProcessingJob {
	t.Helper()

	job := &model.ProcessingJob{
		UserID:     userID,
		Mode:       "restore",
		SourceURLs: "https://cdn.example.com/photos/1.jpg",
		Status:     status,
	}

	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create test job: %v", err)
	}

	return job
}

package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/period"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrMissingHashtag      = errors.New("required hashtag missing")
	ErrShareURLUnreachable = errors.New("share URL is not reachable")
	ErrDuplicateShareURL   = errors.New("share URL already submitted")
	ErrDailyShareLimit     = errors.New("daily share reward limit reached")
)

// HTTPDoer 测试时注入假客户端
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ShareService 分享奖励：按固定顺序核验（平台 -> 话题标签 -> 链接可达 ->
// 去重 -> 当日上限 -> 冷却）。重复链接直接拒绝；冷却期内不算错误，
// 返回 AlreadyClaimed 和预计等待时间，不发奖也不建新事件。
type ShareService struct {
	shareRepo  *repository.ShareRepository
	userRepo   *repository.UserRepository
	creditRepo *repository.CreditRepository
	cfg        *config.Config
	httpClient HTTPDoer
	now        func() time.Time
}

func NewShareService(
	shareRepo *repository.ShareRepository,
	userRepo *repository.UserRepository,
	creditRepo *repository.CreditRepository,
	cfg *config.Config,
) *ShareService {
	timeout := time.Duration(cfg.Share.VerifyTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ShareService{
		shareRepo:  shareRepo,
		userRepo:   userRepo,
		creditRepo: creditRepo,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// VerifyAndReward 核验一次分享并发放奖励
func (s *ShareService) VerifyAndReward(userID int64, req *dto.ShareVerificationRequest) (*dto.ShareVerificationResponse, error) {
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if !s.platformAllowed(platform) {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedPlatform, req.Platform, strings.Join(s.cfg.Share.Platforms, ", "))
	}

	if !s.hasRequiredHashtag(req.Caption, req.Hashtags) {
		return nil, fmt.Errorf("%w: include %s in your post", ErrMissingHashtag, s.cfg.Share.RequiredHashtag)
	}

	shareURL := strings.TrimSpace(req.ShareURL)
	if shareURL != "" {
		if err := s.checkReachable(shareURL); err != nil {
			return nil, err
		}

		// 同一链接终身只收一次
		exists, err := s.shareRepo.ExistsByUserAndURL(userID, shareURL)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: this post has already been submitted", ErrDuplicateShareURL)
		}
	}

	now := s.now()

	count, err := s.shareRepo.CountVerifiedSince(userID, period.DayStart(now))
	if err != nil {
		return nil, err
	}
	if int(count) >= s.cfg.Share.MaxRewardsPerDay {
		return nil, fmt.Errorf("%w (%d per day)", ErrDailyShareLimit, s.cfg.Share.MaxRewardsPerDay)
	}

	latest, err := s.shareRepo.LatestVerified(userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		cooldown := time.Duration(s.cfg.Share.CooldownHours) * time.Hour
		if elapsed := now.Sub(latest.CreatedAt); elapsed < cooldown {
			user, err := s.userRepo.GetByID(userID)
			if err != nil {
				return nil, err
			}
			// 向上取整到小时
			hours := int((cooldown-elapsed)/time.Hour) + 1
			return &dto.ShareVerificationResponse{
				Message:          fmt.Sprintf("You can earn another share credit in about %d hour(s)", hours),
				AlreadyClaimed:   true,
				CreditsAwarded:   0,
				NewCreditBalance: user.Credits,
				VerificationID:   latest.ID,
			}, nil
		}
	}

	reward := s.cfg.Share.RewardCredits
	event := &model.ShareEvent{
		UserID:             userID,
		Platform:           platform,
		Caption:            req.Caption,
		Hashtags:           normalizeHashtags(req.Hashtags),
		RewardCredits:      reward,
		VerificationStatus: model.ShareStatusVerified,
		CreatedAt:          now,
		VerifiedAt:         &now,
	}
	if shareURL != "" {
		event.ShareURL = &shareURL
	}
	if err := s.shareRepo.Create(event); err != nil {
		return nil, err
	}

	if err := s.userRepo.AddCredits(userID, reward); err != nil {
		return nil, err
	}
	if _, err := s.creditRepo.Append(&model.CreditTransaction{
		UserID:      userID,
		Credits:     reward,
		Type:        model.CreditKindReward,
		Description: fmt.Sprintf("Share reward (%s)", platform),
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	if err := s.shareRepo.UpsertStats(userID, reward, now); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	return &dto.ShareVerificationResponse{
		Message:          fmt.Sprintf("Thanks for sharing! %d credit(s) added", reward),
		CreditsAwarded:   reward,
		NewCreditBalance: user.Credits,
		VerificationID:   event.ID,
	}, nil
}

// GetStats 分享统计（含今日已领取次数）
func (s *ShareService) GetStats(userID int64) (*dto.ShareStats, error) {
	stats, err := s.shareRepo.GetStats(userID)
	if err != nil {
		return nil, err
	}
	today, err := s.shareRepo.CountVerifiedSince(userID, period.DayStart(s.now()))
	if err != nil {
		return nil, err
	}
	return &dto.ShareStats{
		TotalShares:             stats.TotalShares,
		CreditsEarnedFromShares: stats.CreditsEarnedFromShares,
		VerifiedToday:           int(today),
		DailyLimit:              s.cfg.Share.MaxRewardsPerDay,
	}, nil
}

func (s *ShareService) platformAllowed(platform string) bool {
	for _, p := range s.cfg.Share.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

// 标签在 caption 或 hashtags 列表里出现都算，不区分大小写
func (s *ShareService) hasRequiredHashtag(caption string, hashtags []string) bool {
	required := strings.ToLower(s.cfg.Share.RequiredHashtag)
	if strings.Contains(strings.ToLower(caption), required) {
		return true
	}
	for _, tag := range hashtags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == required || "#"+tag == required {
			return true
		}
	}
	return false
}

// checkReachable HEAD 探测链接是否有效（2xx/3xx 都算可达）
func (s *ShareService) checkReachable(shareURL string) error {
	req, err := http.NewRequest(http.MethodHead, shareURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrShareURLUnreachable, shareURL)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrShareURLUnreachable, shareURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: got status %d", ErrShareURLUnreachable, resp.StatusCode)
	}
	return nil
}

func normalizeHashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}

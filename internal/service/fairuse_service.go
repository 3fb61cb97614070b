package service

import (
	"fmt"
	"time"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/period"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

// 降速档位：正常 / 超过软限制 / 进入冷却区
const (
	speedNormal   = 1.0
	speedSlowed   = 1.2
	speedCooldown = 1.5
)

// 用量达到软限制的这个比例时开始提示
const approachingRatio = 0.8

// FairUseService 公平使用软限流。只记录、提示和降速，从不拒绝请求，
// 拦截是 EntitlementService 的事。
type FairUseService struct {
	usageRepo *repository.UsageRepository
	cfg       *config.Config
	now       func() time.Time
}

func NewFairUseService(usageRepo *repository.UsageRepository, cfg *config.Config) *FairUseService {
	return &FairUseService{
		usageRepo: usageRepo,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordUsage 当月用量 +1（upsert，月份切换自然从 0 开始）
func (s *FairUseService) RecordUsage(userID int64) error {
	now := s.now()
	return s.usageRepo.Increment(userID, period.MonthKey(now), now)
}

// GetStatus 当月用量状态与降速系数
func (s *FairUseService) GetStatus(userID int64) (*dto.UsageStatus, error) {
	count, err := s.usageRepo.GetCount(userID, period.MonthKey(s.now()))
	if err != nil {
		return nil, err
	}
	return s.buildStatus(count), nil
}

func (s *FairUseService) buildStatus(count int) *dto.UsageStatus {
	soft := s.cfg.FairUse.SoftLimit
	cooldown := s.cfg.FairUse.CooldownLimit

	status := &dto.UsageStatus{
		UsageCount:                count,
		SoftLimit:                 soft,
		CooldownLimit:             cooldown,
		ProcessingSpeedMultiplier: speedNormal,
		RemainingUntilSoftLimit:   maxInt(soft-count, 0),
		RemainingUntilCooldown:    maxInt(cooldown-count, 0),
	}

	switch {
	case count >= cooldown:
		status.InCooldown = true
		status.AtSoftLimit = true
		status.ApproachingLimit = true
		status.ProcessingSpeedMultiplier = speedCooldown
		status.EstimatedWaitSeconds = 60
		status.Message = fmt.Sprintf("Heavy usage detected (%d edits this month). Processing is temporarily slowed down", count)
	case count >= soft:
		status.AtSoftLimit = true
		status.ApproachingLimit = true
		status.ProcessingSpeedMultiplier = speedSlowed
		status.Message = fmt.Sprintf("You've reached %d edits this month. Processing may be slightly slower during peak hours", count)
	case float64(count) >= float64(soft)*approachingRatio:
		status.ApproachingLimit = true
		status.Message = fmt.Sprintf("You've used %d of %d fast edits this month", count, soft)
	}

	return status
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

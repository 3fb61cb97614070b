package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/period"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

var (
	// 以下都是正常业务结果，不是系统错误，不进 error 日志
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrSoftLimitReached    = errors.New("monthly usage limit reached")
	// Consume 在 CheckAccess 通过后仍失败：并发请求抢走了最后的额度
	ErrConsumeConflict = errors.New("entitlement consumed concurrently, retry once")
)

// 服务类型标识（与积分消耗表的键一致）
const (
	ServicePhotoRestore    = "photo_restore"
	ServiceMemoryMerge     = "memory_merge"
	ServiceCinematicFilter = "cinematic_filter"
)

// 客户端 mode 别名 -> 服务类型
var modeAliases = map[string]string{
	"restore":   ServicePhotoRestore,
	"together":  ServiceMemoryMerge,
	"cinematic": ServiceCinematicFilter,
}

// EntitlementService 准入与计费核心：回答“这个用户现在能不能用这个服务、花多少”，
// 并在放行时原子地落账。
type EntitlementService struct {
	userRepo   *repository.UserRepository
	creditRepo *repository.CreditRepository
	usageRepo  *repository.UsageRepository
	cfg        *config.Config
	now        func() time.Time
}

func NewEntitlementService(
	userRepo *repository.UserRepository,
	creditRepo *repository.CreditRepository,
	usageRepo *repository.UsageRepository,
	cfg *config.Config,
) *EntitlementService {
	return &EntitlementService{
		userRepo:   userRepo,
		creditRepo: creditRepo,
		usageRepo:  usageRepo,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ResolveService mode 别名归一化为服务类型
func (s *EntitlementService) ResolveService(mode string) string {
	if svc, ok := modeAliases[mode]; ok {
		return svc
	}
	return mode
}

// CreditCost 查服务积分消耗，未登记的按默认值
func (s *EntitlementService) CreditCost(mode string) int {
	if cost, ok := s.cfg.Credits.Costs[s.ResolveService(mode)]; ok {
		return cost
	}
	if s.cfg.Credits.DefaultCost > 0 {
		return s.cfg.Credits.DefaultCost
	}
	return 1
}

// CheckAccess 只读准入检查。余额不足是正常否定结果，不返回 error。
func (s *EntitlementService) CheckAccess(userID int64, mode string) (*dto.AccessCheckResponse, error) {
	user, err := s.rolloverAndGet(userID)
	if err != nil {
		return nil, err
	}

	cost := s.CreditCost(mode)
	resp := &dto.AccessCheckResponse{
		SubscriptionTier: user.SubscriptionTier,
		RemainingCredits: user.Credits,
		CreditsNeeded:    cost,
	}

	if model.IsPremiumTier(user.SubscriptionTier) {
		softLimit := s.cfg.Credits.PremiumSoftLimit
		remaining := softLimit - user.PremiumUsageThisMonth
		if remaining < 0 {
			remaining = 0
		}
		resp.FreeUsesRemaining = remaining
		resp.HasAccess = user.PremiumUsageThisMonth < softLimit
		if resp.HasAccess {
			resp.Message = fmt.Sprintf("Access granted. %d/%d uses remaining this month", remaining, softLimit)
		} else {
			resp.Message = fmt.Sprintf("Monthly limit reached (%d uses)", softLimit)
		}
		return resp, nil
	}

	resp.HasAccess = user.Credits >= cost
	if resp.HasAccess {
		resp.Message = fmt.Sprintf("Access granted (%d credit(s) required)", cost)
	} else {
		resp.Message = fmt.Sprintf("Insufficient credits. Need %d, have %d", cost, user.Credits)
	}
	return resp, nil
}

// Consume 放行并落账。免费档条件扣积分，会员档在软限制内计数。
// 传入 externalTxnID 时同一凭证重复调用只落账一次（幂等重放返回上次结果）。
// 失败返回 ErrInsufficientCredits / ErrSoftLimitReached，调用方在 CheckAccess
// 已通过的前提下应将其视为并发冲突（ErrConsumeConflict）。
func (s *EntitlementService) Consume(userID int64, mode, externalTxnID string) (*dto.CreditUsageResponse, error) {
	user, err := s.rolloverAndGet(userID)
	if err != nil {
		return nil, err
	}

	cost := s.CreditCost(mode)
	now := s.now()

	// 幂等重放：该凭证已经消费过，直接返回当时的结果
	if externalTxnID != "" {
		if prior, err := s.usageRepo.GetLogByTransactionID(externalTxnID); err == nil {
			return s.replayResult(userID, prior)
		}
	}

	if model.IsPremiumTier(user.SubscriptionTier) {
		return s.consumePremium(user, mode, externalTxnID, now)
	}
	return s.consumeFree(user, mode, cost, externalTxnID, now)
}

func (s *EntitlementService) consumePremium(user *model.User, mode, externalTxnID string, now time.Time) (*dto.CreditUsageResponse, error) {
	softLimit := s.cfg.Credits.PremiumSoftLimit

	ok, err := s.userRepo.IncrementPremiumUsage(user.ID, softLimit)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: you've used %d/%d this month",
			ErrSoftLimitReached, user.PremiumUsageThisMonth, softLimit)
	}

	logged, err := s.createUsageLog(user.ID, mode, false, 0, externalTxnID, now)
	if err != nil {
		return nil, err
	}
	if !logged {
		// 并发重放：同一凭证已被另一请求落账，把这次计数退回
		if err := s.userRepo.DecrementPremiumUsage(user.ID); err != nil {
			return nil, err
		}
		return s.replayByTransactionID(user.ID, externalTxnID)
	}

	remaining := softLimit - user.PremiumUsageThisMonth - 1
	if remaining < 0 {
		remaining = 0
	}
	return &dto.CreditUsageResponse{
		Success:           true,
		UsedCredit:        false,
		RemainingCredits:  user.Credits,
		FreeUsesRemaining: remaining,
		Message:           "Processing started (Premium - Unlimited access)",
	}, nil
}

func (s *EntitlementService) consumeFree(user *model.User, mode string, cost int, externalTxnID string, now time.Time) (*dto.CreditUsageResponse, error) {
	ok, err := s.userRepo.DeductCredits(user.ID, cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 条件更新没命中：读一把最新余额，给出确切的提示
		current, err := s.userRepo.GetByID(user.ID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w. Need %d, have %d", ErrInsufficientCredits, cost, current.Credits)
	}

	logged, err := s.createUsageLog(user.ID, mode, true, cost, externalTxnID, now)
	if err != nil {
		return nil, err
	}
	if !logged {
		// 并发重放：同一凭证已被另一请求落账，退回这笔扣款
		if err := s.userRepo.AddCredits(user.ID, cost); err != nil {
			return nil, err
		}
		return s.replayByTransactionID(user.ID, externalTxnID)
	}
	entry := &model.CreditTransaction{
		UserID:      user.ID,
		Credits:     -cost,
		Type:        model.CreditKindUsage,
		Description: fmt.Sprintf("Used for %s processing", mode),
		CreatedAt:   now,
	}
	if externalTxnID != "" {
		entry.TransactionID = &externalTxnID
	}
	if _, err := s.creditRepo.Append(entry); err != nil {
		return nil, err
	}

	return &dto.CreditUsageResponse{
		Success:          true,
		UsedCredit:       true,
		CreditsUsed:      cost,
		RemainingCredits: user.Credits - cost,
		Message:          fmt.Sprintf("Processing started using %d credit(s)", cost),
	}, nil
}

// Refund 消费补偿：任务入队失败时把扣掉的积分/用量退回去
func (s *EntitlementService) Refund(userID int64, usedCredit bool, creditsUsed int, reason string) error {
	if !usedCredit {
		return s.userRepo.DecrementPremiumUsage(userID)
	}

	if err := s.userRepo.AddCredits(userID, creditsUsed); err != nil {
		return err
	}
	_, err := s.creditRepo.Append(&model.CreditTransaction{
		UserID:      userID,
		Credits:     creditsUsed,
		Type:        model.CreditKindRefund,
		Description: reason,
		CreatedAt:   s.now(),
	})
	return err
}

// GetCreditCosts 返回服务消耗表
func (s *EntitlementService) GetCreditCosts() *dto.CreditCostsResponse {
	costs := make(map[string]int, len(s.cfg.Credits.Costs))
	for svc, cost := range s.cfg.Credits.Costs {
		costs[svc] = cost
	}
	return &dto.CreditCostsResponse{
		ServiceCosts: costs,
		Descriptions: map[string]string{
			ServicePhotoRestore:    "Restore old photos to HD quality",
			ServiceMemoryMerge:     "Merge multiple photos together",
			ServiceCinematicFilter: "Apply cinematic filters",
		},
		InitialSignupCredits: s.cfg.Credits.InitialSignupCredits,
		PremiumUnlimited:     true,
	}
}

// GetCreditSummary 余额与流水汇总（余额以 users.credits 为准，流水仅做展示）
func (s *EntitlementService) GetCreditSummary(userID int64) (*dto.CreditSummary, error) {
	user, err := s.rolloverAndGet(userID)
	if err != nil {
		return nil, err
	}

	purchased, err := s.creditRepo.SumByUserAndType(userID, model.CreditKindPurchase)
	if err != nil {
		return nil, err
	}
	used, err := s.creditRepo.SumByUserAndType(userID, model.CreditKindUsage)
	if err != nil {
		return nil, err
	}
	lastPurchase, err := s.creditRepo.LastPurchaseAt(userID)
	if err != nil {
		return nil, err
	}

	return &dto.CreditSummary{
		CreditsRemaining: user.Credits,
		TotalPurchased:   int(purchased),
		TotalUsed:        int(used),
		LastPurchaseDate: lastPurchase,
	}, nil
}

// rolloverAndGet 读用户前先做周期滚动。两条水位线都是条件更新，
// 同周期重复调用无操作，并发下不会重复发放。
func (s *EntitlementService) rolloverAndGet(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	periodStart := period.MonthStart(now)
	changed := false

	if model.IsPremiumTier(user.SubscriptionTier) {
		if period.NeedsRollover(user.PremiumUsageResetAt, now) {
			applied, err := s.userRepo.ResetPremiumUsage(userID, now, periodStart)
			if err != nil {
				return nil, err
			}
			changed = changed || applied
		}
	} else {
		if period.NeedsRollover(user.MonthlyCreditsResetAt, now) {
			// 覆盖为固定月度额度（未用完的不结转，现行业务规则）
			applied, err := s.userRepo.ResetMonthlyCredits(userID, s.cfg.Credits.FreeMonthlyCredits, now, periodStart)
			if err != nil {
				return nil, err
			}
			changed = changed || applied
		}
	}

	if changed {
		return s.userRepo.GetByID(userID)
	}
	return user, nil
}

func (s *EntitlementService) createUsageLog(userID int64, mode string, usedCredit bool, creditsUsed int, externalTxnID string, now time.Time) (bool, error) {
	entry := &model.UsageLog{
		UserID:      userID,
		Mode:        mode,
		UsedCredit:  usedCredit,
		CreditsUsed: creditsUsed,
		CreatedAt:   now,
	}
	if externalTxnID != "" {
		entry.TransactionID = &externalTxnID
	}
	return s.usageRepo.CreateLog(entry)
}

// replayByTransactionID 落账时撞上唯一索引后按凭证找回先到的记录重放
func (s *EntitlementService) replayByTransactionID(userID int64, externalTxnID string) (*dto.CreditUsageResponse, error) {
	prior, err := s.usageRepo.GetLogByTransactionID(externalTxnID)
	if err != nil {
		return nil, err
	}
	return s.replayResult(userID, prior)
}

// replayResult 幂等重放：根据已有消费记录还原响应，不再扣账
func (s *EntitlementService) replayResult(userID int64, prior *model.UsageLog) (*dto.CreditUsageResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CreditUsageResponse{
		Success:          true,
		UsedCredit:       prior.UsedCredit,
		CreditsUsed:      prior.CreditsUsed,
		RemainingCredits: user.Credits,
		Message:          "Request already processed",
	}
	if !prior.UsedCredit {
		remaining := s.cfg.Credits.PremiumSoftLimit - user.PremiumUsageThisMonth
		if remaining < 0 {
			remaining = 0
		}
		resp.FreeUsesRemaining = remaining
	}
	return resp, nil
}

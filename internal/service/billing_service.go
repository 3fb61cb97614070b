package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

var (
	ErrUnknownProduct    = errors.New("unknown product")
	ErrNoActiveSub       = errors.New("no active subscription")
	ErrAlreadySubscribed = errors.New("user already has an active subscription")
	ErrInvalidPurchase   = errors.New("invalid purchase type")
	ErrInvalidTier       = errors.New("invalid subscription tier")
	errDuplicatePurchase = errors.New("purchase already processed")
)

// 订阅时长
const (
	monthlyDuration = 30 * 24 * time.Hour
	yearlyDuration  = 365 * 24 * time.Hour
)

// BillingService 支付与订阅生命周期。渠道通知按 transaction_id 去重，
// 重复投递幂等返回 AlreadyProcessed，不会二次发积分。
type BillingService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewBillingService(db *gorm.DB, cfg *config.Config) *BillingService {
	return &BillingService{
		db:  db,
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ApplyPurchase 处理渠道支付成功通知（积分包或订阅），整体在一个事务里
func (s *BillingService) ApplyPurchase(userID int64, req *dto.PurchaseNotificationRequest) (*dto.PurchaseNotificationResponse, error) {
	if req.PurchaseType != "credit_pack" && req.PurchaseType != "subscription" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPurchase, req.PurchaseType)
	}

	resp := &dto.PurchaseNotificationResponse{}
	now := s.now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txnRepo := repository.NewTransactionRepository(tx)

		providerData := ""
		if len(req.ProviderData) > 0 {
			if raw, err := json.Marshal(req.ProviderData); err == nil {
				providerData = string(raw)
			}
		}
		recorded, err := txnRepo.Record(&model.Transaction{
			UserID:        userID,
			ProductID:     req.ProductID,
			TransactionID: req.TransactionID,
			PurchaseType:  req.PurchaseType,
			ProviderData:  providerData,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		if !recorded {
			return errDuplicatePurchase
		}

		if req.PurchaseType == "credit_pack" {
			return s.applyCreditPack(tx, userID, req, resp, now)
		}
		return s.applySubscription(tx, userID, req, resp, now)
	})
	if errors.Is(err, errDuplicatePurchase) {
		// 渠道重复投递：不报错，标记已处理
		return &dto.PurchaseNotificationResponse{AlreadyProcessed: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *BillingService) applyCreditPack(tx *gorm.DB, userID int64, req *dto.PurchaseNotificationRequest, resp *dto.PurchaseNotificationResponse, now time.Time) error {
	credits, ok := s.cfg.Products.CreditPacks[req.ProductID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, req.ProductID)
	}

	userRepo := repository.NewUserRepository(tx)
	if err := userRepo.AddCredits(userID, credits); err != nil {
		return err
	}

	txnID := req.TransactionID
	if _, err := repository.NewCreditRepository(tx).Append(&model.CreditTransaction{
		UserID:        userID,
		Credits:       credits,
		Type:          model.CreditKindPurchase,
		Description:   fmt.Sprintf("Purchased %s", req.ProductID),
		TransactionID: &txnID,
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	resp.CreditsAdded = credits
	return nil
}

func (s *BillingService) applySubscription(tx *gorm.DB, userID int64, req *dto.PurchaseNotificationRequest, resp *dto.PurchaseNotificationResponse, now time.Time) error {
	tier, duration, err := tierForProduct(req.ProductID)
	if err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(tx)
	subRepo := repository.NewSubscriptionRepository(tx)

	user, err := userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	wasFree := !model.IsPremiumTier(user.SubscriptionTier)

	// 换档：旧订阅先标记取消，保证同一用户只有一条生效记录
	if err := subRepo.CancelActive(userID, now); err != nil {
		return err
	}

	endDate := now.Add(duration)
	if err := subRepo.Create(&model.Subscription{
		UserID:        userID,
		Tier:          tier,
		Status:        model.SubStatusActive,
		StartDate:     now,
		EndDate:       endDate,
		AutoRenew:     true,
		TransactionID: req.TransactionID,
		CreatedAt:     now,
	}); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"subscription_tier":       tier,
		"subscription_expires_at": endDate,
		"premium_usage_this_month": 0,
		"premium_usage_reset_at":  now,
	}
	if err := userRepo.UpdateFields(userID, fields); err != nil {
		return err
	}

	// 首次升级送积分，年付再追加年度奖励（降级免费后也能用）
	bonus := 0
	if wasFree {
		bonus += s.cfg.Credits.PremiumUpgradeBonus
	}
	if tier == model.TierPremiumYearly {
		bonus += s.cfg.Credits.PremiumYearlyBonus
	}
	if bonus > 0 {
		if err := userRepo.AddCredits(userID, bonus); err != nil {
			return err
		}
		if _, err := repository.NewCreditRepository(tx).Append(&model.CreditTransaction{
			UserID:      userID,
			Credits:     bonus,
			Type:        model.CreditKindReward,
			Description: fmt.Sprintf("Subscription bonus (%s)", tier),
			CreatedAt:   now,
		}); err != nil {
			return err
		}
	}

	resp.SubscriptionTier = tier
	resp.BonusCredits = bonus
	return nil
}

// Subscribe 创建订阅（带试用期）。已有生效订阅时拒绝。
func (s *BillingService) Subscribe(userID int64, req *dto.SubscribeRequest) (*dto.SubscribeResponse, error) {
	tier, duration, err := tierForProduct(req.Tier)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var sub *model.Subscription

	err = s.db.Transaction(func(tx *gorm.DB) error {
		subRepo := repository.NewSubscriptionRepository(tx)

		existing, err := subRepo.GetActive(userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadySubscribed
		}

		status := model.SubStatusActive
		var trialEnd *time.Time
		if s.cfg.Pricing.TrialDays > 0 {
			status = model.SubStatusTrial
			t := now.Add(time.Duration(s.cfg.Pricing.TrialDays) * 24 * time.Hour)
			trialEnd = &t
		}

		endDate := now.Add(duration)
		sub = &model.Subscription{
			UserID:        userID,
			Tier:          tier,
			Status:        status,
			StartDate:     now,
			EndDate:       endDate,
			TrialEndDate:  trialEnd,
			AutoRenew:     true,
			TransactionID: req.TransactionID,
			ReceiptData:   req.ReceiptData,
			CreatedAt:     now,
		}
		if err := subRepo.Create(sub); err != nil {
			return err
		}

		return repository.NewUserRepository(tx).UpdateFields(userID, map[string]interface{}{
			"subscription_tier":       tier,
			"subscription_expires_at": endDate,
			"premium_usage_this_month": 0,
			"premium_usage_reset_at":  now,
		})
	})
	if err != nil {
		return nil, err
	}

	return &dto.SubscribeResponse{
		SubscriptionID: sub.ID,
		Tier:           sub.Tier,
		Status:         sub.Status,
		TrialDays:      s.cfg.Pricing.TrialDays,
	}, nil
}

// Cancel 取消续订，已付周期内继续可用，到期由定时任务降级
func (s *BillingService) Cancel(userID int64) (*dto.CancelResponse, error) {
	subRepo := repository.NewSubscriptionRepository(s.db)

	sub, err := subRepo.GetActive(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSub
	}

	if err := subRepo.CancelActive(userID, s.now()); err != nil {
		return nil, err
	}

	return &dto.CancelResponse{
		Message: fmt.Sprintf("Subscription cancelled. Premium access continues until %s", sub.EndDate.Format("2006-01-02")),
		EndDate: sub.EndDate,
	}, nil
}

// GetStatus 当前订阅状态（无订阅时报 ErrNoActiveSub）
func (s *BillingService) GetStatus(userID int64) (*dto.SubscriptionStatusResponse, error) {
	sub, err := repository.NewSubscriptionRepository(s.db).GetActive(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNoActiveSub
	}

	endDate := sub.EndDate
	return &dto.SubscriptionStatusResponse{
		ID:           sub.ID,
		Tier:         sub.Tier,
		Status:       sub.Status,
		StartDate:    sub.StartDate,
		EndDate:      &endDate,
		IsActive:     sub.IsActive(s.now()),
		TrialEndDate: sub.TrialEndDate,
		AutoRenew:    sub.AutoRenew,
	}, nil
}

// GetPricing 定价信息（客户端商店页用）
func (s *BillingService) GetPricing() *dto.PricingResponse {
	packs := make([]dto.CreditPackPricing, 0, len(s.cfg.Products.CreditPacks))
	for productID, credits := range s.cfg.Products.CreditPacks {
		packs = append(packs, dto.CreditPackPricing{ProductID: productID, Credits: credits})
	}
	return &dto.PricingResponse{
		Subscriptions: map[string]dto.PlanPricing{
			model.TierPremiumMonthly: {
				Price:     s.cfg.Pricing.MonthlyPrice,
				Currency:  s.cfg.Pricing.Currency,
				TrialDays: s.cfg.Pricing.TrialDays,
			},
			model.TierPremiumYearly: {
				Price:     s.cfg.Pricing.YearlyPrice,
				Currency:  s.cfg.Pricing.Currency,
				TrialDays: s.cfg.Pricing.TrialDays,
			},
		},
		CreditPacks: packs,
	}
}

func tierForProduct(productID string) (string, time.Duration, error) {
	switch productID {
	case model.TierPremiumMonthly, "premium_monthly_sub":
		return model.TierPremiumMonthly, monthlyDuration, nil
	case model.TierPremiumYearly, "premium_yearly_sub":
		return model.TierPremiumYearly, yearlyDuration, nil
	default:
		return "", 0, fmt.Errorf("%w: %s", ErrInvalidTier, productID)
	}
}

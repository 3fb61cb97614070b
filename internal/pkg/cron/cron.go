package cron

import (
	"log"
	"time"

	"github.com/qs3c/everwith_go_server/internal/repository"
)

// Service 后台定时任务：订阅到期降级 + 积分账本对账
type Service struct {
	userRepo   *repository.UserRepository
	subRepo    *repository.SubscriptionRepository
	creditRepo *repository.CreditRepository
	stopChan   chan struct{}
}

func NewService(
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	creditRepo *repository.CreditRepository,
) *Service {
	return &Service{
		userRepo:   userRepo,
		subRepo:    subRepo,
		creditRepo: creditRepo,
		stopChan:   make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runExpirySweep()
	go s.runReconciliation()
	log.Println("Cron service started (subscription expiry + ledger reconciliation)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runExpirySweep 每小时扫一次到期订阅
func (s *Service) runExpirySweep() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	s.sweepExpired()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

// sweepExpired 到期订阅标记 expired，用户降回免费档。
// 两条 UPDATE 都带时间条件，重复执行无副作用。
func (s *Service) sweepExpired() {
	now := time.Now().UTC()

	expired, err := s.subRepo.MarkExpired(now)
	if err != nil {
		log.Printf("Expiry sweep: failed to mark subscriptions: %v", err)
		return
	}

	downgraded, err := s.userRepo.DowngradeExpired(now)
	if err != nil {
		log.Printf("Expiry sweep: failed to downgrade users: %v", err)
		return
	}

	if expired > 0 || downgraded > 0 {
		log.Printf("Expiry sweep: subscriptions=%d, users downgraded=%d", expired, downgraded)
	}
}

// runReconciliation 每天核对一次余额与流水
func (s *Service) runReconciliation() {
	now := time.Now().UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	timer := time.NewTimer(nextMidnight.Sub(now))

	for {
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			s.reconcileLedger()
			timer.Reset(24 * time.Hour)
		}
	}
}

// reconcileLedger 逐用户比较 users.credits 与流水合计。
// 月度重置是覆盖式的，不走流水，所以只记日志供人工排查，不自动修正。
func (s *Service) reconcileLedger() {
	log.Println("Ledger reconciliation started")

	var afterID int64
	checked, drifted := 0, 0
	for {
		ids, err := s.userRepo.ListIDs(afterID, 500)
		if err != nil {
			log.Printf("Reconciliation: failed to list users: %v", err)
			return
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			user, err := s.userRepo.GetByID(id)
			if err != nil {
				continue
			}
			ledgerSum, err := s.creditRepo.SumByUser(id)
			if err != nil {
				continue
			}
			checked++
			if int64(user.Credits) != ledgerSum {
				drifted++
				log.Printf("Reconciliation: user %d balance=%d ledger=%d", id, user.Credits, ledgerSum)
			}
		}
		afterID = ids[len(ids)-1]
	}

	log.Printf("Ledger reconciliation finished: checked=%d, drifted=%d", checked, drifted)
}

// RunNow 立即执行到期扫描（手动触发用）
func (s *Service) RunNow() {
	s.sweepExpired()
}

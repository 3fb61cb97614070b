package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/queue"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

// 任务状态
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// ProcessingService 处理入口：先扣权益，再建任务入队。
// 入队失败时把扣掉的权益退回去，不让用户白花积分。
type ProcessingService struct {
	entitlement *EntitlementService
	fairUse     *FairUseService
	jobRepo     *repository.JobRepository
	jobQueue    *queue.Queue
	now         func() time.Time
}

func NewProcessingService(
	entitlement *EntitlementService,
	fairUse *FairUseService,
	jobRepo *repository.JobRepository,
	jobQueue *queue.Queue,
) *ProcessingService {
	return &ProcessingService{
		entitlement: entitlement,
		fairUse:     fairUse,
		jobRepo:     jobRepo,
		jobQueue:    jobQueue,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit 提交处理任务。权益检查通过后的 Consume 失败视为并发冲突。
func (s *ProcessingService) Submit(ctx context.Context, userID int64, req *dto.ProcessRequest) (*dto.ProcessResponse, error) {
	access, err := s.entitlement.CheckAccess(userID, req.Mode)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess {
		if model.IsPremiumTier(access.SubscriptionTier) {
			return nil, fmt.Errorf("%w: %s", ErrSoftLimitReached, access.Message)
		}
		return nil, fmt.Errorf("%w. Need %d, have %d",
			ErrInsufficientCredits, access.CreditsNeeded, access.RemainingCredits)
	}

	usage, err := s.entitlement.Consume(userID, req.Mode, req.TransactionID)
	if err != nil {
		// 检查刚通过却扣不动：别的请求抢先了
		if errors.Is(err, ErrInsufficientCredits) || errors.Is(err, ErrSoftLimitReached) {
			return nil, fmt.Errorf("%w: %v", ErrConsumeConflict, err)
		}
		return nil, err
	}

	if err := s.fairUse.RecordUsage(userID); err != nil {
		return nil, err
	}

	job := &model.ProcessingJob{
		UserID:     userID,
		Mode:       s.entitlement.ResolveService(req.Mode),
		SourceURLs: strings.Join(req.SourceURLs, ","),
		Prompt:     req.Prompt,
		Status:     JobStatusQueued,
		CreatedAt:  s.now(),
	}
	if err := s.jobRepo.Create(job); err != nil {
		s.compensate(userID, usage)
		return nil, err
	}

	if err := s.jobQueue.Push(ctx, &queue.JobMessage{
		JobID:      job.ID,
		UserID:     userID,
		Mode:       job.Mode,
		SourceURLs: req.SourceURLs,
		Prompt:     req.Prompt,
	}); err != nil {
		s.compensate(userID, usage)
		_ = s.jobRepo.UpdateFields(job.ID, map[string]interface{}{
			"status":        JobStatusFailed,
			"error_message": "failed to enqueue job",
		})
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	fairUseStatus, err := s.fairUse.GetStatus(userID)
	if err != nil {
		fairUseStatus = nil // 状态查询失败不影响提交结果
	}

	return &dto.ProcessResponse{
		JobID:            job.ID,
		Status:           job.Status,
		UsedCredit:       usage.UsedCredit,
		CreditsUsed:      usage.CreditsUsed,
		RemainingCredits: usage.RemainingCredits,
		Usage:            fairUseStatus,
	}, nil
}

// GetJob 查询任务状态（只能查自己的）
func (s *ProcessingService) GetJob(userID, jobID int64) (*dto.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	if job.UserID != userID {
		return nil, ErrJobNotFound
	}

	return &dto.JobStatusResponse{
		JobID:          job.ID,
		Status:         job.Status,
		ResultURL:      job.ResultURL,
		ErrorMessage:   job.ErrorMessage,
		ElapsedSeconds: job.ElapsedSeconds,
	}, nil
}

// ListJobs 任务历史
func (s *ProcessingService) ListJobs(userID int64, page, pageSize int) ([]model.ProcessingJob, int64, error) {
	return s.jobRepo.ListByUser(userID, page, pageSize)
}

func (s *ProcessingService) compensate(userID int64, usage *dto.CreditUsageResponse) {
	_ = s.entitlement.Refund(userID, usage.UsedCredit, usage.CreditsUsed, "Refund: job submission failed")
}

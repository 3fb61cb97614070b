package worker

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/qs3c/everwith_go_server/config"
	"github.com/qs3c/everwith_go_server/internal/pkg/genapi"
	"github.com/qs3c/everwith_go_server/internal/pkg/oss"
	"github.com/qs3c/everwith_go_server/internal/pkg/pubsub"
	"github.com/qs3c/everwith_go_server/internal/pkg/queue"
	"github.com/qs3c/everwith_go_server/internal/repository"
	"github.com/qs3c/everwith_go_server/internal/service"
)

// Processor 图片处理任务执行器：调外部生成服务，结果转存 OSS
type Processor struct {
	jobRepo   *repository.JobRepository
	genClient *genapi.Client
	ossClient *oss.Client
	publisher *pubsub.Publisher
	cfg       *config.Config
}

func NewProcessor(
	jobRepo *repository.JobRepository,
	genClient *genapi.Client,
	ossClient *oss.Client,
	publisher *pubsub.Publisher,
	cfg *config.Config,
) *Processor {
	return &Processor{
		jobRepo:   jobRepo,
		genClient: genClient,
		ossClient: ossClient,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Process 处理一条图片生成任务
func (p *Processor) Process(ctx context.Context, msg *queue.JobMessage) error {
	job, err := p.jobRepo.GetByID(msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}

	now := time.Now().UTC()
	job.Status = service.JobStatusProcessing
	job.StartedAt = &now
	p.jobRepo.Update(job)

	publishProgress := func(step, status, errMsg string) {
		p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
			UserID: msg.UserID,
			JobID:  msg.JobID,
			Status: status,
			Step:   step,
			Error:  errMsg,
		})
	}

	handleError := func(step string, err error) error {
		errMsg := err.Error()
		completedAt := time.Now().UTC()
		job.Status = service.JobStatusFailed
		job.ErrorMessage = errMsg
		job.CompletedAt = &completedAt
		job.ElapsedSeconds = int(completedAt.Sub(*job.StartedAt).Seconds())
		p.jobRepo.Update(job)
		publishProgress(step, "failed", errMsg)
		return err
	}

	// Step 1: 提交生成任务
	log.Printf("Job %d: submitting %s task", job.ID, msg.Mode)
	publishProgress(pubsub.StepSubmitting, "processing", "")

	genCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	publishProgress(pubsub.StepGenerating, "processing", "")
	outputURL, err := p.genClient.Generate(genCtx, &genapi.GenerateRequest{
		Mode:       msg.Mode,
		SourceURLs: msg.SourceURLs,
		Prompt:     msg.Prompt,
	})
	if err != nil {
		return handleError(pubsub.StepGenerating, fmt.Errorf("generation failed: %w", err))
	}

	// Step 2: 结果转存到自己的 OSS，不依赖外部服务的临时链接
	log.Printf("Job %d: uploading result", job.ID)
	publishProgress(pubsub.StepUploading, "processing", "")

	data, err := p.genClient.Download(genCtx, outputURL)
	if err != nil {
		return handleError(pubsub.StepUploading, fmt.Errorf("download failed: %w", err))
	}

	resultURL, err := p.ossClient.UploadResult(job.ID, data, resultExt(outputURL))
	if err != nil {
		return handleError(pubsub.StepUploading, fmt.Errorf("upload failed: %w", err))
	}

	// Step 3: 完成
	completedAt := time.Now().UTC()
	job.Status = service.JobStatusCompleted
	job.ResultURL = resultURL
	job.CompletedAt = &completedAt
	job.ElapsedSeconds = int(completedAt.Sub(*job.StartedAt).Seconds())
	if err := p.jobRepo.Update(job); err != nil {
		return handleError(pubsub.StepUploading, fmt.Errorf("failed to save job: %w", err))
	}

	p.publisher.PublishProgress(ctx, &pubsub.ProgressMessage{
		UserID:    msg.UserID,
		JobID:     msg.JobID,
		Status:    "completed",
		Step:      pubsub.StepDone,
		ResultURL: resultURL,
	})

	log.Printf("Job %d: completed in %ds", job.ID, job.ElapsedSeconds)
	return nil
}

// resultExt 从结果 URL 推断扩展名，猜不出来按 jpg 处理
func resultExt(url string) string {
	ext := strings.ToLower(path.Ext(url))
	if i := strings.IndexByte(ext, '?'); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".jpg"
	}
}

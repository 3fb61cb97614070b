package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/pkg/queue"
	"github.com/qs3c/everwith_go_server/internal/repository"
	"github.com/qs3c/everwith_go_server/internal/testutil"
)

func setupProcessingService(t *testing.T) (*ProcessingService, *gorm.DB, *queue.Queue, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobQueue := queue.NewQueue(rdb, "test_process_queue")

	cfg := testutil.TestConfig()
	entitlement := NewEntitlementService(
		repository.NewUserRepository(db),
		repository.NewCreditRepository(db),
		repository.NewUsageRepository(db),
		cfg,
	)
	fairUse := NewFairUseService(repository.NewUsageRepository(db), cfg)
	svc := NewProcessingService(entitlement, fairUse, repository.NewJobRepository(db), jobQueue)

	cleanup := func() {
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}
	return svc, db, jobQueue, cleanup
}

func TestProcessingService_Submit(t *testing.T) {
	svc, db, jobQueue, cleanup := setupProcessingService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(3))

	resp, err := svc.Submit(context.Background(), user.ID, &dto.ProcessRequest{
		Mode:       "together",
		SourceURLs: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})
	require.NoError(t, err)

	assert.NotZero(t, resp.JobID)
	assert.Equal(t, JobStatusQueued, resp.Status)
	assert.True(t, resp.UsedCredit)
	assert.Equal(t, 2, resp.CreditsUsed)
	assert.Equal(t, 1, resp.RemainingCredits)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 1, resp.Usage.UsageCount)

	// 任务已建档，mode 归一化为服务类型
	var job model.ProcessingJob
	require.NoError(t, db.First(&job, resp.JobID).Error)
	assert.Equal(t, "memory_merge", job.Mode)
	assert.Equal(t, JobStatusQueued, job.Status)

	// 消息进了队列
	msg, err := jobQueue.Pop(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, resp.JobID, msg.JobID)
	assert.Equal(t, user.ID, msg.UserID)
	assert.Equal(t, "memory_merge", msg.Mode)
	assert.Len(t, msg.SourceURLs, 2)
}

func TestProcessingService_SubmitInsufficientCredits(t *testing.T) {
	svc, db, _, cleanup := setupProcessingService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(0))

	_, err := svc.Submit(context.Background(), user.ID, &dto.ProcessRequest{
		Mode:       "restore",
		SourceURLs: []string{"https://cdn.example.com/a.jpg"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	// 没建任务
	var count int64
	require.NoError(t, db.Model(&model.ProcessingJob{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestProcessingService_SubmitPremiumAtLimit(t *testing.T) {
	svc, db, _, cleanup := setupProcessingService(t)
	defer cleanup()

	now := time.Now().UTC()
	user := testutil.TestUser(t, db,
		testutil.WithTier(model.TierPremiumMonthly),
		testutil.WithPremiumUsage(100, now),
	)

	_, err := svc.Submit(context.Background(), user.ID, &dto.ProcessRequest{
		Mode:       "restore",
		SourceURLs: []string{"https://cdn.example.com/a.jpg"},
	})
	assert.ErrorIs(t, err, ErrSoftLimitReached)
}

func TestProcessingService_GetJobScopedToOwner(t *testing.T) {
	svc, db, _, cleanup := setupProcessingService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	job := testutil.TestJob(t, db, owner.ID, JobStatusCompleted)

	resp, err := svc.GetJob(owner.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, resp.Status)

	// 别人的任务查不到
	_, err = svc.GetJob(other.ID, job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestProcessingService_ListJobs(t *testing.T) {
	svc, db, _, cleanup := setupProcessingService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	for i := 0; i < 3; i++ {
		testutil.TestJob(t, db, user.ID, JobStatusCompleted)
	}

	jobs, total, err := svc.ListJobs(user.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 2)
}

package service

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/repository"
	"github.com/qs3c/everwith_go_server/internal/testutil"
)

// fakeHTTPClient 固定返回指定状态码，避免测试真的发请求
type fakeHTTPClient struct {
	status int
	err    error
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func setupShareService(t *testing.T) (*ShareService, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := NewShareService(
		repository.NewShareRepository(db),
		repository.NewUserRepository(db),
		repository.NewCreditRepository(db),
		testutil.TestConfig(),
	)
	svc.httpClient = &fakeHTTPClient{status: http.StatusOK}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return svc, db, cleanup
}

func shareRequest(url string) *dto.ShareVerificationRequest {
	return &dto.ShareVerificationRequest{
		Platform: "instagram",
		ShareURL: url,
		Caption:  "Restored my grandma's photo #everwithapp",
	}
}

func TestShareService_VerifyAndReward(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(0))

	resp, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/abc123"))
	require.NoError(t, err)

	assert.Equal(t, 1, resp.CreditsAwarded)
	assert.Equal(t, 1, resp.NewCreditBalance)
	assert.False(t, resp.AlreadyClaimed)
	assert.NotZero(t, resp.VerificationID)

	// 账本有奖励流水
	var entry model.CreditTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, 1, entry.Credits)
	assert.Equal(t, model.CreditKindReward, entry.Type)

	// 聚合统计更新
	stats, err := svc.GetStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalShares)
	assert.Equal(t, 1, stats.CreditsEarnedFromShares)
	assert.Equal(t, 1, stats.VerifiedToday)
}

func TestShareService_UnsupportedPlatform(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := svc.VerifyAndReward(user.ID, &dto.ShareVerificationRequest{
		Platform: "facebook",
		Caption:  "#everwithapp",
	})
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

func TestShareService_MissingHashtag(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	_, err := svc.VerifyAndReward(user.ID, &dto.ShareVerificationRequest{
		Platform: "instagram",
		Caption:  "look at this photo",
	})
	assert.ErrorIs(t, err, ErrMissingHashtag)
}

func TestShareService_HashtagInTagList(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	// caption 没带标签，但 hashtags 列表里有（大小写不敏感）
	resp, err := svc.VerifyAndReward(user.ID, &dto.ShareVerificationRequest{
		Platform: "tiktok",
		ShareURL: "https://tiktok.com/@u/video/1",
		Caption:  "before and after",
		Hashtags: []string{"EverWithApp", "restoration"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CreditsAwarded)
}

func TestShareService_UnreachableURL(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	svc.httpClient = &fakeHTTPClient{status: http.StatusNotFound}
	user := testutil.TestUser(t, db)

	_, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/gone"))
	assert.ErrorIs(t, err, ErrShareURLUnreachable)
}

func TestShareService_DuplicateURLRejected(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(0))

	first, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/same"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreditsAwarded)

	// 同一链接第二次：校验直接拒绝，不发奖
	_, err = svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/same"))
	assert.ErrorIs(t, err, ErrDuplicateShareURL)

	// 余额没变，事件也没新增
	fresh, err := repository.NewUserRepository(db).GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Credits)

	var count int64
	require.NoError(t, db.Model(&model.ShareEvent{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestShareService_DailyCap(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	// 今天已领满 3 次（当日上限先于冷却检查触发）
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		testutil.TestShareEvent(t, db, user.ID,
			testutil.WithShareCreatedAt(now.Add(-time.Duration(i+1)*time.Minute)),
		)
	}

	_, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/fourth"))
	assert.ErrorIs(t, err, ErrDailyShareLimit)
}

func TestShareService_CooldownReturnsAlreadyClaimed(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithCredits(2))

	// 2 小时前刚领过，6 小时冷却未过：正常响应而非报错
	prev := testutil.TestShareEvent(t, db, user.ID,
		testutil.WithShareCreatedAt(time.Now().UTC().Add(-2*time.Hour)),
	)

	resp, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/toosoon"))
	require.NoError(t, err)
	assert.True(t, resp.AlreadyClaimed)
	assert.Equal(t, 0, resp.CreditsAwarded)
	assert.Equal(t, 2, resp.NewCreditBalance)
	assert.Equal(t, prev.ID, resp.VerificationID)
	assert.Contains(t, resp.Message, "hour(s)")

	// 冷却期内不建新事件
	var count int64
	require.NoError(t, db.Model(&model.ShareEvent{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestShareService_CooldownExpired(t *testing.T) {
	svc, db, cleanup := setupShareService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	testutil.TestShareEvent(t, db, user.ID,
		testutil.WithShareCreatedAt(time.Now().UTC().Add(-7*time.Hour)),
	)

	resp, err := svc.VerifyAndReward(user.ID, shareRequest("https://instagram.com/p/later"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.CreditsAwarded)
}

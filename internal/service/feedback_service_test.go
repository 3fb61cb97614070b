package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/repository"
	"github.com/qs3c/everwith_go_server/internal/testutil"
)

func TestFeedbackService_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewFeedbackService(repository.NewFeedbackRepository(db))
	user := testutil.TestUser(t, db)

	result, err := svc.Submit(user.ID, &dto.FeedbackRequest{
		FeedbackType: "Bug",
		Subject:      "Photo restore crashed",
		Message:      "App closed while restoring a large photo",
		DeviceInfo:   map[string]interface{}{"os": "iOS 17", "model": "iPhone 15"},
		AppVersion:   "1.2.0",
	})
	require.NoError(t, err)

	assert.NotZero(t, result.FeedbackID)
	assert.Equal(t, model.FeedbackStatusPending, result.Status)

	var stored model.Feedback
	require.NoError(t, db.First(&stored, result.FeedbackID).Error)
	assert.Equal(t, model.FeedbackTypeBug, stored.Type) // 类型归一化为小写
	assert.Equal(t, user.ID, stored.UserID)
	assert.Contains(t, stored.DeviceInfo, "iPhone 15")
}

func TestFeedbackService_SubmitInvalidType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewFeedbackService(repository.NewFeedbackRepository(db))
	user := testutil.TestUser(t, db)

	_, err := svc.Submit(user.ID, &dto.FeedbackRequest{
		FeedbackType: "complaint",
		Subject:      "subject",
		Message:      "message",
	})
	assert.ErrorIs(t, err, ErrInvalidFeedbackType)
}

func TestFeedbackService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := NewFeedbackService(repository.NewFeedbackRepository(db))
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	for _, subject := range []string{"first", "second"} {
		_, err := svc.Submit(user.ID, &dto.FeedbackRequest{
			FeedbackType: model.FeedbackTypeGeneral,
			Subject:      subject,
			Message:      "message",
		})
		require.NoError(t, err)
	}
	_, err := svc.Submit(other.ID, &dto.FeedbackRequest{
		FeedbackType: model.FeedbackTypeHelp,
		Subject:      "not mine",
		Message:      "message",
	})
	require.NoError(t, err)

	items, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.NotEqual(t, "not mine", item.Subject)
		assert.Equal(t, model.FeedbackStatusPending, item.Status)
	}
}

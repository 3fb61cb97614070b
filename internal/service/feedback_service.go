package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qs3c/everwith_go_server/internal/model"
	"github.com/qs3c/everwith_go_server/internal/model/dto"
	"github.com/qs3c/everwith_go_server/internal/repository"
)

var ErrInvalidFeedbackType = errors.New("invalid feedback type")

var feedbackTypes = []string{
	model.FeedbackTypeGeneral,
	model.FeedbackTypeBug,
	model.FeedbackTypeFeature,
	model.FeedbackTypeHelp,
}

// FeedbackService 用户反馈与支持请求
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	now          func() time.Time
}

func NewFeedbackService(feedbackRepo *repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Submit 登记一条反馈，初始状态 pending
func (s *FeedbackService) Submit(userID int64, req *dto.FeedbackRequest) (*dto.FeedbackSubmitted, error) {
	feedbackType := strings.ToLower(strings.TrimSpace(req.FeedbackType))
	if !feedbackTypeAllowed(feedbackType) {
		return nil, fmt.Errorf("%w: must be one of %s",
			ErrInvalidFeedbackType, strings.Join(feedbackTypes, ", "))
	}

	entry := &model.Feedback{
		UserID:     userID,
		Type:       feedbackType,
		Subject:    req.Subject,
		Message:    req.Message,
		AppVersion: req.AppVersion,
		Status:     model.FeedbackStatusPending,
		CreatedAt:  s.now(),
	}
	if len(req.DeviceInfo) > 0 {
		data, err := json.Marshal(req.DeviceInfo)
		if err != nil {
			return nil, err
		}
		entry.DeviceInfo = string(data)
	}

	if err := s.feedbackRepo.Create(entry); err != nil {
		return nil, err
	}

	return &dto.FeedbackSubmitted{
		Message:    "Feedback submitted successfully",
		FeedbackID: entry.ID,
		Status:     entry.Status,
	}, nil
}

// List 返回该用户提交过的反馈
func (s *FeedbackService) List(userID int64) ([]dto.FeedbackItem, error) {
	entries, err := s.feedbackRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FeedbackItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.FeedbackItem{
			ID:           e.ID,
			FeedbackType: e.Type,
			Subject:      e.Subject,
			Message:      e.Message,
			Status:       e.Status,
			CreatedAt:    e.CreatedAt,
		})
	}
	return items, nil
}

func feedbackTypeAllowed(feedbackType string) bool {
	for _, t := range feedbackTypes {
		if t == feedbackType {
			return true
		}
	}
	return false
}

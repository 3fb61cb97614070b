package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepProgress(t *testing.T) {
	steps := []string{StepSubmitting, StepGenerating, StepUploading, StepDone}

	for _, step := range steps {
		progress, ok := StepProgress[step]
		assert.True(t, ok, "Step %s should have progress value", step)
		assert.Greater(t, progress, 0, "Progress for %s should be > 0", step)
		assert.LessOrEqual(t, progress, 100, "Progress for %s should be <= 100", step)
	}

	// 进度单调递增
	assert.Less(t, StepProgress[StepSubmitting], StepProgress[StepGenerating])
	assert.Less(t, StepProgress[StepGenerating], StepProgress[StepUploading])
	assert.Less(t, StepProgress[StepUploading], StepProgress[StepDone])
	assert.Equal(t, 100, StepProgress[StepDone])
}

func TestStepMessages(t *testing.T) {
	steps := []string{StepSubmitting, StepGenerating, StepUploading, StepDone}

	for _, step := range steps {
		msg, ok := StepMessages[step]
		assert.True(t, ok, "Step %s should have message", step)
		assert.NotEmpty(t, msg, "Message for %s should not be empty", step)
	}
}

func TestProgressMessage_JSON(t *testing.T) {
	msg := &ProgressMessage{
		Type:      "job_progress",
		UserID:    1,
		JobID:     3,
		Status:    "processing",
		Step:      StepGenerating,
		Progress:  60,
		ResultURL: "https://cdn.example.com/results/3.jpg",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	err = json.Unmarshal(data, &raw)
	require.NoError(t, err)

	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "job_id")
	assert.Contains(t, raw, "result_url")

	var decoded ProgressMessage
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, msg.UserID, decoded.UserID)
	assert.Equal(t, msg.JobID, decoded.JobID)
	assert.Equal(t, msg.ResultURL, decoded.ResultURL)
}

func TestProgressMessage_OmitEmpty(t *testing.T) {
	msg := &ProgressMessage{
		UserID: 1,
		Status: "processing",
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	err = json.Unmarshal(data, &raw)
	require.NoError(t, err)

	_, hasMessage := raw["message"]
	_, hasError := raw["error"]
	_, hasResult := raw["result_url"]
	assert.False(t, hasMessage, "empty message should be omitted")
	assert.False(t, hasError, "empty error should be omitted")
	assert.False(t, hasResult, "empty result_url should be omitted")
}

func TestPublisherSubscriber_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	testCtx, testCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer testCancel()

	received := make(chan *ProgressMessage, 1)

	go func() {
		subscriber.Subscribe(testCtx, func(msg *ProgressMessage) {
			received <- msg
		})
	}()

	// 等订阅建立
	time.Sleep(100 * time.Millisecond)

	msg := &ProgressMessage{
		UserID: 123,
		JobID:  789,
		Status: "processing",
		Step:   StepGenerating,
	}

	err = publisher.PublishProgress(testCtx, msg)
	require.NoError(t, err)

	select {
	case receivedMsg := <-received:
		assert.Equal(t, msg.UserID, receivedMsg.UserID)
		assert.Equal(t, msg.JobID, receivedMsg.JobID)
		assert.Equal(t, "job_progress", receivedMsg.Type)
		assert.Equal(t, 60, receivedMsg.Progress) // 从阶段自动填充
		assert.NotEmpty(t, receivedMsg.Message)
	case <-testCtx.Done():
		t.Fatal("Timeout waiting for message")
	}
}

package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qs3c/everwith_go_server/config"
)

var ErrGenerationFailed = errors.New("image generation failed")

// 外部任务状态
const (
	statusPending   = "pending"
	statusRunning   = "running"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Client 外部图片生成服务客户端：提交任务后轮询直到出结果
type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	httpClient   *http.Client
}

type GenerateRequest struct {
	Mode       string   `json:"mode"`
	SourceURLs []string `json:"source_urls"`
	Prompt     string   `json:"prompt,omitempty"`
}

type taskResponse struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	OutputURL string `json:"output_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewClient(cfg *config.GenAPIConfig) *Client {
	pollInterval := time.Duration(cfg.PollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Generate 提交生成任务并等待完成，返回结果图 URL。
// 整体耗时由调用方传入的 ctx 控制。
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	task, err := c.submit(ctx, req)
	if err != nil {
		return "", err
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			task, err = c.getTask(ctx, task.TaskID)
			if err != nil {
				return "", err
			}
			switch task.Status {
			case statusSucceeded:
				return task.OutputURL, nil
			case statusFailed:
				return "", fmt.Errorf("%w: %s", ErrGenerationFailed, task.Error)
			case statusPending, statusRunning:
				// 继续轮询
			}
		}
	}
}

// Download 拉取结果图字节
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download result: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) submit(ctx context.Context, genReq *GenerateRequest) (*taskResponse, error) {
	payload, err := json.Marshal(genReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tasks", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.doTask(req)
}

func (c *Client) getTask(ctx context.Context, taskID string) (*taskResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/tasks/%s", c.baseURL, taskID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.doTask(req)
}

func (c *Client) doTask(req *http.Request) (*taskResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("genapi error (%d): %s", resp.StatusCode, string(body))
	}

	var task taskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode genapi response: %w", err)
	}
	return &task, nil
}

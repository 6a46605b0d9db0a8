package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteGenerationError 表示生成服务返回失败或网络调用失败。
// Message 尽量携带远端给出的原始错误信息，便于直接透传给调用方。
type RemoteGenerationError struct {
	Operation string
	Message   string
}

func (e *RemoteGenerationError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

type generateTextRequest struct {
	UserPrompt     string `json:"user_prompt"`
	EmotionalState string `json:"emotional_state"`
}

type generateImageRequest struct {
	TextContent string `json:"text_content"`
	SessionID   string `json:"session_id,omitempty"`
}

type generateVideoRequest struct {
	TextContent string `json:"text_content"`
	ImagePath   string `json:"image_path,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
}

type generateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Text      string `json:"text"`
	ImagePath string `json:"image_path"`
	VideoPath string `json:"video_path"`
	SessionID string `json:"session_id"`
}

// GenerationClient 封装对外部生成服务的三个调用。
// session_id 仅作为不透明令牌透传，客户端不做任何解释；
// 任何一次调用失败都直接返回错误，不做重试。
type GenerationClient struct {
	baseURL string
	http    httpDoer
}

// NewGenerationClient 构造 GenerationClient。
// timeout 控制单次调用的最长等待时间，避免管线被挂起的远端服务无限阻塞。
func NewGenerationClient(baseURL string, timeout time.Duration) *GenerationClient {
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &GenerationClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (c *GenerationClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 300 * time.Second}
		return
	}
	c.http = client
}

// GenerateText 根据用户输入与情绪状态生成引导文本。
func (c *GenerationClient) GenerateText(ctx context.Context, prompt, mood string) (string, error) {
	var result generateResponse
	if err := c.post(ctx, "generate-text", generateTextRequest{
		UserPrompt:     prompt,
		EmotionalState: mood,
	}, &result); err != nil {
		return "", err
	}
	return result.Text, nil
}

// GenerateImage 根据文本内容生成图片，返回远端给出的图片路径和会话ID。
func (c *GenerationClient) GenerateImage(ctx context.Context, textContent, sessionID string) (string, string, error) {
	var result generateResponse
	if err := c.post(ctx, "generate-image", generateImageRequest{
		TextContent: textContent,
		SessionID:   strings.TrimSpace(sessionID),
	}, &result); err != nil {
		return "", "", err
	}
	return result.ImagePath, result.SessionID, nil
}

// GenerateVideo 根据文本（可选携带图片路径）生成视频。
func (c *GenerationClient) GenerateVideo(ctx context.Context, textContent, imagePath, sessionID string) (string, string, error) {
	var result generateResponse
	if err := c.post(ctx, "generate-video", generateVideoRequest{
		TextContent: textContent,
		ImagePath:   strings.TrimSpace(imagePath),
		SessionID:   strings.TrimSpace(sessionID),
	}, &result); err != nil {
		return "", "", err
	}
	return result.VideoPath, result.SessionID, nil
}

func (c *GenerationClient) post(ctx context.Context, operation string, payload any, result *generateResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := c.baseURL + "/" + operation
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建生成请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return &RemoteGenerationError{Operation: operation, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &RemoteGenerationError{Operation: operation, Message: err.Error()}
	}

	var decoded generateResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return &RemoteGenerationError{Operation: operation, Message: "无法解析生成服务响应"}
	}

	if resp.StatusCode != http.StatusOK || !decoded.Success {
		message := strings.TrimSpace(decoded.Message)
		if message == "" {
			message = strings.TrimSpace(string(respBody))
		}
		if message == "" {
			message = resp.Status
		}
		return &RemoteGenerationError{Operation: operation, Message: message}
	}

	*result = decoded
	return nil
}

package huggingface

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/infrastructure/config"
	"cooksy/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const completionsPath = "/chat/completions"

// Client Hugging Face 推論服務客戶端（OpenAI 相容的 chat completions 介面）
type Client struct {
	client *resty.Client
	model  string
}

// chatRequest 表示 API 請求
type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	TopP        float64            `json:"top_p,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

// completionResponse 單次生成的響應結構
type completionResponse struct {
	Choices []struct {
		Message provider.Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// streamChunk 串流中的單一事件
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

// NewClient 創建新的生成服務客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.HuggingFace.BaseURL, "/")).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.HuggingFace.Token)).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Title", "Cooksy")

	if cfg.HuggingFace.Timeout > 0 {
		client.SetTimeout(cfg.HuggingFace.Timeout)
	}

	return &Client{
		client: client,
		model:  cfg.HuggingFace.Model,
	}
}

func (c *Client) buildRequest(req *provider.Request, stream bool) *chatRequest {
	return &chatRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stream:      stream,
	}
}

// Generate 單次生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(c.buildRequest(req, false)).
		Post(completionsPath)
	if err != nil {
		err = fmt.Errorf("failed to send request to generation service: %w", err)
		common.LogAICall("completion", c.model, time.Since(start), err)
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		err = fmt.Errorf("generation service returned error (status %d): %s", resp.StatusCode(), apiErrorMessage(resp.Body()))
		common.LogAICall("completion", c.model, time.Since(start), err)
		return nil, err
	}

	var result completionResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in generation response")
	}

	common.LogAICall("completion", c.model, time.Since(start), nil)

	out := &provider.Response{Content: result.Choices[0].Message.Content}
	out.Usage.PromptTokens = result.Usage.PromptTokens
	out.Usage.CompletionTokens = result.Usage.CompletionTokens
	out.Usage.TotalTokens = result.Usage.TotalTokens
	return out, nil
}

// Stream 以 SSE 串流方式生成回應
func (c *Client) Stream(ctx context.Context, req *provider.Request) (provider.DeltaStream, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/event-stream").
		SetBody(c.buildRequest(req, true)).
		SetDoNotParseResponse(true).
		Post(completionsPath)
	if err != nil {
		err = fmt.Errorf("failed to send request to generation service: %w", err)
		common.LogAICall("stream", c.model, time.Since(start), err)
		return nil, err
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		raw, _ := io.ReadAll(body)
		_ = body.Close()
		err = fmt.Errorf("generation service returned error (status %d): %s", resp.StatusCode(), apiErrorMessage(raw))
		common.LogAICall("stream", c.model, time.Since(start), err)
		return nil, err
	}

	common.LogDebug("Generation stream opened",
		zap.String("model", c.model),
		zap.Int("messages", len(req.Messages)),
		zap.Duration("latency", time.Since(start)),
	)

	return &sseStream{body: body, reader: bufio.NewReader(body)}, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// sseStream 解析 `data: {...}` 事件，直到 `data: [DONE]`
type sseStream struct {
	body     io.ReadCloser
	reader   *bufio.Reader
	finished bool
	done     bool
}

// Recv 回傳下一段非空文字，串流正常結束時回傳 io.EOF
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				if s.finished {
					s.done = true
					return "", io.EOF
				}
				return "", fmt.Errorf("generation stream ended before completion: %w", io.ErrUnexpectedEOF)
			}
			return "", fmt.Errorf("failed to read generation stream: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, ":") || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("failed to parse generation stream chunk: %w", err)
		}
		if len(chunk.Error) > 0 && string(chunk.Error) != "null" {
			return "", fmt.Errorf("generation stream error: %s", apiErrorMessage([]byte(payload)))
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.finished = true
		}
		if choice.Delta.Content != "" {
			return choice.Delta.Content, nil
		}
	}
}

// Close 關閉底層連線
func (s *sseStream) Close() error {
	return s.body.Close()
}

// apiErrorMessage 從錯誤響應中取出訊息，支援 {"error":"..."} 與 {"error":{"message":"..."}}
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return strings.TrimSpace(string(body))
	}

	var message string
	if err := json.Unmarshal(envelope.Error, &message); err == nil {
		return message
	}

	var detailed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detailed); err == nil && detailed.Message != "" {
		return detailed.Message
	}
	return string(envelope.Error)
}

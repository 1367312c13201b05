package provider

import (
	"context"
)

// 訊息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 表示與 AI 模型的對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示發送到 AI 提供者的請求
type Request struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
}

// Response 表示從 AI 提供者收到的單次響應
type Response struct {
	Content string `json:"content"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// DeltaStream 串流回應，Recv 在正常結束時回傳 io.EOF
type DeltaStream interface {
	Recv() (string, error)
	Close() error
}

// Generator 定義文字生成服務介面
type Generator interface {
	// Generate 單次生成（用於意圖分類）
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Stream 串流生成（用於食譜與聊天）
	Stream(ctx context.Context, req *Request) (DeltaStream, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// Close 關閉提供者連接
	Close() error
}

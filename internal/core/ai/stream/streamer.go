package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

// ApologyFormat 生成失敗時回傳給使用者的唯一片段
const ApologyFormat = "Waduh, ada sedikit gangguan di dapur Cooksy nih. Coba lagi ya. (Error: %v)"

// ErrAbandoned 消費者提前停止讀取
var ErrAbandoned = errors.New("stream abandoned by consumer")

// Status 串流狀態
type Status int

const (
	StatusIdle Status = iota
	StatusStreaming
	StatusCompleted
	StatusFailed      // 尚未產生任何輸出就失敗
	StatusInterrupted // 已有輸出後失敗
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStreaming:
		return "streaming"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Streamer 將生成服務的串流轉為文字片段
type Streamer struct {
	generator   provider.Generator
	temperature float64
	topP        float64
}

// NewStreamer 創建串流器
func NewStreamer(generator provider.Generator, temperature, topP float64) *Streamer {
	return &Streamer{
		generator:   generator,
		temperature: temperature,
		topP:        topP,
	}
}

// Start 建立一個尚未開始的串流，迭代開始時才會呼叫生成服務
func (s *Streamer) Start(ctx context.Context, messages []provider.Message, maxTokens int) *Stream {
	return &Stream{
		ctx:       ctx,
		generator: s.generator,
		req: &provider.Request{
			Messages:    messages,
			MaxTokens:   maxTokens,
			Temperature: s.temperature,
			TopP:        s.topP,
		},
	}
}

// Stream 單次使用的回應串流
type Stream struct {
	ctx       context.Context
	generator provider.Generator
	req       *provider.Request

	mu      sync.Mutex
	started bool
	status  Status
	err     error
	text    strings.Builder
}

// Fragments 回傳惰性片段序列，只能消費一次
func (st *Stream) Fragments() iter.Seq[string] {
	return func(yield func(string) bool) {
		st.mu.Lock()
		if st.started {
			st.mu.Unlock()
			return
		}
		st.started = true
		st.status = StatusStreaming
		st.mu.Unlock()

		start := time.Now()
		delta, err := st.generator.Stream(st.ctx, st.req)
		if err != nil {
			st.fail(err, yield)
			return
		}
		defer delta.Close()

		for {
			part, err := delta.Recv()
			if errors.Is(err, io.EOF) {
				st.finish(StatusCompleted, nil)
				common.LogDebug("串流完成",
					zap.Duration("耗時", time.Since(start)),
					zap.Int("長度", st.Len()),
				)
				return
			}
			if err != nil {
				st.fail(err, yield)
				return
			}
			if part == "" {
				continue
			}

			st.mu.Lock()
			st.text.WriteString(part)
			st.mu.Unlock()

			if !yield(part) {
				st.finish(StatusInterrupted, ErrAbandoned)
				return
			}
		}
	}
}

// fail 記錄失敗並輸出唯一的道歉片段
func (st *Stream) fail(err error, yield func(string) bool) {
	apology := fmt.Sprintf(ApologyFormat, err)

	st.mu.Lock()
	status := StatusFailed
	if st.text.Len() > 0 {
		status = StatusInterrupted
	}
	st.status = status
	st.err = common.ServiceFailure("response generation failed", err)
	st.text.WriteString(apology)
	st.mu.Unlock()

	common.LogWarn("回應串流失敗",
		zap.String("status", status.String()),
		zap.Error(err),
	)

	yield(apology)
}

func (st *Stream) finish(status Status, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.status = status
	st.err = err
}

// Status 目前狀態
func (st *Stream) Status() Status {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.status
}

// Err 失敗原因，成功時為 nil
func (st *Stream) Err() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.err
}

// Text 已輸出片段的完整內容（含道歉訊息）
func (st *Stream) Text() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.text.String()
}

// Len 已輸出內容的位元組數
func (st *Stream) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.text.Len()
}

package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull 等待中的請求已達上限
	ErrQueueFull = errors.New("queue is full")
	// ErrClosed 隊列已關閉
	ErrClosed = errors.New("queue manager is closed")
)

// Status 隊列狀態
type Status struct {
	Active         int   `json:"active"`
	Waiting        int64 `json:"waiting"`
	ProcessedCount int64 `json:"processed_count"`
	RejectedCount  int64 `json:"rejected_count"`
	Workers        int   `json:"workers"`
	MaxWaiting     int   `json:"max_waiting"`
}

// Manager 限制同時送往生成服務的請求數，本身也是 provider.Generator
type Manager struct {
	next       provider.Generator
	slots      chan struct{}
	maxWaiting int

	waiting   int64
	processed int64
	rejected  int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器；串流請求會佔用名額直到串流關閉
func NewManager(next provider.Generator, workers, maxWaiting int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if maxWaiting < 0 {
		maxWaiting = 0
	}
	return &Manager{
		next:       next,
		slots:      make(chan struct{}, workers),
		maxWaiting: maxWaiting,
		done:       make(chan struct{}),
	}
}

// acquire 取得名額，已滿時排隊等待
func (m *Manager) acquire(ctx context.Context) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	select {
	case m.slots <- struct{}{}:
		return nil
	default:
	}

	if atomic.AddInt64(&m.waiting, 1) > int64(m.maxWaiting) {
		atomic.AddInt64(&m.waiting, -1)
		atomic.AddInt64(&m.rejected, 1)
		common.LogWarn("Request rejected, queue is full",
			zap.Int("workers", cap(m.slots)),
			zap.Int("max_waiting", m.maxWaiting),
		)
		return ErrQueueFull
	}
	defer atomic.AddInt64(&m.waiting, -1)

	select {
	case m.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return ErrClosed
	}
}

func (m *Manager) release() {
	<-m.slots
	atomic.AddInt64(&m.processed, 1)
}

// Generate 實作 provider.Generator
func (m *Manager) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	defer m.release()
	return m.next.Generate(ctx, req)
}

// Stream 實作 provider.Generator
func (m *Manager) Stream(ctx context.Context, req *provider.Request) (provider.DeltaStream, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	delta, err := m.next.Stream(ctx, req)
	if err != nil {
		m.release()
		return nil, err
	}
	return &queuedStream{DeltaStream: delta, release: m.release}, nil
}

// GetModel 實作 provider.Generator
func (m *Manager) GetModel() string {
	return m.next.GetModel()
}

// Close 關閉隊列管理器，等待中的請求會收到 ErrClosed
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
	})
	return m.next.Close()
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		Active:         len(m.slots),
		Waiting:        atomic.LoadInt64(&m.waiting),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		RejectedCount:  atomic.LoadInt64(&m.rejected),
		Workers:        cap(m.slots),
		MaxWaiting:     m.maxWaiting,
	}
}

// queuedStream 關閉時歸還名額
type queuedStream struct {
	provider.DeltaStream
	release func()
	once    sync.Once
}

func (s *queuedStream) Close() error {
	err := s.DeltaStream.Close()
	s.once.Do(s.release)
	return err
}

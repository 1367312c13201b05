// Package providertest 提供測試用的生成服務替身
package providertest

import (
	"context"
	"io"
	"sync"

	"cooksy/internal/core/ai/provider"
)

// Generator 可設定回應的假生成服務
type Generator struct {
	// Reply 為 Generate 的回覆內容，GenerateErr 非空時回傳錯誤
	Reply       string
	GenerateErr error

	// Chunks 依序由串流輸出；StreamErr 在開啟串流時失敗，RecvErr 在片段輸出完後失敗
	Chunks    []string
	StreamErr error
	RecvErr   error

	mu             sync.Mutex
	generateCalls  []*provider.Request
	streamRequests []*provider.Request
}

// Generate 實作 provider.Generator
func (g *Generator) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	g.mu.Lock()
	g.generateCalls = append(g.generateCalls, req)
	g.mu.Unlock()

	if g.GenerateErr != nil {
		return nil, g.GenerateErr
	}
	return &provider.Response{Content: g.Reply}, nil
}

// Stream 實作 provider.Generator
func (g *Generator) Stream(ctx context.Context, req *provider.Request) (provider.DeltaStream, error) {
	g.mu.Lock()
	g.streamRequests = append(g.streamRequests, req)
	g.mu.Unlock()

	if g.StreamErr != nil {
		return nil, g.StreamErr
	}
	return &deltaStream{chunks: append([]string(nil), g.Chunks...), err: g.RecvErr}, nil
}

// GetModel 實作 provider.Generator
func (g *Generator) GetModel() string { return "fake-model" }

// Close 實作 provider.Generator
func (g *Generator) Close() error { return nil }

// GenerateCalls 已收到的單次生成請求
func (g *Generator) GenerateCalls() []*provider.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*provider.Request(nil), g.generateCalls...)
}

// StreamCalls 已收到的串流請求
func (g *Generator) StreamCalls() []*provider.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*provider.Request(nil), g.streamRequests...)
}

type deltaStream struct {
	chunks []string
	err    error
	closed bool
}

func (d *deltaStream) Recv() (string, error) {
	if len(d.chunks) > 0 {
		part := d.chunks[0]
		d.chunks = d.chunks[1:]
		return part, nil
	}
	if d.err != nil {
		return "", d.err
	}
	return "", io.EOF
}

func (d *deltaStream) Close() error {
	d.closed = true
	return nil
}

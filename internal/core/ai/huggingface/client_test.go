package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.HuggingFace.BaseURL = server.URL + "/"
	cfg.HuggingFace.Token = "hf_test_token"
	cfg.HuggingFace.Model = "test-model"
	return NewClient(cfg)
}

func TestGenerate(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Resep"}}],"usage":{"total_tokens":7}}`)
	})

	resp, err := client.Generate(context.Background(), &provider.Request{
		Messages:    []provider.Message{{Role: provider.RoleUser, Content: "hai"}},
		MaxTokens:   5,
		Temperature: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Resep", resp.Content)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 5, got.MaxTokens)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hai", got.Messages[0].Content)
}

func TestGenerateErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid token"}}`)
	})

	_, err := client.Generate(context.Background(), &provider.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestGenerateNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	})

	_, err := client.Generate(context.Background(), &provider.Request{})
	assert.Error(t, err)
}

func writeSSE(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, line := range lines {
		_, _ = fmt.Fprintf(w, "%s\n\n", line)
	}
}

func collect(t *testing.T, stream provider.DeltaStream) ([]string, error) {
	t.Helper()
	defer stream.Close()

	var parts []string
	for {
		part, err := stream.Recv()
		if err == io.EOF {
			return parts, nil
		}
		if err != nil {
			return parts, err
		}
		parts = append(parts, part)
	}
}

func TestStream(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeSSE(w,
			`: keep-alive`,
			`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
			`data: {"choices":[{"delta":{"content":"# Nasi"}}]}`,
			`data: {"choices":[{"delta":{"content":" Goreng"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`data: [DONE]`,
		)
	})

	stream, err := client.Stream(context.Background(), &provider.Request{
		Messages:    []provider.Message{{Role: provider.RoleUser, Content: "nasi, telur"}},
		MaxTokens:   2048,
		Temperature: 0.7,
		TopP:        0.95,
	})
	require.NoError(t, err)

	parts, err := collect(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"# Nasi", " Goreng"}, parts)

	assert.True(t, got.Stream)
	assert.Equal(t, 0.95, got.TopP)
	assert.Equal(t, 2048, got.MaxTokens)
}

func TestStreamFinishWithoutDone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`data: {"choices":[{"delta":{"content":"halo"}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		)
	})

	stream, err := client.Stream(context.Background(), &provider.Request{})
	require.NoError(t, err)

	parts, err := collect(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"halo"}, parts)
}

func TestStreamTruncated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, `data: {"choices":[{"delta":{"content":"setengah"}}]}`)
	})

	stream, err := client.Stream(context.Background(), &provider.Request{})
	require.NoError(t, err)

	parts, err := collect(t, stream)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []string{"setengah"}, parts)
}

func TestStreamErrorChunk(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, `data: {"error":"model overloaded"}`)
	})

	stream, err := client.Stream(context.Background(), &provider.Request{})
	require.NoError(t, err)

	_, err = collect(t, stream)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestStreamErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"loading"}`)
	})

	_, err := client.Stream(context.Background(), &provider.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "loading")
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "plain", apiErrorMessage([]byte(`{"error":"plain"}`)))
	assert.Equal(t, "nested", apiErrorMessage([]byte(`{"error":{"message":"nested"}}`)))
	assert.Equal(t, "not json", apiErrorMessage([]byte("not json")))
}

func TestGetModel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, "test-model", client.GetModel())
	assert.NoError(t, client.Close())
}

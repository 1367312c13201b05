package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/core/ai/provider/providertest"
	"cooksy/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessages = []provider.Message{{Role: provider.RoleUser, Content: "telur, nasi"}}

func drain(st *Stream) []string {
	var parts []string
	for part := range st.Fragments() {
		parts = append(parts, part)
	}
	return parts
}

func TestStreamCompleted(t *testing.T) {
	gen := &providertest.Generator{Chunks: []string{"# Nasi", "", " Goreng"}}
	st := NewStreamer(gen, 0.7, 0.95).Start(context.Background(), testMessages, 2048)

	assert.Equal(t, StatusIdle, st.Status())
	assert.Empty(t, gen.StreamCalls(), "nothing is sent before iteration")

	parts := drain(st)
	assert.Equal(t, []string{"# Nasi", " Goreng"}, parts)
	assert.Equal(t, StatusCompleted, st.Status())
	assert.NoError(t, st.Err())
	assert.Equal(t, "# Nasi Goreng", st.Text())

	calls := gen.StreamCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2048, calls[0].MaxTokens)
	assert.Equal(t, 0.7, calls[0].Temperature)
	assert.Equal(t, 0.95, calls[0].TopP)
}

func TestStreamSingleUse(t *testing.T) {
	gen := &providertest.Generator{Chunks: []string{"a", "b"}}
	st := NewStreamer(gen, 0.7, 0.95).Start(context.Background(), testMessages, 10)

	assert.Len(t, drain(st), 2)
	assert.Empty(t, drain(st))
	assert.Len(t, gen.StreamCalls(), 1)
}

func TestStreamFailedAtCall(t *testing.T) {
	cause := errors.New("connection refused")
	gen := &providertest.Generator{StreamErr: cause}
	st := NewStreamer(gen, 0.7, 0.95).Start(context.Background(), testMessages, 10)

	parts := drain(st)
	require.Len(t, parts, 1)
	assert.Equal(t, fmt.Sprintf(ApologyFormat, cause), parts[0])
	assert.Equal(t, StatusFailed, st.Status())
	assert.True(t, common.IsKind(st.Err(), common.ErrCodeServiceFailure))
	assert.ErrorIs(t, st.Err(), cause)
	assert.Equal(t, parts[0], st.Text())
}

func TestStreamInterrupted(t *testing.T) {
	cause := errors.New("unexpected EOF")
	gen := &providertest.Generator{Chunks: []string{"# Sop"}, RecvErr: cause}
	st := NewStreamer(gen, 0.7, 0.95).Start(context.Background(), testMessages, 10)

	parts := drain(st)
	require.Len(t, parts, 2)
	assert.Equal(t, "# Sop", parts[0])
	assert.Contains(t, parts[1], "Waduh, ada sedikit gangguan")
	assert.Equal(t, StatusInterrupted, st.Status())
	assert.ErrorIs(t, st.Err(), cause)
}

func TestStreamAbandoned(t *testing.T) {
	gen := &providertest.Generator{Chunks: []string{"a", "b", "c"}}
	st := NewStreamer(gen, 0.7, 0.95).Start(context.Background(), testMessages, 10)

	for range st.Fragments() {
		break
	}
	assert.Equal(t, StatusInterrupted, st.Status())
	assert.ErrorIs(t, st.Err(), ErrAbandoned)
	assert.Equal(t, "a", st.Text())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "interrupted", StatusInterrupted.String())
	assert.Equal(t, "unknown", Status(42).String())
}

package session

import (
	"sync"
	"testing"

	"cooksy/internal/core/ai/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(
		Message{Role: provider.RoleSystem, Content: "persona"},
		Message{Role: provider.RoleAssistant, Content: "Hai, Foodie!"},
	)
}

func TestCreateSession(t *testing.T) {
	store := newTestStore()
	s := store.Create()

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 2, s.Len())

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestSessionsAreIsolated(t *testing.T) {
	store := newTestStore()
	a := store.Create()
	b := store.Create()

	a.Append(Message{Role: provider.RoleUser, Content: "telur, nasi"})

	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 2, b.Len())
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.Len())
}

func TestVisibleSkipsSystem(t *testing.T) {
	s := newTestStore().Create()
	idx := s.Append(Message{Role: provider.RoleAssistant, Content: "# Nasi Goreng", IsRecipe: true, FileName: "resep_nasi_goreng.txt"})
	assert.Equal(t, 2, idx)

	visible := s.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, 1, visible[0].Index)
	assert.Equal(t, "Hai, Foodie!", visible[0].Content)
	assert.Equal(t, 2, visible[1].Index)
	assert.True(t, visible[1].IsRecipe)

	msg, ok := s.Get(2)
	require.True(t, ok)
	assert.Equal(t, "resep_nasi_goreng.txt", msg.FileName)

	_, ok = s.Get(3)
	assert.False(t, ok)
	_, ok = s.Get(-1)
	assert.False(t, ok)
}

func TestHistoryIsCopy(t *testing.T) {
	s := newTestStore().Create()
	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, provider.RoleSystem, history[0].Role)

	history[0].Content = "changed"
	assert.Equal(t, "persona", s.History()[0].Content)
}

func TestDeleteSession(t *testing.T) {
	store := newTestStore()
	s := store.Create()

	assert.True(t, store.Delete(s.ID))
	assert.False(t, store.Delete(s.ID))
	assert.Equal(t, 0, store.Len())
}

func TestConcurrentAppend(t *testing.T) {
	s := newTestStore().Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(Message{Role: provider.RoleUser, Content: "halo"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 52, s.Len())
}

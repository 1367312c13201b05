package session

import (
	"sync"
	"time"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/pkg/common"
)

// Message 對話中的一則訊息
type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	IsRecipe bool   `json:"is_recipe"`
	FileName string `json:"file_name,omitempty"`
}

// Entry 帶有位置的訊息，位置用於下載
type Entry struct {
	Index int `json:"index"`
	Message
}

// Session 單一使用者的對話，只能附加
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.RWMutex
	messages []Message
}

// Append 附加訊息並回傳其位置
func (s *Session) Append(msg Message) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return len(s.messages) - 1
}

// Len 訊息數量
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Get 取得指定位置的訊息
func (s *Session) Get(index int) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.messages) {
		return Message{}, false
	}
	return s.messages[index], true
}

// Visible 回傳使用者可見的訊息（不含 system）
func (s *Session) Visible() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.messages))
	for i, msg := range s.messages {
		if msg.Role == provider.RoleSystem {
			continue
		}
		entries = append(entries, Entry{Index: i, Message: msg})
	}
	return entries
}

// History 以生成服務的格式回傳完整對話
func (s *Session) History() []provider.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]provider.Message, len(s.messages))
	for i, msg := range s.messages {
		history[i] = provider.Message{Role: msg.Role, Content: msg.Content}
	}
	return history
}

// Store 記憶體中的對話儲存
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opening  []Message
}

// NewStore 創建對話儲存，opening 為每個新對話的開場訊息
func NewStore(opening ...Message) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		opening:  append([]Message(nil), opening...),
	}
}

// Create 建立新的對話
func (st *Store) Create() *Session {
	s := &Session{
		ID:        common.GenerateUUID(),
		CreatedAt: time.Now(),
		messages:  append([]Message(nil), st.opening...),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get 依 ID 取得對話
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete 刪除對話
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len 目前的對話數量
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

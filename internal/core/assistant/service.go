package assistant

import (
	"context"
	"iter"
	"net/http"
	"strings"
	"sync"
	"time"

	"cooksy/internal/core/ai/provider"
	"cooksy/internal/core/ai/stream"
	"cooksy/internal/core/recipe"
	"cooksy/internal/core/session"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrEmptyTurn 空白訊息
var ErrEmptyTurn = common.NewError(common.ErrCodeInvalidRequest, "pesan tidak boleh kosong", http.StatusBadRequest, nil)

// Service 對話流程：分類、選模式、檢索、組提示詞、串流回覆
type Service struct {
	res        *Resources
	classifier *Classifier
	streamer   *stream.Streamer
	sessions   *session.Store
}

// NewService 創建對話服務
func NewService(res *Resources) *Service {
	gen := res.Config.Generation
	return &Service{
		res:        res,
		classifier: NewClassifier(res.Generator, res.Cache, gen.ClassifierMaxTokens),
		streamer:   stream.NewStreamer(res.Generator, gen.Temperature, gen.TopP),
		sessions:   session.NewStore(OpeningMessages()...),
	}
}

// Sessions 對話儲存
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Resources 共享資源
func (s *Service) Resources() *Resources {
	return s.res
}

// Turn 一輪對話的結果，回覆內容透過 Fragments 惰性取得
type Turn struct {
	Intent               Intent
	IntentNotice         string
	ClassificationSource Source
	Ingredients          []string
	Mode                 Mode
	ModeNotice           string
	Inspiration          *recipe.Match

	session  *session.Session
	stream   *stream.Stream
	isRecipe bool
	started  time.Time

	once     sync.Once
	mu       sync.Mutex
	index    int
	fileName string
}

// HandleTurn 處理一則使用者訊息；只有空白訊息會回傳錯誤
func (s *Service) HandleTurn(ctx context.Context, sess *session.Session, text string) (*Turn, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTurn
	}

	sess.Append(session.Message{Role: provider.RoleUser, Content: text})

	cls := s.classifier.Classify(ctx, text)
	turn := &Turn{
		Intent:               cls.Intent,
		IntentNotice:         cls.Intent.Notice(),
		ClassificationSource: cls.Source,
		session:              sess,
		isRecipe:             cls.Intent == IntentRecipe,
		started:              time.Now(),
		index:                -1,
	}

	cfg := s.res.Config
	if cls.Intent == IntentRecipe {
		tokens := recipe.Normalize(text)
		mode := SelectModeWithLimit(tokens, cfg.Corpus.MinimalistMax)

		var messages []provider.Message
		switch mode {
		case ModeMinimalist:
			messages = MinimalistPrompt(tokens)
		default:
			if matches := s.res.Index.Search(tokens, 1); len(matches) > 0 {
				turn.Inspiration = &matches[0]
			}
			messages = DatasetPrompt(tokens, turn.Inspiration)
		}

		turn.Ingredients = tokens
		turn.Mode = mode
		turn.ModeNotice = mode.Notice()
		turn.stream = s.streamer.Start(ctx, messages, cfg.Generation.RecipeMaxTokens)
	} else {
		turn.stream = s.streamer.Start(ctx, ChatPrompt(sess.History()), cfg.Generation.ChatMaxTokens)
	}

	fields := []zap.Field{
		zap.String("session", sess.ID),
		zap.String("intent", string(turn.Intent)),
		zap.String("source", string(cls.Source)),
	}
	if turn.Mode != "" {
		fields = append(fields, zap.String("mode", string(turn.Mode)), zap.Int("ingredients", len(turn.Ingredients)))
	}
	if turn.Inspiration != nil {
		fields = append(fields, zap.String("inspiration", turn.Inspiration.Record.Title), zap.Float64("score", turn.Inspiration.Score))
	}
	common.LogInfo("對話回合開始", fields...)

	return turn, nil
}

// Fragments 回覆片段，只能消費一次；結束後回覆會寫入對話紀錄
func (t *Turn) Fragments() iter.Seq[string] {
	return func(yield func(string) bool) {
		defer t.record()
		for part := range t.stream.Fragments() {
			if !yield(part) {
				return
			}
		}
	}
}

// record 將助理回覆寫入對話，只執行一次
func (t *Turn) record() {
	t.once.Do(func() {
		content := t.stream.Text()
		msg := session.Message{
			Role:     provider.RoleAssistant,
			Content:  content,
			IsRecipe: t.isRecipe,
		}
		if t.isRecipe {
			msg.FileName = recipe.Filename(content)
		}
		index := t.session.Append(msg)

		t.mu.Lock()
		t.index = index
		t.fileName = msg.FileName
		t.mu.Unlock()

		common.LogInfo("對話回合結束",
			zap.String("session", t.session.ID),
			zap.String("status", t.stream.Status().String()),
			zap.Int("length", len(content)),
			zap.Duration("耗時", time.Since(t.started)),
		)
	})
}

// IsRecipe 回覆是否為食譜
func (t *Turn) IsRecipe() bool {
	return t.isRecipe
}

// Status 串流狀態
func (t *Turn) Status() stream.Status {
	return t.stream.Status()
}

// Err 串流失敗原因
func (t *Turn) Err() error {
	return t.stream.Err()
}

// Text 回覆全文
func (t *Turn) Text() string {
	return t.stream.Text()
}

// MessageIndex 回覆在對話中的位置，尚未結束時為 -1
func (t *Turn) MessageIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index
}

// FileName 食譜下載檔名，聊天回覆為空字串
func (t *Turn) FileName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fileName
}

// SearchResult 檢索預覽結果
type SearchResult struct {
	Ingredients []string       `json:"ingredients"`
	Mode        Mode           `json:"mode"`
	ModeNotice  string         `json:"mode_notice"`
	Matches     []recipe.Match `json:"matches"`
}

// Search 只做檢索，不呼叫生成服務；不論模式都會查詢索引
func Search(index *recipe.Index, text string, topN, minimalistMax int) *SearchResult {
	tokens := recipe.Normalize(text)
	mode := SelectModeWithLimit(tokens, minimalistMax)
	return &SearchResult{
		Ingredients: tokens,
		Mode:        mode,
		ModeNotice:  mode.Notice(),
		Matches:     index.Search(tokens, topN),
	}
}

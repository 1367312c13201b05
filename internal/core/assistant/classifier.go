package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"cooksy/internal/core/ai/cache"
	"cooksy/internal/core/ai/provider"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

const intentCacheNamespace = "intent"

// Intent 使用者意圖
type Intent string

const (
	IntentRecipe Intent = "recipe"
	IntentChat   Intent = "chat"
)

// Notice 意圖提示訊息
func (i Intent) Notice() string {
	if i == IntentRecipe {
		return "Siaap! Kayaknya ada yang mau masak enak nih. Aku cariin resep paling pas ya, Bestie! 📝"
	}
	return "Asiik, kita ngobrol santai aja ya! 💬"
}

// Source 分類結果來源
type Source string

const (
	SourceModel   Source = "model"
	SourceKeyword Source = "keyword"
	SourceCache   Source = "cache"
)

// Classification 分類結果；Err 非空表示模型失敗並改用關鍵字判斷
type Classification struct {
	Intent Intent
	Source Source
	Err    error
}

var recipeKeywords = []string{"masak", "resep", "buat", "bikin", "bahan", "ada", "punya", "dari", ","}

// ClassifyByKeywords 本地關鍵字判斷，不呼叫任何服務
func ClassifyByKeywords(turn string) Intent {
	lower := strings.ToLower(turn)
	for _, keyword := range recipeKeywords {
		if strings.Contains(lower, keyword) {
			return IntentRecipe
		}
	}
	return IntentChat
}

// Classifier 意圖分類器
type Classifier struct {
	generator provider.Generator
	cache     cache.Store
	maxTokens int
}

// NewClassifier 創建分類器，store 可為 nil
func NewClassifier(generator provider.Generator, store cache.Store, maxTokens int) *Classifier {
	return &Classifier{
		generator: generator,
		cache:     store,
		maxTokens: maxTokens,
	}
}

// Classify 判斷一句話是要食譜還是聊天，模型失敗時退回關鍵字判斷
func (c *Classifier) Classify(ctx context.Context, turn string) Classification {
	key := cacheKey(turn)
	if c.cache != nil {
		if val, err := c.cache.Get(ctx, intentCacheNamespace, key); err == nil {
			if intent := Intent(val); intent == IntentRecipe || intent == IntentChat {
				return Classification{Intent: intent, Source: SourceCache}
			}
		} else if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取分類快取失敗", zap.Error(err))
		}
	}

	start := time.Now()
	resp, err := c.generator.Generate(ctx, &provider.Request{
		Messages:    []provider.Message{{Role: provider.RoleUser, Content: ClassificationPrompt(turn)}},
		MaxTokens:   c.maxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		intent := ClassifyByKeywords(turn)
		common.LogWarn("意圖分類失敗，改用關鍵字判斷",
			zap.String("intent", string(intent)),
			zap.Duration("耗時", time.Since(start)),
			zap.Error(err),
		)
		return Classification{
			Intent: intent,
			Source: SourceKeyword,
			Err:    common.ClassificationFailure(err),
		}
	}

	intent := IntentChat
	if strings.Contains(strings.TrimSpace(resp.Content), "Resep") {
		intent = IntentRecipe
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, intentCacheNamespace, key, string(intent)); err != nil {
			common.LogWarn("寫入分類快取失敗", zap.Error(err))
		}
	}

	return Classification{Intent: intent, Source: SourceModel}
}

// cacheKey 統一空白與大小寫，讓相同問題共用快取
func cacheKey(turn string) string {
	return strings.Join(strings.Fields(strings.ToLower(turn)), " ")
}

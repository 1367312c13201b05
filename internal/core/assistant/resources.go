package assistant

import (
	"context"

	"cooksy/internal/core/ai/cache"
	"cooksy/internal/core/ai/huggingface"
	"cooksy/internal/core/ai/provider"
	"cooksy/internal/core/ai/queue"
	"cooksy/internal/core/recipe"
	"cooksy/internal/infrastructure/config"
	"cooksy/internal/pkg/common"

	"go.uber.org/zap"
)

// Resources 啟動時建立一次的共享資源，建立後唯讀
type Resources struct {
	Config        *config.Config
	Generator     provider.Generator
	Index         *recipe.Index
	Substitutions []recipe.Substitution
	Cache         cache.Store
	Queue         *queue.Manager // 未設定時不限制並行
}

// Setup 驗證憑證、載入資料集並建立生成服務客戶端
func Setup(ctx context.Context, cfg *config.Config) (*Resources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	index, err := LoadIndex(cfg)
	if err != nil {
		return nil, err
	}

	limiter := queue.NewManager(huggingface.NewClient(cfg), cfg.Queue.Workers, cfg.Queue.MaxWaiting)
	res := NewResources(cfg, limiter, index, cache.NewStore(ctx, cfg))
	res.Queue = limiter

	common.LogInfo("資源初始化完成",
		zap.String("model", limiter.GetModel()),
		zap.String("hf_key", common.MaskSecret(cfg.HuggingFace.Token)),
		zap.Int("recipes", index.Len()),
		zap.Int("workers", cfg.Queue.Workers),
	)
	return res, nil
}

// NewResources 以既有元件組合資源，store 可為 nil
func NewResources(cfg *config.Config, generator provider.Generator, index *recipe.Index, store cache.Store) *Resources {
	return &Resources{
		Config:        cfg,
		Generator:     generator,
		Index:         index,
		Substitutions: recipe.Substitutions(),
		Cache:         store,
	}
}

// LoadIndex 載入資料集並建立相似度索引，不需要憑證
func LoadIndex(cfg *config.Config) (*recipe.Index, error) {
	records, err := recipe.LoadCorpus(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	return recipe.BuildIndex(records, recipe.WithThreshold(cfg.Corpus.RelevanceThreshold)), nil
}

// Close 釋放資源
func (r *Resources) Close() error {
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			common.LogWarn("關閉快取失敗", zap.Error(err))
		}
	}
	return r.Generator.Close()
}

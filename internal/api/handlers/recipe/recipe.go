package recipe

import (
	"net/http"

	"cooksy/internal/core/assistant"
	"cooksy/internal/core/recipe"
	"cooksy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxTopN = 10

// SearchRequest 檢索預覽請求，食材以逗號分隔
type SearchRequest struct {
	Ingredients string `json:"ingredients" binding:"required"`
	TopN        int    `json:"top_n"`
}

// Handler 食譜檢索與替代表處理器
type Handler struct {
	index         *recipe.Index
	minimalistMax int
}

// NewHandler 創建食譜處理器
func NewHandler(index *recipe.Index, minimalistMax int) *Handler {
	return &Handler{
		index:         index,
		minimalistMax: minimalistMax,
	}
}

// Search 只做檢索，不呼叫生成服務
func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest)
		return
	}
	if req.TopN > maxTopN {
		req.TopN = maxTopN
	}

	result := assistant.Search(h.index, req.Ingredients, req.TopN, h.minimalistMax)
	common.LogDebug("檢索預覽",
		zap.Strings("ingredients", result.Ingredients),
		zap.Int("matches", len(result.Matches)),
	)
	c.JSON(http.StatusOK, result)
}

// Substitutions 食材替代表
func (h *Handler) Substitutions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"substitutions": recipe.Substitutions(),
	})
}

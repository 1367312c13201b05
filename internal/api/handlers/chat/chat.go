package chat

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cooksy/internal/core/assistant"
	"cooksy/internal/core/recipe"
	"cooksy/internal/core/session"
	"cooksy/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 對話相關處理器
type Handler struct {
	svc *assistant.Service
}

// NewHandler 創建對話處理器
func NewHandler(svc *assistant.Service) *Handler {
	return &Handler{svc: svc}
}

// MessageRequest 使用者訊息
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SessionResponse 對話內容（不含 system 訊息）
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Messages  []session.Entry `json:"messages"`
}

// MetaEvent 回覆開始前送出的資訊
type MetaEvent struct {
	Intent      assistant.Intent `json:"intent"`
	Notice      string           `json:"notice"`
	Source      assistant.Source `json:"source"`
	Mode        assistant.Mode   `json:"mode,omitempty"`
	ModeNotice  string           `json:"mode_notice,omitempty"`
	Ingredients []string         `json:"ingredients,omitempty"`
	Inspiration *recipe.Match    `json:"inspiration,omitempty"`
}

// DeltaEvent 回覆片段
type DeltaEvent struct {
	Text string `json:"text"`
}

// DoneEvent 回覆結束
type DoneEvent struct {
	Status       string `json:"status"`
	IsRecipe     bool   `json:"is_recipe"`
	FileName     string `json:"file_name,omitempty"`
	MessageIndex int    `json:"message_index"`
}

// CreateSession 建立新對話
func (h *Handler) CreateSession(c *gin.Context) {
	sess := h.svc.Sessions().Create()
	common.LogInfo("對話已建立", zap.String("session", sess.ID))

	c.JSON(http.StatusCreated, SessionResponse{
		SessionID: sess.ID,
		Messages:  sess.Visible(),
	})
}

// DeleteSession 刪除對話
func (h *Handler) DeleteSession(c *gin.Context) {
	if !h.svc.Sessions().Delete(c.Param("id")) {
		common.WriteError(c, common.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessages 取得對話紀錄
func (h *Handler) ListMessages(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: sess.ID,
		Messages:  sess.Visible(),
	})
}

// PostMessage 送出訊息並以 SSE 串流回覆
func (h *Handler) PostMessage(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	turn, err := h.svc.HandleTurn(ctx, sess, req.Content)
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) {
			common.WriteError(c, ce)
			return
		}
		common.WriteError(c, common.ErrInternalError)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("meta", MetaEvent{
		Intent:      turn.Intent,
		Notice:      turn.IntentNotice,
		Source:      turn.ClassificationSource,
		Mode:        turn.Mode,
		ModeNotice:  turn.ModeNotice,
		Ingredients: turn.Ingredients,
		Inspiration: turn.Inspiration,
	})
	c.Writer.Flush()

	for part := range turn.Fragments() {
		if ctx.Err() != nil {
			break
		}
		c.SSEvent("delta", DeltaEvent{Text: part})
		c.Writer.Flush()
	}

	if ctx.Err() != nil {
		common.LogWarn("用戶端已中斷串流",
			zap.String("session", sess.ID),
			zap.Error(ctx.Err()),
		)
		return
	}

	c.SSEvent("done", DoneEvent{
		Status:       turn.Status().String(),
		IsRecipe:     turn.IsRecipe(),
		FileName:     turn.FileName(),
		MessageIndex: turn.MessageIndex(),
	})
	c.Writer.Flush()
}

// Download 以純文字檔下載食譜回覆
func (h *Handler) Download(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		common.WriteError(c, common.ErrInvalidRequest)
		return
	}

	msg, ok := sess.Get(index)
	if !ok || !msg.IsRecipe {
		common.WriteError(c, common.ErrNotFound)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", msg.FileName))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(msg.Content))
}

func (h *Handler) lookup(c *gin.Context) (*session.Session, bool) {
	sess, ok := h.svc.Sessions().Get(c.Param("id"))
	if !ok {
		common.WriteError(c, common.ErrNotFound)
		return nil, false
	}
	return sess, true
}

package health

import (
	"net/http"
	"runtime"
	"time"

	"cooksy/internal/core/ai/queue"
	"cooksy/internal/core/assistant"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Model     string                 `json:"model"`
	Recipes   int                    `json:"recipes"`
	Sessions  int                    `json:"sessions"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	svc     *assistant.Service
	started time.Time
}

// NewHandler 創建健康檢查處理器
func NewHandler(svc *assistant.Service) *Handler {
	return &Handler{svc: svc, started: time.Now()}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	res := h.svc.Resources()

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var queueStatus *queue.Status
	if res.Queue != nil {
		queueStatus = res.Queue.GetQueueStatus()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   res.Config.App.Version,
		Model:     res.Generator.GetModel(),
		Recipes:   res.Index.Len(),
		Sessions:  h.svc.Sessions().Len(),
		Queue:     queueStatus,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"uptime":     time.Since(h.started).Round(time.Second).String(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// ReadinessCheck 資料集已載入才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	res := h.svc.Resources()
	if res.Index == nil || res.Index.Len() == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"recipes": res.Index.Len(),
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/store"
)

// ListRuns 合并运行日志
// GET /api/runs?topic=&limit=
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		success(c, []store.Run{})
		return
	}

	topic := ""
	if v := c.Query("topic"); v != "" {
		t, err := consolidation.ParseTopic(v)
		if err != nil {
			errorResponse(c, CodeBadRequest, "不支持的专题: "+v)
			return
		}
		topic = string(t)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.store.ListRuns(topic, limit)
	if err != nil {
		errorResponse(c, CodeInternal, "查询运行日志失败: "+err.Error())
		return
	}
	success(c, runs)
}

package api

import (
	"github.com/gin-gonic/gin"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/workspace"
)

// ListWorkspaces 工作区列表
// GET /api/workspaces
func (h *Handler) ListWorkspaces(c *gin.Context) {
	success(c, h.workspaces.List())
}

// CreateWorkspace 按专题加载模板并创建工作区
// POST /api/workspaces
func (h *Handler) CreateWorkspace(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, CodeBadRequest, "参数错误")
		return
	}
	topic, err := consolidation.ParseTopic(req.Topic)
	if err != nil {
		errorResponse(c, CodeBadRequest, "不支持的专题: "+req.Topic)
		return
	}

	w, err := h.workspaces.Create(topic)
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, w.Summary())
}

// GetWorkspace 工作区概要
// GET /api/workspaces/:id
func (h *Handler) GetWorkspace(c *gin.Context) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	success(c, w.Summary())
}

// DeleteWorkspace 关闭工作区
// DELETE /api/workspaces/:id
func (h *Handler) DeleteWorkspace(c *gin.Context) {
	if err := h.workspaces.Delete(c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	success(c, gin.H{"deleted": true})
}

// ReloadWorkspace 重新加载模板，丢弃已写入的合并结果
// POST /api/workspaces/:id/reload
func (h *Handler) ReloadWorkspace(c *gin.Context) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	if err := w.Reload(); err != nil {
		failWith(c, err)
		return
	}
	success(c, w.Summary())
}

// ConsolidateResponse 合并结果
type ConsolidateResponse struct {
	Run       workspace.RunOutcome `json:"run"`
	Workspace workspace.Summary    `json:"workspace"`
}

// Consolidate 执行一轮合并（切换到合并表页签时触发）
// POST /api/workspaces/:id/consolidate
func (h *Handler) Consolidate(c *gin.Context) {
	id := c.Param("id")
	outcome, err := h.workspaces.Consolidate(id)
	if err != nil {
		failWith(c, err)
		return
	}
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	success(c, ConsolidateResponse{Run: outcome, Workspace: w.Summary()})
}

// PreviewSheet 预览工作区中的一张表
// GET /api/workspaces/:id/sheets/:sheet
func (h *Handler) PreviewSheet(c *gin.Context) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	grid, err := w.Preview(c.Param("sheet"))
	if err != nil {
		failWith(c, err)
		return
	}
	success(c, grid)
}

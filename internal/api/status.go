package api

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Workspaces  int    `json:"workspaces"`  // 当前打开的工作区数
	TemplateDir string `json:"templateDir"` // 模板目录
	YearPrefix  string `json:"yearPrefix"`  // 模板文件名年份前缀
	Atomic      bool   `json:"atomic"`      // 合并失败时是否回滚
	RunLog      bool   `json:"runLog"`      // 是否记录运行日志
}

// TopicResponse 专题信息及模板是否就绪
type TopicResponse struct {
	consolidation.TopicInfo
	TemplateFile string `json:"templateFile"`
	Available    bool   `json:"available"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	success(c, StatusResponse{
		Workspaces:  len(h.workspaces.List()),
		TemplateDir: h.templateDir,
		YearPrefix:  h.yearPrefix,
		Atomic:      h.atomic,
		RunLog:      h.store != nil,
	})
}

// ListTopics 列出专题
// GET /api/topics
func (h *Handler) ListTopics(c *gin.Context) {
	topics := consolidation.Topics()
	out := make([]TopicResponse, 0, len(topics))
	for _, info := range topics {
		name := excel.TemplateFileName(h.yearPrefix, info.Name)
		_, err := os.Stat(filepath.Join(h.templateDir, name))
		out = append(out, TopicResponse{
			TopicInfo:    info,
			TemplateFile: name,
			Available:    err == nil,
		})
	}
	success(c, out)
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artificielle/consolidations/internal/service/workspace"
	"github.com/artificielle/consolidations/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportTTL       = 10 * time.Minute
)

// Download 直接下载工作区当前的模板工作簿（含合并结果）
// GET /api/workspaces/:id/download
func (h *Handler) Download(c *gin.Context) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	data, err := w.Save()
	if errors.Is(err, workspace.ErrWorkspaceNotFound) {
		failWith(c, err)
		return
	}
	if err != nil {
		errorResponse(c, CodeInternal, "写入导出文件失败: "+err.Error())
		return
	}
	h.recordExport(w.ID(), string(w.Topic()), w.FileName(), int64(len(data)))

	c.Header("Content-Disposition", buildContentDisposition(string(w.Topic()), w.FileName()))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Export 生成一次性下载链接
// POST /api/workspaces/:id/export
func (h *Handler) Export(c *gin.Context) {
	w, ok := h.workspaceFromParam(c)
	if !ok {
		return
	}
	data, err := w.Save()
	if errors.Is(err, workspace.ErrWorkspaceNotFound) {
		failWith(c, err)
		return
	}
	if err != nil {
		errorResponse(c, CodeInternal, "写入导出文件失败: "+err.Error())
		return
	}

	tempPath := filepath.Join(os.TempDir(), fmt.Sprintf("consolidations_export_%d_%d.xlsx", time.Now().UnixNano(), os.Getpid()))
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		_ = os.Remove(tempPath)
		errorResponse(c, CodeInternal, "写入导出文件失败: "+err.Error())
		return
	}
	h.recordExport(w.ID(), string(w.Topic()), w.FileName(), int64(len(data)))

	token := h.downloads.put(exportDownload{
		filePath: tempPath,
		fileName: w.FileName(),
		topic:    string(w.Topic()),
	}, exportTTL)
	success(c, gin.H{
		"fileName":    w.FileName(),
		"fileSize":    len(data),
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport 下载导出的 Excel 文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	item, ok := h.downloads.take(c.Param("token"))
	if !ok {
		errorResponse(c, CodeExportExpired, "下载链接已失效")
		return
	}
	defer func() { _ = os.Remove(item.filePath) }()

	if _, err := os.Stat(item.filePath); err != nil {
		errorResponse(c, CodeExportExpired, "导出文件不存在")
		return
	}

	c.Header("Content-Disposition", buildContentDisposition(item.topic, item.fileName))
	c.Header("Content-Type", xlsxContentType)
	c.File(item.filePath)
}

func (h *Handler) recordExport(workspaceID, topic, fileName string, size int64) {
	if h.store == nil {
		return
	}
	if _, err := h.store.RecordExport(store.Export{
		WorkspaceID: workspaceID,
		Topic:       topic,
		FileName:    fileName,
		FileSize:    size,
	}); err != nil {
		h.log.WithError(err).WithField("workspace", workspaceID).Warn("导出日志写入失败")
	}
}

// buildContentDisposition ASCII 文件名用专题 key，filename* 带中文原名
func buildContentDisposition(topic, fileName string) string {
	ascii := strings.TrimSpace(topic)
	if ascii == "" {
		ascii = "consolidated"
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", ascii+".xlsx", url.PathEscape(fileName))
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/service/workspace"
	"github.com/artificielle/consolidations/internal/store"
)

// Options 处理器依赖
type Options struct {
	Workspaces     *workspace.Manager
	Store          *store.Store
	TemplateDir    string
	YearPrefix     string
	Atomic         bool
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

// Handler API 处理器
type Handler struct {
	workspaces  *workspace.Manager
	store       *store.Store
	templateDir string
	yearPrefix  string
	atomic      bool
	maxUpload   int64
	downloads   *exportDownloadStore
	log         logrus.FieldLogger
}

// NewHandler 创建 API 处理器
func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Handler{
		workspaces:  opts.Workspaces,
		store:       opts.Store,
		templateDir: opts.TemplateDir,
		yearPrefix:  opts.YearPrefix,
		atomic:      opts.Atomic,
		maxUpload:   maxUpload,
		downloads:   newExportDownloadStore(),
		log:         log,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)
	router.GET("/topics", h.ListTopics)

	// 工作区
	router.GET("/workspaces", h.ListWorkspaces)
	router.POST("/workspaces", h.CreateWorkspace)
	router.GET("/workspaces/:id", h.GetWorkspace)
	router.DELETE("/workspaces/:id", h.DeleteWorkspace)
	router.POST("/workspaces/:id/reload", h.ReloadWorkspace)

	// 上传
	router.POST("/workspaces/:id/subsidiaries", h.UploadSubsidiaries)
	router.POST("/workspaces/:id/branches", h.UploadBranches)

	// 合并与预览
	router.POST("/workspaces/:id/consolidate", h.Consolidate)
	router.GET("/workspaces/:id/sheets/:sheet", h.PreviewSheet)

	// 导出
	router.GET("/workspaces/:id/download", h.Download)
	router.POST("/workspaces/:id/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)

	// 运行日志
	router.GET("/runs", h.ListRuns)
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// failWith 按错误类型转换为错误码与中文提示
func failWith(c *gin.Context, err error) {
	code, message := describeError(err)
	errorResponse(c, code, message)
}

// workspaceFromParam 取路径中的工作区；不存在时已写出响应
func (h *Handler) workspaceFromParam(c *gin.Context) (*workspace.Workspace, bool) {
	w, err := h.workspaces.Get(c.Param("id"))
	if err != nil {
		failWith(c, err)
		return nil, false
	}
	return w, true
}

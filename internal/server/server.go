package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/api"
	"github.com/artificielle/consolidations/internal/config"
	"github.com/artificielle/consolidations/internal/service/workspace"
	"github.com/artificielle/consolidations/internal/store"
)

// sweepInterval 过期工作区的清理周期
const sweepInterval = 10 * time.Minute

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	store      *store.Store
	workspaces *workspace.Manager
	log        *logrus.Logger
	stop       chan struct{}
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, log *logrus.Logger) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "consolidations.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	templateDir := config.TemplateDir(cfg)
	manager, err := workspace.NewManager(workspace.ManagerOptions{
		TemplateDir: templateDir,
		YearPrefix:  cfg.Templates.YearPrefix,
		DataDir:     dataDir,
		Atomic:      cfg.Consolidation.Atomic,
		Recorder:    sqliteStore,
		Logger:      log,
	})
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	handler := api.NewHandler(api.Options{
		Workspaces:     manager,
		Store:          sqliteStore,
		TemplateDir:    templateDir,
		YearPrefix:     cfg.Templates.YearPrefix,
		Atomic:         cfg.Consolidation.Atomic,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         log,
	})

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	s := &Server{
		router:     router,
		store:      sqliteStore,
		workspaces: manager,
		log:        log,
		stop:       make(chan struct{}),
	}
	s.setupRoutes(handler, templateDir)
	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *api.Handler, templateDir string) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler.RegisterRoutes(s.router.Group("/api"))

	// 模板原件（只读）
	s.router.Static("/xlsx-templates", templateDir)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.Response{Code: 404, Message: "not found"})
	})
}

// Handler 供测试直接使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器，同时定期清理过期工作区
func (s *Server) Run(addr string) error {
	go s.sweepLoop()
	return s.router.Run(addr)
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if n := s.workspaces.Sweep(now); n > 0 {
				s.log.WithField("count", n).Info("已清理过期工作区")
			}
		case <-s.stop:
			return
		}
	}
}

// Close 关闭全部工作区与数据库
func (s *Server) Close() error {
	close(s.stop)
	if err := s.workspaces.Close(); err != nil {
		s.log.WithError(err).Warn("关闭工作区失败")
	}
	return s.store.Close()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/config"
	"github.com/artificielle/consolidations/internal/server"
)

var (
	port        = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode     = flag.Bool("dev", false, "开发模式")
	dataDir     = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	templateDir = flag.String("templateDir", "", "模板目录 (覆盖配置文件)")
	atomic      = flag.Bool("atomic", false, "合并失败时不保留任何写入")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Consolidations - 合并报表汇总工具")
	fmt.Println("==========================================")

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.WithError(err).Warn("加载配置失败，使用默认配置")
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
		log.SetLevel(logrus.DebugLevel)
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *templateDir != "" {
		cfg.Templates.Dir = *templateDir
	}
	if *atomic {
		cfg.Consolidation.Atomic = true
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("配置无效")
	}

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("服务初始化失败")
	}
	fmt.Printf("模板目录: %s\n", config.TemplateDir(cfg))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.WithError(err).Fatal("服务启动失败")
		}
	}()
	fmt.Printf("API 地址: %s/api/status\n", url)

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	if err := srv.Close(); err != nil {
		log.WithError(err).Warn("关闭服务失败")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iabetor/toneo/internal/config"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/pipeline"
	"github.com/iabetor/toneo/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/toneo.yaml", "配置文件路径（不存在时使用默认配置）")
	flag.Parse()

	cfg, watchPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] Toneo %s 启动中 (log_level=%s)", server.Version, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(ctx, cfg, pipeline.Options{})
	if err != nil {
		logger.Errorf("[main] 初始化失败: %v", err)
		os.Exit(1)
	}
	defer p.Close()

	srv, err := server.New(cfg, p.ServerDeps())
	if err != nil {
		logger.Errorf("[main] 创建 HTTP 服务失败: %v", err)
		os.Exit(1)
	}

	// 配置热加载只调整日志级别，其余配置需要重启
	if watchPath != "" {
		if err := config.Watch(ctx, watchPath, func(c *config.Config) {
			if err := logger.SetLevel(c.Log.Level); err != nil {
				logger.Warnf("[main] 调整日志级别失败: %v", err)
				return
			}
			logger.Infof("[main] 日志级别已调整为 %s", c.Log.Level)
		}); err != nil {
			logger.Warnf("[main] 无法监听配置文件: %v", err)
		}
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("[main] %v", err)
			p.Close()
			logger.Sync()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("[main] 收到退出信号，正在关闭...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("[main] 关闭 HTTP 服务超时: %v", err)
	}

	logger.Info("[main] Toneo 已停止")
}

// loadConfig 配置文件存在时加载它并返回监听路径，否则只用默认值和环境变量。
func loadConfig(path string) (*config.Config, string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg, err := config.Default()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

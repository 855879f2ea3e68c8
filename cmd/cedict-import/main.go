package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iabetor/toneo/internal/config"
	"github.com/iabetor/toneo/internal/dictionary"
	"github.com/iabetor/toneo/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/toneo.yaml", "配置文件路径（不存在时使用默认配置）")
	dbPath := flag.String("db", "", "词典数据库路径，覆盖配置")
	cacheDir := flag.String("cache", "", "下载缓存目录，覆盖配置")
	cedictURL := flag.String("cedict-url", "", "CC-CEDICT 下载地址")
	hskURL := flag.String("hsk-url", "", "HSK 3.0 词表下载地址")
	force := flag.Bool("force", false, "忽略缓存重新下载")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := firstNonEmpty(*dbPath, cfg.Dictionary.Path)
	store, err := dictionary.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "打开词典数据库失败: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	im := &dictionary.Importer{
		Store:     store,
		CacheDir:  firstNonEmpty(*cacheDir, cfg.Dictionary.CacheDir),
		CEDICTURL: firstNonEmpty(*cedictURL, cfg.Dictionary.CEDICTURL),
		HSKURL:    firstNonEmpty(*hskURL, cfg.Dictionary.HSKURL),
		Force:     *force,
	}

	start := time.Now()
	n, err := im.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "导入失败: %v\n", err)
		store.Close()
		os.Exit(1)
	}
	fmt.Printf("导入完成: %d 个词条 -> %s（耗时 %s）\n", n, path, time.Since(start).Round(time.Millisecond))
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default()
	}
	return config.Load(path)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

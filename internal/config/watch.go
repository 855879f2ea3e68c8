package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/iabetor/toneo/internal/logger"
)

// debounce 编辑器保存时往往连续触发多个事件，合并为一次重新加载。
const debounce = 200 * time.Millisecond

// Watch 监听配置文件变化，重新加载成功后调用 onChange。
// 监听所在目录而不是文件本身，以兼容先写临时文件再改名的保存方式。
// ctx 取消时停止监听。
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("解析配置文件路径失败: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("监听目录失败: %w", err)
	}

	go func() {
		defer w.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				cfg, err := Load(abs)
				if err != nil {
					logger.Warnf("[config] 重新加载配置失败，保持当前配置: %v", err)
					continue
				}
				logger.Infof("[config] 配置已重新加载: %s", abs)
				onChange(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warnf("[config] 文件监听错误: %v", err)
			}
		}
	}()

	logger.Infof("[config] 正在监听配置文件: %s", abs)
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce 合并编辑器保存时产生的连续事件。
const reloadDebounce = 200 * time.Millisecond

// configWatcher 监视配置文件所在目录。
//
// 监视目录而非文件本身：编辑器常以写临时文件再 rename 的方式保存，
// 直接监视文件会在第一次保存后丢失后续事件。
type configWatcher struct {
	w      *fsnotify.Watcher
	name   string
	logger *slog.Logger
}

// newConfigWatcher 创建监视器并立即开始监视，之后的修改都会被 run 观察到。
func newConfigWatcher(file string, logger *slog.Logger) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xsockd: create watcher: %w", err)
	}
	dir := filepath.Dir(file)
	if err := w.Add(dir); err != nil {
		_ = w.Close() //nolint:errcheck // 已有更具体的错误
		return nil, fmt.Errorf("xsockd: watch %s: %w", dir, err)
	}
	return &configWatcher{w: w, name: filepath.Base(file), logger: logger}, nil
}

// run 在配置文件变更后调用 onChange，ctx 结束时关闭监视器并返回。
func (cw *configWatcher) run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return cw.close()

		case ev, ok := <-cw.w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != cw.name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(reloadDebounce)
			}

		case <-fire:
			onChange()

		case werr, ok := <-cw.w.Errors:
			if !ok {
				return nil
			}
			cw.logger.Warn("xsockd: config watch error", slog.Any("error", werr))
		}
	}
}

func (cw *configWatcher) close() error {
	if err := cw.w.Close(); err != nil {
		return fmt.Errorf("xsockd: close watcher: %w", err)
	}
	return nil
}

// levelReloader 返回重新读取配置并更新日志级别的回调。
// 只有 log.level 支持热更新，其他字段变化需要重启。
func levelReloader(file string, level *slog.LevelVar, logger *slog.Logger) func() {
	return func() {
		cfg, err := loadConfig(file)
		if err != nil {
			logger.Warn("xsockd: reload config failed, keeping current settings", slog.String("file", file), slog.Any("error", err))
			return
		}
		l, err := parseLevel(cfg.Log.Level)
		if err != nil {
			logger.Warn("xsockd: invalid log level in reloaded config", slog.Any("error", err))
			return
		}
		if old := level.Level(); old != l {
			level.Set(l)
			logger.Info("xsockd: log level changed", slog.String("from", old.String()), slog.String("to", l.String()))
		}
	}
}

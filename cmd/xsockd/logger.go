package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/omeyang/xipc/pkg/util/xfile"
)

// logDirPerm 新建日志目录的权限。
const logDirPerm = 0o750

// parseLevel 解析日志级别，大小写不敏感。
func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", errInvalidConfig, s)
	}
	return l, nil
}

// nopCloser stderr 输出不需要关闭。
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// buildLogger 按配置构造 logger。级别由 level 持有，可在运行中调整。
// 返回的 io.Closer 在退出前关闭日志文件。
func buildLogger(cfg logSettings, level *slog.LevelVar, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	l, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	level.Set(l)

	out := stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file, err := filepath.Abs(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("xsockd: resolve log file: %w", err)
		}
		if err := xfile.EnsureParentDir(file, logDirPerm); err != nil {
			return nil, nil, fmt.Errorf("xsockd: prepare log dir: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		out, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer, nil
}

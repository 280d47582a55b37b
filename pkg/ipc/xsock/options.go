package xsock

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// DefaultShutdownTimeout Stop 等待监听 goroutine 退出的默认时长。
const DefaultShutdownTimeout = 5 * time.Second

// options Manager 配置选项（非导出，仅通过 Option 函数式选项设置）。
type options struct {
	// Bridge 原生系统调用实现。
	Bridge Bridge

	// Logger 日志记录器。
	Logger *slog.Logger

	// PanicHandler 处理器 panic 回调。
	PanicHandler PanicHandler

	// HostUID 允许接入的宿主 uid（uid 0 始终允许）。
	HostUID int

	// MeterProvider 指标提供者，nil 时使用全局提供者。
	MeterProvider metric.MeterProvider

	// ShutdownTimeout Stop 等待监听 goroutine 退出的时长。
	ShutdownTimeout time.Duration

	// NameResolver 对端名称解析器。
	NameResolver *NameResolver
}

// Option 配置 [Manager]。
type Option func(*options)

func defaultOptions() *options {
	return &options{
		HostUID:         os.Getuid(),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// WithBridge 替换原生系统调用实现，主要用于测试。
func WithBridge(b Bridge) Option {
	return func(o *options) {
		if b != nil {
			o.Bridge = b
		}
	}
}

// WithLogger 设置日志记录器，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithPanicHandler 设置处理器 panic 回调，默认记录错误日志和堆栈。
func WithPanicHandler(h PanicHandler) Option {
	return func(o *options) {
		if h != nil {
			o.PanicHandler = h
		}
	}
}

// WithHostUID 设置宿主 uid，默认 os.Getuid()。
func WithHostUID(uid int) Option {
	return func(o *options) { o.HostUID = uid }
}

// WithMeterProvider 设置 OpenTelemetry 指标提供者。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.MeterProvider = mp
		}
	}
}

// WithShutdownTimeout 设置 Stop 等待监听 goroutine 退出的时长。
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) { o.ShutdownTimeout = d }
}

// WithNameResolver 设置对端名称解析器，默认 [DefaultNameResolver]。
func WithNameResolver(r *NameResolver) Option {
	return func(o *options) {
		if r != nil {
			o.NameResolver = r
		}
	}
}

// validateOptions 校验并补齐依赖 Logger 的默认值。
func validateOptions(o *options) error {
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("xsock: shutdown timeout must be positive, got %v", o.ShutdownTimeout)
	}
	if o.Bridge == nil {
		o.Bridge = NewNativeBridge()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.NameResolver == nil {
		o.NameResolver = DefaultNameResolver()
	}
	if o.PanicHandler == nil {
		logger := o.Logger
		o.PanicHandler = func(conn *ClientConn, err error, stack []byte) {
			attrs := []any{slog.Int("code", CodeOf(err)), slog.Any("error", err), slog.String("stack", string(stack))}
			if conn != nil {
				attrs = append(attrs, slog.Any("conn", conn))
			}
			logger.Error("xsock: recovered panic", attrs...)
		}
	}
	return nil
}

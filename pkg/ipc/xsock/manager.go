package xsock

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Manager 本地套接字服务端的对外入口。
//
// 持有运行参数和服务端，每个通过认证的连接在独立 goroutine 中交给 [Handler]。
// 处理器 panic 被恢复并交给 [PanicHandler]，不会影响监听。
type Manager struct {
	cfg     *RunConfig
	opts    *options
	sink    ErrorSink
	metrics *serverMetrics
	srv     *server

	handlers sync.WaitGroup
}

// NewManager 创建 Manager。参数在 Start 时才校验，这里只检查 cfg 非空和选项。
func NewManager(cfg *RunConfig, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, ErrConfigMissing.New()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := validateOptions(o); err != nil {
		return nil, err
	}

	metrics, err := newServerMetrics(o.MeterProvider, cfg.Title())
	if err != nil {
		return nil, err
	}

	sink := cfg.ErrorSink()
	if sink == nil {
		sink = LogErrorSink{Logger: o.Logger, Title: cfg.Title()}
	}

	m := &Manager{
		cfg:     cfg,
		opts:    o,
		sink:    sink,
		metrics: metrics,
	}
	m.srv = newServer(cfg, o, sink, metrics, m.dispatch)
	return m, nil
}

// Start 启动监听。已在监听时返回 [ErrServerRunning]。
func (m *Manager) Start() error {
	return m.srv.start()
}

// Stop 停止监听，不关闭已交给处理器的连接。未在监听时为空操作。
func (m *Manager) Stop() error {
	return m.srv.stop()
}

// Wait 等待所有处理器 goroutine 返回，或 ctx 结束。
//
// 监听 goroutine 仍可能分发新连接时（Starting/Listening/Stopping）返回 [ErrServerRunning]，
// 应在 Stop 之后调用。
func (m *Manager) Wait(ctx context.Context) error {
	switch st := m.State(); st {
	case StateStarting, StateListening, StateStopping:
		return ErrServerRunning.New(m.cfg.Title(), st)
	}
	done := make(chan struct{})
	go func() {
		m.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State 返回服务端状态。
func (m *Manager) State() ServerState {
	return m.srv.State()
}

// IsRunning 报告是否在监听。
func (m *Manager) IsRunning() bool {
	return m.State() == StateListening
}

// Config 返回运行参数。
func (m *Manager) Config() *RunConfig {
	return m.cfg
}

// Logger 返回 Manager 使用的日志记录器，处理器可以直接使用。
func (m *Manager) Logger() *slog.Logger {
	return m.opts.Logger
}

// ErrorSink 返回生效的错误回调。
func (m *Manager) ErrorSink() ErrorSink {
	return m.sink
}

// dispatch 在新 goroutine 中执行处理器。
func (m *Manager) dispatch(conn *ClientConn) {
	m.handlers.Add(1)
	m.metrics.handlerActive(1)
	go func() {
		defer m.handlers.Done()
		defer m.metrics.handlerActive(-1)
		defer m.recoverHandler(conn)

		m.cfg.Handler().OnClientAccepted(m, conn)
	}()
}

// recoverHandler 恢复处理器 panic：计数、关闭连接、交给 PanicHandler。
func (m *Manager) recoverHandler(conn *ClientConn) {
	r := recover()
	if r == nil {
		return
	}
	stack := debug.Stack()
	m.metrics.handlerPanic()
	if err := conn.Close(); err != nil {
		m.opts.Logger.Warn("xsock: close connection after panic failed", slog.String("conn", conn.ID()), slog.Any("error", err))
	}
	m.opts.PanicHandler(conn, ErrHandlerPanic.New(m.cfg.Title(), conn.ID(), r), stack)
}

package xsock

import (
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omeyang/xipc/pkg/util/xfile"
)

// server 本地套接字服务端：启动检查、监听 fd 生命周期和接入循环。
//
// Start/Stop 由 mu 串行化；state 和 cfg.fd 是原子值，监听 goroutine 无锁读取。
// 监听 fd 的所有权在 listenFD，cfg.fd 只是对外可见的副本，被外部置为 -1 时
// 监听 goroutine 退出，listenFD 仍由下一次 Stop 或 Start 关闭。
type server struct {
	cfg     *RunConfig
	opts    *options
	sink    ErrorSink
	metrics *serverMetrics
	logger  *slog.Logger

	// handoff 把通过认证并设置好超时的连接交给分发层。
	handoff func(*ClientConn)

	mu       sync.Mutex
	state    atomic.Int32
	listenFD int
	stopCh   chan struct{}
	done     chan struct{}
}

func newServer(cfg *RunConfig, opts *options, sink ErrorSink, metrics *serverMetrics, handoff func(*ClientConn)) *server {
	return &server{
		cfg:     cfg,
		opts:    opts,
		sink:    sink,
		metrics: metrics,
		logger:   opts.Logger.With(slog.String("title", cfg.Title())),
		handoff:  handoff,
		listenFD: -1,
	}
}

// State 返回当前状态。
func (s *server) State() ServerState {
	return ServerState(s.state.Load())
}

func (s *server) setState(st ServerState) {
	s.state.Store(int32(st))
}

// start 执行启动检查、创建监听并启动监听 goroutine。
//
// 检查失败时没有任何副作用，状态置为 Failed，可以修正参数后重试。
func (s *server) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.State(); !st.canStart() {
		return ErrServerRunning.New(s.cfg.Title(), st)
	}
	// 上一轮监听因 fd 失效自行结束，先回收它的监听 fd
	if s.listenFD >= 0 {
		if err := s.stopLocked(); err != nil {
			s.logger.Warn("xsock: release previous listener failed", slog.Any("error", err))
		}
	}
	s.setState(StateStarting)

	fd, err := s.listen()
	if err != nil {
		s.setState(StateFailed)
		s.logger.Error("xsock: start failed", slog.Int("code", CodeOf(err)), slog.Any("error", err))
		return err
	}

	s.listenFD = fd
	s.cfg.SetFD(fd)
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.setState(StateListening)

	go s.acceptLoop(fd, s.stopCh, s.done)

	s.logger.Info("xsock: listening", slog.Any("config", s.cfg))
	return nil
}

// listen 按顺序执行启动检查，最后创建监听 fd。
func (s *server) listen() (int, error) {
	cfg := s.cfg
	if err := cfg.validate(); err != nil {
		return -1, err
	}

	path := cfg.Path()
	if !cfg.IsAbstractNamespace() {
		if !filepath.IsAbs(path) {
			return -1, ErrPathNotAbsolute.New(path, cfg.Title())
		}
		if err := xfile.EnsureSocketDir(path); err != nil {
			return -1, ErrSocketDirInvalid.Wrap(err, path, cfg.Title())
		}
		if err := xfile.RemoveStaleSocket(path); err != nil {
			return -1, ErrStaleSocketRemove.Wrap(err, path, cfg.Title())
		}
	}

	fd, err := s.opts.Bridge.CreateListener(cfg.Address(), cfg.Backlog())
	if err != nil {
		return -1, err
	}
	if fd < 0 {
		return -1, ErrListenerFDInvalid.New(fd, cfg.Title())
	}
	return fd, nil
}

// stop 停止监听：通知监听 goroutine、关闭监听 fd、删除套接字文件，
// 然后等待监听 goroutine 退出。各步骤失败不会中断后续步骤，错误合并返回。
// 已接入的连接不受影响。未持有监听 fd 时为空操作。
func (s *server) stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *server) stopLocked() error {
	if s.listenFD < 0 {
		return nil
	}
	// 监听 goroutine 已自行转为 Stopped 时 CAS 失败，只做清理
	s.state.CompareAndSwap(int32(StateListening), int32(StateStopping))
	close(s.stopCh)

	var causes []error

	fd := s.listenFD
	s.listenFD = -1
	s.cfg.SetFD(-1)
	if err := s.opts.Bridge.CloseSocket(fd); err != nil {
		causes = append(causes, err)
	}

	if !s.cfg.IsAbstractNamespace() {
		if err := xfile.RemoveStaleSocket(s.cfg.Path()); err != nil {
			causes = append(causes, ErrStaleSocketRemove.Wrap(err, s.cfg.Path(), s.cfg.Title()))
		}
	}

	if !s.waitForAcceptor(s.done) {
		causes = append(causes, ErrListenerStopTimeout.New(s.cfg.Title(), s.opts.ShutdownTimeout))
	}

	s.setState(StateStopped)
	if len(causes) > 0 {
		err := ErrStopFailed.WithCauses(causes, s.cfg.Title())
		s.logger.Error("xsock: stop failed", slog.Any("error", err))
		return err
	}
	s.logger.Info("xsock: stopped")
	return nil
}

// waitForAcceptor 等待监听 goroutine 退出，超时返回 false。
func (s *server) waitForAcceptor(done <-chan struct{}) bool {
	timer := time.NewTimer(s.opts.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

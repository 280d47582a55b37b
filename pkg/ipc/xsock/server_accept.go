package xsock

import (
	"log/slog"
	"runtime/debug"
	"time"
)

// acceptLoop 接入循环，每个监听周期只有一个。
//
// 退出条件：stopCh 关闭，或 cfg 中的监听 fd 已被置为 -1。
// 后者不经过 Stop，状态直接从 Listening 转为 Stopped。
func (s *server) acceptLoop(fd int, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	backoff := newAcceptBackoff()
	for {
		if stopping(stopCh) {
			return
		}
		if s.cfg.FD() < 0 {
			if s.state.CompareAndSwap(int32(StateListening), int32(StateStopped)) {
				s.logger.Info("xsock: listener fd invalidated, acceptor exited")
			}
			return
		}
		if !s.acceptOnce(fd, backoff, stopCh) {
			return
		}
	}
}

// acceptOnce 接入并处理一个连接，返回 false 表示应该退出循环。
// 回调中的 panic 被恢复并上报，退避后继续。
func (s *server) acceptOnce(fd int, backoff *acceptBackoff, stopCh <-chan struct{}) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			s.opts.PanicHandler(nil, ErrListenerPanic.New(s.cfg.Title(), r), debug.Stack())
			cont = sleepOrStop(backoff.next(), stopCh)
		}
	}()

	clientFD, err := s.opts.Bridge.Accept(fd)
	if err != nil {
		// 停止过程中关闭监听 fd 导致的失败不上报，fd 失效由 acceptLoop 处理
		if stopping(stopCh) {
			return false
		}
		if s.cfg.FD() < 0 {
			return true
		}
		s.metrics.accept(resultFailed)
		s.sink.OnError(nil, err)
		return sleepOrStop(backoff.next(), stopCh)
	}
	if clientFD < 0 {
		s.metrics.accept(resultFailed)
		s.sink.OnError(nil, ErrClientFDInvalid.New(clientFD))
		return sleepOrStop(backoff.next(), stopCh)
	}
	backoff.reset()

	s.handleClient(clientFD)
	return true
}

// handleClient 认证新连接，通过后设置超时并交给分发层。
// 被拒绝的连接先关闭再上报，回调 panic 也不会留下未授权的连接。
func (s *server) handleClient(clientFD int) {
	bridge := s.opts.Bridge
	cred, err := bridge.PeerCred(clientFD)
	if err != nil {
		conn := newClientConn(s.cfg, bridge, clientFD, nil)
		s.metrics.accept(resultFailed)
		s.closeConn(conn)
		s.sink.OnError(conn, err)
		return
	}

	conn := newClientConn(s.cfg, bridge, clientFD, NewPeerIdentity(cred, s.opts.NameResolver))

	if cred.UID < 0 {
		s.metrics.accept(resultRejected)
		s.closeConn(conn)
		s.sink.OnError(conn, ErrPeerUIDInvalid.New(s.cfg.Title(), conn.Peer().MinimalString()))
		return
	}
	if cred.UID != s.opts.HostUID && cred.UID != 0 {
		s.metrics.accept(resultRejected)
		s.closeConn(conn)
		s.sink.OnDisallowedPeer(conn, ErrPeerUIDDisallowed.New(s.cfg.Title(), s.opts.HostUID, conn.Peer().MinimalString()))
		return
	}

	if err := conn.SetReceiveTimeout(); err != nil {
		s.metrics.accept(resultFailed)
		s.closeConn(conn)
		s.sink.OnError(conn, err)
		return
	}
	if err := conn.SetSendTimeout(); err != nil {
		s.metrics.accept(resultFailed)
		s.closeConn(conn)
		s.sink.OnError(conn, err)
		return
	}

	s.metrics.accept(resultAccepted)
	s.logger.Debug("xsock: client accepted", slog.Any("conn", conn))
	s.handoff(conn)
}

// closeConn 关闭被拒绝的连接，关闭失败只记录日志。
func (s *server) closeConn(conn *ClientConn) {
	if err := conn.Close(); err != nil {
		s.logger.Warn("xsock: close rejected client failed", slog.String("conn", conn.ID()), slog.Any("error", err))
	}
}

func stopping(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

// sleepOrStop 等待 d，期间收到停止信号返回 false。
func sleepOrStop(d time.Duration, stopCh <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}

// acceptBackoff 管理 Accept 错误时的指数退避。
type acceptBackoff struct {
	current time.Duration
	initial time.Duration
	max     time.Duration
}

func newAcceptBackoff() *acceptBackoff {
	return &acceptBackoff{
		initial: 5 * time.Millisecond,
		max:     1 * time.Second,
		current: 5 * time.Millisecond,
	}
}

func (b *acceptBackoff) reset() {
	b.current = b.initial
}

func (b *acceptBackoff) next() time.Duration {
	d := b.current
	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

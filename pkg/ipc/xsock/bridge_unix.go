//go:build linux || darwin

package xsock

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// acceptPollInterval 监听 fd 可读等待的单次超时。
// Accept 在两次等待之间重新检查 fd，被并发关闭的 fd 最迟在一个间隔后被发现。
const acceptPollInterval = 200 * time.Millisecond

// NativeBridge 基于 golang.org/x/sys/unix 的 [Bridge] 实现。
type NativeBridge struct{}

// NewNativeBridge 创建原生桥接。
func NewNativeBridge() *NativeBridge {
	return &NativeBridge{}
}

// CreateListener 实现 [Bridge]。
// 监听 fd 设为非阻塞，Accept 通过 poll 等待连接。
func (NativeBridge) CreateListener(address []byte, backlog int) (fd int, err error) {
	defer guard("createListener", &err)

	if len(address) == 0 {
		return -1, ErrPathEmpty.New()
	}
	if len(address) > MaxPathLen {
		return -1, ErrPathTooLong.New(len(address), MaxPathLen)
	}
	if backlog < 1 || backlog > MaxBacklog {
		return -1, ErrBacklogInvalid.New(backlog, MaxBacklog)
	}

	name := printableAddress(address)
	fd, err = unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, ErrCreateListenerFailed.Wrap(fmt.Errorf("socket: %w", err), name)
	}
	unix.CloseOnExec(fd)

	fail := func(step string, cause error) (int, error) {
		//nolint:errcheck // cleanup: 原始错误更重要
		_ = unix.Close(fd)
		return -1, ErrCreateListenerFailed.Wrap(fmt.Errorf("%s: %w", step, cause), name)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return fail("set nonblock", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: string(address)}); err != nil {
		return fail("bind", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		return fail("listen", err)
	}
	return fd, nil
}

// CloseSocket 实现 [Bridge]。
// 关闭前先 shutdown，唤醒其他 goroutine 中阻塞在该 fd 上的 accept/read。
func (NativeBridge) CloseSocket(fd int) (err error) {
	defer guard("closeSocket", &err)

	if fd < 0 {
		return ErrCloseSocketFailed.Wrap(unix.EBADF, fd)
	}
	// 未连接的套接字返回 ENOTCONN，忽略
	_ = unix.Shutdown(fd, unix.SHUT_RDWR) //nolint:errcheck // best effort wakeup
	if err := unix.Close(fd); err != nil {
		return ErrCloseSocketFailed.Wrap(err, fd)
	}
	return nil
}

// Shutdown 实现 [Bridge]。
func (NativeBridge) Shutdown(fd int) (err error) {
	defer guard("shutdown", &err)

	if err := unix.Shutdown(fd, unix.SHUT_RDWR); err != nil && err != unix.ENOTCONN {
		return ErrShutdownFailed.Wrap(err, fd)
	}
	return nil
}

// Accept 实现 [Bridge]。
func (NativeBridge) Accept(fd int) (clientFD int, err error) {
	defer guard("accept", &err)

	for {
		nfd, _, aerr := unix.Accept(fd)
		if aerr == nil {
			return prepareClient(nfd)
		}
		switch aerr {
		case unix.EINTR, unix.ECONNABORTED:
			continue
		case unix.EAGAIN:
			if perr := waitReadable(fd, acceptPollInterval); perr != nil {
				return -1, ErrAcceptFailed.Wrap(perr, fd)
			}
			continue
		}
		return -1, ErrAcceptFailed.Wrap(aerr, fd)
	}
}

// prepareClient 客户端 fd 使用阻塞模式（BSD 上会继承监听 fd 的 O_NONBLOCK），读写超时由 SO_RCVTIMEO/SO_SNDTIMEO 控制。
func prepareClient(fd int) (int, error) {
	unix.CloseOnExec(fd)
	if err := unix.SetNonblock(fd, false); err != nil {
		//nolint:errcheck // cleanup
		_ = unix.Close(fd)
		return -1, ErrAcceptFailed.Wrap(fmt.Errorf("set blocking: %w", err), fd)
	}
	return fd, nil
}

// waitReadable 等待 fd 可读或超时，fd 已关闭时返回 EBADF。
func waitReadable(fd int, timeout time.Duration) error {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		_, err := unix.Poll(fds, int(timeout/time.Millisecond))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			return unix.EBADF
		}
		return nil
	}
}

// Read 实现 [Bridge]。
func (NativeBridge) Read(fd int, p []byte, deadline time.Time) (n int, err error) {
	defer guard("read", &err)

	for n < len(p) {
		if expired(deadline) {
			return n, ErrDeadlineExceeded.New("read", fd, n)
		}
		m, rerr := unix.Read(fd, p[n:])
		if rerr == unix.EINTR {
			continue
		}
		if rerr != nil {
			return n, ErrReadFailed.Wrap(rerr, fd, n)
		}
		if m <= 0 {
			break
		}
		n += m
	}
	return n, nil
}

// Send 实现 [Bridge]。
func (NativeBridge) Send(fd int, p []byte, deadline time.Time) (n int, err error) {
	defer guard("send", &err)

	for n < len(p) {
		if expired(deadline) {
			return n, ErrDeadlineExceeded.New("send", fd, n)
		}
		m, serr := unix.SendmsgN(fd, p[n:], nil, nil, sendFlags)
		if serr == unix.EINTR {
			continue
		}
		if serr != nil {
			return n, ErrSendFailed.Wrap(serr, fd, n)
		}
		n += m
	}
	return n, nil
}

// Available 实现 [Bridge]。
func (NativeBridge) Available(fd int) (n int, err error) {
	defer guard("available", &err)

	n, err = unix.IoctlGetInt(fd, availableRequest)
	if err != nil {
		return 0, ErrAvailableFailed.Wrap(err, fd)
	}
	return n, nil
}

// SetReceiveTimeout 实现 [Bridge]。
func (NativeBridge) SetReceiveTimeout(fd int, timeout time.Duration) (err error) {
	defer guard("setReceiveTimeout", &err)

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return ErrSetReceiveTimeoutFail.Wrap(err, timeout, fd)
	}
	return nil
}

// SetSendTimeout 实现 [Bridge]。
func (NativeBridge) SetSendTimeout(fd int, timeout time.Duration) (err error) {
	defer guard("setSendTimeout", &err)

	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return ErrSetSendTimeoutFail.Wrap(err, timeout, fd)
	}
	return nil
}

// PeerCred 实现 [Bridge]。
func (NativeBridge) PeerCred(fd int) (cred Cred, err error) {
	defer guard("peerCred", &err)

	cred, err = peerCred(fd)
	if err != nil {
		return unknownCred(), ErrPeerCredFailed.Wrap(err, fd)
	}
	return cred, nil
}

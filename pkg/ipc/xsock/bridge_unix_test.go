//go:build linux || darwin

package xsock

import (
	"net"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// socketPair 返回一对已连接的流套接字，测试结束时关闭。
func socketPair(t *testing.T) (int, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = unix.Close(fds[0]) //nolint:errcheck // test cleanup
		_ = unix.Close(fds[1]) //nolint:errcheck // test cleanup
	})
	return fds[0], fds[1]
}

func TestNativeBridge_CreateListenerValidation(t *testing.T) {
	b := NewNativeBridge()

	tests := []struct {
		name    string
		address []byte
		backlog int
		want    Errno
	}{
		{"空地址", nil, 1, ErrPathEmpty},
		{"地址超长", []byte("/" + strings.Repeat("a", MaxPathLen)), 1, ErrPathTooLong},
		{"backlog 为 0", []byte("/tmp/x.sock"), 0, ErrBacklogInvalid},
		{"backlog 超上限", []byte("/tmp/x.sock"), MaxBacklog + 1, ErrBacklogInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd, err := b.CreateListener(tt.address, tt.backlog)
			assert.Equal(t, -1, fd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNativeBridge_CreateListenerBindFailure(t *testing.T) {
	b := NewNativeBridge()
	fd, err := b.CreateListener([]byte(filepath.Join(t.TempDir(), "missing", "x.sock")), 1)
	assert.Equal(t, -1, fd)
	assert.ErrorIs(t, err, ErrCreateListenerFailed)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestNativeBridge_AbstractNamespace(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("抽象命名空间仅 Linux 支持")
	}
	b := NewNativeBridge()
	name := "xsock-test-" + time.Now().Format("150405.000000000")

	fd, err := b.CreateListener(append([]byte{0}, name...), 4)
	require.NoError(t, err)
	defer b.CloseSocket(fd) //nolint:errcheck // test cleanup

	// Go 的 net 包用 '@' 表示抽象地址
	client, err := net.Dial("unix", "@"+name)
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck // test cleanup

	cfd, err := b.Accept(fd)
	require.NoError(t, err)
	defer b.CloseSocket(cfd) //nolint:errcheck // test cleanup

	cred, err := b.PeerCred(cfd)
	require.NoError(t, err)
	assert.Equal(t, unix.Getuid(), cred.UID)
	assert.Equal(t, unix.Getpid(), cred.PID)
}

func TestNativeBridge_AcceptAfterClose(t *testing.T) {
	b := NewNativeBridge()
	fd, err := b.CreateListener([]byte(filepath.Join(shortTempDir(t), "c.sock")), 1)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := b.Accept(fd)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, b.CloseSocket(fd))

	assert.ErrorIs(t, next(t, done, "accept wakeup"), ErrAcceptFailed)
}

func TestNativeBridge_ReadSend(t *testing.T) {
	b := NewNativeBridge()
	a, c := socketPair(t)

	n, err := b.Send(a, []byte("hello"), time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	avail, err := b.Available(c)
	require.NoError(t, err)
	assert.Equal(t, 5, avail)

	buf := make([]byte, 5)
	n, err = b.Read(c, buf, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestNativeBridge_ShutdownWakesRead(t *testing.T) {
	b := NewNativeBridge()
	_, c := socketPair(t)

	done := make(chan error, 1)
	go func() {
		_, err := b.Read(c, make([]byte, 1), time.Time{})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, b.Shutdown(c))

	assert.NoError(t, next(t, done, "read wakeup"))

	// shutdown 不释放 fd，重复调用也不报错
	require.NoError(t, b.Shutdown(c))
	avail, err := b.Available(c)
	require.NoError(t, err)
	assert.Equal(t, 0, avail)
}

func TestNativeBridge_ReadEOFIsPartial(t *testing.T) {
	b := NewNativeBridge()
	a, c := socketPair(t)

	_, err := b.Send(a, []byte("ab"), time.Time{})
	require.NoError(t, err)
	require.NoError(t, unix.Shutdown(a, unix.SHUT_WR))

	buf := make([]byte, 8)
	n, err := b.Read(c, buf, time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))
}

func TestNativeBridge_PastDeadline(t *testing.T) {
	b := NewNativeBridge()
	a, c := socketPair(t)
	past := time.Now().Add(-time.Millisecond)

	n, err := b.Send(a, []byte("x"), past)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)

	n, err = b.Read(c, make([]byte, 1), past)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestNativeBridge_ReceiveTimeout(t *testing.T) {
	b := NewNativeBridge()
	_, c := socketPair(t)

	require.NoError(t, b.SetReceiveTimeout(c, 50*time.Millisecond))
	require.NoError(t, b.SetSendTimeout(c, 50*time.Millisecond))

	start := time.Now()
	_, err := b.Read(c, make([]byte, 1), time.Time{})
	assert.ErrorIs(t, err, ErrReadFailed)
	assert.ErrorIs(t, err, unix.EAGAIN)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNativeBridge_InvalidFD(t *testing.T) {
	b := NewNativeBridge()

	assert.ErrorIs(t, b.CloseSocket(-1), ErrCloseSocketFailed)
	assert.ErrorIs(t, b.Shutdown(-1), ErrShutdownFailed)
	_, err := b.Available(-1)
	assert.ErrorIs(t, err, ErrAvailableFailed)
	assert.ErrorIs(t, b.SetReceiveTimeout(-1, time.Second), ErrSetReceiveTimeoutFail)
	cred, err := b.PeerCred(-1)
	assert.ErrorIs(t, err, ErrPeerCredFailed)
	assert.Equal(t, unknownCred(), cred)
}

func TestGuard(t *testing.T) {
	f := func() (err error) {
		defer guard("op", &err)
		panic("native crash")
	}
	err := f()
	assert.ErrorIs(t, err, ErrBridgePanic)
	assert.Contains(t, err.Error(), "native op panicked: native crash")
}

package xsock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// waitTimeout 测试中等待异步事件的上限。
const waitTimeout = 3 * time.Second

// discardLogger 丢弃所有输出的日志记录器。
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// acceptResult 预置的一次 Accept 返回值。
type acceptResult struct {
	fd  int
	err error
}

// fakeBridge 记录调用并按预置结果返回的 Bridge 实现。
type fakeBridge struct {
	mu    sync.Mutex
	calls map[string]int

	listenFD  int
	listenErr error
	closeErr  error
	stopped   chan struct{}

	accepts chan acceptResult

	creds      map[int]Cred
	credErrs   map[int]error
	timeoutErr error
	closed     []int
	addresses  [][]byte
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		calls:    make(map[string]int),
		listenFD: 3,
		accepts:  make(chan acceptResult, 16),
		creds:    make(map[int]Cred),
		credErrs: make(map[int]error),
	}
}

func (b *fakeBridge) record(op string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
}

// callCount 返回 op 的调用次数，op 为空时返回总调用次数。
func (b *fakeBridge) callCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if op != "" {
		return b.calls[op]
	}
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

func (b *fakeBridge) isClosed(fd int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.closed {
		if c == fd {
			return true
		}
	}
	return false
}

// push 预置一次 Accept 返回的客户端 fd 和对端凭证。
func (b *fakeBridge) push(fd int, cred Cred) {
	b.mu.Lock()
	b.creds[fd] = cred
	b.mu.Unlock()
	b.accepts <- acceptResult{fd: fd}
}

func (b *fakeBridge) CreateListener(address []byte, _ int) (int, error) {
	b.record("CreateListener")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addresses = append(b.addresses, append([]byte(nil), address...))
	if b.listenErr != nil {
		return -1, b.listenErr
	}
	b.stopped = make(chan struct{})
	return b.listenFD, nil
}

func (b *fakeBridge) CloseSocket(fd int) error {
	b.record("CloseSocket")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, fd)
	if fd == b.listenFD && b.stopped != nil {
		close(b.stopped)
		b.stopped = nil
		return b.closeErr
	}
	return nil
}

func (b *fakeBridge) Shutdown(int) error {
	b.record("Shutdown")
	return nil
}

func (b *fakeBridge) Accept(fd int) (int, error) {
	b.record("Accept")
	b.mu.Lock()
	stopped := b.stopped
	b.mu.Unlock()
	if stopped == nil {
		return -1, ErrAcceptFailed.Wrap(errors.New("bad file descriptor"), fd)
	}
	select {
	case r := <-b.accepts:
		return r.fd, r.err
	case <-stopped:
		return -1, ErrAcceptFailed.Wrap(errors.New("listener closed"), fd)
	}
}

func (b *fakeBridge) Read(int, []byte, time.Time) (int, error) {
	b.record("Read")
	return 0, nil
}

func (b *fakeBridge) Send(_ int, p []byte, _ time.Time) (int, error) {
	b.record("Send")
	return len(p), nil
}

func (b *fakeBridge) Available(int) (int, error) {
	b.record("Available")
	return 0, nil
}

func (b *fakeBridge) SetReceiveTimeout(int, time.Duration) error {
	b.record("SetReceiveTimeout")
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeoutErr
}

func (b *fakeBridge) SetSendTimeout(int, time.Duration) error {
	b.record("SetSendTimeout")
	return nil
}

func (b *fakeBridge) PeerCred(fd int) (Cred, error) {
	b.record("PeerCred")
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.credErrs[fd]; err != nil {
		return unknownCred(), err
	}
	if c, ok := b.creds[fd]; ok {
		return c, nil
	}
	return unknownCred(), nil
}

// sinkEvent 一次错误回调。
type sinkEvent struct {
	conn *ClientConn
	err  error
}

// recordingSink 把回调转发到通道的 ErrorSink。
type recordingSink struct {
	errs       chan sinkEvent
	disallowed chan sinkEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		errs:       make(chan sinkEvent, 16),
		disallowed: make(chan sinkEvent, 16),
	}
}

func (s *recordingSink) OnError(conn *ClientConn, err error) {
	s.errs <- sinkEvent{conn: conn, err: err}
}

func (s *recordingSink) OnDisallowedPeer(conn *ClientConn, err error) {
	s.disallowed <- sinkEvent{conn: conn, err: err}
}

// next 等待通道中的下一个事件。
func next[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		var zero T
		t.Fatalf("timed out waiting for %s", what)
		return zero
	}
}

// none 断言通道在短时间内没有事件。
func none[T any](t *testing.T, ch <-chan T, what string) {
	t.Helper()
	select {
	case v := <-ch:
		t.Fatalf("unexpected %s: %v", what, v)
	case <-time.After(50 * time.Millisecond):
	}
}

// connHandler 把接入的连接转发到通道，由测试负责关闭。
func connHandler() (Handler, <-chan *ClientConn) {
	ch := make(chan *ClientConn, 16)
	return HandlerFunc(func(_ *Manager, conn *ClientConn) { ch <- conn }), ch
}

// startManager 创建并启动 Manager，测试结束时停止并等待处理器返回。
func startManager(t *testing.T, cfg *RunConfig, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	m, err := NewManager(cfg, opts...)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		//nolint:errcheck // test cleanup: 停止失败不影响测试结果
		_ = m.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		if err := m.Wait(ctx); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})
	return m
}

// makeStaleSocket 在 path 上留下一个没有监听者的 socket 文件。
func makeStaleSocket(t *testing.T, path string) {
	t.Helper()
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		t.Fatalf("ListenUnix() error = %v", err)
	}
	ln.SetUnlinkOnClose(false)
	if err := ln.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

// newTestMeterProvider 创建带 ManualReader 的 MeterProvider。
func newTestMeterProvider() (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), reader
}

// counterValue 汇总名为 name、且包含全部 attrs 的 int64 Sum 数据点。
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s data = %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if hasAttrs(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAttrs(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

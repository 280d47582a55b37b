//go:build !linux && !darwin

package xsock

import (
	"runtime"
	"time"
)

// NativeBridge 在不支持的平台上所有操作都返回 [ErrBridgeUnsupported]。
type NativeBridge struct{}

// NewNativeBridge 创建原生桥接。
func NewNativeBridge() *NativeBridge {
	return &NativeBridge{}
}

func unsupported() error {
	return ErrBridgeUnsupported.New(runtime.GOOS)
}

func (NativeBridge) CreateListener([]byte, int) (int, error) { return -1, unsupported() }
func (NativeBridge) CloseSocket(int) error { return unsupported() }
func (NativeBridge) Shutdown(int) error { return unsupported() }
func (NativeBridge) Accept(int) (int, error) { return -1, unsupported() }
func (NativeBridge) Read(int, []byte, time.Time) (int, error) { return 0, unsupported() }
func (NativeBridge) Send(int, []byte, time.Time) (int, error) { return 0, unsupported() }
func (NativeBridge) Available(int) (int, error) { return 0, unsupported() }
func (NativeBridge) SetReceiveTimeout(int, time.Duration) error { return unsupported() }
func (NativeBridge) SetSendTimeout(int, time.Duration) error { return unsupported() }
func (NativeBridge) PeerCred(int) (Cred, error) { return unknownCred(), unsupported() }

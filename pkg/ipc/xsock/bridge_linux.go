//go:build linux

package xsock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// sendFlags 对端已关闭时返回 EPIPE 而不是触发 SIGPIPE。
const sendFlags = unix.MSG_NOSIGNAL

// availableRequest 查询接收缓冲区未读字节数的 ioctl。
const availableRequest = unix.SIOCINQ

// peerCred 通过 SO_PEERCRED 获取对端凭证（Linux）。
func peerCred(fd int) (Cred, error) {
	ucred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return unknownCred(), fmt.Errorf("getsockopt SO_PEERCRED: %w", err)
	}
	return Cred{
		PID: int(ucred.Pid),
		UID: int(ucred.Uid),
		GID: int(ucred.Gid),
	}, nil
}

//go:build darwin

package xsock

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// sendFlags macOS 没有 MSG_NOSIGNAL，Go 运行时会忽略非标准输出 fd 上的 SIGPIPE。
const sendFlags = 0

// availableRequest 即 <sys/filio.h> 中的 FIONREAD，x/sys/unix 未导出。
const availableRequest = 0x4004667f

// peerCred 通过 LOCAL_PEERCRED 和 LOCAL_PEERPID 获取对端凭证（macOS）。
func peerCred(fd int) (Cred, error) {
	xucred, err := unix.GetsockoptXucred(fd, unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
	if err != nil {
		return unknownCred(), fmt.Errorf("getsockopt LOCAL_PEERCRED: %w", err)
	}

	cred := unknownCred()
	cred.UID = int(xucred.Uid)
	if xucred.Ngroups > 0 {
		cred.GID = int(xucred.Groups[0]) // 主组 ID
	}
	// 取不到 pid 不影响认证，保持 -1
	if pid, err := unix.GetsockoptInt(fd, unix.SOL_LOCAL, unix.LOCAL_PEERPID); err == nil {
		cred.PID = pid
	}
	return cred, nil
}

//go:build linux || darwin

package xsys

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// 包级变量便于测试替换。
var (
	getrlimit = unix.Getrlimit
	setrlimit = unix.Setrlimit
)

var fileLimitMu sync.Mutex

// RaiseFileLimit 把打开文件数软限制提升到 want，受硬限制约束，返回生效的软限制。
//
// 当前软限制已不低于目标值时不做修改。只调整软限制，不需要特权。
func RaiseFileLimit(want uint64) (uint64, error) {
	if err := validateFileLimit(want); err != nil {
		return 0, err
	}

	fileLimitMu.Lock()
	defer fileLimitMu.Unlock()

	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}

	target := raiseTarget(rlimit.Cur, rlimit.Max, want)
	if target == rlimit.Cur {
		return target, nil
	}

	rlimit.Cur = target
	if err := setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("xsys: setrlimit RLIMIT_NOFILE: %w", err)
	}
	return target, nil
}

// GetFileLimit 返回打开文件数的软限制和硬限制。
func GetFileLimit() (soft, hard uint64, err error) {
	var rlimit unix.Rlimit
	if err := getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, 0, fmt.Errorf("xsys: getrlimit RLIMIT_NOFILE: %w", err)
	}
	return rlimit.Cur, rlimit.Max, nil
}

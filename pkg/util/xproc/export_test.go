package xproc

import (
	"sync"
	"testing"
)

// ResetProcessName 重置进程名称缓存（仅用于测试）。
func ResetProcessName() {
	processNameOnce = sync.Once{}
	processNameValue = ""
}

// SetProcRoot 临时替换 procfs 根目录，测试结束后自动恢复。
func SetProcRoot(tb testing.TB, root string) {
	tb.Helper()
	orig := procRoot
	procRoot = root
	tb.Cleanup(func() { procRoot = orig })
}

//go:build unix

package main

import (
	"os"
	"syscall"
)

// fileOwner 返回文件属主 uid。
func fileOwner(info os.FileInfo) (int, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return int(st.Uid), true
}

package xproc

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// osExecutable 是 os.Executable 的包级变量，支持测试中 mock。
var osExecutable = os.Executable

// procRoot 是 procfs 挂载点，测试中可替换为临时目录。
var procRoot = "/proc"

// processName 缓存当前进程名称。
var (
	processNameOnce  sync.Once
	processNameValue string
)

// ProcessID 返回当前进程 ID。
func ProcessID() int {
	return os.Getpid()
}

// baseName 提取路径的基础文件名。
// 对 [filepath.Base] 返回的特殊值（"."、".."、路径分隔符）返回空字符串。
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func resolveProcessName() string {
	if exe, err := osExecutable(); err == nil && exe != "" {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return ""
	}
	return baseName(os.Args[0])
}

// ProcessName 返回当前进程名称（不含路径），首次调用后缓存。
//
// 优先使用 [os.Executable]，失败时回退到 os.Args[0]。所有来源均无效时返回空字符串。
// xsock 用它作为未指定标题时的默认日志标题。
func ProcessName() string {
	processNameOnce.Do(func() {
		processNameValue = resolveProcessName()
	})
	return processNameValue
}

// NameForPID 返回指定进程的名称，无法读取时返回空字符串。
//
// 读取 <procfs>/<pid>/cmdline 中第一个 NUL 分隔的参数（保留原样，不剥离路径），
// cmdline 为空时（内核线程、僵尸进程）回退到 comm。
// 非 Linux 平台或 procfs 被 hidepid 挂载时，对其他用户的进程通常返回空字符串。
func NameForPID(pid int) string {
	if pid <= 0 {
		return ""
	}
	dir := filepath.Join(procRoot, strconv.Itoa(pid))

	if data, err := os.ReadFile(filepath.Join(dir, "cmdline")); err == nil {
		if name := firstArg(data); name != "" {
			return name
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		return string(bytes.TrimRight(data, "\n"))
	}
	return ""
}

// firstArg 取 cmdline 的第一个参数。
func firstArg(cmdline []byte) string {
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		cmdline = cmdline[:i]
	}
	return string(cmdline)
}

package xfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSocketDirPerm 新建套接字父目录时使用的权限。
//
// 0700：仅所有者可读写执行，其他进程无法枚举或连接目录内的套接字。
const DefaultSocketDirPerm = 0o700

// ownerRWX 所有者读写执行位。
const ownerRWX fs.FileMode = 0o700

// 包级变量便于测试替换。
var (
	osStat     = os.Stat
	osLstat    = os.Lstat
	osMkdirAll = os.MkdirAll
	osChmod    = os.Chmod
	osRemove   = os.Remove
)

func checkPath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.IndexByte(path, 0) >= 0 {
		return ErrNullByte
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%q: %w", path, ErrNotAbsolute)
	}
	return nil
}

// EnsureSocketDir 确保 socketPath 的父目录存在，且所有者拥有 rwx 权限。
//
// 目录不存在时使用 [DefaultSocketDirPerm] 创建。目录已存在但所有者权限
// 不足 rwx 时只补齐缺失的位。父路径存在但不是目录时返回 [ErrNotDirectory]。
func EnsureSocketDir(socketPath string) error {
	return EnsureParentDir(socketPath, DefaultSocketDirPerm)
}

// EnsureParentDir 确保 path 的父目录存在，缺失时使用 perm 创建，
// 其余行为同 [EnsureSocketDir]。也用于日志文件等非套接字路径。
//
// perm 必须包含所有者执行位（0100），否则目录无法遍历。
func EnsureParentDir(path string, perm os.FileMode) error {
	if err := checkPath(path); err != nil {
		return err
	}
	if perm&0o100 == 0 {
		return fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}

	dir := filepath.Dir(path)
	info, err := osStat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := osMkdirAll(dir, perm|ownerRWX); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("stat directory %q: %w", dir, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%q: %w", dir, ErrNotDirectory)
	}
	if mode := info.Mode().Perm(); mode&ownerRWX != ownerRWX {
		if err := osChmod(dir, mode|ownerRWX); err != nil {
			return fmt.Errorf("set owner rwx on %q: %w", dir, err)
		}
	}
	return nil
}

// RemoveStaleSocket 删除 path 上残留的 socket 文件。
//
// 路径不存在视为成功。路径存在但不是 socket 时返回 [ErrNotSocket] 且不做删除。
// 使用 Lstat，路径本身是符号链接时按非 socket 处理。
func RemoveStaleSocket(path string) error {
	if err := checkPath(path); err != nil {
		return err
	}

	info, err := osLstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check existing socket %q: %w", path, err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("%q (%s): %w", path, info.Mode().Type(), ErrNotSocket)
	}
	if err := osRemove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove socket %q: %w", path, err)
	}
	return nil
}

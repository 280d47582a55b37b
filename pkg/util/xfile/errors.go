package xfile

import "errors"

var (
	// ErrEmptyPath 表示必需的路径参数为空。
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrNullByte 表示路径中包含空字节（\x00），内核会在空字节处截断路径。
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrNotAbsolute 表示路径不是绝对路径。
	ErrNotAbsolute = errors.New("xfile: path is not absolute")

	// ErrInvalidPerm 表示目录权限无效（缺少所有者执行位，目录无法遍历）。
	ErrInvalidPerm = errors.New("xfile: invalid directory permission")

	// ErrNotDirectory 表示父路径存在但不是目录。
	ErrNotDirectory = errors.New("xfile: parent path is not a directory")

	// ErrNotSocket 表示路径存在但不是 socket 文件，拒绝删除。
	ErrNotSocket = errors.New("xfile: path exists but is not a socket")
)

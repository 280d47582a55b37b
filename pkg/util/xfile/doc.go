// Package xfile 提供 Unix 域套接字文件所需的文件系统准备工作。
//
// 监听文件系统路径上的套接字前需要两步准备：
//
//   - [EnsureSocketDir]: 父目录不存在时创建；已存在时确认是目录，
//     并补齐所有者 rwx 权限（只补缺失的位，不收紧已有权限）
//   - [RemoveStaleSocket]: 删除上次运行残留的 socket 文件；
//     路径被普通文件或目录占用时拒绝删除，返回 [ErrNotSocket]
//
// 停止监听后同样调用 [RemoveStaleSocket] 清理套接字文件。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	if err := xfile.RemoveStaleSocket(path); errors.Is(err, xfile.ErrNotSocket) {
//	    // 路径被其他文件占用
//	}
//
// 本包只处理文件系统路径。抽象命名空间地址（首字节为 NUL）没有文件实体，
// 调用方应跳过这两步。
package xfile

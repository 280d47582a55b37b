// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 套接字文件辅助，父目录创建与权限修正、残留套接字清理
//   - xlru: 带 TTL 的泛型 LRU 缓存，惰性过期，无后台 goroutine
//   - xproc: 进程信息查询，当前进程 PID/名称与任意 PID 的进程名
//   - xsys: 系统资源限制管理，文件描述符上限
package util

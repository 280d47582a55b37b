// Package xsys 提供进程资源限制工具。
//
//   - [RaiseFileLimit]: 把 RLIMIT_NOFILE 软限制提升到期望值，不超过硬限制，从不降低
//   - [GetFileLimit]: 查询当前软/硬限制
//
// 每条本地套接字连接占用一个文件描述符，服务进程通常在启动时调用一次 [RaiseFileLimit]。
// Linux 和 macOS 以外的平台返回 [ErrUnsupportedPlatform]，参数校验在所有平台上一致。
package xsys

// Package ipc 提供本机进程间通信相关的子包。
//
// 子包列表：
//   - xsock: 本地 Unix 域套接字服务端，按对端 uid 认证并分发连接
package ipc

// Package xsock 提供带对端身份认证的本地 Unix 域套接字服务端。
//
// 服务端在文件系统路径或 Linux 抽象命名空间上监听 SOCK_STREAM 套接字，
// 对每个接入连接查询对端凭证（Linux SO_PEERCRED，macOS LOCAL_PEERCRED），
// 只放行 uid 等于宿主进程 uid 或 uid 为 0 的对端，其余连接立即关闭并上报。
// 通过认证的连接在独立 goroutine 中交给 [Handler] 处理，连接的所有权随之转移。
//
// # 快速开始
//
//	cfg := xsock.NewRunConfig("agent", "/run/agent/agent.sock", handler,
//	    xsock.WithBacklog(16),
//	    xsock.WithReceiveTimeout(5*time.Second),
//	)
//	m, err := xsock.NewManager(cfg, xsock.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := m.Start(); err != nil {
//	    return err
//	}
//	defer m.Stop()
//
// # 抽象命名空间
//
// 路径首字节为 NUL（"\x00name"）时使用 Linux 抽象命名空间：没有文件实体，
// 跳过父目录准备和残留文件清理。[RunConfig.IsAbstractNamespace] 在构造时确定。
//
// # 错误模型
//
// 所有失败都以 [*Error] 返回，携带稳定的数字错误码，按百位分类：
//
//   - 1xx 配置无效
//   - 2xx 系统调用失败
//   - 3xx 资源状态异常
//   - 4xx 对端未授权
//   - 5xx 处理器异常
//
// 使用 [errors.Is] 与目录项比较：
//
//	if errors.Is(err, xsock.ErrPeerUIDDisallowed) {
//	    // 对端 uid 不被允许
//	}
//
// # 读写语义
//
// 读写按绝对截止时间执行：每次系统调用前检查截止时间，已过期立即失败，
// 即使已经传输了部分数据。[ClientConn.Read] 和 [ClientConn.Write] 使用
// [RunConfig.Deadline] 推算截止时间，并实现 io.Reader / io.Writer。
// 本包不定义任何应用层帧格式，消息边界由处理器自行约定。
package xsock

// Package xlru 提供带 TTL 的泛型 LRU 缓存。
//
// 基于 github.com/hashicorp/golang-lru/v2 的定长 LRU，过期采用惰性检查：
// 每个条目记录写入时刻，Get 时发现过期即删除并返回 miss。
// 不启动后台清理 goroutine，缓存对象无需关闭，可以放在进程级单例中。
//
// # 语义
//
//   - Size 是条目数量上限，满时淘汰最久未访问的条目
//   - TTL 从 Set 时刻开始计算，覆盖写入会刷新 TTL，Get 不刷新
//   - TTL 为 0 表示永不过期
//   - Len 可能包含已过期但尚未被访问到的条目
//   - 所有方法并发安全
//
// 时钟可通过 [WithClock] 注入，便于测试过期行为。
package xlru

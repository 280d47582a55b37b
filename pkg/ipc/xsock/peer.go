package xsock

import (
	"fmt"
	"log/slog"
	"os/user"
	"strconv"
	"sync"
	"time"

	"github.com/omeyang/xipc/pkg/util/xlru"
	"github.com/omeyang/xipc/pkg/util/xproc"
)

// 名称缓存默认参数。
const (
	DefaultNameCacheSize = 128
	DefaultNameCacheTTL  = 5 * time.Minute
)

// NameResolver 把 uid/gid/pid 解析为名称。
//
// 用户名和组名带 TTL 缓存（包括查找失败的空结果），进程名不缓存，pid 会被复用。
// 可被多个 goroutine 并发使用。
type NameResolver struct {
	users  *xlru.Cache[int, string]
	groups *xlru.Cache[int, string]

	lookupUser  func(uid string) (*user.User, error)
	lookupGroup func(gid string) (*user.Group, error)
	processName func(pid int) string
}

// NewNameResolver 创建名称解析器。size <= 0 或 ttl <= 0 时使用默认值，
// size 超过缓存上限时返回错误。
func NewNameResolver(size int, ttl time.Duration) (*NameResolver, error) {
	if size <= 0 {
		size = DefaultNameCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultNameCacheTTL
	}
	cfg := xlru.Config{Size: size, TTL: ttl}
	users, err := xlru.New[int, string](cfg)
	if err != nil {
		return nil, err
	}
	groups, err := xlru.New[int, string](cfg)
	if err != nil {
		return nil, err
	}
	return &NameResolver{
		users:       users,
		groups:      groups,
		lookupUser:  user.LookupId,
		lookupGroup: user.LookupGroupId,
		processName: xproc.NameForPID,
	}, nil
}

var (
	defaultResolverOnce sync.Once
	defaultResolver     *NameResolver
)

// DefaultNameResolver 返回进程级共享的解析器。
func DefaultNameResolver() *NameResolver {
	defaultResolverOnce.Do(func() {
		defaultResolver, _ = NewNameResolver(0, 0) //nolint:errcheck // 默认参数在缓存上限内
	})
	return defaultResolver
}

// UserName 返回 uid 对应的用户名，未知时返回空字符串。
func (r *NameResolver) UserName(uid int) string {
	if uid < 0 {
		return ""
	}
	if name, ok := r.users.Get(uid); ok {
		return name
	}
	var name string
	if u, err := r.lookupUser(strconv.Itoa(uid)); err == nil {
		name = u.Username
	}
	r.users.Set(uid, name)
	return name
}

// GroupName 返回 gid 对应的组名，未知时返回空字符串。
func (r *NameResolver) GroupName(gid int) string {
	if gid < 0 {
		return ""
	}
	if name, ok := r.groups.Get(gid); ok {
		return name
	}
	var name string
	if g, err := r.lookupGroup(strconv.Itoa(gid)); err == nil {
		name = g.Name
	}
	r.groups.Set(gid, name)
	return name
}

// ProcessName 返回 pid 对应的进程名，未知时返回空字符串。
func (r *NameResolver) ProcessName(pid int) string {
	if pid <= 0 {
		return ""
	}
	return r.processName(pid)
}

// PeerIdentity 对端进程身份。
//
// PID/UID/GID 来自内核，未知为 -1。名称在首次访问时解析一次，之后不再变化。
// 名称解析永不失败，取不到的名称为空字符串。
type PeerIdentity struct {
	PID int
	UID int
	GID int

	resolver *NameResolver
	once     sync.Once

	processName string
	userName    string
	groupName   string
}

// NewPeerIdentity 由凭证创建身份。resolver 为 nil 时使用 [DefaultNameResolver]。
func NewPeerIdentity(cred Cred, resolver *NameResolver) *PeerIdentity {
	if resolver == nil {
		resolver = DefaultNameResolver()
	}
	return &PeerIdentity{PID: cred.PID, UID: cred.UID, GID: cred.GID, resolver: resolver}
}

// UnknownPeer 返回全部字段未知的身份。
func UnknownPeer() *PeerIdentity {
	return NewPeerIdentity(unknownCred(), nil)
}

// Fill 解析进程名、用户名和组名，只执行一次。
func (p *PeerIdentity) Fill() {
	p.once.Do(func() {
		r := p.resolver
		if r == nil {
			r = DefaultNameResolver()
		}
		p.processName = r.ProcessName(p.PID)
		p.userName = r.UserName(p.UID)
		p.groupName = r.GroupName(p.GID)
		// 没有同名组记录时，主组与用户同号的常见情况沿用用户名
		if p.groupName == "" && p.GID >= 0 && p.GID == p.UID {
			p.groupName = p.userName
		}
	})
}

// ProcessName 返回对端进程名。
func (p *PeerIdentity) ProcessName() string {
	p.Fill()
	return p.processName
}

// UserName 返回对端用户名。
func (p *PeerIdentity) UserName() string {
	p.Fill()
	return p.userName
}

// GroupName 返回对端组名。
func (p *PeerIdentity) GroupName() string {
	p.Fill()
	return p.groupName
}

// MinimalString 返回单行描述：
// process=<pid> (<name>), user=<uid> (<name>), group=<gid> (<name>)。
func (p *PeerIdentity) MinimalString() string {
	if p == nil {
		return "unknown"
	}
	p.Fill()
	return fmt.Sprintf("process=%d (%s), user=%d (%s), group=%d (%s)",
		p.PID, p.processName, p.UID, p.userName, p.GID, p.groupName)
}

// String 实现 fmt.Stringer。
func (p *PeerIdentity) String() string {
	return p.MinimalString()
}

// LogValue 实现 slog.LogValuer。
func (p *PeerIdentity) LogValue() slog.Value {
	if p == nil {
		return slog.StringValue("unknown")
	}
	p.Fill()
	return slog.GroupValue(
		slog.Int("pid", p.PID),
		slog.String("process", p.processName),
		slog.Int("uid", p.UID),
		slog.String("user", p.userName),
		slog.Int("gid", p.GID),
		slog.String("group", p.groupName),
	)
}

package xsock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式。
type Format string

const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"
	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// 配置加载错误。
var (
	ErrUnsupportedFormat = errors.New("xsock: unsupported settings format")
	ErrLoadSettings      = errors.New("xsock: load settings failed")
)

// Settings 可从配置文件加载的服务端参数。
//
// 未出现在配置中的字段保留 [DefaultSettings] 的值，时长字段接受 "10s" 形式的字符串。
type Settings struct {
	// Title 日志标题。
	Title string `koanf:"title"`

	// Path 套接字路径。Abstract 为 true 时是抽象命名空间名称，不含前导 NUL。
	Path string `koanf:"path"`

	// Abstract 是否使用 Linux 抽象命名空间。
	Abstract bool `koanf:"abstract"`

	// Backlog 监听队列长度。
	Backlog int `koanf:"backlog"`

	// ReceiveTimeout 客户端接收超时。
	ReceiveTimeout time.Duration `koanf:"receive_timeout"`

	// SendTimeout 客户端发送超时。
	SendTimeout time.Duration `koanf:"send_timeout"`

	// Deadline Read/Write 的相对截止时长，0 表示不限时。
	Deadline time.Duration `koanf:"deadline"`
}

// DefaultSettings 返回默认参数。
func DefaultSettings() Settings {
	return Settings{
		Backlog:        DefaultBacklog,
		ReceiveTimeout: DefaultReceiveTimeout,
		SendTimeout:    DefaultSendTimeout,
		Deadline:       DefaultDeadline,
	}
}

// LoadSettings 从文件加载参数，格式由扩展名决定（.yaml/.yml/.json）。
// key 为空时从根节点读取，否则从指定路径（如 "socket"）读取。
func LoadSettings(file, key string) (Settings, error) {
	format, err := FormatOf(file)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadSettings, err)
	}
	return ParseSettings(data, format, key)
}

// ParseSettings 从字节数据解析参数。
func ParseSettings(data []byte, format Format, key string) (Settings, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadSettings, err)
	}

	s := DefaultSettings()
	if err := k.UnmarshalWithConf(key, &s, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrLoadSettings, err)
	}
	return s, nil
}

// FormatOf 按扩展名（.yaml/.yml/.json）判断配置文件格式。
func FormatOf(file string) (Format, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, file)
	}
}

// SocketPath 返回传给 [NewRunConfig] 的路径，抽象命名空间时加上前导 NUL。
func (s Settings) SocketPath() string {
	if s.Abstract && s.Path != "" && s.Path[0] != 0 {
		return "\x00" + s.Path
	}
	return s.Path
}

// RunConfig 由参数构造 [RunConfig]，extra 追加在参数之后，可覆盖同名参数。
func (s Settings) RunConfig(handler Handler, extra ...ConfigOption) *RunConfig {
	opts := []ConfigOption{
		WithBacklog(s.Backlog),
		WithReceiveTimeout(s.ReceiveTimeout),
		WithSendTimeout(s.SendTimeout),
		WithDeadline(s.Deadline),
	}
	return NewRunConfig(s.Title, s.SocketPath(), handler, append(opts, extra...)...)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xipc/pkg/ipc/xsock"
)

// 日志默认值。
const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
	defaultLogMaxSizeMB    = 100
	defaultLogMaxBackups   = 5
	defaultLogMaxAgeDays   = 7
	defaultShutdownTimeout = 5 * time.Second
)

// errInvalidConfig 配置内容非法。
var errInvalidConfig = errors.New("xsockd: invalid config")

// logSettings 日志配置，对应配置文件的 log 节点。
type logSettings struct {
	// Level 日志级别: debug/info/warn/error。修改后无需重启即生效。
	Level string `koanf:"level"`

	// Format 输出格式: text/json。
	Format string `koanf:"format"`

	// File 日志文件路径，为空时写 stderr。
	File string `koanf:"file"`

	MaxSizeMB  int  `koanf:"max_size_mb"`
	MaxBackups int  `koanf:"max_backups"`
	MaxAgeDays int  `koanf:"max_age_days"`
	Compress   bool `koanf:"compress"`
}

// daemonConfig 守护进程配置。
//
// 示例:
//
//	socket:
//	  title: xsockd
//	  path: /run/xsockd/xsockd.sock
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/xsockd/xsockd.log
//	shutdown_timeout: 5s
//	max_open_files: 65536
type daemonConfig struct {
	Socket          xsock.Settings `koanf:"-"`
	Log             logSettings    `koanf:"log"`
	ShutdownTimeout time.Duration  `koanf:"shutdown_timeout"`

	// MaxOpenFiles 启动时把打开文件数软限制提升到该值，0 表示不调整。
	MaxOpenFiles uint64 `koanf:"max_open_files"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		Socket: xsock.DefaultSettings(),
		Log: logSettings{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// loadConfig 读取并解析配置文件。socket 节点由 [xsock.ParseSettings] 解析。
func loadConfig(file string) (daemonConfig, error) {
	format, err := xsock.FormatOf(file)
	if err != nil {
		return daemonConfig{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return daemonConfig{}, fmt.Errorf("xsockd: read config: %w", err)
	}
	return parseConfig(data, format)
}

func parseConfig(data []byte, format xsock.Format) (daemonConfig, error) {
	var parser koanf.Parser
	switch format {
	case xsock.FormatYAML:
		parser = yaml.Parser()
	case xsock.FormatJSON:
		parser = json.Parser()
	default:
		return daemonConfig{}, fmt.Errorf("%w: %q", xsock.ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return daemonConfig{}, fmt.Errorf("xsockd: parse config: %w", err)
	}

	cfg := defaultDaemonConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return daemonConfig{}, fmt.Errorf("xsockd: parse config: %w", err)
	}
	socket, err := xsock.ParseSettings(data, format, "socket")
	if err != nil {
		return daemonConfig{}, err
	}
	cfg.Socket = socket
	if cfg.Socket.Title == "" {
		cfg.Socket.Title = "xsockd"
	}
	if err := cfg.validate(); err != nil {
		return daemonConfig{}, err
	}
	return cfg, nil
}

// validate 校验守护进程自身的配置项，套接字参数在 Manager.Start 时校验。
func (c daemonConfig) validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q, want text or json", errInvalidConfig, c.Log.Format)
	}
	if c.Log.File != "" && (c.Log.MaxSizeMB <= 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0) {
		return fmt.Errorf("%w: log rotation limits must be positive", errInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout %s must be positive", errInvalidConfig, c.ShutdownTimeout)
	}
	return nil
}

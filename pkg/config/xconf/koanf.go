package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// koanfConfig Config 的 koanf 实现。
type koanfConfig struct {
	current  atomic.Pointer[koanf.Koanf]
	version  atomic.Uint64
	reloadMu sync.Mutex // 串行化 Reload，防止旧数据覆盖新数据
	path     string
	format   Format
	opts     *Options
}

// New 从文件创建配置，按扩展名识别格式（.yaml/.yml/.json）。空文件得到空配置。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return newConfig(data, format, path, opts)
}

// NewFromBytes 从字节数据创建配置，需显式指定格式。空数据得到空配置。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	return newConfig(data, format, "", opts)
}

func newConfig(data []byte, format Format, path string, opts []Option) (*koanfConfig, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	k, err := parse(data, format, options.Delim)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{
		path:   path,
		format: format,
		opts:   options,
	}
	c.current.Store(k)
	c.version.Store(1)
	return c, nil
}

// Client 返回当前快照。
func (c *koanfConfig) Client() *koanf.Koanf {
	return c.current.Load()
}

// Unmarshal 反序列化 path 下的配置。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	err := c.current.Load().UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取文件。
func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := parse(data, c.format, c.opts.Delim)
	if err != nil {
		return err
	}
	c.current.Store(k)
	c.version.Add(1)
	return nil
}

// Version 返回快照版本号。
func (c *koanfConfig) Version() uint64 {
	return c.version.Load()
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

// parse 把数据解析为新的 koanf 实例。
func parse(data []byte, format Format, delim string) (*koanf.Koanf, error) {
	k := koanf.New(delim)
	if len(data) == 0 {
		return k, nil
	}

	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

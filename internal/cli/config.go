package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/roach88/atengine/internal/transport"
)

// Transport names accepted by serve.
const (
	TransportStdio  = "stdio"
	TransportSerial = "serial"
	TransportTCP    = "tcp"
)

// DefaultListenAddr is the TCP address used when none is configured.
const DefaultListenAddr = "127.0.0.1:2323"

// ServeConfig is the resolved configuration of the serve command.
type ServeConfig struct {
	Table     string
	TableName string
	Transport string
	Device    string
	Baud      int
	Listen    string
	Buffer    int
	DB        string
	QueueSize int
}

// DefaultServeConfig returns the settings used when neither a file nor a
// flag sets a key.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{
		Transport: TransportStdio,
		Baud:      transport.DefaultBaud,
		Listen:    DefaultListenAddr,
	}
}

// serve config.toml keys.
type serveFileConfig struct {
	Table     string `toml:"table"`
	TableName string `toml:"table_name"`
	Transport string `toml:"transport"`
	Device    string `toml:"device"`
	Baud      int    `toml:"baud"`
	Listen    string `toml:"listen"`
	Buffer    int    `toml:"buffer"`
	DB        string `toml:"db"`
	QueueSize int    `toml:"queue_size"`
}

// loadServeConfig overlays the keys defined in a TOML file onto cfg.
// Relative table and db paths are resolved against the file's directory.
func loadServeConfig(path string, cfg ServeConfig) (ServeConfig, error) {
	var raw serveFileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServeConfig{}, fmt.Errorf("load serve config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ServeConfig{}, fmt.Errorf("load serve config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("table") {
		cfg.Table = resolveRelative(path, raw.Table)
	}
	if meta.IsDefined("table_name") {
		cfg.TableName = strings.TrimSpace(raw.TableName)
	}
	if meta.IsDefined("transport") {
		cfg.Transport = strings.TrimSpace(raw.Transport)
	}
	if meta.IsDefined("device") {
		cfg.Device = strings.TrimSpace(raw.Device)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("buffer") {
		cfg.Buffer = raw.Buffer
	}
	if meta.IsDefined("db") {
		cfg.DB = resolveRelative(path, raw.DB)
	}
	if meta.IsDefined("queue_size") {
		cfg.QueueSize = raw.QueueSize
	}
	return cfg, nil
}

func resolveRelative(configPath, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

// Validate checks the combination of settings.
func (c ServeConfig) Validate() error {
	if c.Table == "" {
		return fmt.Errorf("serve config: table is required")
	}
	switch c.Transport {
	case TransportStdio:
	case TransportSerial:
		if c.Device == "" {
			return fmt.Errorf("serve config: device is required for the serial transport")
		}
		if c.Baud <= 0 {
			return fmt.Errorf("serve config: baud must be positive, got %d", c.Baud)
		}
	case TransportTCP:
		if c.Listen == "" {
			return fmt.Errorf("serve config: listen address is required for the tcp transport")
		}
	default:
		return fmt.Errorf("serve config: unsupported transport %q (expected stdio, serial or tcp)", c.Transport)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("serve config: buffer must be non-negative, got %d", c.Buffer)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("serve config: queue_size must be non-negative, got %d", c.QueueSize)
	}
	return nil
}

// streamOptions returns the transport options implied by the config.
func (c ServeConfig) streamOptions() []transport.Option {
	if c.QueueSize > 0 {
		return []transport.Option{transport.WithQueueSize(c.QueueSize)}
	}
	return nil
}

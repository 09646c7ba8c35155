package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NazarLozynskyi/ll-protocol/internal/serial"
	"github.com/NazarLozynskyi/ll-protocol/llp"
)

// HexByte is a single byte in YAML. It accepts an integer node (170, 0xAA)
// or a hex string ("AA", "0xAA").
type HexByte byte

func (h *HexByte) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		if n < 0 || n > 0xFF {
			return fmt.Errorf("byte value %d out of range 0..255", n)
		}
		*h = HexByte(n)
		return nil
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("byte value must be an integer or a hex string")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return fmt.Errorf("invalid hex byte %q", value.Value)
	}
	*h = HexByte(v)
	return nil
}

func (h HexByte) MarshalYAML() (interface{}, error) {
	return fmt.Sprintf("0x%02X", byte(h)), nil
}

type Config struct {
	Message MessageConfig `yaml:"message"`
	Link    LinkConfig    `yaml:"link"`
	Capture CaptureConfig `yaml:"capture"`
	Replay  ReplayConfig  `yaml:"replay"`
	Status  StatusConfig  `yaml:"status"`
	Log     LogConfig     `yaml:"log"`
}

type MessageConfig struct {
	Size       int     `yaml:"size"`
	BeginByte  HexByte `yaml:"begin_byte"`
	EndByte    HexByte `yaml:"end_byte"`
	RejectByte HexByte `yaml:"reject_byte"`
}

// Info converts the section into the framing the codec takes.
func (m MessageConfig) Info() llp.MessageInfo {
	return llp.MessageInfo{
		Size:       m.Size,
		BeginByte:  byte(m.BeginByte),
		EndByte:    byte(m.EndByte),
		RejectByte: byte(m.RejectByte),
	}
}

type LinkConfig struct {
	// Kind selects the byte source: 'serial', 'tcp' or 'stdio'.
	Kind string `yaml:"kind"`

	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Addr   string `yaml:"addr"`

	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	ReadBuffer     int           `yaml:"read_buffer"`
}

type CaptureConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type StatusConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is given: 16-byte
// messages with the 0xAA/0xBB/0xCC control bytes over stdio.
func Default() Config {
	cfg := Config{}
	_ = DefaultAndValidate(&cfg)
	return cfg
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config contains unknown or invalid fields: %v", err)
	}

	if err := DefaultAndValidate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills unset fields with defaults and checks the result.
func DefaultAndValidate(cfg *Config) error {
	if cfg.Message.Size == 0 {
		cfg.Message.Size = 16
	}
	if cfg.Message.BeginByte == 0 && cfg.Message.EndByte == 0 && cfg.Message.RejectByte == 0 {
		cfg.Message.BeginByte = 0xAA
		cfg.Message.EndByte = 0xBB
		cfg.Message.RejectByte = 0xCC
	}
	if err := cfg.Message.Info().Validate(); err != nil {
		return fmt.Errorf("message: %v", err)
	}

	if cfg.Link.Kind == "" {
		cfg.Link.Kind = "stdio"
	}
	switch cfg.Link.Kind {
	case "serial":
		if cfg.Link.Device == "" {
			return fmt.Errorf("link.device is required when link.kind is 'serial'")
		}
		if cfg.Link.Baud == 0 {
			cfg.Link.Baud = 115200
		}
		if !serial.ValidBaud(cfg.Link.Baud) {
			return fmt.Errorf("link.baud %d is not supported", cfg.Link.Baud)
		}
	case "tcp":
		if cfg.Link.Addr == "" {
			return fmt.Errorf("link.addr is required when link.kind is 'tcp'")
		}
	case "stdio":
	default:
		return fmt.Errorf("link.kind must be one of 'serial', 'tcp', 'stdio'")
	}
	if cfg.Link.ReconnectDelay <= 0 {
		cfg.Link.ReconnectDelay = 1 * time.Second
	}
	if cfg.Link.DialTimeout <= 0 {
		cfg.Link.DialTimeout = 2 * time.Second
	}
	if cfg.Link.ReadBuffer <= 0 {
		cfg.Link.ReadBuffer = 4096
	}

	if cfg.Capture.Enable && cfg.Capture.Path == "" {
		return fmt.Errorf("capture.path is required when capture.enable is true")
	}

	if cfg.Replay.Speed == 0 {
		cfg.Replay.Speed = 1
	}
	if cfg.Replay.Speed < 0 {
		return fmt.Errorf("replay.speed must be > 0")
	}

	if cfg.Status.Enable && cfg.Status.Listen == "" {
		cfg.Status.Listen = "127.0.0.1:8080"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 30
	}

	return nil
}

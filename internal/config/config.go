package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/sir_venger/chunkload/internal/usecase/chunksvc"
	"github.com/sir_venger/chunkload/pkg/chunkproto"
)

const (
	defaultListenAddr = ":3000"
	defaultMetaDSN    = "memory://"
	defaultLogLevel   = "info"
	defaultFilePath   = "media"
	defaultGCTTL      = 24 * time.Hour
	defaultGCInterval = 30 * time.Minute
)

type Config struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" envconfig:"LISTEN_ADDR"`
	MetaDSN    string `yaml:"meta_dsn" json:"meta_dsn" envconfig:"META_DSN"`
	LogLevel   string `yaml:"log_level" json:"log_level" envconfig:"LOG_LEVEL"`

	Upload UploadConfig `yaml:"upload" json:"upload" envconfig:"UPLOAD"`
	GC     GCConfig     `yaml:"gc" json:"gc" envconfig:"GC"`
}

// UploadConfig — настройки реассемблера чанков.
type UploadConfig struct {
	FileFields       []string `yaml:"file_fields" json:"file_fields" envconfig:"FILE_FIELDS"`
	ChunkIDHeader    string   `yaml:"chunk_id_header" json:"chunk_id_header" envconfig:"CHUNK_ID_HEADER"`
	ChunkSizeHeader  string   `yaml:"chunk_size_header" json:"chunk_size_header" envconfig:"CHUNK_SIZE_HEADER"`
	FilePath         string   `yaml:"file_path" json:"file_path" envconfig:"FILE_PATH"`
	TempDir          string   `yaml:"temp_dir" json:"temp_dir" envconfig:"TEMP_DIR"`
	Mode             string   `yaml:"mode" json:"mode" envconfig:"MODE"`
	DefaultChunkSize uint64   `yaml:"default_chunk_size" json:"default_chunk_size" envconfig:"DEFAULT_CHUNK_SIZE"`
	DefaultChunkID   string   `yaml:"default_chunk_id" json:"default_chunk_id" envconfig:"DEFAULT_CHUNK_ID"`
}

// GCConfig — уборка брошенных загрузок. Нулевой Interval выключает фоновую уборку.
type GCConfig struct {
	TTL      time.Duration `yaml:"ttl" json:"ttl" envconfig:"TTL"`
	Interval time.Duration `yaml:"interval" json:"interval" envconfig:"INTERVAL"`
}

// Load читает YAML-конфигурацию (если файл есть), применяет ENV-переопределения
// и значения по умолчанию.
func Load() (*Config, error) {
	path := getenv("CONFIG_PATH", "./config.yaml")

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_PATH") == "":
		// без файла работаем на ENV и значениях по умолчанию
	default:
		return nil, err
	}

	// ENV override: LISTEN_ADDR, META_DSN, UPLOAD_FILE_PATH, GC_TTL, ...
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		ListenAddr: defaultListenAddr,
		MetaDSN:    defaultMetaDSN,
		LogLevel:   defaultLogLevel,
		Upload: UploadConfig{
			FileFields:       []string{chunkproto.DefaultFileField},
			ChunkIDHeader:    chunkproto.HeaderChunkID,
			ChunkSizeHeader:  chunkproto.HeaderChunkSize,
			FilePath:         defaultFilePath,
			TempDir:          chunksvc.DefaultTempDir(),
			Mode:             string(chunksvc.ModePermissive),
			DefaultChunkSize: chunkproto.DefaultChunkSize,
			DefaultChunkID:   chunkproto.DefaultChunkID,
		},
		GC: GCConfig{
			TTL:      defaultGCTTL,
			Interval: defaultGCInterval,
		},
	}
}

// Validate проверяет значения, которые нельзя исправить молча.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr is empty")
	}
	switch chunksvc.Mode(c.Upload.Mode) {
	case chunksvc.ModePermissive, chunksvc.ModeStrict:
	default:
		return fmt.Errorf("upload.mode must be %q or %q, got %q", chunksvc.ModePermissive, chunksvc.ModeStrict, c.Upload.Mode)
	}
	if c.GC.TTL < 0 || c.GC.Interval < 0 {
		return fmt.Errorf("gc durations must not be negative")
	}

	return nil
}

// ReassemblerOptions переводит конфигурацию в опции chunksvc.
func (c *Config) ReassemblerOptions() chunksvc.Options {
	return chunksvc.Options{
		FileFields:       splitComma(strings.Join(c.Upload.FileFields, ",")),
		ChunkIDHeader:    c.Upload.ChunkIDHeader,
		ChunkSizeHeader:  c.Upload.ChunkSizeHeader,
		FilePath:         c.Upload.FilePath,
		TempDir:          c.Upload.TempDir,
		Mode:             chunksvc.Mode(c.Upload.Mode),
		DefaultChunkSize: c.Upload.DefaultChunkSize,
		DefaultChunkID:   c.Upload.DefaultChunkID,
	}
}

const redactedDSN = "[redacted]"

// Redacted возвращает копию для отдачи наружу: пароль в meta_dsn скрыт.
// DSN в формате key=value скрывается целиком.
func (c *Config) Redacted() Config {
	out := *c
	out.Upload.FileFields = append([]string(nil), c.Upload.FileFields...)

	dsn := strings.TrimSpace(c.MetaDSN)
	if dsn == "" || strings.HasPrefix(dsn, "memory://") {
		return out
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		out.MetaDSN = redactedDSN
		return out
	}
	if q := u.Query(); q.Has("password") {
		q.Set("password", "xxxxx")
		u.RawQuery = q.Encode()
	}
	out.MetaDSN = u.Redacted()
	return out
}

func splitComma(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}

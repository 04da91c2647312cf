package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"talento/internal/auth"
	"talento/internal/matcher"
	"talento/internal/notifier"
	"talento/internal/scheduler"
	"talento/internal/storage"
	"talento/internal/upload"
	"talento/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置。
type AppConfig struct {
	Server    ServerConfig         `yaml:"server"`
	Log       LogConfig            `yaml:"log"`
	Database  storage.Config       `yaml:"database"`
	Auth      auth.Config          `yaml:"auth"`
	Uploads   upload.Config        `yaml:"uploads"`
	Email     notifier.EmailConfig `yaml:"email"`
	Dedup     notifier.DedupConfig `yaml:"dedup"`
	Scheduler scheduler.Config     `yaml:"scheduler"`
	Matcher   matcher.Config       `yaml:"matcher"`
	Workflow  workflow.Config      `yaml:"workflow"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	StreamInterval  string `yaml:"stream_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// loadConfig 先加载 .env，再读取 yaml 配置；文件不存在时使用默认值。
// DATABASE_URL、JWT_SECRET、LISTEN_ADDR 覆盖文件中的值。
func loadConfig(path string) (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "config.yaml"
	}

	var cfg AppConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *AppConfig) applyEnv(getenv func(string) string) {
	if url := strings.TrimSpace(getenv("DATABASE_URL")); url != "" {
		if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
			c.Database.Driver = "postgres"
			c.Database.DSN = url
		} else {
			c.Database.Driver = "sqlite"
			c.Database.Path = strings.TrimPrefix(url, "file:")
		}
	}
	if secret := getenv("JWT_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
	if addr := getenv("LISTEN_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func newLogger(cfg LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config 是唯一持久化的配置文件结构。
type Config struct {
	URL          string   `toml:"url"`
	Token        string   `toml:"token"`
	Models       []string `toml:"models"`
	DefaultModel string   `toml:"default_model,omitempty"`
	HistoryURL   string   `toml:"history_url,omitempty"`
	HistoryFile  string   `toml:"history_file,omitempty"`
	Source       string   `toml:"-"`
}

// DefaultURL 是未配置时使用的 API 地址。
const DefaultURL = "https://api.openai.com"

// DefaultModels 是首次启动写入配置文件的模型列表。
var DefaultModels = []string{"gemini-2.0-flash", "gpt-4.1", "gpt-4o-mini", "gpt-4o"}

func Default() Config {
	return Config{
		URL:    DefaultURL,
		Models: append([]string(nil), DefaultModels...),
	}
}

// Dir 返回配置目录 ~/.mdchat。
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mdchat")
}

func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load 读取配置；文件不存在时写入默认配置后返回默认值。
// 环境变量 OPENAI_BASE_URL / OPENAI_API_KEY 优先于文件内容。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errNoHome
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return applyEnv(cfg), nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg).normalized(), nil
}

// Model 返回启动时选中的模型：default_model 优先，否则取列表第一个。
func (c Config) Model() string {
	if m := strings.TrimSpace(c.DefaultModel); m != "" {
		return m
	}
	if len(c.Models) > 0 {
		return c.Models[0]
	}
	return ""
}

func (c Config) normalized() Config {
	if strings.TrimSpace(c.URL) == "" {
		c.URL = DefaultURL
	}
	models := c.Models[:0:0]
	for _, m := range c.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = append(models, DefaultModels...)
	}
	c.Models = models
	return c
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); env != "" {
		cfg.Token = env
	}
	return cfg
}

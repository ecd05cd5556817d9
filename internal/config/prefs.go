package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Prefs 保存界面偏好，目前只有深色模式开关。
type Prefs struct {
	DarkMode *bool `toml:"dark_mode,omitempty"`
}

func DefaultPrefsPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "prefs.toml")
}

// Dark 返回持久化的深色模式；未设置时使用 fallback。
func (p Prefs) Dark(fallback bool) bool {
	if p.DarkMode == nil {
		return fallback
	}
	return *p.DarkMode
}

// LoadPrefs 读取偏好文件，不存在时返回零值。
func LoadPrefs(path string) (Prefs, error) {
	var prefs Prefs
	if path == "" {
		path = DefaultPrefsPath()
	}
	if path == "" {
		return prefs, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, err
	}
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Prefs{}, err
	}
	return prefs, nil
}

func SavePrefs(path string, prefs Prefs) error {
	if path == "" {
		path = DefaultPrefsPath()
	}
	return writeTOML(path, prefs, 0o644)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

var errNoHome = errors.New("config path is empty and $HOME is not set")

// Save 写入配置文件。文件里有 token，权限收紧为 0600。
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	return writeTOML(path, cfg, 0o600)
}

// writeTOML 先写同目录临时文件再 rename，避免中途退出留下半个文件。
func writeTOML(path string, v any, perm os.FileMode) error {
	if path == "" {
		return errNoHome
	}
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

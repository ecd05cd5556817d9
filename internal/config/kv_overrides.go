package config

import "strings"

// overrideSetters 列出 -c 可改写的配置键，别名指向同一字段。
var overrideSetters = map[string]func(*Config, string){
	"url":           func(c *Config, v string) { c.URL = v },
	"base_url":      func(c *Config, v string) { c.URL = v },
	"token":         func(c *Config, v string) { c.Token = v },
	"model":         func(c *Config, v string) { c.DefaultModel = v },
	"default_model": func(c *Config, v string) { c.DefaultModel = v },
	"models":        func(c *Config, v string) { c.Models = splitList(v) },
	"history_url":   func(c *Config, v string) { c.HistoryURL = v },
	"history_file":  func(c *Config, v string) { c.HistoryFile = v },
}

// ApplyKVOverrides 依次应用 key=value 覆盖项。格式不对或不认识的键跳过，
// 运行期参数（line_step 等）由调用方自行解析。
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	for _, raw := range overrides {
		key, val, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		if set, known := overrideSetters[strings.TrimSpace(key)]; known {
			set(&cfg, strings.TrimSpace(val))
		}
	}
	return cfg
}

func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

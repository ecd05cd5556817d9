package chat

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// CycleModel 按 delta 在列表中循环移动，返回新模型。
func (s *State) CycleModel(delta int) string {
	n := len(s.models)
	if n == 0 {
		return s.model
	}
	idx := indexOf(s.models, s.model)
	if idx < 0 {
		idx = 0
	} else {
		idx = ((idx+delta)%n + n) % n
	}
	s.model = s.models[idx]
	return s.model
}

// ResolveModel 用精确匹配或模糊匹配把用户输入映射到已配置的模型。
func ResolveModel(models []string, query string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	for _, m := range models {
		if strings.EqualFold(m, query) {
			return m, true
		}
	}
	matches := fuzzy.Find(query, models)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item == "" || indexOf(out, item) >= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}

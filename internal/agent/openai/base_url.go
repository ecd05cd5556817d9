package openai

import (
	"net/url"
	"slices"
	"strings"
)

// normalizeBaseURL 把配置里的地址整理成 API 根（以 /v1 结尾）。
// 允许直接粘贴 .../chat/completions 这样的完整端点，重复的 v1 段合并。
func normalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	var segs []string
	for s := range strings.SplitSeq(u.Path, "/") {
		if s == "" || (s == "v1" && len(segs) > 0 && segs[len(segs)-1] == "v1") {
			continue
		}
		segs = append(segs, s)
	}
	for _, tail := range [][]string{{"chat", "completions"}, {"completions"}} {
		if n := len(segs) - len(tail); n >= 0 && slices.Equal(segs[n:], tail) {
			segs = segs[:n]
			break
		}
	}
	if len(segs) == 0 || segs[len(segs)-1] != "v1" {
		segs = append(segs, "v1")
	}
	u.Path = "/" + strings.Join(segs, "/")
	u.RawPath = ""
	return u.String()
}

// CompletionsURL 是实际请求的端点，只用于展示。
func CompletionsURL(base string) string {
	root := normalizeBaseURL(base)
	if root == "" {
		return ""
	}
	return root + "/chat/completions"
}

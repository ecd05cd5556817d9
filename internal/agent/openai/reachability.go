package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Probe 对 base URL 的主机端口做一次 TCP 连接，返回实际拨号的地址。
// 只检查网络可达，不发 HTTP 请求。
func Probe(ctx context.Context, baseURL string) (string, error) {
	addr, err := dialAddress(baseURL)
	if err != nil {
		return "", err
	}
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	if err != nil {
		return addr, fmt.Errorf("cannot connect to %s (base_url=%q): %w", addr, baseURL, err)
	}
	_ = conn.Close()
	return addr, nil
}

// dialAddress 从 base URL 推出 host:port，缺省端口按 scheme 补齐。
func dialAddress(baseURL string) (string, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return "", errors.New("base_url is empty")
	}
	parsed, err := url.Parse(normalizeBaseURL(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base_url %q: %w", baseURL, err)
	}
	host := parsed.Hostname()
	if parsed.Scheme == "" || host == "" {
		return "", fmt.Errorf("invalid base_url %q: want scheme://host", baseURL)
	}
	port := parsed.Port()
	switch {
	case port != "":
		if _, err := strconv.Atoi(port); err != nil {
			return "", fmt.Errorf("invalid base_url port %q: %w", port, err)
		}
	case strings.EqualFold(parsed.Scheme, "http"):
		port = "80"
	case strings.EqualFold(parsed.Scheme, "https"):
		port = "443"
	default:
		return "", fmt.Errorf("unsupported base_url scheme %q", parsed.Scheme)
	}
	return net.JoinHostPort(host, port), nil
}

package main

import (
	"strconv"
	"strings"
	"time"

	"mdchat/internal/modal"
	"mdchat/internal/tui"
)

type runtimeConfig struct {
	LineStep       float64
	FrameMillis    int
	HistoryLimit   int
	RequestTimeout time.Duration
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		LineStep:       modal.DefaultLineStep,
		FrameMillis:    int(tui.DefaultFrameInterval / time.Millisecond),
		HistoryLimit:   0,
		RequestTimeout: 30 * time.Second,
	}
}

func (c runtimeConfig) frameInterval() time.Duration {
	return time.Duration(c.FrameMillis) * time.Millisecond
}

func applyRuntimeKVOverrides(cfg runtimeConfig, overrides []string) runtimeConfig {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "line_step", "line-step":
			if n, err := strconv.ParseFloat(val, 64); err == nil && n > 0 {
				cfg.LineStep = n
			}
		case "frame_ms", "frame-ms":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.FrameMillis = n
			}
		case "history_limit", "history-limit":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.HistoryLimit = n
			}
		case "timeout", "request_timeout_seconds":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.RequestTimeout = time.Duration(n) * time.Second
			}
		}
	}
	return cfg
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mdchat/internal/config"
	"mdchat/internal/session"
)

func historyMain(root rootArgs, args []string) {
	if err := runHistory(root, args, os.Stdout); err != nil {
		log.Fatalf("history failed: %v", err)
	}
}

// runHistory 用交互模式相同的来源拉取一次历史并打印。
func runHistory(root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var cfgPath string
	var historyURL string
	var historyFile string
	var overrides repeatFlag
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.mdchat/config.toml)")
	fs.StringVar(&historyURL, "url", "", "History URL (default from config)")
	fs.StringVar(&historyFile, "file", "", "History JSONL file (default from config)")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	all := prependOverrides(root.overrides, []string(overrides))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyKVOverrides(cfg, all)
	if u := strings.TrimSpace(historyURL); u != "" {
		cfg.HistoryURL = u
	}
	if f := strings.TrimSpace(historyFile); f != "" {
		cfg.HistoryFile = f
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), all)

	var store *session.Store
	if cfg.HistoryURL == "" && cfg.HistoryFile == "" {
		if store, err = session.NewDefault(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), rt.RequestTimeout)
	defer cancel()
	msgs, err := buildHistorySource(cfg, store, rt.HistoryLimit).Fetch(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		_, _ = fmt.Fprintln(out, "(no history)")
		return nil
	}
	for _, m := range msgs {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

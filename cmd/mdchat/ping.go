package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"mdchat/internal/agent"
	openaimodel "mdchat/internal/agent/openai"
	"mdchat/internal/config"
)

type pingArgs struct {
	cfgPath   string
	model     string
	baseURL   string
	apiKey    string
	overrides repeatFlag
}

func (p *pingArgs) bind(fs *flag.FlagSet) {
	fs.StringVar(&p.cfgPath, "config", "", "Path to config file (default ~/.mdchat/config.toml)")
	fs.StringVar(&p.model, "model", "", "Model to ping (fuzzy matched, default from config)")
	fs.StringVar(&p.baseURL, "base-url", "", "Endpoint to use instead of the configured url")
	fs.StringVar(&p.apiKey, "api-key", "", "API key to use instead of the configured token")
	fs.Var(&p.overrides, "c", "Override config value key=value (repeatable)")
}

// endpoint 合并命令行与配置：命令行非空时优先。
func (p *pingArgs) endpoint(cfg config.Config) (baseURL, key string) {
	baseURL, key = strings.TrimSpace(p.baseURL), strings.TrimSpace(p.apiKey)
	if baseURL == "" {
		baseURL = strings.TrimSpace(cfg.URL)
	}
	if key == "" {
		key = strings.TrimSpace(cfg.Token)
	}
	return baseURL, key
}

func pingMain(root rootArgs, args []string) {
	if err := runPing(root, args, os.Stdout); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
}

// runPing 先探测地址能否连上，再用和交互界面相同的 transport 发一条 "ping"。
func runPing(root rootArgs, args []string, out io.Writer) error {
	var p pingArgs
	fs := flag.NewFlagSet("ping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	p.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	overrides := prependOverrides(root.overrides, p.overrides)

	cfg, err := config.Load(p.cfgPath)
	if err != nil {
		return err
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), overrides)
	model := selectModel(cfg, p.model)
	baseURL, key := p.endpoint(cfg)
	if key == "" {
		return errors.New("missing token: set OPENAI_API_KEY or configure token in ~/.mdchat/config.toml")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rt.RequestTimeout)
	defer cancel()

	addr, err := openaimodel.Probe(ctx, baseURL)
	if err != nil {
		return err
	}
	log.WithField("addr", addr).Info("endpoint reachable")

	client, err := openaimodel.New(openaimodel.Options{APIKey: key, BaseURL: baseURL, Model: model})
	if err != nil {
		return fmt.Errorf("init openai client: %w", err)
	}
	reply, err := agent.NewChatTransport(client).Send(ctx, "ping", model)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "ok (%s via %s): %s\n", model, openaimodel.CompletionsURL(baseURL), strings.TrimSpace(reply))
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mdchat/internal/agent"
	openaimodel "mdchat/internal/agent/openai"
	"mdchat/internal/chat"
	"mdchat/internal/config"
	"mdchat/internal/dispatch"
	"mdchat/internal/history"
	"mdchat/internal/logger"
	"mdchat/internal/session"
	"mdchat/internal/tui"
	"mdchat/internal/tui/render"
)

func main() {
	logger.Configure()
	if logFile, _, err := logger.SetupFile(logger.DefaultLogPath); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("parse args: %v", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "ping":
			pingMain(root, rest[1:])
			return
		case "history":
			historyMain(root, rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("mdchat")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parse args: %v", err)
	}
	overrides := prependOverrides(root.overrides, []string(cli.configOverrides))

	cfg, err := config.Load(cli.cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	if len(cli.models) > 0 {
		cfg.Models = []string(cli.models)
	}
	if u := strings.TrimSpace(cli.historyURL); u != "" {
		cfg.HistoryURL = u
	}
	if f := strings.TrimSpace(cli.historyFile); f != "" {
		cfg.HistoryFile = f
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), overrides)
	model := selectModel(cfg, cli.modelOverride)

	prefsPath := config.DefaultPrefsPath()
	prefs, err := config.LoadPrefs(prefsPath)
	if err != nil {
		log.Warnf("failed to load prefs (%s): %v", prefsPath, err)
	}
	dark := prefs.Dark(render.DetectDark())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	transport := agent.NewChatTransport(buildModelClient(cfg, model))
	dispatcher := dispatch.New(transport, dispatch.Options{})
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	store, err := session.NewDefault()
	if err != nil {
		log.Warnf("session store unavailable: %v", err)
		store = nil
	}
	loader := history.NewLoader(buildHistorySource(cfg, store, rt.HistoryLimit), nil)

	state := chat.New(chat.Options{
		Context:      ctx,
		Dispatcher:   dispatcher,
		History:      loader,
		Models:       cfg.Models,
		Model:        model,
		SystemPrompt: agent.DefaultSystemPrompt,
	})
	log.WithField("model", model).WithField("models", len(cfg.Models)).Info("starting interactive session")

	res, err := tui.Run(ctx, tui.Options{
		State:          state,
		LineStep:       rt.LineStep,
		FrameInterval:  rt.frameInterval(),
		DarkMode:       dark,
		CopyableOutput: cli.copyableOutput,
	})
	if err != nil {
		log.Fatalf("program exit: %v", err)
	}
	if n := dispatcher.Pending(); n > 0 {
		log.WithField("unread", n).Warn("exiting with replies not yet shown")
	}

	if res.DarkMode != dark || prefs.DarkMode == nil {
		darkMode := res.DarkMode
		prefs.DarkMode = &darkMode
		if err := config.SavePrefs(prefsPath, prefs); err != nil {
			log.Warnf("failed to save prefs: %v", err)
		}
	}
	if !cli.noSave {
		persistConversation(cfg, store, res)
	}
}

// selectModel 解析 --model：先在配置的模型中模糊匹配，匹配不到时原样使用。
func selectModel(cfg config.Config, override string) string {
	query := strings.TrimSpace(override)
	if query == "" {
		return cfg.Model()
	}
	if resolved, ok := chat.ResolveModel(cfg.Models, query); ok {
		return resolved
	}
	return query
}

func buildModelClient(cfg config.Config, model string) agent.ModelClient {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		log.Warnf("no token configured (set OPENAI_API_KEY or token in %s); using echo mode", cfg.Source)
		return agent.EchoClient{Prefix: "echo: "}
	}
	client, err := openaimodel.New(openaimodel.Options{
		APIKey:  token,
		BaseURL: cfg.URL,
		Model:   model,
	})
	if err != nil {
		log.Fatalf("failed to init openai client: %v", err)
	}
	return client
}

func buildHistorySource(cfg config.Config, store *session.Store, limit int) history.Source {
	source := history.NewSource(cfg.HistoryURL, cfg.HistoryFile, store)
	if fileSource, ok := source.(history.FileSource); ok {
		fileSource.Limit = limit
		return fileSource
	}
	return source
}

// persistConversation 把本次对话保存为会话记录；配置了 history_file 时追加新消息。
func persistConversation(cfg config.Config, store *session.Store, res tui.Result) {
	if len(res.Fresh) == 0 {
		return
	}
	if store != nil {
		id, err := store.Save("", res.Model, res.Conversation)
		if err != nil {
			log.Warnf("failed to save session: %v", err)
		} else {
			log.WithField("session", id).Info("session saved")
		}
	}
	if path := strings.TrimSpace(cfg.HistoryFile); path != "" {
		journal := &history.Journal{Path: path}
		if err := journal.Append(res.Fresh...); err != nil {
			log.Warnf("failed to append history file %s: %v", path, err)
		}
	}
}

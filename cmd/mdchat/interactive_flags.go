package main

import "flag"

type interactiveArgs struct {
	cfgPath         string
	modelOverride   string
	models          listFlag
	historyURL      string
	historyFile     string
	configOverrides repeatFlag
	copyableOutput  bool
	noSave          bool
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.mdchat/config.toml)")
	fs.StringVar(&args.modelOverride, "model", "", "Model to select at startup (fuzzy matched against configured models)")
	fs.StringVar(&args.modelOverride, "m", "", "Alias for --model")
	fs.Var(&args.models, "models", "Comma separated list of selectable models (repeatable)")
	fs.StringVar(&args.historyURL, "history-url", "", "Fetch history from this URL instead of local sessions")
	fs.StringVar(&args.historyFile, "history-file", "", "Read history from and append the conversation to this JSONL file")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.copyableOutput, "copyable-output", false, "Disable alt screen to allow mouse selection/copy")
	fs.BoolVar(&args.noSave, "no-save", false, "Do not save the conversation as a session on exit")

	return fs, args
}

package tui

import (
	"context"
	"errors"
	"fmt"

	"mdchat/internal/agent"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 是界面退出后交给调用方落盘的内容。
type Result struct {
	Transcript   []agent.Message
	Conversation []agent.Message
	Fresh        []agent.Message
	Model        string
	DarkMode     bool
}

// Run 启动界面并阻塞到退出。ctx 取消（例如收到 SIGTERM）时界面被终止，
// 已有的对话仍然返回。
func Run(ctx context.Context, opts Options) (Result, error) {
	progOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if !opts.CopyableOutput {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	final, err := tea.NewProgram(New(opts), progOpts...).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Result{}, err
	}
	m, ok := final.(*Model)
	if !ok {
		if err != nil {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("tui: unexpected final model %T", final)
	}
	return m.Result(), nil
}

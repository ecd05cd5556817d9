package tui

import (
	"strings"
	"time"

	"mdchat/internal/chat"
	"mdchat/internal/logger"
	"mdchat/internal/modal"
	"mdchat/internal/tui/render"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var log = logger.Named("tui")

const (
	DefaultFrameInterval = 50 * time.Millisecond

	sendButtonWidth = 10
	maxComposerRows = 6
)

type Options struct {
	State          *chat.State
	LineStep       float64
	FrameInterval  time.Duration
	DarkMode       bool
	CopyableOutput bool
	// Clipboard 默认为系统剪贴板。
	Clipboard func(string) error
}

type frameMsg time.Time

type copyResultMsg struct {
	Err error
}

// Model 是帧驱动：每帧先处理已到达的输入，再取结果、刷新记录、做一次滚动布局。
type Model struct {
	state   *chat.State
	machine *modal.Machine

	textarea   textarea.Model
	viewport   render.Viewport
	transcript *render.Transcript
	theme      render.Theme
	spin       spinner.Model
	help       help.Model
	keys       keyMap
	inputs     *inputHistory

	clipboard     func(string) error
	frameInterval time.Duration

	notice          string
	busySince       time.Time
	width           int
	height          int
	composerTop     int
	transcriptDirty bool
}

func New(opts Options) *Model {
	state := opts.State
	if state == nil {
		state = chat.New(chat.Options{})
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	ti := textarea.New()
	ti.Placeholder = "Type a message…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.ShowLineNumbers = false
	ti.SetWidth(70)
	ti.SetHeight(1)
	ti.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ti.Focus()

	theme := render.NewTheme(opts.DarkMode)
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	m := &Model{
		state:           state,
		machine:         modal.NewMachine(opts.LineStep),
		textarea:        ti,
		viewport:        render.NewViewport(80, 10),
		transcript:      render.NewTranscript(theme),
		theme:           theme,
		spin:            spin,
		help:            help.New(),
		keys:            newKeyMap(),
		inputs:          newInputHistory(0),
		clipboard:       copyFn,
		frameInterval:   interval,
		transcriptDirty: true,
	}
	m.keys.mode = m.machine.Mode()
	return m
}

func (m *Model) Init() tea.Cmd {
	if m.state.LoadInitial() {
		m.busySince = time.Now()
	}
	return tea.Batch(m.nextFrame(), m.spin.Tick, textarea.Blink)
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case frameMsg:
		m.frame()
		return m, m.nextFrame()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case copyResultMsg:
		if msg.Err != nil {
			log.WithError(msg.Err).Warn("copy to clipboard failed")
			m.notice = "copy failed"
			m.state.Notify("Error copying reply: " + msg.Err.Error())
			m.transcriptDirty = true
		} else {
			m.notice = "copied last reply"
		}
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// frame 执行一帧：取结果、刷新记录、布局滚动。
func (m *Model) frame() {
	out := m.state.Tick()
	if out.Changed() {
		m.transcriptDirty = true
	}
	if out.ScrollToBottom {
		m.machine.Scroll().Bottom()
	}
	if !m.state.Busy() {
		m.busySince = time.Time{}
	}
	m.flushTranscript()
	if err := m.machine.Scroll().Layout(m.viewport.Apply); err != nil {
		log.WithError(err).Warn("scroll layout failed")
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd
	action, consumed := m.machine.Handle(keyEvent(msg))
	if cmd := m.syncMode(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.perform(action); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if consumed || m.recallInput(msg) {
		return tea.Batch(cmds...)
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.fitComposer()
	return tea.Batch(cmds...)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		return m.viewport.HandleUpdate(msg)
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.Y < m.composerTop || msg.Y >= m.composerTop+m.composerHeight() {
		return nil
	}
	ev := modal.Event{Kind: modal.EventFocusInput}
	if msg.X >= m.width-sendButtonWidth {
		ev = modal.Event{Kind: modal.EventSendButton}
	}
	action, _ := m.machine.Handle(ev)
	return tea.Batch(m.syncMode(), m.perform(action))
}

// syncMode 让输入框焦点跟随编辑模式。
func (m *Model) syncMode() tea.Cmd {
	mode := m.machine.Mode()
	if m.keys.mode == mode {
		return nil
	}
	m.keys.mode = mode
	if mode == modal.ModeInsert {
		return m.textarea.Focus()
	}
	m.textarea.Blur()
	return nil
}

func (m *Model) perform(action modal.Action) tea.Cmd {
	switch action {
	case modal.ActionSend:
		m.send()
	case modal.ActionRefresh:
		if m.state.RefreshHistory() {
			m.busySince = time.Now()
			m.notice = ""
		} else {
			m.notice = "busy"
		}
	case modal.ActionToggleTheme:
		m.setTheme(render.NewTheme(!m.theme.Dark))
	case modal.ActionNextModel:
		m.notice = "model: " + m.state.CycleModel(1)
	case modal.ActionPrevModel:
		m.notice = "model: " + m.state.CycleModel(-1)
	case modal.ActionCopy:
		text, ok := m.state.LastAssistant()
		if !ok {
			m.notice = "nothing to copy"
			return nil
		}
		copyFn := m.clipboard
		return func() tea.Msg { return copyResultMsg{Err: copyFn(text)} }
	case modal.ActionQuit:
		return tea.Quit
	}
	return nil
}

func (m *Model) send() {
	input := m.textarea.Value()
	if !m.state.Send(input) {
		return
	}
	m.inputs.Record(input)
	m.textarea.Reset()
	m.fitComposer()
	m.notice = ""
	if m.state.Busy() {
		m.busySince = time.Now()
	}
	m.transcriptDirty = true
	m.machine.Scroll().Bottom()
}

// recallInput 在输入框首行按上、末行按下时回溯已发送的输入。
func (m *Model) recallInput(msg tea.KeyMsg) bool {
	var text string
	var ok bool
	switch msg.Type {
	case tea.KeyUp:
		if m.textarea.Line() != 0 {
			return false
		}
		text, ok = m.inputs.Older(m.textarea.Value())
	case tea.KeyDown:
		if m.textarea.Line() < m.textarea.LineCount()-1 {
			return false
		}
		text, ok = m.inputs.Newer()
	default:
		return false
	}
	if !ok {
		return false
	}
	m.textarea.SetValue(text)
	m.fitComposer()
	return true
}

func (m *Model) setTheme(theme render.Theme) {
	m.theme = theme
	m.transcript.SetTheme(theme)
	m.spin.Style = lipgloss.NewStyle().Foreground(theme.Accent)
	m.viewport.Invalidate()
	m.transcriptDirty = true
}

func (m *Model) flushTranscript() {
	if !m.transcriptDirty {
		return
	}
	m.transcriptDirty = false
	m.viewport.SetLines(m.transcript.Lines(m.state.Transcript()))
}

func (m *Model) composerHeight() int {
	return m.textarea.Height() + 2
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	const headerHeight, statusHeight, helpHeight = 1, 1, 1
	chatHeight := height - headerHeight - 2 - m.composerHeight() - statusHeight - helpHeight
	if chatHeight < 3 {
		chatHeight = 3
	}
	chatWidth := width - 2
	if chatWidth < 10 {
		chatWidth = 10
	}
	m.viewport.Resize(chatWidth, chatHeight)
	m.transcript.SetWidth(chatWidth)
	m.machine.Scroll().SetViewportHeight(float64(chatHeight))

	inputWidth := width - sendButtonWidth - 2
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.textarea.SetWidth(inputWidth)
	m.help.Width = width
	m.composerTop = headerHeight + chatHeight + 2
	m.transcriptDirty = true
}

// fitComposer 按内容行数调整输入框高度，最多 maxComposerRows 行。
func (m *Model) fitComposer() {
	rows := strings.Count(m.textarea.Value(), "\n") + 1
	if rows > maxComposerRows {
		rows = maxComposerRows
	}
	if m.textarea.Height() == rows {
		return
	}
	m.textarea.SetHeight(rows)
	if m.width > 0 && m.height > 0 {
		m.resize(m.width, m.height)
	}
}

func (m *Model) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Accent).Padding(0, 1).Render("mdchat")

	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border)
	chatPane := pane.Width(m.viewport.Width).Height(m.viewport.Height).Render(m.viewport.View())

	inputBorder := m.theme.Border
	if m.machine.Mode() == modal.ModeInsert {
		inputBorder = m.theme.Accent
	}
	input := pane.BorderForeground(inputBorder).Render(m.textarea.View())
	composer := lipgloss.JoinHorizontal(lipgloss.Top, input, m.sendButton())

	badge := modeBadge(m.machine.Mode(), m.theme)
	busy := busyLabel(m.state.Phase(), m.busySince, time.Now())
	if busy != "" {
		busy = m.spin.View() + " " + busy
	}
	rest := m.width - lipgloss.Width(badge) - 1
	status := lipgloss.JoinHorizontal(lipgloss.Top, badge, " ",
		m.theme.MutedStyle().Render(statusText(m.state.Model(), busy, m.notice, rest)))

	hints := m.help.View(m.keys)
	return lipgloss.JoinVertical(lipgloss.Left, header, chatPane, composer, status, hints)
}

// sendButton 在非插入模式或忙碌时渲染为禁用样式。
func (m *Model) sendButton() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(sendButtonWidth-2).
		Height(m.textarea.Height()).
		Align(lipgloss.Center)
	if m.machine.Mode() == modal.ModeInsert && !m.state.Busy() {
		style = style.BorderForeground(m.theme.Accent).Foreground(m.theme.Accent).Bold(true)
	} else {
		style = style.BorderForeground(m.theme.Border).Foreground(m.theme.Muted)
	}
	return style.Render("Send")
}

// Result 汇总退出时的状态。
func (m *Model) Result() Result {
	return Result{
		Transcript:   m.state.Transcript(),
		Conversation: m.state.Conversation(),
		Fresh:        m.state.Fresh(),
		Model:        m.state.Model(),
		DarkMode:     m.theme.Dark,
	}
}

func (m *Model) Mode() modal.Mode { return m.machine.Mode() }

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dengar/bridge"
)

type tickMsg time.Time

const meterWidth = 20

type paneLine struct {
	when  time.Time
	text  string
	isErr bool
}

// Lines kept per pane. Older lines scroll out of memory.
const paneCap = 200

type tuiModel struct {
	ctrl   *Controller
	events *bridge.Bridge

	transcript []paneLine
	chatLines  []paneLine
	infoLines  []paneLine

	status    string
	severity  bridge.Severity
	level     int
	lastText  string // last recognized phrase, for clipboard copy
	copied    bool
	micName   string
	width     int
	height    int
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	statusOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusLive   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusBad    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	paneTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	meterOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	copiedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func newTUIProgram(ctrl *Controller, events *bridge.Bridge, micName string) *tea.Program {
	m := tuiModel{
		ctrl:    ctrl,
		events:  events,
		status:  "Ready",
		micName: micName,
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		for _, e := range m.events.Drain() {
			m.apply(e)
		}
		return m, tuiTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.ctrl.ListenOnce()
		case "l":
			m.ctrl.ToggleContinuous()
		case "c":
			m.ctrl.ClearHistory()
			m.transcript = nil
			m.chatLines = nil
		case "m":
			m.ctrl.CycleDevice()
		case "g":
			m.ctrl.ToggleLanguage()
		case "d":
			on := m.ctrl.ToggleDebug()
			m.infoLines = appendPane(m.infoLines, paneLine{when: time.Now(), text: "Debug mode: " + onOff(on)})
		case "o":
			on := m.ctrl.ToggleChat()
			m.infoLines = appendPane(m.infoLines, paneLine{when: time.Now(), text: "Chat: " + onOff(on)})
		case "y":
			if m.lastText != "" {
				if err := clipboard.WriteAll(m.lastText); err == nil {
					m.copied = true
				}
			}
		}
	}
	return m, nil
}

func (m *tuiModel) apply(e bridge.Event) {
	switch e := e.(type) {
	case bridge.Level:
		m.level = e.Value
	case bridge.Status:
		m.status = e.Message
		m.severity = e.Severity
	case bridge.Log:
		line := paneLine{when: time.Now(), text: e.Text, isErr: e.IsError}
		switch e.Channel {
		case bridge.ChannelTranscript:
			m.transcript = appendPane(m.transcript, line)
			if !e.IsError {
				m.lastText = e.Text
				m.copied = false
			}
		case bridge.ChannelChat:
			m.chatLines = appendPane(m.chatLines, line)
		default:
			m.infoLines = appendPane(m.infoLines, line)
			if strings.HasPrefix(e.Text, "Now using: ") {
				m.micName = strings.TrimPrefix(e.Text, "Now using: ")
			}
		}
	}
}

func appendPane(lines []paneLine, l paneLine) []paneLine {
	lines = append(lines, l)
	if len(lines) > paneCap {
		lines = lines[len(lines)-paneCap:]
	}
	return lines
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dengar") + dimStyle.Render("  voice chat  "+version) + "\n")
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(m.meterLine() + "\n\n")

	paneHeight := m.height - 8
	if paneHeight < 4 {
		paneHeight = 4
	}
	paneWidth := (m.width - 3) / 2
	if paneWidth < 20 {
		paneWidth = 20
	}

	left := renderPane("You said", m.transcript, paneWidth, paneHeight, m.copied, m.lastText)
	right := renderPane("Assistant", m.chatLines, paneWidth, paneHeight, false, "")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")

	help := "space listen  l continuous  m mic  g language  o chat  d debug  c clear  y copy  q quit"
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m tuiModel) statusLine() string {
	var style lipgloss.Style
	switch m.severity {
	case bridge.StatusListening:
		style = statusLive
	case bridge.StatusError:
		style = statusBad
	default:
		style = statusOK
	}
	chatState := onOff(m.ctrl.ChatEnabled())
	mode := "single"
	if m.ctrl.Continuous() {
		mode = "continuous"
	}
	line := fmt.Sprintf(" | Lang: %s | Chat: %s | Mode: %s | Mic: %s",
		m.ctrl.Language(), chatState, mode, m.micName)
	return style.Render("Status: "+m.status) + dimStyle.Render(line)
}

func (m tuiModel) meterLine() string {
	if m.ctrl.State() == StateIdle {
		return dimStyle.Render("🎤 idle")
	}
	filled := m.level
	if filled > meterWidth {
		filled = meterWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return meterOnStyle.Render("🎤 ["+bar+"]")
}

func renderPane(title string, lines []paneLine, width, height int, copied bool, lastText string) string {
	var content strings.Builder
	content.WriteString(paneTitle.Render(title) + "\n")

	wrapWidth := width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	var rendered []string
	for _, l := range lines {
		style := lineStyle
		if l.isErr {
			style = errStyle
		}
		prefix := l.when.Format("15:04:05") + " "
		for i, w := range wrapText(l.text, wrapWidth-len(prefix)) {
			if i == 0 {
				rendered = append(rendered, dimStyle.Render(prefix)+style.Render(w))
			} else {
				rendered = append(rendered, strings.Repeat(" ", len(prefix))+style.Render(w))
			}
		}
		if copied && l.text == lastText && l.text != "" {
			rendered[len(rendered)-1] += " " + copiedStyle.Render("[✓ copied]")
		}
	}
	if len(rendered) > height-1 {
		rendered = rendered[len(rendered)-(height-1):]
	}
	content.WriteString(strings.Join(rendered, "\n"))

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		PaddingLeft(1).
		Render(content.String())
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	// Wrap on runes so a multibyte character at the boundary is never
	// split mid-sequence.
	runes := []rune(text)
	var lines []string
	for len(runes) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}

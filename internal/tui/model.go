// Package tui provides the Bubble Tea live-session interface.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/morselive/internal/client"
	"github.com/verte-zerg/morselive/internal/heatmap"
	"github.com/verte-zerg/morselive/internal/model"
	"github.com/verte-zerg/morselive/internal/session"
	"github.com/verte-zerg/morselive/internal/transport"
	"github.com/verte-zerg/morselive/internal/trend"
)

const (
	pitchStep  = 50
	feedLines  = 8
	tickPeriod = time.Second
)

type (
	connectMsg struct{}
	tickMsg    time.Time
)

// Form focus targets.
const (
	focusNone = iota
	focusProfile
	focusSpeed
)

// Model implements the Bubble Tea session UI. The client is driven from
// Update only.
type Model struct {
	client *client.Client
	now    func() time.Time

	width  int
	height int

	keys keyMap
	help help.Model

	profileInput textinput.Model
	speedInput   textinput.Model
	focus        int
	formErr      string

	// accuracy keeps its last value while no results are counted.
	accuracy string
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4B106"))
	sentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Padding(0, 1)
	selectedStyle  = keyStyle.Copy().Reverse(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// NewModel constructs the session TUI around c.
func NewModel(c *client.Client) *Model {
	profile, speed := c.FormValues()
	cfg := c.Config()
	m := &Model{
		client:       c,
		now:          time.Now,
		keys:         defaultKeyMap(),
		help:         help.New(),
		profileInput: newNumberInput(profile, 1),
		speedInput:   newNumberInput(speed, 3),
		accuracy:     "-",
	}
	m.keys.setCapabilities(cfg.Capabilities.OnscreenKeyboard, cfg.Capabilities.AudioTone)
	return m
}

func newNumberInput(value, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = limit
	in.Width = limit + 1
	in.SetValue(strconv.Itoa(value))
	in.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return fmt.Errorf("not a number")
			}
		}
		return nil
	}
	return in
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return connectMsg{} },
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(tickPeriod, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case connectMsg:
		m.client.Connect()
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		m.syncAccuracy()
		return m, cmd
	default:
		if m.client.Handle(msg) {
			m.syncAccuracy()
			m.syncForm()
			return m, nil
		}
		return m, m.updateInputs(msg)
	}
}

// updateInputs forwards cursor blinks and similar to the focused field.
func (m *Model) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusProfile:
		m.profileInput, cmd = m.profileInput.Update(msg)
	case focusSpeed:
		m.speedInput, cmd = m.speedInput.Update(msg)
	}
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.client.Dispose()
		return tea.Quit
	case key.Matches(msg, m.keys.Focus):
		return m.cycleFocus()
	}
	if m.focus != focusNone {
		return m.updateForm(msg)
	}

	c := m.client
	switch {
	case key.Matches(msg, m.keys.Start):
		if !c.Session().Running {
			c.StartClicked()
		}
	case key.Matches(msg, m.keys.Stop):
		if c.Session().Running {
			c.StopClicked()
		}
	case key.Matches(msg, m.keys.Refresh):
		c.RequestStatus()
		c.RequestProbs()
	case key.Matches(msg, m.keys.Answers):
		c.SetHideAnswers(!c.Session().HideAnswers)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Faster):
		c.AdjustSpeed(model.SpeedStep)
	case key.Matches(msg, m.keys.Slower):
		c.AdjustSpeed(-model.SpeedStep)
	case key.Matches(msg, m.keys.PitchUp):
		c.Tone().SetFrequency(c.Tone().Frequency() + pitchStep)
	case key.Matches(msg, m.keys.PitchDown):
		c.Tone().SetFrequency(c.Tone().Frequency() - pitchStep)
	case key.Matches(msg, m.keys.Press):
		c.KeyboardPress()
	case key.Matches(msg, m.keys.Layer):
		c.Keyboard().Toggle()
	case key.Matches(msg, m.keys.Up):
		c.Keyboard().Move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		c.Keyboard().Move(1, 0)
	case key.Matches(msg, m.keys.Left):
		c.Keyboard().Move(0, -1)
	case key.Matches(msg, m.keys.Right):
		c.Keyboard().Move(0, 1)
	case msg.Type == tea.KeySpace:
		c.Key(' ', false)
	case msg.Type == tea.KeyRunes && !msg.Alt:
		for _, r := range msg.Runes {
			c.Key(r, false)
		}
	}
	return nil
}

// cycleFocus moves focus none → profile → speed → none, committing the field
// being left.
func (m *Model) cycleFocus() tea.Cmd {
	switch m.focus {
	case focusNone:
		m.focus = focusProfile
		return m.profileInput.Focus()
	case focusProfile:
		m.commitForm()
		m.profileInput.Blur()
		m.focus = focusSpeed
		return m.speedInput.Focus()
	default:
		m.commitForm()
		m.speedInput.Blur()
		m.focus = focusNone
		return nil
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
		m.commitForm()
		m.profileInput.Blur()
		m.speedInput.Blur()
		m.focus = focusNone
		return nil
	}
	return m.updateInputs(msg)
}

// commitForm applies valid form values and restores invalid ones.
func (m *Model) commitForm() {
	profile, speed := m.client.FormValues()
	m.formErr = ""
	if p, err := strconv.Atoi(m.profileInput.Value()); err == nil && model.ValidProfile(p) {
		m.client.SetProfile(p)
	} else {
		m.formErr = fmt.Sprintf("profile must be between 0 and %d", model.MaxProfile)
		m.profileInput.SetValue(strconv.Itoa(profile))
	}
	if s, err := strconv.Atoi(m.speedInput.Value()); err == nil && model.ValidSpeed(s) {
		m.client.SetSpeed(s)
	} else {
		m.formErr = fmt.Sprintf("speed must be between %d and %d", model.MinSpeed, model.MaxSpeed)
		m.speedInput.SetValue(strconv.Itoa(speed))
	}
}

// syncForm shows values the device reported, unless the user is editing.
func (m *Model) syncForm() {
	if m.focus != focusNone {
		return
	}
	profile, speed := m.client.FormValues()
	m.profileInput.SetValue(strconv.Itoa(profile))
	m.speedInput.SetValue(strconv.Itoa(speed))
}

func (m *Model) syncAccuracy() {
	if pct, ok := m.client.Session().Accuracy(); ok {
		m.accuracy = strconv.Itoa(pct) + "%"
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 60
	}
	sections := []string{
		m.renderHeader(),
		m.renderForm(),
		m.renderCounters(),
		m.renderSent(),
	}
	cfg := m.client.Config()
	if cfg.Capabilities.Heatmap {
		if grid := heatmap.Render(m.client.Heatmap(), contentWidth); grid != "" {
			sections = append(sections, grid)
		}
	}
	if cfg.Capabilities.OnscreenKeyboard {
		sections = append(sections, m.renderKeyboard())
	}
	sections = append(sections, m.renderFeed())
	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n" + footer
	}
	bodyHeight := m.height - lipgloss.Height(footer)
	if bodyHeight < 1 {
		return body
	}
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Left, lipgloss.Top, body) + "\n" + footer
}

func (m *Model) renderHeader() string {
	c := m.client
	s := c.Session()
	var conn string
	switch c.Connection() {
	case transport.Connected:
		conn = correctStyle.Render("● connected")
	case transport.Connecting:
		conn = pendingStyle.Render("● connecting")
	default:
		conn = incorrectStyle.Render("● disconnected")
	}
	state := labelStyle.Render("stopped")
	if s.Running {
		elapsed := s.Elapsed(m.now()).Truncate(time.Second)
		state = valueStyle.Render(fmt.Sprintf("running %02d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60))
	}
	segments := []string{
		titleStyle.Render("morselive"),
		conn,
		field("Speed", valueStyle, fmt.Sprintf("%d WPM", s.Speed)),
		field("Profile", valueStyle, strconv.Itoa(s.Profile)),
		state,
	}
	if t := c.Tone(); t != nil {
		segments = append(segments, field("Tone", valueStyle, fmt.Sprintf("%.0f Hz", t.Frequency())))
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderForm() string {
	line := labelStyle.Render("Start profile") + " " + m.profileInput.View() +
		"  " + labelStyle.Render("speed") + " " + m.speedInput.View()
	if m.formErr != "" {
		line += "  " + incorrectStyle.Render(m.formErr)
	}
	return line
}

func (m *Model) renderCounters() string {
	s := m.client.Session()
	acc := valueStyle
	switch m.client.Flash() {
	case client.FlashCorrect:
		acc = correctStyle.Copy().Bold(true)
	case client.FlashWrong:
		acc = incorrectStyle.Copy().Bold(true)
	}
	return strings.Join([]string{
		field("Correct", correctStyle, strconv.Itoa(s.Correct)),
		field("Wrong", incorrectStyle, strconv.Itoa(s.Wrong)),
		field("Accuracy", acc, m.accuracy),
	}, "  ")
}

func (m *Model) renderSent() string {
	s := m.client.Session()
	sent := panelStyle.Render(sentStyle.Render(fmt.Sprintf("%-*s", session.SentCharsMax, s.SentChars.String())))
	if len(s.Speeds) < 2 {
		return sent
	}
	speeds := make([]float64, len(s.Speeds))
	for i, v := range s.Speeds {
		speeds[i] = float64(v)
	}
	line := trend.Sparkline(speeds, session.SentCharsMax)
	return lipgloss.JoinHorizontal(lipgloss.Center, sent, "  ", labelStyle.Render("WPM")+" "+pendingStyle.Render(line))
}

func (m *Model) renderKeyboard() string {
	kb := m.client.Keyboard()
	row, col := kb.Selected()
	lines := make([]string, 0, len(kb.Rows())+1)
	for i, keys := range kb.Rows() {
		cells := make([]string, len(keys))
		for j, r := range keys {
			style := keyStyle
			if i == row && j == col {
				style = selectedStyle
			}
			cells[j] = style.Render(string(r))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	toggle := keyStyle
	if kb.OnToggle() {
		toggle = selectedStyle
	}
	lines = append(lines, toggle.Render(kb.ToggleLabel()))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFeed() string {
	entries := m.client.Session().Results.Entries()
	if len(entries) > feedLines {
		entries = entries[:feedLines]
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Correct {
			lines = append(lines, correctStyle.Render(e.Text))
		} else {
			lines = append(lines, incorrectStyle.Render(e.Text))
		}
	}
	return strings.Join(lines, "\n")
}

func field(label string, style lipgloss.Style, value string) string {
	return labelStyle.Render(label) + " " + style.Render(value)
}

func (m *Model) renderFooter() string {
	return footerStyle.Render(m.help.View(m.keys))
}

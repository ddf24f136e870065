package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-threadmusic/clock"
	"go-threadmusic/sequencer"
	"go-threadmusic/theme"
	"go-threadmusic/widgets"
)

// refresh is how often worker status is polled
const refresh = 100 * time.Millisecond

const (
	defaultBarWidth = 30
	minBarWidth     = 10
)

type keyMap struct {
	Stop  key.Binding
	Drums key.Binding
	Help  key.Binding
}

func binding(b key.Binding) widgets.KeyBinding {
	return widgets.KeyBinding{Key: b.Help().Key, Desc: b.Help().Desc}
}

func defaultKeys() keyMap {
	return keyMap{
		Stop:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop")),
		Drums: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "drums")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// Model is the live run monitor. It never touches the timeline; it only
// polls worker status and can clear the running flag.
type Model struct {
	Manager *sequencer.Manager
	Theme   *theme.Theme

	keys      keyMap
	bars      []progress.Model
	statuses  []sequencer.Status
	started   time.Time
	elapsed   time.Duration
	showDrums bool
	showHelp  bool
	stopping  bool
	done      bool
	err       error
}

type tickMsg time.Time

// DoneMsg tells the monitor the run has returned
type DoneMsg struct {
	Err error
}

func NewModel(manager *sequencer.Manager, th *theme.Theme) Model {
	n := len(manager.Workers())
	bars := make([]progress.Model, n)
	for i := range bars {
		bars[i] = progress.New(
			progress.WithGradient(th.Hex(theme.RoleMuted), th.Hex(theme.RoleSuccess)),
			progress.WithWidth(defaultBarWidth),
			progress.WithoutPercentage(),
		)
	}
	return Model{
		Manager:   manager,
		Theme:     th,
		keys:      defaultKeys(),
		bars:      bars,
		statuses:  manager.Status(),
		started:   time.Now(),
		showDrums: true,
	}
}

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Stop):
			// the run still finalizes and writes; wait for DoneMsg
			m.stopping = true
			m.Manager.Stop()
		case key.Matches(msg, m.keys.Drums):
			m.showDrums = !m.showDrums
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		w := max(minBarWidth, min(defaultBarWidth, msg.Width-50))
		for i := range m.bars {
			m.bars[i].Width = w
		}

	case tickMsg:
		m.statuses = m.Manager.Status()
		m.elapsed = time.Time(msg).Sub(m.started)
		if m.done {
			return m, nil
		}
		return m, tick()

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.statuses = m.Manager.Status()
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) View() string {
	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	state := "RUN"
	switch {
	case m.done:
		state = "DONE"
	case m.stopping:
		state = "STOPPING"
	}

	aligned := m.Manager.AlignedClock()
	header := headerStyle.Render(fmt.Sprintf("go-threadmusic  %s  %d workers  %dbpm  %d phases  %s / %s",
		state,
		len(m.statuses),
		aligned.Params().Tempo,
		aligned.Phases(),
		m.elapsed.Truncate(100*time.Millisecond),
		m.Manager.RunLength().Truncate(100*time.Millisecond),
	))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for i, s := range m.statuses {
		out.WriteString(m.renderRow(i, s))
		out.WriteString("\n")
	}

	if m.showDrums && len(m.statuses) > 0 {
		out.WriteString("\n")
		out.WriteString(m.renderDrums(m.statuses[0]))
		out.WriteString("\n")
	}

	if m.err != nil {
		out.WriteString("\n")
		out.WriteString(warnStyle.Render("error: " + m.err.Error()))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	if m.showHelp {
		out.WriteString(m.renderHelp())
		out.WriteString("\n\n")
	}
	out.WriteString(dimStyle.Render(widgets.RenderKeyLine([]widgets.KeyBinding{
		binding(m.keys.Stop),
		binding(m.keys.Drums),
		binding(m.keys.Help),
	})))
	return out.String()
}

// renderHelp is the ? overlay: key bindings, then what the row and grid marks mean
func (m Model) renderHelp() string {
	th := m.Theme
	keys := widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Keys", Keys: []widgets.KeyBinding{
			{Key: "q, ctrl+c", Desc: "stop the run (the file is still written)"},
			binding(m.keys.Drums),
			binding(m.keys.Help),
		}},
	})

	legend := []string{
		"Workers",
		widgets.RenderLegendItem(th.Active(), th.Symbols.Scheduled, "scheduled", "got CPU since the last sample"),
		widgets.RenderLegendItem(th.Muted(), th.Symbols.Idle, "idle", "did not get CPU"),
		widgets.RenderLegendItem(th.Success(), th.Symbols.Done, "done", "worker returned"),
		"Drums",
		widgets.RenderLegendItem(th.Active(), th.Symbols.StepActive, "hit", "slot plays in this phase"),
		widgets.RenderLegendItem(th.Cursor(), th.Symbols.StepPlayhead, "playhead", "current slot"),
	}
	return keys + "\n" + strings.Join(legend, "\n")
}

func (m Model) renderRow(i int, s sequencer.Status) string {
	th := m.Theme
	name := lipgloss.NewStyle().Foreground(th.Track(i, len(m.statuses))).Width(12).Render(s.Name)
	role := lipgloss.NewStyle().Foreground(th.Muted()).Width(7).Render(s.Role)

	mark := th.Symbols.Idle
	markColor := th.Muted()
	switch {
	case s.Done:
		mark, markColor = th.Symbols.Done, th.Success()
	case s.Scheduled:
		mark, markColor = th.Symbols.Scheduled, th.Active()
	}
	sym := lipgloss.NewStyle().Foreground(markColor).Render(string(mark))

	pct := 0.0
	if s.TotalTicks > 0 {
		pct = min(1, float64(s.Tick)/float64(s.TotalTicks))
	}
	if s.Done {
		pct = 1
	}
	bar := m.bars[i].ViewAs(pct)

	phase := "-"
	if s.Phase >= 0 {
		phase = fmt.Sprintf("%d", s.Phase+1)
	}

	return fmt.Sprintf(" %s %s %s %s  phase %-2s  %6d ev  ratio %.4f",
		sym, name, role, bar, phase, s.Events, s.Ratio)
}

func (m Model) renderDrums(s sequencer.Status) string {
	th := m.Theme
	raw := m.Manager.RawClock()
	playhead := -1
	if s.Phase >= 0 && !s.Done {
		playhead = clock.StepPosition(s.Tick, raw.StepTicks())
	}

	sym := widgets.StepSymbols{
		Empty:    th.Symbols.StepEmpty,
		Active:   th.Symbols.StepActive,
		Playhead: th.Symbols.StepPlayhead,
		PlayHit:  th.Symbols.StepPlayHit,
	}
	colors := widgets.GridColors{
		Label:    th.FG(),
		Empty:    th.Muted(),
		Active:   th.Active(),
		Playhead: th.Cursor(),
	}
	return widgets.RenderDrumGrid(m.Manager.DrumPattern(max(0, s.Phase)), playhead, sym, colors)
}

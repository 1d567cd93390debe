package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/loomui/loom/profile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	modeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	hitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	missStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	skipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	replayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type viewState int

const (
	stateFrameList viewState = iota
	stateFrameDetail
)

type inspectModel struct {
	filename string
	frames   []*profile.FrameRecord
	selected int
	offset   int
	height   int
	width    int
	state    viewState
	detail   viewport.Model
	ready    bool
}

func newInspectModel(filename string, frames []*profile.FrameRecord) *inspectModel {
	return &inspectModel{
		filename: filename,
		frames:   frames,
		height:   24,
		width:    80,
	}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detail = viewport.New(msg.Width, msg.Height-4)
		m.ready = true
		if m.state == stateFrameDetail {
			m.detail.SetContent(m.frameDetail(m.frames[m.selected]))
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateFrameList && m.selected > 0 {
				m.selected--
				m.clampOffset()
			}

		case "down", "j":
			if m.state == stateFrameList && m.selected < len(m.frames)-1 {
				m.selected++
				m.clampOffset()
			}

		case "enter":
			if m.state == stateFrameList && m.ready {
				m.detail.SetContent(m.frameDetail(m.frames[m.selected]))
				m.detail.GotoTop()
				m.state = stateFrameDetail
			}

		case "esc":
			if m.state == stateFrameDetail {
				m.state = stateFrameList
			}
		}
	}

	if m.state == stateFrameDetail {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	return m, nil
}

// clampOffset keeps the selected row inside the visible window.
func (m *inspectModel) clampOffset() {
	visible := m.height - 5
	if visible < 1 {
		visible = 1
	}
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visible {
		m.offset = m.selected - visible + 1
	}
}

func (m *inspectModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Loom Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateFrameList:
		visible := m.height - 5
		if visible < 1 {
			visible = len(m.frames)
		}
		end := m.offset + visible
		if end > len(m.frames) {
			end = len(m.frames)
		}
		for i := m.offset; i < end; i++ {
			line := m.frameLine(m.frames[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter detail • q quit"))

	case stateFrameDetail:
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *inspectModel) frameLine(fr *profile.FrameRecord) string {
	c := fr.Counters
	var hits uint64
	for _, class := range profile.Classifications() {
		if class.Hit() {
			hits += c.Lookups[class.String()]
		}
	}
	hitRate := "-"
	if c.MeasureCalls > 0 {
		hitRate = fmt.Sprintf("%3.0f%%", 100*float64(hits)/float64(c.MeasureCalls))
	}
	return fmt.Sprintf("frame %-6d %s  dirty %-4d measures %-5d hit %s  %v",
		fr.Seq,
		modeStyle.Render(fmt.Sprintf("%-20s", fr.Mode)),
		c.DirtyTotal, c.MeasureCalls, hitRate,
		fr.Elapsed.Round(time.Microsecond))
}

func (m *inspectModel) frameDetail(fr *profile.FrameRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frame %d  %s  %v\n", fr.Seq,
		modeStyle.Render(fr.Mode), fr.Elapsed.Round(time.Microsecond))
	if len(fr.Reasons) > 0 {
		fmt.Fprintf(&b, "Reasons: %s\n", strings.Join(fr.Reasons, ", "))
	}
	fmt.Fprintf(&b, "Dirty %d (params %d, structure %d)  Stores %d  Torn down %d\n",
		fr.Counters.DirtyTotal, fr.Counters.DirtyParams, fr.Counters.DirtyStructure,
		fr.Counters.Stores, fr.Counters.TornDown)

	if len(fr.Counters.Lookups) > 0 {
		b.WriteString("\nLookups:\n")
		for _, class := range profile.Classifications() {
			n := fr.Counters.Lookups[class.String()]
			if n == 0 {
				continue
			}
			style := missStyle
			if class.Hit() {
				style = hitStyle
			}
			fmt.Fprintf(&b, "  %s %d\n", style.Render(fmt.Sprintf("%-24s", class.String())), n)
		}
	}

	if fr.Root == nil {
		b.WriteString("\nNo node tree recorded (skipped frame).\n")
		return b.String()
	}

	b.WriteString("\nNode tree:\n")
	m.writeNode(&b, fr.Root, 0)
	return b.String()
}

func (m *inspectModel) writeNode(b *strings.Builder, n *profile.NodeRecord, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "%016x", n.Type)
	if n.Key != "" {
		fmt.Fprintf(b, "[%s]", n.Key)
	}
	if n.Logic > 0 {
		fmt.Fprintf(b, "#%d", n.Logic)
	}
	fmt.Fprintf(b, "  %gx%g", n.Width, n.Height)
	if n.Class != "" {
		style := missStyle
		if strings.HasPrefix(n.Class, "hit") {
			style = hitStyle
		}
		b.WriteString("  " + style.Render(n.Class))
	}
	switch {
	case n.Skipped:
		b.WriteString("  " + skipStyle.Render("skipped"))
	case n.Replayed:
		b.WriteString("  " + replayStyle.Render("replayed"))
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		m.writeNode(b, c, depth+1)
	}
}

func runInteractive(filename string, frames []*profile.FrameRecord) error {
	p := tea.NewProgram(newInspectModel(filename, frames), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

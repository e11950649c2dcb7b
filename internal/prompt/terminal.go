package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taigrr/joplin-cli/internal/search"
)

const maxVisible = 12

const (
	pickedMarker   = "[x] "
	unpickedMarker = "[ ] "
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	matchStyle  = lipgloss.NewStyle().Underline(true)
	descStyle   = lipgloss.NewStyle().Faint(true)
	helpStyle   = lipgloss.NewStyle().Faint(true).Italic(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Accept key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "toggle"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "accept"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

// Terminal runs prompts as small bubbletea programs.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

// NewTerminal creates a Terminal. Nil streams default to stdin and stderr.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Terminal{in: in, out: out}
}

func (t *Terminal) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	return p.Run()
}

func (t *Terminal) Input(ctx context.Context, opts InputOptions) (string, error) {
	final, err := t.run(ctx, newInputModel(opts))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", nil
	}
	return strings.TrimSpace(m.input.Value()), nil
}

func (t *Terminal) Pick(ctx context.Context, items []Item, opts PickOptions) ([]Item, bool, error) {
	if len(items) == 0 {
		return nil, false, nil
	}
	final, err := t.run(ctx, newPickModel(items, opts))
	if err != nil {
		return nil, false, err
	}
	m := final.(pickModel)
	if m.cancelled || !m.done {
		return nil, false, nil
	}
	return m.result(), true, nil
}

func (t *Terminal) QuickPick(ctx context.Context, opts QuickPickOptions) (Item, bool, error) {
	final, err := t.run(ctx, newQuickPickModel(ctx, opts))
	if err != nil {
		return Item{}, false, err
	}
	m := final.(quickPickModel)
	if m.cancelled || !m.done {
		return Item{}, false, nil
	}
	return m.committed, true, nil
}

func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.out, infoStyle.Render(msg))
}

func (t *Terminal) Error(msg string) {
	fmt.Fprintln(t.out, errorStyle.Render(msg))
}

// input box

type inputModel struct {
	prompt    string
	input     textinput.Model
	cancelled bool
}

func newInputModel(opts InputOptions) inputModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.SetValue(opts.Value)
	ti.CursorEnd()
	ti.Focus()
	return inputModel{prompt: opts.Prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(km, keys.Accept):
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	var b strings.Builder
	if m.prompt != "" {
		b.WriteString(titleStyle.Render(m.prompt) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	b.WriteString(helpStyle.Render("enter accept • esc cancel") + "\n")
	return b.String()
}

// pick list

type pickModel struct {
	title     string
	many      bool
	items     []Item
	picked    []bool
	filter    textinput.Model
	matches   []search.Match
	cursor    int
	done      bool
	cancelled bool
}

func newPickModel(items []Item, opts PickOptions) pickModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	if ti.Placeholder == "" {
		ti.Placeholder = "type to filter"
	}
	ti.Focus()

	m := pickModel{
		title:  opts.Title,
		many:   opts.CanPickMany,
		items:  items,
		picked: make([]bool, len(items)),
		filter: ti,
	}
	for i, it := range items {
		m.picked[i] = it.Picked && opts.CanPickMany
	}
	m.refilter()
	return m
}

func candidates(items []Item) []search.Candidate {
	out := make([]search.Candidate, len(items))
	for i, it := range items {
		out[i] = search.Candidate{ID: it.Value, Label: it.Label, Detail: it.Description}
	}
	return out
}

func (m *pickModel) refilter() {
	m.matches = search.Rank(m.filter.Value(), candidates(m.items))
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
}

func (m pickModel) result() []Item {
	if !m.many {
		if len(m.matches) == 0 {
			return nil
		}
		return []Item{m.items[m.matches[m.cursor].Index]}
	}
	var out []Item
	for i, it := range m.items {
		if m.picked[i] {
			it.Picked = true
			out = append(out, it)
		}
	}
	return out
}

func (m pickModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(km, keys.Accept):
			if !m.many && len(m.matches) == 0 {
				return m, nil
			}
			m.done = true
			return m, tea.Quit
		case key.Matches(km, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(km, keys.Down):
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(km, keys.Toggle):
			if m.many && len(m.matches) > 0 {
				idx := m.matches[m.cursor].Index
				m.picked[idx] = !m.picked[idx]
			}
			return m, nil
		}
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

func (m pickModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title) + "\n")
	}
	b.WriteString(m.filter.View() + "\n")
	renderMatches(&b, m.matches, m.cursor, func(idx int) string {
		if !m.many {
			return ""
		}
		if m.picked[idx] {
			return pickedMarker
		}
		return unpickedMarker
	})
	help := "↑/↓ move • enter accept • esc cancel"
	if m.many {
		help = "↑/↓ move • tab toggle • enter accept • esc cancel"
	}
	b.WriteString(helpStyle.Render(help) + "\n")
	return b.String()
}

func renderMatches(b *strings.Builder, matches []search.Match, cursor int, marker func(int) string) {
	if len(matches) == 0 {
		b.WriteString(descStyle.Render("  no matches") + "\n")
		return
	}
	start := 0
	if cursor >= maxVisible {
		start = cursor - maxVisible + 1
	}
	end := min(start+maxVisible, len(matches))
	for i := start; i < end; i++ {
		m := matches[i]
		prefix := "  "
		if i == cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := prefix + marker(m.Index) + highlight(m.Label, m.Positions)
		if m.Detail != "" {
			line += " " + descStyle.Render(m.Detail)
		}
		b.WriteString(line + "\n")
	}
}

func highlight(label string, positions []int) string {
	if len(positions) == 0 {
		return label
	}
	hit := make(map[int]bool, len(positions))
	for _, p := range positions {
		hit[p] = true
	}
	var b strings.Builder
	for i, r := range label {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quick pick

type (
	debounceMsg struct {
		seq   int
		query string
	}

	loadedMsg struct {
		seq   int
		items []Item
		err   error
	}
)

type quickPickModel struct {
	ctx       context.Context
	title     string
	load      LoadFunc
	debounce  time.Duration
	input     textinput.Model
	seq       int
	loading   bool
	items     []Item
	err       error
	cursor    int
	committed Item
	done      bool
	cancelled bool
}

func newQuickPickModel(ctx context.Context, opts QuickPickOptions) quickPickModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.Focus()
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return quickPickModel{
		ctx:      ctx,
		title:    opts.Title,
		load:     opts.Load,
		debounce: debounce,
		input:    ti,
	}
}

func (m quickPickModel) loadCmd(seq int, query string) tea.Cmd {
	if m.load == nil {
		return nil
	}
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		items, err := load(ctx, query)
		return loadedMsg{seq: seq, items: items, err: err}
	}
}

func (m quickPickModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadCmd(0, ""))
}

func (m quickPickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = true
		return m, m.loadCmd(msg.seq, msg.query)

	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.items, m.err = msg.items, msg.err
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, keys.Accept):
			if len(m.items) == 0 {
				return m, nil
			}
			m.committed = m.items[m.cursor]
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != prev {
		m.seq++
		seq := m.seq
		tick := tea.Tick(m.debounce, func(time.Time) tea.Msg {
			return debounceMsg{seq: seq, query: value}
		})
		return m, tea.Batch(cmd, tick)
	}
	return m, cmd
}

func (m quickPickModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title) + "\n")
	}
	b.WriteString(m.input.View() + "\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("  "+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString(descStyle.Render("  searching...") + "\n")
	default:
		matches := make([]search.Match, len(m.items))
		for i, it := range m.items {
			matches[i] = search.Match{
				Candidate: search.Candidate{ID: it.Value, Label: it.Label, Detail: it.Description},
				Index:     i,
			}
		}
		renderMatches(&b, matches, m.cursor, func(int) string { return "" })
	}
	b.WriteString(helpStyle.Render("↑/↓ move • enter open • esc cancel") + "\n")
	return b.String()
}

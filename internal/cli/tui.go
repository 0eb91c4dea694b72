package cli

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbar/pkg/chart"
	"github.com/matzehuels/stackbar/pkg/pipeline"
	"github.com/matzehuels/stackbar/pkg/render/term"
	"github.com/matzehuels/stackbar/pkg/widget"
)

// pxPerCell converts terminal columns to the pixel width the layout is
// computed for, so tick density matches a browser of similar size.
const pxPerCell = 8

var (
	tooltipTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ansiWhite)
	tooltipStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ansiDim).
				Padding(0, 1)
)

// previewCommand creates the interactive terminal preview.
func (c *CLI) previewCommand() *cobra.Command {
	var palette string
	opts := pipeline.Options{}
	setCLIDefaults(&opts)

	cmd := &cobra.Command{
		Use:   "preview [records]",
		Short: "Explore a chart interactively in the terminal",
		Long: `Explore a chart interactively in the terminal.

Move the cursor over rows and segments to see their tooltips. Enter selects
the focused segment or row label and prints the selection; r selects the
whole row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Palette = parsePalette(palette)
			return c.runPreview(cmd.Context(), args[0], opts)
		},
	}
	addLayoutFlags(cmd, &opts, &palette)
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, opts pipeline.Options) error {
	records, err := loadRecords(input, &opts)
	if err != nil {
		return err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	m := newPreviewModel(input)
	w := widget.New(records, widget.Options{
		Chart:    opts.ChartOptions(),
		Renderer: widget.RendererFunc(m.draw),
		Logger:   c.Logger,
		Source:   "preview",
	})
	defer w.Close()
	m.widget = w

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	m.send = p.Send
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// Model
// =============================================================================

type previewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Row    key.Binding
	Quit   key.Binding
}

func (k previewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Left, k.Select, k.Row, k.Quit}
}

func (k previewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var previewKeys = previewKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "row")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "segment")),
	Right:  key.NewBinding(key.WithKeys("right", "l")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎", "select")),
	Row:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "select row")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// layoutMsg carries the result of a widget render pass into the program.
type layoutMsg struct{ layout *chart.Layout }

// previewModel keeps only UI state. Layouts arrive from the widget, which
// owns settle and resize scheduling.
type previewModel struct {
	title  string
	widget *widget.Widget
	send   func(tea.Msg)
	help   help.Model

	layout *chart.Layout
	cursor term.Cursor
	cols   int
	last   *chart.Selection
	err    error
}

func newPreviewModel(title string) *previewModel {
	return &previewModel{
		title:  title,
		help:   help.New(),
		cursor: term.Cursor{Series: -1},
	}
}

// draw is the widget renderer. It runs on the widget's timer goroutine.
func (m *previewModel) draw(l *chart.Layout) error {
	if m.send != nil {
		m.send(layoutMsg{layout: l})
	}
	return nil
}

func (m *previewModel) Init() tea.Cmd {
	return nil
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.help.Width = msg.Width
		width := float64(max(msg.Width, 20) * pxPerCell)
		if m.widget.Width() == 0 {
			m.widget.Mount(width)
		} else {
			m.widget.Resize(width)
		}

	case layoutMsg:
		m.layout = msg.layout
		m.clampCursor()

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *previewModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, previewKeys.Quit) {
		return tea.Quit
	}
	if m.layout == nil {
		return nil
	}

	order := term.ScreenOrder(m.layout)
	switch {
	case key.Matches(msg, previewKeys.Up):
		m.cursor.Row = order[max(slices.Index(order, m.cursor.Row)-1, 0)]
	case key.Matches(msg, previewKeys.Down):
		m.cursor.Row = order[min(slices.Index(order, m.cursor.Row)+1, len(order)-1)]
	case key.Matches(msg, previewKeys.Left):
		m.cursor.Series = max(m.cursor.Series-1, -1)
	case key.Matches(msg, previewKeys.Right):
		m.cursor.Series = min(m.cursor.Series+1, len(m.layout.Series)-1)
	case key.Matches(msg, previewKeys.Row):
		return m.selected(m.widget.ClickRow(m.cursor.Row))
	case key.Matches(msg, previewKeys.Select):
		if m.cursor.Series < 0 {
			return m.selected(m.widget.ClickRow(m.cursor.Row))
		}
		return m.selected(m.widget.ClickSegment(m.cursor.Row, m.layout.Series[m.cursor.Series].Key))
	}
	return nil
}

// selected records a selection and prints it above the chart.
func (m *previewModel) selected(sel chart.Selection, ok bool) tea.Cmd {
	if !ok {
		return nil
	}
	m.last = &sel
	data, err := json.Marshal(sel)
	if err != nil {
		m.err = err
		return nil
	}
	return tea.Println(string(data))
}

func (m *previewModel) clampCursor() {
	if len(m.layout.Rows) == 0 {
		m.cursor = term.Cursor{Series: -1}
		return
	}
	if m.cursor.Row >= len(m.layout.Rows) || m.cursor.Row < 0 {
		m.cursor.Row = term.ScreenOrder(m.layout)[0]
	}
	if m.cursor.Series >= len(m.layout.Series) {
		m.cursor.Series = len(m.layout.Series) - 1
	}
}

// hoverKey is the category under the cursor, or "" on a row label.
func (m *previewModel) hoverKey() string {
	if m.cursor.Series < 0 || m.layout == nil {
		return ""
	}
	return m.layout.Series[m.cursor.Series].Key
}

func (m *previewModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("stackbar") + " " + StyleDim.Render(m.title))
	b.WriteString("\n\n")

	if m.layout == nil {
		if err := m.widget.Err(); err != nil {
			b.WriteString(statusFail.line(err.Error()) + "\n")
		} else {
			b.WriteString(StyleDim.Render("Laying out...") + "\n")
		}
		return b.String()
	}

	labelWidth := term.DefaultLabelWidth
	cursor := m.cursor
	b.WriteString(term.Render(m.layout, term.Options{
		Columns:    max(m.cols-labelWidth-12, 10),
		LabelWidth: labelWidth,
		Cursor:     &cursor,
		Legend:     true,
	}))
	b.WriteByte('\n')

	if tip, ok := m.widget.Hover(m.cursor.Row, m.hoverKey()); ok {
		b.WriteString(tooltipStyle.Render(tooltipTitleStyle.Render(tip.Title) + "\n" + tip.Label + ": " + tip.Value))
	} else {
		b.WriteString(tooltipStyle.Render(StyleDim.Render("no " + m.hoverKey() + " entry")))
	}
	b.WriteByte('\n')

	if m.last != nil {
		data, _ := json.Marshal(m.last)
		b.WriteString(StyleDim.Render("selected ") + StyleValue.Render(string(data)) + "\n")
	}
	if m.err != nil {
		b.WriteString(statusFail.line(m.err.Error()) + "\n")
	}
	b.WriteString(m.help.View(previewKeys))
	return b.String()
}

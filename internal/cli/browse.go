package cli

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kafei-ai/treeflow/internal/config"
	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
	"github.com/kafei-ai/treeflow/pkg/source"
)

// browseCommand creates the interactive tree browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags      layoutFlags
		watch      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "browse [paths-file]",
		Short: "Browse a path tree interactively",
		Long: `Browse a path tree interactively.

Each toggle re-runs the full layout, exactly as a web canvas would. With
--watch the file is re-read whenever it changes and the tree is rebuilt with
every node collapsed again.

Logs go to the rotating log file configured under [log] so they never draw
over the terminal UI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], &flags, watch, configPath)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload when the file changes")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./"+config.FileName+")")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, input string, flags *layoutFlags, watch bool, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	raw, err := flags.readPaths(input)
	if err != nil {
		return fmt.Errorf("load paths %s: %w", input, err)
	}

	fl, err := newFileLogger(cfg.Log, c.Logger.GetLevel())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer fl.Close()

	m, err := newBrowseModel(input, raw, flags.opts, fl.Logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if watch {
		go func() {
			err := source.Watch(ctx, input, source.WatchOptions{
				OnChange: func(doc source.Document) { p.Send(pathsMsg{paths: doc.TreePaths()}) },
				OnError:  func(err error) { p.Send(watchErrMsg{err: err}) },
			})
			if err != nil {
				p.Send(watchErrMsg{err: err})
			}
		}()
	}

	fl.Info("browse started", "source", input, "paths", len(raw), "watch", watch)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	printInfo("Log file: %s", fl.path)
	return nil
}

// =============================================================================
// Messages
// =============================================================================

// pathsMsg carries a reloaded path list from the watcher.
type pathsMsg struct{ paths []string }

// watchErrMsg carries a watcher or decode failure.
type watchErrMsg struct{ err error }

// =============================================================================
// Key Bindings
// =============================================================================

type browseKeys struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Expand   key.Binding
	Collapse key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultBrowseKeys() browseKeys {
	return browseKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("⏎/space", "toggle")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "open")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "close/parent")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Toggle, k.Expand, k.Collapse},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// chromeLines is the number of lines around the tree: title, blank line,
// status and help.
const chromeLines = 5

// browseModel drives an Orchestrator from key presses. The Orchestrator is
// only touched from Update, which bubbletea runs on a single goroutine.
type browseModel struct {
	orch   *pipeline.Orchestrator
	logger *log.Logger
	source string

	rows   []graph.Node // visible nodes in display order
	cursor int
	offset int
	height int
	width  int

	keys   browseKeys
	help   help.Model
	status string
	err    error
}

func newBrowseModel(sourceName string, raw []string, opts pipeline.Options, logger *log.Logger) (*browseModel, error) {
	opts.Logger = logger
	m := &browseModel{
		logger: logger,
		source: sourceName,
		height: 20,
		keys:   defaultBrowseKeys(),
		help:   help.New(),
	}
	m.orch = pipeline.New(opts, pipeline.WithLogger(logger))
	if _, err := m.orch.PathsReplaced(raw); err != nil {
		return nil, err
	}
	if opts.ExpandAll || opts.ExpandDepth > 0 || len(opts.Expanded) > 0 {
		m.orch.SetExpansion(opts.Seed(m.orch.Tree()))
	}
	m.setGraph(m.orch.Graph())
	return m, nil
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.height = max(msg.Height-chromeLines, 3)
		m.scroll()

	case pathsMsg:
		g, err := m.orch.PathsReplaced(msg.paths)
		if err != nil {
			m.err = err
			m.logger.Warn("reload rejected", "err", err)
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("reloaded %d paths", len(m.orch.Paths()))
		m.logger.Info("reloaded", "paths", len(m.orch.Paths()))
		m.setGraph(g)

	case watchErrMsg:
		m.err = msg.err
		m.logger.Warn("watch", "err", msg.err)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *browseModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.rows))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.rows))
	case key.Matches(msg, m.keys.Toggle):
		if n, ok := m.current(); ok && n.ChildCount > 0 {
			m.toggle(n.ID)
		}
	case key.Matches(msg, m.keys.Expand):
		if n, ok := m.current(); ok && n.HasHiddenChildren {
			m.toggle(n.ID)
		}
	case key.Matches(msg, m.keys.Collapse):
		n, ok := m.current()
		switch {
		case !ok:
		case isOpen(n):
			m.toggle(n.ID)
		default:
			m.selectID(parentID(n.ID))
		}
	}
	return nil
}

func (m *browseModel) toggle(id string) {
	m.status = ""
	m.setGraph(m.orch.Toggle(id))
	m.logger.Debug("toggle", "path", id, "open", m.orch.Expansion().Has(id), "visible", len(m.rows))
}

// setGraph installs a new graph, keeping the cursor on the same node when it
// is still visible.
func (m *browseModel) setGraph(g graph.Graph) {
	var selected string
	if n, ok := m.current(); ok {
		selected = n.ID
	}
	m.rows = g.Nodes
	if !m.selectID(selected) {
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		m.scroll()
	}
}

func (m *browseModel) selectID(id string) bool {
	for i, n := range m.rows {
		if n.ID == id {
			m.cursor = i
			m.scroll()
			return true
		}
	}
	return false
}

func (m *browseModel) current() (graph.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return graph.Node{}, false
	}
	return m.rows[m.cursor], true
}

func (m *browseModel) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.scroll()
}

// scroll keeps the cursor inside the visible window.
func (m *browseModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-m.height), 0)
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(appName) + StyleDim.Render(" · "+m.source))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(StyleDim.Render("  (no paths)") + "\n")
	}
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *browseModel) renderRow(n graph.Node, selected bool) string {
	indent := styleGuide.Render(strings.Repeat("│ ", n.Depth))

	icon, style := iconLeaf, styleLeaf
	switch {
	case n.HasHiddenChildren:
		icon, style = iconClosed, styleFolder
	case n.ChildCount > 0:
		icon, style = iconOpen, styleFolder
	}

	cursor := "  "
	if selected {
		cursor = styleCursor.Render("› ")
		style = styleCursor
	}

	line := cursor + indent + style.Render(icon+" "+n.Label)
	if n.HasHiddenChildren {
		line += " " + styleHidden.Render(fmt.Sprintf("+%d", n.ChildCount))
	}
	if selected {
		line += StyleDim.Render(fmt.Sprintf("  x=%.0f y=%.0f", n.X, n.Y))
	}
	return line
}

func (m *browseModel) statusLine() string {
	if m.err != nil {
		return styleProblem.Render(iconError + " " + m.err.Error())
	}
	g := m.orch.Graph()
	line := statsOf(g, false).String()
	if line == "" {
		line = "empty tree"
	}
	if m.status != "" {
		line += " · " + m.status
	}
	return styleStatus.Render(line)
}

// isOpen reports whether n shows its children.
func isOpen(n graph.Node) bool { return n.ChildCount > 0 && !n.HasHiddenChildren }

// parentID returns the path of n's parent, or "" for a root.
func parentID(id string) string {
	dir := path.Dir(id)
	if dir == "." {
		return ""
	}
	return dir
}

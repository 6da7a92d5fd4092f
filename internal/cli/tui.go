package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/config"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/render/term"
	"github.com/matzehuels/stacktile/pkg/scenario"
	"github.com/matzehuels/stacktile/pkg/wm"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(colorGray)
	errorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// tuiCommand creates the tui command, an interactive layout demo.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Drive a layout interactively",
		Long: `Drive a layout interactively in the terminal.

Key bindings come from the [keys] table of the config file; the file is
watched and reloaded while the program runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			// Logging to the terminal would corrupt the alternate screen.
			m := wm.New(cfg.Width, cfg.Height, wm.WithPadding(cfg.Padding), wm.WithInter(cfg.Inter))

			p := tea.NewProgram(newLayoutModel(m, cfg.Keys), tea.WithAltScreen(), tea.WithContext(ctx))

			if path, err := c.resolvedConfigPath(); err == nil {
				go func() {
					err := config.Watch(ctx, path, func(cfg config.Config, err error) {
						p.Send(configMsg{cfg: cfg, err: err})
					})
					if err != nil {
						c.Logger.Debug("config watch disabled", "err", err)
					}
				}()
			}

			_, err = p.Run()
			return err
		},
	}
}

// configMsg carries a reloaded configuration into the program.
type configMsg struct {
	cfg config.Config
	err error
}

// layoutModel is the bubbletea model driving a manager from key presses.
type layoutModel struct {
	m       *wm.Manager
	actions map[string]string // key -> action
	width   int
	height  int
	opened  int
	status  string
	err     error
}

func newLayoutModel(m *wm.Manager, keys map[string]string) layoutModel {
	return layoutModel{m: m, actions: invertKeys(keys), width: 80, height: 24}
}

func invertKeys(keys map[string]string) map[string]string {
	out := make(map[string]string, len(keys))
	for action, key := range keys {
		out[key] = action
	}
	return out
}

func (lm layoutModel) Init() tea.Cmd {
	return nil
}

func (lm layoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return lm, tea.Quit
		}
		action, ok := lm.actions[msg.String()]
		if !ok {
			return lm, nil
		}
		if action == "quit" {
			return lm, tea.Quit
		}
		lm.err = lm.perform(action)
		lm.status = action
	case tea.WindowSizeMsg:
		lm.width, lm.height = msg.Width, msg.Height
	case configMsg:
		if msg.err != nil {
			lm.err = msg.err
			return lm, nil
		}
		lm.actions = invertKeys(msg.cfg.Keys)
		lm.err = nil
		lm.status = "config reloaded"
	}
	return lm, nil
}

// perform maps a key action onto the manager.
func (lm *layoutModel) perform(action string) error {
	m := lm.m
	switch action {
	case "open":
		lm.opened++
		_, err := m.OpenWindow(fmt.Sprintf("win %d", lm.opened), "")
		return err
	case "slot":
		m.OpenSlot()
	case "close":
		m.Close()
	case "left", "down", "up", "right":
		dir, _ := layout.ParseDirection(action)
		m.Navigate(dir)
	case "parent":
		m.NavigateParent()
	case "child":
		m.NavigateChild()
	case "cursor-left", "cursor-down", "cursor-up", "cursor-right":
		dir, _ := layout.ParseDirection(strings.TrimPrefix(action, "cursor-"))
		m.NavigateCursor(dir)
	case "cursor-clear":
		m.ClearCursor()
	case "move":
		m.MovePointToCursor()
	case "grow":
		m.Grow(scenario.DefaultDelta)
	case "shrink":
		m.Shrink(scenario.DefaultDelta)
	case "equalize":
		m.Equalize()
	}
	return nil
}

func (lm layoutModel) View() string {
	var b strings.Builder
	b.WriteString(term.Render(lm.m, term.Options{Width: lm.width, Height: max(lm.height-1, 3)}))
	b.WriteString("\n")

	line := "point " + lm.m.Point().String()
	if cur, ok := lm.m.Cursor(); ok {
		line += "  cursor " + cur.String()
	}
	if lm.status != "" {
		line += "  · " + lm.status
	}
	if lm.err != nil {
		b.WriteString(errorStyle.Render(lm.err.Error()))
	} else {
		b.WriteString(statusStyle.Render(line))
	}
	return b.String()
}

package wm

import (
	"context"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/observability"
)

// Tree is the layout type a Manager drives.
type Tree = layout.Layout[*Client, Frame]

// Action is one engine action as seen by the manager.
type Action = layout.Action[*Client, Frame]

// Manager holds a layout plus the point, the cursor and the host's
// geometry table.
type Manager struct {
	mu sync.Mutex

	tree   *Tree
	frames *frames
	logger *log.Logger

	point  layout.ItemIdx
	cursor *layout.MoveCursor

	geometry map[layout.ItemIdx]layout.WindowBounds
	clients  map[string]int
	opened   int
	applied  int
}

// Option configures a Manager.
type Option func(*config)

type config struct {
	padding int
	inter   int
	logger  *log.Logger
}

// WithPadding sets the padding of every container.
func WithPadding(px int) Option { return func(c *config) { c.padding = px } }

// WithInter sets the gap between siblings.
func WithInter(px int) Option { return func(c *config) { c.inter = px } }

// WithLogger sets the logger used by the manager and its layout.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

func buildConfig(opts []Option) config {
	c := config{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return c
}

func (c config) layoutOptions() []layout.Option {
	return []layout.Option{
		layout.WithPadding(c.padding),
		layout.WithInter(c.inter),
		layout.WithLogger(c.logger),
	}
}

// New returns a manager for a screen of the given size. The point starts
// on the empty root.
func New(width, height int, opts ...Option) *Manager {
	cfg := buildConfig(opts)
	f := &frames{}
	m := &Manager{
		tree:     layout.New[*Client, Frame](layout.Bounds(0, 0, width, height), f, cfg.layoutOptions()...),
		frames:   f,
		logger:   cfg.logger,
		point:    layout.Root,
		geometry: make(map[layout.ItemIdx]layout.WindowBounds),
		clients:  make(map[string]int),
	}
	m.geometry[layout.Root] = m.tree.RootBounds()
	return m
}

// apply records the side effects of actions. It must be called with mu
// held.
func (m *Manager) apply(op string, start time.Time, actions []Action) int {
	for _, a := range actions {
		switch a.Kind {
		case layout.NewBounds:
			m.geometry[a.Item] = a.Bounds
		case layout.ItemDestroyed:
			delete(m.geometry, a.Item)
			if a.Item.IsWindow() && a.WindowData != nil {
				delete(m.clients, a.WindowData.ID)
			}
		case layout.ItemHidden:
			delete(m.geometry, a.Item)
		}
	}
	if m.cursor != nil && !m.tree.IsCursorValid(*m.cursor) {
		m.logger.Debug("cursor invalidated", "cursor", *m.cursor)
		m.cursor = nil
	}
	if !m.tree.Exists(m.point) {
		m.point = layout.Root
	}
	if _, ok := m.geometry[layout.Root]; !ok {
		m.geometry[layout.Root] = m.tree.RootBounds()
	}
	m.applied += len(actions)

	d := time.Since(start)
	m.logger.Debug(op, "actions", len(actions), "point", m.point, "duration", d)
	observability.Layout().OnMutation(context.Background(), op, len(actions), d)
	return len(actions)
}

// Point returns the focused item.
func (m *Manager) Point() layout.ItemIdx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.point
}

// Cursor returns the pending insertion point, if any.
func (m *Manager) Cursor() (layout.MoveCursor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursor == nil {
		return layout.MoveCursor{}, false
	}
	return *m.cursor, true
}

// Geometry returns a copy of the bounds last reported for every item.
func (m *Manager) Geometry() map[layout.ItemIdx]layout.WindowBounds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.geometry)
}

// ActionCount returns the number of actions applied since the manager was
// created.
func (m *Manager) ActionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied
}

// Client returns the client with the given ID and its window index.
func (m *Manager) Client(id string) (*Client, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.clients[id]
	if !ok {
		return nil, 0, false
	}
	return m.tree.WindowData(idx), idx, true
}

// View calls fn with the layout while holding the manager's lock. fn must
// not mutate the layout or call back into the manager.
func (m *Manager) View(fn func(t *Tree, point layout.ItemIdx, cursor *layout.MoveCursor)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.tree, m.point, m.cursor)
}

// Validate checks the layout's structural invariants.
func (m *Manager) Validate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Validate()
}

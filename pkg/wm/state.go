package wm

import (
	"encoding/json"
	"fmt"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// State is the serialisable form of a Manager.
type State struct {
	Layout layout.Snapshot[*Client, Frame] `json:"layout"`
	Point  layout.ItemIdx                  `json:"point"`
	Cursor *layout.MoveCursor              `json:"cursor,omitempty"`
}

// Snapshot captures the manager's state. Clients are copied.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{Layout: m.tree.Snapshot(), Point: m.point}
	for _, w := range s.Layout.Windows {
		if w != nil && w.Data != nil {
			c := *w.Data
			w.Data = &c
		}
	}
	if m.cursor != nil {
		c := *m.cursor
		s.Cursor = &c
	}
	return s
}

// MarshalState returns the manager's state as indented JSON.
func (m *Manager) MarshalState() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// UnmarshalState decodes a document written by MarshalState.
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, serrors.Wrap(serrors.ErrCodeInvalidFormat, err, "decode state")
	}
	return s, nil
}

// Restore rebuilds a manager from s. Padding and inter come from the
// snapshot; opts may set a logger.
func Restore(s State, opts ...Option) (*Manager, error) {
	cfg := buildConfig(opts)

	f := &frames{}
	for _, c := range s.Layout.Containers {
		if c != nil {
			f.next = max(f.next, c.Data.Serial)
		}
	}
	tree, err := layout.Restore(s.Layout, f, layout.WithLogger(cfg.logger))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeInvalidFormat, err, "restore manager")
	}
	if !tree.Exists(s.Point) {
		return nil, serrors.New(serrors.ErrCodeInvalidFormat, "point %s does not exist", s.Point)
	}
	if s.Point.IsWindow() {
		if _, attached := tree.ParentContainer(s.Point); !attached {
			return nil, serrors.New(serrors.ErrCodeInvalidFormat, "point %s is not placed", s.Point)
		}
	}
	if s.Cursor != nil && !tree.IsCursorValid(*s.Cursor) {
		return nil, serrors.New(serrors.ErrCodeInvalidFormat, "cursor %s is not valid", *s.Cursor)
	}

	m := &Manager{
		tree:     tree,
		frames:   f,
		logger:   cfg.logger,
		point:    s.Point,
		cursor:   s.Cursor,
		geometry: make(map[layout.ItemIdx]layout.WindowBounds),
		clients:  make(map[string]int),
	}
	for item := range tree.All() {
		m.geometry[item] = tree.Bounds(item)
		if item.IsWindow() {
			c := tree.WindowData(item.Index)
			if c == nil {
				return nil, fmt.Errorf("restore manager: window %d has no client", item.Index)
			}
			if !c.Empty {
				m.clients[c.ID] = item.Index
				m.opened++
			}
		}
	}
	return m, nil
}

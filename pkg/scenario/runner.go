package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/observability"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// Default screen size for scenarios that leave it unset.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Runner replays scenarios.
//
// The Runner holds no per-run state; a single Runner may replay several
// scenarios concurrently.
type Runner struct {
	Logger *log.Logger
}

// NewRunner returns a runner logging to logger. A nil logger means
// log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// StepResult describes one replayed step.
type StepResult struct {
	Index    int           `json:"index"`
	Step     Step          `json:"step"`
	Actions  int           `json:"actions"`
	Changed  bool          `json:"changed"`
	Point    string        `json:"point"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a replay.
type Result struct {
	Name     string        `json:"name"`
	Manager  *wm.Manager   `json:"-"`
	Steps    []StepResult  `json:"steps"`
	Actions  int           `json:"actions"`
	Duration time.Duration `json:"duration"`
}

// Run replays sc against a fresh manager. Cancelling ctx stops the replay
// between steps.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	width, height := sc.Width, sc.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	m := wm.New(width, height,
		wm.WithPadding(sc.Padding),
		wm.WithInter(sc.Inter),
		wm.WithLogger(r.Logger),
	)
	return r.RunOn(ctx, m, sc)
}

// RunOn replays sc against an existing manager.
func (r *Runner) RunOn(ctx context.Context, m *wm.Manager, sc *Scenario) (res *Result, err error) {
	hooks := observability.Scenario()
	start := time.Now()
	hooks.OnScenarioStart(ctx, sc.Name, len(sc.Steps))
	defer func() {
		hooks.OnScenarioComplete(ctx, sc.Name, time.Since(start), err)
	}()

	res = &Result{Name: sc.Name, Manager: m, Steps: make([]StepResult, 0, len(sc.Steps))}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scenario %s: stopped before step %d: %w", sc.Name, i+1, err)
		}

		stepStart := time.Now()
		before := m.ActionCount()
		changed, err := Apply(m, st)
		hooks.OnStep(ctx, i, st.Op, m.ActionCount()-before, err)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", sc.Name, i+1, st, err)
		}

		sr := StepResult{
			Index:    i + 1,
			Step:     st,
			Actions:  m.ActionCount() - before,
			Changed:  changed,
			Point:    m.Point().String(),
			Duration: time.Since(stepStart),
		}
		res.Steps = append(res.Steps, sr)
		res.Actions += sr.Actions
		r.Logger.Debug("step", "n", sr.Index, "op", st.Op, "actions", sr.Actions, "point", sr.Point)
	}
	res.Duration = time.Since(start)

	if err := m.Validate(); err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeInternal, err, "layout invalid after scenario %s", sc.Name)
	}
	r.Logger.Info("replayed scenario",
		"name", sc.Name,
		"steps", len(res.Steps),
		"actions", res.Actions,
		"duration", res.Duration)
	return res, nil
}

// Apply performs a single step on m. It reports whether the step had an
// effect; steps that cannot apply in the current state (navigating past
// the edge, moving without a cursor) are no-ops rather than errors.
func Apply(m *wm.Manager, st Step) (bool, error) {
	if err := st.Validate(); err != nil {
		return false, err
	}
	switch st.Op {
	case OpOpen:
		_, err := m.OpenWindow(st.Title, st.Color)
		return err == nil, err
	case OpSlot:
		m.OpenSlot()
		return true, nil
	case OpClose:
		before := m.ActionCount()
		m.Close()
		return m.ActionCount() != before, nil
	case OpFocus:
		dir, _ := layout.ParseDirection(st.Dir)
		return m.Navigate(dir), nil
	case OpFocusParent:
		return m.NavigateParent(), nil
	case OpFocusChild:
		return m.NavigateChild(), nil
	case OpFocusAt:
		return m.FocusAt(layout.Position{X: st.X, Y: st.Y}), nil
	case OpCursor:
		dir, _ := layout.ParseDirection(st.Dir)
		before, hadCursor := m.Cursor()
		m.NavigateCursor(dir)
		after, hasCursor := m.Cursor()
		return before != after || hadCursor != hasCursor, nil
	case OpCursorInto:
		if err := m.SetCursor(layout.IntoCursor(st.Container, st.Index)); err != nil {
			return false, err
		}
		return true, nil
	case OpCursorClear:
		_, had := m.Cursor()
		m.ClearCursor()
		return had, nil
	case OpMove:
		return m.MovePointToCursor(), nil
	case OpSetLength:
		return m.SetLength(st.Length), nil
	case OpGrow:
		return m.Grow(delta(st)), nil
	case OpShrink:
		return m.Shrink(delta(st)), nil
	case OpEqualize:
		m.Equalize()
		return true, nil
	case OpResize:
		m.Resize(layout.Bounds(st.X, st.Y, st.Width, st.Height))
		return true, nil
	}
	return false, serrors.New(serrors.ErrCodeUnsupported, "op %q is not implemented", st.Op)
}

func delta(st Step) int {
	if st.Delta == 0 {
		return DefaultDelta
	}
	return st.Delta
}

// Package scenario replays scripted window-manager sessions.
//
// A scenario is a screen description plus an ordered list of steps, each
// naming an operation on a [wm.Manager]:
//
//	width = 1200
//	height = 800
//
//	[[steps]]
//	op = "open"
//	title = "editor"
//
//	[[steps]]
//	op = "cursor"
//	dir = "left"
//
// Scenarios are written in TOML, YAML or JSON; the format is chosen by file
// extension. [Runner] replays a scenario and reports what every step did.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
)

// Format is a scenario encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Operations understood by [Apply].
const (
	OpOpen        = "open"
	OpSlot        = "slot"
	OpClose       = "close"
	OpFocus       = "focus"
	OpFocusParent = "focus-parent"
	OpFocusChild  = "focus-child"
	OpCursor      = "cursor"
	OpCursorInto  = "cursor-into"
	OpCursorClear = "cursor-clear"
	OpMove        = "move"
	OpSetLength   = "set-length"
	OpGrow        = "grow"
	OpShrink      = "shrink"
	OpEqualize    = "equalize"
	OpResize      = "resize"
	OpFocusAt     = "focus-at"
)

// Ops lists every operation in documentation order.
var Ops = []string{
	OpOpen, OpSlot, OpClose,
	OpFocus, OpFocusParent, OpFocusChild, OpFocusAt,
	OpCursor, OpCursorInto, OpCursorClear, OpMove,
	OpSetLength, OpGrow, OpShrink, OpEqualize, OpResize,
}

// DefaultDelta is the grow/shrink amount when a step gives none.
const DefaultDelta = 50

// Scenario is a parsed scenario document.
type Scenario struct {
	Name    string `toml:"name" yaml:"name" json:"name"`
	Width   int    `toml:"width" yaml:"width" json:"width"`
	Height  int    `toml:"height" yaml:"height" json:"height"`
	Padding int    `toml:"padding" yaml:"padding" json:"padding"`
	Inter   int    `toml:"inter" yaml:"inter" json:"inter"`
	Steps   []Step `toml:"steps" yaml:"steps" json:"steps"`
}

// Step is one operation. Which fields matter depends on Op.
type Step struct {
	Op        string `toml:"op" yaml:"op" json:"op"`
	Title     string `toml:"title" yaml:"title,omitempty" json:"title,omitempty"`
	Color     string `toml:"color" yaml:"color,omitempty" json:"color,omitempty"`
	Dir       string `toml:"dir" yaml:"dir,omitempty" json:"dir,omitempty"`
	Length    int    `toml:"length" yaml:"length,omitempty" json:"length,omitempty"`
	Delta     int    `toml:"delta" yaml:"delta,omitempty" json:"delta,omitempty"`
	X         int    `toml:"x" yaml:"x,omitempty" json:"x,omitempty"`
	Y         int    `toml:"y" yaml:"y,omitempty" json:"y,omitempty"`
	Width     int    `toml:"width" yaml:"width,omitempty" json:"width,omitempty"`
	Height    int    `toml:"height" yaml:"height,omitempty" json:"height,omitempty"`
	Container int    `toml:"container" yaml:"container,omitempty" json:"container,omitempty"`
	Index     int    `toml:"index" yaml:"index,omitempty" json:"index,omitempty"`
}

func (s Step) String() string {
	if s.Dir != "" {
		return s.Op + " " + s.Dir
	}
	if s.Title != "" {
		return fmt.Sprintf("%s %q", s.Op, s.Title)
	}
	return s.Op
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", serrors.New(serrors.ErrCodeInvalidFormat, "unsupported scenario file %q (want .toml, .yaml, .yml or .json)", filepath.Base(path))
}

// Parse reads and validates the scenario at path. A missing name defaults
// to the file's base name.
func Parse(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serrors.Wrap(serrors.ErrCodeFileNotFound, err, "scenario %s", path)
		}
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Decode reads a scenario in the given format and validates it.
func Decode(r io.Reader, format Format) (*Scenario, error) {
	var sc Scenario
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&sc)
		if err != nil {
			return nil, serrors.Wrap(serrors.ErrCodeInvalidScenario, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, serrors.New(serrors.ErrCodeInvalidScenario, "unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil && err != io.EOF {
			return nil, serrors.Wrap(serrors.ErrCodeInvalidScenario, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return nil, serrors.Wrap(serrors.ErrCodeInvalidScenario, err, "decode json")
		}
	default:
		return nil, serrors.New(serrors.ErrCodeInvalidFormat, "unknown scenario format %q", format)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the screen description and every step.
func (sc *Scenario) Validate() error {
	if sc.Width < 0 || sc.Height < 0 || sc.Padding < 0 || sc.Inter < 0 {
		return serrors.New(serrors.ErrCodeInvalidScenario, "sizes must not be negative")
	}
	if len(sc.Steps) == 0 {
		return serrors.New(serrors.ErrCodeInvalidScenario, "scenario has no steps")
	}
	for i, st := range sc.Steps {
		if err := st.Validate(); err != nil {
			return serrors.Wrap(serrors.ErrCodeInvalidStep, err, "step %d (%s)", i+1, st.Op)
		}
	}
	return nil
}

// Validate checks that the step names a known operation and carries the
// fields it needs.
func (s Step) Validate() error {
	switch s.Op {
	case OpFocus, OpCursor:
		if _, err := layout.ParseDirection(s.Dir); err != nil {
			return serrors.Wrap(serrors.ErrCodeInvalidDirection, err, "bad direction")
		}
	case OpOpen:
		if err := serrors.ValidateTitle(s.Title); err != nil {
			return err
		}
		return serrors.ValidateColor(s.Color)
	case OpCursorInto:
		if s.Container < 0 || s.Index < 0 {
			return serrors.New(serrors.ErrCodeInvalidStep, "container and index must not be negative")
		}
	case OpGrow, OpShrink:
		if s.Delta < 0 {
			return serrors.New(serrors.ErrCodeInvalidStep, "delta must not be negative")
		}
	case OpResize:
		if s.Width <= 0 || s.Height <= 0 {
			return serrors.New(serrors.ErrCodeInvalidStep, "resize needs a positive width and height")
		}
	case OpSlot, OpClose, OpFocusParent, OpFocusChild, OpCursorClear, OpMove,
		OpSetLength, OpEqualize, OpFocusAt:
	case "":
		return serrors.New(serrors.ErrCodeInvalidStep, "missing op")
	default:
		return serrors.New(serrors.ErrCodeInvalidStep, "unknown op %q", s.Op)
	}
	return nil
}

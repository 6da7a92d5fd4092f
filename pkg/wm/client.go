package wm

import (
	"github.com/google/uuid"

	"github.com/matzehuels/stacktile/pkg/layout"
)

// Client is the payload of a window slot.
type Client struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Color string `json:"color,omitempty"`
	// Empty marks a placeholder slot that no application occupies yet.
	Empty bool `json:"empty,omitempty"`
}

// Frame is the payload of a container. Serial increases with every
// container the manager creates, so frames can be told apart in output.
type Frame struct {
	Serial int `json:"serial"`
}

// palette is cycled through for new clients without an explicit colour.
var palette = []string{
	"#5fafd7", "#d7875f", "#87af5f", "#af87d7",
	"#d7af5f", "#5fafaf", "#d75f87", "#8787af",
}

func newClient(title, color string, n int) *Client {
	if color == "" {
		color = palette[n%len(palette)]
	}
	return &Client{ID: uuid.NewString(), Title: title, Color: color}
}

// frames is the counting constructor for container payloads.
type frames struct {
	next int
}

func (f *frames) Construct() Frame {
	f.next++
	return Frame{Serial: f.next}
}

var _ layout.Constructor[Frame] = (*frames)(nil)

package layout

// ActionKind tags an Action.
type ActionKind int

const (
	// NewBounds reports that an item moved, was resized or was created.
	NewBounds ActionKind = iota
	// ItemDestroyed reports that an item's slot was freed. The payload is
	// handed back so the host can release resources tied to it.
	ItemDestroyed
	// ItemHidden reports that a window still exists but is no longer visible.
	ItemHidden
)

func (k ActionKind) String() string {
	switch k {
	case NewBounds:
		return "new-bounds"
	case ItemDestroyed:
		return "item-destroyed"
	case ItemHidden:
		return "item-hidden"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Action is one side effect the host must apply after a mutating call.
// Actions are returned in the order the engine produced them.
//
// For NewBounds, Bounds holds the item's new geometry. For ItemDestroyed,
// WindowData or ContainerData (depending on Item.Kind) holds the payload the
// engine no longer references.
type Action[W, C any] struct {
	Kind          ActionKind   `json:"kind"`
	Item          ItemIdx      `json:"item"`
	Bounds        WindowBounds `json:"bounds"`
	WindowData    W            `json:"-"`
	ContainerData C            `json:"-"`
}

func newBounds[W, C any](item ItemIdx, b WindowBounds) Action[W, C] {
	return Action[W, C]{Kind: NewBounds, Item: item, Bounds: b}
}

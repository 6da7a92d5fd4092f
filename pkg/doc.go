// Package pkg provides the core libraries for Stacktile, a tiling
// window-layout engine.
//
// # Overview
//
// Stacktile keeps a tree of windows and containers that covers a
// rectangular surface. Containers split their space along one axis by
// weight, and every mutation reports the geometry changes a host needs to
// apply. The pkg directory is organized into three areas:
//
//  1. Engine - the layout tree and the window-manager state on top of it
//  2. Drivers - scenarios that replay operations against a manager
//  3. Infrastructure - configuration, snapshot stores, caching, errors
//     and observability hooks
//
// # Architecture
//
// The typical data flow through Stacktile:
//
//	Scenario file (TOML, YAML or JSON)
//	         ↓
//	    [scenario] package (parse, validate, replay)
//	         ↓
//	    [wm] package (point, cursor, geometry table)
//	         ↓
//	    [layout] package (tree mutations and solved bounds)
//	         ↓
//	    [render/dot] / [render/term] (DOT, SVG, PDF, PNG, text)
//
// # Quick Start
//
// Open two windows side by side and print them:
//
//	m := wm.New(1920, 1080)
//	m.OpenWindow("editor", "")
//	m.OpenWindow("shell", "")
//	fmt.Println(term.Render(m, term.Options{Width: 80, Height: 24}))
//
// Replay a scenario and save the result:
//
//	sc, _ := scenario.Parse("examples/scenarios/split.toml")
//	res, _ := scenario.NewRunner(logger).Run(ctx, sc)
//	data, _ := res.Manager.MarshalState()
//	st, _ := store.Open(ctx, cfg.Store)
//	st.Save(ctx, sc.Name, data)
//
// # Main Packages
//
// [layout] - The generic engine. Two slot arenas (windows and containers),
// cursors for insertion, directional navigation, weights and the solver
// that turns them into bounds.
//
// [wm] - A [layout.Layout] with client and frame payloads plus the
// focused item, the pending cursor and the host's geometry table.
//
// [scenario] - Declarative step lists and the runner that applies them.
//
// [render/dot] - Graphviz DOT of the tree, rendered to SVG in-process.
//
// [render/term] - The screen rasterised onto a character grid.
//
// [store] - Snapshot persistence: file, SQLite, Redis and MongoDB backends.
//
// [cache] - Content-addressed cache for rendered diagrams.
//
// [config] - TOML configuration with environment overrides and file
// watching.
//
// [errors] - Coded errors with HTTP status mapping and input validation.
//
// [observability] - Hooks for mutations, scenarios, store access and HTTP.
//
// [layout]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/layout
// [wm]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/wm
// [scenario]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/scenario
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/render/dot
// [render/term]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/render/term
// [store]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/observability
// [layout.Layout]: https://pkg.go.dev/github.com/matzehuels/stacktile/pkg/layout#Layout
package pkg

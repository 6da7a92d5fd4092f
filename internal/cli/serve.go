package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktile/pkg/buildinfo"
	"github.com/matzehuels/stacktile/pkg/cache"
	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/observability"
	"github.com/matzehuels/stacktile/pkg/render/dot"
	"github.com/matzehuels/stacktile/pkg/render/term"
	"github.com/matzehuels/stacktile/pkg/scenario"
	"github.com/matzehuels/stacktile/pkg/wm"
)

// maxOpBody bounds the size of a POST /ops request.
const maxOpBody = 64 << 10

// serveCommand creates the serve command, an HTTP introspection server
// over a single live layout.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		scenFile string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live layout over HTTP",
		Long: `Serve a live layout over HTTP.

Routes:
  GET  /layout      state document (JSON)
  GET  /layout.dot  Graphviz DOT
  GET  /layout.svg  SVG diagram
  GET  /layout.txt  text rendering (?w=80&h=24)
  POST /ops         apply one scenario step, e.g. {"op":"open","title":"editor"}
  GET  /version     build information`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serrors.ValidateAddr(addr); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			m := c.newManager(cfg)
			if scenFile != "" {
				sc, err := scenario.Parse(scenFile)
				if err != nil {
					return err
				}
				if _, err := scenario.NewRunner(c.Logger).RunOn(ctx, m, sc); err != nil {
					return err
				}
			}
			dc := c.newCache(noCache)
			defer dc.Close()
			return c.serve(ctx, addr, newServer(m, dc, c.Logger))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&scenFile, "scenario", "", "scenario to replay before serving")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache rendered SVG")

	return cmd
}

// serve runs h on addr until ctx is cancelled.
func (c *CLI) serve(ctx context.Context, addr string, h http.Handler) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	c.Logger.Info("serving layout", "addr", "http://"+listener.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.Logger.Info("server stopped")
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

// server exposes one manager. Requests to POST /ops are serialised so that
// a step's observable effect is not interleaved with another step.
type server struct {
	mu     sync.Mutex
	m      *wm.Manager
	svgs   cache.Cache
	logger *log.Logger
}

func newServer(m *wm.Manager, svgs cache.Cache, logger *log.Logger) http.Handler {
	s := &server{m: m, svgs: svgs, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/layout", s.handleLayout)
	r.Get("/layout.dot", s.handleDOT)
	r.Get("/layout.svg", s.handleSVG)
	r.Get("/layout.txt", s.handleText)
	r.Post("/ops", s.handleOp)
	r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})

	return r
}

// observe reports every request through the HTTP hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var state wm.State
	s.locked(func() { state = s.m.Snapshot() })
	writeJSON(w, http.StatusOK, state)
}

func (s *server) handleDOT(w http.ResponseWriter, r *http.Request) {
	src := s.dot(r)
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	fmt.Fprint(w, src)
}

func (s *server) handleSVG(w http.ResponseWriter, r *http.Request) {
	src := s.dot(r)
	svg, _, err := cache.GetOrCompute(r.Context(), s.svgs, cache.Key(formatSVG, src), func() ([]byte, error) {
		return dot.RenderSVG(r.Context(), src)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *server) handleText(w http.ResponseWriter, r *http.Request) {
	opts := term.Options{Width: 80, Height: 24}
	if err := queryInt(r, "w", term.MaxWidth, &opts.Width); err != nil {
		s.writeError(w, err)
		return
	}
	if err := queryInt(r, "h", term.MaxHeight, &opts.Height); err != nil {
		s.writeError(w, err)
		return
	}

	var text string
	s.locked(func() { text = term.Render(s.m, opts) })

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, text)
}

// opResponse is the body answered by POST /ops.
type opResponse struct {
	Changed bool   `json:"changed"`
	Actions int    `json:"actions"`
	Point   string `json:"point"`
}

func (s *server) handleOp(w http.ResponseWriter, r *http.Request) {
	var st scenario.Step
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxOpBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&st); err != nil {
		s.writeError(w, serrors.Wrap(serrors.ErrCodeInvalidStep, err, "decode step"))
		return
	}

	var (
		resp opResponse
		err  error
	)
	s.locked(func() {
		before := s.m.ActionCount()
		resp.Changed, err = scenario.Apply(s.m, st)
		resp.Actions = s.m.ActionCount() - before
		resp.Point = s.m.Point().String()
	})

	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("applied step", "step", st.String(), "actions", resp.Actions)
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) dot(r *http.Request) string {
	var state wm.State
	s.locked(func() { state = s.m.Snapshot() })
	return dot.ToDOT(state, dot.Options{Detailed: r.URL.Query().Has("detailed")})
}

// locked runs fn while holding the manager lock. The lock is released even
// when fn panics, so Recoverer leaves the server usable.
func (s *server) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := serrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error": serrors.UserMessage(err),
		"code":  string(serrors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// queryInt reads an optional integer parameter in [1, limit].
func queryInt(r *http.Request, key string, limit int, dst *int) error {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > limit {
		return serrors.New(serrors.ErrCodeInvalidInput, "query parameter %s must be between 1 and %d, got %q", key, limit, v)
	}
	*dst = n
	return nil
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/specialistvlad/gridwalk/internal/pathfind"
)

// pathCell is one cell of a /path response.
type pathCell struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// pathResponse is the body of a successful /path request.
type pathResponse struct {
	Found    bool       `json:"found"`
	Hops     int        `json:"hops"`
	Expanded int        `json:"expanded"`
	Path     []pathCell `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the HTTP handler serving /health and /path.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /path", a.pathHandler)
	return mux
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// pathHandler answers `GET /path?grid=NAME&from=X,Y&to=X,Y`. Every request
// runs its own search against the graph active when it arrived.
func (a *App) pathHandler(w http.ResponseWriter, r *http.Request) {
	ctx := ctxlog.WithLogger(r.Context(), a.logger)
	q := r.URL.Query()

	name := q.Get("grid")
	g, ok := a.Graph(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown grid %q", name)})
		return
	}
	from, err := parseCoord(q.Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "from: " + err.Error()})
		return
	}
	to, err := parseCoord(q.Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to: " + err.Error()})
		return
	}

	res, err := pathfind.FindPathBetween(ctx, g, from, to, a.searchOptions()...)
	switch {
	case errors.Is(err, pathfind.ErrPrecondition):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, pathfind.ErrExpansionLimit):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	case err != nil:
		a.logger.Error("Path query failed.", "grid", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	resp := pathResponse{
		Found:    res.Found,
		Hops:     res.Hops(),
		Expanded: res.Expanded,
		Path:     make([]pathCell, 0, len(res.Path)),
	}
	for _, n := range res.Path {
		label, _ := n.Payload.(string)
		resp.Path = append(resp.Path, pathCell{X: n.Pos.X, Y: n.Pos.Y, Label: label})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// parseCoord parses "X,Y" into a coordinate.
func parseCoord(s string) (grid.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("expected X,Y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return grid.Coord{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return grid.Coord{}, fmt.Errorf("invalid y: %w", err)
	}
	return grid.Coord{X: x, Y: y}, nil
}

// startServer binds the HTTP port and serves in the background.
func (a *App) startServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring HTTP server.")

	addr := fmt.Sprintf(":%d", a.config.HTTPPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind HTTP server: %w", err)
	}
	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("🩺 HTTP server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

func (a *App) closeServer(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if a.httpServer == nil {
		logger.Debug("HTTP server was not running.")
		return nil
	}

	// The run context is usually already cancelled here.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	logger.Debug("HTTP server shut down gracefully.")
	return nil
}

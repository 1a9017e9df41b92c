package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoHCL = `
grid "demo" {
  step   = 300
  layout = [
    "...",
    ".#.",
    "...",
  ]
}

grid "split" {
  layout = [".#."]
}

walk "corner" {
  grid  = "demo"
  start = [0, 0]
  goal  = [600, 600]
}

walk "blocked" {
  grid  = "split"
  start = [0, 0]
  goal  = [2, 0]
}

walk "wander" {
  grid = "demo"
}
`

const hallYAML = `
grids:
  hall:
    layout: ["....."]
`

// writeGrids creates a grid directory with one HCL and one YAML file.
func writeGrids(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.hcl"), []byte(demoHCL), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hall.yaml"), []byte(hallYAML), 0o600))
	return dir
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{GridPath: "grids", HTTPPort: 8080, Watch: true}},
		{name: "missing path", cfg: Config{}, wantErr: "GridPath"},
		{name: "negative delay", cfg: Config{GridPath: "g", StepDelay: -time.Second}, wantErr: "step-delay"},
		{name: "negative expansions", cfg: Config{GridPath: "g", MaxExpansions: -1}, wantErr: "max-expansions"},
		{name: "port out of range", cfg: Config{GridPath: "g", HTTPPort: 70000}, wantErr: "http-port"},
		{name: "watch without port", cfg: Config{GridPath: "g", Watch: true}, wantErr: "watch requires"},
		{name: "namespace without url", cfg: Config{GridPath: "g", EventsNamespace: "/viewer"}, wantErr: "events-url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.cfg, *cfg)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	buf := &SafeBuffer{}
	logger := newLogger("debug", "json", buf)
	logger.Debug("hello", "k", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf = &SafeBuffer{}
	logger = newLogger("nonsense", "text", buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg=shown`)
}

func TestNewApp_LoadsAllFormats(t *testing.T) {
	t.Parallel()

	a, logs := SetupAppTest(t, &Config{GridPath: writeGrids(t)})

	demo, ok := a.Graph("demo")
	require.True(t, ok)
	assert.Equal(t, 8, demo.Len())
	hall, ok := a.Graph("hall")
	require.True(t, ok)
	assert.Equal(t, 5, hall.Len())
	assert.Contains(t, logs.String(), `msg="Grid built."`)
}

func TestNewApp_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		walk    string
		wantErr string
	}{
		{
			name:    "syntax error",
			files:   map[string]string{"bad.hcl": `grid "x" {`},
			wantErr: "failed to parse",
		},
		{
			name:    "walk on unknown grid",
			files:   map[string]string{"w.hcl": `walk "w" { grid = "nowhere" }`},
			wantErr: "unknown grid",
		},
		{
			name:    "duplicate cell",
			files:   map[string]string{"g.yaml": "grids:\n  g:\n    layout: [\".\"]\n    cells: [{x: 0, y: 0}]\n"},
			wantErr: "duplicate cell",
		},
		{
			name:    "same grid in two formats",
			files:   map[string]string{"a.hcl": `grid "g" {}`, "b.yaml": "grids:\n  g: {}\n"},
			wantErr: "duplicate name",
		},
		{
			name:    "unknown walk selected",
			files:   map[string]string{"g.hcl": `grid "g" {}`},
			walk:    "missing",
			wantErr: `unknown walk "missing"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
			}

			defer func() {
				r := recover()
				require.NotNil(t, r, "NewApp should panic")
				err, ok := r.(error)
				require.True(t, ok, "panic value should be an error, got %T", r)
				assert.Contains(t, err.Error(), tt.wantErr)
			}()
			NewApp(&SafeBuffer{}, &Config{GridPath: dir, Walk: tt.walk})
		})
	}
}

func TestRun_FixedWalk(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a, logs := SetupAppTest(t, &Config{GridPath: writeGrids(t), Walk: "corner"})

	// --- Act ---
	err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	out := logs.String()
	assert.Equal(t, 5, strings.Count(out, `msg="Walk step."`))
	assert.Contains(t, out, "kind=arrived")
	assert.Contains(t, out, `Walks finished.`)
}

func TestRun_AllWalks(t *testing.T) {
	t.Parallel()

	a, logs := SetupAppTest(t, &Config{GridPath: writeGrids(t), Seed: 7})

	err := a.Run(context.Background())

	require.NoError(t, err)
	out := logs.String()
	assert.Contains(t, out, "kind=no_path")
	assert.Contains(t, out, `msg="Goal unreachable from start."`)
	assert.Equal(t, 2, strings.Count(out, "kind=arrived"), "corner and wander should both arrive")
}

func TestRun_SeedIsReproducible(t *testing.T) {
	t.Parallel()

	placements := func() string {
		a, logs := SetupAppTest(t, &Config{GridPath: writeGrids(t), Walk: "wander", Seed: 42})
		require.NoError(t, a.Run(context.Background()))
		for _, line := range strings.Split(logs.String(), "\n") {
			if strings.Contains(line, "kind=placed") {
				_, rest, _ := strings.Cut(line, "walk=")
				return rest
			}
		}
		return ""
	}

	first := placements()
	require.NotEmpty(t, first)
	assert.Equal(t, first, placements())
}

func TestRun_CancelledContextStopsGracefully(t *testing.T) {
	t.Parallel()

	a, logs := SetupAppTest(t, &Config{GridPath: writeGrids(t), Walk: "corner", StepDelay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := a.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(logs.String(), `msg="Walk step."`))
}

func TestPathHandler(t *testing.T) {
	t.Parallel()

	a, _ := SetupAppTest(t, &Config{GridPath: writeGrids(t)})
	bounded, _ := SetupAppTest(t, &Config{GridPath: writeGrids(t), MaxExpansions: 1})

	tests := []struct {
		name       string
		app        *App
		query      string
		wantStatus int
		wantBody   *pathResponse
	}{
		{
			name:       "found",
			app:        a,
			query:      "grid=demo&from=0,0&to=600,0",
			wantStatus: http.StatusOK,
			wantBody: &pathResponse{Found: true, Hops: 2, Expanded: 3, Path: []pathCell{
				{X: 0, Y: 0, Label: "r0c0"},
				{X: 300, Y: 0, Label: "r0c1"},
				{X: 600, Y: 0, Label: "r0c2"},
			}},
		},
		{
			name:       "not found",
			app:        a,
			query:      "grid=split&from=0,0&to=2,0",
			wantStatus: http.StatusOK,
			wantBody:   &pathResponse{Found: false, Hops: -1, Expanded: 1, Path: []pathCell{}},
		},
		{name: "unknown grid", app: a, query: "grid=nope&from=0,0&to=1,0", wantStatus: http.StatusNotFound},
		{name: "malformed from", app: a, query: "grid=demo&from=0;0&to=600,0", wantStatus: http.StatusBadRequest},
		{name: "malformed to", app: a, query: "grid=demo&from=0,0&to=x,0", wantStatus: http.StatusBadRequest},
		{name: "not a cell", app: a, query: "grid=demo&from=300,300&to=0,0", wantStatus: http.StatusUnprocessableEntity},
		{name: "expansion limit", app: bounded, query: "grid=demo&from=0,0&to=600,600", wantStatus: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/path?"+tt.query, nil)
			rec := httptest.NewRecorder()

			tt.app.Handler().ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantBody != nil {
				var got pathResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, *tt.wantBody, got)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	a, _ := SetupAppTest(t, &Config{GridPath: writeGrids(t)})
	rec := httptest.NewRecorder()

	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestReload(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := writeGrids(t)
	a, logs := SetupAppTest(t, &Config{GridPath: dir})
	before, _ := a.Graph("hall")
	ctx := context.Background()

	// --- Act / Assert: a valid edit is swapped in ---
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hall.yaml"), []byte("grids:\n  hall:\n    layout: [\"..\"]\n"), 0o600))
	require.NoError(t, a.reload(ctx))
	after, _ := a.Graph("hall")
	assert.Equal(t, 2, after.Len())
	assert.Equal(t, 5, before.Len(), "graphs handed out earlier must not change")

	// --- Act / Assert: a broken edit keeps the previous generation ---
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hall.yaml"), []byte("grids: ["), 0o600))
	require.Error(t, a.reload(ctx))
	current, _ := a.Graph("hall")
	assert.Same(t, after, current)
	assert.Contains(t, logs.String(), "Reload failed")
}

package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/chazu/snapjoin/pkg/config"
	"github.com/chazu/snapjoin/pkg/engine"
	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/chazu/snapjoin/pkg/kernel"
	"github.com/chazu/snapjoin/pkg/kernel/sdfx"
	"github.com/chazu/snapjoin/pkg/preview"
	"github.com/chazu/snapjoin/pkg/scene"
	"github.com/chazu/snapjoin/pkg/snap"
	"github.com/chazu/snapjoin/pkg/tessellate"
	"github.com/chazu/snapjoin/pkg/watch"
	"github.com/wailsapp/wails/v2/pkg/runtime"
	"gonum.org/v1/gonum/spatial/r3"
)

// colorPalette is a default palette used to assign distinct colors to chunks.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Events emitted to the frontend.
const (
	eventPreview = "preview"
	eventScene   = "scene"
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	cfg     config.Config
	log     *slog.Logger
	engine  *engine.Engine
	kernel  kernel.Kernel
	store   *scene.Store
	ghost   *ghost
	session *preview.Session
	watcher *watch.Watcher

	// mu serialises drags and scene reloads.
	mu       sync.Mutex
	dragging string
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	ChunkName string    `json:"chunkName"`
	Color     string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// SceneResult is returned by LoadScene and after every scene change.
type SceneResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// PoseData is a rigid transform as the frontend sends it: a position and a
// rotation of Angle degrees about Axis.
type PoseData struct {
	Position [3]float64 `json:"position"`
	Axis     [3]float64 `json:"axis"`
	Angle    float64    `json:"angle"`
}

// PreviewData describes the snap ghost after a drag update.
type PreviewData struct {
	Chunk   string   `json:"chunk"`
	State   string   `json:"state"`
	Valid   bool     `json:"valid"`
	Visible bool     `json:"visible"`
	Color   string   `json:"color"`
	Opacity float64  `json:"opacity"`
	Pose    PoseData `json:"pose"`
	// Offset moves the chunk's scene mesh onto the ghost pose; 4x4,
	// column-major.
	Offset [16]float64 `json:"offset"`
	Pairs  []string    `json:"pairs"`
}

// DropResult is returned by EndDrag.
type DropResult struct {
	Outcome string      `json:"outcome"`
	Chunk   string      `json:"chunk"`
	Scene   SceneResult `json:"scene"`
}

// NewApp creates an App with an engine, the sdfx kernel and an empty scene.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		cfg:    cfg,
		log:    logger,
		engine: engine.NewEngine(logger),
		kernel: sdfx.New(),
		store:  scene.NewStore(nil),
	}
	a.ghost = &ghost{app: a}
	a.session = preview.NewSession(preview.Options{
		Config:   snap.DefaultConfig(),
		Renderer: a.ghost,
		Merger:   a.store,
		Logger:   logger,
	})
	return a
}

// startup is called by Wails on app startup. It loads the configured scene
// script and, when enabled, watches it for changes.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	path := a.cfg.Scene.Path
	if path == "" {
		return
	}
	if res := a.loadFile(path); len(res.Errors) > 0 {
		a.log.Warn("initial scene has errors", "path", path, "errors", len(res.Errors))
	}
	if !a.cfg.Scene.Watch {
		return
	}

	w, err := watch.New(path, func(p string) {
		a.emit(eventScene, a.loadFile(p))
	}, watch.Options{Debounce: a.cfg.Scene.Debounce, Logger: a.log})
	if err != nil {
		a.log.Error("scene watch disabled", "path", path, "error", err)
		return
	}
	if err := w.Start(ctx); err != nil {
		a.log.Error("scene watch disabled", "path", path, "error", err)
		w.Stop()
		return
	}
	a.watcher = w
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

func (a *App) loadFile(path string) SceneResult {
	src, err := os.ReadFile(path)
	if err != nil {
		a.log.Error("read scene", "path", path, "error", err)
		return SceneResult{
			Meshes:   []MeshData{},
			Errors:   []EvalErrorData{{Message: fmt.Sprintf("read %s: %v", path, err)}},
			Warnings: []EvalErrorData{},
		}
	}
	return a.LoadScene(string(src))
}

// LoadScene evaluates source, replaces the current scene and returns its
// meshes. On errors the current scene is kept.
func (a *App) LoadScene(source string) SceneResult {
	result := SceneResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, err := a.engine.EvaluateFull(source)
	if err != nil {
		a.log.Error("evaluate fatal error", "error", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	a.mu.Lock()
	if a.dragging != "" {
		a.log.Warn("scene reloaded during drag", "chunk", a.dragging)
		if _, err := a.session.End(); err != nil {
			a.log.Warn("abandon drag", "error", err)
		}
		a.dragging = ""
	}
	a.store.Set(res.Scene)
	a.mu.Unlock()

	meshes, err := a.meshes()
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Meshes = meshes
	a.log.Info("scene loaded", "chunks", res.Scene.Len(), "sockets", res.Scene.SocketCount())
	return result
}

// SceneMeshes returns meshes for the current scene.
func (a *App) SceneMeshes() ([]MeshData, error) {
	return a.meshes()
}

func (a *App) meshes() ([]MeshData, error) {
	meshes, err := tessellate.Scene(a.store.Scene(), a.kernel)
	if err != nil {
		a.log.Error("tessellate", "error", err)
		return nil, fmt.Errorf("tessellation failed: %w", err)
	}
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			Indices:   m.Indices,
			ChunkName: m.ChunkName,
			Color:     colorPalette[i%len(colorPalette)],
		})
	}
	return out, nil
}

// BeginDrag starts dragging the named chunk.
func (a *App) BeginDrag(name string) (PreviewData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.store.Scene()
	c := s.Lookup(name)
	if c == nil {
		return PreviewData{}, fmt.Errorf("no chunk named %q", name)
	}
	if a.dragging != "" {
		a.log.Warn("drag replaced", "old", a.dragging, "new", name)
	}
	a.dragging = name
	return a.previewData(a.session.Begin(c, s.Chunks())), nil
}

// Drag moves the held chunk to pose and returns the resulting preview.
func (a *App) Drag(pose PoseData) (PreviewData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dragging == "" {
		return PreviewData{}, preview.ErrNoDrag
	}
	return a.previewData(a.session.Update(pose.transform())), nil
}

// EndDrag drops the held chunk: it snaps and merges when the latest preview
// found pairs, otherwise it stays where it was released.
func (a *App) EndDrag() (DropResult, error) {
	a.mu.Lock()
	out, err := a.session.End()
	a.dragging = ""
	if err == nil && out.Merged == nil {
		err = a.store.Place(out.Moved)
	}
	a.mu.Unlock()
	if err != nil {
		return DropResult{}, err
	}

	res := DropResult{Outcome: out.Kind.String(), Chunk: out.Moved.Name}
	if out.Merged != nil {
		res.Chunk = out.Merged.Name
	}
	meshes, err := a.meshes()
	if err != nil {
		return DropResult{}, err
	}
	res.Scene = SceneResult{Meshes: meshes, Errors: []EvalErrorData{}, Warnings: []EvalErrorData{}}
	return res, nil
}

func (a *App) previewData(s preview.Snapshot) PreviewData {
	c := a.store.Scene().Get(s.Chunk)
	d := PreviewData{
		Chunk:   string(s.Chunk),
		State:   s.State.String(),
		Valid:   s.Valid,
		Visible: a.session.Visibility() == preview.Visible,
		Color:   hexColor(s.Tint),
		Opacity: float64(s.Tint.A) / 255,
		Pose:    poseData(s.Transform),
		Pairs:   []string{},
	}
	if c != nil {
		d.Offset = columnMajor(s.Transform.Mul(c.Transform.Inverse()))
	}
	for _, p := range s.Pairs {
		d.Pairs = append(d.Pairs, p.String())
	}
	return d
}

func (a *App) emit(event string, data any) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, event, data)
}

func (p PoseData) transform() geom.Transform {
	axis := r3.Vec{X: p.Axis[0], Y: p.Axis[1], Z: p.Axis[2]}
	return geom.Transform{
		Position: r3.Vec{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
		Rotation: geom.AngleAxis(geom.Degrees(p.Angle), axis),
	}
}

func poseData(t geom.Transform) PoseData {
	axis, angle := t.Rotation.AxisAngle()
	return PoseData{
		Position: [3]float64{t.Position.X, t.Position.Y, t.Position.Z},
		Axis:     [3]float64{axis.X, axis.Y, axis.Z},
		Angle:    angle * 180 / math.Pi,
	}
}

// columnMajor lays t out as a 4x4 matrix in the order WebGL expects.
func columnMajor(t geom.Transform) [16]float64 {
	m := t.Rotation.Matrix()
	return [16]float64{
		m[0], m[3], m[6], 0,
		m[1], m[4], m[7], 0,
		m[2], m[5], m[8], 0,
		t.Position.X, t.Position.Y, t.Position.Z, 1,
	}
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ghost forwards preview renderer calls to the frontend as events.
type ghost struct {
	app *App

	mu      sync.Mutex
	visible bool
	tint    color.NRGBA
	pose    geom.Transform
}

func (g *ghost) SetVisible(visible bool) {
	g.mu.Lock()
	g.visible = visible
	g.mu.Unlock()
	g.app.emit(eventPreview, map[string]any{"visible": visible})
}

func (g *ghost) SetTint(c color.NRGBA) {
	g.mu.Lock()
	g.tint = c
	g.mu.Unlock()
	g.app.emit(eventPreview, map[string]any{"color": hexColor(c), "opacity": float64(c.A) / 255})
}

func (g *ghost) SetPose(t geom.Transform) {
	g.mu.Lock()
	g.pose = t
	g.mu.Unlock()
	g.app.emit(eventPreview, map[string]any{"pose": poseData(t)})
}

// state returns what the ghost currently shows.
func (g *ghost) state() (bool, color.NRGBA, geom.Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.visible, g.tint, g.pose
}

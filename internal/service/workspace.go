package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	nmap "github.com/Ullaakut/nmap/v3"

	"netcanvas/internal/codec"
	"netcanvas/internal/controller"
	"netcanvas/internal/domain"
	"netcanvas/internal/render"
	"netcanvas/internal/repository"
	"netcanvas/internal/scan"
)

// ErrNoSnapshotStore is returned by snapshot operations when the workspace
// was built without a store
var ErrNoSnapshotStore = errors.New("snapshot store not configured")

// WorkspaceConfig holds canvas settings for a Workspace
type WorkspaceConfig struct {
	Width         int
	Height        int
	MarkerSize    float64
	MinSeparation float64
	Logger        *slog.Logger
}

// Workspace owns one interactive canvas. It wraps a controller whose output
// goes both to the event bus and to an in-memory raster canvas, and
// serializes every entry so two mutations never interleave and loads never
// overlap.
type Workspace struct {
	mu     sync.Mutex
	ctrl   *controller.Controller
	canvas *render.Canvas
	store  repository.SnapshotStore
	bus    *EventBus
	cfg    WorkspaceConfig
	log    *slog.Logger
}

// NewWorkspace creates a workspace. store may be nil.
func NewWorkspace(bus *EventBus, store repository.SnapshotStore, cfg WorkspaceConfig) *Workspace {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MarkerSize <= 0 {
		cfg.MarkerSize = render.DefaultMarkerSize
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1024, 768
	}

	canvas := render.NewCanvas(cfg.Width, cfg.Height, cfg.MarkerSize)
	surface := render.Tee{canvas, NewStreamRenderer(bus)}

	return &Workspace{
		ctrl: controller.New(surface, surface, controller.Options{
			MinSeparation: cfg.MinSeparation,
			MarkerSize:    cfg.MarkerSize,
			Logger:        cfg.Logger.With("component", "controller"),
		}),
		canvas: canvas,
		store:  store,
		bus:    bus,
		cfg:    cfg,
		log:    cfg.Logger,
	}
}

// State is a point-in-time view of the workspace
type State struct {
	Mode    domain.Mode        `json:"mode"`
	Pending *int               `json:"pending,omitempty"`
	Nodes   []codec.NodeRecord `json:"nodes"`
	Edges   []domain.Edge      `json:"edges"`
	// Lines are the connection lines as currently drawn, styled and inset
	Lines []LinePayload `json:"lines"`
	Info  string        `json:"info,omitempty"`
}

// NodeDetail is one node with its inspection text
type NodeDetail struct {
	Node codec.NodeRecord `json:"node"`
	Info string           `json:"info"`
}

// HandlePointer feeds one pointer event into the controller
func (w *Workspace) HandlePointer(ev controller.PointerEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Handle(ev)
}

// Mode returns the current mode
func (w *Workspace) Mode() domain.Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Mode()
}

// SetMode switches mode and announces it when it actually changed
func (w *Workspace) SetMode(m domain.Mode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctrl.Mode() == m {
		return
	}
	w.ctrl.SetMode(m)
	w.bus.Publish(Event{Type: EventModeChanged, Payload: ModePayload{Mode: string(m)}})
}

// State returns the current topology, mode and pending endpoint
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	g := w.ctrl.Graph()
	lines := w.canvas.Lines()
	state := State{
		Mode:  w.ctrl.Mode(),
		Nodes: codec.Records(g),
		Edges: g.Edges(),
		Lines: make([]LinePayload, 0, len(lines)),
		Info:  w.canvas.Info(),
	}
	for _, l := range lines {
		state.Lines = append(state.Lines, LinePayload{From: l.From, To: l.To, Color: l.Color.Hex()})
	}
	if state.Edges == nil {
		state.Edges = []domain.Edge{}
	}
	if id, ok := w.ctrl.Pending(); ok {
		state.Pending = &id
	}
	return state
}

// Node returns one node and its inspection text
func (w *Workspace) Node(id int) (NodeDetail, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.ctrl.Graph().Node(id)
	if !ok {
		return NodeDetail{}, &domain.UnknownNodeError{ID: id}
	}
	for _, rec := range codec.Records(w.ctrl.Graph()) {
		if rec.ID == id {
			return NodeDetail{Node: rec, Info: controller.Describe(n)}, nil
		}
	}
	return NodeDetail{}, &domain.UnknownNodeError{ID: id}
}

// Export writes the topology with enc
func (w *Workspace) Export(out io.Writer, enc codec.Encoder) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ctrl.Save(out, enc)
}

// ExportPNG rasterises the current canvas
func (w *Workspace) ExportPNG(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canvas.WritePNG(out)
}

// Import replaces the topology with a decoded document
func (w *Workspace) Import(r io.Reader, dec codec.Decoder) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(r, dec)
}

// ImportScan seeds the topology from an nmap XML report, placing the ring
// around the canvas centre
func (w *Workspace) ImportScan(r io.Reader) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.load(r, w.nmapImporter())
}

// ScanNetwork runs a live scan and seeds the topology from its hosts. The
// scan itself runs without holding the workspace lock.
func (w *Workspace) ScanNetwork(ctx context.Context, s *scan.Scanner) error {
	run, err := s.Run(ctx)
	if err != nil {
		return err
	}
	return w.ImportScanResult(run)
}

// ImportScanResult seeds the topology from a completed nmap run
func (w *Workspace) ImportScanResult(run *nmap.Run) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(nil, w.nmapImporter().FromRun(run))
}

func (w *Workspace) nmapImporter() *codec.NmapImporter {
	center := domain.Point{X: float64(w.cfg.Width) / 2, Y: float64(w.cfg.Height) / 2}
	return codec.NewNmapImporter(center, w.ctrl.MinSeparation(), w.log.With("component", "nmap"))
}

// LoadFile loads a topology file, picking the codec from its extension
func (w *Workspace) LoadFile(path string) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open topology: %w", err)
	}
	defer f.Close()

	return w.Import(f, c)
}

// SaveFile writes the topology to path, picking the codec from its extension
func (w *Workspace) SaveFile(path string) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := w.Export(&buf, c); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write topology: %w", err)
	}
	return nil
}

// SaveSnapshot stores the current topology under name
func (w *Workspace) SaveSnapshot(ctx context.Context, name string) (*repository.Snapshot, error) {
	if w.store == nil {
		return nil, ErrNoSnapshotStore
	}

	w.mu.Lock()
	var buf bytes.Buffer
	err := w.ctrl.Save(&buf, codec.NewJSONCodec(w.log))
	g := w.ctrl.Graph()
	snap := &repository.Snapshot{
		Name:      name,
		Document:  buf.Bytes(),
		NodeCount: g.Len(),
		EdgeCount: len(g.Edges()),
	}
	w.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := w.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	w.log.Info("saved snapshot", "name", name, "nodes", snap.NodeCount, "edges", snap.EdgeCount)
	return snap, nil
}

// LoadSnapshot replaces the topology with a stored snapshot
func (w *Workspace) LoadSnapshot(ctx context.Context, name string) error {
	if w.store == nil {
		return ErrNoSnapshotStore
	}

	snap, err := w.store.GetSnapshot(ctx, name)
	if err != nil {
		return err
	}
	return w.Import(bytes.NewReader(snap.Document), codec.NewJSONCodec(w.log))
}

// ListSnapshots returns stored snapshot summaries
func (w *Workspace) ListSnapshots(ctx context.Context) ([]repository.Snapshot, error) {
	if w.store == nil {
		return nil, ErrNoSnapshotStore
	}
	return w.store.ListSnapshots(ctx)
}

// DeleteSnapshot removes a stored snapshot
func (w *Workspace) DeleteSnapshot(ctx context.Context, name string) error {
	if w.store == nil {
		return ErrNoSnapshotStore
	}
	return w.store.DeleteSnapshot(ctx, name)
}

func (w *Workspace) load(r io.Reader, dec codec.Decoder) error {
	if err := w.ctrl.Load(r, dec); err != nil {
		return err
	}
	g := w.ctrl.Graph()
	w.bus.Publish(Event{
		Type: EventTopologyLoaded,
		Payload: map[string]any{
			"format": dec.Format(),
			"nodes":  g.Len(),
			"edges":  len(g.Edges()),
		},
	})
	return nil
}

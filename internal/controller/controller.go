// Package controller interprets pointer input against the current mode and
// the topology graph.
//
// A Controller owns the mode, the pending connection endpoint and the active
// drag. Every pointer event enters through Handle; the controller mutates the
// graph and tells the Renderer and InfoPanel what changed. Failures stop at
// this boundary: they are logged, shown as a notice on the info panel, and
// returned to the caller, but never reach the renderer.
//
// A Controller is not safe for concurrent use. Callers serialize access.
package controller

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"netcanvas/internal/codec"
	"netcanvas/internal/domain"
	"netcanvas/internal/render"
)

// DefaultMinSeparation is the minimum distance between placed nodes
const DefaultMinSeparation = 60.0

// Options configures a Controller. Zero values select defaults.
type Options struct {
	MinSeparation float64
	MarkerSize    float64
	Logger        *slog.Logger
}

type drag struct {
	id     int
	offset domain.Point
}

// Controller is the interaction state machine for one canvas
type Controller struct {
	graph    *domain.Graph
	renderer render.Renderer
	info     render.InfoPanel
	policy   render.Policy
	minSep   float64
	log      *slog.Logger

	mode       domain.Mode
	pending    int
	hasPending bool
	drag       *drag
	markers    map[int]render.Marker
}

// New creates a controller over an empty graph in navigate mode
func New(renderer render.Renderer, info render.InfoPanel, opts Options) *Controller {
	if opts.MinSeparation <= 0 {
		opts.MinSeparation = DefaultMinSeparation
	}
	if opts.MarkerSize <= 0 {
		opts.MarkerSize = render.DefaultMarkerSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		graph:    domain.NewGraph(),
		renderer: renderer,
		info:     info,
		policy:   render.Policy{MarkerSize: opts.MarkerSize},
		minSep:   opts.MinSeparation,
		log:      opts.Logger,
		mode:     domain.ModeNavigate,
		markers:  make(map[int]render.Marker),
	}
}

// Graph gives read access to the topology. Callers must not mutate it.
func (c *Controller) Graph() *domain.Graph {
	return c.graph
}

// MinSeparation returns the placement distance threshold
func (c *Controller) MinSeparation() float64 {
	return c.minSep
}

// Mode returns the current mode
func (c *Controller) Mode() domain.Mode {
	return c.mode
}

// SetMode switches mode. A real change discards the pending endpoint and
// ends any drag in progress.
func (c *Controller) SetMode(m domain.Mode) {
	if m == c.mode {
		return
	}
	if c.hasPending {
		c.log.Debug("discarding pending endpoint", "node", c.pending, "mode", m)
	}
	c.clearPending()
	c.drag = nil
	c.mode = m
	c.log.Info("mode changed", "mode", m)
}

// Pending returns the first endpoint chosen in connect mode, if any
func (c *Controller) Pending() (int, bool) {
	return c.pending, c.hasPending
}

// Dragging returns the id of the node being dragged, if any
func (c *Controller) Dragging() (int, bool) {
	if c.drag == nil {
		return 0, false
	}
	return c.drag.id, true
}

// Handle interprets one pointer event in the current mode
func (c *Controller) Handle(ev PointerEvent) error {
	switch ev.Kind {
	case EventPress:
		return c.press(ev)
	case EventMove:
		return c.move(ev)
	case EventRelease:
		c.release()
		return nil
	default:
		err := fmt.Errorf("unknown pointer event %q", ev.Kind)
		c.log.Warn("ignoring pointer event", "error", err)
		return err
	}
}

func (c *Controller) press(ev PointerEvent) error {
	if kind, ok := c.mode.PlacementKind(); ok {
		if ev.Target != TargetBackground {
			return nil
		}
		return c.place(kind, ev.Position)
	}

	if ev.Target != TargetMarker {
		return nil
	}

	switch c.mode {
	case domain.ModeConnect:
		return c.selectEndpoint(ev.NodeID)
	case domain.ModeNavigate:
		if err := c.Inspect(ev.NodeID); err != nil {
			return err
		}
		c.beginDrag(ev.NodeID, ev.Position)
	}
	return nil
}

func (c *Controller) place(kind domain.Kind, at domain.Point) error {
	if nearest, dist, ok := c.graph.Nearest(at); ok && dist < c.minSep {
		rejection := &domain.TooCloseRejection{
			At:            at,
			NearestID:     nearest.ID,
			Distance:      dist,
			MinSeparation: c.minSep,
		}
		placementRejectionsTotal.Inc()
		c.notice("too_close", rejection)
		return rejection
	}

	node := domain.NewNode(c.graph.NextID(), kind, at.X, at.Y)
	if err := c.graph.AddNode(node); err != nil {
		c.notice("duplicate_id", err)
		return err
	}
	c.markers[node.ID] = c.renderer.PlaceMarker(node)
	placementsTotal.WithLabelValues(string(kind)).Inc()

	c.log.Info("placed node", "id", node.ID, "kind", kind, "x", at.X, "y", at.Y)
	return nil
}

func (c *Controller) selectEndpoint(id int) error {
	if _, ok := c.graph.Node(id); !ok {
		err := &domain.UnknownNodeError{ID: id}
		c.notice("unknown_node", err)
		return err
	}

	if !c.hasPending {
		c.pending, c.hasPending = id, true
		c.log.Debug("connection started", "from", id)
		return nil
	}

	from := c.pending
	if from == id {
		c.log.Debug("ignoring second press on pending endpoint", "node", id)
		return nil
	}
	c.clearPending()

	if c.graph.Connected(from, id) {
		c.notice("already_connected", fmt.Errorf("nodes %d and %d are already connected", from, id))
		return nil
	}

	if err := c.graph.AddEdge(from, id); err != nil {
		c.notice("unknown_node", err)
		return err
	}
	edgesAddedTotal.Inc()
	c.log.Info("connected nodes", "from", from, "to", id)

	if !c.drawEdge(domain.Edge{A: min(from, id), B: max(from, id)}) {
		// keep the notice on the panel; the edge itself stays
		return nil
	}
	return c.Inspect(id)
}

// Inspect shows the inspection text for node id on the info panel
func (c *Controller) Inspect(id int) error {
	n, ok := c.graph.Node(id)
	if !ok {
		err := &domain.UnknownNodeError{ID: id}
		c.notice("unknown_node", err)
		return err
	}
	c.info.ShowInfo(Describe(n))
	return nil
}

func (c *Controller) beginDrag(id int, at domain.Point) {
	n, _ := c.graph.Node(id)
	c.drag = &drag{id: id, offset: n.Position().Sub(at)}
	c.log.Debug("drag started", "node", id)
}

func (c *Controller) move(ev PointerEvent) error {
	if c.drag == nil {
		return nil
	}

	to := domain.Point{X: ev.Position.X + c.drag.offset.X, Y: ev.Position.Y + c.drag.offset.Y}
	if err := c.graph.MoveNode(c.drag.id, to.X, to.Y); err != nil {
		c.drag = nil
		c.notice("unknown_node", err)
		return err
	}
	if marker, ok := c.markers[c.drag.id]; ok {
		marker.Move(to)
	}
	c.redrawLines()
	return nil
}

func (c *Controller) release() {
	if c.drag == nil {
		return
	}
	c.log.Debug("drag ended", "node", c.drag.id)
	c.drag = nil
}

// Repaint removes every visual and draws all markers and connections from
// the current graph
func (c *Controller) Repaint() {
	c.renderer.ClearAllLines()
	c.renderer.RemoveAllMarkers()
	clear(c.markers)

	for _, n := range c.graph.Nodes() {
		c.markers[n.ID] = c.renderer.PlaceMarker(n)
	}
	for _, e := range c.graph.Edges() {
		c.drawEdge(e)
	}
}

// Load replaces the topology with a decoded document and repaints. On error
// the graph and the canvas are left as they were.
func (c *Controller) Load(r io.Reader, dec codec.Decoder) error {
	if err := dec.Decode(r, c.graph); err != nil {
		loadsTotal.WithLabelValues("error").Inc()
		c.notice("load_failed", err)
		return err
	}
	loadsTotal.WithLabelValues("ok").Inc()

	c.clearPending()
	c.drag = nil
	c.Repaint()
	c.info.ShowEmpty()

	c.log.Info("loaded topology", "format", dec.Format(), "nodes", c.graph.Len(), "edges", len(c.graph.Edges()))
	return nil
}

// Save writes the topology with enc
func (c *Controller) Save(w io.Writer, enc codec.Encoder) error {
	if err := enc.Encode(w, c.graph); err != nil {
		return fmt.Errorf("save %s: %w", enc.Format(), err)
	}
	return nil
}

// redrawLines clears every line and draws each edge from current positions
func (c *Controller) redrawLines() {
	c.renderer.ClearAllLines()
	for _, e := range c.graph.Edges() {
		c.drawEdge(e)
	}
}

// drawEdge draws e with the connection policy and reports whether a line was
// drawn
func (c *Controller) drawEdge(e domain.Edge) bool {
	a, okA := c.graph.Node(e.A)
	b, okB := c.graph.Node(e.B)
	if !okA || !okB {
		return false
	}

	style, err := c.policy.Style(a, b)
	if err != nil {
		c.notice("unknown_connection_kind", err)
		return false
	}
	c.renderer.DrawLine(style.From, style.To, style.Color)
	linesDrawnTotal.Inc()
	return true
}

func (c *Controller) clearPending() {
	c.pending, c.hasPending = 0, false
}

// notice reports a recoverable failure to the log and the info panel
func (c *Controller) notice(reason string, err error) {
	noticesTotal.WithLabelValues(reason).Inc()

	var rejection *domain.TooCloseRejection
	if errors.As(err, &rejection) {
		c.log.Warn("placement rejected", "error", err)
	} else {
		c.log.Warn("operation refused", "reason", reason, "error", err)
	}
	c.info.ShowInfo("Notice: " + err.Error())
}

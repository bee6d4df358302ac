package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"netcanvas/internal/codec"
	"netcanvas/internal/controller"
	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
	"netcanvas/internal/service"
)

// maxDocumentBytes bounds uploaded topology documents and scan reports
const maxDocumentBytes = 8 << 20

// maxRequestBytes bounds small JSON requests such as pointer events
const maxRequestBytes = 4 << 10

// ErrorResponse is the JSON body of every error
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ModeRequest changes the interaction mode
type ModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// ModeResponse reports the current mode and the available ones
type ModeResponse struct {
	Mode  domain.Mode   `json:"mode"`
	Modes []domain.Mode `json:"modes"`
}

// CanvasHandler handles the canvas API
type CanvasHandler struct {
	ws       *service.Workspace
	validate *validator.Validate
	log      *slog.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(ws *service.Workspace, log *slog.Logger) *CanvasHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CanvasHandler{
		ws:       ws,
		validate: validator.New(),
		log:      log,
	}
}

// Register adds the canvas routes to mux
func (h *CanvasHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/pointer", h.Pointer)
	mux.HandleFunc("GET /api/mode", h.GetMode)
	mux.HandleFunc("PUT /api/mode", h.SetMode)

	mux.HandleFunc("GET /api/graph", h.GetGraph)
	mux.HandleFunc("GET /api/nodes/{id}", h.GetNode)

	mux.HandleFunc("GET /api/export/json", h.ExportJSON)
	mux.HandleFunc("GET /api/export/yaml", h.ExportYAML)
	mux.HandleFunc("GET /api/export/png", h.ExportPNG)

	mux.HandleFunc("POST /api/import/json", h.ImportJSON)
	mux.HandleFunc("POST /api/import/yaml", h.ImportYAML)
	mux.HandleFunc("POST /api/import/nmap", h.ImportNmap)

	mux.HandleFunc("GET /api/snapshots", h.ListSnapshots)
	mux.HandleFunc("PUT /api/snapshots/{name}", h.SaveSnapshot)
	mux.HandleFunc("POST /api/snapshots/{name}/load", h.LoadSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{name}", h.DeleteSnapshot)
}

// Pointer feeds a pointer event into the workspace and returns the new state
func (h *CanvasHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var ev controller.PointerEvent
	if !decodeRequest(w, r, &ev) {
		return
	}
	if err := h.validate.Struct(ev); err != nil {
		writeError(w, "Invalid pointer event", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.ws.HandlePointer(ev); err != nil {
		h.writeDomainError(w, "Pointer event refused", err)
		return
	}

	writeJSON(w, h.ws.State(), http.StatusOK)
}

// GetMode returns the current mode
func (h *CanvasHandler) GetMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ModeResponse{Mode: h.ws.Mode(), Modes: domain.Modes}, http.StatusOK)
}

// SetMode switches the interaction mode
func (h *CanvasHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, "Mode required", err.Error(), http.StatusBadRequest)
		return
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		writeError(w, "Invalid mode", err.Error(), http.StatusBadRequest)
		return
	}

	h.ws.SetMode(mode)
	writeJSON(w, ModeResponse{Mode: mode, Modes: domain.Modes}, http.StatusOK)
}

// GetGraph returns the topology, mode and pending endpoint
func (h *CanvasHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ws.State(), http.StatusOK)
}

// GetNode returns one node with its inspection text
func (h *CanvasHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, "Invalid node ID", "Node ID must be a positive integer", http.StatusBadRequest)
		return
	}

	detail, err := h.ws.Node(id)
	if err != nil {
		h.writeDomainError(w, "Failed to get node", err)
		return
	}

	writeJSON(w, detail, http.StatusOK)
}

// ExportJSON downloads the topology as network_graph.json
func (h *CanvasHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	h.export(w, codec.NewJSONCodec(h.log), "application/json", codec.DefaultFileName)
}

// ExportYAML downloads the topology as YAML
func (h *CanvasHandler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	h.export(w, codec.NewYAMLCodec(h.log), "application/x-yaml", "network_graph.yaml")
}

// ExportPNG downloads a raster image of the canvas
func (h *CanvasHandler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.ws.ExportPNG(&buf); err != nil {
		h.log.Error("failed to render PNG", "error", err)
		writeError(w, "Failed to render PNG", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", "attachment; filename=network_graph.png")
	w.Write(buf.Bytes())
}

func (h *CanvasHandler) export(w http.ResponseWriter, enc codec.Encoder, contentType, filename string) {
	var buf bytes.Buffer
	if err := h.ws.Export(&buf, enc); err != nil {
		h.log.Error("failed to export", "format", enc.Format(), "error", err)
		writeError(w, "Failed to export "+enc.Format(), err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(buf.Bytes())
}

// ImportJSON replaces the topology with an uploaded JSON document
func (h *CanvasHandler) ImportJSON(w http.ResponseWriter, r *http.Request) {
	h.importDocument(w, r, codec.NewJSONCodec(h.log))
}

// ImportYAML replaces the topology with an uploaded YAML document
func (h *CanvasHandler) ImportYAML(w http.ResponseWriter, r *http.Request) {
	h.importDocument(w, r, codec.NewYAMLCodec(h.log))
}

// ImportNmap seeds the topology from an uploaded nmap XML report
func (h *CanvasHandler) ImportNmap(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := h.ws.ImportScan(body); err != nil {
		h.writeDomainError(w, "Failed to import scan", err)
		return
	}
	writeJSON(w, h.ws.State(), http.StatusOK)
}

func (h *CanvasHandler) importDocument(w http.ResponseWriter, r *http.Request, dec codec.Decoder) {
	body := http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	if err := h.ws.Import(body, dec); err != nil {
		h.writeDomainError(w, "Failed to import "+dec.Format(), err)
		return
	}
	writeJSON(w, h.ws.State(), http.StatusOK)
}

// ListSnapshots returns saved snapshot summaries
func (h *CanvasHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.ws.ListSnapshots(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list snapshots", err)
		return
	}
	writeJSON(w, snapshots, http.StatusOK)
}

// SaveSnapshot stores the current topology under the path name
func (h *CanvasHandler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	name, ok := h.snapshotName(w, r)
	if !ok {
		return
	}

	snap, err := h.ws.SaveSnapshot(r.Context(), name)
	if err != nil {
		h.writeDomainError(w, "Failed to save snapshot", err)
		return
	}
	writeJSON(w, snap, http.StatusOK)
}

// LoadSnapshot replaces the topology with a saved snapshot
func (h *CanvasHandler) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	name, ok := h.snapshotName(w, r)
	if !ok {
		return
	}

	if err := h.ws.LoadSnapshot(r.Context(), name); err != nil {
		h.writeDomainError(w, "Failed to load snapshot", err)
		return
	}
	writeJSON(w, h.ws.State(), http.StatusOK)
}

// DeleteSnapshot removes a saved snapshot
func (h *CanvasHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	name, ok := h.snapshotName(w, r)
	if !ok {
		return
	}

	if err := h.ws.DeleteSnapshot(r.Context(), name); err != nil {
		h.writeDomainError(w, "Failed to delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CanvasHandler) snapshotName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("name")
	if err := h.validate.Var(name, "required,max=64,printascii"); err != nil {
		writeError(w, "Invalid snapshot name", err.Error(), http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// writeDomainError maps typed errors to HTTP status codes
func (h *CanvasHandler) writeDomainError(w http.ResponseWriter, msg string, err error) {
	var (
		tooClose  *domain.TooCloseRejection
		unknown   *domain.UnknownNodeError
		malformed *domain.MalformedDataError
		maxBytes  *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooClose):
		writeError(w, "Placement rejected", err.Error(), http.StatusConflict)
	case errors.As(err, &unknown), errors.Is(err, repository.ErrNotFound):
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.As(err, &maxBytes):
		writeError(w, "Document too large", err.Error(), http.StatusRequestEntityTooLarge)
	case errors.As(err, &malformed):
		writeError(w, "Malformed document", err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNoSnapshotStore):
		writeError(w, "Snapshots unavailable", err.Error(), http.StatusServiceUnavailable)
	default:
		h.log.Error(msg, "error", err)
		writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

// Helper methods

// decodeRequest reads a bounded JSON body into v, writing the error response
// itself when it fails
func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, "Request too large", err.Error(), http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON", "error", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Package handler implements the HTTP API for netcanvas.
//
// CanvasHandler exposes one shared Workspace: pointer events and mode
// changes go in, topology state and exported documents come out. The
// browser receives render instructions separately over the /events SSE
// stream served by the hub package.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure.
//
// # Middleware
//
// Chain composes Recover, CORS and Logger around the mux. Logger keeps the
// wrapped writer flushable so SSE streams pass through it.
package handler

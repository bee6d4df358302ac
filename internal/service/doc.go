// Package service coordinates the interactive canvas for the HTTP server and
// the CLI.
//
// # Workspace
//
// Workspace owns one controller and serializes every entry into it: pointer
// events, mode changes, imports, exports and snapshot operations. Its
// renderer is a tee of an in-memory raster canvas (for PNG export and the
// info panel text) and a StreamRenderer.
//
// # Event System
//
// StreamRenderer publishes every render instruction on the EventBus
// (marker_placed, line_drawn, lines_cleared and so on). The server bridges
// the bus to the SSE hub so browsers replay the same drawing on their own
// canvas. Slow subscribers are skipped rather than blocking the controller.
package service

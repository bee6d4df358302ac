// Package domain defines the core domain types for the netcanvas topology editor.
//
// This package contains the entities and value objects that make up a small
// network topology drawn on a canvas: routers and PCs, the symmetric links
// between them, and the interaction mode that decides what a pointer action
// means.
//
// # Core Types
//
// Node is a router or a PC placed on the canvas. Its Kind is a tag that
// drives connection colouring and iconography.
//
// Graph owns the nodes and their adjacency. Edges are not stored separately;
// an edge exists when two nodes list each other as neighbors.
//
// Mode is the current interpretation context for pointer input.
//
// # Errors
//
// DuplicateIDError, UnknownNodeError, UnknownConnectionKindError,
// MalformedDataError and TooCloseRejection are typed so callers can match
// them with errors.As. None of them is fatal.
//
// # Design Principles
//
// - No rendering, storage or transport knowledge
// - Single-threaded; callers serialize access
// - Invariants (symmetry, connection count, no dangling ids) hold after every
//   exported operation
package domain

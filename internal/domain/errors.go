package domain

import "fmt"

// DuplicateIDError is returned when a node id is already present in the graph
type DuplicateIDError struct {
	ID int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("node %d already exists", e.ID)
}

// UnknownNodeError is returned when an edge references a node that is not in the graph
type UnknownNodeError struct {
	ID int
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %d does not exist", e.ID)
}

// UnknownConnectionKindError is returned when a connection between two kinds cannot be classified
type UnknownConnectionKindError struct {
	A, B Kind
}

func (e *UnknownConnectionKindError) Error() string {
	return fmt.Sprintf("no connection style for %q-%q", e.A, e.B)
}

// MalformedDataError is returned when a topology document cannot be parsed or has the wrong shape
type MalformedDataError struct {
	Err error
}

func (e *MalformedDataError) Error() string {
	return fmt.Sprintf("malformed topology data: %v", e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// TooCloseRejection reports a placement refused because an existing node is
// within the minimum separation distance. It is a policy refusal, not a failure.
type TooCloseRejection struct {
	At            Point
	NearestID     int
	Distance      float64
	MinSeparation float64
}

func (e *TooCloseRejection) Error() string {
	return fmt.Sprintf("position (%.2f, %.2f) is %.2f from node %d (minimum %.0f)",
		e.At.X, e.At.Y, e.Distance, e.NearestID, e.MinSeparation)
}

package hypergraph

import "github.com/pkg/errors"

// ErrInvalidPin is returned by Build when a net references a vertex id
// outside [0, numNodes).
var ErrInvalidPin = errors.New("hypergraph: pin index out of range")

// ErrEmptyNet is returned by Build when a net has zero pins.
var ErrEmptyNet = errors.New("hypergraph: net has no pins")

// ErrNegativeWeight is returned by Build when a supplied vertex or net
// weight is negative.
var ErrNegativeWeight = errors.New("hypergraph: negative weight")

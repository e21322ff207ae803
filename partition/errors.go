package partition

import "github.com/pkg/errors"

// ErrAlreadyAssigned is returned by SetOnlyNodePart when the vertex already
// carries a block id.
var ErrAlreadyAssigned = errors.New("partition: vertex already assigned a part")

// ErrNotInitialized reports that InitializePartition has not run. No
// operation of this package returns it; none checks for initialization.
var ErrNotInitialized = errors.New("partition: partition not initialized")

// ErrGainCacheNotInitialized reports that GainCache.Init has not completed
// a full scan. Gain-cache queries do not return it; before Init they return
// zero values.
var ErrGainCacheNotInitialized = errors.New("partition: gain cache not initialized")

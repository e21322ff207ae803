package hypergraph

import "fmt"

// HypernodeID identifies a vertex of a Hypergraph.
type HypernodeID uint32

// HyperedgeID identifies a net (hyperedge) of a Hypergraph.
type HyperedgeID uint32

// CommunityID labels a group of hypernodes. Labels are carried through
// coarsening but do not restrict which vertices are matched.
type CommunityID int32

// Weight is the unit of vertex and net weight, and of the partitioning
// objective (cut / km1).
type Weight int64

// InvalidNode is the sentinel HypernodeID used where no vertex applies.
const InvalidNode HypernodeID = 1<<32 - 1

// InvalidEdge is the sentinel HyperedgeID used where no net applies.
const InvalidEdge HyperedgeID = 1<<32 - 1

func (u HypernodeID) String() string { return fmt.Sprintf("v%d", uint32(u)) }
func (e HyperedgeID) String() string { return fmt.Sprintf("e%d", uint32(e)) }

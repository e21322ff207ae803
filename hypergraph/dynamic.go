package hypergraph

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/internal/spin"
)

// Dynamic is a mutable hypergraph supporting Contract/Uncontract, used by
// n-level coarsening. Unlike Static, its pin and
// incident-net lists are independently growable per net/vertex rather than
// packed into one shared arena: contraction only ever shrinks a net's pin
// list or swaps a single slot, and only ever grows a vertex's incident list
// by appends that are reversed in strict LIFO order by batch uncontraction,
// so a plain slice-per-entity representation gives the same amortized
// behavior as a hand-rolled arena without one. This is a deliberate
// departure from Static's single-slab CSR layout.
type Dynamic struct {
	numNodes int
	numEdges int

	nodeWeight    []Weight
	nodeCommunity []CommunityID
	nodeEnabled   []atomic.Bool

	edgeWeight  []Weight
	edgeEnabled []atomic.Bool

	pins     [][]HypernodeID
	incident [][]HyperedgeID

	// netLock/nodeLock are per-entity CAS spinlocks (0/1) serializing
	// structural mutation of a given net's pin list or a given vertex's
	// incident list, mirroring the per-net ownership flag used by
	// partition.State.ChangeNodePart.
	netLock  []int32
	nodeLock []int32

	forest *Forest
}

// NewDynamic builds a Dynamic hypergraph by copying the pin/incident
// structure of a Static hypergraph (the finest graph, for n-level mode).
func NewDynamic(g *Static) *Dynamic {
	var d = &Dynamic{
		numNodes:      g.numNodes,
		numEdges:      g.numEdges,
		nodeWeight:    append([]Weight(nil), g.nodeWeight...),
		nodeCommunity: append([]CommunityID(nil), g.nodeCommunity...),
		nodeEnabled:   make([]atomic.Bool, g.numNodes),
		edgeWeight:    append([]Weight(nil), g.edgeWeight...),
		edgeEnabled:   make([]atomic.Bool, g.numEdges),
		pins:          make([][]HypernodeID, g.numEdges),
		incident:      make([][]HyperedgeID, g.numNodes),
		netLock:       make([]int32, g.numEdges),
		nodeLock:      make([]int32, g.numNodes),
		forest:        NewForest(g.numNodes),
	}
	for u := 0; u < g.numNodes; u++ {
		d.nodeEnabled[u].Store(true)
		d.incident[u] = append([]HyperedgeID(nil), g.IncidentNets(HypernodeID(u))...)
	}
	for e := 0; e < g.numEdges; e++ {
		d.edgeEnabled[e].Store(true)
		d.pins[e] = append([]HypernodeID(nil), g.Pins(HyperedgeID(e))...)
	}
	return d
}

var _ Graph = (*Dynamic)(nil)

func (d *Dynamic) NumNodes() int { return d.numNodes }
func (d *Dynamic) NumEdges() int { return d.numEdges }

func (d *Dynamic) NodeEnabled(u HypernodeID) bool { return d.nodeEnabled[u].Load() }
func (d *Dynamic) EdgeEnabled(e HyperedgeID) bool  { return d.edgeEnabled[e].Load() }

func (d *Dynamic) NodeWeight(u HypernodeID) Weight { return d.nodeWeight[u] }
func (d *Dynamic) EdgeWeight(e HyperedgeID) Weight { return d.edgeWeight[e] }

func (d *Dynamic) NodeDegree(u HypernodeID) int { return len(d.incident[u]) }
func (d *Dynamic) EdgeSize(e HyperedgeID) int    { return len(d.pins[e]) }

func (d *Dynamic) TotalWeight() Weight {
	var w Weight
	for u := 0; u < d.numNodes; u++ {
		if d.nodeEnabled[u].Load() {
			w += d.nodeWeight[u]
		}
	}
	return w
}

func (d *Dynamic) Pins(e HyperedgeID) []HypernodeID         { return d.pins[e] }
func (d *Dynamic) IncidentNets(u HypernodeID) []HyperedgeID { return d.incident[u] }

func (d *Dynamic) Community(u HypernodeID) CommunityID        { return d.nodeCommunity[u] }
func (d *Dynamic) SetCommunity(u HypernodeID, c CommunityID) { d.nodeCommunity[u] = c }

func (d *Dynamic) DisableEdge(e HyperedgeID) { d.edgeEnabled[e].Store(false) }
func (d *Dynamic) EnableEdge(e HyperedgeID)  { d.edgeEnabled[e].Store(true) }

// AddEdgeWeight is used by parallel-net detection to fold a removed net's
// weight into the survivor it duplicates.
func (d *Dynamic) AddEdgeWeight(e HyperedgeID, w Weight) { d.edgeWeight[e] += w }

// EdgeHash computes e's current order-independent hash over its live pins.
func (d *Dynamic) EdgeHash(e HyperedgeID) uint64 {
	var h uint64
	for _, p := range d.pins[e] {
		h += pinHash(p)
	}
	return h
}

// Forest returns the contraction forest being built (during coarsening) or
// consumed (during n-level uncoarsening).
func (d *Dynamic) Forest() *Forest { return d.forest }

// Contract merges v into u: u absorbs v's weight, every net incident to v
// is updated per one of the two cases recorded in NetCase, v is disabled, and a Memento
// capturing the reversal is recorded on the Forest. Contract must not be
// called concurrently for two Mementos sharing either u or v.
func (d *Dynamic) Contract(u, v HypernodeID) (Memento, error) {
	if u == v {
		return Memento{}, errors.New("hypergraph: cannot contract a vertex into itself")
	}
	if !d.nodeEnabled[u].Load() || !d.nodeEnabled[v].Load() {
		return Memento{}, errors.New("hypergraph: contraction of a disabled vertex")
	}

	var nets = append([]HyperedgeID(nil), d.incident[v]...)
	var cases = make([]NetCase, 0, len(nets))

	for _, e := range nets {
		spin.Lock(d.netLock, int(e))
		var both = containsNode(d.pins[e], u)
		if both {
			d.pins[e] = removeNode(d.pins[e], v)
		} else {
			replaceNode(d.pins[e], v, u)
		}
		spin.Unlock(d.netLock, int(e))

		if !both {
			spin.Lock(d.nodeLock, int(u))
			d.incident[u] = append(d.incident[u], e)
			spin.Unlock(d.nodeLock, int(u))
		}
		cases = append(cases, NetCase{Edge: e, BothIncident: both})
	}

	d.nodeWeight[u] += d.nodeWeight[v]
	d.nodeEnabled[v].Store(false)

	return d.forest.RecordContraction(u, v, cases), nil
}

// Uncontract reverses a Memento produced by Contract, restoring v (and its
// pin/incident-list membership) to the state it held just before
// contraction. Batches of vertex-disjoint Mementos (hypergraph.Batch) may be
// uncontracted concurrently; within a single vertex's history, Mementos must
// be uncontracted in the reverse of their Contract order.
func (d *Dynamic) Uncontract(m Memento) {
	d.nodeWeight[m.U] -= d.nodeWeight[m.V]
	d.nodeEnabled[m.V].Store(true)

	for _, nc := range m.Nets {
		spin.Lock(d.netLock, int(nc.Edge))
		if nc.BothIncident {
			d.pins[nc.Edge] = append(d.pins[nc.Edge], m.V)
		} else {
			replaceNode(d.pins[nc.Edge], m.U, m.V)
		}
		spin.Unlock(d.netLock, int(nc.Edge))

		if !nc.BothIncident {
			spin.Lock(d.nodeLock, int(m.U))
			d.incident[m.U] = d.incident[m.U][:len(d.incident[m.U])-1]
			spin.Unlock(d.nodeLock, int(m.U))
		}
	}
}

func containsNode(s []HypernodeID, x HypernodeID) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}

func removeNode(s []HypernodeID, x HypernodeID) []HypernodeID {
	for i, v := range s {
		if v == x {
			s[i] = s[len(s)-1]
			return s[:len(s)-1]
		}
	}
	return s
}

func replaceNode(s []HypernodeID, old, new HypernodeID) {
	for i, v := range s {
		if v == old {
			s[i] = new
			return
		}
	}
}

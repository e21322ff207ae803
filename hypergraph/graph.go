package hypergraph

// Graph is the narrow capability set that partition state, coarsening, and
// refinement operate against. It is implemented by both Static (an
// immutable, arena-backed CSR hypergraph used for each multilevel Level) and
// Dynamic (a mutable, contraction/uncontraction-aware hypergraph used for
// n-level coarsening), replacing template-based static polymorphism with a
// single interface that both variants satisfy.
type Graph interface {
	// NumNodes and NumEdges return the initial (maximum) id range; disabled
	// slots remain addressable but are skipped by callers via NodeEnabled
	// and EdgeEnabled.
	NumNodes() int
	NumEdges() int

	NodeEnabled(u HypernodeID) bool
	EdgeEnabled(e HyperedgeID) bool

	NodeWeight(u HypernodeID) Weight
	EdgeWeight(e HyperedgeID) Weight

	// NodeDegree returns |incident_nets(u)|.
	NodeDegree(u HypernodeID) int
	// EdgeSize returns |pins(e)|.
	EdgeSize(e HyperedgeID) int

	// TotalWeight is the sum of weight over enabled nodes.
	TotalWeight() Weight

	// Pins returns the (live) pin list of e. The caller must not retain the
	// slice past the next mutating call against a Dynamic graph.
	Pins(e HyperedgeID) []HypernodeID
	// IncidentNets returns the (live) incident-net list of u. Same retention
	// caveat as Pins.
	IncidentNets(u HypernodeID) []HyperedgeID

	Community(u HypernodeID) CommunityID
}

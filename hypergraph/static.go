package hypergraph

import (
	"sort"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/micropuma/mt-kahypar-leon/internal/par"
)

// Static is an immutable, arena-backed CSR hypergraph: a flat pin array
// shared by all nets, and a flat incident-net array shared by all vertices,
// both populated by a single parallel prefix-sum build. Static never
// disables entities; it is rebuilt wholesale for each multilevel coarsening
// Level rather than mutated in place.
type Static struct {
	numNodes int
	numEdges int

	totalWeight Weight

	nodeWeight    []Weight
	nodeCommunity []CommunityID

	edgeWeight []Weight
	edgeHash   []uint64

	pinsFirst []uint32
	flatPins  []HypernodeID

	incidentFirst []uint32
	flatIncident  []HyperedgeID
}

var _ Graph = (*Static)(nil)

// BuildOptions customizes Build's validation and output.
type BuildOptions struct {
	// SortIncidentNets requests that each vertex's incident-net list be
	// sorted by HyperedgeID for deterministic iteration order.
	SortIncidentNets bool
	// Workers bounds the number of goroutines used during construction; 0
	// selects GOMAXPROCS.
	Workers int
}

// Build constructs a Static hypergraph from an edge vector (one []HypernodeID
// of pins per net), optional per-net weights (nil implies weight 1 for every
// net), and optional per-vertex weights (nil implies weight 1 for every
// vertex).
func Build(numNodes int, edges [][]HypernodeID, edgeWeights []Weight, nodeWeights []Weight, opts BuildOptions) (*Static, error) {
	var numEdges = len(edges)

	if err := validateEdges(numNodes, edges); err != nil {
		return nil, err
	}
	if nodeWeights != nil {
		if len(nodeWeights) != numNodes {
			return nil, errors.Errorf("hypergraph: expected %d node weights, got %d", numNodes, len(nodeWeights))
		}
		for _, w := range nodeWeights {
			if w < 0 {
				return nil, ErrNegativeWeight
			}
		}
	}
	if edgeWeights != nil {
		if len(edgeWeights) != numEdges {
			return nil, errors.Errorf("hypergraph: expected %d edge weights, got %d", numEdges, len(edgeWeights))
		}
		for _, w := range edgeWeights {
			if w < 0 {
				return nil, ErrNegativeWeight
			}
		}
	}

	var g = &Static{
		numNodes:      numNodes,
		numEdges:      numEdges,
		nodeWeight:    uniformWeights(nodeWeights, numNodes),
		nodeCommunity: make([]CommunityID, numNodes),
		edgeWeight:    uniformWeights(edgeWeights, numEdges),
		edgeHash:      make([]uint64, numEdges),
		pinsFirst:     make([]uint32, numEdges+1),
		incidentFirst: make([]uint32, numNodes+1),
	}

	// Step 1: pins-per-net (just len(edges[e])) and thread-local degree
	// histograms, aggregated into a single degree array.
	var degree = make([]int32, numNodes)
	var workers = par.Workers(opts.Workers)

	if err := aggregateDegrees(edges, degree, workers); err != nil {
		return nil, err
	}

	// Step 2: prefix sums -> pinsFirst, incidentFirst.
	var totalPins uint32
	for e := 0; e < numEdges; e++ {
		g.pinsFirst[e] = totalPins
		totalPins += uint32(len(edges[e]))
	}
	g.pinsFirst[numEdges] = totalPins

	var totalIncident uint32
	for v := 0; v < numNodes; v++ {
		g.incidentFirst[v] = totalIncident
		totalIncident += uint32(degree[v])
	}
	g.incidentFirst[numNodes] = totalIncident

	g.flatPins = make([]HypernodeID, totalPins)
	g.flatIncident = make([]HyperedgeID, totalIncident)

	// Step 3: write pins, hashes, and incident appends via atomic decrement.
	var cursor = make([]atomic.Int32, numNodes)
	for v := 0; v < numNodes; v++ {
		cursor[v].Store(degree[v])
	}

	if err := par.ForEach(numEdges, workers, func(ei int) error {
		var e = HyperedgeID(ei)
		var dst = g.flatPins[g.pinsFirst[ei]:g.pinsFirst[ei+1]]
		copy(dst, edges[ei])

		var hash uint64
		for _, p := range dst {
			hash += pinHash(p)

			var c = cursor[p].Add(-1)
			var idx = g.incidentFirst[p] + uint32(c)
			g.flatIncident[idx] = e
		}
		g.edgeHash[ei] = hash
		return nil
	}); err != nil {
		return nil, err
	}

	// Step 4: optional deterministic ordering of incident lists.
	if opts.SortIncidentNets {
		if err := par.ForEach(numNodes, workers, func(v int) error {
			var s = g.flatIncident[g.incidentFirst[v]:g.incidentFirst[v+1]]
			sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
			return nil
		}); err != nil {
			return nil, err
		}
	}

	for _, w := range g.nodeWeight {
		g.totalWeight += w
	}
	return g, nil
}

func validateEdges(numNodes int, edges [][]HypernodeID) error {
	for _, pins := range edges {
		if len(pins) == 0 {
			return ErrEmptyNet
		}
		for _, p := range pins {
			if int(p) < 0 || int(p) >= numNodes {
				return ErrInvalidPin
			}
		}
	}
	return nil
}

func aggregateDegrees(edges [][]HypernodeID, degree []int32, workers int) error {
	type chunk struct {
		begin, end int
		local      []int32
	}
	var numEdges = len(edges)
	if numEdges == 0 {
		return nil
	}

	var results []chunk
	var chunkSize = (numEdges + workers - 1) / workers
	for b := 0; b < numEdges; b += chunkSize {
		e := b + chunkSize
		if e > numEdges {
			e = numEdges
		}
		results = append(results, chunk{begin: b, end: e, local: make([]int32, len(degree))})
	}

	var err = par.ForEach(len(results), workers, func(i int) error {
		var c = &results[i]
		for ei := c.begin; ei < c.end; ei++ {
			for _, p := range edges[ei] {
				c.local[p]++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, c := range results {
		for v, n := range c.local {
			degree[v] += n
		}
	}
	return nil
}

// pinHash maps a HypernodeID to a well-mixed 64-bit value so that an
// order-independent net hash (the sum of per-pin hashes) rarely collides
// between distinct pin sets. Uses the splitmix64 finalizer.
func pinHash(p HypernodeID) uint64 {
	var z = uint64(p) + 1 + 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func uniformWeights(w []Weight, n int) []Weight {
	if w != nil {
		var out = make([]Weight, n)
		copy(out, w)
		return out
	}
	var out = make([]Weight, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func (g *Static) NumNodes() int { return g.numNodes }
func (g *Static) NumEdges() int { return g.numEdges }

func (g *Static) NodeEnabled(HypernodeID) bool { return true }
func (g *Static) EdgeEnabled(HyperedgeID) bool  { return true }

func (g *Static) NodeWeight(u HypernodeID) Weight { return g.nodeWeight[u] }
func (g *Static) EdgeWeight(e HyperedgeID) Weight { return g.edgeWeight[e] }

func (g *Static) NodeDegree(u HypernodeID) int {
	return int(g.incidentFirst[u+1] - g.incidentFirst[u])
}
func (g *Static) EdgeSize(e HyperedgeID) int {
	return int(g.pinsFirst[e+1] - g.pinsFirst[e])
}

func (g *Static) TotalWeight() Weight { return g.totalWeight }

func (g *Static) Pins(e HyperedgeID) []HypernodeID {
	return g.flatPins[g.pinsFirst[e]:g.pinsFirst[e+1]]
}
func (g *Static) IncidentNets(u HypernodeID) []HyperedgeID {
	return g.flatIncident[g.incidentFirst[u]:g.incidentFirst[u+1]]
}

func (g *Static) Community(u HypernodeID) CommunityID { return g.nodeCommunity[u] }

// SetCommunity assigns a community label to u. Coarsening carries labels
// from fine to coarse vertices; the rating function does not consult them.
func (g *Static) SetCommunity(u HypernodeID, c CommunityID) { g.nodeCommunity[u] = c }

// EdgeHash returns net e's order-independent hash (sum of per-pin hashes),
// used to cheaply detect candidate parallel (duplicate pin-set) nets.
func (g *Static) EdgeHash(e HyperedgeID) uint64 { return g.edgeHash[e] }

// Package maxflow implements a sparse push/relabel maximum-flow solver over
// an abstract Network: a set of nodes and, for each node, a possibly paged
// sequence of outgoing Arcs computed on demand. initialpartitioning/flow.go
// uses it to solve the aggregate "how much weight moves from block p to
// block q" problem when rebalancing an initial assignment; the actual
// per-vertex moves that realize a solved flow are chosen afterward by a
// separate deterministic pass, not by the solver itself.
package maxflow

import (
	"container/heap"
	"math"
)

type (
	// Rate is the unit of flow velocity.
	Rate int64
	// Height of a node in the push/relabel sense (distance-to-sink label).
	Height int32
	// NodeID indexes a node in the network.
	NodeID int32
	// PageToken lets a Network hand out its Arcs in more than one batch.
	PageToken int32

	flowID int32
)

const (
	// PageInitial is the first page requested for a node's Arcs.
	PageInitial PageToken = 0
	// PageEOF is returned by Network.Arcs to signal no further pages.
	PageEOF PageToken = math.MaxInt32

	// SourceID is the node all flow originates from.
	SourceID NodeID = 0
	// SinkID is the node all flow is ultimately directed to.
	SinkID NodeID = 1

	maxHeight Height = math.MaxInt32
)

// Arc is a directed edge from the current node to To, with the given
// maximum flow capacity.
type Arc struct {
	To       NodeID
	Capacity Rate
	// PushFront prefers this Arc's residual be drained last: Flows created
	// with PushFront are examined after non-PushFront ones during reverse
	// (LIFO) residual walks, letting a caller bias which adjacency survives
	// longest under pressure.
	PushFront bool
}

// Network is the abstract flow graph a solver runs over. Arcs may be called
// more than once for a given (NodeID, PageToken) pair.
type Network interface {
	// Nodes is the total node count, including Source and Sink.
	Nodes() int
	// InitialHeight seeds a node's height; a good guess (distance to sink)
	// speeds convergence but zero is always correct.
	InitialHeight(NodeID) Height
	// Arcs returns one page of a node's outgoing Arcs plus the token for
	// the next page, or PageEOF once exhausted.
	Arcs(*MaxFlow, NodeID, PageToken) ([]Arc, PageToken)
}

// Adjacency is a directed edge between two nodes.
type Adjacency struct {
	From, To NodeID
}

// Flow is a tracked Adjacency carrying a non-zero Rate.
type Flow struct {
	Adjacency
	Rate Rate

	fwdPrev, fwdNext flowID
	revPrev, revNext flowID
}

type node struct {
	height, nextHeight Height
	excess             Rate

	fwdHead, fwdTail flowID
	revHead, revTail flowID

	dischargePage PageToken
	dischargeInd  int
}

// MaxFlow holds the solver state and, once FindMaxFlow returns, the
// resulting maximum flow.
type MaxFlow struct {
	nodes     []node
	active    []NodeID
	flows     []Flow
	freeFlows []flowID

	dischargeIdx []flowID
}

func newMaxFlow(network Network) *MaxFlow {
	var size = network.Nodes()

	var mf = &MaxFlow{
		nodes:        make([]node, size),
		active:       []NodeID{SourceID},
		flows:        []Flow{{}}, // index 0 is a zero-valued sentinel
		dischargeIdx: make([]flowID, size),
	}

	for i := range mf.nodes {
		mf.nodes[i].nextHeight = maxHeight
	}
	mf.nodes[SourceID].excess = math.MaxInt32
	mf.nodes[SourceID].height = Height(size)

	for id := SinkID + 1; id != NodeID(size); id++ {
		mf.nodes[id].height = network.InitialHeight(id)
	}
	return mf
}

// FindMaxFlow solves for the maximum flow of network.
func FindMaxFlow(network Network) *MaxFlow {
	var mf = newMaxFlow(network)
	for {
		id, ok := mf.popActiveNode()
		if !ok {
			return mf
		}
		mf.discharge(id, network)
	}
}

// RelativeHeight returns a node's height relative to the source, which a
// Network implementation can use to relax Arc capacities as the solver
// builds pressure against an infeasible "garden path" assignment.
func (mf *MaxFlow) RelativeHeight(nid NodeID) Height {
	return mf.nodes[nid].height - mf.nodes[SourceID].height
}

// Flows invokes cb for every Flow currently outgoing from nodeID.
func (mf *MaxFlow) Flows(nodeID NodeID, cb func(Flow)) {
	for id := mf.nodes[nodeID].fwdHead; id != 0; id = mf.flows[id].fwdNext {
		cb(mf.flows[id])
	}
}

func (mf *MaxFlow) discharge(nid NodeID, network Network) {
	var n = &mf.nodes[nid]

	for fid := n.fwdHead; fid != 0; fid = mf.flows[fid].fwdNext {
		mf.dischargeIdx[mf.flows[fid].To] = fid
	}
	defer func() {
		for fid := n.fwdHead; fid != 0; fid = mf.flows[fid].fwdNext {
			mf.dischargeIdx[mf.flows[fid].To] = 0
		}
	}()

	var (
		arcs     []Arc
		arcShift int
		nextPage PageToken
		fid      flowID
	)

	if n.dischargePage != PageEOF {
		if arcs, nextPage = network.Arcs(mf, nid, n.dischargePage); len(arcs) != 0 {
			arcShift = int(nid) % len(arcs)
		}
	} else {
		fid = n.revTail
	}

	for {
		if n.dischargePage != PageEOF {
			if n.dischargeInd != len(arcs) {
				goto PushArc
			}
			goto NextPage
		} else if fid != 0 {
			goto PushResidual
		} else {
			goto Relabel
		}

	NextPage:
		n.dischargePage, n.dischargeInd = nextPage, 0
		if n.dischargePage != PageEOF {
			if arcs, nextPage = network.Arcs(mf, nid, n.dischargePage); len(arcs) != 0 {
				arcShift = int(nid) % len(arcs)
			}
		} else {
			fid = n.revTail
		}
		continue

	PushArc:
		{
			var a = n.dischargeInd + arcShift
			if a >= len(arcs) {
				a -= len(arcs)
			}
			fid = mf.dischargeIdx[arcs[a].To]

			if mf.flows[fid].Rate >= arcs[a].Capacity || !mf.constrainHeight(n, arcs[a].To) {
				n.dischargeInd++
				continue
			}
			if fid == 0 {
				fid = mf.addFlow(Adjacency{From: nid, To: arcs[a].To}, arcs[a].PushFront)
				mf.dischargeIdx[arcs[a].To] = fid
			}

			var delta = arcs[a].Capacity - mf.flows[fid].Rate
			if delta > n.excess {
				delta = n.excess
			}
			mf.flows[fid].Rate += delta
			mf.updateExcess(nid, -delta)
			mf.updateExcess(arcs[a].To, delta)

			if n.excess == 0 {
				return
			}
			n.dischargeInd++
		}
		continue

	PushResidual:
		{
			var nextFlow = mf.flows[fid].revPrev
			if !mf.constrainHeight(n, mf.flows[fid].From) {
				fid = nextFlow
				continue
			}
			var delta = mf.flows[fid].Rate
			if delta > n.excess {
				delta = n.excess
			}
			mf.flows[fid].Rate -= delta
			mf.updateExcess(nid, -delta)
			mf.updateExcess(mf.flows[fid].From, delta)

			if mf.flows[fid].Rate == 0 {
				mf.removeFlow(fid)
			}
			if n.excess == 0 {
				return
			}
			fid = nextFlow
		}
		continue

	Relabel:
		if nid == SourceID {
			return
		}
		n.height, n.nextHeight = n.nextHeight, maxHeight
		n.dischargePage, nextPage, arcs = PageInitial, PageInitial, nil
		continue
	}
}

// constrainHeight reports whether flow may move from n to "to" under the
// push/relabel height invariant, lower-bounding n.nextHeight when it may not.
func (mf *MaxFlow) constrainHeight(n *node, to NodeID) bool {
	if n.height <= mf.nodes[to].height {
		if n.nextHeight > mf.nodes[to].height+1 {
			n.nextHeight = mf.nodes[to].height + 1
		}
		return false
	}
	return true
}

func (mf *MaxFlow) addFlow(adj Adjacency, pushFront bool) flowID {
	var id flowID
	if l := len(mf.freeFlows); l != 0 {
		id = mf.freeFlows[l-1]
		mf.freeFlows = mf.freeFlows[:l-1]
	} else {
		id = flowID(len(mf.flows))
		mf.flows = append(mf.flows, Flow{})
	}

	var flow = Flow{Adjacency: adj}
	var from, to = &mf.nodes[adj.From], &mf.nodes[adj.To]

	if pushFront {
		if from.fwdHead == 0 {
			from.fwdHead, from.fwdTail = id, id
		} else {
			mf.flows[from.fwdHead].fwdPrev = id
			from.fwdHead, flow.fwdNext = id, from.fwdHead
		}
		if to.revHead == 0 {
			to.revHead, to.revTail = id, id
		} else {
			mf.flows[to.revHead].revPrev = id
			to.revHead, flow.revNext = id, to.revHead
		}
	} else {
		if from.fwdTail == 0 {
			from.fwdHead, from.fwdTail = id, id
		} else {
			mf.flows[from.fwdTail].fwdNext = id
			flow.fwdPrev, from.fwdTail = from.fwdTail, id
		}
		if to.revTail == 0 {
			to.revHead, to.revTail = id, id
		} else {
			mf.flows[to.revTail].revNext = id
			flow.revPrev, to.revTail = to.revTail, id
		}
	}

	mf.flows[id] = flow
	return id
}

func (mf *MaxFlow) removeFlow(id flowID) {
	var flow = mf.flows[id]

	if flow.fwdPrev == 0 {
		mf.nodes[flow.From].fwdHead = flow.fwdNext
	} else {
		mf.flows[flow.fwdPrev].fwdNext = flow.fwdNext
	}
	if flow.fwdNext == 0 {
		mf.nodes[flow.From].fwdTail = flow.fwdPrev
	} else {
		mf.flows[flow.fwdNext].fwdPrev = flow.fwdPrev
	}
	if flow.revPrev == 0 {
		mf.nodes[flow.To].revHead = flow.revNext
	} else {
		mf.flows[flow.revPrev].revNext = flow.revNext
	}
	if flow.revNext == 0 {
		mf.nodes[flow.To].revTail = flow.revPrev
	} else {
		mf.flows[flow.revNext].revPrev = flow.revPrev
	}

	mf.freeFlows = append(mf.freeFlows, id)
	mf.flows[id] = Flow{}
}

func (mf *MaxFlow) updateExcess(id NodeID, delta Rate) {
	if mf.nodes[id].excess == 0 && id != SinkID {
		heap.Push((*heightHeap)(mf), id)
	}
	mf.nodes[id].excess += delta
}

func (mf *MaxFlow) popActiveNode() (NodeID, bool) {
	if len(mf.active) == 0 {
		return 0, false
	}
	return heap.Pop((*heightHeap)(mf)).(NodeID), true
}

// heightHeap orders active nodes on descending height.
type heightHeap MaxFlow

func (h *heightHeap) Len() int { return len(h.active) }
func (h *heightHeap) Less(i, j int) bool {
	return h.nodes[h.active[i]].height > h.nodes[h.active[j]].height
}
func (h *heightHeap) Swap(i, j int) { h.active[i], h.active[j] = h.active[j], h.active[i] }
func (h *heightHeap) Push(x interface{}) {
	h.active = append(h.active, x.(NodeID))
}
func (h *heightHeap) Pop() interface{} {
	var old, l = h.active, len(h.active)
	var x = old[l-1]
	h.active = old[:l-1]
	return x
}

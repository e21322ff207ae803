package partition

import (
	"github.com/micropuma/mt-kahypar-leon/hypergraph"
	"github.com/micropuma/mt-kahypar-leon/internal/spin"
)

// Uncontract restores the partition-state side of a hypergraph.Memento: v
// inherits u's current block (they were one vertex until this call), and
// for every net in m.Nets, pins_in_part is adjusted per the Memento's two
// cases.
//
//   - BothIncident (v re-adds its own pin to e, alongside u's): e's pin
//     count for part_id[u] rises by one.
//   - !BothIncident (u's pin slot in e is handed back to v): e's pin
//     counts are unchanged, since the slot's block membership doesn't
//     change, only which vertex occupies it.
//
// Neither case changes part_weight: v's weight was folded into u's at
// contraction time and is only now being split back out of the same
// block total, not moved between blocks.
//
// The caller must call g.Uncontract(m) on the underlying hypergraph.Dynamic
// before calling this method, so that g.IncidentNets(u) and g.IncidentNets(v)
// already reflect the restored pin structure by the time the gain cache
// recompute below reads them. Within a single vertex's history, Mementos
// must be undone in the reverse of their Contract order; Mementos in the
// same hypergraph.Batch (vertex-disjoint) may be uncontracted concurrently.
func (s *State) Uncontract(g hypergraph.Graph, m hypergraph.Memento) {
	var p = s.PartID(m.U)
	s.partID[m.V].Store(int32(p))

	for _, nc := range m.Nets {
		if !nc.BothIncident {
			continue
		}
		var e = nc.Edge
		spin.Lock(s.netLock, int(e))
		s.pinsInPart[int(e)*s.k+int(p)]++
		spin.Unlock(s.netLock, int(e))
	}

	if s.gain != nil && s.gain.Initialized() {
		s.gain.recomputeVertex(g, s, m.U)
		s.gain.recomputeVertex(g, s, m.V)
	}
}

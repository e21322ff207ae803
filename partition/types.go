package partition

import (
	"fmt"

	"github.com/micropuma/mt-kahypar-leon/hypergraph"
)

// Weight is the unit of vertex weight, net weight, and the partitioning
// objective; identical to hypergraph.Weight since both describe the same
// underlying quantity.
type Weight = hypergraph.Weight

// ID identifies one of the k blocks of a partition. Unassigned vertices
// carry Unassigned.
type ID int32

// Unassigned is the sentinel block id of a vertex not yet assigned by
// SetOnlyNodePart.
const Unassigned ID = -1

func (p ID) String() string {
	if p == Unassigned {
		return "unassigned"
	}
	return fmt.Sprintf("p%d", int32(p))
}

// Objective selects the partitioning quality function.
type Objective int

const (
	ObjectiveCut Objective = iota
	ObjectiveKM1
)

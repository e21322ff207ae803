package partition

// connSet is a sparse-set of currently-connected block ids for one net: the
// set {p : pins_in_part[e][p] > 0}. list holds present block ids in
// arbitrary order; pos maps a block id to its index in list (or -1), giving
// O(1) contains/add/remove via swap-to-end-and-pop, at the cost of one int32
// slot per (net, block) pair — the same space/time tradeoff used for the
// teacher's member/item presence sets in the allocator package, just keyed
// by block id instead of item/member key.
type connSet struct {
	list []ID
	pos  []int32
}

func newConnSet(k int) connSet {
	var pos = make([]int32, k)
	for i := range pos {
		pos[i] = -1
	}
	return connSet{pos: pos}
}

func (c *connSet) contains(p ID) bool { return c.pos[p] >= 0 }

func (c *connSet) add(p ID) {
	if c.contains(p) {
		return
	}
	c.pos[p] = int32(len(c.list))
	c.list = append(c.list, p)
}

func (c *connSet) remove(p ID) {
	var i = c.pos[p]
	if i < 0 {
		return
	}
	var last = len(c.list) - 1
	var lastBlock = c.list[last]
	c.list[i] = lastBlock
	c.pos[lastBlock] = i
	c.list = c.list[:last]
	c.pos[p] = -1
}

// Blocks returns the set's current members. The caller must not retain the
// slice past the next mutating call on this net.
func (c *connSet) Blocks() []ID { return c.list }

// Size returns λ(e), the net's connectivity.
func (c *connSet) Size() int { return len(c.list) }

func (c *connSet) reset() {
	c.list = c.list[:0]
	for i := range c.pos {
		c.pos[i] = -1
	}
}

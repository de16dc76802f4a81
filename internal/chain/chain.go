package chain

// Chain is an ordered, unbranched sequence of segments from the root outward.
type Chain struct {
	segments []Segment
	joints   int
	revision uint64
}

func New() *Chain {
	return &Chain{}
}

func (c *Chain) AddSegment(s Segment) {
	c.segments = append(c.segments, s)
	if !s.Joint.IsFixed() {
		c.joints++
	}
	c.revision++
}

// AddChain appends every segment of o to c.
func (c *Chain) AddChain(o *Chain) {
	for _, s := range o.segments {
		c.AddSegment(s)
	}
}

func (c *Chain) NrOfSegments() int { return len(c.segments) }

func (c *Chain) NrOfJoints() int { return c.joints }

func (c *Chain) Segment(i int) Segment { return c.segments[i] }

// Segments returns a copy of the segment list.
func (c *Chain) Segments() []Segment {
	out := make([]Segment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Revision increases every time the chain is modified.
func (c *Chain) Revision() uint64 { return c.revision }

// JointIndices maps each segment to its joint index, or -1 for fixed joints.
func (c *Chain) JointIndices() []int {
	idx := make([]int, len(c.segments))
	j := 0
	for i, s := range c.segments {
		if s.Joint.IsFixed() {
			idx[i] = -1
			continue
		}
		idx[i] = j
		j++
	}
	return idx
}

// TotalMass sums the segment masses.
func (c *Chain) TotalMass() float64 {
	m := 0.0
	for _, s := range c.segments {
		m += s.Inertia.Mass()
	}
	return m
}

// JointNames lists the names of the movable joints in order.
func (c *Chain) JointNames() []string {
	var names []string
	for _, s := range c.segments {
		if !s.Joint.IsFixed() {
			names = append(names, s.Joint.Name)
		}
	}
	return names
}

package graph

// ReasonCounts tallies unresolved calls by reason.
func (g *Graph) ReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		counts[u.Reason]++
	}
	return counts
}

// ShadowedCount returns the number of shadowed nodes.
func (g *Graph) ShadowedCount() int {
	n := 0
	for _, sym := range g.Nodes {
		if sym.Shadowed {
			n++
		}
	}
	return n
}

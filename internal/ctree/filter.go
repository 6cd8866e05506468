package ctree

// Filters toggle the Active flag only; no node is ever removed from the
// tree, and Restore brings the tree back to its as-built state.

// SetFalse deactivates every node.
func (t *Tree[T]) SetFalse() {
	for _, n := range t.Nodes() {
		n.Active = false
	}
}

// Restore reactivates every node and resets its level to the one assigned
// at construction.
func (t *Tree[T]) Restore() {
	for _, n := range t.Nodes() {
		n.Active = true
		n.H = n.OrigH
	}
}

// AreaFiltering deactivates nodes whose area lies outside [lo, hi].
func (t *Tree[T]) AreaFiltering(lo, hi int64) {
	for _, n := range t.Nodes() {
		if n.Area < lo || n.Area > hi {
			n.Active = false
		}
	}
}

// VolumicFiltering deactivates nodes whose volume lies outside [lo, hi].
func (t *Tree[T]) VolumicFiltering(lo, hi int64) {
	for _, n := range t.Nodes() {
		if n.Volume < lo || n.Volume > hi {
			n.Active = false
		}
	}
}

// ContrastFiltering deactivates nodes whose contrast lies outside [lo, hi].
func (t *Tree[T]) ContrastFiltering(lo, hi int64) {
	for _, n := range t.Nodes() {
		if n.Contrast < lo || n.Contrast > hi {
			n.Active = false
		}
	}
}

// ActiveCount returns the number of active nodes.
func (t *Tree[T]) ActiveCount() int {
	count := 0
	for _, n := range t.Nodes() {
		if n.Active {
			count++
		}
	}
	return count
}

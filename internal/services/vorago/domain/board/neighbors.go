package board

import "sort"

// span returns the first angular unit covered by a cell and the unit width.
func (b *Board) span(ref Ref) (start, width int) {
	ring := b.rings[ref.Ring]
	width = AngularUnits / ring.Size
	start = ((ref.Cell + ring.Offset) % ring.Size) * width
	return start, width
}

// overlaps reports whether two spans share at least one unit on the circle.
func overlaps(aStart, aWidth, bStart, bWidth int) bool {
	for u := 0; u < aWidth; u++ {
		unit := (aStart + u) % AngularUnits
		delta := (unit - bStart + AngularUnits) % AngularUnits
		if delta < bWidth {
			return true
		}
	}
	return false
}

// Aligned lists the cells of ring target whose span overlaps the span of ref.
func (b *Board) Aligned(ref Ref, target int) []Ref {
	b.mustCell(ref)
	b.mustRing(target)
	start, width := b.span(ref)
	var out []Ref
	for cell := 0; cell < b.rings[target].Size; cell++ {
		other := Ref{Ring: target, Cell: cell}
		oStart, oWidth := b.span(other)
		if overlaps(start, width, oStart, oWidth) {
			out = append(out, other)
		}
	}
	return out
}

// Neighbors returns every location one step away from ref, sorted by ring then
// cell. The result depends only on ring offsets and bridge flags. Center's
// neighbors are the inner ring cells plus ring 3 bridges.
func (b *Board) Neighbors(ref Ref) []Ref {
	set := make(map[Ref]struct{})
	add := func(r Ref) {
		if r != ref {
			set[r] = struct{}{}
		}
	}

	if ref.IsCenter() {
		inner := RingCount - 1
		for cell := 0; cell < b.rings[inner].Size; cell++ {
			add(Ref{Ring: inner, Cell: cell})
		}
		for _, r := range b.cellsWithBridge(inner - 1) {
			add(r)
		}
		return sortRefs(set)
	}

	b.mustCell(ref)
	size := b.rings[ref.Ring].Size
	add(Ref{Ring: ref.Ring, Cell: (ref.Cell + 1) % size})
	add(Ref{Ring: ref.Ring, Cell: (ref.Cell - 1 + size) % size})

	if ref.Ring > 0 {
		for _, r := range b.Aligned(ref, ref.Ring-1) {
			add(r)
		}
	}
	if ref.Ring == RingCount-1 {
		add(Center)
	} else {
		for _, r := range b.Aligned(ref, ref.Ring+1) {
			add(r)
		}
	}

	// Outgoing bridge edge.
	if b.cells[ref.Ring][ref.Cell].Bridge {
		if ref.Ring+2 >= RingCount {
			add(Center)
		} else {
			for _, r := range b.Aligned(ref, ref.Ring+2) {
				add(r)
			}
		}
	}
	// Incoming bridge edges from two rings out.
	if ref.Ring >= 2 {
		for _, r := range b.Aligned(ref, ref.Ring-2) {
			if b.cells[r.Ring][r.Cell].Bridge {
				add(r)
			}
		}
	}
	return sortRefs(set)
}

// Adjacent reports whether to is one step away from from.
func (b *Board) Adjacent(from, to Ref) bool {
	for _, r := range b.Neighbors(from) {
		if r == to {
			return true
		}
	}
	return false
}

// Distance returns the fewest steps from ref to Center through unwalled
// cells, ignoring occupancy. It returns -1 when Center is unreachable.
func (b *Board) Distance(from Ref) int {
	if from.IsCenter() {
		return 0
	}
	b.mustCell(from)
	seen := map[Ref]bool{from: true}
	frontier := []Ref{from}
	for steps := 1; len(frontier) > 0; steps++ {
		var next []Ref
		for _, cur := range frontier {
			for _, n := range b.Neighbors(cur) {
				if n.IsCenter() {
					return steps
				}
				if seen[n] || b.cells[n.Ring][n.Cell].Wall {
					continue
				}
				seen[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}
	return -1
}

// DistanceMap returns the step count to Center for every unwalled cell that
// can reach it, ignoring occupancy. Cells missing from the map are cut off.
func (b *Board) DistanceMap() map[Ref]int {
	dist := map[Ref]int{Center: 0}
	frontier := []Ref{Center}
	for steps := 1; len(frontier) > 0; steps++ {
		var next []Ref
		for _, cur := range frontier {
			for _, n := range b.Neighbors(cur) {
				if _, seen := dist[n]; seen || b.cells[n.Ring][n.Cell].Wall {
					continue
				}
				dist[n] = steps
				next = append(next, n)
			}
		}
		frontier = next
	}
	return dist
}

func (b *Board) cellsWithBridge(ring int) []Ref {
	var out []Ref
	for cell, c := range b.cells[ring] {
		if c.Bridge {
			out = append(out, Ref{Ring: ring, Cell: cell})
		}
	}
	return out
}

func sortRefs(set map[Ref]struct{}) []Ref {
	out := make([]Ref, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ring != out[j].Ring {
			return out[i].Ring < out[j].Ring
		}
		return out[i].Cell < out[j].Cell
	})
	return out
}

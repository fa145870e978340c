package raster

// LineIter lazily produces the lattice points of a 3D line segment using an
// integer-only incremental algorithm, so repeated runs over the same
// endpoints yield the same sequence bit for bit.
//
// The driving axis is the one with the largest absolute delta; exact ties
// are broken in the fixed priority x, then y, then z. The sequence starts at
// the first endpoint, ends at the second and every consecutive pair of
// points is 26-connected.
type LineIter struct {
	a, b Point

	cur        Point
	step       Point
	delta      Point
	axis       int // driving axis index
	e1, e2     int // error accumulators of the two passive axes
	p1, p2     int // passive axis indices
	done       bool
	firstEmits bool
}

// Line creates an iterator over the lattice points from a to b, inclusive on
// both ends.
func Line(a, b Point) *LineIter {
	it := &LineIter{a: a, b: b}
	it.Reset()
	return it
}

// Reset restarts the iterator at the first endpoint.
func (it *LineIter) Reset() {
	it.cur = it.a
	it.done = false
	it.firstEmits = true
	for i := 0; i < 3; i++ {
		it.delta[i] = abs(it.b[i] - it.a[i])
		it.step[i] = sign(it.b[i] - it.a[i])
	}
	// Axis priority x > y > z on ties.
	it.axis = 0
	if it.delta[1] > it.delta[it.axis] {
		it.axis = 1
	}
	if it.delta[2] > it.delta[it.axis] {
		it.axis = 2
	}
	it.p1, it.p2 = (it.axis+1)%3, (it.axis+2)%3
	it.e1 = 2*it.delta[it.p1] - it.delta[it.axis]
	it.e2 = 2*it.delta[it.p2] - it.delta[it.axis]
}

// Next returns the next point of the sequence. The second return value is
// false once the sequence is exhausted.
func (it *LineIter) Next() (Point, bool) {
	if it.done {
		return Point{}, false
	}
	if it.firstEmits {
		it.firstEmits = false
		if it.cur == it.b {
			it.done = true
		}
		return it.cur, true
	}
	if it.e1 > 0 {
		it.cur[it.p1] += it.step[it.p1]
		it.e1 -= 2 * it.delta[it.axis]
	}
	if it.e2 > 0 {
		it.cur[it.p2] += it.step[it.p2]
		it.e2 -= 2 * it.delta[it.axis]
	}
	it.e1 += 2 * it.delta[it.p1]
	it.e2 += 2 * it.delta[it.p2]
	it.cur[it.axis] += it.step[it.axis]
	if it.cur == it.b {
		it.done = true
	}
	return it.cur, true
}

// Points drains the iterator into a slice. The iterator is reset first, so
// the result is the full sequence regardless of previous Next calls.
func (it *LineIter) Points() []Point {
	it.Reset()
	pts := make([]Point, 0, it.delta[it.axis]+1)
	for {
		p, ok := it.Next()
		if !ok {
			return pts
		}
		pts = append(pts, p)
	}
}

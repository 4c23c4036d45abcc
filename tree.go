package mediancut

import (
	"cmp"
	"slices"
)

// split is an internal node of the partition tree.
type split struct {
	left      int // Values less than or equal to threshold.
	right     int // Values greater than threshold.
	threshold uint8
	channel   Channel
}

// bucket is a leaf of the partition tree. pixels is a view into the working
// copy owned by the tree.
type bucket struct {
	pixels  []Color
	avg     Color // Valid after computeAverages.
	span    uint8 // Range of the widest channel.
	channel Channel
}

type node struct {
	leaf   bool
	split  split
	bucket bucket
}

// tree is an arena of at most 2*paletteCount-1 nodes. Node 0 is the root.
type tree struct {
	nodes []node
}

func newTree(pixels []Color, paletteCount int) *tree {
	t := &tree{nodes: make([]node, 0, 2*paletteCount-1)}
	t.nodes = append(t.nodes, makeBucket(pixels))
	return t
}

// makeBucket returns a leaf over pixels. The average color is left unset.
func makeBucket(pixels []Color) node {
	if len(pixels) < 2 {
		return node{leaf: true, bucket: bucket{pixels: pixels}}
	}

	var maxSpan uint8
	var maxChan Channel
	for ch := Red; ch <= Blue; ch++ {
		lo := pixels[0][ch]
		hi := lo
		for _, c := range pixels[1:] {
			v := c[ch]
			if v < lo {
				lo = v
			} else if v > hi {
				hi = v
			}
		}
		if hi-lo > maxSpan {
			maxSpan = hi - lo
			maxChan = ch
		}
	}

	return node{leaf: true, bucket: bucket{
		pixels:  pixels,
		span:    maxSpan,
		channel: maxChan,
	}}
}

// largestLeaf returns the leaf with the largest span. Later leaves win ties.
func (t *tree) largestLeaf() (int, uint8) {
	best := -1
	var maxSpan uint8
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.leaf && n.bucket.span >= maxSpan {
			maxSpan = n.bucket.span
			best = i
		}
	}
	return best, maxSpan
}

// cut turns leaf i into a split node with two new leaves appended to the
// arena. The pixels of the bucket are sorted by its widest channel.
//
// The split happens at the first value greater than the median rather than at
// the median itself, so all pixels equal to the median end up on the left.
func (t *tree) cut(i int) {
	if len(t.nodes)+2 > cap(t.nodes) {
		panic("mediancut: partition tree is full")
	}
	b := t.nodes[i].bucket
	if !t.nodes[i].leaf || len(b.pixels) == 0 {
		panic("mediancut: cut of a non-leaf or empty bucket")
	}

	ch := b.channel
	slices.SortFunc(b.pixels, func(x, y Color) int {
		return cmp.Compare(x[ch], y[ch])
	})

	threshold := b.pixels[len(b.pixels)/2][ch]
	cut := len(b.pixels)
	for j, c := range b.pixels {
		if c[ch] > threshold {
			cut = j
			break
		}
	}

	left := len(t.nodes)
	t.nodes = append(t.nodes, makeBucket(b.pixels[:cut]), makeBucket(b.pixels[cut:]))
	t.nodes[i] = node{split: split{
		left:      left,
		right:     left + 1,
		threshold: threshold,
		channel:   ch,
	}}
}

func (t *tree) computeAverages() {
	for i := range t.nodes {
		if n := &t.nodes[i]; n.leaf {
			n.bucket.avg = averageColor(n.bucket.pixels)
		}
	}
}

// leafOf walks the tree from the root and returns the index of the leaf c
// belongs to.
func (t *tree) leafOf(c Color) int {
	i := 0
	for !t.nodes[i].leaf {
		s := &t.nodes[i].split
		if c[s.channel] <= s.threshold {
			i = s.left
		} else {
			i = s.right
		}
	}
	return i
}

func (t *tree) lookup(c Color) Color {
	return t.nodes[t.leafOf(c)].bucket.avg
}

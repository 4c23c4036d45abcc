package mediancut

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func reds(values ...uint8) []Color {
	pixels := make([]Color, len(values))
	for i, v := range values {
		pixels[i] = Color{v, 0, 0, 255}
	}
	return pixels
}

func randomPixels(rng *rand.Rand, n int) []Color {
	pixels := make([]Color, n)
	for i := range pixels {
		pixels[i] = Color{uint8(rng.IntN(256)), uint8(rng.IntN(256)), uint8(rng.IntN(256)), 255}
	}
	return pixels
}

func TestMakeBucket(t *testing.T) {
	for _, tc := range []struct {
		name    string
		pixels  []Color
		span    uint8
		channel Channel
	}{
		{"empty", nil, 0, Red},
		{"single", []Color{{200, 10, 30, 255}}, 0, Red},
		{"red", []Color{{10, 0, 0, 0}, {20, 5, 0, 0}}, 10, Red},
		{"blue", []Color{{10, 0, 0, 0}, {20, 5, 90, 0}, {15, 2, 40, 0}}, 90, Blue},
		{"tie_prefers_red", []Color{{0, 0, 0, 0}, {10, 10, 10, 0}}, 10, Red},
		{"tie_prefers_green", []Color{{0, 0, 0, 0}, {0, 7, 7, 0}}, 7, Green},
		{"ignores_alpha", []Color{{0, 0, 0, 0}, {1, 1, 1, 255}}, 1, Red},
	} {
		t.Run(tc.name, func(t *testing.T) {
			n := makeBucket(tc.pixels)
			if !n.leaf {
				t.Fatal("makeBucket returned a split node")
			}
			if n.bucket.span != tc.span || n.bucket.channel != tc.channel {
				t.Errorf("got span %d on %v, want %d on %v",
					n.bucket.span, n.bucket.channel, tc.span, tc.channel)
			}
			if len(n.bucket.pixels) != len(tc.pixels) {
				t.Errorf("bucket holds %d pixels, want %d", len(n.bucket.pixels), len(tc.pixels))
			}
		})
	}
}

func TestCut(t *testing.T) {
	work := reds(5, 1, 3, 3, 9)
	tr := newTree(work, 2)
	tr.cut(0)

	root := tr.nodes[0]
	if root.leaf {
		t.Fatal("root is still a leaf after cut")
	}
	if root.split.channel != Red || root.split.threshold != 3 {
		t.Errorf("split on %v at %d, want red at 3", root.split.channel, root.split.threshold)
	}
	left, right := tr.nodes[root.split.left], tr.nodes[root.split.right]
	if got := len(left.bucket.pixels); got != 3 {
		t.Errorf("left holds %d pixels, want 3", got)
	}
	if got := len(right.bucket.pixels); got != 2 {
		t.Errorf("right holds %d pixels, want 2", got)
	}
	if left.bucket.span != 2 || right.bucket.span != 4 {
		t.Errorf("spans = %d, %d; want 2, 4", left.bucket.span, right.bucket.span)
	}
	if want := reds(1, 3, 3, 5, 9); !slices.Equal(work, want) {
		t.Errorf("working copy = %v, want sorted %v", work, want)
	}
}

func TestCutKeepsMedianRunOnTheLeft(t *testing.T) {
	// Everything from the median up shares the threshold value, so the
	// right bucket ends up empty.
	tr := newTree(reds(0, 5, 5), 2)
	tr.cut(0)
	left, right := tr.nodes[1], tr.nodes[2]
	if len(left.bucket.pixels) != 3 || len(right.bucket.pixels) != 0 {
		t.Errorf("split sizes = %d, %d; want 3, 0", len(left.bucket.pixels), len(right.bucket.pixels))
	}
	if right.bucket.span != 0 {
		t.Errorf("empty bucket span = %d, want 0", right.bucket.span)
	}
}

func TestLargestLeafPrefersLaterBucket(t *testing.T) {
	// The root cut yields [0 5 10] and [100 110], both with a range of 10.
	tr := newTree(reds(110, 0, 100, 10, 5), 3)
	tr.cut(0)
	if a, b := tr.nodes[1].bucket.span, tr.nodes[2].bucket.span; a != 10 || b != 10 {
		t.Fatalf("fixture spans = %d, %d; want 10, 10", a, b)
	}

	i, span := tr.largestLeaf()
	if i != 2 || span != 10 {
		t.Fatalf("largestLeaf = (%d, %d), want (2, 10)", i, span)
	}
	tr.cut(i)
	if !tr.nodes[1].leaf || tr.nodes[2].leaf {
		t.Error("expected the later bucket to be split and the earlier one to remain a leaf")
	}
}

func TestLargestLeafUnsplittable(t *testing.T) {
	tr := newTree(reds(7, 7, 7), 4)
	if _, span := tr.largestLeaf(); span != 0 {
		t.Errorf("span = %d, want 0", span)
	}
}

// leafRanges returns the [offset, offset+len) ranges of all leaves, sorted by
// offset. Buckets are sub-slices of work, so the offset follows from the
// remaining capacity.
func leafRanges(tr *tree, work []Color) [][2]int {
	var ranges [][2]int
	for _, n := range tr.nodes {
		if n.leaf {
			off := cap(work) - cap(n.bucket.pixels)
			if len(n.bucket.pixels) == 0 {
				continue
			}
			ranges = append(ranges, [2]int{off, off + len(n.bucket.pixels)})
		}
	}
	slices.SortFunc(ranges, func(a, b [2]int) int { return a[0] - b[0] })
	return ranges
}

func TestLeavesPartitionWorkingCopy(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	work := randomPixels(rng, 1000)
	const palette = 32
	tr := newTree(work, palette)

	for step := range palette - 1 {
		i, span := tr.largestLeaf()
		if span == 0 {
			break
		}
		tr.cut(i)

		total := 0
		next := 0
		for _, r := range leafRanges(tr, work) {
			if r[0] != next {
				t.Fatalf("step %d: leaf starts at %d, want %d", step, r[0], next)
			}
			next = r[1]
			total += r[1] - r[0]
		}
		if total != len(work) || next != len(work) {
			t.Fatalf("step %d: leaves cover %d of %d pixels", step, total, len(work))
		}
	}
	if len(tr.nodes) > 2*palette-1 {
		t.Errorf("arena holds %d nodes, limit %d", len(tr.nodes), 2*palette-1)
	}
}

func TestSplitsSeparateByThreshold(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	work := randomPixels(rng, 500)
	tr := newTree(work, 16)
	for range 15 {
		i, span := tr.largestLeaf()
		if span == 0 {
			break
		}
		tr.cut(i)
	}

	var collect func(i int) []Color
	collect = func(i int) []Color {
		n := tr.nodes[i]
		if n.leaf {
			return n.bucket.pixels
		}
		return append(slices.Clone(collect(n.split.left)), collect(n.split.right)...)
	}
	for i, n := range tr.nodes {
		if n.leaf {
			continue
		}
		s := n.split
		for _, c := range collect(s.left) {
			if c[s.channel] > s.threshold {
				t.Fatalf("node %d: %v on the left of %v <= %d", i, c, s.channel, s.threshold)
			}
		}
		for _, c := range collect(s.right) {
			if c[s.channel] <= s.threshold {
				t.Fatalf("node %d: %v on the right of %v > %d", i, c, s.channel, s.threshold)
			}
		}
	}
}

func TestLeafOfRoutesOriginalPixels(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	orig := randomPixels(rng, 300)
	work := slices.Clone(orig)
	tr := newTree(work, 8)
	for range 7 {
		i, span := tr.largestLeaf()
		if span == 0 {
			break
		}
		tr.cut(i)
	}
	for _, c := range orig {
		leaf := tr.nodes[tr.leafOf(c)]
		if !leaf.leaf {
			t.Fatalf("leafOf(%v) returned a split node", c)
		}
		if !slices.Contains(leaf.bucket.pixels, c) {
			t.Fatalf("pixel %v routed to a bucket that does not contain it", c)
		}
	}
}

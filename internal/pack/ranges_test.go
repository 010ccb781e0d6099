package pack

import (
	"testing"

	"github.com/gogpu/ighalo/types"
)

type fakeShape struct {
	ndims int
	sizes [3]int
	ol    [4]int // 1-indexed
}

func (f fakeShape) NDims() int          { return f.ndims }
func (f fakeShape) Size(dim int) int    { return f.sizes[dim-1] }
func (f fakeShape) Overlap(dim int) int { return f.ol[dim] }

func TestSendRanges_Dim1(t *testing.T) {
	f := fakeShape{ndims: 1, sizes: [3]int{10, 1, 1}, ol: [4]int{0, 2, 0, 0}}

	low := SendRanges(types.Low, 1, f)
	if low[0].Start != 2 || low[0].End != 2 {
		t.Errorf("low side singleton = %+v, want {2,2}", low[0])
	}

	high := SendRanges(types.High, 1, f)
	wantRow := f.sizes[0] - (f.ol[1] - 1) // 10 - 1 = 9
	if high[0].Start != wantRow || high[0].End != wantRow {
		t.Errorf("high side singleton = %+v, want {%d,%d}", high[0], wantRow, wantRow)
	}
}

func TestRecvRanges_Dim1(t *testing.T) {
	f := fakeShape{ndims: 1, sizes: [3]int{10, 1, 1}, ol: [4]int{0, 2, 0, 0}}

	low := RecvRanges(types.Low, 1, f)
	if low[0].Start != 1 || low[0].End != 1 {
		t.Errorf("low recv singleton = %+v, want {1,1}", low[0])
	}

	high := RecvRanges(types.High, 1, f)
	if high[0].Start != 10 || high[0].End != 10 {
		t.Errorf("high recv singleton = %+v, want {10,10}", high[0])
	}
}

func TestHaloSize_PadsMissingAxes(t *testing.T) {
	f := fakeShape{ndims: 1, sizes: [3]int{10, 1, 1}, ol: [4]int{0, 2, 0, 0}}
	if got := HaloSize(1, f); got != 1 {
		t.Errorf("HaloSize(1-D field) = %d, want 1", got)
	}
}

func TestSendRanges_NonSingletonAxesSpanFullExtent(t *testing.T) {
	f := fakeShape{ndims: 3, sizes: [3]int{4, 4, 4}, ol: [4]int{0, 2, 2, 2}}
	r := SendRanges(types.Low, 2, f)
	if r[0] != (Range{1, 4}) || r[2] != (Range{1, 4}) {
		t.Errorf("non-singleton axes = %+v, %+v, want full [1,4]", r[0], r[2])
	}
	if r[1].Len() != 1 {
		t.Errorf("singleton axis length = %d, want 1", r[1].Len())
	}
}

package periodic

import (
	"testing"

	"github.com/gogpu/ighalo/types"
)

func TestSingleProcess_AlwaysSelfNeighbor(t *testing.T) {
	p := SingleProcess{Dims: 3}

	for dim := 1; dim <= 3; dim++ {
		for _, n := range []types.Side{types.Low, types.High} {
			if !p.HasNeighbor(n, dim) {
				t.Errorf("HasNeighbor(%v, %d) = false, want true", n, dim)
			}
			if got := p.Neighbor(n, dim); got != 0 {
				t.Errorf("Neighbor(%v, %d) = %d, want 0", n, dim, got)
			}
		}
	}
	if p.Me() != 0 {
		t.Errorf("Me() = %d, want 0", p.Me())
	}
	if p.NDims() != 3 {
		t.Errorf("NDims() = %d, want 3", p.NDims())
	}
}

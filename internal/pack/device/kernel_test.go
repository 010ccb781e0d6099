package device

import (
	"testing"

	"github.com/gogpu/ighalo/internal/pack"
)

func TestBlockShape(t *testing.T) {
	if b := blockShape(1); b != [3]int{1, 32, 1} {
		t.Errorf("blockShape(1) = %v, want {1,32,1}", b)
	}
	if b := blockShape(2); b != [3]int{32, 1, 1} {
		t.Errorf("blockShape(2) = %v, want {32,1,1}", b)
	}
	if b := blockShape(3); b != [3]int{32, 1, 1} {
		t.Errorf("blockShape(3) = %v, want {32,1,1}", b)
	}
}

func TestGridShape_CoversRanges(t *testing.T) {
	ranges := [3]pack.Range{{Start: 1, End: 1}, {Start: 1, End: 100}, {Start: 1, End: 4}}
	grid := gridShape(ranges, blockShape(1))

	if grid[0] != 1 {
		t.Errorf("grid[0] = %d, want 1 (singleton axis)", grid[0])
	}
	if grid[1] != 4 { // ceil(100/32)
		t.Errorf("grid[1] = %d, want 4", grid[1])
	}
	if grid[2] != 4 { // ceil(4/1)
		t.Errorf("grid[2] = %d, want 4", grid[2])
	}
}

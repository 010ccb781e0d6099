package ighalo_test

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/gogpu/ighalo"
	"github.com/gogpu/ighalo/transport/localmesh"
	"github.com/gogpu/ighalo/transport/periodic"
	"github.com/gogpu/ighalo/types"
)

// arrayField is a minimal host-resident ighalo.Field over a row-major
// float32 array, built fresh per test the way a caller's own array type
// would wrap its storage.
type arrayField struct {
	dims    int
	size    [3]int
	overlap [4]int // 1-indexed; index 0 unused
	data    []byte
}

func newArrayField(dims int, size [3]int, overlap [4]int, fill func(i, j, k int) float32) *arrayField {
	n := size[0] * size[1] * size[2]
	data := make([]byte, n*4)
	idx := 0
	for k := 0; k < size[2]; k++ {
		for j := 0; j < size[1]; j++ {
			for i := 0; i < size[0]; i++ {
				binary.LittleEndian.PutUint32(data[idx*4:], math.Float32bits(fill(i+1, j+1, k+1)))
				idx++
			}
		}
	}
	return &arrayField{dims: dims, size: size, overlap: overlap, data: data}
}

func (f *arrayField) ElementType() types.ElementType { return types.Float32 }
func (f *arrayField) Device() types.DeviceKind       { return types.Host }
func (f *arrayField) NDims() int                     { return f.dims }
func (f *arrayField) Size(dim int) int               { return f.size[dim-1] }
func (f *arrayField) Overlap(dim int) int            { return f.overlap[dim] }
func (f *arrayField) HostBytes() []byte              { return f.data }

func (f *arrayField) at(i, j, k int) float32 {
	idx := (i - 1) + f.size[0]*((j-1)+f.size[1]*(k-1))
	return math.Float32frombits(binary.LittleEndian.Uint32(f.data[idx*4:]))
}

// twoRankNeighbors is a non-periodic, 2-rank decomposition along dim 1.
type twoRankNeighbors struct{ me int }

func (n twoRankNeighbors) Neighbor(side types.Side, dim int) int {
	if dim != 1 {
		return n.me
	}
	if n.me == 0 {
		if side == types.Low {
			return ighalo.NoNeighbor
		}
		return 1
	}
	if side == types.Low {
		return 0
	}
	return ighalo.NoNeighbor
}

func (n twoRankNeighbors) HasNeighbor(side types.Side, dim int) bool {
	return n.Neighbor(side, dim) != ighalo.NoNeighbor
}

func (n twoRankNeighbors) Me() int    { return n.me }
func (n twoRankNeighbors) NDims() int { return 1 }

// Scenario 1 of spec §8: a single process, 1-D, periodic wrap.
func TestUpdateHalo_PeriodicSingleProcess1D(t *testing.T) {
	f := newArrayField(1, [3]int{10, 1, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 {
		if i >= 2 && i <= 9 {
			return float32(i - 1)
		}
		return 0
	})

	ctx := ighalo.New(ighalo.DefaultConfig(), periodic.SingleProcess{Dims: 1}, localmesh.NewMesh(1).Rank(0))
	defer ctx.Free()

	if err := ctx.UpdateHalo(f); err != nil {
		t.Fatalf("UpdateHalo: %v", err)
	}
	if got := f.at(1, 1, 1); got != 8 {
		t.Errorf("F[1] = %v, want 8", got)
	}
	if got := f.at(10, 1, 1); got != 1 {
		t.Errorf("F[10] = %v, want 1", got)
	}

	// Idempotence: a second call with no intervening mutation reproduces
	// the same halo state.
	if err := ctx.UpdateHalo(f); err != nil {
		t.Fatalf("second UpdateHalo: %v", err)
	}
	if got := f.at(1, 1, 1); got != 8 {
		t.Errorf("after second call F[1] = %v, want 8", got)
	}
	if got := f.at(10, 1, 1); got != 1 {
		t.Errorf("after second call F[10] = %v, want 1", got)
	}
}

// Scenario 2 of spec §8: two ranks along dim 1, non-periodic interior.
func TestUpdateHalo_TwoRankRemote1D(t *testing.T) {
	mesh := localmesh.NewMesh(2)

	f0 := newArrayField(2, [3]int{6, 4, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 {
		return float32(10*i + j)
	})
	f1 := newArrayField(2, [3]int{6, 4, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 {
		return float32(100 + 10*i + j)
	})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx := ighalo.New(ighalo.DefaultConfig(), twoRankNeighbors{me: 0}, mesh.Rank(0))
		defer ctx.Free()
		errs[0] = ctx.UpdateHalo(f0)
	}()
	go func() {
		defer wg.Done()
		ctx := ighalo.New(ighalo.DefaultConfig(), twoRankNeighbors{me: 1}, mesh.Rank(1))
		defer ctx.Free()
		errs[1] = ctx.UpdateHalo(f1)
	}()
	wg.Wait()

	if errs[0] != nil {
		t.Fatalf("rank 0: %v", errs[0])
	}
	if errs[1] != nil {
		t.Fatalf("rank 1: %v", errs[1])
	}

	for j := 1; j <= 4; j++ {
		want := float32(100 + 10*2 + j)
		if got := f0.at(6, j, 1); got != want {
			t.Errorf("rank 0 F[6,%d] = %v, want %v", j, got, want)
		}
	}
	for j := 1; j <= 4; j++ {
		want := float32(10*5 + j)
		if got := f1.at(1, j, 1); got != want {
			t.Errorf("rank 1 F[1,%d] = %v, want %v", j, got, want)
		}
	}
}

func singleProcessCtx() *ighalo.Context {
	return ighalo.New(ighalo.DefaultConfig(), periodic.SingleProcess{Dims: 1}, localmesh.NewMesh(1).Rank(0))
}

func TestUpdateHalo_DuplicateFieldError(t *testing.T) {
	f := newArrayField(1, [3]int{10, 1, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 { return 0 })
	ctx := singleProcessCtx()
	defer ctx.Free()

	err := ctx.UpdateHalo(f, f)
	if err == nil {
		t.Fatal("expected an error for a duplicate field")
	}
	var he *ighalo.HaloError
	if !errors.As(err, &he) {
		t.Fatalf("error is not *HaloError: %v", err)
	}
	if he.Field != 2 {
		t.Errorf("HaloError.Field = %d, want 2", he.Field)
	}
	if !ighalo.IsHaloError(err, ighalo.Precondition) {
		t.Errorf("want Precondition kind, got %v", he.Kind)
	}
}

func TestUpdateHalo_NoHaloFieldError(t *testing.T) {
	f := newArrayField(1, [3]int{10, 1, 1}, [4]int{0, 1, 0, 0}, func(i, j, k int) float32 { return 0 })
	ctx := singleProcessCtx()
	defer ctx.Free()

	err := ctx.UpdateHalo(f)
	if !ighalo.IsHaloError(err, ighalo.Precondition) {
		t.Fatalf("expected a Precondition error for a field with no halo, got %v", err)
	}
}

func TestUpdateHalo_MixedTypesError(t *testing.T) {
	a := newArrayField(1, [3]int{10, 1, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 { return 0 })
	b := &intField{arrayField: *newArrayField(1, [3]int{10, 1, 1}, [4]int{0, 2, 0, 0}, func(i, j, k int) float32 { return 0 })}
	ctx := singleProcessCtx()
	defer ctx.Free()

	err := ctx.UpdateHalo(a, b)
	var he *ighalo.HaloError
	if !errors.As(err, &he) {
		t.Fatalf("error is not *HaloError: %v", err)
	}
	if he.Field != 2 {
		t.Errorf("HaloError.Field = %d, want 2", he.Field)
	}
	if !ighalo.IsHaloError(err, ighalo.Precondition) {
		t.Errorf("want Precondition kind, got %v", he.Kind)
	}
}

// intField reinterprets arrayField's storage as Int32 without changing its
// bytes, purely to exercise the mixed-element-type precondition check.
type intField struct {
	arrayField
}

func (f *intField) ElementType() types.ElementType { return types.Int32 }

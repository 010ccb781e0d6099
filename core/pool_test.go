package core

import (
	"testing"

	"github.com/gogpu/ighalo/types"
)

func TestPool_EnsureGrowsThenReuses(t *testing.T) {
	p := NewPool()

	_, _, err := p.Ensure(0, types.Low, types.Float32, 40)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	after1 := p.GrowthCount()
	if after1 == 0 {
		t.Fatal("first Ensure must grow")
	}

	_, _, err = p.Ensure(0, types.Low, types.Float32, 40)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if p.GrowthCount() != after1 {
		t.Errorf("identical-shape Ensure reallocated: growths %d -> %d", after1, p.GrowthCount())
	}
}

func TestPool_ReinterpretLargerTypeReallocates(t *testing.T) {
	p := NewPool()
	p.Ensure(1, types.High, types.Float32, 64)
	before := p.GrowthCount()

	p.Ensure(1, types.High, types.Float64, 64)
	if p.GrowthCount() == before {
		t.Error("reinterpreting to a larger element type at the same count must reallocate")
	}
}

func TestPool_ReinterpretSmallerTypeDoesNotReallocate(t *testing.T) {
	p := NewPool()
	p.Ensure(2, types.Low, types.Float64, 64)
	before := p.GrowthCount()

	p.Ensure(2, types.Low, types.Float32, 64)
	if p.GrowthCount() != before {
		t.Error("reinterpreting to a smaller element type must not reallocate")
	}
}

func TestPool_SendRecvBuffersAreIndependent(t *testing.T) {
	p := NewPool()
	send, recv, _ := p.Ensure(0, types.Low, types.Float32, 8)
	if &send[0] == &recv[0] {
		t.Fatal("send and recv buffers must be distinct allocations")
	}

	send[0] = 0xAB
	if recv[0] == 0xAB {
		t.Error("writing to send must not be visible through recv")
	}
}

func TestPool_FreeResetsState(t *testing.T) {
	p := NewPool()
	p.Ensure(0, types.Low, types.Float32, 8)

	if err := p.Free(nil); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if p.GrowthCount() != 0 {
		t.Errorf("GrowthCount() after Free = %d, want 0", p.GrowthCount())
	}

	defer func() {
		if recover() == nil {
			t.Error("SendBuf after Free on a never-re-ensured key should panic")
		}
	}()
	p.SendBuf(0, types.Low)
}

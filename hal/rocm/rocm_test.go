package rocm

import (
	"sync/atomic"
	"testing"

	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/types"
)

func TestDevice_Variant(t *testing.T) {
	var d Device
	if d.Variant() != types.ROCmKind {
		t.Errorf("Variant() = %v, want ROCmKind", d.Variant())
	}
}

func TestStream_WaitBarriersSubmittedWork(t *testing.T) {
	var d Device
	s, err := d.NewStream()
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	defer func() {
		if rs, ok := s.(*stream); ok {
			rs.th.Stop()
		}
	}()

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		s.Launch(hal.KernelLaunch{Exec: func() error {
			count.Add(1)
			return nil
		}})
	}

	if err := s.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := count.Load(); got != 10 {
		t.Errorf("completed launches = %d, want 10", got)
	}
}

func TestStream_WaitReturnsFirstError(t *testing.T) {
	var d Device
	s, _ := d.NewStream()
	defer func() {
		if rs, ok := s.(*stream); ok {
			rs.th.Stop()
		}
	}()

	boom := errBoom{}
	s.Copy(hal.StagedCopy{Exec: func() error { return boom }})

	if err := s.Wait(); err != boom {
		t.Errorf("Wait() = %v, want %v", err, boom)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

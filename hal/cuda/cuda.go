// Package cuda is ighalo's Nvidia backend. There is no CUDA Go binding
// anywhere in the retrieved pack to ground a real cgo call on, so this
// backend is a Go-idiomatic stand-in for what would be a thin wrapper
// over the CUDA runtime: kernel launch and stream synchronization are
// simulated with internal/thread.Thread, the same dedicated-goroutine
// abstraction the teacher uses for its render thread, repurposed here as
// an independent, non-blocking device stream.
package cuda

import (
	"sync"

	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/thread"
	"github.com/gogpu/ighalo/types"
)

// Device is the CUDA backend.
type Device struct{}

// Variant implements hal.Device.
func (Device) Variant() types.DeviceKind { return types.CUDAKind }

// NewStream creates one dedicated, non-blocking stream.
func (Device) NewStream() (hal.Stream, error) {
	return &stream{th: thread.New()}, nil
}

// Pin is a placeholder for cudaHostRegister; simulated as a no-op since
// this backend has no real page-locked host memory to register.
func (Device) Pin(buf []byte) error { return nil }

// Unpin is the symmetric placeholder for cudaHostUnregister.
func (Device) Unpin(buf []byte) error { return nil }

// stream is one independent CUDA stream. Work is enqueued onto a
// dedicated goroutine via CallAsync so multiple streams run concurrently
// with each other and with host work; Wait relies on the thread's FIFO
// channel ordering to act as a synchronization barrier — everything
// submitted before Wait has necessarily run by the time Wait's own no-op
// is dequeued.
type stream struct {
	th *thread.Thread

	mu  sync.Mutex
	err error
}

func (s *stream) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *stream) Launch(kl hal.KernelLaunch) error {
	s.th.CallAsync(func() {
		if kl.Exec != nil {
			s.setErr(kl.Exec())
		}
	})
	return nil
}

func (s *stream) Copy(sc hal.StagedCopy) error {
	s.th.CallAsync(func() {
		if sc.Exec != nil {
			s.setErr(sc.Exec())
		}
	})
	return nil
}

func (s *stream) Wait() error {
	s.th.CallVoid(func() {})
	s.mu.Lock()
	err := s.err
	s.err = nil
	s.mu.Unlock()
	return err
}

func init() {
	hal.RegisterBackend(Device{})
}

// Package task implements the HandleSlot state machine of spec §4.4: a
// deferred pack or unpack task, keyed identically to a buffer slot, that
// for host-backed fields only transitions armed -> running when
// explicitly awaited, and for device-backed fields runs immediately on a
// dedicated stream at submission.
//
// The host case is adapted from the teacher's internal/thread.Thread
// dedicated-execution-context idea, but inverted: instead of "always run
// now on a background goroutine", a Handle captures a closure that the
// single awaiter invokes in-line on Wait — a captured closure, not a
// preemptively scheduled thread, per Design Notes §9's "lazy cooperative
// tasks" requirement. This keeps host pack/unpack execution on whichever
// goroutine calls Wait, yielding deterministic ordering.
package task

import "github.com/gogpu/ighalo/hal"

// State is a HandleSlot's lifecycle state.
type State int

const (
	Unset State = iota
	Armed
	Running
	Complete
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Armed:
		return "armed"
	case Running:
		return "running"
	case Complete:
		return "complete"
	default:
		return "invalid"
	}
}

// Handle is one deferred pack or unpack task or stream.
type Handle struct {
	state State
	fn    func() error
	err   error

	stream hal.Stream // non-nil for device-backed handles
}

// Arm captures fn without running it (host path). Calling Arm on a handle
// that is Running or already Armed overwrites the pending work, matching
// spec's "individual handles are overwritten each call" reuse rule.
func (h *Handle) Arm(fn func() error) {
	if h.state != Unset {
		hal.Logger().Debug("task: reusing handle", "previous_state", h.state)
	}
	h.state = Armed
	h.fn = fn
	h.err = nil
	h.stream = nil
}

// ArmDevice marks the handle Running on the device path. It submits
// nothing itself: the caller has already enqueued the kernel or async
// memcopy on stream, and the handle only remembers which stream to join
// on Wait.
func (h *Handle) ArmDevice(stream hal.Stream) {
	if h.state != Unset {
		hal.Logger().Debug("task: reusing handle", "previous_state", h.state)
	}
	h.state = Running
	h.fn = nil
	h.err = nil
	h.stream = stream
}

// Wait starts (if armed and host-backed) or joins (if device-backed) the
// task, and blocks until it completes. Calling Wait on an Unset handle is
// a no-op returning nil, so callers can unconditionally Wait every (i, n)
// slot in a table without checking which ones were armed.
func (h *Handle) Wait() error {
	switch h.state {
	case Unset, Complete:
		return h.err
	case Armed:
		h.state = Running
		if h.fn != nil {
			h.err = h.fn()
		}
		h.state = Complete
		return h.err
	case Running:
		if h.stream != nil {
			h.err = h.stream.Wait()
		}
		h.state = Complete
		return h.err
	default:
		return nil
	}
}

// State reports the handle's current lifecycle state.
func (h *Handle) State() State {
	return h.state
}

// Reset returns the handle to Unset, ready to be armed again next call.
func (h *Handle) Reset() {
	h.state = Unset
	h.fn = nil
	h.err = nil
	h.stream = nil
}

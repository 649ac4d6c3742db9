package core

import (
	"sync"
	"time"

	"github.com/gogpu/rhi"
)

// Fences and semaphores are tracked against HAL submission indices rather
// than HAL fence objects: an object armed at index n is signaled once the
// queue reports n as completed.
//
// Fence state machine:
//
//	Unsignaled -> Submit/Flush -> Pending
//	Pending    -> (completion) -> Signaled
//	Signaled   -> Reset()      -> Unsignaled

// maxPollInterval caps the sleep between completion polls in Wait.
const maxPollInterval = time.Millisecond

// Fence implements rhi.Fence.
type Fence struct {
	dev *Device

	mu        sync.Mutex
	signaled  bool
	armed     bool
	at        uint64
	destroyed bool
}

// CreateFence implements rhi.Device.
func (d *Device) CreateFence(initialSignaled bool) (rhi.Fence, error) {
	if err := d.checkAlive("Device.CreateFence"); err != nil {
		return nil, err
	}
	d.track()
	return &Fence{dev: d, signaled: initialSignaled}, nil
}

// refreshLocked promotes a pending fence to signaled. Callers hold f.mu.
func (f *Fence) refreshLocked(completed uint64) {
	if f.armed && completed >= f.at {
		f.armed = false
		f.signaled = true
	}
}

func (f *Fence) refresh(completed uint64) {
	f.mu.Lock()
	f.refreshLocked(completed)
	f.mu.Unlock()
}

// checkUnsignaled fails unless the fence may be armed by a new
// submission.
func (f *Fence) checkUnsignaled(op string, completed uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshLocked(completed)
	switch {
	case f.destroyed:
		return rhi.InvalidState(op, "fence is destroyed")
	case f.signaled:
		return rhi.InvalidState(op, "fence is signaled; reset it before reuse")
	case f.armed:
		return rhi.InvalidState(op, "fence is already pending on submission %d", f.at)
	}
	return nil
}

func (f *Fence) arm(at uint64) {
	f.mu.Lock()
	f.armed = true
	f.at = at
	f.mu.Unlock()
}

// IsSignaled implements rhi.Fence.
func (f *Fence) IsSignaled() bool {
	completed := f.dev.completed()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshLocked(completed)
	return f.signaled
}

// Wait implements rhi.Fence.
func (f *Fence) Wait() error {
	_, err := f.WaitTimeout(rhi.FenceWaitForever)
	return err
}

// WaitTimeout implements rhi.Fence. Waiting on a fence that is neither
// signaled nor pending fails with InvalidState, since it could never be
// signaled.
func (f *Fence) WaitTimeout(timeout time.Duration) (bool, error) {
	const op = "Fence.WaitTimeout"
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	interval := 10 * time.Microsecond
	for {
		completed := f.dev.completed()
		f.mu.Lock()
		f.refreshLocked(completed)
		signaled, armed := f.signaled, f.armed
		f.mu.Unlock()

		switch {
		case signaled:
			return true, nil
		case !armed:
			return false, rhi.InvalidState(op, "fence is not pending on any submission")
		case timeout >= 0 && !time.Now().Before(deadline):
			return false, nil
		}

		time.Sleep(interval)
		if interval < maxPollInterval {
			interval *= 2
		}
	}
}

// Reset implements rhi.Fence.
func (f *Fence) Reset() error {
	completed := f.dev.completed()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshLocked(completed)
	if f.armed {
		return rhi.InvalidState("Fence.Reset", "fence is pending on submission %d", f.at)
	}
	f.signaled = false
	return nil
}

// Destroy implements rhi.Fence.
func (f *Fence) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyed {
		return
	}
	f.destroyed = true
	f.dev.untrack()
}

// =============================================================================
// Semaphore
// =============================================================================

// Semaphore implements rhi.Semaphore as a binary signal: armed by one
// submission or acquire, consumed by exactly one wait.
type Semaphore struct {
	dev *Device

	mu        sync.Mutex
	pending   bool
	at        uint64
	destroyed bool
}

// CreateSemaphore implements rhi.Device.
func (d *Device) CreateSemaphore() (rhi.Semaphore, error) {
	if err := d.checkAlive("Device.CreateSemaphore"); err != nil {
		return nil, err
	}
	d.track()
	return &Semaphore{dev: d}, nil
}

func (s *Semaphore) isPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Semaphore) arm(at uint64) {
	s.mu.Lock()
	s.pending = true
	s.at = at
	s.mu.Unlock()
}

func (s *Semaphore) consume() {
	s.mu.Lock()
	s.pending = false
	s.at = 0
	s.mu.Unlock()
}

// IsSignaled implements rhi.Semaphore.
func (s *Semaphore) IsSignaled() bool {
	completed := s.dev.completed()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending && completed >= s.at
}

// Destroy implements rhi.Semaphore.
func (s *Semaphore) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.dev.untrack()
}

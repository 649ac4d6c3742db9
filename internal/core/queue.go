package core

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// Queue implements rhi.Queue. All queues of a device share the device's
// HAL queue; the type only scopes what may be submitted to it.
type Queue struct {
	dev   *Device
	typ   rhi.QueueType
	index uint32
}

// Type implements rhi.Queue.
func (q *Queue) Type() rhi.QueueType { return q.typ }

// Index returns the queue's index within its type.
func (q *Queue) Index() uint32 { return q.index }

// Submit implements rhi.Queue.
//
// Every precondition is checked before anything is mutated, so a failed
// Submit leaves the command buffer, semaphores and fence untouched.
func (q *Queue) Submit(cmd rhi.CommandBuffer, info *rhi.QueueSubmitInfo) error {
	const op = "Queue.Submit"
	cb, ok := cmd.(*CommandBuffer)
	if !ok || cb == nil {
		return rhi.InvalidArgument(op, "command buffer was not created by this backend")
	}
	if cb.dev != q.dev {
		return rhi.InvalidArgument(op, "command buffer belongs to another device")
	}
	if info == nil {
		info = &rhi.QueueSubmitInfo{}
	}

	waits, err := semaphores(op, q.dev, info.WaitSemaphores)
	if err != nil {
		return err
	}
	signals, err := semaphores(op, q.dev, info.SignalSemaphores)
	if err != nil {
		return err
	}
	var fence *Fence
	if info.SignalFence != nil {
		f, ok := info.SignalFence.(*Fence)
		if !ok || f.dev != q.dev {
			return rhi.InvalidArgument(op, "fence was not created by this device")
		}
		fence = f
	}

	d := q.dev
	d.submitMu.Lock()
	defer d.submitMu.Unlock()

	completed := d.queue.PollCompleted()
	if s := cb.stateAt(completed); s != rhi.CommandBufferStateExecutable {
		return rhi.InvalidState(op, "command buffer is %s, want Executable", s)
	}
	if cb.isSpent() {
		return rhi.InvalidState(op, "command buffer was already submitted; Reset and record it again")
	}
	for i, s := range waits {
		if !s.isPending() {
			return rhi.InvalidState(op, "wait semaphore %d has no pending signal", i)
		}
	}
	for i, s := range signals {
		if s.isPending() {
			return rhi.InvalidState(op, "signal semaphore %d is already pending", i)
		}
	}
	if fence != nil {
		if err := fence.checkUnsignaled(op, completed); err != nil {
			return err
		}
	}

	idx, err := d.submitLocked(op, []hal.CommandBuffer{cb.cmd})
	if err != nil {
		return err
	}
	cb.markPending(idx)
	for _, s := range waits {
		s.consume()
	}
	for _, s := range signals {
		s.arm(idx)
	}
	if fence != nil {
		fence.arm(idx)
	}
	d.log.Debug("rhi: submitted", "queue", q.typ.String(), "index", idx,
		"waits", len(waits), "signals", len(signals), "fence", fence != nil)
	return nil
}

// Flush implements rhi.Queue. The fence signals once every submission
// made so far has completed; with nothing submitted it signals at once.
func (q *Queue) Flush(fence rhi.Fence) error {
	const op = "Queue.Flush"
	f, ok := fence.(*Fence)
	if !ok || f == nil || f.dev != q.dev {
		return rhi.InvalidArgument(op, "fence was not created by this device")
	}

	d := q.dev
	d.submitMu.Lock()
	defer d.submitMu.Unlock()

	completed := d.queue.PollCompleted()
	if err := f.checkUnsignaled(op, completed); err != nil {
		return err
	}
	f.arm(d.lastSubmission)
	f.refresh(completed)
	return nil
}

func semaphores(op string, d *Device, in []rhi.Semaphore) ([]*Semaphore, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]*Semaphore, len(in))
	for i, s := range in {
		sem, ok := s.(*Semaphore)
		if !ok || sem == nil || sem.dev != d {
			return nil, rhi.InvalidArgument(op, "semaphore %d was not created by this device", i)
		}
		for _, prev := range out[:i] {
			if prev == sem {
				return nil, rhi.InvalidArgument(op, "semaphore %d listed twice", i)
			}
		}
		out[i] = sem
	}
	return out, nil
}

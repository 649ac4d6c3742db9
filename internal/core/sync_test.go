package core

import (
	"testing"
	"time"

	"github.com/gogpu/rhi"
)

// recorded returns an Executable command buffer with an empty copy pass.
func recorded(t *testing.T, d *Device) *CommandBuffer {
	t.Helper()
	cb, rec := beginBuffer(t, d)
	pass, err := rec.BeginCopyPass()
	if err != nil {
		t.Fatalf("BeginCopyPass failed: %v", err)
	}
	if err := pass.EndPass(); err != nil {
		t.Fatalf("EndPass failed: %v", err)
	}
	if err := rec.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	return cb
}

func graphicsQueue(t *testing.T, d *Device) rhi.Queue {
	t.Helper()
	q, err := d.GetQueue(rhi.QueueTypeGraphics, 0)
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	return q
}

func TestFenceLifecycle(t *testing.T) {
	d, hq, cleanup := createTestDevice(t, nil)
	defer cleanup()
	q := graphicsQueue(t, d)

	f, err := d.CreateFence(false)
	if err != nil {
		t.Fatalf("CreateFence failed: %v", err)
	}
	if f.IsSignaled() {
		t.Fatal("new fence is signaled")
	}
	_, err = f.WaitTimeout(time.Millisecond)
	wantKind(t, err, rhi.KindInvalidState)

	hq.hold()
	if err := q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{SignalFence: f}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if f.IsSignaled() {
		t.Error("fence signaled before completion")
	}
	ok, err := f.WaitTimeout(time.Millisecond)
	if err != nil || ok {
		t.Errorf("WaitTimeout on held queue = %v, %v; want false, nil", ok, err)
	}
	wantKind(t, f.Reset(), rhi.KindInvalidState)
	wantKind(t, q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{SignalFence: f}), rhi.KindInvalidState)

	hq.release()
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !f.IsSignaled() {
		t.Error("fence not signaled after completion")
	}
	wantKind(t, q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{SignalFence: f}), rhi.KindInvalidState)

	if err := f.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if f.IsSignaled() {
		t.Error("fence signaled after Reset")
	}
	f.Destroy()
	f.Destroy()
}

func TestFenceInitiallySignaled(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	f, err := d.CreateFence(true)
	if err != nil {
		t.Fatalf("CreateFence failed: %v", err)
	}
	ok, err := f.WaitTimeout(0)
	if err != nil || !ok {
		t.Errorf("WaitTimeout = %v, %v; want true, nil", ok, err)
	}
}

func TestFlush(t *testing.T) {
	d, hq, cleanup := createTestDevice(t, nil)
	defer cleanup()
	q := graphicsQueue(t, d)

	empty, _ := d.CreateFence(false)
	if err := q.Flush(empty); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if !empty.IsSignaled() {
		t.Error("Flush with nothing submitted did not signal")
	}

	hq.hold()
	if err := q.Submit(recorded(t, d), nil); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	f, _ := d.CreateFence(false)
	if err := q.Flush(f); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if f.IsSignaled() {
		t.Error("Flush signaled before outstanding work completed")
	}
	hq.release()
	if err := f.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	d2, _, cleanup2 := createTestDevice(t, nil)
	defer cleanup2()
	foreign, _ := d2.CreateFence(false)
	wantKind(t, q.Flush(foreign), rhi.KindInvalidArgument)
}

func TestSemaphoreSubmit(t *testing.T) {
	d, hq, cleanup := createTestDevice(t, nil)
	defer cleanup()
	q := graphicsQueue(t, d)

	s, err := d.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore failed: %v", err)
	}
	if s.IsSignaled() {
		t.Fatal("new semaphore is signaled")
	}

	// Waiting on a semaphore nobody signals fails and leaves the command
	// buffer Executable.
	cb := recorded(t, d)
	wantKind(t, q.Submit(cb, &rhi.QueueSubmitInfo{WaitSemaphores: []rhi.Semaphore{s}}), rhi.KindInvalidState)
	if st := cb.State(); st != rhi.CommandBufferStateExecutable {
		t.Errorf("failed Submit changed state to %s", st)
	}

	hq.hold()
	if err := q.Submit(cb, &rhi.QueueSubmitInfo{SignalSemaphores: []rhi.Semaphore{s}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if s.IsSignaled() {
		t.Error("semaphore signaled before completion")
	}
	wantKind(t, q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{SignalSemaphores: []rhi.Semaphore{s}}), rhi.KindInvalidState)
	hq.release()
	if !s.IsSignaled() {
		t.Error("semaphore not signaled after completion")
	}

	if err := q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{WaitSemaphores: []rhi.Semaphore{s}}); err != nil {
		t.Fatalf("Submit waiting on signaled semaphore failed: %v", err)
	}
	if s.IsSignaled() {
		t.Error("semaphore still signaled after its wait consumed it")
	}

	wantKind(t, q.Submit(recorded(t, d), &rhi.QueueSubmitInfo{
		SignalSemaphores: []rhi.Semaphore{s, s},
	}), rhi.KindInvalidArgument)
}

func TestSubmitOrderIsFIFO(t *testing.T) {
	d, hq, cleanup := createTestDevice(t, nil)
	defer cleanup()
	q := graphicsQueue(t, d)

	hq.hold()
	first, second := recorded(t, d), recorded(t, d)
	f1, _ := d.CreateFence(false)
	f2, _ := d.CreateFence(false)
	if err := q.Submit(first, &rhi.QueueSubmitInfo{SignalFence: f1}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := q.Submit(second, &rhi.QueueSubmitInfo{SignalFence: f2}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if first.State() != rhi.CommandBufferStatePending || second.State() != rhi.CommandBufferStatePending {
		t.Fatal("submitted buffers not Pending while held")
	}
	hq.release()
	if err := f2.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !f1.IsSignaled() {
		t.Error("later submission completed before an earlier one")
	}
	if first.State() != rhi.CommandBufferStateExecutable {
		t.Errorf("completed buffer is %s, want Executable", first.State())
	}
}

// TestDrawTriangleEndToEnd records, submits and waits on a uniform-driven
// draw the way an application frame would.
func TestDrawTriangleEndToEnd(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()
	q := graphicsQueue(t, d)

	buf := mustBuffer(t, d, 256, rhi.BufferUsageUniform, rhi.BufferUsageMapWrite)
	data, err := buf.Map(rhi.MapModeWrite, 0, 0)
	if err != nil {
		t.Fatalf("Map failed: %v", err)
	}
	for i := range data {
		data[i] = byte(i)
	}
	if err := buf.UnMap(); err != nil {
		t.Fatalf("UnMap failed: %v", err)
	}

	bgl := uniformLayout(t, d, 0)
	group := uniformGroup(t, d, bgl, buf)
	pipeline := trianglePipeline(t, d, pipelineLayout(t, d, bgl))
	_, target := mustColorTarget(t, d, 64, 64)

	cb, rec := beginBuffer(t, d)
	pass, err := rec.BeginGraphicsPass(&rhi.GraphicsPassBeginInfo{
		ColorAttachments: []rhi.ColorAttachment{{
			View:       target,
			LoadOp:     rhi.LoadOpClear,
			StoreOp:    rhi.StoreOpStore,
			ClearValue: rhi.Color{A: 1},
		}},
	})
	if err != nil {
		t.Fatalf("BeginGraphicsPass failed: %v", err)
	}
	if err := pass.SetPipeline(pipeline); err != nil {
		t.Fatalf("SetPipeline failed: %v", err)
	}
	if err := pass.SetBindGroup(0, group); err != nil {
		t.Fatalf("SetBindGroup failed: %v", err)
	}
	if err := pass.Draw(3, 1, 0, 0); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if err := pass.EndPass(); err != nil {
		t.Fatalf("EndPass failed: %v", err)
	}
	if err := rec.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	fence, err := d.CreateFence(false)
	if err != nil {
		t.Fatalf("CreateFence failed: %v", err)
	}
	if err := q.Submit(cb, &rhi.QueueSubmitInfo{SignalFence: fence}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := fence.Wait(); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if s := cb.State(); s != rhi.CommandBufferStateExecutable {
		t.Errorf("command buffer is %s after completion, want Executable", s)
	}
	// A completed recording is spent until Reset.
	wantKind(t, q.Submit(cb, &rhi.QueueSubmitInfo{}), rhi.KindInvalidState)
	if err := cb.Reset(); err != nil {
		t.Errorf("Reset after completion failed: %v", err)
	}
}

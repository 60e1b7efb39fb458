package headless

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/cubechain/engine/renderer"
)

var (
	ErrListClosed    = errors.New("command list is closed")
	ErrListOpen      = errors.New("command list is still open")
	ErrListInFlight  = errors.New("command list is still in use by the GPU")
	ErrFenceBackward = errors.New("fence value must increase")
)

type commandList struct {
	backend  *Backend
	id       uint32
	open     bool
	recorded []Command
	err      error

	// submittedAt is the fence value the last submission completes with.
	inFlight    bool
	submittedAt uint64
}

func (l *commandList) record(c Command) {
	if !l.open {
		if l.err == nil {
			l.err = fmt.Errorf("%w: %s", ErrListClosed, c.Op)
		}
		return
	}
	l.recorded = append(l.recorded, c)
}

func (l *commandList) Reset() error {
	f := l.backend.queue.lastFence
	completed, signaled := uint64(0), uint64(0)
	if f != nil {
		completed, signaled = f.completed, f.pending
	}
	if l.inFlight && completed < l.submittedAt {
		return fmt.Errorf("%w: needs fence %d, completed %d", ErrListInFlight, l.submittedAt, completed)
	}
	l.backend.journal.add(Command{Op: OpReset, Completed: completed, Signaled: signaled})
	l.recorded = l.recorded[:0]
	l.open = true
	l.inFlight = false
	l.err = nil
	return nil
}

func (l *commandList) Close() error {
	if !l.open {
		return ErrListClosed
	}
	l.open = false
	l.recorded = append(l.recorded, Command{Op: OpClose})
	return l.err
}

func (l *commandList) ResourceBarrier(backBuffer uint32, barrier renderer.Barrier) {
	l.record(Command{Op: OpResourceBarrier, BackBuffer: backBuffer, Barrier: barrier})
}

func (l *commandList) BeginRenderTarget(backBuffer uint32, clear renderer.ClearValues) {
	l.record(Command{Op: OpBeginRenderTarget, BackBuffer: backBuffer, Clear: clear})
}

func (l *commandList) EndRenderTarget() {
	l.record(Command{Op: OpEndRenderTarget})
}

func (l *commandList) SetViewport(viewport renderer.Viewport) {
	l.record(Command{Op: OpSetViewport, Viewport: viewport})
}

func (l *commandList) SetPipeline(p renderer.Pipeline) {
	id, _ := ID(p)
	l.record(Command{Op: OpSetPipeline, Resource: id})
}

func (l *commandList) BindConstantBuffer(slot renderer.BindingSlot, buffer renderer.ConstantBuffer) {
	id, _ := ID(buffer)
	l.record(Command{Op: OpBindConstantBuffer, Slot: slot, Resource: id})
}

func (l *commandList) BindTexture(t renderer.Texture) {
	id, _ := ID(t)
	l.record(Command{Op: OpBindTexture, Slot: renderer.SlotTexture, Resource: id})
}

func (l *commandList) BindMesh(m renderer.Mesh) {
	id, _ := ID(m)
	l.record(Command{Op: OpBindMesh, Resource: id})
}

func (l *commandList) DrawIndexed(indexCount uint32) {
	l.record(Command{Op: OpDrawIndexed, IndexCount: indexCount})
}

func (l *commandList) Destroy() {
	l.backend.release(l.id, l)
}

type fence struct {
	backend   *Backend
	id        uint32
	completed uint64
	pending   uint64
}

func (f *fence) CompletedValue() uint64 {
	return f.completed
}

// Wait completes everything signaled so far: the simulated GPU only makes
// progress while the CPU is blocked on it.
func (f *fence) Wait(value uint64) error {
	f.backend.journal.add(Command{Op: OpWait, Value: value})
	if value > f.pending {
		return fmt.Errorf("wait for fence %d that was never signaled (last %d)", value, f.pending)
	}
	f.completed = f.pending
	return nil
}

func (f *fence) Destroy() {
	f.backend.release(f.id, f)
}

type queue struct {
	backend   *Backend
	lastFence *fence
	// lists submitted since the last signal
	pending []*commandList
}

func (q *queue) Submit(list renderer.CommandList) error {
	l, ok := list.(*commandList)
	if !ok {
		return fmt.Errorf("headless queue cannot submit %T", list)
	}
	if l.open {
		return ErrListOpen
	}
	q.backend.journal.add(l.recorded...)
	q.backend.journal.add(Command{Op: OpSubmit, Resource: l.id})
	l.inFlight = true
	q.pending = append(q.pending, l)
	return nil
}

func (q *queue) Signal(f renderer.Fence, value uint64) error {
	hf, ok := f.(*fence)
	if !ok {
		return fmt.Errorf("headless queue cannot signal %T", f)
	}
	if value <= hf.pending {
		return fmt.Errorf("%w: %d after %d", ErrFenceBackward, value, hf.pending)
	}
	q.backend.journal.add(Command{Op: OpSignal, Value: value})
	hf.pending = value
	for _, l := range q.pending {
		l.submittedAt = value
	}
	q.pending = q.pending[:0]
	q.lastFence = hf
	if q.backend.opts.ImmediateFence {
		hf.completed = value
	}
	return nil
}

type swapChain struct {
	backend *Backend
	count   uint32
	current uint32
	frames  uint64
	width   uint32
	height  uint32
}

func (s *swapChain) AcquireBackBuffer() (uint32, error) {
	s.current = uint32(s.frames % uint64(s.count))
	s.backend.journal.add(Command{Op: OpAcquire, BackBuffer: s.current})
	return s.current, nil
}

func (s *swapChain) Present(syncInterval uint32) error {
	s.backend.journal.add(Command{Op: OpPresent, BackBuffer: s.current, SyncInterval: syncInterval})
	s.frames++
	return nil
}

func (s *swapChain) BufferCount() uint32 {
	return s.count
}

func (s *swapChain) Extent() (uint32, uint32) {
	return s.width, s.height
}

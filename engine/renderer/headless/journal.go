package headless

import (
	"fmt"

	"github.com/spaghettifunk/cubechain/engine/renderer"
)

type Op int

const (
	OpResourceBarrier Op = iota
	OpBeginRenderTarget
	OpEndRenderTarget
	OpSetViewport
	OpSetPipeline
	OpBindConstantBuffer
	OpBindTexture
	OpBindMesh
	OpDrawIndexed
	OpClose
	OpSubmit
	OpAcquire
	OpPresent
	OpSignal
	OpWait
	OpReset
	OpWaitIdle
)

var opNames = map[Op]string{
	OpResourceBarrier:    "barrier",
	OpBeginRenderTarget:  "begin-render-target",
	OpEndRenderTarget:    "end-render-target",
	OpSetViewport:        "viewport",
	OpSetPipeline:        "pipeline",
	OpBindConstantBuffer: "bind-cb",
	OpBindTexture:        "bind-texture",
	OpBindMesh:           "bind-mesh",
	OpDrawIndexed:        "draw-indexed",
	OpClose:              "close",
	OpSubmit:             "submit",
	OpAcquire:            "acquire",
	OpPresent:            "present",
	OpSignal:             "signal",
	OpWait:               "wait",
	OpReset:              "reset",
	OpWaitIdle:           "wait-idle",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command is one journal entry. Only the fields relevant to Op are set.
type Command struct {
	Op           Op
	BackBuffer   uint32
	Barrier      renderer.Barrier
	Clear        renderer.ClearValues
	Viewport     renderer.Viewport
	Slot         renderer.BindingSlot
	Resource     uint32
	IndexCount   uint32
	SyncInterval uint32

	// Value is the fence value for signal and wait.
	Value uint64

	// Completed and Signaled snapshot the fence when a list is reset.
	Completed uint64
	Signaled  uint64
}

func (c Command) String() string {
	switch c.Op {
	case OpResourceBarrier:
		return fmt.Sprintf("%s[%d] %s->%s", c.Op, c.BackBuffer, c.Barrier.Before, c.Barrier.After)
	case OpBindConstantBuffer:
		return fmt.Sprintf("%s %s #%d", c.Op, c.Slot, c.Resource)
	case OpDrawIndexed:
		return fmt.Sprintf("%s %d", c.Op, c.IndexCount)
	case OpSignal, OpWait:
		return fmt.Sprintf("%s %d", c.Op, c.Value)
	case OpReset:
		return fmt.Sprintf("%s completed=%d signaled=%d", c.Op, c.Completed, c.Signaled)
	}
	return c.Op.String()
}

// Journal is the ordered log of device-level events: submitted commands,
// queue operations, fence waits and list resets.
type Journal struct {
	commands []Command
}

func (j *Journal) add(c ...Command) {
	j.commands = append(j.commands, c...)
}

func (j *Journal) Commands() []Command {
	return j.commands
}

// Ops returns the journal reduced to its operations.
func (j *Journal) Ops() []Op {
	ops := make([]Op, len(j.commands))
	for i, c := range j.commands {
		ops[i] = c.Op
	}
	return ops
}

// Filter returns the commands with the given op, in order.
func (j *Journal) Filter(op Op) []Command {
	var out []Command
	for _, c := range j.commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (j *Journal) Clear() {
	j.commands = nil
}

package vm

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Thread stdlib: creation, lifecycle, and coordination
// ---------------------------------------------------------------------------

// millisToSteps converts a sleep duration into scheduler steps. The
// conversion exists for visual pacing, not as a timing guarantee.
func millisToSteps(ms float64) int {
	steps := int(math.Round(ms / 50))
	if steps < 1 {
		steps = 1
	}
	return steps
}

// invokeThreadStatic handles Thread.sleep, currentThread, yield and the
// static interrupt query.
func (in *Interpreter) invokeThreadStatic(thread *ThreadState, frame *StackFrame, method string, args []Value) (bool, string) {
	switch method {
	case "sleep":
		steps := millisToSteps(argAt(args, 0).AsFloat())
		thread.Status = StatusTimedWaiting
		thread.SleepUntilStep = in.State.StepNumber + steps
		frame.Push(NullValue())
		return true, fmt.Sprintf("thread %q sleeping for %d steps", thread.Name, steps)

	case "currentThread":
		obj := in.threadObject(thread)
		frame.Push(RefValue(obj.ID))
		return true, "Thread.currentThread"

	case "yield":
		frame.Push(NullValue())
		return true, fmt.Sprintf("thread %q yielded", thread.Name)

	case "interrupted":
		was := thread.Interrupted
		thread.Interrupted = false
		frame.Push(BoolValue(was))
		return true, "Thread.interrupted"
	}
	return false, ""
}

// threadObject returns the heap object backing a thread, creating one for
// threads spawned without an explicit Thread instance (main).
func (in *Interpreter) threadObject(t *ThreadState) *HeapObject {
	if t.ObjectID != 0 {
		if obj := in.State.Heap.Get(t.ObjectID); obj != nil {
			return obj
		}
	}
	obj := in.State.Heap.NewObject("Thread", in.State.StepNumber)
	obj.SetField("$name", StringValue(t.Name))
	obj.SetField("$priority", IntValue(int64(t.Priority)))
	obj.SetField("$daemon", BoolValue(t.IsDaemon))
	obj.SetField("$started", BoolValue(true))
	t.ObjectID = obj.ID
	return obj
}

// invokeThread handles instance methods on Thread and its subclasses.
func (in *Interpreter) invokeThread(current *ThreadState, frame *StackFrame, method string, receiver Value, obj *HeapObject, args []Value) (bool, string) {
	switch method {
	case "<init>":
		// A subclass with its own constructor runs that instead.
		if m, _ := in.Program.LookupMethod(obj.ClassName, "<init>", len(args)); m != nil {
			return false, ""
		}
		name := fmt.Sprintf("Thread-%d", in.nextThreadID)
		if a := argAt(args, 0); a.IsString() {
			name = a.S
		} else if !a.IsNull() {
			obj.SetField("$runnable", a)
		}
		if a := argAt(args, 1); a.IsString() {
			name = a.S
		}
		obj.SetField("$name", StringValue(name))
		obj.SetField("$priority", IntValue(5))
		obj.SetField("$daemon", BoolValue(false))
		obj.SetField("$started", BoolValue(false))
		return true, "initialised thread " + name

	case "start":
		return in.startThread(frame, receiver, obj)

	case "join":
		target := in.threadFor(obj)
		if target != nil && target.Status != StatusTerminated {
			current.Status = StatusWaiting
			current.JoinTarget = target.ID
		}
		frame.Push(NullValue())
		if target == nil {
			return true, "join on unstarted thread"
		}
		return true, fmt.Sprintf("thread %q joining %q", current.Name, target.Name)

	case "getName":
		frame.Push(obj.GetField("$name"))
		return true, "Thread.getName"

	case "getId":
		if t := in.threadFor(obj); t != nil {
			frame.Push(LongValue(int64(t.ID)))
		} else {
			frame.Push(LongValue(0))
		}
		return true, "Thread.getId"

	case "getState":
		if t := in.threadFor(obj); t != nil {
			frame.Push(StringValue(string(t.Status)))
		} else {
			frame.Push(StringValue(string(StatusNew)))
		}
		return true, "Thread.getState"

	case "isAlive":
		t := in.threadFor(obj)
		frame.Push(BoolValue(t != nil && t.Status != StatusTerminated))
		return true, "Thread.isAlive"

	case "setPriority":
		p := int(argAt(args, 0).AsInt())
		obj.SetField("$priority", IntValue(int64(p)))
		if t := in.threadFor(obj); t != nil {
			t.Priority = p
		}
		frame.Push(NullValue())
		return true, "Thread.setPriority"

	case "getPriority":
		frame.Push(obj.GetField("$priority"))
		return true, "Thread.getPriority"

	case "setDaemon":
		d := argAt(args, 0).AsBool()
		obj.SetField("$daemon", BoolValue(d))
		if t := in.threadFor(obj); t != nil {
			t.IsDaemon = d
		}
		frame.Push(NullValue())
		return true, "Thread.setDaemon"

	case "isDaemon":
		frame.Push(obj.GetField("$daemon"))
		return true, "Thread.isDaemon"

	case "interrupt":
		// Sets the flag only; sleeping threads keep their timers.
		if t := in.threadFor(obj); t != nil {
			t.Interrupted = true
		}
		obj.SetField("$interrupted", BoolValue(true))
		frame.Push(NullValue())
		return true, "Thread.interrupt"

	case "isInterrupted":
		if t := in.threadFor(obj); t != nil {
			frame.Push(BoolValue(t.Interrupted))
		} else {
			frame.Push(obj.GetField("$interrupted"))
		}
		return true, "Thread.isInterrupted"

	case "run":
		// Calling run() directly executes in the caller's thread; fall
		// through to user lookup.
		return false, ""
	}
	return false, ""
}

// startThread spawns a new simulated thread entering the receiver's run().
func (in *Interpreter) startThread(frame *StackFrame, receiver Value, obj *HeapObject) (bool, string) {
	name := obj.GetField("$name").ToString()
	if name == "null" || name == "" {
		name = fmt.Sprintf("Thread-%d", in.nextThreadID)
	}

	t := &ThreadState{
		ID:       in.nextThreadID,
		Name:     name,
		Status:   StatusRunnable,
		Priority: int(obj.GetField("$priority").AsInt()),
		IsDaemon: obj.GetField("$daemon").AsBool(),
		ObjectID: obj.ID,
	}
	in.nextThreadID++

	// run() is located by walking the super chain of the receiver class.
	m, owner := in.Program.LookupMethod(obj.ClassName, "run", 0)
	if m != nil {
		callee := in.newFrame(owner.Name, m)
		callee.SetLocal(0, "this", receiver)
		t.PushFrame(callee)
	} else {
		// No run body: the thread terminates as soon as it is scheduled.
		t.Status = StatusTerminated
	}

	obj.SetField("$started", BoolValue(true))
	obj.SetField("$threadId", IntValue(int64(t.ID)))
	in.State.Threads = append(in.State.Threads, t)

	frame.Push(NullValue())
	return true, fmt.Sprintf("started thread %q", name)
}

// threadFor finds the ThreadState backed by a Thread heap object.
func (in *Interpreter) threadFor(obj *HeapObject) *ThreadState {
	for _, t := range in.State.Threads {
		if t.ObjectID == obj.ID {
			return t
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Object-level coordination: wait / notify / notifyAll
// ---------------------------------------------------------------------------

// objectWait parks the current thread on the receiver's monitor, releasing
// the monitor if held.
func (in *Interpreter) objectWait(thread *ThreadState, frame *StackFrame, obj *HeapObject, args []Value) (bool, string) {
	if len(args) > 0 && args[0].AsFloat() > 0 {
		thread.Status = StatusTimedWaiting
		thread.SleepUntilStep = in.State.StepNumber + millisToSteps(args[0].AsFloat())
	} else {
		thread.Status = StatusWaiting
	}
	thread.WaitingOnMonitor = obj.ID
	if thread.HoldsMonitor(obj.ID) {
		in.releaseMonitor(thread, obj.ID)
	}
	frame.Push(NullValue())
	return true, fmt.Sprintf("thread %q waiting on %d", thread.Name, obj.ID)
}

// objectNotify wakes one (or all) threads waiting on the receiver, in
// thread-array order.
func (in *Interpreter) objectNotify(frame *StackFrame, obj *HeapObject, all bool) (bool, string) {
	woken := 0
	for _, t := range in.State.Threads {
		if t.Status == StatusWaiting && t.WaitingOnMonitor == obj.ID {
			t.Status = StatusRunnable
			t.WaitingOnMonitor = 0
			woken++
			if !all {
				break
			}
		}
	}
	frame.Push(NullValue())
	if all {
		return true, fmt.Sprintf("notified %d waiting threads", woken)
	}
	return true, fmt.Sprintf("notified %d waiting thread", woken)
}

package vm

import (
	"bytes"
	"testing"
)

func TestCloneIsolation(t *testing.T) {
	s := NewVMState()
	obj := s.Heap.NewObject("Point", 0)
	obj.SetField("x", IntValue(1))
	s.Threads = append(s.Threads, &ThreadState{
		ID:     1,
		Name:   "main",
		Status: StatusRunnable,
		Stack: []*StackFrame{{
			ID:           1,
			ClassName:    "Point",
			MethodName:   "main",
			Locals:       []LocalVariable{{Name: "p", Value: RefValue(obj.ID), Slot: 0}},
			OperandStack: []Value{IntValue(5)},
		}},
	})
	s.Monitors[obj.ID] = 1
	s.AppendOutput("hello", true)

	clone := s.Clone()

	// Mutate the original; the clone must not observe it.
	obj.SetField("x", IntValue(99))
	s.Threads[0].Stack[0].OperandStack[0] = IntValue(77)
	s.Threads[0].Status = StatusTerminated
	s.Output[0] = "mutated"
	s.Monitors[obj.ID] = MonitorFree

	cObj := clone.Heap.Get(obj.ID)
	if cObj == nil {
		t.Fatal("clone lost heap object")
	}
	if got := cObj.GetField("x").AsInt(); got != 1 {
		t.Errorf("clone field x = %d, want 1", got)
	}
	if got := clone.Threads[0].Stack[0].OperandStack[0].AsInt(); got != 5 {
		t.Errorf("clone operand = %d, want 5", got)
	}
	if clone.Threads[0].Status != StatusRunnable {
		t.Errorf("clone thread status = %s", clone.Threads[0].Status)
	}
	if clone.Output[0] != "hello" {
		t.Errorf("clone output = %v", clone.Output)
	}
	if clone.Monitors[obj.ID] != 1 {
		t.Errorf("clone monitor holder = %d, want 1", clone.Monitors[obj.ID])
	}
}

func TestCloneMarshalDeterministic(t *testing.T) {
	s := NewVMState()
	s.Heap.NewObject("A", 0)
	s.Monitors[1] = MonitorFree
	s.Monitors[2] = 1

	a, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := s.Clone().Marshal()
	if err != nil {
		t.Fatalf("Marshal clone: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding differs between state and its clone")
	}
}

func TestAppendOutput(t *testing.T) {
	s := NewVMState()
	s.AppendOutput("Hello", false)
	s.AppendOutput(", World!", true)

	want := []string{"Hello, World!", ""}
	if len(s.Output) != len(want) {
		t.Fatalf("output = %v, want %v", s.Output, want)
	}
	for i := range want {
		if s.Output[i] != want[i] {
			t.Errorf("output[%d] = %q, want %q", i, s.Output[i], want[i])
		}
	}
}

func TestFramePopEmptyIsNull(t *testing.T) {
	f := &StackFrame{}
	if got := f.Pop(); !got.IsNull() {
		t.Errorf("pop of empty stack = %v, want null", got)
	}
}

func TestSetLocalGrowsTable(t *testing.T) {
	f := &StackFrame{}
	f.SetLocal(2, "b", IntValue(7))
	f.SetLocal(2, "b", IntValue(8))
	if got := f.GetLocal(2).AsInt(); got != 8 {
		t.Errorf("local 2 = %d, want 8", got)
	}
	if len(f.Locals) != 1 {
		t.Errorf("locals grew to %d entries, want 1", len(f.Locals))
	}
	if got := f.GetLocal(9); !got.IsNull() {
		t.Errorf("unset slot = %v, want null", got)
	}
}

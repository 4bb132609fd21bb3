package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Threads, frames, and the full machine state
// ---------------------------------------------------------------------------

// ThreadStatus is the lifecycle state of a simulated thread.
type ThreadStatus string

const (
	StatusNew          ThreadStatus = "NEW"
	StatusRunnable     ThreadStatus = "RUNNABLE"
	StatusRunning      ThreadStatus = "RUNNING"
	StatusBlocked      ThreadStatus = "BLOCKED"
	StatusWaiting      ThreadStatus = "WAITING"
	StatusTimedWaiting ThreadStatus = "TIMED_WAITING"
	StatusTerminated   ThreadStatus = "TERMINATED"
)

// LocalVariable is one local slot of a frame.
type LocalVariable struct {
	Name  string
	Type  string `cbor:",omitempty"`
	Value Value
	Slot  int
}

// StackFrame is one activation record. PC indexes into the global
// instruction vector; LineNumber mirrors the last LINE marker executed.
type StackFrame struct {
	ID              int
	ClassName       string
	MethodName      string
	MethodSignature string
	Locals          []LocalVariable
	OperandStack    []Value
	PC              int
	LineNumber      int
	IsNative        bool    `cbor:",omitempty"`
	Captured        []Value `cbor:",omitempty"` // lambda invocations only
}

// Push appends a value to the operand stack.
func (f *StackFrame) Push(v Value) {
	f.OperandStack = append(f.OperandStack, v)
}

// Pop removes and returns the top of the operand stack. An empty stack
// yields the null reference rather than failing.
func (f *StackFrame) Pop() Value {
	if len(f.OperandStack) == 0 {
		return NullValue()
	}
	v := f.OperandStack[len(f.OperandStack)-1]
	f.OperandStack = f.OperandStack[:len(f.OperandStack)-1]
	return v
}

// Peek returns the top of the operand stack without removing it.
func (f *StackFrame) Peek() Value {
	if len(f.OperandStack) == 0 {
		return NullValue()
	}
	return f.OperandStack[len(f.OperandStack)-1]
}

// SetLocal stores into a slot, growing the table as needed.
func (f *StackFrame) SetLocal(slot int, name string, v Value) {
	for i := range f.Locals {
		if f.Locals[i].Slot == slot {
			f.Locals[i].Value = v
			if name != "" {
				f.Locals[i].Name = name
			}
			return
		}
	}
	f.Locals = append(f.Locals, LocalVariable{Name: name, Value: v, Slot: slot})
}

// GetLocal loads a slot, or null when the slot was never stored.
func (f *StackFrame) GetLocal(slot int) Value {
	for i := range f.Locals {
		if f.Locals[i].Slot == slot {
			return f.Locals[i].Value
		}
	}
	return NullValue()
}

// ThreadState is one simulated thread.
type ThreadState struct {
	ID               int
	Name             string
	Stack            []*StackFrame
	Status           ThreadStatus
	SleepUntilStep   int   `cbor:",omitempty"`
	WaitingOnMonitor int   `cbor:",omitempty"` // object id blocked or waited on
	JoinTarget       int   `cbor:",omitempty"` // thread id a join is waiting for
	HoldingMonitors  []int `cbor:",omitempty"`
	ObjectID         int  `cbor:",omitempty"` // backing Thread heap object
	Priority         int
	IsDaemon         bool `cbor:",omitempty"`
	StepCount        int
	Interrupted      bool `cbor:",omitempty"`
}

// Top returns the topmost frame, or nil for an empty stack.
func (t *ThreadState) Top() *StackFrame {
	if len(t.Stack) == 0 {
		return nil
	}
	return t.Stack[len(t.Stack)-1]
}

// PushFrame pushes an activation record.
func (t *ThreadState) PushFrame(f *StackFrame) {
	t.Stack = append(t.Stack, f)
}

// PopFrame removes and returns the topmost frame, or nil.
func (t *ThreadState) PopFrame() *StackFrame {
	if len(t.Stack) == 0 {
		return nil
	}
	f := t.Stack[len(t.Stack)-1]
	t.Stack = t.Stack[:len(t.Stack)-1]
	return f
}

// HoldsMonitor reports whether the thread holds the given monitor.
func (t *ThreadState) HoldsMonitor(objectID int) bool {
	for _, id := range t.HoldingMonitors {
		if id == objectID {
			return true
		}
	}
	return false
}

// ReleaseMonitor removes the monitor from the holding list.
func (t *ThreadState) ReleaseMonitor(objectID int) {
	for i, id := range t.HoldingMonitors {
		if id == objectID {
			t.HoldingMonitors = append(t.HoldingMonitors[:i], t.HoldingMonitors[i+1:]...)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Method area
// ---------------------------------------------------------------------------

// ClassInfo is the loaded form of a class.
type ClassInfo struct {
	Name         string
	SuperClass   string   `cbor:",omitempty"`
	Interfaces   []string `cbor:",omitempty"`
	Fields       []CompiledField
	Methods      []string // signatures
	IsInterface  bool `cbor:",omitempty"`
	IsAbstract   bool `cbor:",omitempty"`
	LoadedAtStep int
}

// MethodArea holds loaded classes and static storage.
type MethodArea struct {
	LoadedClasses map[string]*ClassInfo
	StaticFields  map[string]map[string]Value // class -> field -> value
	ConstantPool  []Value
}

// NewMethodArea creates an empty method area.
func NewMethodArea() *MethodArea {
	return &MethodArea{
		LoadedClasses: make(map[string]*ClassInfo),
		StaticFields:  make(map[string]map[string]Value),
	}
}

// GetStatic loads a static field, or null.
func (m *MethodArea) GetStatic(class, field string) Value {
	if fields, ok := m.StaticFields[class]; ok {
		if v, ok := fields[field]; ok {
			return v
		}
	}
	return NullValue()
}

// SetStatic stores a static field, creating the class bucket on demand.
func (m *MethodArea) SetStatic(class, field string, v Value) {
	if _, ok := m.StaticFields[class]; !ok {
		m.StaticFields[class] = make(map[string]Value)
	}
	m.StaticFields[class][field] = v
}

// ---------------------------------------------------------------------------
// VMState
// ---------------------------------------------------------------------------

// VMStatus is the machine-level run status.
type VMStatus string

const (
	VMPaused    VMStatus = "paused"
	VMRunning   VMStatus = "running"
	VMCompleted VMStatus = "completed"
	VMError     VMStatus = "error"
)

// MonitorFree marks a live but unowned monitor entry.
const MonitorFree = -1

// VMState is the complete machine state. The interpreter owns it
// exclusively; everything handed outward is a deep clone.
type VMState struct {
	Heap         *Heap
	MethodArea   *MethodArea
	PC           int
	Status       VMStatus
	StepNumber   int
	Output       []string
	Threads      []*ThreadState
	ActiveThread int
	Monitors     map[int]int // object id -> holding thread id, or MonitorFree
	Error        string `cbor:",omitempty"`
}

// NewVMState creates an empty state with a single output line.
func NewVMState() *VMState {
	return &VMState{
		Heap:       NewHeap(),
		MethodArea: NewMethodArea(),
		Status:     VMPaused,
		Output:     []string{""},
		Monitors:   make(map[int]int),
	}
}

// ActiveStack returns the active thread's frame stack, or nil.
func (s *VMState) ActiveStack() []*StackFrame {
	if t := s.Active(); t != nil {
		return t.Stack
	}
	return nil
}

// Active returns the active thread, or nil.
func (s *VMState) Active() *ThreadState {
	if s.ActiveThread < 0 || s.ActiveThread >= len(s.Threads) {
		return nil
	}
	return s.Threads[s.ActiveThread]
}

// Thread returns the thread with the given id, or nil.
func (s *VMState) Thread(id int) *ThreadState {
	for _, t := range s.Threads {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AppendOutput appends text to the last output line; when newline is set a
// fresh empty line is started afterwards.
func (s *VMState) AppendOutput(text string, newline bool) {
	if len(s.Output) == 0 {
		s.Output = []string{""}
	}
	s.Output[len(s.Output)-1] += text
	if newline {
		s.Output = append(s.Output, "")
	}
}

// ---------------------------------------------------------------------------
// Deep cloning via canonical CBOR
// ---------------------------------------------------------------------------

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Clone returns a deep copy of the state. Mutating the original after
// cloning never aliases into the copy; this is what makes step-back sound.
func (s *VMState) Clone() *VMState {
	data, err := cborEncMode.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("vm: clone marshal: %v", err))
	}
	var out VMState
	if err := cbor.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("vm: clone unmarshal: %v", err))
	}
	if out.Heap == nil {
		out.Heap = NewHeap()
	}
	if out.MethodArea == nil {
		out.MethodArea = NewMethodArea()
	}
	if out.Monitors == nil {
		out.Monitors = make(map[int]int)
	}
	if out.MethodArea.LoadedClasses == nil {
		out.MethodArea.LoadedClasses = make(map[string]*ClassInfo)
	}
	if out.MethodArea.StaticFields == nil {
		out.MethodArea.StaticFields = make(map[string]map[string]Value)
	}
	return &out
}

// Marshal serialises the state to canonical CBOR bytes.
func (s *VMState) Marshal() ([]byte, error) {
	data, err := cborEncMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("vm: marshal state: %w", err)
	}
	return data, nil
}

// UnmarshalState deserialises a state from CBOR bytes.
func UnmarshalState(data []byte) (*VMState, error) {
	var s VMState
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal state: %w", err)
	}
	return &s, nil
}

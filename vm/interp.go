package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Interpreter: executes one instruction per step
// ---------------------------------------------------------------------------

// Interpreter owns a single VMState and advances it one instruction at a
// time. All mutation is serialised at the step boundary; a step is atomic.
type Interpreter struct {
	Program *CompiledProgram
	State   *VMState
	History *History

	nextFrameID  int
	nextThreadID int
}

// StepOutcome carries what one step did, for the facade to wrap.
type StepOutcome struct {
	Instruction *Instruction
	Description string
}

// NewInterpreter loads a program: classes enter the method area, static
// fields are seeded, and the main thread is created with an empty String[]
// for args.
func NewInterpreter(program *CompiledProgram) *Interpreter {
	in := &Interpreter{
		Program:      program,
		State:        NewVMState(),
		History:      NewHistory(DefaultHistoryCapacity),
		nextFrameID:  1,
		nextThreadID: 1,
	}
	in.loadClasses()
	in.spawnMainThread()
	return in
}

// loadClasses registers every compiled class and seeds static fields.
func (in *Interpreter) loadClasses() {
	for _, c := range in.Program.Classes {
		info := &ClassInfo{
			Name:        c.Name,
			SuperClass:  c.SuperClass,
			Interfaces:  c.Interfaces,
			Fields:      c.Fields,
			IsInterface: c.IsInterface,
			IsAbstract:  c.IsAbstract,
		}
		for _, m := range c.Methods {
			info.Methods = append(info.Methods, m.Signature)
		}
		in.State.MethodArea.LoadedClasses[c.Name] = info

		for _, f := range c.Fields {
			if f.IsStatic {
				in.State.MethodArea.SetStatic(c.Name, f.Name, f.Init)
			}
		}
	}
}

// spawnMainThread creates the main thread entering MainClass.main.
func (in *Interpreter) spawnMainThread() {
	main := in.Program.Class(in.Program.MainClass)
	if main == nil {
		return
	}
	method := main.Method(in.Program.MainMethod, 1)
	if method == nil {
		method = main.Method(in.Program.MainMethod, 0)
	}
	if method == nil {
		return
	}

	args := in.State.Heap.NewArray("String", 0, 0)

	frame := in.newFrame(main.Name, method)
	if len(method.ParamNames) == 1 {
		frame.SetLocal(0, method.ParamNames[0], ArrayValue(args.ID, "String"))
	}

	t := &ThreadState{
		ID:       in.nextThreadID,
		Name:     "main",
		Status:   StatusRunnable,
		Priority: 5,
	}
	in.nextThreadID++
	t.PushFrame(frame)
	in.State.Threads = append(in.State.Threads, t)
	in.State.ActiveThread = 0
}

// newFrame builds an activation record for a method.
func (in *Interpreter) newFrame(className string, m *CompiledMethod) *StackFrame {
	f := &StackFrame{
		ID:              in.nextFrameID,
		ClassName:       className,
		MethodName:      m.Name,
		MethodSignature: m.Signature,
		PC:              m.Start,
	}
	in.nextFrameID++
	return f
}

// ---------------------------------------------------------------------------
// The step algorithm
// ---------------------------------------------------------------------------

// Step advances the machine by exactly one instruction of one thread.
func (in *Interpreter) Step() StepOutcome {
	s := in.State

	if s.Status == VMCompleted || s.Status == VMError {
		return StepOutcome{Description: "execution finished"}
	}

	// Snapshot before mutating; this is what makes step-back possible.
	in.History.Push(s.Clone())

	in.tickThreads()

	thread := in.selectThread()
	if thread == nil {
		if in.liveThreads() {
			// Sleep timers still need step numbers to advance.
			s.StepNumber++
			return StepOutcome{Description: "all threads waiting"}
		}
		s.Status = VMCompleted
		return StepOutcome{Description: "execution completed"}
	}

	thread.Status = StatusRunning

	frame := thread.Top()
	if frame == nil {
		thread.Status = StatusTerminated
		in.releaseAllMonitors(thread)
		in.rotateThread()
		return StepOutcome{Description: fmt.Sprintf("thread %q terminated", thread.Name)}
	}

	var outcome StepOutcome
	if frame.PC >= len(in.Program.Instructions) || frame.PC < 0 {
		// Past-the-end frame unwinds like a return.
		thread.PopFrame()
		outcome = StepOutcome{Description: fmt.Sprintf("%s.%s returned", frame.ClassName, frame.MethodName)}
	} else {
		instr := in.Program.Instructions[frame.PC]
		desc := in.execute(thread, frame, instr)
		outcome = StepOutcome{Instruction: &instr, Description: desc}
	}

	s.StepNumber++
	thread.StepCount++

	if len(thread.Stack) == 0 {
		thread.Status = StatusTerminated
		in.releaseAllMonitors(thread)
	} else if thread.Status == StatusRunning {
		thread.Status = StatusRunnable
	}

	in.rotateThread()
	if active := s.Active(); active != nil {
		if top := active.Top(); top != nil {
			s.PC = top.PC
		}
	}

	return outcome
}

// ---------------------------------------------------------------------------
// Opcode dispatch
// ---------------------------------------------------------------------------

// execute runs one instruction. Every opcode advances the pc by one except
// the control-flow group, which sets it explicitly; a blocked MONITORENTER
// rewinds so the acquisition retries on the next schedule.
func (in *Interpreter) execute(thread *ThreadState, frame *StackFrame, instr Instruction) string {
	frame.PC++

	switch instr.Op {
	case OpNop:
		return "no operation"

	case OpLine:
		frame.LineNumber = int(instr.IntOperandAt(0))
		return fmt.Sprintf("line %d", frame.LineNumber)

	case OpLoadConst:
		v := constOperand(instr)
		frame.Push(v)
		return "pushed constant " + v.ToString()

	case OpPushNull:
		frame.Push(NullValue())
		return "pushed null"

	case OpLoadLocal:
		slot := int(instr.IntOperandAt(0))
		frame.Push(frame.GetLocal(slot))
		return "loaded local " + instr.Operands[0].Aux

	case OpStoreLocal:
		slot := int(instr.IntOperandAt(0))
		name := instr.Operands[0].Aux
		frame.SetLocal(slot, name, frame.Pop())
		return "stored local " + name

	case OpNew:
		className := instr.StrOperandAt(0)
		obj := in.State.Heap.NewObject(className, in.State.StepNumber)
		in.seedInstanceFields(obj, className)
		frame.Push(RefValue(obj.ID))
		return "created new " + className

	case OpNewArray:
		return in.execNewArray(frame, instr)

	case OpArrayLength:
		arr := in.heapObject(frame.Pop())
		if arr == nil {
			frame.Push(IntValue(0))
		} else {
			frame.Push(IntValue(int64(arr.ArrayLength)))
		}
		return "array length"

	case OpArrayLoad:
		idx := frame.Pop()
		arr := in.heapObject(frame.Pop())
		i := int(idx.AsInt())
		if arr == nil || i < 0 || i >= len(arr.ArrayElements) {
			frame.Push(NullValue())
			return "array load out of bounds"
		}
		frame.Push(arr.ArrayElements[i])
		return fmt.Sprintf("loaded element [%d]", i)

	case OpArrayStore:
		val := frame.Pop()
		idx := frame.Pop()
		arr := in.heapObject(frame.Pop())
		i := int(idx.AsInt())
		if arr == nil || i < 0 || i >= len(arr.ArrayElements) {
			return "array store out of bounds"
		}
		arr.ArrayElements[i] = val
		return fmt.Sprintf("stored element [%d]", i)

	case OpGetField:
		return in.execGetField(frame, instr)

	case OpPutField:
		val := frame.Pop()
		obj := in.heapObject(frame.Pop())
		name := instr.StrOperandAt(0)
		if obj != nil {
			obj.SetField(name, val)
		}
		return "set field " + name

	case OpGetStatic:
		name := instr.StrOperandAt(0)
		owner := instr.Operands[0].Aux
		frame.Push(in.getStatic(owner, name))
		return fmt.Sprintf("loaded static %s.%s", owner, name)

	case OpPutStatic:
		name := instr.StrOperandAt(0)
		owner := instr.Operands[0].Aux
		in.State.MethodArea.SetStatic(owner, name, frame.Pop())
		return fmt.Sprintf("stored static %s.%s", owner, name)

	case OpDup:
		frame.Push(frame.Peek())
		return "duplicated top of stack"

	case OpDupX1:
		b := frame.Pop()
		a := frame.Pop()
		frame.Push(b)
		frame.Push(a)
		frame.Push(b)
		return "duplicated under top"

	case OpPop:
		frame.Pop()
		return "popped top of stack"

	case OpSwap:
		b := frame.Pop()
		a := frame.Pop()
		frame.Push(b)
		frame.Push(a)
		return "swapped top of stack"

	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return in.execArithmetic(frame, instr.Op)

	case OpNeg:
		v := frame.Pop()
		if v.IsFloatingPoint() {
			v.F = -v.F
		} else {
			v.I = -v.I
			if v.PType == PInt {
				v.I = wrapInt32(v.I)
			}
		}
		frame.Push(v)
		return "negated"

	case OpCmpEq, OpCmpNe, OpCmpLt, OpCmpLe, OpCmpGt, OpCmpGe:
		b := frame.Pop()
		a := frame.Pop()
		r := compareValues(instr.Op, a, b)
		frame.Push(BoolValue(r))
		return fmt.Sprintf("compared: %t", r)

	case OpAnd:
		b := frame.Pop()
		a := frame.Pop()
		frame.Push(logicalOp(a, b, true))
		return "and"

	case OpOr:
		b := frame.Pop()
		a := frame.Pop()
		frame.Push(logicalOp(a, b, false))
		return "or"

	case OpNot:
		v := frame.Pop()
		frame.Push(BoolValue(!v.AsBool()))
		return "not"

	case OpGoto:
		frame.PC = int(instr.IntOperandAt(0))
		return fmt.Sprintf("jumped to %d", frame.PC)

	case OpIfTrue:
		if frame.Pop().AsBool() {
			frame.PC = int(instr.IntOperandAt(0))
			return fmt.Sprintf("condition true, jumped to %d", frame.PC)
		}
		return "condition false, fell through"

	case OpIfFalse:
		if !frame.Pop().AsBool() {
			frame.PC = int(instr.IntOperandAt(0))
			return fmt.Sprintf("condition false, jumped to %d", frame.PC)
		}
		return "condition true, fell through"

	case OpInvokeVirtual, OpInvokeInterface, OpInvokeSpecial, OpInvokeStatic:
		return in.execInvoke(thread, frame, instr)

	case OpReturn:
		thread.PopFrame()
		return fmt.Sprintf("returned from %s.%s", frame.ClassName, frame.MethodName)

	case OpReturnValue:
		ret := frame.Pop()
		thread.PopFrame()
		if caller := thread.Top(); caller != nil {
			caller.Push(ret)
		}
		return fmt.Sprintf("returned %s from %s.%s", ret.ToString(), frame.ClassName, frame.MethodName)

	case OpCheckCast:
		frame.Push(castValue(frame.Pop(), instr.StrOperandAt(0)))
		return "cast to " + instr.StrOperandAt(0)

	case OpInstanceOf:
		v := frame.Pop()
		r := in.isInstanceOf(v, instr.StrOperandAt(0))
		frame.Push(BoolValue(r))
		return fmt.Sprintf("instanceof %s: %t", instr.StrOperandAt(0), r)

	case OpLambdaCreate:
		info := instr.StrOperandAt(0)
		obj := in.State.Heap.NewLambda(info, nil, in.State.StepNumber)
		frame.Push(LambdaValue(obj.ID))
		return "created lambda " + info

	case OpLambdaInvoke:
		// Placeholder: lambda bodies are not executed.
		return "lambda invocation (no-op)"

	case OpPrint:
		v := frame.Pop()
		newline := instr.Operands[0].Bool
		in.State.AppendOutput(v.ToString(), newline)
		if newline {
			return "println: " + v.ToString()
		}
		return "print: " + v.ToString()

	case OpThrow:
		v := frame.Pop()
		in.State.Error = in.throwMessage(v)
		in.State.Status = VMError
		return "threw " + in.State.Error

	case OpMonitorEnter:
		ref := frame.Pop()
		if in.acquireMonitor(thread, ref.ObjectID) {
			return fmt.Sprintf("acquired monitor %d", ref.ObjectID)
		}
		// Push the reference back and retry this instruction when next
		// scheduled.
		frame.Push(ref)
		frame.PC--
		thread.Status = StatusBlocked
		thread.WaitingOnMonitor = ref.ObjectID
		return fmt.Sprintf("blocked on monitor %d", ref.ObjectID)

	case OpMonitorExit:
		ref := frame.Pop()
		in.releaseMonitor(thread, ref.ObjectID)
		return fmt.Sprintf("released monitor %d", ref.ObjectID)
	}

	return "unknown instruction " + instr.Op.Name()
}

// ---------------------------------------------------------------------------
// Instruction helpers
// ---------------------------------------------------------------------------

// constOperand materialises the LOAD_CONST operand as a Value.
func constOperand(instr Instruction) Value {
	if len(instr.Operands) == 0 {
		return NullValue()
	}
	op := instr.Operands[0]
	switch op.Kind {
	case OperandInt:
		if len(instr.Operands) > 1 && instr.Operands[1].Str == "char" {
			return CharValue(rune(op.Int))
		}
		return IntValue(op.Int)
	case OperandFloat:
		return DoubleValue(op.Float)
	case OperandString:
		return StringValue(op.Str)
	case OperandBool:
		return BoolValue(op.Bool)
	}
	return NullValue()
}

// heapObject dereferences a value to its heap object, or nil.
func (in *Interpreter) heapObject(v Value) *HeapObject {
	if v.ObjectID == 0 {
		return nil
	}
	return in.State.Heap.Get(v.ObjectID)
}

// seedInstanceFields applies declared instance fields, walking the super
// chain so inherited fields exist from birth.
func (in *Interpreter) seedInstanceFields(obj *HeapObject, className string) {
	seen := 0
	for cls := in.Program.Class(className); cls != nil && seen < 64; seen++ {
		for _, f := range cls.Fields {
			if !f.IsStatic && !obj.HasField(f.Name) {
				obj.Fields = append(obj.Fields, Field{Name: f.Name, Type: f.Type, Value: f.Init})
			}
		}
		if cls.SuperClass == "" {
			break
		}
		cls = in.Program.Class(cls.SuperClass)
	}
}

func (in *Interpreter) execNewArray(frame *StackFrame, instr Instruction) string {
	elemType := instr.StrOperandAt(0)
	dims := int(instr.IntOperandAt(1))
	if dims < 1 {
		dims = 1
	}
	lengths := make([]int, dims)
	for i := dims - 1; i >= 0; i-- {
		lengths[i] = int(frame.Pop().AsInt())
	}
	id := in.allocArray(elemType, lengths)
	frame.Push(ArrayValue(id, elemType))
	return fmt.Sprintf("created %s array of length %d", elemType, lengths[0])
}

// allocArray builds a possibly nested array and returns its heap id.
func (in *Interpreter) allocArray(elemType string, lengths []int) int {
	arr := in.State.Heap.NewArray(elemType, lengths[0], in.State.StepNumber)
	if len(lengths) > 1 {
		for i := range arr.ArrayElements {
			sub := in.allocArray(elemType, lengths[1:])
			arr.ArrayElements[i] = ArrayValue(sub, elemType)
		}
	}
	return arr.ID
}

func (in *Interpreter) execGetField(frame *StackFrame, instr Instruction) string {
	name := instr.StrOperandAt(0)
	recv := frame.Pop()

	// Arrays expose length as a field.
	obj := in.heapObject(recv)
	if obj != nil && obj.Kind == ObjArray && name == "length" {
		frame.Push(IntValue(int64(obj.ArrayLength)))
		return "loaded array length"
	}
	if recv.IsString() && name == "length" {
		frame.Push(IntValue(int64(len(recv.S))))
		return "loaded string length"
	}
	if obj == nil {
		frame.Push(NullValue())
		return "field access on null"
	}
	frame.Push(obj.GetField(name))
	return "loaded field " + name
}

// getStatic resolves GETSTATIC, serving well-known Math constants before
// the method area.
func (in *Interpreter) getStatic(owner, name string) Value {
	if owner == "Math" {
		switch name {
		case "PI":
			return DoubleValue(3.141592653589793)
		case "E":
			return DoubleValue(2.718281828459045)
		}
	}
	if owner == "Integer" {
		switch name {
		case "MAX_VALUE":
			return IntValue(2147483647)
		case "MIN_VALUE":
			return IntValue(-2147483648)
		}
	}
	return in.State.MethodArea.GetStatic(owner, name)
}

// ---------------------------------------------------------------------------
// Arithmetic and comparison
// ---------------------------------------------------------------------------

func (in *Interpreter) execArithmetic(frame *StackFrame, op Opcode) string {
	b := frame.Pop()
	a := frame.Pop()

	// String concatenation: ADD with a string operand coerces both sides.
	if op == OpAdd && (a.IsString() || b.IsString()) {
		r := StringValue(a.ToString() + b.ToString())
		frame.Push(r)
		return "concatenated: " + r.S
	}

	if a.IsFloatingPoint() || b.IsFloatingPoint() {
		x, y := a.AsFloat(), b.AsFloat()
		var r float64
		switch op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpMul:
			r = x * y
		case OpDiv:
			if y == 0 {
				r = 0
			} else {
				r = x / y
			}
		case OpMod:
			if y == 0 {
				r = 0
			} else {
				r = float64(int64(x) % int64(y))
			}
		}
		v := DoubleValue(r)
		frame.Push(v)
		return "computed " + v.ToString()
	}

	x, y := a.AsInt(), b.AsInt()
	var r int64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		// Division by zero soft-fails to 0; integer division truncates
		// toward zero.
		if y == 0 {
			r = 0
		} else {
			r = x / y
		}
	case OpMod:
		if y == 0 {
			r = 0
		} else {
			r = x % y
		}
	}

	var v Value
	if a.PType == PLong || b.PType == PLong {
		v = LongValue(r)
	} else {
		v = IntValue(wrapInt32(r))
	}
	frame.Push(v)
	return "computed " + v.ToString()
}

// compareValues implements the comparison opcodes. Numeric comparisons are
// ordinal, strings compare lexicographically, reference equality compares
// object ids, and every other reference comparison yields false.
func compareValues(op Opcode, a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		x, y := a.AsFloat(), b.AsFloat()
		switch op {
		case OpCmpEq:
			return x == y
		case OpCmpNe:
			return x != y
		case OpCmpLt:
			return x < y
		case OpCmpLe:
			return x <= y
		case OpCmpGt:
			return x > y
		case OpCmpGe:
			return x >= y
		}
	}
	if a.IsString() && b.IsString() {
		switch op {
		case OpCmpEq:
			return a.S == b.S
		case OpCmpNe:
			return a.S != b.S
		case OpCmpLt:
			return a.S < b.S
		case OpCmpLe:
			return a.S <= b.S
		case OpCmpGt:
			return a.S > b.S
		case OpCmpGe:
			return a.S >= b.S
		}
	}
	if a.IsPrimitive(PBoolean) && b.IsPrimitive(PBoolean) {
		switch op {
		case OpCmpEq:
			return a.I == b.I
		case OpCmpNe:
			return a.I != b.I
		}
		return false
	}
	// Reference comparison by object id.
	switch op {
	case OpCmpEq:
		return a.Kind != KindPrimitive && b.Kind != KindPrimitive && a.ObjectID == b.ObjectID
	case OpCmpNe:
		return a.Kind == KindPrimitive || b.Kind == KindPrimitive || a.ObjectID != b.ObjectID
	}
	return false
}

// logicalOp is AND/OR: boolean logic for booleans, bitwise for integers.
func logicalOp(a, b Value, and bool) Value {
	if a.IsPrimitive(PBoolean) || b.IsPrimitive(PBoolean) {
		if and {
			return BoolValue(a.AsBool() && b.AsBool())
		}
		return BoolValue(a.AsBool() || b.AsBool())
	}
	if and {
		return IntValue(wrapInt32(a.AsInt() & b.AsInt()))
	}
	return IntValue(wrapInt32(a.AsInt() | b.AsInt()))
}

// castValue applies primitive narrowing/widening; reference casts pass
// through unchanged.
func castValue(v Value, typeName string) Value {
	switch typeName {
	case "int":
		return IntValue(wrapInt32(v.AsInt()))
	case "long":
		return LongValue(v.AsInt())
	case "short":
		return Value{Kind: KindPrimitive, PType: PShort, I: int64(int16(v.AsInt()))}
	case "byte":
		return Value{Kind: KindPrimitive, PType: PByte, I: int64(int8(v.AsInt()))}
	case "char":
		return CharValue(rune(v.AsInt()))
	case "double":
		return DoubleValue(v.AsFloat())
	case "float":
		return FloatValue(v.AsFloat())
	case "boolean":
		return BoolValue(v.AsBool())
	}
	return v
}

// isInstanceOf walks the loaded class hierarchy.
func (in *Interpreter) isInstanceOf(v Value, typeName string) bool {
	switch v.Kind {
	case KindPrimitive:
		return v.PType == PString && typeName == "String"
	case KindArray:
		return strings.HasSuffix(typeName, "[]") || typeName == "Object"
	case KindLambda:
		return typeName == "Object" || !IsWellKnownClass(typeName)
	case KindReference:
		obj := in.heapObject(v)
		if obj == nil {
			return false
		}
		if typeName == "Object" {
			return true
		}
		if obj.ClassName == typeName {
			return true
		}
		return in.Program.IsSubclassOf(obj.ClassName, typeName)
	}
	return false
}

// throwMessage renders a thrown value as "ClassName: message".
func (in *Interpreter) throwMessage(v Value) string {
	obj := in.heapObject(v)
	if obj == nil {
		if v.IsString() {
			return "Exception: " + v.S
		}
		return "Exception: " + v.ToString()
	}
	msg := obj.GetField("message")
	if msg.IsString() && msg.S != "" {
		return obj.ClassName + ": " + msg.S
	}
	return obj.ClassName
}

// ---------------------------------------------------------------------------
// Invocation
// ---------------------------------------------------------------------------

// execInvoke pops arguments (preserving order), then the receiver for
// non-static calls, tries the stdlib shim first, and finally walks the
// user class hierarchy. An unresolvable call advances with no side effect.
func (in *Interpreter) execInvoke(thread *ThreadState, frame *StackFrame, instr Instruction) string {
	method := instr.StrOperandAt(0)
	descriptor := instr.Operands[0].Aux
	argc := int(instr.IntOperandAt(1))

	args := make([]Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = frame.Pop()
	}

	var receiver Value
	var className string
	static := instr.Op == OpInvokeStatic
	if static {
		className = instr.StrOperandAt(2)
	} else {
		receiver = frame.Pop()
		className = in.classOf(receiver)
	}

	// Stdlib shim first.
	if done, desc := in.invokeStdlib(thread, frame, instr.Op, className, method, receiver, args); done {
		return desc
	}

	// User-defined lookup walking the superclass chain.
	lookupClass := className
	if descriptor == "super" {
		if cls := in.Program.Class(frame.ClassName); cls != nil && cls.SuperClass != "" {
			lookupClass = cls.SuperClass
		}
	}
	m, owner := in.Program.LookupMethod(lookupClass, method, argc)
	if m == nil {
		return fmt.Sprintf("method %s.%s/%d not found (skipped)", className, method, argc)
	}

	callee := in.newFrame(owner.Name, m)
	slot := 0
	if !m.IsStatic {
		callee.SetLocal(0, "this", receiver)
		slot = 1
	}
	for i, a := range args {
		name := ""
		if i < len(m.ParamNames) {
			name = m.ParamNames[i]
		}
		callee.SetLocal(slot+i, name, a)
	}
	thread.PushFrame(callee)
	return fmt.Sprintf("invoked %s.%s", owner.Name, m.Signature)
}

// classOf derives the dispatch class for a receiver value.
func (in *Interpreter) classOf(v Value) string {
	switch v.Kind {
	case KindPrimitive:
		switch v.PType {
		case PString:
			return "String"
		case PInt, PByte, PShort:
			return "Integer"
		case PLong:
			return "Long"
		case PFloat:
			return "Float"
		case PDouble:
			return "Double"
		case PChar:
			return "Character"
		case PBoolean:
			return "Boolean"
		}
	case KindArray:
		return "Array"
	case KindLambda:
		return "Lambda"
	case KindReference:
		if obj := in.heapObject(v); obj != nil {
			return obj.ClassName
		}
	}
	return "Object"
}

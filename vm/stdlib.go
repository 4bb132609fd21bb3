package vm

import "strings"

// ---------------------------------------------------------------------------
// Stdlib shim: intercepts well-known JDK calls before user dispatch
// ---------------------------------------------------------------------------

// Class family sets. Matchers are enumerated explicitly; the map family
// additionally accepts a "Map" suffix for user-named map wrappers.
var (
	mapClasses = map[string]bool{
		"HashMap": true, "LinkedHashMap": true, "TreeMap": true,
		"Hashtable": true, "Map": true,
	}
	setClasses = map[string]bool{
		"HashSet": true, "LinkedHashSet": true, "TreeSet": true, "Set": true,
	}
	listClasses = map[string]bool{
		"ArrayList": true, "LinkedList": true, "Stack": true, "Vector": true,
		"List": true, "ArrayDeque": true, "Deque": true, "Queue": true,
		"PriorityQueue": true,
	}
	exceptionClasses = map[string]bool{
		"Throwable": true, "Exception": true, "RuntimeException": true,
		"Error": true, "IllegalArgumentException": true,
		"IllegalStateException": true, "NullPointerException": true,
		"ArithmeticException": true, "IndexOutOfBoundsException": true,
		"ArrayIndexOutOfBoundsException": true, "StringIndexOutOfBoundsException": true,
		"UnsupportedOperationException": true, "ClassCastException": true,
		"NumberFormatException": true, "InterruptedException": true,
		"ConcurrentModificationException": true, "NoSuchElementException": true,
	}
	boxClasses = map[string]bool{
		"Integer": true, "Long": true, "Double": true, "Float": true,
		"Character": true, "Boolean": true, "Byte": true, "Short": true,
		"Number": true,
	}
)

func isMapClass(name string) bool {
	return mapClasses[name] || strings.HasSuffix(name, "Map")
}

func isSetClass(name string) bool {
	return setClasses[name]
}

func isListClass(name string) bool {
	return listClasses[name]
}

// IsWellKnownClass reports whether the class name belongs to the emulated
// JDK surface rather than user code.
func IsWellKnownClass(name string) bool {
	return isMapClass(name) || isSetClass(name) || isListClass(name) ||
		exceptionClasses[name] || boxClasses[name] ||
		name == "String" || name == "StringBuilder" || name == "StringBuffer" ||
		name == "Thread" || name == "Scanner" || name == "Object" ||
		name == "Math" || name == "System" || name == "Collections" ||
		name == "Arrays" || name == "Objects"
}

// isStringReceiver matches primitive strings and heap String objects.
func (in *Interpreter) isStringReceiver(v Value) bool {
	if v.IsString() {
		return true
	}
	if obj := in.heapObject(v); obj != nil {
		return obj.Kind == ObjString || obj.ClassName == "String"
	}
	return false
}

// stringContent extracts the character content of a string receiver.
func (in *Interpreter) stringContent(v Value) string {
	if v.IsString() {
		return v.S
	}
	if obj := in.heapObject(v); obj != nil {
		return obj.StringValue
	}
	return ""
}

// isThreadClass walks the super chain for Thread ancestry.
func (in *Interpreter) isThreadClass(name string) bool {
	if name == "Thread" {
		return true
	}
	seen := 0
	for cls := in.Program.Class(name); cls != nil && seen < 64; seen++ {
		if cls.SuperClass == "Thread" {
			return true
		}
		cls = in.Program.Class(cls.SuperClass)
	}
	return false
}

// invokeStdlib is the dispatch table entry point, keyed on receiver class
// (or the static class operand), method name, and arity. A hit pops
// nothing further (the caller already popped), pushes the return value,
// and reports a description.
func (in *Interpreter) invokeStdlib(thread *ThreadState, frame *StackFrame, op Opcode, className, method string, receiver Value, args []Value) (bool, string) {
	if op == OpInvokeStatic {
		return in.invokeStaticStdlib(thread, frame, className, method, args)
	}

	// Instance dispatch by receiver family.
	if in.isStringReceiver(receiver) {
		return in.invokeString(frame, method, receiver, args)
	}

	obj := in.heapObject(receiver)
	if obj == nil {
		if receiver.Kind == KindPrimitive {
			return in.invokeBoxed(frame, method, receiver, args)
		}
		if receiver.Kind == KindLambda || receiver.Kind == KindArray {
			return in.invokeArrayOrLambda(frame, method, receiver, args)
		}
		return false, ""
	}

	switch {
	case isMapClass(obj.ClassName):
		return in.invokeMap(frame, method, obj, args)
	case isSetClass(obj.ClassName):
		return in.invokeSet(frame, method, obj, args)
	case isListClass(obj.ClassName):
		return in.invokeList(frame, method, obj, receiver, args)
	case obj.ClassName == "$Iterator" || obj.ClassName == "$SetIterator":
		return in.invokeIterator(frame, method, obj, args)
	case obj.ClassName == "$MapEntry":
		return in.invokeMapEntry(frame, method, obj, args)
	case obj.ClassName == "StringBuilder" || obj.ClassName == "StringBuffer":
		return in.invokeStringBuilder(frame, method, receiver, obj, args)
	case obj.ClassName == "Scanner":
		return in.invokeScanner(frame, method, args)
	case exceptionClasses[obj.ClassName]:
		return in.invokeException(frame, method, obj, args)
	case in.isThreadClass(obj.ClassName):
		if handled, desc := in.invokeThread(thread, frame, method, receiver, obj, args); handled {
			return true, desc
		}
	case obj.Kind == ObjLambda:
		return in.invokeArrayOrLambda(frame, method, receiver, args)
	}

	// Object fallbacks apply only when the user's class chain does not
	// define the method itself.
	if m, _ := in.Program.LookupMethod(obj.ClassName, method, len(args)); m == nil {
		return in.invokeObjectFallback(frame, method, receiver, obj, args)
	}
	return false, ""
}

// invokeStaticStdlib dispatches INVOKE_STATIC by class operand.
func (in *Interpreter) invokeStaticStdlib(thread *ThreadState, frame *StackFrame, className, method string, args []Value) (bool, string) {
	switch className {
	case "Math":
		return in.invokeMath(frame, method, args)
	case "String":
		return in.invokeStringStatic(frame, method, args)
	case "Integer", "Long", "Double", "Float", "Character", "Boolean", "Byte", "Short", "Number":
		return in.invokeBoxedStatic(frame, className, method, args)
	case "Collections":
		return in.invokeCollections(frame, method, args)
	case "Arrays":
		return in.invokeArrays(frame, method, args)
	case "Objects":
		return in.invokeObjectsStatic(frame, method, args)
	case "System":
		return in.invokeSystem(frame, method, args)
	case "Thread":
		return in.invokeThreadStatic(thread, frame, method, args)
	}
	return false, ""
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// valueEquals compares values the way collection membership does:
// primitives by payload, references by object id.
func valueEquals(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return a.AsFloat() == b.AsFloat()
	}
	if a.IsString() && b.IsString() {
		return a.S == b.S
	}
	if a.Kind == KindPrimitive && b.Kind == KindPrimitive {
		return a.PType == b.PType && a.I == b.I && a.S == b.S
	}
	if a.Kind != KindPrimitive && b.Kind != KindPrimitive {
		return a.ObjectID == b.ObjectID
	}
	return false
}

// stringifyKey renders a map key or set element for storage. Composite
// keys are stringified; this is what makes key uniqueness natural.
func (in *Interpreter) stringifyKey(v Value) string {
	if obj := in.heapObject(v); obj != nil && obj.Kind == ObjString {
		return obj.StringValue
	}
	return v.ToString()
}

// argAt returns args[i] or null.
func argAt(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return NullValue()
}

package vm

import "fmt"

// ---------------------------------------------------------------------------
// StringBuilder, Scanner, exception constructors, and Object fallbacks
// ---------------------------------------------------------------------------

// invokeStringBuilder serves StringBuilder/StringBuffer, backed by a
// single $sb field holding a primitive string.
func (in *Interpreter) invokeStringBuilder(frame *StackFrame, method string, receiver Value, obj *HeapObject, args []Value) (bool, string) {
	sb := obj.GetField("$sb")
	content := ""
	if sb.IsString() {
		content = sb.S
	}

	switch method {
	case "<init>":
		if a := argAt(args, 0); a.IsString() {
			obj.SetField("$sb", a)
		} else {
			obj.SetField("$sb", StringValue(""))
		}
		return true, "initialised " + obj.ClassName

	case "append":
		a := argAt(args, 0)
		text := a.ToString()
		if o := in.heapObject(a); o != nil && o.Kind == ObjString {
			text = o.StringValue
		}
		obj.SetField("$sb", StringValue(content+text))
		frame.Push(receiver)
		return true, obj.ClassName + ".append"

	case "toString":
		frame.Push(StringValue(content))
		return true, obj.ClassName + ".toString"

	case "length":
		frame.Push(IntValue(int64(len([]rune(content)))))
		return true, obj.ClassName + ".length"

	case "reverse":
		runes := []rune(content)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		obj.SetField("$sb", StringValue(string(runes)))
		frame.Push(receiver)
		return true, obj.ClassName + ".reverse"

	case "delete":
		runes := []rune(content)
		start := clampIndex(int(argAt(args, 0).AsInt()), len(runes))
		end := clampIndex(int(argAt(args, 1).AsInt()), len(runes))
		if start < end {
			obj.SetField("$sb", StringValue(string(runes[:start])+string(runes[end:])))
		}
		frame.Push(receiver)
		return true, obj.ClassName + ".delete"

	case "deleteCharAt":
		runes := []rune(content)
		i := int(argAt(args, 0).AsInt())
		if i >= 0 && i < len(runes) {
			obj.SetField("$sb", StringValue(string(runes[:i])+string(runes[i+1:])))
		}
		frame.Push(receiver)
		return true, obj.ClassName + ".deleteCharAt"

	case "insert":
		runes := []rune(content)
		i := clampIndex(int(argAt(args, 0).AsInt()), len(runes))
		text := argAt(args, 1).ToString()
		obj.SetField("$sb", StringValue(string(runes[:i])+text+string(runes[i:])))
		frame.Push(receiver)
		return true, obj.ClassName + ".insert"

	case "charAt":
		runes := []rune(content)
		i := int(argAt(args, 0).AsInt())
		if i < 0 || i >= len(runes) {
			frame.Push(CharValue(0))
		} else {
			frame.Push(CharValue(runes[i]))
		}
		return true, obj.ClassName + ".charAt"

	case "setLength":
		runes := []rune(content)
		n := int(argAt(args, 0).AsInt())
		if n >= 0 && n < len(runes) {
			obj.SetField("$sb", StringValue(string(runes[:n])))
		}
		frame.Push(NullValue())
		return true, obj.ClassName + ".setLength"

	case "isEmpty":
		frame.Push(BoolValue(content == ""))
		return true, obj.ClassName + ".isEmpty"
	}
	return false, ""
}

// invokeScanner returns zero and empty defaults: no stdin is provided.
func (in *Interpreter) invokeScanner(frame *StackFrame, method string, args []Value) (bool, string) {
	switch method {
	case "<init>":
		return true, "Scanner.<init>"

	case "close":
		frame.Push(NullValue())
		return true, "Scanner.close"

	case "nextInt":
		frame.Push(IntValue(0))
		return true, "Scanner.nextInt (no stdin)"

	case "nextLong":
		frame.Push(LongValue(0))
		return true, "Scanner.nextLong (no stdin)"

	case "nextDouble", "nextFloat":
		frame.Push(DoubleValue(0))
		return true, "Scanner." + method + " (no stdin)"

	case "next", "nextLine":
		frame.Push(StringValue(""))
		return true, "Scanner." + method + " (no stdin)"

	case "nextBoolean":
		frame.Push(BoolValue(false))
		return true, "Scanner.nextBoolean (no stdin)"

	case "hasNext", "hasNextInt", "hasNextLine", "hasNextDouble":
		frame.Push(BoolValue(false))
		return true, "Scanner." + method
	}
	return false, ""
}

// invokeException serves the closed constructor whitelist plus accessors.
func (in *Interpreter) invokeException(frame *StackFrame, method string, obj *HeapObject, args []Value) (bool, string) {
	switch method {
	case "<init>":
		if a := argAt(args, 0); a.IsString() {
			obj.SetField("message", a)
		}
		return true, "initialised " + obj.ClassName

	case "getMessage", "getLocalizedMessage":
		frame.Push(obj.GetField("message"))
		return true, obj.ClassName + ".getMessage"

	case "toString":
		msg := obj.GetField("message")
		if msg.IsString() && msg.S != "" {
			frame.Push(StringValue(obj.ClassName + ": " + msg.S))
		} else {
			frame.Push(StringValue(obj.ClassName))
		}
		return true, obj.ClassName + ".toString"

	case "printStackTrace":
		msg := obj.GetField("message")
		line := obj.ClassName
		if msg.IsString() && msg.S != "" {
			line += ": " + msg.S
		}
		in.State.AppendOutput(line, true)
		frame.Push(NullValue())
		return true, obj.ClassName + ".printStackTrace"
	}
	return false, ""
}

// invokeObjectFallback serves java.lang.Object methods for receivers whose
// class chain does not define them, including the wait/notify family.
func (in *Interpreter) invokeObjectFallback(frame *StackFrame, method string, receiver Value, obj *HeapObject, args []Value) (bool, string) {
	thread := in.State.Active()

	switch method {
	case "toString":
		frame.Push(StringValue(fmt.Sprintf("%s@%d", obj.ClassName, obj.ID)))
		return true, "Object.toString"

	case "equals":
		frame.Push(BoolValue(valueEquals(receiver, argAt(args, 0))))
		return true, "Object.equals"

	case "hashCode":
		frame.Push(IntValue(int64(obj.ID)))
		return true, "Object.hashCode"

	case "getClass":
		frame.Push(StringValue(obj.ClassName))
		return true, "Object.getClass"

	case "wait":
		if thread == nil {
			return false, ""
		}
		return in.objectWait(thread, frame, obj, args)

	case "notify":
		return in.objectNotify(frame, obj, false)

	case "notifyAll":
		return in.objectNotify(frame, obj, true)

	case "<init>":
		// Constructor of a class with no user-defined constructor.
		return true, "initialised " + obj.ClassName
	}
	return false, ""
}

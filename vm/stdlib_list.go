package vm

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// List / Deque / Queue / Stack stdlib. Elements live in the heap object's
// array-element slice; the deque vocabulary maps onto front/back edits.
// ---------------------------------------------------------------------------

func (in *Interpreter) invokeList(frame *StackFrame, method string, obj *HeapObject, receiver Value, args []Value) (bool, string) {
	push := func(v Value, desc string) (bool, string) {
		frame.Push(v)
		return true, desc
	}
	cls := obj.ClassName
	syncLen := func() {
		obj.ArrayLength = len(obj.ArrayElements)
	}

	switch method {
	case "<init>":
		// Copy-constructor form seeds from another collection.
		if src := in.heapObject(argAt(args, 0)); src != nil && len(src.ArrayElements) > 0 {
			obj.ArrayElements = append(obj.ArrayElements, src.ArrayElements...)
			syncLen()
		}
		return true, "initialised " + cls

	case "add":
		if len(args) == 2 && args[0].IsPrimitive(PInt) {
			i := clampIndex(int(args[0].AsInt()), len(obj.ArrayElements))
			obj.ArrayElements = append(obj.ArrayElements, NullValue())
			copy(obj.ArrayElements[i+1:], obj.ArrayElements[i:])
			obj.ArrayElements[i] = args[1]
			syncLen()
			return push(BoolValue(true), cls+".add at index")
		}
		obj.ArrayElements = append(obj.ArrayElements, argAt(args, 0))
		syncLen()
		return push(BoolValue(true), cls+".add")

	case "addAll":
		if src := in.heapObject(argAt(args, 0)); src != nil {
			obj.ArrayElements = append(obj.ArrayElements, src.ArrayElements...)
			syncLen()
			return push(BoolValue(len(src.ArrayElements) > 0), cls+".addAll")
		}
		return push(BoolValue(false), cls+".addAll")

	case "get":
		i := int(argAt(args, 0).AsInt())
		if i < 0 || i >= len(obj.ArrayElements) {
			return push(NullValue(), cls+".get out of bounds")
		}
		return push(obj.ArrayElements[i], fmt.Sprintf("%s.get(%d)", cls, i))

	case "set":
		i := int(argAt(args, 0).AsInt())
		if i < 0 || i >= len(obj.ArrayElements) {
			return push(NullValue(), cls+".set out of bounds")
		}
		old := obj.ArrayElements[i]
		obj.ArrayElements[i] = argAt(args, 1)
		return push(old, fmt.Sprintf("%s.set(%d)", cls, i))

	case "remove":
		// remove(int) removes positionally; remove(value) removes the
		// first equal element.
		a := argAt(args, 0)
		if a.IsPrimitive(PInt) {
			i := int(a.AsInt())
			if i < 0 || i >= len(obj.ArrayElements) {
				return push(NullValue(), cls+".remove out of bounds")
			}
			old := obj.ArrayElements[i]
			obj.ArrayElements = append(obj.ArrayElements[:i], obj.ArrayElements[i+1:]...)
			syncLen()
			return push(old, fmt.Sprintf("%s.remove(%d)", cls, i))
		}
		for i, el := range obj.ArrayElements {
			if valueEquals(el, a) {
				obj.ArrayElements = append(obj.ArrayElements[:i], obj.ArrayElements[i+1:]...)
				syncLen()
				return push(BoolValue(true), cls+".remove")
			}
		}
		return push(BoolValue(false), cls+".remove")

	case "removeAll":
		removed := false
		if src := in.heapObject(argAt(args, 0)); src != nil {
			var kept []Value
			for _, el := range obj.ArrayElements {
				if containsValue(src.ArrayElements, el) {
					removed = true
					continue
				}
				kept = append(kept, el)
			}
			obj.ArrayElements = kept
			syncLen()
		}
		return push(BoolValue(removed), cls+".removeAll")

	case "retainAll":
		changed := false
		if src := in.heapObject(argAt(args, 0)); src != nil {
			var kept []Value
			for _, el := range obj.ArrayElements {
				if containsValue(src.ArrayElements, el) {
					kept = append(kept, el)
				} else {
					changed = true
				}
			}
			obj.ArrayElements = kept
			syncLen()
		}
		return push(BoolValue(changed), cls+".retainAll")

	case "size":
		return push(IntValue(int64(len(obj.ArrayElements))), cls+".size")

	case "isEmpty":
		return push(BoolValue(len(obj.ArrayElements) == 0), cls+".isEmpty")

	case "contains":
		return push(BoolValue(containsValue(obj.ArrayElements, argAt(args, 0))), cls+".contains")

	case "containsAll":
		all := true
		if src := in.heapObject(argAt(args, 0)); src != nil {
			for _, el := range src.ArrayElements {
				if !containsValue(obj.ArrayElements, el) {
					all = false
					break
				}
			}
		}
		return push(BoolValue(all), cls+".containsAll")

	case "indexOf":
		for i, el := range obj.ArrayElements {
			if valueEquals(el, argAt(args, 0)) {
				return push(IntValue(int64(i)), cls+".indexOf")
			}
		}
		return push(IntValue(-1), cls+".indexOf")

	case "lastIndexOf":
		for i := len(obj.ArrayElements) - 1; i >= 0; i-- {
			if valueEquals(obj.ArrayElements[i], argAt(args, 0)) {
				return push(IntValue(int64(i)), cls+".lastIndexOf")
			}
		}
		return push(IntValue(-1), cls+".lastIndexOf")

	case "clear":
		obj.ArrayElements = nil
		syncLen()
		return push(NullValue(), cls+".clear")

	case "subList":
		from := clampIndex(int(argAt(args, 0).AsInt()), len(obj.ArrayElements))
		to := clampIndex(int(argAt(args, 1).AsInt()), len(obj.ArrayElements))
		sub := in.State.Heap.NewObject("ArrayList", in.State.StepNumber)
		if from < to {
			sub.ArrayElements = append(sub.ArrayElements, obj.ArrayElements[from:to]...)
		}
		sub.ArrayLength = len(sub.ArrayElements)
		return push(RefValue(sub.ID), cls+".subList")

	case "iterator", "listIterator":
		it := in.newIterator(obj, "$Iterator")
		return push(RefValue(it.ID), cls+".iterator")

	case "descendingIterator":
		rev := in.State.Heap.NewObject("ArrayList", in.State.StepNumber)
		for i := len(obj.ArrayElements) - 1; i >= 0; i-- {
			rev.ArrayElements = append(rev.ArrayElements, obj.ArrayElements[i])
		}
		rev.ArrayLength = len(rev.ArrayElements)
		it := in.newIterator(rev, "$Iterator")
		return push(RefValue(it.ID), cls+".descendingIterator")

	case "toArray":
		arr := in.State.Heap.NewArray("Object", len(obj.ArrayElements), in.State.StepNumber)
		copy(arr.ArrayElements, obj.ArrayElements)
		return push(ArrayValue(arr.ID, "Object"), cls+".toArray")

	case "sort":
		sortElements(obj.ArrayElements)
		return push(NullValue(), cls+".sort")

	case "reverse":
		reverseElements(obj.ArrayElements)
		return push(NullValue(), cls+".reverse")

	case "stream":
		// stream() degenerates to exposing the backing elements.
		return push(receiver, cls+".stream")

	case "forEach":
		return push(NullValue(), cls+".forEach (no-op)")

	case "toString":
		return push(StringValue(in.elementsToString(obj.ArrayElements)), cls+".toString")

	case "hashCode":
		return push(IntValue(javaStringHash(in.elementsToString(obj.ArrayElements))), cls+".hashCode")

	case "equals":
		other := in.heapObject(argAt(args, 0))
		if other == nil || len(other.ArrayElements) != len(obj.ArrayElements) {
			return push(BoolValue(false), cls+".equals")
		}
		for i := range obj.ArrayElements {
			if !valueEquals(obj.ArrayElements[i], other.ArrayElements[i]) {
				return push(BoolValue(false), cls+".equals")
			}
		}
		return push(BoolValue(true), cls+".equals")

	// Deque, queue, and stack vocabulary
	case "addFirst", "offerFirst", "push":
		obj.ArrayElements = append([]Value{argAt(args, 0)}, obj.ArrayElements...)
		syncLen()
		return push(argAt(args, 0), cls+"."+method)

	case "addLast", "offerLast", "offer", "enqueue":
		obj.ArrayElements = append(obj.ArrayElements, argAt(args, 0))
		syncLen()
		return push(BoolValue(true), cls+"."+method)

	case "removeFirst", "poll", "pop", "dequeue", "pollFirst":
		if len(obj.ArrayElements) == 0 {
			return push(NullValue(), cls+"."+method+" (empty)")
		}
		head := obj.ArrayElements[0]
		obj.ArrayElements = obj.ArrayElements[1:]
		syncLen()
		return push(head, cls+"."+method)

	case "removeLast", "pollLast":
		if len(obj.ArrayElements) == 0 {
			return push(NullValue(), cls+"."+method+" (empty)")
		}
		tail := obj.ArrayElements[len(obj.ArrayElements)-1]
		obj.ArrayElements = obj.ArrayElements[:len(obj.ArrayElements)-1]
		syncLen()
		return push(tail, cls+"."+method)

	case "peekFirst", "peek", "element", "getFirst":
		if len(obj.ArrayElements) == 0 {
			return push(NullValue(), cls+"."+method+" (empty)")
		}
		return push(obj.ArrayElements[0], cls+"."+method)

	case "peekLast", "getLast":
		if len(obj.ArrayElements) == 0 {
			return push(NullValue(), cls+"."+method+" (empty)")
		}
		return push(obj.ArrayElements[len(obj.ArrayElements)-1], cls+"."+method)
	}
	return false, ""
}

// ---------------------------------------------------------------------------
// Shared element helpers
// ---------------------------------------------------------------------------

func containsValue(elements []Value, want Value) bool {
	for _, el := range elements {
		if valueEquals(el, want) {
			return true
		}
	}
	return false
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// sortElements sorts numerically when every element is numeric, falling
// back to lexicographic ordering otherwise.
func sortElements(elements []Value) {
	allNumeric := true
	for _, el := range elements {
		if !el.IsNumeric() {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		sort.SliceStable(elements, func(i, j int) bool {
			return elements[i].AsFloat() < elements[j].AsFloat()
		})
		return
	}
	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].ToString() < elements[j].ToString()
	})
}

func reverseElements(elements []Value) {
	for i, j := 0, len(elements)-1; i < j; i, j = i+1, j-1 {
		elements[i], elements[j] = elements[j], elements[i]
	}
}

func (in *Interpreter) elementsToString(elements []Value) string {
	s := "["
	for i, el := range elements {
		if i > 0 {
			s += ", "
		}
		if obj := in.heapObject(el); obj != nil && obj.Kind == ObjString {
			s += obj.StringValue
		} else {
			s += el.ToString()
		}
	}
	return s + "]"
}

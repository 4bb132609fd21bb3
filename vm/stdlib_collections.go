package vm

import "fmt"

// ---------------------------------------------------------------------------
// Map and Set stdlib. Maps repurpose the heap object's field list as the
// entry table, with the stringified key as the field name; sets keep their
// elements in the array-element slice.
// ---------------------------------------------------------------------------

func (in *Interpreter) invokeMap(frame *StackFrame, method string, obj *HeapObject, args []Value) (bool, string) {
	push := func(v Value, desc string) (bool, string) {
		frame.Push(v)
		return true, desc
	}

	switch method {
	case "<init>":
		return true, "initialised " + obj.ClassName

	case "put":
		key := in.stringifyKey(argAt(args, 0))
		val := argAt(args, 1)
		old := NullValue()
		if obj.HasField(key) {
			old = obj.GetField(key)
		}
		obj.SetField(key, val)
		return push(old, fmt.Sprintf("%s.put(%s)", obj.ClassName, key))

	case "get":
		key := in.stringifyKey(argAt(args, 0))
		return push(obj.GetField(key), fmt.Sprintf("%s.get(%s)", obj.ClassName, key))

	case "getOrDefault":
		key := in.stringifyKey(argAt(args, 0))
		if obj.HasField(key) {
			return push(obj.GetField(key), obj.ClassName+".getOrDefault")
		}
		return push(argAt(args, 1), obj.ClassName+".getOrDefault")

	case "putIfAbsent":
		key := in.stringifyKey(argAt(args, 0))
		if obj.HasField(key) {
			return push(obj.GetField(key), obj.ClassName+".putIfAbsent")
		}
		obj.SetField(key, argAt(args, 1))
		return push(NullValue(), obj.ClassName+".putIfAbsent")

	case "containsKey":
		key := in.stringifyKey(argAt(args, 0))
		return push(BoolValue(obj.HasField(key)), obj.ClassName+".containsKey")

	case "containsValue":
		want := argAt(args, 0)
		for i := range obj.Fields {
			if valueEquals(obj.Fields[i].Value, want) {
				return push(BoolValue(true), obj.ClassName+".containsValue")
			}
		}
		return push(BoolValue(false), obj.ClassName+".containsValue")

	case "size":
		return push(IntValue(int64(obj.UserFieldCount())), obj.ClassName+".size")

	case "isEmpty":
		return push(BoolValue(obj.UserFieldCount() == 0), obj.ClassName+".isEmpty")

	case "remove":
		key := in.stringifyKey(argAt(args, 0))
		old := obj.GetField(key)
		obj.RemoveField(key)
		return push(old, obj.ClassName+".remove")

	case "clear":
		obj.Fields = nil
		return push(NullValue(), obj.ClassName+".clear")

	case "entrySet":
		set := in.State.Heap.NewObject("LinkedHashSet", in.State.StepNumber)
		for i := range obj.Fields {
			entry := in.State.Heap.NewObject("$MapEntry", in.State.StepNumber)
			entry.SetField("key", StringValue(obj.Fields[i].Name))
			entry.SetField("value", obj.Fields[i].Value)
			set.ArrayElements = append(set.ArrayElements, RefValue(entry.ID))
		}
		set.ArrayLength = len(set.ArrayElements)
		return push(RefValue(set.ID), obj.ClassName+".entrySet")

	case "keySet":
		set := in.State.Heap.NewObject("LinkedHashSet", in.State.StepNumber)
		for i := range obj.Fields {
			set.ArrayElements = append(set.ArrayElements, StringValue(obj.Fields[i].Name))
		}
		set.ArrayLength = len(set.ArrayElements)
		return push(RefValue(set.ID), obj.ClassName+".keySet")

	case "values":
		list := in.State.Heap.NewObject("ArrayList", in.State.StepNumber)
		for i := range obj.Fields {
			list.ArrayElements = append(list.ArrayElements, obj.Fields[i].Value)
		}
		list.ArrayLength = len(list.ArrayElements)
		return push(RefValue(list.ID), obj.ClassName+".values")

	case "forEach":
		return push(NullValue(), obj.ClassName+".forEach (no-op)")

	case "toString":
		return push(StringValue(in.mapToString(obj)), obj.ClassName+".toString")
	}
	return false, ""
}

func (in *Interpreter) mapToString(obj *HeapObject) string {
	s := "{"
	for i := range obj.Fields {
		if i > 0 {
			s += ", "
		}
		s += obj.Fields[i].Name + "=" + obj.Fields[i].Value.ToString()
	}
	return s + "}"
}

// ---------------------------------------------------------------------------
// Set stdlib
// ---------------------------------------------------------------------------

func (in *Interpreter) invokeSet(frame *StackFrame, method string, obj *HeapObject, args []Value) (bool, string) {
	push := func(v Value, desc string) (bool, string) {
		frame.Push(v)
		return true, desc
	}

	switch method {
	case "<init>":
		return true, "initialised " + obj.ClassName

	case "add":
		el := argAt(args, 0)
		key := in.stringifyKey(el)
		for _, have := range obj.ArrayElements {
			if in.stringifyKey(have) == key {
				return push(BoolValue(false), obj.ClassName+".add (duplicate)")
			}
		}
		obj.ArrayElements = append(obj.ArrayElements, el)
		obj.ArrayLength = len(obj.ArrayElements)
		return push(BoolValue(true), obj.ClassName+".add")

	case "contains":
		key := in.stringifyKey(argAt(args, 0))
		for _, have := range obj.ArrayElements {
			if in.stringifyKey(have) == key {
				return push(BoolValue(true), obj.ClassName+".contains")
			}
		}
		return push(BoolValue(false), obj.ClassName+".contains")

	case "remove":
		key := in.stringifyKey(argAt(args, 0))
		for i, have := range obj.ArrayElements {
			if in.stringifyKey(have) == key {
				obj.ArrayElements = append(obj.ArrayElements[:i], obj.ArrayElements[i+1:]...)
				obj.ArrayLength = len(obj.ArrayElements)
				return push(BoolValue(true), obj.ClassName+".remove")
			}
		}
		return push(BoolValue(false), obj.ClassName+".remove")

	case "size":
		return push(IntValue(int64(len(obj.ArrayElements))), obj.ClassName+".size")

	case "isEmpty":
		return push(BoolValue(len(obj.ArrayElements) == 0), obj.ClassName+".isEmpty")

	case "clear":
		obj.ArrayElements = nil
		obj.ArrayLength = 0
		return push(NullValue(), obj.ClassName+".clear")

	case "iterator":
		it := in.newIterator(obj, "$SetIterator")
		return push(RefValue(it.ID), obj.ClassName+".iterator")

	case "toArray":
		arr := in.State.Heap.NewArray("Object", len(obj.ArrayElements), in.State.StepNumber)
		copy(arr.ArrayElements, obj.ArrayElements)
		return push(ArrayValue(arr.ID, "Object"), obj.ClassName+".toArray")

	case "forEach":
		return push(NullValue(), obj.ClassName+".forEach (no-op)")

	case "toString":
		return push(StringValue(in.elementsToString(obj.ArrayElements)), obj.ClassName+".toString")
	}
	return false, ""
}

// ---------------------------------------------------------------------------
// Iterators and map entries
// ---------------------------------------------------------------------------

// newIterator allocates a synthetic iterator over a backing object's
// elements, advancing through an $index field.
func (in *Interpreter) newIterator(target *HeapObject, class string) *HeapObject {
	it := in.State.Heap.NewObject(class, in.State.StepNumber)
	it.SetField("$target", RefValue(target.ID))
	it.SetField("$index", IntValue(0))
	return it
}

func (in *Interpreter) invokeIterator(frame *StackFrame, method string, obj *HeapObject, args []Value) (bool, string) {
	target := in.heapObject(obj.GetField("$target"))
	idx := int(obj.GetField("$index").AsInt())

	switch method {
	case "hasNext":
		has := target != nil && idx < len(target.ArrayElements)
		frame.Push(BoolValue(has))
		return true, fmt.Sprintf("iterator.hasNext -> %t", has)

	case "next":
		if target == nil || idx >= len(target.ArrayElements) {
			frame.Push(NullValue())
			return true, "iterator.next (exhausted)"
		}
		obj.SetField("$index", IntValue(int64(idx+1)))
		frame.Push(target.ArrayElements[idx])
		return true, fmt.Sprintf("iterator.next -> element %d", idx)

	case "remove":
		frame.Push(NullValue())
		return true, "iterator.remove (no-op)"
	}
	return false, ""
}

func (in *Interpreter) invokeMapEntry(frame *StackFrame, method string, obj *HeapObject, args []Value) (bool, string) {
	switch method {
	case "getKey":
		frame.Push(obj.GetField("key"))
		return true, "$MapEntry.getKey"
	case "getValue":
		frame.Push(obj.GetField("value"))
		return true, "$MapEntry.getValue"
	case "setValue":
		old := obj.GetField("value")
		obj.SetField("value", argAt(args, 0))
		frame.Push(old)
		return true, "$MapEntry.setValue"
	case "toString":
		frame.Push(StringValue(obj.GetField("key").ToString() + "=" + obj.GetField("value").ToString()))
		return true, "$MapEntry.toString"
	}
	return false, ""
}

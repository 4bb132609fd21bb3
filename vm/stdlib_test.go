package vm

import "testing"

func newTestInterp() *Interpreter {
	return NewInterpreter(&CompiledProgram{
		MainMethod:    "main",
		MethodOffsets: map[string]int{},
	})
}

func TestJavaStringHash(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"a", 97},
		{"ab", 3105},
		{"hello", 99162322},
		{"Hello, World!", 1498789909},
	}
	for _, tc := range tests {
		if got := javaStringHash(tc.in); got != tc.want {
			t.Errorf("hash(%q) = %d, want %d", tc.in, got, tc.want)
		}
		// Hashing is deterministic.
		if javaStringHash(tc.in) != javaStringHash(tc.in) {
			t.Errorf("hash(%q) not stable", tc.in)
		}
	}
}

func TestStringMethods(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}

	call := func(method string, recv Value, args ...Value) Value {
		t.Helper()
		handled, _ := in.invokeString(f, method, recv, args)
		if !handled {
			t.Fatalf("String.%s not handled", method)
		}
		return f.Pop()
	}

	s := StringValue("Hello, World")
	if got := call("length", s); got.AsInt() != 12 {
		t.Errorf("length = %d", got.AsInt())
	}
	if got := call("substring", s, IntValue(7)); got.S != "World" {
		t.Errorf("substring(7) = %q", got.S)
	}
	if got := call("substring", s, IntValue(0), IntValue(5)); got.S != "Hello" {
		t.Errorf("substring(0,5) = %q", got.S)
	}
	if got := call("indexOf", s, StringValue("World")); got.AsInt() != 7 {
		t.Errorf("indexOf = %d", got.AsInt())
	}
	if got := call("toUpperCase", s); got.S != "HELLO, WORLD" {
		t.Errorf("toUpperCase = %q", got.S)
	}
	if got := call("contains", s, StringValue("lo, W")); !got.AsBool() {
		t.Error("contains failed")
	}
	if got := call("repeat", StringValue("ab"), IntValue(3)); got.S != "ababab" {
		t.Errorf("repeat = %q", got.S)
	}
	if got := call("repeat", StringValue("ab"), IntValue(0)); got.S != "" {
		t.Errorf("repeat 0 = %q", got.S)
	}
	if got := call("equals", s, StringValue("Hello, World")); !got.AsBool() {
		t.Error("equals failed")
	}
	if got := call("charAt", s, IntValue(1)); got.ToString() != "e" {
		t.Errorf("charAt = %q", got.ToString())
	}
	if got := call("trim", StringValue("  x  ")); got.S != "x" {
		t.Errorf("trim = %q", got.S)
	}
	if got := call("replace", s, StringValue("World"), StringValue("there")); got.S != "Hello, there" {
		t.Errorf("replace = %q", got.S)
	}
	if got := call("matches", StringValue("abc123"), StringValue("[a-z]+[0-9]+")); !got.AsBool() {
		t.Error("matches failed")
	}
	if got := call("matches", StringValue("abc123x"), StringValue("[a-z]+[0-9]+")); got.AsBool() {
		t.Error("matches should be anchored")
	}
}

func TestStringSplit(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}

	handled, _ := in.invokeString(f, "split", StringValue("a,b,c"), []Value{StringValue(",")})
	if !handled {
		t.Fatal("split not handled")
	}
	arr := in.heapObject(f.Pop())
	if arr == nil || arr.Kind != ObjArray {
		t.Fatal("split did not produce an array")
	}
	want := []string{"a", "b", "c"}
	if len(arr.ArrayElements) != 3 {
		t.Fatalf("parts = %d, want 3", len(arr.ArrayElements))
	}
	for i, w := range want {
		if arr.ArrayElements[i].S != w {
			t.Errorf("part[%d] = %q, want %q", i, arr.ArrayElements[i].S, w)
		}
	}
}

func TestStringFormat(t *testing.T) {
	in := newTestInterp()
	tests := []struct {
		format string
		args   []Value
		want   string
	}{
		{"%d items", []Value{IntValue(3)}, "3 items"},
		{"%s!", []Value{StringValue("hi")}, "hi!"},
		{"%x", []Value{IntValue(255)}, "ff"},
		{"%X", []Value{IntValue(255)}, "FF"},
		{"%b", []Value{BoolValue(true)}, "true"},
		{"%c", []Value{IntValue(65)}, "A"},
		{"a%nb", nil, "a\nb"},
		{"%05d", []Value{IntValue(42)}, "00042"},
		{"%.2f", []Value{DoubleValue(3.14159)}, "3.14"},
		{"100%%", nil, "100%"},
	}
	for _, tc := range tests {
		if got := in.formatString(tc.format, tc.args); got != tc.want {
			t.Errorf("format(%q) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestHashMapPutGetSize(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	m := in.State.Heap.NewObject("HashMap", 0)

	keys := []Value{StringValue("a"), StringValue("b"), IntValue(7)}
	vals := []Value{IntValue(1), IntValue(2), StringValue("seven")}

	for i := range keys {
		in.invokeMap(f, "put", m, []Value{keys[i], vals[i]})
		f.Pop()
	}

	for i := range keys {
		in.invokeMap(f, "get", m, []Value{keys[i]})
		got := f.Pop()
		if !valueEquals(got, vals[i]) {
			t.Errorf("get(%v) = %v, want %v", keys[i].ToString(), got.ToString(), vals[i].ToString())
		}
	}

	in.invokeMap(f, "size", m, nil)
	if got := f.Pop().AsInt(); got != 3 {
		t.Errorf("size = %d, want 3", got)
	}

	// Re-putting an existing key replaces, not grows.
	in.invokeMap(f, "put", m, []Value{StringValue("a"), IntValue(99)})
	if old := f.Pop(); old.AsInt() != 1 {
		t.Errorf("put returned %v, want old value 1", old.ToString())
	}
	in.invokeMap(f, "size", m, nil)
	if got := f.Pop().AsInt(); got != 3 {
		t.Errorf("size after replace = %d, want 3", got)
	}
}

func TestHashMapEntrySet(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	m := in.State.Heap.NewObject("HashMap", 0)
	in.invokeMap(f, "put", m, []Value{StringValue("k"), IntValue(5)})
	f.Pop()

	in.invokeMap(f, "entrySet", m, nil)
	set := in.heapObject(f.Pop())
	if set == nil || len(set.ArrayElements) != 1 {
		t.Fatal("entrySet did not materialise one entry")
	}
	entry := in.heapObject(set.ArrayElements[0])
	if entry == nil || entry.ClassName != "$MapEntry" {
		t.Fatalf("entry class = %v", entry)
	}
	in.invokeMapEntry(f, "getKey", entry, nil)
	if got := f.Pop(); got.S != "k" {
		t.Errorf("getKey = %q", got.S)
	}
	in.invokeMapEntry(f, "getValue", entry, nil)
	if got := f.Pop(); got.AsInt() != 5 {
		t.Errorf("getValue = %d", got.AsInt())
	}
}

func TestSetRejectsDuplicates(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	s := in.State.Heap.NewObject("HashSet", 0)

	in.invokeSet(f, "add", s, []Value{IntValue(1)})
	if !f.Pop().AsBool() {
		t.Error("first add = false")
	}
	in.invokeSet(f, "add", s, []Value{IntValue(1)})
	if f.Pop().AsBool() {
		t.Error("duplicate add = true")
	}
	in.invokeSet(f, "size", s, nil)
	if got := f.Pop().AsInt(); got != 1 {
		t.Errorf("size = %d, want 1", got)
	}
}

func TestListSortIdempotentAndOrdered(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	l := in.State.Heap.NewObject("ArrayList", 0)
	for _, n := range []int64{5, 3, 9, 1, 3} {
		in.invokeList(f, "add", l, RefValue(l.ID), []Value{IntValue(n)})
		f.Pop()
	}

	sorted := func() []int64 {
		out := make([]int64, len(l.ArrayElements))
		for i, el := range l.ArrayElements {
			out[i] = el.AsInt()
		}
		return out
	}

	in.invokeList(f, "sort", l, RefValue(l.ID), nil)
	f.Pop()
	first := sorted()
	for i := 1; i < len(first); i++ {
		if first[i-1] > first[i] {
			t.Fatalf("not non-decreasing: %v", first)
		}
	}

	in.invokeList(f, "sort", l, RefValue(l.ID), nil)
	f.Pop()
	second := sorted()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sort not idempotent: %v vs %v", first, second)
		}
	}
}

func TestDequeVocabulary(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	d := in.State.Heap.NewObject("ArrayDeque", 0)

	in.invokeList(f, "offer", d, RefValue(d.ID), []Value{IntValue(1)})
	f.Pop()
	in.invokeList(f, "offer", d, RefValue(d.ID), []Value{IntValue(2)})
	f.Pop()
	in.invokeList(f, "addFirst", d, RefValue(d.ID), []Value{IntValue(0)})
	f.Pop()

	in.invokeList(f, "peek", d, RefValue(d.ID), nil)
	if got := f.Pop().AsInt(); got != 0 {
		t.Errorf("peek = %d, want 0", got)
	}
	in.invokeList(f, "poll", d, RefValue(d.ID), nil)
	if got := f.Pop().AsInt(); got != 0 {
		t.Errorf("poll = %d, want 0", got)
	}
	in.invokeList(f, "pollLast", d, RefValue(d.ID), nil)
	if got := f.Pop().AsInt(); got != 2 {
		t.Errorf("pollLast = %d, want 2", got)
	}
	in.invokeList(f, "size", d, RefValue(d.ID), nil)
	if got := f.Pop().AsInt(); got != 1 {
		t.Errorf("size = %d, want 1", got)
	}
}

func TestIteratorAdvances(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	l := in.State.Heap.NewObject("ArrayList", 0)
	l.ArrayElements = []Value{IntValue(10), IntValue(20)}

	it := in.newIterator(l, "$Iterator")
	var seen []int64
	for {
		in.invokeIterator(f, "hasNext", it, nil)
		if !f.Pop().AsBool() {
			break
		}
		in.invokeIterator(f, "next", it, nil)
		seen = append(seen, f.Pop().AsInt())
	}
	if len(seen) != 2 || seen[0] != 10 || seen[1] != 20 {
		t.Errorf("iterated %v", seen)
	}
}

func TestArraysSortProperty(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	arr := in.State.Heap.NewArray("int", 5, 0)
	for i, n := range []int64{4, 2, 8, 1, 2} {
		arr.ArrayElements[i] = IntValue(n)
	}

	in.invokeArrays(f, "sort", []Value{ArrayValue(arr.ID, "int")})
	f.Pop()
	for i := 1; i < len(arr.ArrayElements); i++ {
		if arr.ArrayElements[i-1].AsInt() > arr.ArrayElements[i].AsInt() {
			t.Fatalf("not sorted: %v", arr.ArrayElements)
		}
	}
}

func TestStringBuilderRoundTrip(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	sb := in.State.Heap.NewObject("StringBuilder", 0)
	recv := RefValue(sb.ID)

	in.invokeStringBuilder(f, "<init>", recv, sb, nil)
	in.invokeStringBuilder(f, "append", recv, sb, []Value{StringValue("ab")})
	f.Pop()
	in.invokeStringBuilder(f, "append", recv, sb, []Value{IntValue(12)})
	f.Pop()
	in.invokeStringBuilder(f, "toString", recv, sb, nil)
	if got := f.Pop(); got.S != "ab12" {
		t.Errorf("toString = %q, want ab12", got.S)
	}
	in.invokeStringBuilder(f, "reverse", recv, sb, nil)
	f.Pop()
	in.invokeStringBuilder(f, "toString", recv, sb, nil)
	if got := f.Pop(); got.S != "21ba" {
		t.Errorf("reversed = %q, want 21ba", got.S)
	}
}

func TestExceptionMessage(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}
	ex := in.State.Heap.NewObject("RuntimeException", 0)

	in.invokeException(f, "<init>", ex, []Value{StringValue("boom")})
	in.invokeException(f, "getMessage", ex, nil)
	if got := f.Pop(); got.S != "boom" {
		t.Errorf("getMessage = %q", got.S)
	}
	in.invokeException(f, "toString", ex, nil)
	if got := f.Pop(); got.S != "RuntimeException: boom" {
		t.Errorf("toString = %q", got.S)
	}
}

func TestScannerDefaults(t *testing.T) {
	in := newTestInterp()
	f := &StackFrame{}

	in.invokeScanner(f, "nextInt", nil)
	if got := f.Pop(); got.AsInt() != 0 {
		t.Errorf("nextInt = %d", got.AsInt())
	}
	in.invokeScanner(f, "nextLine", nil)
	if got := f.Pop(); got.S != "" {
		t.Errorf("nextLine = %q", got.S)
	}
	in.invokeScanner(f, "hasNext", nil)
	if f.Pop().AsBool() {
		t.Error("hasNext = true")
	}
}

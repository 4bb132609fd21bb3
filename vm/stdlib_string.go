package vm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ---------------------------------------------------------------------------
// String stdlib: instance methods on string receivers plus String statics
// ---------------------------------------------------------------------------

// javaStringHash folds h = 31*h + c over UTF-16 code units in 32-bit
// signed arithmetic, matching java.lang.String.
func javaStringHash(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(c)
	}
	return int64(h)
}

func (in *Interpreter) invokeString(frame *StackFrame, method string, receiver Value, args []Value) (bool, string) {
	s := in.stringContent(receiver)
	push := func(v Value) (bool, string) {
		frame.Push(v)
		return true, fmt.Sprintf("String.%s -> %s", method, v.ToString())
	}

	switch method {
	case "length":
		return push(IntValue(int64(len([]rune(s)))))

	case "charAt":
		runes := []rune(s)
		i := int(argAt(args, 0).AsInt())
		if i < 0 || i >= len(runes) {
			return push(CharValue(0))
		}
		return push(CharValue(runes[i]))

	case "codePointAt":
		runes := []rune(s)
		i := int(argAt(args, 0).AsInt())
		if i < 0 || i >= len(runes) {
			return push(IntValue(0))
		}
		return push(IntValue(int64(runes[i])))

	case "substring":
		runes := []rune(s)
		start := int(argAt(args, 0).AsInt())
		end := len(runes)
		if len(args) > 1 {
			end = int(args[1].AsInt())
		}
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start > end {
			return push(StringValue(""))
		}
		return push(StringValue(string(runes[start:end])))

	case "indexOf":
		needle := stringArg(argAt(args, 0))
		from := 0
		if len(args) > 1 {
			from = int(args[1].AsInt())
		}
		if from < 0 {
			from = 0
		}
		if from > len(s) {
			return push(IntValue(-1))
		}
		idx := strings.Index(s[from:], needle)
		if idx >= 0 {
			idx += from
		}
		return push(IntValue(int64(idx)))

	case "lastIndexOf":
		return push(IntValue(int64(strings.LastIndex(s, stringArg(argAt(args, 0))))))

	case "contains":
		return push(BoolValue(strings.Contains(s, stringArg(argAt(args, 0)))))

	case "startsWith":
		return push(BoolValue(strings.HasPrefix(s, stringArg(argAt(args, 0)))))

	case "endsWith":
		return push(BoolValue(strings.HasSuffix(s, stringArg(argAt(args, 0)))))

	case "toLowerCase":
		return push(StringValue(strings.ToLower(s)))

	case "toUpperCase":
		return push(StringValue(strings.ToUpper(s)))

	case "trim", "strip":
		return push(StringValue(strings.TrimSpace(s)))

	case "stripLeading":
		return push(StringValue(strings.TrimLeft(s, " \t\n\r")))

	case "stripTrailing":
		return push(StringValue(strings.TrimRight(s, " \t\n\r")))

	case "isBlank":
		return push(BoolValue(strings.TrimSpace(s) == ""))

	case "isEmpty":
		return push(BoolValue(s == ""))

	case "repeat":
		n := int(argAt(args, 0).AsInt())
		if n < 0 {
			n = 0
		}
		return push(StringValue(strings.Repeat(s, n)))

	case "concat":
		return push(StringValue(s + stringArg(argAt(args, 0))))

	case "replace":
		return push(StringValue(strings.ReplaceAll(s, stringArg(argAt(args, 0)), stringArg(argAt(args, 1)))))

	case "replaceAll":
		re, err := regexp.Compile(stringArg(argAt(args, 0)))
		if err != nil {
			return push(StringValue(s))
		}
		return push(StringValue(re.ReplaceAllString(s, stringArg(argAt(args, 1)))))

	case "replaceFirst":
		re, err := regexp.Compile(stringArg(argAt(args, 0)))
		if err != nil {
			return push(StringValue(s))
		}
		replaced := false
		out := re.ReplaceAllStringFunc(s, func(m string) string {
			if replaced {
				return m
			}
			replaced = true
			return stringArg(argAt(args, 1))
		})
		return push(StringValue(out))

	case "matches":
		re, err := regexp.Compile("^(?:" + stringArg(argAt(args, 0)) + ")$")
		if err != nil {
			return push(BoolValue(false))
		}
		return push(BoolValue(re.MatchString(s)))

	case "equals":
		other := argAt(args, 0)
		return push(BoolValue(in.isStringReceiver(other) && in.stringContent(other) == s))

	case "equalsIgnoreCase":
		other := argAt(args, 0)
		return push(BoolValue(strings.EqualFold(in.stringContent(other), s)))

	case "compareTo":
		return push(IntValue(int64(strings.Compare(s, in.stringContent(argAt(args, 0))))))

	case "compareToIgnoreCase":
		return push(IntValue(int64(strings.Compare(strings.ToLower(s), strings.ToLower(in.stringContent(argAt(args, 0)))))))

	case "hashCode":
		return push(IntValue(javaStringHash(s)))

	case "toString", "intern":
		return push(StringValue(s))

	case "toCharArray":
		runes := []rune(s)
		arr := in.State.Heap.NewArray("char", len(runes), in.State.StepNumber)
		for i, r := range runes {
			arr.ArrayElements[i] = CharValue(r)
		}
		return push(ArrayValue(arr.ID, "char"))

	case "split":
		return in.stringSplit(frame, s, args)

	case "getBytes":
		units := utf16.Encode([]rune(s))
		arr := in.State.Heap.NewArray("int", len(units), in.State.StepNumber)
		for i, u := range units {
			arr.ArrayElements[i] = IntValue(int64(u))
		}
		frame.Push(ArrayValue(arr.ID, "int"))
		return true, "String.getBytes"

	case "chars", "stream":
		runes := []rune(s)
		arr := in.State.Heap.NewArray("int", len(runes), in.State.StepNumber)
		for i, r := range runes {
			arr.ArrayElements[i] = IntValue(int64(r))
		}
		frame.Push(ArrayValue(arr.ID, "int"))
		return true, "String." + method
	}

	return false, ""
}

// stringSplit implements split(regex, limit?), producing a String array.
func (in *Interpreter) stringSplit(frame *StackFrame, s string, args []Value) (bool, string) {
	pattern := stringArg(argAt(args, 0))
	limit := -1
	if len(args) > 1 {
		limit = int(args[1].AsInt())
	}

	var parts []string
	re, err := regexp.Compile(pattern)
	if err != nil {
		parts = strings.Split(s, pattern)
	} else if limit > 0 {
		parts = re.Split(s, limit)
	} else {
		parts = re.Split(s, -1)
		// Java drops trailing empty strings when limit is zero.
		for len(parts) > 0 && parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
	}

	arr := in.State.Heap.NewArray("String", len(parts), in.State.StepNumber)
	for i, p := range parts {
		arr.ArrayElements[i] = StringValue(p)
	}
	frame.Push(ArrayValue(arr.ID, "String"))
	return true, fmt.Sprintf("String.split -> %d parts", len(parts))
}

// invokeStringStatic handles String.valueOf, format, join, copyValueOf.
func (in *Interpreter) invokeStringStatic(frame *StackFrame, method string, args []Value) (bool, string) {
	switch method {
	case "valueOf":
		v := argAt(args, 0)
		if obj := in.heapObject(v); obj != nil && obj.Kind == ObjArray && obj.ElemType == "char" {
			var sb strings.Builder
			for _, el := range obj.ArrayElements {
				sb.WriteRune(rune(el.AsInt()))
			}
			frame.Push(StringValue(sb.String()))
			return true, "String.valueOf(char[])"
		}
		frame.Push(StringValue(v.ToString()))
		return true, "String.valueOf"

	case "copyValueOf":
		v := argAt(args, 0)
		if obj := in.heapObject(v); obj != nil && obj.Kind == ObjArray {
			var sb strings.Builder
			for _, el := range obj.ArrayElements {
				sb.WriteRune(rune(el.AsInt()))
			}
			frame.Push(StringValue(sb.String()))
			return true, "String.copyValueOf"
		}
		frame.Push(StringValue(""))
		return true, "String.copyValueOf"

	case "format":
		if len(args) == 0 {
			frame.Push(StringValue(""))
			return true, "String.format"
		}
		out := in.formatString(stringArg(args[0]), args[1:])
		frame.Push(StringValue(out))
		return true, "String.format"

	case "join":
		sep := stringArg(argAt(args, 0))
		var parts []string
		for _, a := range args[1:] {
			if obj := in.heapObject(a); obj != nil && (obj.Kind == ObjArray || len(obj.ArrayElements) > 0) {
				for _, el := range obj.ArrayElements {
					parts = append(parts, in.stringContent(el))
				}
				continue
			}
			parts = append(parts, in.stringContent(a))
		}
		frame.Push(StringValue(strings.Join(parts, sep)))
		return true, "String.join"
	}
	return false, ""
}

// formatString recognises %d %i %o %u %x %X %e %f %g %s %c %b and %n, with
// optional flags, width and precision passed through.
func (in *Interpreter) formatString(format string, args []Value) string {
	var sb strings.Builder
	arg := 0
	next := func() Value {
		v := argAt(args, arg)
		arg++
		return v
	}

	i := 0
	for i < len(format) {
		ch := format[i]
		if ch != '%' {
			sb.WriteByte(ch)
			i++
			continue
		}
		if i+1 >= len(format) {
			sb.WriteByte('%')
			break
		}

		// Collect flags, width and precision.
		j := i + 1
		for j < len(format) && strings.ContainsRune("-+ 0#,.0123456789", rune(format[j])) {
			j++
		}
		if j >= len(format) {
			sb.WriteString(format[i:])
			break
		}
		spec := strings.ReplaceAll(format[i:j], ",", "")
		verb := format[j]
		i = j + 1

		switch verb {
		case '%':
			sb.WriteByte('%')
		case 'n':
			sb.WriteByte('\n')
		case 'd', 'i', 'u':
			sb.WriteString(fmt.Sprintf(spec+"d", next().AsInt()))
		case 'o':
			sb.WriteString(fmt.Sprintf(spec+"o", next().AsInt()))
		case 'x':
			sb.WriteString(fmt.Sprintf(spec+"x", next().AsInt()))
		case 'X':
			sb.WriteString(fmt.Sprintf(spec+"X", next().AsInt()))
		case 'e':
			sb.WriteString(fmt.Sprintf(spec+"e", next().AsFloat()))
		case 'f':
			sb.WriteString(fmt.Sprintf(spec+"f", next().AsFloat()))
		case 'g':
			sb.WriteString(fmt.Sprintf(spec+"g", next().AsFloat()))
		case 's':
			sb.WriteString(fmt.Sprintf(spec+"s", next().ToString()))
		case 'c':
			sb.WriteString(string(rune(next().AsInt())))
		case 'b':
			sb.WriteString(strconv.FormatBool(next().AsBool()))
		default:
			sb.WriteString(spec + string(verb))
		}
	}
	return sb.String()
}

// stringArg coerces an argument to its string content.
func stringArg(v Value) string {
	if v.IsString() {
		return v.S
	}
	return v.ToString()
}

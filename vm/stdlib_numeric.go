package vm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Boxed numeric and character stdlib
// ---------------------------------------------------------------------------

// invokeBoxedStatic handles the static surface of the wrapper classes:
// parsing, valueOf, min/max, and Character predicates.
func (in *Interpreter) invokeBoxedStatic(frame *StackFrame, className, method string, args []Value) (bool, string) {
	push := func(v Value) (bool, string) {
		frame.Push(v)
		return true, fmt.Sprintf("%s.%s -> %s", className, method, v.ToString())
	}
	a0 := argAt(args, 0)

	switch method {
	case "parseInt":
		n, err := strconv.ParseInt(strings.TrimSpace(stringArg(a0)), 10, 64)
		if err != nil {
			return push(IntValue(0))
		}
		return push(IntValue(wrapInt32(n)))

	case "parseLong":
		n, err := strconv.ParseInt(strings.TrimSpace(stringArg(a0)), 10, 64)
		if err != nil {
			return push(LongValue(0))
		}
		return push(LongValue(n))

	case "parseDouble":
		f, err := strconv.ParseFloat(strings.TrimSpace(stringArg(a0)), 64)
		if err != nil {
			return push(DoubleValue(0))
		}
		return push(DoubleValue(f))

	case "parseFloat":
		f, err := strconv.ParseFloat(strings.TrimSpace(stringArg(a0)), 64)
		if err != nil {
			return push(FloatValue(0))
		}
		return push(FloatValue(f))

	case "parseBoolean":
		return push(BoolValue(strings.EqualFold(stringArg(a0), "true")))

	case "valueOf":
		switch className {
		case "Integer":
			if a0.IsString() {
				n, _ := strconv.ParseInt(strings.TrimSpace(a0.S), 10, 64)
				return push(IntValue(wrapInt32(n)))
			}
			return push(IntValue(a0.AsInt()))
		case "Long":
			return push(LongValue(a0.AsInt()))
		case "Double":
			return push(DoubleValue(a0.AsFloat()))
		case "Float":
			return push(FloatValue(a0.AsFloat()))
		case "Boolean":
			return push(BoolValue(a0.AsBool()))
		case "Character":
			return push(CharValue(rune(a0.AsInt())))
		}
		return push(a0)

	case "toString":
		return push(StringValue(a0.ToString()))

	case "toBinaryString":
		return push(StringValue(strconv.FormatInt(a0.AsInt(), 2)))

	case "toHexString":
		return push(StringValue(strconv.FormatInt(a0.AsInt(), 16)))

	case "max":
		if len(args) < 2 {
			return push(a0)
		}
		return push(numericMax(a0, args[1]))

	case "min":
		if len(args) < 2 {
			return push(a0)
		}
		return push(numericMin(a0, args[1]))

	case "compare":
		return push(IntValue(int64(compareNumeric(a0, argAt(args, 1)))))

	case "isDigit":
		return push(BoolValue(unicode.IsDigit(rune(a0.AsInt()))))

	case "isLetter":
		return push(BoolValue(unicode.IsLetter(rune(a0.AsInt()))))

	case "isLetterOrDigit":
		r := rune(a0.AsInt())
		return push(BoolValue(unicode.IsLetter(r) || unicode.IsDigit(r)))

	case "isWhitespace":
		return push(BoolValue(unicode.IsSpace(rune(a0.AsInt()))))

	case "isUpperCase":
		return push(BoolValue(unicode.IsUpper(rune(a0.AsInt()))))

	case "isLowerCase":
		return push(BoolValue(unicode.IsLower(rune(a0.AsInt()))))

	case "toUpperCase":
		return push(CharValue(unicode.ToUpper(rune(a0.AsInt()))))

	case "toLowerCase":
		return push(CharValue(unicode.ToLower(rune(a0.AsInt()))))

	case "getNumericValue":
		r := rune(a0.AsInt())
		if r >= '0' && r <= '9' {
			return push(IntValue(int64(r - '0')))
		}
		return push(IntValue(-1))
	}
	return false, ""
}

// invokeBoxed handles instance methods reached through a primitive
// receiver (auto-boxing is implicit in this machine).
func (in *Interpreter) invokeBoxed(frame *StackFrame, method string, receiver Value, args []Value) (bool, string) {
	push := func(v Value) (bool, string) {
		frame.Push(v)
		return true, fmt.Sprintf("%s -> %s", method, v.ToString())
	}

	switch method {
	case "intValue":
		return push(IntValue(wrapInt32(receiver.AsInt())))
	case "longValue":
		return push(LongValue(receiver.AsInt()))
	case "doubleValue":
		return push(DoubleValue(receiver.AsFloat()))
	case "floatValue":
		return push(FloatValue(receiver.AsFloat()))
	case "compareTo":
		return push(IntValue(int64(compareNumeric(receiver, argAt(args, 0)))))
	case "equals":
		return push(BoolValue(valueEquals(receiver, argAt(args, 0))))
	case "toString":
		return push(StringValue(receiver.ToString()))
	case "hashCode":
		if receiver.IsFloatingPoint() {
			return push(IntValue(wrapInt32(int64(receiver.F))))
		}
		return push(IntValue(wrapInt32(receiver.I)))
	case "charValue":
		return push(CharValue(rune(receiver.AsInt())))
	case "booleanValue":
		return push(BoolValue(receiver.AsBool()))
	}
	return false, ""
}

func numericMax(a, b Value) Value {
	if a.AsFloat() >= b.AsFloat() {
		return a
	}
	return b
}

func numericMin(a, b Value) Value {
	if a.AsFloat() <= b.AsFloat() {
		return a
	}
	return b
}

func compareNumeric(a, b Value) int {
	x, y := a.AsFloat(), b.AsFloat()
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

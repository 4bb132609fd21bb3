package vm

import (
	"fmt"
	"math"
	"math/rand"
)

// ---------------------------------------------------------------------------
// Math stdlib
// ---------------------------------------------------------------------------

func (in *Interpreter) invokeMath(frame *StackFrame, method string, args []Value) (bool, string) {
	push := func(v Value) (bool, string) {
		frame.Push(v)
		return true, fmt.Sprintf("Math.%s -> %s", method, v.ToString())
	}
	a0 := argAt(args, 0)

	switch method {
	case "abs":
		if a0.IsFloatingPoint() {
			return push(DoubleValue(math.Abs(a0.F)))
		}
		n := a0.AsInt()
		if n < 0 {
			n = -n
		}
		if a0.PType == PLong {
			return push(LongValue(n))
		}
		return push(IntValue(wrapInt32(n)))

	case "max":
		return push(numericMax(a0, argAt(args, 1)))

	case "min":
		return push(numericMin(a0, argAt(args, 1)))

	case "sqrt":
		return push(DoubleValue(math.Sqrt(a0.AsFloat())))

	case "pow":
		return push(DoubleValue(math.Pow(a0.AsFloat(), argAt(args, 1).AsFloat())))

	case "floor":
		return push(DoubleValue(math.Floor(a0.AsFloat())))

	case "ceil":
		return push(DoubleValue(math.Ceil(a0.AsFloat())))

	case "round":
		return push(LongValue(int64(math.Floor(a0.AsFloat() + 0.5))))

	case "random":
		return push(DoubleValue(rand.Float64()))

	case "log":
		return push(DoubleValue(math.Log(a0.AsFloat())))

	case "log10":
		return push(DoubleValue(math.Log10(a0.AsFloat())))

	case "sin":
		return push(DoubleValue(math.Sin(a0.AsFloat())))

	case "cos":
		return push(DoubleValue(math.Cos(a0.AsFloat())))

	case "tan":
		return push(DoubleValue(math.Tan(a0.AsFloat())))

	case "PI":
		return push(DoubleValue(math.Pi))

	case "E":
		return push(DoubleValue(math.E))
	}
	return false, ""
}

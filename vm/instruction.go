package vm

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a single instruction of the stack machine.
type Opcode int

const (
	OpNop Opcode = iota
	OpLine

	// Constants and locals
	OpLoadConst
	OpPushNull
	OpLoadLocal
	OpStoreLocal

	// Objects and arrays
	OpNew
	OpNewArray
	OpArrayLength
	OpArrayLoad
	OpArrayStore
	OpGetField
	OpPutField
	OpGetStatic
	OpPutStatic

	// Stack manipulation
	OpDup
	OpDupX1
	OpPop
	OpSwap

	// Arithmetic and logic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpAnd
	OpOr
	OpNot

	// Control flow
	OpGoto
	OpIfTrue
	OpIfFalse

	// Invocation
	OpInvokeVirtual
	OpInvokeInterface
	OpInvokeSpecial
	OpInvokeStatic
	OpReturn
	OpReturnValue

	// Types
	OpCheckCast
	OpInstanceOf

	// Lambdas
	OpLambdaCreate
	OpLambdaInvoke

	// Miscellaneous
	OpPrint
	OpThrow
	OpMonitorEnter
	OpMonitorExit
)

var opcodeNames = map[Opcode]string{
	OpNop:             "NOP",
	OpLine:            "LINE",
	OpLoadConst:       "LOAD_CONST",
	OpPushNull:        "PUSH_NULL",
	OpLoadLocal:       "LOAD_LOCAL",
	OpStoreLocal:      "STORE_LOCAL",
	OpNew:             "NEW",
	OpNewArray:        "NEWARRAY",
	OpArrayLength:     "ARRAYLENGTH",
	OpArrayLoad:       "ARRAYLOAD",
	OpArrayStore:      "ARRAYSTORE",
	OpGetField:        "GETFIELD",
	OpPutField:        "PUTFIELD",
	OpGetStatic:       "GETSTATIC",
	OpPutStatic:       "PUTSTATIC",
	OpDup:             "DUP",
	OpDupX1:           "DUP_X1",
	OpPop:             "POP",
	OpSwap:            "SWAP",
	OpAdd:             "ADD",
	OpSub:             "SUB",
	OpMul:             "MUL",
	OpDiv:             "DIV",
	OpMod:             "MOD",
	OpNeg:             "NEG",
	OpCmpEq:           "CMP_EQ",
	OpCmpNe:           "CMP_NE",
	OpCmpLt:           "CMP_LT",
	OpCmpLe:           "CMP_LE",
	OpCmpGt:           "CMP_GT",
	OpCmpGe:           "CMP_GE",
	OpAnd:             "AND",
	OpOr:              "OR",
	OpNot:             "NOT",
	OpGoto:            "GOTO",
	OpIfTrue:          "IF_TRUE",
	OpIfFalse:         "IF_FALSE",
	OpInvokeVirtual:   "INVOKE_VIRTUAL",
	OpInvokeInterface: "INVOKE_INTERFACE",
	OpInvokeSpecial:   "INVOKE_SPECIAL",
	OpInvokeStatic:    "INVOKE_STATIC",
	OpReturn:          "RETURN",
	OpReturnValue:     "RETURN_VALUE",
	OpCheckCast:       "CHECKCAST",
	OpInstanceOf:      "INSTANCEOF",
	OpLambdaCreate:    "LAMBDA_CREATE",
	OpLambdaInvoke:    "LAMBDA_INVOKE",
	OpPrint:           "PRINT",
	OpThrow:           "THROW",
	OpMonitorEnter:    "MONITORENTER",
	OpMonitorExit:     "MONITOREXIT",
}

// Name returns the human-readable name for an opcode.
func (op Opcode) Name() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", int(op))
}

// String implements the Stringer interface.
func (op Opcode) String() string {
	return op.Name()
}

// ---------------------------------------------------------------------------
// Operands
// ---------------------------------------------------------------------------

// OperandKind distinguishes the operand variants.
type OperandKind int

const (
	OperandInt OperandKind = iota
	OperandFloat
	OperandString
	OperandBool
	OperandClass  // class<name>
	OperandMethod // method<name,descriptor>
	OperandField  // field<name,owner>
	OperandLocal  // local<index,name>
	OperandLabel  // label<target>; absolute index once globalised
	OperandType   // type<name>
)

// Operand is one typed instruction operand.
type Operand struct {
	Kind  OperandKind
	Int   int64   `cbor:",omitempty"`
	Float float64 `cbor:",omitempty"`
	Str   string  `cbor:",omitempty"`
	Bool  bool    `cbor:",omitempty"`
	Aux   string  `cbor:",omitempty"` // descriptor (method), owner (field), name (local)
}

// IntOperand builds a literal integer operand.
func IntOperand(n int64) Operand { return Operand{Kind: OperandInt, Int: n} }

// FloatOperand builds a literal float operand.
func FloatOperand(f float64) Operand { return Operand{Kind: OperandFloat, Float: f} }

// StringOperand builds a literal string operand.
func StringOperand(s string) Operand { return Operand{Kind: OperandString, Str: s} }

// BoolOperand builds a literal boolean operand.
func BoolOperand(b bool) Operand { return Operand{Kind: OperandBool, Bool: b} }

// ClassOperand builds a class-name operand.
func ClassOperand(name string) Operand { return Operand{Kind: OperandClass, Str: name} }

// MethodOperand builds a method operand with its descriptor.
func MethodOperand(name, descriptor string) Operand {
	return Operand{Kind: OperandMethod, Str: name, Aux: descriptor}
}

// FieldOperand builds a field operand with its owner class.
func FieldOperand(name, owner string) Operand {
	return Operand{Kind: OperandField, Str: name, Aux: owner}
}

// LocalOperand builds a local-slot operand.
func LocalOperand(index int, name string) Operand {
	return Operand{Kind: OperandLocal, Int: int64(index), Aux: name}
}

// LabelOperand builds a jump-target operand.
func LabelOperand(target int) Operand { return Operand{Kind: OperandLabel, Int: int64(target)} }

// TypeOperand builds a type-name operand.
func TypeOperand(name string) Operand { return Operand{Kind: OperandType, Str: name} }

func (o Operand) String() string {
	switch o.Kind {
	case OperandInt:
		return fmt.Sprintf("%d", o.Int)
	case OperandFloat:
		return fmt.Sprintf("%g", o.Float)
	case OperandString:
		return fmt.Sprintf("%q", o.Str)
	case OperandBool:
		return fmt.Sprintf("%t", o.Bool)
	case OperandClass:
		return "class " + o.Str
	case OperandMethod:
		return o.Str
	case OperandField:
		if o.Aux != "" {
			return o.Aux + "." + o.Str
		}
		return o.Str
	case OperandLocal:
		return fmt.Sprintf("%d (%s)", o.Int, o.Aux)
	case OperandLabel:
		return fmt.Sprintf("-> %d", o.Int)
	case OperandType:
		return o.Str
	}
	return "?"
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Instruction is one element of the flat instruction vector.
type Instruction struct {
	Op       Opcode
	Operands []Operand
	Line     int    // source line that produced this instruction
	Comment  string `cbor:",omitempty"`
}

// Instr builds an instruction.
func Instr(op Opcode, line int, operands ...Operand) Instruction {
	return Instruction{Op: op, Line: line, Operands: operands}
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.Name()
	}
	parts := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		parts[i] = o.String()
	}
	return in.Op.Name() + " " + strings.Join(parts, ", ")
}

// IntOperandAt returns the integer payload of operand i, or 0.
func (in Instruction) IntOperandAt(i int) int64 {
	if i < len(in.Operands) {
		return in.Operands[i].Int
	}
	return 0
}

// StrOperandAt returns the string payload of operand i, or "".
func (in Instruction) StrOperandAt(i int) string {
	if i < len(in.Operands) {
		return in.Operands[i].Str
	}
	return ""
}

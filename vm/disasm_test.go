package vm

import (
	"strings"
	"testing"
)

func TestDisassembleListsMethodsInOrder(t *testing.T) {
	p := &CompiledProgram{
		Instructions: []Instruction{
			Instr(OpLine, 1, IntOperand(1)),
			Instr(OpLoadConst, 1, IntOperand(42)),
			Instr(OpReturnValue, 1),
			Instr(OpLine, 5, IntOperand(5)),
			Instr(OpReturn, 5),
		},
		MethodOffsets: map[string]int{
			"A.f()": 0,
			"A.g()": 3,
		},
	}

	out := Disassemble(p)
	fIdx := strings.Index(out, "A.f():")
	gIdx := strings.Index(out, "A.g():")
	if fIdx < 0 || gIdx < 0 || gIdx < fIdx {
		t.Fatalf("method headers missing or misordered:\n%s", out)
	}
	if !strings.Contains(out, "0001  LOAD_CONST 42") {
		t.Errorf("listing missing instruction:\n%s", out)
	}
}

func TestDisassembleInstructionOperands(t *testing.T) {
	in := Instr(OpInvokeStatic, 3, MethodOperand("max", ""), IntOperand(2), ClassOperand("Math"))
	got := DisassembleInstruction(7, in)
	if !strings.Contains(got, "INVOKE_STATIC") || !strings.Contains(got, "max") || !strings.Contains(got, "Math") {
		t.Errorf("disassembly = %q", got)
	}
}

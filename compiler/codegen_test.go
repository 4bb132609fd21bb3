package compiler

import (
	"testing"

	"github.com/chazu/marmoset/vm"
)

func compileOne(t *testing.T, src string) *vm.CompiledProgram {
	t.Helper()
	prog, err := CompileProgram(src)
	if err != nil {
		t.Fatalf("CompileProgram error: %v", err)
	}
	return prog
}

func opcodes(p *vm.CompiledProgram) []vm.Opcode {
	ops := make([]vm.Opcode, len(p.Instructions))
	for i, in := range p.Instructions {
		ops[i] = in.Op
	}
	return ops
}

func countOp(p *vm.CompiledProgram, op vm.Opcode) int {
	n := 0
	for _, in := range p.Instructions {
		if in.Op == op {
			n++
		}
	}
	return n
}

const helloSrc = `
public class HelloWorld {
    public static void main(String[] args) {
        System.out.println("Hello, World!");
    }
}`

func TestCompileHelloWorld(t *testing.T) {
	p := compileOne(t, helloSrc)

	if p.MainClass != "HelloWorld" {
		t.Errorf("main class = %q", p.MainClass)
	}
	if p.MainMethod != "main" {
		t.Errorf("main method = %q", p.MainMethod)
	}
	if _, ok := p.MethodOffsets["HelloWorld.main(String)"]; !ok {
		t.Errorf("method offsets = %v", p.MethodOffsets)
	}

	// println lowers to PRINT with is_println = true.
	found := false
	for _, in := range p.Instructions {
		if in.Op == vm.OpPrint {
			found = true
			if len(in.Operands) != 1 || !in.Operands[0].Bool {
				t.Errorf("PRINT operands = %v", in.Operands)
			}
		}
	}
	if !found {
		t.Error("no PRINT instruction emitted")
	}
}

func TestCompileEmitsLineMarkers(t *testing.T) {
	p := compileOne(t, helloSrc)
	if countOp(p, vm.OpLine) == 0 {
		t.Error("no LINE markers emitted")
	}
}

func TestCompileArglessPrintlnPushesEmptyString(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) { System.out.println(); } }`)

	for i, in := range p.Instructions {
		if in.Op == vm.OpPrint {
			prev := p.Instructions[i-1]
			if prev.Op != vm.OpLoadConst || prev.Operands[0].Str != "" {
				t.Errorf("instruction before PRINT = %v", prev)
			}
			return
		}
	}
	t.Error("no PRINT instruction emitted")
}

func TestCompilePostfixIncrement(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) { int x = 0; x++; } }`)

	// load, dup, const 1, add, store
	ops := opcodes(p)
	for i := 0; i+4 < len(ops); i++ {
		if ops[i] == vm.OpLoadLocal && ops[i+1] == vm.OpDup &&
			ops[i+2] == vm.OpLoadConst && ops[i+3] == vm.OpAdd &&
			ops[i+4] == vm.OpStoreLocal {
			return
		}
	}
	t.Errorf("postfix increment pattern not found in %v", ops)
}

func TestCompilePrefixIncrement(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) { int x = 0; ++x; } }`)

	// load, const 1, add, dup, store
	ops := opcodes(p)
	for i := 0; i+4 < len(ops); i++ {
		if ops[i] == vm.OpLoadLocal && ops[i+1] == vm.OpLoadConst &&
			ops[i+2] == vm.OpAdd && ops[i+3] == vm.OpDup &&
			ops[i+4] == vm.OpStoreLocal {
			return
		}
	}
	t.Errorf("prefix increment pattern not found in %v", ops)
}

func TestCompileStaticUtilityCalls(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) { int m = Math.max(1, 2); } }`)

	for _, in := range p.Instructions {
		if in.Op == vm.OpInvokeStatic {
			if in.StrOperandAt(0) != "max" {
				t.Errorf("method operand = %q", in.StrOperandAt(0))
			}
			if in.StrOperandAt(2) != "Math" {
				t.Errorf("class operand = %q", in.StrOperandAt(2))
			}
			return
		}
	}
	t.Error("no INVOKE_STATIC emitted for Math.max")
}

func TestCompileConstructorSequence(t *testing.T) {
	p := compileOne(t, `
class Point {
    int x;
    Point(int x) { this.x = x; }
    static void main(String[] args) { Point p = new Point(3); }
}`)

	ops := opcodes(p)
	for i := 0; i+2 < len(ops); i++ {
		if ops[i] == vm.OpNew && ops[i+1] == vm.OpDup {
			// arguments then INVOKE_SPECIAL follow
			for j := i + 2; j < len(ops); j++ {
				if ops[j] == vm.OpInvokeSpecial {
					return
				}
			}
		}
	}
	t.Errorf("NEW; DUP; ...; INVOKE_SPECIAL not found in %v", ops)
}

func TestCompileForEachLowering(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) {
    for (String s : args) { System.out.println(s); }
} }`)

	var interfaceCalls []string
	for _, in := range p.Instructions {
		if in.Op == vm.OpInvokeInterface {
			interfaceCalls = append(interfaceCalls, in.StrOperandAt(0))
		}
	}
	want := []string{"iterator", "hasNext", "next"}
	if len(interfaceCalls) != 3 {
		t.Fatalf("interface calls = %v, want %v", interfaceCalls, want)
	}
	for i := range want {
		if interfaceCalls[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, interfaceCalls[i], want[i])
		}
	}
}

func TestCompileLabelsAreAbsolute(t *testing.T) {
	p := compileOne(t, `
class A { static void main(String[] args) { for (int i = 0; i < 3; i++) { } } }
class B { void f() { if (true) { } else { } } }`)

	for i, in := range p.Instructions {
		switch in.Op {
		case vm.OpGoto, vm.OpIfTrue, vm.OpIfFalse:
			target := int(in.IntOperandAt(0))
			if target < 0 || target > len(p.Instructions) {
				t.Errorf("instr %d: label target %d out of range", i, target)
			}
		}
	}
}

func TestCompileLambdaCreate(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) { Runnable r = () -> System.out.println(); } }`)

	if countOp(p, vm.OpLambdaCreate) != 1 {
		t.Error("expected one LAMBDA_CREATE")
	}
}

func TestCompileThisSlotZero(t *testing.T) {
	p := compileOne(t, `
class T {
    int v;
    int get() { return v; }
}`)

	cls := p.Class("T")
	if cls == nil {
		t.Fatal("class T missing")
	}
	m := cls.Method("get", 0)
	if m == nil {
		t.Fatal("method get missing")
	}
	if len(m.Locals) == 0 || m.Locals[0].Name != "this" || m.Locals[0].Slot != 0 {
		t.Errorf("locals = %v, want this at slot 0", m.Locals)
	}
}

func TestCompileShadowingAllocatesNewSlot(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) {
    int x = 1;
    { int x = 2; System.out.println(x); }
} }`)

	cls := p.Class("T")
	m := cls.Method("main", 1)
	count := 0
	for _, l := range m.Locals {
		if l.Name == "x" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("slots named x = %d, want 2", count)
	}
}

func TestCompileTryFinallySequence(t *testing.T) {
	p := compileOne(t, `
class T { static void main(String[] args) {
    try { System.out.println("try"); }
    catch (Exception e) { System.out.println("catch"); }
    finally { System.out.println("finally"); }
} }`)

	var prints []string
	for i, in := range p.Instructions {
		if in.Op == vm.OpPrint {
			prev := p.Instructions[i-1]
			prints = append(prints, prev.Operands[0].Str)
		}
	}
	// Catch bodies are not compiled; try then finally in sequence.
	if len(prints) != 2 || prints[0] != "try" || prints[1] != "finally" {
		t.Errorf("prints = %v, want [try finally]", prints)
	}
}

func TestCompileMainClassIsFirstWithMain(t *testing.T) {
	p := compileOne(t, `
class Helper { void f() { } }
class App { public static void main(String[] args) { } }`)

	if p.MainClass != "App" {
		t.Errorf("main class = %q, want App", p.MainClass)
	}
}

package compiler

import (
	"fmt"
	"strings"

	"github.com/chazu/marmoset/vm"
)

// ---------------------------------------------------------------------------
// Codegen: Compile the AST to the flat instruction vector
// ---------------------------------------------------------------------------

// staticUtilityClasses are the well-known classes whose member calls are
// emitted as INVOKE_STATIC with the class operand.
var staticUtilityClasses = map[string]bool{
	"Math": true, "Integer": true, "Long": true, "Double": true,
	"Float": true, "Character": true, "String": true, "Collections": true,
	"Arrays": true, "System": true, "Objects": true, "Boolean": true,
	"Byte": true, "Short": true,
}

// Codegen compiles a parsed program into a CompiledProgram.
type Codegen struct {
	program *vm.CompiledProgram
	classes map[string]*ClassDecl
	ifaces  map[string]*InterfaceDecl

	// Current method state
	instrs    []vm.Instruction
	labels    []int // label id -> local offset, -1 while unresolved
	scopes    []map[string]int
	nextSlot  int
	locals    []vm.LocalSlot
	curLine   int
	curClass  *ClassDecl
	curMethod *MethodDecl

	breakLabels    []int
	continueLabels []int

	synthCount int
	tmpSlot    int // lazily allocated scratch slot, -1 when absent
}

// NewCodegen creates a compiler for the given program AST.
func NewCodegen(prog *Program) *Codegen {
	cg := &Codegen{
		program: &vm.CompiledProgram{
			MainMethod:    "main",
			MethodOffsets: make(map[string]int),
		},
		classes: make(map[string]*ClassDecl),
		ifaces:  make(map[string]*InterfaceDecl),
	}
	for _, c := range prog.Classes {
		cg.classes[c.Name] = c
	}
	for _, i := range prog.Interfaces {
		cg.ifaces[i.Name] = i
	}
	return cg
}

// CompileProgram runs the full pipeline: lex, parse, compile.
func CompileProgram(source string) (*vm.CompiledProgram, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return NewCodegen(prog).Compile(prog)
}

// Compile compiles every declaration and selects the main class.
func (cg *Codegen) Compile(prog *Program) (compiled *vm.CompiledProgram, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				compiled, err = nil, pe
				return
			}
			panic(r)
		}
	}()

	for _, iface := range prog.Interfaces {
		cg.compileInterface(iface)
	}
	for _, class := range prog.Classes {
		cg.compileClass(class)
	}

	// The main class is the first class containing main(String[]).
	for _, class := range prog.Classes {
		for _, m := range class.Methods {
			if m.Name == "main" && len(m.Params) == 1 {
				cg.program.MainClass = class.Name
				break
			}
		}
		if cg.program.MainClass != "" {
			break
		}
	}
	if cg.program.MainClass == "" && len(prog.Classes) > 0 {
		cg.program.MainClass = prog.Classes[0].Name
	}

	return cg.program, nil
}

// errorf aborts compilation with a structured error.
func (cg *Codegen) errorf(pos Position, format string, args ...interface{}) {
	panic(&ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    pos.Line,
		Column:  pos.Column,
	})
}

// ---------------------------------------------------------------------------
// Class compilation
// ---------------------------------------------------------------------------

func (cg *Codegen) compileInterface(iface *InterfaceDecl) {
	cc := &vm.CompiledClass{
		Name:        iface.Name,
		Interfaces:  iface.Extends,
		IsInterface: true,
	}
	for _, f := range iface.Fields {
		cc.Fields = append(cc.Fields, vm.CompiledField{
			Name:     f.Name,
			Type:     f.Type.Name,
			IsStatic: true, // interface fields are implicitly static
			Init:     cg.constInit(f),
		})
	}
	for _, m := range iface.Methods {
		if m.Body == nil {
			cc.Methods = append(cc.Methods, &vm.CompiledMethod{
				Name:       m.Name,
				Signature:  m.Signature(),
				ParamNames: paramNames(m),
				ParamTypes: paramTypes(m),
				ReturnType: m.ReturnType.Name,
				IsAbstract: true,
			})
			continue
		}
		cc.Methods = append(cc.Methods, cg.compileMethod(nil, iface.Name, m))
	}
	cg.program.Classes = append(cg.program.Classes, cc)
}

func (cg *Codegen) compileClass(class *ClassDecl) {
	cc := &vm.CompiledClass{
		Name:       class.Name,
		SuperClass: class.SuperClass,
		Interfaces: class.Interfaces,
		IsAbstract: hasModifier(class.Modifiers, "abstract"),
	}
	for _, f := range class.Fields {
		cc.Fields = append(cc.Fields, vm.CompiledField{
			Name:     f.Name,
			Type:     f.Type.Name,
			IsStatic: hasModifier(f.Modifiers, "static"),
			Init:     cg.constInit(f),
		})
	}
	for _, m := range class.Methods {
		if m.Body == nil {
			cc.Methods = append(cc.Methods, &vm.CompiledMethod{
				Name:       m.Name,
				Signature:  m.Signature(),
				ParamNames: paramNames(m),
				ParamTypes: paramTypes(m),
				ReturnType: m.ReturnType.Name,
				IsStatic:   m.IsStatic(),
				IsAbstract: true,
			})
			continue
		}
		cc.Methods = append(cc.Methods, cg.compileMethod(class, class.Name, m))
	}
	cg.program.Classes = append(cg.program.Classes, cc)
}

// constInit evaluates a constant field initialiser, defaulting otherwise.
// Non-constant initialisers are assigned in constructors by convention.
func (cg *Codegen) constInit(f *FieldDecl) vm.Value {
	switch e := f.Init.(type) {
	case *IntLiteral:
		return typedInt(f.Type.Name, e.Value)
	case *FloatLiteral:
		if f.Type.Name == "float" {
			return vm.FloatValue(e.Value)
		}
		return vm.DoubleValue(e.Value)
	case *StringLiteral:
		return vm.StringValue(e.Value)
	case *CharLiteral:
		return vm.CharValue(e.Value)
	case *BoolLiteral:
		return vm.BoolValue(e.Value)
	case *NullLiteral:
		return vm.NullValue()
	}
	return vm.DefaultValue(f.Type.Name)
}

func typedInt(typeName string, n int64) vm.Value {
	switch typeName {
	case "long":
		return vm.LongValue(n)
	case "double":
		return vm.DoubleValue(float64(n))
	case "float":
		return vm.FloatValue(float64(n))
	default:
		return vm.IntValue(n)
	}
}

func hasModifier(mods []string, want string) bool {
	for _, m := range mods {
		if m == want {
			return true
		}
	}
	return false
}

func paramNames(m *MethodDecl) []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return names
}

func paramTypes(m *MethodDecl) []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type.Name
	}
	return types
}

// ---------------------------------------------------------------------------
// Method compilation
// ---------------------------------------------------------------------------

func (cg *Codegen) compileMethod(class *ClassDecl, className string, m *MethodDecl) *vm.CompiledMethod {
	cg.instrs = nil
	cg.labels = nil
	cg.scopes = []map[string]int{make(map[string]int)}
	cg.nextSlot = 0
	cg.locals = nil
	cg.curLine = m.PosVal.Line
	cg.curClass = class
	cg.curMethod = m
	cg.breakLabels = nil
	cg.continueLabels = nil
	cg.synthCount = 0
	cg.tmpSlot = -1

	name := m.Name
	if m.IsConstructor {
		name = "<init>"
	}

	// Slot 0 is `this` in every non-static method.
	if !m.IsStatic() {
		cg.declare("this", className)
	}
	for _, p := range m.Params {
		cg.declare(p.Name, p.Type.Name)
	}

	cg.compileBlockStmts(m.Body.Stmts)

	// Implicit return at the end of the body.
	cg.emit(vm.OpReturn)

	cg.resolveLabels()

	start := len(cg.program.Instructions)
	sig := name + "(" + strings.Join(paramTypes(m), ",") + ")"
	cm := &vm.CompiledMethod{
		Name:       name,
		Signature:  sig,
		ParamNames: paramNames(m),
		ParamTypes: paramTypes(m),
		ReturnType: m.ReturnType.Name,
		IsStatic:   m.IsStatic(),
		Locals:     cg.locals,
		Start:      start,
		Len:        len(cg.instrs),
	}

	// Globalise label targets and append to the flat vector.
	for _, in := range cg.instrs {
		for i, op := range in.Operands {
			if op.Kind == vm.OperandLabel {
				in.Operands[i].Int = op.Int + int64(start)
			}
		}
		cg.program.Instructions = append(cg.program.Instructions, in)
	}
	cg.program.MethodOffsets[className+"."+sig] = start

	return cm
}

// emit appends an instruction at the current source line.
func (cg *Codegen) emit(op vm.Opcode, operands ...vm.Operand) {
	cg.instrs = append(cg.instrs, vm.Instr(op, cg.curLine, operands...))
}

// newLabel allocates an unresolved label and returns its id.
func (cg *Codegen) newLabel() int {
	cg.labels = append(cg.labels, -1)
	return len(cg.labels) - 1
}

// markLabel resolves a label to the next instruction offset.
func (cg *Codegen) markLabel(id int) {
	cg.labels[id] = len(cg.instrs)
}

// emitJump emits a control-flow instruction targeting a label id. The
// operand holds the id until resolveLabels patches in the local offset.
func (cg *Codegen) emitJump(op vm.Opcode, label int) {
	cg.emit(op, vm.LabelOperand(label))
}

// resolveLabels rewrites label ids into local instruction offsets.
func (cg *Codegen) resolveLabels() {
	for i := range cg.instrs {
		for j, op := range cg.instrs[i].Operands {
			if op.Kind == vm.OperandLabel {
				target := cg.labels[op.Int]
				if target < 0 {
					target = len(cg.instrs)
				}
				cg.instrs[i].Operands[j].Int = int64(target)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Slot allocation
// ---------------------------------------------------------------------------

// declare allocates a fresh dense slot for name. Shadowing in a nested
// block allocates a new slot too; slots are never reclaimed.
func (cg *Codegen) declare(name, typeName string) int {
	slot := cg.nextSlot
	cg.nextSlot++
	cg.scopes[len(cg.scopes)-1][name] = slot
	cg.locals = append(cg.locals, vm.LocalSlot{Name: name, Type: typeName, Slot: slot})
	return slot
}

// lookupLocal resolves a name to its innermost slot.
func (cg *Codegen) lookupLocal(name string) (int, bool) {
	for i := len(cg.scopes) - 1; i >= 0; i-- {
		if slot, ok := cg.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (cg *Codegen) pushScope() {
	cg.scopes = append(cg.scopes, make(map[string]int))
}

func (cg *Codegen) popScope() {
	cg.scopes = cg.scopes[:len(cg.scopes)-1]
}

// synthSlot allocates a compiler-internal local with a $-prefixed name.
func (cg *Codegen) synthSlot(prefix string) int {
	cg.synthCount++
	return cg.declare(fmt.Sprintf("$%s%d", prefix, cg.synthCount), "")
}

// scratchSlot returns the method's shared scratch slot for store/reload
// sequences, allocating it on first use.
func (cg *Codegen) scratchSlot() int {
	if cg.tmpSlot < 0 {
		cg.tmpSlot = cg.declare("$tmp", "")
	}
	return cg.tmpSlot
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (cg *Codegen) compileBlockStmts(stmts []Stmt) {
	for _, s := range stmts {
		cg.compileStmt(s)
	}
}

func (cg *Codegen) compileStmt(stmt Stmt) {
	line := stmt.Pos().Line
	if line > 0 {
		cg.curLine = line
	}
	cg.emit(vm.OpLine, vm.IntOperand(int64(cg.curLine)))

	switch s := stmt.(type) {
	case *BlockStmt:
		// Declaration groups lowered from `int a = 1, b = 2;` share the
		// enclosing scope; real blocks get their own.
		if isDeclGroup(s) {
			cg.compileBlockStmts(s.Stmts)
			return
		}
		cg.pushScope()
		cg.compileBlockStmts(s.Stmts)
		cg.popScope()

	case *VarDecl:
		slot := cg.declare(s.Name, s.Type.Name)
		if s.Init != nil {
			cg.compileInitExpr(s.Init, s.Type)
		} else {
			cg.compileDefault(s.Type)
		}
		cg.emit(vm.OpStoreLocal, vm.LocalOperand(slot, s.Name))

	case *ExprStmt:
		cg.compileExpr(s.Expr)
		// Calls manage their own stack effect; everything else leaves a
		// value that the statement discards.
		if _, isCall := s.Expr.(*Call); !isCall {
			cg.emit(vm.OpPop)
		}

	case *IfStmt:
		elseLbl := cg.newLabel()
		endLbl := cg.newLabel()
		cg.compileExpr(s.Cond)
		cg.emitJump(vm.OpIfFalse, elseLbl)
		cg.compileStmt(s.Then)
		cg.emitJump(vm.OpGoto, endLbl)
		cg.markLabel(elseLbl)
		if s.Else != nil {
			cg.compileStmt(s.Else)
		}
		cg.markLabel(endLbl)

	case *WhileStmt:
		headLbl := cg.newLabel()
		endLbl := cg.newLabel()
		cg.markLabel(headLbl)
		cg.compileExpr(s.Cond)
		cg.emitJump(vm.OpIfFalse, endLbl)
		cg.pushLoop(endLbl, headLbl)
		cg.compileStmt(s.Body)
		cg.popLoop()
		cg.emitJump(vm.OpGoto, headLbl)
		cg.markLabel(endLbl)

	case *ForStmt:
		cg.compileFor(s)

	case *ForEachStmt:
		cg.compileForEach(s)

	case *ReturnStmt:
		if s.Value != nil {
			cg.compileExpr(s.Value)
			cg.emit(vm.OpReturnValue)
		} else {
			cg.emit(vm.OpReturn)
		}

	case *BreakStmt:
		if len(cg.breakLabels) == 0 {
			cg.errorf(s.PosVal, "break outside loop or switch")
		}
		cg.emitJump(vm.OpGoto, cg.breakLabels[len(cg.breakLabels)-1])

	case *ContinueStmt:
		if len(cg.continueLabels) == 0 {
			cg.errorf(s.PosVal, "continue outside loop")
		}
		cg.emitJump(vm.OpGoto, cg.continueLabels[len(cg.continueLabels)-1])

	case *ThrowStmt:
		cg.compileExpr(s.Value)
		cg.emit(vm.OpThrow)

	case *SwitchStmt:
		cg.compileSwitch(s)

	case *TryStmt:
		// The try body runs, catch bodies are skipped, finally runs
		// unconditionally after the try body.
		cg.compileStmt(s.Body)
		if s.Finally != nil {
			cg.compileStmt(s.Finally)
		}

	case *SyncStmt:
		// Lock expression already discarded by the parser.
		cg.compileStmt(s.Body)

	default:
		cg.errorf(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

// isDeclGroup reports whether a block consists solely of variable
// declarations, i.e. it was lowered from a multi-variable statement.
func isDeclGroup(b *BlockStmt) bool {
	if len(b.Stmts) == 0 {
		return false
	}
	for _, s := range b.Stmts {
		if _, ok := s.(*VarDecl); !ok {
			return false
		}
	}
	return true
}

func (cg *Codegen) pushLoop(breakLbl, continueLbl int) {
	cg.breakLabels = append(cg.breakLabels, breakLbl)
	cg.continueLabels = append(cg.continueLabels, continueLbl)
}

func (cg *Codegen) popLoop() {
	cg.breakLabels = cg.breakLabels[:len(cg.breakLabels)-1]
	cg.continueLabels = cg.continueLabels[:len(cg.continueLabels)-1]
}

func (cg *Codegen) compileFor(s *ForStmt) {
	cg.pushScope()
	if s.Init != nil {
		cg.compileStmt(s.Init)
	}
	headLbl := cg.newLabel()
	updateLbl := cg.newLabel()
	endLbl := cg.newLabel()

	cg.markLabel(headLbl)
	if s.Cond != nil {
		cg.compileExpr(s.Cond)
		cg.emitJump(vm.OpIfFalse, endLbl)
	}
	cg.pushLoop(endLbl, updateLbl)
	cg.compileStmt(s.Body)
	cg.popLoop()
	cg.markLabel(updateLbl)
	if s.Update != nil {
		cg.compileExpr(s.Update)
		cg.emit(vm.OpPop)
	}
	cg.emitJump(vm.OpGoto, headLbl)
	cg.markLabel(endLbl)
	cg.popScope()
}

// compileForEach lowers the enhanced for into an explicit iterator loop.
func (cg *Codegen) compileForEach(s *ForEachStmt) {
	cg.pushScope()
	iterSlot := cg.synthSlot("iterator")
	varSlot := cg.declare(s.VarName, s.VarType.Name)

	cg.compileExpr(s.Iterable)
	cg.emit(vm.OpInvokeInterface, vm.MethodOperand("iterator", ""), vm.IntOperand(0))
	cg.emit(vm.OpStoreLocal, vm.LocalOperand(iterSlot, cg.localName(iterSlot)))

	headLbl := cg.newLabel()
	endLbl := cg.newLabel()
	cg.markLabel(headLbl)
	cg.emit(vm.OpLoadLocal, vm.LocalOperand(iterSlot, cg.localName(iterSlot)))
	cg.emit(vm.OpInvokeInterface, vm.MethodOperand("hasNext", ""), vm.IntOperand(0))
	cg.emitJump(vm.OpIfFalse, endLbl)
	cg.emit(vm.OpLoadLocal, vm.LocalOperand(iterSlot, cg.localName(iterSlot)))
	cg.emit(vm.OpInvokeInterface, vm.MethodOperand("next", ""), vm.IntOperand(0))
	cg.emit(vm.OpStoreLocal, vm.LocalOperand(varSlot, s.VarName))

	cg.pushLoop(endLbl, headLbl)
	cg.compileStmt(s.Body)
	cg.popLoop()
	cg.emitJump(vm.OpGoto, headLbl)
	cg.markLabel(endLbl)
	cg.popScope()
}

func (cg *Codegen) localName(slot int) string {
	for i := range cg.locals {
		if cg.locals[i].Slot == slot {
			return cg.locals[i].Name
		}
	}
	return ""
}

// compileSwitch lowers switch to an equality test chain with shared
// fallthrough bodies.
func (cg *Codegen) compileSwitch(s *SwitchStmt) {
	cg.pushScope()
	subjSlot := cg.synthSlot("switch")
	cg.compileExpr(s.Subject)
	cg.emit(vm.OpStoreLocal, vm.LocalOperand(subjSlot, cg.localName(subjSlot)))

	endLbl := cg.newLabel()
	caseLbls := make([]int, len(s.Cases))
	defaultLbl := endLbl
	for i, c := range s.Cases {
		caseLbls[i] = cg.newLabel()
		if c.Value == nil {
			defaultLbl = caseLbls[i]
		}
	}

	for i, c := range s.Cases {
		if c.Value == nil {
			continue
		}
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(subjSlot, cg.localName(subjSlot)))
		cg.compileExpr(c.Value)
		cg.emit(vm.OpCmpEq)
		cg.emitJump(vm.OpIfTrue, caseLbls[i])
	}
	cg.emitJump(vm.OpGoto, defaultLbl)

	cg.breakLabels = append(cg.breakLabels, endLbl)
	for i, c := range s.Cases {
		cg.markLabel(caseLbls[i])
		cg.compileBlockStmts(c.Stmts)
	}
	cg.breakLabels = cg.breakLabels[:len(cg.breakLabels)-1]
	cg.markLabel(endLbl)
	cg.popScope()
}

// compileDefault pushes the zero value for a declared type.
func (cg *Codegen) compileDefault(typ *TypeNode) {
	if typ.Dims > 0 {
		cg.emit(vm.OpPushNull)
		return
	}
	switch typ.Name {
	case "int", "byte", "short":
		cg.emit(vm.OpLoadConst, vm.IntOperand(0))
	case "long":
		cg.emit(vm.OpLoadConst, vm.IntOperand(0))
	case "float", "double":
		cg.emit(vm.OpLoadConst, vm.FloatOperand(0))
	case "boolean":
		cg.emit(vm.OpLoadConst, vm.BoolOperand(false))
	case "char":
		cg.emit(vm.OpLoadConst, vm.IntOperand(0))
	default:
		cg.emit(vm.OpPushNull)
	}
}

// compileInitExpr compiles a declaration initialiser, turning a bare array
// initializer into an allocation of the declared element type.
func (cg *Codegen) compileInitExpr(init Expr, typ *TypeNode) {
	if arr, ok := init.(*ArrayInit); ok {
		cg.compileArrayLiteral(typ.Name, arr.Elements)
		return
	}
	cg.compileExpr(init)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (cg *Codegen) compileExpr(expr Expr) {
	switch e := expr.(type) {
	case *IntLiteral:
		cg.emit(vm.OpLoadConst, vm.IntOperand(e.Value))
	case *FloatLiteral:
		cg.emit(vm.OpLoadConst, vm.FloatOperand(e.Value))
	case *StringLiteral:
		cg.emit(vm.OpLoadConst, vm.StringOperand(e.Value))
	case *CharLiteral:
		cg.emit(vm.OpLoadConst, vm.IntOperand(int64(e.Value)), vm.TypeOperand("char"))
	case *BoolLiteral:
		cg.emit(vm.OpLoadConst, vm.BoolOperand(e.Value))
	case *NullLiteral:
		cg.emit(vm.OpPushNull)
	case *Ident:
		cg.compileIdent(e)
	case *This:
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
	case *SuperRef:
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
	case *Assign:
		cg.compileAssign(e)
	case *Ternary:
		cg.compileTernary(e)
	case *Binary:
		cg.compileBinary(e)
	case *Unary:
		cg.compileUnary(e)
	case *Postfix:
		cg.compilePostfix(e)
	case *Cast:
		cg.compileExpr(e.Value)
		cg.emit(vm.OpCheckCast, vm.TypeOperand(e.Type.Name))
	case *InstanceOf:
		cg.compileExpr(e.Value)
		cg.emit(vm.OpInstanceOf, vm.TypeOperand(e.Type.Name))
	case *FieldAccess:
		cg.compileFieldAccess(e)
	case *IndexAccess:
		cg.compileExpr(e.Receiver)
		cg.compileExpr(e.Index)
		cg.emit(vm.OpArrayLoad)
	case *Call:
		cg.compileCall(e)
	case *MethodRef:
		info := methodRefInfo(e)
		cg.emit(vm.OpLambdaCreate, vm.StringOperand(info))
	case *Lambda:
		cg.emit(vm.OpLambdaCreate, vm.StringOperand(lambdaInfo(e)))
	case *New:
		cg.compileNew(e)
	case *NewArray:
		cg.compileNewArray(e)
	case *ArrayInit:
		cg.compileArrayLiteral("Object", e.Elements)
	default:
		cg.errorf(expr.Pos(), "unsupported expression %T", expr)
	}
}

// methodRefInfo serialises a Type::method reference descriptor.
func methodRefInfo(e *MethodRef) string {
	if id, ok := e.Receiver.(*Ident); ok {
		return id.Name + "::" + e.Method
	}
	return "::" + e.Method
}

// lambdaInfo serialises a lambda descriptor: parameters plus a body marker.
// The body itself is never compiled.
func lambdaInfo(e *Lambda) string {
	return "(" + strings.Join(e.Params, ",") + ")->@" + fmt.Sprintf("L%d", e.PosVal.Line)
}

// compileIdent resolves a bare identifier: local, instance field of this,
// or static field of the enclosing class.
func (cg *Codegen) compileIdent(e *Ident) {
	if slot, ok := cg.lookupLocal(e.Name); ok {
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(slot, e.Name))
		return
	}
	if cg.isInstanceField(e.Name) {
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
		cg.emit(vm.OpGetField, vm.FieldOperand(e.Name, ""))
		return
	}
	owner := cg.staticFieldOwner(e.Name)
	cg.emit(vm.OpGetStatic, vm.FieldOperand(e.Name, owner))
}

// isInstanceField walks the enclosing class chain for a non-static field.
func (cg *Codegen) isInstanceField(name string) bool {
	if cg.curMethod != nil && cg.curMethod.IsStatic() {
		return false
	}
	for class := cg.curClass; class != nil; {
		for _, f := range class.Fields {
			if f.Name == name && !hasModifier(f.Modifiers, "static") {
				return true
			}
		}
		class = cg.classes[class.SuperClass]
	}
	return false
}

// staticFieldOwner finds the class declaring a static field of that name,
// defaulting to the enclosing class.
func (cg *Codegen) staticFieldOwner(name string) string {
	for class := cg.curClass; class != nil; {
		for _, f := range class.Fields {
			if f.Name == name && hasModifier(f.Modifiers, "static") {
				return class.Name
			}
		}
		class = cg.classes[class.SuperClass]
	}
	if cg.curClass != nil {
		return cg.curClass.Name
	}
	return ""
}

// isClassName reports whether name denotes a class rather than a value:
// a declared class/interface, a well-known static-utility class, or an
// unresolvable capitalised name (Thread, Scanner, ...).
func (cg *Codegen) isClassName(name string) bool {
	if _, ok := cg.lookupLocal(name); ok {
		return false
	}
	if cg.isInstanceField(name) {
		return false
	}
	if _, ok := cg.classes[name]; ok {
		return true
	}
	if _, ok := cg.ifaces[name]; ok {
		return true
	}
	if staticUtilityClasses[name] {
		return true
	}
	if cg.curClass != nil {
		for class := cg.curClass; class != nil; {
			for _, f := range class.Fields {
				if f.Name == name && hasModifier(f.Modifiers, "static") {
					return false
				}
			}
			class = cg.classes[class.SuperClass]
		}
	}
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// ---------------------------------------------------------------------------
// Assignment and update expressions
// ---------------------------------------------------------------------------

var compoundOps = map[string]vm.Opcode{
	"+=": vm.OpAdd, "-=": vm.OpSub, "*=": vm.OpMul, "/=": vm.OpDiv,
}

func (cg *Codegen) compileAssign(e *Assign) {
	switch target := e.Target.(type) {
	case *Ident:
		cg.compileAssignIdent(e, target)
	case *FieldAccess:
		cg.compileAssignField(e, target)
	case *IndexAccess:
		cg.compileAssignIndex(e, target)
	default:
		cg.errorf(e.PosVal, "invalid assignment target %T", target)
	}
}

func (cg *Codegen) compileAssignIdent(e *Assign, target *Ident) {
	if slot, ok := cg.lookupLocal(target.Name); ok {
		if e.Op == "=" {
			cg.compileExpr(e.Value)
		} else {
			// x += v lowers to load, value, op
			cg.emit(vm.OpLoadLocal, vm.LocalOperand(slot, target.Name))
			cg.compileExpr(e.Value)
			cg.emit(compoundOps[e.Op])
		}
		cg.emit(vm.OpDup)
		cg.emit(vm.OpStoreLocal, vm.LocalOperand(slot, target.Name))
		return
	}

	if cg.isInstanceField(target.Name) {
		cg.compileAssignField(e, &FieldAccess{
			PosVal:   target.PosVal,
			Receiver: &This{PosVal: target.PosVal},
			Name:     target.Name,
		})
		return
	}

	owner := cg.staticFieldOwner(target.Name)
	if e.Op == "=" {
		cg.compileExpr(e.Value)
	} else {
		cg.emit(vm.OpGetStatic, vm.FieldOperand(target.Name, owner))
		cg.compileExpr(e.Value)
		cg.emit(compoundOps[e.Op])
	}
	cg.emit(vm.OpDup)
	cg.emit(vm.OpPutStatic, vm.FieldOperand(target.Name, owner))
}

func (cg *Codegen) compileAssignField(e *Assign, target *FieldAccess) {
	// Static field via class-name receiver
	if id, ok := target.Receiver.(*Ident); ok && cg.isClassName(id.Name) {
		if e.Op == "=" {
			cg.compileExpr(e.Value)
		} else {
			cg.emit(vm.OpGetStatic, vm.FieldOperand(target.Name, id.Name))
			cg.compileExpr(e.Value)
			cg.emit(compoundOps[e.Op])
		}
		cg.emit(vm.OpDup)
		cg.emit(vm.OpPutStatic, vm.FieldOperand(target.Name, id.Name))
		return
	}

	cg.compileExpr(target.Receiver)
	if e.Op == "=" {
		cg.compileExpr(e.Value)
	} else {
		cg.emit(vm.OpDup)
		cg.emit(vm.OpGetField, vm.FieldOperand(target.Name, ""))
		cg.compileExpr(e.Value)
		cg.emit(compoundOps[e.Op])
	}
	cg.emit(vm.OpDupX1)
	cg.emit(vm.OpPutField, vm.FieldOperand(target.Name, ""))
}

func (cg *Codegen) compileAssignIndex(e *Assign, target *IndexAccess) {
	tmp := cg.scratchSlot()
	if e.Op == "=" {
		cg.compileExpr(target.Receiver)
		cg.compileExpr(target.Index)
		cg.compileExpr(e.Value)
	} else {
		// a[i] op= v reloads the element before applying op
		cg.compileExpr(target.Receiver)
		cg.emit(vm.OpDup)
		cg.compileExpr(target.Index)
		cg.emit(vm.OpDupX1)
		// stack: arr, idx, arr, idx
		cg.emit(vm.OpArrayLoad) // arr, idx, old
		cg.compileExpr(e.Value)
		cg.emit(compoundOps[e.Op]) // arr, idx, new
	}
	cg.emit(vm.OpDup)
	cg.emit(vm.OpStoreLocal, vm.LocalOperand(tmp, "$tmp"))
	cg.emit(vm.OpArrayStore)
	cg.emit(vm.OpLoadLocal, vm.LocalOperand(tmp, "$tmp"))
}

func (cg *Codegen) compileTernary(e *Ternary) {
	elseLbl := cg.newLabel()
	endLbl := cg.newLabel()
	cg.compileExpr(e.Cond)
	cg.emitJump(vm.OpIfFalse, elseLbl)
	cg.compileExpr(e.Then)
	cg.emitJump(vm.OpGoto, endLbl)
	cg.markLabel(elseLbl)
	cg.compileExpr(e.Else)
	cg.markLabel(endLbl)
}

var binaryOps = map[string]vm.Opcode{
	"+": vm.OpAdd, "-": vm.OpSub, "*": vm.OpMul, "/": vm.OpDiv, "%": vm.OpMod,
	"==": vm.OpCmpEq, "!=": vm.OpCmpNe,
	"<": vm.OpCmpLt, "<=": vm.OpCmpLe, ">": vm.OpCmpGt, ">=": vm.OpCmpGe,
	"&&": vm.OpAnd, "||": vm.OpOr, "&": vm.OpAnd, "|": vm.OpOr,
}

func (cg *Codegen) compileBinary(e *Binary) {
	op, ok := binaryOps[e.Op]
	if !ok {
		cg.errorf(e.PosVal, "unsupported operator %q", e.Op)
	}
	cg.compileExpr(e.Left)
	cg.compileExpr(e.Right)
	cg.emit(op)
}

func (cg *Codegen) compileUnary(e *Unary) {
	switch e.Op {
	case "!":
		cg.compileExpr(e.Operand)
		cg.emit(vm.OpNot)
	case "-":
		cg.compileExpr(e.Operand)
		cg.emit(vm.OpNeg)
	case "++", "--":
		cg.compileIncDec(e.Operand, e.Op == "++", true)
	default:
		cg.errorf(e.PosVal, "unsupported unary operator %q", e.Op)
	}
}

func (cg *Codegen) compilePostfix(e *Postfix) {
	cg.compileIncDec(e.Operand, e.Op == "++", false)
}

// compileIncDec emits ++/--. The postfix form leaves the original value on
// the stack; the prefix form leaves the updated value.
func (cg *Codegen) compileIncDec(target Expr, inc bool, prefix bool) {
	op := vm.OpAdd
	if !inc {
		op = vm.OpSub
	}

	switch t := target.(type) {
	case *Ident:
		if slot, ok := cg.lookupLocal(t.Name); ok {
			cg.emit(vm.OpLoadLocal, vm.LocalOperand(slot, t.Name))
			if prefix {
				cg.emit(vm.OpLoadConst, vm.IntOperand(1))
				cg.emit(op)
				cg.emit(vm.OpDup)
			} else {
				cg.emit(vm.OpDup)
				cg.emit(vm.OpLoadConst, vm.IntOperand(1))
				cg.emit(op)
			}
			cg.emit(vm.OpStoreLocal, vm.LocalOperand(slot, t.Name))
			return
		}
		if cg.isInstanceField(t.Name) {
			cg.compileIncDecField(&FieldAccess{
				PosVal:   t.PosVal,
				Receiver: &This{PosVal: t.PosVal},
				Name:     t.Name,
			}, op, prefix)
			return
		}
		owner := cg.staticFieldOwner(t.Name)
		cg.emit(vm.OpGetStatic, vm.FieldOperand(t.Name, owner))
		if prefix {
			cg.emit(vm.OpLoadConst, vm.IntOperand(1))
			cg.emit(op)
			cg.emit(vm.OpDup)
		} else {
			cg.emit(vm.OpDup)
			cg.emit(vm.OpLoadConst, vm.IntOperand(1))
			cg.emit(op)
		}
		cg.emit(vm.OpPutStatic, vm.FieldOperand(t.Name, owner))

	case *FieldAccess:
		cg.compileIncDecField(t, op, prefix)

	case *IndexAccess:
		tmp := cg.scratchSlot()
		cg.compileExpr(t.Receiver)
		cg.emit(vm.OpDup)
		cg.compileExpr(t.Index)
		cg.emit(vm.OpDupX1)
		// stack: arr, idx, arr, idx
		cg.emit(vm.OpArrayLoad) // arr, idx, old
		if prefix {
			cg.emit(vm.OpLoadConst, vm.IntOperand(1))
			cg.emit(op) // arr, idx, new
			cg.emit(vm.OpStoreLocal, vm.LocalOperand(tmp, "$tmp"))
			cg.emit(vm.OpLoadLocal, vm.LocalOperand(tmp, "$tmp"))
			cg.emit(vm.OpArrayStore)
		} else {
			cg.emit(vm.OpStoreLocal, vm.LocalOperand(tmp, "$tmp")) // arr, idx
			cg.emit(vm.OpLoadLocal, vm.LocalOperand(tmp, "$tmp"))
			cg.emit(vm.OpLoadConst, vm.IntOperand(1))
			cg.emit(op) // arr, idx, new
			cg.emit(vm.OpArrayStore)
		}
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(tmp, "$tmp"))

	default:
		cg.errorf(target.Pos(), "invalid increment/decrement target %T", target)
	}
}

func (cg *Codegen) compileIncDecField(t *FieldAccess, op vm.Opcode, prefix bool) {
	cg.compileExpr(t.Receiver)
	cg.emit(vm.OpDup)
	cg.emit(vm.OpGetField, vm.FieldOperand(t.Name, "")) // obj, old
	if prefix {
		cg.emit(vm.OpLoadConst, vm.IntOperand(1))
		cg.emit(op)        // obj, new
		cg.emit(vm.OpDupX1) // new, obj, new
	} else {
		cg.emit(vm.OpDupX1) // old, obj, old
		cg.emit(vm.OpLoadConst, vm.IntOperand(1))
		cg.emit(op) // old, obj, new
	}
	cg.emit(vm.OpPutField, vm.FieldOperand(t.Name, ""))
}

// ---------------------------------------------------------------------------
// Field access and calls
// ---------------------------------------------------------------------------

func (cg *Codegen) compileFieldAccess(e *FieldAccess) {
	if id, ok := e.Receiver.(*Ident); ok && cg.isClassName(id.Name) {
		cg.emit(vm.OpGetStatic, vm.FieldOperand(e.Name, id.Name))
		return
	}
	cg.compileExpr(e.Receiver)
	cg.emit(vm.OpGetField, vm.FieldOperand(e.Name, ""))
}

// isSystemOut matches the System.out receiver for the print peephole.
func isSystemOut(e Expr) bool {
	fa, ok := e.(*FieldAccess)
	if !ok {
		return false
	}
	id, ok := fa.Receiver.(*Ident)
	return ok && id.Name == "System" && (fa.Name == "out" || fa.Name == "err")
}

func (cg *Codegen) compileCall(e *Call) {
	// System.out.print / println lowers to PRINT. An argument-less call
	// pushes the empty string so PRINT always pops one value.
	if e.Receiver != nil && isSystemOut(e.Receiver) && (e.Method == "println" || e.Method == "print") {
		if len(e.Args) == 0 {
			cg.emit(vm.OpLoadConst, vm.StringOperand(""))
		} else {
			cg.compileExpr(e.Args[0])
		}
		cg.emit(vm.OpPrint, vm.BoolOperand(e.Method == "println"))
		return
	}

	// Constructor delegation: this(...) / super(...)
	if e.Method == "<init>" {
		descriptor := ""
		if _, isSuper := e.Receiver.(*SuperRef); isSuper {
			descriptor = "super"
		}
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
		for _, a := range e.Args {
			cg.compileExpr(a)
		}
		cg.emit(vm.OpInvokeSpecial, vm.MethodOperand("<init>", descriptor), vm.IntOperand(int64(len(e.Args))))
		return
	}

	// Static calls through a class-name receiver
	if id, ok := e.Receiver.(*Ident); ok && cg.isClassName(id.Name) {
		for _, a := range e.Args {
			cg.compileExpr(a)
		}
		cg.emit(vm.OpInvokeStatic,
			vm.MethodOperand(e.Method, ""),
			vm.IntOperand(int64(len(e.Args))),
			vm.ClassOperand(id.Name))
		return
	}

	// super.method(...)
	if _, isSuper := e.Receiver.(*SuperRef); isSuper {
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
		for _, a := range e.Args {
			cg.compileExpr(a)
		}
		cg.emit(vm.OpInvokeSpecial, vm.MethodOperand(e.Method, "super"), vm.IntOperand(int64(len(e.Args))))
		return
	}

	// Unqualified call: static sibling or implicit this
	if e.Receiver == nil {
		if cg.curClass != nil {
			if m := findMethod(cg.curClass, e.Method, len(e.Args)); m != nil && m.IsStatic() {
				for _, a := range e.Args {
					cg.compileExpr(a)
				}
				cg.emit(vm.OpInvokeStatic,
					vm.MethodOperand(e.Method, ""),
					vm.IntOperand(int64(len(e.Args))),
					vm.ClassOperand(cg.curClass.Name))
				return
			}
		}
		cg.emit(vm.OpLoadLocal, vm.LocalOperand(0, "this"))
		for _, a := range e.Args {
			cg.compileExpr(a)
		}
		cg.emit(vm.OpInvokeVirtual, vm.MethodOperand(e.Method, ""), vm.IntOperand(int64(len(e.Args))))
		return
	}

	cg.compileExpr(e.Receiver)
	for _, a := range e.Args {
		cg.compileExpr(a)
	}
	cg.emit(vm.OpInvokeVirtual, vm.MethodOperand(e.Method, ""), vm.IntOperand(int64(len(e.Args))))
}

func findMethod(class *ClassDecl, name string, argc int) *MethodDecl {
	for _, m := range class.Methods {
		if m.Name == name && len(m.Params) == argc {
			return m
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Allocation
// ---------------------------------------------------------------------------

func (cg *Codegen) compileNew(e *New) {
	cg.emit(vm.OpNew, vm.ClassOperand(e.Type.Name))
	cg.emit(vm.OpDup)
	for _, a := range e.Args {
		cg.compileExpr(a)
	}
	cg.emit(vm.OpInvokeSpecial, vm.MethodOperand("<init>", ""), vm.IntOperand(int64(len(e.Args))))
}

func (cg *Codegen) compileNewArray(e *NewArray) {
	if len(e.Lengths) == 0 {
		cg.compileArrayLiteral(e.ElemType.Name, e.Init)
		return
	}
	for _, l := range e.Lengths {
		cg.compileExpr(l)
	}
	cg.emit(vm.OpNewArray, vm.TypeOperand(e.ElemType.Name), vm.IntOperand(int64(len(e.Lengths))))
}

// compileArrayLiteral emits a sized allocation followed by element stores.
func (cg *Codegen) compileArrayLiteral(elemType string, elements []Expr) {
	cg.emit(vm.OpLoadConst, vm.IntOperand(int64(len(elements))))
	cg.emit(vm.OpNewArray, vm.TypeOperand(elemType), vm.IntOperand(1))
	for i, el := range elements {
		cg.emit(vm.OpDup)
		cg.emit(vm.OpLoadConst, vm.IntOperand(int64(i)))
		cg.compileExpr(el)
		cg.emit(vm.OpArrayStore)
	}
}

package vm

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Disassembly
// ---------------------------------------------------------------------------

// DisassembleInstruction renders one instruction at its global index.
func DisassembleInstruction(index int, in Instruction) string {
	if len(in.Operands) == 0 {
		return fmt.Sprintf("%04d  %s", index, in.Op.Name())
	}
	parts := make([]string, len(in.Operands))
	for i, op := range in.Operands {
		parts[i] = op.String()
	}
	return fmt.Sprintf("%04d  %s %s", index, in.Op.Name(), strings.Join(parts, ", "))
}

// Disassemble returns a full listing of the program, with method headers
// placed at their offsets.
func Disassemble(p *CompiledProgram) string {
	// Invert the offset table so headers print in instruction order.
	type entry struct {
		start int
		name  string
	}
	var methods []entry
	for name, start := range p.MethodOffsets {
		methods = append(methods, entry{start: start, name: name})
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].start < methods[j].start })

	var sb strings.Builder
	next := 0
	for i, in := range p.Instructions {
		for next < len(methods) && methods[next].start == i {
			fmt.Fprintf(&sb, "\n%s:\n", methods[next].name)
			next++
		}
		sb.WriteString(DisassembleInstruction(i, in))
		sb.WriteByte('\n')
	}
	return sb.String()
}

package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders chunk as human-readable text for the `--bytecode`
// CLI flag (spec.md §10): one line per instruction, nested function
// protos rendered after their MAKE_CLOSURE site.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	disassembleChunk(&sb, chunk, name)
	return sb.String()
}

func disassembleChunk(sb *strings.Builder, chunk *Chunk, name string) {
	fmt.Fprintf(sb, "== %s ==\n", name)
	for i, instr := range chunk.Code {
		fmt.Fprintf(sb, "%04d %s\n", i, formatInstruction(chunk, instr))
	}
	for i, proto := range chunk.Protos {
		fmt.Fprintln(sb)
		disassembleChunk(sb, proto.Chunk, fmt.Sprintf("%s.proto[%d] %s", name, i, proto.Name))
	}
}

func formatInstruction(chunk *Chunk, instr Instruction) string {
	switch instr.Op {
	case OpPushConst:
		return fmt.Sprintf("%-14s %d  ; %s", instr.Op, instr.A, chunk.Constants[instr.A].String())
	case OpLoad, OpStore, OpDefine, OpDefineConst, OpGetAttr, OpSetAttr:
		return fmt.Sprintf("%-14s %d  ; %s", instr.Op, instr.A, chunk.Constants[instr.A].String())
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return fmt.Sprintf("%-14s -> %04d", instr.Op, instr.A)
	case OpCall:
		return fmt.Sprintf("%-14s argc=%d", instr.Op, instr.A)
	case OpMethodCall:
		return fmt.Sprintf("%-14s %q argc=%d", instr.Op, chunk.Constants[instr.A].String(), instr.B)
	case OpBuildList:
		return fmt.Sprintf("%-14s n=%d", instr.Op, instr.A)
	case OpBuildMap:
		return fmt.Sprintf("%-14s entries=%d", instr.Op, instr.A)
	case OpEmit:
		return fmt.Sprintf("%-14s %q argc=%d", instr.Op, chunk.Constants[instr.A].String(), instr.B)
	case OpExitContract:
		return fmt.Sprintf("%-14s %q", instr.Op, chunk.Constants[instr.A].String())
	case OpMakeClosure:
		return fmt.Sprintf("%-14s proto[%d]", instr.Op, instr.A)
	default:
		return instr.Op.String()
	}
}

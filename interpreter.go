package main

import (
	"encoding/binary"
	"strconv"
)

// This file implements the inner interpreter: the opcode catalog and
// the dispatch loop over the arena. The opcode table and name table are
// kept as parallel, index-aligned structures with explicit byte-valued
// constants for each opcode.

type opcode byte

const (
	opExit opcode = iota // must be zero: unwritten arena bytes decode as EXIT
	opLit
	opCall
	opBranch
	opBranchIfZero

	opDo
	opLoop
	opI

	opDup
	opDrop
	opSwap
	opOver
	opRot
	op2Dup
	op2Drop
	opNip
	opTuck
	opQDup

	opToR
	opRFrom
	opRFetch

	opAdd
	opSub
	opMul
	opDiv
	opMod
	opDivMod
	opNegate
	opAbs
	opMin
	opMax
	opIncr
	opDecr

	opAnd
	opOr
	opXor
	opNot

	opLt
	opGt
	opEq
	opLe
	opGe
	opNe
	opZeroEq
	opZeroLt
	opZeroNe

	opLoad
	opStore
	opLoadByte
	opStoreByte
	opPlusStore
	opAllot
	opHere

	opEmit
	opKey
	opCr
	opType
	opDot
	opDotS
	opDepth
	opClear
	opWords

	opCount // sentinel: number of opcodes
)

// surfaceName is the dictionary name a builtin opcode is installed under.
// Opcodes not listed here (control-flow primitives emitted only by the
// compiler) have no dictionary entry and so cannot be looked up or
// shadowed by name.
var surfaceName = map[opcode]string{
	opDup:       "DUP",
	opDrop:      "DROP",
	opSwap:      "SWAP",
	opOver:      "OVER",
	opRot:       "ROT",
	op2Dup:      "2DUP",
	op2Drop:     "2DROP",
	opNip:       "NIP",
	opTuck:      "TUCK",
	opQDup:      "?DUP",
	opToR:       ">R",
	opRFrom:     "R>",
	opRFetch:    "R@",
	opAdd:       "+",
	opSub:       "-",
	opMul:       "*",
	opDiv:       "/",
	opMod:       "MOD",
	opDivMod:    "/MOD",
	opNegate:    "NEGATE",
	opAbs:       "ABS",
	opMin:       "MIN",
	opMax:       "MAX",
	opIncr:      "1+",
	opDecr:      "1-",
	opAnd:       "AND",
	opOr:        "OR",
	opXor:       "XOR",
	opNot:       "NOT",
	opLt:        "<",
	opGt:        ">",
	opEq:        "=",
	opLe:        "<=",
	opGe:        ">=",
	opNe:        "<>",
	opZeroEq:    "0=",
	opZeroLt:    "0<",
	opZeroNe:    "0<>",
	opLoad:      "@",
	opStore:     "!",
	opLoadByte:  "C@",
	opStoreByte: "C!",
	opPlusStore: "+!",
	opAllot:     "ALLOT",
	opHere:      "HERE",
	opEmit:      "EMIT",
	opKey:       "KEY",
	opCr:        "CR",
	opType:      "TYPE",
	opDot:       ".",
	opDotS:      ".S",
	opDepth:     "DEPTH",
	opClear:     "CLEAR",
	opWords:     "WORDS",
}

// opcodeName gives every opcode (builtin or control-flow-only) a name for
// tracing and decompilation, independent of whether it has a dictionary
// entry.
var opcodeName [opCount]string

func init() {
	for op, name := range surfaceName {
		opcodeName[op] = name
	}
	opcodeName[opExit] = "EXIT"
	opcodeName[opLit] = "LIT"
	opcodeName[opCall] = "CALL"
	opcodeName[opBranch] = "BRANCH"
	opcodeName[opBranchIfZero] = "BRANCH_IF_ZERO"
	opcodeName[opDo] = "DO"
	opcodeName[opLoop] = "LOOP"
	opcodeName[opI] = "I"
}

var opcodeTable [opCount]func(vm *VM)

func init() {
	opcodeTable[opExit] = (*VM).opExit
	opcodeTable[opLit] = (*VM).opLit
	opcodeTable[opCall] = (*VM).opCall
	opcodeTable[opBranch] = (*VM).opBranch
	opcodeTable[opBranchIfZero] = (*VM).opBranchIfZero

	opcodeTable[opDo] = (*VM).opDo
	opcodeTable[opLoop] = (*VM).opLoop
	opcodeTable[opI] = (*VM).opI

	opcodeTable[opDup] = (*VM).opDup
	opcodeTable[opDrop] = (*VM).opDrop
	opcodeTable[opSwap] = (*VM).opSwap
	opcodeTable[opOver] = (*VM).opOver
	opcodeTable[opRot] = (*VM).opRot
	opcodeTable[op2Dup] = (*VM).op2Dup
	opcodeTable[op2Drop] = (*VM).op2Drop
	opcodeTable[opNip] = (*VM).opNip
	opcodeTable[opTuck] = (*VM).opTuck
	opcodeTable[opQDup] = (*VM).opQDup

	opcodeTable[opToR] = (*VM).opToR
	opcodeTable[opRFrom] = (*VM).opRFrom
	opcodeTable[opRFetch] = (*VM).opRFetch

	opcodeTable[opAdd] = (*VM).opAdd
	opcodeTable[opSub] = (*VM).opSub
	opcodeTable[opMul] = (*VM).opMul
	opcodeTable[opDiv] = (*VM).opDiv
	opcodeTable[opMod] = (*VM).opMod
	opcodeTable[opDivMod] = (*VM).opDivMod
	opcodeTable[opNegate] = (*VM).opNegate
	opcodeTable[opAbs] = (*VM).opAbs
	opcodeTable[opMin] = (*VM).opMin
	opcodeTable[opMax] = (*VM).opMax
	opcodeTable[opIncr] = (*VM).opIncr
	opcodeTable[opDecr] = (*VM).opDecr

	opcodeTable[opAnd] = (*VM).opAnd
	opcodeTable[opOr] = (*VM).opOr
	opcodeTable[opXor] = (*VM).opXor
	opcodeTable[opNot] = (*VM).opNot

	opcodeTable[opLt] = (*VM).opLt
	opcodeTable[opGt] = (*VM).opGt
	opcodeTable[opEq] = (*VM).opEq
	opcodeTable[opLe] = (*VM).opLe
	opcodeTable[opGe] = (*VM).opGe
	opcodeTable[opNe] = (*VM).opNe
	opcodeTable[opZeroEq] = (*VM).opZeroEq
	opcodeTable[opZeroLt] = (*VM).opZeroLt
	opcodeTable[opZeroNe] = (*VM).opZeroNe

	opcodeTable[opLoad] = (*VM).opLoad
	opcodeTable[opStore] = (*VM).opStore
	opcodeTable[opLoadByte] = (*VM).opLoadByte
	opcodeTable[opStoreByte] = (*VM).opStoreByte
	opcodeTable[opPlusStore] = (*VM).opPlusStore
	opcodeTable[opAllot] = (*VM).opAllot
	opcodeTable[opHere] = (*VM).opHere

	opcodeTable[opEmit] = (*VM).opEmit
	opcodeTable[opKey] = (*VM).opKey
	opcodeTable[opCr] = (*VM).opCr
	opcodeTable[opType] = (*VM).opType
	opcodeTable[opDot] = (*VM).opDot
	opcodeTable[opDotS] = (*VM).opDotS
	opcodeTable[opDepth] = (*VM).opDepth
	opcodeTable[opClear] = (*VM).opClear
	opcodeTable[opWords] = (*VM).opWords
}

// installBuiltins gives every opcode with a surfaceName a tiny arena
// fragment ("opcode; EXIT") and a dictionary entry pointing at it, then
// records the builtin/user split point.
func (vm *VM) installBuiltins() {
	for op := opcode(0); op < opCount; op++ {
		name, ok := surfaceName[op]
		if !ok {
			continue
		}
		addr := vm.here
		vm.emitByte(byte(op))
		vm.emitByte(byte(opExit))
		vm.defineWord(name, addr)
	}
	vm.builtinCount = len(vm.words)
}

// execute runs starting at startAddr until an EXIT opcode unwinds to an
// empty return stack (relative to the depth execute was entered at).
func (vm *VM) execute(startAddr Addr) {
	base := len(vm.ret)
	vm.pc = startAddr
	for {
		if len(vm.ret) <= base && vm.pc < vm.capacity && opcode(vm.arena[vm.pc]) == opExit {
			vm.pc++
			return
		}
		vm.step()
		if vm.halted != nil {
			return
		}
	}
}

// step dispatches exactly one opcode.
func (vm *VM) step() {
	op := opcode(vm.loadProgByte())
	if op >= opCount {
		vm.haltf(unknownOpcodeError(op))
		return
	}
	if vm.logfn != nil {
		vm.logf("@", "%v pc=%v data=%v ret=%v", opcodeName[op], vm.pc, vm.data, vm.ret)
	}
	opcodeTable[op](vm)
}

func (vm *VM) loadProgByte() byte {
	if vm.pc >= vm.capacity {
		vm.haltf(progSmashedError(vm.pc))
		return byte(opExit)
	}
	b := vm.arena[vm.pc]
	vm.pc++
	return b
}

func (vm *VM) loadProgCell() Cell {
	v := vm.readCell(vm.pc)
	vm.pc += 4
	return v
}

func (vm *VM) loadProgAddr() Addr {
	a := vm.readAddr(vm.pc)
	vm.pc += 2
	return a
}

//// Control

func (vm *VM) opExit() {
	if len(vm.ret) == 0 {
		return
	}
	a := vm.ret[len(vm.ret)-1]
	vm.ret = vm.ret[:len(vm.ret)-1]
	vm.pc = Addr(a)
}

func (vm *VM) opLit() { vm.push(vm.loadProgCell()) }

func (vm *VM) opCall() {
	target := vm.loadProgAddr()
	vm.rpush(Cell(vm.pc))
	vm.pc = target
}

func (vm *VM) opBranch() { vm.pc = vm.loadProgAddr() }

func (vm *VM) opBranchIfZero() {
	target := vm.loadProgAddr()
	if vm.pop() == 0 {
		vm.pc = target
	}
}

//// Counted loop. DO pushes (limit, idx) onto a dedicated loop-control
// stack, kept separate from the call-return stack so a DO...LOOP inside a
// word body can't be mistaken for that word returning to its caller.
// LOOP increments idx and compares with the limit just below it; I peeks
// the index without popping.

func (vm *VM) opDo() {
	idx := vm.pop()
	limit := vm.pop()
	vm.loopPush(limit)
	vm.loopPush(idx)
}

func (vm *VM) loopPush(v Cell) {
	if len(vm.loop) >= cap(vm.loop) {
		return
	}
	vm.loop = append(vm.loop, v)
}

func (vm *VM) opLoop() {
	back := vm.loadProgAddr()
	if len(vm.loop) < 2 {
		return
	}
	top := len(vm.loop) - 1
	idx := vm.loop[top] + 1
	limit := vm.loop[top-1]
	if idx < limit {
		vm.loop[top] = idx
		vm.pc = back
		return
	}
	vm.loop = vm.loop[:top-1]
}

func (vm *VM) opI() {
	if len(vm.loop) == 0 {
		vm.push(0)
		return
	}
	vm.push(vm.loop[len(vm.loop)-1])
}

//// Data stack

func (vm *VM) push(v Cell) {
	if len(vm.data) >= cap(vm.data) {
		return
	}
	vm.data = append(vm.data, v)
}

func (vm *VM) pop() Cell {
	if len(vm.data) == 0 {
		return 0
	}
	v := vm.data[len(vm.data)-1]
	vm.data = vm.data[:len(vm.data)-1]
	return v
}

func (vm *VM) peek() Cell {
	if len(vm.data) == 0 {
		return 0
	}
	return vm.data[len(vm.data)-1]
}

func (vm *VM) opDup()  { vm.push(vm.peek()) }
func (vm *VM) opDrop() { vm.pop() }

func (vm *VM) opSwap() {
	b, a := vm.pop(), vm.pop()
	vm.push(b)
	vm.push(a)
}

func (vm *VM) opOver() {
	b, a := vm.pop(), vm.pop()
	vm.push(a)
	vm.push(b)
	vm.push(a)
}

func (vm *VM) opRot() {
	c, b, a := vm.pop(), vm.pop(), vm.pop()
	vm.push(b)
	vm.push(c)
	vm.push(a)
}

func (vm *VM) op2Dup() {
	b, a := vm.pop(), vm.pop()
	vm.push(a)
	vm.push(b)
	vm.push(a)
	vm.push(b)
}

func (vm *VM) op2Drop() { vm.pop(); vm.pop() }

func (vm *VM) opNip() {
	b, _ := vm.pop(), vm.pop()
	vm.push(b)
}

func (vm *VM) opTuck() {
	b, a := vm.pop(), vm.pop()
	vm.push(b)
	vm.push(a)
	vm.push(b)
}

func (vm *VM) opQDup() {
	if len(vm.data) == 0 {
		return
	}
	if a := vm.peek(); a != 0 {
		vm.push(a)
	}
}

//// Return stack

func (vm *VM) rpush(v Cell) {
	if len(vm.ret) >= cap(vm.ret) {
		return
	}
	vm.ret = append(vm.ret, v)
}

func (vm *VM) rpop() Cell {
	if len(vm.ret) == 0 {
		return 0
	}
	v := vm.ret[len(vm.ret)-1]
	vm.ret = vm.ret[:len(vm.ret)-1]
	return v
}

func (vm *VM) opToR()    { vm.rpush(vm.pop()) }
func (vm *VM) opRFrom()  { vm.push(vm.rpop()) }
func (vm *VM) opRFetch() { vm.push(vm.opRFetchVal()) }

func (vm *VM) opRFetchVal() Cell {
	if len(vm.ret) == 0 {
		return 0
	}
	return vm.ret[len(vm.ret)-1]
}

//// Arithmetic

func (vm *VM) opAdd() { b, a := vm.pop(), vm.pop(); vm.push(a + b) }
func (vm *VM) opSub() { b, a := vm.pop(), vm.pop(); vm.push(a - b) }
func (vm *VM) opMul() { b, a := vm.pop(), vm.pop(); vm.push(a * b) }

func (vm *VM) opDiv() {
	b, a := vm.pop(), vm.pop()
	if b == 0 {
		vm.push(0)
		return
	}
	vm.push(a / b)
}

func (vm *VM) opMod() {
	b, a := vm.pop(), vm.pop()
	if b == 0 {
		vm.push(0)
		return
	}
	vm.push(a % b)
}

func (vm *VM) opDivMod() {
	b, a := vm.pop(), vm.pop()
	if b == 0 {
		vm.push(0)
		vm.push(0)
		return
	}
	vm.push(a % b)
	vm.push(a / b)
}

func (vm *VM) opNegate() { vm.push(-vm.pop()) }
func (vm *VM) opAbs() {
	a := vm.pop()
	if a < 0 {
		a = -a
	}
	vm.push(a)
}

func (vm *VM) opMin() {
	b, a := vm.pop(), vm.pop()
	if a < b {
		vm.push(a)
	} else {
		vm.push(b)
	}
}

func (vm *VM) opMax() {
	b, a := vm.pop(), vm.pop()
	if a > b {
		vm.push(a)
	} else {
		vm.push(b)
	}
}

func (vm *VM) opIncr() { vm.push(vm.pop() + 1) }
func (vm *VM) opDecr() { vm.push(vm.pop() - 1) }

//// Bitwise

func (vm *VM) opAnd() { b, a := vm.pop(), vm.pop(); vm.push(a & b) }
func (vm *VM) opOr()  { b, a := vm.pop(), vm.pop(); vm.push(a | b) }
func (vm *VM) opXor() { b, a := vm.pop(), vm.pop(); vm.push(a ^ b) }
func (vm *VM) opNot() { vm.push(^vm.pop()) }

//// Comparison -- every opcode here yields exactly 0 or -1.

func (vm *VM) opLt() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a < b)) }
func (vm *VM) opGt() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a > b)) }
func (vm *VM) opEq() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a == b)) }
func (vm *VM) opLe() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a <= b)) }
func (vm *VM) opGe() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a >= b)) }
func (vm *VM) opNe() { b, a := vm.pop(), vm.pop(); vm.push(boolCell(a != b)) }

func (vm *VM) opZeroEq() { vm.push(boolCell(vm.pop() == 0)) }
func (vm *VM) opZeroLt() { vm.push(boolCell(vm.pop() < 0)) }
func (vm *VM) opZeroNe() { vm.push(boolCell(vm.pop() != 0)) }

//// Memory. Every opcode here validates its target against arena capacity
// before reading or writing: out-of-range reads yield 0, out-of-range
// writes are no-ops.

func (vm *VM) cellInRange(a Addr) bool { return uint32(a)+4 <= uint32(vm.capacity) }
func (vm *VM) byteInRange(a Addr) bool { return uint32(a) < uint32(vm.capacity) }

func (vm *VM) opLoad() {
	a := Addr(vm.pop())
	if !vm.cellInRange(a) {
		vm.push(0)
		return
	}
	vm.push(vm.readCell(a))
}

func (vm *VM) opStore() {
	a := Addr(vm.pop())
	v := vm.pop()
	if !vm.cellInRange(a) {
		return
	}
	vm.emitCellAt(a, v)
}

// emitCellAt stores v at a without touching here, for STORE/PLUSSTORE/
// VARIABLE initialization.
func (vm *VM) emitCellAt(a Addr, v Cell) {
	if !vm.cellInRange(a) {
		return
	}
	binary.LittleEndian.PutUint32(vm.arena[a:], uint32(v))
}

func (vm *VM) opLoadByte() {
	a := Addr(vm.pop())
	if !vm.byteInRange(a) {
		vm.push(0)
		return
	}
	vm.push(Cell(vm.arena[a]))
}

func (vm *VM) opStoreByte() {
	a := Addr(vm.pop())
	v := vm.pop()
	if !vm.byteInRange(a) {
		return
	}
	vm.arena[a] = byte(v)
}

func (vm *VM) opPlusStore() {
	a := Addr(vm.pop())
	n := vm.pop()
	if !vm.cellInRange(a) {
		return
	}
	vm.emitCellAt(a, vm.readCell(a)+n)
}

func (vm *VM) opAllot() { vm.allot(int(vm.pop())) }
func (vm *VM) opHere()  { vm.push(Cell(vm.here)) }

//// I/O -- routed through the VM's ioSurface.

func (vm *VM) opEmit() { vm.writeByte(byte(vm.pop())) }

func (vm *VM) opKey() {
	b, err := vm.readByte()
	if err != nil {
		vm.haltf(ioReadError(err))
		return
	}
	vm.push(Cell(b))
}

func (vm *VM) opCr() { vm.writeByte('\n') }

func (vm *VM) opType() {
	length := int(vm.pop())
	addr := Addr(vm.pop())
	if length <= 0 {
		return
	}
	end := int(addr) + length
	if end > int(vm.capacity) {
		end = int(vm.capacity)
	}
	if int(addr) >= end {
		return
	}
	vm.writeBytes(vm.arena[addr:end])
}

func (vm *VM) opDot() { vm.writeString(formatCell(vm.pop()) + " ") }

func (vm *VM) opDotS() {
	var sb []byte
	sb = append(sb, formatCell(Cell(len(vm.data)))...)
	for _, v := range vm.data {
		sb = append(sb, ' ')
		sb = append(sb, formatCell(v)...)
	}
	sb = append(sb, ' ')
	vm.writeBytes(sb)
}

func (vm *VM) opDepth() { vm.push(Cell(len(vm.data))) }
func (vm *VM) opClear() { vm.data = vm.data[:0] }

func (vm *VM) opWords() {
	for i := len(vm.words) - 1; i >= 0; i-- {
		vm.writeString(vm.words[i].name)
		vm.writeByte(' ')
	}
	vm.writeByte('\n')
}

func formatCell(v Cell) string { return strconv.Itoa(int(v)) }

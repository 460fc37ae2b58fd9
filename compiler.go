package main

// This file implements the compiler: the directive table, the
// compile-time control stack, and the forward/backward branch patching
// idiom for structured control flow -- reserve a placeholder address
// when a branch is compiled, patch it once the target address is known.

type ctrlKind byte

const (
	ctrlIf ctrlKind = iota
	ctrlElse
	ctrlDo
	ctrlBegin
	ctrlWhile
)

// ctrlEntry is one pending compile-time control-flow frame: the patch
// site or branch target, and a tag identifying which opener pushed it so
// a mismatched closer can be diagnosed instead of silently misapplied.
type ctrlEntry struct {
	kind ctrlKind
	addr Addr
}

func (vm *VM) ctrlPush(kind ctrlKind, addr Addr) bool {
	if len(vm.ctrl) >= cap(vm.ctrl) {
		return false
	}
	vm.ctrl = append(vm.ctrl, ctrlEntry{kind: kind, addr: addr})
	return true
}

func (vm *VM) ctrlPop() (ctrlEntry, bool) {
	if len(vm.ctrl) == 0 {
		return ctrlEntry{}, false
	}
	e := vm.ctrl[len(vm.ctrl)-1]
	vm.ctrl = vm.ctrl[:len(vm.ctrl)-1]
	return e, true
}

// directive is a word recognized by the compiler regardless of whether a
// definition is currently open: control-flow structure words, `:`/`;`,
// `."`, CONSTANT, and VARIABLE. Everything else is either compiled as a
// CALL (inside a definition) or executed immediately (outside one).
type directive func(vm *VM, t *tokenizer) error

var directives map[string]directive

func init() {
	directives = map[string]directive{
		":":        (*VM).compileColon,
		";":        (*VM).compileSemi,
		"IF":       (*VM).compileIf,
		"ELSE":     (*VM).compileElse,
		"THEN":     (*VM).compileThen,
		"DO":       (*VM).compileDo,
		"LOOP":     (*VM).compileLoop,
		"BEGIN":    (*VM).compileBegin,
		"WHILE":    (*VM).compileWhile,
		"REPEAT":   (*VM).compileRepeat,
		`."`:       (*VM).compileDotQuote,
		"CONSTANT": (*VM).compileConstant,
		"VARIABLE": (*VM).compileVariable,
	}
}

func (vm *VM) isDirective(tok string) (directive, bool) {
	d, ok := directives[tok]
	return d, ok
}

// compileToken handles one token once the outer interpreter has decided
// this line is in compiling territory: dispatch to a directive, else
// inline the I opcode for `I`, else compile a CALL to a known word, else
// compile a numeric literal, else report an unknown token.
func (vm *VM) compileToken(t *tokenizer, tok string) error {
	if d, ok := vm.isDirective(tok); ok {
		return d(vm, t)
	}
	if tok == "I" {
		if !vm.emitByte(byte(opI)) {
			return capacityExhaustedError("dictionary")
		}
		return nil
	}
	if w, ok := vm.lookup(tok); ok {
		if !vm.emitByte(byte(opCall)) || !vm.emitAddr(w.addr) {
			return capacityExhaustedError("dictionary")
		}
		return nil
	}
	if n, ok := parseNumber(tok); ok {
		if !vm.emitByte(byte(opLit)) || !vm.emitCell(n) {
			return capacityExhaustedError("dictionary")
		}
		return nil
	}
	return unknownTokenError(tok)
}

func parseNumber(tok string) (Cell, bool) {
	if tok == "" {
		return 0, false
	}
	neg := false
	i := 0
	if tok[0] == '-' || tok[0] == '+' {
		neg = tok[0] == '-'
		i = 1
	}
	if i >= len(tok) {
		return 0, false
	}
	var v int64
	for ; i < len(tok); i++ {
		c := tok[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return Cell(v), true
}

//// : name ... ;

func (vm *VM) compileColon(t *tokenizer) error {
	name, ok := t.next()
	if !ok {
		return badDirectiveError(":")
	}
	addr := vm.here
	if !vm.defineWord(name, addr) {
		return capacityExhaustedError("word table")
	}
	vm.compiling = true
	return nil
}

func (vm *VM) compileSemi(t *tokenizer) error {
	if !vm.compiling {
		return badDirectiveError(";")
	}
	if len(vm.ctrl) != 0 {
		vm.ctrl = vm.ctrl[:0]
	}
	if !vm.emitByte(byte(opExit)) {
		return capacityExhaustedError("dictionary")
	}
	vm.compiling = false
	return nil
}

//// IF ... ELSE ... THEN

func (vm *VM) compileIf(t *tokenizer) error {
	vm.emitByte(byte(opBranchIfZero))
	loc, ok := vm.reserveAddr()
	if !ok {
		return capacityExhaustedError("dictionary")
	}
	vm.ctrlPush(ctrlIf, loc)
	return nil
}

func (vm *VM) compileElse(t *tokenizer) error {
	e, ok := vm.ctrlPop()
	if !ok || e.kind != ctrlIf {
		return badDirectiveError("ELSE")
	}
	vm.emitByte(byte(opBranch))
	loc, ok := vm.reserveAddr()
	if !ok {
		return capacityExhaustedError("dictionary")
	}
	vm.patchAddr(e.addr, vm.here)
	vm.ctrlPush(ctrlElse, loc)
	return nil
}

func (vm *VM) compileThen(t *tokenizer) error {
	e, ok := vm.ctrlPop()
	if !ok || (e.kind != ctrlIf && e.kind != ctrlElse) {
		return badDirectiveError("THEN")
	}
	vm.patchAddr(e.addr, vm.here)
	return nil
}

//// DO ... LOOP

func (vm *VM) compileDo(t *tokenizer) error {
	if !vm.emitByte(byte(opDo)) {
		return capacityExhaustedError("dictionary")
	}
	vm.ctrlPush(ctrlDo, vm.here)
	return nil
}

func (vm *VM) compileLoop(t *tokenizer) error {
	e, ok := vm.ctrlPop()
	if !ok || e.kind != ctrlDo {
		return badDirectiveError("LOOP")
	}
	if !vm.emitByte(byte(opLoop)) || !vm.emitAddr(e.addr) {
		return capacityExhaustedError("dictionary")
	}
	return nil
}

//// BEGIN ... WHILE ... REPEAT

func (vm *VM) compileBegin(t *tokenizer) error {
	vm.ctrlPush(ctrlBegin, vm.here)
	return nil
}

func (vm *VM) compileWhile(t *tokenizer) error {
	e, ok := vm.ctrlPop()
	if !ok || e.kind != ctrlBegin {
		return badDirectiveError("WHILE")
	}
	vm.emitByte(byte(opBranchIfZero))
	loc, ok := vm.reserveAddr()
	if !ok {
		return capacityExhaustedError("dictionary")
	}
	vm.ctrlPush(ctrlBegin, e.addr)
	vm.ctrlPush(ctrlWhile, loc)
	return nil
}

func (vm *VM) compileRepeat(t *tokenizer) error {
	w, ok := vm.ctrlPop()
	if !ok || w.kind != ctrlWhile {
		return badDirectiveError("REPEAT")
	}
	b, ok := vm.ctrlPop()
	if !ok || b.kind != ctrlBegin {
		return badDirectiveError("REPEAT")
	}
	vm.emitByte(byte(opBranch))
	vm.emitAddr(b.addr)
	vm.patchAddr(w.addr, vm.here)
	return nil
}

//// ." string literal emission. When compiling, emits a BRANCH around the
// string's raw bytes (so they're never reached as opcodes), then LIT
// addr; LIT len; TYPE to print them at the use site. In immediate
// context the text is written straight to output and nothing is
// compiled.

func (vm *VM) compileDotQuote(t *tokenizer) error {
	s, ok := t.readStringLiteral()
	if !ok {
		return unterminatedStringError{}
	}
	if !vm.compiling {
		vm.writeBytes(s)
		return nil
	}
	if !vm.emitByte(byte(opBranch)) {
		return capacityExhaustedError("dictionary")
	}
	pskip, ok := vm.reserveAddr()
	if !ok {
		return capacityExhaustedError("dictionary")
	}
	strAddr := vm.here
	for _, b := range s {
		if !vm.emitByte(b) {
			return capacityExhaustedError("dictionary")
		}
	}
	vm.patchAddr(pskip, vm.here)
	if !vm.emitByte(byte(opLit)) || !vm.emitCell(Cell(strAddr)) ||
		!vm.emitByte(byte(opLit)) || !vm.emitCell(Cell(len(s))) ||
		!vm.emitByte(byte(opType)) {
		return capacityExhaustedError("dictionary")
	}
	return nil
}

//// CONSTANT / VARIABLE -- unconditionally-immediate directives: they
// define a new word and so behave the same whether or not a definition is
// currently open, exactly as `:` itself always opens one regardless of
// compiling state.

func (vm *VM) compileConstant(t *tokenizer) error {
	name, ok := t.next()
	if !ok {
		return badDirectiveError("CONSTANT")
	}
	v := vm.pop()
	addr := vm.here
	vm.emitByte(byte(opLit))
	vm.emitCell(v)
	vm.emitByte(byte(opExit))
	if !vm.defineWord(name, addr) {
		return capacityExhaustedError("word table")
	}
	return nil
}

func (vm *VM) compileVariable(t *tokenizer) error {
	name, ok := t.next()
	if !ok {
		return badDirectiveError("VARIABLE")
	}
	cellAddr := vm.here
	if !vm.emitCell(0) {
		return capacityExhaustedError("dictionary")
	}
	addr := vm.here
	vm.emitByte(byte(opLit))
	vm.emitCell(Cell(cellAddr))
	vm.emitByte(byte(opExit))
	if !vm.defineWord(name, addr) {
		return capacityExhaustedError("word table")
	}
	return nil
}

package main

import (
	"context"
	"strings"
)

// This file implements the outer interpreter: the line-driven loop that
// tokenizes one line, recognizes top-level-only directives (LOAD, SAVE,
// SAVEB, LOADB, SEE, LIST, BYE), and otherwise hands tokens to the
// compiler either to compile (inside a `:` definition) or to execute
// immediately. Read a line, tokenize it, react, repeat; a failure
// reported on one line never stops the loop from reading the next one.

// Run interprets input to exhaustion (EOF on every queued source), never
// returning on a per-line error: each line's failure is reported to
// errOut and the loop continues with the next line -- only the current
// line aborts. It returns a non-nil error only if flushing output fails
// or ctx is canceled (the CLI's -timeout flag); a read error ends input
// like EOF does.
func (vm *VM) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, loc, ok := vm.nextLine()
		if !ok {
			return vm.flushOutput()
		}
		if err := vm.interpretLine(line); err != nil {
			if _, isBye := err.(byeSignal); isBye {
				return vm.flushOutput()
			}
			vm.reportLineError(loc.Line, err)
		}
	}
}

type byeSignal struct{}

func (byeSignal) Error() string { return "bye" }

func (vm *VM) reportLineError(line int, err error) {
	he := &haltError{line: line, err: err}
	vm.writeErrString(he.Error() + "\n")
}

func (vm *VM) writeErrString(s string) {
	if vm.errOut == nil {
		return
	}
	vm.errOut.Write([]byte(s))
	vm.errOut.Flush()
}

// interpretLine tokenizes and processes exactly one line.
func (vm *VM) interpretLine(line []byte) error {
	vm.halted = nil
	t := newTokenizer(stripLineComment(line))
	for {
		tok, ok := t.next()
		if !ok {
			return nil
		}
		if err := vm.interpretToken(t, tok); err != nil {
			return err
		}
		if vm.halted != nil {
			err := vm.halted
			vm.halted = nil
			return err
		}
	}
}

// topLevelDirectives are recognized regardless of compiling state and
// never compiled into a word body -- they act on the VM itself (its
// image, its dictionary listing, its process lifetime) rather than being
// ordinary words.
var topLevelDirectives = map[string]func(vm *VM, t *tokenizer) error{
	"LOAD":  (*VM).doLoad,
	"SAVE":  (*VM).doSave,
	"SAVEB": (*VM).doSaveB,
	"LOADB": (*VM).doLoadB,
	"SEE":   (*VM).doSee,
	"LIST":  (*VM).doList,
	"BYE":   func(vm *VM, t *tokenizer) error { return byeSignal{} },
}

func (vm *VM) interpretToken(t *tokenizer, tok string) error {
	if fn, ok := topLevelDirectives[tok]; ok {
		return fn(vm, t)
	}
	if vm.compiling {
		return vm.compileToken(t, tok)
	}
	return vm.interpretImmediate(t, tok)
}

// interpretImmediate is compileToken's mirror for when no definition is
// open: directives still run at compile-time-ish semantics (IF/DO/... are
// meaningless outside a definition and are reported as misuse), known
// words execute at once, and literals push directly rather than compile.
func (vm *VM) interpretImmediate(t *tokenizer, tok string) error {
	if d, ok := vm.isDirective(tok); ok {
		if tok == ":" || tok == "CONSTANT" || tok == "VARIABLE" || tok == `."` {
			return d(vm, t)
		}
		return badDirectiveError(tok)
	}
	if w, ok := vm.lookup(tok); ok {
		vm.execute(w.addr)
		return nil
	}
	if n, ok := parseNumber(tok); ok {
		vm.push(n)
		return nil
	}
	return unknownTokenError(tok)
}

func (vm *VM) doLoad(t *tokenizer) error {
	path, ok := t.next()
	if !ok {
		return badDirectiveError("LOAD")
	}
	return vm.loadFile(strings.ToLower(path))
}

func (vm *VM) doSee(t *tokenizer) error {
	name, ok := t.next()
	if !ok {
		return badDirectiveError("SEE")
	}
	text, found := (vmDumper{vm: vm}).see(name)
	if !found {
		return unknownTokenError(name)
	}
	vm.writeString(text + "\n")
	return nil
}

func (vm *VM) doList(t *tokenizer) error {
	for _, text := range (vmDumper{vm: vm}).list() {
		vm.writeString(text + "\n")
	}
	return nil
}

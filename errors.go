package main

import "fmt"

// This file implements the error taxonomy as concrete named types, one
// small type per failure kind rather than fmt.Errorf strings everywhere --
// callers can errors.As a specific kind when they need to tell failures
// apart.

// capacityExhaustedError reports that an append-only structure (the
// dictionary arena or the word table) had no room left.
type capacityExhaustedError string

func (e capacityExhaustedError) Error() string {
	return fmt.Sprintf("capacity exhausted: %s", string(e))
}

// unknownTokenError reports a token that is neither a directive, a known
// word, nor a valid number literal.
type unknownTokenError string

func (e unknownTokenError) Error() string {
	return fmt.Sprintf("unknown word: %q", string(e))
}

// badDirectiveError reports a directive used outside the compile-time
// context it requires (e.g. ELSE with no open IF, ; outside a definition).
type badDirectiveError string

func (e badDirectiveError) Error() string {
	return fmt.Sprintf("%s used in invalid context", string(e))
}

// unterminatedStringError reports a ." with no closing quote on the line.
type unterminatedStringError struct{}

func (unterminatedStringError) Error() string { return `unterminated " string literal` }

// imageFormatError reports a LOADB image that fails the magic-byte or
// structural sanity check.
type imageFormatError string

func (e imageFormatError) Error() string {
	return fmt.Sprintf("bad image format: %s", string(e))
}

// ioError wraps a failure from the pluggable I/O surface.
type ioError struct{ err error }

func (e ioError) Error() string { return fmt.Sprintf("i/o error: %v", e.err) }
func (e ioError) Unwrap() error { return e.err }

func ioReadError(err error) error  { return ioError{err} }
func ioWriteError(err error) error { return ioError{err} }

// unknownOpcodeError reports an opcode byte with no entry in the dispatch
// table -- it can only happen by executing past the end of a well-formed
// program into garbage, or loading a corrupt image.
type unknownOpcodeError byte

func (e unknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode: 0x%02x", byte(e))
}

// progSmashedError reports the program counter running off the end of
// the arena -- a call or branch target beyond capacity.
type progSmashedError Addr

func (e progSmashedError) Error() string {
	return fmt.Sprintf("program counter out of range: %d", Addr(e))
}

// haltError records which line of input was being interpreted when
// something in the error taxonomy above stopped it. Only the current line
// aborts -- the VM and its dictionary survive to interpret the next one.
type haltError struct {
	line int
	err  error
}

func (e *haltError) Error() string {
	if e.line > 0 {
		return fmt.Sprintf("line %d: %v", e.line, e.err)
	}
	return e.err.Error()
}

func (e *haltError) Unwrap() error { return e.err }

// haltf records err as the reason the current line stopped, to be
// surfaced by the outer interpreter once step()/execute() return control.
func (vm *VM) haltf(err error) {
	if vm.halted == nil {
		vm.halted = err
	}
}

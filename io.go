package main

import (
	"io"
	"os"

	"github.com/nwidger/ftth/internal/fileinput"
	"github.com/nwidger/ftth/internal/flushio"
)

// This file implements the pluggable I/O surface: where EMIT/KEY/TYPE and
// the outer interpreter's line source go. Input is a queue of io.Readers
// so LOAD can add a file to it; output is composed from flush-aware writers so fanning out to more than
// one sink is just another option application.
type ioSurface struct {
	in     fileinput.Input
	out    flushio.WriteFlusher
	errOut flushio.WriteFlusher

	pending []byte // unread bytes of the current KEY line
}

func defaultStdout() flushio.WriteFlusher { return flushio.NewWriteFlusher(os.Stdout) }
func defaultStderr() flushio.WriteFlusher { return flushio.NewWriteFlusher(os.Stderr) }

func (vm *VM) writeByte(b byte) {
	if _, err := vm.out.Write([]byte{b}); err != nil {
		vm.haltf(ioWriteError(err))
	}
}

func (vm *VM) writeBytes(p []byte) {
	if _, err := vm.out.Write(p); err != nil {
		vm.haltf(ioWriteError(err))
	}
}

func (vm *VM) writeString(s string) {
	if _, err := io.WriteString(vm.out, s); err != nil {
		vm.haltf(ioWriteError(err))
	}
}

func (vm *VM) flushOutput() error {
	if vm.out == nil {
		return nil
	}
	return vm.out.Flush()
}

// readByte services the KEY opcode: one byte at a time out of the current
// input line, re-filling from the input queue as lines are exhausted. A
// line's trailing newline is surfaced as '\n'.
func (vm *VM) readByte() (byte, error) {
	for len(vm.pending) == 0 {
		line, _, ok := vm.in.NextLine()
		if !ok {
			return 0, io.EOF
		}
		vm.pending = append(append([]byte{}, line...), '\n')
	}
	b := vm.pending[0]
	vm.pending = vm.pending[1:]
	return b, nil
}

// nextLine reads one line for the outer interpreter to tokenize,
// bypassing the KEY byte queue -- LOAD and the REPL both want whole
// lines, not a byte at a time.
func (vm *VM) nextLine() ([]byte, fileinput.Location, bool) {
	if len(vm.pending) > 0 {
		// drain any bytes KEY had buffered before falling back to
		// whole-line reads, so the two consumers of vm.in never skip
		// or duplicate a byte of input.
		line := vm.pending
		vm.pending = nil
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		return line, vm.in.Last, true
	}
	return vm.in.NextLine()
}

// loadFile puts a file at the front of the input queue, ahead of any
// source not yet started; the source currently being read continues to
// EOF before the file's lines are read. The file is closed by VM.Close.
// Used by the LOAD directive.
func (vm *VM) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ioError{err}
	}
	vm.closers = append(vm.closers, f.Close)
	vm.in.Queue = append([]io.Reader{f}, vm.in.Queue...)
	return nil
}

//// VMOption wiring for the I/O surface.

type inputOption struct{ r io.Reader }

func (o inputOption) apply(vm *VM) { vm.in.Queue = append(vm.in.Queue, o.r) }

// WithInput appends r to the VM's input queue, to be read once every
// previously queued source (if any) reaches EOF.
func WithInput(r io.Reader) VMOption { return inputOption{r} }

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

// WithNamedInput is like WithInput, but gives the source an explicit name
// for Location reporting instead of inferring one from r's type.
func WithNamedInput(name string, r io.Reader) VMOption {
	return inputOption{namedReader{r, name}}
}

type outputOption struct{ w io.Writer }

func (o outputOption) apply(vm *VM) {
	wf := flushio.NewWriteFlusher(o.w)
	if vm.out == nil {
		vm.out = wf
	} else {
		vm.out = flushio.WriteFlushers(vm.out, wf)
	}
}

// WithOutput directs VM output to w, in addition to any previously
// configured output (WithOutput may be given multiple times to fan out).
func WithOutput(w io.Writer) VMOption { return outputOption{w} }

// WithTee is an alias for WithOutput read as "also write to w" -- kept as
// a distinct name because a second WithOutput call reads, at a glance,
// like it replaces the first rather than adding to it.
func WithTee(w io.Writer) VMOption { return outputOption{w} }

type errOutputOption struct{ w io.Writer }

func (o errOutputOption) apply(vm *VM) { vm.errOut = flushio.NewWriteFlusher(o.w) }

// WithErrOutput directs per-line error reports -- "report and continue
// with the next line" -- to w instead of the default os.Stderr.
func WithErrOutput(w io.Writer) VMOption { return errOutputOption{w} }


// Package fileinput implements a queue of line-oriented input sources,
// read one after another, each to EOF, so a running interpreter can add
// a file (LOAD) to its input.
package fileinput

import (
	"bufio"
	"fmt"
	"io"
)

// Location names a line within a named input source.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Input reads lines sequentially across a Queue of io.Readers: each is
// drained to EOF (tracked by a bufio.Scanner) before the next is opened.
// A reader added to the Queue mid-stream is not read until the source
// currently open has reached EOF.
type Input struct {
	Queue []io.Reader
	Last  Location

	cur  *bufio.Scanner
	name string
	line int
}

// NextLine returns the next line of input (without its trailing newline),
// advancing across queued sources on EOF. ok is false once every source
// in the queue is exhausted.
func (in *Input) NextLine() (line []byte, loc Location, ok bool) {
	for {
		if in.cur == nil && !in.nextSource() {
			return nil, Location{}, false
		}
		if in.cur.Scan() {
			in.line++
			in.Last = Location{Name: in.name, Line: in.line}
			return in.cur.Bytes(), in.Last, true
		}
		in.cur = nil
	}
}

func (in *Input) nextSource() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.cur = bufio.NewScanner(r)
	in.cur.Buffer(make([]byte, 0, 4096), 64*1024)
	in.name = nameOf(r)
	in.line = 0
	return true
}

// Push queues an additional input source to be read once the current one
// (and anything already queued) is exhausted.
func (in *Input) Push(r io.Reader) {
	in.Queue = append(in.Queue, r)
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

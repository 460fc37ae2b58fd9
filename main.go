// Command ftth runs the FTTH interpreter: a small stack-oriented
// concatenative language in the Forth family. It reads source from the
// files named on the command line (or standard input, if none are
// given), interpreting one line at a time until BYE, EOF, or -timeout
// elapses.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nwidger/ftth/internal/logio"
	"github.com/nwidger/ftth/internal/panicerr"
)

func main() {
	var (
		arenaCap int
		timeout  time.Duration
		trace    bool
		dump     bool
	)
	flag.IntVar(&arenaCap, "arena", DefaultArenaCapacity, "dictionary arena size in bytes")
	flag.DurationVar(&timeout, "timeout", 0, "abort after the given duration")
	flag.BoolVar(&trace, "trace", false, "log one line per dispatched opcode to stderr")
	flag.BoolVar(&dump, "dump", false, "print a VM state dump after execution")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	opts := []VMOption{
		WithArenaCapacity(arenaCap),
		WithOutput(os.Stdout),
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	args := flag.Args()
	if len(args) == 0 {
		opts = append(opts, WithInput(os.Stdin))
	} else {
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				log.Errorf("%v", err)
				return
			}
			defer f.Close()
			opts = append(opts, WithNamedInput(path, bufio.NewReader(f)))
		}
	}

	vm := New(opts...)
	defer vm.Close()

	if dump {
		lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
		defer lw.Close()
		defer vmDumper{vm: vm, out: lw}.dump()
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// The VM run is given a cancellation scope via errgroup rather than a
	// hand-rolled channel, so -timeout and future concurrent goroutines
	// share one shutdown path. panicerr.Recover isolates a bug in opcode
	// dispatch (an out-of-bounds slice access slipping past the bounds
	// checks, say) into a reported error instead of crashing the process.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return panicerr.Recover("vm", func() error {
			return vm.Run(gctx)
		})
	})
	if err := g.Wait(); err != nil && panicerr.IsPanic(err) {
		log.Errorf("%+v", err)
	} else {
		log.ErrorIf(err)
	}
}

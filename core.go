package main

// logging is embedded in VM and gives it an optional leveled trace sink,
// used by step() to print one line per dispatched opcode when enabled.
type logging struct {
	logfn func(format string, args ...interface{})
}

func (l *logging) logf(mark, format string, args ...interface{}) {
	if l.logfn == nil {
		return
	}
	l.logfn(mark+" "+format, args...)
}

// WithLogf installs a trace sink; every opcode VM.step dispatches is
// reported through it as one formatted line. Typically wired to
// internal/logio.Logger.Leveledf("TRACE") by the CLI's -trace flag.
func WithLogf(fn func(format string, args ...interface{})) VMOption {
	return logfOption{fn}
}

type logfOption struct {
	fn func(format string, args ...interface{})
}

func (o logfOption) apply(vm *VM) { vm.logfn = o.fn }

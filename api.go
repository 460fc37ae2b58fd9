package main

// This file implements the configuration surface: VMOption functional
// options layered over the defaults New applies before installing the
// builtin words.

type capacityOption struct{ n int }

func (o capacityOption) apply(vm *VM) { vm.capacity = Addr(o.n) }

// WithArenaCapacity overrides the dictionary arena's size in bytes.
func WithArenaCapacity(n int) VMOption { return capacityOption{n} }

type maxWordsOption struct{ n int }

func (o maxWordsOption) apply(vm *VM) { vm.maxWords = o.n }

// WithMaxWords bounds the word table independent of arena capacity.
func WithMaxWords(n int) VMOption { return maxWordsOption{n} }

type dataDepthOption struct{ n int }

func (o dataDepthOption) apply(vm *VM) { vm.data = make([]Cell, 0, o.n) }

// WithDataStackDepth overrides the data stack's capacity.
func WithDataStackDepth(n int) VMOption { return dataDepthOption{n} }

type retDepthOption struct{ n int }

func (o retDepthOption) apply(vm *VM) {
	vm.ret = make([]Cell, 0, o.n)
	vm.loop = make([]Cell, 0, o.n)
}

// WithReturnStackDepth overrides the return and loop-control stacks'
// shared capacity.
func WithReturnStackDepth(n int) VMOption { return retDepthOption{n} }

type ctrlDepthOption struct{ n int }

func (o ctrlDepthOption) apply(vm *VM) { vm.ctrl = make([]ctrlEntry, 0, o.n) }

// WithControlStackDepth overrides the compile-time control stack's
// capacity, i.e. how deeply IF/DO/BEGIN structures may nest in one
// definition.
func WithControlStackDepth(n int) VMOption { return ctrlDepthOption{n} }

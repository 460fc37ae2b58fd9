package main

import "testing"

func TestStackUnderflowYieldsZero(t *testing.T) {
	vm := New()
	if got := vm.pop(); got != 0 {
		t.Fatalf("pop on empty stack = %v, want 0", got)
	}
}

func TestStackOverflowDropsPush(t *testing.T) {
	vm := New(WithDataStackDepth(2))
	vm.push(1)
	vm.push(2)
	vm.push(3) // should be silently dropped
	if len(vm.data) != 2 {
		t.Fatalf("data stack length = %v, want 2", len(vm.data))
	}
	if vm.data[1] != 2 {
		t.Fatalf("data stack top = %v, want 2", vm.data[1])
	}
}

func TestDivisionByZeroPushesZero(t *testing.T) {
	vm := New()
	vm.push(5)
	vm.push(0)
	vm.opDiv()
	if got := vm.pop(); got != 0 {
		t.Fatalf("5/0 = %v, want 0", got)
	}
}

func TestModByZeroPushesZero(t *testing.T) {
	vm := New()
	vm.push(5)
	vm.push(0)
	vm.opMod()
	if got := vm.pop(); got != 0 {
		t.Fatalf("5 mod 0 = %v, want 0", got)
	}
}

func TestComparisonOpsYieldCanonicalBooleans(t *testing.T) {
	vm := New()
	vm.push(1)
	vm.push(2)
	vm.opLt()
	if got := vm.pop(); got != trueCell {
		t.Fatalf("1 < 2 = %v, want %v", got, trueCell)
	}
	vm.push(2)
	vm.push(1)
	vm.opLt()
	if got := vm.pop(); got != falseCell {
		t.Fatalf("2 < 1 = %v, want %v", got, falseCell)
	}
}

func TestOutOfRangeMemoryOps(t *testing.T) {
	vm := New(WithArenaCapacity(16))
	vm.push(1000)
	vm.opLoad()
	if got := vm.pop(); got != 0 {
		t.Fatalf("out of range @ = %v, want 0", got)
	}

	vm.push(42)
	vm.push(1000)
	vm.opStore() // must not panic or corrupt memory
}

func TestExitOpcodeIsZeroSoUnwrittenArenaIsSafe(t *testing.T) {
	if opExit != 0 {
		t.Fatalf("opExit = %v, want 0", opExit)
	}
	vm := New(WithArenaCapacity(256))
	// an address nothing has ever written decodes as EXIT and returns
	// immediately without running off into garbage.
	vm.execute(vm.here)
	if vm.halted != nil {
		t.Fatalf("executing unwritten arena halted: %v", vm.halted)
	}
}

func TestDoLoopUsesSeparateStackFromCallReturns(t *testing.T) {
	vm := New()
	// A DO...LOOP inside a CALLed word must not be mistaken for that
	// word returning to its caller: loop bookkeeping and call-return
	// addresses live on separate stacks.
	loopWord := vm.here
	vm.emitByte(byte(opDo))
	body := vm.here
	vm.emitByte(byte(opI))
	vm.emitByte(byte(opLoop))
	vm.emitAddr(body)
	vm.emitByte(byte(opExit))

	caller := vm.here
	vm.emitByte(byte(opCall))
	vm.emitAddr(loopWord)
	vm.emitByte(byte(opExit))

	vm.push(3)
	vm.push(0)
	vm.execute(caller)
	if len(vm.ret) != 0 {
		t.Fatalf("ret stack leaked loop state: %v", vm.ret)
	}
	if len(vm.loop) != 0 {
		t.Fatalf("loop stack not unwound: %v", vm.loop)
	}
	if got := len(vm.data); got != 3 {
		t.Fatalf("expected 3 pushed indices, got %v: %v", got, vm.data)
	}
}

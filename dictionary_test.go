package main

import "testing"

func TestEmitAndReadRoundTrip(t *testing.T) {
	vm := New(WithArenaCapacity(256))
	start := vm.here
	if !vm.emitCell(-7) {
		t.Fatal("emitCell failed")
	}
	if got := vm.readCell(start); got != -7 {
		t.Fatalf("readCell = %v, want -7", got)
	}

	addrLoc := vm.here
	if !vm.emitAddr(42) {
		t.Fatal("emitAddr failed")
	}
	if got := vm.readAddr(addrLoc); got != 42 {
		t.Fatalf("readAddr = %v, want 42", got)
	}
}

func TestReserveAndPatchAddr(t *testing.T) {
	vm := New(WithArenaCapacity(256))
	loc, ok := vm.reserveAddr()
	if !ok {
		t.Fatal("reserveAddr failed")
	}
	vm.patchAddr(loc, 99)
	if got := vm.readAddr(loc); got != 99 {
		t.Fatalf("patched addr = %v, want 99", got)
	}
}

func TestOutOfRangeReadsYieldZero(t *testing.T) {
	vm := New(WithArenaCapacity(16))
	if got := vm.readCell(1000); got != 0 {
		t.Fatalf("out of range readCell = %v, want 0", got)
	}
	if got := vm.readAddr(1000); got != 0 {
		t.Fatalf("out of range readAddr = %v, want 0", got)
	}
}

func TestAllotNegativeIsNoOp(t *testing.T) {
	vm := New(WithArenaCapacity(64))
	before := vm.here
	if !vm.allot(-5) {
		t.Fatal("allot with negative n should report ok")
	}
	if vm.here != before {
		t.Fatalf("here moved on negative allot: %v -> %v", before, vm.here)
	}
}

func TestWordLookupNewestFirst(t *testing.T) {
	vm := New(WithArenaCapacity(64))
	vm.defineWord("FOO", 10)
	vm.defineWord("FOO", 20)
	w, ok := vm.lookup("foo")
	if !ok || w.addr != 20 {
		t.Fatalf("lookup did not shadow: %+v ok=%v", w, ok)
	}
}

func TestNameTruncation(t *testing.T) {
	long := "abcdefghijklmnopqrstuvwxyz"
	got := truncateName(long)
	if len(got) != maxNameLen {
		t.Fatalf("truncateName length = %v, want %v", len(got), maxNameLen)
	}
}

func TestDefineWordRespectsMaxWords(t *testing.T) {
	builtinCount := len(New().words)
	vm := New(WithMaxWords(builtinCount + 1))
	if !vm.defineWord("ONE", 0) {
		t.Fatal("defineWord should succeed under maxWords")
	}
	n := len(vm.words)
	if vm.defineWord("TWO", 0) {
		t.Fatal("defineWord should fail once maxWords is reached")
	}
	if len(vm.words) != n {
		t.Fatalf("word table grew past maxWords: %v -> %v", n, len(vm.words))
	}
}

package main

import (
	"encoding/binary"
	"strings"
)

// This file implements the dictionary arena and the word table. The
// arena is an append-only byte buffer; `here` only ever advances.
// encoding/binary.LittleEndian does the fixed-width codec work for cell
// and address operands.

// emitByte appends one byte to the arena, advancing here. It reports
// whether there was room.
func (vm *VM) emitByte(b byte) bool {
	if vm.here >= vm.capacity {
		return false
	}
	vm.arena[vm.here] = b
	vm.here++
	return true
}

// emitCell appends a little-endian 4-byte Cell literal.
func (vm *VM) emitCell(v Cell) bool {
	if uint32(vm.here)+4 > uint32(vm.capacity) {
		return false
	}
	binary.LittleEndian.PutUint32(vm.arena[vm.here:], uint32(v))
	vm.here += 4
	return true
}

// emitAddr appends a little-endian 2-byte Addr operand.
func (vm *VM) emitAddr(a Addr) bool {
	if uint32(vm.here)+2 > uint32(vm.capacity) {
		return false
	}
	binary.LittleEndian.PutUint16(vm.arena[vm.here:], uint16(a))
	vm.here += 2
	return true
}

// reserveAddr emits a two-byte placeholder and returns its location for a
// later patchAddr call -- the classic "know where to write before you know
// what to write" forward-branch pattern.
func (vm *VM) reserveAddr() (Addr, bool) {
	loc := vm.here
	if !vm.emitAddr(0) {
		return 0, false
	}
	return loc, true
}

// patchAddr overwrites the two placeholder bytes at location with target.
// Callers guarantee those bytes were previously reserved.
func (vm *VM) patchAddr(location, target Addr) {
	binary.LittleEndian.PutUint16(vm.arena[location:], uint16(target))
}

// readCell reads a little-endian 4-byte Cell at pc. Out-of-range reads
// yield 0 rather than faulting -- the inner interpreter's bounds policy
// applies here too.
func (vm *VM) readCell(pc Addr) Cell {
	if uint32(pc)+4 > uint32(vm.capacity) {
		return 0
	}
	return Cell(binary.LittleEndian.Uint32(vm.arena[pc:]))
}

// readAddr reads a little-endian 2-byte Addr at pc.
func (vm *VM) readAddr(pc Addr) Addr {
	if uint32(pc)+2 > uint32(vm.capacity) {
		return 0
	}
	return Addr(binary.LittleEndian.Uint16(vm.arena[pc:]))
}

// allot advances here by n bytes if there is room, zeroing nothing
// explicitly since the backing array starts zero-filled and here only
// advances monotonically (nothing beyond here has ever been written).
// n <= 0 is a silent no-op rather than retracting here.
func (vm *VM) allot(n int) bool {
	if n <= 0 {
		return true
	}
	if uint32(vm.here)+uint32(n) > uint32(vm.capacity) {
		return false
	}
	vm.here += Addr(n)
	return true
}

// truncateName upper-cases and truncates a name to maxNameLen bytes,
// exactly as the tokenizer truncates tokens, so lookup and definition agree.
func truncateName(s string) string {
	s = strings.ToUpper(s)
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return s
}

// defineWord appends a new word-table entry. Lookup scans newest-first, so
// a redefinition simply shadows rather than replacing; nothing needs to be
// unlinked.
func (vm *VM) defineWord(name string, addr Addr) bool {
	if len(vm.words) >= vm.maxWords {
		return false
	}
	vm.words = append(vm.words, wordEntry{name: truncateName(name), addr: addr})
	return true
}

// lookup searches the word table newest-first for a case-folded match,
// so later definitions shadow earlier ones of the same name.
func (vm *VM) lookup(name string) (wordEntry, bool) {
	name = truncateName(name)
	for i := len(vm.words) - 1; i >= 0; i-- {
		if vm.words[i].name == name {
			return vm.words[i], true
		}
	}
	return wordEntry{}, false
}

// wordByAddr finds a word whose body starts exactly at addr, for use by
// the decompiler's reverse lookup. When multiple words share an address
// (redefinitions can), any match is acceptable -- only the chosen name
// needs to round-trip executably, not textually.
func (vm *VM) wordByAddr(addr Addr) (wordEntry, bool) {
	for i := len(vm.words) - 1; i >= 0; i-- {
		if vm.words[i].addr == addr {
			return vm.words[i], true
		}
	}
	return wordEntry{}, false
}

package main

import (
	"encoding/binary"
	"io"
	"os"
)

// This file implements the image serializer: a fixed binary layout of
// magic bytes, version, here, word and builtin counts, then the arena
// and the full word table (builtins included, so builtin_count on load
// tells the reader where the persisted builtin split was rather than
// relying on the loading VM's own installBuiltins to reconstruct it).
// The textual SAVE decompiler reuses vmDumper (dumper.go), and is
// documented as lossy for REPEAT's unconditional back branch -- see
// DESIGN.md.

// imageMagic is written literally as the four ASCII bytes "FTTH", not as
// a little-endian encoding of a 0x46545448 word -- the latter would write
// "HTTF" on disk, which contradicts the format's own name.
var imageMagic = [4]byte{'F', 'T', 'T', 'H'}

const imageVersion = 1

const entrySize = 20 // 16 name + 2 addr + 1 flags + 1 pad, see DESIGN.md

const imageHeaderSize = 16 // magic(4) + version(2) + here(2) + word_count(4) + builtin_count(4)

func (vm *VM) doSaveB(t *tokenizer) error {
	path, ok := t.next()
	if !ok {
		return badDirectiveError("SAVEB")
	}
	f, err := os.Create(path)
	if err != nil {
		return ioError{err}
	}
	defer f.Close()
	return vm.writeImage(f)
}

func (vm *VM) doLoadB(t *tokenizer) error {
	path, ok := t.next()
	if !ok {
		return badDirectiveError("LOADB")
	}
	f, err := os.Open(path)
	if err != nil {
		return ioError{err}
	}
	defer f.Close()
	return vm.readImage(f)
}

func (vm *VM) writeImage(w io.Writer) error {
	buf := make([]byte, 0, imageHeaderSize)
	buf = append(buf, imageMagic[:]...)
	buf = appendUint16(buf, imageVersion)
	buf = appendUint16(buf, uint16(vm.here))
	buf = appendUint32(buf, uint32(len(vm.words)))
	buf = appendUint32(buf, uint32(vm.builtinCount))
	if _, err := w.Write(buf); err != nil {
		return ioError{err}
	}
	if _, err := w.Write(vm.arena[:vm.here]); err != nil {
		return ioError{err}
	}
	entry := make([]byte, entrySize)
	for _, word := range vm.words {
		for j := range entry {
			entry[j] = 0
		}
		copy(entry[:16], word.name)
		binary.LittleEndian.PutUint16(entry[16:18], uint16(word.addr))
		entry[18] = word.flags
		if _, err := w.Write(entry); err != nil {
			return ioError{err}
		}
	}
	return nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (vm *VM) readImage(r io.Reader) error {
	header := make([]byte, imageHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return ioError{err}
	}
	if string(header[:4]) != string(imageMagic[:]) {
		return imageFormatError("bad magic")
	}
	version := binary.LittleEndian.Uint16(header[4:6])
	if version != imageVersion {
		return imageFormatError("unsupported version")
	}
	here := binary.LittleEndian.Uint16(header[6:8])
	wordCount := binary.LittleEndian.Uint32(header[8:12])
	builtinCount := binary.LittleEndian.Uint32(header[12:16])
	if int(here) > len(vm.arena) {
		return imageFormatError("here out of range")
	}
	if int(wordCount) > vm.maxWords || builtinCount > wordCount {
		return imageFormatError("word_count/builtin_count out of range")
	}

	body := make([]byte, here)
	if _, err := io.ReadFull(r, body); err != nil {
		return ioError{err}
	}

	entries := make([]wordEntry, 0, wordCount)
	entry := make([]byte, entrySize)
	for i := uint32(0); i < wordCount; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return ioError{err}
		}
		end := 0
		for end < 16 && entry[end] != 0 {
			end++
		}
		entries = append(entries, wordEntry{
			name:  string(entry[:end]),
			addr:  Addr(binary.LittleEndian.Uint16(entry[16:18])),
			flags: entry[18],
		})
	}

	for i := range vm.arena {
		vm.arena[i] = 0
	}
	copy(vm.arena, body)
	vm.here = Addr(here)
	vm.words = entries
	vm.builtinCount = int(builtinCount)
	vm.data = vm.data[:0]
	vm.ret = vm.ret[:0]
	vm.loop = vm.loop[:0]
	vm.ctrl = vm.ctrl[:0]
	vm.compiling = false
	return nil
}

// doSave writes a textual decompilation of every user-defined word to
// path, via vmDumper -- documented as lossy for REPEAT (see DESIGN.md)
// rather than a faithful image round-trip; LOADB/SAVEB are what
// round-trip exactly.
func (vm *VM) doSave(t *tokenizer) error {
	path, ok := t.next()
	if !ok {
		return badDirectiveError("SAVE")
	}
	f, err := os.Create(path)
	if err != nil {
		return ioError{err}
	}
	defer f.Close()
	for _, text := range (vmDumper{vm: vm}).list() {
		if _, err := f.WriteString(text + "\n"); err != nil {
			return ioError{err}
		}
	}
	return nil
}

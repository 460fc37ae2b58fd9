package main

import (
	"fmt"
	"io"
	"strconv"
)

// This file implements the decompiler behind SEE/LIST/SAVE and the
// diagnostic dump behind -dump: reverse-lookup a CALL target back into
// the word whose body starts there, and share that per-word formatting
// across all three callers.

type vmDumper struct {
	vm  *VM
	out io.Writer
}

// dump writes a diagnostic snapshot: here, the data, return and loop
// stacks, and the user-defined words (newest first).
func (d vmDumper) dump() {
	fmt.Fprintf(d.out, "# VM Dump\n")
	fmt.Fprintf(d.out, "  here: %v / %v\n", d.vm.here, d.vm.capacity)
	fmt.Fprintf(d.out, "  data: %v\n", d.vm.data)
	fmt.Fprintf(d.out, "  ret: %v\n", d.vm.ret)
	fmt.Fprintf(d.out, "  loop: %v\n", d.vm.loop)
	fmt.Fprintf(d.out, "  words:\n")
	for i := len(d.vm.words) - 1; i >= d.vm.builtinCount; i-- {
		fmt.Fprintf(d.out, "    %v\n", d.formatWord(d.vm.words[i]))
	}
}

// formatWord decompiles one word's body: ": NAME code code code ;".
func (d vmDumper) formatWord(w wordEntry) string {
	s := ": " + w.name
	addr := w.addr
	for addr < d.vm.capacity {
		frag, next, isExit := d.formatCode(addr)
		if isExit {
			break
		}
		s += " " + frag
		if next <= addr {
			break
		}
		addr = next
	}
	return s + " ;"
}

// formatCode decodes the opcode at addr into its surface text, returning
// the address immediately after it and whether it was EXIT (so
// formatWord knows to stop).
func (d vmDumper) formatCode(addr Addr) (text string, next Addr, isExit bool) {
	op := opcode(d.vm.arena[addr])
	addr++
	switch op {
	case opExit:
		return ";", addr, true
	case opLit:
		v := d.vm.readCell(addr)
		return strconv.Itoa(int(v)), addr + 4, false
	case opCall:
		target := d.vm.readAddr(addr)
		addr += 2
		if w, ok := d.vm.wordByAddr(target); ok {
			return w.name, addr, false
		}
		return fmt.Sprintf("CALL(%v)", target), addr, false
	case opBranch:
		target := d.vm.readAddr(addr)
		textAddr := addr + 2
		if text, next, ok := d.recognizeDotQuote(textAddr, target); ok {
			return `."` + " " + text + `"`, next, false
		}
		// REPEAT's unconditional backward branch is indistinguishable
		// from ELSE's forward one once compiled; documented limitation,
		// see DESIGN.md.
		return fmt.Sprintf("ELSE(->%v)", target), textAddr, false
	case opBranchIfZero:
		target := d.vm.readAddr(addr)
		addr += 2
		return fmt.Sprintf("IF(->%v)", target), addr, false
	case opDo:
		return "DO", addr, false
	case opLoop:
		target := d.vm.readAddr(addr)
		addr += 2
		return fmt.Sprintf("LOOP(->%v)", target), addr, false
	default:
		if name := opcodeName[op]; name != "" {
			return name, addr, false
		}
		return fmt.Sprintf("0x%02x", byte(op)), addr, false
	}
}

// recognizeDotQuote checks whether the bytes at [textAddr, afterText)
// match ." ..."'s compiled pattern exactly -- LIT textAddr; LIT len;
// TYPE immediately following the skipped text -- and if so returns the
// literal text and the address past the TYPE opcode.
func (d vmDumper) recognizeDotQuote(textAddr, afterText Addr) (text string, next Addr, ok bool) {
	if afterText < textAddr || afterText > d.vm.capacity {
		return "", 0, false
	}
	p := afterText
	if p >= d.vm.capacity || opcode(d.vm.arena[p]) != opLit {
		return "", 0, false
	}
	p++
	strAddr := d.vm.readCell(p)
	p += 4
	if p > d.vm.capacity || strAddr != Cell(textAddr) {
		return "", 0, false
	}
	if p >= d.vm.capacity || opcode(d.vm.arena[p]) != opLit {
		return "", 0, false
	}
	p++
	length := d.vm.readCell(p)
	p += 4
	if p > d.vm.capacity || length < 0 || textAddr+Addr(length) != afterText {
		return "", 0, false
	}
	if p >= d.vm.capacity || opcode(d.vm.arena[p]) != opType {
		return "", 0, false
	}
	return string(d.vm.arena[textAddr:afterText]), p + 1, true
}

// see decompiles a single user word, the SEE directive's job.
func (d vmDumper) see(name string) (string, bool) {
	w, ok := d.vm.lookup(name)
	if !ok {
		return "", false
	}
	return d.formatWord(w), true
}

// list decompiles every word defined after the builtin split, oldest
// first, the LIST directive's job.
func (d vmDumper) list() []string {
	var out []string
	for i := d.vm.builtinCount; i < len(d.vm.words); i++ {
		out = append(out, d.formatWord(d.vm.words[i]))
	}
	return out
}

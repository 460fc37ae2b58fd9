package main

import (
	"bytes"
	"testing"
)

func TestImageRoundTrip(t *testing.T) {
	vm := New(WithArenaCapacity(512))
	if err := vm.compileColon(&tokenizer{line: []byte("SQUARE")}); err != nil {
		t.Fatal(err)
	}
	vm.compiling = true
	tok := newTokenizer([]byte("DUP *"))
	for {
		s, ok := tok.next()
		if !ok {
			break
		}
		if err := vm.compileToken(tok, s); err != nil {
			t.Fatal(err)
		}
	}
	if err := vm.compileSemi(tok); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := vm.writeImage(&buf); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	if !bytes.Equal(data[:4], imageMagic[:]) {
		t.Fatalf("image magic = %q, want %q", data[:4], imageMagic[:])
	}

	vm2 := New(WithArenaCapacity(512))
	if err := vm2.readImage(bytes.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	w, ok := vm2.lookup("SQUARE")
	if !ok {
		t.Fatal("SQUARE missing after image load")
	}
	vm2.push(6)
	vm2.execute(w.addr)
	if got := vm2.pop(); got != 36 {
		t.Fatalf("SQUARE(6) after reload = %v, want 36", got)
	}
}

func TestLoadImageRejectsBadMagic(t *testing.T) {
	vm := New()
	err := vm.readImage(bytes.NewReader([]byte("NOTFTTHIMAGEDATA...")))
	if err == nil {
		t.Fatal("expected an imageFormatError for bad magic")
	}
	if _, ok := err.(imageFormatError); !ok {
		t.Fatalf("got %T, want imageFormatError", err)
	}
}

func TestLoadImageRejectsBadVersion(t *testing.T) {
	vm := New()
	var buf bytes.Buffer
	if err := vm.writeImage(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	data[4] = 0xff // corrupt the version field
	err := vm.readImage(bytes.NewReader(data))
	if _, ok := err.(imageFormatError); !ok {
		t.Fatalf("got %v (%T), want imageFormatError", err, err)
	}
}

func TestImageRoundTripPreservesBuiltinSplit(t *testing.T) {
	vm := New()
	wantBuiltins := vm.builtinCount
	wantWords := len(vm.words)

	var buf bytes.Buffer
	if err := vm.writeImage(&buf); err != nil {
		t.Fatal(err)
	}

	vm2 := New()
	if err := vm2.readImage(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatal(err)
	}
	if vm2.builtinCount != wantBuiltins {
		t.Fatalf("builtinCount after reload = %v, want %v", vm2.builtinCount, wantBuiltins)
	}
	if len(vm2.words) != wantWords {
		t.Fatalf("word count after reload = %v, want %v", len(vm2.words), wantWords)
	}
	if _, ok := vm2.lookup("DUP"); !ok {
		t.Fatal("builtin word DUP missing after image load")
	}
}

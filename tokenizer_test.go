package main

import "testing"

func TestStripLineComment(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1 2 + \\ add them", "1 2 + "},
		{"1 2 +", "1 2 +"},
		{"\\ whole line comment", ""},
	}
	for _, c := range cases {
		got := string(stripLineComment([]byte(c.in)))
		if got != c.want {
			t.Errorf("stripLineComment(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTokenizerNext(t *testing.T) {
	tok := newTokenizer([]byte("  dup   swap drop"))
	var got []string
	for {
		s, ok := tok.next()
		if !ok {
			break
		}
		got = append(got, s)
	}
	want := []string{"DUP", "SWAP", "DROP"}
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizerSkipsParenComments(t *testing.T) {
	tok := newTokenizer([]byte("DUP ( a comment with ) words ) SWAP"))
	var got []string
	for {
		s, ok := tok.next()
		if !ok {
			break
		}
		got = append(got, s)
	}
	want := []string{"DUP", "WORDS", ")", "SWAP"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizerUnterminatedParenCommentConsumesToEndOfLine(t *testing.T) {
	tok := newTokenizer([]byte("DUP ( unterminated comment"))
	s, ok := tok.next()
	if !ok || s != "DUP" {
		t.Fatalf("first token = %q, %v, want DUP, true", s, ok)
	}
	if _, ok := tok.next(); ok {
		t.Fatal("expected no further tokens after unterminated paren comment")
	}
}

func TestTokenizerTruncatesLongNames(t *testing.T) {
	tok := newTokenizer([]byte("abcdefghijklmnopqrstuvwxyz"))
	s, ok := tok.next()
	if !ok {
		t.Fatal("expected a token")
	}
	if len(s) != maxNameLen {
		t.Fatalf("token length = %v, want %v", len(s), maxNameLen)
	}
}

func TestReadStringLiteral(t *testing.T) {
	tok := newTokenizer([]byte(`." hello world"`))
	_, _ = tok.next() // consume the ." token itself
	s, ok := tok.readStringLiteral()
	if !ok {
		t.Fatal("expected a terminated string")
	}
	if string(s) != "hello world" {
		t.Fatalf("readStringLiteral = %q, want %q", s, "hello world")
	}
}

func TestReadStringLiteralUnterminated(t *testing.T) {
	tok := newTokenizer([]byte(`." hello`))
	_, _ = tok.next()
	_, ok := tok.readStringLiteral()
	if ok {
		t.Fatal("expected unterminated string to report !ok")
	}
}

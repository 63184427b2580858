package ansi

import "testing"

func TestSkipEscapeCSI(t *testing.T) {
	s := "\x1b[31mx"
	next, ok := SkipEscape(s, 0)
	if !ok || next != 5 {
		t.Fatalf("SkipEscape(%q, 0) = (%d, %v), want (5, true)", s, next, ok)
	}
}

func TestSkipEscapeTwoByte(t *testing.T) {
	s := "\x1b7rest"
	next, ok := SkipEscape(s, 0)
	if !ok || next != 2 {
		t.Fatalf("SkipEscape(%q, 0) = (%d, %v), want (2, true)", s, next, ok)
	}
}

func TestSkipEscapeNoEscape(t *testing.T) {
	if _, ok := SkipEscape("abc", 0); ok {
		t.Fatalf("SkipEscape on non-escape text reported ok")
	}
}

func TestVisibleLenSkipsEscapesAndCR(t *testing.T) {
	s := "\x1b[1mab\rc\x1b[0m"
	if got := VisibleLen(s); got != 3 {
		t.Fatalf("VisibleLen(%q) = %d, want 3", s, got)
	}
}

func TestIndexToPosMultiline(t *testing.T) {
	s := "ab\ncd"
	p := IndexToPos(s, 3)
	if p.Line != 2 || p.Column != 1 {
		t.Fatalf("IndexToPos(%q, 3) = %+v, want {2 1}", s, p)
	}
}

func TestPosToIndexRoundTrip(t *testing.T) {
	s := "ab\ncd"
	for idx := 0; idx <= len(s); idx++ {
		p := IndexToPos(s, idx)
		got := PosToIndex(s, p)
		if got2 := IndexToPos(s, got); got2 != p {
			t.Fatalf("round trip broke at idx %d: IndexToPos(PosToIndex(%+v))=%+v", idx, p, got2)
		}
	}
}

func TestPosToIndexBeyondEnd(t *testing.T) {
	s := "ab"
	if got := PosToIndex(s, Position{Line: 1, Column: 99}); got != len(s) {
		t.Fatalf("PosToIndex beyond end = %d, want %d", got, len(s))
	}
}

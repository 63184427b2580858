package ansi

import "testing"

func TestVisibleWidthASCII(t *testing.T) {
	if got := VisibleWidth("hello"); got != 5 {
		t.Fatalf("VisibleWidth(hello) = %d, want 5", got)
	}
}

func TestVisibleWidthSkipsEscapes(t *testing.T) {
	s := "\x1b[31mhi\x1b[0m"
	if got := VisibleWidth(s); got != 2 {
		t.Fatalf("VisibleWidth(%q) = %d, want 2", s, got)
	}
}

func TestVisibleWidthWideCJK(t *testing.T) {
	s := "中文" // 中文
	if got := VisibleWidth(s); got != 4 {
		t.Fatalf("VisibleWidth(%q) = %d, want 4", s, got)
	}
}

func TestVisibleWidthCombiningMarkIsZero(t *testing.T) {
	s := "é" // e + combining acute accent
	if got := VisibleWidth(s); got != 1 {
		t.Fatalf("VisibleWidth(%q) = %d, want 1", s, got)
	}
}

func TestVisibleWidthZWJIsZero(t *testing.T) {
	s := "a‍b"
	if got := VisibleWidth(s); got != 2 {
		t.Fatalf("VisibleWidth(%q) = %d, want 2", s, got)
	}
}

func TestVisibleWidthIgnoresCR(t *testing.T) {
	if got := VisibleWidth("ab\rcd"); got != 4 {
		t.Fatalf("VisibleWidth with CR = %d, want 4", got)
	}
}

func TestVisibleWidthHalfwidthKatakanaIsNarrow(t *testing.T) {
	s := "ｱ" // halfwidth katakana letter A, U+FF71 (falls in U+FF61-FFDF)
	if got := VisibleWidth(s); got != 1 {
		t.Fatalf("VisibleWidth(%q) = %d, want 1", s, got)
	}
}

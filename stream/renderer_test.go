package stream

import (
	"strings"
	"sync"
	"testing"
	"time"

	"streamterm/ansi"
	"streamterm/highlight"
)

func collectPatches(r *Renderer) *[]string {
	var patches []string
	r.OnPatch(func(p string) { patches = append(patches, p) })
	return &patches
}

func TestPushAppendOnlyGrowth(t *testing.T) {
	r := New(WithColor(ColorNever), WithHighlighter(highlight.Plain))
	patches := collectPatches(r)

	if _, err := r.Push("hello\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := r.Push("world\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(*patches) != 2 {
		t.Fatalf("got %d patches, want 2", len(*patches))
	}
	if !strings.Contains((*patches)[1], "world") {
		t.Fatalf("second patch missing appended text: %q", (*patches)[1])
	}
	if strings.Contains((*patches)[1], "hello") {
		t.Fatalf("second patch re-emitted unchanged prefix: %q", (*patches)[1])
	}
}

func TestPushEmptyPatchWhenRenderUnchanged(t *testing.T) {
	r := New(WithColor(ColorNever), WithHighlighter(highlight.Plain))
	if _, err := r.Push("hello\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	patch, err := r.Push("")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if patch != "" {
		t.Fatalf("expected empty patch for unchanged render, got %q", patch)
	}
}

func TestRedrawStrategyAlwaysFullSetText(t *testing.T) {
	r := New(WithColor(ColorNever), WithStrategy(StrategyRedraw), WithHighlighter(highlight.Plain))
	r.Push("hello")
	patch, err := r.Push(" world")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if !strings.Contains(patch, "hello") {
		t.Fatalf("redraw strategy patch should re-include prior text: %q", patch)
	}
}

func TestGetFullRenderedTextIgnoresViewportClip(t *testing.T) {
	r := New(WithColor(ColorNever), WithViewportHeight(1), WithHighlighter(highlight.Plain))
	r.Push("line1\nline2\nline3\n")
	full := r.GetFullRenderedText()
	if !strings.Contains(full, "line1") {
		t.Fatalf("GetFullRenderedText clipped output: %q", full)
	}
}

func TestGetContentReturnsRawMarkdown(t *testing.T) {
	r := New()
	r.Push("# hi")
	r.Push(" there")
	if got := r.GetContent(); got != "# hi there" {
		t.Fatalf("GetContent() = %q", got)
	}
}

func TestResetClearsSurfaceAndContent(t *testing.T) {
	r := New(WithColor(ColorNever), WithHighlighter(highlight.Plain))
	r.Push("hello")
	r.Reset()
	if r.GetContent() != "" {
		t.Fatalf("GetContent() after Reset = %q", r.GetContent())
	}
	if r.GetRenderedText() != "" {
		t.Fatalf("GetRenderedText() after Reset = %q", r.GetRenderedText())
	}
	patch, err := r.Push("hi")
	if err != nil {
		t.Fatalf("Push after Reset: %v", err)
	}
	if !strings.HasPrefix(patch, "\r"+ansi.SaveCursor) {
		t.Fatalf("Push after Reset did not re-anchor: %q", patch)
	}
}

func TestTailCodeFenceClosingWithSyncHighlightRewritesOnlyTail(t *testing.T) {
	r := New(WithColor(ColorNever), WithHighlighter(highlight.Plain))
	collectPatches(r)

	if _, err := r.Push("intro\n\n```go\nfmt.Println(1)\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	patch, err := r.Push("```\n")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if patch == "" {
		t.Fatalf("expected a patch when the fence closes")
	}
	if strings.Contains(patch, "intro") {
		t.Fatalf("closing-fence patch rewrote text before the code block: %q", patch)
	}
}

func TestAsyncHighlightAppliesLateRewrite(t *testing.T) {
	resultCh := make(chan highlight.Result, 1)
	asyncFn := func(code, lang string) highlight.Outcome {
		return highlight.Outcome{Async: resultCh}
	}
	r := New(WithColor(ColorNever), WithHighlighter(asyncFn))
	var patches []string
	var mu sync.Mutex
	r.OnPatch(func(p string) {
		mu.Lock()
		patches = append(patches, p)
		mu.Unlock()
	})

	if _, err := r.Push("```go\nfmt.Println(1)\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := r.Push("```\nafter\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	resultCh <- highlight.Result{Text: "HIGHLIGHTED"}

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(patches)
		mu.Unlock()
		if n >= 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("async rewrite patch never arrived, got %d patches", n)
		case <-time.After(time.Millisecond):
		}
	}

	full := r.GetFullRenderedText()
	if !strings.Contains(full, "HIGHLIGHTED") {
		t.Fatalf("GetFullRenderedText() after async resolve = %q", full)
	}
}

func TestResetInvalidatesPendingAsyncRewrite(t *testing.T) {
	resultCh := make(chan highlight.Result, 1)
	asyncFn := func(code, lang string) highlight.Outcome {
		return highlight.Outcome{Async: resultCh}
	}
	r := New(WithColor(ColorNever), WithHighlighter(asyncFn))

	if _, err := r.Push("```go\nfmt.Println(1)\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if _, err := r.Push("```\n"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	r.Reset()
	resultCh <- highlight.Result{Text: "STALE"}

	flushed, err := r.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	for _, line := range flushed {
		if strings.Contains(line, "STALE") {
			t.Fatalf("stale async rewrite applied after Reset: %v", flushed)
		}
	}
}

func TestFlushWaitsForPendingHighlights(t *testing.T) {
	resultCh := make(chan highlight.Result, 1)
	asyncFn := func(code, lang string) highlight.Outcome {
		return highlight.Outcome{Async: resultCh}
	}
	r := New(WithColor(ColorNever), WithHighlighter(asyncFn))
	r.Push("```go\nfmt.Println(1)\n")
	r.Push("```\n")

	go func() {
		time.Sleep(10 * time.Millisecond)
		resultCh <- highlight.Result{Text: "HIGHLIGHTED"}
	}()

	lines, err := r.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "HIGHLIGHTED") {
		t.Fatalf("Flush returned before async highlight settled: %v", lines)
	}
}

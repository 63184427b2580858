// Package stream re-parses accumulating Markdown on every pushed chunk
// and turns successive renders into minimal ANSI patches via an anchored
// text surface, coordinating async syntax highlighting along the way.
package stream

import (
	"os"
	"strings"
	"sync"

	"streamterm/ansi"
	"streamterm/highlight"
	"streamterm/mdansi"
	"streamterm/mdast"
	"streamterm/surface"
)

// Renderer accumulates streamed Markdown and exposes the patch needed to
// bring a terminal from its last known state to the latest render. A
// Renderer is not safe for concurrent Push/Flush/Reset calls from more
// than one goroutine, but async highlight resolution is handled
// internally and does not require external synchronization.
type Renderer struct {
	cfg         config
	color       bool
	coordinator *highlight.Coordinator

	mu             sync.Mutex
	source         strings.Builder
	surface        *surface.Surface
	epoch          int
	wasLoadingTail bool
	startPos       *ansi.Position
	fullRendered   string
	onPatch        func(string)
	pending        sync.WaitGroup
}

// New constructs a Renderer. With no options it anchors to the cursor,
// uses the smart append strategy, and highlights code with highlight.Plain.
func New(opts ...Option) *Renderer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Renderer{
		cfg:         cfg,
		color:       resolveColor(cfg.color),
		coordinator: highlight.NewCoordinator(cfg.highlighter),
		surface:     surface.New(cfg.anchor),
	}
}

func resolveColor(m ColorMode) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return os.Getenv("NO_COLOR") == ""
	}
}

// OnPatch registers a callback invoked with every non-empty patch Push or
// a resolved async highlight produces. There is only ever one callback;
// a later call replaces an earlier one.
func (r *Renderer) OnPatch(fn func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPatch = fn
}

// Push appends chunk to the accumulated document, re-parses it, and
// returns the ANSI patch that brings the screen up to date. An empty
// return means the new render was identical to what's already on screen.
func (r *Renderer) Push(chunk string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.source.WriteString(chunk)
	root := mdast.ParseDocument(r.source.String())

	_, tailLoading := mdast.FindTrailingLoadingCodeBlock(root)
	prevWasLoading := r.wasLoadingTail

	var closedTail *mdast.Node
	if prevWasLoading && !tailLoading && r.cfg.streaming {
		if cb, ok := lastCodeBlock(root); ok && !cb.Loading {
			closedTail = cb
		}
	}

	switch {
	case tailLoading:
		return r.pushStillLoading(root, prevWasLoading)
	case closedTail != nil:
		return r.pushTailClosed(root, closedTail)
	default:
		r.wasLoadingTail = false
		r.startPos = nil
		next := r.renderFull(root, r.genericHighlightFn())
		r.fullRendered = next
		patch, err := r.appendOrRedraw(r.clip(next))
		if err != nil {
			return "", err
		}
		r.deliver(patch)
		return patch, nil
	}
}

// pushStillLoading handles a trailing code block that remains
// unterminated. The first push where it appears records startPos (the
// opening fence's line start) for the smart strategy's later use.
func (r *Renderer) pushStillLoading(root *mdast.Node, prevWasLoading bool) (string, error) {
	r.wasLoadingTail = true
	next := r.renderFull(root, r.genericHighlightFn())
	r.fullRendered = next
	clipped := r.clip(next)

	if !prevWasLoading {
		if r.cfg.strategy == StrategyRedraw {
			r.startPos = nil
		} else if pos, ok := fenceLineStart(clipped); ok {
			r.startPos = &pos
		}
	}

	patch, err := r.appendOrRedraw(clipped)
	if err != nil {
		return "", err
	}
	r.deliver(patch)
	return patch, nil
}

// pushTailClosed handles the push where the trailing code block has just
// closed. closedTail is excluded from the ordinary highlight walk so its
// single Ensure call here drives the patch shape instead of producing a
// second, redundant one.
func (r *Renderer) pushTailClosed(root *mdast.Node, closedTail *mdast.Node) (string, error) {
	out := r.coordinator.Ensure(closedTail.Code, closedTail.Lang)

	tailText, tailOK := "", false
	if out.Sync {
		tailText, tailOK = out.Text, true
	}
	base := r.genericHighlightFn()
	hl := func(code, lang string) (string, bool) {
		if code == closedTail.Code && lang == closedTail.Lang {
			return tailText, tailOK
		}
		return base(code, lang)
	}

	next := r.renderFull(root, hl)
	r.fullRendered = next
	clipped := r.clip(next)

	if out.Sync {
		// The highlight resolved synchronously (cached or computed inline);
		// decide the narrow vs. wide patch now and forget the tail state.
		var patch string
		var err error
		switch {
		case r.cfg.strategy == StrategyRedraw:
			patch = r.surface.SetText(clipped)
		default:
			if p, ok := r.tryNarrowRewrite(clipped, r.startPos); ok {
				patch = p
			} else if r.cfg.fullRedrawOnMismatch {
				patch = r.surface.SetText(clipped)
			} else {
				err = ErrUnresolvableRewritePrefix
			}
		}
		r.wasLoadingTail = false
		r.startPos = nil
		if err != nil {
			return "", err
		}
		r.deliver(patch)
		return patch, nil
	}

	// The highlight is still pending: emit the still-unhighlighted tail now
	// via the ordinary append/redraw decision, then resolve the narrow
	// patch later against whatever startPos was current when this push
	// started.
	patch, err := r.appendOrRedraw(clipped)
	if err != nil {
		return "", err
	}
	r.deliver(patch)

	startPos := r.startPos
	r.wasLoadingTail = false
	r.startPos = nil
	r.scheduleAsyncRewrite(out.Async, closedTail.Lang, closedTail.Code, startPos)
	return patch, nil
}

// Flush waits for any in-flight async highlights to settle and returns
// the current full render split into lines.
func (r *Renderer) Flush() ([]string, error) {
	r.pending.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	text := strings.TrimSuffix(r.fullRendered, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// Reset clears the accumulated document and the surface's mirror of the
// screen, and invalidates any async highlight rewrites still in flight
// from before the reset so they become no-ops instead of corrupting the
// new state.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source.Reset()
	r.surface = surface.New(r.cfg.anchor)
	r.fullRendered = ""
	r.wasLoadingTail = false
	r.startPos = nil
	r.epoch++
}

// GetRenderedText returns the surface's current mirror of the screen
// (clipped to the configured viewport height, if any).
func (r *Renderer) GetRenderedText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surface.GetText()
}

// GetFullRenderedText returns the latest full, unclipped render.
func (r *Renderer) GetFullRenderedText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fullRendered
}

// GetContent returns the raw Markdown accumulated so far.
func (r *Renderer) GetContent() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source.String()
}

func (r *Renderer) renderFull(root *mdast.Node, hl mdansi.HighlightFunc) string {
	return mdansi.Render(root, r.cfg.theme, r.color, 0, hl)
}

// genericHighlightFn is the highlight path used for every code block that
// isn't the tail block currently driving a case-B/C decision: it goes
// through the coordinator so repeated identical fences share one
// in-flight highlight and a cached result.
func (r *Renderer) genericHighlightFn() mdansi.HighlightFunc {
	return func(code, lang string) (string, bool) {
		out := r.coordinator.Ensure(code, lang)
		if out.Sync {
			return out.Text, true
		}
		r.scheduleAsyncRewrite(out.Async, lang, code, nil)
		return "", false
	}
}

// scheduleAsyncRewrite waits for ch on its own goroutine and, if it still
// belongs to the current epoch once it resolves, re-renders the document
// and emits the resulting patch. startPos, when non-nil, anchors a narrow
// setTextFrom the way a just-closed tail block's async resolution does;
// nil means fall back to whatever startPos (if any) is current when the
// rewrite happens.
func (r *Renderer) scheduleAsyncRewrite(ch <-chan highlight.Result, lang, code string, startPos *ansi.Position) {
	epoch := r.epoch
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		res := <-ch
		if res.Err != nil {
			return
		}
		r.coordinator.Put(lang, code, res.Text)

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.epoch != epoch {
			return
		}
		root := mdast.ParseDocument(r.source.String())
		next := r.renderFull(root, r.genericHighlightFn())
		r.fullRendered = next
		clipped := r.clip(next)

		pos := startPos
		if pos == nil {
			pos = r.startPos
		}
		var patch string
		if p, ok := r.tryNarrowRewrite(clipped, pos); ok {
			patch = p
		} else {
			patch = r.surface.SetText(clipped)
		}
		r.deliver(patch)
	}()
}

func (r *Renderer) deliver(patch string) {
	if patch != "" && r.onPatch != nil {
		r.onPatch(patch)
	}
}

// clip applies the configured viewport height to a full render.
// GetFullRenderedText bypasses this.
func (r *Renderer) clip(s string) string {
	return surface.ClipToHeight(s, r.cfg.viewportHeight)
}

// appendOrRedraw is the generic patch decision used whenever there's no
// anchored rewrite in play: append when next extends what's on screen,
// else a full redraw when allowed, else an error.
func (r *Renderer) appendOrRedraw(next string) (string, error) {
	if r.cfg.strategy == StrategyRedraw {
		return r.surface.SetText(next), nil
	}
	old := r.surface.GetText()
	if strings.HasPrefix(next, old) {
		return r.surface.Append(next[len(old):]), nil
	}
	if r.cfg.fullRedrawOnMismatch {
		return r.surface.SetText(next), nil
	}
	return "", ErrNonAppendWithoutFallback
}

// tryNarrowRewrite attempts the anchored rewrite used when a trailing code
// block's highlight settles: next must agree with what's on screen on
// every byte strictly before pos. It reports ok=false (never an error)
// when strategy is StrategyRedraw, pos is nil, or the prefix doesn't
// hold, leaving the fallback decision to the caller.
func (r *Renderer) tryNarrowRewrite(next string, pos *ansi.Position) (string, bool) {
	if r.cfg.strategy == StrategyRedraw || pos == nil {
		return "", false
	}
	prev := r.surface.GetText()
	cut := ansi.PosToIndex(prev, *pos)
	if cut > len(prev) || cut > len(next) || prev[:cut] != next[:cut] {
		return "", false
	}
	return r.surface.SetTextFrom(next, *pos), true
}

// fenceLineStart locates the last occurrence of a code fence marker in
// text and returns the position of the start of its line.
func fenceLineStart(text string) (ansi.Position, bool) {
	idx := strings.LastIndex(text, "```")
	if idx < 0 {
		return ansi.Position{}, false
	}
	lineStart := strings.LastIndex(text[:idx], "\n") + 1
	return ansi.IndexToPos(text, lineStart), true
}

func lastCodeBlock(root *mdast.Node) (*mdast.Node, bool) {
	for i := len(root.Children) - 1; i >= 0; i-- {
		if root.Children[i].Type == mdast.NodeCodeBlock {
			return root.Children[i], true
		}
	}
	return nil, false
}

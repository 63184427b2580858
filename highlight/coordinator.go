package highlight

import "sync"

// callState tracks one in-flight (language, code) highlight. It stays
// registered until the real result is known - immediately for a
// synchronous Func, or once the async Func's channel resolves - so every
// caller that arrives while it's registered joins the same result
// instead of invoking Func again.
type callState struct {
	done   chan struct{}
	result Result
}

// Coordinator caches completed highlights and deduplicates concurrent
// requests for the same (language, code) pair so a document with many
// identical or repeated fences never tokenises the same text twice at
// once. It is safe for concurrent use.
type Coordinator struct {
	fn Func

	mu       sync.Mutex
	cache    map[string]string
	inflight map[string]*callState
}

// NewCoordinator wraps fn with caching and in-flight request dedup.
func NewCoordinator(fn Func) *Coordinator {
	return &Coordinator{fn: fn, cache: make(map[string]string), inflight: make(map[string]*callState)}
}

func key(lang, code string) string {
	return lang + "\x00" + code
}

// Lookup returns a cached result for (lang, code), if one exists.
func (c *Coordinator) Lookup(lang, code string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.cache[key(lang, code)]
	return text, ok
}

func (c *Coordinator) storeLocked(k, text string) {
	c.cache[k] = text
}

// Put seeds the cache directly, for callers that highlighted a block
// themselves (bypassing Ensure's dedup) and want later lookups of the
// same (language, code) pair to hit the cache.
func (c *Coordinator) Put(lang, code, text string) {
	c.mu.Lock()
	c.storeLocked(key(lang, code), text)
	c.mu.Unlock()
}

// Ensure highlights code, serving a cached result immediately when
// available. Otherwise it registers itself as the one caller that will
// invoke the underlying Func, so any other caller racing on the same key
// joins that single call instead of starting a second one.
//
// A genuinely synchronous Func is called directly on Ensure's own
// goroutine, so Outcome.Sync is preserved rather than forced through a
// channel. Only a real async Outcome ever goes through a channel: the
// registering caller spawns the one goroutine that drains it, and every
// caller - including that one - gets its own forwarding channel, fed
// once the shared callState's done channel closes.
func (c *Coordinator) Ensure(code, lang string) Outcome {
	k := key(lang, code)

	c.mu.Lock()
	if text, ok := c.cache[k]; ok {
		c.mu.Unlock()
		return Outcome{Text: text, Sync: true}
	}
	if cs, ok := c.inflight[k]; ok {
		c.mu.Unlock()
		return Outcome{Async: c.join(cs)}
	}
	cs := &callState{done: make(chan struct{})}
	c.inflight[k] = cs
	c.mu.Unlock()

	outcome := c.fn(code, lang)
	if outcome.Sync {
		c.mu.Lock()
		c.storeLocked(k, outcome.Text)
		c.mu.Unlock()
		c.finish(k, cs, Result{Text: outcome.Text})
		return outcome
	}

	go func() {
		res := <-outcome.Async
		if res.Err == nil {
			c.mu.Lock()
			c.storeLocked(k, res.Text)
			c.mu.Unlock()
		}
		c.finish(k, cs, res)
	}()
	return Outcome{Async: c.join(cs)}
}

func (c *Coordinator) finish(k string, cs *callState, res Result) {
	cs.result = res
	close(cs.done)
	c.mu.Lock()
	delete(c.inflight, k)
	c.mu.Unlock()
}

// join returns a private channel that receives cs's result once it
// settles, letting many callers share one in-flight callState without
// racing to read the same underlying async channel.
func (c *Coordinator) join(cs *callState) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		<-cs.done
		ch <- cs.result
	}()
	return ch
}

// Command mdstream simulates an LLM trickling Markdown into a terminal:
// it chunks an input document and feeds it through a stream.Renderer,
// writing each patch to a term.Session as it's produced.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"streamterm/highlight"
	"streamterm/stream"
	"streamterm/term"
)

func main() {
	chunkSize := flag.Int("chunk", 24, "bytes per simulated stream chunk")
	delay := flag.Duration("delay", 30*time.Millisecond, "delay between chunks")
	redraw := flag.Bool("redraw", false, "always redraw instead of appending")
	flag.Parse()

	var src []byte
	var err error
	if path := flag.Arg(0); path != "" {
		src, err = os.ReadFile(path)
	} else {
		src, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatalf("mdstream: read input: %v", err)
	}

	session, err := term.NewSession(os.Stdin, os.Stdout)
	if err != nil {
		log.Printf("WARN: mdstream: %v; falling back to plain output", err)
		runPlain(src, *chunkSize, *delay)
		return
	}
	defer session.Close()

	strategy := stream.StrategySmart
	if *redraw {
		strategy = stream.StrategyRedraw
	}
	r := stream.New(
		stream.WithStrategy(strategy),
		stream.WithHighlighter(highlight.Chroma),
	)
	r.OnPatch(func(patch string) {
		if err := session.Write(patch); err != nil {
			log.Printf("WARN: mdstream: write patch: %v", err)
			return
		}
		session.Flush()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < len(src); i += *chunkSize {
			end := i + *chunkSize
			if end > len(src) {
				end = len(src)
			}
			if _, err := r.Push(string(src[i:end])); err != nil {
				log.Printf("WARN: mdstream: push: %v", err)
			}
			time.Sleep(*delay)
		}
		if _, err := r.Flush(); err != nil {
			log.Printf("WARN: mdstream: flush: %v", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("INFO: mdstream: interrupted")
	case <-done:
	}
}

func runPlain(src []byte, chunkSize int, delay time.Duration) {
	r := stream.New(stream.WithHighlighter(highlight.Plain))
	r.OnPatch(func(patch string) { os.Stdout.WriteString(patch) })
	for i := 0; i < len(src); i += chunkSize {
		end := i + chunkSize
		if end > len(src) {
			end = len(src)
		}
		if _, err := r.Push(string(src[i:end])); err != nil {
			log.Printf("WARN: mdstream: push: %v", err)
		}
		time.Sleep(delay)
	}
	r.Flush()
}

package playback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vidsan-cli/vidsan/log"
)

// LoadTimeout is the default bound on a single load attempt.
const LoadTimeout = 20 * time.Second

// Label tags a candidate's position in the fallback ordering. Labels are
// diagnostic only and never drive selection logic.
type Label string

const (
	LabelPrimary       Label = "primary"
	LabelDirect        Label = "direct"
	LabelProxyFallback Label = "proxy-fallback"
	LabelProxyOriginal Label = "proxy-original"
)

// Candidate is one URL the chain engine may try.
type Candidate struct {
	URL   string `json:"url"`
	Label Label  `json:"label"`
}

// Candidates builds the ordered, de-duplicated fallback chain for a
// descriptor. The order encodes a cost/reliability gradient from
// cheapest-to-try to most-likely-to-work:
//
//  1. the strategy-selected play URL
//  2. the resolved direct URL, if different
//  3. the direct URL routed through the proxy
//  4. the original input routed through the proxy
func Candidates(media *MediaDescriptor, proxy Proxy) []Candidate {
	seen := make(map[string]struct{}, 4)
	out := make([]Candidate, 0, 4)

	add := func(url string, label Label) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		out = append(out, Candidate{URL: url, Label: label})
	}

	add(media.PlayURL, LabelPrimary)
	add(media.DirectURL, LabelDirect)
	add(proxy.Wrap(media.DirectURL), LabelProxyFallback)
	add(proxy.Wrap(media.OriginalInput), LabelProxyOriginal)

	return out
}

// Outcome is the terminal state of a chain run. Failure is a normal,
// fully-described state, never a panic or error return.
type Outcome struct {
	Success    bool   `json:"success"`
	UsedURL    string `json:"usedUrl,omitempty"`
	TriedIndex int    `json:"triedIndex"`
	Label      Label  `json:"label,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Engine attempts candidates sequentially against the playback sink,
// one in flight at a time, each bounded by the load timeout.
type Engine struct {
	sink    Sink
	proxy   Proxy
	timeout time.Duration
}

// NewEngine creates a chain engine. A non-positive timeout falls back to
// the default.
func NewEngine(sink Sink, proxy Proxy, loadTimeout time.Duration) *Engine {
	if loadTimeout <= 0 {
		loadTimeout = LoadTimeout
	}
	return &Engine{sink: sink, proxy: proxy, timeout: loadTimeout}
}

// Run exhausts the fallback chain for the descriptor. The first candidate
// that reaches readiness wins and halts the chain; if every candidate
// errors or times out, the outcome aggregates the per-candidate failures
// into one diagnostic.
func (e *Engine) Run(ctx context.Context, media *MediaDescriptor) Outcome {
	candidates := Candidates(media, e.proxy)
	if len(candidates) == 0 {
		return Outcome{TriedIndex: -1, Error: "no playable candidate URLs"}
	}

	failures := make([]string, 0, len(candidates))
	lastTried := 0

	for i, candidate := range candidates {
		lastTried = i
		log.Debugf("chain: attempt %d (%s) %s", i, candidate.Label, candidate.URL)

		err := e.attempt(ctx, candidate)
		if err == nil {
			return Outcome{
				Success:    true,
				UsedURL:    candidate.URL,
				TriedIndex: i,
				Label:      candidate.Label,
			}
		}

		failures = append(failures, fmt.Sprintf("%s: %s", candidate.Label, err))
		log.Debugf("chain: attempt %d (%s) failed: %s", i, candidate.Label, err)

		if ctx.Err() != nil {
			break
		}
	}

	return Outcome{
		TriedIndex: lastTried,
		Error:      exhaustedDiagnostic(media, failures),
	}
}

// attempt drives one candidate to exactly one terminal outcome: readiness,
// a sink error, a timeout, or cancellation.
func (e *Engine) attempt(ctx context.Context, candidate Candidate) error {
	e.sink.Assign(candidate.URL)
	e.sink.BeginLoad()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case <-e.sink.Ready():
		return nil
	case sinkErr := <-e.sink.Errors():
		return sinkErr
	case <-timer.C:
		return fmt.Errorf("no readiness signal within %s", e.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// exhaustedDiagnostic builds the composite failure message: the codec
// advisor's suspicion first when it had already flagged the source, then
// the per-candidate failure lines, then the external download directive.
func exhaustedDiagnostic(media *MediaDescriptor, failures []string) string {
	var b strings.Builder

	if advice, ok := media.Advice.Get(); ok && !advice.CanPlay && advice.Warning != "" {
		b.WriteString(advice.Warning)
		b.WriteString("\n")
	}

	b.WriteString("every playback candidate failed:\n")
	for _, line := range failures {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("download the file and play it with an external player instead")

	return b.String()
}

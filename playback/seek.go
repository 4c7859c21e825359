package playback

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/vidsan-cli/vidsan/log"
	"github.com/vidsan-cli/vidsan/util"
)

const (
	// SeekGrace is how long a speculative seek gets to land before its
	// result is judged.
	SeekGrace = 900 * time.Millisecond

	// SeekTolerance is the maximum distance, in seconds, between the sink
	// position and the requested target for a seek to count as landed.
	SeekTolerance = 2.0
)

// ErrSeekUnsupported reports a reverted speculative seek.
var ErrSeekUnsupported = errors.New("server does not support long-distance seeking")

// SeekGuard wraps seek requests with a verify-and-revert policy when range
// support is unknown or absent. Servers that ignore range requests reset
// the stream to its start; without the guard that silently corrupts the
// playback position.
type SeekGuard struct {
	sink  Sink
	rng   RangeSupport
	grace time.Duration
}

// NewSeekGuard creates a guard over the sink for a source with the given
// range support.
func NewSeekGuard(sink Sink, rng RangeSupport) *SeekGuard {
	return &SeekGuard{sink: sink, rng: rng, grace: SeekGrace}
}

// Seek moves playback to the target timestamp, in seconds.
//
// Confirmed-range sources and targets inside a buffered interval seek
// unconditionally. Anything else seeks speculatively: if after the grace
// period the sink position is not within tolerance of the target, the
// pre-seek position is restored and ErrSeekUnsupported returned.
func (g *SeekGuard) Seek(ctx context.Context, target float64) error {
	target = g.clamp(target)

	if g.rng == RangeSupported || g.buffered(target) {
		return g.sink.Seek(target)
	}

	before := g.sink.Position()
	if err := g.sink.Seek(target); err != nil {
		return err
	}

	timer := time.NewTimer(g.grace)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	landed := g.sink.Position()
	if math.Abs(landed-target) > SeekTolerance {
		log.Debugf("seek: speculative seek to %.1fs landed at %.1fs, reverting to %.1fs", target, landed, before)
		if err := g.sink.Seek(before); err != nil {
			return err
		}
		return ErrSeekUnsupported
	}
	return nil
}

func (g *SeekGuard) clamp(target float64) float64 {
	if duration, ok := g.sink.Duration().Get(); ok && duration > 0 {
		return util.Clamp(target, 0, duration)
	}
	return util.Max(target, 0)
}

func (g *SeekGuard) buffered(target float64) bool {
	for _, iv := range g.sink.Buffered() {
		if iv.Contains(target) {
			return true
		}
	}
	return false
}

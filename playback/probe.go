package playback

import (
	"context"
	"net/http"
	"time"

	"github.com/vidsan-cli/vidsan/internal/timeout"
	"github.com/vidsan-cli/vidsan/log"
)

// ProbeTimeout bounds the range probe request.
const ProbeTimeout = 5 * time.Second

// RangeSupport is the tri-state answer to "can this server serve partial
// byte ranges". Absence of proof is not proof of absence: ambiguous or
// failed probes yield Unknown, and callers must treat Unknown the same as
// Unsupported for seek-safety purposes.
type RangeSupport uint8

const (
	RangeUnknown RangeSupport = iota
	RangeSupported
	RangeUnsupported
)

func (r RangeSupport) String() string {
	switch r {
	case RangeSupported:
		return "supported"
	case RangeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ProbeRange issues a minimal partial-content request to learn whether
// arbitrary-offset seeking is safe on the source.
func ProbeRange(ctx context.Context, httpClient *http.Client, rawURL string) RangeSupport {
	support, err := timeout.Run(ctx, ProbeTimeout, func(ctx context.Context) (RangeSupport, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return RangeUnknown, err
		}
		req.Header.Set("Range", "bytes=0-0")
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")

		res, err := httpClient.Do(req)
		if err != nil {
			return RangeUnknown, err
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode == http.StatusPartialContent:
			return RangeSupported, nil
		case res.Header.Get("Accept-Ranges") == "bytes":
			return RangeSupported, nil
		case res.Header.Get("Accept-Ranges") == "none":
			return RangeUnsupported, nil
		default:
			return RangeUnknown, nil
		}
	})
	if err != nil {
		log.Debugf("probe: range probe inconclusive for %s: %v", rawURL, err)
		return RangeUnknown
	}
	return support
}

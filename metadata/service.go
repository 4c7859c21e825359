package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/internal/timeout"
	"github.com/vidsan-cli/vidsan/log"
	"github.com/vidsan-cli/vidsan/network"
)

// FetchTimeout bounds a single outbound metadata request. The fetch is
// raced against this deadline; the loser's result is discarded.
const FetchTimeout = 5 * time.Second

// Service resolves metadata through the store first and the remote API on
// a miss. Successful fetches are written back before being returned.
type Service struct {
	store Store
	http  *http.Client
}

// NewService creates a metadata service over the given store.
// The browser-fingerprint client is used because several hosts gate their
// info APIs behind anti-bot checks.
func NewService(store Store) *Service {
	return &Service{store: store, http: network.BrowserClient}
}

// NewServiceWithHTTPClient creates a metadata service with a custom HTTP
// client, primarily for tests.
func NewServiceWithHTTPClient(store Store, httpClient *http.Client) *Service {
	return &Service{store: store, http: httpClient}
}

// fileInfoResponse mirrors the PixelDrain-class info API. Some hosts name
// the mime field mime_type, others content_type.
type fileInfoResponse struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mime_type"`
	ContentType string `json:"content_type"`
}

// Lookup returns metadata for a hosted file, consulting the cache first.
// Absent means "no metadata" and is non-fatal; the caller falls back to a
// filename guess for the title.
func (s *Service) Lookup(ctx context.Context, host, id string) mo.Option[*Record] {
	if id == "" || host == "" {
		return mo.None[*Record]()
	}

	if cached := s.store.Get(id); cached.IsPresent() {
		return cached
	}

	record, err := timeout.Race(ctx, FetchTimeout, func(ctx context.Context) (*Record, error) {
		return s.fetch(ctx, host, id)
	})
	if err != nil {
		if timeout.Expired(err) {
			log.Debugf("metadata: fetch timed out for %s on %s", id, host)
		} else {
			log.Debugf("metadata: fetch failed for %s on %s: %v", id, host, err)
		}
		return mo.None[*Record]()
	}

	if err := s.store.Set(id, record); err != nil {
		log.Warnf("metadata: cache write failed for %s: %v", id, err)
	}
	return mo.Some(record)
}

func (s *Service) fetch(ctx context.Context, host, id string) (*Record, error) {
	base := hostBase(host)
	endpoint := fmt.Sprintf("%s/api/file/%s/info", base, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("info endpoint returned status %d", res.StatusCode)
	}

	var body fileInfoResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode info response: %w", err)
	}

	mime := body.MimeType
	if mime == "" {
		mime = body.ContentType
	}

	return &Record{
		Name:         body.Name,
		Size:         body.Size,
		MimeType:     mime,
		ThumbnailURL: fmt.Sprintf("%s/api/file/%s/thumbnail?size=256", base, id),
		FetchedAt:    time.Now(),
	}, nil
}

// hostBase accepts either a bare hostname or a full base URL.
func hostBase(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimSuffix(host, "/")
	}
	return "https://" + host
}

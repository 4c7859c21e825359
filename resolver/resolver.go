// Package resolver talks to the external resolve endpoint that turns
// captive file-host pages into directly fetchable URLs.
//
// Resolution failure is deliberately soft: any transport error, non-2xx
// status, or malformed body collapses into an absent Option, and the caller
// falls back to attempting proxy-streamed playback of the original URL.
package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/internal/timeout"
	"github.com/vidsan-cli/vidsan/log"
	"github.com/vidsan-cli/vidsan/network"
)

// Timeout bounds a single resolve call. The underlying connection is
// aborted when it expires, not just the logical wait.
const Timeout = 15 * time.Second

// Client issues resolve calls against a configured endpoint base.
type Client struct {
	base string
	http *http.Client
}

// New creates a resolve client for the given endpoint base URL.
// An empty base disables resolution; every call returns absent.
func New(base string) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: network.Client,
	}
}

// NewWithHTTPClient creates a resolve client with a custom HTTP client,
// primarily for tests.
func NewWithHTTPClient(base string, httpClient *http.Client) *Client {
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: httpClient,
	}
}

// Enabled reports whether an endpoint base is configured.
func (c *Client) Enabled() bool {
	return c.base != ""
}

// resolveResponse mirrors the resolve endpoint's JSON contract.
type resolveResponse struct {
	Resolved bool              `json:"resolved"`
	URL      string            `json:"url"`
	Referer  string            `json:"referer"`
	Origin   string            `json:"origin"`
	Cookie   string            `json:"cookie"`
	Headers  map[string]string `json:"headers"`
	Note     string            `json:"note"`
	Filename string            `json:"filename"`
	Filesize int64             `json:"filesize"`
	Mode     string            `json:"mode"`
}

// Resolve asks the endpoint for a directly fetchable URL.
// Absent means "could not resolve, try direct/proxy streaming instead" and
// is never an error. The timeout-vs-transport-failure distinction is
// preserved only for logging, not for control flow.
func (c *Client) Resolve(ctx context.Context, rawURL string) mo.Option[*Result] {
	if !c.Enabled() {
		return mo.None[*Result]()
	}

	endpoint := c.base + "/resolve?url=" + url.QueryEscape(rawURL)

	resp, err := timeout.Run(ctx, Timeout, func(ctx context.Context) (*resolveResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		res, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			log.Debugf("resolve: endpoint returned status %d for %s", res.StatusCode, rawURL)
			return nil, nil
		}

		var body resolveResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			log.Debugf("resolve: non-JSON body for %s: %v", rawURL, err)
			return nil, nil
		}
		return &body, nil
	})

	if err != nil {
		if timeout.Expired(err) {
			log.Warnf("resolve: timed out after %s for %s", Timeout, rawURL)
		} else {
			log.Warnf("resolve: transport failure for %s: %v", rawURL, err)
		}
		return mo.None[*Result]()
	}

	if resp == nil || !resp.Resolved || resp.URL == "" {
		return mo.None[*Result]()
	}

	return mo.Some(&Result{
		URL:      resp.URL,
		Referer:  resp.Referer,
		Origin:   resp.Origin,
		Cookie:   resp.Cookie,
		Headers:  resp.Headers,
		Note:     resp.Note,
		Filename: resp.Filename,
		Filesize: resp.Filesize,
		Mode:     resp.Mode,
	})
}

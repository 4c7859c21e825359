package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/vidsan-cli/vidsan/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

// memStore is a Store kept entirely in memory for service tests.
type memStore struct {
	records map[string]*Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*Record)}
}

func (s *memStore) Get(id string) mo.Option[*Record] {
	record, ok := s.records[id]
	if !ok || !record.Fresh(time.Now()) {
		return mo.None[*Record]()
	}
	return mo.Some(record)
}

func (s *memStore) Set(id string, record *Record) error {
	s.records[id] = record
	return nil
}

func TestRecordFreshness(t *testing.T) {
	Convey("Record freshness", t, func() {
		now := time.Now()

		fresh := &Record{FetchedAt: now.Add(-time.Hour)}
		So(fresh.Fresh(now), ShouldBeTrue)

		stale := &Record{FetchedAt: now.Add(-TTL - time.Minute)}
		So(stale.Fresh(now), ShouldBeFalse)
	})
}

func TestFileStore(t *testing.T) {
	Convey("File store", t, func() {
		store := NewStore()

		Convey("Round-trips a record", func() {
			record := &Record{Name: "movie.mkv", Size: 42, MimeType: "video/x-matroska", FetchedAt: time.Now()}
			So(store.Set("abc", record), ShouldBeNil)

			got := store.Get("abc")
			So(got.IsPresent(), ShouldBeTrue)
			So(got.MustGet().Name, ShouldEqual, "movie.mkv")
		})

		Convey("Misses on unknown ids", func() {
			So(store.Get("nope").IsAbsent(), ShouldBeTrue)
		})

		Convey("Treats expired records as misses", func() {
			record := &Record{Name: "old.mp4", FetchedAt: time.Now().Add(-TTL - time.Hour)}
			So(store.Set("old", record), ShouldBeNil)
			So(store.Get("old").IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestLookup(t *testing.T) {
	Convey("Lookup", t, func() {
		Convey("Fetches, caches, and returns remote metadata", func(c C) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				c.So(r.URL.Path, ShouldEqual, "/api/file/abc123/info")
				_, _ = w.Write([]byte(`{"name": "clip.mp4", "size": 1024, "mime_type": "video/mp4"}`))
			}))
			defer server.Close()

			store := newMemStore()
			service := NewServiceWithHTTPClient(store, server.Client())

			got := service.Lookup(context.Background(), server.URL, "abc123")
			So(got.IsPresent(), ShouldBeTrue)
			So(got.MustGet().Name, ShouldEqual, "clip.mp4")
			So(got.MustGet().MimeType, ShouldEqual, "video/mp4")
			So(got.MustGet().ThumbnailURL, ShouldEndWith, "/api/file/abc123/thumbnail?size=256")

			// Second lookup is served from the cache.
			got = service.Lookup(context.Background(), server.URL, "abc123")
			So(got.IsPresent(), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Falls back to content_type when mime_type is absent", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"name": "clip.mp4", "content_type": "video/webm"}`))
			}))
			defer server.Close()

			service := NewServiceWithHTTPClient(newMemStore(), server.Client())
			got := service.Lookup(context.Background(), server.URL, "x")
			So(got.MustGet().MimeType, ShouldEqual, "video/webm")
		})

		Convey("A slow endpoint loses the race and yields no metadata", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(10 * time.Second):
				}
			}))
			defer server.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			service := NewServiceWithHTTPClient(newMemStore(), server.Client())
			started := time.Now()
			So(service.Lookup(ctx, server.URL, "slow").IsAbsent(), ShouldBeTrue)
			So(time.Since(started), ShouldBeLessThan, time.Second)
		})

		Convey("A failing endpoint yields no metadata", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			service := NewServiceWithHTTPClient(newMemStore(), server.Client())
			So(service.Lookup(context.Background(), server.URL, "gone").IsAbsent(), ShouldBeTrue)
		})

		Convey("Blank ids never hit the network", func() {
			service := NewServiceWithHTTPClient(newMemStore(), nil)
			So(service.Lookup(context.Background(), "pixeldrain.com", "").IsAbsent(), ShouldBeTrue)
		})
	})
}

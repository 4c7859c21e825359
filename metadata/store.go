package metadata

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/vidsan-cli/vidsan/filesystem"
	"github.com/vidsan-cli/vidsan/where"
)

// Store is the injected key-value surface the cache is persisted through.
type Store interface {
	Get(id string) mo.Option[*Record]
	Set(id string, record *Record) error
}

// fileStore provides a disk-backed registry of metadata records.
// Last writer wins; metadata is idempotent and advisory, so no
// transactional guarantees are needed.
type fileStore struct {
	internal *gache.Cache[map[string]*Record]
	mu       sync.RWMutex
}

// NewStore creates the default gache-backed store under the cache
// directory. Expired records are filtered on read rather than eagerly
// pruned.
func NewStore() Store {
	return &fileStore{
		internal: gache.New[map[string]*Record](
			&gache.Options{
				Path:       where.Metadata(),
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (s *fileStore) Get(id string) mo.Option[*Record] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, expired, err := s.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[*Record]()
	}

	record, ok := data[id]
	if !ok || !record.Fresh(time.Now()) {
		return mo.None[*Record]()
	}
	return mo.Some(record)
}

func (s *fileStore) Set(id string, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, expired, err := s.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = make(map[string]*Record)
	}
	data[id] = record
	return s.internal.Set(data)
}

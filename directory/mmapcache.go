package directory

import (
	"os"
	"sync"

	"github.com/drusellers/tantivy/internal/mmap"
)

// CacheCounters tracks how often the mmap cache saved a system call.
type CacheCounters struct {
	// Hit counts opens served from a live cached mapping.
	Hit int `json:"hit"`
	// MissEmpty counts opens with no cache entry for the path at all.
	MissEmpty int `json:"miss_empty"`
	// MissWeak counts opens that found an entry whose mapping had
	// already been released by its last reader.
	MissWeak int `json:"miss_weak"`
}

// CacheInfo is a snapshot of the cache state for observability.
type CacheInfo struct {
	Counters CacheCounters `json:"counters"`
	// Mmapped lists the paths whose mappings are currently alive.
	Mmapped []string `json:"mmapped"`
}

const startingPurgeLimit = 1000

// mmapCache keeps at most one mapping per path alive across all open
// sources. Entries hold no reference of their own: once every source for
// a path is closed the mapping is released and the entry turns dead, to
// be reused or purged later. A single lock guards the whole cache, the
// refcounts included.
type mmapCache struct {
	mu         sync.Mutex
	cache      map[string]*cacheEntry
	counters   CacheCounters
	purgeLimit int
}

type cacheEntry struct {
	mapping *mmap.Mapping
	refs    int
}

func newMmapCache() *mmapCache {
	return &mmapCache{
		cache:      make(map[string]*cacheEntry),
		purgeLimit: startingPurgeLimit,
	}
}

// purge drops dead entries. When a pass reclaims nothing the limit is
// doubled so steady state load does not rescan the map over and over.
// Callers hold c.mu.
func (c *mmapCache) purge() {
	before := len(c.cache)
	for path, entry := range c.cache {
		if entry.refs == 0 {
			delete(c.cache, path)
		}
	}
	if len(c.cache) == before {
		c.purgeLimit *= 2
	}
}

// info purges first so the snapshot only lists live mappings.
func (c *mmapCache) info() CacheInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purge()
	paths := make([]string, 0, len(c.cache))
	for path := range c.cache {
		paths = append(paths, path)
	}
	return CacheInfo{Counters: c.counters, Mmapped: paths}
}

// openRead returns a source for the file at fullPath, reusing the live
// mapping when one exists. Empty files are served as empty static
// sources and never cached, since there is nothing to map.
func (c *mmapCache) openRead(fullPath string) (*ReadOnlySource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) > c.purgeLimit {
		c.purge()
	}

	entry, ok := c.cache[fullPath]
	switch {
	case ok && entry.mapping != nil:
		c.counters.Hit++
		entry.refs++
		return newOwnedSource(entry.mapping.Bytes(), &mmapRef{cache: c, entry: entry}), nil
	case ok:
		c.counters.MissWeak++
	default:
		c.counters.MissEmpty++
	}

	m, err := openMapping(fullPath)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return NewStaticSource(nil), nil
	}

	if entry == nil {
		entry = &cacheEntry{}
		c.cache[fullPath] = entry
	}
	entry.mapping = m
	entry.refs = 1
	return newOwnedSource(m.Bytes(), &mmapRef{cache: c, entry: entry}), nil
}

// evict removes the entry for fullPath. A mapping still referenced by
// open sources survives until the last of them closes.
func (c *mmapCache) evict(fullPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[fullPath]
	if !ok {
		return
	}
	delete(c.cache, fullPath)
	if entry.refs == 0 && entry.mapping != nil {
		entry.mapping.Close()
		entry.mapping = nil
	}
}

// openMapping maps the file at fullPath, translating a missing file into
// ErrFileDoesNotExist. A nil mapping with nil error means the file is
// empty and cannot be mapped.
func openMapping(fullPath string) (*mmap.Mapping, error) {
	m, err := mmap.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &FileError{Op: "open", Path: fullPath, Err: ErrFileDoesNotExist}
		}
		return nil, &FileError{Op: "open", Path: fullPath, Err: err}
	}
	if m.Size() == 0 {
		m.Close()
		return nil, nil
	}
	return m, nil
}

// mmapRef is the strong reference an open source holds on a cached
// mapping. Closing the last one releases the mapping and leaves the
// cache entry dead.
type mmapRef struct {
	cache *mmapCache
	entry *cacheEntry
	once  sync.Once
}

func (r *mmapRef) Close() error {
	var err error
	r.once.Do(func() {
		r.cache.mu.Lock()
		defer r.cache.mu.Unlock()

		r.entry.refs--
		if r.entry.refs == 0 && r.entry.mapping != nil {
			err = r.entry.mapping.Close()
			r.entry.mapping = nil
		}
	})
	return err
}

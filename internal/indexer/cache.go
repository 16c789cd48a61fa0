package indexer

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds how many distinct projects' hash indexes and
// progress records this process keeps at once. Evicted entries simply
// force a full reindex of that project's next incremental run.
const defaultCacheSize = 256

// Caches holds the two process-wide advisory caches FileHashIndex and
// IndexProgress, both keyed by project name. Neither is durable: they
// exist only for the lifetime of this process, lazily populated on first
// use and gone on restart. The vector store remains authoritative; losing
// either cache only costs a more expensive next reindex, never
// correctness.
type Caches struct {
	mu       sync.Mutex
	hashes   *lru.Cache[string, FileHashIndex]
	progress *lru.Cache[string, *Progress]
}

// NewCaches builds the process-wide caches. size bounds the number of
// distinct projects tracked at once; callers with a single long-lived
// process can pass defaultCacheSize.
func NewCaches(size int) (*Caches, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	hashes, err := lru.New[string, FileHashIndex](size)
	if err != nil {
		return nil, err
	}
	progress, err := lru.New[string, *Progress](size)
	if err != nil {
		return nil, err
	}
	return &Caches{hashes: hashes, progress: progress}, nil
}

// HashIndex returns the cached FileHashIndex for project, or an empty one
// if this is the first time the project has been seen.
func (c *Caches) HashIndex(project string) FileHashIndex {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx, ok := c.hashes.Get(project); ok {
		return idx
	}
	return FileHashIndex{}
}

// SetHashIndex atomically replaces project's cached FileHashIndex with idx.
func (c *Caches) SetHashIndex(project string, idx FileHashIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes.Add(project, idx)
}

// Progress returns the cached Progress for project, or an idle, zero-value
// one if none has been recorded yet.
func (c *Caches) Progress(project string) Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.progress.Get(project); ok {
		return *p
	}
	return Progress{Status: StatusIdle}
}

// setProgress records p as project's current progress.
func (c *Caches) setProgress(project string, p Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress.Add(project, &p)
}

// startProgress marks project as indexing and resets its counters.
func (c *Caches) startProgress(project string, total int) {
	now := time.Now()
	c.setProgress(project, Progress{
		Status:    StatusIndexing,
		Total:     total,
		StartedAt: now,
		UpdatedAt: now,
	})
}

// advanceProgress bumps the processed counter for an in-flight run.
func (c *Caches) advanceProgress(project string, processed int) {
	p := c.Progress(project)
	p.Processed = processed
	p.UpdatedAt = time.Now()
	c.setProgress(project, p)
}

// finishProgress terminally marks project's run completed or errored.
func (c *Caches) finishProgress(project string, err error) {
	p := c.Progress(project)
	p.UpdatedAt = time.Now()
	if err != nil {
		p.Status = StatusError
		p.LastError = err.Error()
	} else {
		p.Status = StatusCompleted
		p.LastError = ""
	}
	c.setProgress(project, p)
}

// IsIndexing reports whether project has a run in flight, the advisory
// exclusive-writer lock spec.md documents for the FileHashIndex cache.
func (c *Caches) IsIndexing(project string) bool {
	return c.Progress(project).Status == StatusIndexing
}

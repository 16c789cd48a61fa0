package indexer

import "time"

// FileHashEntry is what the FileHashIndex remembers about one file as of
// its last successful index.
type FileHashEntry struct {
	MD5        string
	IndexedAt  time.Time
	ChunkCount int
}

// FileHashIndex maps a file's path (relative to the project root) to its
// last-indexed state. It lives only in process memory, keyed by project;
// it is never written to the vector store, which stays authoritative.
type FileHashIndex map[string]FileHashEntry

// Status is the lifecycle state of one project's index run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusIndexing  Status = "indexing"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Progress is the live state of a project's most recent (or in-flight)
// index run. Like FileHashIndex, it is process-memory state only; readers
// see the last writer's value, with no stronger atomicity guarantee.
type Progress struct {
	Status    Status
	Total     int
	Processed int
	StartedAt time.Time
	UpdatedAt time.Time
	LastError string
}

// Request describes one call to IndexProject.
type Request struct {
	ProjectName     string
	ProjectPath     string
	Patterns        []string
	ExcludePatterns []string
	Force           bool
	// Incremental defaults to true when nil; set to a false pointer to
	// force reprocessing every accepted file without clearing the hash
	// index outright (Force does that, and implies this).
	Incremental *bool

	// CodebaseCollectionOverride, when set, replaces the default
	// {project}_codebase collection name for this run only. The
	// zero-downtime reindexer uses this to write the legacy union into a
	// shadow collection instead of the live one.
	CodebaseCollectionOverride string

	// ForceLegacyCodebase writes to the legacy collection for this run
	// even when the service was built with legacyCodebaseEnabled=false.
	// Used by the reindexer, which always rebuilds the alias's target
	// regardless of whether the union collection is otherwise in use.
	ForceLegacyCodebase bool
}

// Result summarizes one IndexProject run.
type Result struct {
	FilesIndexed  int
	FilesRemoved  int
	FilesSkipped  int
	ChunksIndexed int
	ChunksSkipped int
	Errors        int
	Progress      Progress
}

package vectorstore

import "time"

// SparseVector is a lexical term vector: parallel index/value pairs.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// Point is a single vector record to upsert. Dense is required; Sparse is
// populated only when writing to a sparse-capable collection via
// UpsertSparse. Payload holds the filterable/returnable fields named in
// the collection's payload-index set.
type Point struct {
	ID      string
	Dense   []float32
	Sparse  *SparseVector
	Payload map[string]any
}

// SearchResult is a single scored point returned from a query.
type SearchResult struct {
	ID      string
	Score   float32
	Payload map[string]any
}

// GroupedResult is one group produced by SearchGroups: the group's key
// value and its hits, best-scoring first.
type GroupedResult struct {
	GroupValue string
	Hits       []SearchResult
}

// CollectionInfo reports basic metadata about a collection.
type CollectionInfo struct {
	Name         string
	PointCount   int
	VectorSize   int
	HasSparse    bool
	Quantized    bool
	SegmentCount int
}

// AggregateStats summarizes a collection for dashboards and health checks.
type AggregateStats struct {
	TotalVectors    int
	LanguageCounts  map[string]int
	UniqueFiles     int
	MostRecentIndex time.Time
	Truncated       bool
}

// Cluster is a group of near-duplicate or topically related points found
// by FindClusters/FindDuplicates.
type Cluster struct {
	SeedID    string
	MemberIDs []string
	Score     float32
}

// Filter describes a conjunctive (Must), disjunctive (Should), or negated
// (MustNot) set of field-match conditions. Each condition is a field name
// to an exact-match value (string, bool, or a []string for "match any").
type Filter struct {
	Must    map[string]any
	Should  map[string]any
	MustNot map[string]any
}

// IsEmpty reports whether the filter has no conditions at all.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Must) == 0 && len(f.Should) == 0 && len(f.MustNot) == 0)
}

// PayloadIndexFields lists every payload field the facade installs a
// filterable index on when a collection is created. See spec §4.1.
var PayloadIndexFields = []string{
	"language", "file", "type", "spaceKey", "project", "source",
	"validated", "symbols", "chunkType", "fromFile", "toFile",
	"edgeType", "layer", "service", "gitCommit",
}

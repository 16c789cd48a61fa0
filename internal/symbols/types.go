package symbols

import "time"

// Record is one indexed symbol: a function, method, class, interface,
// type, enum, const, or variable found in a file.
type Record struct {
	Name      string
	Kind      string
	File      string
	StartLine int
	EndLine   int
	Signature string
	Exported  bool
	Project   string
	IndexedAt time.Time
}

// Match is a Record returned from a similarity query, carrying its score.
type Match struct {
	Record
	Score float32
}

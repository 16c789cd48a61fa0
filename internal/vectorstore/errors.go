package vectorstore

import "errors"

// Sentinel errors returned by Store implementations. Callers should use
// errors.Is against these rather than matching on message text.
var (
	ErrInvalidConfig         = errors.New("vectorstore: invalid configuration")
	ErrInvalidCollectionName = errors.New("vectorstore: invalid collection name")
	ErrCollectionNotFound    = errors.New("vectorstore: collection not found")
	ErrCollectionExists      = errors.New("vectorstore: collection already exists")
	ErrEmptyPoints           = errors.New("vectorstore: points cannot be empty")
	ErrConnectionFailed      = errors.New("vectorstore: connection failed")
	ErrAliasNotFound         = errors.New("vectorstore: alias not found")
	ErrSnapshotNotFound      = errors.New("vectorstore: snapshot not found")
)

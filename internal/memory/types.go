package memory

import (
	"errors"
	"strings"
	"time"
)

// Type enumerates the kinds of memory this service stores.
type Type string

const (
	TypeDecision     Type = "decision"
	TypeInsight      Type = "insight"
	TypeContext      Type = "context"
	TypeTodo         Type = "todo"
	TypeConversation Type = "conversation"
	TypeNote         Type = "note"
)

// TodoStatus is a todo memory's lifecycle state.
type TodoStatus string

const (
	StatusPending    TodoStatus = "pending"
	StatusInProgress TodoStatus = "in_progress"
	StatusDone       TodoStatus = "done"
	StatusCancelled  TodoStatus = "cancelled"
)

// autoSourcePrefix marks a memory as machine-generated, routing it to
// quarantine instead of the durable collection.
const autoSourcePrefix = "auto_"

// defaultConfidence is used when a memory, whatever its source, is
// created without a positive confidence.
const defaultConfidence = 0.5

var (
	ErrEmptyContent = errors.New("memory: content cannot be empty")
	ErrInvalidType  = errors.New("memory: invalid type")
	ErrNotFound     = errors.New("memory: not found")
)

// StatusEntry is one entry in a todo's append-only status history.
type StatusEntry struct {
	Status TodoStatus `json:"status"`
	At     time.Time  `json:"at"`
}

// Memory is one durable or quarantined memory record.
type Memory struct {
	ID        string
	ProjectID string
	Type      Type
	Content   string
	Tags      []string
	RelatedTo string
	CreatedAt time.Time
	UpdatedAt time.Time
	Metadata  map[string]any

	Status        TodoStatus
	StatusHistory []StatusEntry

	Source     string
	Confidence float64
	Validated  bool

	// Score is the similarity score from the recall that produced this
	// Memory. Zero when the Memory was not returned by a search (e.g.
	// GetQuarantined). Not persisted to the store.
	Score float32
}

// New builds a Memory with generated timestamps, routing metadata, and
// (for todos) an initial pending status with a history entry.
func New(projectID string, memType Type, content, source string, confidence float64) (*Memory, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if !validType(memType) {
		return nil, ErrInvalidType
	}

	now := time.Now()
	m := &Memory{
		ProjectID: projectID,
		Type:      memType,
		Content:   content,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if strings.HasPrefix(source, autoSourcePrefix) {
		m.Validated = false
		if confidence > 0 {
			m.Confidence = confidence
		} else {
			m.Confidence = defaultConfidence
		}
	} else {
		m.Validated = true
		if confidence > 0 {
			m.Confidence = confidence
		} else {
			m.Confidence = defaultConfidence
		}
	}

	if memType == TypeTodo {
		m.Status = StatusPending
		m.StatusHistory = []StatusEntry{{Status: StatusPending, At: now}}
	}

	return m, nil
}

// IsQuarantined reports whether m belongs in the quarantine collection
// based on its source.
func (m *Memory) IsQuarantined() bool {
	return strings.HasPrefix(m.Source, autoSourcePrefix)
}

// AdvanceStatus appends a new status to a todo's history. Returns
// ErrInvalidType if m is not a todo.
func (m *Memory) AdvanceStatus(status TodoStatus) error {
	if m.Type != TypeTodo {
		return ErrInvalidType
	}
	m.Status = status
	m.StatusHistory = append(m.StatusHistory, StatusEntry{Status: status, At: time.Now()})
	m.UpdatedAt = time.Now()
	return nil
}

func validType(t Type) bool {
	switch t {
	case TypeDecision, TypeInsight, TypeContext, TypeTodo, TypeConversation, TypeNote:
		return true
	default:
		return false
	}
}

package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// defaultRecallLimit is used when a caller passes limit<=0.
const defaultRecallLimit = 10

// Service stores and recalls memories in a project's durable and
// quarantine collections.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	logger   *zap.Logger
}

// NewService builds a memory Service.
func NewService(store vectorstore.Store, embedder embeddings.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

// Record ingests m, routing to quarantine when its source marks it
// machine-generated and to the durable collection otherwise.
func (s *Service) Record(ctx context.Context, m *Memory) error {
	if m == nil {
		return fmt.Errorf("memory: nil memory")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	suffix := project.SuffixMemory
	if m.IsQuarantined() {
		suffix = project.SuffixMemoryPending
	}
	collection, err := project.CollectionName(m.ProjectID, suffix)
	if err != nil {
		return err
	}

	dense, err := s.embedder.Embed(ctx, m.Content)
	if err != nil {
		return fmt.Errorf("embedding memory content: %w", err)
	}

	payload, err := toPayload(m)
	if err != nil {
		return fmt.Errorf("building memory payload: %w", err)
	}

	if err := s.store.Ensure(ctx, collection); err != nil {
		return fmt.Errorf("ensuring %s: %w", collection, err)
	}
	if err := s.store.Upsert(ctx, collection, []vectorstore.Point{{ID: m.ID, Dense: dense, Payload: payload}}); err != nil {
		return fmt.Errorf("storing memory: %w", err)
	}

	s.logger.Debug("memory recorded",
		zap.String("id", m.ID), zap.String("project", m.ProjectID),
		zap.String("type", string(m.Type)), zap.Bool("quarantined", m.IsQuarantined()))
	return nil
}

// RecallDurable runs a semantic search over the durable collection.
// Enrichment paths (the context pack builder's guardrails) must use this
// and never RecallQuarantine.
func (s *Service) RecallDurable(ctx context.Context, projectID, query string, memType Type, tags []string, limit int) ([]Memory, error) {
	return s.recall(ctx, projectID, project.SuffixMemory, query, memType, tags, limit)
}

// RecallQuarantine runs a semantic search over the quarantine collection.
func (s *Service) RecallQuarantine(ctx context.Context, projectID, query string, memType Type, tags []string, limit int) ([]Memory, error) {
	return s.recall(ctx, projectID, project.SuffixMemoryPending, query, memType, tags, limit)
}

func (s *Service) recall(ctx context.Context, projectID string, suffix project.Suffix, query string, memType Type, tags []string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = defaultRecallLimit
	}
	collection, err := project.CollectionName(projectID, suffix)
	if err != nil {
		return nil, err
	}

	dense, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding recall query: %w", err)
	}

	filter := recallFilter(memType, tags)
	results, err := s.store.Search(ctx, collection, dense, limit, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", collection, err)
	}

	memories := make([]Memory, 0, len(results))
	for _, r := range results {
		m, err := fromResult(r)
		if err != nil {
			s.logger.Warn("skipping unparseable memory", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		m.Score = r.Score
		memories = append(memories, *m)
	}
	return memories, nil
}

func recallFilter(memType Type, tags []string) *vectorstore.Filter {
	var filter vectorstore.Filter
	if memType != "" {
		filter.Must = map[string]any{"type": string(memType)}
	}
	if len(tags) > 0 {
		filter.Should = map[string]any{"tags": tags}
	}
	if filter.IsEmpty() {
		return nil
	}
	return &filter
}

// GetQuarantined locates a quarantined memory by ID.
func (s *Service) GetQuarantined(ctx context.Context, projectID, id string) (*Memory, error) {
	collection, err := project.CollectionName(projectID, project.SuffixMemoryPending)
	if err != nil {
		return nil, err
	}
	results, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{Must: map[string]any{"id": id}}, 1)
	if err != nil {
		return nil, fmt.Errorf("scrolling quarantine for %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return fromResult(results[0])
}

// DeleteQuarantined removes a quarantined memory by ID. Best-effort: a
// missing point is not an error.
func (s *Service) DeleteQuarantined(ctx context.Context, projectID, id string) error {
	collection, err := project.CollectionName(projectID, project.SuffixMemoryPending)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, collection, []string{id})
}

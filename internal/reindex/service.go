package reindex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/indexer"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// timestampLayout names the shadow collection uniquely per run.
const timestampLayout = "20060102150405"

// Service runs full, zero-downtime rebuilds of a project's legacy
// codebase collection behind a stable alias.
type Service struct {
	store   vectorstore.Store
	indexer *indexer.Service
	logger  *zap.Logger
	onFlip  func(alias string)
}

// NewService builds a reindexer over store and an indexer.Service that
// already knows how to parse, embed, and upsert a project's files.
// onFlip, if non-nil, is called with the alias name right after a
// successful flip so a caller-owned retrieval cache can invalidate
// anything keyed by it; pass nil if no such cache exists yet.
func NewService(store vectorstore.Store, idx *indexer.Service, logger *zap.Logger, onFlip func(alias string)) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, indexer: idx, logger: logger, onFlip: onFlip}
}

// Reindex builds a fresh copy of req's project into a timestamped shadow
// collection, then atomically points the alias at it and best-effort
// deletes whatever the alias pointed at before. If the build fails, or
// indexes zero files, the shadow collection is removed and the alias is
// left untouched.
func (s *Service) Reindex(ctx context.Context, req Request) (*Result, error) {
	if req.ProjectName == "" {
		return nil, fmt.Errorf("reindex: project name is required")
	}

	alias := req.AliasName
	if alias == "" {
		var err error
		alias, err = project.CollectionName(req.ProjectName, project.SuffixCodebase)
		if err != nil {
			return nil, err
		}
	}

	aliases, err := s.store.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	previousTarget := aliases[alias]

	shadow := fmt.Sprintf("%s_%s", alias, timestamp())

	result := &Result{AliasName: alias, NewCollection: shadow, PreviousTarget: previousTarget}

	// Typed/symbol/graph collections are live, not shadowed, so clear
	// them first: indexFile's non-incremental path assumes a clean slate
	// and won't delete-before-insert on its own, and this is a full
	// rebuild rather than a diff against what's already there.
	if err := s.indexer.ClearTypedCollections(ctx, req.ProjectName); err != nil {
		return result, fmt.Errorf("clearing live collections before rebuild: %w", err)
	}

	incremental := false
	indexResult, err := s.indexer.IndexProject(ctx, indexer.Request{
		ProjectName:                req.ProjectName,
		ProjectPath:                req.ProjectPath,
		Patterns:                   req.Patterns,
		ExcludePatterns:            req.ExcludePatterns,
		Incremental:                &incremental,
		CodebaseCollectionOverride: shadow,
		ForceLegacyCodebase:        true,
	})
	if err != nil {
		s.cleanupShadow(ctx, shadow)
		return result, fmt.Errorf("building %s: %w", shadow, err)
	}

	result.FilesIndexed = indexResult.FilesIndexed
	result.ChunksIndexed = indexResult.ChunksIndexed
	result.Errors = indexResult.Errors

	if indexResult.FilesIndexed == 0 {
		s.cleanupShadow(ctx, shadow)
		return result, fmt.Errorf("reindex of %s indexed zero files, discarding %s", req.ProjectName, shadow)
	}

	if err := s.flipAlias(ctx, alias, previousTarget, shadow); err != nil {
		s.cleanupShadow(ctx, shadow)
		return result, fmt.Errorf("flipping alias %s: %w", alias, err)
	}
	result.AliasFlipped = true
	if s.onFlip != nil {
		s.onFlip(alias)
	}

	if previousTarget != "" && previousTarget != shadow {
		if err := s.store.DeleteCollection(ctx, previousTarget); err != nil {
			s.logger.Warn("deleting previous collection", zap.String("collection", previousTarget), zap.Error(err))
		} else {
			result.PreviousDeleted = true
		}
	}

	return result, nil
}

func (s *Service) flipAlias(ctx context.Context, alias, previousTarget, shadow string) error {
	if previousTarget == "" {
		return s.store.CreateAlias(ctx, alias, shadow)
	}
	return s.store.UpdateAlias(ctx, alias, shadow)
}

func (s *Service) cleanupShadow(ctx context.Context, shadow string) {
	exists, err := s.store.CollectionExists(ctx, shadow)
	if err != nil || !exists {
		return
	}
	if err := s.store.DeleteCollection(ctx, shadow); err != nil {
		s.logger.Warn("cleaning up orphaned shadow collection", zap.String("collection", shadow), zap.Error(err))
	}
}

func timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

package indexer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/anchor"
	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/graph"
	"github.com/kiverlab/codegraph/internal/parser"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/symbols"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// fileBatchSize is how many changed files are grouped into one parse/
// graph/hash-diff pass.
const fileBatchSize = 20

// embedBatchSize is how many anchored chunk texts are embedded per call.
const embedBatchSize = 100

// maxChunkChars is the oversize guard: chunks longer than this are
// skipped rather than sent to the embedder.
const maxChunkChars = 40000

// Service runs the indexing algorithm: file discovery, change detection,
// parsing, graph/symbol indexing, anchoring, embedding, and upsert.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	parsers  *parser.Registry
	symbols  *symbols.Service
	graph    *graph.Service
	caches   *Caches
	logger   *zap.Logger

	legacyCodebaseEnabled bool
}

// NewService wires an indexer over its collaborators. caches is the
// process-wide FileHashIndex/IndexProgress store; pass one built with
// NewCaches and shared across every IndexProject caller in the process.
func NewService(
	store vectorstore.Store,
	embedder embeddings.Provider,
	parsers *parser.Registry,
	symbolsSvc *symbols.Service,
	graphSvc *graph.Service,
	caches *Caches,
	logger *zap.Logger,
	legacyCodebaseEnabled bool,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:                 store,
		embedder:              embedder,
		parsers:               parsers,
		symbols:               symbolsSvc,
		graph:                 graphSvc,
		caches:                caches,
		logger:                logger,
		legacyCodebaseEnabled: legacyCodebaseEnabled,
	}
}

type pendingFile struct {
	relPath string
	md5     string
}

// IndexProject runs the full indexing algorithm for req.
func (s *Service) IndexProject(ctx context.Context, req Request) (*Result, error) {
	if req.ProjectName == "" {
		return nil, fmt.Errorf("indexer: project name is required")
	}
	if req.ProjectPath == "" {
		return nil, fmt.Errorf("indexer: project path is required")
	}

	incremental := true
	if req.Incremental != nil {
		incremental = *req.Incremental
	}

	if req.Force {
		if err := s.clearProject(ctx, req.ProjectName); err != nil {
			return nil, fmt.Errorf("force-clearing %s: %w", req.ProjectName, err)
		}
		s.caches.SetHashIndex(req.ProjectName, FileHashIndex{})
	}

	w, err := newWalker(req.ProjectPath, req.Patterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	accepted, err := w.discover()
	if err != nil {
		return nil, err
	}

	prevHashes := s.caches.HashIndex(req.ProjectName)
	newHashes := FileHashIndex{}
	var changed []pendingFile
	acceptedSet := map[string]bool{}

	for _, rel := range accepted {
		acceptedSet[rel] = true

		sum, err := hashFile(filepath.Join(req.ProjectPath, rel))
		if err != nil {
			s.logger.Warn("hashing file", zap.String("file", rel), zap.Error(err))
			continue
		}

		prev, existed := prevHashes[rel]
		if incremental && existed && prev.MD5 == sum {
			newHashes[rel] = prev
			continue
		}
		changed = append(changed, pendingFile{relPath: rel, md5: sum})
	}

	var removed []string
	for rel := range prevHashes {
		if !acceptedSet[rel] {
			removed = append(removed, rel)
		}
	}

	s.caches.startProgress(req.ProjectName, len(changed))

	result := &Result{FilesSkipped: len(accepted) - len(changed)}

	for _, rel := range removed {
		if err := s.removeFile(ctx, req.ProjectName, rel); err != nil {
			s.logger.Warn("removing file from index", zap.String("file", rel), zap.Error(err))
		}
		result.FilesRemoved++
	}

	gitHash := gitShortHash(req.ProjectPath)

	for batchStart := 0; batchStart < len(changed); batchStart += fileBatchSize {
		end := batchStart + fileBatchSize
		if end > len(changed) {
			end = len(changed)
		}
		batch := changed[batchStart:end]

		if err := ctx.Err(); err != nil {
			s.caches.finishProgress(req.ProjectName, err)
			return result, err
		}

		for _, pf := range batch {
			chunks, entry, err := s.indexFile(ctx, req, pf, gitHash, incremental, result)
			if err != nil {
				s.logger.Warn("indexing file", zap.String("file", pf.relPath), zap.Error(err))
				result.Errors++
				continue
			}
			newHashes[pf.relPath] = entry
			result.FilesIndexed++
			result.ChunksIndexed += chunks
		}

		s.caches.advanceProgress(req.ProjectName, batchStart+len(batch))
	}

	s.caches.SetHashIndex(req.ProjectName, mergeHashes(prevHashes, newHashes, removed))
	s.caches.finishProgress(req.ProjectName, nil)

	result.Progress = s.caches.Progress(req.ProjectName)
	return result, nil
}

// mergeHashes folds newHashes on top of prevHashes, dropping removed
// files, so unchanged entries skipped this run aren't lost.
func mergeHashes(prev, updates FileHashIndex, removed []string) FileHashIndex {
	merged := FileHashIndex{}
	for k, v := range prev {
		merged[k] = v
	}
	for _, r := range removed {
		delete(merged, r)
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// indexFile parses one file, indexes its symbols and graph edges, anchors
// and embeds its chunks, and upserts them into the typed/legacy
// collections. It returns the number of chunks successfully indexed and
// the FileHashEntry to remember for this file.
func (s *Service) indexFile(
	ctx context.Context,
	req Request,
	pf pendingFile,
	gitHash string,
	incremental bool,
	result *Result,
) (int, FileHashEntry, error) {
	projectName := req.ProjectName
	absPath := filepath.Join(req.ProjectPath, pf.relPath)
	content, err := os.ReadFile(absPath)
	if err != nil {
		return 0, FileHashEntry{}, fmt.Errorf("reading %s: %w", pf.relPath, err)
	}

	chunks, err := s.parsers.Parse(ctx, pf.relPath, content)
	if err != nil {
		return 0, FileHashEntry{}, fmt.Errorf("parsing %s: %w", pf.relPath, err)
	}

	if incremental {
		if err := s.removeFile(ctx, projectName, pf.relPath); err != nil {
			return 0, FileHashEntry{}, fmt.Errorf("clearing prior chunks for %s: %w", pf.relPath, err)
		}
	}

	lines := strings.Split(string(content), "\n")
	var allSymbols []parser.Symbol
	for _, c := range chunks {
		allSymbols = append(allSymbols, c.Symbols...)
	}
	if err := s.symbols.IndexFile(ctx, projectName, pf.relPath, allSymbols, lines); err != nil {
		s.logger.Warn("indexing symbols", zap.String("file", pf.relPath), zap.Error(err))
	}

	if err := s.indexEdges(ctx, projectName, pf.relPath, content); err != nil {
		s.logger.Debug("indexing graph edges", zap.String("file", pf.relPath), zap.Error(err))
	}

	chunkKind := parser.ClassifyFile(pf.relPath)
	layer := parser.ClassifyLayer(pf.relPath)
	language := parser.LanguageForPath(pf.relPath)

	indexed, err := s.upsertChunks(ctx, req, pf.relPath, chunkKind, layer, language, gitHash, chunks, result)
	if err != nil {
		return indexed, FileHashEntry{}, err
	}

	return indexed, FileHashEntry{MD5: pf.md5, ChunkCount: indexed}, nil
}

// indexEdges extracts this file's raw edges and resolves each ToRef
// against the best-effort guess of its target file, then indexes the
// resolved set through the graph store. Unresolvable refs (third-party
// imports, stdlib packages) are dropped; only project-relative
// references become edges.
func (s *Service) indexEdges(ctx context.Context, projectName, relPath string, content []byte) error {
	raw, err := s.parsers.ExtractEdges(ctx, relPath, content)
	if err != nil {
		return err
	}

	edges := make([]graph.Edge, 0, len(raw))
	for _, r := range raw {
		target := resolveRef(relPath, r.ToRef)
		if target == "" {
			continue
		}
		edges = append(edges, graph.Edge{
			FromFile:   relPath,
			FromSymbol: r.FromSymbol,
			ToFile:     target,
			EdgeType:   string(r.EdgeType),
		})
	}

	return s.graph.IndexFileEdges(ctx, projectName, relPath, edges)
}

// resolveRef turns an extracted import/base-class reference into a
// project-relative path when it is a relative specifier (starting with
// "."), joined onto the importing file's directory with no extension
// added. Every other reference, bare identifiers and third-party or
// stdlib imports alike, returns "". This is a heuristic: accurate
// resolution would require a full module graph, which is out of scope.
func resolveRef(fromFile, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, ".") {
		dir := filepath.Dir(fromFile)
		joined := filepath.ToSlash(filepath.Join(dir, ref))
		return joined
	}
	return ""
}

// upsertChunks anchors, embeds, and upserts chunks for one file into the
// legacy codebase collection (if enabled) and the typed chunkKind
// collection. Chunks over maxChunkChars are skipped (logged warn).
func (s *Service) upsertChunks(
	ctx context.Context,
	req Request,
	relPath string,
	chunkKind parser.ChunkKind,
	layer parser.Layer,
	language, gitHash string,
	chunks []parser.Chunk,
	result *Result,
) (int, error) {
	projectName := req.ProjectName
	var accepted []parser.Chunk
	for _, c := range chunks {
		if len(c.Content) > maxChunkChars {
			s.logger.Warn("skipping oversize chunk", zap.String("file", relPath), zap.Int("chars", len(c.Content)))
			result.ChunksSkipped++
			continue
		}
		accepted = append(accepted, c)
	}
	if len(accepted) == 0 {
		return 0, nil
	}

	targets, err := s.targetCollections(req, chunkKind)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for start := 0; start < len(accepted); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(accepted) {
			end = len(accepted)
		}
		sub := accepted[start:end]

		texts := make([]string, len(sub))
		for i, c := range sub {
			texts[i] = anchor.Anchor(c.Content, anchor.Header{
				Path:      relPath,
				ChunkKind: chunkKind,
				Layer:     layer,
				Service:   deriveServiceName(c),
				Symbols:   symbolNames(c.Symbols),
				Imports:   c.Imports,
			})
		}

		fulls, err := s.embedBatch(ctx, texts)
		if err != nil {
			return indexed, fmt.Errorf("embedding %s: %w", relPath, err)
		}

		indexedAt := time.Now().UTC().Format(time.RFC3339)
		points := make([]vectorstore.Point, 0, len(sub))
		for i, c := range sub {
			if fulls[i].Dense == nil {
				result.Errors++
				continue
			}
			points = append(points, vectorstore.Point{
				ID:    uuid.NewString(),
				Dense: fulls[i].Dense,
				Payload: map[string]any{
					"file":        relPath,
					"language":    language,
					"chunkType":   string(chunkKind),
					"layer":       string(layer),
					"service":     deriveServiceName(c),
					"startLine":   c.StartLine,
					"endLine":     c.EndLine,
					"symbols":     symbolNames(c.Symbols),
					"imports":     c.Imports,
					"gitCommit":   gitHash,
					"content":     c.Content,
					"project":     projectName,
					"indexedAt":   indexedAt,
					"chunkIndex":  start + i,
					"totalChunks": len(accepted),
				},
			})
			if s.embedder.SparseEnabled() && fulls[i].Sparse != nil {
				points[len(points)-1].Sparse = &vectorstore.SparseVector{
					Indices: fulls[i].Sparse.Indices,
					Values:  fulls[i].Sparse.Values,
				}
			}
		}
		if len(points) == 0 {
			continue
		}

		if err := s.upsertToTargets(ctx, targets, points); err != nil {
			return indexed, err
		}
		indexed += len(points)
	}

	return indexed, nil
}

// targetCollections resolves the legacy codebase collection (if enabled,
// or forced, or overridden to a reindex shadow name) and the typed
// chunkKind collection (if not unknown) for the request's project.
func (s *Service) targetCollections(req Request, chunkKind parser.ChunkKind) ([]string, error) {
	var targets []string
	if s.legacyCodebaseEnabled || req.ForceLegacyCodebase {
		name := req.CodebaseCollectionOverride
		if name == "" {
			var err error
			name, err = project.CollectionName(req.ProjectName, project.SuffixCodebase)
			if err != nil {
				return nil, err
			}
		}
		targets = append(targets, name)
	}
	if chunkKind != parser.ChunkKindUnknown {
		name, err := project.ChunkCollectionName(req.ProjectName, string(chunkKind))
		if err != nil {
			return nil, err
		}
		targets = append(targets, name)
	}
	return targets, nil
}

// ClearTypedCollections wipes every typed chunk collection, the symbol
// index, and the graph store for projectName, leaving the legacy
// codebase collection untouched. The zero-downtime reindexer calls this
// before a full rebuild so the live typed/symbol/graph collections don't
// accumulate duplicates from files that didn't change, while the legacy
// union keeps serving traffic from its current alias target until the
// rebuild finishes and the alias flips.
func (s *Service) ClearTypedCollections(ctx context.Context, projectName string) error {
	for _, suffix := range project.ChunkSuffixes() {
		name, err := project.CollectionName(projectName, suffix)
		if err != nil {
			return err
		}
		if err := s.store.Clear(ctx, name); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
	}
	for _, suffix := range []project.Suffix{project.SuffixSymbols, project.SuffixGraph} {
		name, err := project.CollectionName(projectName, suffix)
		if err != nil {
			return err
		}
		if err := s.store.Clear(ctx, name); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
	}
	return nil
}

func (s *Service) upsertToTargets(ctx context.Context, targets []string, points []vectorstore.Point) error {
	sparse := s.embedder.SparseEnabled()
	for _, collection := range targets {
		if sparse {
			if err := s.store.EnsureWithSparse(ctx, collection); err != nil {
				return fmt.Errorf("ensuring %s: %w", collection, err)
			}
			if err := s.store.UpsertSparse(ctx, collection, points); err != nil {
				return fmt.Errorf("upserting sparse into %s: %w", collection, err)
			}
			continue
		}
		if err := s.store.Ensure(ctx, collection); err != nil {
			return fmt.Errorf("ensuring %s: %w", collection, err)
		}
		if err := s.store.Upsert(ctx, collection, points); err != nil {
			return fmt.Errorf("upserting into %s: %w", collection, err)
		}
	}
	return nil
}

// embedBatch embeds texts together, falling back to one-at-a-time
// embedding on a batch error so a single bad chunk doesn't sink the rest.
func (s *Service) embedBatch(ctx context.Context, texts []string) ([]embeddings.Full, error) {
	fulls, err := s.embedder.EmbedBatchFull(ctx, texts)
	if err == nil {
		return fulls, nil
	}
	s.logger.Warn("batch embedding failed, falling back to sequential", zap.Error(err))

	fulls = make([]embeddings.Full, len(texts))
	for i, t := range texts {
		f, err := s.embedder.EmbedFull(ctx, t)
		if err != nil {
			s.logger.Warn("embedding chunk failed, skipping", zap.Int("index", i), zap.Error(err))
			continue
		}
		fulls[i] = f
	}
	return fulls, nil
}

// removeFile deletes every prior chunk, symbol, and outgoing graph edge
// recorded for relPath across every chunk-kind collection a project owns.
func (s *Service) removeFile(ctx context.Context, projectName, relPath string) error {
	filter := &vectorstore.Filter{Must: map[string]any{"file": relPath}}

	for _, suffix := range project.ChunkSuffixes() {
		name, err := project.CollectionName(projectName, suffix)
		if err != nil {
			return err
		}
		if err := s.store.DeleteByFilter(ctx, name, filter); err != nil {
			return fmt.Errorf("clearing %s from %s: %w", relPath, name, err)
		}
	}
	if s.legacyCodebaseEnabled {
		name, err := project.CollectionName(projectName, project.SuffixCodebase)
		if err != nil {
			return err
		}
		if err := s.store.DeleteByFilter(ctx, name, filter); err != nil {
			return fmt.Errorf("clearing %s from %s: %w", relPath, name, err)
		}
	}
	if err := s.symbols.ClearFile(ctx, projectName, relPath); err != nil {
		return fmt.Errorf("clearing symbols for %s: %w", relPath, err)
	}
	if err := s.graph.IndexFileEdges(ctx, projectName, relPath, nil); err != nil {
		return fmt.Errorf("clearing edges for %s: %w", relPath, err)
	}
	return nil
}

// clearProject wipes every collection a project owns, used by Force.
func (s *Service) clearProject(ctx context.Context, projectName string) error {
	names, err := project.AllCollectionNames(projectName)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.store.Clear(ctx, name); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
	}
	return nil
}

func hashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:]), nil
}

func symbolNames(syms []parser.Symbol) []string {
	names := make([]string, 0, len(syms))
	for _, sym := range syms {
		names = append(names, sym.Name)
	}
	return names
}

// deriveServiceName returns the name of the chunk's primary type-like
// symbol (struct, class, interface), or "" if it defines none. This is
// the "service/class name" field of an indexed chunk's payload.
func deriveServiceName(c parser.Chunk) string {
	for _, sym := range c.Symbols {
		switch sym.Kind {
		case "struct", "class", "interface":
			return sym.Name
		}
	}
	return ""
}

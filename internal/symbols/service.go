package symbols

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/embeddings"
	"github.com/kiverlab/codegraph/internal/parser"
	"github.com/kiverlab/codegraph/internal/project"
	"github.com/kiverlab/codegraph/internal/vectorstore"
)

// defaultFindThreshold is the score floor FindSymbol applies to every
// query; callers cannot pick another.
const defaultFindThreshold = 0.5

// crossFileContextLimit caps the number of "// from {file}: {signature}"
// lines CrossFileContext returns.
const crossFileContextLimit = 10

// Service indexes and queries symbols for a project.
type Service struct {
	store    vectorstore.Store
	embedder embeddings.Provider
	logger   *zap.Logger
}

// NewService builds a symbol index service over store and embedder.
func NewService(store vectorstore.Store, embedder embeddings.Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, embedder: embedder, logger: logger}
}

// ClearFile deletes every symbol currently indexed for file.
func (s *Service) ClearFile(ctx context.Context, projectID, file string) error {
	collection, err := project.CollectionName(projectID, project.SuffixSymbols)
	if err != nil {
		return err
	}
	return s.store.DeleteByFilter(ctx, collection, &vectorstore.Filter{Must: map[string]any{"file": file}})
}

// IndexFile replaces a file's symbols: it clears the existing set, then
// embeds and upserts one point per symbol in syms. lines is the file's
// content split by newline, used for heuristic signature derivation.
func (s *Service) IndexFile(ctx context.Context, projectID, file string, syms []parser.Symbol, lines []string) error {
	if err := s.ClearFile(ctx, projectID, file); err != nil {
		return fmt.Errorf("clearing symbols for %s: %w", file, err)
	}
	if len(syms) == 0 {
		return nil
	}

	collection, err := project.CollectionName(projectID, project.SuffixSymbols)
	if err != nil {
		return err
	}
	if err := s.store.Ensure(ctx, collection); err != nil {
		return fmt.Errorf("ensuring %s: %w", collection, err)
	}

	now := time.Now().UTC()
	texts := make([]string, len(syms))
	records := make([]Record, len(syms))
	for i, sym := range syms {
		signature := deriveSignature(lines, sym)
		records[i] = Record{
			Name:      sym.Name,
			Kind:      sym.Kind,
			File:      file,
			StartLine: sym.StartLine,
			EndLine:   sym.EndLine,
			Signature: signature,
			Exported:  sym.Exported,
			Project:   projectID,
			IndexedAt: now,
		}
		texts[i] = sym.Kind + " " + sym.Name + " " + signature
	}

	dense, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding symbols for %s: %w", file, err)
	}

	points := make([]vectorstore.Point, len(records))
	for i, r := range records {
		points[i] = vectorstore.Point{
			ID:    uuid.NewString(),
			Dense: dense[i],
			Payload: map[string]any{
				"name":      r.Name,
				"kind":      r.Kind,
				"file":      r.File,
				"startLine": r.StartLine,
				"endLine":   r.EndLine,
				"signature": r.Signature,
				"exports":   r.Exported,
				"project":   r.Project,
				"indexedAt": r.IndexedAt.Format(time.RFC3339),
			},
		}
	}

	return s.store.Upsert(ctx, collection, points)
}

// FindSymbol searches for symbols matching name (and optionally kind),
// ordered by score, dropping results below defaultFindThreshold.
func (s *Service) FindSymbol(ctx context.Context, projectID, name, kind string, limit int) ([]Match, error) {
	collection, err := project.CollectionName(projectID, project.SuffixSymbols)
	if err != nil {
		return nil, err
	}

	dense, err := s.embedder.Embed(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("embedding query %q: %w", name, err)
	}

	filter := &vectorstore.Filter{Must: map[string]any{"project": projectID}}
	if kind != "" {
		filter.Must["kind"] = kind
	}

	threshold := float32(defaultFindThreshold)
	results, err := s.store.Search(ctx, collection, dense, limit, filter, &threshold)
	if err != nil {
		return nil, fmt.Errorf("searching symbols in %s: %w", collection, err)
	}
	return toMatches(results), nil
}

// FileExports returns every exported symbol defined in file.
func (s *Service) FileExports(ctx context.Context, projectID, file string) ([]Record, error) {
	collection, err := project.CollectionName(projectID, project.SuffixSymbols)
	if err != nil {
		return nil, err
	}
	results, err := s.store.Scroll(ctx, collection, &vectorstore.Filter{
		Must: map[string]any{"file": file, "exports": true},
	}, 100)
	if err != nil {
		return nil, fmt.Errorf("scrolling exports for %s: %w", file, err)
	}
	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, fromPayload(r.Payload))
	}
	return records, nil
}

// CrossFileContext composes up to crossFileContextLimit
// "// from {file}: {signature}" lines, one per exported symbol found in
// the files imports resolves to, for use when composing an anchor header.
func (s *Service) CrossFileContext(ctx context.Context, projectID, file string, imports []string) ([]string, error) {
	var lines []string
	for _, imp := range imports {
		if len(lines) >= crossFileContextLimit {
			break
		}
		exports, err := s.FileExports(ctx, projectID, imp)
		if err != nil {
			s.logger.Debug("cross-file context lookup failed", zap.String("file", file), zap.String("import", imp), zap.Error(err))
			continue
		}
		for _, r := range exports {
			if len(lines) >= crossFileContextLimit {
				break
			}
			lines = append(lines, fmt.Sprintf("// from %s: %s", r.File, r.Signature))
		}
	}
	return lines, nil
}

func toMatches(results []vectorstore.SearchResult) []Match {
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{Record: fromPayload(r.Payload), Score: r.Score})
	}
	return matches
}

func fromPayload(payload map[string]any) Record {
	r := Record{}
	if v, ok := payload["name"].(string); ok {
		r.Name = v
	}
	if v, ok := payload["kind"].(string); ok {
		r.Kind = v
	}
	if v, ok := payload["file"].(string); ok {
		r.File = v
	}
	if v, ok := toInt(payload["startLine"]); ok {
		r.StartLine = v
	}
	if v, ok := toInt(payload["endLine"]); ok {
		r.EndLine = v
	}
	if v, ok := payload["signature"].(string); ok {
		r.Signature = v
	}
	if v, ok := payload["exports"].(bool); ok {
		r.Exported = v
	}
	if v, ok := payload["project"].(string); ok {
		r.Project = v
	}
	if v, ok := payload["indexedAt"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			r.IndexedAt = ts
		}
	}
	return r
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

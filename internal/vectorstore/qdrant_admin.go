package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Delete removes points by ID.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	return s.retry(ctx, "delete", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
					Filter: &qdrant.Filter{
						Must: []*qdrant.Condition{{
							ConditionOneOf: &qdrant.Condition_HasId{
								HasId: idFilter(ids),
							},
						}},
					},
				},
			},
		})
		return err
	})
}

func idFilter(ids []string) *qdrant.HasIdCondition {
	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewIDUUID(id)
	}
	return &qdrant.HasIdCondition{HasId: pointIDs}
}

// DeleteByFilter removes every point matching filter.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, collection string, filter *Filter) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	qf := buildFilter(filter)
	if qf == nil {
		return fmt.Errorf("vectorstore: DeleteByFilter requires a non-empty filter")
	}
	return s.retry(ctx, "delete_by_filter", func() error {
		_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: qf},
			},
		})
		return err
	})
}

// Count returns the number of points matching filter.
func (s *QdrantStore) Count(ctx context.Context, collection string, filter *Filter) (int, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return 0, err
	}

	var count uint64
	err := s.retry(ctx, "count", func() error {
		res, err := s.client.Count(ctx, &qdrant.CountPoints{
			CollectionName: collection,
			Filter:         buildFilter(filter),
			Exact:          qdrant.PtrOf(true),
		})
		if err != nil {
			if status.Code(err) == grpccodes.NotFound {
				count = 0
				return nil
			}
			return err
		}
		count = res
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return int(count), nil
}

// Scroll pages through points matching filter without a similarity query,
// up to limit points. Returned SearchResults carry a payload and a score
// of 0.
func (s *QdrantStore) Scroll(ctx context.Context, collection string, filter *Filter, limit int) ([]SearchResult, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	var scrolled []*qdrant.RetrievedPoint
	err := s.retry(ctx, "scroll", func() error {
		res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         buildFilter(filter),
			Limit:          qdrant.PtrOf(uint32(limit)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		scrolled = res
		return nil
	})
	if err != nil {
		if status.Code(err) == grpccodes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("scrolling %s: %w", collection, err)
	}

	results := make([]SearchResult, 0, len(scrolled))
	for _, p := range scrolled {
		results = append(results, SearchResult{
			ID:      pointIDString(p.Id),
			Payload: fromQdrantPayload(p.Payload),
		})
	}
	return results, nil
}

// FacetCounts returns, for each candidate value, the count of points
// where field equals that value. Counts run in parallel.
func (s *QdrantStore) FacetCounts(ctx context.Context, collection, field string, candidateValues []string) (map[string]int, error) {
	results := make(map[string]int, len(candidateValues))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, value := range candidateValues {
		value := value
		g.Go(func() error {
			n, err := s.Count(gctx, collection, &Filter{Must: map[string]any{field: value}})
			if err != nil {
				return err
			}
			mu.Lock()
			results[value] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("facet counts on %s.%s: %w", collection, field, err)
	}
	return results, nil
}

// AggregateStats summarizes collection: total vectors, language
// breakdown, unique file count, and most recent indexed-at, bounded by a
// scroll of up to AggregateStatsScrollLimit points.
func (s *QdrantStore) AggregateStats(ctx context.Context, collection string) (*AggregateStats, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.AggregateStats")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	total, err := s.Count(ctx, collection, nil)
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", collection, err)
	}

	stats := &AggregateStats{TotalVectors: total, LanguageCounts: map[string]int{}}

	var scrolled []*qdrant.RetrievedPoint
	err = s.retry(ctx, "aggregate_stats:scroll", func() error {
		res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Limit:          qdrant.PtrOf(uint32(AggregateStatsScrollLimit)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		scrolled = res
		return nil
	})
	if err != nil {
		if status.Code(err) == grpccodes.NotFound {
			return stats, nil
		}
		return nil, fmt.Errorf("scrolling %s for stats: %w", collection, err)
	}

	files := make(map[string]bool)
	var mostRecent time.Time
	for _, point := range scrolled {
		payload := fromQdrantPayload(point.Payload)
		if lang, ok := payload["language"].(string); ok && lang != "" {
			stats.LanguageCounts[lang]++
		}
		if file, ok := payload["file"].(string); ok && file != "" {
			files[file] = true
		}
		if ts, ok := payload["indexedAt"].(string); ok {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil && parsed.After(mostRecent) {
				mostRecent = parsed
			}
		}
	}
	stats.UniqueFiles = len(files)
	stats.MostRecentIndex = mostRecent
	if total > AggregateStatsScrollLimit {
		stats.Truncated = true
		if len(scrolled) > 0 {
			ratio := float64(total) / float64(len(scrolled))
			stats.UniqueFiles = int(float64(stats.UniqueFiles) * ratio)
		}
	}

	span.SetStatus(codes.Ok, "success")
	return stats, nil
}

// Clear deletes every point via scroll-delete pages of ClearPageSize.
func (s *QdrantStore) Clear(ctx context.Context, collection string) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	for {
		var ids []*qdrant.PointId
		err := s.retry(ctx, "clear:scroll", func() error {
			res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
				CollectionName: collection,
				Limit:          qdrant.PtrOf(uint32(ClearPageSize)),
				WithPayload:    qdrant.NewWithPayload(false),
				WithVectors:    qdrant.NewWithVectors(false),
			})
			if err != nil {
				return err
			}
			for _, p := range res {
				ids = append(ids, p.Id)
			}
			return nil
		})
		if err != nil {
			if status.Code(err) == grpccodes.NotFound {
				return nil
			}
			return fmt.Errorf("clearing %s: %w", collection, err)
		}
		if len(ids) == 0 {
			return nil
		}

		err = s.retry(ctx, "clear:delete", func() error {
			_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
				CollectionName: collection,
				Points: &qdrant.PointsSelector{
					PointsSelectorOneOf: &qdrant.PointsSelector_Points{
						Points: &qdrant.PointsIdsList{Ids: ids},
					},
				},
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("clearing %s: %w", collection, err)
		}
		if len(ids) < ClearPageSize {
			return nil
		}
	}
}

// CreateAlias points alias at collection.
func (s *QdrantStore) CreateAlias(ctx context.Context, alias, collection string) error {
	return s.retry(ctx, "create_alias", func() error {
		_, err := s.client.UpdateCollectionAliases(ctx, &qdrant.ChangeAliases{
			Actions: []*qdrant.AliasOperations{{
				Action: &qdrant.AliasOperations_CreateAlias{
					CreateAlias: &qdrant.CreateAlias{CollectionName: collection, AliasName: alias},
				},
			}},
		})
		return err
	})
}

// UpdateAlias atomically repoints alias by deleting any existing alias
// with this name and creating it pointed at collection in a single
// request (Qdrant applies ChangeAliases actions atomically).
func (s *QdrantStore) UpdateAlias(ctx context.Context, alias, collection string) error {
	return s.retry(ctx, "update_alias", func() error {
		_, err := s.client.UpdateCollectionAliases(ctx, &qdrant.ChangeAliases{
			Actions: []*qdrant.AliasOperations{
				{
					Action: &qdrant.AliasOperations_DeleteAlias{
						DeleteAlias: &qdrant.DeleteAlias{AliasName: alias},
					},
				},
				{
					Action: &qdrant.AliasOperations_CreateAlias{
						CreateAlias: &qdrant.CreateAlias{CollectionName: collection, AliasName: alias},
					},
				},
			},
		})
		return err
	})
}

// DeleteAlias removes alias.
func (s *QdrantStore) DeleteAlias(ctx context.Context, alias string) error {
	return s.retry(ctx, "delete_alias", func() error {
		_, err := s.client.UpdateCollectionAliases(ctx, &qdrant.ChangeAliases{
			Actions: []*qdrant.AliasOperations{{
				Action: &qdrant.AliasOperations_DeleteAlias{
					DeleteAlias: &qdrant.DeleteAlias{AliasName: alias},
				},
			}},
		})
		return err
	})
}

// ListAliases returns every alias and its target collection.
func (s *QdrantStore) ListAliases(ctx context.Context) (map[string]string, error) {
	var resp *qdrant.ListAliasesResponse
	err := s.retry(ctx, "list_aliases", func() error {
		res, err := s.client.ListAliases(ctx, &qdrant.ListAliasesRequest{})
		if err != nil {
			return err
		}
		resp = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}
	out := make(map[string]string, len(resp.Aliases))
	for _, a := range resp.Aliases {
		out[a.AliasName] = a.CollectionName
	}
	return out, nil
}

// EnableQuantization turns on scalar int8 always-in-RAM quantization.
func (s *QdrantStore) EnableQuantization(ctx context.Context, collection string, quantile float32) error {
	return s.retry(ctx, "enable_quantization", func() error {
		_, err := s.client.UpdateCollection(ctx, &qdrant.UpdateCollection{
			CollectionName: collection,
			QuantizationConfig: qdrant.NewQuantizationScalar(&qdrant.ScalarQuantization{
				Type:      qdrant.QuantizationType_Int8,
				Quantile:  qdrant.PtrOf(quantile),
				AlwaysRam: qdrant.PtrOf(true),
			}),
		})
		return err
	})
}

// DisableQuantization turns quantization back off.
func (s *QdrantStore) DisableQuantization(ctx context.Context, collection string) error {
	return s.retry(ctx, "disable_quantization", func() error {
		_, err := s.client.UpdateCollection(ctx, &qdrant.UpdateCollection{
			CollectionName:     collection,
			QuantizationConfig: qdrant.NewQuantizationDisabled(),
		})
		return err
	})
}

// CreateSnapshot creates a point-in-time snapshot of collection.
func (s *QdrantStore) CreateSnapshot(ctx context.Context, collection string) (string, error) {
	var name string
	err := s.retry(ctx, "create_snapshot", func() error {
		res, err := s.client.CreateSnapshot(ctx, &qdrant.CreateSnapshotRequest{CollectionName: collection})
		if err != nil {
			return err
		}
		if res != nil && res.SnapshotDescription != nil {
			name = res.SnapshotDescription.Name
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("creating snapshot for %s: %w", collection, err)
	}
	return name, nil
}

// ListSnapshots lists snapshot names for collection.
func (s *QdrantStore) ListSnapshots(ctx context.Context, collection string) ([]string, error) {
	var names []string
	err := s.retry(ctx, "list_snapshots", func() error {
		res, err := s.client.ListSnapshots(ctx, &qdrant.ListSnapshotsRequest{CollectionName: collection})
		if err != nil {
			return err
		}
		for _, snap := range res {
			names = append(names, snap.Name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for %s: %w", collection, err)
	}
	return names, nil
}

// DeleteSnapshot deletes a named snapshot.
func (s *QdrantStore) DeleteSnapshot(ctx context.Context, collection, snapshotName string) error {
	return s.retry(ctx, "delete_snapshot", func() error {
		_, err := s.client.DeleteSnapshot(ctx, &qdrant.DeleteSnapshotRequest{
			CollectionName: collection,
			SnapshotName:   snapshotName,
		})
		return err
	})
}

// RecoverSnapshot restores collection from a previously created snapshot.
// Qdrant's recover-from-snapshot RPC operates on a local snapshot path;
// this facade only supports recovery from snapshots created on the same
// deployment via CreateSnapshot.
func (s *QdrantStore) RecoverSnapshot(ctx context.Context, collection, snapshotName string) error {
	location := fmt.Sprintf("file:///qdrant/snapshots/%s/%s", collection, snapshotName)
	return s.retry(ctx, "recover_snapshot", func() error {
		_, err := s.client.SnapshotsClient().Recover(ctx, &qdrant.RecoverSnapshotRequest{
			CollectionName: collection,
			Location:       location,
		})
		return err
	})
}

package vectorstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SearchHybridNative uses Qdrant's native prefetch+fusion query to combine
// a dense and a sparse search with Reciprocal Rank Fusion server-side.
func (s *QdrantStore) SearchHybridNative(ctx context.Context, collection string, dense []float32, sparse *SparseVector, limit int, filter *Filter) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.SearchHybridNative")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if sparse == nil {
		return s.Search(ctx, collection, dense, limit, filter, nil)
	}

	qf := buildFilter(filter)
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryFusion(qdrant.Fusion_RRF),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         qf,
		Prefetch: []*qdrant.PrefetchQuery{
			{
				Query:  qdrant.NewQuery(dense...),
				Using:  qdrant.PtrOf(DenseVectorName),
				Filter: qf,
				Limit:  qdrant.PtrOf(uint64(limit * 2)),
			},
			{
				Query:  qdrant.NewQuerySparse(sparse.Indices, sparse.Values),
				Using:  qdrant.PtrOf(SparseVectorName),
				Filter: qf,
				Limit:  qdrant.PtrOf(uint64(limit * 2)),
			},
		},
	}

	var points []*qdrant.ScoredPoint
	err := s.retry(ctx, "search_hybrid_native", func() error {
		res, err := s.client.Query(ctx, query)
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.SearchHybridRRF(ctx, collection, dense, sparse, limit, filter)
	}

	span.SetStatus(codes.Ok, "success")
	return toSearchResults(points), nil
}

// SearchHybridRRF runs the dense and sparse searches separately and fuses
// them client-side using Reciprocal Rank Fusion: score(d) = Σ 1/(k+rank_i(d)).
func (s *QdrantStore) SearchHybridRRF(ctx context.Context, collection string, dense []float32, sparse *SparseVector, limit int, filter *Filter) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.SearchHybridRRF")
	defer span.End()

	oversample := limit * 3
	if oversample < limit {
		oversample = limit
	}

	denseResults, err := s.Search(ctx, collection, dense, oversample, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("dense leg: %w", err)
	}

	var sparseResults []SearchResult
	if sparse != nil {
		sparseResults, err = s.searchSparse(ctx, collection, sparse, oversample, filter)
		if err != nil {
			return nil, fmt.Errorf("sparse leg: %w", err)
		}
	}

	fused := fuseRRF(denseResults, sparseResults, RRFConstant)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	span.SetStatus(codes.Ok, "success")
	return fused, nil
}

func (s *QdrantStore) searchSparse(ctx context.Context, collection string, sparse *SparseVector, limit int, filter *Filter) ([]SearchResult, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuerySparse(sparse.Indices, sparse.Values),
		Using:          qdrant.PtrOf(SparseVectorName),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(filter),
	}
	var points []*qdrant.ScoredPoint
	err := s.retry(ctx, "search_sparse", func() error {
		res, err := s.client.Query(ctx, query)
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSearchResults(points), nil
}

// fuseRRF combines two ranked lists into one by Reciprocal Rank Fusion.
func fuseRRF(a, b []SearchResult, k int) []SearchResult {
	scores := make(map[string]float32)
	payloads := make(map[string]map[string]any)

	accumulate := func(list []SearchResult) {
		for rank, r := range list {
			scores[r.ID] += 1.0 / float32(k+rank+1)
			if _, ok := payloads[r.ID]; !ok {
				payloads[r.ID] = r.Payload
			}
		}
	}
	accumulate(a)
	accumulate(b)

	fused := make([]SearchResult, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, SearchResult{ID: id, Score: score, Payload: payloads[id]})
	}
	sort.Slice(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	return fused
}

// SearchGroups returns at most one group per distinct groupBy value. It
// tries the backend's native grouped query first; on failure it
// oversamples a flat search and groups client-side.
func (s *QdrantStore) SearchGroups(ctx context.Context, collection string, dense []float32, groupBy string, limit, groupSize int, filter *Filter) ([]GroupedResult, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.SearchGroups")
	defer span.End()

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	var qGroups *qdrant.QueryGroupsResponse
	err := s.retry(ctx, "search_groups", func() error {
		res, err := s.client.QueryGroups(ctx, &qdrant.QueryPointGroups{
			CollectionName: collection,
			Query:          qdrant.NewQuery(dense...),
			Using:          qdrant.PtrOf(DenseVectorName),
			GroupBy:        groupBy,
			Limit:          qdrant.PtrOf(uint64(limit)),
			GroupSize:      qdrant.PtrOf(uint64(groupSize)),
			WithPayload:    qdrant.NewWithPayload(true),
			Filter:         buildFilter(filter),
		})
		if err != nil {
			return err
		}
		qGroups = res
		return nil
	})
	if err == nil && qGroups != nil {
		groups := make([]GroupedResult, 0, len(qGroups.Result))
		for _, g := range qGroups.Result {
			hits := make([]SearchResult, 0, len(g.Hits))
			for _, h := range g.Hits {
				hits = append(hits, SearchResult{ID: pointIDString(h.Id), Score: h.Score, Payload: fromQdrantPayload(h.Payload)})
			}
			groups = append(groups, GroupedResult{GroupValue: groupKeyString(g.Id), Hits: hits})
		}
		span.SetStatus(codes.Ok, "native")
		return groups, nil
	}

	span.RecordError(err)
	return s.searchGroupsClientSide(ctx, collection, dense, groupBy, limit, groupSize, filter)
}

func groupKeyString(id *qdrant.GroupId) string {
	if id == nil {
		return ""
	}
	switch v := id.Kind.(type) {
	case *qdrant.GroupId_StringValue:
		return v.StringValue
	case *qdrant.GroupId_IntegerValue:
		return fmt.Sprintf("%d", v.IntegerValue)
	default:
		return ""
	}
}

func (s *QdrantStore) searchGroupsClientSide(ctx context.Context, collection string, dense []float32, groupBy string, limit, groupSize int, filter *Filter) ([]GroupedResult, error) {
	oversample := limit * groupSize * 4
	flat, err := s.Search(ctx, collection, dense, oversample, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("client-side group oversample: %w", err)
	}

	order := make([]string, 0)
	byGroup := make(map[string][]SearchResult)
	for _, r := range flat {
		key := fmt.Sprintf("%v", r.Payload[groupBy])
		if _, ok := byGroup[key]; !ok {
			order = append(order, key)
		}
		if len(byGroup[key]) < groupSize {
			byGroup[key] = append(byGroup[key], r)
		}
	}

	groups := make([]GroupedResult, 0, limit)
	for _, key := range order {
		if len(groups) >= limit {
			break
		}
		groups = append(groups, GroupedResult{GroupValue: key, Hits: byGroup[key]})
	}
	return groups, nil
}

// Recommend returns points similar to positiveIDs and dissimilar to
// negativeIDs.
func (s *QdrantStore) Recommend(ctx context.Context, collection string, positiveIDs, negativeIDs []string, limit int, filter *Filter) ([]SearchResult, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	positive := make([]*qdrant.PointId, len(positiveIDs))
	for i, id := range positiveIDs {
		positive[i] = qdrant.NewIDUUID(id)
	}
	negative := make([]*qdrant.PointId, len(negativeIDs))
	for i, id := range negativeIDs {
		negative[i] = qdrant.NewIDUUID(id)
	}

	var points []*qdrant.ScoredPoint
	err := s.retry(ctx, "recommend", func() error {
		res, err := s.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: collection,
			Query:          qdrant.NewQueryRecommend(&qdrant.RecommendInput{Positive: positive, Negative: negative}),
			Using:          qdrant.PtrOf(DenseVectorName),
			Limit:          qdrant.PtrOf(uint64(limit)),
			WithPayload:    qdrant.NewWithPayload(true),
			Filter:         buildFilter(filter),
		})
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recommend in %s: %w", collection, err)
	}
	return toSearchResults(points), nil
}

// FindClusters groups points around seedIDs using vector similarity.
func (s *QdrantStore) FindClusters(ctx context.Context, collection string, seedIDs []string, limit int, threshold float32) ([]Cluster, error) {
	clusters := make([]Cluster, 0, len(seedIDs))
	for _, seed := range seedIDs {
		hits, err := s.Recommend(ctx, collection, []string{seed}, nil, limit, nil)
		if err != nil {
			return nil, fmt.Errorf("cluster seed %s: %w", seed, err)
		}
		members := make([]string, 0, len(hits))
		var best float32
		for _, h := range hits {
			if h.Score < threshold || h.ID == seed {
				continue
			}
			members = append(members, h.ID)
			if h.Score > best {
				best = h.Score
			}
		}
		if len(members) > 0 {
			clusters = append(clusters, Cluster{SeedID: seed, MemberIDs: members, Score: best})
		}
	}
	return clusters, nil
}

// FindDuplicates scrolls up to sampleLimit points with vectors and
// self-searches each to find near-duplicates above threshold, skipping
// points already attributed to an earlier cluster.
func (s *QdrantStore) FindDuplicates(ctx context.Context, collection string, sampleLimit int, threshold float32) ([]Cluster, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	var scrolled []*qdrant.RetrievedPoint
	err := s.retry(ctx, "find_duplicates:scroll", func() error {
		res, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Limit:          qdrant.PtrOf(uint32(sampleLimit)),
			WithVectors:    qdrant.NewWithVectors(true),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return err
		}
		scrolled = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling %s for duplicates: %w", collection, err)
	}

	processed := make(map[string]bool)
	clusters := make([]Cluster, 0)

	for _, point := range scrolled {
		id := pointIDString(point.Id)
		if processed[id] {
			continue
		}
		dense := denseFromVectors(point.Vectors)
		if dense == nil {
			continue
		}

		hits, err := s.Search(ctx, collection, dense, 10, nil, nil)
		if err != nil {
			continue
		}

		members := make([]string, 0)
		var best float32
		for _, h := range hits {
			if h.ID == id || processed[h.ID] || h.Score < threshold {
				continue
			}
			members = append(members, h.ID)
			processed[h.ID] = true
			if h.Score > best {
				best = h.Score
			}
		}
		if len(members) > 0 {
			processed[id] = true
			clusters = append(clusters, Cluster{SeedID: id, MemberIDs: members, Score: best})
		}
	}

	return clusters, nil
}

func denseFromVectors(v *qdrant.VectorsOutput) []float32 {
	if v == nil {
		return nil
	}
	if dense := v.GetVector(); dense != nil && dense.Data != nil {
		return dense.Data
	}
	if named := v.GetVectors(); named != nil {
		if dv, ok := named.Vectors[DenseVectorName]; ok {
			return dv.Data
		}
	}
	return nil
}

// Package vectorstore is the vector store facade (C1): it owns every
// interaction with the external vector database and exposes collection
// operations by name to the rest of the pipeline.
package vectorstore

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("codegraph.vectorstore")

var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateCollectionName checks name against the backend's naming rules.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q must match ^[a-z0-9_]{1,64}$", ErrInvalidCollectionName, name)
	}
	return nil
}

// IsTransientError reports whether err is a retryable RPC failure.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// is400Class reports whether err is the kind of client error Search
// should retry once against an anonymous (unnamed) vector — e.g. a
// collection created before named vectors were introduced.
func is400Class(err error) bool {
	if err == nil {
		return false
	}
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == grpccodes.InvalidArgument
}

// QdrantStore is the Store implementation backed by Qdrant's native gRPC
// client.
type QdrantStore struct {
	client *qdrant.Client
	config Config
	logger *zap.Logger

	collections sync.Map // collection name -> bool (existence cache)

	circuitBreaker struct {
		mu       sync.Mutex
		failures map[string]int
		lastFail map[string]time.Time
	}
}

// NewQdrantStore validates config, dials Qdrant, and health-checks the
// connection before returning.
func NewQdrantStore(config Config, logger *zap.Logger) (*QdrantStore, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if !config.UseTLS {
		fmt.Fprintln(os.Stderr, "vectorstore: gRPC TLS disabled, using plaintext")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &QdrantStore{client: client, config: config, logger: logger}
	store.circuitBreaker.failures = make(map[string]int)
	store.circuitBreaker.lastFail = make(map[string]time.Time)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("health check: %w", err)
	}

	return store, nil
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// retry runs operation with exponential backoff up to config.MaxRetries,
// short-circuiting via a per-operation-name circuit breaker and never
// retrying permanent errors.
func (s *QdrantStore) retry(ctx context.Context, opName string, operation func() error) error {
	backoff := s.config.RetryBackoff

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				RetryAttempts.WithLabelValues(opName, "success").Inc()
			}
			s.resetCircuit(opName)
			CircuitBreakerOpen.WithLabelValues(opName).Set(0)
			return nil
		}
		if s.circuitOpen(opName) {
			CircuitBreakerOpen.WithLabelValues(opName).Set(1)
			return fmt.Errorf("%s: circuit breaker open", opName)
		}
		if !IsTransientError(err) {
			return fmt.Errorf("%s: %w", opName, err)
		}
		s.recordFailure(opName)
		RetryAttempts.WithLabelValues(opName, "failure").Inc()
		if attempt == s.config.MaxRetries {
			return fmt.Errorf("%s: failed after %d retries: %w", opName, s.config.MaxRetries, err)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: canceled: %w", opName, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return nil
}

func (s *QdrantStore) recordFailure(op string) {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()
	s.circuitBreaker.failures[op]++
	s.circuitBreaker.lastFail[op] = time.Now()
}

func (s *QdrantStore) resetCircuit(op string) {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()
	s.circuitBreaker.failures[op] = 0
}

func (s *QdrantStore) circuitOpen(op string) bool {
	s.circuitBreaker.mu.Lock()
	defer s.circuitBreaker.mu.Unlock()
	if s.circuitBreaker.failures[op] >= s.config.CircuitBreakerThreshold {
		if time.Since(s.circuitBreaker.lastFail[op]) > s.config.CircuitBreakerCooldown {
			s.circuitBreaker.failures[op] = 0
			return false
		}
		return true
	}
	return false
}

// Ensure creates collection with dense-only vectors if it doesn't exist.
func (s *QdrantStore) Ensure(ctx context.Context, collection string) error {
	return s.ensure(ctx, collection, false)
}

// EnsureWithSparse creates collection with named {dense, sparse} vectors
// if it doesn't exist.
func (s *QdrantStore) EnsureWithSparse(ctx context.Context, collection string) error {
	return s.ensure(ctx, collection, true)
}

func (s *QdrantStore) ensure(ctx context.Context, collection string, sparse bool) error {
	ctx, span := tracer.Start(ctx, "vectorstore.Ensure")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection), attribute.Bool("sparse", sparse))

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return s.ensurePayloadIndexes(ctx, collection)
	}

	create := &qdrant.CreateCollection{
		CollectionName: collection,
	}
	if sparse {
		create.VectorsConfig = qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			DenseVectorName: {Size: s.config.VectorSize, Distance: s.config.Distance},
		})
		create.SparseVectorsConfig = qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			SparseVectorName: {},
		})
	} else {
		create.VectorsConfig = qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.config.VectorSize,
			Distance: s.config.Distance,
		})
	}

	err = s.retry(ctx, "ensure:create", func() error {
		return s.client.CreateCollection(ctx, create)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	s.collections.Store(collection, true)

	if err := s.ensurePayloadIndexes(ctx, collection); err != nil {
		return err
	}

	span.SetStatus(codes.Ok, "created")
	return nil
}

// ensurePayloadIndexes installs a keyword/filterable index on every field
// in PayloadIndexFields. Pre-existing indexes are a no-op (Qdrant returns
// an error we treat as idempotent success).
func (s *QdrantStore) ensurePayloadIndexes(ctx context.Context, collection string) error {
	for _, field := range PayloadIndexFields {
		err := s.retry(ctx, "ensure:payload_index", func() error {
			_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
				CollectionName: collection,
				FieldName:      field,
				FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
			})
			return err
		})
		if err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("installing payload index %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == grpccodes.AlreadyExists
}

// Upsert writes dense points in batches of MaxDenseUpsertBatch.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	return s.upsertBatched(ctx, collection, points, MaxDenseUpsertBatch, false)
}

// UpsertSparse writes dense+sparse points in batches of MaxSparseUpsertBatch.
func (s *QdrantStore) UpsertSparse(ctx context.Context, collection string, points []Point) error {
	return s.upsertBatched(ctx, collection, points, MaxSparseUpsertBatch, true)
}

func (s *QdrantStore) upsertBatched(ctx context.Context, collection string, points []Point, batchSize int, sparse bool) error {
	ctx, span := tracer.Start(ctx, "vectorstore.Upsert")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection), attribute.Int("count", len(points)))

	if len(points) == 0 {
		return ErrEmptyPoints
	}
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		qp := make([]*qdrant.PointStruct, len(batch))
		for i, p := range batch {
			qp[i] = toQdrantPoint(p, sparse)
		}

		err := s.retry(ctx, "upsert", func() error {
			_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
				CollectionName: collection,
				Points:         qp,
				Wait:           qdrant.PtrOf(true),
			})
			return err
		})
		if err != nil {
			if status.Code(err) == grpccodes.NotFound {
				if ensureErr := s.ensure(ctx, collection, sparse); ensureErr != nil {
					return fmt.Errorf("auto-ensure on write: %w", ensureErr)
				}
				err = s.retry(ctx, "upsert", func() error {
					_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
						CollectionName: collection,
						Points:         qp,
						Wait:           qdrant.PtrOf(true),
					})
					return err
				})
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("upserting batch [%d:%d] to %s: %w", start, end, collection, err)
			}
		}
	}

	PointsUpserted.WithLabelValues(collection).Add(float64(len(points)))
	span.SetStatus(codes.Ok, "success")
	return nil
}

func toQdrantPoint(p Point, sparse bool) *qdrant.PointStruct {
	payload := make(map[string]*qdrant.Value, len(p.Payload))
	for k, v := range p.Payload {
		payload[k] = toQdrantValue(v)
	}

	var vectors *qdrant.Vectors
	if sparse && p.Sparse != nil {
		named := map[string]*qdrant.Vector{
			DenseVectorName:  qdrant.NewVectorDense(p.Dense),
			SparseVectorName: qdrant.NewVectorSparse(p.Sparse.Indices, p.Sparse.Values),
		}
		vectors = qdrant.NewVectorsMap(named)
	} else {
		vectors = qdrant.NewVectors(p.Dense...)
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(p.ID),
		Vectors: vectors,
		Payload: payload,
	}
}

func toQdrantValue(v any) *qdrant.Value {
	switch val := v.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(val)}}
	case []string:
		list := make([]*qdrant.Value, len(val))
		for i, s := range val {
			list[i] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: list}}}
	default:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: fmt.Sprintf("%v", val)}}
	}
}

func fromQdrantPayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		case *qdrant.Value_ListValue:
			items := make([]string, 0, len(val.ListValue.Values))
			for _, lv := range val.ListValue.Values {
				if sv, ok := lv.Kind.(*qdrant.Value_StringValue); ok {
					items = append(items, sv.StringValue)
				}
			}
			out[k] = items
		}
	}
	return out
}

func buildFilter(f *Filter) *qdrant.Filter {
	if f.IsEmpty() {
		return nil
	}
	out := &qdrant.Filter{}
	if len(f.Must) > 0 {
		out.Must = conditionsFrom(f.Must)
	}
	if len(f.Should) > 0 {
		out.Should = conditionsFrom(f.Should)
	}
	if len(f.MustNot) > 0 {
		out.MustNot = conditionsFrom(f.MustNot)
	}
	return out
}

func conditionsFrom(fields map[string]any) []*qdrant.Condition {
	conditions := make([]*qdrant.Condition, 0, len(fields))
	for key, value := range fields {
		var match *qdrant.Match
		switch v := value.(type) {
		case string:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: v}}
		case bool:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Boolean{Boolean: v}}
		case []string:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Keywords{Keywords: &qdrant.RepeatedStrings{Strings: v}}}
		default:
			match = &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: fmt.Sprintf("%v", v)}}
		}
		conditions = append(conditions, &qdrant.Condition{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{Key: key, Match: match},
			},
		})
	}
	return conditions
}

// Search performs a dense similarity search against the named "dense"
// vector, falling back to an anonymous vector on a 400-class error.
func (s *QdrantStore) Search(ctx context.Context, collection string, dense []float32, limit int, filter *Filter, scoreThreshold *float32) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "vectorstore.Search")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection), attribute.Int("limit", limit))

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(dense...),
		Using:          qdrant.PtrOf(DenseVectorName),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         buildFilter(filter),
		ScoreThreshold: scoreThreshold,
	}

	var points []*qdrant.ScoredPoint
	err := s.retry(ctx, "search", func() error {
		res, err := s.client.Query(ctx, query)
		if err != nil {
			return err
		}
		points = res
		return nil
	})
	if err != nil && is400Class(err) {
		query.Using = nil
		err = s.retry(ctx, "search:fallback", func() error {
			res, err := s.client.Query(ctx, query)
			if err != nil {
				return err
			}
			points = res
			return nil
		})
	}
	if err != nil {
		if status.Code(err) == grpccodes.NotFound {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("searching %s: %w", collection, err)
	}

	return toSearchResults(points), nil
}

func toSearchResults(points []*qdrant.ScoredPoint) []SearchResult {
	results := make([]SearchResult, len(points))
	for i, p := range points {
		results[i] = SearchResult{
			ID:      pointIDString(p.Id),
			Score:   p.Score,
			Payload: fromQdrantPayload(p.Payload),
		}
	}
	return results
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch v := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return v.Uuid
	case *qdrant.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	default:
		return ""
	}
}

// CollectionExists reports whether collection exists, short-circuiting
// via an in-memory existence cache.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return false, err
	}
	if _, ok := s.collections.Load(collection); ok {
		return true, nil
	}

	var exists bool
	err := s.retry(ctx, "collection_exists", func() error {
		info, err := s.client.GetCollectionInfo(ctx, collection)
		if err != nil {
			if status.Code(err) == grpccodes.NotFound {
				return nil
			}
			return err
		}
		exists = info != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("checking collection %s: %w", collection, err)
	}
	if exists {
		s.collections.Store(collection, true)
	}
	return exists, nil
}

// DeleteCollection drops collection.
func (s *QdrantStore) DeleteCollection(ctx context.Context, collection string) error {
	if err := ValidateCollectionName(collection); err != nil {
		return err
	}
	err := s.retry(ctx, "delete_collection", func() error {
		return s.client.DeleteCollection(ctx, collection)
	})
	if err != nil {
		return fmt.Errorf("deleting collection %s: %w", collection, err)
	}
	s.collections.Delete(collection)
	return nil
}

// ListCollections lists every collection known to the backend.
func (s *QdrantStore) ListCollections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.retry(ctx, "list_collections", func() error {
		res, err := s.client.ListCollections(ctx)
		if err != nil {
			return err
		}
		names = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	return names, nil
}

// GetCollectionInfo returns metadata about collection.
func (s *QdrantStore) GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	var info *CollectionInfo
	err := s.retry(ctx, "get_collection_info", func() error {
		ci, err := s.client.GetCollectionInfo(ctx, collection)
		if err != nil {
			if status.Code(err) == grpccodes.NotFound {
				return ErrCollectionNotFound
			}
			return err
		}
		pointCount := 0
		if ci.PointsCount != nil {
			pointCount = int(*ci.PointsCount)
		}
		info = &CollectionInfo{
			Name:       collection,
			PointCount: pointCount,
			VectorSize: int(s.config.VectorSize),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting collection info for %s: %w", collection, err)
	}
	return info, nil
}

var _ Store = (*QdrantStore)(nil)

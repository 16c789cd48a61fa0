package governance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kiverlab/codegraph/internal/gates"
	"github.com/kiverlab/codegraph/internal/memory"
)

// GateRunner runs quality gates ahead of a promotion. *gates.Service
// satisfies this; tests may supply a fake.
type GateRunner interface {
	RunGates(ctx context.Context, req gates.Request) gates.Report
}

// Service promotes or rejects quarantined memories.
type Service struct {
	memory *memory.Service
	gates  GateRunner
	logger *zap.Logger
}

// NewService builds a governance Service. gatesSvc may be nil when no
// project is configured for gate-guarded promotion; Promote then fails
// if a caller asks for RunGates anyway.
func NewService(memorySvc *memory.Service, gatesSvc GateRunner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{memory: memorySvc, gates: gatesSvc, logger: logger}
}

// Promote moves a quarantined memory to durable status. It is a
// read-delete-insert triple, not a transaction: re-promoting an
// already-promoted id fails cleanly with memory.ErrNotFound since the
// quarantine copy no longer exists.
func (s *Service) Promote(ctx context.Context, projectID, id string, reason Reason, evidence string, opts PromoteOptions) (*memory.Memory, error) {
	if !validReason(reason) {
		return nil, ErrInvalidReason
	}

	if opts.RunGates {
		if s.gates == nil {
			return nil, fmt.Errorf("governance: quality gates not configured")
		}
		report := s.gates.RunGates(ctx, gates.Request{
			Project:       projectID,
			ProjectPath:   opts.ProjectPath,
			AffectedFiles: opts.AffectedFiles,
		})
		if !report.Passed {
			return nil, &GateFailedError{Results: failedRequiredGates(report.Results)}
		}
	}

	quarantined, err := s.memory.GetQuarantined(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if err := s.memory.DeleteQuarantined(ctx, projectID, id); err != nil {
		return nil, fmt.Errorf("governance: deleting quarantined memory: %w", err)
	}

	now := time.Now()
	durable := &memory.Memory{
		ProjectID: projectID,
		Type:      quarantined.Type,
		Content:   quarantined.Content,
		Tags:      quarantined.Tags,
		RelatedTo: quarantined.RelatedTo,
		CreatedAt: quarantined.CreatedAt,
		UpdatedAt: now,
		Source:    "promoted",
		Confidence: quarantined.Confidence,
		Validated: true,
		Metadata: map[string]any{
			"validated":          true,
			"promotedAt":         now.Format(time.RFC3339),
			"promoteReason":      string(reason),
			"promoteEvidence":    evidence,
			"originalSource":     quarantined.Source,
			"originalConfidence": quarantined.Confidence,
		},
	}
	if quarantined.Type == memory.TypeTodo {
		durable.Status = quarantined.Status
		durable.StatusHistory = quarantined.StatusHistory
	}

	if err := s.memory.Record(ctx, durable); err != nil {
		return nil, fmt.Errorf("governance: recording durable memory: %w", err)
	}

	s.logger.Info("memory promoted",
		zap.String("id", id), zap.String("project", projectID), zap.String("reason", string(reason)))
	return durable, nil
}

// Reject deletes a quarantined memory outright. Best-effort: deleting a
// missing id is not an error.
func (s *Service) Reject(ctx context.Context, projectID, id string) error {
	if err := s.memory.DeleteQuarantined(ctx, projectID, id); err != nil {
		return fmt.Errorf("governance: rejecting memory: %w", err)
	}
	s.logger.Info("memory rejected", zap.String("id", id), zap.String("project", projectID))
	return nil
}

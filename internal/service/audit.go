package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/Rrens/sitepublish/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const auditWriteTimeout = 5 * time.Second

type auditRequired struct {
	WorkspaceID string `validate:"required"`
	Action      string `validate:"required"`
	EntityType  string `validate:"required"`
	EntityID    string `validate:"required"`
	ActorUserID string `validate:"required"`
}

// AuditService writes audit log entries
type AuditService struct {
	repo    domain.AuditLogRepository
	metrics *metrics.ServerMetrics
	clock   clock
}

// NewAuditService creates a new audit service
func NewAuditService(repo domain.AuditLogRepository, m *metrics.ServerMetrics) *AuditService {
	return &AuditService{repo: repo, metrics: m}
}

// Write validates and stores an audit entry
func (s *AuditService) Write(ctx context.Context, input domain.AuditInput) (*domain.AuditLogEntry, error) {
	required := auditRequired{
		WorkspaceID: strings.TrimSpace(input.WorkspaceID),
		Action:      strings.TrimSpace(input.Action),
		EntityType:  strings.TrimSpace(input.EntityType),
		EntityID:    strings.TrimSpace(input.EntityID),
		ActorUserID: strings.TrimSpace(input.ActorUserID),
	}
	if err := validate.Struct(required); err != nil {
		return nil, domain.InvalidArgument(fmt.Sprintf("invalid audit entry: %v", err))
	}

	now := s.clock.now()
	entry := &domain.AuditLogEntry{
		ID:          auditID(required.Action, now),
		WorkspaceID: required.WorkspaceID,
		Action:      required.Action,
		EntityType:  required.EntityType,
		EntityID:    required.EntityID,
		ActorUserID: required.ActorUserID,
		SiteID:      strings.TrimSpace(input.SiteID),
		PageID:      strings.TrimSpace(input.PageID),
		Summary:     strings.TrimSpace(input.Summary),
		Metadata:    sanitizeMetadata(input.Metadata),
		CreatedAt:   now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, domain.Infrastructure("failed to write audit log", err)
	}

	return entry, nil
}

// Record writes an entry and discards any failure. It never blocks the
// caller's outcome and survives cancellation of the request context.
func (s *AuditService) Record(ctx context.Context, input domain.AuditInput) {
	if s == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.IncAuditDropped()
			log.Warn().Interface("panic", r).Str("action", input.Action).Msg("Audit log write panicked")
		}
	}()

	if _, err := s.Write(ctx, input); err != nil {
		s.metrics.IncAuditDropped()
		log.Warn().Err(err).
			Str("action", input.Action).
			Str("workspace_id", input.WorkspaceID).
			Str("entity_id", input.EntityID).
			Msg("Failed to write audit log")
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func auditID(action string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return slugify(action) + "-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + suffix
}

// sanitizeMetadata drops nil entries and values that cannot be encoded as JSON
func sanitizeMetadata(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		if v == nil {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			if clean := sanitizeMetadata(nested); clean != nil {
				out[k] = clean
			}
			continue
		}
		if _, err := json.Marshal(v); err != nil {
			continue
		}
		out[k] = v
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

package service

import (
	"context"
	"sort"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AlertService raises, lists, and resolves workspace alerts
type AlertService struct {
	access       *AccessService
	repo         domain.AlertRepository
	audit        *AuditService
	defaultLimit int
	maxLimit     int
	clock        clock
}

// NewAlertService creates a new alert service
func NewAlertService(access *AccessService, repo domain.AlertRepository, audit *AuditService, defaultLimit, maxLimit int) *AlertService {
	return &AlertService{
		access:       access,
		repo:         repo,
		audit:        audit,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Raise creates an open alert. Failures are logged and discarded.
func (s *AlertService) Raise(ctx context.Context, workspaceID, siteID, pageID, reasonCode, message string) {
	if s == nil {
		return
	}

	alert := &domain.Alert{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Status:      domain.AlertOpen,
		Category:    domain.AlertCategoryPublish,
		SiteID:      siteID,
		PageID:      pageID,
		Message:     message,
		ReasonCode:  reasonCode,
		CreatedAt:   s.clock.now(),
	}

	if err := s.repo.Create(context.WithoutCancel(ctx), alert); err != nil {
		log.Warn().Err(err).
			Str("workspace_id", workspaceID).
			Str("reason_code", reasonCode).
			Msg("Failed to raise alert")
	}
}

// List returns the workspace's alerts, newest first
func (s *AlertService) List(ctx context.Context, caller domain.Caller, workspaceID string, filter domain.AlertFilter) (*domain.AlertList, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.AnyMemberRoles); err != nil {
		return nil, err
	}
	if err := validate.Struct(filter); err != nil {
		return nil, domain.InvalidArgument("invalid alert filter: " + err.Error())
	}

	rows, err := s.repo.ListByWorkspace(ctx, workspaceID, filter)
	if err != nil {
		return nil, domain.Infrastructure("failed to list alerts", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	limit := clampLimit(filter.Limit, s.defaultLimit, s.maxLimit)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []domain.Alert{}
	}

	return &domain.AlertList{Rows: rows, Count: len(rows)}, nil
}

// Resolve marks an alert resolved. Resolving twice is a no-op.
func (s *AlertService) Resolve(ctx context.Context, caller domain.Caller, workspaceID, alertID string) (*domain.Alert, error) {
	if _, err := s.access.Require(ctx, caller, workspaceID, domain.PublishRoles); err != nil {
		return nil, err
	}

	alert, err := s.repo.Get(ctx, alertID)
	if err != nil {
		return nil, domain.Infrastructure("failed to load alert", err)
	}
	if alert == nil || alert.WorkspaceID != workspaceID {
		return nil, domain.NotFound("alert not found")
	}
	if alert.Status == domain.AlertResolved {
		return alert, nil
	}

	now := s.clock.now()
	alert.Status = domain.AlertResolved
	alert.ResolvedAt = &now
	alert.ResolvedBy = caller.UserID

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, domain.Infrastructure("failed to resolve alert", err)
	}

	s.audit.Record(ctx, domain.AuditInput{
		WorkspaceID: workspaceID,
		Action:      domain.AuditActionAlertResolve,
		EntityType:  domain.AuditEntityAlert,
		EntityID:    alert.ID,
		ActorUserID: caller.UserID,
		SiteID:      alert.SiteID,
		PageID:      alert.PageID,
		Summary:     "Resolved alert " + alert.ReasonCode,
	})

	return alert, nil
}

package service

import (
	"context"
	"slices"

	"github.com/Rrens/sitepublish/internal/domain"
)

// AccessService evaluates workspace membership against per-operation role allow-lists
type AccessService struct {
	workspaces domain.WorkspaceRepository
}

// NewAccessService creates a new access service
func NewAccessService(workspaces domain.WorkspaceRepository) *AccessService {
	return &AccessService{workspaces: workspaces}
}

// RequireRole returns the caller's membership when it is active and its role is in allowed
func (s *AccessService) RequireRole(ctx context.Context, workspaceID, userID string, allowed []domain.Role) (*domain.Membership, error) {
	if userID == "" {
		return nil, domain.Unauthorized("missing caller identity")
	}

	membership, err := s.workspaces.GetMembership(ctx, workspaceID, userID)
	if err != nil {
		return nil, domain.Infrastructure("failed to load membership", err)
	}
	if membership == nil || membership.Status != domain.MembershipActive {
		return nil, domain.Forbidden("not an active member of this workspace")
	}
	if !membership.Role.Valid() || !slices.Contains(allowed, membership.Role) {
		return nil, domain.Forbidden("role not permitted for this operation")
	}

	return membership, nil
}

// Require is RequireRole for an explicit caller
func (s *AccessService) Require(ctx context.Context, caller domain.Caller, workspaceID string, allowed []domain.Role) (*domain.Membership, error) {
	return s.RequireRole(ctx, workspaceID, caller.UserID, allowed)
}
